package style

import (
	"testing"

	"layercomp/pkg/geom"
)

func TestParseInlineStyle(t *testing.T) {
	s := ParseInlineStyle("position: fixed; z-index: -2; OPACITY: 0.5;; bogus")

	if got := s.GetPosition(); got != PositionFixed {
		t.Errorf("position = %q, want fixed", got)
	}
	if z, ok := s.GetZIndex(); !ok || z != -2 {
		t.Errorf("z-index = %d,%v want -2,true", z, ok)
	}
	if !s.HasOpacity() {
		t.Error("expected opacity < 1")
	}
}

func TestZIndexAuto(t *testing.T) {
	s := ParseInlineStyle("z-index: auto")
	if _, ok := s.GetZIndex(); ok {
		t.Error("z-index:auto should report unset")
	}
}

func TestTransformKind(t *testing.T) {
	tests := []struct {
		decl string
		want TransformKind
	}{
		{"", TransformNone},
		{"transform: none", TransformNone},
		{"transform: translate(10px, 0)", Transform2D},
		{"transform: translateZ(0)", Transform3D},
		{"transform: rotate3d(1, 0, 0, 45deg)", Transform3D},
	}
	for _, tt := range tests {
		if got := ParseInlineStyle(tt.decl).GetTransform(); got != tt.want {
			t.Errorf("%q: got %v, want %v", tt.decl, got, tt.want)
		}
	}
}

func TestGetClip(t *testing.T) {
	s := ParseInlineStyle("clip: rect(10px, 110px, 60px, 20px)")
	r, ok := s.GetClip()
	if !ok {
		t.Fatal("expected clip")
	}
	if want := (geom.Rect{X: 20, Y: 10, W: 90, H: 50}); r != want {
		t.Errorf("clip = %v, want %v", r, want)
	}
}

func TestOverflowAxis(t *testing.T) {
	s := ParseInlineStyle("overflow-y: scroll")
	if !s.ScrollsOverflow() {
		t.Error("overflow-y: scroll should scroll")
	}
	if !ParseInlineStyle("overflow: hidden").HasOverflowClip() {
		t.Error("overflow: hidden should clip")
	}
}

func TestKeywordLists(t *testing.T) {
	s := ParseInlineStyle("will-change: opacity, transform; compositor-animation: filter")
	if !s.WillChange("transform") || !s.WillChange("opacity") {
		t.Error("will-change keywords not found")
	}
	if s.WillChange("filter") {
		t.Error("unexpected will-change filter")
	}
	if !s.HasCompositorAnimation("filter") {
		t.Error("expected filter animation")
	}
}

func TestNilStyle(t *testing.T) {
	var s *Style
	if s.GetPosition() != PositionStatic || s.HasTransform() || s.GetOpacity() != 1 {
		t.Error("nil style should behave like the initial style")
	}
}
