package frame

import (
	"testing"

	"layercomp/pkg/compositing"
	"layercomp/pkg/config"
	"layercomp/pkg/geom"
	"layercomp/pkg/layer"
	"layercomp/pkg/style"
)

func newTestPage(t *testing.T) *Page {
	t.Helper()
	return NewPage(compositing.NewServices(config.DefaultSettings(), nil), geom.Size{W: 800, H: 600})
}

func addLayer(t *testing.T, f *Frame, name string, kind layer.Kind, css string, r geom.Rect) *layer.Layer {
	t.Helper()
	tree := f.Tree()
	l := tree.Add(tree.Root(), name, kind, style.ParseInlineStyle(css))
	l.SetGeometry(r.Location(), r.Size())
	l.HasContent = true
	return l
}

func names[T any](items []T, name func(T) string) []string {
	var out []string
	for _, it := range items {
		out = append(out, name(it))
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestFrameTree(t *testing.T) {
	page := newTestPage(t)
	main := page.MainFrame()
	if !main.IsMainFrame() || main.Owner() != nil {
		t.Fatalf("main frame has a parent or owner")
	}

	a := main.AddChildFrame(addLayer(t, main, "a", layer.KindIFrame, "", geom.Rect{W: 100, H: 100}), "a", geom.Size{W: 100, H: 100})
	b := main.AddChildFrame(addLayer(t, main, "b", layer.KindIFrame, "", geom.Rect{Y: 100, W: 100, H: 100}), "b", geom.Size{W: 100, H: 100})
	a.AddChildFrame(addLayer(t, a, "a1", layer.KindIFrame, "", geom.Rect{W: 50, H: 50}), "a1", geom.Size{W: 50, H: 50})

	frameName := func(f *Frame) string { return f.Name }
	if got, want := names(page.Frames(), frameName), []string{"main", "a", "a1", "b"}; !equalStrings(got, want) {
		t.Errorf("frames = %v, want %v", got, want)
	}
	if a.Page() != page || a.Parent() != main {
		t.Errorf("child frame is not linked to its page and parent")
	}

	main.RemoveChildFrame(a)
	if got, want := names(page.Frames(), frameName), []string{"main", "b"}; !equalStrings(got, want) {
		t.Errorf("frames after removal = %v, want %v", got, want)
	}
	if a.Parent() != nil || a.Owner() != nil {
		t.Errorf("removed frame still linked")
	}
	if main.Compositor().ChildCompositor(b.Owner()) != b.Compositor() {
		t.Errorf("remaining child compositor was unlinked")
	}
}

func TestRemovingOwnerLayerDetachesFrame(t *testing.T) {
	page := newTestPage(t)
	main := page.MainFrame()
	owner := addLayer(t, main, "owner", layer.KindIFrame, "", geom.Rect{W: 100, H: 100})
	child := main.AddChildFrame(owner, "child", geom.Size{W: 100, H: 100})

	main.Tree().Remove(owner)
	if got := len(page.Frames()); got != 1 {
		t.Errorf("frames after removing the owner = %d, want 1", got)
	}
	if child.Parent() != nil || child.Owner() != nil {
		t.Errorf("frame still linked to its removed owner")
	}
	if len(main.Children()) != 0 {
		t.Errorf("main frame still lists the child")
	}
	// Removing it again through the frame API is harmless.
	main.RemoveChildFrame(child)
}

func TestFrameGeometry(t *testing.T) {
	page := newTestPage(t)
	main := page.MainFrame()
	owner := addLayer(t, main, "owner", layer.KindIFrame, "", geom.Rect{X: 100, Y: 200, W: 400, H: 300})
	child := main.AddChildFrame(owner, "child", geom.Size{W: 400, H: 300})

	if got, want := main.FrameRect(), (geom.Rect{W: 800, H: 600}); got != want {
		t.Errorf("main frame rect = %v, want %v", got, want)
	}
	if got, want := child.FrameRect(), (geom.Rect{X: 100, Y: 200, W: 400, H: 300}); got != want {
		t.Errorf("child frame rect = %v, want %v", got, want)
	}
	if child.IsScrollable() {
		t.Errorf("child frame without overflow reports scrollable")
	}

	child.Tree().Root().SetContentSize(geom.Size{W: 400, H: 1000})
	child.Tree().Root().ScrollTo(geom.Point{Y: 50})
	if !child.IsScrollable() {
		t.Errorf("overflowing child frame is not scrollable")
	}
	if got, want := child.ContentOffsetInParent(), (geom.Point{X: 100, Y: 150}); got != want {
		t.Errorf("content offset = %v, want %v", got, want)
	}
}

func TestFrameQueries(t *testing.T) {
	page := newTestPage(t)
	main := page.MainFrame()
	main.Tree().Root().SetContentSize(geom.Size{W: 800, H: 2000})

	scroller := addLayer(t, main, "scroller", layer.KindBlock, "overflow: scroll; resize: both", geom.Rect{W: 200, H: 200})
	scroller.SetContentSize(geom.Size{W: 200, H: 800})
	addLayer(t, main, "clipper", layer.KindBlock, "overflow: hidden", geom.Rect{W: 200, H: 200})
	plugin := addLayer(t, main, "plugin", layer.KindPlugin, "", geom.Rect{W: 50, H: 50})
	plugin.WantsWheelEvents = true
	addLayer(t, main, "quiet-plugin", layer.KindPlugin, "", geom.Rect{W: 50, H: 50})
	addLayer(t, main, "fixed", layer.KindBlock, "position: fixed", geom.Rect{W: 50, H: 50})
	touch := addLayer(t, main, "touch", layer.KindBlock, "", geom.Rect{W: 50, H: 50})
	touch.HasTouchHandler = true

	areaName := func(a *layer.ScrollableArea) string { return a.Layer().Name }
	layerName := func(l *layer.Layer) string { return l.Name }
	tests := []struct {
		name string
		got  []string
		want []string
	}{
		{"scrollable areas exclude the root", names(main.ScrollableAreas(), areaName), []string{"scroller"}},
		{"resizers", names(main.ResizerAreas(), areaName), []string{"scroller"}},
		{"wheel plugins", names(main.WheelEventPlugins(), layerName), []string{"plugin"}},
		{"viewport constrained", names(main.ViewportConstrainedObjects(), layerName), []string{"fixed"}},
		{"touch targets", names(main.TouchEventTargets(), layerName), []string{"touch"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !equalStrings(tt.got, tt.want) {
				t.Errorf("got %v, want %v", tt.got, tt.want)
			}
		})
	}

	if main.HasSlowRepaintObjects() {
		t.Errorf("slow repaint objects reported without a fixed background")
	}
	addLayer(t, main, "bg", layer.KindBlock, "background-attachment: fixed", geom.Rect{W: 10, H: 10})
	if !main.HasSlowRepaintObjects() {
		t.Errorf("fixed background not reported as a slow repaint object")
	}
}
