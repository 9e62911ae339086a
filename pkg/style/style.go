// Package style holds the read-only style snapshot the layer tree is built
// from. Only the properties that influence stacking, clipping and
// compositing decisions are understood.
package style

import (
	"fmt"
	"strconv"
	"strings"

	"layercomp/pkg/geom"
)

type Style struct {
	Properties map[string]string
}

func NewStyle() *Style {
	return &Style{Properties: make(map[string]string)}
}

func (s *Style) Get(property string) (string, bool) {
	if s == nil {
		return "", false
	}
	val, ok := s.Properties[property]
	return val, ok
}

func (s *Style) Set(property, value string) {
	s.Properties[property] = value
}

func (s *Style) GetLength(property string) (float64, bool) {
	val, ok := s.Get(property)
	if !ok {
		return 0, false
	}
	return ParseLength(val)
}

// ParseLength parses a length value (e.g., "100px" or "100")
func ParseLength(val string) (float64, bool) {
	val = strings.TrimSpace(val)
	val = strings.TrimSuffix(val, "px")
	num, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return 0, false
	}
	return num, true
}

func (s *Style) is(property, value string) bool {
	v, ok := s.Get(property)
	return ok && strings.EqualFold(strings.TrimSpace(v), value)
}

func (s *Style) keywords(property string) []string {
	v, ok := s.Get(property)
	if !ok {
		return nil
	}
	return strings.FieldsFunc(strings.ToLower(v), func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
}

func (s *Style) hasKeyword(property, keyword string) bool {
	for _, k := range s.keywords(property) {
		if k == keyword {
			return true
		}
	}
	return false
}

type PositionType string

const (
	PositionStatic   PositionType = "static"
	PositionRelative PositionType = "relative"
	PositionAbsolute PositionType = "absolute"
	PositionFixed    PositionType = "fixed"
	PositionSticky   PositionType = "sticky"
)

// GetPosition returns the position type (default: static)
func (s *Style) GetPosition() PositionType {
	if pos, ok := s.Get("position"); ok {
		switch strings.TrimSpace(pos) {
		case "relative":
			return PositionRelative
		case "absolute":
			return PositionAbsolute
		case "fixed":
			return PositionFixed
		case "sticky":
			return PositionSticky
		}
	}
	return PositionStatic
}

func (s *Style) IsPositioned() bool {
	return s.GetPosition() != PositionStatic
}

// IsOutOfFlowPositioned reports absolute or fixed positioning.
func (s *Style) IsOutOfFlowPositioned() bool {
	p := s.GetPosition()
	return p == PositionAbsolute || p == PositionFixed
}

// PositionOffset holds the top/right/bottom/left offsets that were set.
type PositionOffset struct {
	Top, Right, Bottom, Left             float64
	HasTop, HasRight, HasBottom, HasLeft bool
}

func (s *Style) GetPositionOffset() PositionOffset {
	offset := PositionOffset{}
	offset.Top, offset.HasTop = s.GetLength("top")
	offset.Right, offset.HasRight = s.GetLength("right")
	offset.Bottom, offset.HasBottom = s.GetLength("bottom")
	offset.Left, offset.HasLeft = s.GetLength("left")
	return offset
}

// GetZIndex returns the z-index and whether it was set to something other
// than auto.
func (s *Style) GetZIndex() (int, bool) {
	if zindex, ok := s.Get("z-index"); ok {
		var z int
		if _, err := fmt.Sscanf(zindex, "%d", &z); err == nil {
			return z, true
		}
	}
	return 0, false
}

func (s *Style) GetOpacity() float64 {
	if v, ok := s.Get("opacity"); ok {
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			return f
		}
	}
	return 1
}

func (s *Style) HasOpacity() bool { return s.GetOpacity() < 1 }

type TransformKind int

const (
	TransformNone TransformKind = iota
	Transform2D
	Transform3D
)

var threeDFunctions = []string{"translatez", "translate3d", "rotatex", "rotatey", "rotatez", "rotate3d", "scalez", "scale3d", "matrix3d", "perspective("}

// GetTransform classifies the transform property.
func (s *Style) GetTransform() TransformKind {
	v, ok := s.Get("transform")
	if !ok {
		return TransformNone
	}
	v = strings.ToLower(strings.TrimSpace(v))
	if v == "" || v == "none" {
		return TransformNone
	}
	for _, fn := range threeDFunctions {
		if strings.Contains(v, fn) {
			return Transform3D
		}
	}
	return Transform2D
}

func (s *Style) HasTransform() bool { return s.GetTransform() != TransformNone }

func (s *Style) has(property string) bool {
	v, ok := s.Get(property)
	if !ok {
		return false
	}
	v = strings.TrimSpace(v)
	return v != "" && v != "none" && v != "normal" && v != "auto"
}

func (s *Style) HasFilter() bool         { return s.has("filter") }
func (s *Style) HasBackdropFilter() bool { return s.has("backdrop-filter") }
func (s *Style) HasMask() bool           { return s.has("mask") }
func (s *Style) HasBlendMode() bool      { return s.has("mix-blend-mode") }
func (s *Style) HasIsolation() bool      { return s.is("isolation", "isolate") }
func (s *Style) HasReflection() bool     { return s.has("-webkit-box-reflect") }
func (s *Style) HasPerspective() bool    { return s.has("perspective") }
func (s *Style) Preserves3D() bool       { return s.is("transform-style", "preserve-3d") }

func (s *Style) BackfaceHidden() bool {
	return s.is("backface-visibility", "hidden")
}

func (s *Style) IsVisible() bool {
	return !s.is("visibility", "hidden") && !s.is("visibility", "collapse")
}

// WillChange reports whether the will-change hint names property.
func (s *Style) WillChange(property string) bool {
	return s.hasKeyword("will-change", property)
}

// HasCompositorAnimation reports a running animation of the given property
// ("transform", "opacity", "filter") that the compositor can drive.
func (s *Style) HasCompositorAnimation(property string) bool {
	return s.hasKeyword("compositor-animation", property)
}

type Overflow string

const (
	OverflowVisible Overflow = "visible"
	OverflowHidden  Overflow = "hidden"
	OverflowScroll  Overflow = "scroll"
	OverflowAuto    Overflow = "auto"
)

func (s *Style) GetOverflow() Overflow {
	if v, ok := s.Get("overflow"); ok {
		switch strings.TrimSpace(v) {
		case "hidden":
			return OverflowHidden
		case "scroll":
			return OverflowScroll
		case "auto":
			return OverflowAuto
		}
	}
	return OverflowVisible
}

func (s *Style) HasOverflowClip() bool {
	return s.GetOverflow() != OverflowVisible
}

// ScrollsOverflow reports overflow:scroll or overflow:auto.
func (s *Style) ScrollsOverflow() bool {
	o := s.GetOverflow()
	return o == OverflowScroll || o == OverflowAuto
}

func (s *Style) UsesTouchOverflowScrolling() bool {
	return s.is("-webkit-overflow-scrolling", "touch")
}

// GetClip parses "clip: rect(top, right, bottom, left)" into a rect in the
// element's border-box space.
func (s *Style) GetClip() (geom.Rect, bool) {
	v, ok := s.Get("clip")
	if !ok {
		return geom.Rect{}, false
	}
	v = strings.TrimSpace(strings.ToLower(v))
	if !strings.HasPrefix(v, "rect(") || !strings.HasSuffix(v, ")") {
		return geom.Rect{}, false
	}
	parts := strings.FieldsFunc(v[5:len(v)-1], func(r rune) bool { return r == ',' || r == ' ' })
	if len(parts) != 4 {
		return geom.Rect{}, false
	}
	var edges [4]float64
	for i, p := range parts {
		n, ok := ParseLength(p)
		if !ok {
			return geom.Rect{}, false
		}
		edges[i] = n
	}
	top, right, bottom, left := edges[0], edges[1], edges[2], edges[3]
	return geom.Rect{X: left, Y: top, W: right - left, H: bottom - top}, true
}

func (s *Style) HasFixedBackground() bool {
	return s.is("background-attachment", "fixed")
}

func (s *Style) HasResize() bool {
	return s.has("resize")
}

func (s *Style) GetBorderRadius() float64 {
	r, _ := s.GetLength("border-radius")
	return r
}

// ParseInlineStyle parses a "prop: value; prop: value" declaration list.
func ParseInlineStyle(styleAttr string) *Style {
	style := NewStyle()
	for _, decl := range strings.Split(styleAttr, ";") {
		decl = strings.TrimSpace(decl)
		if decl == "" {
			continue
		}
		parts := strings.SplitN(decl, ":", 2)
		if len(parts) != 2 {
			continue
		}
		property := strings.TrimSpace(strings.ToLower(parts[0]))
		value := strings.TrimSpace(parts[1])
		expandShorthand(style, property, value)
	}
	return style
}

func expandShorthand(style *Style, property, value string) {
	switch property {
	case "overflow-x", "overflow-y":
		// Axis-specific overflow collapses onto the single overflow flag.
		if cur, ok := style.Get("overflow"); !ok || cur == "visible" {
			style.Set("overflow", value)
		}
	case "inset":
		parts := strings.Fields(value)
		if len(parts) == 0 {
			return
		}
		for i, side := range []string{"top", "right", "bottom", "left"} {
			style.Set(side, parts[boxIndex(len(parts), i)])
		}
	default:
		style.Set(property, value)
	}
}

// boxIndex maps side i (top, right, bottom, left) onto a 1-4 value list.
func boxIndex(n, i int) int {
	switch n {
	case 1:
		return 0
	case 2:
		return i % 2
	case 3:
		if i == 3 {
			return 1
		}
		return i
	}
	return i
}
