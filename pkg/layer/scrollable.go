package layer

import "layercomp/pkg/geom"

// ResizerExpandRatioForTouch grows the resizer hit area for touch input.
const ResizerExpandRatioForTouch = 2

// ScrollableArea is the scrolling side of a layer with an overflow clip.
type ScrollableArea struct {
	layer *Layer
}

// ScrollableArea returns the scrolling state of l, or nil when l does not
// clip its overflow.
func (l *Layer) ScrollableArea() *ScrollableArea {
	if !l.HasOverflowClip() {
		l.scrollable = nil
		return nil
	}
	if l.scrollable == nil {
		l.scrollable = &ScrollableArea{layer: l}
	}
	return l.scrollable
}

func (s *ScrollableArea) Layer() *Layer { return s.layer }

// IsScrollable reports overflow that the user can actually scroll.
func (s *ScrollableArea) IsScrollable() bool {
	return s.layer.ScrollsOverflow()
}

// UsesCompositedScrolling reports whether the compositor scrolls this area
// without the main thread.
func (s *ScrollableArea) UsesCompositedScrolling() bool {
	m := s.layer.mapping
	return s.layer.needsCompositedScrolling && m != nil && m.ScrollingLayer() != nil
}

// ScrollableAreaBoundingBox is the border box in document coordinates.
func (s *ScrollableArea) ScrollableAreaBoundingBox() geom.Rect {
	return s.layer.AbsoluteBorderBox()
}

func (s *ScrollableArea) HasResizer() bool {
	return s.layer.style.HasResize()
}

// ResizerCornerRect is the resizer control in document coordinates. For
// touch the control is grown up and to the left.
func (s *ScrollableArea) ResizerCornerRect(thickness float64, forTouch bool) geom.Rect {
	box := s.layer.AbsoluteBorderBox()
	corner := geom.Rect{X: box.MaxX() - thickness, Y: box.MaxY() - thickness, W: thickness, H: thickness}
	if forTouch {
		expand := float64(ResizerExpandRatioForTouch - 1)
		corner = geom.Rect{
			X: corner.X - corner.W*expand,
			Y: corner.Y - corner.H*expand,
			W: corner.W * (expand + 1),
			H: corner.H * (expand + 1),
		}
	}
	return corner
}

// ScrollbarRects returns the vertical and horizontal scrollbar tracks in
// l's border-box space. A track is empty when that axis does not
// overflow.
func (s *ScrollableArea) ScrollbarRects(thickness float64) (vertical, horizontal geom.Rect) {
	l := s.layer
	if l.contentSize.H > l.size.H {
		vertical = geom.Rect{X: l.size.W - thickness, W: thickness, H: l.size.H}
	}
	if l.contentSize.W > l.size.W {
		horizontal = geom.Rect{Y: l.size.H - thickness, W: l.size.W, H: thickness}
	}
	return vertical, horizontal
}
