package scrolling

import (
	"layercomp/pkg/geom"
	"layercomp/pkg/graphics"
	"layercomp/pkg/layer"
)

// touchRect is a hit rect in the space of its paint layer. inContents
// marks a rect that scrolls with the layer's contents.
type touchRect struct {
	rect       geom.Rect
	inContents bool
}

// TouchEventTargetRects returns the touch handler region of each graphics
// layer as of the last update.
func (c *Coordinator) TouchEventTargetRects() map[*graphics.Layer][]geom.Rect {
	return c.touchRects
}

func (c *Coordinator) updateTouchEventTargetRects() {
	for g := range c.touchRects {
		g.TouchEventHandlerRegion = geom.Region{}
	}
	for _, f := range c.page.Frames() {
		if root := f.Compositor().RootGraphicsLayer(); root != nil {
			root.Walk(func(g *graphics.Layer) { g.TouchEventHandlerRegion = geom.Region{} })
		}
	}

	rects := make(map[*graphics.Layer][]geom.Rect)
	if c.page.Services().Settings.TouchEnabled {
		for _, f := range c.page.Frames() {
			for _, l := range f.TouchEventTargets() {
				for _, tr := range layerTouchRects(l) {
					if g, r, ok := projectTouchRect(l, tr); ok {
						rects[g] = append(rects[g], r)
					}
				}
			}
		}
	}
	for g, rs := range rects {
		for _, r := range rs {
			g.TouchEventHandlerRegion.Unite(r)
		}
	}
	c.touchRects = rects
}

// layerTouchRects lists the hit rects of l. A scroller the compositor
// scrolls contributes its whole scrollable extent, which moves with the
// contents, plus its border box.
func layerTouchRects(l *layer.Layer) []touchRect {
	if a := l.ScrollableArea(); a != nil && a.UsesCompositedScrolling() {
		return []touchRect{
			{rect: l.ScrollingContentsRect(), inContents: true},
			{rect: l.BorderBoxRect()},
		}
	}
	return []touchRect{{rect: l.LocalBoundingBox()}}
}

// projectTouchRect maps a rect in l's space onto the graphics layer that
// paints it.
func projectTouchRect(l *layer.Layer, tr touchRect) (*graphics.Layer, geom.Rect, bool) {
	target := l.EnclosingLayerForPaintInvalidationCrossingFrameBoundaries()
	if target == nil {
		return nil, geom.Rect{}, false
	}
	r := tr.rect.Move(l.OffsetFromAncestor(target))

	if gm := target.GroupedMapping(); gm != nil && target.CompositingState() == layer.PaintsIntoGroupedBacking {
		info, ok := gm.SquashedLayerInfo(target)
		if !ok || gm.SquashingLayer() == nil {
			return nil, geom.Rect{}, false
		}
		return gm.SquashingLayer(), r.Move(info.OffsetFromSquashingLayer), true
	}

	m := target.CompositedLayerMapping()
	if m == nil {
		return nil, geom.Rect{}, false
	}
	if contents := m.ScrollingContentsLayer(); contents != nil && (l != target || tr.inContents) {
		return contents, r.Move(target.ScrollOffset()), true
	}
	return m.MainGraphicsLayer(), r.Move(m.ContentOffsetInCompositingLayer()), true
}

