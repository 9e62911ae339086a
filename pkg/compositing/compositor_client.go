package compositing

import (
	"layercomp/pkg/layer"
	"layercomp/pkg/style"
)

var _ layer.Client = (*Compositor)(nil)

func (c *Compositor) LayerAdded(l *layer.Layer) {
	l.SetStyleDeterminedReasons(c.finder.PotentialReasonsFromStyle(l))
	c.SetNeedsCompositingUpdate(CompositingUpdateAfterCompositingInputChange)
}

// LayerWillBeRemoved releases whatever backing l holds. The graphics
// layers it painted into must be rebuilt without it.
func (c *Compositor) LayerWillBeRemoved(l *layer.Layer) {
	if container := l.EnclosingLayerWithCompositedLayerMapping(false); container != nil {
		container.CompositedLayerMapping().SetNeedsGraphicsLayerUpdate(layer.UpdateSubtree)
	}
	if gm := l.GroupedMapping(); gm != nil {
		gm.RemoveLayerFromSquashingGraphicsLayer(l)
		gm.SetNeedsGraphicsLayerUpdate(layer.UpdateSubtree)
		l.SetGroupedMapping(nil)
	}
	if l.CompositedLayerMapping() != nil {
		if l.Style().GetPosition() == style.PositionFixed && c.observer != nil {
			c.observer.FrameViewFixedObjectsDidChange(c.tree)
		}
		l.ClearCompositedLayerMapping()
	}
	if l.Kind == layer.KindIFrame {
		c.RemoveChildCompositor(l)
	}
	c.SetNeedsCompositingUpdate(CompositingUpdateRebuildTree)
}

// StyleDidChange refreshes the cached style reasons.
func (c *Compositor) StyleDidChange(l *layer.Layer, old *style.Style) {
	reasons := c.finder.PotentialReasonsFromStyle(l)
	if reasons != l.StyleDeterminedReasons() {
		l.SetStyleDeterminedReasons(reasons)
	}
	if m := l.CompositedLayerMapping(); m != nil {
		m.SetNeedsGraphicsLayerUpdate(layer.UpdateSubtree)
	}
	if gm := l.GroupedMapping(); gm != nil {
		gm.SetNeedsGraphicsLayerUpdate(layer.UpdateSubtree)
	}
	c.SetNeedsCompositingUpdate(CompositingUpdateAfterCompositingInputChange)
	if c.observer != nil && (old.GetPosition() == style.PositionFixed) != (l.Style().GetPosition() == style.PositionFixed) {
		c.observer.FrameViewFixedObjectsDidChange(c.tree)
	}
}

// GeometryDidChange can change overlap, so reasons are recomputed.
func (c *Compositor) GeometryDidChange(l *layer.Layer) {
	c.markEnclosingMapping(l)
	c.SetNeedsCompositingUpdate(CompositingUpdateAfterCompositingInputChange)
}

// ScrollOffsetDidChange only needs geometry when the compositor scrolls
// the area itself. Otherwise the scrolled layers moved relative to
// everything else.
func (c *Compositor) ScrollOffsetDidChange(l *layer.Layer) {
	if l.IsRoot() {
		c.frameViewDidScroll()
		c.SetNeedsCompositingUpdate(CompositingUpdateAfterCompositingInputChange)
		return
	}
	if a := l.ScrollableArea(); a != nil && a.UsesCompositedScrolling() {
		l.CompositedLayerMapping().SetNeedsGraphicsLayerUpdate(layer.UpdateSubtree)
		c.SetNeedsCompositingUpdate(CompositingUpdateAfterGeometryChange)
		return
	}
	c.markEnclosingMapping(l)
	c.SetNeedsCompositingUpdate(CompositingUpdateAfterCompositingInputChange)
}

func (c *Compositor) markEnclosingMapping(l *layer.Layer) {
	if gm := l.GroupedMapping(); gm != nil {
		gm.SetNeedsGraphicsLayerUpdate(layer.UpdateSubtree)
	}
	if e := l.EnclosingLayerWithCompositedLayerMapping(true); e != nil {
		e.CompositedLayerMapping().SetNeedsGraphicsLayerUpdate(layer.UpdateSubtree)
	}
}
