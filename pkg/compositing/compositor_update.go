package compositing

import (
	"cmp"
	"slices"

	"layercomp/pkg/geom"
	"layercomp/pkg/graphics"
	"layercomp/pkg/layer"
	"layercomp/pkg/logging"
)

// UpdateIfNeededRecursive brings this document and every hosted document
// up to date. Hosted documents go first so their compositing mode is known
// when the iframe layers hosting them are examined.
func (c *Compositor) UpdateIfNeededRecursive() {
	owners := make([]*layer.Layer, 0, len(c.children))
	for owner := range c.children {
		owners = append(owners, owner)
	}
	slices.SortFunc(owners, func(a, b *layer.Layer) int { return cmp.Compare(a.ID(), b.ID()) })
	for _, owner := range owners {
		c.children[owner].UpdateIfNeededRecursive()
	}
	c.updateIfNeeded()
}

func (c *Compositor) updateIfNeeded() {
	t := c.tree
	layer.Assert(t.Lifecycle() >= layer.LifecycleLayoutClean,
		"compositing update cannot run before layout is clean")

	t.AdvanceTo(layer.LifecycleInCompositingUpdate)
	defer t.AdvanceTo(layer.LifecycleCompositingClean)

	if !c.services.Settings.AcceleratedCompositing {
		c.pendingUpdateType = CompositingUpdateNone
		c.lastUpdate = UpdateStats{}
		return
	}

	root := t.Root()
	c.updateCompositedScrolling()

	updateType := c.pendingUpdateType
	c.pendingUpdateType = CompositingUpdateNone
	stats := UpdateStats{Type: updateType}
	if updateType == CompositingUpdateNone {
		c.lastUpdate = stats
		return
	}

	root.UpdateLayerListsRecursive()
	t.ForbidLayerListMutation(true)
	defer t.ForbidLayerListMutation(false)

	if updateType >= CompositingUpdateAfterCompositingInputChange {
		updateCompositingInputs(root)

		req := requirementsUpdater{
			finder:                    c.finder,
			preferLCDText:             c.services.Settings.PreferCompositingToLCDText,
			canBeComposited:           c.canBeComposited,
			rootShouldAlwaysComposite: c.RootShouldAlwaysComposite(),
		}
		req.update(root)
		if req.compositingModeOff {
			c.setCompositingModeEnabled(false)
		}
		stats.Composited = req.composited

		assigner := newLayerAssigner(c)
		assigner.Assign(root)
		for _, l := range assigner.layersNeedingPaintInvalidation {
			l.ClearClipRectsIncludingDescendantsOfType(layer.PaintingClipRects)
		}
		if assigner.LayersChanged() {
			stats.LayersChanged = true
			updateType = max(updateType, CompositingUpdateRebuildTree)
		}
	}

	updater := GraphicsLayerUpdater{scrollbarThickness: c.services.scrollbarThickness()}
	updater.Update(root, DoNotForceUpdate)
	stats.MappingUpdates = updater.updated
	if updater.NeedsRebuildTree() {
		updateType = max(updateType, CompositingUpdateRebuildTree)
	}

	if updateType >= CompositingUpdateRebuildTree && c.compositing {
		var childList []*graphics.Layer
		b := treeBuilder{frameContentLayer: c.frameContentLayer}
		b.rebuild(root, &childList)
		c.rootContentLayer.SetChildren(childList)
		stats.RebuiltTree = true
	}

	c.updateRootLayerPosition()
	c.updateFrameOverflowControlsLayers()

	stats.Squashed = countSquashed(root)
	c.lastUpdate = stats

	if c.observer != nil {
		if c.rootLayerChanged {
			c.observer.FrameViewRootLayerDidChange(t)
		}
		if stats.LayersChanged || stats.RebuiltTree {
			c.observer.TouchEventTargetRectsDidChange(t)
		}
	}
	c.rootLayerChanged = false

	logging.Logger().Debug("compositing update",
		"document", c.documentName(),
		"type", updateType.String(),
		"composited", stats.Composited,
		"squashed", stats.Squashed,
		"mappingUpdates", stats.MappingUpdates,
		"rebuiltTree", stats.RebuiltTree)
}

// updateCompositedScrolling settles which scrollers get scrolling layers.
// It runs before the layer lists are rebuilt, since a composited scroller
// leaves normal flow.
func (c *Compositor) updateCompositedScrolling() {
	c.tree.Walk(func(l *layer.Layer) bool {
		needs := c.finder.NeedsCompositedScrolling(l)
		if needs == l.NeedsCompositedScrolling() {
			return true
		}
		l.SetNeedsCompositedScrolling(needs)
		l.SetNeedsCompositingInputsUpdate()
		if m := l.CompositedLayerMapping(); m != nil {
			m.SetNeedsGraphicsLayerUpdate(layer.UpdateSubtree)
		}
		c.SetNeedsCompositingUpdate(CompositingUpdateAfterCompositingInputChange)
		return true
	})
}

// updateRootLayerPosition sizes the root hierarchy to the viewport and
// applies the frame scroll offset.
func (c *Compositor) updateRootLayerPosition() {
	if c.rootContentLayer == nil {
		return
	}
	root := c.tree.Root()
	c.overflowControlsHost.Size = root.Size()
	c.containerLayer.Size = root.Size()
	c.scrollLayer.Size = root.Size()
	c.frameViewDidScroll()
	c.rootContentLayer.Size = root.ContentSize()
}

// frameViewDidScroll hands the frame scroll offset to the scroll layer so
// the content scrolls on the compositor. The root content layer stays at
// the scroll layer's origin.
func (c *Compositor) frameViewDidScroll() {
	if c.scrollLayer == nil {
		return
	}
	c.scrollLayer.ScrollPosition = c.tree.Root().ScrollOffset()
	c.scrollLayer.Position = geom.Point{}
	c.rootContentLayer.Position = geom.Point{}
}

// updateFrameOverflowControlsLayers gives the frame's scrollbars their own
// layers on top of the scrolled content. A scrollbar layer the platform
// refuses is painted with the content instead.
func (c *Compositor) updateFrameOverflowControlsLayers() {
	if c.overflowControlsHost == nil {
		c.destroyFrameScrollbarLayers()
		return
	}
	thickness := c.services.scrollbarThickness()
	vertical, horizontal := frameScrollbarRects(c.tree.Root(), thickness)
	var corner geom.Rect
	if !vertical.IsEmpty() && !horizontal.IsEmpty() {
		corner = geom.Rect{X: vertical.X, Y: horizontal.Y, W: thickness, H: thickness}
	}
	c.layerForHorizontalScrollbar = c.ensureFrameControlLayer(c.layerForHorizontalScrollbar, "frame horizontal scrollbar", horizontal)
	c.layerForVerticalScrollbar = c.ensureFrameControlLayer(c.layerForVerticalScrollbar, "frame vertical scrollbar", vertical)
	c.layerForScrollCorner = c.ensureFrameControlLayer(c.layerForScrollCorner, "frame scroll corner", corner)
}

func (c *Compositor) ensureFrameControlLayer(g *graphics.Layer, name string, r geom.Rect) *graphics.Layer {
	if r.IsEmpty() {
		if g != nil {
			g.RemoveFromParent()
		}
		return nil
	}
	if g == nil {
		g = c.services.Factory.NewLayer(name)
		if g == nil {
			logging.Logger().Warn("scrollbar layer allocation failed", "document", c.documentName(), "layer", name)
			return nil
		}
		c.overflowControlsHost.AddChild(g)
	}
	g.Position = r.Location()
	g.Size = r.Size()
	g.DrawsContent = true
	return g
}

func (c *Compositor) destroyFrameScrollbarLayers() {
	for _, g := range []*graphics.Layer{c.layerForHorizontalScrollbar, c.layerForVerticalScrollbar, c.layerForScrollCorner} {
		if g != nil {
			g.RemoveFromParent()
		}
	}
	c.layerForHorizontalScrollbar, c.layerForVerticalScrollbar, c.layerForScrollCorner = nil, nil, nil
}

// frameScrollbarRects places the viewport scrollbars along the right and
// bottom edges. An axis that does not overflow gets an empty rect.
func frameScrollbarRects(root *layer.Layer, thickness float64) (vertical, horizontal geom.Rect) {
	if thickness <= 0 {
		return
	}
	size, content := root.Size(), root.ContentSize()
	if content.H > size.H {
		vertical = geom.Rect{X: size.W - thickness, W: thickness, H: size.H}
	}
	if content.W > size.W {
		horizontal = geom.Rect{Y: size.H - thickness, W: size.W, H: thickness}
	}
	return vertical, horizontal
}

func countSquashed(root *layer.Layer) int {
	n := 0
	root.Tree().Walk(func(l *layer.Layer) bool {
		if l.GroupedMapping() != nil {
			n++
		}
		return true
	})
	return n
}
