package compositing

import "layercomp/pkg/layer"

// UpdateType says whether a mapping is refreshed even when it did not
// ask for it.
type UpdateType int

const (
	DoNotForceUpdate UpdateType = iota
	ForceUpdate
)

// updateContext tracks the two possible graphics parents of a layer: the
// nearest composited ancestor for normal flow layers and the nearest
// composited stacking context for the rest.
type updateContext struct {
	compositingStackingContext *layer.Layer
	compositingAncestor        *layer.Layer
}

func (c updateContext) compositingContainer(l *layer.Layer) *layer.Layer {
	if l.InTopLayer() {
		return l.Tree().Root().EnclosingLayerWithCompositedLayerMapping(true)
	}
	if l.IsNormalFlowOnly() {
		return c.compositingAncestor
	}
	return c.compositingStackingContext
}

func (c updateContext) forChildren(l *layer.Layer) updateContext {
	next := updateContext{
		compositingStackingContext: c.compositingStackingContext,
		compositingAncestor:        c.compositingContainer(l),
	}
	if l.CompositingState() == layer.PaintsIntoOwnBacking {
		next.compositingAncestor = l
		if l.IsStackingContext() {
			next.compositingStackingContext = l
		}
	}
	return next
}

// GraphicsLayerUpdater pushes configuration and geometry into the
// graphics layers of every mapping. Compositing state must be final for
// the whole tree before it runs, since composited bounds depend on which
// descendants paint into each backing.
type GraphicsLayerUpdater struct {
	scrollbarThickness float64
	needsRebuildTree   bool
	updated            int
}

func (u *GraphicsLayerUpdater) NeedsRebuildTree() bool { return u.needsRebuildTree }

// Update walks the tree from root. Mappings update when forced or when
// they asked for it.
func (u *GraphicsLayerUpdater) Update(root *layer.Layer, updateType UpdateType) {
	u.update(root, updateType, updateContext{})
}

func (u *GraphicsLayerUpdater) update(l *layer.Layer, updateType UpdateType, ctx updateContext) {
	if m := l.CompositedLayerMapping(); m != nil {
		container := ctx.compositingContainer(l)
		layer.Assert(container == l.EnclosingLayerWithCompositedLayerMapping(false),
			"update context disagrees with the compositing container chain")

		if m.UpdateRequiresOwnBackingForCompositingAncestor(container) {
			updateType = ForceUpdate
		}
		if updateType == ForceUpdate || m.NeedsGraphicsLayerUpdate() {
			mctx := layer.MappingContext{CompositingAncestor: container, ScrollbarThickness: u.scrollbarThickness}
			if m.UpdateGraphicsLayerConfiguration(mctx) {
				u.needsRebuildTree = true
			}
			m.UpdateGraphicsLayerGeometry(mctx)
			if r := l.Reflection(); r != nil {
				if rm := r.CompositedLayerMapping(); rm != nil {
					rctx := layer.MappingContext{CompositingAncestor: l, ScrollbarThickness: u.scrollbarThickness}
					if rm.UpdateGraphicsLayerConfiguration(rctx) {
						u.needsRebuildTree = true
					}
					rm.UpdateGraphicsLayerGeometry(rctx)
				}
			}
			u.updated++
		}
		// A subtree update forces every mapping below; a local one never
		// downgrades a force from above.
		if m.PendingUpdateScope() >= layer.UpdateSubtree {
			updateType = ForceUpdate
		}
		m.ClearNeedsGraphicsLayerUpdate()
	}

	childCtx := ctx.forChildren(l)
	for _, c := range l.Children() {
		if c.IsReflection() {
			continue
		}
		u.update(c, updateType, childCtx)
	}
}
