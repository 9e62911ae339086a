package layer

import (
	"layercomp/pkg/geom"
	"layercomp/pkg/graphics"
	"layercomp/pkg/logging"
)

// GraphicsLayerUpdateScope says how much of a mapping needs refreshing.
type GraphicsLayerUpdateScope int

const (
	UpdateNone GraphicsLayerUpdateScope = iota
	// Only this mapping.
	UpdateLocal
	// This mapping and every mapping below it.
	UpdateSubtree
)

// SquashedLayer is one layer painting into a mapping's squashing layer.
type SquashedLayer struct {
	Layer *Layer
	// Origin of the layer's border box relative to the squashing layer.
	OffsetFromSquashingLayer geom.Point
	CompositedBounds         geom.Rect
}

// CompositedLayerMapping owns the graphics layers backing one layer, plus
// any layers squashed into it.
type CompositedLayerMapping struct {
	owner   *Layer
	factory graphics.Factory

	ancestorClippingLayer  *graphics.Layer
	graphicsLayer          *graphics.Layer
	childContainmentLayer  *graphics.Layer
	scrollingLayer         *graphics.Layer
	scrollingContentsLayer *graphics.Layer
	foregroundLayer        *graphics.Layer

	squashingContainmentLayer *graphics.Layer
	squashingLayer            *graphics.Layer
	squashedLayers            []SquashedLayer
	squashingOrigin           geom.Point

	layerForHorizontalScrollbar *graphics.Layer
	layerForVerticalScrollbar   *graphics.Layer
	layerForScrollCorner        *graphics.Layer

	// In the owner's border-box space.
	compositedBounds geom.Rect
	// Document-space origin of graphicsLayer.
	mainOrigin geom.Point

	pendingUpdateScope GraphicsLayerUpdateScope

	requiresOwnBackingForAncestor bool
}

// NewCompositedLayerMapping allocates the main graphics layer for owner.
// It returns nil when the platform refuses the allocation.
func NewCompositedLayerMapping(owner *Layer, factory graphics.Factory) *CompositedLayerMapping {
	main := factory.NewLayer(owner.String())
	if main == nil {
		logging.Logger().Warn("graphics layer allocation failed", "layer", owner.String())
		return nil
	}
	return &CompositedLayerMapping{
		owner:              owner,
		factory:            factory,
		graphicsLayer:      main,
		pendingUpdateScope: UpdateSubtree,
	}
}

// EnsureCompositedLayerMapping gives l its own backing. It returns false
// if the backing could not be allocated.
func (l *Layer) EnsureCompositedLayerMapping(factory graphics.Factory) bool {
	if l.mapping != nil {
		return true
	}
	m := NewCompositedLayerMapping(l, factory)
	if m == nil {
		return false
	}
	l.mapping = m
	l.ClearClipRectsIncludingDescendantsOfType(CompositingClipRects)
	return true
}

// ClearCompositedLayerMapping destroys l's backing.
func (l *Layer) ClearCompositedLayerMapping() {
	if l.mapping == nil {
		return
	}
	l.mapping.destroy()
	l.mapping = nil
	l.ClearClipRectsIncludingDescendantsOfType(CompositingClipRects)
}

func (m *CompositedLayerMapping) destroy() {
	for _, sq := range m.squashedLayers {
		if sq.Layer.groupedMapping == m {
			sq.Layer.SetGroupedMapping(nil)
		}
	}
	m.squashedLayers = nil
	for _, g := range m.allLayers() {
		g.RemoveFromParent()
		g.RemoveAllChildren()
	}
}

func (m *CompositedLayerMapping) allLayers() []*graphics.Layer {
	var out []*graphics.Layer
	for _, g := range []*graphics.Layer{
		m.ancestorClippingLayer, m.graphicsLayer, m.childContainmentLayer,
		m.scrollingLayer, m.scrollingContentsLayer, m.foregroundLayer,
		m.squashingContainmentLayer, m.squashingLayer,
		m.layerForHorizontalScrollbar, m.layerForVerticalScrollbar, m.layerForScrollCorner,
	} {
		if g != nil {
			out = append(out, g)
		}
	}
	return out
}

func (m *CompositedLayerMapping) Owner() *Layer { return m.owner }

func (m *CompositedLayerMapping) MainGraphicsLayer() *graphics.Layer      { return m.graphicsLayer }
func (m *CompositedLayerMapping) AncestorClippingLayer() *graphics.Layer  { return m.ancestorClippingLayer }
func (m *CompositedLayerMapping) ClippingLayer() *graphics.Layer          { return m.childContainmentLayer }
func (m *CompositedLayerMapping) ScrollingLayer() *graphics.Layer         { return m.scrollingLayer }
func (m *CompositedLayerMapping) ScrollingContentsLayer() *graphics.Layer { return m.scrollingContentsLayer }
func (m *CompositedLayerMapping) ForegroundLayer() *graphics.Layer        { return m.foregroundLayer }
func (m *CompositedLayerMapping) SquashingLayer() *graphics.Layer         { return m.squashingLayer }

func (m *CompositedLayerMapping) SquashingContainmentLayer() *graphics.Layer {
	return m.squashingContainmentLayer
}

func (m *CompositedLayerMapping) LayerForHorizontalScrollbar() *graphics.Layer {
	return m.layerForHorizontalScrollbar
}

func (m *CompositedLayerMapping) LayerForVerticalScrollbar() *graphics.Layer {
	return m.layerForVerticalScrollbar
}

func (m *CompositedLayerMapping) LayerForScrollCorner() *graphics.Layer {
	return m.layerForScrollCorner
}

// ChildForSuperlayers is the topmost layer of this mapping, the one that
// gets parented into the compositing ancestor.
func (m *CompositedLayerMapping) ChildForSuperlayers() *graphics.Layer {
	if m.squashingContainmentLayer != nil {
		return m.squashingContainmentLayer
	}
	if m.ancestorClippingLayer != nil {
		return m.ancestorClippingLayer
	}
	return m.graphicsLayer
}

// ParentForSublayers is where composited descendants are attached.
func (m *CompositedLayerMapping) ParentForSublayers() *graphics.Layer {
	if m.scrollingContentsLayer != nil {
		return m.scrollingContentsLayer
	}
	if m.childContainmentLayer != nil {
		return m.childContainmentLayer
	}
	return m.graphicsLayer
}

// ParentForSublayersOrigin is the document-space origin of
// ParentForSublayers.
func (m *CompositedLayerMapping) ParentForSublayersOrigin() geom.Point {
	if m.scrollingContentsLayer != nil {
		return m.owner.AbsolutePosition().Sub(m.owner.scrollOffset)
	}
	if m.childContainmentLayer != nil {
		origin := m.owner.AbsolutePosition()
		if m.owner.HasCSSClip() {
			clip := m.owner.BorderBoxRect().Intersect(m.owner.CSSClipRect(geom.Point{}))
			origin = origin.Add(clip.Location())
		}
		return origin
	}
	return m.mainOrigin
}

func (m *CompositedLayerMapping) CompositedBounds() geom.Rect { return m.compositedBounds }

// ContentOffsetInCompositingLayer maps the owner's border-box origin into
// the main graphics layer.
func (m *CompositedLayerMapping) ContentOffsetInCompositingLayer() geom.Point {
	return m.compositedBounds.Location().Neg()
}

func (m *CompositedLayerMapping) SetNeedsGraphicsLayerUpdate(scope GraphicsLayerUpdateScope) {
	m.pendingUpdateScope = max(m.pendingUpdateScope, scope)
}

func (m *CompositedLayerMapping) PendingUpdateScope() GraphicsLayerUpdateScope {
	return m.pendingUpdateScope
}

func (m *CompositedLayerMapping) NeedsGraphicsLayerUpdate() bool {
	return m.pendingUpdateScope > UpdateNone
}

func (m *CompositedLayerMapping) ClearNeedsGraphicsLayerUpdate() {
	m.pendingUpdateScope = UpdateNone
}

// SquashedLayers lists the layers painting into the squashing layer in
// paint order.
func (m *CompositedLayerMapping) SquashedLayers() []SquashedLayer { return m.squashedLayers }

func (m *CompositedLayerMapping) HasSquashedLayers() bool { return len(m.squashedLayers) > 0 }

// UpdateSquashingLayerAssignment places l at index in the squashed list.
// It returns true if the list changed.
func (m *CompositedLayerMapping) UpdateSquashingLayerAssignment(l *Layer, index int) bool {
	assertf(index <= len(m.squashedLayers), "squashing index %d past end %d", index, len(m.squashedLayers))
	if index < len(m.squashedLayers) {
		if m.squashedLayers[index].Layer == l {
			return false
		}
		for i := index + 1; i < len(m.squashedLayers); i++ {
			if m.squashedLayers[i].Layer == l {
				m.squashedLayers = append(m.squashedLayers[:i:i], m.squashedLayers[i+1:]...)
				break
			}
		}
		m.squashedLayers = append(m.squashedLayers[:index:index],
			append([]SquashedLayer{{Layer: l}}, m.squashedLayers[index:]...)...)
	} else {
		m.squashedLayers = append(m.squashedLayers, SquashedLayer{Layer: l})
	}
	if old := l.groupedMapping; old != nil && old != m {
		old.RemoveLayerFromSquashingGraphicsLayer(l)
		old.SetNeedsGraphicsLayerUpdate(UpdateLocal)
	}
	l.SetGroupedMapping(m)
	return true
}

// RemoveLayerFromSquashingGraphicsLayer drops l from the squashed list.
func (m *CompositedLayerMapping) RemoveLayerFromSquashingGraphicsLayer(l *Layer) {
	for i, sq := range m.squashedLayers {
		if sq.Layer == l {
			m.squashedLayers = append(m.squashedLayers[:i:i], m.squashedLayers[i+1:]...)
			return
		}
	}
}

// FinishAccumulatingSquashingLayers truncates the squashed list to the
// layers assigned this update. Layers past the end lose their backing.
func (m *CompositedLayerMapping) FinishAccumulatingSquashingLayers(next int) bool {
	if next >= len(m.squashedLayers) {
		return false
	}
	for _, sq := range m.squashedLayers[next:] {
		if sq.Layer.groupedMapping == m {
			sq.Layer.SetGroupedMapping(nil)
		}
	}
	m.squashedLayers = m.squashedLayers[:next]
	return true
}

// SquashedLayerIndex returns l's position in the squashed list, or -1.
func (m *CompositedLayerMapping) SquashedLayerIndex(l *Layer) int {
	for i, sq := range m.squashedLayers {
		if sq.Layer == l {
			return i
		}
	}
	return -1
}

// SquashedLayerInfo returns the squashing data recorded for l.
func (m *CompositedLayerMapping) SquashedLayerInfo(l *Layer) (SquashedLayer, bool) {
	if i := m.SquashedLayerIndex(l); i >= 0 {
		return m.squashedLayers[i], true
	}
	return SquashedLayer{}, false
}

// ContainingSquashedLayer reports whether l is one of the layers squashed
// into this mapping.
func (m *CompositedLayerMapping) ContainingSquashedLayer(l *Layer) bool {
	return l != nil && m.SquashedLayerIndex(l) >= 0
}

// UpdateRequiresOwnBackingForCompositingAncestor records whether ancestor
// composites because of its descendants. A change forces the subtree of
// graphics layers to be refreshed.
func (m *CompositedLayerMapping) UpdateRequiresOwnBackingForCompositingAncestor(ancestor *Layer) bool {
	prev := m.requiresOwnBackingForAncestor
	m.requiresOwnBackingForAncestor = ancestor != nil &&
		ancestor.reasons&(ComboCompositedDescendants|Combo3DDescendants|ReasonNegativeZIndexChildren) != 0
	return prev != m.requiresOwnBackingForAncestor
}
