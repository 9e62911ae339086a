package layer

import (
	"layercomp/pkg/geom"
	"layercomp/pkg/graphics"
	"layercomp/pkg/logging"
)

// MappingContext is what a mapping needs from outside its own subtree to
// configure and position its graphics layers.
type MappingContext struct {
	// Nearest ancestor with its own backing along the compositing
	// container chain.
	CompositingAncestor *Layer
	ScrollbarThickness  float64
}

func (m *CompositedLayerMapping) toggle(slot **graphics.Layer, needed bool, name string) bool {
	if needed == (*slot != nil) {
		return false
	}
	if needed {
		g := m.factory.NewLayer(m.owner.String() + " (" + name + ")")
		if g == nil {
			logging.Logger().Warn("graphics layer allocation failed", "layer", m.owner.String(), "role", name)
			return false
		}
		*slot = g
		return true
	}
	(*slot).RemoveFromParent()
	(*slot).RemoveAllChildren()
	*slot = nil
	return true
}

// ClippedByNonAncestorInStackingTree reports a clip on l that its
// compositing ancestor's graphics layers do not already apply.
func (l *Layer) ClippedByNonAncestorInStackingTree(compositingAncestor *Layer) bool {
	cc := l.tree.Layer(l.inputs.ClippingContainer)
	if compositingAncestor == nil || cc == nil {
		return false
	}
	return compositingAncestor != cc && !compositingAncestor.IsDescendantOf(cc)
}

// ClipsCompositingDescendants reports a layer whose clip must be applied
// by a graphics layer because composited content sits inside it.
func (l *Layer) ClipsCompositingDescendants() bool {
	return l.hasCompositingDescendant && (l.HasOverflowClip() || l.HasCSSClip())
}

// UpdateGraphicsLayerConfiguration creates or destroys the auxiliary
// graphics layers the owner needs. It returns true when the set of layers
// changed and the tree must be rebuilt.
func (m *CompositedLayerMapping) UpdateGraphicsLayerConfiguration(ctx MappingContext) bool {
	owner := m.owner
	changed := false

	needsAncestorClip := owner.ClippedByNonAncestorInStackingTree(ctx.CompositingAncestor)
	needsScrolling := owner.needsCompositedScrolling
	needsChildClip := owner.ClipsCompositingDescendants() && !needsScrolling
	needsForeground := owner.hasCompositingDescendant && owner.HasNegativeZOrderChildren()

	if m.toggle(&m.ancestorClippingLayer, needsAncestorClip, "ancestor clip") {
		changed = true
	}
	if m.toggle(&m.childContainmentLayer, needsChildClip, "child containment") {
		changed = true
	}
	if m.updateScrollingLayers(needsScrolling) {
		changed = true
	}
	if m.toggle(&m.foregroundLayer, needsForeground, "foreground") {
		changed = true
	}
	if m.updateSquashingLayers(len(m.squashedLayers) > 0) {
		changed = true
	}
	if m.updateOverflowControlsLayers(ctx.ScrollbarThickness) {
		changed = true
	}

	paints := owner.PaintsContent()
	m.graphicsLayer.DrawsContent = paints && m.foregroundLayer == nil || owner.IsRoot()
	m.graphicsLayer.ContentsOpaque = owner.IsRoot()
	m.graphicsLayer.DebugReasons = owner.reasons.Names()
	if m.foregroundLayer != nil {
		m.foregroundLayer.DrawsContent = paints
	}
	if m.scrollingContentsLayer != nil {
		m.scrollingContentsLayer.DrawsContent = paints || owner.HasVisibleDescendant()
	}

	m.updateScrollParent()
	m.updateClipParent()
	if changed {
		m.updateInternalHierarchy()
	}
	return changed
}

func (m *CompositedLayerMapping) updateScrollingLayers(needed bool) bool {
	if needed == (m.scrollingLayer != nil) {
		return false
	}
	if !needed {
		m.toggle(&m.scrollingContentsLayer, false, "")
		m.toggle(&m.scrollingLayer, false, "")
		return true
	}
	if !m.toggle(&m.scrollingLayer, true, "scrolling container") {
		return false
	}
	if !m.toggle(&m.scrollingContentsLayer, true, "scrolling contents") {
		m.toggle(&m.scrollingLayer, false, "")
		return false
	}
	m.scrollingLayer.Scrollable = true
	return true
}

func (m *CompositedLayerMapping) updateSquashingLayers(needed bool) bool {
	if needed == (m.squashingLayer != nil) {
		return false
	}
	if !needed {
		m.toggle(&m.squashingLayer, false, "")
		m.toggle(&m.squashingContainmentLayer, false, "")
		return true
	}
	if m.toggle(&m.squashingContainmentLayer, true, "squashing containment") &&
		m.toggle(&m.squashingLayer, true, "squashing") {
		m.squashingLayer.DrawsContent = true
		return true
	}
	m.toggle(&m.squashingContainmentLayer, false, "")
	// Without a squashing surface the squashed layers paint into their
	// ancestors' backings.
	m.FinishAccumulatingSquashingLayers(0)
	return false
}

func (m *CompositedLayerMapping) updateOverflowControlsLayers(thickness float64) bool {
	var needH, needV, needCorner bool
	if sa := m.owner.ScrollableArea(); sa != nil && thickness > 0 {
		v, h := sa.ScrollbarRects(thickness)
		needV, needH = !v.IsEmpty(), !h.IsEmpty()
		needCorner = (needV && needH) || sa.HasResizer()
	}
	changed := m.toggle(&m.layerForHorizontalScrollbar, needH, "horizontal scrollbar")
	if m.toggle(&m.layerForVerticalScrollbar, needV, "vertical scrollbar") {
		changed = true
	}
	if m.toggle(&m.layerForScrollCorner, needCorner, "scroll corner") {
		changed = true
	}
	return changed
}

func (m *CompositedLayerMapping) updateScrollParent() {
	var target *graphics.Layer
	if sp := m.owner.tree.Layer(m.owner.inputs.ScrollParent); sp != nil && sp.mapping != nil {
		target = sp.mapping.scrollingLayer
	}
	m.ChildForSuperlayers().ScrollParent = target
}

func (m *CompositedLayerMapping) updateClipParent() {
	var target *graphics.Layer
	if cp := m.owner.tree.Layer(m.owner.inputs.ClipParent); cp != nil && cp.mapping != nil {
		target = cp.mapping.ParentForSublayers()
	}
	m.ChildForSuperlayers().ClipParent = target
}

func (m *CompositedLayerMapping) overflowControlLayers() []*graphics.Layer {
	var out []*graphics.Layer
	for _, g := range []*graphics.Layer{m.layerForHorizontalScrollbar, m.layerForVerticalScrollbar, m.layerForScrollCorner} {
		if g != nil {
			out = append(out, g)
		}
	}
	return out
}

func (m *CompositedLayerMapping) updateInternalHierarchy() {
	if m.ancestorClippingLayer != nil {
		m.ancestorClippingLayer.SetChildren([]*graphics.Layer{m.graphicsLayer})
	}
	if m.squashingContainmentLayer != nil {
		top := m.graphicsLayer
		if m.ancestorClippingLayer != nil {
			top = m.ancestorClippingLayer
		}
		m.squashingContainmentLayer.SetChildren([]*graphics.Layer{top, m.squashingLayer})
	}
	if m.childContainmentLayer != nil || m.scrollingLayer != nil {
		var inner []*graphics.Layer
		if m.childContainmentLayer != nil {
			inner = append(inner, m.childContainmentLayer)
		}
		if m.scrollingLayer != nil {
			m.scrollingLayer.SetChildren([]*graphics.Layer{m.scrollingContentsLayer})
			inner = append(inner, m.scrollingLayer)
		}
		m.graphicsLayer.SetChildren(append(inner, m.overflowControlLayers()...))
	}
}

// SetSublayers attaches the composited children of the owner in paint
// order. Overflow controls always stay on top.
func (m *CompositedLayerMapping) SetSublayers(children []*graphics.Layer) bool {
	parent := m.ParentForSublayers()
	if parent == m.graphicsLayer {
		children = append(children, m.overflowControlLayers()...)
	}
	changed := parent.SetChildren(children)
	if m.squashingContainmentLayer != nil {
		m.updateInternalHierarchy()
	}
	return changed
}

// UpdateGraphicsLayerGeometry positions every graphics layer of the
// mapping relative to its parent graphics layer. All compositing states
// in the owner's subtree must be final.
func (m *CompositedLayerMapping) UpdateGraphicsLayerGeometry(ctx MappingContext) {
	owner := m.owner
	ownerAbs := owner.AbsolutePosition()
	m.compositedBounds = m.computeCompositedBounds()
	m.mainOrigin = ownerAbs.Add(m.compositedBounds.Location())

	var parentOrigin geom.Point
	if a := ctx.CompositingAncestor; a != nil && a.mapping != nil {
		parentOrigin = a.mapping.ParentForSublayersOrigin()
	}

	mainParentOrigin := parentOrigin
	if m.ancestorClippingLayer != nil {
		a := ctx.CompositingAncestor
		clip := owner.BackgroundClipRect(NewClipRectsContext(a, CompositingClipRects))
		if clip.IsInfinite() {
			clip = m.compositedBounds.Move(ownerAbs)
		} else {
			clip = clip.Move(a.AbsolutePosition())
		}
		m.ancestorClippingLayer.Position = clip.Location().Sub(parentOrigin)
		m.ancestorClippingLayer.Size = clip.Size()
		m.ancestorClippingLayer.MasksToBounds = true
		mainParentOrigin = clip.Location()
	}

	g := m.graphicsLayer
	g.Position = m.mainOrigin.Sub(mainParentOrigin)
	g.Size = m.compositedBounds.Size()
	g.OffsetFromRenderer = m.compositedBounds.Location()

	ownerInMain := ownerAbs.Sub(m.mainOrigin)
	if c := m.childContainmentLayer; c != nil {
		clip := owner.BorderBoxRect()
		if owner.HasCSSClip() {
			clip = clip.Intersect(owner.CSSClipRect(geom.Point{}))
		}
		c.Position = ownerInMain.Add(clip.Location())
		c.Size = clip.Size()
		c.MasksToBounds = true
	}
	if s := m.scrollingLayer; s != nil {
		s.Position = ownerInMain
		s.Size = owner.size
		s.MasksToBounds = true
		s.ScrollPosition = owner.scrollOffset
		m.scrollingContentsLayer.Position = geom.Point{}
		m.scrollingContentsLayer.Size = owner.contentSize
		m.scrollingContentsLayer.OffsetFromRenderer = owner.scrollOffset.Neg()
	}
	if f := m.foregroundLayer; f != nil {
		f.Position = geom.Point{}
		f.Size = g.Size
		f.OffsetFromRenderer = g.OffsetFromRenderer
	}
	if m.squashingLayer != nil {
		m.updateSquashingLayerGeometry(parentOrigin)
	}
	m.updateOverflowControlsGeometry(ownerInMain, ctx.ScrollbarThickness)

	constraint := ComputePositionConstraint(owner)
	for _, gl := range m.allLayers() {
		gl.Constraint = graphics.PositionConstraint{}
	}
	m.ChildForSuperlayers().Constraint = constraint
}

func (m *CompositedLayerMapping) updateSquashingLayerGeometry(parentOrigin geom.Point) {
	var union geom.Rect
	boxes := make([]geom.Rect, len(m.squashedLayers))
	for i, sq := range m.squashedLayers {
		boxes[i] = sq.Layer.AbsoluteBoundingBox()
		union = union.Unite(boxes[i])
	}
	m.squashingOrigin = union.Location()
	for i := range m.squashedLayers {
		sq := &m.squashedLayers[i]
		sq.OffsetFromSquashingLayer = sq.Layer.AbsolutePosition().Sub(m.squashingOrigin)
		sq.CompositedBounds = boxes[i].Move(m.squashingOrigin.Neg())
	}
	m.squashingContainmentLayer.Position = geom.Point{}
	m.squashingContainmentLayer.Size = geom.Size{}
	m.squashingLayer.Position = m.squashingOrigin.Sub(parentOrigin)
	m.squashingLayer.Size = union.Size()
}

func (m *CompositedLayerMapping) updateOverflowControlsGeometry(ownerInMain geom.Point, thickness float64) {
	sa := m.owner.ScrollableArea()
	if sa == nil {
		return
	}
	v, h := sa.ScrollbarRects(thickness)
	place := func(g *graphics.Layer, r geom.Rect) {
		if g == nil {
			return
		}
		g.Position = ownerInMain.Add(r.Location())
		g.Size = r.Size()
		g.DrawsContent = true
	}
	place(m.layerForVerticalScrollbar, v)
	place(m.layerForHorizontalScrollbar, h)
	corner := geom.Rect{X: m.owner.size.W - thickness, Y: m.owner.size.H - thickness, W: thickness, H: thickness}
	place(m.layerForScrollCorner, corner)
}

// SquashingOrigin is the document-space origin of the squashing layer.
func (m *CompositedLayerMapping) SquashingOrigin() geom.Point { return m.squashingOrigin }

// computeCompositedBounds unions the owner's box with every descendant
// that paints into this backing, in the owner's space.
func (m *CompositedLayerMapping) computeCompositedBounds() geom.Rect {
	owner := m.owner
	if owner.IsRoot() {
		return geom.NewRect(geom.Point{}, owner.contentSize)
	}
	bounds := owner.LocalBoundingBox()
	if owner.HasOverflowClip() {
		return bounds
	}
	ownerAbs := owner.AbsolutePosition()
	var visit func(l *Layer)
	visit = func(l *Layer) {
		for _, c := range l.Children() {
			if c.IsReflection() {
				continue
			}
			if c.CompositingState() == NotComposited && c.IsSelfPainting() &&
				c.EnclosingLayerForPaintInvalidation() == owner {
				bounds = bounds.Unite(c.LocalBoundingBox().Move(c.AbsolutePosition().Sub(ownerAbs)))
			}
			if !c.HasOverflowClip() {
				visit(c)
			}
		}
	}
	visit(owner)
	return bounds
}

// ComputePositionConstraint finds the viewport-fixed layer, if any, that
// the backing containing l moves with.
func ComputePositionConstraint(l *Layer) graphics.PositionConstraint {
	for cur := l; cur != nil; cur = cur.Parent() {
		if cur != l && cur.mapping != nil {
			break
		}
		if cur.IsRootFixed() {
			off := cur.style.GetPositionOffset()
			return graphics.PositionConstraint{
				Fixed:  true,
				Right:  off.HasRight && !off.HasLeft,
				Bottom: off.HasBottom && !off.HasTop,
			}
		}
	}
	return graphics.PositionConstraint{}
}
