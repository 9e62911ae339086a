package layer

// CompositingState derives from which mapping, if any, l paints into.
func (l *Layer) CompositingState() CompositingState {
	switch {
	case l.mapping != nil:
		return PaintsIntoOwnBacking
	case l.groupedMapping != nil:
		return PaintsIntoGroupedBacking
	}
	return NotComposited
}

// StyleDeterminedReasons are cached at style time and must agree with a
// fresh computation from the same style.
func (l *Layer) StyleDeterminedReasons() CompositingReasons     { return l.styleReasons }
func (l *Layer) SetStyleDeterminedReasons(r CompositingReasons) { l.styleReasons = r }

func (l *Layer) DirectReasons() CompositingReasons     { return l.directReasons }
func (l *Layer) SetDirectReasons(r CompositingReasons) { l.directReasons = r }

// CompositingReasons is the final reason set from the requirements pass.
func (l *Layer) CompositingReasons() CompositingReasons     { return l.reasons }
func (l *Layer) SetCompositingReasons(r CompositingReasons) { l.reasons = r }

func (l *Layer) SquashingDisallowedReasons() CompositingReasons     { return l.squashingDisallowed }
func (l *Layer) SetSquashingDisallowedReasons(r CompositingReasons) { l.squashingDisallowed = r }

func (l *Layer) NotCompositedReason() NotCompositedReason     { return l.notCompositedReason }
func (l *Layer) SetNotCompositedReason(r NotCompositedReason) { l.notCompositedReason = r }

func (l *Layer) Has3DTransformedDescendant() bool     { return l.has3DTransformedDescendant }
func (l *Layer) SetHas3DTransformedDescendant(v bool) { l.has3DTransformedDescendant = v }

func (l *Layer) HasCompositingDescendant() bool     { return l.hasCompositingDescendant }
func (l *Layer) SetHasCompositingDescendant(v bool) { l.hasCompositingDescendant = v }

// CompositingInputs returns the last values from the inputs pass.
func (l *Layer) CompositingInputs() CompositingInputs {
	assertf(!l.inputsDirty, "compositing inputs of %s read before update", l)
	return l.inputs
}

func (l *Layer) SetCompositingInputs(in CompositingInputs) {
	l.inputs = in
	l.inputsDirty = false
}

func (l *Layer) NeedsCompositingInputsUpdate() bool      { return l.inputsDirty }
func (l *Layer) ChildNeedsCompositingInputsUpdate() bool { return l.childNeedsInputsUpdate }

func (l *Layer) ClearChildNeedsCompositingInputsUpdate() { l.childNeedsInputsUpdate = false }

func (l *Layer) setNeedsCompositingInputsUpdate() {
	l.inputsDirty = true
	for p := l.Parent(); p != nil && !p.childNeedsInputsUpdate; p = p.Parent() {
		p.childNeedsInputsUpdate = true
	}
}

// SetNeedsCompositingInputsUpdate marks l and its ancestors for the next
// inputs pass.
func (l *Layer) SetNeedsCompositingInputsUpdate() { l.setNeedsCompositingInputsUpdate() }

func (l *Layer) CompositedLayerMapping() *CompositedLayerMapping { return l.mapping }
func (l *Layer) GroupedMapping() *CompositedLayerMapping         { return l.groupedMapping }

// SetGroupedMapping records the squashing mapping l paints into. Leaving
// a grouped mapping marks l so the old backing gets repainted.
func (l *Layer) SetGroupedMapping(m *CompositedLayerMapping) {
	if l.groupedMapping == m {
		return
	}
	if l.groupedMapping != nil && m == nil {
		l.lostGroupedMapping = true
	}
	l.groupedMapping = m
}

func (l *Layer) LostGroupedMapping() bool     { return l.lostGroupedMapping }
func (l *Layer) SetLostGroupedMapping(v bool) { l.lostGroupedMapping = v }

// CompositingContainer is the layer l's graphics layer attaches under:
// the parent for normal flow layers, otherwise the stacking context.
func (l *Layer) CompositingContainer() *Layer {
	if l.IsRoot() {
		return nil
	}
	if l.IsNormalFlowOnly() {
		return l.Parent()
	}
	return l.AncestorStackingContext()
}

// EnclosingLayerWithCompositedLayerMapping walks compositing containers
// for the nearest layer with its own backing.
func (l *Layer) EnclosingLayerWithCompositedLayerMapping(includeSelf bool) *Layer {
	cur := l
	if !includeSelf {
		cur = l.CompositingContainer()
	}
	for ; cur != nil; cur = cur.CompositingContainer() {
		if cur.CompositingState() == PaintsIntoOwnBacking {
			return cur
		}
	}
	return nil
}

// IsPaintInvalidationContainer reports a layer that owns the surface its
// content is painted into.
func (l *Layer) IsPaintInvalidationContainer() bool {
	return l.CompositingState() != NotComposited
}

// EnclosingLayerForPaintInvalidation returns the nearest composited layer
// (own or squashed) that paints l.
func (l *Layer) EnclosingLayerForPaintInvalidation() *Layer {
	for cur := l; cur != nil; cur = cur.CompositingContainer() {
		if cur.IsPaintInvalidationContainer() {
			return cur
		}
	}
	return nil
}

// EnclosingLayerForPaintInvalidationCrossingFrameBoundaries continues the
// search into the owning documents when l's document is not composited.
func (l *Layer) EnclosingLayerForPaintInvalidationCrossingFrameBoundaries() *Layer {
	for cur := l; cur != nil; cur = cur.tree.Owner {
		if c := cur.EnclosingLayerForPaintInvalidation(); c != nil {
			return c
		}
	}
	return nil
}
