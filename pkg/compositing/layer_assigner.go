package compositing

import (
	"layercomp/pkg/geom"
	"layercomp/pkg/layer"
)

// CompositingStateTransition is the assignment decided for one layer.
type CompositingStateTransition int

const (
	NoCompositingStateChange CompositingStateTransition = iota
	AllocateOwnCompositedLayerMapping
	RemoveOwnCompositedLayerMapping
	PutInSquashingLayer
	RemoveFromSquashingLayer
)

func (t CompositingStateTransition) String() string {
	switch t {
	case AllocateOwnCompositedLayerMapping:
		return "allocate"
	case RemoveOwnCompositedLayerMapping:
		return "remove"
	case PutInSquashingLayer:
		return "squash"
	case RemoveFromSquashingLayer:
		return "unsquash"
	}
	return "none"
}

// squashingState is threaded through the assignment walk. It tracks the
// most recent backing in paint order, which is the only legal squashing
// target, plus the statistics the sparsity check needs.
type squashingState struct {
	mostRecentMapping *layer.CompositedLayerMapping
	// Set once everything painted by the most recent mapping's owner has
	// been assigned. Squashing into it earlier would put the squashed layer
	// under content that paints before it.
	haveAssignedBackingsToEntireSquashingLayerSubtree bool

	nextSquashedLayerIndex   int
	boundingRect             geom.Rect
	totalAreaOfSquashedRects float64
}

func (s *squashingState) updateSquashingStateForNewMapping(m *layer.CompositedLayerMapping) {
	// The previous mapping will not receive any more squashed layers.
	if s.mostRecentMapping != nil {
		s.mostRecentMapping.FinishAccumulatingSquashingLayers(s.nextSquashedLayerIndex)
	}
	s.nextSquashedLayerIndex = 0
	s.boundingRect = geom.Rect{}
	s.totalAreaOfSquashedRects = 0
	s.mostRecentMapping = m
	s.haveAssignedBackingsToEntireSquashingLayerSubtree = false
}

// LayerAssigner turns reason sets into backings: own mapping, a place in a
// squashing layer, or nothing.
type LayerAssigner struct {
	compositor       *Compositor
	squashingEnabled bool
	sparsity         float64

	layersChanged bool
	// Layers whose backing changed and must be repainted.
	layersNeedingPaintInvalidation []*layer.Layer
}

func newLayerAssigner(c *Compositor) *LayerAssigner {
	return &LayerAssigner{
		compositor:       c,
		squashingEnabled: c.services.squashingEnabled(),
		sparsity:         c.services.sparsityTolerance(),
	}
}

func (a *LayerAssigner) LayersChanged() bool { return a.layersChanged }

func (a *LayerAssigner) Assign(root *layer.Layer) {
	var state squashingState
	a.assignLayersToBackingsInternal(root, &state)
	if state.mostRecentMapping != nil {
		state.mostRecentMapping.FinishAccumulatingSquashingLayers(state.nextSquashedLayerIndex)
	}
}

func (a *LayerAssigner) needsOwnBacking(l *layer.Layer) bool {
	if !a.compositor.canBeComposited(l) {
		return false
	}
	reasons := l.CompositingReasons()
	// With squashing off, what would have been squashed composites alone.
	return reasons.RequiresCompositing() ||
		(!a.squashingEnabled && reasons.RequiresSquashing()) ||
		(a.compositor.staleInCompositingMode() && l.IsRoot())
}

func (a *LayerAssigner) computeCompositedLayerUpdate(l *layer.Layer) CompositingStateTransition {
	update := NoCompositingStateChange
	if a.needsOwnBacking(l) {
		if l.CompositedLayerMapping() == nil {
			update = AllocateOwnCompositedLayerMapping
		}
		return update
	}
	if l.CompositedLayerMapping() != nil {
		update = RemoveOwnCompositedLayerMapping
	}
	if a.squashingEnabled {
		if l.CompositingReasons().RequiresSquashing() && l.Style().IsVisible() {
			// Whether this is a no-op is only known once the squashing
			// target has been walked to.
			update = PutInSquashingLayer
		} else if l.GroupedMapping() != nil || l.LostGroupedMapping() {
			update = RemoveFromSquashingLayer
		}
	}
	return update
}

// sparsityExceeded rejects a squash that would make the shared backing
// mostly empty space.
func (a *LayerAssigner) sparsityExceeded(l *layer.Layer, s *squashingState) bool {
	bounds := l.CompositingInputs().ClippedAbsoluteBoundingBox
	newBounding := s.boundingRect.Unite(bounds)
	newSquashedArea := s.totalAreaOfSquashedRects + bounds.Area()
	return newBounding.Area() > a.sparsity*newSquashedArea
}

// ReasonsPreventingSquashing explains why l cannot join the most recent
// backing. Checks run in a fixed order and the first failure wins.
func (a *LayerAssigner) reasonsPreventingSquashing(l *layer.Layer, s *squashingState) layer.CompositingReasons {
	if !s.haveAssignedBackingsToEntireSquashingLayerSubtree {
		return layer.ReasonSquashingWouldBreakPaintOrder
	}
	switch l.Kind {
	case layer.KindVideo:
		return layer.ReasonSquashingVideoIsDisallowed
	case layer.KindIFrame, layer.KindPlugin:
		return layer.ReasonSquashingRenderPartIsDisallowed
	}
	if l.Reflection() != nil {
		return layer.ReasonSquashingReflectionIsDisallowed
	}
	if a.sparsityExceeded(l, s) {
		return layer.ReasonSquashingSparsityExceeded
	}
	if l.Style().HasBlendMode() {
		return layer.ReasonSquashingBlendingIsDisallowed
	}

	layer.Assert(s.mostRecentMapping != nil, "squashing state has no target")
	squashingLayer := s.mostRecentMapping.Owner()
	in := l.CompositingInputs()
	sin := squashingLayer.CompositingInputs()
	tree := l.Tree()

	if in.ClippingContainer != sin.ClippingContainer &&
		!s.mostRecentMapping.ContainingSquashedLayer(tree.Layer(in.ClippingContainer)) {
		return layer.ReasonSquashingClippingContainerMismatch
	}
	// Composited descendants are clipped by a child containment layer,
	// which a squashed layer does not have.
	if l.ClipsCompositingDescendants() {
		return layer.ReasonSquashedLayerClipsCompositingDescendants
	}
	if scrollsWithRespectTo(l, squashingLayer) {
		return layer.ReasonScrollsWithRespectToSquashingLayer
	}
	if in.OpacityAncestor != sin.OpacityAncestor {
		return layer.ReasonSquashingOpacityAncestorMismatch
	}
	if in.TransformAncestor != sin.TransformAncestor {
		return layer.ReasonSquashingTransformAncestorMismatch
	}
	if l.Style().HasFilter() || in.FilterAncestor != sin.FilterAncestor {
		return layer.ReasonSquashingFilterAncestorMismatch
	}
	if isRunningAcceleratedTransformAnimation(squashingLayer) {
		return layer.ReasonSquashingLayerIsAnimating
	}
	return layer.ReasonNone
}

func (a *LayerAssigner) updateSquashingAssignment(l *layer.Layer, s *squashingState, update CompositingStateTransition) {
	switch update {
	case PutInSquashingLayer:
		layer.Assert(l.CompositedLayerMapping() == nil, "squashed layer cannot have its own mapping")
		layer.Assert(s.mostRecentMapping != nil, "squashing without a target")
		if !s.mostRecentMapping.UpdateSquashingLayerAssignment(l, s.nextSquashedLayerIndex) {
			return
		}
		// The squashed list changed, so its geometry must be recomputed.
		s.mostRecentMapping.SetNeedsGraphicsLayerUpdate(layer.UpdateSubtree)
		l.ClearClipRectsIncludingDescendants()
		a.layersNeedingPaintInvalidation = append(a.layersNeedingPaintInvalidation, l)
		a.layersChanged = true
	case RemoveFromSquashingLayer:
		if gm := l.GroupedMapping(); gm != nil {
			gm.RemoveLayerFromSquashingGraphicsLayer(l)
			gm.SetNeedsGraphicsLayerUpdate(layer.UpdateSubtree)
			l.SetGroupedMapping(nil)
		}
		a.layersNeedingPaintInvalidation = append(a.layersNeedingPaintInvalidation, l)
		a.layersChanged = true
		l.SetLostGroupedMapping(false)
	}
}

func (a *LayerAssigner) assignLayersToBackingsForReflectionLayer(r *layer.Layer) {
	update := NoCompositingStateChange
	switch {
	case a.needsOwnBacking(r) && r.CompositedLayerMapping() == nil:
		update = AllocateOwnCompositedLayerMapping
	case !a.needsOwnBacking(r) && r.CompositedLayerMapping() != nil:
		update = RemoveOwnCompositedLayerMapping
	}
	if a.compositor.allocateOrClearCompositedLayerMapping(r, update) {
		a.layersNeedingPaintInvalidation = append(a.layersNeedingPaintInvalidation, r)
		a.layersChanged = true
	}
}

// assignLayersToBackingsInternal visits layers in paint order: negative
// z children, then the layer's own backing decision takes effect as a
// squashing target, then normal flow and positive z children.
func (a *LayerAssigner) assignLayersToBackingsInternal(l *layer.Layer, s *squashingState) {
	if a.squashingEnabled && l.CompositingReasons().RequiresSquashing() {
		prevent := a.reasonsPreventingSquashing(l, s)
		l.SetSquashingDisallowedReasons(prevent)
		if prevent != layer.ReasonNone {
			l.SetCompositingReasons(l.CompositingReasons() | prevent)
		}
	} else {
		l.SetSquashingDisallowedReasons(layer.ReasonNone)
	}

	update := a.computeCompositedLayerUpdate(l)
	if a.compositor.allocateOrClearCompositedLayerMapping(l, update) {
		a.layersNeedingPaintInvalidation = append(a.layersNeedingPaintInvalidation, l)
		a.layersChanged = true
	}

	if r := l.Reflection(); r != nil {
		a.assignLayersToBackingsForReflectionLayer(r)
	}

	if a.squashingEnabled {
		a.updateSquashingAssignment(l, s, update)
		squashed := update == PutInSquashingLayer ||
			(update == NoCompositingStateChange && l.GroupedMapping() != nil)
		if squashed && l.GroupedMapping() != nil {
			bounds := l.CompositingInputs().ClippedAbsoluteBoundingBox
			s.nextSquashedLayerIndex++
			s.totalAreaOfSquashedRects += bounds.Area()
			s.boundingRect = s.boundingRect.Unite(bounds)
		}
	}

	if l.IsStackingContext() {
		for _, c := range l.NegZOrderList() {
			a.assignLayersToBackingsInternal(c, s)
		}
	}

	// A separately composited layer is now the latest backing in paint
	// order.
	if l.CompositingState() == layer.PaintsIntoOwnBacking {
		layer.Assert(!l.CompositingReasons().RequiresSquashing() || !a.squashingEnabled,
			"a layer with its own backing only has squashable reasons")
		s.updateSquashingStateForNewMapping(l.CompositedLayerMapping())
	}

	for _, c := range l.PaintOrderChildren(layer.NormalFlowChildren | layer.PositiveZOrderChildren) {
		a.assignLayersToBackingsInternal(c, s)
	}

	if s.mostRecentMapping != nil && s.mostRecentMapping.Owner() == l {
		s.haveAssignedBackingsToEntireSquashingLayerSubtree = true
	}
}
