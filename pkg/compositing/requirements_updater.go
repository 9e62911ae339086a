package compositing

import (
	"layercomp/pkg/geom"
	"layercomp/pkg/layer"
	"layercomp/pkg/style"
)

type recursionData struct {
	compositingAncestor                       *layer.Layer
	subtreeIsCompositing                      bool
	hasUnisolatedCompositedBlendingDescendant bool
	testingOverlap                            bool
}

// requirementsUpdater walks the stacking tree in paint order and settles
// the full reason set of every layer: direct reasons, overlap with
// composited layers painted earlier and reasons that come from composited
// descendants.
type requirementsUpdater struct {
	finder                    *ReasonFinder
	preferLCDText             bool
	canBeComposited           func(*layer.Layer) bool
	rootShouldAlwaysComposite bool

	// Set when the root decides nothing needs compositing.
	compositingModeOff bool
	composited         int
}

func (u *requirementsUpdater) update(root *layer.Layer) {
	overlap := NewOverlapMap()
	rd := recursionData{compositingAncestor: root, testingOverlap: true}
	var has3D bool
	var unclipped []*layer.Layer
	var bounds geom.Rect
	u.updateRecursive(root, overlap, &rd, &has3D, &unclipped, &bounds)
}

func (u *requirementsUpdater) updateRecursive(l *layer.Layer, overlap *OverlapMap, current *recursionData,
	descendantHas3D *bool, unclipped *[]*layer.Layer, absDescendantBounds *geom.Rect) {
	direct := u.finder.DirectReasons(l)
	l.SetDirectReasons(direct)
	canComposite := u.canBeComposited(l)

	var reasons layer.CompositingReasons
	if canComposite {
		reasons |= direct
	}

	// Without overlap testing anything after a composited layer has to be
	// assumed to overlap it.
	overlapReason := layer.ReasonNone
	if current.subtreeIsCompositing {
		overlapReason = layer.ReasonAssumedOverlap
	}

	if u.preferLCDText {
		kept := make([]*layer.Layer, 0, len(*unclipped))
		for _, d := range *unclipped {
			if d.Container() == l {
				continue
			}
			if scrollsWithRespectTo(l, d) {
				reasons |= layer.ReasonOutOfFlowClipping
			}
			kept = append(kept, d)
		}
		if reasons&layer.ReasonOutOfFlowClipping != 0 {
			kept = append(kept, l)
		}
		*unclipped = kept
	}

	absBounds := l.CompositingInputs().ClippedAbsoluteBoundingBox
	*absDescendantBounds = absBounds
	if current.testingOverlap && !direct.RequiresCompositingOrSquashing() {
		overlapReason = layer.ReasonNone
		if overlap.OverlapsLayers(absBounds) {
			overlapReason = layer.ReasonOverlap
		}
	}
	reasons |= overlapReason

	child := *current
	child.subtreeIsCompositing = false
	child.hasUnisolatedCompositedBlendingDescendant = false

	willBeCompositedOrSquashed := canComposite && reasons.RequiresCompositingOrSquashing()
	if willBeCompositedOrSquashed {
		current.subtreeIsCompositing = true
		child.compositingAncestor = l
		// Children paint into this backing until one of them composites,
		// so nothing behind l matters to them.
		overlap.BeginNewOverlapTestingContext()
		overlap.Add(l, absBounds)
		child.testingOverlap = true
	}

	anyDescendantHas3D := false
	willHaveForegroundLayer := false
	if l.IsStackingContext() {
		for _, c := range l.NegZOrderList() {
			var childBounds geom.Rect
			u.updateRecursive(c, overlap, &child, &anyDescendantHas3D, unclipped, &childBounds)
			*absDescendantBounds = absDescendantBounds.Unite(childBounds)
			if !child.subtreeIsCompositing {
				continue
			}
			// A composited negative-z child must paint under l's content,
			// so l needs a backing with a separate foreground layer.
			reasons |= layer.ReasonNegativeZIndexChildren
			if !willBeCompositedOrSquashed {
				child.compositingAncestor = l
				overlap.BeginNewOverlapTestingContext()
				willBeCompositedOrSquashed = true
				willHaveForegroundLayer = true

				overlap.BeginNewOverlapTestingContext()
				overlap.Add(c, c.CompositingInputs().ClippedAbsoluteBoundingBox)
				overlap.FinishCurrentOverlapTestingContext()
			}
		}
	}

	if willHaveForegroundLayer {
		// The foreground layer is a new backing for everything that
		// follows, so the negative-z context can be closed.
		overlap.FinishCurrentOverlapTestingContext()
		overlap.BeginNewOverlapTestingContext()
		child.testingOverlap = true
	}

	for _, c := range l.PaintOrderChildren(layer.NormalFlowChildren | layer.PositiveZOrderChildren) {
		var childBounds geom.Rect
		u.updateRecursive(c, overlap, &child, &anyDescendantHas3D, unclipped, &childBounds)
		*absDescendantBounds = absDescendantBounds.Unite(childBounds)
	}

	shouldIsolate := false
	if l.IsStackingContext() {
		shouldIsolate = child.hasUnisolatedCompositedBlendingDescendant
	} else {
		current.hasUnisolatedCompositedBlendingDescendant = child.hasUnisolatedCompositedBlendingDescendant
	}

	if child.subtreeIsCompositing {
		current.subtreeIsCompositing = true
	}
	l.SetHasCompositingDescendant(child.subtreeIsCompositing)

	subtreeReasons := subtreeReasonsForCompositing(l, child.subtreeIsCompositing, anyDescendantHas3D, shouldIsolate)
	reasons |= subtreeReasons
	if !willBeCompositedOrSquashed && canComposite && subtreeReasons.RequiresCompositingOrSquashing() {
		child.compositingAncestor = l
		overlap.BeginNewOverlapTestingContext()
		overlap.Add(l, *absDescendantBounds)
		willBeCompositedOrSquashed = true
	}

	if l.IsRoot() {
		// The root composites whenever anything else does.
		if child.subtreeIsCompositing || reasons.RequiresCompositingOrSquashing() || u.rootShouldAlwaysComposite {
			reasons |= layer.ReasonRoot
			willBeCompositedOrSquashed = true
		} else {
			u.compositingModeOff = true
			reasons = layer.ReasonNone
			willBeCompositedOrSquashed = false
		}
	}

	if r := l.Reflection(); r != nil {
		rr := layer.ReasonNone
		if willBeCompositedOrSquashed {
			rr = layer.ReasonReflectionOfCompositedParent
		}
		r.SetDirectReasons(layer.ReasonNone)
		r.SetCompositingReasons(rr)
	}

	if willBeCompositedOrSquashed && l.Style().HasBlendMode() {
		current.hasUnisolatedCompositedBlendingDescendant = true
	}

	// An animating transform can move anywhere, so later layers stop
	// trusting the overlap map. A composited clip contains the animation.
	isCompositedClippingLayer := canComposite && reasons&layer.ReasonClipsCompositingDescendants != 0
	if (!child.testingOverlap && !isCompositedClippingLayer) || isRunningAcceleratedTransformAnimation(l) {
		current.testingOverlap = false
	}

	if child.compositingAncestor == l && !l.IsRoot() {
		overlap.FinishCurrentOverlapTestingContext()
	}

	l.SetCompositingReasons(reasons)
	l.SetHas3DTransformedDescendant(anyDescendantHas3D)
	if willBeCompositedOrSquashed {
		u.composited++
	}
	*descendantHas3D = *descendantHas3D || anyDescendantHas3D || l.Style().GetTransform() == style.Transform3D
}

// subtreeReasonsForCompositing lists the effects on l that have to be
// applied by the compositor because they also apply to composited
// descendants.
func subtreeReasonsForCompositing(l *layer.Layer, hasCompositedDescendants, has3DDescendants, isolate bool) layer.CompositingReasons {
	var reasons layer.CompositingReasons
	st := l.Style()
	if hasCompositedDescendants {
		if st.HasTransform() {
			reasons |= layer.ReasonTransformWithCompositedDescendants
		}
		if isolate {
			reasons |= layer.ReasonIsolateCompositedDescendants
		}
		if st.HasOpacity() {
			reasons |= layer.ReasonOpacityWithCompositedDescendants
		}
		if st.HasMask() {
			reasons |= layer.ReasonMaskWithCompositedDescendants
		}
		if st.HasFilter() {
			reasons |= layer.ReasonFilterWithCompositedDescendants
		}
		if st.HasBlendMode() {
			reasons |= layer.ReasonBlendingWithCompositedDescendants
		}
		if st.HasReflection() {
			reasons |= layer.ReasonReflectionWithCompositedDescendants
		}
		if l.HasOverflowClip() || l.HasCSSClip() {
			reasons |= layer.ReasonClipsCompositingDescendants
		}
	}
	if has3DDescendants {
		if st.Preserves3D() {
			reasons |= layer.ReasonPreserve3DWith3DDescendants
		}
		if st.HasPerspective() {
			reasons |= layer.ReasonPerspectiveWith3DDescendants
		}
	}
	return reasons
}

func isRunningAcceleratedTransformAnimation(l *layer.Layer) bool {
	return l.Style().HasCompositorAnimation("transform")
}

// scrollsWithRespectTo reports whether scrolling can move a relative to b.
// Viewport-fixed layers only stay put relative to each other.
func scrollsWithRespectTo(a, b *layer.Layer) bool {
	aFixed, bFixed := a.IsRootFixed(), b.IsRootFixed()
	if aFixed || bFixed {
		return aFixed != bFixed
	}
	return a.CompositingInputs().AncestorScrollingLayer != b.CompositingInputs().AncestorScrollingLayer
}
