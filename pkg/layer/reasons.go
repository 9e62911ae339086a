package layer

import "strings"

// CompositingReasons records why a layer was given its own backing.
type CompositingReasons uint64

const (
	ReasonNone CompositingReasons = 0

	// Direct reasons.
	Reason3DTransform CompositingReasons = 1 << iota
	ReasonVideo
	ReasonCanvas
	ReasonPlugin
	ReasonIFrame
	ReasonBackfaceVisibilityHidden
	ReasonActiveAnimation
	ReasonFilters
	ReasonPositionFixed
	ReasonOverflowScrollingTouch
	ReasonOverflowScrollingParent
	ReasonOutOfFlowClipping
	ReasonWillChangeCompositingHint
	ReasonRoot

	// Overlap reasons.
	ReasonAssumedOverlap
	ReasonOverlap
	ReasonNegativeZIndexChildren
	ReasonScrollsWithRespectToSquashingLayer
	ReasonSquashingSparsityExceeded
	ReasonSquashingClippingContainerMismatch
	ReasonSquashingOpacityAncestorMismatch
	ReasonSquashingTransformAncestorMismatch
	ReasonSquashingFilterAncestorMismatch
	ReasonSquashingWouldBreakPaintOrder
	ReasonSquashingVideoIsDisallowed
	ReasonSquashedLayerClipsCompositingDescendants
	ReasonSquashingLayerIsAnimating
	ReasonSquashingBlendingIsDisallowed
	ReasonSquashingRenderPartIsDisallowed
	ReasonSquashingReflectionIsDisallowed

	// Subtree reasons.
	ReasonTransformWithCompositedDescendants
	ReasonOpacityWithCompositedDescendants
	ReasonMaskWithCompositedDescendants
	ReasonReflectionWithCompositedDescendants
	ReasonFilterWithCompositedDescendants
	ReasonBlendingWithCompositedDescendants
	ReasonClipsCompositingDescendants
	ReasonPerspectiveWith3DDescendants
	ReasonPreserve3DWith3DDescendants
	ReasonReflectionOfCompositedParent
	ReasonIsolateCompositedDescendants
)

const (
	ComboAllDirectStyleReasons = Reason3DTransform | ReasonBackfaceVisibilityHidden |
		ReasonActiveAnimation | ReasonWillChangeCompositingHint | ReasonFilters

	ComboAllDirectReasons = ComboAllDirectStyleReasons | ReasonVideo | ReasonCanvas |
		ReasonPlugin | ReasonIFrame | ReasonPositionFixed | ReasonOverflowScrollingTouch |
		ReasonOverflowScrollingParent | ReasonOutOfFlowClipping | ReasonRoot

	ComboSquashableReasons = ReasonOverlap | ReasonAssumedOverlap | ReasonOverflowScrollingParent

	ComboCompositedDescendants = ReasonTransformWithCompositedDescendants |
		ReasonOpacityWithCompositedDescendants | ReasonMaskWithCompositedDescendants |
		ReasonFilterWithCompositedDescendants | ReasonBlendingWithCompositedDescendants |
		ReasonIsolateCompositedDescendants | ReasonReflectionWithCompositedDescendants |
		ReasonClipsCompositingDescendants

	Combo3DDescendants = ReasonPreserve3DWith3DDescendants | ReasonPerspectiveWith3DDescendants

	ComboOverlapReasons = ReasonAssumedOverlap | ReasonOverlap

	ComboSquashingDisallowed = ReasonScrollsWithRespectToSquashingLayer |
		ReasonSquashingSparsityExceeded | ReasonSquashingClippingContainerMismatch |
		ReasonSquashingOpacityAncestorMismatch | ReasonSquashingTransformAncestorMismatch |
		ReasonSquashingFilterAncestorMismatch | ReasonSquashingWouldBreakPaintOrder |
		ReasonSquashingVideoIsDisallowed | ReasonSquashedLayerClipsCompositingDescendants |
		ReasonSquashingLayerIsAnimating | ReasonSquashingBlendingIsDisallowed |
		ReasonSquashingRenderPartIsDisallowed | ReasonSquashingReflectionIsDisallowed

	ComboAllStyleDeterminedReasons = ComboAllDirectStyleReasons |
		ReasonPreserve3DWith3DDescendants | ReasonPerspectiveWith3DDescendants |
		ReasonMaskWithCompositedDescendants | ReasonFilterWithCompositedDescendants |
		ReasonBlendingWithCompositedDescendants | ReasonOpacityWithCompositedDescendants |
		ReasonReflectionWithCompositedDescendants
)

// RequiresCompositing reports reasons that demand a layer's own backing.
func (r CompositingReasons) RequiresCompositing() bool {
	return r&^ComboSquashableReasons != 0
}

// RequiresSquashing reports reasons that can be met by sharing a backing.
func (r CompositingReasons) RequiresSquashing() bool {
	return !r.RequiresCompositing() && r&ComboSquashableReasons != 0
}

func (r CompositingReasons) RequiresCompositingOrSquashing() bool {
	return r != ReasonNone
}

type reasonName struct {
	reason CompositingReasons
	short  string
	desc   string
}

var reasonNames = []reasonName{
	{Reason3DTransform, "transform3D", "Has a 3d transform"},
	{ReasonVideo, "video", "Is an accelerated video"},
	{ReasonCanvas, "canvas", "Is an accelerated canvas"},
	{ReasonPlugin, "plugin", "Is an accelerated plugin"},
	{ReasonIFrame, "iFrame", "Is an accelerated iFrame"},
	{ReasonBackfaceVisibilityHidden, "backfaceVisibilityHidden", "Has backface-visibility: hidden"},
	{ReasonActiveAnimation, "activeAnimation", "Has an active accelerated animation or transition"},
	{ReasonFilters, "filters", "Has an accelerated filter"},
	{ReasonPositionFixed, "positionFixed", "Is fixed position"},
	{ReasonOverflowScrollingTouch, "overflowScrollingTouch", "Is a scrollable overflow element"},
	{ReasonOverflowScrollingParent, "overflowScrollingParent", "Scroll parent is not an ancestor"},
	{ReasonOutOfFlowClipping, "outOfFlowClipping", "Has clipping ancestor"},
	{ReasonWillChangeCompositingHint, "willChange", "Has a will-change compositing hint"},
	{ReasonRoot, "root", "Is the root layer"},
	{ReasonAssumedOverlap, "assumedOverlap", "Might overlap other composited content"},
	{ReasonOverlap, "overlap", "Overlaps other composited content"},
	{ReasonNegativeZIndexChildren, "negativeZIndexChildren", "Parent with composited negative z-index content"},
	{ReasonScrollsWithRespectToSquashingLayer, "scrollsWithRespectToSquashingLayer", "Cannot be squashed since this layer scrolls with respect to the squashing layer"},
	{ReasonSquashingSparsityExceeded, "squashingSparsityExceeded", "Cannot be squashed as the squashing layer would become too sparse"},
	{ReasonSquashingClippingContainerMismatch, "squashingClippingContainerMismatch", "Cannot be squashed because this layer has a different clipping container than the squashing layer"},
	{ReasonSquashingOpacityAncestorMismatch, "squashingOpacityAncestorMismatch", "Cannot be squashed because this layer has a different opacity ancestor than the squashing layer"},
	{ReasonSquashingTransformAncestorMismatch, "squashingTransformAncestorMismatch", "Cannot be squashed because this layer has a different transform ancestor than the squashing layer"},
	{ReasonSquashingFilterAncestorMismatch, "squashingFilterAncestorMismatch", "Cannot be squashed because this layer has a different filter ancestor than the squashing layer"},
	{ReasonSquashingWouldBreakPaintOrder, "squashingWouldBreakPaintOrder", "Cannot be squashed without breaking paint order"},
	{ReasonSquashingVideoIsDisallowed, "squashingVideoIsDisallowed", "Squashing video is not supported"},
	{ReasonSquashedLayerClipsCompositingDescendants, "squashedLayerClipsCompositingDescendants", "Squashing a layer that clips composited descendants is not supported"},
	{ReasonSquashingLayerIsAnimating, "squashingLayerIsAnimating", "Cannot squash into a layer that is animating"},
	{ReasonSquashingBlendingIsDisallowed, "squashingBlendingIsDisallowed", "Squashing a layer with blending is not supported"},
	{ReasonSquashingRenderPartIsDisallowed, "squashingRenderPartIsDisallowed", "Squashing a frame, iframe or plugin is not supported"},
	{ReasonSquashingReflectionIsDisallowed, "squashingReflectionIsDisallowed", "Squashing a element with reflection is not supported"},
	{ReasonTransformWithCompositedDescendants, "transformWithCompositedDescendants", "Has a transform that needs to be known by compositor because of composited descendants"},
	{ReasonOpacityWithCompositedDescendants, "opacityWithCompositedDescendants", "Has opacity that needs to be applied by compositor because of composited descendants"},
	{ReasonMaskWithCompositedDescendants, "maskWithCompositedDescendants", "Has a mask that needs to be known by compositor because of composited descendants"},
	{ReasonReflectionWithCompositedDescendants, "reflectionWithCompositedDescendants", "Has a reflection that needs to be known by compositor because of composited descendants"},
	{ReasonFilterWithCompositedDescendants, "filterWithCompositedDescendants", "Has a filter effect that needs to be known by compositor because of composited descendants"},
	{ReasonBlendingWithCompositedDescendants, "blendingWithCompositedDescendants", "Has a blending effect that needs to be known by compositor because of composited descendants"},
	{ReasonClipsCompositingDescendants, "clipsCompositingDescendants", "Has a clip that needs to be known by compositor because of composited descendants"},
	{ReasonPerspectiveWith3DDescendants, "perspectiveWith3DDescendants", "Has a perspective transform that needs to be known by compositor because of 3d descendants"},
	{ReasonPreserve3DWith3DDescendants, "preserve3DWith3DDescendants", "Has a preserves-3d property that needs to be known by compositor because of 3d descendants"},
	{ReasonReflectionOfCompositedParent, "reflectionOfCompositedParent", "Is a reflection of a composited layer"},
	{ReasonIsolateCompositedDescendants, "isolateCompositedDescendants", "Should isolate descendants to apply a blend effect"},
}

// Names returns the short names of the set reasons in declaration order.
func (r CompositingReasons) Names() []string {
	var out []string
	for _, n := range reasonNames {
		if r&n.reason != 0 {
			out = append(out, n.short)
		}
	}
	return out
}

// Descriptions returns human-readable text for the set reasons.
func (r CompositingReasons) Descriptions() []string {
	var out []string
	for _, n := range reasonNames {
		if r&n.reason != 0 {
			out = append(out, n.desc)
		}
	}
	return out
}

func (r CompositingReasons) String() string {
	if r == ReasonNone {
		return "none"
	}
	return strings.Join(r.Names(), "|")
}

// ReasonByName looks up a reason by its short name.
func ReasonByName(name string) (CompositingReasons, bool) {
	for _, n := range reasonNames {
		if n.short == name {
			return n.reason, true
		}
	}
	return ReasonNone, false
}

// NotCompositedReason explains why a viewport-constrained layer was not
// promoted.
type NotCompositedReason int

const (
	NoNotCompositedReason NotCompositedReason = iota
	NotCompositedForBoundsOutOfView
	NotCompositedForNonViewContainer
	NotCompositedForNoVisibleContent
	NotCompositedForUnscrollableAncestors
)

func (r NotCompositedReason) String() string {
	switch r {
	case NotCompositedForBoundsOutOfView:
		return "boundsOutOfView"
	case NotCompositedForNonViewContainer:
		return "nonViewContainer"
	case NotCompositedForNoVisibleContent:
		return "noVisibleContent"
	case NotCompositedForUnscrollableAncestors:
		return "unscrollableAncestors"
	}
	return "none"
}
