package layer

import "layercomp/pkg/geom"

// CompositingState is the outcome of layer assignment.
type CompositingState int

const (
	NotComposited CompositingState = iota
	PaintsIntoOwnBacking
	PaintsIntoGroupedBacking
)

func (s CompositingState) String() string {
	switch s {
	case PaintsIntoOwnBacking:
		return "own"
	case PaintsIntoGroupedBacking:
		return "grouped"
	}
	return "none"
}

// LifecycleState tracks how far the document has progressed through an
// update. Compositing may only run once layout is clean.
type LifecycleState int

const (
	LifecycleUninitialized LifecycleState = iota
	LifecycleInStyleRecalc
	LifecycleStyleClean
	LifecycleInPerformLayout
	LifecycleLayoutClean
	LifecycleInCompositingUpdate
	LifecycleCompositingClean
	LifecyclePaintInvalidationClean
)

func (s LifecycleState) String() string {
	switch s {
	case LifecycleInStyleRecalc:
		return "InStyleRecalc"
	case LifecycleStyleClean:
		return "StyleClean"
	case LifecycleInPerformLayout:
		return "InPerformLayout"
	case LifecycleLayoutClean:
		return "LayoutClean"
	case LifecycleInCompositingUpdate:
		return "InCompositingUpdate"
	case LifecycleCompositingClean:
		return "CompositingClean"
	case LifecyclePaintInvalidationClean:
		return "PaintInvalidationClean"
	}
	return "Uninitialized"
}

// CompositingInputs are the ancestor relationships computed by the inputs
// pass. IDs are zero when absent.
type CompositingInputs struct {
	AbsoluteBoundingBox        geom.Rect
	ClippedAbsoluteBoundingBox geom.Rect

	OpacityAncestor        ID
	TransformAncestor      ID
	FilterAncestor         ID
	ClippingContainer      ID
	AncestorScrollingLayer ID
	ScrollParent           ID
	ClipParent             ID

	IsUnclippedDescendant bool
}
