package compositing

import (
	"layercomp/pkg/config"
	"layercomp/pkg/layer"
	"layercomp/pkg/style"
)

// ReasonFinder maps a layer's style and position in the tree to the
// direct reasons it needs a backing.
type ReasonFinder struct {
	settings config.Settings

	// frameComposited reports whether the document hosted by an iframe
	// layer is in compositing mode.
	frameComposited func(*layer.Layer) bool
}

func NewReasonFinder(settings config.Settings, frameComposited func(*layer.Layer) bool) *ReasonFinder {
	if frameComposited == nil {
		frameComposited = func(*layer.Layer) bool { return false }
	}
	return &ReasonFinder{settings: settings, frameComposited: frameComposited}
}

// PotentialReasonsFromStyle computes the reasons that depend on style
// alone. The result is cached on the layer at style time, so it must not
// look at geometry or at other layers.
func (f *ReasonFinder) PotentialReasonsFromStyle(l *layer.Layer) layer.CompositingReasons {
	st := l.Style()
	var reasons layer.CompositingReasons
	if f.settings.Triggers.ThreeDTransform && st.GetTransform() == style.Transform3D {
		reasons |= layer.Reason3DTransform
	}
	if st.BackfaceHidden() {
		reasons |= layer.ReasonBackfaceVisibilityHidden
	}
	if f.requiresCompositingForAnimation(st) {
		reasons |= layer.ReasonActiveAnimation
	}
	if hasWillChangeCompositingHint(st) {
		reasons |= layer.ReasonWillChangeCompositingHint
	}
	if f.settings.Triggers.Filters && (st.HasBackdropFilter() || st.HasCompositorAnimation("filter")) {
		reasons |= layer.ReasonFilters
	}
	if st.Preserves3D() {
		reasons |= layer.ReasonPreserve3DWith3DDescendants
	}
	if st.HasPerspective() {
		reasons |= layer.ReasonPerspectiveWith3DDescendants
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
	if st.HasOpacity() {
		reasons |= layer.ReasonOpacityWithCompositedDescendants
	}
	if st.HasReflection() {
		reasons |= layer.ReasonReflectionWithCompositedDescendants
	}
	layer.Assert(reasons&^layer.ComboAllStyleDeterminedReasons == 0, "style reasons outside the style-determined set")
	return reasons
}

func (f *ReasonFinder) requiresCompositingForAnimation(st *style.Style) bool {
	if !f.settings.Triggers.Animation {
		return false
	}
	return st.HasCompositorAnimation("transform") || st.HasCompositorAnimation("opacity") ||
		st.HasCompositorAnimation("filter")
}

func hasWillChangeCompositingHint(st *style.Style) bool {
	for _, p := range []string{"transform", "opacity", "top", "left", "bottom", "right"} {
		if st.WillChange(p) {
			return true
		}
	}
	return false
}

// DirectReasons combines the cached style reasons with those that need
// layout and tree context. The layer's compositing inputs must be up to
// date.
func (f *ReasonFinder) DirectReasons(l *layer.Layer) layer.CompositingReasons {
	styleReasons := l.StyleDeterminedReasons()
	layer.Assert(styleReasons == f.PotentialReasonsFromStyle(l), "cached style reasons are stale")
	return styleReasons&layer.ComboAllDirectStyleReasons | f.nonStyleDirectReasons(l)
}

func (f *ReasonFinder) nonStyleDirectReasons(l *layer.Layer) layer.CompositingReasons {
	var reasons layer.CompositingReasons
	in := l.CompositingInputs()
	tree := l.Tree()

	if f.settings.Triggers.OverflowScroll {
		if in.ClipParent != layer.NoID {
			reasons |= layer.ReasonOutOfFlowClipping
		}
		if sa := tree.Layer(in.AncestorScrollingLayer); sa != nil && sa.NeedsCompositedScrolling() && in.ScrollParent != layer.NoID {
			reasons |= layer.ReasonOverflowScrollingParent
		}
		if l.NeedsCompositedScrolling() {
			reasons |= layer.ReasonOverflowScrollingTouch
		}
	}
	if f.settings.PreferCompositingToLCDText && in.IsUnclippedDescendant {
		reasons |= layer.ReasonOutOfFlowClipping
	}

	ok, why := f.RequiresCompositingForPositionFixed(l)
	if ok {
		reasons |= layer.ReasonPositionFixed
	}
	l.SetNotCompositedReason(why)

	reasons |= f.additionalReasons(l)
	layer.Assert(reasons&layer.ComboAllStyleDeterminedReasons == 0, "non-style reasons overlap the style-determined set")
	return reasons
}

func (f *ReasonFinder) additionalReasons(l *layer.Layer) layer.CompositingReasons {
	t := f.settings.Triggers
	switch l.Kind {
	case layer.KindVideo:
		if t.Video {
			return layer.ReasonVideo
		}
	case layer.KindCanvas:
		if t.Canvas && l.HasContent {
			return layer.ReasonCanvas
		}
	case layer.KindPlugin:
		if t.Plugin {
			return layer.ReasonPlugin
		}
	case layer.KindIFrame:
		if f.frameComposited(l) {
			return layer.ReasonIFrame
		}
	}
	return layer.ReasonNone
}

// RequiresCompositingForPositionFixed decides whether a fixed layer is
// worth promoting. The checks run cheapest first; the first one that
// fails names the reason the layer stays in its ancestor's backing.
func (f *ReasonFinder) RequiresCompositingForPositionFixed(l *layer.Layer) (bool, layer.NotCompositedReason) {
	if !f.settings.Triggers.ViewportConstrained {
		return false, layer.NoNotCompositedReason
	}
	if l.Style().GetPosition() != style.PositionFixed {
		return false, layer.NoNotCompositedReason
	}
	tree := l.Tree()
	container := l.Container()
	if container == nil {
		layer.Assert(tree.Lifecycle() < layer.LifecycleInCompositingUpdate, "fixed layer has no container during compositing")
		return false, layer.NoNotCompositedReason
	}
	if !container.IsRoot() {
		return false, layer.NotCompositedForNonViewContainer
	}

	hasScrollableAncestor := tree.Root().ScrollsOverflow()
	for a := l.Parent(); a != nil && !hasScrollableAncestor; a = a.Parent() {
		if sa := a.ScrollableArea(); sa != nil && sa.IsScrollable() {
			hasScrollableAncestor = true
		}
	}
	if !hasScrollableAncestor {
		return false, layer.NotCompositedForUnscrollableAncestors
	}

	// Everything below needs layout.
	if tree.Lifecycle() < layer.LifecycleLayoutClean {
		return l.CompositedLayerMapping() != nil, layer.NoNotCompositedReason
	}
	if !l.PaintsContent() && !l.HasVisibleDescendant() {
		return false, layer.NotCompositedForNoVisibleContent
	}
	if !tree.ViewportRect().Intersects(l.AbsoluteBoundingBox()) {
		return false, layer.NotCompositedForBoundsOutOfView
	}
	return true, layer.NoNotCompositedReason
}

// RequiresCompositingForScrollableFrame reports an inner document that
// scrolls and so should composite its root to scroll on the compositor.
func (f *ReasonFinder) RequiresCompositingForScrollableFrame(tree *layer.Tree) bool {
	if !f.settings.Triggers.ScrollableInnerFrame || !f.settings.CompositedScrollingForFrames {
		return false
	}
	if tree.Owner == nil {
		return false
	}
	return tree.Root().ScrollsOverflow()
}

// NeedsCompositedScrolling decides whether a scroller gets scrolling
// graphics layers. Without preferring compositing over LCD text only
// stacking contexts qualify, since their descendants cannot escape the
// scrolled contents.
func (f *ReasonFinder) NeedsCompositedScrolling(l *layer.Layer) bool {
	if !f.settings.Triggers.OverflowScroll || l.IsRoot() || !l.HasOverflowClip() || !l.ScrollsOverflow() {
		return false
	}
	st := l.Style()
	if !st.UsesTouchOverflowScrolling() && !f.settings.CompositedOverflowScroll {
		return false
	}
	return st.UsesTouchOverflowScrolling() || l.IsStackingContext() || f.settings.PreferCompositingToLCDText
}
