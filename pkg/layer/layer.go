package layer

import (
	"layercomp/pkg/geom"
	"layercomp/pkg/style"
)

// Layer is one paint/stacking unit. Geometry is supplied by layout; the
// compositing fields are owned by the compositing update.
type Layer struct {
	tree *Tree
	id   ID

	Name  string
	Kind  Kind
	style *style.Style

	parent       ID
	children     []ID
	reflection   ID
	reflectionOf ID

	// Border-box origin relative to the parent's border box. For fixed
	// layers contained by the view it is relative to the viewport.
	location     geom.Point
	size         geom.Size
	contentSize  geom.Size
	scrollOffset geom.Point

	HasContent       bool
	HasTouchHandler  bool
	WantsWheelEvents bool
	// Starts a fragmentation context. Clip rects are not cached across it.
	PaginationBoundary bool
	inTopLayer         bool

	// Document hosted by a KindIFrame layer.
	ContentTree *Tree

	stacking   stackingNode
	clipRects  clipRectsCache
	scrollable *ScrollableArea

	needsCompositedScrolling   bool
	styleReasons               CompositingReasons
	directReasons              CompositingReasons
	reasons                    CompositingReasons
	squashingDisallowed        CompositingReasons
	notCompositedReason        NotCompositedReason
	has3DTransformedDescendant bool
	hasCompositingDescendant   bool

	inputs                 CompositingInputs
	inputsDirty            bool
	childNeedsInputsUpdate bool

	mapping            *CompositedLayerMapping
	groupedMapping     *CompositedLayerMapping
	lostGroupedMapping bool
}

func (l *Layer) ID() ID              { return l.id }
func (l *Layer) Tree() *Tree         { return l.tree }
func (l *Layer) Style() *style.Style { return l.style }
func (l *Layer) IsRoot() bool        { return l.parent == NoID }
func (l *Layer) InTopLayer() bool    { return l.inTopLayer }

func (l *Layer) Parent() *Layer { return l.tree.Layer(l.parent) }

func (l *Layer) Children() []*Layer { return l.tree.resolve(l.children) }

// Reflection returns the reflection layer of l, if any.
func (l *Layer) Reflection() *Layer { return l.tree.Layer(l.reflection) }

func (l *Layer) IsReflection() bool { return l.reflectionOf != NoID }

// ReflectionOf returns the layer this reflection mirrors.
func (l *Layer) ReflectionOf() *Layer { return l.tree.Layer(l.reflectionOf) }

func (l *Layer) Location() geom.Point     { return l.location }
func (l *Layer) Size() geom.Size          { return l.size }
func (l *Layer) ContentSize() geom.Size   { return l.contentSize }
func (l *Layer) ScrollOffset() geom.Point { return l.scrollOffset }

// SetGeometry records the layout result for l.
func (l *Layer) SetGeometry(location geom.Point, size geom.Size) {
	if l.location == location && l.size == size {
		return
	}
	l.location = location
	l.size = size
	if l.style.ScrollsOverflow() || l.IsRoot() {
		l.contentSize = geom.Size{W: max(l.contentSize.W, size.W), H: max(l.contentSize.H, size.H)}
	} else {
		l.contentSize = size
	}
	l.ClearClipRectsIncludingDescendants()
	l.setNeedsCompositingInputsUpdate()
	if c := l.tree.client; c != nil {
		c.GeometryDidChange(l)
	}
}

// SetContentSize sets the scrollable overflow extent.
func (l *Layer) SetContentSize(s geom.Size) {
	l.contentSize = geom.Size{W: max(s.W, l.size.W), H: max(s.H, l.size.H)}
	l.setNeedsCompositingInputsUpdate()
	if c := l.tree.client; c != nil {
		c.GeometryDidChange(l)
	}
}

// ScrollTo clamps and applies a scroll offset.
func (l *Layer) ScrollTo(offset geom.Point) {
	maxX := max(0, l.contentSize.W-l.size.W)
	maxY := max(0, l.contentSize.H-l.size.H)
	offset = geom.Point{X: min(max(offset.X, 0), maxX), Y: min(max(offset.Y, 0), maxY)}
	if offset == l.scrollOffset {
		return
	}
	l.scrollOffset = offset
	l.ClearClipRectsIncludingDescendants()
	l.setNeedsCompositingInputsUpdate()
	if c := l.tree.client; c != nil {
		c.ScrollOffsetDidChange(l)
	}
}

// SetStyle swaps the style snapshot and invalidates whatever it affects.
func (l *Layer) SetStyle(st *style.Style) {
	if st == nil {
		st = style.NewStyle()
	}
	old := l.style
	wasStacking := l.IsStackingContext()
	wasNormalFlow := l.IsNormalFlowOnly()
	oldZ, oldHasZ := old.GetZIndex()
	l.style = st

	z, hasZ := st.GetZIndex()
	if wasStacking != l.IsStackingContext() || wasNormalFlow != l.IsNormalFlowOnly() || z != oldZ || hasZ != oldHasZ {
		l.dirtyStackingContextZOrderLists()
		if l.IsStackingContext() {
			l.stacking.dirtyZOrderLists()
		} else {
			l.stacking.clearZOrderLists()
		}
		if p := l.Parent(); p != nil {
			p.stacking.dirtyNormalFlowList()
		}
	}
	if clipAffectingChange(old, st) {
		l.ClearClipRectsIncludingDescendants()
	}
	l.setNeedsCompositingInputsUpdate()
	if c := l.tree.client; c != nil {
		c.StyleDidChange(l, old)
	}
}

func clipAffectingChange(a, b *style.Style) bool {
	ac, aHas := a.GetClip()
	bc, bHas := b.GetClip()
	return a.GetPosition() != b.GetPosition() ||
		a.GetOverflow() != b.GetOverflow() ||
		aHas != bHas || ac != bc ||
		a.GetBorderRadius() != b.GetBorderRadius()
}

// IsStackingContext reports whether l scopes the z-order of its
// descendants.
func (l *Layer) IsStackingContext() bool {
	if l.IsRoot() || l.inTopLayer {
		return true
	}
	s := l.style
	_, hasZ := s.GetZIndex()
	return (s.IsPositioned() && hasZ) ||
		s.GetPosition() == style.PositionFixed ||
		s.HasOpacity() || s.HasTransform() || s.HasFilter() || s.HasMask() ||
		s.HasBlendMode() || s.HasIsolation() || s.Preserves3D() || s.HasPerspective() ||
		s.WillChange("opacity") || s.WillChange("transform") ||
		s.UsesTouchOverflowScrolling() || s.HasReflection()
}

// IsNormalFlowOnly reports a layer that paints in tree order with its
// parent and never appears in z-order lists.
func (l *Layer) IsNormalFlowOnly() bool {
	if l.IsRoot() {
		return false
	}
	return !l.style.IsPositioned() && !l.IsStackingContext() && !l.needsCompositedScrolling
}

// ZIndex is the effective z-index. Auto counts as zero, and z-index has
// no effect on boxes that are not positioned.
func (l *Layer) ZIndex() int {
	if !l.style.IsPositioned() {
		return 0
	}
	z, _ := l.style.GetZIndex()
	return z
}

// IsSelfPainting reports whether l paints its own content rather than
// being painted by an ancestor.
func (l *Layer) IsSelfPainting() bool {
	return !l.IsNormalFlowOnly() || l.needsCompositedScrolling || l.style.HasReflection() ||
		l.Kind.IsReplaced() || l.style.Preserves3D() || l.IsReflection() || l.style.HasTransform()
}

func (l *Layer) HasOverflowClip() bool {
	return l.Kind.CanBeBox() && !l.IsRoot() && l.style.HasOverflowClip()
}

func (l *Layer) HasCSSClip() bool {
	if !l.style.IsOutOfFlowPositioned() {
		return false
	}
	_, ok := l.style.GetClip()
	return ok
}

// ScrollsOverflow reports a box that can be scrolled by the user.
func (l *Layer) ScrollsOverflow() bool {
	if l.IsRoot() {
		return l.contentSize.W > l.size.W || l.contentSize.H > l.size.H
	}
	return l.Kind.CanBeBox() && l.style.ScrollsOverflow() &&
		(l.contentSize.W > l.size.W || l.contentSize.H > l.size.H)
}

func (l *Layer) NeedsCompositedScrolling() bool { return l.needsCompositedScrolling }

// SetNeedsCompositedScrolling is decided by the compositing update.
// Changing it may move l in or out of normal flow.
func (l *Layer) SetNeedsCompositedScrolling(v bool) {
	if l.needsCompositedScrolling == v {
		return
	}
	wasNormalFlow := l.IsNormalFlowOnly()
	l.needsCompositedScrolling = v
	if wasNormalFlow != l.IsNormalFlowOnly() {
		l.dirtyStackingContextZOrderLists()
		if p := l.Parent(); p != nil {
			p.stacking.dirtyNormalFlowList()
		}
	}
}

// PaintsContent reports whether l or any non-self-painting descendant
// draws something.
func (l *Layer) PaintsContent() bool {
	if !l.style.IsVisible() {
		return false
	}
	if l.HasContent || l.Kind.IsReplaced() {
		return true
	}
	for _, c := range l.Children() {
		if !c.IsSelfPainting() && c.PaintsContent() {
			return true
		}
	}
	return false
}

// HasVisibleDescendant reports content in any descendant layer.
func (l *Layer) HasVisibleDescendant() bool {
	for _, c := range l.Children() {
		if c.PaintsContent() || c.HasVisibleDescendant() {
			return true
		}
	}
	return false
}

func (l *Layer) String() string {
	if l.Name != "" {
		return l.Name
	}
	return l.Kind.String()
}

// IsDescendantOf reports whether a is a strict ancestor of l in the same
// tree.
func (l *Layer) IsDescendantOf(a *Layer) bool {
	for p := l.Parent(); p != nil; p = p.Parent() {
		if p == a {
			return true
		}
	}
	return false
}
