// Package graphics models the compositor-facing layer tree. A Layer here is
// one composited surface; the platform side only ever sees these.
package graphics

import (
	"layercomp/pkg/geom"
)

// Handle identifies a layer to the platform compositor.
type Handle uint64

// PositionConstraint pins a layer to the viewport while the page scrolls.
type PositionConstraint struct {
	Fixed bool
	// Anchored to the right/bottom edge instead of the left/top.
	Right  bool
	Bottom bool
}

type Layer struct {
	Name string

	handle   Handle
	parent   *Layer
	children []*Layer

	Position geom.Point
	Size     geom.Size
	// Offset of the layer's origin from the owning paint layer's border box.
	OffsetFromRenderer geom.Point

	DrawsContent   bool
	MasksToBounds  bool
	ContentsOpaque bool

	Constraint PositionConstraint

	// Not owned.
	ScrollParent *Layer
	ClipParent   *Layer

	Scrollable     bool
	ScrollPosition geom.Point

	TouchEventHandlerRegion    geom.Region
	NonFastScrollableRegion    geom.Region
	MainThreadScrollingReasons uint32

	// Why the owning paint layer has a backing, for dumps.
	DebugReasons []string
}

// Handle is the platform's name for this surface.
func (l *Layer) Handle() Handle     { return l.handle }
func (l *Layer) Parent() *Layer     { return l.parent }
func (l *Layer) Children() []*Layer { return l.children }

// Bounds is the layer rect in its parent's space, ignoring scrolling.
func (l *Layer) Bounds() geom.Rect {
	return geom.NewRect(l.Position, l.Size)
}

func (l *Layer) AddChild(child *Layer) {
	child.RemoveFromParent()
	child.parent = l
	l.children = append(l.children, child)
}

// SetChildren replaces the child list. Returns true if it changed.
func (l *Layer) SetChildren(children []*Layer) bool {
	if sameLayers(l.children, children) {
		return false
	}
	l.RemoveAllChildren()
	for _, c := range children {
		l.AddChild(c)
	}
	return true
}

// RemoveAllChildren orphans every child of l.
func (l *Layer) RemoveAllChildren() {
	for _, c := range l.children {
		c.parent = nil
	}
	l.children = nil
}

// RemoveFromParent unlinks l. Its own children stay attached to it.
func (l *Layer) RemoveFromParent() {
	p := l.parent
	if p == nil {
		return
	}
	for i, c := range p.children {
		if c == l {
			p.children = append(p.children[:i:i], p.children[i+1:]...)
			break
		}
	}
	l.parent = nil
}

// Root walks up to the top of the tree containing l.
func (l *Layer) Root() *Layer {
	for l.parent != nil {
		l = l.parent
	}
	return l
}

// Walk visits l and its descendants in pre-order.
func (l *Layer) Walk(fn func(*Layer)) {
	fn(l)
	for _, c := range l.children {
		c.Walk(fn)
	}
}

// AbsolutePosition sums positions up to the root, less scroll offsets of
// scrolling ancestors.
func (l *Layer) AbsolutePosition() geom.Point {
	var p geom.Point
	for cur := l; cur != nil; cur = cur.parent {
		p = p.Add(cur.Position)
		if cur != l && cur.Scrollable {
			p = p.Sub(cur.ScrollPosition)
		}
	}
	return p
}

func sameLayers(a, b []*Layer) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
