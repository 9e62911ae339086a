package layer

import (
	"layercomp/pkg/geom"
	"layercomp/pkg/style"
)

// Container returns the layer whose box positions l: the view or nearest
// transformed ancestor for fixed, the nearest positioned ancestor for
// absolute, the parent otherwise.
func (l *Layer) Container() *Layer {
	p := l.Parent()
	if p == nil {
		return nil
	}
	switch l.style.GetPosition() {
	case style.PositionFixed:
		for ; p != nil; p = p.Parent() {
			if p.IsRoot() || p.style.HasTransform() {
				return p
			}
		}
	case style.PositionAbsolute:
		for ; p != nil; p = p.Parent() {
			if p.IsRoot() || p.style.IsPositioned() || p.style.HasTransform() {
				return p
			}
		}
	}
	return p
}

// IsRootFixed reports a fixed layer positioned against the viewport.
func (l *Layer) IsRootFixed() bool {
	if l.style.GetPosition() != style.PositionFixed {
		return false
	}
	c := l.Container()
	return c != nil && c.IsRoot()
}

// scrollsChild reports whether scrolling l moves child.
func (l *Layer) scrollsChild(child *Layer) bool {
	if l.IsRoot() || !l.HasOverflowClip() {
		return false
	}
	switch child.style.GetPosition() {
	case style.PositionFixed:
		return false
	case style.PositionAbsolute:
		return l.style.IsPositioned() || l.style.HasTransform()
	}
	return true
}

// AbsolutePosition is the border-box origin in document coordinates.
// Transforms are not applied.
func (l *Layer) AbsolutePosition() geom.Point {
	if l.IsRoot() {
		return geom.Point{}
	}
	if l.IsRootFixed() {
		return l.location.Add(l.tree.Root().scrollOffset)
	}
	p := l.Parent()
	pos := p.AbsolutePosition().Add(l.location)
	if p.scrollsChild(l) {
		pos = pos.Sub(p.scrollOffset)
	}
	return pos
}

// ConvertToLayerCoords maps a point in l's space into ancestor's space.
// ancestor may live in an enclosing document.
func (l *Layer) ConvertToLayerCoords(ancestor *Layer, p geom.Point) geom.Point {
	return p.Add(l.OffsetFromAncestor(ancestor))
}

// OffsetFromAncestor is the position of l's origin in ancestor's space.
// Crossing into a parent document goes through the owning iframe layer.
func (l *Layer) OffsetFromAncestor(ancestor *Layer) geom.Point {
	if ancestor == nil {
		ancestor = l.tree.Root()
	}
	var offset geom.Point
	cur := l
	for cur.tree != ancestor.tree {
		offset = offset.Add(cur.AbsolutePosition()).Sub(cur.tree.Root().scrollOffset)
		owner := cur.tree.Owner
		assertf(owner != nil, "%s is not inside the document of %s", l, ancestor)
		cur = owner
	}
	return offset.Add(cur.AbsolutePosition()).Sub(ancestor.AbsolutePosition())
}

func (l *Layer) BorderBoxRect() geom.Rect {
	return geom.Rect{W: l.size.W, H: l.size.H}
}

// AbsoluteBorderBox is the border box in document coordinates.
func (l *Layer) AbsoluteBorderBox() geom.Rect {
	return l.BorderBoxRect().Move(l.AbsolutePosition())
}

// LocalBoundingBox covers the border box plus descendants that paint into
// l, clipped to l's box when it clips overflow.
func (l *Layer) LocalBoundingBox() geom.Rect {
	box := l.BorderBoxRect()
	if l.HasOverflowClip() || l.IsRoot() {
		return box
	}
	origin := l.AbsolutePosition()
	for _, c := range l.Children() {
		if c.IsSelfPainting() || c.IsReflection() {
			continue
		}
		box = box.Unite(c.LocalBoundingBox().Move(c.AbsolutePosition().Sub(origin)))
	}
	return box
}

// AbsoluteBoundingBox is LocalBoundingBox in document coordinates.
func (l *Layer) AbsoluteBoundingBox() geom.Rect {
	if l.IsRoot() {
		return geom.NewRect(geom.Point{}, l.contentSize)
	}
	return l.LocalBoundingBox().Move(l.AbsolutePosition())
}

// OverflowClipRect is the padding box of l offset by offset.
func (l *Layer) OverflowClipRect(offset geom.Point) geom.Rect {
	return l.BorderBoxRect().Move(offset)
}

// CSSClipRect is the clip: rect() of l offset by offset.
func (l *Layer) CSSClipRect(offset geom.Point) geom.Rect {
	r, _ := l.style.GetClip()
	return r.Move(offset)
}

// ScrollingContentsRect is the full scrollable extent in l's space.
func (l *Layer) ScrollingContentsRect() geom.Rect {
	return geom.NewRect(l.scrollOffset.Neg(), l.contentSize)
}

// ViewportRect is the visible part of the document in document
// coordinates.
func (t *Tree) ViewportRect() geom.Rect {
	root := t.Root()
	return geom.NewRect(root.scrollOffset, root.size)
}
