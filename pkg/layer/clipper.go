package layer

import (
	"layercomp/pkg/geom"
	"layercomp/pkg/style"
)

// ClipRects returns the clip rects l imposes on its descendants, relative
// to ctx.RootLayer. Results are cached per context unless the context is
// temporary. A layer that does not clip shares its parent's instance.
func (l *Layer) ClipRects(ctx ClipRectsContext) *ClipRects {
	assertf(ctx.RootLayer != nil && ctx.RootLayer.tree == l.tree, "clip root of %s must be in the same document", l)
	assertf(ctx.Type >= PaintingClipRects && ctx.Type <= TemporaryClipRects, "invalid clip rects type %d", ctx.Type)

	if !ctx.usesCache() {
		r := l.CalculateClipRects(ctx)
		return &r
	}
	if cached := l.clipRects.get(ctx); cached != nil {
		return cached
	}

	rects := l.CalculateClipRects(ctx)
	if p := l.Parent(); p != nil && l != ctx.RootLayer && !l.PaginationBoundary {
		if pr := p.ClipRects(ctx); *pr == rects {
			l.clipRects.set(ctx, pr)
			return pr
		}
	}
	stored := &rects
	l.clipRects.set(ctx, stored)
	return stored
}

// parentClipRects returns the rects l inherits. Crossing a pagination
// boundary computes the parent's rects without the cache.
func (l *Layer) parentClipRects(ctx ClipRectsContext) ClipRects {
	p := l.Parent()
	if p == nil || l == ctx.RootLayer {
		return InfiniteClipRects()
	}
	if l.PaginationBoundary && ctx.usesCache() {
		temp := ctx
		temp.Type = TemporaryClipRects
		return p.CalculateClipRects(temp)
	}
	return *p.ClipRects(ctx)
}

// CalculateClipRects computes l's clip rects from its parent's without
// storing the result.
func (l *Layer) CalculateClipRects(ctx ClipRectsContext) ClipRects {
	if l.IsRoot() {
		return InfiniteClipRects()
	}
	rects := l.parentClipRects(ctx)
	adjustClipRectsForChildren(l.style.GetPosition(), &rects)

	clipsOverflow := l.HasOverflowClip() && (ctx.RespectOverflowClip || l != ctx.RootLayer)
	if !clipsOverflow && !l.HasCSSClip() {
		return rects
	}

	offset := l.ConvertToLayerCoords(ctx.RootLayer, geom.Point{})
	if rects.isFixed && ctx.RootLayer.IsRoot() {
		offset = offset.Sub(l.tree.Root().scrollOffset)
	}

	if clipsOverflow {
		clip := l.OverflowClipRect(offset)
		rects.overflow = clip.Intersect(rects.overflow)
		if l.style.IsPositioned() {
			rects.pos = clip.Intersect(rects.pos)
		}
	}
	if l.HasCSSClip() {
		clip := l.CSSClipRect(offset)
		rects.pos = clip.Intersect(rects.pos)
		rects.overflow = clip.Intersect(rects.overflow)
		rects.fixed = clip.Intersect(rects.fixed)
	}
	return rects
}

// adjustClipRectsForChildren applies the containing-block escapes of
// positioned layers. Order matters.
func adjustClipRectsForChildren(position style.PositionType, rects *ClipRects) {
	switch position {
	case style.PositionFixed:
		rects.pos = rects.fixed
		rects.overflow = rects.fixed
		rects.isFixed = true
	case style.PositionRelative, style.PositionSticky:
		rects.pos = rects.overflow
	case style.PositionAbsolute:
		rects.overflow = rects.pos
	}
}

// BackgroundClipRect is the clip applied to l's own painting, in the
// root layer's space.
func (l *Layer) BackgroundClipRect(ctx ClipRectsContext) geom.Rect {
	if l.Parent() == nil || l == ctx.RootLayer {
		return geom.InfiniteRect()
	}
	parent := l.parentClipRects(ctx)
	var r geom.Rect
	switch l.style.GetPosition() {
	case style.PositionFixed:
		r = parent.fixed
	case style.PositionAbsolute:
		r = parent.pos
	default:
		r = parent.overflow
	}
	if parent.isFixed && ctx.RootLayer.IsRoot() {
		r = r.Move(l.tree.Root().scrollOffset)
	}
	return r
}

// ClearClipRectsIncludingDescendants drops every cached rect in the
// subtree. It must run whenever something that affects clipping changes.
func (l *Layer) ClearClipRectsIncludingDescendants() {
	l.clipRects.clear(0, true)
	for _, c := range l.Children() {
		c.ClearClipRectsIncludingDescendants()
	}
}

// ClearClipRectsIncludingDescendantsOfType is the typed variant.
func (l *Layer) ClearClipRectsIncludingDescendantsOfType(typ ClipRectsType) {
	l.clipRects.clear(typ, false)
	for _, c := range l.Children() {
		c.ClearClipRectsIncludingDescendantsOfType(typ)
	}
}

// HasCachedClipRects reports whether the cache holds rects for ctx.
func (l *Layer) HasCachedClipRects(ctx ClipRectsContext) bool {
	return l.clipRects.get(ctx) != nil
}
