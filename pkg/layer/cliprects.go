package layer

import "layercomp/pkg/geom"

// ClipRectsType selects a clip context. Painting and compositing results
// are cached separately; temporary results never touch the cache.
type ClipRectsType int

const (
	PaintingClipRects ClipRectsType = iota
	CompositingClipRects
	TemporaryClipRects
)

func (t ClipRectsType) String() string {
	switch t {
	case PaintingClipRects:
		return "painting"
	case CompositingClipRects:
		return "compositing"
	case TemporaryClipRects:
		return "temporary"
	}
	return "invalid"
}

// ClipRects is the clip inherited by a layer's descendants: one rect for
// normal flow content, one for positioned content and one for fixed
// content. Values are never mutated once stored in a cache.
type ClipRects struct {
	overflow geom.Rect
	pos      geom.Rect
	fixed    geom.Rect
	isFixed  bool
}

// InfiniteClipRects is the unclipped state at the top of a chain.
func InfiniteClipRects() ClipRects {
	inf := geom.InfiniteRect()
	return ClipRects{overflow: inf, pos: inf, fixed: inf}
}

func NewClipRects(overflow, pos, fixed geom.Rect, isFixed bool) ClipRects {
	return ClipRects{overflow: overflow, pos: pos, fixed: fixed, isFixed: isFixed}
}

func (c *ClipRects) OverflowClipRect() geom.Rect { return c.overflow }
func (c *ClipRects) PosClipRect() geom.Rect      { return c.pos }
func (c *ClipRects) FixedClipRect() geom.Rect    { return c.fixed }
func (c *ClipRects) Fixed() bool                 { return c.isFixed }

// ClipRectsContext names the root the rects are expressed against and the
// cache slot they live in.
type ClipRectsContext struct {
	RootLayer *Layer
	Type      ClipRectsType
	// When false the root layer's own overflow clip is ignored.
	RespectOverflowClip bool
}

func NewClipRectsContext(root *Layer, typ ClipRectsType) ClipRectsContext {
	return ClipRectsContext{RootLayer: root, Type: typ, RespectOverflowClip: true}
}

func (c ClipRectsContext) usesCache() bool {
	return c.Type != TemporaryClipRects
}

type clipCacheKey struct {
	root    ID
	typ     ClipRectsType
	respect bool
}

type clipRectsCache struct {
	entries map[clipCacheKey]*ClipRects
}

func (c *clipRectsCache) get(ctx ClipRectsContext) *ClipRects {
	if c.entries == nil {
		return nil
	}
	return c.entries[clipCacheKey{ctx.RootLayer.id, ctx.Type, ctx.RespectOverflowClip}]
}

func (c *clipRectsCache) set(ctx ClipRectsContext, rects *ClipRects) {
	if c.entries == nil {
		c.entries = make(map[clipCacheKey]*ClipRects)
	}
	c.entries[clipCacheKey{ctx.RootLayer.id, ctx.Type, ctx.RespectOverflowClip}] = rects
}

func (c *clipRectsCache) clear(typ ClipRectsType, all bool) {
	for k := range c.entries {
		if all || k.typ == typ {
			delete(c.entries, k)
		}
	}
}
