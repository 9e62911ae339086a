package compositing

import (
	"layercomp/pkg/geom"
	"layercomp/pkg/layer"
)

type overlapContainer struct {
	rects []geom.Rect
}

func (c *overlapContainer) add(r geom.Rect) {
	if !r.IsEmpty() {
		c.rects = append(c.rects, r)
	}
}

func (c *overlapContainer) overlaps(r geom.Rect) bool {
	for _, o := range c.rects {
		if o.Intersects(r) {
			return true
		}
	}
	return false
}

// OverlapMap records the bounds of composited layers already visited in
// paint order. It is a stack of testing contexts: a composited layer
// starts a fresh context for its subtree, since everything in that
// subtree paints into its backing and cannot be overlapped by what is
// behind it.
type OverlapMap struct {
	stack  []overlapContainer
	layers map[*layer.Layer]struct{}
}

func NewOverlapMap() *OverlapMap {
	return &OverlapMap{
		stack:  make([]overlapContainer, 1),
		layers: make(map[*layer.Layer]struct{}),
	}
}

// Add records bounds for l. They count for layers outside the current
// context once it is finished, not for l's own descendants.
func (m *OverlapMap) Add(l *layer.Layer, bounds geom.Rect) {
	layer.Assert(len(m.stack) >= 2, "overlap map add without an open context")
	m.stack[len(m.stack)-2].add(bounds)
	m.layers[l] = struct{}{}
}

func (m *OverlapMap) Contains(l *layer.Layer) bool {
	_, ok := m.layers[l]
	return ok
}

// OverlapsLayers tests bounds against the current context.
func (m *OverlapMap) OverlapsLayers(bounds geom.Rect) bool {
	return m.stack[len(m.stack)-1].overlaps(bounds)
}

func (m *OverlapMap) IsEmpty() bool {
	return len(m.stack[len(m.stack)-1].rects) == 0
}

func (m *OverlapMap) BeginNewOverlapTestingContext() {
	m.stack = append(m.stack, overlapContainer{})
}

// FinishCurrentOverlapTestingContext pops the top context, keeping its
// rects for the enclosing one: layers outside can still overlap things
// that were inside.
func (m *OverlapMap) FinishCurrentOverlapTestingContext() {
	layer.Assert(len(m.stack) >= 2, "overlap map has no context to finish")
	top := m.stack[len(m.stack)-1]
	m.stack = m.stack[:len(m.stack)-1]
	below := &m.stack[len(m.stack)-1]
	below.rects = append(below.rects, top.rects...)
}

// Depth is the number of open contexts including the outermost one.
func (m *OverlapMap) Depth() int { return len(m.stack) }
