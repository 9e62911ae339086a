// Package frame ties documents together into a page: a main frame plus
// the frames hosted by its iframe layers, each with its own layer tree and
// compositor.
package frame

import (
	"layercomp/pkg/compositing"
	"layercomp/pkg/geom"
	"layercomp/pkg/layer"
	"layercomp/pkg/style"
)

// Page owns the frame tree and the services every compositor in it
// shares.
type Page struct {
	services *compositing.Services
	main     *Frame
	observer compositing.ScrollingObserver
}

// NewPage creates a page whose main frame has the given viewport.
func NewPage(services *compositing.Services, viewport geom.Size) *Page {
	p := &Page{services: services}
	p.main = p.newFrame("main", viewport)
	return p
}

func (p *Page) Services() *compositing.Services { return p.services }
func (p *Page) MainFrame() *Frame               { return p.main }

// SetScrollingObserver routes compositing changes of every frame, present
// and future, to o.
func (p *Page) SetScrollingObserver(o compositing.ScrollingObserver) {
	p.observer = o
	for _, f := range p.Frames() {
		f.compositor.SetScrollingObserver(o)
	}
}

// Frames lists every frame, parents before children.
func (p *Page) Frames() []*Frame {
	var out []*Frame
	var walk func(*Frame)
	walk = func(f *Frame) {
		out = append(out, f)
		for _, c := range f.children {
			walk(c)
		}
	}
	walk(p.main)
	return out
}

// UpdateCompositing runs the compositing update for the whole frame tree.
func (p *Page) UpdateCompositing() {
	p.main.compositor.UpdateIfNeededRecursive()
}

func (p *Page) newFrame(name string, viewport geom.Size) *Frame {
	tree := layer.NewTree(viewport)
	f := &Frame{
		Name:       name,
		page:       p,
		tree:       tree,
		compositor: compositing.NewCompositor(tree, p.services),
	}
	if p.observer != nil {
		f.compositor.SetScrollingObserver(p.observer)
	}
	f.compositor.SetChildRemovedHandler(f.childCompositorRemoved)
	return f
}

// Frame is one document in the page.
type Frame struct {
	Name string

	page       *Page
	tree       *layer.Tree
	compositor *compositing.Compositor
	parent     *Frame
	owner      *layer.Layer
	children   []*Frame
}

func (f *Frame) Page() *Page                         { return f.page }
func (f *Frame) Tree() *layer.Tree                   { return f.tree }
func (f *Frame) Compositor() *compositing.Compositor { return f.compositor }
func (f *Frame) Parent() *Frame                      { return f.parent }
func (f *Frame) Children() []*Frame                  { return f.children }
func (f *Frame) IsMainFrame() bool                   { return f.parent == nil }

// Owner is the iframe layer in the parent document, nil for the main
// frame.
func (f *Frame) Owner() *layer.Layer { return f.owner }

// AddChildFrame hosts a new document in the iframe layer owner.
func (f *Frame) AddChildFrame(owner *layer.Layer, name string, viewport geom.Size) *Frame {
	layer.Assert(owner.Tree() == f.tree, "iframe owner must belong to this frame")
	child := f.page.newFrame(name, viewport)
	child.parent = f
	child.owner = owner
	f.children = append(f.children, child)
	f.compositor.AddChildCompositor(owner, child.compositor)
	return child
}

// RemoveChildFrame detaches child and its subtree. Removing the owner
// layer from the tree has the same effect.
func (f *Frame) RemoveChildFrame(child *Frame) {
	if child.parent != f {
		return
	}
	owner := child.owner
	f.compositor.RemoveChildCompositor(owner)
	f.childCompositorRemoved(owner)
}

func (f *Frame) childCompositorRemoved(owner *layer.Layer) {
	for i, c := range f.children {
		if c.owner == owner {
			f.children = append(f.children[:i:i], f.children[i+1:]...)
			c.parent = nil
			c.owner = nil
			return
		}
	}
}

// FrameRect is the frame's viewport in the parent document's coordinates.
// The main frame's rect starts at the origin.
func (f *Frame) FrameRect() geom.Rect {
	size := f.tree.Root().Size()
	if f.owner == nil {
		return geom.NewRect(geom.Point{}, size)
	}
	return geom.NewRect(f.owner.AbsolutePosition(), size)
}

// ContentOffsetInParent maps this frame's document coordinates into the
// parent's document coordinates.
func (f *Frame) ContentOffsetInParent() geom.Point {
	return f.FrameRect().Location().Sub(f.tree.Root().ScrollOffset())
}

// IsScrollable reports a frame whose document overflows its viewport.
func (f *Frame) IsScrollable() bool {
	return f.tree.Root().ScrollsOverflow()
}

// UsesCompositedScrolling reports a frame the compositor scrolls without
// the main thread.
func (f *Frame) UsesCompositedScrolling() bool {
	if f.IsMainFrame() {
		return f.compositor.ScrollLayer() != nil
	}
	return f.compositor.InCompositingMode() && f.compositor.ReasonFinder().RequiresCompositingForScrollableFrame(f.tree)
}

// ScrollableAreas lists every layer the user can scroll, in tree order.
// The frame's own viewport is not included.
func (f *Frame) ScrollableAreas() []*layer.ScrollableArea {
	var out []*layer.ScrollableArea
	f.tree.Walk(func(l *layer.Layer) bool {
		if l.IsRoot() {
			return true
		}
		if a := l.ScrollableArea(); a != nil && a.IsScrollable() {
			out = append(out, a)
		}
		return true
	})
	return out
}

// ResizerAreas lists scrollable areas that draw a resize control.
func (f *Frame) ResizerAreas() []*layer.ScrollableArea {
	var out []*layer.ScrollableArea
	f.tree.Walk(func(l *layer.Layer) bool {
		if a := l.ScrollableArea(); a != nil && a.HasResizer() {
			out = append(out, a)
		}
		return true
	})
	return out
}

// WheelEventPlugins lists plugin layers that consume wheel events
// themselves.
func (f *Frame) WheelEventPlugins() []*layer.Layer {
	return f.collect(func(l *layer.Layer) bool {
		return l.Kind == layer.KindPlugin && l.WantsWheelEvents
	})
}

// ViewportConstrainedObjects lists the position:fixed layers.
func (f *Frame) ViewportConstrainedObjects() []*layer.Layer {
	return f.collect(func(l *layer.Layer) bool { return l.Style().GetPosition() == style.PositionFixed })
}

// HasSlowRepaintObjects reports content that must be repainted on every
// scroll, such as fixed backgrounds.
func (f *Frame) HasSlowRepaintObjects() bool {
	return len(f.collect(func(l *layer.Layer) bool { return l.Style().HasFixedBackground() })) > 0
}

// TouchEventTargets lists layers with touch handlers.
func (f *Frame) TouchEventTargets() []*layer.Layer {
	return f.collect(func(l *layer.Layer) bool { return l.HasTouchHandler })
}

func (f *Frame) collect(match func(*layer.Layer) bool) []*layer.Layer {
	var out []*layer.Layer
	f.tree.Walk(func(l *layer.Layer) bool {
		if match(l) {
			out = append(out, l)
		}
		return true
	})
	return out
}
