package layer

import (
	"layercomp/pkg/geom"
	"layercomp/pkg/style"
)

// ID addresses a layer within its Tree. The zero ID means "no layer".
type ID int

// NoID is the parent of the root and the value of every unset link
// (reflection, reflected layer). Slot 0 of the arena is never used.
const NoID ID = 0

// Client is told about mutations that invalidate compositing state.
type Client interface {
	LayerAdded(l *Layer)
	LayerWillBeRemoved(l *Layer)
	StyleDidChange(l *Layer, old *style.Style)
	GeometryDidChange(l *Layer)
	ScrollOffsetDidChange(l *Layer)
}

// Tree is the layer arena for one document. Layers refer to each other by
// ID; only the tree holds pointers.
type Tree struct {
	layers   []*Layer
	root     ID
	topLayer []ID

	lifecycle             LifecycleState
	client                Client
	listMutationForbidden bool

	// Owner is the iframe layer in the parent document, nil for the main
	// document.
	Owner *Layer
}

// NewTree creates a tree holding only the view layer, sized to the
// viewport.
func NewTree(viewport geom.Size) *Tree {
	t := &Tree{layers: []*Layer{nil}, lifecycle: LifecycleLayoutClean}
	root := t.newLayer("view", KindView, style.NewStyle())
	root.size = viewport
	root.contentSize = viewport
	t.root = root.id
	return t
}

func (t *Tree) newLayer(name string, kind Kind, st *style.Style) *Layer {
	if st == nil {
		st = style.NewStyle()
	}
	l := &Layer{
		tree:  t,
		id:    ID(len(t.layers)),
		Name:  name,
		Kind:  kind,
		style: st,
	}
	l.stacking.zOrderListsDirty = true
	l.stacking.normalFlowListDirty = true
	l.inputsDirty = true
	t.layers = append(t.layers, l)
	return l
}

func (t *Tree) SetClient(c Client) { t.client = c }
func (t *Tree) Client() Client     { return t.client }

func (t *Tree) Root() *Layer { return t.layers[t.root] }

// Layer returns the live layer with the given ID, or nil.
func (t *Tree) Layer(id ID) *Layer {
	if id <= NoID || int(id) >= len(t.layers) {
		return nil
	}
	return t.layers[id]
}

func (t *Tree) Lifecycle() LifecycleState { return t.lifecycle }

// AdvanceTo moves the document lifecycle. Going backwards is only allowed
// to re-enter style, layout or a compositing update.
func (t *Tree) AdvanceTo(s LifecycleState) {
	assertf(s >= t.lifecycle || s <= LifecycleInCompositingUpdate,
		"cannot move lifecycle from %v to %v", t.lifecycle, s)
	t.lifecycle = s
}

// Add appends a new layer as the last child of parent.
func (t *Tree) Add(parent *Layer, name string, kind Kind, st *style.Style) *Layer {
	Assert(parent != nil && parent.tree == t, "parent must belong to this tree")
	Assert(kind != KindView, "only the root may be a view")
	l := t.newLayer(name, kind, st)
	l.parent = parent.id
	parent.children = append(parent.children, l.id)
	t.didInsert(l)
	return l
}

// AddReflection creates the reflection layer of l. The reflection is a
// child of l but is never collected into z-order lists.
func (t *Tree) AddReflection(l *Layer) *Layer {
	Assert(l.reflection == NoID, "layer already has a reflection")
	r := t.newLayer(l.Name+"-reflection", KindReflection, style.NewStyle())
	r.parent = l.id
	r.reflectionOf = l.id
	r.size = l.size
	l.children = append(l.children, r.id)
	l.reflection = r.id
	t.didInsert(r)
	return r
}

func (t *Tree) didInsert(l *Layer) {
	p := l.Parent()
	if l.IsNormalFlowOnly() {
		p.stacking.dirtyNormalFlowList()
	}
	l.dirtyStackingContextZOrderLists()
	l.setNeedsCompositingInputsUpdate()
	if t.client != nil {
		t.client.LayerAdded(l)
	}
}

// Remove detaches l and its subtree from the tree.
func (t *Tree) Remove(l *Layer) {
	Assert(l.tree == t, "layer belongs to another tree")
	Assert(l.id != t.root, "cannot remove the root layer")
	for _, c := range l.Children() {
		t.Remove(c)
	}
	if t.client != nil {
		t.client.LayerWillBeRemoved(l)
	}
	p := l.Parent()
	if l.IsNormalFlowOnly() {
		p.stacking.dirtyNormalFlowList()
	}
	l.dirtyStackingContextZOrderLists()
	p.setNeedsCompositingInputsUpdate()
	for i, c := range p.children {
		if c == l.id {
			p.children = append(p.children[:i:i], p.children[i+1:]...)
			break
		}
	}
	if p.reflection == l.id {
		p.reflection = NoID
	}
	t.RemoveFromTopLayer(l)
	l.parent = NoID
	t.layers[l.id] = nil
}

// AddToTopLayer paints l above everything else on the page.
func (t *Tree) AddToTopLayer(l *Layer) {
	if l.inTopLayer {
		return
	}
	l.dirtyStackingContextZOrderLists()
	l.inTopLayer = true
	t.topLayer = append(t.topLayer, l.id)
	t.didChangeTopLayer(l)
}

func (t *Tree) didChangeTopLayer(l *Layer) {
	t.Root().stacking.dirtyZOrderLists()
	l.stacking.dirtyZOrderLists()
	if p := l.Parent(); p != nil {
		p.stacking.dirtyNormalFlowList()
	}
	l.setNeedsCompositingInputsUpdate()
}

func (t *Tree) RemoveFromTopLayer(l *Layer) {
	if !l.inTopLayer {
		return
	}
	l.inTopLayer = false
	for i, id := range t.topLayer {
		if id == l.id {
			t.topLayer = append(t.topLayer[:i:i], t.topLayer[i+1:]...)
			break
		}
	}
	l.dirtyStackingContextZOrderLists()
	if l.parent != NoID {
		t.didChangeTopLayer(l)
	}
}

func (t *Tree) TopLayer() []*Layer { return t.resolve(t.topLayer) }

func (t *Tree) resolve(ids []ID) []*Layer {
	out := make([]*Layer, 0, len(ids))
	for _, id := range ids {
		out = append(out, t.layers[id])
	}
	return out
}

// Walk visits every layer in tree (DOM) order. Returning false from fn
// skips that layer's descendants.
func (t *Tree) Walk(fn func(*Layer) bool) {
	var walk func(*Layer)
	walk = func(l *Layer) {
		if !fn(l) {
			return
		}
		for _, c := range l.children {
			walk(t.layers[c])
		}
	}
	walk(t.Root())
}

// Len counts live layers.
func (t *Tree) Len() int {
	n := 0
	for _, l := range t.layers {
		if l != nil {
			n++
		}
	}
	return n
}

// FindByName returns the first layer in tree order with the given name.
func (t *Tree) FindByName(name string) *Layer {
	var found *Layer
	t.Walk(func(l *Layer) bool {
		if found == nil && l.Name == name {
			found = l
		}
		return found == nil
	})
	return found
}
