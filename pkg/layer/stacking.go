package layer

import (
	"cmp"
	"slices"
)

// stackingNode caches the paint-order lists of a layer. The z-order lists
// are only populated on stacking contexts and hold the layers whose
// nearest enclosing stacking context is this one.
type stackingNode struct {
	posZOrderList  []ID
	negZOrderList  []ID
	normalFlowList []ID

	zOrderListsDirty    bool
	normalFlowListDirty bool
}

func (n *stackingNode) dirtyZOrderLists() {
	n.posZOrderList = nil
	n.negZOrderList = nil
	n.zOrderListsDirty = true
}

func (n *stackingNode) clearZOrderLists() {
	n.posZOrderList = nil
	n.negZOrderList = nil
	n.zOrderListsDirty = false
}

func (n *stackingNode) dirtyNormalFlowList() {
	n.normalFlowList = nil
	n.normalFlowListDirty = true
}

// AncestorStackingContext returns the nearest stacking context strictly
// above l. Top layer elements stack in the root.
func (l *Layer) AncestorStackingContext() *Layer {
	if l.inTopLayer && !l.IsRoot() {
		return l.tree.Root()
	}
	for p := l.Parent(); p != nil; p = p.Parent() {
		if p.IsStackingContext() {
			return p
		}
	}
	return nil
}

func (l *Layer) dirtyStackingContextZOrderLists() {
	if sc := l.AncestorStackingContext(); sc != nil {
		sc.stacking.dirtyZOrderLists()
	}
}

// ForbidLayerListMutation makes reads of dirty stacking lists fatal. The
// compositing walks run with mutation forbidden.
func (t *Tree) ForbidLayerListMutation(forbid bool) {
	t.listMutationForbidden = forbid
}

func (l *Layer) ZOrderListsDirty() bool    { return l.stacking.zOrderListsDirty }
func (l *Layer) NormalFlowListDirty() bool { return l.stacking.normalFlowListDirty }

// UpdateLayerListsIfNeeded rebuilds whichever lists are dirty.
func (l *Layer) UpdateLayerListsIfNeeded() {
	l.updateZOrderLists()
	l.updateNormalFlowList()
	if r := l.Reflection(); r != nil {
		r.updateZOrderLists()
		r.updateNormalFlowList()
	}
}

// UpdateLayerListsRecursive brings every list in the subtree up to date.
func (l *Layer) UpdateLayerListsRecursive() {
	l.UpdateLayerListsIfNeeded()
	for _, c := range l.Children() {
		c.UpdateLayerListsRecursive()
	}
}

func (l *Layer) updateZOrderLists() {
	if !l.stacking.zOrderListsDirty {
		return
	}
	assertf(!l.tree.listMutationForbidden, "z-order lists of %s read while dirty", l)
	if !l.IsStackingContext() {
		l.stacking.clearZOrderLists()
		return
	}
	l.rebuildZOrderLists()
}

func (l *Layer) rebuildZOrderLists() {
	var pos, neg []ID
	for _, c := range l.Children() {
		if c.id == l.reflection {
			continue
		}
		c.collectLayers(&pos, &neg)
	}

	byZ := func(a, b ID) int {
		return cmp.Compare(l.tree.layers[a].ZIndex(), l.tree.layers[b].ZIndex())
	}
	slices.SortStableFunc(pos, byZ)
	slices.SortStableFunc(neg, byZ)

	if l.IsRoot() {
		for _, id := range l.tree.topLayer {
			if l.tree.layers[id] != nil {
				pos = append(pos, id)
			}
		}
	}

	l.stacking.posZOrderList = pos
	l.stacking.negZOrderList = neg
	l.stacking.zOrderListsDirty = false
}

func (l *Layer) collectLayers(pos, neg *[]ID) {
	if l.inTopLayer {
		return
	}
	if !l.IsNormalFlowOnly() {
		if l.ZIndex() >= 0 {
			*pos = append(*pos, l.id)
		} else {
			*neg = append(*neg, l.id)
		}
	}
	if l.IsStackingContext() {
		return
	}
	for _, c := range l.Children() {
		if c.id == l.reflection {
			continue
		}
		c.collectLayers(pos, neg)
	}
}

func (l *Layer) updateNormalFlowList() {
	if !l.stacking.normalFlowListDirty {
		return
	}
	assertf(!l.tree.listMutationForbidden, "normal flow list of %s read while dirty", l)
	var list []ID
	for _, c := range l.Children() {
		if c.IsNormalFlowOnly() && c.id != l.reflection {
			list = append(list, c.id)
		}
	}
	l.stacking.normalFlowList = list
	l.stacking.normalFlowListDirty = false
}

// PosZOrderList returns the stacking descendants with z-index >= 0 in
// paint order.
func (l *Layer) PosZOrderList() []*Layer {
	l.updateZOrderLists()
	return l.tree.resolve(l.stacking.posZOrderList)
}

func (l *Layer) NegZOrderList() []*Layer {
	l.updateZOrderLists()
	return l.tree.resolve(l.stacking.negZOrderList)
}

func (l *Layer) NormalFlowList() []*Layer {
	l.updateNormalFlowList()
	return l.tree.resolve(l.stacking.normalFlowList)
}

// ChildrenFlags selects which lists PaintOrderChildren walks.
type ChildrenFlags uint

const (
	NegativeZOrderChildren ChildrenFlags = 1 << iota
	NormalFlowChildren
	PositiveZOrderChildren

	AllChildren = NegativeZOrderChildren | NormalFlowChildren | PositiveZOrderChildren
)

// PaintOrderChildren lists l's stacking children in paint order: negative
// z, then normal flow, then positive z.
func (l *Layer) PaintOrderChildren(which ChildrenFlags) []*Layer {
	var out []*Layer
	if which&NegativeZOrderChildren != 0 {
		out = append(out, l.NegZOrderList()...)
	}
	if which&NormalFlowChildren != 0 {
		out = append(out, l.NormalFlowList()...)
	}
	if which&PositiveZOrderChildren != 0 {
		out = append(out, l.PosZOrderList()...)
	}
	return out
}

// HasNegativeZOrderChildren is true when any stacking descendant paints
// behind l's own content.
func (l *Layer) HasNegativeZOrderChildren() bool {
	return len(l.NegZOrderList()) > 0
}
