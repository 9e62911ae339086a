package layer

import (
	"testing"

	"layercomp/pkg/geom"
	"layercomp/pkg/style"
)

func TestEqualZIndexKeepsTreeOrder(t *testing.T) {
	tree := newTestTree(t, 800, 600)
	root := tree.Root()
	for _, n := range []string{"a", "b", "c"} {
		addLayer(t, tree, root, n, "position: relative; z-index: 1", geom.Rect{W: 10, H: 10})
	}

	got := names(root.PosZOrderList())
	if want := []string{"a", "b", "c"}; !equalNames(got, want) {
		t.Errorf("pos z-order = %v, want %v", got, want)
	}
}

// z-index only applies to positioned boxes. An unpositioned stacking
// context sorts at zero.
func TestZIndexIgnoredWithoutPosition(t *testing.T) {
	tree := newTestTree(t, 800, 600)
	root := tree.Root()
	op := addLayer(t, tree, root, "op", "opacity: 0.5; z-index: 5", geom.Rect{W: 10, H: 10})
	addLayer(t, tree, root, "rel", "position: relative; z-index: 1", geom.Rect{W: 10, H: 10})

	if got := op.ZIndex(); got != 0 {
		t.Errorf("unpositioned z-index = %d, want 0", got)
	}
	if got, want := names(root.PosZOrderList()), []string{"op", "rel"}; !equalNames(got, want) {
		t.Errorf("pos z-order = %v, want %v", got, want)
	}
}

func TestZOrderPartition(t *testing.T) {
	tree := newTestTree(t, 800, 600)
	root := tree.Root()
	top := addLayer(t, tree, root, "top", "position: relative; z-index: 5", geom.Rect{W: 10, H: 10})
	addLayer(t, tree, top, "inside-top", "position: absolute; z-index: 100", geom.Rect{W: 10, H: 10})
	neg := addLayer(t, tree, root, "neg", "position: absolute; z-index: -1", geom.Rect{W: 10, H: 10})
	wrapper := addLayer(t, tree, root, "wrapper", "position: relative", geom.Rect{W: 10, H: 10})
	addLayer(t, tree, wrapper, "escapes", "position: absolute; z-index: 2", geom.Rect{W: 10, H: 10})
	flow := addLayer(t, tree, root, "flow", "overflow: hidden", geom.Rect{W: 10, H: 10})

	if got, want := names(root.PosZOrderList()), []string{"wrapper", "escapes", "top"}; !equalNames(got, want) {
		t.Errorf("pos = %v, want %v", got, want)
	}
	if got, want := names(root.NegZOrderList()), []string{"neg"}; !equalNames(got, want) {
		t.Errorf("neg = %v, want %v", got, want)
	}
	if got, want := names(top.PosZOrderList()), []string{"inside-top"}; !equalNames(got, want) {
		t.Errorf("top's pos = %v, want %v", got, want)
	}
	if got, want := names(root.NormalFlowList()), []string{"flow"}; !equalNames(got, want) {
		t.Errorf("normal flow = %v, want %v", got, want)
	}
	if len(wrapper.PosZOrderList()) != 0 {
		t.Error("non stacking context should have no z-order lists")
	}
	if neg.IsNormalFlowOnly() || !flow.IsNormalFlowOnly() {
		t.Error("normal flow classification is wrong")
	}
}

func TestReflectionIsNotCollected(t *testing.T) {
	tree := newTestTree(t, 800, 600)
	root := tree.Root()
	l := addLayer(t, tree, root, "reflected", "position: relative; z-index: 0; -webkit-box-reflect: below", geom.Rect{W: 10, H: 10})
	r := tree.AddReflection(l)
	r.SetStyle(style.ParseInlineStyle("position: relative; z-index: 3"))

	for _, c := range l.PosZOrderList() {
		if c == r {
			t.Fatal("reflection layer must not appear in its owner's lists")
		}
	}
	for _, c := range root.PosZOrderList() {
		if c == r {
			t.Fatal("reflection layer must not appear in the root's lists")
		}
	}
}

func TestTopLayerAppendedLast(t *testing.T) {
	tree := newTestTree(t, 800, 600)
	root := tree.Root()
	dialog := addLayer(t, tree, root, "dialog", "position: fixed", geom.Rect{W: 10, H: 10})
	addLayer(t, tree, root, "high", "position: relative; z-index: 1000", geom.Rect{W: 10, H: 10})
	tree.AddToTopLayer(dialog)

	got := names(root.PosZOrderList())
	if want := []string{"high", "dialog"}; !equalNames(got, want) {
		t.Errorf("pos = %v, want %v", got, want)
	}

	tree.RemoveFromTopLayer(dialog)
	got = names(root.PosZOrderList())
	if want := []string{"dialog", "high"}; !equalNames(got, want) {
		t.Errorf("after removal pos = %v, want %v", got, want)
	}
}

func TestStyleChangeDirtiesAncestorLists(t *testing.T) {
	tree := newTestTree(t, 800, 600)
	root := tree.Root()
	a := addLayer(t, tree, root, "a", "position: relative; z-index: 1", geom.Rect{W: 10, H: 10})
	b := addLayer(t, tree, root, "b", "position: relative; z-index: 2", geom.Rect{W: 10, H: 10})
	root.UpdateLayerListsRecursive()
	if root.ZOrderListsDirty() {
		t.Fatal("lists should be clean after update")
	}

	a.SetStyle(style.ParseInlineStyle("position: relative; z-index: 3"))
	if !root.ZOrderListsDirty() {
		t.Fatal("z-index change should dirty the stacking context")
	}
	if got, want := names(root.PosZOrderList()), []string{b.Name, a.Name}; !equalNames(got, want) {
		t.Errorf("pos = %v, want %v", got, want)
	}
}

func TestDirtyReadPanicsWhenForbidden(t *testing.T) {
	tree := newTestTree(t, 800, 600)
	addLayer(t, tree, tree.Root(), "a", "position: relative", geom.Rect{W: 10, H: 10})
	tree.ForbidLayerListMutation(true)
	defer tree.ForbidLayerListMutation(false)

	defer func() {
		if recover() == nil {
			t.Error("expected panic reading dirty lists")
		}
	}()
	tree.Root().PosZOrderList()
}

func TestPaintOrderChildren(t *testing.T) {
	tree := newTestTree(t, 800, 600)
	root := tree.Root()
	addLayer(t, tree, root, "pos", "position: relative; z-index: 1", geom.Rect{W: 10, H: 10})
	addLayer(t, tree, root, "flow", "overflow: hidden", geom.Rect{W: 10, H: 10})
	addLayer(t, tree, root, "neg", "position: relative; z-index: -1", geom.Rect{W: 10, H: 10})

	got := names(root.PaintOrderChildren(AllChildren))
	if want := []string{"neg", "flow", "pos"}; !equalNames(got, want) {
		t.Errorf("paint order = %v, want %v", got, want)
	}
	got = names(root.PaintOrderChildren(NormalFlowChildren | PositiveZOrderChildren))
	if want := []string{"flow", "pos"}; !equalNames(got, want) {
		t.Errorf("paint order = %v, want %v", got, want)
	}
}
