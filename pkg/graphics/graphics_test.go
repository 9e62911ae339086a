package graphics

import (
	"strings"
	"testing"

	"layercomp/pkg/geom"
)

func TestAddChildReparents(t *testing.T) {
	f := DefaultFactory{}
	a, b, c := f.NewLayer("a"), f.NewLayer("b"), f.NewLayer("c")
	a.AddChild(c)
	b.AddChild(c)

	if len(a.Children()) != 0 {
		t.Errorf("a still has %d children", len(a.Children()))
	}
	if c.Parent() != b {
		t.Error("c should be parented to b")
	}
	if c.Root() != b {
		t.Error("root of c should be b")
	}
}

func TestSetChildrenReportsChange(t *testing.T) {
	f := DefaultFactory{}
	p, x, y := f.NewLayer("p"), f.NewLayer("x"), f.NewLayer("y")
	if !p.SetChildren([]*Layer{x, y}) {
		t.Error("first SetChildren should report a change")
	}
	if p.SetChildren([]*Layer{x, y}) {
		t.Error("identical child list should not report a change")
	}
	if !p.SetChildren([]*Layer{y}) {
		t.Error("shorter list should report a change")
	}
	if x.Parent() != nil {
		t.Error("removed child should be detached")
	}
}

func TestHandlesAreUnique(t *testing.T) {
	f := DefaultFactory{}
	seen := map[Handle]bool{}
	for i := 0; i < 10; i++ {
		h := f.NewLayer("l").Handle()
		if seen[h] {
			t.Fatalf("duplicate handle %d", h)
		}
		seen[h] = true
	}
}

func TestBudgetFactory(t *testing.T) {
	f := &BudgetFactory{Remaining: 1}
	if f.NewLayer("first") == nil {
		t.Fatal("first allocation should succeed")
	}
	if f.NewLayer("second") != nil {
		t.Error("second allocation should fail")
	}
	if f.Denied != 1 {
		t.Errorf("Denied = %d, want 1", f.Denied)
	}
}

func TestAbsolutePositionSubtractsScroll(t *testing.T) {
	f := DefaultFactory{}
	root := f.NewLayer("root")
	scroller := f.NewLayer("scroller")
	scroller.Position = geom.Point{X: 10, Y: 10}
	scroller.Scrollable = true
	scroller.ScrollPosition = geom.Point{Y: 40}
	content := f.NewLayer("content")
	content.Position = geom.Point{X: 5, Y: 5}
	root.AddChild(scroller)
	scroller.AddChild(content)

	if got := content.AbsolutePosition(); got != (geom.Point{X: 15, Y: -25}) {
		t.Errorf("AbsolutePosition = %v", got)
	}
}

func TestAsText(t *testing.T) {
	f := DefaultFactory{}
	root := f.NewLayer("root")
	root.Size = geom.Size{W: 800, H: 600}
	child := f.NewLayer("child")
	child.Position = geom.Point{X: 8, Y: 8}
	child.Size = geom.Size{W: 100, H: 100}
	child.DrawsContent = true
	child.Constraint = PositionConstraint{Fixed: true, Bottom: true}
	root.AddChild(child)

	want := `(GraphicsLayer
  (name "root")
  (bounds 800.00 600.00)
  (children 1
    (GraphicsLayer
      (name "child")
      (position 8.00 8.00)
      (bounds 100.00 100.00)
      (drawsContent 1)
      (positionConstraint fixed right=false bottom=true)
    )
  )
)
`
	if got := root.AsText(TextIncludeNames); got != want {
		t.Errorf("AsText mismatch:\n%s\nwant:\n%s", got, want)
	}
	if strings.Contains(root.AsText(0), "name") {
		t.Error("names should be omitted without TextIncludeNames")
	}
}
