package compositing

import (
	"testing"

	"layercomp/pkg/geom"
	"layercomp/pkg/layer"
)

func TestOverlapMapContexts(t *testing.T) {
	tree := layer.NewTree(geom.Size{W: 800, H: 600})
	a := tree.Add(tree.Root(), "a", layer.KindBlock, nil)

	m := NewOverlapMap()
	m.BeginNewOverlapTestingContext()
	m.Add(a, geom.Rect{X: 0, Y: 0, W: 100, H: 100})

	// a's own subtree tests against the fresh context.
	if m.OverlapsLayers(geom.Rect{X: 10, Y: 10, W: 10, H: 10}) {
		t.Errorf("descendants should not see their ancestor's bounds")
	}
	m.FinishCurrentOverlapTestingContext()

	if !m.OverlapsLayers(geom.Rect{X: 50, Y: 50, W: 100, H: 100}) {
		t.Errorf("later siblings should overlap a's bounds")
	}
	if m.OverlapsLayers(geom.Rect{X: 200, Y: 200, W: 10, H: 10}) {
		t.Errorf("disjoint rect reported as overlapping")
	}
	if !m.Contains(a) {
		t.Errorf("a should be recorded")
	}
	if m.Depth() != 1 {
		t.Errorf("depth = %d, want 1", m.Depth())
	}
}

func TestOverlapMapBubblesUp(t *testing.T) {
	tree := layer.NewTree(geom.Size{W: 800, H: 600})
	a := tree.Add(tree.Root(), "a", layer.KindBlock, nil)
	b := tree.Add(a, "b", layer.KindBlock, nil)

	m := NewOverlapMap()
	m.BeginNewOverlapTestingContext() // a's subtree
	m.Add(a, geom.Rect{W: 10, H: 10})
	m.BeginNewOverlapTestingContext() // b's subtree
	m.Add(b, geom.Rect{X: 300, Y: 300, W: 10, H: 10})
	m.FinishCurrentOverlapTestingContext()
	m.FinishCurrentOverlapTestingContext()

	if !m.OverlapsLayers(geom.Rect{X: 305, Y: 305, W: 1, H: 1}) {
		t.Errorf("nested composited bounds should bubble up to the outer context")
	}
}

func TestOverlapMapAddWithoutContextPanics(t *testing.T) {
	tree := layer.NewTree(geom.Size{W: 10, H: 10})
	defer func() {
		if recover() == nil {
			t.Errorf("expected panic")
		}
	}()
	NewOverlapMap().Add(tree.Root(), geom.Rect{W: 1, H: 1})
}
