package compositing

import (
	"strings"
	"testing"

	"layercomp/pkg/config"
	"layercomp/pkg/geom"
	"layercomp/pkg/graphics"
	"layercomp/pkg/layer"
	"layercomp/pkg/style"
)

func newTestCompositor(t *testing.T, tree *layer.Tree, configure func(*config.Settings), factory graphics.Factory) *Compositor {
	t.Helper()
	settings := config.DefaultSettings()
	if configure != nil {
		configure(&settings)
	}
	return NewCompositor(tree, NewServices(settings, factory))
}

func addLayer(t *testing.T, tree *layer.Tree, parent *layer.Layer, name, css string, r geom.Rect) *layer.Layer {
	t.Helper()
	l := tree.Add(parent, name, layer.KindBlock, style.ParseInlineStyle(css))
	l.SetGeometry(r.Location(), r.Size())
	l.HasContent = true
	return l
}

func TestFixedPositionPromotion(t *testing.T) {
	tree := layer.NewTree(geom.Size{W: 500, H: 500})
	tree.Root().SetContentSize(geom.Size{W: 500, H: 2000})
	wrapper := addLayer(t, tree, tree.Root(), "wrapper", "", geom.Rect{W: 500, H: 300})
	fixed := addLayer(t, tree, wrapper, "fixed", "position: fixed", geom.Rect{W: 100, H: 100})
	c := newTestCompositor(t, tree, nil, nil)

	c.UpdateIfNeededRecursive()
	if fixed.DirectReasons()&layer.ReasonPositionFixed == 0 {
		t.Fatalf("direct reasons = %v, want positionFixed", fixed.DirectReasons())
	}
	if fixed.CompositingState() != layer.PaintsIntoOwnBacking {
		t.Errorf("compositing state = %v, want own", fixed.CompositingState())
	}
	g := fixed.CompositedLayerMapping().ChildForSuperlayers()
	if !g.Constraint.Fixed {
		t.Errorf("fixed layer has no position constraint")
	}
	if tree.Lifecycle() != layer.LifecycleCompositingClean {
		t.Errorf("lifecycle = %v, want CompositingClean", tree.Lifecycle())
	}

	// A transformed ancestor becomes the containing block.
	wrapper.SetStyle(style.ParseInlineStyle("transform: translate(10px, 0)"))
	c.UpdateIfNeededRecursive()
	if fixed.DirectReasons()&layer.ReasonPositionFixed != 0 {
		t.Errorf("fixed layer in a transformed ancestor kept positionFixed")
	}
	if got := fixed.NotCompositedReason(); got != layer.NotCompositedForNonViewContainer {
		t.Errorf("not composited reason = %v, want %v", got, layer.NotCompositedForNonViewContainer)
	}
	if fixed.CompositedLayerMapping() != nil {
		t.Errorf("fixed layer kept its backing")
	}
}

func TestFixedPositionWithoutScrolling(t *testing.T) {
	tests := []struct {
		name    string
		content geom.Size
		bounds  geom.Rect
		want    layer.NotCompositedReason
	}{
		{"unscrollable", geom.Size{W: 500, H: 500}, geom.Rect{W: 100, H: 100}, layer.NotCompositedForUnscrollableAncestors},
		{"out of view", geom.Size{W: 500, H: 2000}, geom.Rect{X: 600, Y: 600, W: 100, H: 100}, layer.NotCompositedForBoundsOutOfView},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree := layer.NewTree(geom.Size{W: 500, H: 500})
			tree.Root().SetContentSize(tt.content)
			fixed := addLayer(t, tree, tree.Root(), "fixed", "position: fixed", tt.bounds)
			c := newTestCompositor(t, tree, nil, nil)
			c.UpdateIfNeededRecursive()

			if fixed.DirectReasons()&layer.ReasonPositionFixed != 0 {
				t.Errorf("fixed layer promoted")
			}
			if got := fixed.NotCompositedReason(); got != tt.want {
				t.Errorf("not composited reason = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSquashIntoEarlierSibling(t *testing.T) {
	tests := []struct {
		name      string
		squashing bool
		want      layer.CompositingState
	}{
		{"squashing", true, layer.PaintsIntoGroupedBacking},
		// What would have been squashed composites alone.
		{"no squashing", false, layer.PaintsIntoOwnBacking},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree := layer.NewTree(geom.Size{W: 800, H: 600})
			root := tree.Root()
			a := addLayer(t, tree, root, "a", "position: relative; z-index: 1; transform: translateZ(0)", geom.Rect{W: 100, H: 100})
			b := addLayer(t, tree, root, "b", "position: relative; z-index: 2", geom.Rect{X: 50, Y: 50, W: 100, H: 100})
			c := newTestCompositor(t, tree, func(s *config.Settings) { s.Squashing = tt.squashing }, nil)
			c.UpdateIfNeededRecursive()

			if b.CompositingReasons()&layer.ReasonOverlap == 0 {
				t.Fatalf("b reasons = %v, want overlap", b.CompositingReasons())
			}
			if b.CompositingState() != tt.want {
				t.Fatalf("b state = %v, want %v", b.CompositingState(), tt.want)
			}
			if tt.squashing {
				if b.GroupedMapping() != a.CompositedLayerMapping() {
					t.Errorf("b squashed into the wrong backing")
				}
				if got := c.LastUpdate().Squashed; got != 1 {
					t.Errorf("squashed = %d, want 1", got)
				}
				if a.CompositedLayerMapping().SquashingLayer() == nil {
					t.Errorf("a has squashed layers but no squashing layer")
				}
			}
		})
	}
}

func TestSquashingWouldBreakPaintOrder(t *testing.T) {
	tree := layer.NewTree(geom.Size{W: 800, H: 600})
	a := addLayer(t, tree, tree.Root(), "a", "position: relative; z-index: 1; transform: translateZ(0)", geom.Rect{W: 200, H: 200})
	// neg paints under a's content and is the most recent backing when a
	// starts; d paints after a's background and overlaps neg.
	neg := addLayer(t, tree, a, "neg", "position: relative; z-index: -1; transform: translateZ(0)", geom.Rect{X: 10, Y: 10, W: 50, H: 50})
	d := addLayer(t, tree, a, "d", "position: relative", geom.Rect{X: 20, Y: 20, W: 50, H: 50})
	c := newTestCompositor(t, tree, nil, nil)
	c.UpdateIfNeededRecursive()

	if neg.CompositingState() != layer.PaintsIntoOwnBacking {
		t.Fatalf("neg state = %v, want own", neg.CompositingState())
	}
	if a.CompositingReasons()&layer.ReasonNegativeZIndexChildren == 0 {
		t.Errorf("a reasons = %v, want negativeZIndexChildren", a.CompositingReasons())
	}
	if got := d.SquashingDisallowedReasons(); got != layer.ReasonSquashingWouldBreakPaintOrder {
		t.Errorf("d squashing disallowed = %v, want squashingWouldBreakPaintOrder", got)
	}
	if d.GroupedMapping() != nil {
		t.Errorf("d squashed into a backing that paints after it")
	}
	if d.CompositingState() != layer.PaintsIntoOwnBacking {
		t.Errorf("d state = %v, want own", d.CompositingState())
	}
	if a.CompositedLayerMapping().ForegroundLayer() == nil {
		t.Errorf("a needs a foreground layer above its negative z child")
	}
}

func TestSquashingTargetFollowsPaintOrder(t *testing.T) {
	tree := layer.NewTree(geom.Size{W: 800, H: 600})
	root := tree.Root()
	// a comes first in the tree but paints after under, so a is never a
	// target for under. over paints after a and squashes into it.
	a := addLayer(t, tree, root, "a", "position: relative; z-index: 2; transform: translateZ(0)", geom.Rect{W: 100, H: 100})
	under := addLayer(t, tree, root, "under", "position: relative; z-index: 1", geom.Rect{X: 50, Y: 50, W: 100, H: 100})
	over := addLayer(t, tree, root, "over", "position: relative; z-index: 3", geom.Rect{X: 50, Y: 50, W: 100, H: 100})
	c := newTestCompositor(t, tree, nil, nil)
	c.UpdateIfNeededRecursive()

	var order []string
	for _, l := range root.PosZOrderList() {
		order = append(order, l.Name)
	}
	if got, want := strings.Join(order, ","), "under,a,over"; got != want {
		t.Fatalf("paint order = %s, want %s", got, want)
	}
	if under.GroupedMapping() != nil {
		t.Errorf("under squashed into a backing that paints after it")
	}
	if under.CompositingState() != layer.NotComposited {
		t.Errorf("under state = %v, want not composited", under.CompositingState())
	}
	if over.GroupedMapping() != a.CompositedLayerMapping() {
		t.Errorf("over should squash into a, got state %v", over.CompositingState())
	}
}

func TestSquashingSparsity(t *testing.T) {
	tests := []struct {
		name      string
		tolerance float64
		squashed  bool
	}{
		{"default tolerance", 6, false},
		{"loose tolerance", 1e9, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree := layer.NewTree(geom.Size{W: 800, H: 600})
			root := tree.Root()
			big := addLayer(t, tree, root, "big", "position: relative; z-index: 1; transform: translateZ(0)", geom.Rect{W: 500, H: 500})
			first := addLayer(t, tree, root, "first", "position: relative; z-index: 2", geom.Rect{W: 10, H: 10})
			far := addLayer(t, tree, root, "far", "position: relative; z-index: 3", geom.Rect{X: 480, Y: 480, W: 10, H: 10})
			c := newTestCompositor(t, tree, func(s *config.Settings) { s.SparsityTolerance = tt.tolerance }, nil)
			c.UpdateIfNeededRecursive()

			if first.GroupedMapping() != big.CompositedLayerMapping() {
				t.Fatalf("first should squash into big")
			}
			if got := far.GroupedMapping() != nil; got != tt.squashed {
				t.Errorf("far squashed = %v, want %v", got, tt.squashed)
			}
			if !tt.squashed && far.SquashingDisallowedReasons() != layer.ReasonSquashingSparsityExceeded {
				t.Errorf("far squashing disallowed = %v, want squashingSparsityExceeded", far.SquashingDisallowedReasons())
			}
		})
	}
}

func TestAllocationFailureFallsBack(t *testing.T) {
	tests := []struct {
		name        string
		budget      int
		compositing bool
		rootBacking bool
	}{
		{"no layers at all", 0, false, false},
		{"root hierarchy and root backing only", 5, true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree := layer.NewTree(geom.Size{W: 500, H: 500})
			tree.Root().SetContentSize(geom.Size{W: 500, H: 2000})
			fixed := addLayer(t, tree, tree.Root(), "fixed", "position: fixed", geom.Rect{W: 100, H: 100})
			factory := &graphics.BudgetFactory{Remaining: tt.budget}
			c := newTestCompositor(t, tree, func(s *config.Settings) { s.Metrics.ScrollbarThickness = 0 }, factory)
			c.UpdateIfNeededRecursive()

			if c.InCompositingMode() != tt.compositing {
				t.Errorf("compositing mode = %v, want %v", c.InCompositingMode(), tt.compositing)
			}
			if got := tree.Root().CompositedLayerMapping() != nil; got != tt.rootBacking {
				t.Errorf("root backing = %v, want %v", got, tt.rootBacking)
			}
			if fixed.CompositingState() != layer.NotComposited {
				t.Errorf("fixed state = %v, want none", fixed.CompositingState())
			}
			if factory.Denied == 0 {
				t.Errorf("expected the factory to deny an allocation")
			}
		})
	}
}

func TestInnerFrameCompositingMode(t *testing.T) {
	main := layer.NewTree(geom.Size{W: 800, H: 600})
	owner := main.Add(main.Root(), "frame", layer.KindIFrame, nil)
	owner.SetGeometry(geom.Point{X: 10, Y: 10}, geom.Size{W: 300, H: 200})
	inner := layer.NewTree(geom.Size{W: 300, H: 200})

	parent := newTestCompositor(t, main, nil, nil)
	child := newTestCompositor(t, inner, nil, nil)
	parent.AddChildCompositor(owner, child)
	parent.UpdateIfNeededRecursive()

	if child.InCompositingMode() {
		t.Fatalf("inner document with nothing to composite entered compositing mode")
	}
	if !parent.InCompositingMode() {
		t.Fatalf("main document should always composite")
	}
	if owner.CompositedLayerMapping() != nil {
		t.Errorf("iframe composited while its document is not")
	}

	box := addLayer(t, inner, inner.Root(), "box", "transform: translateZ(0)", geom.Rect{W: 50, H: 50})
	parent.UpdateIfNeededRecursive()
	if !child.InCompositingMode() {
		t.Fatalf("inner document should composite a 3d layer")
	}
	m := owner.CompositedLayerMapping()
	if m == nil || owner.CompositingReasons()&layer.ReasonIFrame == 0 {
		t.Fatalf("iframe owner reasons = %v, want iFrame backing", owner.CompositingReasons())
	}
	if child.RootGraphicsLayer().Parent() != m.ParentForSublayers() {
		t.Errorf("inner root graphics layer is not parented under the iframe backing")
	}

	inner.Remove(box)
	parent.UpdateIfNeededRecursive()
	if child.InCompositingMode() {
		t.Errorf("inner document stayed in compositing mode")
	}
	if child.RootGraphicsLayer() != nil {
		t.Errorf("inner root layers survived leaving compositing mode")
	}
	if owner.CompositedLayerMapping() != nil {
		t.Errorf("iframe kept its backing")
	}
}

func TestLayerTreeAsText(t *testing.T) {
	tree := layer.NewTree(geom.Size{W: 500, H: 500})
	tree.Root().SetContentSize(geom.Size{W: 500, H: 2000})
	addLayer(t, tree, tree.Root(), "fixed", "position: fixed", geom.Rect{X: 10, Y: 20, W: 100, H: 100})
	c := newTestCompositor(t, tree, nil, nil)
	c.UpdateIfNeededRecursive()

	text := c.LayerTreeAsText(graphics.TextIncludeCompositingReasons)
	for _, want := range []string{
		"(compositingReasons root)",
		"(compositingReasons positionFixed)",
		"(position 10.00 20.00)",
		"(positionConstraint fixed right=false bottom=false)",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("tree dump missing %q:\n%s", want, text)
		}
	}
	if c.LayerForVerticalScrollbar() == nil {
		t.Errorf("frame scrolls vertically but has no scrollbar layer")
	}
	if c.LayerForHorizontalScrollbar() != nil {
		t.Errorf("frame does not scroll horizontally")
	}
}

func TestUpdateTypeOnlyRaises(t *testing.T) {
	tree := layer.NewTree(geom.Size{W: 100, H: 100})
	c := newTestCompositor(t, tree, nil, nil)
	c.UpdateIfNeededRecursive()
	if c.PendingUpdateType() != CompositingUpdateNone {
		t.Fatalf("pending = %v after update", c.PendingUpdateType())
	}
	c.SetNeedsCompositingUpdate(CompositingUpdateRebuildTree)
	c.SetNeedsCompositingUpdate(CompositingUpdateAfterGeometryChange)
	if c.PendingUpdateType() != CompositingUpdateRebuildTree {
		t.Errorf("pending = %v, want RebuildTree", c.PendingUpdateType())
	}
}

func TestUpdateDuringLayoutPanics(t *testing.T) {
	tree := layer.NewTree(geom.Size{W: 100, H: 100})
	c := newTestCompositor(t, tree, nil, nil)
	tree.AdvanceTo(layer.LifecycleInPerformLayout)
	defer func() {
		if recover() == nil {
			t.Errorf("expected panic")
		}
	}()
	c.UpdateIfNeededRecursive()
}

func TestFrameScrollMovesScrollLayer(t *testing.T) {
	tree := layer.NewTree(geom.Size{W: 400, H: 300})
	tree.Root().SetContentSize(geom.Size{W: 400, H: 1200})
	addLayer(t, tree, tree.Root(), "box", "will-change: transform", geom.Rect{X: 10, Y: 400, W: 50, H: 50})
	c := newTestCompositor(t, tree, nil, nil)
	c.UpdateIfNeededRecursive()
	if c.ScrollLayer() == nil {
		t.Fatalf("main frame has no scroll layer")
	}

	tree.Root().ScrollTo(geom.Point{Y: 250})
	c.UpdateIfNeededRecursive()
	if got, want := c.ScrollLayer().ScrollPosition, (geom.Point{Y: 250}); got != want {
		t.Errorf("scroll position = %v, want %v", got, want)
	}
	if got := c.RootContentLayer().Position; got != (geom.Point{}) {
		t.Errorf("root content layer moved to %v; the offset belongs on the scroll layer", got)
	}
	box := tree.FindByName("box").CompositedLayerMapping().MainGraphicsLayer()
	if got, want := box.AbsolutePosition(), (geom.Point{X: 10, Y: 150}); got != want {
		t.Errorf("box on screen at %v, want %v", got, want)
	}
}
