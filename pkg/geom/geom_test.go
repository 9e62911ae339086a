package geom

import "testing"

func TestIntersect(t *testing.T) {
	tests := []struct {
		name string
		a, b Rect
		want Rect
	}{
		{"overlap", Rect{0, 0, 100, 100}, Rect{50, 50, 100, 100}, Rect{50, 50, 50, 50}},
		{"disjoint", Rect{0, 0, 10, 10}, Rect{20, 20, 10, 10}, Rect{}},
		{"touching edges", Rect{0, 0, 10, 10}, Rect{10, 0, 10, 10}, Rect{}},
		{"infinite", InfiniteRect(), Rect{5, 5, 10, 10}, Rect{5, 5, 10, 10}},
		{"both infinite", InfiniteRect(), InfiniteRect(), InfiniteRect()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Intersect(tt.b); got != tt.want {
				t.Errorf("Intersect = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestUniteIgnoresEmpty(t *testing.T) {
	r := Rect{10, 10, 5, 5}
	if got := r.Unite(Rect{}); got != r {
		t.Errorf("Unite with empty = %v, want %v", got, r)
	}
	if got := (Rect{}).Unite(r); got != r {
		t.Errorf("empty.Unite = %v, want %v", got, r)
	}
	if got := r.Unite(Rect{0, 0, 1, 1}); got != (Rect{0, 0, 15, 15}) {
		t.Errorf("Unite = %v", got)
	}
}

func TestMoveKeepsInfinite(t *testing.T) {
	if !InfiniteRect().Move(Point{10, -4}).IsInfinite() {
		t.Error("moved infinite rect should stay infinite")
	}
}

func TestSubtractCoversRemainder(t *testing.T) {
	r := Rect{0, 0, 100, 100}
	s := Rect{25, 25, 50, 50}
	parts := r.Subtract(s)
	if len(parts) != 4 {
		t.Fatalf("expected 4 parts, got %d: %v", len(parts), parts)
	}
	var area float64
	for _, p := range parts {
		if p.Intersects(s) {
			t.Errorf("part %v overlaps subtracted rect", p)
		}
		area += p.Area()
	}
	if area != 100*100-50*50 {
		t.Errorf("remaining area = %g", area)
	}
}

func TestRegionUnite(t *testing.T) {
	var r Region
	r.Unite(Rect{0, 0, 100, 100})
	r.Unite(Rect{50, 50, 100, 100})
	r.Unite(Rect{10, 10, 10, 10})

	if got := r.Area(); got != 100*100*2-50*50 {
		t.Errorf("Area = %g", got)
	}
	if got := r.Bounds(); got != (Rect{0, 0, 150, 150}) {
		t.Errorf("Bounds = %v", got)
	}
	rects := r.Rects()
	for i := range rects {
		for j := i + 1; j < len(rects); j++ {
			if rects[i].Intersects(rects[j]) {
				t.Errorf("rects %v and %v overlap", rects[i], rects[j])
			}
		}
	}
}

func TestRegionTranslateAndContains(t *testing.T) {
	r := NewRegion(Rect{50, 50, 300, 300})
	r.Translate(Point{10, 20})
	if got := r.Bounds(); got != (Rect{60, 70, 300, 300}) {
		t.Errorf("Bounds after translate = %v", got)
	}
	if !r.Contains(Point{60, 70}) {
		t.Error("expected origin to be contained")
	}
	if r.Contains(Point{360, 70}) {
		t.Error("max edge should be exclusive")
	}
}

func TestRegionEqual(t *testing.T) {
	a := NewRegion(Rect{0, 0, 10, 10}, Rect{10, 0, 10, 10})
	b := NewRegion(Rect{0, 0, 20, 10})
	if !a.Equal(b) {
		t.Error("regions covering the same area should be equal")
	}
	c := NewRegion(Rect{0, 0, 20, 11})
	if a.Equal(c) {
		t.Error("different regions compared equal")
	}
}
