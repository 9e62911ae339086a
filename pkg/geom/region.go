package geom

// Region is a set of non-overlapping rects. The zero value is empty.
type Region struct {
	rects []Rect
}

func NewRegion(rects ...Rect) Region {
	var r Region
	for _, rc := range rects {
		r.Unite(rc)
	}
	return r
}

func (r Region) IsEmpty() bool { return len(r.rects) == 0 }

// Rects returns a copy of the rects making up the region.
func (r Region) Rects() []Rect {
	return append([]Rect(nil), r.rects...)
}

// Bounds is the bounding box of the region.
func (r Region) Bounds() Rect {
	var b Rect
	for _, rc := range r.rects {
		b = b.Unite(rc)
	}
	return b
}

// Area sums the areas of the component rects.
func (r Region) Area() float64 {
	var a float64
	for _, rc := range r.rects {
		a += rc.Area()
	}
	return a
}

// Unite adds rc to the region, keeping the rects disjoint.
func (r *Region) Unite(rc Rect) {
	if rc.IsEmpty() {
		return
	}
	pending := []Rect{rc}
	for _, existing := range r.rects {
		var next []Rect
		for _, p := range pending {
			next = append(next, p.Subtract(existing)...)
		}
		pending = next
		if len(pending) == 0 {
			return
		}
	}
	r.rects = append(r.rects, pending...)
}

func (r *Region) UniteRegion(other Region) {
	for _, rc := range other.rects {
		r.Unite(rc)
	}
}

// Translate moves every rect in the region by d.
func (r *Region) Translate(d Point) {
	for i := range r.rects {
		r.rects[i] = r.rects[i].Move(d)
	}
}

func (r Region) Contains(p Point) bool {
	for _, rc := range r.rects {
		if rc.ContainsPoint(p) {
			return true
		}
	}
	return false
}

func (r Region) Intersects(rc Rect) bool {
	for _, own := range r.rects {
		if own.Intersects(rc) {
			return true
		}
	}
	return false
}

func (r Region) Equal(other Region) bool {
	if r.Area() != other.Area() {
		return false
	}
	for _, rc := range r.rects {
		covered := Region{}
		for _, o := range other.rects {
			covered.Unite(rc.Intersect(o))
		}
		if covered.Area() != rc.Area() {
			return false
		}
	}
	return true
}
