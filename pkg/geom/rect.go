// Package geom holds the small geometry vocabulary shared by the layer,
// compositing and scrolling packages.
package geom

import (
	"fmt"
	"math"
)

// Point is a location in some layer's coordinate space.
type Point struct {
	X, Y float64
}

func (p Point) Add(q Point) Point { return Point{p.X + q.X, p.Y + q.Y} }
func (p Point) Sub(q Point) Point { return Point{p.X - q.X, p.Y - q.Y} }
func (p Point) Neg() Point        { return Point{-p.X, -p.Y} }

func (p Point) String() string {
	return fmt.Sprintf("(%g,%g)", p.X, p.Y)
}

type Size struct {
	W, H float64
}

func (s Size) IsEmpty() bool { return s.W <= 0 || s.H <= 0 }
func (s Size) Area() float64 { return s.W * s.H }

// Rect is an axis-aligned rectangle. Width and height are never negative
// for rects produced by this package.
type Rect struct {
	X, Y, W, H float64
}

// infiniteExtent is large enough to cover any page while leaving headroom
// for offsets to be added without overflowing into +Inf.
const infiniteExtent = 1 << 30

// InfiniteRect returns the unbounded clip used at the top of every chain.
func InfiniteRect() Rect {
	return Rect{X: -infiniteExtent / 2, Y: -infiniteExtent / 2, W: infiniteExtent, H: infiniteExtent}
}

func NewRect(loc Point, size Size) Rect {
	return Rect{X: loc.X, Y: loc.Y, W: size.W, H: size.H}
}

func (r Rect) IsInfinite() bool { return r == InfiniteRect() }
func (r Rect) IsEmpty() bool    { return r.W <= 0 || r.H <= 0 }
func (r Rect) MaxX() float64    { return r.X + r.W }
func (r Rect) MaxY() float64    { return r.Y + r.H }
func (r Rect) Location() Point  { return Point{r.X, r.Y} }
func (r Rect) Size() Size       { return Size{r.W, r.H} }

func (r Rect) Area() float64 {
	if r.IsEmpty() {
		return 0
	}
	return r.W * r.H
}

// Move returns r translated by d. The infinite rect absorbs translation.
func (r Rect) Move(d Point) Rect {
	if r.IsInfinite() {
		return r
	}
	return Rect{r.X + d.X, r.Y + d.Y, r.W, r.H}
}

// Intersect returns the overlap of r and s, or the zero rect.
func (r Rect) Intersect(s Rect) Rect {
	x0 := math.Max(r.X, s.X)
	y0 := math.Max(r.Y, s.Y)
	x1 := math.Min(r.MaxX(), s.MaxX())
	y1 := math.Min(r.MaxY(), s.MaxY())
	if x1 <= x0 || y1 <= y0 {
		return Rect{}
	}
	return Rect{x0, y0, x1 - x0, y1 - y0}
}

func (r Rect) Intersects(s Rect) bool {
	if r.IsEmpty() || s.IsEmpty() {
		return false
	}
	return r.X < s.MaxX() && s.X < r.MaxX() && r.Y < s.MaxY() && s.Y < r.MaxY()
}

// Unite returns the bounding box of r and s. Empty rects are ignored.
func (r Rect) Unite(s Rect) Rect {
	if s.IsEmpty() {
		return r
	}
	if r.IsEmpty() {
		return s
	}
	x0 := math.Min(r.X, s.X)
	y0 := math.Min(r.Y, s.Y)
	x1 := math.Max(r.MaxX(), s.MaxX())
	y1 := math.Max(r.MaxY(), s.MaxY())
	return Rect{x0, y0, x1 - x0, y1 - y0}
}

// Contains reports whether s lies entirely within r.
func (r Rect) Contains(s Rect) bool {
	if s.IsEmpty() {
		return true
	}
	return s.X >= r.X && s.Y >= r.Y && s.MaxX() <= r.MaxX() && s.MaxY() <= r.MaxY()
}

func (r Rect) ContainsPoint(p Point) bool {
	return p.X >= r.X && p.X < r.MaxX() && p.Y >= r.Y && p.Y < r.MaxY()
}

// Expand grows r by dx on the left and right and dy on the top and bottom.
func (r Rect) Expand(dx, dy float64) Rect {
	return Rect{r.X - dx, r.Y - dy, r.W + 2*dx, r.H + 2*dy}
}

// Subtract returns the parts of r not covered by s, as at most four
// non-overlapping rects.
func (r Rect) Subtract(s Rect) []Rect {
	if !r.Intersects(s) {
		return []Rect{r}
	}
	in := r.Intersect(s)
	var out []Rect
	if in.Y > r.Y {
		out = append(out, Rect{r.X, r.Y, r.W, in.Y - r.Y})
	}
	if in.MaxY() < r.MaxY() {
		out = append(out, Rect{r.X, in.MaxY(), r.W, r.MaxY() - in.MaxY()})
	}
	if in.X > r.X {
		out = append(out, Rect{r.X, in.Y, in.X - r.X, in.H})
	}
	if in.MaxX() < r.MaxX() {
		out = append(out, Rect{in.MaxX(), in.Y, r.MaxX() - in.MaxX(), in.H})
	}
	return out
}

func (r Rect) String() string {
	if r.IsInfinite() {
		return "infinite"
	}
	return fmt.Sprintf("%g %g %g %g", r.X, r.Y, r.W, r.H)
}
