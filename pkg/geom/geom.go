// Package geom holds the planar value types shared by the geometry engines:
// polygon loops, polylines, hole sets and bounding boxes, together with the
// error taxonomy the engines report through.
//
// Coordinates are in a local planar frame (metres after projection). The
// canonical winding of a loop is counter-clockwise in that frame.
package geom

import (
	"fmt"
	"math"

	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Point2 is a point in the local planar frame.
type Point2 = v2.Vec

// Point3 is a point in the output scene frame.
type Point3 = v3.Vec

// Loop is an implicitly closed polygon ring.
type Loop []Point2

// Polyline is an open sequence of points.
type Polyline []Point2

// Normalize returns a copy of the loop with consecutive duplicate vertices
// and a duplicate closing vertex removed. Fewer than three remaining
// vertices is ErrInsufficientPoints.
func (l Loop) Normalize() (Loop, error) {
	out := make(Loop, 0, len(l))
	for _, p := range l {
		if len(out) > 0 && out[len(out)-1] == p {
			continue
		}
		out = append(out, p)
	}
	for len(out) > 1 && out[0] == out[len(out)-1] {
		out = out[:len(out)-1]
	}
	if len(out) < 3 {
		return nil, fmt.Errorf("geom: loop has %d distinct vertices: %w", len(out), ErrInsufficientPoints)
	}
	return out, nil
}

// TurningAngle returns the accumulated signed turn between consecutive
// edges, each step wrapped into (-pi, pi]. A simple counter-clockwise loop
// accumulates +2pi, a clockwise one -2pi.
func (l Loop) TurningAngle() float64 {
	n := len(l)
	if n < 3 {
		return 0
	}
	edge := func(i int) float64 {
		d := l[(i+1)%n].Sub(l[i])
		return math.Atan2(d.Y, d.X)
	}
	var accum float64
	prev := edge(n - 1)
	for i := 0; i < n; i++ {
		cur := edge(i)
		accum += wrapAngle(cur - prev)
		prev = cur
	}
	return accum
}

func wrapAngle(a float64) float64 {
	a = math.Remainder(a, 2*math.Pi)
	if a <= -math.Pi {
		a += 2 * math.Pi
	}
	return a
}

// IsCCW reports whether the loop winds counter-clockwise. Loops whose turning
// angle does not settle the question (figure-eights) fall back to the sign of
// the area.
func (l Loop) IsCCW() bool {
	t := l.TurningAngle()
	if math.Abs(t) > math.Pi {
		return t > 0
	}
	return l.SignedArea() > 0
}

// Reversed returns a copy of the loop in opposite order.
func (l Loop) Reversed() Loop {
	out := make(Loop, len(l))
	for i, p := range l {
		out[len(l)-1-i] = p
	}
	return out
}

// Canonical returns the loop wound counter-clockwise, reversing a copy if
// needed.
func (l Loop) Canonical() Loop {
	if l.IsCCW() {
		out := make(Loop, len(l))
		copy(out, l)
		return out
	}
	return l.Reversed()
}

// SignedArea is positive for counter-clockwise loops.
func (l Loop) SignedArea() float64 {
	var a float64
	n := len(l)
	for i := 0; i < n; i++ {
		a += Cross(l[i], l[(i+1)%n])
	}
	return a / 2
}

// Centroid returns the area centroid, or the vertex mean for zero-area loops.
func (l Loop) Centroid() Point2 {
	area := l.SignedArea()
	n := len(l)
	if n == 0 {
		return Point2{}
	}
	if math.Abs(area) < 1e-12 {
		var sum Point2
		for _, p := range l {
			sum = sum.Add(p)
		}
		return sum.MulScalar(1 / float64(n))
	}
	var cx, cy float64
	for i := 0; i < n; i++ {
		p, q := l[i], l[(i+1)%n]
		c := Cross(p, q)
		cx += (p.X + q.X) * c
		cy += (p.Y + q.Y) * c
	}
	return Point2{X: cx / (6 * area), Y: cy / (6 * area)}
}

// Bound returns the loop's bounding box at z=0.
func (l Loop) Bound() BoundingBox {
	return Polyline(l).Bound()
}

// Contains reports whether p lies inside the loop (even-odd rule).
func (l Loop) Contains(p Point2) bool {
	in := false
	n := len(l)
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		a, b := l[i], l[j]
		if (a.Y > p.Y) != (b.Y > p.Y) &&
			p.X < (b.X-a.X)*(p.Y-a.Y)/(b.Y-a.Y)+a.X {
			in = !in
		}
	}
	return in
}

// SelfIntersects reports whether any two non-adjacent edges of the loop touch.
func (l Loop) SelfIntersects() bool {
	n := len(l)
	for i := 0; i < n; i++ {
		a0, a1 := l[i], l[(i+1)%n]
		for j := i + 1; j < n; j++ {
			if j == i+1 || (i == 0 && j == n-1) {
				continue
			}
			if SegmentsTouch(a0, a1, l[j], l[(j+1)%n]) {
				return true
			}
		}
	}
	return false
}

// Validate checks that a polyline has at least two points.
func (p Polyline) Validate() error {
	if len(p) < 2 {
		return fmt.Errorf("geom: polyline has %d points: %w", len(p), ErrInsufficientPoints)
	}
	return nil
}

// Length returns the arc length of the polyline.
func (p Polyline) Length() float64 {
	var d float64
	for i := 1; i < len(p); i++ {
		d += p[i].Sub(p[i-1]).Length()
	}
	return d
}

// Bound returns the polyline's bounding box at z=0.
func (p Polyline) Bound() BoundingBox {
	b := NewBoundingBox()
	for _, q := range p {
		b.Add(Point3{X: q.X, Y: q.Y})
	}
	return b
}

// Cross returns the z component of the cross product of a and b.
func Cross(a, b Point2) float64 {
	return a.X*b.Y - a.Y*b.X
}

// Unit returns v scaled to unit length. A zero vector yields NaN components,
// which callers are expected to detect.
func Unit(v Point2) Point2 {
	l := v.Length()
	return Point2{X: v.X / l, Y: v.Y / l}
}

// Finite reports whether both components are finite.
func Finite(p Point2) bool {
	return !math.IsNaN(p.X) && !math.IsNaN(p.Y) && !math.IsInf(p.X, 0) && !math.IsInf(p.Y, 0)
}

// Finite3 reports whether all three components are finite.
func Finite3(p Point3) bool {
	return Finite(Point2{X: p.X, Y: p.Y}) && !math.IsNaN(p.Z) && !math.IsInf(p.Z, 0)
}

// LineIntersection intersects the infinite lines through p0,p1 and q0,q1.
// It reports false for parallel lines.
func LineIntersection(p0, p1, q0, q1 Point2) (Point2, bool) {
	r := p1.Sub(p0)
	s := q1.Sub(q0)
	denom := Cross(r, s)
	if math.Abs(denom) < 1e-12*r.Length()*s.Length() || denom == 0 {
		return Point2{}, false
	}
	t := Cross(q0.Sub(p0), s) / denom
	return p0.Add(r.MulScalar(t)), true
}

// SegmentsTouch reports whether the closed segments a0-a1 and b0-b1 share a point.
func SegmentsTouch(a0, a1, b0, b1 Point2) bool {
	d1 := orient(b0, b1, a0)
	d2 := orient(b0, b1, a1)
	d3 := orient(a0, a1, b0)
	d4 := orient(a0, a1, b1)
	if ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0)) {
		return true
	}
	return (d1 == 0 && onSegment(b0, b1, a0)) ||
		(d2 == 0 && onSegment(b0, b1, a1)) ||
		(d3 == 0 && onSegment(a0, a1, b0)) ||
		(d4 == 0 && onSegment(a0, a1, b1))
}

func orient(a, b, c Point2) float64 {
	return Cross(b.Sub(a), c.Sub(a))
}

func onSegment(a, b, p Point2) bool {
	return math.Min(a.X, b.X) <= p.X && p.X <= math.Max(a.X, b.X) &&
		math.Min(a.Y, b.Y) <= p.Y && p.Y <= math.Max(a.Y, b.Y)
}
