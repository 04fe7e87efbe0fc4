// Package boolop runs polygon boolean operations on geom loops.
//
// Coordinates are snapped to a fixed-point grid of 1/Scale units before they
// reach the clipping kernel, and results are snapped back onto the same grid.
// Precision is therefore bounded: with Scale = 1e5, features closer than
// about 1e-5 units merge, and any intersection point is rounded to the
// nearest grid node. Snapped coordinates are held in float64, which is exact
// for grid values up to 2^53 / Scale (about 9e10 units).
package boolop

import (
	"math"

	polyclip "github.com/ctessum/polyclip-go"
	"github.com/nickblock/geoutils/pkg/geom"
)

// Scale is the fixed-point multiplier applied before clipping.
const Scale = 100000

// Op selects a boolean operation.
type Op int

const (
	Union Op = iota
	Intersection
	Difference
)

func (o Op) String() string {
	switch o {
	case Union:
		return "union"
	case Intersection:
		return "intersection"
	case Difference:
		return "difference"
	default:
		return "unknown"
	}
}

func (o Op) polyclip() polyclip.Op {
	switch o {
	case Intersection:
		return polyclip.INTERSECTION
	case Difference:
		return polyclip.DIFFERENCE
	default:
		return polyclip.UNION
	}
}

// Apply computes subject <op> clip. Output loops are wound counter-clockwise
// for outer boundaries and clockwise for holes.
func Apply(subject, clip geom.Loop, op Op) []geom.Loop {
	return ApplyMulti([]geom.Loop{subject}, []geom.Loop{clip}, op)
}

// ApplyMulti treats subject and clip as multi-contour polygons.
func ApplyMulti(subject, clip []geom.Loop, op Op) []geom.Loop {
	s := toPolygon(subject)
	c := toPolygon(clip)
	if op != Difference && len(s) == 1 && len(c) == 1 && sameContour(s[0], c[0]) {
		return orient(fromPolygon(s))
	}
	switch {
	case len(s) == 0 && op == Union:
		return orient(fromPolygon(c))
	case len(s) == 0:
		return nil
	case len(c) == 0 && op == Intersection:
		return nil
	case len(c) == 0:
		return orient(fromPolygon(s))
	}
	return orient(fromPolygon(s.Construct(op.polyclip(), c)))
}

// Regions groups oriented loops, as returned by ApplyMulti, into polygons.
// Each region starts with a counter-clockwise outer loop followed by the
// clockwise loops it directly encloses. Regions are ordered like their outer
// loops.
func Regions(loops []geom.Loop) [][]geom.Loop {
	var outers []int
	for i, l := range loops {
		if l.SignedArea() > 0 {
			outers = append(outers, i)
		}
	}
	regions := make([][]geom.Loop, len(outers))
	for r, i := range outers {
		regions[r] = []geom.Loop{loops[i]}
	}
	for _, l := range loops {
		if l.SignedArea() > 0 {
			continue
		}
		best, bestArea := -1, math.Inf(1)
		for r, i := range outers {
			a := loops[i].SignedArea()
			if a < bestArea && encloses(loops[i], l) {
				best, bestArea = r, a
			}
		}
		if best >= 0 {
			regions[best] = append(regions[best], l)
		}
	}
	return regions
}

// encloses reports whether inner lies in outer, judged by the first inner
// vertex strictly inside or outside outer.
func encloses(outer, inner geom.Loop) bool {
	ob, ib := outer.Bound(), inner.Bound()
	if ib.Min.X < ob.Min.X || ib.Min.Y < ob.Min.Y || ib.Max.X > ob.Max.X || ib.Max.Y > ob.Max.Y {
		return false
	}
	for _, p := range inner {
		if !onBoundary(outer, p) {
			return outer.Contains(p)
		}
	}
	return false
}

func onBoundary(l geom.Loop, p geom.Point2) bool {
	for i := range l {
		a, b := l[i], l[(i+1)%len(l)]
		d := b.Sub(a)
		if math.Abs(geom.Cross(d, p.Sub(a))) > 1e-9*d.Length() {
			continue
		}
		if t := p.Sub(a).Dot(d); t >= 0 && t <= d.Dot(d) {
			return true
		}
	}
	return false
}

// Orientation reports whether the loop, snapped to the grid, winds
// counter-clockwise.
func Orientation(l geom.Loop) bool {
	c := toContour(l)
	var a float64
	for i := range c {
		j := (i + 1) % len(c)
		a += c[i].X*c[j].Y - c[j].X*c[i].Y
	}
	return a > 0
}

// Clean snaps the loop to the grid and drops vertices within tolerance
// (in grid units) of the previously kept vertex. A loop reduced below three
// vertices cleans to nil.
func Clean(l geom.Loop, tolerance float64) geom.Loop {
	c := cleanContour(toContour(l), tolerance)
	if c == nil {
		return nil
	}
	return fromContour(c)
}

func snap(v float64) float64 {
	return math.Round(v * Scale)
}

func toContour(l geom.Loop) polyclip.Contour {
	c := make(polyclip.Contour, len(l))
	for i, p := range l {
		c[i] = polyclip.Point{X: snap(p.X), Y: snap(p.Y)}
	}
	return c
}

func fromContour(c polyclip.Contour) geom.Loop {
	l := make(geom.Loop, len(c))
	for i, p := range c {
		l[i] = geom.Point2{X: math.Round(p.X) / Scale, Y: math.Round(p.Y) / Scale}
	}
	return l
}

func toPolygon(loops []geom.Loop) polyclip.Polygon {
	var p polyclip.Polygon
	for _, l := range loops {
		if c := cleanContour(toContour(l), 0); c != nil {
			p = append(p, c)
		}
	}
	return p
}

func fromPolygon(p polyclip.Polygon) []geom.Loop {
	var out []geom.Loop
	for _, c := range p {
		for i := range c {
			c[i] = polyclip.Point{X: math.Round(c[i].X), Y: math.Round(c[i].Y)}
		}
		if c = cleanContour(c, 0); c != nil {
			out = append(out, fromContour(c))
		}
	}
	return out
}

func cleanContour(c polyclip.Contour, tolerance float64) polyclip.Contour {
	near := func(a, b polyclip.Point) bool {
		return math.Hypot(a.X-b.X, a.Y-b.Y) <= tolerance
	}
	out := make(polyclip.Contour, 0, len(c))
	for _, p := range c {
		if len(out) > 0 && near(out[len(out)-1], p) {
			continue
		}
		out = append(out, p)
	}
	for len(out) > 1 && near(out[0], out[len(out)-1]) {
		out = out[:len(out)-1]
	}
	if len(out) < 3 {
		return nil
	}
	return out
}

// sameContour reports whether a and b hold the same cycle of points, in
// either direction.
func sameContour(a, b polyclip.Contour) bool {
	n := len(a)
	if n != len(b) {
		return false
	}
	start := -1
	for i := range b {
		if b[i] == a[0] {
			start = i
			break
		}
	}
	if start < 0 {
		return false
	}
	fwd, rev := true, true
	for i := 0; i < n; i++ {
		if a[i] != b[(start+i)%n] {
			fwd = false
		}
		if a[i] != b[(start-i+n)%n] {
			rev = false
		}
	}
	return fwd || rev
}

// orient winds each loop by its nesting depth: even depth (outer boundary)
// counter-clockwise, odd depth (hole) clockwise.
func orient(loops []geom.Loop) []geom.Loop {
	for i, l := range loops {
		depth := 0
		for j, o := range loops {
			if i != j && o.Contains(l[0]) {
				depth++
			}
		}
		wantCCW := depth%2 == 0
		if l.SignedArea() > 0 != wantCCW {
			loops[i] = l.Reversed()
		}
	}
	return loops
}
