package poly

import (
	"fmt"
	"math"

	"github.com/fogleman/delaunay"
	"github.com/nickblock/geoutils/pkg/boolop"
	"github.com/nickblock/geoutils/pkg/geom"
	"github.com/nickblock/geoutils/pkg/kernel"
)

// maxConformRounds bounds how many times missing constraint edges are split
// and the point set re-triangulated.
const maxConformRounds = 12

// groundTriangulate covers the region with triangles. Holes are clipped to
// the boundary first; the Delaunay triangulation of all loop vertices is then
// made to conform to every loop edge by splitting edges it misses, and only
// triangles whose centroid lies in the region are kept. A point is in a
// hole when an odd number of hole loops contain it, so islands inside a
// merged hole stay ground.
func (k *Kernel) groundTriangulate(b geom.Loop, holes [][]geom.Loop) (*kernel.Mesh, []error, error) {
	var warnings []error
	var clipped []geom.Loop
	for _, h := range holes {
		clipped = append(clipped, boolop.ApplyMulti(h, []geom.Loop{b}, boolop.Intersection)...)
	}

	c := newConformer()
	c.addLoop(b, k.maxEdge)
	for _, h := range clipped {
		c.addLoop(h, k.maxEdge)
	}
	tri, missing, err := c.triangulate()
	if err != nil {
		return nil, warnings, fmt.Errorf("%w: %w", geom.ErrInvalidBoundary, err)
	}
	if missing > 0 {
		warnings = append(warnings, fmt.Errorf("%d ground edges not recovered by triangulation: %w", missing, geom.ErrHoleSkipped))
	}

	inRegion := func(p geom.Point2) bool {
		if !b.Contains(p) {
			return false
		}
		in := true
		for _, h := range clipped {
			if h.Contains(p) {
				in = !in
			}
		}
		return in
	}

	bound := b.Bound()
	m := &kernel.Mesh{}
	remap := make(map[int]uint32)
	vertex := func(i int) uint32 {
		if v, ok := remap[i]; ok {
			return v
		}
		v := uint32(len(m.Vertices))
		remap[i] = v
		k.addGroundVertex(m, bound, c.point(i))
		return v
	}
	for t := 0; t+2 < len(tri.Triangles); t += 3 {
		i0, i1, i2 := tri.Triangles[t], tri.Triangles[t+1], tri.Triangles[t+2]
		p0, p1, p2 := c.point(i0), c.point(i1), c.point(i2)
		area := geom.Cross(p1.Sub(p0), p2.Sub(p0))
		if area == 0 {
			continue
		}
		centroid := p0.Add(p1).Add(p2).MulScalar(1.0 / 3)
		if !inRegion(centroid) {
			continue
		}
		if area < 0 {
			i1, i2 = i2, i1
		}
		m.Faces = append(m.Faces, kernel.Face{vertex(i0), vertex(i1), vertex(i2)})
	}
	return m, warnings, nil
}

// conformer accumulates constraint loops as deduplicated points and edges.
type conformer struct {
	pts   []delaunay.Point
	index map[delaunay.Point]int
	edges [][2]int
}

func newConformer() *conformer {
	return &conformer{index: make(map[delaunay.Point]int)}
}

func (c *conformer) point(i int) geom.Point2 {
	return geom.Point2{X: c.pts[i].X, Y: c.pts[i].Y}
}

func (c *conformer) add(p geom.Point2) int {
	dp := delaunay.Point{X: p.X, Y: p.Y}
	if i, ok := c.index[dp]; ok {
		return i
	}
	c.pts = append(c.pts, dp)
	c.index[dp] = len(c.pts) - 1
	return len(c.pts) - 1
}

func (c *conformer) addEdge(a, b int) {
	if a != b {
		c.edges = append(c.edges, [2]int{a, b})
	}
}

// addLoop adds the loop's vertices and edges, splitting edges longer than
// maxEdge when maxEdge is positive.
func (c *conformer) addLoop(l geom.Loop, maxEdge float64) {
	n := len(l)
	first := c.add(l[0])
	prev := first
	for i := 0; i < n; i++ {
		p, q := l[i], l[(i+1)%n]
		steps := 1
		if maxEdge > 0 {
			steps = int(math.Ceil(q.Sub(p).Length() / maxEdge))
			if steps < 1 {
				steps = 1
			}
		}
		for s := 1; s <= steps; s++ {
			var next int
			if s == steps {
				if i == n-1 {
					next = first
				} else {
					next = c.add(q)
				}
			} else {
				next = c.add(p.Add(q.Sub(p).MulScalar(float64(s) / float64(steps))))
			}
			c.addEdge(prev, next)
			prev = next
		}
	}
}

func edgeKey(a, b int) [2]int {
	if a > b {
		a, b = b, a
	}
	return [2]int{a, b}
}

// triangulate runs Delaunay rounds until every constraint edge appears in the
// triangulation or the round budget is spent. It returns the final
// triangulation and the number of edges still missing.
func (c *conformer) triangulate() (*delaunay.Triangulation, int, error) {
	for round := 0; ; round++ {
		tri, err := delaunay.Triangulate(c.pts)
		if err != nil {
			return nil, 0, err
		}
		have := make(map[[2]int]bool, len(tri.Triangles))
		for t := 0; t+2 < len(tri.Triangles); t += 3 {
			a, b, d := tri.Triangles[t], tri.Triangles[t+1], tri.Triangles[t+2]
			have[edgeKey(a, b)] = true
			have[edgeKey(b, d)] = true
			have[edgeKey(d, a)] = true
		}
		var edges [][2]int
		missing := 0
		for _, e := range c.edges {
			if have[edgeKey(e[0], e[1])] {
				edges = append(edges, e)
				continue
			}
			missing++
			mid := c.onEdge(e[0], e[1])
			if mid < 0 {
				a, b := c.point(e[0]), c.point(e[1])
				mid = c.add(a.Add(b).MulScalar(0.5))
			}
			if mid == e[0] || mid == e[1] {
				edges = append(edges, e)
				continue
			}
			edges = append(edges, [2]int{e[0], mid}, [2]int{mid, e[1]})
		}
		if missing == 0 || round == maxConformRounds-1 {
			return tri, missing, nil
		}
		c.edges = edges
	}
}

// onEdge returns a point lying strictly inside segment a-b, or -1. Such a
// point splits the edge in every triangulation, so it is used before a
// midpoint.
func (c *conformer) onEdge(a, b int) int {
	pa, pb := c.point(a), c.point(b)
	d := pb.Sub(pa)
	l2 := d.Dot(d)
	best, bestT := -1, 2.0
	for i := range c.pts {
		if i == a || i == b {
			continue
		}
		v := c.point(i).Sub(pa)
		if math.Abs(geom.Cross(d, v)) > 1e-12*l2 {
			continue
		}
		t := v.Dot(d) / l2
		if t > 0 && t < 1 && t < bestT {
			best, bestT = i, t
		}
	}
	return best
}
