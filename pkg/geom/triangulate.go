package geom

import (
	"fmt"

	"github.com/osuushi/triangulate/triangulate"
)

// Triangulate splits the region inside outer and outside holes into
// triangles. Triangle corners index into the concatenation of outer and
// holes, in argument order, and wind like outer. Holes must lie inside
// outer and must not touch each other.
func Triangulate(outer Loop, holes ...Loop) (tris [][3]int, err error) {
	if len(outer) < 3 {
		return nil, ErrInsufficientPoints
	}
	if len(outer) == 3 && len(holes) == 0 {
		return [][3]int{{0, 1, 2}}, nil
	}

	var (
		all   []Point2
		index = make(map[Point2]int)
		polys []triangulate.Polygon
	)
	add := func(l Loop, ccw bool) {
		pts := make([]*triangulate.Point, len(l))
		for i, p := range l {
			if _, ok := index[p]; !ok {
				index[p] = len(all)
			}
			all = append(all, p)
			pts[i] = &triangulate.Point{X: p.X, Y: p.Y}
		}
		if (l.SignedArea() > 0) != ccw {
			for i, j := 0, len(pts)-1; i < j; i, j = i+1, j-1 {
				pts[i], pts[j] = pts[j], pts[i]
			}
		}
		polys = append(polys, triangulate.Polygon{Points: pts})
	}
	add(outer, true)
	for _, h := range holes {
		if len(h) < 3 {
			return nil, fmt.Errorf("hole: %w", ErrInsufficientPoints)
		}
		add(h, false)
	}

	// The triangulator does not validate its input and can panic on
	// degenerate polygons.
	defer func() {
		if r := recover(); r != nil {
			tris, err = nil, fmt.Errorf("triangulate: %v: %w", r, ErrDegenerateGeometry)
		}
	}()
	result, err := triangulate.Triangulate(polys...)
	if err != nil {
		return nil, fmt.Errorf("triangulate: %v: %w", err, ErrDegenerateGeometry)
	}

	ccw := outer.SignedArea() > 0
	tris = make([][3]int, 0, len(result))
	for _, t := range result {
		var c [3]int
		for j, p := range []*triangulate.Point{t.A, t.B, t.C} {
			i, ok := index[Point2{X: p.X, Y: p.Y}]
			if !ok {
				return nil, fmt.Errorf("triangulate: unexpected vertex %v,%v: %w", p.X, p.Y, ErrDegenerateGeometry)
			}
			c[j] = i
		}
		a := orient(all[c[0]], all[c[1]], all[c[2]])
		if a == 0 {
			continue
		}
		if (a > 0) != ccw {
			c[1], c[2] = c[2], c[1]
		}
		tris = append(tris, c)
	}
	return tris, nil
}
