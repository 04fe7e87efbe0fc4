package poly

import (
	"fmt"

	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/dhconnelly/rtreego"
	"github.com/nickblock/geoutils/pkg/boolop"
	"github.com/nickblock/geoutils/pkg/geom"
	"github.com/nickblock/geoutils/pkg/kernel"
)

// Ground covers boundary minus holes using the configured strategy.
// An empty or self-intersecting boundary fails with geom.ErrInvalidBoundary.
// Unusable holes are skipped and returned as warnings.
func (k *Kernel) Ground(boundary geom.Loop, holes *geom.HoleSet) (*kernel.Mesh, []error, error) {
	b, err := boundary.Normalize()
	if err != nil {
		return nil, nil, fmt.Errorf("poly: ground: %w: %w", geom.ErrInvalidBoundary, err)
	}
	if b.SelfIntersects() {
		return nil, nil, fmt.Errorf("poly: ground: boundary self-intersects: %w", geom.ErrInvalidBoundary)
	}
	b = b.Canonical()

	merged, warnings := mergeHoles(b, holes)

	var m *kernel.Mesh
	switch k.strategy {
	case BooleanDifference:
		var warn []error
		m, warn = k.groundBoolean(b, merged)
		warnings = append(warnings, warn...)
	default:
		var warn []error
		m, warn, err = k.groundTriangulate(b, merged)
		if err != nil {
			return nil, warnings, fmt.Errorf("poly: ground: %w", err)
		}
		warnings = append(warnings, warn...)
	}
	return m, warnings, nil
}

// groundBoolean subtracts the holes from the boundary and triangulates every
// resulting region together with the holes it encloses.
func (k *Kernel) groundBoolean(b geom.Loop, holes [][]geom.Loop) (*kernel.Mesh, []error) {
	var clip []geom.Loop
	for _, h := range holes {
		clip = append(clip, h...)
	}
	bound := b.Bound()
	m := &kernel.Mesh{}
	var warnings []error
	for _, r := range boolop.Regions(boolop.ApplyMulti([]geom.Loop{b}, clip, boolop.Difference)) {
		tris, err := geom.Triangulate(r[0], r[1:]...)
		if err != nil {
			warnings = append(warnings, fmt.Errorf("ground region at %v: %w", r[0][0], err))
			continue
		}
		base := uint32(len(m.Vertices))
		for _, l := range r {
			for _, p := range l {
				k.addGroundVertex(m, bound, p)
			}
		}
		for _, t := range tris {
			m.Faces = append(m.Faces, kernel.Face{base + uint32(t[0]), base + uint32(t[1]), base + uint32(t[2])})
		}
	}
	return m, warnings
}

func (k *Kernel) addGroundVertex(m *kernel.Mesh, bound geom.BoundingBox, p geom.Point2) {
	m.Vertices = append(m.Vertices, k.opts.Position(p, 0))
	m.Normals = append(m.Normals, k.opts.UpNormal())
	f := bound.Fraction(v3.Vec{X: p.X, Y: p.Y})
	m.UVs = append(m.UVs, v3.Vec{X: f.X, Y: f.Y})
}

// holeEntry is a hole indexed in the R-tree. Merged holes can enclose
// islands, so a hole is a polygon: counter-clockwise outer loops and
// clockwise inner ones.
type holeEntry struct {
	loops []geom.Loop
	rect  rtreego.Rect
}

func (h *holeEntry) Bounds() rtreego.Rect {
	return h.rect
}

const rectPad = 1e-9

func newHoleEntry(loops []geom.Loop) (*holeEntry, error) {
	b := loops[0].Bound()
	for _, l := range loops[1:] {
		b.Union(l.Bound())
	}
	rect, err := rtreego.NewRect(
		rtreego.Point{b.Min.X - rectPad, b.Min.Y - rectPad},
		[]float64{b.Max.X - b.Min.X + 2*rectPad, b.Max.Y - b.Min.Y + 2*rectPad},
	)
	if err != nil {
		return nil, err
	}
	return &holeEntry{loops: loops, rect: rect}, nil
}

func outerCount(loops []geom.Loop) int {
	n := 0
	for _, l := range loops {
		if l.SignedArea() > 0 {
			n++
		}
	}
	return n
}

// mergeHoles validates the holes and unions the overlapping ones. Candidate
// pairs come from an R-tree over hole bounds; a pair merges when their union
// has fewer outer loops than the two apart, i.e. they touch. Holes outside
// the boundary's bounds are dropped.
func mergeHoles(boundary geom.Loop, holes *geom.HoleSet) ([][]geom.Loop, []error) {
	var warnings []error
	bb := boundary.Bound()
	tree := rtreego.NewTree(2, 4, 16)
	var order []*holeEntry
	alive := make(map[*holeEntry]bool)

	for _, h := range holes.Holes() {
		if h.Loop.SelfIntersects() {
			warnings = append(warnings, fmt.Errorf("hole %q self-intersects: %w", h.Name, geom.ErrHoleSkipped))
			continue
		}
		if !h.Bound.Overlaps(bb) {
			continue
		}
		cur, err := newHoleEntry([]geom.Loop{h.Loop.Canonical()})
		if err != nil {
			warnings = append(warnings, fmt.Errorf("hole %q: %w: %w", h.Name, geom.ErrHoleSkipped, err))
			continue
		}
		for merged := true; merged; {
			merged = false
			for _, sp := range tree.SearchIntersect(cur.rect) {
				other := sp.(*holeEntry)
				u := boolop.ApplyMulti(cur.loops, other.loops, boolop.Union)
				if len(u) == 0 || outerCount(u) >= outerCount(cur.loops)+outerCount(other.loops) {
					continue
				}
				next, err := newHoleEntry(u)
				if err != nil {
					continue
				}
				tree.Delete(other)
				alive[other] = false
				cur = next
				merged = true
				break
			}
		}
		tree.Insert(cur)
		alive[cur] = true
		order = append(order, cur)
	}

	out := make([][]geom.Loop, 0, len(order))
	for _, e := range order {
		if alive[e] {
			out = append(out, e.loops)
		}
	}
	return out, warnings
}
