package poly

import (
	"fmt"
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/nickblock/geoutils/pkg/geom"
	"github.com/nickblock/geoutils/pkg/kernel"
)

// Extrude builds a closed prism over loop.
//
// Layout for n loop vertices: n bottom-ring vertices, n top-ring vertices,
// then 4 vertices per side quad so each wall gets a flat normal (6n total).
// Faces: bottom cap, top cap, then one quad per edge. A zero height emits
// only the bottom ring and a single downward cap. Negative heights extrude
// below the ground plane.
func (k *Kernel) Extrude(loop geom.Loop, height float64, featureID int) (*kernel.Mesh, error) {
	l, err := loop.Normalize()
	if err != nil {
		return nil, fmt.Errorf("poly: extrude: %w", err)
	}
	l = l.Canonical()
	n := len(l)
	o := k.opts
	up := o.UpNormal()
	down := up.MulScalar(-1)
	fid := float64(featureID)

	if height == 0 {
		m := &kernel.Mesh{
			Vertices: make([]v3.Vec, n),
			Normals:  make([]v3.Vec, n),
			Faces:    []kernel.Face{reversedRing(0, n)},
		}
		for i, p := range l {
			m.Vertices[i] = o.Position(p, 0)
			m.Normals[i] = down
		}
		if o.UVEnabled() {
			m.UVs = k.capUVs(l, fid)
		}
		return m, nil
	}

	lo, hi := 0.0, height
	if height < 0 {
		lo, hi = height, 0
	}

	total := 6 * n
	m := &kernel.Mesh{
		Vertices: make([]v3.Vec, 0, total),
		Normals:  make([]v3.Vec, 0, total),
		Faces:    make([]kernel.Face, 0, n+2),
	}
	for _, p := range l {
		m.Vertices = append(m.Vertices, o.Position(p, lo))
		m.Normals = append(m.Normals, down)
	}
	for _, p := range l {
		m.Vertices = append(m.Vertices, o.Position(p, hi))
		m.Normals = append(m.Normals, up)
	}
	m.Faces = append(m.Faces, reversedRing(0, n), forwardRing(uint32(n), n))

	var uvs []v3.Vec
	if o.UVEnabled() {
		caps := k.capUVs(l, fid)
		uvs = make([]v3.Vec, 0, total)
		uvs = append(uvs, caps...)
		uvs = append(uvs, caps...)
	}

	for f := 0; f < n; f++ {
		g := (f + 1) % n
		corners := [4]v3.Vec{
			m.Vertices[n+g], // top, next
			m.Vertices[n+f], // top, this
			m.Vertices[f],   // bottom, this
			m.Vertices[g],   // bottom, next
		}
		normal, err := k.wallNormal(corners, l[f], l[g])
		if err != nil {
			return nil, fmt.Errorf("poly: extrude edge %d: %w", f, err)
		}
		base := uint32(len(m.Vertices))
		for _, c := range corners {
			m.Vertices = append(m.Vertices, c)
			m.Normals = append(m.Normals, normal)
		}
		m.Faces = append(m.Faces, kernel.Face{base, base + 1, base + 2, base + 3})

		if uvs != nil {
			u := tiles(l[g].Sub(l[f]).Length(), o.UVScale)
			v := tiles(hi-lo, o.UVScale)
			uvs = append(uvs,
				v3.Vec{X: u, Y: v, Z: fid},
				v3.Vec{X: 0, Y: v, Z: fid},
				v3.Vec{X: 0, Y: 0, Z: fid},
				v3.Vec{X: u, Y: 0, Z: fid},
			)
		}
	}
	m.UVs = uvs
	return m, nil
}

// wallNormal computes the unit normal of a side quad from two of its edges
// and turns it to face away from the canonical (counter-clockwise) loop.
func (k *Kernel) wallNormal(c [4]v3.Vec, from, to geom.Point2) (v3.Vec, error) {
	n := c[1].Sub(c[0]).Cross(c[2].Sub(c[0]))
	l := n.Length()
	if l == 0 || math.IsNaN(l) || math.IsInf(l, 0) {
		return v3.Vec{}, geom.ErrDegenerateNormal
	}
	n = n.MulScalar(1 / l)
	if !geom.Finite3(n) {
		return v3.Vec{}, geom.ErrDegenerateNormal
	}
	d := to.Sub(from)
	outward := k.opts.Direction(geom.Point2{X: d.Y, Y: -d.X})
	if n.Dot(outward) < 0 {
		n = n.MulScalar(-1)
	}
	return n, nil
}

// capUVs maps a cap planarly so a texture tile spans UVScale world units.
func (k *Kernel) capUVs(l geom.Loop, fid float64) []v3.Vec {
	b := l.Bound()
	out := make([]v3.Vec, len(l))
	for i, p := range l {
		out[i] = v3.Vec{
			X: (p.X - b.Min.X) / k.opts.UVScale,
			Y: (p.Y - b.Min.Y) / k.opts.UVScale,
			Z: fid,
		}
	}
	return out
}

// tiles returns the whole number of texture repeats across length, at
// least one.
func tiles(length, scale float64) float64 {
	return math.Max(1, math.Round(length/scale))
}

func forwardRing(start uint32, n int) kernel.Face {
	f := make(kernel.Face, n)
	for i := range f {
		f[i] = start + uint32(i)
	}
	return f
}

func reversedRing(start uint32, n int) kernel.Face {
	f := make(kernel.Face, n)
	for i := range f {
		f[i] = start + uint32(n-1-i)
	}
	return f
}
