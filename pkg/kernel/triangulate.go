package kernel

import (
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/nickblock/geoutils/pkg/geom"
)

// Triangles splits every face into triangles, keeping face winding.
// Faces are assumed planar; each is projected onto the coordinate plane
// most aligned with it and triangulated there.
func (m *Mesh) Triangles() [][3]uint32 {
	out := make([][3]uint32, 0, m.TriangleCount())
	for i := range m.Faces {
		out = append(out, m.FaceTriangles(i)...)
	}
	return out
}

// FaceTriangles splits face i into triangles. A face the triangulator
// rejects falls back to a fan from its first vertex.
func (m *Mesh) FaceTriangles(i int) [][3]uint32 {
	f := m.Faces[i]
	switch {
	case len(f) < 3:
		return nil
	case len(f) == 3:
		return [][3]uint32{{f[0], f[1], f[2]}}
	}
	tris, err := geom.Triangulate(projectFace(m.Vertices, f))
	if err != nil {
		tris = tris[:0]
		for j := 1; j+1 < len(f); j++ {
			tris = append(tris, [3]int{0, j, j + 1})
		}
	}
	out := make([][3]uint32, len(tris))
	for j, t := range tris {
		out[j] = [3]uint32{f[t[0]], f[t[1]], f[t[2]]}
	}
	return out
}

// FaceNormal returns the Newell normal of face f, normalized.
func (m *Mesh) FaceNormal(f Face) v3.Vec {
	return newell(m.Vertices, f).Normalize()
}

func newell(verts []v3.Vec, f Face) v3.Vec {
	var n v3.Vec
	for i := range f {
		a := verts[f[i]]
		b := verts[f[(i+1)%len(f)]]
		n.X += (a.Y - b.Y) * (a.Z + b.Z)
		n.Y += (a.Z - b.Z) * (a.X + b.X)
		n.Z += (a.X - b.X) * (a.Y + b.Y)
	}
	return n
}

// projectFace drops the axis the face normal is most aligned with. The
// kept axes are ordered so that a face seen from its normal side stays
// counter-clockwise.
func projectFace(verts []v3.Vec, f Face) []geom.Point2 {
	n := newell(verts, f)
	ax, ay, az := math.Abs(n.X), math.Abs(n.Y), math.Abs(n.Z)
	pts := make([]geom.Point2, len(f))
	for i, idx := range f {
		v := verts[idx]
		switch {
		case az >= ax && az >= ay:
			pts[i] = geom.Point2{X: v.X, Y: v.Y}
		case ax >= ay:
			pts[i] = geom.Point2{X: v.Y, Y: v.Z}
		default:
			pts[i] = geom.Point2{X: v.Z, Y: v.X}
		}
	}
	return pts
}
