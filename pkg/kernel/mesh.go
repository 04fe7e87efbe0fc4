package kernel

import (
	"fmt"

	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/nickblock/geoutils/pkg/geom"
)

// Face is an ordered list of vertex indices, counter-clockwise when seen
// from its outward side.
type Face []uint32

// Mesh is the engine output buffer. Vertices, Normals and (when present)
// UVs are parallel arrays. The third UV component carries the feature id.
// A Mesh is populated once by an engine and not modified afterwards; the
// export layer converts it to its own representation.
type Mesh struct {
	Vertices []v3.Vec `json:"vertices"`
	Normals  []v3.Vec `json:"normals"`
	UVs      []v3.Vec `json:"uvs,omitempty"`
	Faces    []Face   `json:"faces"`
	PartName string   `json:"partName"`
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices)
}

// FaceCount returns the number of polygon faces.
func (m *Mesh) FaceCount() int {
	return len(m.Faces)
}

// TriangleCount returns the number of triangles the faces split into.
func (m *Mesh) TriangleCount() int {
	n := 0
	for _, f := range m.Faces {
		if len(f) >= 3 {
			n += len(f) - 2
		}
	}
	return n
}

// IsEmpty returns true if the mesh has no geometry.
func (m *Mesh) IsEmpty() bool {
	return m == nil || len(m.Vertices) == 0 || len(m.Faces) == 0
}

// HasUVs reports whether texture coordinates are present.
func (m *Mesh) HasUVs() bool {
	return len(m.UVs) > 0
}

// Bound returns the bounding box of all vertices.
func (m *Mesh) Bound() geom.BoundingBox {
	b := geom.NewBoundingBox()
	for _, v := range m.Vertices {
		b.Add(v)
	}
	return b
}

// Validate checks the buffer invariants: parallel arrays and in-range
// indices.
func (m *Mesh) Validate() error {
	if len(m.Normals) != len(m.Vertices) {
		return fmt.Errorf("kernel: %d normals for %d vertices", len(m.Normals), len(m.Vertices))
	}
	if m.UVs != nil && len(m.UVs) != len(m.Vertices) {
		return fmt.Errorf("kernel: %d uvs for %d vertices", len(m.UVs), len(m.Vertices))
	}
	for i, f := range m.Faces {
		if len(f) < 3 {
			return fmt.Errorf("kernel: face %d has %d indices", i, len(f))
		}
		for _, idx := range f {
			if int(idx) >= len(m.Vertices) {
				return fmt.Errorf("kernel: face %d index %d out of range", i, idx)
			}
		}
	}
	return nil
}

// Translated returns a copy of the mesh moved by offset.
func (m *Mesh) Translated(offset v3.Vec) *Mesh {
	out := m.clone()
	for i := range out.Vertices {
		out.Vertices[i] = out.Vertices[i].Add(offset)
	}
	return out
}

// Append adds the geometry of o to m, offsetting its indices. If only one
// side carries UVs the other side is padded with zero coordinates.
func (m *Mesh) Append(o *Mesh) {
	if o == nil {
		return
	}
	base := uint32(len(m.Vertices))
	switch {
	case m.UVs == nil && o.UVs != nil && len(m.Vertices) > 0:
		m.UVs = make([]v3.Vec, len(m.Vertices))
	case m.UVs != nil && o.UVs == nil:
		defer func() {
			m.UVs = append(m.UVs, make([]v3.Vec, len(o.Vertices))...)
		}()
	}
	m.Vertices = append(m.Vertices, o.Vertices...)
	m.Normals = append(m.Normals, o.Normals...)
	if o.UVs != nil {
		m.UVs = append(m.UVs, o.UVs...)
	}
	for _, f := range o.Faces {
		nf := make(Face, len(f))
		for i, idx := range f {
			nf[i] = idx + base
		}
		m.Faces = append(m.Faces, nf)
	}
}

func (m *Mesh) clone() *Mesh {
	out := &Mesh{
		Vertices: append([]v3.Vec(nil), m.Vertices...),
		Normals:  append([]v3.Vec(nil), m.Normals...),
		PartName: m.PartName,
	}
	if m.UVs != nil {
		out.UVs = append([]v3.Vec(nil), m.UVs...)
	}
	out.Faces = make([]Face, len(m.Faces))
	for i, f := range m.Faces {
		out.Faces[i] = append(Face(nil), f...)
	}
	return out
}
