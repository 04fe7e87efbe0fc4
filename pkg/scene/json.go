package scene

import (
	"encoding/json"
	"os"
)

// MeshData is the JSON form of one node: flat float32 arrays ready to be
// uploaded to a GPU buffer.
type MeshData struct {
	Vertices []float32 `json:"vertices"`
	Normals  []float32 `json:"normals"`
	UVs      []float32 `json:"uvs,omitempty"`
	Indices  []uint32  `json:"indices"`
	PartName string    `json:"partName"`
	Color    string    `json:"color"`
}

// LocatorData is the JSON form of a locator.
type LocatorData struct {
	Name     string     `json:"name"`
	Position [3]float64 `json:"position"`
}

// Document is the top level JSON export.
type Document struct {
	Meshes   []MeshData    `json:"meshes"`
	Locators []LocatorData `json:"locators"`
}

// Export converts the scene nodes to their JSON form. Merged nodes with
// several materials take the color of their first material.
func (s *Scene) Export() Document {
	doc := Document{Meshes: []MeshData{}, Locators: []LocatorData{}}
	for _, n := range s.Nodes() {
		doc.Meshes = append(doc.Meshes, meshData(s, &n))
	}
	for _, l := range s.locators {
		doc.Locators = append(doc.Locators, LocatorData{
			Name:     l.Name,
			Position: [3]float64{l.Position.X, l.Position.Y, l.Position.Z},
		})
	}
	return doc
}

func meshData(s *Scene, n *Node) MeshData {
	m := n.Mesh
	md := MeshData{
		Vertices: make([]float32, 0, 3*len(m.Vertices)),
		Normals:  make([]float32, 0, 3*len(m.Normals)),
		PartName: n.Name,
		Color:    s.materials[n.Material].Color.Hex(),
	}
	for i := range m.Vertices {
		v := n.World(i)
		md.Vertices = append(md.Vertices, float32(v.X), float32(v.Y), float32(v.Z))
	}
	for _, nv := range m.Normals {
		md.Normals = append(md.Normals, float32(nv.X), float32(nv.Y), float32(nv.Z))
	}
	if m.HasUVs() {
		md.UVs = make([]float32, 0, 2*len(m.UVs))
		for _, uv := range m.UVs {
			md.UVs = append(md.UVs, float32(uv.X), float32(uv.Y))
		}
	}
	for _, t := range m.Triangles() {
		md.Indices = append(md.Indices, t[0], t[1], t[2])
	}
	return md
}

func writeJSON(path string, s *Scene, _ []Node) error {
	data, err := json.MarshalIndent(s.Export(), "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
