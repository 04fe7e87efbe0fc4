// Package scene collects engine meshes into named, colored nodes and
// writes them to interchange formats. Meshes are grouped according to a
// Granularity before export: everything in one node, one node per
// material, or one node per object.
package scene

import (
	"fmt"
	"sort"

	v3 "github.com/deadsy/sdfx/vec/v3"
	colorful "github.com/lucasb-eyer/go-colorful"
	"github.com/nickblock/geoutils/pkg/kernel"
)

// Material names used by the converter.
const (
	MaterialGround   = "ground"
	MaterialHighway  = "highway"
	MaterialWater    = "water"
	MaterialBuilding = "building"
	MaterialDefault  = "default"
)

// Material is a named diffuse color.
type Material struct {
	Name  string
	Color colorful.Color
}

// DefaultPalette returns the built-in material colors as hex strings.
func DefaultPalette() map[string]string {
	return map[string]string{
		MaterialGround:   "#95ae51",
		MaterialHighway:  "#5195ae",
		MaterialWater:    "#3366cc",
		MaterialBuilding: "#e61ab3",
		MaterialDefault:  "#ae5195",
	}
}

// Granularity controls how meshes are grouped into output nodes.
type Granularity int

const (
	Single Granularity = iota
	PerMaterial
	PerObject
)

func (g Granularity) String() string {
	switch g {
	case Single:
		return "single"
	case PerMaterial:
		return "material"
	case PerObject:
		return "object"
	}
	return fmt.Sprintf("Granularity(%d)", int(g))
}

// ParseGranularity accepts "single", "material" or "object".
func ParseGranularity(s string) (Granularity, error) {
	switch s {
	case "single":
		return Single, nil
	case "material", "":
		return PerMaterial, nil
	case "object":
		return PerObject, nil
	}
	return 0, fmt.Errorf("scene: unknown granularity %q", s)
}

// Transform places a node in the scene.
type Transform struct {
	Translation v3.Vec
}

// Locator is a named point of interest.
type Locator struct {
	Name     string
	Position v3.Vec
}

// Node is one exportable unit. For merged nodes FaceMaterials holds the
// material of every face; otherwise all faces use Material.
type Node struct {
	Name          string
	Mesh          *kernel.Mesh
	Material      int
	FaceMaterials []int
	Transform     Transform
}

// MaterialOf returns the material index of face i.
func (n *Node) MaterialOf(i int) int {
	if n.FaceMaterials != nil {
		return n.FaceMaterials[i]
	}
	return n.Material
}

// World returns vertex i in scene coordinates.
func (n *Node) World(i int) v3.Vec {
	return n.Mesh.Vertices[i].Add(n.Transform.Translation)
}

type entry struct {
	name     string
	mesh     *kernel.Mesh
	material int
	parent   Transform
}

// Scene is an ordered collection of meshes, materials and locators.
type Scene struct {
	Granularity Granularity
	// Center moves each node's geometry around its own bounding box
	// center and records the offset in the node transform.
	Center bool
	// Up is the vertical axis of the meshes, used by plan views.
	Up kernel.UpAxis

	materials []Material
	byName    map[string]int
	entries   []entry
	locators  []Locator
}

// New creates an empty scene.
func New(g Granularity) *Scene {
	return &Scene{Granularity: g, byName: make(map[string]int)}
}

// AddMaterial registers a material and returns its index. Adding a name
// twice returns the first index and keeps the first color.
func (s *Scene) AddMaterial(name string, c colorful.Color) int {
	if i, ok := s.byName[name]; ok {
		return i
	}
	s.materials = append(s.materials, Material{Name: name, Color: c})
	s.byName[name] = len(s.materials) - 1
	return len(s.materials) - 1
}

// MaterialIndex looks up a material by name.
func (s *Scene) MaterialIndex(name string) (int, bool) {
	i, ok := s.byName[name]
	return i, ok
}

// Materials returns the registered materials in index order.
func (s *Scene) Materials() []Material {
	return s.materials
}

// AddMesh adds a named mesh. parent may be nil.
func (s *Scene) AddMesh(m *kernel.Mesh, name string, material int, parent *Transform) error {
	if m.IsEmpty() {
		return fmt.Errorf("scene: mesh %q is empty", name)
	}
	if err := m.Validate(); err != nil {
		return fmt.Errorf("scene: mesh %q: %w", name, err)
	}
	if material < 0 || material >= len(s.materials) {
		return fmt.Errorf("scene: mesh %q: material %d out of range", name, material)
	}
	e := entry{name: name, mesh: m, material: material}
	if parent != nil {
		e.parent = *parent
	}
	s.entries = append(s.entries, e)
	return nil
}

// AddLocator adds a named point.
func (s *Scene) AddLocator(name string, pos v3.Vec) {
	s.locators = append(s.locators, Locator{Name: name, Position: pos})
}

// Locators returns the named points in insertion order.
func (s *Scene) Locators() []Locator {
	return s.locators
}

// MeshCount returns the number of meshes added.
func (s *Scene) MeshCount() int {
	return len(s.entries)
}

// Nodes groups the meshes according to the scene granularity.
func (s *Scene) Nodes() []Node {
	var nodes []Node
	switch s.Granularity {
	case PerObject:
		for _, e := range s.entries {
			nodes = append(nodes, Node{
				Name:      e.name,
				Mesh:      e.mesh,
				Material:  e.material,
				Transform: e.parent,
			})
		}
	case PerMaterial:
		groups := make(map[int]*kernel.Mesh)
		for _, e := range s.entries {
			g, ok := groups[e.material]
			if !ok {
				g = &kernel.Mesh{}
				groups[e.material] = g
			}
			g.Append(e.mesh.Translated(e.parent.Translation))
		}
		keys := make([]int, 0, len(groups))
		for k := range groups {
			keys = append(keys, k)
		}
		sort.Ints(keys)
		for _, k := range keys {
			groups[k].PartName = s.materials[k].Name
			nodes = append(nodes, Node{Name: s.materials[k].Name, Mesh: groups[k], Material: k})
		}
	default:
		if len(s.entries) == 0 {
			break
		}
		merged := &kernel.Mesh{PartName: "scene"}
		var mats []int
		for _, e := range s.entries {
			merged.Append(e.mesh.Translated(e.parent.Translation))
			for range e.mesh.Faces {
				mats = append(mats, e.material)
			}
		}
		nodes = append(nodes, Node{Name: "scene", Mesh: merged, Material: s.entries[0].material, FaceMaterials: mats})
	}
	if s.Center {
		for i := range nodes {
			c := nodes[i].Mesh.Bound().Center()
			nodes[i].Mesh = nodes[i].Mesh.Translated(c.MulScalar(-1))
			nodes[i].Transform.Translation = nodes[i].Transform.Translation.Add(c)
		}
	}
	return nodes
}
