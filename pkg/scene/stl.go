package scene

import (
	"errors"

	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
)

// writeSTL writes all nodes as one binary STL triangle soup.
func writeSTL(path string, _ *Scene, nodes []Node) error {
	var tris []*sdf.Triangle3
	for i := range nodes {
		n := &nodes[i]
		for _, t := range n.Mesh.Triangles() {
			tris = append(tris, &sdf.Triangle3{n.World(int(t[0])), n.World(int(t[1])), n.World(int(t[2]))})
		}
	}
	if len(tris) == 0 {
		return errors.New("no triangles to write")
	}
	return render.SaveSTL(path, tris)
}
