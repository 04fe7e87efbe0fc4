package scene

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// writeOBJ writes a Wavefront OBJ file and a material library next to it.
// Faces keep their polygon shape; locators are written as point elements.
func writeOBJ(path string, s *Scene, nodes []Node) error {
	mtlPath := strings.TrimSuffix(path, filepath.Ext(path)) + ".mtl"
	if err := writeMTL(mtlPath, s.materials); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	w := bufio.NewWriter(f)

	fmt.Fprintf(w, "mtllib %s\n", filepath.Base(mtlPath))
	vbase, tbase := 1, 1
	for i := range nodes {
		n := &nodes[i]
		m := n.Mesh
		fmt.Fprintf(w, "o %s\n", objName(n.Name))
		for j := range m.Vertices {
			v := n.World(j)
			fmt.Fprintf(w, "v %g %g %g\n", v.X, v.Y, v.Z)
		}
		for _, nv := range m.Normals {
			fmt.Fprintf(w, "vn %g %g %g\n", nv.X, nv.Y, nv.Z)
		}
		for _, uv := range m.UVs {
			fmt.Fprintf(w, "vt %g %g\n", uv.X, uv.Y)
		}
		current := -1
		for fi, face := range m.Faces {
			if mat := n.MaterialOf(fi); mat != current {
				current = mat
				fmt.Fprintf(w, "usemtl %s\n", objName(s.materials[mat].Name))
			}
			w.WriteString("f")
			for _, idx := range face {
				if m.HasUVs() {
					fmt.Fprintf(w, " %d/%d/%d", vbase+int(idx), tbase+int(idx), vbase+int(idx))
				} else {
					fmt.Fprintf(w, " %d//%d", vbase+int(idx), vbase+int(idx))
				}
			}
			w.WriteString("\n")
		}
		vbase += len(m.Vertices)
		tbase += len(m.UVs)
	}
	for _, l := range s.locators {
		fmt.Fprintf(w, "o %s\n", objName(l.Name))
		fmt.Fprintf(w, "v %g %g %g\n", l.Position.X, l.Position.Y, l.Position.Z)
		fmt.Fprintf(w, "p %d\n", vbase)
		vbase++
	}
	if err := w.Flush(); err != nil {
		return err
	}
	return f.Close()
}

func writeMTL(path string, materials []Material) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	w := bufio.NewWriter(f)
	for _, mat := range materials {
		fmt.Fprintf(w, "newmtl %s\n", objName(mat.Name))
		fmt.Fprintf(w, "Kd %.4f %.4f %.4f\n\n", mat.Color.R, mat.Color.G, mat.Color.B)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	return f.Close()
}

// objName replaces whitespace, which OBJ statements cannot carry.
func objName(s string) string {
	if s == "" {
		return "unnamed"
	}
	return strings.Join(strings.Fields(s), "_")
}
