package scene

import (
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"
	"github.com/yofu/dxf"
	"github.com/yofu/dxf/color"
)

// writeDXF writes one layer per material with a 3DFACE per triangle.
// Locators become POINT entities on their own layer.
func writeDXF(path string, s *Scene, nodes []Node) error {
	d := dxf.NewDrawing()
	d.Header().LtScale = 1.0
	for _, mat := range s.materials {
		if _, err := d.AddLayer(objName(mat.Name), aci(mat.Color), dxf.DefaultLineType, false); err != nil {
			return err
		}
	}
	for i := range nodes {
		n := &nodes[i]
		for fi := range n.Mesh.Faces {
			if err := d.ChangeLayer(objName(s.materials[n.MaterialOf(fi)].Name)); err != nil {
				return err
			}
			for _, t := range n.Mesh.FaceTriangles(fi) {
				a, b, c := n.World(int(t[0])), n.World(int(t[1])), n.World(int(t[2]))
				if _, err := d.ThreeDFace([][]float64{
					{a.X, a.Y, a.Z},
					{b.X, b.Y, b.Z},
					{c.X, c.Y, c.Z},
					{c.X, c.Y, c.Z},
				}); err != nil {
					return err
				}
			}
		}
	}
	if len(s.locators) > 0 {
		if _, err := d.AddLayer("locators", color.White, dxf.DefaultLineType, true); err != nil {
			return err
		}
		for _, l := range s.locators {
			if _, err := d.Point(l.Position.X, l.Position.Y, l.Position.Z); err != nil {
				return err
			}
		}
	}
	return d.SaveAs(path)
}

// aci picks the closest of the basic AutoCAD color indices by hue.
func aci(c colorful.Color) color.ColorNumber {
	h, s, _ := c.Hsv()
	if s < 0.15 {
		return color.White
	}
	hues := []color.ColorNumber{color.Red, color.Yellow, color.Green, color.Cyan, color.Blue, color.Magenta}
	i := int(math.Round(h/60)) % len(hues)
	return hues[i]
}
