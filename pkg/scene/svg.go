package scene

import (
	"fmt"
	"io"
	"math"
	"os"
	"sort"

	svg "github.com/ajstarks/svgo"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/nickblock/geoutils/pkg/geom"
	"github.com/nickblock/geoutils/pkg/kernel"
)

const svgSize = 1024

// planBound is a 2D bounding rectangle.
type planBound struct {
	min, max geom.Point2
	empty    bool
}

func newPlanBound() planBound {
	return planBound{empty: true}
}

func (b *planBound) add(p geom.Point2) {
	if b.empty {
		b.min, b.max, b.empty = p, p, false
		return
	}
	b.min = geom.Point2{X: math.Min(b.min.X, p.X), Y: math.Min(b.min.Y, p.Y)}
	b.max = geom.Point2{X: math.Max(b.max.X, p.X), Y: math.Max(b.max.Y, p.Y)}
}

// viewport maps plan coordinates onto the SVG canvas, north up.
type viewport struct {
	min    geom.Point2
	scale  float64
	height int
}

func newViewport(b planBound) viewport {
	w, h := b.max.X-b.min.X, b.max.Y-b.min.Y
	scale := 1.0
	if m := math.Max(w, h); m > 0 {
		scale = (svgSize - 20) / m
	}
	return viewport{min: b.min, scale: scale, height: int(h*scale) + 20}
}

func (v viewport) point(p geom.Point2) (int, int) {
	x := 10 + (p.X-v.min.X)*v.scale
	y := float64(v.height) - 10 - (p.Y-v.min.Y)*v.scale
	return int(math.Round(x)), int(math.Round(y))
}

func (v viewport) polygon(pts []geom.Point2) ([]int, []int) {
	xs, ys := make([]int, len(pts)), make([]int, len(pts))
	for i, p := range pts {
		xs[i], ys[i] = v.point(p)
	}
	return xs, ys
}

// plan drops the up axis.
func (s *Scene) plan(p v3.Vec) geom.Point2 {
	if s.Up == kernel.ZUp {
		return geom.Point2{X: p.X, Y: p.Y}
	}
	return geom.Point2{X: p.X, Y: -p.Z}
}

func (s *Scene) height(p v3.Vec) float64 {
	if s.Up == kernel.ZUp {
		return p.Z
	}
	return p.Y
}

type planFace struct {
	pts    []geom.Point2
	height float64
	fill   string
}

// writeSVG draws a plan view: every upward facing face, lowest first,
// filled with its material color. Locators are labelled dots.
func writeSVG(path string, s *Scene, nodes []Node) error {
	up := kernel.Options{Up: s.Up}.UpNormal()
	var faces []planFace
	bound := newPlanBound()
	for i := range nodes {
		n := &nodes[i]
		for fi, f := range n.Mesh.Faces {
			if n.Mesh.FaceNormal(f).Dot(up) < 0.5 {
				continue
			}
			pf := planFace{pts: make([]geom.Point2, len(f)), fill: s.materials[n.MaterialOf(fi)].Color.Hex()}
			pf.height = math.Inf(-1)
			for j, idx := range f {
				w := n.World(int(idx))
				pf.pts[j] = s.plan(w)
				pf.height = math.Max(pf.height, s.height(w))
				bound.add(pf.pts[j])
			}
			faces = append(faces, pf)
		}
	}
	for _, l := range s.locators {
		bound.add(s.plan(l.Position))
	}
	if bound.empty {
		return fmt.Errorf("nothing to draw")
	}
	sort.SliceStable(faces, func(i, j int) bool { return faces[i].height < faces[j].height })

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	vp := newViewport(bound)
	canvas := svg.New(f)
	canvas.Start(svgSize, vp.height)
	canvas.Rect(0, 0, svgSize, vp.height, "fill:rgb(255,255,255)")
	for _, pf := range faces {
		xs, ys := vp.polygon(pf.pts)
		canvas.Polygon(xs, ys, "fill:"+pf.fill+";stroke:none")
	}
	for _, l := range s.locators {
		x, y := vp.point(s.plan(l.Position))
		canvas.Circle(x, y, 3, "fill:black")
		canvas.Text(x+5, y-5, l.Name, "font-size:10px;fill:black")
	}
	canvas.End()
	return f.Close()
}

// DebugLoops draws a ground boundary and its holes to w. Outer loops are
// outlined in green and holes in red.
func DebugLoops(w io.Writer, boundary geom.Loop, holes []geom.Loop) error {
	bound := newPlanBound()
	for _, p := range boundary {
		bound.add(p)
	}
	if bound.empty {
		return fmt.Errorf("scene: empty boundary")
	}
	vp := newViewport(bound)
	canvas := svg.New(w)
	canvas.Start(svgSize, vp.height)
	canvas.Rect(0, 0, svgSize, vp.height, "fill:rgb(255,255,255)")
	xs, ys := vp.polygon(boundary)
	canvas.Polygon(xs, ys, "fill:rgb(200,230,200);stroke:green;stroke-width:2")
	for _, h := range holes {
		xs, ys := vp.polygon(h)
		canvas.Polygon(xs, ys, "fill:none;stroke:red;stroke-width:1")
	}
	canvas.End()
	return nil
}

// DebugLoopsFile writes DebugLoops output to path.
func DebugLoopsFile(path string, boundary geom.Loop, holes []geom.Loop) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := DebugLoops(f, boundary, holes); err != nil {
		return err
	}
	return f.Close()
}
