package poly

import (
	"fmt"

	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/nickblock/geoutils/pkg/geom"
	"github.com/nickblock/geoutils/pkg/kernel"
)

// Ribbon builds a flat strip of the given width along line. Each path point
// becomes a left/right vertex pair; each segment becomes one quad. Turns are
// mitered by intersecting the offset edges of neighbouring segments.
//
// UVs run across the strip (0 left, 1 right) and along it as the path arc
// length in units of width, so tiling does not depend on segment length and
// both vertices of a joint share V.
func (k *Kernel) Ribbon(line geom.Polyline, width float64, featureID int) (*kernel.Mesh, error) {
	if err := line.Validate(); err != nil {
		return nil, fmt.Errorf("poly: ribbon: %w", err)
	}
	if !(width > 0) {
		return nil, fmt.Errorf("poly: ribbon width %v: %w", width, geom.ErrDegenerateGeometry)
	}
	left, right, err := k.ribbonEdges(line, width)
	if err != nil {
		return nil, fmt.Errorf("poly: ribbon: %w", err)
	}

	o := k.opts
	up := o.UpNormal()
	fid := float64(featureID)
	n := len(left)
	m := &kernel.Mesh{
		Vertices: make([]v3.Vec, 0, 2*n),
		Normals:  make([]v3.Vec, 0, 2*n),
		UVs:      make([]v3.Vec, 0, 2*n),
		Faces:    make([]kernel.Face, 0, n-1),
	}
	var dist float64
	for j := 0; j < n; j++ {
		if j > 0 {
			dist += line[j].Sub(line[j-1]).Length()
		}
		m.Vertices = append(m.Vertices, o.Position(left[j], 0), o.Position(right[j], 0))
		m.Normals = append(m.Normals, up, up)
		m.UVs = append(m.UVs,
			v3.Vec{X: 0, Y: dist / width, Z: fid},
			v3.Vec{X: 1, Y: dist / width, Z: fid},
		)
	}
	for i := 0; i < n-1; i++ {
		a := uint32(2 * i)
		m.Faces = append(m.Faces, kernel.Face{a, a + 1, a + 3, a + 2})
	}
	return m, nil
}

// RibbonOutline returns the footprint of the ribbon k would build for line,
// as a counter-clockwise loop.
func (k *Kernel) RibbonOutline(line geom.Polyline, width float64) (geom.Loop, error) {
	if err := line.Validate(); err != nil {
		return nil, fmt.Errorf("poly: ribbon outline: %w", err)
	}
	left, right, err := k.ribbonEdges(line, width)
	if err != nil {
		return nil, fmt.Errorf("poly: ribbon outline: %w", err)
	}
	out := make(geom.Loop, 0, 2*len(left))
	out = append(out, left...)
	for i := len(right) - 1; i >= 0; i-- {
		out = append(out, right[i])
	}
	return out.Canonical(), nil
}

// strip holds the four offset corners of one segment: start-left,
// start-right, end-right, end-left.
type strip [4]geom.Point2

func segmentStrip(p0, p1 geom.Point2, width float64) strip {
	dir := geom.Unit(p1.Sub(p0))
	nw := geom.Point2{X: -dir.Y, Y: dir.X}.MulScalar(width / 2)
	return strip{p0.Add(nw), p0.Sub(nw), p1.Sub(nw), p1.Add(nw)}
}

// ribbonEdges returns the left and right offset points, one pair per path
// point.
func (k *Kernel) ribbonEdges(line geom.Polyline, width float64) (left, right []geom.Point2, err error) {
	n := len(line)
	strips := make([]strip, n-1)
	for i := range strips {
		strips[i] = segmentStrip(line[i], line[i+1], width)
	}

	left = make([]geom.Point2, 0, n)
	right = make([]geom.Point2, 0, n)
	left = append(left, strips[0][0])
	right = append(right, strips[0][1])

	limit := k.miterLimit * width / 2
	for j := 1; j < n-1; j++ {
		prev, next := strips[j-1], strips[j]
		l, okL := geom.LineIntersection(prev[0], prev[3], next[0], next[3])
		r, okR := geom.LineIntersection(prev[1], prev[2], next[1], next[2])
		if !okL || !okR || l.Sub(line[j]).Length() > limit || r.Sub(line[j]).Length() > limit {
			l, r = prev[3], prev[2]
		}
		left = append(left, l)
		right = append(right, r)
	}
	last := strips[n-2]
	left = append(left, last[3])
	right = append(right, last[2])

	for j := range left {
		if !geom.Finite(left[j]) || !geom.Finite(right[j]) {
			return nil, nil, fmt.Errorf("joint %d: %w", j, geom.ErrDegenerateVertex)
		}
	}
	return left, right, nil
}
