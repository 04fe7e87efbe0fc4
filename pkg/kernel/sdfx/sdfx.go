// Package sdfx implements the kernel.Kernel interface using the
// github.com/deadsy/sdfx SDF-based CAD library. Shapes are built as signed
// distance fields and meshed by marching cubes, so output is an
// approximation of the exact poly kernel: walls are faceted at the cell
// size, ribbons and ground become thin slabs, and no UVs are produced.
package sdfx

import (
	"fmt"
	"math"

	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/nickblock/geoutils/pkg/geom"
	"github.com/nickblock/geoutils/pkg/kernel"
	"github.com/nickblock/geoutils/pkg/kernel/poly"
)

// Compile-time interface check.
var _ kernel.Kernel = (*SdfxKernel)(nil)

// defaultMeshCells controls marching cubes tessellation resolution.
const defaultMeshCells = 200

// defaultSlab is the thickness given to flat shapes (ribbons, ground, zero
// height caps), which an SDF cannot represent.
const defaultSlab = 0.1

// SdfxKernel implements kernel.Kernel using sdfx.
type SdfxKernel struct {
	opts  kernel.Options
	cells int
	slab  float64
	flat  *poly.Kernel
}

// New returns a new SdfxKernel. cells <= 0 selects the default resolution.
func New(opts kernel.Options, cells int) *SdfxKernel {
	if cells <= 0 {
		cells = defaultMeshCells
	}
	return &SdfxKernel{
		opts:  opts,
		cells: cells,
		slab:  defaultSlab,
		flat:  poly.New(kernel.Options{Up: kernel.ZUp}),
	}
}

func toVecs(l geom.Loop) []v2.Vec {
	out := make([]v2.Vec, len(l))
	copy(out, l)
	return out
}

// polygon builds a 2D SDF from a loop after normalizing it.
func polygon(l geom.Loop) (sdf.SDF2, geom.Loop, error) {
	n, err := l.Normalize()
	if err != nil {
		return nil, nil, err
	}
	n = n.Canonical()
	s, err := sdf.Polygon2D(toVecs(n))
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", geom.ErrDegenerateGeometry, err)
	}
	return s, n, nil
}

// slabFor returns a thickness that spans at least two marching cubes cells
// for a shape of the given planar extent.
func (k *SdfxKernel) slabFor(b geom.BoundingBox) float64 {
	s := b.Size()
	return math.Max(k.slab, 2*math.Max(s.X, s.Y)/float64(k.cells))
}

// prism extrudes s2 between lo and hi along the planar Z axis and maps the
// result into the scene frame.
func (k *SdfxKernel) prism(s2 sdf.SDF2, lo, hi float64) sdf.SDF3 {
	s3 := sdf.Extrude3D(s2, hi-lo)
	m := k.opts.Matrix().Mul(sdf.Translate3d(v3.Vec{Z: (lo + hi) / 2}))
	return sdf.Transform3D(s3, m)
}

// Extrude sweeps loop from the ground plane to height. A zero height
// becomes a slab just below the ground plane.
func (k *SdfxKernel) Extrude(loop geom.Loop, height float64, featureID int) (*kernel.Mesh, error) {
	s2, l, err := polygon(loop)
	if err != nil {
		return nil, fmt.Errorf("sdfx: extrude: %w", err)
	}
	lo, hi := 0.0, height
	switch {
	case height < 0:
		lo, hi = height, 0
	case height == 0:
		lo = -k.slabFor(l.Bound())
	}
	return k.toMesh(k.prism(s2, lo, hi))
}

// Ribbon builds a slab over the ribbon outline the poly kernel would emit.
func (k *SdfxKernel) Ribbon(line geom.Polyline, width float64, featureID int) (*kernel.Mesh, error) {
	if !(width > 0) {
		return nil, fmt.Errorf("sdfx: ribbon width %v: %w", width, geom.ErrDegenerateGeometry)
	}
	outline, err := k.flat.RibbonOutline(line, width)
	if err != nil {
		return nil, fmt.Errorf("sdfx: ribbon: %w", err)
	}
	s2, l, err := polygon(outline)
	if err != nil {
		return nil, fmt.Errorf("sdfx: ribbon: %w", err)
	}
	return k.toMesh(k.prism(s2, -k.slabFor(l.Bound()), 0))
}

// Ground builds a slab over boundary with the holes cut out.
func (k *SdfxKernel) Ground(boundary geom.Loop, holes *geom.HoleSet) (*kernel.Mesh, []error, error) {
	b, err := boundary.Normalize()
	if err != nil || b.SelfIntersects() {
		return nil, nil, fmt.Errorf("sdfx: ground: %w", geom.ErrInvalidBoundary)
	}
	s2, l, err := polygon(b)
	if err != nil {
		return nil, nil, fmt.Errorf("sdfx: ground: %w: %w", geom.ErrInvalidBoundary, err)
	}

	var warnings []error
	var cut []sdf.SDF2
	for _, h := range holes.Holes() {
		if h.Loop.SelfIntersects() {
			warnings = append(warnings, fmt.Errorf("hole %q self-intersects: %w", h.Name, geom.ErrHoleSkipped))
			continue
		}
		hs, _, err := polygon(h.Loop)
		if err != nil {
			warnings = append(warnings, fmt.Errorf("hole %q: %w: %w", h.Name, geom.ErrHoleSkipped, err))
			continue
		}
		cut = append(cut, hs)
	}
	if len(cut) > 0 {
		s2 = sdf.Difference2D(s2, sdf.Union2D(cut...))
	}
	m, err := k.toMesh(k.prism(s2, -k.slabFor(l.Bound()), 0))
	if err != nil {
		return nil, warnings, err
	}
	return m, warnings, nil
}

// toMesh converts a solid to a triangle mesh using marching cubes.
func (k *SdfxKernel) toMesh(s sdf.SDF3) (*kernel.Mesh, error) {
	renderer := render.NewMarchingCubesUniform(k.cells)
	triangles := render.ToTriangles(s, renderer)

	numVerts := len(triangles) * 3
	m := &kernel.Mesh{
		Vertices: make([]v3.Vec, 0, numVerts),
		Normals:  make([]v3.Vec, 0, numVerts),
		Faces:    make([]kernel.Face, 0, len(triangles)),
	}
	for _, tri := range triangles {
		n := tri.Normal()
		if !geom.Finite3(n) {
			// Marching cubes emits slivers along flat walls.
			continue
		}
		base := uint32(len(m.Vertices))
		for j := 0; j < 3; j++ {
			m.Vertices = append(m.Vertices, tri[j])
			m.Normals = append(m.Normals, n)
		}
		m.Faces = append(m.Faces, kernel.Face{base, base + 1, base + 2})
	}
	if m.IsEmpty() {
		return nil, fmt.Errorf("sdfx: marching cubes produced no triangles: %w", geom.ErrDegenerateGeometry)
	}
	return m, nil
}
