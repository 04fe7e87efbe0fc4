// Package tessellate turns decoded map features into meshes using a
// geometry kernel. Features are converted in parallel; results keep the
// input order. Failures of single features are collected in a Report and
// never abort the batch; anything the geometry layer does not classify as
// recoverable does.
package tessellate

import (
	"context"
	"fmt"
	"log"

	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/nickblock/geoutils/pkg/geom"
	"github.com/nickblock/geoutils/pkg/kernel"
	"github.com/nickblock/geoutils/pkg/kernel/poly"
	"github.com/nickblock/geoutils/pkg/osmdata"
	"github.com/nickblock/geoutils/pkg/project"
	"github.com/nickblock/geoutils/pkg/scene"
	"golang.org/x/sync/errgroup"
)

// Options controls a batch.
type Options struct {
	// Frame must match the options the kernel was built with. It places
	// locators.
	Frame     kernel.Options
	RoadWidth float64
	Highways  bool
	// Ground builds a ground mesh over Boundary with building, water and
	// (with CutRoads) road footprints cut out.
	Ground   bool
	CutRoads bool
	// Boundary is the projected ground outline. When empty the bounds of
	// all features padded by Margin are used.
	Boundary geom.Loop
	Margin   float64
	Workers  int

	// Quiet suppresses the first-failure warnings; Verbose logs every one.
	Quiet   bool
	Verbose bool
	Logger  *log.Logger
}

// Item is one converted mesh.
type Item struct {
	Name     string
	Material string
	Mesh     *kernel.Mesh
}

// Result is the output of a batch.
type Result struct {
	Items    []Item
	Locators []scene.Locator
	// Boundary and Holes are the ground inputs, kept for debug output.
	Boundary geom.Loop
	Holes    []geom.Loop
	Report   *Report
}

// outliner is implemented by kernels that can produce the footprint of a
// ribbon.
type outliner interface {
	RibbonOutline(line geom.Polyline, width float64) (geom.Loop, error)
}

// converted is the per-feature outcome.
type converted struct {
	item    *Item
	locator *scene.Locator
	hole    geom.Loop
	err     error
}

// Tessellate converts features with k, projecting coordinates with p.
func Tessellate(ctx context.Context, features []osmdata.Feature, k kernel.Kernel, p project.Projector, opts Options) (*Result, error) {
	report := newReport(opts.Logger, opts.Quiet, opts.Verbose)
	res := &Result{Report: report}

	out, ok := k.(outliner)
	if !ok {
		out = poly.New(opts.Frame)
	}

	results := make([]converted, len(features))
	g, gctx := errgroup.WithContext(ctx)
	if opts.Workers > 0 {
		g.SetLimit(opts.Workers)
	}
	for i := range features {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = convert(&features[i], i, k, out, p, opts)
			if geom.Classify(results[i].err) == geom.SeverityFatal {
				return fmt.Errorf("tessellate: %s: %w", features[i].Name, results[i].err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	holes := &geom.HoleSet{}
	for i, c := range results {
		name := features[i].Name
		if c.err != nil {
			report.record(name, c.err)
			continue
		}
		if c.item != nil {
			res.Items = append(res.Items, *c.item)
			report.Converted++
		}
		if c.locator != nil {
			res.Locators = append(res.Locators, *c.locator)
		}
		if c.hole != nil && opts.Ground {
			if err := holes.Add(name, c.hole); err != nil {
				report.record(name, err)
			}
		}
	}

	if opts.Ground {
		boundary := opts.Boundary
		if len(boundary) == 0 {
			boundary = featureBounds(features, p, opts.Margin)
		}
		res.Boundary = boundary
		for _, h := range holes.Holes() {
			res.Holes = append(res.Holes, h.Loop)
		}
		m, warnings, err := k.Ground(boundary, holes)
		for _, w := range warnings {
			report.record("ground", w)
		}
		switch geom.Classify(err) {
		case geom.SeverityNone:
			if m.IsEmpty() {
				break
			}
			m.PartName = "ground"
			res.Items = append([]Item{{Name: "ground", Material: scene.MaterialGround, Mesh: m}}, res.Items...)
		case geom.SeverityRecoverable:
			report.record("ground", err)
		default:
			return nil, fmt.Errorf("tessellate: ground: %w", err)
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

// convert routes one feature to the matching engine operation.
func convert(f *osmdata.Feature, fid int, k kernel.Kernel, out outliner, p project.Projector, opts Options) converted {
	switch {
	case f.Type.Has(osmdata.Location):
		if len(f.Coords) == 0 {
			return converted{err: fmt.Errorf("location without a position: %w", geom.ErrInsufficientPoints)}
		}
		pos := opts.Frame.Position(p.Project(f.Coords[0]), 0)
		return converted{locator: &scene.Locator{Name: f.Name, Position: pos}}

	case f.Type.Has(osmdata.Highway):
		if !opts.Highways {
			return converted{}
		}
		line := geom.Polyline(project.Loop(p, f.Coords))
		if f.Type.Has(osmdata.Closed) && len(line) > 0 {
			line = append(line, line[0])
		}
		m, err := k.Ribbon(line, opts.RoadWidth, fid)
		if err != nil {
			return converted{err: err}
		}
		c := converted{item: named(f, scene.MaterialHighway, m)}
		if opts.Ground && opts.CutRoads {
			outline, err := out.RibbonOutline(line, opts.RoadWidth)
			if err != nil {
				return converted{err: err}
			}
			c.hole = outline
		}
		return c

	case f.Type.Has(osmdata.Building):
		loop := project.Loop(p, f.Coords)
		m, err := k.Extrude(loop, f.Height, fid)
		if err != nil {
			return converted{err: err}
		}
		return converted{item: named(f, scene.MaterialBuilding, m), hole: loop}

	case f.Type.Has(osmdata.Water | osmdata.Closed):
		loop := project.Loop(p, f.Coords)
		m, err := k.Extrude(loop, 0, fid)
		if err != nil {
			return converted{err: err}
		}
		return converted{item: named(f, scene.MaterialWater, m), hole: loop}
	}
	return converted{}
}

func named(f *osmdata.Feature, material string, m *kernel.Mesh) *Item {
	m.PartName = f.Name
	return &Item{Name: f.Name, Material: material, Mesh: m}
}

// featureBounds returns the projected bounding rectangle of all features,
// grown by margin on every side, counter-clockwise.
func featureBounds(features []osmdata.Feature, p project.Projector, margin float64) geom.Loop {
	b := geom.NewBoundingBox()
	for i := range features {
		for _, c := range features[i].Coords {
			q := p.Project(c)
			b.Add(v3.Vec{X: q.X, Y: q.Y})
		}
	}
	if b.IsEmpty() {
		return nil
	}
	lo := geom.Point2{X: b.Min.X - margin, Y: b.Min.Y - margin}
	hi := geom.Point2{X: b.Max.X + margin, Y: b.Max.Y + margin}
	return geom.Loop{lo, {X: hi.X, Y: lo.Y}, hi, {X: lo.X, Y: hi.Y}}
}

// AddTo adds the converted meshes and locators to s. Materials are looked
// up by name, falling back to scene.MaterialDefault.
func (r *Result) AddTo(s *scene.Scene) error {
	for _, it := range r.Items {
		mat, ok := s.MaterialIndex(it.Material)
		if !ok {
			mat, ok = s.MaterialIndex(scene.MaterialDefault)
		}
		if !ok {
			return fmt.Errorf("tessellate: no material %q and no default", it.Material)
		}
		if err := s.AddMesh(it.Mesh, it.Name, mat, nil); err != nil {
			return err
		}
	}
	for _, l := range r.Locators {
		s.AddLocator(l.Name, l.Position)
	}
	return nil
}
