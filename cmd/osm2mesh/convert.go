package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path/filepath"

	"github.com/golang/geo/s2"
	"github.com/nickblock/geoutils/pkg/config"
	"github.com/nickblock/geoutils/pkg/geom"
	"github.com/nickblock/geoutils/pkg/kernel"
	"github.com/nickblock/geoutils/pkg/kernel/poly"
	"github.com/nickblock/geoutils/pkg/kernel/sdfx"
	"github.com/nickblock/geoutils/pkg/osmdata"
	"github.com/nickblock/geoutils/pkg/project"
	"github.com/nickblock/geoutils/pkg/s2cell"
	"github.com/nickblock/geoutils/pkg/scene"
	"github.com/nickblock/geoutils/pkg/tessellate"
	"github.com/paulmach/orb"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

// testInput selects the built-in scene instead of reading files.
const testInput = "test"

type convertFlags struct {
	inputs     []string
	output     string
	configPath string
	extents    string
	ref        string
	debugSVG   string
	quiet      bool
	verbose    bool

	zup            bool
	uvScale        float64
	kernel         string
	groundStrategy string
	granularity    string
	workers        int
	limit          int
	types          string
	ground         bool
	center         bool
}

func newConvertCmd() *cobra.Command {
	var f convertFlags
	cmd := &cobra.Command{
		Use:   "convert -i in.osm.pbf[,more.osm] -o out.obj",
		Short: "Convert OSM extracts to a mesh file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := f.config(cmd)
			if err != nil {
				return err
			}
			logger := log.New(cmd.ErrOrStderr(), "", log.LstdFlags)
			return runConvert(cmd.Context(), cfg, &f, logger)
		},
	}
	fl := cmd.Flags()
	fl.StringSliceVarP(&f.inputs, "input", "i", nil, "input .osm or .osm.pbf files, or \"test\"")
	fl.StringVarP(&f.output, "output", "o", "", "output file; the extension selects the format")
	fl.StringVar(&f.configPath, "config", "", "YAML configuration file")
	fl.StringVarP(&f.extents, "extents", "e", "", "restrict to minlon,minlat,maxlon,maxlat; also the ground boundary")
	fl.StringVar(&f.ref, "ref", "", "reference point lat,lon for the local frame")
	fl.StringVar(&f.debugSVG, "debug-svg", "", "write the ground boundary and holes to this SVG file")
	fl.BoolVarP(&f.quiet, "quiet", "q", false, "do not log per-feature warnings")
	fl.BoolVarP(&f.verbose, "verbose", "v", false, "log every per-feature failure")

	fl.BoolVar(&f.zup, "zup", false, "use Z as the up axis")
	fl.Float64Var(&f.uvScale, "uv-scale", 0, "world units per texture tile, 0 disables extrusion UVs")
	fl.StringVar(&f.kernel, "kernel", "", "geometry kernel: poly or sdf")
	fl.StringVar(&f.groundStrategy, "ground-strategy", "", "ground meshing: triangulate or boolean")
	fl.StringVar(&f.granularity, "granularity", "", "mesh grouping: single, material or object")
	fl.IntVar(&f.workers, "workers", 0, "parallel conversions, 0 means unlimited")
	fl.IntVar(&f.limit, "limit", 0, "stop after this many features")
	fl.StringVar(&f.types, "types", "", "feature types to convert, e.g. building,highway")
	fl.BoolVar(&f.ground, "ground", false, "build a ground mesh")
	fl.BoolVar(&f.center, "center", false, "center every output mesh on its own bounds")
	_ = cmd.MarkFlagRequired("input")
	_ = cmd.MarkFlagRequired("output")
	return cmd
}

// config layers defaults, the config file and explicitly set flags.
func (f *convertFlags) config(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.Default()
	if f.configPath != "" {
		if err := cfg.Load(f.configPath); err != nil {
			return nil, err
		}
	}
	fl := cmd.Flags()
	if fl.Changed("zup") {
		cfg.UpAxis = lo.Ternary(f.zup, "z", "y")
	}
	if fl.Changed("uv-scale") {
		cfg.UVScale = f.uvScale
	}
	if fl.Changed("kernel") {
		cfg.Kernel = f.kernel
	}
	if fl.Changed("ground-strategy") {
		cfg.GroundStrategy = f.groundStrategy
	}
	if fl.Changed("granularity") {
		cfg.Granularity = f.granularity
	}
	if fl.Changed("workers") {
		cfg.Workers = f.workers
	}
	if fl.Changed("limit") {
		cfg.Limit = f.limit
	}
	if fl.Changed("types") {
		cfg.Types = f.types
	}
	if fl.Changed("ground") {
		cfg.Ground = f.ground
	}
	if fl.Changed("center") {
		cfg.CenterMeshes = f.center
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newKernel(cfg *config.Config) (kernel.Kernel, error) {
	opts := cfg.KernelOptions()
	switch cfg.Kernel {
	case "sdf":
		return sdfx.New(opts, cfg.MeshCells), nil
	case "poly":
		gs, err := poly.ParseGroundStrategy(cfg.GroundStrategy)
		if err != nil {
			return nil, err
		}
		return poly.New(opts, poly.WithGroundStrategy(gs), poly.WithDensify(cfg.DensifyEdge)), nil
	}
	return nil, fmt.Errorf("unknown kernel %q", cfg.Kernel)
}

func newScene(cfg *config.Config) (*scene.Scene, error) {
	g, err := scene.ParseGranularity(cfg.Granularity)
	if err != nil {
		return nil, err
	}
	mats, err := cfg.Colors()
	if err != nil {
		return nil, err
	}
	s := scene.New(g)
	s.Center = cfg.CenterMeshes
	s.Up = cfg.KernelOptions().Up
	for _, m := range mats {
		s.AddMaterial(m.Name, m.Color)
	}
	return s, nil
}

func runConvert(ctx context.Context, cfg *config.Config, f *convertFlags, logger *log.Logger) error {
	if ctx == nil {
		ctx = context.Background()
	}
	k, err := newKernel(cfg)
	if err != nil {
		return err
	}
	s, err := newScene(cfg)
	if err != nil {
		return err
	}

	if len(f.inputs) == 1 && f.inputs[0] == testInput {
		if err := buildTestScene(k, s); err != nil {
			return err
		}
	} else {
		res, err := convertFiles(ctx, cfg, f, k, logger)
		if err != nil {
			return err
		}
		if err := res.AddTo(s); err != nil {
			return err
		}
		if f.debugSVG != "" && len(res.Boundary) > 0 {
			if err := scene.DebugLoopsFile(f.debugSVG, res.Boundary, res.Holes); err != nil {
				return err
			}
		}
		res.Report.Log()
	}

	if err := s.Write(f.output); err != nil {
		return err
	}
	logger.Printf("wrote %s: %d meshes, %d locators", f.output, s.MeshCount(), len(s.Locators()))
	return nil
}

// buildTestScene adds a single extruded square.
func buildTestScene(k kernel.Kernel, s *scene.Scene) error {
	square := geom.Loop{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 10}}
	m, err := k.Extrude(square, 5, 0)
	if err != nil {
		return err
	}
	mat, _ := s.MaterialIndex(scene.MaterialBuilding)
	return s.AddMesh(m, "test square", mat, nil)
}

// convertFiles decodes every input and tessellates the combined features.
// A single S2 tile extract (s2_<cell>.osm.pbf) sets the reference point and
// ground boundary to the cell and restricts features to it.
func convertFiles(ctx context.Context, cfg *config.Config, f *convertFlags, k kernel.Kernel, logger *log.Logger) (*tessellate.Result, error) {
	types, err := osmdata.ParseTypes(cfg.Types)
	if err != nil {
		return nil, err
	}
	filters := []osmdata.Filter{osmdata.TypeFilter(types)}

	var extents *orb.Bound
	if f.extents != "" {
		b, err := project.ParseBound(f.extents)
		if err != nil {
			return nil, err
		}
		extents = &b
		filters = append(filters, osmdata.BoundFilter(b))
	}

	var cell *s2.CellID
	if len(f.inputs) == 1 {
		if id, err := s2cell.FromFileName(f.inputs[0]); err == nil {
			cell = &id
			filters = append(filters, s2cell.Filter(id))
			logger.Printf("input is S2 cell %s", id.ToToken())
		}
	}

	opts := osmdata.Options{
		Height: cfg.HeightOptions(),
		Filter: osmdata.All(filters...),
		Limit:  cfg.Limit,
	}
	var features []osmdata.Feature
	for _, in := range f.inputs {
		if cfg.Limit > 0 {
			// The limit covers all inputs together.
			if len(features) >= cfg.Limit {
				break
			}
			opts.Limit = cfg.Limit - len(features)
		}
		fs, stats, err := osmdata.Open(ctx, in, opts)
		if err != nil {
			return nil, err
		}
		logger.Printf("%s: %d nodes, %d ways, %d features (%d unresolved, %d invalid)",
			filepath.Base(in), stats.Nodes, stats.Ways, stats.Accepted, stats.Unresolved, stats.Invalid)
		features = append(features, fs...)
	}
	if len(features) == 0 {
		return nil, errors.New("no features to convert")
	}

	var ref orb.Point
	switch {
	case f.ref != "":
		if ref, err = project.ParsePoint(f.ref); err != nil {
			return nil, err
		}
	case cell != nil:
		ref = s2cell.Center(*cell)
	case extents != nil:
		ref = extents.Center()
	default:
		ref = featuresBound(features).Center()
	}
	proj, err := project.New(cfg.Projection, ref)
	if err != nil {
		return nil, err
	}

	var boundary geom.Loop
	switch {
	case cell != nil:
		boundary = project.Loop(proj, s2cell.Corners(*cell))
	case extents != nil:
		boundary = project.BoundLoop(proj, *extents)
	}

	return tessellate.Tessellate(ctx, features, k, proj, tessellate.Options{
		Frame:     cfg.KernelOptions(),
		RoadWidth: cfg.RoadWidth,
		Highways:  cfg.Highways,
		Ground:    cfg.Ground,
		CutRoads:  cfg.CutRoads,
		Boundary:  boundary,
		Margin:    cfg.RoadWidth,
		Workers:   cfg.Workers,
		Quiet:     f.quiet,
		Verbose:   f.verbose,
		Logger:    logger,
	})
}

func featuresBound(features []osmdata.Feature) orb.Bound {
	b := features[0].Bound()
	for i := range features[1:] {
		b = b.Union(features[i+1].Bound())
	}
	return b
}
