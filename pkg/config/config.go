// Package config holds the converter settings. A Config is built from
// Default, optionally overlaid by a YAML file, then by command line flags,
// and validated once before a batch starts. Nothing reads it after that
// except through the values derived from it.
package config

import (
	"errors"
	"fmt"
	"os"
	"sort"

	colorful "github.com/lucasb-eyer/go-colorful"
	"github.com/nickblock/geoutils/pkg/kernel"
	"github.com/nickblock/geoutils/pkg/kernel/poly"
	"github.com/nickblock/geoutils/pkg/osmdata"
	"github.com/nickblock/geoutils/pkg/scene"
	"gopkg.in/yaml.v3"
)

// Config is the full converter configuration.
type Config struct {
	UpAxis     string  `yaml:"up_axis"`
	UVScale    float64 `yaml:"uv_scale"`
	Projection string  `yaml:"projection"`

	RoadWidth     float64 `yaml:"road_width"`
	FloorHeight   float64 `yaml:"floor_height"`
	DefaultFloors int     `yaml:"default_floors"`

	Kernel         string  `yaml:"kernel"`
	GroundStrategy string  `yaml:"ground_strategy"`
	DensifyEdge    float64 `yaml:"densify_edge"`
	MeshCells      int     `yaml:"mesh_cells"`

	Granularity  string `yaml:"granularity"`
	CenterMeshes bool   `yaml:"center_meshes"`

	Highways bool   `yaml:"highways"`
	Ground   bool   `yaml:"ground"`
	CutRoads bool   `yaml:"cut_roads"`
	Types    string `yaml:"types"`
	Limit    int    `yaml:"limit"`
	Workers  int    `yaml:"workers"`

	// Materials maps material names to hex colors ("#95ae51").
	Materials map[string]string `yaml:"materials"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		UpAxis:         "y",
		Projection:     "mercator",
		RoadWidth:      3.0,
		FloorHeight:    2.5,
		DefaultFloors:  3,
		Kernel:         "poly",
		GroundStrategy: "triangulate",
		Granularity:    "material",
		Highways:       true,
		CutRoads:       true,
		Types:          "building,highway,water,location",
		Materials:      scene.DefaultPalette(),
	}
}

// Load overlays the YAML file at path onto c. Keys missing from the file
// keep their current values; material entries are merged.
func (c *Config) Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	materials := c.Materials
	c.Materials = nil
	if err := yaml.Unmarshal(data, c); err != nil {
		c.Materials = materials
		return fmt.Errorf("config: %s: %w", path, err)
	}
	for name, hex := range c.Materials {
		if materials == nil {
			materials = make(map[string]string)
		}
		materials[name] = hex
	}
	c.Materials = materials
	return nil
}

// Validate checks every field and returns all problems found.
func (c *Config) Validate() error {
	var errs []error
	if _, err := kernel.ParseUpAxis(c.UpAxis); err != nil {
		errs = append(errs, err)
	}
	if c.UVScale < 0 {
		errs = append(errs, fmt.Errorf("config: uv_scale %v is negative", c.UVScale))
	}
	if c.RoadWidth <= 0 {
		errs = append(errs, fmt.Errorf("config: road_width %v must be positive", c.RoadWidth))
	}
	if c.FloorHeight <= 0 {
		errs = append(errs, fmt.Errorf("config: floor_height %v must be positive", c.FloorHeight))
	}
	if c.DefaultFloors < 0 {
		errs = append(errs, fmt.Errorf("config: default_floors %d is negative", c.DefaultFloors))
	}
	switch c.Kernel {
	case "poly", "sdf":
	default:
		errs = append(errs, fmt.Errorf("config: unknown kernel %q", c.Kernel))
	}
	if _, err := poly.ParseGroundStrategy(c.GroundStrategy); err != nil {
		errs = append(errs, err)
	}
	if _, err := scene.ParseGranularity(c.Granularity); err != nil {
		errs = append(errs, err)
	}
	if _, err := osmdata.ParseTypes(c.Types); err != nil {
		errs = append(errs, err)
	}
	if c.DensifyEdge < 0 || c.MeshCells < 0 || c.Limit < 0 || c.Workers < 0 {
		errs = append(errs, errors.New("config: densify_edge, mesh_cells, limit and workers must not be negative"))
	}
	if _, err := c.Colors(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// KernelOptions derives the engine frame settings.
func (c *Config) KernelOptions() kernel.Options {
	up, _ := kernel.ParseUpAxis(c.UpAxis)
	return kernel.Options{Up: up, UVScale: c.UVScale}
}

// HeightOptions derives building height resolution settings.
func (c *Config) HeightOptions() osmdata.HeightOptions {
	return osmdata.HeightOptions{FloorHeight: c.FloorHeight, DefaultFloors: c.DefaultFloors}
}

// Colors parses the material palette, sorted by name for stable output.
func (c *Config) Colors() ([]scene.Material, error) {
	names := make([]string, 0, len(c.Materials))
	for name := range c.Materials {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make([]scene.Material, 0, len(names))
	for _, name := range names {
		col, err := colorful.Hex(c.Materials[name])
		if err != nil {
			return nil, fmt.Errorf("config: material %q: %w", name, err)
		}
		out = append(out, scene.Material{Name: name, Color: col})
	}
	return out, nil
}
