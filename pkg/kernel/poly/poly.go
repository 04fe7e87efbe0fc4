// Package poly implements kernel.Kernel with exact polygon geometry:
// prism extrusion, mitered ribbons and ground meshes cut by holes.
package poly

import (
	"fmt"

	"github.com/nickblock/geoutils/pkg/kernel"
)

// Compile-time interface check.
var _ kernel.Kernel = (*Kernel)(nil)

// GroundStrategy selects how Ground covers the boundary.
type GroundStrategy int

const (
	// Triangulate builds a conforming Delaunay triangulation of the boundary
	// and hole loops and keeps the triangles inside the remaining region.
	Triangulate GroundStrategy = iota
	// BooleanDifference subtracts the merged holes from the boundary and
	// triangulates each resulting region with its holes.
	BooleanDifference
)

func (s GroundStrategy) String() string {
	switch s {
	case Triangulate:
		return "triangulate"
	case BooleanDifference:
		return "boolean"
	default:
		return fmt.Sprintf("GroundStrategy(%d)", int(s))
	}
}

// ParseGroundStrategy accepts "triangulate" or "boolean".
func ParseGroundStrategy(s string) (GroundStrategy, error) {
	switch s {
	case "triangulate", "delaunay", "":
		return Triangulate, nil
	case "boolean", "difference":
		return BooleanDifference, nil
	default:
		return Triangulate, fmt.Errorf("poly: unknown ground strategy %q", s)
	}
}

// defaultMiterLimit bounds how far a ribbon joint may move from its path
// point, in half-widths.
const defaultMiterLimit = 4.0

// Kernel is the exact polygon kernel. It holds only read-only settings and
// is safe for concurrent use.
type Kernel struct {
	opts       kernel.Options
	strategy   GroundStrategy
	maxEdge    float64
	miterLimit float64
}

// Option configures a Kernel.
type Option func(*Kernel)

// WithGroundStrategy selects the ground algorithm.
func WithGroundStrategy(s GroundStrategy) Option {
	return func(k *Kernel) { k.strategy = s }
}

// WithDensify splits ground constraint edges longer than maxEdge before
// triangulating. Zero disables densification.
func WithDensify(maxEdge float64) Option {
	return func(k *Kernel) { k.maxEdge = maxEdge }
}

// WithMiterLimit sets the ribbon miter limit in half-widths.
func WithMiterLimit(limit float64) Option {
	return func(k *Kernel) { k.miterLimit = limit }
}

// New returns a Kernel using opts for every call.
func New(opts kernel.Options, options ...Option) *Kernel {
	k := &Kernel{opts: opts, miterLimit: defaultMiterLimit}
	for _, o := range options {
		o(k)
	}
	return k
}

// Options returns the frame settings the kernel was built with.
func (k *Kernel) Options() kernel.Options {
	return k.opts
}
