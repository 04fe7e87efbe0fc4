// Package kernel defines the geometry engine interface used by the OSM
// converters. Implementations (poly, sdfx) turn planar loops and polylines
// into Mesh buffers behind this interface, so the batch driver can swap
// backends without changing the rest of the system.
package kernel

import (
	"fmt"
	"math"
	"strings"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/nickblock/geoutils/pkg/geom"
)

// Kernel is the abstract geometry engine.
// Implementations must be safe for concurrent use; every call owns its input
// and output buffers.
type Kernel interface {
	// Extrude sweeps a closed loop from the ground plane up to height.
	// A zero height yields a single downward-facing cap.
	Extrude(loop geom.Loop, height float64, featureID int) (*Mesh, error)

	// Ribbon turns an open polyline into a flat strip of the given width.
	Ribbon(line geom.Polyline, width float64, featureID int) (*Mesh, error)

	// Ground covers boundary minus holes. Holes that cannot be used are
	// reported in the returned warnings and skipped.
	Ground(boundary geom.Loop, holes *geom.HoleSet) (*Mesh, []error, error)
}

// UpAxis selects the scene's vertical axis.
type UpAxis int

const (
	YUp UpAxis = iota
	ZUp
)

func (a UpAxis) String() string {
	switch a {
	case YUp:
		return "y"
	case ZUp:
		return "z"
	default:
		return fmt.Sprintf("UpAxis(%d)", int(a))
	}
}

// ParseUpAxis accepts "y" or "z", case-insensitively.
func ParseUpAxis(s string) (UpAxis, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "y", "yup", "y-up":
		return YUp, nil
	case "z", "zup", "z-up":
		return ZUp, nil
	default:
		return YUp, fmt.Errorf("kernel: unknown up axis %q", s)
	}
}

// Options is the read-only configuration every engine call consults.
type Options struct {
	Up UpAxis
	// UVScale is world units per texture tile. Zero disables UVs.
	UVScale float64
}

// Position maps a planar point at elevation h into the scene frame.
// Z-up keeps (x, y, h); Y-up rotates the planar frame about X so that
// planar north points towards -Z.
func (o Options) Position(p geom.Point2, h float64) v3.Vec {
	if o.Up == ZUp {
		return v3.Vec{X: p.X, Y: p.Y, Z: h}
	}
	return v3.Vec{X: p.X, Y: h, Z: -p.Y}
}

// Direction maps a horizontal planar direction into the scene frame.
func (o Options) Direction(d geom.Point2) v3.Vec {
	return o.Position(d, 0)
}

// UpNormal returns the scene's up direction.
func (o Options) UpNormal() v3.Vec {
	if o.Up == ZUp {
		return v3.Vec{Z: 1}
	}
	return v3.Vec{Y: 1}
}

// Matrix returns the transform from the planar Z-up frame into the scene
// frame, consistent with Position.
func (o Options) Matrix() sdf.M44 {
	if o.Up == ZUp {
		return sdf.Identity3d()
	}
	return sdf.RotateX(-math.Pi / 2)
}

// UVEnabled reports whether engines should emit texture coordinates.
func (o Options) UVEnabled() bool {
	return o.UVScale != 0
}
