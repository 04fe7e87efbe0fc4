// Package project maps geographic coordinates into the local planar frame
// the geometry engines work in.
package project

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/nickblock/geoutils/pkg/geom"
	"github.com/paulmach/orb"
	orbproject "github.com/paulmach/orb/project"
)

// Projector maps a lon/lat point to planar metres around a reference.
type Projector interface {
	Project(p orb.Point) geom.Point2
}

// Mercator is a spherical mercator projection shifted so the reference
// point lands on the origin.
type Mercator struct {
	origin orb.Point
}

// NewMercator returns a Mercator projection centred on ref.
func NewMercator(ref orb.Point) *Mercator {
	return &Mercator{origin: orbproject.WGS84.ToMercator(ref)}
}

func (m *Mercator) Project(p orb.Point) geom.Point2 {
	q := orbproject.WGS84.ToMercator(p)
	return geom.Point2{X: q[0] - m.origin[0], Y: q[1] - m.origin[1]}
}

// WGS84 ellipsoid.
const (
	semiMajor    = 6378137.0
	flattening   = 1 / 298.257223563
	eccentricity = flattening * (2 - flattening)
)

// ECEF converts geodetic degrees and height in metres to earth-centred
// earth-fixed coordinates.
func ECEF(lat, lon, h float64) (x, y, z float64) {
	phi := lat * math.Pi / 180
	lambda := lon * math.Pi / 180
	sinPhi := math.Sin(phi)
	n := semiMajor / math.Sqrt(1-eccentricity*sinPhi*sinPhi)
	x = (n + h) * math.Cos(phi) * math.Cos(lambda)
	y = (n + h) * math.Cos(phi) * math.Sin(lambda)
	z = (n*(1-eccentricity) + h) * sinPhi
	return x, y, z
}

// LocalNED projects onto the tangent plane at a reference point. Planar X is
// east and Y is north; down is dropped.
type LocalNED struct {
	ref        orb.Point
	x0, y0, z0 float64
	sinLat     float64
	cosLat     float64
	sinLon     float64
	cosLon     float64
}

// NewLocalNED returns a tangent plane projection at ref.
func NewLocalNED(ref orb.Point) *LocalNED {
	x0, y0, z0 := ECEF(ref.Lat(), ref.Lon(), 0)
	phi := ref.Lat() * math.Pi / 180
	lambda := ref.Lon() * math.Pi / 180
	return &LocalNED{
		ref: ref, x0: x0, y0: y0, z0: z0,
		sinLat: math.Sin(phi), cosLat: math.Cos(phi),
		sinLon: math.Sin(lambda), cosLon: math.Cos(lambda),
	}
}

// NED returns north, east, down offsets of p (at height h) from the
// reference.
func (l *LocalNED) NED(p orb.Point, h float64) (n, e, d float64) {
	x, y, z := ECEF(p.Lat(), p.Lon(), h)
	dx, dy, dz := x-l.x0, y-l.y0, z-l.z0
	n = -l.sinLat*l.cosLon*dx - l.sinLat*l.sinLon*dy + l.cosLat*dz
	e = -l.sinLon*dx + l.cosLon*dy
	d = -l.cosLat*l.cosLon*dx - l.cosLat*l.sinLon*dy - l.sinLat*dz
	return n, e, d
}

func (l *LocalNED) Project(p orb.Point) geom.Point2 {
	n, e, _ := l.NED(p, 0)
	return geom.Point2{X: e, Y: n}
}

// New returns the projector named by kind ("mercator" or "ned").
func New(kind string, ref orb.Point) (Projector, error) {
	switch strings.ToLower(kind) {
	case "", "mercator":
		return NewMercator(ref), nil
	case "ned", "local":
		return NewLocalNED(ref), nil
	default:
		return nil, fmt.Errorf("project: unknown projection %q", kind)
	}
}

// Loop projects a ring of geographic points.
func Loop(p Projector, pts []orb.Point) geom.Loop {
	out := make(geom.Loop, len(pts))
	for i, q := range pts {
		out[i] = p.Project(q)
	}
	return out
}

// BoundLoop returns the four corners of b, counter-clockwise, projected.
func BoundLoop(p Projector, b orb.Bound) geom.Loop {
	return Loop(p, []orb.Point{
		b.Min,
		{b.Max[0], b.Min[1]},
		b.Max,
		{b.Min[0], b.Max[1]},
	})
}

// ParseBound parses "minlon,minlat,maxlon,maxlat".
func ParseBound(s string) (orb.Bound, error) {
	v, err := parseFloats(s, 4)
	if err != nil {
		return orb.Bound{}, fmt.Errorf("project: extents %q: %w", s, err)
	}
	b := orb.Bound{Min: orb.Point{v[0], v[1]}, Max: orb.Point{v[0], v[1]}}
	return b.Extend(orb.Point{v[2], v[3]}), nil
}

// ParsePoint parses "lat,lon" into a lon/lat point.
func ParsePoint(s string) (orb.Point, error) {
	v, err := parseFloats(s, 2)
	if err != nil {
		return orb.Point{}, fmt.Errorf("project: point %q: %w", s, err)
	}
	if v[0] < -90 || v[0] > 90 {
		return orb.Point{}, fmt.Errorf("project: latitude %v out of range", v[0])
	}
	return orb.Point{v[1], v[0]}, nil
}

func parseFloats(s string, n int) ([]float64, error) {
	parts := strings.Split(s, ",")
	if len(parts) != n {
		return nil, fmt.Errorf("want %d comma separated values, got %d", n, len(parts))
	}
	out := make([]float64, n)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
