// Package s2cell wraps the S2 cell helpers the converters use to tile
// extracts: parsing cell ids from tokens or tile file names, cell geometry
// and a feature filter.
package s2cell

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/golang/geo/s2"
	"github.com/nickblock/geoutils/pkg/osmdata"
	"github.com/paulmach/orb"
)

// TilePrefix starts the base name of every per-cell extract, as in
// "s2_4876b.osm.pbf".
const TilePrefix = "s2_"

// Parse accepts a hex token ("4876b") or a decimal cell id.
func Parse(s string) (s2.CellID, error) {
	if id, err := strconv.ParseUint(s, 10, 64); err == nil && len(s) > 16 {
		if c := s2.CellID(id); c.IsValid() {
			return c, nil
		}
	}
	if c := s2.CellIDFromToken(s); c.IsValid() {
		return c, nil
	}
	return 0, fmt.Errorf("s2cell: %q is not a cell id", s)
}

// FromFileName parses the cell of a tile extract. The base name must be
// TilePrefix followed by the cell id in full 16 digit hex, a token or a
// decimal id; anything after the first dot is ignored.
func FromFileName(path string) (s2.CellID, error) {
	base := filepath.Base(path)
	if i := strings.IndexByte(base, '.'); i > 0 {
		base = base[:i]
	}
	rest, ok := strings.CutPrefix(base, TilePrefix)
	if !ok {
		return 0, fmt.Errorf("s2cell: %q is not a tile name", path)
	}
	if len(rest) == 16 {
		if v, err := strconv.ParseUint(rest, 16, 64); err == nil && s2.CellID(v).IsValid() {
			return s2.CellID(v), nil
		}
	}
	id, err := Parse(rest)
	if err != nil {
		return 0, fmt.Errorf("s2cell: %q is not a tile name: %w", path, err)
	}
	return id, nil
}

func toOrb(ll s2.LatLng) orb.Point {
	return orb.Point{ll.Lng.Degrees(), ll.Lat.Degrees()}
}

// Center returns the cell centre as lon/lat.
func Center(id s2.CellID) orb.Point {
	return toOrb(id.LatLng())
}

// Corners returns the four cell vertices as lon/lat, counter-clockwise.
func Corners(id s2.CellID) []orb.Point {
	c := s2.CellFromCellID(id)
	out := make([]orb.Point, 4)
	for i := range out {
		out[i] = toOrb(s2.LatLngFromPoint(c.Vertex(i)))
	}
	return out
}

// Bound returns the lon/lat bounding box of the cell.
func Bound(id s2.CellID) orb.Bound {
	r := s2.CellFromCellID(id).RectBound()
	return orb.Bound{
		Min: orb.Point{r.Lo().Lng.Degrees(), r.Lo().Lat.Degrees()},
		Max: orb.Point{r.Hi().Lng.Degrees(), r.Hi().Lat.Degrees()},
	}
}

// Contains reports whether a lon/lat point lies in the cell.
func Contains(id s2.CellID, p orb.Point) bool {
	return s2.CellFromCellID(id).ContainsPoint(s2.PointFromLatLng(s2.LatLngFromDegrees(p.Lat(), p.Lon())))
}

// Filter keeps features with at least one point inside the cell.
func Filter(id s2.CellID) osmdata.Filter {
	cell := s2.CellFromCellID(id)
	return osmdata.FilterFunc(func(f *osmdata.Feature) bool {
		for _, p := range f.Coords {
			if cell.ContainsPoint(s2.PointFromLatLng(s2.LatLngFromDegrees(p.Lat(), p.Lon()))) {
				return true
			}
		}
		return false
	})
}

// Describe returns a human-readable summary of the cell.
func Describe(id s2.CellID) string {
	var b strings.Builder
	c := Center(id)
	fmt.Fprintf(&b, "cell %s (id %d) level %d\n", id.ToToken(), uint64(id), id.Level())
	fmt.Fprintf(&b, "center %.7f,%.7f\n", c.Lat(), c.Lon())
	for i, p := range Corners(id) {
		fmt.Fprintf(&b, "corner %d %.7f,%.7f\n", i, p.Lat(), p.Lon())
	}
	return b.String()
}
