// Package osmdata decodes OpenStreetMap extracts into typed features ready
// for geometry synthesis: building footprints with resolved heights, road
// centre lines, water areas and named locations.
package osmdata

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/osm"
	"github.com/samber/lo"
)

// Type is a bitmask classifying a feature.
type Type uint32

const (
	Undefined Type = 0
	Closed    Type = 1 << (iota - 1)
	Building
	Water
	Highway
	Location
)

type typeName struct {
	t    Type
	name string
}

var typeNames = []typeName{
	{Closed, "closed"},
	{Building, "building"},
	{Water, "water"},
	{Highway, "highway"},
	{Location, "location"},
}

func (t Type) String() string {
	if t == Undefined {
		return "undefined"
	}
	names := lo.FilterMap(typeNames, func(n typeName, _ int) (string, bool) {
		return n.name, t&n.t != 0
	})
	return strings.Join(names, "|")
}

// Has reports whether all bits of o are set in t.
func (t Type) Has(o Type) bool {
	return t&o == o && o != Undefined
}

// ParseTypes parses a comma separated list such as "building,highway".
func ParseTypes(s string) (Type, error) {
	var t Type
	for _, part := range strings.Split(s, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part == "" {
			continue
		}
		n, ok := lo.Find(typeNames, func(n typeName) bool {
			return n.name == part
		})
		if !ok {
			return Undefined, fmt.Errorf("osmdata: unknown feature type %q", part)
		}
		t |= n.t
	}
	return t, nil
}

// Feature is one decoded way or location node.
type Feature struct {
	ID     int64
	Name   string
	Type   Type
	Height float64
	Coords []orb.Point // lon, lat
}

// Bound returns the geographic bounds of the feature.
func (f *Feature) Bound() orb.Bound {
	if len(f.Coords) == 0 {
		return orb.Bound{}
	}
	return orb.MultiPoint(f.Coords).Bound()
}

// HeightOptions drives height resolution for buildings.
type HeightOptions struct {
	FloorHeight   float64
	DefaultFloors int
}

// DefaultHeightOptions matches common residential buildings.
func DefaultHeightOptions() HeightOptions {
	return HeightOptions{FloorHeight: 2.5, DefaultFloors: 3}
}

// TypeOf classifies a way from its tags. closed marks a ring whose first and
// last node coincide.
func TypeOf(tags osm.Tags, closed bool) Type {
	var t Type
	if closed {
		t |= Closed
	}
	if tags.HasTag("building") || tags.HasTag("building:part") {
		t |= Building
	}
	if tags.Find("natural") == "water" || tags.HasTag("waterway") || tags.HasTag("water") {
		t |= Water
	}
	if tags.HasTag("highway") {
		t |= Highway
	}
	return t
}

// IsClosed reports whether a way forms a ring: more than three nodes with
// matching end ids.
func IsClosed(w *osm.Way) bool {
	n := len(w.Nodes)
	return n > 3 && w.Nodes[0].ID == w.Nodes[n-1].ID
}

// HeightOf resolves a feature height from the height tag, then the level
// count, then the default floor count. Non-buildings without a height tag
// are flat.
func HeightOf(tags osm.Tags, t Type, opts HeightOptions) float64 {
	if h, ok := parseLength(tags.Find("height")); ok {
		return h
	}
	if !t.Has(Building) {
		return 0
	}
	if levels, err := strconv.ParseFloat(strings.TrimSpace(tags.Find("building:levels")), 64); err == nil && levels > 0 {
		return levels * opts.FloorHeight
	}
	return float64(opts.DefaultFloors) * opts.FloorHeight
}

func parseLength(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	s = strings.TrimSpace(strings.TrimSuffix(s, "m"))
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 {
		return 0, false
	}
	return v, true
}

// NameOf picks a display name: name, house name, house number and street,
// falling back to the element id.
func NameOf(tags osm.Tags, id int64) string {
	if n := tags.Find("name"); n != "" {
		return n
	}
	if n := tags.Find("addr:housename"); n != "" {
		return n
	}
	num, street := tags.Find("addr:housenumber"), tags.Find("addr:street")
	if num != "" && street != "" {
		return num + " " + street
	}
	return strconv.FormatInt(id, 10)
}
