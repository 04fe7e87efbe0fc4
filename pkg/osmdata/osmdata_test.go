package osmdata

import (
	"context"
	"math"
	"strings"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/osm"
)

func tags(kv ...string) osm.Tags {
	var t osm.Tags
	for i := 0; i+1 < len(kv); i += 2 {
		t = append(t, osm.Tag{Key: kv[i], Value: kv[i+1]})
	}
	return t
}

func TestTypeBits(t *testing.T) {
	if Closed != 1 || Building != 2 || Water != 4 || Highway != 8 || Location != 16 {
		t.Fatalf("unexpected type bits %d %d %d %d %d", Closed, Building, Water, Highway, Location)
	}
	if got := (Building | Closed).String(); got != "closed|building" {
		t.Errorf("String() = %q", got)
	}
	got, err := ParseTypes("building, highway")
	if err != nil || got != Building|Highway {
		t.Errorf("ParseTypes = %v, %v", got, err)
	}
	if _, err := ParseTypes("castle"); err == nil {
		t.Error("expected error for unknown type")
	}
}

func TestTypeOf(t *testing.T) {
	tests := []struct {
		name   string
		tags   osm.Tags
		closed bool
		want   Type
	}{
		{"building", tags("building", "yes"), true, Building | Closed},
		{"building part", tags("building:part", "yes"), true, Building | Closed},
		{"road", tags("highway", "residential"), false, Highway},
		{"lake", tags("natural", "water"), true, Water | Closed},
		{"river", tags("waterway", "river"), false, Water},
		{"park", tags("leisure", "park"), true, Closed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TypeOf(tt.tags, tt.closed); got != tt.want {
				t.Errorf("TypeOf = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHeightOf(t *testing.T) {
	opts := DefaultHeightOptions()
	tests := []struct {
		name string
		tags osm.Tags
		typ  Type
		want float64
	}{
		{"explicit", tags("height", "12.5"), Building, 12.5},
		{"explicit with unit", tags("height", "20 m"), Building, 20},
		{"levels", tags("building:levels", "4"), Building, 10},
		{"default", tags("building", "yes"), Building, 7.5},
		{"bad height falls back", tags("height", "tall", "building:levels", "2"), Building, 5},
		{"flat road", tags("highway", "primary"), Highway, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HeightOf(tt.tags, tt.typ, opts); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("HeightOf = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNameOf(t *testing.T) {
	if got := NameOf(tags("name", "Town Hall", "addr:housename", "x"), 1); got != "Town Hall" {
		t.Errorf("got %q", got)
	}
	if got := NameOf(tags("addr:housename", "Rose Cottage"), 1); got != "Rose Cottage" {
		t.Errorf("got %q", got)
	}
	if got := NameOf(tags("addr:housenumber", "12", "addr:street", "High St"), 1); got != "12 High St" {
		t.Errorf("got %q", got)
	}
	if got := NameOf(nil, 42); got != "42" {
		t.Errorf("got %q", got)
	}
}

const sample = `<?xml version="1.0" encoding="UTF-8"?>
<osm version="0.6">
  <node id="1" lat="51.5000" lon="-0.1000"/>
  <node id="2" lat="51.5000" lon="-0.0990"/>
  <node id="3" lat="51.5010" lon="-0.0990"/>
  <node id="4" lat="51.5010" lon="-0.1000"/>
  <node id="5" lat="51.5020" lon="-0.1000">
    <tag k="name" v="Clock Tower"/>
  </node>
  <way id="10">
    <nd ref="1"/><nd ref="2"/><nd ref="3"/><nd ref="4"/><nd ref="1"/>
    <tag k="building" v="yes"/>
    <tag k="building:levels" v="2"/>
    <tag k="name" v="Library"/>
  </way>
  <way id="11">
    <nd ref="1"/><nd ref="3"/><nd ref="5"/>
    <tag k="highway" v="footway"/>
  </way>
  <way id="12">
    <nd ref="1"/><nd ref="2"/><nd ref="3"/>
    <tag k="building" v="yes"/>
  </way>
  <way id="13">
    <nd ref="1"/><nd ref="99"/><nd ref="3"/>
    <tag k="highway" v="service"/>
  </way>
  <way id="14">
    <nd ref="1"/><nd ref="2"/>
    <tag k="barrier" v="fence"/>
  </way>
</osm>`

func TestDecodeXML(t *testing.T) {
	features, stats, err := Decode(context.Background(), strings.NewReader(sample), FormatXML, Options{Height: DefaultHeightOptions()})
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if stats.Nodes != 5 || stats.Ways != 5 {
		t.Errorf("stats = %+v", stats)
	}
	if stats.Invalid != 1 || stats.Unresolved != 1 {
		t.Errorf("expected one invalid and one unresolved way, got %+v", stats)
	}
	if len(features) != 3 {
		t.Fatalf("got %d features, want 3: %+v", len(features), features)
	}

	loc, lib, path := features[0], features[1], features[2]
	if loc.Type != Location || loc.Name != "Clock Tower" {
		t.Errorf("location = %+v", loc)
	}
	if lib.Type != Building|Closed || lib.Name != "Library" || lib.Height != 5 {
		t.Errorf("building = %+v", lib)
	}
	if len(lib.Coords) != 4 {
		t.Errorf("closed ring should drop its repeated node, got %d coords", len(lib.Coords))
	}
	if lib.Coords[0] != (orb.Point{-0.1, 51.5}) {
		t.Errorf("first coord = %v", lib.Coords[0])
	}
	if path.Type != Highway || path.Name != "11" || len(path.Coords) != 3 {
		t.Errorf("highway = %+v", path)
	}
}

func TestDecodeFiltersAndLimit(t *testing.T) {
	ctx := context.Background()
	features, _, err := Decode(ctx, strings.NewReader(sample), FormatXML, Options{
		Height: DefaultHeightOptions(),
		Filter: TypeFilter(Building),
	})
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if len(features) != 1 || features[0].ID != 10 {
		t.Fatalf("type filter kept %+v", features)
	}

	box := orb.Bound{Min: orb.Point{-0.1001, 51.5015}, Max: orb.Point{-0.0999, 51.5025}}
	features, _, err = Decode(ctx, strings.NewReader(sample), FormatXML, Options{Filter: BoundFilter(box)})
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if len(features) != 2 {
		t.Fatalf("bound filter kept %d features, want location and highway", len(features))
	}

	features, _, err = Decode(ctx, strings.NewReader(sample), FormatXML, Options{Limit: 1})
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if len(features) != 1 {
		t.Errorf("limit kept %d features", len(features))
	}
}

func TestFormatOf(t *testing.T) {
	for path, want := range map[string]Format{"a.osm.pbf": FormatPBF, "b.OSM": FormatXML, "c.xml": FormatXML} {
		got, err := FormatOf(path)
		if err != nil || got != want {
			t.Errorf("FormatOf(%q) = %v, %v", path, got, err)
		}
	}
	if _, err := FormatOf("d.geojson"); err == nil {
		t.Error("expected error")
	}
}
