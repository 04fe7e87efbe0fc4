package osmdata

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"
	"github.com/paulmach/osm/osmxml"
)

// Format is an input encoding.
type Format int

const (
	FormatPBF Format = iota
	FormatXML
)

// FormatOf picks the format from a file name.
func FormatOf(path string) (Format, error) {
	lower := strings.ToLower(path)
	switch {
	case strings.HasSuffix(lower, ".pbf"):
		return FormatPBF, nil
	case strings.HasSuffix(lower, ".osm"), strings.HasSuffix(lower, ".xml"):
		return FormatXML, nil
	default:
		return FormatPBF, fmt.Errorf("osmdata: unknown input format for %q", filepath.Base(path))
	}
}

// Options configures decoding.
type Options struct {
	Height HeightOptions
	Filter Filter
	// Limit stops decoding after this many accepted features. Zero is
	// unlimited.
	Limit int
	// Procs is the number of PBF decoding goroutines; zero uses GOMAXPROCS.
	Procs int
}

// Stats counts what decoding saw and dropped.
type Stats struct {
	Nodes      int
	Ways       int
	Accepted   int
	Unresolved int // ways referencing nodes not in the extract
	Invalid    int // buildings that are not closed rings
}

// Open decodes the file at path, choosing the format by extension.
func Open(ctx context.Context, path string, opts Options) ([]Feature, Stats, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, Stats{}, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, Stats{}, fmt.Errorf("osmdata: %w", err)
	}
	defer f.Close()
	return Decode(ctx, f, format, opts)
}

// Decode reads an extract in a single pass. Nodes must precede the ways
// referencing them, as in standard extracts.
func Decode(ctx context.Context, r io.Reader, format Format, opts Options) ([]Feature, Stats, error) {
	var scanner osm.Scanner
	switch format {
	case FormatXML:
		scanner = osmxml.New(ctx, r)
	default:
		procs := opts.Procs
		if procs <= 0 {
			procs = runtime.GOMAXPROCS(0)
		}
		s := osmpbf.New(ctx, r, procs)
		s.SkipRelations = true
		scanner = s
	}
	defer scanner.Close()

	d := decoder{
		opts: opts,
		locs: make(map[osm.NodeID]orb.Point),
	}
	for scanner.Scan() {
		switch o := scanner.Object().(type) {
		case *osm.Node:
			d.node(o)
		case *osm.Way:
			d.way(o)
		}
		if opts.Limit > 0 && len(d.features) >= opts.Limit {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, d.stats, fmt.Errorf("osmdata: scan: %w", err)
	}
	d.stats.Accepted = len(d.features)
	return d.features, d.stats, nil
}

type decoder struct {
	opts     Options
	locs     map[osm.NodeID]orb.Point
	features []Feature
	stats    Stats
}

func (d *decoder) accept(f Feature) {
	if d.opts.Filter != nil && !d.opts.Filter.Accept(&f) {
		return
	}
	d.features = append(d.features, f)
}

func (d *decoder) node(n *osm.Node) {
	d.stats.Nodes++
	p := orb.Point{n.Lon, n.Lat}
	d.locs[n.ID] = p
	if n.Tags.Find("name") == "" {
		return
	}
	d.accept(Feature{
		ID:     int64(n.ID),
		Name:   NameOf(n.Tags, int64(n.ID)),
		Type:   Location,
		Coords: []orb.Point{p},
	})
}

func (d *decoder) way(w *osm.Way) {
	d.stats.Ways++
	closed := IsClosed(w)
	t := TypeOf(w.Tags, closed)
	if t&^Closed == Undefined {
		return
	}
	if t.Has(Building) && !closed {
		d.stats.Invalid++
		return
	}
	coords := make([]orb.Point, 0, len(w.Nodes))
	for _, wn := range w.Nodes {
		p, ok := d.locs[wn.ID]
		if !ok {
			if wn.Lat == 0 && wn.Lon == 0 {
				d.stats.Unresolved++
				return
			}
			p = orb.Point{wn.Lon, wn.Lat}
		}
		coords = append(coords, p)
	}
	if closed {
		coords = coords[:len(coords)-1]
	}
	d.accept(Feature{
		ID:     int64(w.ID),
		Name:   NameOf(w.Tags, int64(w.ID)),
		Type:   t,
		Height: HeightOf(w.Tags, t, d.opts.Height),
		Coords: coords,
	})
}
