package project

import (
	"math"
	"testing"

	"github.com/paulmach/orb"
)

var london = orb.Point{-0.1276, 51.5072}

func TestProjectorsAtReference(t *testing.T) {
	for _, kind := range []string{"mercator", "ned"} {
		p, err := New(kind, london)
		if err != nil {
			t.Fatalf("New(%q) failed: %v", kind, err)
		}
		got := p.Project(london)
		if math.Abs(got.X) > 1e-6 || math.Abs(got.Y) > 1e-6 {
			t.Errorf("%s: reference projects to %v, want origin", kind, got)
		}
	}
	if _, err := New("utm", london); err == nil {
		t.Error("expected error for unknown projection")
	}
}

func TestLocalNEDDistances(t *testing.T) {
	p := NewLocalNED(london)
	north := p.Project(orb.Point{london.Lon(), london.Lat() + 0.001})
	if math.Abs(north.Y-111.25) > 0.5 || math.Abs(north.X) > 0.01 {
		t.Errorf("0.001 deg north = %v, want about (0, 111.25)", north)
	}
	east := p.Project(orb.Point{london.Lon() + 0.001, london.Lat()})
	if math.Abs(east.X-69.5) > 0.5 || east.Y > 0.01 || east.Y < -0.01 {
		t.Errorf("0.001 deg east = %v, want about (69.5, 0)", east)
	}
}

func TestMercatorOrientation(t *testing.T) {
	p := NewMercator(london)
	ne := p.Project(orb.Point{london.Lon() + 0.01, london.Lat() + 0.01})
	if ne.X <= 0 || ne.Y <= 0 {
		t.Errorf("north-east point projected to %v", ne)
	}
}

func TestBoundLoop(t *testing.T) {
	b, err := ParseBound("-0.13,51.50,-0.12,51.51")
	if err != nil {
		t.Fatalf("ParseBound failed: %v", err)
	}
	l := BoundLoop(NewMercator(b.Center()), b)
	if len(l) != 4 {
		t.Fatalf("got %d corners", len(l))
	}
	if l.SignedArea() <= 0 {
		t.Error("bound loop should be counter-clockwise")
	}
}

func TestParse(t *testing.T) {
	b, err := ParseBound("1,2,-3,4")
	if err != nil {
		t.Fatalf("ParseBound failed: %v", err)
	}
	if b.Min != (orb.Point{-3, 2}) || b.Max != (orb.Point{1, 4}) {
		t.Errorf("bound = %v", b)
	}
	if _, err := ParseBound("1,2,3"); err == nil {
		t.Error("expected error for three values")
	}
	p, err := ParsePoint("51.5, -0.1")
	if err != nil || p != (orb.Point{-0.1, 51.5}) {
		t.Errorf("ParsePoint = %v, %v", p, err)
	}
	if _, err := ParsePoint("91,0"); err == nil {
		t.Error("expected latitude range error")
	}
}
