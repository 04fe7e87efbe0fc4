package geom

import (
	"errors"
	"math"
	"testing"
)

func square(size float64) Loop {
	return Loop{{X: 0, Y: 0}, {X: size, Y: 0}, {X: size, Y: size}, {X: 0, Y: size}}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name    string
		in      Loop
		want    int
		wantErr bool
	}{
		{"open square", square(1), 4, false},
		{"closed square", append(square(1), Point2{}), 4, false},
		{"repeated vertex", Loop{{X: 0}, {X: 1}, {X: 1}, {X: 1, Y: 1}}, 3, false},
		{"two points", Loop{{X: 0}, {X: 1}, {X: 0}}, 0, true},
		{"empty", nil, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.in.Normalize()
			if tt.wantErr {
				if !errors.Is(err, ErrDegenerateGeometry) {
					t.Fatalf("expected ErrDegenerateGeometry, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Normalize failed: %v", err)
			}
			if len(got) != tt.want {
				t.Errorf("got %d vertices, want %d", len(got), tt.want)
			}
		})
	}
}

func TestNormalizeDoesNotMutate(t *testing.T) {
	in := append(square(1), Point2{})
	if _, err := in.Normalize(); err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if len(in) != 5 {
		t.Fatalf("input was modified: %v", in)
	}
}

func TestTurningAngle(t *testing.T) {
	ccw := square(2)
	if got := ccw.TurningAngle(); math.Abs(got-2*math.Pi) > 1e-9 {
		t.Errorf("ccw turning angle = %v, want 2pi", got)
	}
	cw := ccw.Reversed()
	if got := cw.TurningAngle(); math.Abs(got+2*math.Pi) > 1e-9 {
		t.Errorf("cw turning angle = %v, want -2pi", got)
	}
	if !ccw.IsCCW() || cw.IsCCW() {
		t.Error("IsCCW disagrees with turning angle")
	}
}

func TestCanonical(t *testing.T) {
	cw := square(3).Reversed()
	c := cw.Canonical()
	if !c.IsCCW() {
		t.Fatal("canonical loop is not counter-clockwise")
	}
	if c.SignedArea() != 9 {
		t.Errorf("area = %v, want 9", c.SignedArea())
	}
	if cw.IsCCW() {
		t.Error("Canonical modified its receiver")
	}
}

func TestCentroidAndContains(t *testing.T) {
	l := square(4)
	c := l.Centroid()
	if c.X != 2 || c.Y != 2 {
		t.Errorf("centroid = %v, want (2,2)", c)
	}
	if !l.Contains(Point2{X: 1, Y: 1}) {
		t.Error("expected (1,1) inside")
	}
	if l.Contains(Point2{X: 5, Y: 1}) {
		t.Error("expected (5,1) outside")
	}
}

func TestSelfIntersects(t *testing.T) {
	if square(1).SelfIntersects() {
		t.Error("square reported as self-intersecting")
	}
	bowtie := Loop{{X: 0, Y: 0}, {X: 1, Y: 1}, {X: 1, Y: 0}, {X: 0, Y: 1}}
	if !bowtie.SelfIntersects() {
		t.Error("bowtie not reported as self-intersecting")
	}
}

func TestLineIntersection(t *testing.T) {
	p, ok := LineIntersection(Point2{X: 0, Y: 0}, Point2{X: 1, Y: 0}, Point2{X: 5, Y: -1}, Point2{X: 5, Y: 1})
	if !ok {
		t.Fatal("expected intersection")
	}
	if p.X != 5 || p.Y != 0 {
		t.Errorf("intersection = %v, want (5,0)", p)
	}
	if _, ok := LineIntersection(Point2{}, Point2{X: 1}, Point2{Y: 1}, Point2{X: 2, Y: 1}); ok {
		t.Error("parallel lines reported as intersecting")
	}
}

func TestPolyline(t *testing.T) {
	if err := (Polyline{{X: 1}}).Validate(); !errors.Is(err, ErrInsufficientPoints) {
		t.Errorf("expected ErrInsufficientPoints, got %v", err)
	}
	if !errors.Is(ErrInsufficientPoints, ErrDegenerateGeometry) {
		t.Error("ErrInsufficientPoints should wrap ErrDegenerateGeometry")
	}
	pl := Polyline{{X: 0}, {X: 3}, {X: 3, Y: 4}}
	if pl.Length() != 7 {
		t.Errorf("length = %v, want 7", pl.Length())
	}
}

func TestClassify(t *testing.T) {
	if Classify(nil) != SeverityNone {
		t.Error("nil should be SeverityNone")
	}
	if Classify(ErrDegenerateNormal) != SeverityRecoverable {
		t.Error("ErrDegenerateNormal should be recoverable")
	}
	if Classify(errors.New("disk full")) != SeverityFatal {
		t.Error("unknown errors should be fatal")
	}
	var hs HoleSet
	err := hs.Add("tiny", Loop{{X: 0}, {X: 1}})
	if Kind(err) != "hole skipped" {
		t.Errorf("kind = %q, want hole skipped", Kind(err))
	}
	if hs.Len() != 0 {
		t.Error("degenerate hole was added")
	}
}
