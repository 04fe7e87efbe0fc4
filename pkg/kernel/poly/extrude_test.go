package poly

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"sort"
	"testing"

	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/nickblock/geoutils/pkg/geom"
	"github.com/nickblock/geoutils/pkg/kernel"
)

var testSquare = geom.Loop{{X: 0, Y: 0}, {X: 0, Y: 10}, {X: 10, Y: 10}, {X: 10, Y: 0}}

func newKernel(up kernel.UpAxis) *Kernel {
	return New(kernel.Options{Up: up})
}

func TestExtrudeSquare(t *testing.T) {
	m, err := newKernel(kernel.ZUp).Extrude(testSquare, 5, 0)
	if err != nil {
		t.Fatalf("Extrude failed: %v", err)
	}
	if m.FaceCount() != 6 {
		t.Errorf("got %d faces, want 6", m.FaceCount())
	}
	// 4 bottom ring + 4 top ring + 4 per side quad.
	if m.VertexCount() != 24 {
		t.Errorf("got %d vertices, want 24", m.VertexCount())
	}
	if m.UVs != nil {
		t.Error("UVs present with zero UV scale")
	}
	if err := m.Validate(); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	b := m.Bound()
	if b.Min != (v3.Vec{}) || b.Max != (v3.Vec{X: 10, Y: 10, Z: 5}) {
		t.Errorf("bound = %v", b)
	}
}

func TestExtrudeConvexCounts(t *testing.T) {
	hexagon := make(geom.Loop, 6)
	for i := range hexagon {
		a := float64(i) * math.Pi / 3
		hexagon[i] = geom.Point2{X: 4 * math.Cos(a), Y: 4 * math.Sin(a)}
	}
	for _, l := range []geom.Loop{testSquare, hexagon, {{X: 0}, {X: 3}, {Y: 3}}} {
		n := len(l)
		m, err := newKernel(kernel.YUp).Extrude(l, 7, 1)
		if err != nil {
			t.Fatalf("Extrude failed: %v", err)
		}
		if m.FaceCount() != n+2 {
			t.Errorf("n=%d: got %d faces, want %d", n, m.FaceCount(), n+2)
		}
		if m.VertexCount() != 2*n+4*n {
			t.Errorf("n=%d: got %d vertices, want %d", n, m.VertexCount(), 6*n)
		}
	}
}

func TestExtrudeWallNormalsOutward(t *testing.T) {
	for _, up := range []kernel.UpAxis{kernel.YUp, kernel.ZUp} {
		k := newKernel(up)
		m, err := k.Extrude(testSquare, 5, 0)
		if err != nil {
			t.Fatalf("Extrude failed: %v", err)
		}
		upN := k.opts.UpNormal()
		axis := k.opts.Position(testSquare.Centroid(), 0)
		for _, f := range m.Faces[2:] {
			n := m.Normals[f[0]]
			if math.Abs(n.Length()-1) > 1e-9 {
				t.Errorf("%v: normal %v is not unit length", up, n)
			}
			var center v3.Vec
			for _, idx := range f {
				center = center.Add(m.Vertices[idx])
			}
			center = center.MulScalar(0.25)
			radial := center.Sub(axis)
			radial = radial.Sub(upN.MulScalar(radial.Dot(upN)))
			if n.Dot(radial) <= 0 {
				t.Errorf("%v: wall normal %v points inward (radial %v)", up, n, radial)
			}
			fn := m.FaceNormal(f)
			if fn.Dot(n) <= 0 {
				t.Errorf("%v: face winding disagrees with normal %v", up, n)
			}
		}
		if fn := m.FaceNormal(m.Faces[0]); fn.Dot(upN) >= 0 {
			t.Errorf("%v: bottom cap faces up", up)
		}
		if fn := m.FaceNormal(m.Faces[1]); fn.Dot(upN) <= 0 {
			t.Errorf("%v: top cap faces down", up)
		}
	}
}

func TestExtrudeFlat(t *testing.T) {
	m, err := newKernel(kernel.ZUp).Extrude(testSquare, 0, 0)
	if err != nil {
		t.Fatalf("Extrude failed: %v", err)
	}
	if m.FaceCount() != 1 {
		t.Fatalf("got %d faces, want 1", m.FaceCount())
	}
	if len(m.Faces[0]) != 4 || m.VertexCount() != 4 {
		t.Errorf("got face of %d over %d vertices, want 4", len(m.Faces[0]), m.VertexCount())
	}
	if fn := m.FaceNormal(m.Faces[0]); fn.Z >= 0 {
		t.Errorf("flat cap normal %v should point down", fn)
	}
	for _, n := range m.Normals {
		if n != (v3.Vec{Z: -1}) {
			t.Errorf("vertex normal %v, want down", n)
		}
	}
}

func TestExtrudeIdempotent(t *testing.T) {
	k := New(kernel.Options{Up: kernel.YUp, UVScale: 3})
	a, err := k.Extrude(testSquare, 5, 2)
	if err != nil {
		t.Fatalf("Extrude failed: %v", err)
	}
	b, err := k.Extrude(testSquare, 5, 2)
	if err != nil {
		t.Fatalf("Extrude failed: %v", err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Error("repeated extrusion differs")
	}
}

func normalSet(m *kernel.Mesh) []string {
	seen := map[string]bool{}
	for _, n := range m.Normals {
		key := v3.Vec{X: math.Round(n.X*1e6) / 1e6, Y: math.Round(n.Y*1e6) / 1e6, Z: math.Round(n.Z*1e6) / 1e6}
		seen[fmtVec(key)] = true
	}
	var out []string
	for k := range seen {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func fmtVec(v v3.Vec) string {
	return fmt.Sprintf("%.6f,%.6f,%.6f", v.X+0, v.Y+0, v.Z+0)
}

func TestExtrudeWindingNormalized(t *testing.T) {
	k := newKernel(kernel.ZUp)
	a, err := k.Extrude(testSquare, 5, 0)
	if err != nil {
		t.Fatalf("Extrude failed: %v", err)
	}
	b, err := k.Extrude(testSquare.Reversed(), 5, 0)
	if err != nil {
		t.Fatalf("Extrude failed: %v", err)
	}
	na, nb := normalSet(a), normalSet(b)
	if !reflect.DeepEqual(na, nb) {
		t.Errorf("normal sets differ:\n%v\n%v", na, nb)
	}
	if len(na) != 6 {
		t.Errorf("got %d distinct normals, want 6", len(na))
	}
}

func TestExtrudeUVs(t *testing.T) {
	k := New(kernel.Options{Up: kernel.ZUp, UVScale: 2})
	m, err := k.Extrude(testSquare, 5, 7)
	if err != nil {
		t.Fatalf("Extrude failed: %v", err)
	}
	if len(m.UVs) != m.VertexCount() {
		t.Fatalf("got %d uvs for %d vertices", len(m.UVs), m.VertexCount())
	}
	for _, uv := range m.UVs {
		if uv.Z != 7 {
			t.Fatalf("uv %v does not carry the feature id", uv)
		}
	}
	// First wall: 10 wide, 5 tall, 2 units per tile.
	first := m.Faces[2]
	if got := m.UVs[first[0]]; got.X != 5 || got.Y != 3 {
		t.Errorf("wall corner uv = %v, want (5,3)", got)
	}
	if got := m.UVs[first[2]]; got.X != 0 || got.Y != 0 {
		t.Errorf("wall origin uv = %v, want (0,0)", got)
	}
}

func TestExtrudeNegativeHeight(t *testing.T) {
	m, err := newKernel(kernel.ZUp).Extrude(testSquare, -3, 0)
	if err != nil {
		t.Fatalf("Extrude failed: %v", err)
	}
	b := m.Bound()
	if b.Min.Z != -3 || b.Max.Z != 0 {
		t.Errorf("z range = [%v,%v], want [-3,0]", b.Min.Z, b.Max.Z)
	}
	if fn := m.FaceNormal(m.Faces[1]); fn.Z <= 0 {
		t.Error("upper cap should face up")
	}
}

func TestExtrudeConcave(t *testing.T) {
	l := geom.Loop{{X: 0, Y: 0}, {X: 2, Y: 0}, {X: 2, Y: 1}, {X: 1, Y: 1}, {X: 1, Y: 2}, {X: 0, Y: 2}}
	m, err := newKernel(kernel.ZUp).Extrude(l, 1, 0)
	if err != nil {
		t.Fatalf("Extrude failed: %v", err)
	}
	if m.FaceCount() != 8 {
		t.Errorf("got %d faces, want 8", m.FaceCount())
	}
	for _, f := range m.Faces[2:] {
		if m.FaceNormal(f).Dot(m.Normals[f[0]]) <= 0 {
			t.Errorf("face %v winding disagrees with its normal", f)
		}
	}
}

func TestExtrudeErrors(t *testing.T) {
	k := newKernel(kernel.ZUp)
	if _, err := k.Extrude(geom.Loop{{X: 0}, {X: 1}, {X: 0}}, 5, 0); !errors.Is(err, geom.ErrDegenerateGeometry) {
		t.Errorf("expected ErrDegenerateGeometry, got %v", err)
	}
	bad := geom.Loop{{X: 0}, {X: math.NaN()}, {X: 1, Y: 1}}
	if _, err := k.Extrude(bad, 5, 0); !errors.Is(err, geom.ErrDegenerateNormal) {
		t.Errorf("expected ErrDegenerateNormal, got %v", err)
	}
}
