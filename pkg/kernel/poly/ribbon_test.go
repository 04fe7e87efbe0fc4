package poly

import (
	"errors"
	"math"
	"testing"

	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/nickblock/geoutils/pkg/geom"
	"github.com/nickblock/geoutils/pkg/kernel"
)

func TestRibbonTurn(t *testing.T) {
	line := geom.Polyline{{X: 0, Y: 0}, {X: 0, Y: 10}, {X: 10, Y: 20}}
	m, err := newKernel(kernel.ZUp).Ribbon(line, 2.0, 0)
	if err != nil {
		t.Fatalf("Ribbon failed: %v", err)
	}
	if m.FaceCount() != 2 {
		t.Fatalf("got %d faces, want 2", m.FaceCount())
	}
	if m.VertexCount() != 6 {
		t.Errorf("got %d vertices, want 6", m.VertexCount())
	}
	if err := m.Validate(); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	for _, f := range m.Faces {
		if fn := m.FaceNormal(f); fn.Z <= 0 {
			t.Errorf("face %v is wound downwards", f)
		}
	}
	for _, n := range m.Normals {
		if n != (v3.Vec{Z: 1}) {
			t.Errorf("normal %v, want up", n)
		}
	}
	// The mitered joint sits on the bisector, both vertices at half width
	// from the offset lines.
	l, r := m.Vertices[2], m.Vertices[3]
	if math.Abs(l.X+1) > 1e-9 || math.Abs(r.X-1) > 1e-9 {
		t.Errorf("joint vertices %v %v not on the first segment's offset lines", l, r)
	}
}

func TestRibbonStraightJoint(t *testing.T) {
	line := geom.Polyline{{X: 0, Y: 0}, {X: 0, Y: 10}, {X: 0, Y: 20}}
	m, err := newKernel(kernel.ZUp).Ribbon(line, 2.0, 0)
	if err != nil {
		t.Fatalf("Ribbon failed: %v", err)
	}
	if m.FaceCount() != 2 {
		t.Fatalf("got %d faces, want 2", m.FaceCount())
	}
	l, r := m.Vertices[2], m.Vertices[3]
	if l != (v3.Vec{X: -1, Y: 10}) || r != (v3.Vec{X: 1, Y: 10}) {
		t.Errorf("shared edge = %v..%v, want (-1,10)..(1,10)", l, r)
	}
	mid := l.Add(r).MulScalar(0.5)
	if mid != (v3.Vec{Y: 10}) {
		t.Errorf("shared edge midpoint %v is off the path", mid)
	}
	for i, v := range m.Vertices {
		want := -1.0
		if i%2 == 1 {
			want = 1
		}
		if v.X != want {
			t.Errorf("vertex %d = %v, want x=%v", i, v, want)
		}
	}
	if got := m.UVs[4].Y; got != 10 {
		t.Errorf("along-path uv at end = %v, want 10", got)
	}
}

func TestRibbonUVFollowsPath(t *testing.T) {
	line := geom.Polyline{{X: 0, Y: 0}, {X: 6, Y: 0}, {X: 6, Y: 4}}
	m, err := newKernel(kernel.ZUp).Ribbon(line, 2, 0)
	if err != nil {
		t.Fatalf("Ribbon failed: %v", err)
	}
	want := []float64{0, 0, 3, 3, 5, 5}
	for i, uv := range m.UVs {
		if math.Abs(uv.Y-want[i]) > 1e-9 {
			t.Errorf("uv %d along path = %v, want %v", i, uv.Y, want[i])
		}
	}
}

func TestRibbonMiterLimit(t *testing.T) {
	line := geom.Polyline{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 0, Y: 0.5}}
	k := newKernel(kernel.ZUp)
	m, err := k.Ribbon(line, 2.0, 0)
	if err != nil {
		t.Fatalf("Ribbon failed: %v", err)
	}
	joint := v3.Vec{X: 10}
	for _, v := range m.Vertices[2:4] {
		if d := v.Sub(joint).Length(); d > defaultMiterLimit+1e-9 {
			t.Errorf("joint vertex %v is %v from the path", v, d)
		}
	}
}

func TestRibbonYUp(t *testing.T) {
	m, err := newKernel(kernel.YUp).Ribbon(geom.Polyline{{X: 0}, {X: 5}}, 1, 3)
	if err != nil {
		t.Fatalf("Ribbon failed: %v", err)
	}
	for _, v := range m.Vertices {
		if v.Y != 0 {
			t.Errorf("vertex %v off the ground plane", v)
		}
	}
	if fn := m.FaceNormal(m.Faces[0]); fn.Y <= 0 {
		t.Errorf("face normal %v should point up", fn)
	}
	for _, uv := range m.UVs {
		if uv.Z != 3 {
			t.Errorf("uv %v does not carry the feature id", uv)
		}
	}
}

func TestRibbonErrors(t *testing.T) {
	k := newKernel(kernel.ZUp)
	_, err := k.Ribbon(geom.Polyline{{X: 1}}, 2, 0)
	if !errors.Is(err, geom.ErrInsufficientPoints) {
		t.Errorf("expected ErrInsufficientPoints, got %v", err)
	}
	_, err = k.Ribbon(geom.Polyline{{X: 1}, {X: 1}}, 2, 0)
	if !errors.Is(err, geom.ErrDegenerateVertex) {
		t.Errorf("expected ErrDegenerateVertex, got %v", err)
	}
	_, err = k.Ribbon(geom.Polyline{{X: 0}, {X: 1}}, 0, 0)
	if !errors.Is(err, geom.ErrDegenerateGeometry) {
		t.Errorf("expected ErrDegenerateGeometry for zero width, got %v", err)
	}
}

func TestRibbonOutline(t *testing.T) {
	l, err := newKernel(kernel.ZUp).RibbonOutline(geom.Polyline{{X: 0}, {X: 10}}, 2)
	if err != nil {
		t.Fatalf("RibbonOutline failed: %v", err)
	}
	if len(l) != 4 {
		t.Fatalf("got %d vertices, want 4", len(l))
	}
	if a := l.SignedArea(); math.Abs(a-20) > 1e-9 {
		t.Errorf("outline area = %v, want 20", a)
	}
}
