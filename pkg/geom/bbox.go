package geom

import (
	"math"

	"github.com/deadsy/sdfx/sdf"
)

// BoundingBox is an axis-aligned min/max accumulator. The zero value is not
// empty; use NewBoundingBox.
type BoundingBox struct {
	Min, Max Point3
}

// NewBoundingBox returns an empty box (min=+Inf, max=-Inf).
func NewBoundingBox() BoundingBox {
	inf := math.Inf(1)
	return BoundingBox{
		Min: Point3{X: inf, Y: inf, Z: inf},
		Max: Point3{X: -inf, Y: -inf, Z: -inf},
	}
}

// IsEmpty reports whether nothing has been added to the box.
func (b BoundingBox) IsEmpty() bool {
	return b.Min.X > b.Max.X || b.Min.Y > b.Max.Y || b.Min.Z > b.Max.Z
}

// Add grows the box to include p.
func (b *BoundingBox) Add(p Point3) {
	b.Min = b.Min.Min(p)
	b.Max = b.Max.Max(p)
}

// Union grows the box to include o.
func (b *BoundingBox) Union(o BoundingBox) {
	if o.IsEmpty() {
		return
	}
	b.Add(o.Min)
	b.Add(o.Max)
}

// Size returns the extent along each axis, zero for an empty box.
func (b BoundingBox) Size() Point3 {
	if b.IsEmpty() {
		return Point3{}
	}
	return b.Max.Sub(b.Min)
}

// Center returns the midpoint of the box.
func (b BoundingBox) Center() Point3 {
	return b.Min.Add(b.Max).MulScalar(0.5)
}

// Fraction maps p into [0,1] along each axis of the box. Flat axes map to 0.
func (b BoundingBox) Fraction(p Point3) Point3 {
	s := b.Size()
	frac := func(v, lo, size float64) float64 {
		if size == 0 {
			return 0
		}
		return (v - lo) / size
	}
	return Point3{
		X: frac(p.X, b.Min.X, s.X),
		Y: frac(p.Y, b.Min.Y, s.Y),
		Z: frac(p.Z, b.Min.Z, s.Z),
	}
}

// Overlaps reports whether the two boxes share any point. Touching boxes
// overlap.
func (b BoundingBox) Overlaps(o BoundingBox) bool {
	if b.IsEmpty() || o.IsEmpty() {
		return false
	}
	return b.Max.X >= o.Min.X && o.Max.X >= b.Min.X &&
		b.Max.Y >= o.Min.Y && o.Max.Y >= b.Min.Y &&
		b.Max.Z >= o.Min.Z && o.Max.Z >= b.Min.Z
}

// Transform returns the box enclosing the eight transformed corners.
func (b BoundingBox) Transform(m sdf.M44) BoundingBox {
	out := NewBoundingBox()
	if b.IsEmpty() {
		return out
	}
	for i := 0; i < 8; i++ {
		c := b.Min
		if i&1 != 0 {
			c.X = b.Max.X
		}
		if i&2 != 0 {
			c.Y = b.Max.Y
		}
		if i&4 != 0 {
			c.Z = b.Max.Z
		}
		out.Add(m.MulPosition(c))
	}
	return out
}
