package geom

import "fmt"

// Hole is a loop to be cut out of a ground mesh, tagged with its bounds so
// overlap candidates can be found without a boolean operation.
type Hole struct {
	Loop  Loop
	Bound BoundingBox
	Name  string
}

// HoleSet collects ground holes in insertion order.
type HoleSet struct {
	holes []Hole
}

// Add normalizes l and appends it. Loops that cannot be normalized are
// rejected with ErrHoleSkipped and not added.
func (h *HoleSet) Add(name string, l Loop) error {
	n, err := l.Normalize()
	if err != nil {
		return fmt.Errorf("geom: hole %q: %w: %w", name, ErrHoleSkipped, err)
	}
	h.holes = append(h.holes, Hole{Loop: n, Bound: n.Bound(), Name: name})
	return nil
}

// Len returns the number of holes.
func (h *HoleSet) Len() int {
	if h == nil {
		return 0
	}
	return len(h.holes)
}

// Holes returns the holes in insertion order.
func (h *HoleSet) Holes() []Hole {
	if h == nil {
		return nil
	}
	return h.holes
}
