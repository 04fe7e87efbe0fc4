package osmdata

import "github.com/paulmach/orb"

// Filter decides whether a decoded feature is kept.
type Filter interface {
	Accept(f *Feature) bool
}

// FilterFunc adapts a function to Filter.
type FilterFunc func(f *Feature) bool

func (fn FilterFunc) Accept(f *Feature) bool { return fn(f) }

// TypeFilter keeps features sharing at least one bit with mask, ignoring
// the Closed bit.
func TypeFilter(mask Type) Filter {
	mask &^= Closed
	return FilterFunc(func(f *Feature) bool {
		return f.Type&mask != 0
	})
}

// BoundFilter keeps features with at least one point inside b.
func BoundFilter(b orb.Bound) Filter {
	return FilterFunc(func(f *Feature) bool {
		for _, p := range f.Coords {
			if b.Contains(p) {
				return true
			}
		}
		return false
	})
}

// All keeps features every filter accepts. Nil filters are ignored.
func All(filters ...Filter) Filter {
	return FilterFunc(func(f *Feature) bool {
		for _, flt := range filters {
			if flt != nil && !flt.Accept(f) {
				return false
			}
		}
		return true
	})
}
