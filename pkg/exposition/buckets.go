package exposition

import (
	"fmt"
	"math"
	"slices"
)

// Buckets is a validated, immutable histogram bucket schema.
// A *Buckets can only be built through the validating constructors, so every
// histogram sharing one never re-checks its boundaries.
type Buckets struct {
	bounds []float64
}

// LinearBucketBounds returns count boundaries start, start+width, start+2*width, ...
func LinearBucketBounds(start, width float64, count int) []float64 {
	bounds := make([]float64, max(count, 0))
	for i := range bounds {
		bounds[i] = start + width*float64(i)
	}
	return bounds
}

// ExponentialBucketBounds returns count boundaries start, start*factor, start*factor^2, ...
func ExponentialBucketBounds(start, factor float64, count int) []float64 {
	bounds := make([]float64, max(count, 0))
	current := start
	for i := range bounds {
		bounds[i] = current
		current *= factor
	}
	return bounds
}

// ValidateBoundaries reports whether bounds is strictly ascending and finite.
func ValidateBoundaries(bounds []float64) error {
	for i, b := range bounds {
		if math.IsNaN(b) || math.IsInf(b, 0) {
			return fmt.Errorf("bucket %d is %v: %w", i, b, ErrNonFiniteBucket)
		}
		if i > 0 && bounds[i-1] >= b {
			return fmt.Errorf("bucket %d (%v) is not greater than bucket %d (%v): %w", i, b, i-1, bounds[i-1], ErrUnorderedBuckets)
		}
	}
	return nil
}

func NewBuckets(bounds ...float64) (*Buckets, error) {
	if err := ValidateBoundaries(bounds); err != nil {
		return nil, err
	}
	return &Buckets{bounds: slices.Clone(bounds)}, nil
}

// MustBuckets is like NewBuckets but panics on invalid boundaries.
// Meant for package-level schema declarations.
func MustBuckets(bounds ...float64) *Buckets {
	b, err := NewBuckets(bounds...)
	if err != nil {
		panic(fmt.Sprintf("exposition: %v", err))
	}
	return b
}

func LinearBuckets(start, width float64, count int) (*Buckets, error) {
	return NewBuckets(LinearBucketBounds(start, width, count)...)
}

func ExponentialBuckets(start, factor float64, count int) (*Buckets, error) {
	return NewBuckets(ExponentialBucketBounds(start, factor, count)...)
}

func (b *Buckets) Len() int {
	return len(b.bounds)
}

// Bounds returns a copy of the boundaries.
func (b *Buckets) Bounds() []float64 {
	return slices.Clone(b.bounds)
}

// index returns the first bucket whose boundary is >= v, or -1.
func (b *Buckets) index(v float64) int {
	for i, bound := range b.bounds {
		if v <= bound {
			return i
		}
	}
	return -1
}
