package exposition_test

import (
	"math"
	"testing"

	"github.com/jt828/promtext/pkg/apperror"
	"github.com/jt828/promtext/pkg/exposition"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinearBucketBounds(t *testing.T) {
	t.Run("steps by width from start", func(t *testing.T) {
		bounds := exposition.LinearBucketBounds(0.1, 0.1, 5)

		require.Len(t, bounds, 5)
		assert.InDeltaSlice(t, []float64{0.1, 0.2, 0.3, 0.4, 0.5}, bounds, 1e-9)
		assert.NoError(t, exposition.ValidateBoundaries(bounds))
	})

	t.Run("zero count is empty", func(t *testing.T) {
		assert.Empty(t, exposition.LinearBucketBounds(1, 1, 0))
	})

	t.Run("negative count is empty", func(t *testing.T) {
		assert.Empty(t, exposition.LinearBucketBounds(1, 1, -3))
	})
}

func TestExponentialBucketBounds(t *testing.T) {
	t.Run("multiplies by factor", func(t *testing.T) {
		bounds := exposition.ExponentialBucketBounds(1, 2, 5)

		assert.Equal(t, []float64{1, 2, 4, 8, 16}, bounds)
		assert.NoError(t, exposition.ValidateBoundaries(bounds))
	})

	t.Run("zero count is empty", func(t *testing.T) {
		assert.Empty(t, exposition.ExponentialBucketBounds(1, 2, 0))
	})
}

func TestValidateBoundaries(t *testing.T) {
	tests := []struct {
		name    string
		bounds  []float64
		wantErr error
	}{
		{name: "ascending", bounds: []float64{0.1, 0.5, 1}},
		{name: "empty", bounds: nil},
		{name: "single", bounds: []float64{1}},
		{name: "negative values ascending", bounds: []float64{-5, -1, 0}},
		{name: "equal neighbours", bounds: []float64{1, 1}, wantErr: exposition.ErrUnorderedBuckets},
		{name: "descending", bounds: []float64{2, 1}, wantErr: exposition.ErrUnorderedBuckets},
		{name: "out of order later", bounds: []float64{0.1, 0.5, 0.3}, wantErr: exposition.ErrUnorderedBuckets},
		{name: "NaN", bounds: []float64{0.1, math.NaN()}, wantErr: exposition.ErrNonFiniteBucket},
		{name: "positive infinity", bounds: []float64{1, math.Inf(1)}, wantErr: exposition.ErrNonFiniteBucket},
		{name: "negative infinity", bounds: []float64{math.Inf(-1), 1}, wantErr: exposition.ErrNonFiniteBucket},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := exposition.ValidateBoundaries(tt.bounds)

			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
			assert.ErrorIs(t, err, apperror.ErrInvalidArgument)
		})
	}
}

func TestNewBuckets(t *testing.T) {
	t.Run("copies the boundaries", func(t *testing.T) {
		bounds := []float64{1, 2, 3}
		b, err := exposition.NewBuckets(bounds...)
		require.NoError(t, err)

		bounds[0] = 100
		got := b.Bounds()
		got[1] = 200

		assert.Equal(t, []float64{1, 2, 3}, b.Bounds())
		assert.Equal(t, 3, b.Len())
	})

	t.Run("rejects unordered boundaries", func(t *testing.T) {
		b, err := exposition.NewBuckets(3, 2, 1)

		assert.Nil(t, b)
		assert.ErrorIs(t, err, exposition.ErrUnorderedBuckets)
	})

	t.Run("builders validate", func(t *testing.T) {
		_, err := exposition.LinearBuckets(1, 0, 3)
		assert.ErrorIs(t, err, exposition.ErrUnorderedBuckets)

		_, err = exposition.ExponentialBuckets(1, 1, 3)
		assert.ErrorIs(t, err, exposition.ErrUnorderedBuckets)

		b, err := exposition.ExponentialBuckets(0.005, 10, 4)
		require.NoError(t, err)
		assert.Equal(t, 4, b.Len())
	})

	t.Run("must panics on invalid boundaries", func(t *testing.T) {
		assert.Panics(t, func() { exposition.MustBuckets(1, 1) })
		assert.NotPanics(t, func() { exposition.MustBuckets() })
	})
}
