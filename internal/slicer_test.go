package internal

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlicerReadsOnce(t *testing.T) {
	calls := 0
	read := func(start, count []int) ([]float64, error) {
		calls++
		assert.Equal(t, []int{1}, start)
		assert.Equal(t, []int{3}, count)
		return []float64{1, 2, 3}, nil
	}
	sl := NewSlicer(read, []int{1}, []int{3}, 2, 1)
	assert.Equal(t, 3, sl.Len())
	for i := 0; i < 2; i++ {
		vals, err := sl.Values()
		require.NoError(t, err)
		assert.Equal(t, []float64{3, 5, 7}, vals)
	}
	assert.Equal(t, 1, calls)
}

func TestSlicerError(t *testing.T) {
	boom := errors.New("boom")
	sl := NewSlicer(func([]int, []int) ([]float64, error) { return nil, boom }, nil, nil, 1, 0)
	assert.Equal(t, 1, sl.Len())
	_, err := sl.Values()
	assert.ErrorIs(t, err, boom)
}

func TestScaleAdd(t *testing.T) {
	vals := []float64{1, 2}
	ScaleAdd(vals, 1, 0)
	assert.Equal(t, []float64{1, 2}, vals)
	ScaleAdd(vals, 10, 0)
	assert.Equal(t, []float64{10, 20}, vals)
	ScaleAdd(vals, 1, -5)
	assert.Equal(t, []float64{5, 15}, vals)
}

func TestClampFill(t *testing.T) {
	assert.Equal(t, 0.0, ClampFill(FillDouble))
	assert.Equal(t, 0.0, ClampFill(-FillDouble*2))
	assert.Equal(t, 0.0, ClampFill(math.NaN()))
	assert.Equal(t, 42.5, ClampFill(42.5))
}
