package aggregator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVectorFanOut(t *testing.T) {
	v, err := NewVector(Number, 3, []Query{Mean, Same, Min, Max})
	require.NoError(t, err)
	require.NoError(t, v.Add([]float64{1, 5, 0}))
	require.NoError(t, v.Add([3]float64{3, 5, 2}))
	require.NoError(t, v.Add([]any{2, "5", 1}))

	assert.Equal(t, 3, v.Count())
	assert.Equal(t, 3, v.Size())
	assert.Equal(t, []float64{2, 5, 1}, v.Mean())
	assert.Equal(t, []bool{false, true, false}, v.Same())
	assert.Equal(t, []float64{1, 5, 0}, v.Min())
	assert.Equal(t, []float64{3, 5, 2}, v.Max())

	means, err := v.Result(Mean)
	require.NoError(t, err)
	assert.Equal(t, []any{2.0, 5.0, 1.0}, means)
}

func TestVectorRejectsBadSamples(t *testing.T) {
	v, err := NewVector(Number, 2, []Query{Sum})
	require.NoError(t, err)

	assert.Error(t, v.Add([]float64{1}))
	assert.Error(t, v.Add(3.0))
	assert.Error(t, v.Add([]any{1, "nope"}))
	assert.Equal(t, 0, v.Count())
	assert.Equal(t, 0, v.Axis(0).Count())

	_, err = NewVector(Number, 0, []Query{Sum})
	assert.Error(t, err)
	_, err = NewVector(Number, 2, []Query{Subseq})
	assert.ErrorIs(t, err, ErrUnsupportedQuery)
}

func TestVectorConvertsOncePerComponent(t *testing.T) {
	calls := 0
	double := func(v any) (any, error) {
		calls++
		f, ok := v.(float64)
		if !ok {
			return v, nil
		}
		return f * 2, nil
	}
	v, err := NewVector(Number, 3, []Query{Sum}, WithConvert(double))
	require.NoError(t, err)
	require.NoError(t, v.Add([]float64{1, 2, 3}))
	assert.Equal(t, 3, calls)
	assert.Equal(t, 2.0, v.Axis(0).Sum())
	assert.Equal(t, 6.0, v.Axis(2).Sum())
}
