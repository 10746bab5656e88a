package aggregator

import (
	"fmt"

	"github.com/rulego/batchops/utils/cast"
)

// VectorAggregator routes component i of every sample to its own axis
// Aggregator. All axes share one kind and query set.
type VectorAggregator struct {
	axes []*Aggregator
}

// NewVector creates a VectorAggregator with size axes.
func NewVector(kind Kind, size int, queries []Query, opts ...Option) (*VectorAggregator, error) {
	if size <= 0 {
		return nil, fmt.Errorf("vector size must be positive, got %d", size)
	}
	v := &VectorAggregator{axes: make([]*Aggregator, size)}
	for i := range v.axes {
		a, err := New(kind, queries, opts...)
		if err != nil {
			return nil, err
		}
		v.axes[i] = a
	}
	return v, nil
}

// Size returns the number of axes
func (v *VectorAggregator) Size() int {
	return len(v.axes)
}

// Axis returns the aggregator of axis i
func (v *VectorAggregator) Axis(i int) *Aggregator {
	return v.axes[i]
}

// Add accepts any slice or array with at least Size components. The sample is
// validated before any axis is touched so a bad component leaves all axes
// unchanged.
func (v *VectorAggregator) Add(value any) error {
	items, err := cast.Components(value)
	if err != nil {
		return err
	}
	if len(items) < len(v.axes) {
		return fmt.Errorf("vector sample has %d components, want %d", len(items), len(v.axes))
	}
	samples := make([]sample, len(v.axes))
	for i, a := range v.axes {
		s, err := a.coerceConverted(items[i])
		if err != nil {
			return fmt.Errorf("axis %d: %w", i, err)
		}
		samples[i] = s
	}
	for i, a := range v.axes {
		a.addSample(samples[i])
	}
	return nil
}

// Count returns the number of samples added
func (v *VectorAggregator) Count() int {
	return v.axes[0].Count()
}

// Same reports per axis whether all samples agreed
func (v *VectorAggregator) Same() []bool {
	out := make([]bool, len(v.axes))
	for i, a := range v.axes {
		out[i] = a.Same()
	}
	return out
}

func (v *VectorAggregator) Mean() []float64 {
	return v.floats((*Aggregator).Mean)
}

func (v *VectorAggregator) Min() []float64 {
	return v.floats((*Aggregator).Min)
}

func (v *VectorAggregator) Max() []float64 {
	return v.floats((*Aggregator).Max)
}

func (v *VectorAggregator) StdDev() []float64 {
	return v.floats((*Aggregator).StdDev)
}

func (v *VectorAggregator) Median() []float64 {
	return v.floats((*Aggregator).Median)
}

func (v *VectorAggregator) floats(get func(*Aggregator) float64) []float64 {
	out := make([]float64, len(v.axes))
	for i, a := range v.axes {
		out[i] = get(a)
	}
	return out
}

// Result returns q for every axis.
func (v *VectorAggregator) Result(q Query) ([]any, error) {
	out := make([]any, len(v.axes))
	for i, a := range v.axes {
		r, err := a.Result(q)
		if err != nil {
			return nil, err
		}
		out[i] = r
	}
	return out, nil
}
