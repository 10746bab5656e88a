package rename

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rulego/batchops/aggregator"
)

func TestMake(t *testing.T) {
	assert.Equal(t, "Cube.00…", Make("Cube.00", true, false))
	assert.Equal(t, "…_Arm", Make("_Arm", false, true))
	assert.Equal(t, "…Metal…", Make("Metal", false, false))
	assert.Equal(t, "Lamp", Make("Lamp", true, true))
	assert.Equal(t, Wildcard, Make("", false, false))
}

func TestFromAggregator(t *testing.T) {
	names := func(ns ...string) *aggregator.Aggregator {
		a, err := aggregator.New(aggregator.Sequence, Queries)
		require.NoError(t, err)
		for _, n := range ns {
			require.NoError(t, a.Add(n))
		}
		return a
	}

	p, err := FromAggregator(names("Cube.001", "Cube.002", "Cube.003"))
	require.NoError(t, err)
	assert.Equal(t, "Cube.00…", p)

	p, err = FromAggregator(names("Lamp"))
	require.NoError(t, err)
	assert.Equal(t, "Lamp", p)
	assert.False(t, IsPattern(p))

	plain, err := aggregator.New(aggregator.Sequence, []aggregator.Query{aggregator.Same})
	require.NoError(t, err)
	_, err = FromAggregator(plain)
	assert.ErrorIs(t, err, aggregator.ErrQueryNotRequested)
}

func TestApply(t *testing.T) {
	tests := []struct {
		name, src, dst, want string
		matched              bool
	}{
		{"Cube.001", "Cube.00…", "Box_…", "Box_1", true},
		{"Cube.012", "Cube.0…", "Cube.0…", "Cube.012", true},
		{"Left_Arm", "…_Arm", "…_Leg", "Left_Leg", true},
		{"xMetaly", "…Metal…", "…Steel…", "xSteely", true},
		{"xMetaly", "…Metal…", "Steel", "Steel", true},
		{"Cube.001", "Cube.00…", "…-…", "1-", true},
		{"Sphere", "Cube.00…", "Box_…", "Sphere", false},
		{"a+b(1)", "a+b(…)", "c[…]", "c[1]", true},
		{"Lamp", "Lamp", "Light", "Light", true},
	}
	for _, tt := range tests {
		t.Run(tt.name+"/"+tt.src, func(t *testing.T) {
			p, err := Compile(tt.src)
			require.NoError(t, err)
			got, ok := p.Apply(tt.name, tt.dst)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.matched, ok)
		})
	}
}

func TestCompileCache(t *testing.T) {
	p1, err := Compile("Mat…")
	require.NoError(t, err)
	p2, err := Compile("Mat…")
	require.NoError(t, err)
	assert.Same(t, p1, p2)
	assert.Equal(t, "Mat…", p1.String())

	out, err := Apply("Mat.7", "Mat…", "Tex…")
	require.NoError(t, err)
	assert.Equal(t, "Tex.7", out)
}
