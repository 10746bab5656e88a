package category

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rulego/batchops/aggregator"
	"github.com/rulego/batchops/host/memhost"
)

func TestNewSchema(t *testing.T) {
	tests := []struct {
		name  string
		attrs []Attribute
	}{
		{"empty name", []Attribute{{Kind: aggregator.Number}}},
		{"reserved", []Attribute{{Name: "count", Kind: aggregator.Number}}},
		{"duplicate", []Attribute{{Name: "a", Kind: aggregator.Bool}, {Name: "a", Kind: aggregator.Number}}},
		{"negative size", []Attribute{{Name: "a", Kind: aggregator.Number, Size: -1}}},
		{"unknown kind", []Attribute{{Name: "a", Kind: aggregator.Kind(99)}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSchema(tt.attrs...)
			assert.ErrorIs(t, err, ErrInvalidSchema)
		})
	}

	assert.Panics(t, func() { MustSchema(Attribute{}) })
}

func TestRowType(t *testing.T) {
	s := MustSchema(
		Attribute{Name: "levels", Kind: aggregator.Number},
		Attribute{Name: "show_viewport", Kind: aggregator.Bool},
	)
	a, ok := s.Attribute("levels")
	require.True(t, ok)
	assert.Equal(t, aggregator.Number, a.Kind)
	_, ok = s.Attribute("nope")
	assert.False(t, ok)
	assert.Len(t, s.Attributes(), 2)

	rt := s.RowType()
	assert.Equal(t, []string{"idname", "name", "count", "levels", "show_viewport"}, rt.Columns())

	row := rt.New("SUBSURF")
	assert.False(t, row.All())
	assert.Len(t, row.Values(), 2)
	assert.Equal(t, map[string]any{
		"idname": "SUBSURF", "name": "", "count": 0, "levels": nil, "show_viewport": nil,
	}, row.Map())
	assert.True(t, rt.New("").All())
}

func TestAggregateInfo(t *testing.T) {
	h := memhost.New()
	s := MustSchema(
		Attribute{Name: "roughness", Kind: aggregator.Number},
		Attribute{Name: "tags", Kind: aggregator.Enum},
		Attribute{Name: "blend", Kind: aggregator.Sequence},
		Attribute{Name: "color", Kind: aggregator.Number, Size: 3},
	)
	info := NewAggregateInfo(s, "")
	info.Add(h.NewMaterial("Cube.001", map[string]any{
		"roughness": 0.5, "tags": []string{"metal"}, "blend": "OPAQUE", "color": []float64{1, 1, 1},
	}))
	info.Add(h.NewMaterial("Cube.002", map[string]any{
		"roughness": "1.5", "tags": []string{"metal", "old"}, "blend": "OPAQUE", "color": "white",
	}))
	info.Add(h.NewMaterial("Cube.003", map[string]any{
		"roughness": []int{1}, "blend": "CLIP",
	}))

	assert.Equal(t, 3, info.Count)
	assert.Equal(t, 2, info.Skipped, "unconvertible roughness and color")
	assert.Equal(t, "Cube.00…", info.Name())

	row := s.RowType().New("")
	info.FillRow(row)
	assert.Equal(t, "Cube.00…", row.Name)
	assert.Equal(t, 3, row.Count)

	v, _ := row.Value("roughness")
	assert.Equal(t, Value{Value: 1.0, Same: false}, v)
	v, _ = row.Value("tags")
	assert.Equal(t, Value{Value: []string{"metal", "old"}, Same: false}, v)
	v, _ = row.Value("blend")
	assert.Equal(t, Value{Value: "OPAQUE", Same: false}, v)
	v, _ = row.Value("color")
	assert.Equal(t, Value{Value: []any{1.0, 1.0, 1.0}, Same: true}, v)
}

func TestAggregateInfoEmpty(t *testing.T) {
	s := MustSchema(
		Attribute{Name: "roughness", Kind: aggregator.Number},
		Attribute{Name: "color", Kind: aggregator.Number, Size: 3},
	)
	info := NewAggregateInfo(s, "Red")
	assert.Equal(t, "", info.Name())
	row := s.RowType().New("Red")
	info.FillRow(row)
	assert.Equal(t, []Value{{Same: true}, {Same: true}}, row.Values())
}
