package memhost

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rulego/batchops/host"
)

func TestScopes(t *testing.T) {
	h := New()
	a := h.AddObject("A")
	b := h.AddObject("B")
	b.Selected = false
	b.Visible = false
	c := h.AddObject("C")
	c.InScene = false

	assert.Len(t, h.Objects(host.Selection), 1)
	assert.Len(t, h.Objects(host.Visible), 1)
	assert.Len(t, h.Objects(host.Scene), 2)
	assert.Len(t, h.Objects(host.File), 3)

	h.Select([]host.Object{b}, host.SelectAdd)
	assert.Equal(t, []string{"A", "B"}, h.Selected())
	h.Select([]host.Object{a}, host.SelectRemove)
	assert.Equal(t, []string{"B"}, h.Selected())
	h.Select(nil, host.SelectSet)
	assert.Empty(t, h.Selected())

	assert.Nil(t, h.Active())
	h.SetActive(a)
	assert.Equal(t, a, h.Active())
}

func TestModifierStack(t *testing.T) {
	h := New()
	o := h.AddObject("Cube")
	m1 := h.AddModifier(o, "SUBSURF", map[string]any{"levels": 2})
	m2 := h.AddModifier(o, "SUBSURF", nil)
	s := h.Stores(host.Modifier)

	assert.Equal(t, "Subsurf", m1.Name())
	assert.Equal(t, "Subsurf.001", m2.Name())
	assert.Equal(t, "SUBSURF", m2.IDName())
	assert.Equal(t, []string{"SUBSURF", "SUBSURF"}, s.IDNames(o))
	assert.Equal(t, 1, s.Users(m1))
	assert.False(t, s.Identity())
	assert.Nil(t, s.Library())

	other := h.AddObject("Other")
	assert.ErrorIs(t, s.Attach(other, m1), host.ErrNotApplicable)
	assert.ErrorIs(t, s.SetKeepAlive(m1, true), host.ErrNotApplicable)

	require.NoError(t, s.Delete(m1))
	assert.Equal(t, []string{"SUBSURF"}, s.IDNames(o))
	assert.Equal(t, 0, s.Users(m1))
}

func TestModifierApply(t *testing.T) {
	h := New()
	o := h.AddObject("Cube")
	m := h.AddModifier(o, "MIRROR", nil)
	d := h.AddModifier(o, "ARRAY", nil)
	d.Disabled = true
	s := h.Stores(host.Modifier)

	require.NoError(t, s.Apply(o, m, false))
	assert.Equal(t, []string{"MIRROR"}, o.Applied)
	assert.True(t, errors.Is(s.Apply(o, d, false), host.ErrDisabled))
	assert.Equal(t, []string{"ARRAY"}, s.IDNames(o))

	o.ApplyErr = errors.New("boom")
	d.Disabled = false
	assert.EqualError(t, s.Apply(o, d, true), "boom")
}

func TestMaterialSlots(t *testing.T) {
	h := New()
	o := h.AddObject("Cube")
	red := h.NewMaterial("Red", map[string]any{"color": "red"})
	blue := h.NewMaterial("Blue", nil)
	s := h.Stores(host.Material)

	h.AddEmptySlot(o)
	h.AssignMaterial(o, red)
	h.AssignMaterial(o, blue)
	h.AssignMaterial(o, red)
	assert.Equal(t, []string{"Red", "Blue", "Red"}, s.Slots(o))
	assert.Equal(t, 2, s.Users(red))

	require.NoError(t, s.Detach(o, blue))
	assert.Equal(t, []string{"Red", "", "Red"}, s.Slots(o))
	assert.Equal(t, 0, s.Users(blue))

	require.NoError(t, s.Replace(o, red, blue))
	assert.Equal(t, []string{"Blue", "", "Red"}, s.Slots(o))

	require.NoError(t, s.SetKeepAlive(red, true))
	assert.Equal(t, 2, s.Users(red))

	require.NoError(t, s.Delete(red))
	assert.Equal(t, []string{"Blue", "", ""}, s.Slots(o))
	_, ok := s.Lookup("Red")
	assert.False(t, ok)
}

func TestIdentityNames(t *testing.T) {
	h := New()
	a := h.NewMaterial("Metal", nil)
	b := h.NewMaterial("Metal", nil)
	assert.Equal(t, "Metal.001", b.Name())

	require.NoError(t, b.Set("name", "Metal"))
	assert.Equal(t, "Metal.001", b.Name())
	require.NoError(t, a.Set("name", "Steel"))
	require.NoError(t, b.Set("name", "Metal"))
	assert.Equal(t, "Metal", b.Name())
	assert.Equal(t, "Metal", b.IDName())

	b.Locked = true
	assert.ErrorIs(t, b.Set("roughness", 0.5), host.ErrNotApplicable)
	assert.Error(t, a.Set("name", 5))

	attrs := a.Attrs()
	attrs["name"] = "changed"
	assert.Equal(t, "Steel", a.Name())
}

func TestGroups(t *testing.T) {
	h := New()
	a := h.AddObject("A")
	b := h.AddObject("B")
	g := h.NewGroup("Props", nil)
	s := h.Stores(host.Group)

	h.Link(a, g)
	h.Link(b, g)
	assert.Equal(t, 2, s.Users(g))
	assert.Equal(t, []string{"Props"}, s.IDNames(a))

	require.NoError(t, s.Detach(a, g))
	assert.Empty(t, s.IDNames(a))
	assert.ErrorIs(t, s.Detach(a, g), host.ErrNotApplicable)

	created, err := s.New("Lights")
	require.NoError(t, err)
	require.NoError(t, s.Attach(a, created))
	assert.Len(t, s.Library(), 2)

	require.NoError(t, s.Delete(g))
	assert.Empty(t, s.IDNames(b))
	assert.Equal(t, 0, s.Users(g))
}

func TestKeepAliveAttr(t *testing.T) {
	h := New()
	m := h.NewMaterial("Red", nil)
	s := h.Stores(host.Material)

	v, ok := m.Get(host.KeepAliveAttr)
	require.True(t, ok)
	assert.Equal(t, false, v)

	require.NoError(t, m.Set(host.KeepAliveAttr, true))
	assert.True(t, s.KeepAlive(m))
	assert.Equal(t, 1, s.Users(m))
	assert.NotContains(t, m.Attrs(), host.KeepAliveAttr)
	assert.Error(t, m.Set(host.KeepAliveAttr, "yes"))
}
