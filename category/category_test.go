package category

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rulego/batchops/aggregator"
	"github.com/rulego/batchops/condition"
	"github.com/rulego/batchops/host"
	"github.com/rulego/batchops/host/memhost"
	"github.com/rulego/batchops/logger"
	"github.com/rulego/batchops/operations"
	"github.com/rulego/batchops/types"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time {
	return c.t
}

func (c *fakeClock) advance(d time.Duration) {
	c.t = c.t.Add(d)
}

var materialSchema = MustSchema(
	Attribute{Name: "roughness", Kind: aggregator.Number, Default: 0.5},
	Attribute{Name: "diffuse_color", Kind: aggregator.Number, Size: 3},
	Attribute{Name: host.KeepAliveAttr, Kind: aggregator.Bool},
)

var groupSchema = MustSchema(
	Attribute{Name: host.KeepAliveAttr, Kind: aggregator.Bool},
)

type scene struct {
	h                   *memhost.Host
	cube, sphere, plane *memhost.Object
	red, blue, green    *memhost.Entity
}

func newScene() *scene {
	h := memhost.New()
	s := &scene{
		h:      h,
		cube:   h.AddObject("Cube"),
		sphere: h.AddObject("Sphere"),
		plane:  h.AddObject("Plane"),
		red:    h.NewMaterial("Red", map[string]any{"roughness": 0.2, "diffuse_color": []float64{1, 0, 0}}),
		blue:   h.NewMaterial("Blue", map[string]any{"roughness": 0.6, "diffuse_color": []float64{0, 0, 1}}),
		green:  h.NewMaterial("Green", map[string]any{"roughness": 0.2, "diffuse_color": []float64{0, 1, 0}}),
	}
	h.AssignMaterial(s.cube, s.red)
	h.AssignMaterial(s.cube, s.blue)
	h.AssignMaterial(s.sphere, s.red)
	h.AssignMaterial(s.plane, s.green)
	h.SetActive(s.cube)
	return s
}

func newCategory(t *testing.T, h host.Host, kind host.Kind, schema *Schema, opts ...Option) *Category {
	t.Helper()
	opts = append([]Option{WithLogger(logger.NewDiscardLogger())}, opts...)
	c, err := New(h, kind, schema, opts...)
	require.NoError(t, err)
	return c
}

func rowIDs(c *Category) []string {
	var ids []string
	for _, r := range c.Rows() {
		ids = append(ids, r.IDName)
	}
	return ids
}

func TestNewCategory(t *testing.T) {
	_, err := New(memhost.New(), host.Material, nil)
	assert.ErrorIs(t, err, ErrInvalidSchema)

	_, err = New(memhost.New(), host.Kind(7), groupSchema, WithLogger(logger.NewDiscardLogger()))
	assert.ErrorIs(t, err, operations.ErrUnknownKind)

	c := newCategory(t, memhost.New(), host.Group, groupSchema)
	assert.Equal(t, host.Group, c.Kind())
	assert.Empty(t, c.Rows())
	assert.Equal(t, host.Selection, c.Scope())
	assert.NotNil(t, c.Editor())
}

func TestRefreshRows(t *testing.T) {
	s := newScene()
	c := newCategory(t, s.h, host.Material, materialSchema)
	require.True(t, c.Refresh(false))

	assert.Equal(t, []string{"", "Blue", "Green", "Red"}, rowIDs(c))
	assert.Equal(t, []string{"Blue", "Green", "Red"}, c.IDNames())

	all, ok := c.Row("")
	require.True(t, ok)
	assert.True(t, all.All())
	assert.Equal(t, 4, all.Count)
	assert.Equal(t, "…e…", all.Name)
	rough, ok := all.Value("roughness")
	require.True(t, ok)
	assert.False(t, rough.Same)
	assert.InDelta(t, 0.3, rough.Value, 1e-9)

	red, ok := c.Row("Red")
	require.True(t, ok)
	assert.Equal(t, "Red", red.Name)
	assert.Equal(t, 2, red.Count)
	rough, _ = red.Value("roughness")
	assert.Equal(t, Value{Value: 0.2, Same: true}, rough)
	color, _ := red.Value("diffuse_color")
	assert.True(t, color.Same)
	assert.Equal(t, []any{1.0, 0.0, 0.0}, color.Value)
	keep, _ := red.Value(host.KeepAliveAttr)
	assert.Equal(t, Value{Value: false, Same: true}, keep)

	_, ok = red.Value("missing")
	assert.False(t, ok)

	info, ok := c.Info("Red")
	require.True(t, ok)
	assert.Equal(t, 2, info.Count)
	assert.Zero(t, info.Skipped)
}

func TestRefreshThrottle(t *testing.T) {
	s := newScene()
	clock := &fakeClock{t: time.Unix(1000, 0)}
	c := newCategory(t, s.h, host.Material, materialSchema, WithClock(clock.now))

	assert.True(t, c.Refresh(false))
	assert.False(t, c.Refresh(false), "unchanged signature within the interval")
	assert.Equal(t, 1, c.Scans())

	clock.advance(200 * time.Millisecond)
	assert.False(t, c.Refresh(false))
	clock.advance(400 * time.Millisecond)
	assert.True(t, c.Refresh(false), "interval elapsed")
	assert.Equal(t, 2, c.Scans())

	assert.True(t, c.Refresh(true))

	c.TagRefresh()
	assert.True(t, c.NeedsRefresh())
	assert.True(t, c.Refresh(false))
	assert.False(t, c.NeedsRefresh())

	s.plane.Selected = false
	assert.True(t, c.Refresh(false), "selection count changed")
	assert.Equal(t, []string{"", "Blue", "Red"}, rowIDs(c))

	s.h.SetActive(s.sphere)
	assert.True(t, c.Refresh(false), "active object changed")
	assert.Equal(t, 6, c.Scans())
}

func TestRefreshWithoutAutoRefresh(t *testing.T) {
	s := newScene()
	clock := &fakeClock{t: time.Unix(1000, 0)}
	prefs := types.ManualRefreshPreferences()
	c := newCategory(t, s.h, host.Material, materialSchema, WithClock(clock.now), WithPreferences(&prefs))

	assert.True(t, c.Refresh(false))
	clock.advance(time.Hour)
	assert.False(t, c.Refresh(false))

	prefs.AutoRefresh = true
	prefs.Materials.AutoRefresh = false
	assert.False(t, c.Refresh(false), "category option disables auto-refresh too")

	prefs.Materials.AutoRefresh = true
	assert.True(t, c.Refresh(false))
}

func TestExclusionsSurviveStableRefresh(t *testing.T) {
	h := memhost.New()
	obj := h.AddObject("Empty")
	groups := h.Stores(host.Group)
	a, b, cg := h.NewGroup("A", nil), h.NewGroup("B", nil), h.NewGroup("C", nil)
	h.Link(obj, a)
	h.Link(obj, b)
	h.Link(obj, cg)

	c := newCategory(t, h, host.Group, groupSchema)
	c.Refresh(true)
	c.SetExcluded("B", true)

	c.Refresh(true)
	assert.True(t, c.Excluded("B"))
	assert.Equal(t, []string{"B"}, c.ExcludedIDNames())

	require.NoError(t, groups.Detach(obj, b))
	c.Refresh(true)
	assert.Equal(t, []string{"A", "C"}, c.IDNames())
	assert.False(t, c.Excluded("B"))

	c.SetExcluded("A", true)
	h.Link(obj, b)
	c.Refresh(true)
	assert.Equal(t, []string{"A", "B", "C"}, c.IDNames())
	assert.Empty(t, c.ExcludedIDNames(), "idname set changed, exclusions reset to the default")
}

func TestDefaultSelectStateOff(t *testing.T) {
	s := newScene()
	prefs := types.DefaultPreferences()
	prefs.DefaultSelectState = false
	c := newCategory(t, s.h, host.Material, materialSchema, WithPreferences(&prefs))
	c.Refresh(true)

	assert.Equal(t, []string{"Blue", "Green", "Red"}, c.ExcludedIDNames())
	assert.Empty(t, c.Resolve(""))
	assert.Equal(t, []string{"Red"}, c.Resolve("Red"))
}

func TestResolveAndToggleAll(t *testing.T) {
	s := newScene()
	c := newCategory(t, s.h, host.Material, materialSchema)
	c.Refresh(true)

	assert.Equal(t, []string{"Blue", "Green", "Red"}, c.Resolve(""))
	c.SetExcluded("Green", true)
	c.SetExcluded("", true)
	assert.Equal(t, []string{"Blue", "Red"}, c.Resolve(""))

	c.ToggleAll()
	assert.Equal(t, []string{"Blue", "Green", "Red"}, c.Resolve(""))
	c.ToggleAll()
	assert.Empty(t, c.Resolve(""))

	c.SetExcluded("Red", false)
	assert.Equal(t, []string{"Red"}, c.Resolve(""))
}

func TestFilter(t *testing.T) {
	s := newScene()
	cond, err := condition.NewExprCondition("roughness > 0.5")
	require.NoError(t, err)
	c := newCategory(t, s.h, host.Material, materialSchema, WithFilter(cond))
	c.Refresh(true)
	assert.Equal(t, []string{"", "Blue"}, rowIDs(c))

	c.SetFilter(nil)
	assert.True(t, c.NeedsRefresh())
	c.Refresh(false)
	assert.Equal(t, []string{"", "Blue", "Green", "Red"}, rowIDs(c))
}

func TestActionsPushUndo(t *testing.T) {
	s := newScene()
	c := newCategory(t, s.h, host.Material, materialSchema)
	c.Refresh(true)

	r, err := c.Assign(operations.AssignAdd, "", []string{"Green"}, false, false)
	require.NoError(t, err)
	assert.Equal(t, 2, r.Changed)
	assert.Equal(t, []string{"Batch assign materials: Green"}, s.h.Undo)
	assert.True(t, c.NeedsRefresh())
	assert.Equal(t, []string{"Red", "Blue", "Green"}, s.h.Stores(host.Material).IDNames(s.cube))

	c.Refresh(false)
	_, err = c.Remove("Blue", false)
	require.NoError(t, err)
	assert.Equal(t, "Batch remove materials: Blue", s.h.Undo[1])
	assert.NotContains(t, s.h.Stores(host.Material).IDNames(s.cube), "Blue")

	r, err = c.Purge(false, "")
	require.NoError(t, err)
	assert.Equal(t, 1, r.Changed)
	_, ok := s.h.Stores(host.Material).Lookup("Blue")
	assert.False(t, ok)

	_, err = c.MergeIdentical()
	require.NoError(t, err)
	assert.Len(t, s.h.Undo, 4)

	_, err = c.Assign(operations.AssignMode("BOGUS"), "", nil, false, false)
	assert.Error(t, err)
}

func TestCopyPaste(t *testing.T) {
	s := newScene()
	c := newCategory(t, s.h, host.Material, materialSchema)
	c.Refresh(true)

	assert.Equal(t, []string{"Red", "Blue"}, c.Copy())
	c.SetExcluded("Blue", true)
	assert.Equal(t, []string{"Red"}, c.Copy())

	_, err := c.Paste()
	require.NoError(t, err)
	store := s.h.Stores(host.Material)
	assert.Equal(t, []string{"Red"}, store.Slots(s.plane))
	assert.Equal(t, []string{"Red"}, store.Slots(s.sphere))

	_, err = c.PasteMode(operations.PasteOr)
	require.NoError(t, err)
	assert.Equal(t, []string{"Red", "Red"}, store.Slots(s.plane))
}

func TestSelectAndSetAttr(t *testing.T) {
	s := newScene()
	c := newCategory(t, s.h, host.Material, materialSchema)
	c.Refresh(true)

	picked := c.Select("Red", host.SelectSet)
	assert.Len(t, picked, 2)
	assert.Equal(t, []string{"Cube", "Sphere"}, s.h.Selected())

	s.plane.Selected = false
	s.cube.Selected = false
	c.Options().SynchronizeSelection = true
	c.Select("Green", host.SelectAdd)
	assert.Equal(t, []string{"Sphere", "Plane"}, s.h.Selected())

	c.Options().SynchronizeSelection = false
	c.Refresh(true)
	r, err := c.SetAttr("", "roughness", 0.9)
	require.NoError(t, err)
	assert.Equal(t, 2, r.Changed)
	v, _ := s.red.Get("roughness")
	assert.Equal(t, 0.9, v)
	v, _ = s.blue.Get("roughness")
	assert.Equal(t, 0.6, v, "blue is not on a selected object")
}

func TestUnsupportedActions(t *testing.T) {
	s := newScene()
	mats := newCategory(t, s.h, host.Material, materialSchema)
	_, err := mats.Apply("Red", false)
	assert.ErrorIs(t, err, ErrUnsupported)

	mods := newCategory(t, s.h, host.Modifier, MustSchema())
	_, err = mods.Purge(true, "")
	assert.ErrorIs(t, err, ErrUnsupported)
	_, err = mods.MergeIdentical()
	assert.ErrorIs(t, err, ErrUnsupported)
	assert.Empty(t, s.h.Undo)
}

func TestApplyModifiers(t *testing.T) {
	h := memhost.New()
	a := h.AddObject("A")
	b := h.AddObject("B")
	h.AddModifier(a, "SUBSURF", map[string]any{"show_viewport": true})
	disabled := h.AddModifier(b, "SUBSURF", map[string]any{"show_viewport": false})
	disabled.Disabled = true
	h.AddModifier(b, "MIRROR", nil)

	schema := MustSchema(Attribute{Name: "show_viewport", Kind: aggregator.Bool, Default: true})
	c := newCategory(t, h, host.Modifier, schema)
	c.Refresh(true)
	assert.Equal(t, []string{"", "MIRROR", "SUBSURF"}, rowIDs(c))
	sub, _ := c.Row("SUBSURF")
	assert.Equal(t, "Subsurf", sub.Name)
	vis, _ := sub.Value("show_viewport")
	assert.False(t, vis.Same)

	mirror, _ := c.Row("MIRROR")
	vis, _ = mirror.Value("show_viewport")
	assert.Equal(t, Value{Value: true, Same: true}, vis, "missing attribute falls back to the default")

	r, err := c.Apply("SUBSURF", false)
	require.NoError(t, err)
	assert.Equal(t, 1, r.Skipped)
	assert.Equal(t, []string{"SUBSURF"}, a.Applied)
	assert.Empty(t, h.Stores(host.Modifier).IDNames(a))
	assert.Equal(t, []string{"MIRROR"}, h.Stores(host.Modifier).IDNames(b), "disabled modifier removed")
}

func TestTable(t *testing.T) {
	s := newScene()
	c := newCategory(t, s.h, host.Material, materialSchema)
	c.Refresh(true)
	c.SetExcluded("Green", true)

	var buf bytes.Buffer
	c.Table(&buf)
	out := buf.String()
	assert.Contains(t, out, "(all)")
	assert.Contains(t, out, "| -    | Green")
	assert.Contains(t, out, "| +    | Red")
	assert.Contains(t, out, "(4 rows)")
}

func TestScopeOptions(t *testing.T) {
	s := newScene()
	c := newCategory(t, s.h, host.Material, materialSchema)
	s.plane.Selected = false

	c.Options().SearchIn = "scene"
	assert.Equal(t, host.Scene, c.Scope())
	c.Options().PrioritizeSelection = true
	assert.Equal(t, host.Selection, c.Scope())

	s.cube.Selected = false
	s.sphere.Selected = false
	assert.Equal(t, host.Scene, c.Scope(), "empty selection falls back to the configured scope")

	c.Options().SearchIn = "nowhere"
	assert.Equal(t, host.Selection, c.Scope())
}
