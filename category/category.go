/*
 * Copyright 2025 The RuleGo Authors.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package category

import (
	"fmt"
	"io"
	"sort"
	"time"

	"golang.org/x/exp/maps"

	"github.com/rulego/batchops/condition"
	"github.com/rulego/batchops/host"
	"github.com/rulego/batchops/logger"
	"github.com/rulego/batchops/operations"
	"github.com/rulego/batchops/types"
	"github.com/rulego/batchops/utils/table"
)

// Option configures a Category.
type Option func(*Category)

// WithPreferences shares prefs with the category. The category reads its
// options from prefs on every call, so later edits take effect.
func WithPreferences(prefs *types.Preferences) Option {
	return func(c *Category) {
		c.prefs = prefs
	}
}

// WithEditor shares a rename editor between categories.
func WithEditor(ed *Editor) Option {
	return func(c *Category) {
		c.editor = ed
	}
}

// WithLogger sets the logger of the category and its operations.
func WithLogger(l logger.Logger) Option {
	return func(c *Category) {
		c.log = l
	}
}

// WithClock replaces time.Now for the refresh throttle.
func WithClock(now func() time.Time) Option {
	return func(c *Category) {
		c.now = now
	}
}

// WithFilter restricts the table to entities accepted by cond.
func WithFilter(cond condition.Condition) Option {
	return func(c *Category) {
		c.filter = cond
	}
}

// signature is the cheap fingerprint compared before a rescan.
type signature struct {
	count  int
	active host.Object
}

// Category keeps the row table of one entity kind in step with the host.
// It is not safe for concurrent use; the host calls it from its UI thread.
type Category struct {
	h       host.Host
	ops     operations.EntityOperations
	schema  *Schema
	rowType *RowType
	prefs   *types.Preferences
	editor  *Editor
	filter  condition.Condition
	log     logger.Logger
	now     func() time.Time

	rows        []*Row
	infos       map[string]*AggregateInfo
	excluded    map[string]bool
	prevIDNames []string
	prevSig     signature
	scanned     bool
	dirty       bool
	lastRefresh time.Time
	scans       int
}

// New creates the category of kind over h. Rows are empty until the first
// Refresh.
func New(h host.Host, kind host.Kind, schema *Schema, opts ...Option) (*Category, error) {
	if schema == nil {
		return nil, fmt.Errorf("%w: nil schema", ErrInvalidSchema)
	}
	c := &Category{
		h:        h,
		schema:   schema,
		rowType:  schema.RowType(),
		excluded: make(map[string]bool),
		infos:    make(map[string]*AggregateInfo),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.prefs == nil {
		p := types.DefaultPreferences()
		c.prefs = &p
	}
	if c.editor == nil {
		c.editor = NewEditor()
	}
	if c.log == nil {
		c.log = logger.GetDefault()
	}
	c.log = logger.Named(c.log, kind.Plural())
	ops, err := operations.For(kind, h, operations.WithLogger(c.log))
	if err != nil {
		return nil, err
	}
	c.ops = ops
	return c, nil
}

// Kind returns the entity kind
func (c *Category) Kind() host.Kind {
	return c.ops.Kind()
}

// Operations returns the bulk operations of the kind. Calling them directly
// bypasses undo checkpoints and refresh tagging.
func (c *Category) Operations() operations.EntityOperations {
	return c.ops
}

func (c *Category) Schema() *Schema {
	return c.schema
}

func (c *Category) Editor() *Editor {
	return c.editor
}

// Options returns the live options of this category.
func (c *Category) Options() *types.Options {
	return c.prefs.Options(c.Kind())
}

// Scope is the scope named by the options, Selection if it is invalid.
// With PrioritizeSelection set, a non-empty selection wins over a wider
// scope.
func (c *Category) Scope() host.Scope {
	o := c.Options()
	s, err := o.Scope()
	if err != nil {
		c.log.Warn("%v, using %s", err, host.Selection)
		return host.Selection
	}
	if o.PrioritizeSelection && s != host.Selection && len(c.h.Objects(host.Selection)) > 0 {
		return host.Selection
	}
	return s
}

// SetFilter replaces the entity filter and tags the category for refresh.
func (c *Category) SetFilter(cond condition.Condition) {
	c.filter = cond
	c.TagRefresh()
}

// TagRefresh makes the next Refresh rescan.
func (c *Category) TagRefresh() {
	c.dirty = true
}

// NeedsRefresh reports whether TagRefresh was called since the last scan.
func (c *Category) NeedsRefresh() bool {
	return c.dirty
}

// Scans counts the rescans performed so far.
func (c *Category) Scans() int {
	return c.scans
}

func (c *Category) signature() signature {
	return signature{count: len(c.h.Objects(c.Scope())), active: c.h.Active()}
}

func (c *Category) autoRefresh() bool {
	return c.prefs.AutoRefresh && c.Options().AutoRefresh
}

// Refresh rescans the host unless nothing suggests a change: the selection
// signature is unchanged, the category is not tagged, and auto-refresh is off
// or its interval has not elapsed. It reports whether a rescan happened.
func (c *Category) Refresh(force bool) bool {
	sig := c.signature()
	now := c.now()
	if !force && !c.dirty && c.scanned && sig == c.prevSig {
		if !c.autoRefresh() || now.Sub(c.lastRefresh) < c.prefs.Interval() {
			return false
		}
	}

	keep := condition.Entities(c.filter)
	infos := map[string]*AggregateInfo{"": NewAggregateInfo(c.schema, "")}
	for _, e := range c.ops.Iterate(c.Scope()) {
		if !keep(e) {
			continue
		}
		infos[""].Add(e)
		id := e.IDName()
		info, ok := infos[id]
		if !ok {
			info = NewAggregateInfo(c.schema, id)
			infos[id] = info
		}
		info.Add(e)
	}

	idnames := maps.Keys(infos)
	sort.Strings(idnames)
	// "" sorts first and stands for the All row
	idnames = idnames[1:]

	if !equalStrings(idnames, c.prevIDNames) {
		c.resetExcluded(idnames)
		c.editor.cancelFor(c)
	}

	rows := make([]*Row, 0, len(idnames)+1)
	for _, id := range append([]string{""}, idnames...) {
		row := c.rowType.New(id)
		infos[id].FillRow(row)
		rows = append(rows, row)
	}

	c.rows = rows
	c.infos = infos
	c.prevIDNames = idnames
	c.prevSig = sig
	c.scanned = true
	c.dirty = false
	c.lastRefresh = now
	c.scans++
	c.log.Debug("refreshed %d rows from %d entities", len(idnames), infos[""].Count)
	return true
}

func (c *Category) resetExcluded(idnames []string) {
	c.excluded = make(map[string]bool)
	if c.prefs.DefaultSelectState {
		return
	}
	for _, id := range idnames {
		c.excluded[id] = true
	}
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Rows returns the table: the All row first, then one row per idname in
// sorted order.
func (c *Category) Rows() []*Row {
	return append([]*Row(nil), c.rows...)
}

// Row returns the row of idname; "" is the All row.
func (c *Category) Row(idname string) (*Row, bool) {
	for _, r := range c.rows {
		if r.IDName == idname {
			return r, true
		}
	}
	return nil, false
}

// Info returns the aggregates of idname from the last refresh.
func (c *Category) Info(idname string) (*AggregateInfo, bool) {
	info, ok := c.infos[idname]
	return info, ok
}

// IDNames returns the idnames of the current table, sorted.
func (c *Category) IDNames() []string {
	return append([]string(nil), c.prevIDNames...)
}

// Excluded reports whether the row idname is excluded from bulk actions on
// the All row.
func (c *Category) Excluded(idname string) bool {
	return c.excluded[idname]
}

// ExcludedIDNames returns the excluded idnames, sorted.
func (c *Category) ExcludedIDNames() []string {
	ids := maps.Keys(c.excluded)
	sort.Strings(ids)
	return ids
}

// SetExcluded includes or excludes a row.
func (c *Category) SetExcluded(idname string, excluded bool) {
	if idname == "" {
		return
	}
	if excluded {
		c.excluded[idname] = true
	} else {
		delete(c.excluded, idname)
	}
}

// ToggleAll excludes every row if all rows are included, otherwise includes
// every row.
func (c *Category) ToggleAll() {
	if len(c.excluded) == 0 {
		for _, id := range c.prevIDNames {
			c.excluded[id] = true
		}
		return
	}
	c.excluded = make(map[string]bool)
}

// Resolve maps a row to the idnames an action on it covers. The All row
// covers every included idname.
func (c *Category) Resolve(idname string) []string {
	if idname != "" {
		return []string{idname}
	}
	out := make([]string, 0, len(c.prevIDNames))
	for _, id := range c.prevIDNames {
		if !c.excluded[id] {
			out = append(out, id)
		}
	}
	return out
}

// Table writes the rows as a text table. Mixed values are marked with '*'
// and excluded rows with '-'.
func (c *Category) Table(w io.Writer) {
	data := make([]map[string]any, 0, len(c.rows))
	for _, r := range c.rows {
		m := r.Map()
		for _, a := range c.schema.attrs {
			if v, _ := r.Value(a.Name); !v.Same {
				m[a.Name] = fmt.Sprintf("%v*", v.Value)
			}
		}
		if r.All() {
			m[ColumnIDName] = "(all)"
		}
		mark := "+"
		if c.excluded[r.IDName] {
			mark = "-"
		}
		m["in"] = mark
		data = append(data, m)
	}
	table.Write(w, data, append([]string{"in"}, c.rowType.Columns()...))
}
