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

package batchops

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rulego/batchops/aggregator"
	"github.com/rulego/batchops/category"
	"github.com/rulego/batchops/condition"
	"github.com/rulego/batchops/host"
	"github.com/rulego/batchops/logger"
	"github.com/rulego/batchops/operations"
	"github.com/rulego/batchops/types"
)

// ModifierSchema lists the modifier toggles shown per row.
var ModifierSchema = category.MustSchema(
	category.Attribute{Name: "show_render", Kind: aggregator.Bool, Tooltip: "Use modifier(s) during render"},
	category.Attribute{Name: "show_viewport", Kind: aggregator.Bool, Tooltip: "Display modifier(s) in viewport"},
	category.Attribute{Name: "show_in_editmode", Kind: aggregator.Bool, Tooltip: "Display modifier(s) in edit mode"},
	category.Attribute{Name: "show_on_cage", Kind: aggregator.Bool, Tooltip: "Adjust edit cage to modifier(s) result"},
	category.Attribute{Name: "use_apply_on_spline", Kind: aggregator.Bool, Tooltip: "Apply modifier(s) to splines' points rather than the filled curve/surface"},
)

// IdentitySchema is shared by materials and groups.
var IdentitySchema = category.MustSchema(
	category.Attribute{Name: host.KeepAliveAttr, Kind: aggregator.Bool, Default: false, Tooltip: "Keep the datablock even without users"},
)

// Batch owns one category per entity kind, the rename editor they share,
// and the synchronization between categories.
//
// Example:
//
//	b, err := batchops.New(h, batchops.WithLogLevel(logger.DEBUG))
//	if err != nil {
//		return err
//	}
//	b.Refresh(false)
//	b.Materials().Table(os.Stdout)
type Batch struct {
	h       host.Host
	prefs   *types.Preferences
	editor  *category.Editor
	log     logger.Logger
	now     func() time.Time
	filters map[host.Kind]condition.Condition
	onSync  func(b *Batch, kind host.Kind)

	categories map[host.Kind]*category.Category
	// syncLock guards the option synchronization against re-entry from
	// option change callbacks. The host is single-threaded, so a flag is
	// enough.
	syncLock bool
}

// New creates the three categories over h.
func New(h host.Host, opts ...Option) (*Batch, error) {
	b := &Batch{
		h:          h,
		editor:     category.NewEditor(),
		filters:    make(map[host.Kind]condition.Condition),
		categories: make(map[host.Kind]*category.Category),
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.prefs == nil {
		p := types.DefaultPreferences()
		b.prefs = &p
	}
	if err := b.prefs.Validate(); err != nil {
		return nil, err
	}
	if b.log == nil {
		b.log = logger.GetDefault()
		if b.prefs.LogLevel != "" {
			b.log = logger.NewLogger(logger.ParseLevel(b.prefs.LogLevel), os.Stderr)
		}
	}
	for _, kind := range host.Kinds() {
		schema := IdentitySchema
		if kind == host.Modifier {
			schema = ModifierSchema
		}
		copts := []category.Option{
			category.WithPreferences(b.prefs),
			category.WithEditor(b.editor),
			category.WithLogger(b.log),
		}
		if b.now != nil {
			copts = append(copts, category.WithClock(b.now))
		}
		if f, ok := b.filters[kind]; ok {
			copts = append(copts, category.WithFilter(f))
		}
		c, err := category.New(h, kind, schema, copts...)
		if err != nil {
			return nil, fmt.Errorf("create %s category: %w", kind.Plural(), err)
		}
		b.categories[kind] = c
	}
	return b, nil
}

// Category returns the category of kind, nil for an unknown kind.
func (b *Batch) Category(kind host.Kind) *category.Category {
	return b.categories[kind]
}

func (b *Batch) Modifiers() *category.Category {
	return b.categories[host.Modifier]
}

func (b *Batch) Materials() *category.Category {
	return b.categories[host.Material]
}

func (b *Batch) Groups() *category.Category {
	return b.categories[host.Group]
}

// Preferences returns the live preferences; changes apply on the next call
// into a category.
func (b *Batch) Preferences() *types.Preferences {
	return b.prefs
}

// Editor returns the rename editor shared by all categories.
func (b *Batch) Editor() *category.Editor {
	return b.editor
}

// Refresh refreshes every category and reports whether any rescanned.
func (b *Batch) Refresh(force bool) bool {
	scanned := false
	for _, kind := range host.Kinds() {
		if b.categories[kind].Refresh(force) {
			scanned = true
		}
	}
	return scanned
}

// TagRefresh tags every category.
func (b *Batch) TagRefresh() {
	for _, c := range b.categories {
		c.TagRefresh()
	}
}

func (b *Batch) synchronized() []host.Kind {
	var kinds []host.Kind
	for _, kind := range host.Kinds() {
		if b.prefs.Options(kind).Synchronized {
			kinds = append(kinds, kind)
		}
	}
	return kinds
}

// SyncNames names the synchronized categories, e.g. "Modifiers/Groups".
func (b *Batch) SyncNames() string {
	var names []string
	for _, kind := range b.synchronized() {
		plural := kind.Plural()
		names = append(names, strings.ToUpper(plural[:1])+plural[1:])
	}
	return strings.Join(names, "/")
}

// SyncCopy copies the active object's entities in every synchronized
// category, honoring each category's exclusions.
func (b *Batch) SyncCopy() map[host.Kind][]string {
	out := make(map[host.Kind][]string)
	for _, kind := range b.synchronized() {
		out[kind] = b.categories[kind].Copy()
	}
	return out
}

// SyncPaste pastes into every synchronized category with mode. The whole
// paste is one undo step.
func (b *Batch) SyncPaste(mode operations.PasteMode) (operations.Report, error) {
	var cats []*category.Category
	for _, kind := range b.synchronized() {
		cats = append(cats, b.categories[kind])
	}
	return category.PasteAll(cats, mode)
}

// SetSynchronized links or unlinks a category. A category that joins takes
// over the shared options of the first category already synchronized.
func (b *Batch) SetSynchronized(kind host.Kind, on bool) bool {
	o := b.prefs.Options(kind)
	if o == nil {
		return false
	}
	o.Synchronized = on
	return b.syncAdd(kind)
}

func (b *Batch) syncAdd(kind host.Kind) bool {
	active := b.prefs.Options(kind)
	if !active.Synchronized || b.syncLock {
		return false
	}
	b.syncLock = true
	defer func() { b.syncLock = false }()

	for _, other := range b.synchronized() {
		if other == kind {
			continue
		}
		active.CopySyncFields(*b.prefs.Options(other))
		b.notify(kind)
		break
	}
	return true
}

// UpdateOptions edits the options of kind and propagates the shared fields
// to the other synchronized categories.
func (b *Batch) UpdateOptions(kind host.Kind, edit func(o *types.Options)) bool {
	o := b.prefs.Options(kind)
	if o == nil {
		return false
	}
	edit(o)
	b.categories[kind].TagRefresh()
	return b.SyncOptions(kind)
}

// SyncOptions copies the shared options of kind to every other synchronized
// category. A call made while another synchronization is running, for
// example from the option change hook, does nothing and returns false.
func (b *Batch) SyncOptions(kind host.Kind) bool {
	active := b.prefs.Options(kind)
	if active == nil || !active.Synchronized || b.syncLock {
		return false
	}
	b.syncLock = true
	defer func() { b.syncLock = false }()

	for _, other := range b.synchronized() {
		if other == kind {
			continue
		}
		b.prefs.Options(other).CopySyncFields(*active)
		b.categories[other].TagRefresh()
		b.notify(other)
	}
	return true
}

func (b *Batch) notify(kind host.Kind) {
	if b.onSync != nil {
		b.onSync(b, kind)
	}
}
