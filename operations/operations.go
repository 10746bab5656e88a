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

package operations

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rulego/batchops/host"
	"github.com/rulego/batchops/logger"
)

// ErrUnknownKind is returned by For when the host has no store for a kind.
var ErrUnknownKind = errors.New("host has no store for kind")

// EntityOperations is the set of bulk operations available for one entity kind.
// Idname arguments that name no existing entity are skipped silently.
type EntityOperations interface {
	Kind() host.Kind
	// Iterate returns the entities attached to objects in scope, one per
	// attachment. For identity kinds, host.File yields the whole library.
	Iterate(scope host.Scope) []host.Entity
	IterateObjects(scope host.Scope) []host.Object
	// IDNames returns the idnames attached to obj in host order.
	IDNames(obj host.Object) []string

	Assign(req AssignRequest) (Report, error)
	// Remove detaches idnames (all when nil) from objects, or from every
	// object in the file when globally is set.
	Remove(objects []host.Object, idnames []string, globally bool) (Report, error)
	Purge(evenWithKeepAlive bool, idnames []string) (Report, error)
	MergeIdentical() (Report, error)

	// Copy snapshots the entities of active, skipping excluded idnames.
	// A nil active object produces an empty clipboard.
	Copy(active host.Object, exclude []string)
	// Paste applies the clipboard to objects. It is a no-op until Copy is called.
	Paste(objects []host.Object, mode PasteMode) (Report, error)
	Clipboard() []string

	Select(scope host.Scope, idnames []string, mode host.SelectMode) []host.Object
	FindObjects(scope host.Scope, idnames []string) []host.Object
	SetAttr(req SetAttrRequest) (Report, error)
}

// AssignMode is the merge policy of Assign.
type AssignMode string

const (
	// AssignAdd ensures every destination idname is present.
	AssignAdd AssignMode = "ADD"
	// AssignFilter removes entities whose idname is not a destination.
	AssignFilter AssignMode = "FILTER"
	// AssignReplace substitutes source idnames with the destinations.
	AssignReplace AssignMode = "REPLACE"
	// AssignOverride makes the destinations the complete entity set.
	AssignOverride AssignMode = "OVERRIDE"
)

var assignAliases = map[string]AssignMode{
	"ADD":          AssignAdd,
	"UNION":        AssignAdd,
	"FILTER":       AssignFilter,
	"INTERSECTION": AssignFilter,
	"REPLACE":      AssignReplace,
	"OVERRIDE":     AssignOverride,
	"SET":          AssignOverride,
}

// ParseAssignMode accepts the mode names and their set-algebra aliases.
func ParseAssignMode(name string) (AssignMode, error) {
	if m, ok := assignAliases[strings.ToUpper(strings.TrimSpace(name))]; ok {
		return m, nil
	}
	return "", fmt.Errorf("unknown assign mode %q", name)
}

// PasteMode is the policy used by Paste.
type PasteMode string

const (
	PasteSet PasteMode = "SET"
	PasteOr  PasteMode = "OR"
	PasteAnd PasteMode = "AND"
)

// ParsePasteMode converts "set", "or" or "and" into a PasteMode.
func ParsePasteMode(name string) (PasteMode, error) {
	switch m := PasteMode(strings.ToUpper(strings.TrimSpace(name))); m {
	case PasteSet, PasteOr, PasteAnd:
		return m, nil
	}
	return "", fmt.Errorf("unknown paste mode %q", name)
}

// AssignRequest describes one Assign call.
type AssignRequest struct {
	Mode AssignMode
	// Active supplies parameters for newly created modifiers.
	Active  host.Object
	Objects []host.Object
	// Src limits REPLACE to these idnames; nil means every idname.
	Src []string
	Dst []string
	// Globally operates on every object in the file instead of Objects.
	Globally bool
	// Purge deletes replaced identity entities afterwards.
	Purge bool
}

// SetAttrRequest describes one SetAttr call.
type SetAttrRequest struct {
	Name  string
	Value any
	// Objects whose entities are changed. Nil targets the whole library for
	// identity kinds and every object in the file for modifiers.
	Objects []host.Object
	IDNames []string
	// SourcePattern is the rename pattern shown before editing. A string Value
	// containing rename.Wildcard is applied relative to it.
	SourcePattern string
}

// Option configures the operations returned by For.
type Option func(*base)

// WithLogger sets the logger used to report per-entity failures.
func WithLogger(l logger.Logger) Option {
	return func(b *base) {
		b.log = l
	}
}

// For returns the operations for kind backed by h.
func For(kind host.Kind, h host.Host, opts ...Option) (EntityOperations, error) {
	store, ok := h.Store(kind)
	if !ok {
		return nil, fmt.Errorf("%w: %v", ErrUnknownKind, kind)
	}
	b := base{h: h, store: store, log: logger.GetDefault()}
	for _, opt := range opts {
		opt(&b)
	}
	b.log = logger.Named(b.log, kind.Plural())
	switch kind {
	case host.Modifier:
		return &Modifiers{base: b}, nil
	case host.Material:
		return &Materials{identity: identity{base: b, cycle: true}}, nil
	case host.Group:
		return &Groups{identity: identity{base: b}}, nil
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnknownKind, kind)
	}
}

// base holds what every kind shares.
type base struct {
	h     host.Host
	store host.Store
	log   logger.Logger
	clip  *clipboard
}

func (b *base) Kind() host.Kind {
	return b.store.Kind()
}

func (b *base) IterateObjects(scope host.Scope) []host.Object {
	return b.h.Objects(scope)
}

func (b *base) Iterate(scope host.Scope) []host.Entity {
	if scope == host.File && b.store.Identity() {
		return b.store.Library()
	}
	var out []host.Entity
	for _, obj := range b.h.Objects(scope) {
		out = append(out, b.store.Attached(obj)...)
	}
	return out
}

func (b *base) IDNames(obj host.Object) []string {
	var out []string
	for _, e := range b.store.Attached(obj) {
		out = append(out, e.IDName())
	}
	return out
}

func (b *base) targets(objects []host.Object, globally bool) []host.Object {
	if globally {
		return b.h.Objects(host.File)
	}
	return objects
}

func (b *base) FindObjects(scope host.Scope, idnames []string) []host.Object {
	want := newIDSet(idnames)
	var out []host.Object
	for _, obj := range b.h.Objects(scope) {
		for _, e := range b.store.Attached(obj) {
			if want.has(e.IDName()) {
				out = append(out, obj)
				break
			}
		}
	}
	return out
}

// Select updates the host selection with every object in scope that owns one
// of idnames and returns those objects.
func (b *base) Select(scope host.Scope, idnames []string, mode host.SelectMode) []host.Object {
	found := b.FindObjects(scope, idnames)
	b.h.Select(found, mode)
	return found
}

func (b *base) newEntity(idname string) (host.Entity, error) {
	e, err := b.store.New(idname)
	if err != nil {
		return nil, fmt.Errorf("create %s %q: %w", b.Kind(), idname, err)
	}
	return e, nil
}

// lookup resolves an identity idname; unknown names are logged and skipped.
func (b *base) lookup(idname string) (host.Entity, bool) {
	e, ok := b.store.Lookup(idname)
	if !ok {
		b.log.Debug("skip unknown %s %q", b.Kind(), idname)
	}
	return e, ok
}

func (b *base) detach(r *Report, obj host.Object, e host.Entity) {
	if err := b.store.Detach(obj, e); err != nil {
		r.fail(obj, e.IDName(), err, b.log)
		return
	}
	r.Changed++
}

func (b *base) attach(r *Report, obj host.Object, e host.Entity) bool {
	if err := b.store.Attach(obj, e); err != nil {
		r.fail(obj, e.IDName(), err, b.log)
		return false
	}
	r.Changed++
	return true
}

// idSet is a set of idnames; the nil set contains everything.
type idSet map[string]struct{}

func newIDSet(idnames []string) idSet {
	if idnames == nil {
		return nil
	}
	s := make(idSet, len(idnames))
	for _, id := range idnames {
		s[id] = struct{}{}
	}
	return s
}

func (s idSet) has(idname string) bool {
	if s == nil {
		return true
	}
	_, ok := s[idname]
	return ok
}

// contains is like has but treats the nil set as empty.
func (s idSet) contains(idname string) bool {
	_, ok := s[idname]
	return ok
}

// unique returns idnames without duplicates and empty names, keeping order.
func unique(idnames []string) []string {
	seen := make(map[string]bool, len(idnames))
	var out []string
	for _, id := range idnames {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
