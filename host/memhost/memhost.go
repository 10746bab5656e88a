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

// Package memhost is an in-memory host.Host. It models modifier stacks,
// material slots and group membership closely enough to exercise every batch
// operation, and is used by the tests and the example program.
package memhost

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/rulego/batchops/host"
)

// Object is a scene object
type Object struct {
	id       uuid.UUID
	name     string
	Selected bool
	Visible  bool
	OnLayer  bool
	InScene  bool
	// ApplyErr, when set, is returned by every Apply on this object.
	ApplyErr error
	// Applied records the idnames of modifiers baked into the object.
	Applied []string
}

func (o *Object) Name() string {
	return o.name
}

// ID returns the object's identity
func (o *Object) ID() uuid.UUID {
	return o.id
}

func (o *Object) String() string {
	return o.name
}

// Host is an in-memory scene.
type Host struct {
	objects []*Object
	active  *Object
	stores  map[host.Kind]*Store
	// Undo collects the undo checkpoint messages in order.
	Undo []string
}

var _ host.Host = (*Host)(nil)

// New creates an empty scene with one store per entity kind.
func New() *Host {
	h := &Host{stores: make(map[host.Kind]*Store)}
	for _, k := range host.Kinds() {
		h.stores[k] = newStore(h, k)
	}
	return h
}

// AddObject adds a selected, visible object to the scene.
func (h *Host) AddObject(name string) *Object {
	o := &Object{
		id:       newID(),
		name:     name,
		Selected: true,
		Visible:  true,
		OnLayer:  true,
		InScene:  true,
	}
	h.objects = append(h.objects, o)
	return o
}

// SetActive makes o the active object; nil clears it.
func (h *Host) SetActive(o *Object) {
	h.active = o
}

// Objects implements host.Host
func (h *Host) Objects(scope host.Scope) []host.Object {
	var out []host.Object
	for _, o := range h.objects {
		if h.inScope(o, scope) {
			out = append(out, o)
		}
	}
	return out
}

func (h *Host) inScope(o *Object, scope host.Scope) bool {
	switch scope {
	case host.Selection:
		return o.InScene && o.Selected
	case host.Visible:
		return o.InScene && o.Visible
	case host.Layer:
		return o.InScene && o.OnLayer
	case host.Scene:
		return o.InScene
	default:
		return true
	}
}

// Active implements host.Host
func (h *Host) Active() host.Object {
	if h.active == nil {
		return nil
	}
	return h.active
}

// Store implements host.Host
func (h *Host) Store(kind host.Kind) (host.Store, bool) {
	s, ok := h.stores[kind]
	return s, ok
}

// Stores returns the concrete store of kind
func (h *Host) Stores(kind host.Kind) *Store {
	return h.stores[kind]
}

// Select implements host.Host
func (h *Host) Select(objects []host.Object, mode host.SelectMode) {
	picked := make(map[uuid.UUID]bool, len(objects))
	for _, o := range objects {
		if mo, ok := o.(*Object); ok {
			picked[mo.id] = true
		}
	}
	for _, o := range h.objects {
		if !o.InScene {
			continue
		}
		switch mode {
		case host.SelectAdd:
			if picked[o.id] {
				o.Selected = true
			}
		case host.SelectRemove:
			if picked[o.id] {
				o.Selected = false
			}
		default:
			o.Selected = picked[o.id]
		}
	}
}

// UndoPush implements host.Host
func (h *Host) UndoPush(message string) {
	h.Undo = append(h.Undo, message)
}

// Selected returns the names of selected scene objects
func (h *Host) Selected() []string {
	var names []string
	for _, o := range h.objects {
		if o.InScene && o.Selected {
			names = append(names, o.name)
		}
	}
	return names
}

// AddModifier appends a modifier of type typ to o.
func (h *Host) AddModifier(o *Object, typ string, attrs map[string]any) *Entity {
	s := h.stores[host.Modifier]
	e := s.newEntity(typ, titleCase(typ), attrs)
	_ = s.Attach(o, e)
	return e
}

// NewMaterial registers a material datablock without users.
func (h *Host) NewMaterial(name string, attrs map[string]any) *Entity {
	return h.stores[host.Material].register(name, attrs)
}

// NewGroup registers a group datablock without members.
func (h *Host) NewGroup(name string, attrs map[string]any) *Entity {
	return h.stores[host.Group].register(name, attrs)
}

// AssignMaterial puts m into the first empty slot of o, appending a slot if needed.
func (h *Host) AssignMaterial(o *Object, m *Entity) {
	_ = h.stores[host.Material].Attach(o, m)
}

// AddEmptySlot appends an empty material slot to o.
func (h *Host) AddEmptySlot(o *Object) {
	s := h.stores[host.Material]
	s.stacks[o.id] = append(s.stacks[o.id], nil)
}

// Link makes o a member of g.
func (h *Host) Link(o *Object, g *Entity) {
	_ = h.stores[host.Group].Attach(o, g)
}

func newID() uuid.UUID {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return id
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	lower := strings.ToLower(s)
	return strings.ToUpper(lower[:1]) + lower[1:]
}

func uniqueName(base string, taken func(string) bool) string {
	if !taken(base) {
		return base
	}
	for i := 1; ; i++ {
		candidate := fmt.Sprintf("%s.%03d", base, i)
		if !taken(candidate) {
			return candidate
		}
	}
}
