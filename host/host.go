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

// Package host declares what batchops needs from the 3D application that
// owns the scene: objects filtered by scope, and for every entity kind a
// store that can enumerate, create, attach, detach and delete entities.
// batchops never keeps references to host entities beyond one operation.
package host

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotApplicable is reported by a host that refuses an operation on an
	// entity in its current state.
	ErrNotApplicable = errors.New("operation not applicable in current state")
	// ErrDisabled is reported when an operation is skipped because the
	// entity is disabled. Callers treat it as recoverable.
	ErrDisabled = errors.New("entity is disabled")
	// ErrUnknownIDName is reported when an idname has no registered entity.
	ErrUnknownIDName = errors.New("unknown idname")
)

// KeepAliveAttr is the attribute under which identity entities expose their
// keep-alive flag. Setting it is equivalent to Store.SetKeepAlive.
const KeepAliveAttr = "use_fake_user"

// Scope selects which objects take part in an operation.
type Scope int

const (
	Selection Scope = iota
	Visible
	Layer
	Scene
	File
)

var scopeNames = [...]string{"SELECTION", "VISIBLE", "LAYER", "SCENE", "FILE"}

func (s Scope) String() string {
	if s < 0 || int(s) >= len(scopeNames) {
		return fmt.Sprintf("SCOPE(%d)", int(s))
	}
	return scopeNames[s]
}

// ParseScope converts names such as "selection" or "FILE" into a Scope.
func ParseScope(name string) (Scope, error) {
	upper := strings.ToUpper(strings.TrimSpace(name))
	for i, n := range scopeNames {
		if n == upper {
			return Scope(i), nil
		}
	}
	return Selection, fmt.Errorf("unknown scope %q", name)
}

// Kind is an entity kind.
type Kind int

const (
	Modifier Kind = iota
	Material
	Group
)

func (k Kind) String() string {
	switch k {
	case Modifier:
		return "modifier"
	case Material:
		return "material"
	case Group:
		return "group"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Plural returns the category name, e.g. "modifiers".
func (k Kind) Plural() string {
	return k.String() + "s"
}

// Kinds lists every entity kind in display order.
func Kinds() []Kind {
	return []Kind{Modifier, Material, Group}
}

// SelectMode decides how Select combines with the current selection.
type SelectMode string

const (
	SelectSet    SelectMode = "SET"
	SelectAdd    SelectMode = "ADD"
	SelectRemove SelectMode = "REMOVE"
)

// Object is a scene object. Implementations must be comparable; batchops
// uses objects as map keys.
type Object interface {
	Name() string
}

// Entity is one attached item: a modifier instance, a material or a group.
// Like Object, implementations must be comparable.
type Entity interface {
	// IDName is the stable key of the entity's class or identity.
	IDName() string
	Name() string
	Get(attr string) (any, bool)
	Set(attr string, value any) error
	// Attrs returns a snapshot of every attribute including "name" but
	// excluding KeepAliveAttr.
	Attrs() map[string]any
}

// Store exposes the entities of one kind.
type Store interface {
	Kind() Kind
	// Identity reports whether entities are reference-counted datablocks
	// shared between objects (materials, groups) rather than per-object
	// attachments (modifiers).
	Identity() bool
	// Attached returns the entities of obj in host order.
	Attached(obj Object) []Entity
	// Library returns every entity of an identity kind in the file; nil for
	// per-object kinds.
	Library() []Entity
	// Lookup finds an identity entity by idname.
	Lookup(idname string) (Entity, bool)
	// New creates an unattached entity. For identity kinds the new entity is
	// registered in the library.
	New(idname string) (Entity, error)
	Attach(obj Object, e Entity) error
	Detach(obj Object, e Entity) error
	// Users counts references, including the keep-alive flag.
	Users(e Entity) int
	KeepAlive(e Entity) bool
	SetKeepAlive(e Entity, keep bool) error
	Delete(e Entity) error
}

// Replacer is implemented by stores that can swap an attached entity in
// place, preserving its position (a material slot, a modifier stack index).
type Replacer interface {
	Replace(obj Object, old, new Entity) error
}

// Applier is implemented by stores whose entities can be baked into the
// object's data, removing them afterwards.
type Applier interface {
	Apply(obj Object, e Entity, asShape bool) error
}

// Host is the application-side collaborator.
type Host interface {
	Objects(scope Scope) []Object
	Active() Object
	Store(kind Kind) (Store, bool)
	Select(objects []Object, mode SelectMode)
	// UndoPush records an undo checkpoint before a mutating operation.
	UndoPush(message string)
}
