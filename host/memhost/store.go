package memhost

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/rulego/batchops/host"
)

// Entity is a modifier instance, material or group.
type Entity struct {
	id        uuid.UUID
	store     *Store
	typ       string
	attrs     map[string]any
	keepAlive bool
	owner     *Object
	// Disabled makes Apply fail with host.ErrDisabled.
	Disabled bool
	// Locked makes Set fail with host.ErrNotApplicable.
	Locked bool
}

// ID returns the entity's identity
func (e *Entity) ID() uuid.UUID {
	return e.id
}

func (e *Entity) IDName() string {
	if e.store.kind == host.Modifier {
		return e.typ
	}
	return e.Name()
}

func (e *Entity) Name() string {
	name, _ := e.attrs["name"].(string)
	return name
}

func (e *Entity) String() string {
	return e.Name()
}

func (e *Entity) Get(attr string) (any, bool) {
	if attr == host.KeepAliveAttr && e.store.Identity() {
		return e.keepAlive, true
	}
	v, ok := e.attrs[attr]
	return v, ok
}

func (e *Entity) Set(attr string, value any) error {
	if e.Locked {
		return fmt.Errorf("set %s on %s: %w", attr, e.Name(), host.ErrNotApplicable)
	}
	if attr == host.KeepAliveAttr && e.store.Identity() {
		keep, ok := value.(bool)
		if !ok {
			return fmt.Errorf("%s must be a bool, got %T", attr, value)
		}
		e.keepAlive = keep
		return nil
	}
	if attr == "name" {
		name, ok := value.(string)
		if !ok {
			return fmt.Errorf("name must be a string, got %T", value)
		}
		value = e.store.uniqueFor(e, name)
	}
	e.attrs[attr] = value
	return nil
}

func (e *Entity) Attrs() map[string]any {
	out := make(map[string]any, len(e.attrs))
	for k, v := range e.attrs {
		out[k] = v
	}
	return out
}

// Store holds the entities of one kind. Modifier stacks and material slots
// are kept per object id; a nil slot is an empty material slot.
type Store struct {
	h       *Host
	kind    host.Kind
	library []*Entity
	stacks  map[uuid.UUID][]*Entity
	members map[uuid.UUID]map[uuid.UUID]bool
	// Defaults seeds the attributes of modifiers created by New, per type.
	Defaults map[string]map[string]any
}

var (
	_ host.Store    = (*Store)(nil)
	_ host.Replacer = (*Store)(nil)
	_ host.Applier  = (*Store)(nil)
)

func newStore(h *Host, kind host.Kind) *Store {
	return &Store{
		h:        h,
		kind:     kind,
		stacks:   make(map[uuid.UUID][]*Entity),
		members:  make(map[uuid.UUID]map[uuid.UUID]bool),
		Defaults: make(map[string]map[string]any),
	}
}

func (s *Store) newEntity(typ, name string, attrs map[string]any) *Entity {
	e := &Entity{id: newID(), store: s, typ: typ, attrs: make(map[string]any, len(attrs)+1)}
	for k, v := range attrs {
		e.attrs[k] = v
	}
	e.attrs["name"] = name
	return e
}

func (s *Store) register(name string, attrs map[string]any) *Entity {
	e := s.newEntity("", "", attrs)
	e.attrs["name"] = s.uniqueFor(e, name)
	s.library = append(s.library, e)
	return e
}

// uniqueFor returns name, suffixed if another entity in the same namespace
// already uses it. Identity kinds share one namespace; modifiers are unique
// per stack.
func (s *Store) uniqueFor(e *Entity, name string) string {
	var peers []*Entity
	if s.kind == host.Modifier {
		if e.owner != nil {
			peers = s.stacks[e.owner.id]
		}
	} else {
		peers = s.library
	}
	return uniqueName(name, func(candidate string) bool {
		for _, p := range peers {
			if p != nil && p != e && p.Name() == candidate {
				return true
			}
		}
		return false
	})
}

func (s *Store) Kind() host.Kind {
	return s.kind
}

func (s *Store) Identity() bool {
	return s.kind != host.Modifier
}

func (s *Store) Attached(obj host.Object) []host.Entity {
	o, ok := obj.(*Object)
	if !ok {
		return nil
	}
	var out []host.Entity
	if s.kind == host.Group {
		for _, g := range s.library {
			if s.members[g.id][o.id] {
				out = append(out, g)
			}
		}
		return out
	}
	for _, e := range s.stacks[o.id] {
		if e != nil {
			out = append(out, e)
		}
	}
	return out
}

func (s *Store) Library() []host.Entity {
	if !s.Identity() {
		return nil
	}
	out := make([]host.Entity, len(s.library))
	for i, e := range s.library {
		out[i] = e
	}
	return out
}

func (s *Store) Lookup(idname string) (host.Entity, bool) {
	for _, e := range s.library {
		if e.Name() == idname {
			return e, true
		}
	}
	return nil, false
}

func (s *Store) New(idname string) (host.Entity, error) {
	if idname == "" {
		return nil, fmt.Errorf("new %v: empty idname", s.kind)
	}
	if s.kind == host.Modifier {
		return s.newEntity(idname, titleCase(idname), s.Defaults[idname]), nil
	}
	return s.register(idname, nil), nil
}

func (s *Store) entity(e host.Entity) (*Entity, error) {
	me, ok := e.(*Entity)
	if !ok || me.store != s {
		return nil, fmt.Errorf("%v store: foreign entity %v: %w", s.kind, e, host.ErrNotApplicable)
	}
	return me, nil
}

func (s *Store) object(obj host.Object) (*Object, error) {
	o, ok := obj.(*Object)
	if !ok {
		return nil, fmt.Errorf("%v store: foreign object %v: %w", s.kind, obj, host.ErrNotApplicable)
	}
	return o, nil
}

func (s *Store) Attach(obj host.Object, e host.Entity) error {
	o, err := s.object(obj)
	if err != nil {
		return err
	}
	me, err := s.entity(e)
	if err != nil {
		return err
	}
	switch s.kind {
	case host.Modifier:
		if me.owner != nil && me.owner != o {
			return fmt.Errorf("modifier %s already belongs to %s: %w", me.Name(), me.owner.name, host.ErrNotApplicable)
		}
		me.owner = o
		me.attrs["name"] = s.uniqueFor(me, me.Name())
		s.stacks[o.id] = append(s.stacks[o.id], me)
	case host.Material:
		slots := s.stacks[o.id]
		for i, slot := range slots {
			if slot == nil {
				slots[i] = me
				return nil
			}
		}
		s.stacks[o.id] = append(slots, me)
	case host.Group:
		if s.members[me.id] == nil {
			s.members[me.id] = make(map[uuid.UUID]bool)
		}
		s.members[me.id][o.id] = true
	}
	return nil
}

func (s *Store) Detach(obj host.Object, e host.Entity) error {
	o, err := s.object(obj)
	if err != nil {
		return err
	}
	me, err := s.entity(e)
	if err != nil {
		return err
	}
	switch s.kind {
	case host.Modifier:
		stack := s.stacks[o.id]
		for i, m := range stack {
			if m == me {
				s.stacks[o.id] = append(stack[:i:i], stack[i+1:]...)
				me.owner = nil
				return nil
			}
		}
	case host.Material:
		for i, m := range s.stacks[o.id] {
			if m == me {
				s.stacks[o.id][i] = nil
				return nil
			}
		}
	case host.Group:
		if s.members[me.id][o.id] {
			delete(s.members[me.id], o.id)
			return nil
		}
	}
	return fmt.Errorf("%s is not attached to %s: %w", me.Name(), o.name, host.ErrNotApplicable)
}

// Replace swaps old for new at the same stack index or slot.
func (s *Store) Replace(obj host.Object, old, new host.Entity) error {
	if s.kind == host.Group {
		if err := s.Detach(obj, old); err != nil {
			return err
		}
		return s.Attach(obj, new)
	}
	o, err := s.object(obj)
	if err != nil {
		return err
	}
	mo, err := s.entity(old)
	if err != nil {
		return err
	}
	mn, err := s.entity(new)
	if err != nil {
		return err
	}
	for i, m := range s.stacks[o.id] {
		if m == mo {
			s.stacks[o.id][i] = mn
			if s.kind == host.Modifier {
				mo.owner = nil
				mn.owner = o
			}
			return nil
		}
	}
	return fmt.Errorf("%s is not attached to %s: %w", mo.Name(), o.name, host.ErrNotApplicable)
}

// Apply bakes a modifier into the object and removes it from the stack.
func (s *Store) Apply(obj host.Object, e host.Entity, asShape bool) error {
	if s.kind != host.Modifier {
		return fmt.Errorf("apply %v: %w", s.kind, host.ErrNotApplicable)
	}
	o, err := s.object(obj)
	if err != nil {
		return err
	}
	me, err := s.entity(e)
	if err != nil {
		return err
	}
	if o.ApplyErr != nil {
		return o.ApplyErr
	}
	if me.Disabled {
		return fmt.Errorf("modifier %s is disabled, skipping apply: %w", me.Name(), host.ErrDisabled)
	}
	if err := s.Detach(o, me); err != nil {
		return err
	}
	applied := me.typ
	if asShape {
		applied += ":shape"
	}
	o.Applied = append(o.Applied, applied)
	return nil
}

func (s *Store) Users(e host.Entity) int {
	me, err := s.entity(e)
	if err != nil {
		return 0
	}
	switch s.kind {
	case host.Modifier:
		if me.owner != nil {
			return 1
		}
		return 0
	case host.Group:
		n := len(s.members[me.id])
		if me.keepAlive {
			n++
		}
		return n
	default:
		n := 0
		for _, slots := range s.stacks {
			for _, m := range slots {
				if m == me {
					n++
				}
			}
		}
		if me.keepAlive {
			n++
		}
		return n
	}
}

func (s *Store) KeepAlive(e host.Entity) bool {
	me, err := s.entity(e)
	if err != nil {
		return false
	}
	return me.keepAlive
}

func (s *Store) SetKeepAlive(e host.Entity, keep bool) error {
	if !s.Identity() {
		return fmt.Errorf("keep-alive on %v: %w", s.kind, host.ErrNotApplicable)
	}
	me, err := s.entity(e)
	if err != nil {
		return err
	}
	me.keepAlive = keep
	return nil
}

func (s *Store) Delete(e host.Entity) error {
	me, err := s.entity(e)
	if err != nil {
		return err
	}
	if s.kind == host.Modifier {
		if me.owner == nil {
			return nil
		}
		return s.Detach(me.owner, me)
	}
	for i, m := range s.library {
		if m == me {
			s.library = append(s.library[:i:i], s.library[i+1:]...)
			break
		}
	}
	delete(s.members, me.id)
	for id, slots := range s.stacks {
		for i, m := range slots {
			if m == me {
				s.stacks[id][i] = nil
			}
		}
	}
	return nil
}

// Slots returns the material names in o's slots, "" for an empty slot.
func (s *Store) Slots(o *Object) []string {
	var names []string
	for _, m := range s.stacks[o.id] {
		if m == nil {
			names = append(names, "")
		} else {
			names = append(names, m.Name())
		}
	}
	return names
}

// IDNames returns the idnames attached to o in host order
func (s *Store) IDNames(o *Object) []string {
	var out []string
	for _, e := range s.Attached(o) {
		out = append(out, e.IDName())
	}
	return out
}
