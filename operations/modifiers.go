package operations

import (
	"errors"
	"fmt"

	"github.com/rulego/batchops/host"
)

// Modifiers operates on per-object modifier stacks. Idnames are modifier
// types; new instances take their parameters from an existing modifier of
// the same type.
type Modifiers struct {
	base
}

var _ EntityOperations = (*Modifiers)(nil)

// ApplyOptions control Modifiers.Apply.
type ApplyOptions struct {
	// AsShape bakes the result into a shape key instead of the mesh data.
	AsShape bool
	// RemoveDisabled deletes modifiers the host refuses to apply because
	// they are disabled.
	RemoveDisabled bool
}

func (m *Modifiers) Assign(req AssignRequest) (Report, error) {
	var r Report
	objects := m.targets(req.Objects, req.Globally)
	dst := unique(req.Dst)
	dstSet := newIDSet(dst)

	var sources map[string]host.Entity
	if req.Mode != AssignFilter {
		sources = m.paramSources(req.Active, objects, dstSet)
	}

	switch req.Mode {
	case AssignAdd:
		for _, obj := range objects {
			existing := newIDSet(m.IDNames(obj))
			for _, id := range dst {
				if !existing.contains(id) {
					m.add(&r, obj, id, sources[id])
				}
			}
		}
	case AssignFilter:
		for _, obj := range objects {
			for _, e := range m.store.Attached(obj) {
				if !dstSet.contains(e.IDName()) {
					m.detach(&r, obj, e)
				}
			}
		}
	case AssignReplace, AssignOverride:
		src := newIDSet(req.Src)
		for _, obj := range objects {
			existing := newIDSet(m.IDNames(obj))
			replace := req.Mode == AssignOverride
			for _, e := range m.store.Attached(obj) {
				id := e.IDName()
				if dstSet.contains(id) {
					continue
				}
				if req.Mode == AssignOverride || src.has(id) {
					m.detach(&r, obj, e)
					replace = true
				}
			}
			if !replace {
				continue
			}
			for _, id := range dst {
				if !existing.contains(id) {
					m.add(&r, obj, id, sources[id])
				}
			}
		}
	default:
		return r, fmt.Errorf("unknown assign mode %q", req.Mode)
	}
	return r, nil
}

// paramSources picks, per destination type, the modifier whose parameters new
// instances copy: the active object's, else the first one found.
func (m *Modifiers) paramSources(active host.Object, objects []host.Object, dst idSet) map[string]host.Entity {
	sources := make(map[string]host.Entity)
	for _, obj := range objects {
		for _, e := range m.store.Attached(obj) {
			id := e.IDName()
			if !dst.contains(id) {
				continue
			}
			if _, ok := sources[id]; !ok {
				sources[id] = e
			}
		}
	}
	if active != nil {
		for _, e := range m.store.Attached(active) {
			if dst.contains(e.IDName()) {
				sources[e.IDName()] = e
			}
		}
	}
	return sources
}

func (m *Modifiers) add(r *Report, obj host.Object, idname string, source host.Entity) {
	e, err := m.newEntity(idname)
	if err != nil {
		r.fail(obj, idname, err, m.log)
		return
	}
	if !m.attach(r, obj, e) {
		return
	}
	if source != nil {
		m.setAttrs(r, obj, e, source.Attrs(), "name")
	}
}

func (m *Modifiers) Remove(objects []host.Object, idnames []string, globally bool) (Report, error) {
	return m.Assign(AssignRequest{Mode: AssignReplace, Objects: objects, Src: idnames, Globally: globally})
}

// Purge does nothing: modifiers are owned by their object and cannot be
// orphaned.
func (m *Modifiers) Purge(bool, []string) (Report, error) {
	return Report{}, nil
}

// MergeIdentical does nothing for modifiers.
func (m *Modifiers) MergeIdentical() (Report, error) {
	return Report{}, nil
}

func (m *Modifiers) Paste(objects []host.Object, mode PasteMode) (Report, error) {
	if m.clip == nil {
		return Report{}, nil
	}
	if mode == PasteAnd {
		return m.pasteAnd(objects), nil
	}
	var r Report
	for _, obj := range objects {
		items, err := m.clip.snapshots()
		if err != nil {
			return r, err
		}
		if mode == PasteSet {
			m.clear(&r, obj)
		}
		for _, s := range items {
			e, err := m.newEntity(s.IDName)
			if err != nil {
				r.fail(obj, s.IDName, err, m.log)
				continue
			}
			if m.attach(&r, obj, e) {
				m.setAttrs(&r, obj, e, s.Attrs)
			}
		}
	}
	return r, nil
}

// Apply bakes the modifiers of type idnames into each object's data. A
// failing modifier is reported and skipped; the remaining modifiers and
// objects are still processed.
func (m *Modifiers) Apply(objects []host.Object, idnames []string, opts ApplyOptions) (Report, error) {
	var r Report
	applier, ok := m.store.(host.Applier)
	if !ok {
		return r, fmt.Errorf("apply modifiers: %w", host.ErrNotApplicable)
	}
	want := newIDSet(idnames)
	for _, obj := range objects {
		for _, e := range m.store.Attached(obj) {
			if !want.has(e.IDName()) {
				continue
			}
			err := applier.Apply(obj, e, opts.AsShape)
			switch {
			case err == nil:
				r.Changed++
			case errors.Is(err, host.ErrDisabled):
				r.Skipped++
				m.log.Info("skip disabled %s on %s", e.Name(), obj.Name())
				if opts.RemoveDisabled {
					m.detach(&r, obj, e)
				}
			default:
				r.fail(obj, e.IDName(), err, m.log)
			}
		}
	}
	return r, nil
}

func (m *Modifiers) SetAttr(req SetAttrRequest) (Report, error) {
	objects := req.Objects
	if objects == nil {
		objects = m.h.Objects(host.File)
	}
	set, err := setter(req)
	if err != nil {
		return Report{}, err
	}
	var r Report
	want := newIDSet(req.IDNames)
	for _, obj := range objects {
		for _, e := range m.store.Attached(obj) {
			if !want.has(e.IDName()) {
				continue
			}
			changed, err := set(e)
			if err != nil {
				r.fail(obj, e.IDName(), err, m.log)
			} else if changed {
				r.Changed++
			}
		}
	}
	return r, nil
}
