package operations

import (
	"fmt"
	"sort"

	"github.com/rulego/batchops/host"
)

// identity implements the operations shared by reference-counted kinds.
// With cycle set, REPLACE substitutes slots one for one, cycling through
// the sorted destinations (material slots); otherwise every destination is
// attached in place of each replaced entity (group membership).
type identity struct {
	base
	cycle bool
}

// Materials operates on material slots. Idnames are material names.
type Materials struct {
	identity
}

// Groups operates on group membership. Idnames are group names.
type Groups struct {
	identity
}

var (
	_ EntityOperations = (*Materials)(nil)
	_ EntityOperations = (*Groups)(nil)
)

func (o *identity) resolve(idnames []string) []host.Entity {
	var out []host.Entity
	for _, id := range idnames {
		if e, ok := o.lookup(id); ok {
			out = append(out, e)
		}
	}
	return out
}

// add attaches e unless it is already there; material slots may hold the same
// material twice when allowDup is set.
func (o *identity) add(r *Report, obj host.Object, e host.Entity, allowDup bool) {
	if !allowDup || !o.cycle {
		for _, cur := range o.store.Attached(obj) {
			if cur == e {
				return
			}
		}
	}
	o.attach(r, obj, e)
}

func (o *identity) replace(r *Report, obj host.Object, old, new host.Entity) {
	if new == nil {
		o.detach(r, obj, old)
		return
	}
	if rep, ok := o.store.(host.Replacer); ok {
		if err := rep.Replace(obj, old, new); err != nil {
			r.fail(obj, old.IDName(), err, o.log)
			return
		}
		r.Changed++
		return
	}
	o.detach(r, obj, old)
	o.attach(r, obj, new)
}

func (o *identity) Assign(req AssignRequest) (Report, error) {
	var r Report
	objects := o.targets(req.Objects, req.Globally)
	dstNames := unique(req.Dst)
	dstSet := newIDSet(dstNames)

	switch req.Mode {
	case AssignAdd:
		for _, obj := range objects {
			existing := newIDSet(o.IDNames(obj))
			for _, e := range o.resolve(dstNames) {
				if !existing.contains(e.IDName()) {
					o.attach(&r, obj, e)
				}
			}
		}
	case AssignFilter:
		for _, obj := range objects {
			for _, e := range o.store.Attached(obj) {
				if !dstSet.contains(e.IDName()) {
					o.detach(&r, obj, e)
				}
			}
		}
	case AssignReplace:
		sorted := append([]string(nil), dstNames...)
		sort.Strings(sorted)
		dst := o.resolve(sorted)
		src := newIDSet(req.Src)
		replaced := make(map[string]bool)
		for _, obj := range objects {
			if o.cycle {
				o.replaceSlots(&r, obj, src, dst, replaced)
			} else {
				o.replaceMembers(&r, obj, src, dst, replaced)
			}
		}
		if req.Purge {
			var names []string
			for id := range replaced {
				if !dstSet.contains(id) {
					names = append(names, id)
				}
			}
			sort.Strings(names)
			o.delete(&r, names)
		}
	case AssignOverride:
		dst := o.resolve(dstNames)
		for _, obj := range objects {
			o.override(&r, obj, dst)
		}
	default:
		return r, fmt.Errorf("unknown assign mode %q", req.Mode)
	}
	return r, nil
}

func (o *identity) replaceSlots(r *Report, obj host.Object, src idSet, dst []host.Entity, replaced map[string]bool) {
	i := 0
	for _, e := range o.store.Attached(obj) {
		if !src.has(e.IDName()) {
			continue
		}
		replaced[e.IDName()] = true
		var next host.Entity
		if len(dst) > 0 {
			next = dst[i%len(dst)]
			i++
		}
		if next == e {
			continue
		}
		o.replace(r, obj, e, next)
	}
}

func (o *identity) replaceMembers(r *Report, obj host.Object, src idSet, dst []host.Entity, replaced map[string]bool) {
	hit := false
	for _, e := range o.store.Attached(obj) {
		if !src.has(e.IDName()) {
			continue
		}
		replaced[e.IDName()] = true
		hit = true
		if !containsEntity(dst, e) {
			o.detach(r, obj, e)
		}
	}
	if !hit {
		return
	}
	for _, d := range dst {
		o.add(r, obj, d, false)
	}
}

// override makes dst the complete, ordered entity set of obj. Material
// slots are emptied and refilled in order.
func (o *identity) override(r *Report, obj host.Object, dst []host.Entity) {
	attached := o.store.Attached(obj)
	if !o.cycle {
		for _, e := range attached {
			if !containsEntity(dst, e) {
				o.detach(r, obj, e)
			}
		}
		for _, d := range dst {
			o.add(r, obj, d, false)
		}
		return
	}
	if sameEntities(attached, dst) {
		return
	}
	o.clear(r, obj)
	for _, d := range dst {
		o.attach(r, obj, d)
	}
}

func sameEntities(a, b []host.Entity) bool {
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

func containsEntity(list []host.Entity, e host.Entity) bool {
	for _, x := range list {
		if x == e {
			return true
		}
	}
	return false
}

func (o *identity) Remove(objects []host.Object, idnames []string, globally bool) (Report, error) {
	return o.Assign(AssignRequest{Mode: AssignReplace, Objects: objects, Src: idnames, Globally: globally})
}

func (o *identity) Paste(objects []host.Object, mode PasteMode) (Report, error) {
	if o.clip == nil {
		return Report{}, nil
	}
	if mode == PasteAnd {
		return o.pasteAnd(objects), nil
	}
	var r Report
	entities := o.resolve(o.clip.idnames())
	for _, obj := range objects {
		if mode == PasteSet {
			o.clear(&r, obj)
		}
		for _, e := range entities {
			o.add(&r, obj, e, true)
		}
	}
	return r, nil
}

func (o *identity) SetAttr(req SetAttrRequest) (Report, error) {
	set, err := setter(req)
	if err != nil {
		return Report{}, err
	}
	want := newIDSet(req.IDNames)
	var entities []host.Entity
	if req.Objects == nil {
		entities = o.store.Library()
	} else {
		seen := make(map[host.Entity]bool)
		for _, obj := range req.Objects {
			for _, e := range o.store.Attached(obj) {
				if !seen[e] {
					seen[e] = true
					entities = append(entities, e)
				}
			}
		}
	}
	var r Report
	for _, e := range entities {
		if !want.has(e.IDName()) {
			continue
		}
		id := e.IDName()
		changed, err := set(e)
		if err != nil {
			r.fail(nil, id, err, o.log)
		} else if changed {
			r.Changed++
		}
	}
	return r, nil
}
