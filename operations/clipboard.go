package operations

import (
	"fmt"
	"sort"

	"github.com/jinzhu/copier"

	"github.com/rulego/batchops/host"
)

// snapshot is one copied entity. Attrs is only kept for per-object kinds;
// identity kinds are pasted by reference.
type snapshot struct {
	IDName string
	Attrs  map[string]any
}

type clipboard struct {
	items []snapshot
}

func (c *clipboard) idnames() []string {
	out := make([]string, len(c.items))
	for i, s := range c.items {
		out[i] = s.IDName
	}
	return out
}

// snapshots returns a deep copy, so pasting never shares attribute values
// with the clipboard or with other pasted entities.
func (c *clipboard) snapshots() ([]snapshot, error) {
	var out []snapshot
	if err := copier.CopyWithOption(&out, &c.items, copier.Option{DeepCopy: true}); err != nil {
		return nil, fmt.Errorf("copy clipboard: %w", err)
	}
	return out, nil
}

func (b *base) Copy(active host.Object, exclude []string) {
	skip := newIDSet(exclude)
	c := &clipboard{items: []snapshot{}}
	if active != nil {
		for _, e := range b.store.Attached(active) {
			if skip.contains(e.IDName()) {
				continue
			}
			s := snapshot{IDName: e.IDName()}
			if !b.store.Identity() {
				s.Attrs = e.Attrs()
			}
			c.items = append(c.items, s)
		}
	}
	b.clip = c
	b.log.Debug("copied %d entities", len(c.items))
}

// Clipboard returns the copied idnames in order, or nil before the first Copy.
func (b *base) Clipboard() []string {
	if b.clip == nil {
		return nil
	}
	return b.clip.idnames()
}

// pasteAnd keeps only the entities whose idname was copied.
func (b *base) pasteAnd(objects []host.Object) Report {
	var r Report
	keep := newIDSet(b.clip.idnames())
	for _, obj := range objects {
		for _, e := range b.store.Attached(obj) {
			if !keep.has(e.IDName()) {
				b.detach(&r, obj, e)
			}
		}
	}
	return r
}

func (b *base) clear(r *Report, obj host.Object) {
	for _, e := range b.store.Attached(obj) {
		b.detach(r, obj, e)
	}
}

// setAttrs copies attrs onto e in key order, "name" last so that it is
// uniquified against the final state. Keys listed in skip are left alone.
func (b *base) setAttrs(r *Report, obj host.Object, e host.Entity, attrs map[string]any, skip ...string) {
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	ignored := newIDSet(skip)
	name, hasName := attrs["name"]
	for _, k := range keys {
		if k == "name" || ignored.contains(k) {
			continue
		}
		if err := e.Set(k, attrs[k]); err != nil {
			r.fail(obj, e.IDName(), fmt.Errorf("set %s: %w", k, err), b.log)
		}
	}
	if hasName && !ignored.contains("name") {
		if err := e.Set("name", name); err != nil {
			r.fail(obj, e.IDName(), fmt.Errorf("set name: %w", err), b.log)
		}
	}
}
