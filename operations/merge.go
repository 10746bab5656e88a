package operations

import (
	"reflect"
	"sort"

	"github.com/rulego/batchops/host"
)

// delete drops the keep-alive flag of each named entity and deletes it.
func (o *identity) delete(r *Report, idnames []string) {
	for _, id := range idnames {
		e, ok := o.lookup(id)
		if !ok {
			continue
		}
		if o.store.KeepAlive(e) {
			if err := o.store.SetKeepAlive(e, false); err != nil {
				r.fail(nil, id, err, o.log)
				continue
			}
		}
		if err := o.store.Delete(e); err != nil {
			r.fail(nil, id, err, o.log)
			continue
		}
		r.Changed++
	}
}

// Purge deletes unused entities. With nil idnames every entity without users
// is deleted; evenWithKeepAlive first clears the keep-alive flag of entities
// that are kept only by it. With explicit idnames those entities are
// detached everywhere and deleted regardless of users.
func (o *identity) Purge(evenWithKeepAlive bool, idnames []string) (Report, error) {
	var r Report
	if idnames != nil {
		rr, err := o.Remove(nil, idnames, true)
		r.Merge(rr)
		if err != nil {
			return r, err
		}
		o.delete(&r, unique(idnames))
		return r, nil
	}
	library := o.store.Library()
	if evenWithKeepAlive {
		for _, e := range library {
			if o.store.KeepAlive(e) && o.store.Users(e) == 1 {
				if err := o.store.SetKeepAlive(e, false); err != nil {
					r.fail(nil, e.IDName(), err, o.log)
				}
			}
		}
	}
	for _, e := range library {
		if o.store.Users(e) > 0 {
			continue
		}
		if err := o.store.Delete(e); err != nil {
			r.fail(nil, e.IDName(), err, o.log)
			continue
		}
		r.Changed++
	}
	o.log.Debug("purged %d", r.Changed)
	return r, nil
}

// identical reports whether a and b have equal attributes apart from name.
func identical(a, b host.Entity) bool {
	x, y := a.Attrs(), b.Attrs()
	delete(x, "name")
	delete(y, "name")
	delete(x, host.KeepAliveAttr)
	delete(y, host.KeepAliveAttr)
	return reflect.DeepEqual(x, y)
}

// classes partitions the library into sets of identical entities. Equality
// is an equivalence, so comparing against each class's first member is
// enough to make the partition transitive.
func classes(library []host.Entity) [][]host.Entity {
	var out [][]host.Entity
	for _, e := range library {
		placed := false
		for i, c := range out {
			if identical(c[0], e) {
				out[i] = append(c, e)
				placed = true
				break
			}
		}
		if !placed {
			out = append(out, []host.Entity{e})
		}
	}
	return out
}

// survivor orders a class by most users, then shortest name, then the
// lexicographically smallest name, and returns the first.
func (o *identity) survivor(class []host.Entity) host.Entity {
	users := make(map[host.Entity]int, len(class))
	for _, e := range class {
		users[e] = o.store.Users(e)
	}
	sorted := append([]host.Entity(nil), class...)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if users[a] != users[b] {
			return users[a] > users[b]
		}
		if len(a.Name()) != len(b.Name()) {
			return len(a.Name()) < len(b.Name())
		}
		return a.Name() < b.Name()
	})
	return sorted[0]
}

// MergeIdentical collapses every class of identical entities into one
// survivor, re-pointing all references to it and deleting the others.
func (o *identity) MergeIdentical() (Report, error) {
	var r Report
	for _, class := range classes(o.store.Library()) {
		if len(class) < 2 {
			continue
		}
		keep := o.survivor(class)
		var losers []string
		for _, e := range class {
			if e != keep {
				losers = append(losers, e.IDName())
			}
		}
		o.log.Info("merge %v into %s", losers, keep.IDName())
		rr, err := o.Assign(AssignRequest{
			Mode:     AssignReplace,
			Src:      losers,
			Dst:      []string{keep.IDName()},
			Globally: true,
		})
		r.Merge(rr)
		if err != nil {
			return r, err
		}
		// losers attached nowhere are not reached by the replace
		o.delete(&r, losers)
	}
	return r, nil
}
