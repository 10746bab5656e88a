package category

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rulego/batchops/host"
	"github.com/rulego/batchops/operations"
)

// ErrUnsupported is returned for actions the kind does not offer.
var ErrUnsupported = errors.New("action not supported by this category")

// The actions below are what the UI dispatches. Every mutating action
// records one undo checkpoint before touching the host and tags the
// category for refresh afterwards.

func (c *Category) checkpoint(action string, idnames []string) {
	msg := fmt.Sprintf("Batch %s %s", action, c.Kind().Plural())
	if len(idnames) > 0 {
		msg += ": " + strings.Join(idnames, ", ")
	}
	c.h.UndoPush(msg)
}

func (c *Category) done(action string, r operations.Report, err error) (operations.Report, error) {
	c.TagRefresh()
	if err != nil {
		return r, fmt.Errorf("%s %s: %w", action, c.Kind().Plural(), err)
	}
	if !r.OK() {
		c.log.Warn("%s: %s", action, r)
	} else {
		c.log.Debug("%s: %s", action, r)
	}
	return r, nil
}

// Assign applies mode with the entities of row src (the All row covers every
// included idname) as the source set and dst as the destination idnames.
// Targets are the objects in scope, or every object when globally is set.
func (c *Category) Assign(mode operations.AssignMode, src string, dst []string, globally, purge bool) (operations.Report, error) {
	c.editor.cancelFor(c)
	idnames := c.Resolve(src)
	c.checkpoint("assign", dst)
	r, err := c.ops.Assign(operations.AssignRequest{
		Mode:     mode,
		Active:   c.h.Active(),
		Objects:  c.ops.IterateObjects(c.Scope()),
		Src:      idnames,
		Dst:      dst,
		Globally: globally,
		Purge:    purge,
	})
	return c.done("assign", r, err)
}

// Remove deletes the entities of a row from the objects in scope.
func (c *Category) Remove(idname string, globally bool) (operations.Report, error) {
	c.editor.cancelFor(c)
	idnames := c.Resolve(idname)
	c.checkpoint("remove", idnames)
	r, err := c.ops.Remove(c.ops.IterateObjects(c.Scope()), idnames, globally)
	return c.done("remove", r, err)
}

// Purge deletes unused entities. An empty idname purges every entity with
// no users; otherwise the entities of that row are unlinked and deleted.
func (c *Category) Purge(evenWithKeepAlive bool, idname string) (operations.Report, error) {
	if !c.identity() {
		return operations.Report{}, ErrUnsupported
	}
	var idnames []string
	if idname != "" {
		idnames = []string{idname}
	}
	c.checkpoint("purge", idnames)
	r, err := c.ops.Purge(evenWithKeepAlive, idnames)
	return c.done("purge", r, err)
}

// MergeIdentical collapses entities that differ only by name.
func (c *Category) MergeIdentical() (operations.Report, error) {
	if !c.identity() {
		return operations.Report{}, ErrUnsupported
	}
	c.checkpoint("merge", nil)
	r, err := c.ops.MergeIdentical()
	return c.done("merge", r, err)
}

func (c *Category) identity() bool {
	return c.Kind() != host.Modifier
}

// Copy snapshots the entities of the active object, leaving out excluded
// rows. It does not modify the scene.
func (c *Category) Copy() []string {
	c.ops.Copy(c.h.Active(), c.ExcludedIDNames())
	return c.ops.Clipboard()
}

// Paste applies the clipboard to the objects in scope with the configured
// paste mode.
func (c *Category) Paste() (operations.Report, error) {
	return c.PasteMode(c.Options().Paste())
}

// PasteMode is Paste with an explicit mode.
func (c *Category) PasteMode(mode operations.PasteMode) (operations.Report, error) {
	c.checkpoint("paste", c.ops.Clipboard())
	return c.paste(mode)
}

func (c *Category) paste(mode operations.PasteMode) (operations.Report, error) {
	r, err := c.ops.Paste(c.ops.IterateObjects(c.Scope()), mode)
	return c.done("paste", r, err)
}

// PasteAll pastes into every category with mode as a single undo step.
// The categories must share one host.
func PasteAll(cats []*Category, mode operations.PasteMode) (operations.Report, error) {
	var total operations.Report
	if len(cats) == 0 {
		return total, nil
	}
	names := make([]string, len(cats))
	for i, c := range cats {
		plural := c.Kind().Plural()
		names[i] = strings.ToUpper(plural[:1]) + plural[1:]
	}
	cats[0].h.UndoPush("Batch paste " + strings.Join(names, "/"))
	for _, c := range cats {
		r, err := c.paste(mode)
		total.Merge(r)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// Select changes the host selection to the objects in scope that carry an
// entity of the row. With SynchronizeSelection set in the options the
// search covers the whole file.
func (c *Category) Select(idname string, mode host.SelectMode) []host.Object {
	scope := c.Scope()
	if c.Options().SynchronizeSelection {
		scope = host.File
	}
	idnames := c.Resolve(idname)
	c.checkpoint("select", idnames)
	objs := c.ops.Select(scope, idnames, mode)
	c.TagRefresh()
	return objs
}

// SetAttr sets attr on the entities of a row within scope.
func (c *Category) SetAttr(idname, attr string, value any) (operations.Report, error) {
	idnames := c.Resolve(idname)
	c.checkpoint("set "+attr, idnames)
	r, err := c.ops.SetAttr(operations.SetAttrRequest{
		Name:    attr,
		Value:   value,
		Objects: c.ops.IterateObjects(c.Scope()),
		IDNames: idnames,
	})
	return c.done("set "+attr, r, err)
}

// Rename renames the entities of a row. A name containing the wildcard is
// applied as a pattern relative to the row's current name, so renaming a
// row shown as "Cube…" to "Box…" keeps each entity's varying part.
func (c *Category) Rename(idname, name string) (operations.Report, error) {
	row, ok := c.Row(idname)
	if !ok {
		return operations.Report{}, nil
	}
	return c.rename(idname, name, row.Name)
}

func (c *Category) rename(idname, name, pattern string) (operations.Report, error) {
	idnames := c.Resolve(idname)
	c.checkpoint("rename", idnames)
	r, err := c.ops.SetAttr(operations.SetAttrRequest{
		Name:          "name",
		Value:         name,
		Objects:       c.ops.IterateObjects(c.Scope()),
		IDNames:       idnames,
		SourcePattern: pattern,
	})
	return c.done("rename", r, err)
}

// Apply bakes the modifiers of a row into their objects. Only modifiers
// support it; disabled ones are removed when the options say so.
func (c *Category) Apply(idname string, asShape bool) (operations.Report, error) {
	mods, ok := c.ops.(*operations.Modifiers)
	if !ok {
		return operations.Report{}, ErrUnsupported
	}
	c.editor.cancelFor(c)
	idnames := c.Resolve(idname)
	c.checkpoint("apply", idnames)
	r, err := mods.Apply(c.ops.IterateObjects(c.Scope()), idnames, operations.ApplyOptions{
		AsShape:        asShape,
		RemoveDisabled: c.Options().RemoveDisabled,
	})
	return c.done("apply", r, err)
}
