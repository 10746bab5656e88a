package category

import (
	"errors"

	"github.com/rulego/batchops/operations"
)

// RenameState is the rename state of a row.
type RenameState int

const (
	Idle RenameState = iota
	Editing
)

func (s RenameState) String() string {
	if s == Editing {
		return "EDITING"
	}
	return "IDLE"
}

// ErrNotEditing is returned by Commit when no row is being renamed.
var ErrNotEditing = errors.New("no row is being renamed")

// Editor tracks the single row being renamed. Categories that share an
// Editor share the restriction: starting an edit on any row cancels the
// edit of every other row.
type Editor struct {
	owner  *Category
	idname string
	// pattern is the row name when the edit began; the new name is applied
	// relative to it.
	pattern string
}

// NewEditor creates an idle editor.
func NewEditor() *Editor {
	return &Editor{}
}

// Begin puts the row idname of c into EDITING, silently cancelling any
// other edit.
func (ed *Editor) Begin(c *Category, idname string) {
	if ed.owner != nil && (ed.owner != c || ed.idname != idname) {
		ed.owner.log.Debug("rename of %q cancelled", ed.idname)
	}
	ed.owner = c
	ed.idname = idname
	ed.pattern = ""
	if row, ok := c.Row(idname); ok {
		ed.pattern = row.Name
	}
}

// Pattern returns the source pattern captured by Begin.
func (ed *Editor) Pattern() string {
	return ed.pattern
}

// Editing returns the row being renamed.
func (ed *Editor) Editing() (c *Category, idname string, ok bool) {
	return ed.owner, ed.idname, ed.owner != nil
}

// State returns the rename state of row idname of c.
func (ed *Editor) State(c *Category, idname string) RenameState {
	if ed.owner == c && ed.owner != nil && ed.idname == idname {
		return Editing
	}
	return Idle
}

// Cancel returns to IDLE without renaming.
func (ed *Editor) Cancel() {
	ed.owner = nil
	ed.idname = ""
	ed.pattern = ""
}

// cancelFor cancels the edit only if it belongs to c.
func (ed *Editor) cancelFor(c *Category) {
	if ed.owner == c {
		ed.Cancel()
	}
}

// Commit renames the entities of the edited row to name and returns to
// IDLE. A name containing the wildcard is applied as a pattern relative to
// the row's name at the time Begin was called.
func (ed *Editor) Commit(name string) (operations.Report, error) {
	c, idname, ok := ed.Editing()
	if !ok {
		return operations.Report{}, ErrNotEditing
	}
	pattern := ed.pattern
	ed.Cancel()
	return c.rename(idname, name, pattern)
}
