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

package category

import (
	"errors"
	"fmt"

	"github.com/rulego/batchops/aggregator"
)

// Fixed columns that precede the schema attributes in every row.
const (
	ColumnIDName = "idname"
	ColumnName   = "name"
	ColumnCount  = "count"
)

var ErrInvalidSchema = errors.New("invalid schema")

// Attribute declares one aggregated entity attribute.
type Attribute struct {
	Name string
	Kind aggregator.Kind
	// Size > 1 aggregates a vector attribute per axis.
	Size int
	// Default is used for entities that lack the attribute; nil skips them.
	Default any
	Tooltip string
}

func (a Attribute) vector() bool {
	return a.Size > 1
}

// Schema is the ordered attribute list of a category.
type Schema struct {
	attrs []Attribute
	index map[string]int
}

// NewSchema validates attrs and fixes their order.
func NewSchema(attrs ...Attribute) (*Schema, error) {
	s := &Schema{
		attrs: make([]Attribute, 0, len(attrs)),
		index: make(map[string]int, len(attrs)),
	}
	for _, a := range attrs {
		switch a.Name {
		case "":
			return nil, fmt.Errorf("%w: attribute without name", ErrInvalidSchema)
		case ColumnIDName, ColumnName, ColumnCount:
			return nil, fmt.Errorf("%w: %q is a reserved column", ErrInvalidSchema, a.Name)
		}
		if _, dup := s.index[a.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate attribute %q", ErrInvalidSchema, a.Name)
		}
		if a.Size < 0 {
			return nil, fmt.Errorf("%w: attribute %q has negative size", ErrInvalidSchema, a.Name)
		}
		if _, err := aggregator.New(a.Kind, valueQueries(a.Kind)); err != nil {
			return nil, fmt.Errorf("%w: attribute %q: %v", ErrInvalidSchema, a.Name, err)
		}
		s.index[a.Name] = len(s.attrs)
		s.attrs = append(s.attrs, a)
	}
	return s, nil
}

// MustSchema is like NewSchema but panics on error.
func MustSchema(attrs ...Attribute) *Schema {
	s, err := NewSchema(attrs...)
	if err != nil {
		panic(err)
	}
	return s
}

// Attributes returns a copy of the attribute list
func (s *Schema) Attributes() []Attribute {
	return append([]Attribute(nil), s.attrs...)
}

// Attribute looks an attribute up by name
func (s *Schema) Attribute(name string) (Attribute, bool) {
	i, ok := s.index[name]
	if !ok {
		return Attribute{}, false
	}
	return s.attrs[i], true
}

// RowType returns the row shape of this schema
func (s *Schema) RowType() *RowType {
	cols := make([]string, 0, len(s.attrs)+3)
	cols = append(cols, ColumnIDName, ColumnName, ColumnCount)
	for _, a := range s.attrs {
		cols = append(cols, a.Name)
	}
	return &RowType{schema: s, columns: cols}
}

// valueQueries picks what a row shows for an attribute of kind.
func valueQueries(kind aggregator.Kind) []aggregator.Query {
	switch kind {
	case aggregator.Number:
		return []aggregator.Query{aggregator.Same, aggregator.Mean}
	case aggregator.Enum:
		return []aggregator.Query{aggregator.Same, aggregator.Union}
	default:
		return []aggregator.Query{aggregator.Same, aggregator.Modes}
	}
}

// RowType is a fixed column layout: idname, name, count and then one column
// per schema attribute.
type RowType struct {
	schema  *Schema
	columns []string
}

// Columns returns the column names in order
func (t *RowType) Columns() []string {
	return append([]string(nil), t.columns...)
}

// New creates an empty row of this type.
func (t *RowType) New(idname string) *Row {
	return &Row{typ: t, IDName: idname, values: make([]Value, len(t.schema.attrs))}
}

// Value is one aggregated cell. Same reports whether every entity of the row
// agreed; when it is false Value holds a representative (mean or mode).
type Value struct {
	Value any
	Same  bool
}

// Row summarizes every entity that shares an idname. The row with an empty
// IDName covers all entities.
type Row struct {
	typ    *RowType
	IDName string
	// Name is the common name or, when names differ, a rename pattern.
	Name   string
	Count  int
	values []Value
}

// All reports whether this is the aggregate row.
func (r *Row) All() bool {
	return r.IDName == ""
}

// Value returns the cell of attribute name.
func (r *Row) Value(name string) (Value, bool) {
	i, ok := r.typ.schema.index[name]
	if !ok {
		return Value{}, false
	}
	return r.values[i], true
}

// Values returns the attribute cells in schema order.
func (r *Row) Values() []Value {
	return append([]Value(nil), r.values...)
}

// Map flattens the row by column name.
func (r *Row) Map() map[string]any {
	m := make(map[string]any, len(r.typ.columns))
	m[ColumnIDName] = r.IDName
	m[ColumnName] = r.Name
	m[ColumnCount] = r.Count
	for i, a := range r.typ.schema.attrs {
		m[a.Name] = r.values[i].Value
	}
	return m
}
