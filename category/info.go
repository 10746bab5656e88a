package category

import (
	"github.com/rulego/batchops/aggregator"
	"github.com/rulego/batchops/host"
	"github.com/rulego/batchops/rename"
)

var nameQueries = append([]aggregator.Query{aggregator.Same, aggregator.Modes}, rename.Queries...)

type attrStats struct {
	attr   Attribute
	scalar *aggregator.Aggregator
	vector *aggregator.VectorAggregator
}

func (s *attrStats) add(v any) error {
	if s.vector != nil {
		return s.vector.Add(v)
	}
	return s.scalar.Add(v)
}

func (s *attrStats) value() Value {
	if s.vector != nil {
		if s.vector.Count() == 0 {
			return Value{Same: true}
		}
		same := true
		for _, ok := range s.vector.Same() {
			same = same && ok
		}
		out := make([]any, s.vector.Size())
		for i := range out {
			out[i] = scalarValue(s.attr.Kind, s.vector.Axis(i))
		}
		return Value{Value: out, Same: same}
	}
	if s.scalar.Count() == 0 {
		return Value{Same: true}
	}
	return Value{Value: scalarValue(s.attr.Kind, s.scalar), Same: s.scalar.Same()}
}

func scalarValue(kind aggregator.Kind, a *aggregator.Aggregator) any {
	switch kind {
	case aggregator.Number:
		return a.Mean()
	case aggregator.Enum:
		return a.Union()
	}
	modes := a.Modes()
	if len(modes) == 0 {
		return nil
	}
	if kind == aggregator.Bool {
		f, _ := modes[0].(float64)
		return f != 0
	}
	return modes[0]
}

// AggregateInfo bundles the aggregators of one idname for one refresh.
type AggregateInfo struct {
	IDName string
	Count  int
	names  *aggregator.Aggregator
	stats  []*attrStats
	// Skipped counts attribute samples that could not be coerced.
	Skipped int
}

// NewAggregateInfo creates empty aggregators for every attribute of schema.
func NewAggregateInfo(schema *Schema, idname string) *AggregateInfo {
	info := &AggregateInfo{
		IDName: idname,
		names:  aggregator.MustNew(aggregator.Sequence, nameQueries),
		stats:  make([]*attrStats, len(schema.attrs)),
	}
	for i, a := range schema.attrs {
		st := &attrStats{attr: a}
		if a.vector() {
			// NewSchema validated the kind, and Size > 1 here.
			st.vector, _ = aggregator.NewVector(a.Kind, a.Size, valueQueries(a.Kind))
		} else {
			st.scalar = aggregator.MustNew(a.Kind, valueQueries(a.Kind))
		}
		info.stats[i] = st
	}
	return info
}

// Add folds one entity into the bundle. Attributes the entity lacks fall back
// to the schema default; values that cannot be coerced are skipped.
func (info *AggregateInfo) Add(e host.Entity) {
	info.Count++
	_ = info.names.Add(e.Name())
	for _, st := range info.stats {
		v, ok := e.Get(st.attr.Name)
		if !ok {
			if st.attr.Default == nil {
				continue
			}
			v = st.attr.Default
		}
		if err := st.add(v); err != nil {
			info.Skipped++
		}
	}
}

// Name returns the common name of the entities, or a rename pattern built
// from their longest common substring when they differ.
func (info *AggregateInfo) Name() string {
	if info.names.Count() == 0 {
		return ""
	}
	if info.names.Same() {
		return info.names.Subseq()
	}
	pattern, err := rename.FromAggregator(info.names)
	if err != nil {
		return rename.Wildcard
	}
	return pattern
}

// FillRow writes the aggregated values into row.
func (info *AggregateInfo) FillRow(row *Row) {
	row.Name = info.Name()
	row.Count = info.Count
	for i, st := range info.stats {
		row.values[i] = st.value()
	}
}
