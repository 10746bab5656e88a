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

package aggregator

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

var (
	// ErrUnsupportedQuery is returned when a query is unknown or illegal for the kind.
	ErrUnsupportedQuery = errors.New("unsupported query")
	// ErrUnsupportedKind is returned for a Kind outside the declared set.
	ErrUnsupportedKind = errors.New("unsupported kind")
	// ErrQueryNotRequested is returned by Result for queries outside the aggregator's query set.
	ErrQueryNotRequested = errors.New("query not requested")
)

// Kind is the declared type of every sample added to an aggregator.
type Kind int

const (
	Number Kind = iota
	Bool
	Enum
	Sequence
	Object
)

func (k Kind) String() string {
	switch k {
	case Number:
		return "number"
	case Bool:
		return "bool"
	case Enum:
		return "enum"
	case Sequence:
		return "sequence"
	case Object:
		return "object"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Query names one statistic.
type Query string

const (
	Count         Query = "count"
	Same          Query = "same"
	Min           Query = "min"
	Max           Query = "max"
	Range         Query = "range"
	Center        Query = "center"
	Sum           Query = "sum"
	SumLog        Query = "sum_log"
	SumRec        Query = "sum_rec"
	Product       Query = "product"
	Mean          Query = "mean"
	GeometricMean Query = "geometric_mean"
	HarmonicMean  Query = "harmonic_mean"
	Variance      Query = "variance"
	StdDev        Query = "stddev"
	Sorted        Query = "sorted"
	Median        Query = "median"
	FreqMap       Query = "freq_map"
	FreqMax       Query = "freq_max"
	Modes         Query = "modes"
	Union         Query = "union"
	Intersection  Query = "intersection"
	Difference    Query = "difference"
	Subseq        Query = "subseq"
	SubseqStarts  Query = "subseq_starts"
	SubseqEnds    Query = "subseq_ends"

	// internal accumulators that several public queries share
	runningMean Query = "Ak"
	runningM2   Query = "Qk"
)

var numberQueries = []Query{
	Count, Same, Min, Max, Range, Center, Sum, SumLog, SumRec, Product,
	Mean, GeometricMean, HarmonicMean, Variance, StdDev, Sorted, Median,
	FreqMap, FreqMax, Modes,
}

var legalQueries = map[Kind][]Query{
	Number:   numberQueries,
	Bool:     numberQueries,
	Enum:     {Count, Same, FreqMap, FreqMax, Modes, Union, Intersection, Difference},
	Sequence: {Count, Same, Sorted, Median, FreqMap, FreqMax, Modes, Subseq, SubseqStarts, SubseqEnds},
	Object:   {Count, Same, FreqMap, FreqMax, Modes},
}

var dependencies = map[Query][]Query{
	Range:         {Min, Max},
	Center:        {Min, Max},
	Mean:          {runningMean},
	Variance:      {runningMean, runningM2},
	StdDev:        {Variance},
	GeometricMean: {SumLog},
	HarmonicMean:  {SumRec},
	Median:        {Sorted},
	Modes:         {FreqMax},
	FreqMax:       {FreqMap},
	SubseqStarts:  {Subseq},
	SubseqEnds:    {Subseq},
}

// ParseQuery converts a query name into a Query, case-insensitively.
func ParseQuery(name string) (Query, error) {
	q := Query(strings.ToLower(strings.TrimSpace(name)))
	for _, known := range numberQueries {
		if q == known {
			return q, nil
		}
	}
	for _, known := range legalQueries[Enum] {
		if q == known {
			return q, nil
		}
	}
	for _, known := range legalQueries[Sequence] {
		if q == known {
			return q, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedQuery, name)
}

// Queries returns the legal queries for a kind.
func Queries(kind Kind) []Query {
	return append([]Query(nil), legalQueries[kind]...)
}

// closure validates queries for kind and adds their dependencies. Count is
// always part of the result.
func closure(kind Kind, queries []Query) (map[Query]bool, error) {
	legal, ok := legalQueries[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedKind, kind)
	}
	allowed := make(map[Query]bool, len(legal))
	for _, q := range legal {
		allowed[q] = true
	}
	set := map[Query]bool{Count: true}
	var visit func(q Query)
	visit = func(q Query) {
		if set[q] {
			return
		}
		set[q] = true
		for _, dep := range dependencies[q] {
			visit(dep)
		}
	}
	for _, q := range queries {
		if !allowed[q] {
			return nil, fmt.Errorf("%w: %q for %v samples", ErrUnsupportedQuery, string(q), kind)
		}
		visit(q)
	}
	return set, nil
}

// shape is the compiled form of a closed query set.
type shape struct {
	kind     Kind
	queries  map[Query]bool
	updaters []updater
}

type shapeKey struct {
	kind       Kind
	queries    string
	hasConvert bool
}

var (
	shapeCache   = make(map[shapeKey]*shape)
	shapeCacheMu sync.RWMutex
)

func compile(kind Kind, queries []Query, hasConvert bool) (*shape, error) {
	names := make([]string, 0, len(queries))
	for _, q := range queries {
		names = append(names, string(q))
	}
	sort.Strings(names)
	key := shapeKey{kind: kind, queries: strings.Join(names, ","), hasConvert: hasConvert}

	shapeCacheMu.RLock()
	s, ok := shapeCache[key]
	shapeCacheMu.RUnlock()
	if ok {
		return s, nil
	}

	set, err := closure(kind, queries)
	if err != nil {
		return nil, err
	}
	s = &shape{kind: kind, queries: set}
	for _, step := range updateSteps {
		if step.enabled(set) {
			s.updaters = append(s.updaters, step.fn)
		}
	}

	shapeCacheMu.Lock()
	if cached, ok := shapeCache[key]; ok {
		s = cached
	} else {
		shapeCache[key] = s
	}
	shapeCacheMu.Unlock()
	return s, nil
}
