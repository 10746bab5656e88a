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
	"fmt"
	"math"
	"reflect"
	"sort"

	"github.com/montanaflynn/stats"

	"github.com/rulego/batchops/utils/cast"
)

// ConvertFunc maps a raw host value to the value that gets aggregated.
type ConvertFunc func(v any) (any, error)

// Option configures an Aggregator
type Option func(*config)

type config struct {
	convert ConvertFunc
}

// WithConvert applies fn to every value before it is coerced to the kind.
func WithConvert(fn ConvertFunc) Option {
	return func(c *config) {
		c.convert = fn
	}
}

// sample is one coerced value; only the field matching the kind is set.
type sample struct {
	num float64
	str string
	set []string
	obj any
}

type updater func(a *Aggregator, s *sample)

type updateStep struct {
	enabled func(set map[Query]bool) bool
	fn      updater
}

func has(q Query) func(map[Query]bool) bool {
	return func(set map[Query]bool) bool { return set[q] }
}

// updateSteps is the static table every shape is compiled from. Order matters:
// freq_max reads freq_map, Welford steps read the incremented count.
var updateSteps = []updateStep{
	{has(Same), updateSame},
	{has(Min), func(a *Aggregator, s *sample) {
		if a.count == 1 || s.num < a.min {
			a.min = s.num
		}
	}},
	{has(Max), func(a *Aggregator, s *sample) {
		if a.count == 1 || s.num > a.max {
			a.max = s.num
		}
	}},
	{has(Sum), func(a *Aggregator, s *sample) { a.sum += s.num }},
	{has(SumLog), func(a *Aggregator, s *sample) { a.sumLog += math.Log(s.num) }},
	{has(SumRec), func(a *Aggregator, s *sample) { a.sumRec += 1 / s.num }},
	{has(Product), func(a *Aggregator, s *sample) {
		if a.count == 1 {
			a.product = s.num
		} else {
			a.product *= s.num
		}
	}},
	{func(set map[Query]bool) bool { return set[runningMean] && !set[runningM2] }, func(a *Aggregator, s *sample) {
		a.ak += (s.num - a.ak) / float64(a.count)
	}},
	{has(runningM2), func(a *Aggregator, s *sample) {
		prev := a.ak
		a.ak = prev + (s.num-prev)/float64(a.count)
		a.qk += (s.num - prev) * (s.num - a.ak)
	}},
	{has(Sorted), updateSorted},
	{has(FreqMap), updateFreqMap},
	{has(FreqMax), updateFreqMax},
	{has(Union), func(a *Aggregator, s *sample) {
		for _, m := range s.set {
			a.union[m] = struct{}{}
		}
	}},
	{has(Intersection), func(a *Aggregator, s *sample) {
		if a.count == 1 {
			for _, m := range s.set {
				a.intersection[m] = struct{}{}
			}
			return
		}
		in := make(map[string]struct{}, len(s.set))
		for _, m := range s.set {
			in[m] = struct{}{}
		}
		for m := range a.intersection {
			if _, ok := in[m]; !ok {
				delete(a.intersection, m)
			}
		}
	}},
	{has(Difference), func(a *Aggregator, s *sample) {
		for _, m := range s.set {
			if _, ok := a.difference[m]; ok {
				delete(a.difference, m)
			} else {
				a.difference[m] = struct{}{}
			}
		}
	}},
	{has(Subseq), func(a *Aggregator, s *sample) { a.subseq.add(s.str) }},
}

// Aggregator accumulates statistics over samples of one Kind.
// It is not safe for concurrent use.
type Aggregator struct {
	shape   *shape
	convert ConvertFunc

	count int
	same  bool
	first sample

	min, max float64
	sum      float64
	sumLog   float64
	sumRec   float64
	product  float64
	ak, qk   float64

	sortedNum []float64
	sortedStr []string

	freq    map[any]int
	order   []any
	freqMax int

	union        map[string]struct{}
	intersection map[string]struct{}
	difference   map[string]struct{}

	subseq commonSubstring
}

// New creates an aggregator for kind maintaining queries and everything they
// depend on.
func New(kind Kind, queries []Query, opts ...Option) (*Aggregator, error) {
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}
	s, err := compile(kind, queries, cfg.convert != nil)
	if err != nil {
		return nil, err
	}
	a := &Aggregator{shape: s, convert: cfg.convert, same: true}
	if s.queries[FreqMap] {
		a.freq = make(map[any]int)
	}
	if s.queries[Union] {
		a.union = make(map[string]struct{})
	}
	if s.queries[Intersection] {
		a.intersection = make(map[string]struct{})
	}
	if s.queries[Difference] {
		a.difference = make(map[string]struct{})
	}
	return a, nil
}

// MustNew is like New but panics on an invalid query set. It is meant for
// package-level schemas whose queries are fixed at compile time.
func MustNew(kind Kind, queries []Query, opts ...Option) *Aggregator {
	a, err := New(kind, queries, opts...)
	if err != nil {
		panic(err)
	}
	return a
}

// Kind returns the sample kind
func (a *Aggregator) Kind() Kind {
	return a.shape.kind
}

// Has reports whether q is maintained, either requested directly or as a dependency.
func (a *Aggregator) Has(q Query) bool {
	return a.shape.queries[q]
}

// Add folds one value into the statistics. A value that cannot be coerced to
// the aggregator's kind is rejected and not counted.
func (a *Aggregator) Add(value any) error {
	s, err := a.coerceConverted(value)
	if err != nil {
		return err
	}
	a.addSample(s)
	return nil
}

func (a *Aggregator) addSample(s sample) {
	a.count++
	for _, fn := range a.shape.updaters {
		fn(a, &s)
	}
}

func (a *Aggregator) coerceConverted(value any) (sample, error) {
	if a.convert != nil {
		v, err := a.convert(value)
		if err != nil {
			return sample{}, err
		}
		value = v
	}
	return a.coerce(value)
}

func (a *Aggregator) coerce(value any) (sample, error) {
	var s sample
	var err error
	switch a.shape.kind {
	case Number:
		s.num, err = cast.ToFloat64E(value)
	case Bool:
		var b bool
		if b, err = cast.ToBoolE(value); err == nil {
			s.num = cast.BoolToFloat(b)
		}
	case Sequence:
		s.str, err = cast.ToStringE(value)
	case Enum:
		s.set, err = cast.ToStringSetE(value)
	case Object:
		s.obj = value
	}
	if err != nil {
		return s, fmt.Errorf("aggregate %v sample: %w", a.shape.kind, err)
	}
	return s, nil
}

func updateSame(a *Aggregator, s *sample) {
	if a.count == 1 {
		a.first = *s
		return
	}
	if a.same && !a.equalFirst(s) {
		a.same = false
	}
}

func (a *Aggregator) equalFirst(s *sample) bool {
	switch a.shape.kind {
	case Sequence:
		return a.first.str == s.str
	case Enum:
		if len(a.first.set) != len(s.set) {
			return false
		}
		for i := range s.set {
			if a.first.set[i] != s.set[i] {
				return false
			}
		}
		return true
	case Object:
		return identical(a.first.obj, s.obj)
	default:
		return a.first.num == s.num
	}
}

// identical compares with == when the dynamic types allow it.
func identical(x, y any) bool {
	if x == nil || y == nil {
		return x == nil && y == nil
	}
	if reflect.TypeOf(x) != reflect.TypeOf(y) {
		return false
	}
	if !reflect.TypeOf(x).Comparable() {
		return reflect.DeepEqual(x, y)
	}
	return x == y
}

func updateSorted(a *Aggregator, s *sample) {
	if a.shape.kind == Sequence {
		i := sort.Search(len(a.sortedStr), func(i int) bool { return a.sortedStr[i] > s.str })
		a.sortedStr = append(a.sortedStr, "")
		copy(a.sortedStr[i+1:], a.sortedStr[i:])
		a.sortedStr[i] = s.str
		return
	}
	i := sort.Search(len(a.sortedNum), func(i int) bool { return a.sortedNum[i] > s.num })
	a.sortedNum = append(a.sortedNum, 0)
	copy(a.sortedNum[i+1:], a.sortedNum[i:])
	a.sortedNum[i] = s.num
}

func (a *Aggregator) freqKeys(s *sample) []any {
	switch a.shape.kind {
	case Sequence:
		return []any{s.str}
	case Enum:
		keys := make([]any, len(s.set))
		for i, m := range s.set {
			keys[i] = m
		}
		return keys
	case Object:
		if s.obj != nil && !reflect.TypeOf(s.obj).Comparable() {
			return []any{fmt.Sprintf("%v", s.obj)}
		}
		return []any{s.obj}
	default:
		return []any{s.num}
	}
}

func updateFreqMap(a *Aggregator, s *sample) {
	for _, k := range a.freqKeys(s) {
		if _, seen := a.freq[k]; !seen {
			a.order = append(a.order, k)
		}
		a.freq[k]++
	}
}

func updateFreqMax(a *Aggregator, s *sample) {
	for _, k := range a.freqKeys(s) {
		if n := a.freq[k]; n > a.freqMax {
			a.freqMax = n
		}
	}
}

// Count returns the number of accepted samples
func (a *Aggregator) Count() int {
	return a.count
}

// Same reports whether every sample equalled the first one. An empty
// aggregator is trivially same.
func (a *Aggregator) Same() bool {
	return a.same
}

func (a *Aggregator) Min() float64 {
	return a.min
}

func (a *Aggregator) Max() float64 {
	return a.max
}

func (a *Aggregator) Range() float64 {
	return a.max - a.min
}

func (a *Aggregator) Center() float64 {
	return (a.min + a.max) * 0.5
}

func (a *Aggregator) Sum() float64 {
	return a.sum
}

func (a *Aggregator) SumLog() float64 {
	return a.sumLog
}

func (a *Aggregator) SumRec() float64 {
	return a.sumRec
}

func (a *Aggregator) Product() float64 {
	return a.product
}

// Mean returns the running (Welford) mean
func (a *Aggregator) Mean() float64 {
	if !a.shape.queries[runningMean] {
		return 0
	}
	return a.ak
}

func (a *Aggregator) GeometricMean() float64 {
	if a.count == 0 || !a.shape.queries[SumLog] {
		return 0
	}
	return math.Exp(a.sumLog / float64(a.count))
}

func (a *Aggregator) HarmonicMean() float64 {
	if a.count == 0 || !a.shape.queries[SumRec] || a.sumRec == 0 {
		return 0
	}
	return float64(a.count) / a.sumRec
}

// Variance returns the sample variance M2/(n-1); zero for fewer than two samples.
func (a *Aggregator) Variance() float64 {
	if a.count < 2 || !a.shape.queries[runningM2] {
		return 0
	}
	return a.qk / float64(a.count-1)
}

func (a *Aggregator) StdDev() float64 {
	return math.Sqrt(a.Variance())
}

// Median returns the numeric median, averaging the two middle samples for an
// even count.
func (a *Aggregator) Median() float64 {
	if len(a.sortedNum) == 0 {
		return 0
	}
	m, err := stats.Median(a.sortedNum)
	if err != nil {
		return 0
	}
	return m
}

// MedianString returns the lower middle sample of a Sequence aggregator.
func (a *Aggregator) MedianString() string {
	n := len(a.sortedStr)
	if n == 0 {
		return ""
	}
	return a.sortedStr[(n-1)/2]
}

func (a *Aggregator) Sorted() []float64 {
	return append([]float64(nil), a.sortedNum...)
}

func (a *Aggregator) SortedStrings() []string {
	return append([]string(nil), a.sortedStr...)
}

// FreqMap returns a copy of the value frequencies
func (a *Aggregator) FreqMap() map[any]int {
	out := make(map[any]int, len(a.freq))
	for k, v := range a.freq {
		out[k] = v
	}
	return out
}

func (a *Aggregator) FreqMax() int {
	return a.freqMax
}

// Modes returns the most frequent values in order of first appearance.
func (a *Aggregator) Modes() []any {
	if a.freqMax == 0 {
		return nil
	}
	var modes []any
	for _, k := range a.order {
		if a.freq[k] == a.freqMax {
			modes = append(modes, k)
		}
	}
	return modes
}

func (a *Aggregator) Union() []string {
	return sortedMembers(a.union)
}

func (a *Aggregator) Intersection() []string {
	return sortedMembers(a.intersection)
}

// Difference returns the members that occurred in an odd number of samples.
func (a *Aggregator) Difference() []string {
	return sortedMembers(a.difference)
}

func sortedMembers(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for m := range set {
		out = append(out, m)
	}
	sort.Strings(out)
	return out
}

// Subseq returns the longest substring shared by every sample.
func (a *Aggregator) Subseq() string {
	return a.subseq.best()
}

// SubseqStarts reports whether Subseq is a prefix of every sample.
func (a *Aggregator) SubseqStarts() bool {
	return a.subseq.anchoredStart()
}

// SubseqEnds reports whether Subseq is a suffix of every sample.
func (a *Aggregator) SubseqEnds() bool {
	return a.subseq.anchoredEnd()
}

// Result returns the value of q. Value statistics of an empty aggregator are
// nil; queries outside the query set yield ErrQueryNotRequested.
func (a *Aggregator) Result(q Query) (any, error) {
	if !a.shape.queries[q] {
		return nil, fmt.Errorf("%w: %s", ErrQueryNotRequested, q)
	}
	switch q {
	case Count:
		return a.count, nil
	case Same:
		return a.same, nil
	case FreqMap:
		return a.FreqMap(), nil
	case FreqMax:
		return a.freqMax, nil
	case Modes:
		return a.Modes(), nil
	case Union:
		return a.Union(), nil
	case Intersection:
		return a.Intersection(), nil
	case Difference:
		return a.Difference(), nil
	case Subseq:
		return a.Subseq(), nil
	case SubseqStarts:
		return a.SubseqStarts(), nil
	case SubseqEnds:
		return a.SubseqEnds(), nil
	case Sum:
		return a.sum, nil
	case SumLog:
		return a.sumLog, nil
	case SumRec:
		return a.sumRec, nil
	case Sorted:
		if a.shape.kind == Sequence {
			return a.SortedStrings(), nil
		}
		return a.Sorted(), nil
	}
	if a.count == 0 {
		return nil, nil
	}
	switch q {
	case Min:
		return a.min, nil
	case Max:
		return a.max, nil
	case Range:
		return a.Range(), nil
	case Center:
		return a.Center(), nil
	case Product:
		return a.product, nil
	case Mean:
		return a.Mean(), nil
	case GeometricMean:
		return a.GeometricMean(), nil
	case HarmonicMean:
		return a.HarmonicMean(), nil
	case Variance:
		return a.Variance(), nil
	case StdDev:
		return a.StdDev(), nil
	case Median:
		if a.shape.kind == Sequence {
			return a.MedianString(), nil
		}
		return a.Median(), nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedQuery, q)
}
