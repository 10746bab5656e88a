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

/*
Package aggregator provides streaming statistics over attribute samples.

An Aggregator is bound to one sample Kind and one query set. The query set is
closed over its dependencies and compiled once into an ordered list of update
steps; the compiled shape is cached per (kind, query set, convert) so that the
thousands of aggregators built during one category refresh share it. Add runs
only the steps the query set needs.

# Kinds and queries

	Number, Bool  count same min max range center sum sum_log sum_rec product
	              mean geometric_mean harmonic_mean variance stddev sorted
	              median freq_map freq_max modes
	Enum          count same freq_map freq_max modes union intersection difference
	Sequence      count same sorted median freq_map freq_max modes
	              subseq subseq_starts subseq_ends
	Object        count same freq_map freq_max modes

Requesting a query that is not listed for the kind fails at construction with
ErrUnsupportedQuery.

# Usage

	agg, err := aggregator.New(aggregator.Number, []aggregator.Query{aggregator.StdDev})
	if err != nil {
		return err
	}
	for _, v := range samples {
		_ = agg.Add(v)
	}
	fmt.Println(agg.Count(), agg.StdDev())

Pattern detection for batch renaming:

	agg, _ := aggregator.New(aggregator.Sequence, []aggregator.Query{aggregator.SubseqStarts, aggregator.SubseqEnds})
	for _, name := range []string{"Cube.001", "Cube.002"} {
		_ = agg.Add(name)
	}
	agg.Subseq()       // "Cube.00"
	agg.SubseqStarts() // true

VectorAggregator fans samples out to one Aggregator per axis.
*/
package aggregator
