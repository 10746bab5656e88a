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

// Package rename turns the common substring of many names into an editable
// pattern and applies an edited pattern back onto each name.
//
// A pattern is a name with Wildcard markers standing for the parts that
// differ between names. For "Cube.001", "Cube.002" the pattern is "Cube.00…";
// editing it to "Box_…" renames the names to "Box_1" and "Box_2".
package rename

import (
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/rulego/batchops/aggregator"
)

// Wildcard marks a varying part of a pattern.
const Wildcard = "…"

// Queries are the aggregator queries Make needs.
var Queries = []aggregator.Query{aggregator.Subseq, aggregator.SubseqStarts, aggregator.SubseqEnds}

// Make builds the pattern for a common substring. A substring that is not
// anchored at the start or end of every name gets a wildcard on that side.
func Make(subseq string, starts, ends bool) string {
	if subseq == "" {
		return Wildcard
	}
	var sb strings.Builder
	if !starts {
		sb.WriteString(Wildcard)
	}
	sb.WriteString(subseq)
	if !ends {
		sb.WriteString(Wildcard)
	}
	return sb.String()
}

// FromAggregator builds the pattern from a Sequence aggregator fed with names.
// A single name is its own pattern.
func FromAggregator(a *aggregator.Aggregator) (string, error) {
	for _, q := range Queries {
		if !a.Has(q) {
			return "", fmt.Errorf("%w: %s", aggregator.ErrQueryNotRequested, q)
		}
	}
	if a.Count() == 1 {
		return a.Subseq(), nil
	}
	return Make(a.Subseq(), a.SubseqStarts(), a.SubseqEnds()), nil
}

// IsPattern reports whether value contains a wildcard.
func IsPattern(value string) bool {
	return strings.Contains(value, Wildcard)
}

// Pattern is a compiled source pattern.
type Pattern struct {
	src string
	re  *regexp.Regexp
}

var (
	cacheMu sync.RWMutex
	cache   = make(map[string]*Pattern)
)

// Compile compiles src; literal parts must match exactly, wildcards match
// any run of characters.
func Compile(src string) (*Pattern, error) {
	cacheMu.RLock()
	p, ok := cache[src]
	cacheMu.RUnlock()
	if ok {
		return p, nil
	}
	parts := strings.Split(src, Wildcard)
	for i, part := range parts {
		parts[i] = regexp.QuoteMeta(part)
	}
	re, err := regexp.Compile("^" + strings.Join(parts, "(.*?)") + "$")
	if err != nil {
		return nil, fmt.Errorf("compile rename pattern %q: %w", src, err)
	}
	p = &Pattern{src: src, re: re}
	cacheMu.Lock()
	cache[src] = p
	cacheMu.Unlock()
	return p, nil
}

func (p *Pattern) String() string {
	return p.src
}

// Apply rewrites name according to dst. The n-th wildcard of dst receives
// the text matched by the n-th wildcard of the source pattern; surplus
// wildcards in dst are dropped. Names that do not match are returned
// unchanged with ok false.
func (p *Pattern) Apply(name, dst string) (string, bool) {
	m := p.re.FindStringSubmatch(name)
	if m == nil {
		return name, false
	}
	captures := m[1:]
	parts := strings.Split(dst, Wildcard)
	var sb strings.Builder
	for i, part := range parts {
		if i > 0 && i-1 < len(captures) {
			sb.WriteString(captures[i-1])
		}
		sb.WriteString(part)
	}
	return sb.String(), true
}

// Apply compiles src and applies it to name.
func Apply(name, src, dst string) (string, error) {
	p, err := Compile(src)
	if err != nil {
		return name, err
	}
	out, _ := p.Apply(name, dst)
	return out, nil
}
