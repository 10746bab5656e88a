/*
 * Copyright 2024 The RuleGo Authors.
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

// Package cast coerces host attribute values into aggregator samples.
package cast

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/spf13/cast"
)

// ToFloat64E converts numbers, numeric strings and booleans to float64.
func ToFloat64E(v any) (float64, error) {
	if b, ok := v.(bool); ok {
		return BoolToFloat(b), nil
	}
	return cast.ToFloat64E(v)
}

// BoolToFloat maps false/true to 0/1.
func BoolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// ToBoolE converts v to bool; numbers are true when non-zero.
func ToBoolE(v any) (bool, error) {
	return cast.ToBoolE(v)
}

// ToStringE converts v to a string. nil is rejected so that a missing
// attribute is never mistaken for an empty name.
func ToStringE(v any) (string, error) {
	if v == nil {
		return "", fmt.Errorf("cannot convert nil to string")
	}
	return cast.ToStringE(v)
}

// ToStringSetE converts a set-like value into a sorted, de-duplicated slice.
// Accepted shapes are a single string, []string, []any, map[string]bool
// (true members only) and map[string]struct{}.
func ToStringSetE(v any) ([]string, error) {
	var members []string
	switch val := v.(type) {
	case nil:
		return nil, nil
	case string:
		members = []string{val}
	case []string:
		members = append(members, val...)
	case map[string]bool:
		for k, in := range val {
			if in {
				members = append(members, k)
			}
		}
	case map[string]struct{}:
		for k := range val {
			members = append(members, k)
		}
	default:
		s, err := cast.ToStringSliceE(v)
		if err != nil {
			return nil, fmt.Errorf("cannot convert %T to a string set: %w", v, err)
		}
		members = s
	}
	sort.Strings(members)
	out := members[:0]
	for i, m := range members {
		if i > 0 && m == members[i-1] {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

// Components returns the elements of a slice or array value as []any.
func Components(v any) ([]any, error) {
	if v == nil {
		return nil, fmt.Errorf("cannot index nil")
	}
	if items, ok := v.([]any); ok {
		return items, nil
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = rv.Index(i).Interface()
		}
		return out, nil
	default:
		return nil, fmt.Errorf("cannot index %T", v)
	}
}
