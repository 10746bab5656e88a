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
Package category turns the entities of one kind, as found on the objects in
scope, into a table of summary rows: one row for all entities, then one row
per distinct idname in sorted order.

# Schema

The aggregated attributes are declared up front:

	schema := category.MustSchema(
		category.Attribute{Name: "show_viewport", Kind: aggregator.Bool, Default: true},
		category.Attribute{Name: "diffuse_color", Kind: aggregator.Number, Size: 3},
	)

Numbers show their mean, booleans and strings their most frequent value,
enums the union of their members. Each cell also says whether every entity
agreed.

# Refresh

Refresh is cheap to call on every redraw. It compares the object count and
the active object with the previous scan and only rescans when they differ,
when the category was tagged with TagRefresh, when forced, or when
auto-refresh is on and the refresh interval has elapsed.

When the set of idnames changes, row exclusions are reset to the configured
default and a pending rename in this category is cancelled.

# Actions

Assign, Remove, Purge, MergeIdentical, Paste, Select, SetAttr, Rename and
Apply push one undo checkpoint to the host, run the bulk operation and tag the
category. Actions on the All row cover every row that is not excluded.
*/
package category
