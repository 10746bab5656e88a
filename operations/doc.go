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
Package operations implements the bulk edits applied across many objects:
assign, remove, purge, merge of identical entities, copy and paste, selection
and attribute setting.

Each entity kind has one implementation of EntityOperations, chosen with For:

	ops, err := operations.For(host.Material, h)
	report, err := ops.Assign(operations.AssignRequest{
		Mode:    operations.AssignReplace,
		Objects: h.Objects(host.Selection),
		Src:     []string{"Old"},
		Dst:     []string{"New"},
	})

Modifiers are per-object attachments and are recreated on paste; materials
and groups are reference-counted datablocks shared between objects, so they
can also be purged and merged.

The host may refuse individual changes. Such failures are logged, collected
in the Report and never stop the rest of the batch; the returned error is
reserved for invalid requests.
*/
package operations
