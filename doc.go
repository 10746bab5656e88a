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
Package batchops is the host-independent core of a batch editing panel for a
3D content-creation application. It summarizes the modifiers, materials and
groups of many objects at once and applies bulk edits to them.

# Getting Started

The application implements host.Host; memhost provides an in-memory one:

	h := memhost.New()
	cube := h.AddObject("Cube")
	h.AssignMaterial(cube, h.NewMaterial("Wood", nil))

	b, err := batchops.New(h)
	if err != nil {
		panic(err)
	}
	b.Refresh(false)
	b.Materials().Table(os.Stdout)

Refresh is meant to be called on every redraw. Each category rescans only
when the selection changed, when it was tagged, or when the auto-refresh
interval elapsed.

# Categories

	b.Modifiers() // per-object modifier stacks, keyed by modifier type
	b.Materials() // material slots, keyed by material name
	b.Groups()    // group membership, keyed by group name

Each category exposes its rows and the bulk actions (assign, remove, purge,
merge identical, copy and paste, select, rename). See package category.

# Synchronization

Categories marked as synchronized in their options share copy, paste and
option changes:

	b.SetSynchronized(host.Material, true)
	b.SetSynchronized(host.Group, true)
	b.SyncCopy()
	b.SyncPaste(operations.PasteOr)

# Configuration

Preferences come from types.DefaultPreferences or a file loaded with
types.LoadPreferences, optionally overridden from BATCHOPS_* environment
variables, and are passed with WithPreferences.
*/
package batchops
