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
Package types provides the configuration structures of batchops.

Preferences are shared by every category; Options are kept per category
(modifiers, materials, groups).

# Sources

Settings start from DefaultPreferences, or one of the presets, and can be
overlaid from a file and from the environment:

	prefs, err := types.LoadPreferences("batchops.yaml")
	if err != nil {
		return err
	}
	if err := prefs.ApplyEnv(); err != nil {
		return err
	}

A preferences file looks like:

	refresh_interval: 0.25
	default_select_state: false
	materials:
	  search_in: SCENE
	  paste_mode: OR
	  synchronized: true

Environment variables use the BATCHOPS_ prefix, for example
BATCHOPS_REFRESH_INTERVAL=1 or BATCHOPS_GROUPS_SYNCHRONIZED=true. Variables
already present in the environment win over values in .env files.

# Presets

	DefaultPreferences()       // auto-refresh every 0.5s, rows selected by default
	ManualRefreshPreferences() // refresh only when forced or tagged
	SynchronizedPreferences()  // copy, paste and options shared by all categories
*/
package types
