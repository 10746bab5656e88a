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
Package condition filters entities with boolean expressions.

Expressions are compiled once with the expr-lang library and evaluated
against an entity's attributes (see Env). Two helper functions are
available besides the expr-lang built-ins:

	like_match(text, pattern) - LIKE matching with % and _ wildcards
	is_null(value)            - true when the attribute is missing

Example, restricting a category to visible subdivision modifiers:

	cond, err := condition.NewExprCondition(`idname == "SUBSURF" && show_viewport`)
	if err != nil {
		return err
	}
	keep := condition.Entities(cond)

and to materials following a naming convention:

	cond, _ := condition.NewExprCondition(`like_match(name, 'Metal%') && !use_fake_user`)
*/
package condition
