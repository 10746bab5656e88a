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

package table

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"unicode/utf8"
)

// Write renders rows as a bordered text table.
// Columns follow fieldOrder; columns not named there are appended in
// alphabetical order. Missing cells are printed empty.
func Write(w io.Writer, rows []map[string]any, fieldOrder []string) {
	if len(rows) == 0 {
		fmt.Fprintln(w, "(0 rows)")
		return
	}

	columnSet := make(map[string]bool)
	for _, row := range rows {
		for col := range row {
			columnSet[col] = true
		}
	}
	columns := make([]string, 0, len(columnSet))
	for _, field := range fieldOrder {
		if columnSet[field] {
			columns = append(columns, field)
			delete(columnSet, field)
		}
	}
	rest := make([]string, 0, len(columnSet))
	for col := range columnSet {
		rest = append(rest, col)
	}
	sort.Strings(rest)
	columns = append(columns, rest...)

	cells := make([][]string, len(rows))
	widths := make([]int, len(columns))
	for i, col := range columns {
		widths[i] = max(utf8.RuneCountInString(col), 4)
	}
	for r, row := range rows {
		cells[r] = make([]string, len(columns))
		for i, col := range columns {
			if v, ok := row[col]; ok && v != nil {
				cells[r][i] = fmt.Sprintf("%v", v)
			}
			widths[i] = max(widths[i], utf8.RuneCountInString(cells[r][i]))
		}
	}

	Border(w, widths)
	writeLine(w, columns, widths)
	Border(w, widths)
	for _, line := range cells {
		writeLine(w, line, widths)
	}
	Border(w, widths)
	fmt.Fprintf(w, "(%d rows)\n", len(rows))
}

// Border writes a horizontal border for the given column widths.
func Border(w io.Writer, widths []int) {
	var b strings.Builder
	b.WriteByte('+')
	for _, width := range widths {
		b.WriteString(strings.Repeat("-", width+2))
		b.WriteByte('+')
	}
	fmt.Fprintln(w, b.String())
}

func writeLine(w io.Writer, cells []string, widths []int) {
	var b strings.Builder
	b.WriteByte('|')
	for i, cell := range cells {
		b.WriteByte(' ')
		b.WriteString(cell)
		b.WriteString(strings.Repeat(" ", widths[i]-utf8.RuneCountInString(cell)))
		b.WriteString(" |")
	}
	fmt.Fprintln(w, b.String())
}
