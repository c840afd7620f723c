// Copyright 2020 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package texttab lays out fixed-width text tables.
package texttab

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

// Table does layout of text-based tables.
//
// Its building methods return the Table so callers can chain them.
type Table struct {
	rows [][]cell
}

type cell struct {
	value string
	right bool
	fill  rune // if non-zero, repeat to the column width
}

// A CellOption modifies a cell.
type CellOption func(c *cell)

var (
	// Left aligns a cell to the left of its column. This is the
	// default.
	Left CellOption = func(c *cell) { c.right = false }
	// Right aligns a cell to the right of its column.
	Right CellOption = func(c *cell) { c.right = true }
)

// Row starts a new row in table t.
func (t *Table) Row() *Table {
	t.rows = append(t.rows, nil)
	return t
}

// Cell adds a cell to the current row.
func (t *Table) Cell(value string, opts ...CellOption) *Table {
	if len(t.rows) == 0 {
		t.Row()
	}
	c := cell{value: value}
	for _, o := range opts {
		o(&c)
	}
	r := len(t.rows) - 1
	t.rows[r] = append(t.rows[r], c)
	return t
}

// Cellf is like Cell but formats its value with fmt.Sprintf.
func (t *Table) Cellf(format string, args ...interface{}) *Table {
	return t.Cell(fmt.Sprintf(format, args...))
}

// Rule adds a row that draws a horizontal line under every column
// of the table.
func (t *Table) Rule() *Table {
	t.rows = append(t.rows, []cell{{fill: '-'}})
	return t
}

// Format lays out table t and writes it to w. Columns are separated
// by two spaces and lines carry no trailing space.
func (t *Table) Format(w io.Writer) error {
	var ws []int
	for _, row := range t.rows {
		for i, c := range row {
			if i >= len(ws) {
				ws = append(ws, 0)
			}
			ws[i] = max(ws[i], utf8.RuneCountInString(c.value))
		}
	}

	var line strings.Builder
	for _, row := range t.rows {
		line.Reset()
		if len(row) == 1 && row[0].fill != 0 {
			total := 0
			for i, cw := range ws {
				if i > 0 {
					total += 2
				}
				total += cw
			}
			line.WriteString(strings.Repeat(string(row[0].fill), total))
		} else {
			for i, c := range row {
				if i > 0 {
					line.WriteString("  ")
				}
				pad := ws[i] - utf8.RuneCountInString(c.value)
				if c.right {
					line.WriteString(strings.Repeat(" ", pad))
					line.WriteString(c.value)
				} else {
					line.WriteString(c.value)
					line.WriteString(strings.Repeat(" ", pad))
				}
			}
		}
		if _, err := fmt.Fprintln(w, strings.TrimRight(line.String(), " ")); err != nil {
			return err
		}
	}
	return nil
}
