// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0
package termio

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

// TablePrinter is useful for printing tables to a terminal, where columns are
// padded to a common width.
type TablePrinter struct {
	widths        []uint
	rows          [][]string
	escapes       [][]AnsiEscape
	enableEscapes bool
}

// NewTablePrinter constructs a new table with given dimensions.
func NewTablePrinter(width uint, height uint) *TablePrinter {
	widths := make([]uint, width)
	rows := make([][]string, height)
	escapes := make([][]AnsiEscape, height)
	// Construct the table
	for i := uint(0); i < height; i++ {
		rows[i] = make([]string, width)
		escapes[i] = make([]AnsiEscape, width)
	}
	//
	return &TablePrinter{widths, rows, escapes, false}
}

// Set the contents of a given cell in this table.
func (p *TablePrinter) Set(col uint, row uint, val string) {
	p.widths[col] = max(p.widths[col], uint(utf8.RuneCountInString(val)))
	p.rows[row][col] = val
}

// Width returns the number of columns in this table.
func (p *TablePrinter) Width() uint {
	return uint(len(p.widths))
}

// Height returns the number of rows in this table.
func (p *TablePrinter) Height() uint {
	return uint(len(p.rows))
}

// SetEscape sets the escape to use when printing the contents of a given cell.
func (p *TablePrinter) SetEscape(col uint, row uint, escape AnsiEscape) {
	p.escapes[row][col] = escape
}

// AnsiEscapes enables or disables the use of ANSI escapes (e.g. for showing
// colour).
func (p *TablePrinter) AnsiEscapes(enable bool) {
	p.enableEscapes = enable
}

// SetMaxWidth puts an upper bound on the width of any column.
func (p *TablePrinter) SetMaxWidth(width uint) {
	for i := range p.widths {
		p.widths[i] = min(p.widths[i], width)
	}
}

// Print the table to a given writer.  Cells wider than their column are
// truncated.
func (p *TablePrinter) Print(w io.Writer) error {
	var builder strings.Builder
	//
	for i, row := range p.rows {
		for j, cell := range row {
			width := int(p.widths[j])
			//
			if utf8.RuneCountInString(cell) > width {
				cell = string([]rune(cell)[:max(width-2, 0)]) + ".."
			}
			//
			if j != 0 {
				builder.WriteString(" | ")
			}
			// Pad before colouring, so escapes do not affect alignment
			padded := fmt.Sprintf("%-*s", width, cell)
			builder.WriteString(p.escapes[i][j].Wrap(padded, p.enableEscapes))
		}
		//
		builder.WriteString("\n")
	}
	//
	_, err := io.WriteString(w, builder.String())
	//
	return err
}
