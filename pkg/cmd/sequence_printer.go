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
package cmd

import (
	"io"
	"math"

	"github.com/qgl2/go-qgl2/pkg/qgl2/sequence"
	"github.com/qgl2/go-qgl2/pkg/util/termio"
)

// SequencePrinter encapsulates various configuration options useful for
// printing the sequences of a program side by side, with barriers sharing a
// label aligned on the same row.
type SequencePrinter struct {
	// Determine maximum width to print
	maxCellWidth uint
	// Enable ANSI
	ansiEscapes bool
}

// NewSequencePrinter constructs a default printer.
func NewSequencePrinter() *SequencePrinter {
	return &SequencePrinter{math.MaxUint, false}
}

// AnsiEscapes can be used to enable or disable the use of ANSI escape sequences
// (e.g. for showing colour in a terminal, etc).
func (p *SequencePrinter) AnsiEscapes(enable bool) *SequencePrinter {
	p.ansiEscapes = enable
	return p
}

// MaxCellWidth sets the maximum width to use for the cell data.
func (p *SequencePrinter) MaxCellWidth(width uint) *SequencePrinter {
	p.maxCellWidth = width
	return p
}

// Print a given program using the configured printer.
func (p *SequencePrinter) Print(w io.Writer, program *sequence.Program) error {
	var (
		rows  = alignSequences(program)
		width = uint(len(program.Resources))
		tp    = termio.NewTablePrinter(width, 1+uint(len(rows)))
	)
	// Initialise column titles
	for i, r := range program.Resources {
		tp.Set(uint(i), 0, r)
		tp.SetEscape(uint(i), 0, termio.NewAnsiEscape().Bold().FgColour(termio.TERM_WHITE))
	}
	// Fill table
	for j, row := range rows {
		for i, insn := range row {
			if insn == nil {
				continue
			}
			//
			tp.Set(uint(i), uint(j+1), insn.String())
			tp.SetEscape(uint(i), uint(j+1), opcodeEscape(insn.Op))
		}
	}
	//
	tp.SetMaxWidth(p.maxCellWidth)
	tp.AnsiEscapes(p.ansiEscapes)
	//
	return tp.Print(w)
}

// Arrange the sequences of a program into rows, such that all barriers sharing
// a label occupy the same row.  Instructions other than barriers are placed as
// early as possible.
func alignSequences(program *sequence.Program) [][]*sequence.Instruction {
	var (
		rows      [][]*sequence.Instruction
		positions = make([]int, len(program.Resources))
	)
	//
	next := func(i int) *sequence.Instruction {
		insns := program.Sequence(program.Resources[i])
		//
		if positions[i] < len(insns) {
			return &insns[positions[i]]
		}
		//
		return nil
	}
	//
	for {
		var (
			row      = make([]*sequence.Instruction, len(program.Resources))
			label    string
			progress bool
		)
		// Place non-barrier instructions first
		for i := range program.Resources {
			if insn := next(i); insn != nil && insn.Op != sequence.BARRIER {
				row[i] = insn
				positions[i]++
				progress = true
			}
		}
		// Otherwise, place the first pending barrier on all of its resources
		for i := range program.Resources {
			if insn := next(i); !progress && insn != nil && (label == "" || insn.Label == label) {
				label = insn.Label
				row[i] = insn
				positions[i]++
			}
		}
		//
		if !progress && label == "" {
			return rows
		}
		//
		rows = append(rows, row)
	}
}

func opcodeEscape(op sequence.Opcode) termio.AnsiEscape {
	switch op {
	case sequence.BARRIER, sequence.WAIT:
		return termio.NewAnsiEscape().FgColour(termio.TERM_CYAN)
	case sequence.IF, sequence.ELSE, sequence.ENDIF, sequence.LOOP, sequence.ENDLOOP:
		return termio.NewAnsiEscape().FgColour(termio.TERM_MAGENTA)
	default:
		return termio.NewAnsiEscape()
	}
}
