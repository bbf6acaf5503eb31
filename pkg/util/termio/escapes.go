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
	"strings"
)

// Terminal colours, as used by ANSI escape codes.
const (
	TERM_BLACK = uint(iota)
	TERM_RED
	TERM_GREEN
	TERM_YELLOW
	TERM_BLUE
	TERM_MAGENTA
	TERM_CYAN
	TERM_WHITE
)

// AnsiEscape represents an ANSI escape sequence used for formatting text in a
// terminal, built up from one or more numeric codes.
type AnsiEscape struct {
	codes []uint
}

// NewAnsiEscape constructs an empty escape.
func NewAnsiEscape() AnsiEscape {
	return AnsiEscape{nil}
}

// ResetAnsiEscape constructs an escape which resets all formatting.
func ResetAnsiEscape() AnsiEscape {
	return AnsiEscape{[]uint{0}}
}

// Bold adds emboldening to this escape.
func (p AnsiEscape) Bold() AnsiEscape {
	return p.with(1)
}

// FgColour sets the foreground colour.
func (p AnsiEscape) FgColour(col uint) AnsiEscape {
	return p.with(30 + col)
}

func (p AnsiEscape) with(code uint) AnsiEscape {
	codes := make([]uint, len(p.codes), len(p.codes)+1)
	copy(codes, p.codes)
	//
	return AnsiEscape{append(codes, code)}
}

// Build constructs the final escape string.
func (p AnsiEscape) Build() string {
	var codes []string
	//
	for _, c := range p.codes {
		codes = append(codes, fmt.Sprintf("%d", c))
	}
	//
	return fmt.Sprintf("\033[%sm", strings.Join(codes, ";"))
}

// Wrap surrounds some text with this escape, resetting formatting afterwards.
// When disabled, or when this escape is empty, the text is returned unchanged.
func (p AnsiEscape) Wrap(text string, enable bool) string {
	if !enable || len(p.codes) == 0 {
		return text
	}
	//
	return p.Build() + text + ResetAnsiEscape().Build()
}
