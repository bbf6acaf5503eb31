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
package parser

import (
	"github.com/qgl2/go-qgl2/pkg/util/collection/stack"
	"github.com/qgl2/go-qgl2/pkg/util/source"
	"github.com/qgl2/go-qgl2/pkg/util/source/lex"
)

// Width of a tab stop when measuring indentation.
const tabWidth = 8

// Convert the raw token stream into one describing logical lines.  Whitespace
// and comments are dropped, blank lines are skipped and newlines inside
// brackets are ignored.  Changes in indentation at the start of each logical
// line are signalled with INDENT and DEDENT tokens, such that every INDENT is
// eventually matched by a DEDENT before END_OF.
func indent(srcfile source.File, tokens []lex.Token) ([]lex.Token, []source.SyntaxError) {
	var (
		result []lex.Token
		levels = stack.NewStack[int]()
		// Current bracket nesting
		depth int
		// Indicates whether we are at the start of a logical line
		start = true
	)
	// Outermost level
	levels.Push(0)
	//
	for _, t := range tokens {
		switch t.Kind {
		case WHITESPACE, COMMENT:
			continue
		case NEWLINE:
			if depth == 0 && !start {
				result = append(result, t)
				start = true
			}
			//
			continue
		case END_OF:
			eof := source.NewSpan(t.Span.Start(), t.Span.Start())
			// Terminate final line
			if !start {
				result = append(result, lex.Token{Kind: NEWLINE, Span: eof})
			}
			// Close all open blocks
			for levels.Peek(0) > 0 {
				levels.Pop()
				result = append(result, lex.Token{Kind: DEDENT, Span: eof})
			}
			//
			result = append(result, t)
			//
			continue
		}
		//
		if start {
			var (
				width, offset = measure(srcfile.Contents(), t.Span.Start())
				top           = levels.Peek(0)
			)
			//
			if width > top {
				levels.Push(width)
				result = append(result, lex.Token{Kind: INDENT, Span: source.NewSpan(offset, t.Span.Start())})
			} else if width < top {
				for levels.Peek(0) > width {
					levels.Pop()
					result = append(result, lex.Token{Kind: DEDENT, Span: source.NewSpan(t.Span.Start(), t.Span.Start())})
				}
				//
				if levels.Peek(0) != width {
					err := srcfile.SyntaxError(t.Span, "unindent does not match any outer indentation level")
					return nil, []source.SyntaxError{*err}
				}
			}
			//
			start = false
		}
		// Track brackets
		switch t.Kind {
		case LBRACE, LSQUARE:
			depth++
		case RBRACE, RSQUARE:
			depth = max(0, depth-1)
		}
		//
		result = append(result, t)
	}
	//
	return result, nil
}

// Measure the indentation of the line containing a given position, returning
// its width and the offset at which the line starts.
func measure(contents []rune, index int) (int, int) {
	var (
		offset = index
		width  = 0
	)
	// Find start of line
	for offset > 0 && contents[offset-1] != '\n' {
		offset--
	}
	//
	for i := offset; i < index; i++ {
		switch contents[i] {
		case '\t':
			width = (width/tabWidth + 1) * tabWidth
		case '\f':
			width = 0
		default:
			width++
		}
	}
	//
	return width, offset
}
