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
package lex

import "github.com/qgl2/go-qgl2/pkg/util/source"

// Token associates a tag with a given range of items in the input.
type Token struct {
	Kind uint
	Span source.Span
}

// LexRule associates the items matched by a scanner with a given tag.
//
// nolint
type LexRule[T any] struct {
	scanner Scanner[T]
	tag     uint
}

// Rule constructs a new lexing rule which maps matching items to a given tag.
func Rule[T any](scanner Scanner[T], tag uint) LexRule[T] {
	return LexRule[T]{scanner, tag}
}

// Lexer splits a sequence of items into tokens using an ordered list of rules.
// The first rule which matches at the current position determines the next
// token.
type Lexer[T any] struct {
	rules []LexRule[T]
	// Functions which may replace the tag of a token, given its items.
	retags map[uint]func([]T) (uint, bool)
}

// NewLexer constructs a lexer from a given set of rules.
func NewLexer[T any](rules ...LexRule[T]) *Lexer[T] {
	return &Lexer[T]{rules, make(map[uint]func([]T) (uint, bool))}
}

// Retag registers a function which is given the items of every token with a
// given tag, and which may replace that tag.  For example, keywords can be
// lexed as identifiers and then retagged.
func (p *Lexer[T]) Retag(tag uint, fn func([]T) (uint, bool)) *Lexer[T] {
	p.retags[tag] = fn
	return p
}

// Tokenize splits a given input into tokens.  The returned index is that of
// the first item which no rule matched or, when the whole input was matched,
// the length of the input.  A rule matching the empty remainder (e.g. an end of
// input marker) yields a token with an empty span.
func (p *Lexer[T]) Tokenize(input []T) ([]Token, int) {
	var (
		tokens []Token
		index  int
	)
	//
	for index <= len(input) {
		token, ok := p.match(input, index)
		//
		if !ok {
			break
		} else if index == len(input) {
			// End of input
			index++
		} else {
			index = token.Span.End()
		}
		//
		tokens = append(tokens, token)
	}
	//
	return tokens, min(index, len(input))
}

func (p *Lexer[T]) match(input []T, index int) (Token, bool) {
	for _, r := range p.rules {
		if n := r.scanner(input[index:]); n > 0 {
			var (
				end   = min(len(input), index+int(n))
				token = Token{r.tag, source.NewSpan(index, end)}
			)
			//
			if fn, ok := p.retags[r.tag]; ok {
				if tag, ok := fn(input[index:end]); ok {
					token.Kind = tag
				}
			}
			//
			return token, true
		}
	}
	//
	return Token{}, false
}
