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
	"github.com/qgl2/go-qgl2/pkg/util/source"
	"github.com/qgl2/go-qgl2/pkg/util/source/lex"
)

// END_OF signals "end of file"
const END_OF uint = 0

// WHITESPACE signals horizontal whitespace (including line continuations)
const WHITESPACE uint = 1

// COMMENT signals "# ... \n"
const COMMENT uint = 2

// NEWLINE signals the end of a logical line
const NEWLINE uint = 3

// INDENT signals an increase in indentation
const INDENT uint = 4

// DEDENT signals a decrease in indentation
const DEDENT uint = 5

// LBRACE signals "("
const LBRACE uint = 6

// RBRACE signals ")"
const RBRACE uint = 7

// LSQUARE signals "["
const LSQUARE uint = 8

// RSQUARE signals "]"
const RSQUARE uint = 9

// COMMA signals ","
const COMMA uint = 10

// COLON signals ":"
const COLON uint = 11

// DOT signals "."
const DOT uint = 12

// AT signals "@"
const AT uint = 13

// SEMICOLON signals ";"
const SEMICOLON uint = 14

// NUMBER signals an integer number
const NUMBER uint = 15

// FLOAT signals a floating point number
const FLOAT uint = 16

// STRING signals a quoted string
const STRING uint = 17

// IDENTIFIER signals a variable or function name
const IDENTIFIER uint = 20

// KEYWORD_DEF signals a function definition
const KEYWORD_DEF uint = 21

// KEYWORD_IF signals an if statement
const KEYWORD_IF uint = 22

// KEYWORD_ELIF signals an else-if branch
const KEYWORD_ELIF uint = 23

// KEYWORD_ELSE signals an else branch
const KEYWORD_ELSE uint = 24

// KEYWORD_FOR signals a for loop
const KEYWORD_FOR uint = 25

// KEYWORD_IN signals "in"
const KEYWORD_IN uint = 26

// KEYWORD_WHILE signals a while loop
const KEYWORD_WHILE uint = 27

// KEYWORD_WITH signals a with block
const KEYWORD_WITH uint = 28

// KEYWORD_IMPORT signals an import
const KEYWORD_IMPORT uint = 29

// KEYWORD_FROM signals a from-import
const KEYWORD_FROM uint = 30

// KEYWORD_AS signals an alias
const KEYWORD_AS uint = 31

// KEYWORD_RETURN signals a return statement
const KEYWORD_RETURN uint = 32

// KEYWORD_PASS signals a pass statement
const KEYWORD_PASS uint = 33

// KEYWORD_AND signals logical conjunction
const KEYWORD_AND uint = 34

// KEYWORD_OR signals logical disjunction
const KEYWORD_OR uint = 35

// KEYWORD_NOT signals logical negation
const KEYWORD_NOT uint = 36

// KEYWORD_TRUE signals "True"
const KEYWORD_TRUE uint = 37

// KEYWORD_FALSE signals "False"
const KEYWORD_FALSE uint = 38

// KEYWORD_NONE signals "None"
const KEYWORD_NONE uint = 39

// RIGHTARROW signals "->"
const RIGHTARROW uint = 50

// EQUALS signals "="
const EQUALS uint = 51

// EQUALS_EQUALS signals "=="
const EQUALS_EQUALS uint = 52

// NOT_EQUALS signals "!="
const NOT_EQUALS uint = 53

// LESS_THAN signals "<"
const LESS_THAN uint = 54

// LESS_THAN_EQUALS signals "<="
const LESS_THAN_EQUALS uint = 55

// GREATER_THAN signals ">"
const GREATER_THAN uint = 56

// GREATER_THAN_EQUALS signals ">="
const GREATER_THAN_EQUALS uint = 57

// ADD signals "+"
const ADD uint = 58

// SUB signals "-"
const SUB uint = 59

// MUL signals "*"
const MUL uint = 60

// DIV signals "/"
const DIV uint = 61

// FLOOR_DIV signals "//"
const FLOOR_DIV uint = 62

// REM signals "%"
const REM uint = 63

// POW signals "**"
const POW uint = 64

// ADD_EQUALS signals "+="
const ADD_EQUALS uint = 65

// SUB_EQUALS signals "-="
const SUB_EQUALS uint = 66

// MUL_EQUALS signals "*="
const MUL_EQUALS uint = 67

// DIV_EQUALS signals "/="
const DIV_EQUALS uint = 68

// Keywords are lexed as identifiers and then retagged, which avoids treating a
// prefix of an identifier (e.g. "format") as a keyword.
var keywords = map[string]uint{
	"def":    KEYWORD_DEF,
	"if":     KEYWORD_IF,
	"elif":   KEYWORD_ELIF,
	"else":   KEYWORD_ELSE,
	"for":    KEYWORD_FOR,
	"in":     KEYWORD_IN,
	"while":  KEYWORD_WHILE,
	"with":   KEYWORD_WITH,
	"import": KEYWORD_IMPORT,
	"from":   KEYWORD_FROM,
	"as":     KEYWORD_AS,
	"return": KEYWORD_RETURN,
	"pass":   KEYWORD_PASS,
	"and":    KEYWORD_AND,
	"or":     KEYWORD_OR,
	"not":    KEYWORD_NOT,
	"True":   KEYWORD_TRUE,
	"False":  KEYWORD_FALSE,
	"None":   KEYWORD_NONE,
}

// Rule for describing whitespace.  A backslash immediately before a newline
// joins two physical lines.
var whitespace lex.Scanner[rune] = lex.Many(lex.Or(
	lex.Unit(' '),
	lex.Unit('\t'),
	lex.Unit('\f'),
	lex.Unit('\\', '\n'),
	lex.Unit('\\', '\r', '\n')))

// Rule for describing newlines
var newline lex.Scanner[rune] = lex.Or(lex.Unit('\n'), lex.Unit('\r', '\n'))

// Rule for describing numbers.  Allowing (and ignoring) '_' in the middle of a
// number for readability.
var (
	digit    = lex.Within('0', '9')
	digits   = lex.SequenceNullableLast(digit, lex.Many(lex.Or(digit, lex.Unit('_'))))
	fraction = lex.SequenceNullableLast(lex.Unit('.'), digits)
	exponent = lex.Or(
		lex.Sequence(lex.Or(lex.Unit('e'), lex.Unit('E')), lex.Or(lex.Unit('+'), lex.Unit('-')), digits),
		lex.Sequence(lex.Or(lex.Unit('e'), lex.Unit('E')), digits),
	)
	hexRest = lex.Many(lex.Or(
		digit,
		lex.Within('A', 'F'),
		lex.Within('a', 'f'),
		lex.Unit('_'),
	))

	hexadecimal = lex.SequenceNullableLast(lex.Or(lex.String("0x"), lex.String("0X")), hexRest)
	floating    = lex.Or(
		lex.SequenceNullableLast(digits, fraction, exponent),
		lex.Sequence(digits, exponent),
		lex.SequenceNullableLast(lex.Unit('.'), digits, exponent),
	)
)

var identifierStart lex.Scanner[rune] = lex.Or(
	lex.Unit('_'),
	lex.Within('a', 'z'),
	lex.Within('A', 'Z'))

var identifierRest lex.Scanner[rune] = lex.Many(lex.Or(
	lex.Unit('_'),
	lex.Within('0', '9'),
	lex.Within('a', 'z'),
	lex.Within('A', 'Z')))

// Rule for describing identifiers
var identifier lex.Scanner[rune] = lex.SequenceNullableLast(identifierStart, identifierRest)

// Rule for describing strings in quotes, where triple-quoted strings may span
// multiple lines.
var strung lex.Scanner[rune] = lex.Or(
	lex.Delimited(`"""`, `"""`, '\\', true),
	lex.Delimited(`'''`, `'''`, '\\', true),
	lex.Delimited(`"`, `"`, '\\', false),
	lex.Delimited(`'`, `'`, '\\', false),
)

// Comments start with '#' and continue until a newline or EOF.
var comment lex.Scanner[rune] = lex.SequenceNullableLast(lex.Unit('#'), lex.Until('\n'))

// lexing rules
var rules []lex.LexRule[rune] = []lex.LexRule[rune]{
	lex.Rule(comment, COMMENT),
	lex.Rule(newline, NEWLINE),
	lex.Rule(whitespace, WHITESPACE),
	lex.Rule(lex.Unit('('), LBRACE),
	lex.Rule(lex.Unit(')'), RBRACE),
	lex.Rule(lex.Unit('['), LSQUARE),
	lex.Rule(lex.Unit(']'), RSQUARE),
	lex.Rule(lex.Unit(','), COMMA),
	lex.Rule(lex.Unit(':'), COLON),
	lex.Rule(lex.Unit(';'), SEMICOLON),
	lex.Rule(lex.Unit('@'), AT),
	lex.Rule(lex.Unit('-', '>'), RIGHTARROW),
	lex.Rule(lex.Unit('=', '='), EQUALS_EQUALS),
	lex.Rule(lex.Unit('!', '='), NOT_EQUALS),
	lex.Rule(lex.Unit('<', '='), LESS_THAN_EQUALS),
	lex.Rule(lex.Unit('>', '='), GREATER_THAN_EQUALS),
	lex.Rule(lex.Unit('+', '='), ADD_EQUALS),
	lex.Rule(lex.Unit('-', '='), SUB_EQUALS),
	lex.Rule(lex.Unit('*', '='), MUL_EQUALS),
	lex.Rule(lex.Unit('/', '='), DIV_EQUALS),
	lex.Rule(lex.Unit('*', '*'), POW),
	lex.Rule(lex.Unit('/', '/'), FLOOR_DIV),
	lex.Rule(lex.Unit('<'), LESS_THAN),
	lex.Rule(lex.Unit('>'), GREATER_THAN),
	lex.Rule(lex.Unit('='), EQUALS),
	lex.Rule(lex.Unit('+'), ADD),
	lex.Rule(lex.Unit('-'), SUB),
	lex.Rule(lex.Unit('*'), MUL),
	lex.Rule(lex.Unit('/'), DIV),
	lex.Rule(lex.Unit('%'), REM),
	lex.Rule(floating, FLOAT),
	lex.Rule(hexadecimal, NUMBER),
	lex.Rule(digits, NUMBER),
	lex.Rule(lex.Unit('.'), DOT),
	lex.Rule(strung, STRING),
	lex.Rule(identifier, IDENTIFIER),
	lex.Rule(lex.Eof[rune](), END_OF),
}

// Lex a given source file into a sequence of zero or more tokens, along with
// any syntax errors arising.  The resulting tokens have whitespace and comments
// removed, and carry explicit NEWLINE, INDENT and DEDENT tokens describing the
// block structure of the file.
func Lex(srcfile source.File) ([]lex.Token, []source.SyntaxError) {
	var (
		lexer = lex.NewLexer(rules...).Retag(IDENTIFIER, keyword)
		// Lex as many tokens as possible
		tokens, index = lexer.Tokenize(srcfile.Contents())
	)
	// Check whether anything was left (if so this is an error)
	if index < len(srcfile.Contents()) {
		err := srcfile.SyntaxError(source.NewSpan(index, index+1), "unknown text encountered")
		// errors
		return nil, []source.SyntaxError{*err}
	}
	//
	return indent(srcfile, tokens)
}

// Identifiers which are reserved as keywords.
func keyword(text []rune) (uint, bool) {
	kind, ok := keywords[string(text)]
	return kind, ok
}
