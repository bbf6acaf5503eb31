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
	"testing"

	"github.com/qgl2/go-qgl2/pkg/qgl2/ast"
	"github.com/qgl2/go-qgl2/pkg/util/source"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func kinds(t *testing.T, input string) []uint {
	tokens, errs := Lex(*source.NewSourceFile("test.py", []byte(input)))
	require.Empty(t, errs)
	//
	result := make([]uint, len(tokens))
	//
	for i, tok := range tokens {
		result[i] = tok.Kind
	}
	//
	return result
}

func Test_Lex_Keywords(t *testing.T) {
	assert.Equal(t, []uint{KEYWORD_FOR, IDENTIFIER, KEYWORD_IN, IDENTIFIER, NEWLINE, END_OF},
		kinds(t, "for format in inputs"))
}

func Test_Lex_Numbers(t *testing.T) {
	assert.Equal(t, []uint{NUMBER, FLOAT, FLOAT, NUMBER, FLOAT, NEWLINE, END_OF},
		kinds(t, "10 1.5 1e-3 0x1F .5"))
}

func Test_Lex_Strings(t *testing.T) {
	assert.Equal(t, []uint{STRING, STRING, STRING, NEWLINE, END_OF},
		kinds(t, `'q1' "q\"2" """doc
string"""`))
}

func Test_Lex_Indentation(t *testing.T) {
	input := "def f():\n    X90(q)\n\n    # comment\n    Y90(q)\nZ90(q)\n"
	expected := []uint{
		KEYWORD_DEF, IDENTIFIER, LBRACE, RBRACE, COLON, NEWLINE,
		INDENT, IDENTIFIER, LBRACE, IDENTIFIER, RBRACE, NEWLINE,
		IDENTIFIER, LBRACE, IDENTIFIER, RBRACE, NEWLINE,
		DEDENT, IDENTIFIER, LBRACE, IDENTIFIER, RBRACE, NEWLINE,
		END_OF,
	}
	//
	assert.Equal(t, expected, kinds(t, input))
}

func Test_Lex_NewlinesInBrackets(t *testing.T) {
	assert.Equal(t, []uint{IDENTIFIER, LBRACE, IDENTIFIER, COMMA, IDENTIFIER, RBRACE, NEWLINE, END_OF},
		kinds(t, "f(a,\n        b)\n"))
}

func Test_Lex_ClosesBlocksAtEof(t *testing.T) {
	assert.Equal(t, []uint{KEYWORD_IF, IDENTIFIER, COLON, NEWLINE, INDENT, KEYWORD_PASS, NEWLINE, DEDENT, END_OF},
		kinds(t, "if x:\n    pass"))
}

func Test_Lex_BadIndentation(t *testing.T) {
	_, errs := Lex(*source.NewSourceFile("test.py", []byte("if x:\n        a\n    b\n")))
	//
	require.Len(t, errs, 1)
	assert.Equal(t, "unindent does not match any outer indentation level", errs[0].Message())
}

func Test_Lex_UnknownText(t *testing.T) {
	_, errs := Lex(*source.NewSourceFile("test.py", []byte("x = $\n")))
	//
	require.Len(t, errs, 1)
	assert.Equal(t, "unknown text encountered", errs[0].Message())
}

func parse(t *testing.T, input string) (*ast.Arena, ast.NodeID) {
	arena, root, errs := Parse(source.NewSourceFile("test.py", []byte(input)))
	require.Empty(t, errs)
	//
	return arena, root
}

func parseError(t *testing.T, input string) source.SyntaxError {
	_, _, errs := Parse(source.NewSourceFile("test.py", []byte(input)))
	require.Len(t, errs, 1)
	//
	return errs[0]
}

// Check that parsing then printing gives back the (normalised) input.
func checkRoundTrip(t *testing.T, input string) {
	arena, root := parse(t, input)
	assert.Equal(t, input, arena.Dump(root, 0))
}

func Test_Parse_Function(t *testing.T) {
	checkRoundTrip(t, "@qgl2decl\ndef flip(q: qreg, n: classical=3):\n    for i in range(n):\n        X90(q)\n")
}

func Test_Parse_Stub(t *testing.T) {
	input := "@qgl2stub('QGL.PulsePrimitives', 'X90')\ndef X90(q: qreg, amp=1.0):\n    pass\n"
	arena, root := parse(t, input)
	//
	assert.Equal(t, input, arena.Dump(root, 0))
	//
	fn := arena.Node(root).Body[0]
	decorators := arena.Decorators(fn)
	require.Len(t, decorators, 1)
	assert.True(t, arena.Node(decorators[0]).Flag)
	assert.Len(t, arena.Node(decorators[0]).Children, 2)
	assert.Len(t, arena.Params(fn), 2)
}

func Test_Parse_Imports(t *testing.T) {
	checkRoundTrip(t, "import qgl2.qgl1 as q1\nfrom .util import helper, flip as f\nfrom qgl2.qgl1 import *\n")
	//
	arena, root := parse(t, "from ..lib import x\n")
	imp := arena.Node(arena.Node(root).Body[0])
	assert.Equal(t, 2, imp.Level)
	assert.Equal(t, "lib", imp.Name)
}

func Test_Parse_BracketedImports(t *testing.T) {
	arena, root := parse(t, "from a import (b,\n    c,\n)\n")
	//
	assert.Equal(t, "from a import b, c\n", arena.Dump(root, 0))
}

func Test_Parse_Control(t *testing.T) {
	checkRoundTrip(t, "if x == 1:\n    X90(q1)\nelse:\n    Y90(q1)\nwhile not MEAS(q1):\n    X(q1)\n")
}

func Test_Parse_Elif(t *testing.T) {
	arena, root := parse(t, "if a:\n    pass\nelif b:\n    pass\n")
	//
	assert.Equal(t, "if a:\n    pass\nelse:\n    if b:\n        pass\n", arena.Dump(root, 0))
}

func Test_Parse_With(t *testing.T) {
	checkRoundTrip(t, "with concur:\n    with seq:\n        X90(q1)\n    Y90(q2)\n")
}

func Test_Parse_Assignments(t *testing.T) {
	checkRoundTrip(t, "q1 = QRegister('q1')\n(a, b) = (1, 2)\nx += 2\nqs[0] = q1\n")
}

func Test_Parse_Precedence(t *testing.T) {
	arena, root := parse(t, "x = -1 + 2 * 3 ** 2 < 4 and not y\n")
	//
	assert.Equal(t, "x = (((-1) + (2 * (3 ** 2))) < 4) and (not y)\n", arena.Dump(root, 0))
}

func Test_Parse_Postfix(t *testing.T) {
	checkRoundTrip(t, "qgl2.qgl1.X90(qs[-1], amp=0.5)\n")
}

func Test_Parse_Collections(t *testing.T) {
	checkRoundTrip(t, "x = [1, 'a', None, True]\ny = (1,)\n")
}

func Test_Parse_SimpleStatementsOnOneLine(t *testing.T) {
	arena, root := parse(t, "X90(q1); Y90(q1)\nif x: pass\n")
	//
	assert.Equal(t, "X90(q1)\nY90(q1)\nif x:\n    pass\n", arena.Dump(root, 0))
}

func Test_Parse_Spans(t *testing.T) {
	arena, root := parse(t, "def f():\n    X90(q1)\n")
	//
	fn := arena.Node(root).Body[0]
	stmt := arena.Node(fn).Body[0]
	node := arena.Node(stmt)
	assert.Equal(t, "X90(q1)", node.File.Text(node.Span))
	assert.Equal(t, "def f()", node.File.Text(arena.Node(fn).Span))
}

func Test_Parse_Invalid_01(t *testing.T) {
	err := parseError(t, "def f()\n    pass\n")
	assert.Equal(t, "unexpected token", err.Message())
}

func Test_Parse_Invalid_02(t *testing.T) {
	err := parseError(t, "def f():\npass\n")
	assert.Equal(t, "expected an indented block", err.Message())
}

func Test_Parse_Invalid_03(t *testing.T) {
	err := parseError(t, "x = 1\n    y = 2\n")
	assert.Equal(t, "unexpected indent", err.Message())
}

func Test_Parse_Invalid_04(t *testing.T) {
	err := parseError(t, "f(x) = 1\n")
	assert.Equal(t, "invalid assignment target", err.Message())
}

func Test_Parse_Invalid_05(t *testing.T) {
	err := parseError(t, "f(a=1, b)\n")
	assert.Equal(t, "positional argument follows keyword argument", err.Message())
}
