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
package ast

import "fmt"

// Kind identifies the form of a syntax node.  The set of kinds is closed: every
// traversal switches over all kinds and panics on an unknown one.
type Kind uint8

// The layout of each kind is documented alongside.  "Children" holds operand
// expressions, whilst "Body" and "Else" hold statement lists.
const (
	// INVALID is never stored in an arena, except for the sentinel node.
	INVALID Kind = iota
	// MODULE (Body: top-level statements)
	MODULE
	// FUNCTION_DEF (Name; Children: DECORATOR* PARAM*; Body)
	FUNCTION_DEF
	// DECORATOR (Name: dotted name; Children: arguments; Flag: has argument list)
	DECORATOR
	// PARAM (Name; Annotation; Children: optional default)
	PARAM
	// PASS (no operands)
	PASS
	// RETURN (Children: optional value)
	RETURN
	// ASSIGN (Children: target, value)
	ASSIGN
	// AUG_ASSIGN (Op; Children: target, value)
	AUG_ASSIGN
	// EXPR_STMT (Children: expression)
	EXPR_STMT
	// IF (Children: condition; Body; Else)
	IF
	// FOR (Children: target, iterable; Body)
	FOR
	// WHILE (Children: condition; Body)
	WHILE
	// WITH (Children: context expression; Body)
	WITH
	// IMPORT (Children: ALIAS*)
	IMPORT
	// IMPORT_FROM (Name: module; Level: leading dots; Children: ALIAS*)
	IMPORT_FROM
	// ALIAS (Name; AsName)
	ALIAS
	// NAME (Name)
	NAME
	// CONSTANT (Value)
	CONSTANT
	// ATTRIBUTE (Name: attribute; Children: value)
	ATTRIBUTE
	// CALL (Children: function, positional arguments, KEYWORD*; Call: resolution)
	CALL
	// KEYWORD (Name; Children: value)
	KEYWORD
	// SUBSCRIPT (Children: value, index)
	SUBSCRIPT
	// LIST (Children: elements)
	LIST
	// TUPLE (Children: elements)
	TUPLE
	// UNARY_OP (Op; Children: operand)
	UNARY_OP
	// BIN_OP (Op; Children: left, right)
	BIN_OP
	// COMPARE (Op; Children: left, right)
	COMPARE
	// BOOL_OP (Op; Children: left, right)
	BOOL_OP
	// INLINED_BLOCK (Name: callee; Body; InlinedFrom: the original call)
	INLINED_BLOCK
)

var kindNames = [...]string{
	INVALID:       "invalid",
	MODULE:        "module",
	FUNCTION_DEF:  "def",
	DECORATOR:     "decorator",
	PARAM:         "param",
	PASS:          "pass",
	RETURN:        "return",
	ASSIGN:        "assign",
	AUG_ASSIGN:    "augassign",
	EXPR_STMT:     "expr",
	IF:            "if",
	FOR:           "for",
	WHILE:         "while",
	WITH:          "with",
	IMPORT:        "import",
	IMPORT_FROM:   "from",
	ALIAS:         "alias",
	NAME:          "name",
	CONSTANT:      "constant",
	ATTRIBUTE:     "attribute",
	CALL:          "call",
	KEYWORD:       "keyword",
	SUBSCRIPT:     "subscript",
	LIST:          "list",
	TUPLE:         "tuple",
	UNARY_OP:      "unaryop",
	BIN_OP:        "binop",
	COMPARE:       "compare",
	BOOL_OP:       "boolop",
	INLINED_BLOCK: "inlined",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	//
	panic(fmt.Sprintf("unknown node kind %d", k))
}

// IsStatement determines whether nodes of this kind appear in statement lists.
func (k Kind) IsStatement() bool {
	switch k {
	case FUNCTION_DEF, PASS, RETURN, ASSIGN, AUG_ASSIGN, EXPR_STMT, IF, FOR, WHILE, WITH, IMPORT, IMPORT_FROM,
		INLINED_BLOCK:
		return true
	case INVALID, MODULE, DECORATOR, PARAM, ALIAS, NAME, CONSTANT, ATTRIBUTE, CALL, KEYWORD, SUBSCRIPT, LIST, TUPLE,
		UNARY_OP, BIN_OP, COMPARE, BOOL_OP:
		return false
	default:
		panic(fmt.Sprintf("unknown node kind %d", k))
	}
}

// CallKind records what a call node was resolved to during inlining.
type CallKind uint8

const (
	// UNRESOLVED indicates a call which has not (yet) been resolved.
	UNRESOLVED CallKind = iota
	// PRIMITIVE indicates a call to an opaque instruction supplied by an
	// intrinsic module.
	PRIMITIVE
	// STUB indicates a call to a stub, whose implementation is supplied
	// externally at code-generation time.
	STUB
	// BUILTIN indicates a call evaluated by the compiler itself (e.g. range,
	// QRegister).
	BUILTIN
)

// CallTarget records the resolution of a call.  For stubs, Module and Symbol
// name the external implementation; for primitives they name the intrinsic
// module and imported symbol.
type CallTarget struct {
	Kind   CallKind
	Module string
	Symbol string
}

// Qualified returns the fully qualified name of the target.
func (p CallTarget) Qualified() string {
	if p.Module == "" {
		return p.Symbol
	}
	//
	return p.Module + "." + p.Symbol
}
