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
package compiler

import (
	"fmt"
	"strings"

	"github.com/qgl2/go-qgl2/pkg/qgl2/ast"
	"github.com/qgl2/go-qgl2/pkg/util/collection/set"
)

// ValueKind identifies the form of a statically evaluated value.
type ValueKind uint8

const (
	// NONE_VALUE is the value of None.
	NONE_VALUE ValueKind = iota
	// INT_VALUE is an integer.
	INT_VALUE
	// FLOAT_VALUE is a floating point number.
	FLOAT_VALUE
	// STRING_VALUE is a string.
	STRING_VALUE
	// BOOL_VALUE is a boolean.
	BOOL_VALUE
	// LIST_VALUE is a list of values.
	LIST_VALUE
	// TUPLE_VALUE is a tuple of values.
	TUPLE_VALUE
	// REGISTER_VALUE is an ordered list of resources.
	REGISTER_VALUE
	// RUNTIME_VALUE is a value which is only known when the program executes,
	// such as the result of a measurement.
	RUNTIME_VALUE
	// UNDEFINED_VALUE is the value of an expression which failed to evaluate.
	// The failure has already been reported.
	UNDEFINED_VALUE
)

// Value is the result of statically evaluating an expression.
type Value struct {
	Kind  ValueKind
	Int   int64
	Float float64
	Str   string
	Bool  bool
	// Elements of a list or tuple.
	Elements []Value
	// Resources of a register (in declaration order), or those on which a
	// runtime value depends (in sorted order).
	Resources []string
	// Source text of a runtime value.
	Text string
}

// NoneValue returns the value None.
func NoneValue() Value {
	return Value{Kind: NONE_VALUE}
}

// IntValue constructs an integer value.
func IntValue(n int64) Value {
	return Value{Kind: INT_VALUE, Int: n}
}

// FloatValue constructs a floating point value.
func FloatValue(f float64) Value {
	return Value{Kind: FLOAT_VALUE, Float: f}
}

// StringValue constructs a string value.
func StringValue(s string) Value {
	return Value{Kind: STRING_VALUE, Str: s}
}

// BoolValue constructs a boolean value.
func BoolValue(b bool) Value {
	return Value{Kind: BOOL_VALUE, Bool: b}
}

// ListValue constructs a list value.
func ListValue(elements ...Value) Value {
	return Value{Kind: LIST_VALUE, Elements: elements}
}

// TupleValue constructs a tuple value.
func TupleValue(elements ...Value) Value {
	return Value{Kind: TUPLE_VALUE, Elements: elements}
}

// RegisterValue constructs a register of one or more resources.
func RegisterValue(resources ...string) Value {
	return Value{Kind: REGISTER_VALUE, Resources: resources}
}

// RuntimeValue constructs a value which is unknown at compile time, described
// by a given piece of source text and depending on a given set of resources.
func RuntimeValue(text string, resources []string) Value {
	return Value{Kind: RUNTIME_VALUE, Text: text, Resources: resources}
}

// UndefinedValue constructs the value of an expression which failed to
// evaluate.
func UndefinedValue(text string) Value {
	return Value{Kind: UNDEFINED_VALUE, Text: text}
}

// LiteralValue converts a literal appearing in source into a value.
func LiteralValue(lit ast.Literal) Value {
	switch lit.Kind {
	case ast.NONE_LIT:
		return NoneValue()
	case ast.INT_LIT:
		return IntValue(lit.Int)
	case ast.FLOAT_LIT:
		return FloatValue(lit.Float)
	case ast.STRING_LIT:
		return StringValue(lit.String)
	case ast.BOOL_LIT:
		return BoolValue(lit.Bool)
	default:
		panic(fmt.Sprintf("unknown literal kind %d", lit.Kind))
	}
}

// IsStatic checks whether this value is completely known at compile time.
func (p Value) IsStatic() bool {
	switch p.Kind {
	case RUNTIME_VALUE, UNDEFINED_VALUE:
		return false
	case LIST_VALUE, TUPLE_VALUE:
		for _, e := range p.Elements {
			if !e.IsStatic() {
				return false
			}
		}
	}
	//
	return true
}

// IsUndefined checks whether this value (or any element of it) failed to
// evaluate.
func (p Value) IsUndefined() bool {
	switch p.Kind {
	case UNDEFINED_VALUE:
		return true
	case LIST_VALUE, TUPLE_VALUE:
		for _, e := range p.Elements {
			if e.IsUndefined() {
				return true
			}
		}
	}
	//
	return false
}

// IsResource checks whether this value is a register, or a list of registers.
func (p Value) IsResource() bool {
	switch p.Kind {
	case REGISTER_VALUE:
		return true
	case LIST_VALUE, TUPLE_VALUE:
		for _, e := range p.Elements {
			if !e.IsResource() {
				return false
			}
		}
		//
		return len(p.Elements) > 0
	default:
		return false
	}
}

// ContainsResource checks whether this value is, or contains, a register.
func (p Value) ContainsResource() bool {
	switch p.Kind {
	case REGISTER_VALUE:
		return true
	case LIST_VALUE, TUPLE_VALUE:
		for _, e := range p.Elements {
			if e.ContainsResource() {
				return true
			}
		}
	}
	//
	return false
}

// IsNumeric checks whether this value is an int or a float.  Booleans are
// treated as integers when used in arithmetic.
func (p Value) IsNumeric() bool {
	return p.Kind == INT_VALUE || p.Kind == FLOAT_VALUE || p.Kind == BOOL_VALUE
}

// IsSequence checks whether this value is a list or a tuple.
func (p Value) IsSequence() bool {
	return p.Kind == LIST_VALUE || p.Kind == TUPLE_VALUE
}

// CollectResources returns the set of resources referenced by this value.
func (p Value) CollectResources() *set.SortedSet[string] {
	resources := set.NewSortedSet[string]()
	p.collectResources(resources)
	//
	return resources
}

func (p Value) collectResources(resources *set.SortedSet[string]) {
	switch p.Kind {
	case REGISTER_VALUE, RUNTIME_VALUE:
		for _, r := range p.Resources {
			resources.Insert(r)
		}
	case LIST_VALUE, TUPLE_VALUE:
		for _, e := range p.Elements {
			e.collectResources(resources)
		}
	}
}

// Truth determines the truthiness of a static value.
func (p Value) Truth() bool {
	switch p.Kind {
	case NONE_VALUE:
		return false
	case INT_VALUE:
		return p.Int != 0
	case FLOAT_VALUE:
		return p.Float != 0
	case STRING_VALUE:
		return p.Str != ""
	case BOOL_VALUE:
		return p.Bool
	case LIST_VALUE, TUPLE_VALUE:
		return len(p.Elements) > 0
	case REGISTER_VALUE:
		return len(p.Resources) > 0
	default:
		panic(fmt.Sprintf("truth of non-static value %s", p.String()))
	}
}

// Equals checks whether two static values are equal.
func (p Value) Equals(other Value) bool {
	switch {
	case p.IsNumeric() && other.IsNumeric():
		return p.asFloat() == other.asFloat()
	case p.Kind != other.Kind:
		return false
	case p.Kind == STRING_VALUE:
		return p.Str == other.Str
	case p.Kind == NONE_VALUE:
		return true
	case p.Kind == REGISTER_VALUE:
		return strings.Join(p.Resources, ",") == strings.Join(other.Resources, ",")
	case p.IsSequence():
		if len(p.Elements) != len(other.Elements) {
			return false
		}
		//
		for i := range p.Elements {
			if !p.Elements[i].Equals(other.Elements[i]) {
				return false
			}
		}
		//
		return true
	default:
		return p.Text == other.Text
	}
}

// Convert a numeric value to an integer.
func (p Value) asInt() int64 {
	if p.Kind == BOOL_VALUE {
		if p.Bool {
			return 1
		}
		//
		return 0
	}
	//
	return p.Int
}

// Convert a numeric value to a float.
func (p Value) asFloat() float64 {
	if p.Kind == FLOAT_VALUE {
		return p.Float
	}
	//
	return float64(p.asInt())
}

// Argument formats this value as an instruction argument.  A register holding
// a single resource is written as the resource name.
func (p Value) Argument() string {
	if p.Kind == REGISTER_VALUE && len(p.Resources) == 1 {
		return p.Resources[0]
	}
	//
	return p.String()
}

func (p Value) String() string {
	switch p.Kind {
	case NONE_VALUE:
		return "None"
	case INT_VALUE:
		return ast.FormatLiteral(ast.Literal{Kind: ast.INT_LIT, Int: p.Int})
	case FLOAT_VALUE:
		return ast.FormatLiteral(ast.Literal{Kind: ast.FLOAT_LIT, Float: p.Float})
	case STRING_VALUE:
		return ast.FormatLiteral(ast.Literal{Kind: ast.STRING_LIT, String: p.Str})
	case BOOL_VALUE:
		return ast.FormatLiteral(ast.Literal{Kind: ast.BOOL_LIT, Bool: p.Bool})
	case LIST_VALUE:
		return fmt.Sprintf("[%s]", formatValues(p.Elements))
	case TUPLE_VALUE:
		if len(p.Elements) == 1 {
			return fmt.Sprintf("(%s,)", p.Elements[0].Argument())
		}
		//
		return fmt.Sprintf("(%s)", formatValues(p.Elements))
	case REGISTER_VALUE:
		names := make([]string, len(p.Resources))
		//
		for i, r := range p.Resources {
			names[i] = ast.FormatLiteral(ast.Literal{Kind: ast.STRING_LIT, String: r})
		}
		//
		return fmt.Sprintf("QRegister(%s)", strings.Join(names, ", "))
	case RUNTIME_VALUE, UNDEFINED_VALUE:
		return p.Text
	default:
		panic(fmt.Sprintf("unknown value kind %d", p.Kind))
	}
}

func formatValues(values []Value) string {
	var builder strings.Builder
	//
	for i, v := range values {
		if i != 0 {
			builder.WriteString(", ")
		}
		//
		builder.WriteString(v.Argument())
	}
	//
	return builder.String()
}

// Name of this value's type, as used in error messages.
func (p Value) typeName() string {
	switch p.Kind {
	case NONE_VALUE:
		return "NoneType"
	case INT_VALUE:
		return "int"
	case FLOAT_VALUE:
		return "float"
	case STRING_VALUE:
		return "str"
	case BOOL_VALUE:
		return "bool"
	case LIST_VALUE:
		return "list"
	case TUPLE_VALUE:
		return "tuple"
	case REGISTER_VALUE:
		return "QRegister"
	case RUNTIME_VALUE:
		return "runtime"
	case UNDEFINED_VALUE:
		return "undefined"
	default:
		panic(fmt.Sprintf("unknown value kind %d", p.Kind))
	}
}
