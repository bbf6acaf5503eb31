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
	"math"
	"math/bits"
	"slices"
	"strings"

	"github.com/qgl2/go-qgl2/pkg/qgl2/ast"
	"github.com/qgl2/go-qgl2/pkg/qgl2/diag"
)

// MAX_SEQUENCE_LENGTH bounds the number of elements in a statically
// constructed list, tuple or string.
const MAX_SEQUENCE_LENGTH = 1 << 20

// Names of functions evaluated by the compiler itself.
var builtins = []string{"range", "len", "enumerate", "zip", "list", "abs", "min", "max", "int", "float", "str",
	"QRegister"}

func isBuiltin(name string) bool {
	return slices.Contains(builtins, name)
}

// Argument is an evaluated argument of a call.
type Argument struct {
	// Keyword of a keyword argument, or empty for a positional argument.
	Keyword string
	Value   Value
}

func (p Argument) String() string {
	if p.Keyword != "" {
		return fmt.Sprintf("%s=%s", p.Keyword, p.Value.Argument())
	}
	//
	return p.Value.Argument()
}

// Evaluator statically evaluates expressions in a flattened program.  Values
// which cannot be determined at compile time are represented as runtime
// values, whilst expressions which are invalid are reported and evaluate to
// undefined values (which then propagate silently).  Problems which make
// further compilation meaningless are recorded as a fatal error, which the
// caller retrieves with Fatal.
type Evaluator struct {
	arena *ast.Arena
	diags *diag.Diagnostics
	fatal *diag.FatalError
}

// NewEvaluator constructs an evaluator for expressions in a given arena.
func NewEvaluator(arena *ast.Arena, diags *diag.Diagnostics) *Evaluator {
	return &Evaluator{arena, diags, nil}
}

// Fatal returns the first fatal error encountered during evaluation, or nil.
func (p *Evaluator) Fatal() *diag.FatalError {
	return p.fatal
}

// Eval evaluates an expression within a given scope.
func (p *Evaluator) Eval(scope *Scope, id ast.NodeID) Value {
	node := p.arena.Node(id)
	//
	switch node.Kind {
	case ast.CONSTANT:
		return LiteralValue(node.Value)
	case ast.NAME:
		if binding := scope.Lookup(node.Name); binding != nil {
			return binding.Value
		}
		//
		return p.error(id, "unknown name %s", node.Name)
	case ast.LIST, ast.TUPLE:
		elements := make([]Value, len(node.Children))
		//
		for i, c := range node.Children {
			elements[i] = p.Eval(scope, c)
		}
		//
		if node.Kind == ast.LIST {
			return ListValue(elements...)
		}
		//
		return TupleValue(elements...)
	case ast.ATTRIBUTE:
		value := p.Eval(scope, node.Children[0])
		//
		if value.IsUndefined() {
			return value
		}
		//
		return RuntimeValue(fmt.Sprintf("%s.%s", operand(value), node.Name), value.CollectResources().ToArray())
	case ast.SUBSCRIPT:
		return p.evalSubscript(scope, id)
	case ast.CALL:
		return p.evalCall(scope, id)
	case ast.UNARY_OP:
		return p.evalUnary(scope, id)
	case ast.BIN_OP:
		return p.evalBinary(scope, id)
	case ast.COMPARE:
		return p.evalCompare(scope, id)
	case ast.BOOL_OP:
		return p.evalBoolean(scope, id)
	case ast.KEYWORD:
		return p.Eval(scope, node.Children[0])
	case ast.INVALID, ast.MODULE, ast.FUNCTION_DEF, ast.DECORATOR, ast.PARAM, ast.PASS, ast.RETURN, ast.ASSIGN,
		ast.AUG_ASSIGN, ast.EXPR_STMT, ast.IF, ast.FOR, ast.WHILE, ast.WITH, ast.IMPORT, ast.IMPORT_FROM,
		ast.ALIAS, ast.INLINED_BLOCK:
		panic(fmt.Sprintf("cannot evaluate %s node", node.Kind))
	default:
		panic(fmt.Sprintf("unknown node kind %d", node.Kind))
	}
}

// Arguments evaluates the arguments of a call, in the order given.
func (p *Evaluator) Arguments(scope *Scope, call ast.NodeID) []Argument {
	var args []Argument
	//
	for _, c := range p.arena.Node(call).Children[1:] {
		arg := p.arena.Node(c)
		//
		if arg.Kind == ast.KEYWORD {
			args = append(args, Argument{arg.Name, p.Eval(scope, arg.Children[0])})
		} else {
			args = append(args, Argument{"", p.Eval(scope, c)})
		}
	}
	//
	return args
}

// Iterate returns the elements of a static value which can be iterated over.
// Iterating a register yields a single-resource register per resource.
func Iterate(value Value) ([]Value, bool) {
	switch value.Kind {
	case LIST_VALUE, TUPLE_VALUE:
		return value.Elements, true
	case REGISTER_VALUE:
		elements := make([]Value, len(value.Resources))
		//
		for i, r := range value.Resources {
			elements[i] = RegisterValue(r)
		}
		//
		return elements, true
	case STRING_VALUE:
		var elements []Value
		//
		for _, c := range value.Str {
			elements = append(elements, StringValue(string(c)))
		}
		//
		return elements, true
	default:
		return nil, false
	}
}

func (p *Evaluator) evalCall(scope *Scope, id ast.NodeID) Value {
	var (
		node = p.arena.Node(id)
		name = node.Call.Symbol
	)
	//
	switch node.Call.Kind {
	case ast.BUILTIN:
		return p.evalBuiltin(scope, id, name, p.Arguments(scope, id))
	case ast.PRIMITIVE, ast.STUB:
		var (
			args      = p.Arguments(scope, id)
			texts     = make([]string, len(args))
			resources = make([]Value, len(args))
		)
		//
		for i, arg := range args {
			if arg.Value.IsUndefined() {
				return arg.Value
			}
			//
			texts[i], resources[i] = arg.String(), arg.Value
		}
		// The result of an instruction is only known at runtime.
		text := fmt.Sprintf("%s(%s)", name, strings.Join(texts, ", "))
		//
		return RuntimeValue(text, ListValue(resources...).CollectResources().ToArray())
	default:
		// Already reported by the inliner.
		p.diags.Escalate()
		return UndefinedValue(p.arena.Format(id))
	}
}

func (p *Evaluator) evalBuiltin(scope *Scope, id ast.NodeID, name string, args []Argument) Value {
	var values []Value
	//
	for _, arg := range args {
		if arg.Keyword != "" {
			return p.error(id, "unexpected keyword argument %s for %s", arg.Keyword, name)
		} else if arg.Value.IsUndefined() {
			return arg.Value
		}
		//
		values = append(values, arg.Value)
	}
	// Builtins over runtime values are themselves runtime values
	for _, v := range values {
		if !v.IsStatic() && name != "QRegister" {
			return RuntimeValue(p.arena.Format(id), ListValue(values...).CollectResources().ToArray())
		}
	}
	//
	switch name {
	case "QRegister":
		return p.evalRegister(id, values)
	case "range":
		return p.evalRange(id, values)
	case "len":
		if len(values) != 1 {
			return p.error(id, "len expects one argument")
		} else if values[0].Kind == REGISTER_VALUE {
			return IntValue(int64(len(values[0].Resources)))
		} else if elements, ok := Iterate(values[0]); ok {
			return IntValue(int64(len(elements)))
		}
		//
		return p.error(id, "object of type %s has no len()", values[0].typeName())
	case "list":
		if len(values) == 0 {
			return ListValue()
		} else if elements, ok := Iterate(values[0]); ok && len(values) == 1 {
			return ListValue(elements...)
		}
		//
		return p.error(id, "invalid arguments for list")
	case "enumerate":
		if len(values) == 0 || len(values) > 2 || (len(values) == 2 && values[1].Kind != INT_VALUE) {
			return p.error(id, "invalid arguments for enumerate")
		}
		//
		elements, ok := Iterate(values[0])
		//
		if !ok {
			return p.error(id, "object of type %s is not iterable", values[0].typeName())
		}
		//
		start := int64(0)
		//
		if len(values) == 2 {
			start = values[1].Int
		}
		//
		pairs := make([]Value, len(elements))
		//
		for i, e := range elements {
			pairs[i] = TupleValue(IntValue(start+int64(i)), e)
		}
		//
		return ListValue(pairs...)
	case "zip":
		return p.evalZip(id, values)
	case "abs":
		if len(values) != 1 || !values[0].IsNumeric() {
			return p.error(id, "invalid arguments for abs")
		} else if values[0].Kind == FLOAT_VALUE {
			return FloatValue(math.Abs(values[0].Float))
		}
		//
		return IntValue(max(values[0].asInt(), -values[0].asInt()))
	case "min", "max":
		return p.evalExtremum(id, name, values)
	case "int":
		if len(values) != 1 || !values[0].IsNumeric() {
			return p.error(id, "invalid arguments for int")
		}
		//
		return IntValue(int64(values[0].asFloat()))
	case "float":
		if len(values) != 1 || !values[0].IsNumeric() {
			return p.error(id, "invalid arguments for float")
		}
		//
		return FloatValue(values[0].asFloat())
	case "str":
		if len(values) != 1 {
			return p.error(id, "invalid arguments for str")
		} else if values[0].Kind == STRING_VALUE {
			return values[0]
		}
		//
		return StringValue(values[0].String())
	default:
		panic(fmt.Sprintf("unknown builtin %s", name))
	}
}

// Construct a register.  Each string argument names a resource, whilst an
// integer n names the resource "q<n>" and a register contributes its own
// resources.
func (p *Evaluator) evalRegister(id ast.NodeID, values []Value) Value {
	var resources []string
	//
	if len(values) == 0 {
		return p.error(id, "QRegister requires at least one resource")
	}
	//
	for _, v := range values {
		switch v.Kind {
		case STRING_VALUE:
			resources = append(resources, v.Str)
		case INT_VALUE:
			resources = append(resources, fmt.Sprintf("q%d", v.Int))
		case REGISTER_VALUE:
			resources = append(resources, v.Resources...)
		case RUNTIME_VALUE:
			return p.fail(id, "resource set cannot be statically determined")
		case UNDEFINED_VALUE:
			return v
		default:
			return p.error(id, "invalid resource %s in register", v.Argument())
		}
	}
	//
	for i, r := range resources {
		if slices.Contains(resources[:i], r) {
			return p.error(id, "duplicate resource %s in register", r)
		}
	}
	//
	return RegisterValue(resources...)
}

func (p *Evaluator) evalRange(id ast.NodeID, values []Value) Value {
	var (
		start, stop, step int64 = 0, 0, 1
		elements          []Value
	)
	//
	for _, v := range values {
		if v.Kind != INT_VALUE && v.Kind != BOOL_VALUE {
			return p.error(id, "range expects integer arguments")
		}
	}
	//
	switch len(values) {
	case 1:
		stop = values[0].asInt()
	case 2:
		start, stop = values[0].asInt(), values[1].asInt()
	case 3:
		start, stop, step = values[0].asInt(), values[1].asInt(), values[2].asInt()
	default:
		return p.error(id, "range expects between one and three arguments")
	}
	//
	if step == 0 {
		return p.error(id, "range step cannot be zero")
	}
	//
	if rangeLength(start, stop, step) > MAX_SEQUENCE_LENGTH {
		return p.error(id, "range exceeds %d elements", MAX_SEQUENCE_LENGTH)
	}
	//
	for i := start; (step > 0 && i < stop) || (step < 0 && i > stop); i += step {
		elements = append(elements, IntValue(i))
		// stop before wrapping around
		if (step > 0 && i > math.MaxInt64-step) || (step < 0 && i < math.MinInt64-step) {
			break
		}
	}
	//
	return ListValue(elements...)
}

func (p *Evaluator) evalZip(id ast.NodeID, values []Value) Value {
	var (
		columns [][]Value
		n       = math.MaxInt
	)
	//
	for _, v := range values {
		elements, ok := Iterate(v)
		//
		if !ok {
			return p.error(id, "object of type %s is not iterable", v.typeName())
		}
		//
		columns = append(columns, elements)
		n = min(n, len(elements))
	}
	//
	if len(columns) == 0 {
		return ListValue()
	}
	//
	rows := make([]Value, n)
	//
	for i := range rows {
		row := make([]Value, len(columns))
		//
		for j, column := range columns {
			row[j] = column[i]
		}
		//
		rows[i] = TupleValue(row...)
	}
	//
	return ListValue(rows...)
}

func (p *Evaluator) evalExtremum(id ast.NodeID, name string, values []Value) Value {
	// A single iterable argument supplies the candidates
	if len(values) == 1 {
		if elements, ok := Iterate(values[0]); ok {
			values = elements
		}
	}
	//
	if len(values) == 0 {
		return p.error(id, "%s of empty sequence", name)
	}
	//
	result := values[0]
	//
	for _, v := range values[1:] {
		if !v.IsNumeric() || !result.IsNumeric() {
			return p.error(id, "invalid arguments for %s", name)
		} else if (name == "min" && v.asFloat() < result.asFloat()) || (name == "max" && v.asFloat() > result.asFloat()) {
			result = v
		}
	}
	//
	return result
}

func (p *Evaluator) evalSubscript(scope *Scope, id ast.NodeID) Value {
	var (
		node  = p.arena.Node(id)
		value = p.Eval(scope, node.Children[0])
		index = p.Eval(scope, node.Children[1])
	)
	//
	if value.IsUndefined() || index.IsUndefined() {
		return UndefinedValue(p.arena.Format(id))
	} else if !value.IsStatic() || !index.IsStatic() {
		text := fmt.Sprintf("%s[%s]", operand(value), index.Argument())
		return RuntimeValue(text, ListValue(value, index).CollectResources().ToArray())
	} else if index.Kind != INT_VALUE && index.Kind != BOOL_VALUE {
		return p.error(id, "indices must be integers")
	}
	//
	elements, ok := Iterate(value)
	//
	if !ok {
		return p.error(id, "object of type %s is not subscriptable", value.typeName())
	}
	//
	i := index.asInt()
	//
	if i < 0 {
		i += int64(len(elements))
	}
	//
	if i < 0 || i >= int64(len(elements)) {
		return p.error(id, "index %d out of range", index.asInt())
	}
	//
	return elements[i]
}

func (p *Evaluator) evalUnary(scope *Scope, id ast.NodeID) Value {
	var (
		node  = p.arena.Node(id)
		value = p.Eval(scope, node.Children[0])
	)
	//
	switch {
	case value.IsUndefined():
		return value
	case !value.IsStatic():
		text := fmt.Sprintf("%s%s", node.Op, operand(value))
		//
		if node.Op == "not" {
			text = fmt.Sprintf("not %s", operand(value))
		}
		//
		return RuntimeValue(text, value.Resources)
	case node.Op == "not":
		return BoolValue(!value.Truth())
	case !value.IsNumeric():
		return p.error(id, "bad operand type for unary %s: %s", node.Op, value.typeName())
	case node.Op == "+":
		return value
	case value.Kind == FLOAT_VALUE:
		return FloatValue(-value.Float)
	default:
		return IntValue(-value.asInt())
	}
}

func (p *Evaluator) evalBinary(scope *Scope, id ast.NodeID) Value {
	var (
		node = p.arena.Node(id)
		lhs  = p.Eval(scope, node.Children[0])
		rhs  = p.Eval(scope, node.Children[1])
	)
	//
	return p.Binary(id, node.Op, lhs, rhs)
}

// Binary applies a binary operator to two values, reporting any errors against
// a given node.
func (p *Evaluator) Binary(id ast.NodeID, op string, lhs Value, rhs Value) Value {
	if lhs.IsUndefined() || rhs.IsUndefined() {
		return UndefinedValue(p.arena.Format(id))
	} else if !lhs.IsStatic() || !rhs.IsStatic() {
		return combine(lhs, op, rhs)
	} else if lhs.IsNumeric() && rhs.IsNumeric() {
		return p.evalArithmetic(id, op, lhs, rhs)
	}
	//
	switch {
	case op == "+" && lhs.Kind == rhs.Kind && lhs.Kind == STRING_VALUE:
		return StringValue(lhs.Str + rhs.Str)
	case op == "+" && lhs.Kind == rhs.Kind && lhs.IsSequence():
		return Value{Kind: lhs.Kind, Elements: slices.Concat(lhs.Elements, rhs.Elements)}
	case op == "+" && lhs.Kind == rhs.Kind && lhs.Kind == REGISTER_VALUE:
		return p.evalRegister(id, []Value{lhs, rhs})
	case op == "*" && rhs.Kind == INT_VALUE && (lhs.IsSequence() || lhs.Kind == STRING_VALUE):
		return p.repeat(id, lhs, rhs.Int)
	case op == "*" && lhs.Kind == INT_VALUE && (rhs.IsSequence() || rhs.Kind == STRING_VALUE):
		return p.repeat(id, rhs, lhs.Int)
	case op == "%" && lhs.Kind == STRING_VALUE:
		return p.error(id, "string formatting is not supported")
	default:
		return p.error(id, "unsupported operand types for %s: %s and %s", op, lhs.typeName(), rhs.typeName())
	}
}

func (p *Evaluator) evalArithmetic(id ast.NodeID, op string, lhs Value, rhs Value) Value {
	integral := lhs.Kind != FLOAT_VALUE && rhs.Kind != FLOAT_VALUE
	//
	if (op == "/" || op == "//" || op == "%") && rhs.asFloat() == 0 {
		return p.error(id, "division by zero")
	}
	//
	if integral {
		var (
			l, r   = lhs.asInt(), rhs.asInt()
			result int64
			ok     = true
		)
		//
		switch op {
		case "+":
			result, ok = addInt(l, r)
		case "-":
			result, ok = subInt(l, r)
		case "*":
			result, ok = mulInt(l, r)
		case "/":
			return FloatValue(float64(l) / float64(r))
		case "//":
			result = floorDiv(l, r)
		case "%":
			result = l - r*floorDiv(l, r)
		case "**":
			if integral = r >= 0; integral {
				result, ok = ipow(l, r)
			}
		default:
			integral = false
		}
		//
		if !ok {
			return p.error(id, "integer overflow")
		} else if integral {
			return IntValue(result)
		}
	}
	//
	l, r := lhs.asFloat(), rhs.asFloat()
	//
	switch op {
	case "+":
		return FloatValue(l + r)
	case "-":
		return FloatValue(l - r)
	case "*":
		return FloatValue(l * r)
	case "/":
		return FloatValue(l / r)
	case "//":
		return FloatValue(math.Floor(l / r))
	case "%":
		return FloatValue(l - r*math.Floor(l/r))
	case "**":
		return FloatValue(math.Pow(l, r))
	default:
		panic(fmt.Sprintf("unknown operator %s", op))
	}
}

func (p *Evaluator) evalCompare(scope *Scope, id ast.NodeID) Value {
	var (
		node = p.arena.Node(id)
		lhs  = p.Eval(scope, node.Children[0])
		rhs  = p.Eval(scope, node.Children[1])
	)
	//
	if lhs.IsUndefined() || rhs.IsUndefined() {
		return UndefinedValue(p.arena.Format(id))
	} else if !lhs.IsStatic() || !rhs.IsStatic() {
		return combine(lhs, node.Op, rhs)
	}
	//
	switch node.Op {
	case "==":
		return BoolValue(lhs.Equals(rhs))
	case "!=":
		return BoolValue(!lhs.Equals(rhs))
	case "in", "not in":
		var found bool
		//
		if lhs.Kind == STRING_VALUE && rhs.Kind == STRING_VALUE {
			found = strings.Contains(rhs.Str, lhs.Str)
		} else if elements, ok := Iterate(rhs); ok {
			found = slices.ContainsFunc(elements, lhs.Equals)
		} else {
			return p.error(id, "argument of type %s is not iterable", rhs.typeName())
		}
		//
		return BoolValue(found == (node.Op == "in"))
	}
	//
	var c int
	//
	switch {
	case lhs.IsNumeric() && rhs.IsNumeric():
		c = compareFloats(lhs.asFloat(), rhs.asFloat())
	case lhs.Kind == STRING_VALUE && rhs.Kind == STRING_VALUE:
		c = strings.Compare(lhs.Str, rhs.Str)
	default:
		return p.error(id, "%s not supported between %s and %s", node.Op, lhs.typeName(), rhs.typeName())
	}
	//
	switch node.Op {
	case "<":
		return BoolValue(c < 0)
	case "<=":
		return BoolValue(c <= 0)
	case ">":
		return BoolValue(c > 0)
	case ">=":
		return BoolValue(c >= 0)
	default:
		panic(fmt.Sprintf("unknown comparator %s", node.Op))
	}
}

// Boolean operators short-circuit when their left operand is static.
func (p *Evaluator) evalBoolean(scope *Scope, id ast.NodeID) Value {
	var (
		node = p.arena.Node(id)
		lhs  = p.Eval(scope, node.Children[0])
	)
	//
	if lhs.IsUndefined() {
		return lhs
	} else if lhs.IsStatic() {
		if lhs.Truth() == (node.Op == "or") {
			return lhs
		}
		//
		return p.Eval(scope, node.Children[1])
	}
	//
	rhs := p.Eval(scope, node.Children[1])
	//
	if rhs.IsUndefined() {
		return rhs
	}
	//
	return combine(lhs, node.Op, rhs)
}

// Record a fatal error (unless one was already recorded), evaluating to
// undefined.
func (p *Evaluator) fail(id ast.NodeID, msg string, args ...any) Value {
	if p.fatal == nil {
		node := p.arena.Node(id)
		p.fatal = p.diags.Fatal(node.File, node.Span, msg, args...)
	}
	//
	return UndefinedValue(p.arena.Format(id))
}

func (p *Evaluator) error(id ast.NodeID, msg string, args ...any) Value {
	node := p.arena.Node(id)
	p.diags.Error(node.File, node.Span, msg, args...)
	//
	return UndefinedValue(p.arena.Format(id))
}

// Combine two operands, at least one of which is a runtime value, into a
// runtime value.
func combine(lhs Value, op string, rhs Value) Value {
	var (
		text      = fmt.Sprintf("%s %s %s", operand(lhs), op, operand(rhs))
		resources = ListValue(lhs, rhs).CollectResources()
	)
	//
	return RuntimeValue(text, resources.ToArray())
}

// Format a value for use as an operand within runtime text, bracketing compound
// runtime expressions.
func operand(value Value) string {
	if value.Kind == RUNTIME_VALUE && strings.ContainsRune(value.Text, ' ') {
		return fmt.Sprintf("(%s)", value.Text)
	}
	//
	return value.Argument()
}

func (p *Evaluator) repeat(id ast.NodeID, value Value, n int64) Value {
	var (
		result = Value{Kind: value.Kind}
		size   = uint64(max(len(value.Str), len(value.Elements)))
	)
	//
	if n <= 0 || size == 0 {
		return result
	} else if size > MAX_SEQUENCE_LENGTH/uint64(n) {
		return p.error(id, "repetition exceeds %d elements", MAX_SEQUENCE_LENGTH)
	}
	//
	for i := int64(0); i < n; i++ {
		result.Str += value.Str
		result.Elements = append(result.Elements, value.Elements...)
	}
	//
	return result
}

func floorDiv(l int64, r int64) int64 {
	q := l / r
	//
	if (l%r != 0) && ((l < 0) != (r < 0)) {
		q--
	}
	//
	return q
}

// Raise base to a non-negative power by repeated squaring, reporting false on
// overflow.
func ipow(base int64, exp int64) (int64, bool) {
	var (
		result = int64(1)
		ok     = true
	)
	//
	for exp > 0 {
		if exp&1 == 1 {
			if result, ok = mulInt(result, base); !ok {
				return 0, false
			}
		}
		//
		if exp >>= 1; exp > 0 {
			if base, ok = mulInt(base, base); !ok {
				return 0, false
			}
		}
	}
	//
	return result, true
}

func addInt(l int64, r int64) (int64, bool) {
	s := l + r
	return s, (s > l) == (r > 0)
}

func subInt(l int64, r int64) (int64, bool) {
	s := l - r
	return s, (s < l) == (r > 0)
}

func mulInt(l int64, r int64) (int64, bool) {
	neg := (l < 0) != (r < 0)
	hi, lo := bits.Mul64(absInt(l), absInt(r))
	//
	switch {
	case hi != 0:
		return 0, false
	case neg && lo <= 1<<63:
		return int64(-lo), true
	case !neg && lo < 1<<63:
		return int64(lo), true
	default:
		return 0, false
	}
}

func absInt(v int64) uint64 {
	if v < 0 {
		return uint64(-v)
	}
	//
	return uint64(v)
}

// Number of elements produced by range(start, stop, step), saturating at the
// maximum unsigned value.
func rangeLength(start int64, stop int64, step int64) uint64 {
	switch {
	case step > 0 && start < stop:
		return (uint64(stop-start)-1)/uint64(step) + 1
	case step < 0 && start > stop:
		return (uint64(start-stop)-1)/absInt(step) + 1
	default:
		return 0
	}
}

func compareFloats(l float64, r float64) int {
	switch {
	case l < r:
		return -1
	case l > r:
		return 1
	default:
		return 0
	}
}
