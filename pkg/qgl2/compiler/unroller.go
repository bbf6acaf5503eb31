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
	"github.com/qgl2/go-qgl2/pkg/qgl2/diag"
	"github.com/qgl2/go-qgl2/pkg/qgl2/sequence"
	"github.com/qgl2/go-qgl2/pkg/util/collection/set"
	log "github.com/sirupsen/logrus"
)

// Names of the block markers recognised in with statements.
const (
	CONCUR_BLOCK = "concur"
	SEQ_BLOCK    = "seq"
)

// Unroller statically evaluates a flattened program to produce its schedule.
// Bounded loops are unrolled, statically determined conditionals are pruned,
// and the statements of each parallel block are grouped into branches touching
// disjoint resources.  Each statement of the flattened program is annotated
// with the resources it touches.
type Unroller struct {
	program *Flattened
	arena   *ast.Arena
	diags   *diag.Diagnostics
	eval    *Evaluator
}

// NewUnroller constructs an unroller for a given flattened program.
func NewUnroller(program *Flattened, diags *diag.Diagnostics) *Unroller {
	return &Unroller{program, program.Arena, diags, NewEvaluator(program.Arena, diags)}
}

// Unroll the flattened program into a schedule, where each top-level statement
// which touches at least one resource becomes a step.
func (p *Unroller) Unroll() (*sequence.Schedule, *diag.FatalError) {
	var (
		scope = NewScope(nil)
		steps [][]sequence.Item
	)
	//
	for _, stmt := range p.program.Body {
		items, err := p.stmt(scope, stmt)
		//
		if err != nil {
			return nil, err
		}
		//
		if items = p.placed(stmt, items, "instruction touches no resources"); len(items) > 0 {
			steps = append(steps, items)
		}
	}
	//
	schedule := sequence.NewSchedule(steps...)
	log.Debugf("scheduled %d steps over %d resources", len(steps), schedule.Resources.Len())
	//
	return schedule, nil
}

// Unroll a block of statements within a given scope.
func (p *Unroller) block(scope *Scope, stmts []ast.NodeID) ([]sequence.Item, *diag.FatalError) {
	var items []sequence.Item
	//
	for _, stmt := range stmts {
		nitems, err := p.stmt(scope, stmt)
		//
		if err != nil {
			return nil, err
		}
		//
		items = append(items, nitems...)
	}
	//
	return items, nil
}

// Unroll a single statement, annotating it with the resources it touches.
func (p *Unroller) stmt(scope *Scope, id ast.NodeID) ([]sequence.Item, *diag.FatalError) {
	items, err := p.unrollStmt(scope, id)
	//
	if err == nil {
		err = p.eval.Fatal()
	}
	//
	if err != nil {
		return nil, err
	}
	//
	p.annotate(id, items)
	//
	return items, nil
}

func (p *Unroller) unrollStmt(scope *Scope, id ast.NodeID) ([]sequence.Item, *diag.FatalError) {
	node := p.arena.Node(id)
	//
	switch node.Kind {
	case ast.ASSIGN:
		return p.assignStmt(scope, id)
	case ast.AUG_ASSIGN:
		var (
			target = node.Children[0]
			lhs    = p.eval.Eval(scope, target)
			rhs    = p.eval.Eval(scope, node.Children[1])
		)
		//
		p.assign(scope, target, p.eval.Binary(id, node.Op, lhs, rhs))
		//
		return nil, nil
	case ast.EXPR_STMT:
		return p.exprStmt(scope, id)
	case ast.IF:
		return p.ifStmt(scope, id)
	case ast.WHILE:
		return p.whileStmt(scope, id)
	case ast.FOR:
		return p.forStmt(scope, id)
	case ast.WITH:
		return p.withStmt(scope, id)
	case ast.INLINED_BLOCK:
		return p.block(scope, node.Body)
	case ast.PASS, ast.RETURN, ast.FUNCTION_DEF, ast.IMPORT, ast.IMPORT_FROM:
		// removed during inlining
		return nil, nil
	case ast.INVALID, ast.MODULE, ast.DECORATOR, ast.PARAM, ast.ALIAS, ast.NAME, ast.CONSTANT, ast.ATTRIBUTE,
		ast.CALL, ast.KEYWORD, ast.SUBSCRIPT, ast.LIST, ast.TUPLE, ast.UNARY_OP, ast.BIN_OP, ast.COMPARE,
		ast.BOOL_OP:
		panic(fmt.Sprintf("unexpected %s node in statement position", node.Kind))
	default:
		panic(fmt.Sprintf("unknown node kind %d", node.Kind))
	}
}

func (p *Unroller) assignStmt(scope *Scope, id ast.NodeID) ([]sequence.Item, *diag.FatalError) {
	var (
		node   = p.arena.Node(id)
		target = node.Children[0]
		value  = node.Children[1]
	)
	// Instructions produce runtime values
	if isInstruction(p.arena, value) {
		instr, err := p.instruction(scope, value)
		//
		if err != nil || instr == nil {
			return nil, err
		}
		//
		p.assignRuntime(scope, target, instr.Resources.ToArray())
		//
		return []sequence.Item{instr}, nil
	}
	//
	v := p.eval.Eval(scope, value)
	// Check the type of a bound parameter
	if node.Flag {
		name, _, _ := strings.Cut(p.arena.Node(target).Name, renameSuffix)
		p.checkParam(value, paramTypes[node.Annotation], name, node.Name, v)
		p.store(scope, target, v, func(name string, value Value) {
			scope.Bind(name, value, true)
		})
		//
		return nil, nil
	}
	//
	p.assign(scope, target, v)
	//
	return nil, nil
}

func (p *Unroller) exprStmt(scope *Scope, id ast.NodeID) ([]sequence.Item, *diag.FatalError) {
	expr := p.arena.Node(id).Children[0]
	//
	switch {
	case isInstruction(p.arena, expr):
		instr, err := p.instruction(scope, expr)
		//
		if err != nil || instr == nil {
			return nil, err
		}
		//
		return []sequence.Item{instr}, nil
	case p.arena.Kind(expr) == ast.CONSTANT:
		// e.g. docstrings
		return nil, nil
	default:
		// Evaluated for any errors
		p.eval.Eval(scope, expr)
		return nil, nil
	}
}

func (p *Unroller) ifStmt(scope *Scope, id ast.NodeID) ([]sequence.Item, *diag.FatalError) {
	var (
		node = p.arena.Node(id)
		cond = p.eval.Eval(scope, node.Children[0])
		body = node.Body
		alt  = node.Else
	)
	//
	switch {
	case cond.IsUndefined():
		return nil, nil
	case cond.IsStatic():
		taken, untaken := body, alt
		//
		if !cond.Truth() {
			taken, untaken = alt, body
		}
		//
		if len(untaken) > 0 {
			p.diags.Warn(node.File, node.Span, "unreachable branch after static condition")
		}
		//
		return p.block(scope, taken)
	}
	// Runtime conditional.  Assignments in either branch update the enclosing
	// scope.
	items, err := p.block(scope, body)
	//
	if err != nil {
		return nil, err
	}
	//
	orelse, err := p.block(scope, alt)
	//
	if err != nil {
		return nil, err
	}
	//
	control := sequence.NewControl(sequence.CONDITIONAL, cond.Text, set.NewSortedSet(cond.Resources...), items, orelse)
	//
	return []sequence.Item{control}, nil
}

func (p *Unroller) whileStmt(scope *Scope, id ast.NodeID) ([]sequence.Item, *diag.FatalError) {
	var (
		node = p.arena.Node(id)
		cond = p.eval.Eval(scope, node.Children[0])
		text = cond.Text
	)
	//
	switch {
	case cond.IsUndefined():
		return nil, nil
	case cond.IsStatic() && !cond.Truth():
		p.diags.Warn(node.File, node.Span, "unreachable loop after static condition")
		return nil, nil
	case cond.IsStatic():
		text = "True"
	}
	//
	items, err := p.block(scope, node.Body)
	//
	if err != nil {
		return nil, err
	}
	//
	control := sequence.NewControl(sequence.LOOP_WHILE, text, set.NewSortedSet(cond.Resources...), items, nil)
	//
	return []sequence.Item{control}, nil
}

// Unroll a bounded loop, evaluating its body once per element in a fresh
// scope.
func (p *Unroller) forStmt(scope *Scope, id ast.NodeID) ([]sequence.Item, *diag.FatalError) {
	var (
		node       = p.arena.Node(id)
		target     = node.Children[0]
		body       = node.Body
		iterable   = p.eval.Eval(scope, node.Children[1])
		iterations [][]sequence.Item
	)
	//
	if iterable.IsUndefined() {
		return nil, nil
	}
	//
	elements, ok := Iterate(iterable)
	//
	if !ok || !iterable.IsStatic() {
		return nil, p.diags.Fatal(node.File, node.Span, "cannot statically unroll loop")
	}
	//
	for _, element := range elements {
		child := NewScope(scope)
		p.bind(child, target, element)
		//
		items, err := p.block(child, body)
		//
		if err != nil {
			return nil, err
		}
		//
		iterations = append(iterations, items)
	}
	//
	log.Debugf("unrolled %d iterations at %s", len(elements), p.location(node))
	//
	unrolled := sequence.NewUnrolled(iterations...)
	//
	if unrolled.Resources.Len() == 0 {
		return nil, nil
	}
	//
	return []sequence.Item{unrolled}, nil
}

func (p *Unroller) withStmt(scope *Scope, id ast.NodeID) ([]sequence.Item, *diag.FatalError) {
	node := p.arena.Node(id)
	//
	switch blockKind(p.arena, id) {
	case CONCUR_BLOCK:
		return p.concur(scope, id)
	case SEQ_BLOCK:
		return p.block(scope, node.Body)
	default:
		expr := p.arena.Node(node.Children[0])
		p.diags.Error(expr.File, expr.Span, "unsupported with statement %s", p.arena.Format(node.Children[0]))
		//
		return p.block(scope, node.Body)
	}
}

// A unit of a parallel block, which is either a single statement or an
// explicit sequential branch.
type unit struct {
	stmt      ast.NodeID
	items     []sequence.Item
	resources *set.SortedSet[string]
	explicit  bool
}

// Group the statements of a parallel block into branches.  Explicit "with seq"
// blocks form branches of their own, whilst other statements are grouped with
// any statements whose resources they overlap.
func (p *Unroller) concur(scope *Scope, id ast.NodeID) ([]sequence.Item, *diag.FatalError) {
	var (
		node  = p.arena.Node(id)
		units []unit
	)
	//
	for _, stmt := range node.Body {
		items, err := p.stmt(scope, stmt)
		//
		if err != nil {
			return nil, err
		}
		//
		items = p.placed(stmt, items, "instruction in parallel block touches no resources")
		//
		if len(items) > 0 {
			explicit := p.arena.Kind(stmt) == ast.WITH && blockKind(p.arena, stmt) == SEQ_BLOCK
			units = append(units, unit{stmt, items, sequence.NewBranch(items...).Resources, explicit})
		}
	}
	//
	if len(units) == 0 {
		return nil, nil
	}
	// Union overlapping units
	groups := newUnionFind(len(units))
	//
	for j := range units {
		for i := 0; i < j; i++ {
			if !units[i].resources.Intersects(units[j].resources) {
				continue
			} else if units[i].explicit || units[j].explicit {
				n := p.arena.Node(units[j].stmt)
				p.diags.Error(n.File, n.Span, "overlapping resources in parallel branches")
			}
			//
			groups.union(i, j)
		}
	}
	// Construct branches, ordered by their first statement
	var (
		branches []*sequence.Branch
		index    = make(map[int]int)
	)
	//
	for i, u := range units {
		root := groups.find(i)
		//
		if b, ok := index[root]; ok {
			branches[b] = sequence.NewBranch(append(branches[b].Items, u.items...)...)
		} else {
			index[root] = len(branches)
			branches = append(branches, sequence.NewBranch(u.items...))
		}
	}
	//
	concur := sequence.NewConcur(branches...)
	//
	if err := p.checkNesting(node, concur); err != nil {
		return nil, err
	}
	//
	log.Debugf("grouped %d statements into %d branches at %s", len(units), len(branches), p.location(node))
	//
	return []sequence.Item{concur}, nil
}

// Sanity check that every parallel block nested within a branch touches only
// resources of that branch.
func (p *Unroller) checkNesting(node *ast.Node, concur *sequence.Concur) *diag.FatalError {
	for _, branch := range concur.Branches {
		for _, nested := range nestedConcurs(branch.Items, nil) {
			if !nested.Resources.SubsetOf(branch.Resources) {
				return p.diags.Fatal(node.File, node.Span, "nested parallel block escapes its enclosing branch")
			}
		}
	}
	//
	return nil
}

// Construct an instruction from a call to a primitive or stub.  This returns
// nil if an argument could not be evaluated (which has already been reported).
func (p *Unroller) instruction(scope *Scope, call ast.NodeID) (*sequence.Instr, *diag.FatalError) {
	var (
		node      = p.arena.Node(call)
		args      = p.eval.Arguments(scope, call)
		resources = set.NewSortedSet[string]()
		texts     []string
		runtime   bool
	)
	//
	for _, arg := range args {
		if arg.Value.IsUndefined() {
			return nil, nil
		}
		//
		registers(arg.Value, resources)
		texts = append(texts, arg.String())
		runtime = runtime || !arg.Value.IsStatic()
	}
	//
	if resources.Len() == 0 && runtime {
		return nil, p.diags.Fatal(node.File, node.Span, "resource set cannot be statically determined")
	}
	// Check parameter types of stubs
	if fn, ok := p.program.Stubs[call]; ok {
		p.checkStub(call, fn, args)
	}
	//
	return &sequence.Instr{Name: node.Call.Symbol, Args: texts, Resources: resources}, nil
}

// Check the arguments of a stub call against its declared parameter types.
func (p *Unroller) checkStub(call ast.NodeID, fn *FunctionDecl, args []Argument) {
	var positional int
	//
	for _, arg := range args {
		if arg.Keyword == "" {
			positional++
		}
	}
	//
	for i, param := range fn.Params {
		for j, arg := range args {
			if (arg.Keyword == "" && j == i && i < positional) || arg.Keyword == param.Name {
				p.checkParam(call, param.Type, param.Name, fn.Name, arg.Value)
			}
		}
	}
}

// Check a value bound to a typed parameter.
func (p *Unroller) checkParam(id ast.NodeID, kind ParamType, param string, fn string, value Value) {
	var (
		node = p.arena.Node(id)
		ok   bool
	)
	//
	switch kind {
	case UNTYPED:
		return
	case RESOURCE:
		ok = value.Kind == REGISTER_VALUE
	case RESOURCE_LIST:
		ok = value.IsResource()
	case CLASSICAL:
		ok = !value.ContainsResource()
	}
	//
	switch {
	case ok || value.IsUndefined():
		return
	case kind == CLASSICAL:
		p.diags.Error(node.File, node.Span, "parameter %s of %s expects a classical value", param, fn)
	case kind == RESOURCE_LIST:
		p.diags.Error(node.File, node.Span, "parameter %s of %s expects a list of resources", param, fn)
	default:
		p.diags.Error(node.File, node.Span, "parameter %s of %s expects a resource", param, fn)
	}
}

// Assign a value to a target expression.
func (p *Unroller) assign(scope *Scope, target ast.NodeID, value Value) {
	p.store(scope, target, value, func(name string, value Value) {
		p.checkReassign(scope, target, name, value)
		scope.Assign(name, value)
	})
}

// Check that a parameter bound to a resource is not reassigned a classical
// value.
func (p *Unroller) checkReassign(scope *Scope, target ast.NodeID, name string, value Value) {
	binding := scope.Lookup(name)
	//
	if binding == nil || !binding.Parameter || !binding.Resource || value.IsResource() || value.IsUndefined() {
		return
	}
	//
	node := p.arena.Node(target)
	param, _, _ := strings.Cut(name, renameSuffix)
	//
	p.diags.Error(node.File, node.Span, "resource parameter %s cannot be assigned a classical value", param)
}

// Bind a value to a target expression in a fresh scope (e.g. a loop
// variable).
func (p *Unroller) bind(scope *Scope, target ast.NodeID, value Value) {
	p.store(scope, target, value, func(name string, value Value) {
		scope.Bind(name, value, false)
	})
}

func (p *Unroller) store(scope *Scope, target ast.NodeID, value Value, update func(string, Value)) {
	node := p.arena.Node(target)
	//
	switch node.Kind {
	case ast.NAME:
		update(node.Name, value)
	case ast.TUPLE, ast.LIST:
		elements, ok := Iterate(value)
		//
		switch {
		case value.IsUndefined() || !value.IsStatic():
			// Unknown elements
			for _, c := range node.Children {
				p.store(scope, c, value, update)
			}
		case !ok:
			p.diags.Error(node.File, node.Span, "cannot unpack %s", value.typeName())
		case len(elements) != len(node.Children):
			p.diags.Error(node.File, node.Span, "cannot unpack %d values into %d targets", len(elements),
				len(node.Children))
		default:
			for i, c := range node.Children {
				p.store(scope, c, elements[i], update)
			}
		}
	case ast.SUBSCRIPT:
		p.storeElement(scope, target, value)
	default:
		p.diags.Error(node.File, node.Span, "unsupported assignment target")
	}
}

// Assign to an element of a list.
func (p *Unroller) storeElement(scope *Scope, target ast.NodeID, value Value) {
	var (
		node  = p.arena.Node(target)
		base  = p.arena.Node(node.Children[0])
		index = p.eval.Eval(scope, node.Children[1])
	)
	//
	if base.Kind != ast.NAME {
		p.diags.Error(node.File, node.Span, "unsupported assignment target")
		return
	}
	//
	list := p.eval.Eval(scope, node.Children[0])
	//
	switch {
	case list.IsUndefined() || index.IsUndefined():
		return
	case list.Kind != LIST_VALUE || index.Kind != INT_VALUE:
		p.diags.Error(node.File, node.Span, "only list elements can be assigned")
		return
	}
	//
	i := index.Int
	//
	if i < 0 {
		i += int64(len(list.Elements))
	}
	//
	if i < 0 || i >= int64(len(list.Elements)) {
		p.diags.Error(node.File, node.Span, "index %d out of range", index.Int)
		return
	}
	// Lists are values, hence updated by copying
	elements := append([]Value(nil), list.Elements...)
	elements[i] = value
	scope.Assign(base.Name, ListValue(elements...))
}

// Assign the result of an instruction (e.g. a measurement) to a target.  Each
// name is bound to a runtime value known by that name.
func (p *Unroller) assignRuntime(scope *Scope, target ast.NodeID, resources []string) {
	node := p.arena.Node(target)
	//
	switch node.Kind {
	case ast.NAME:
		value := RuntimeValue(node.Name, resources)
		//
		p.checkReassign(scope, target, node.Name, value)
		scope.Assign(node.Name, value)
	case ast.TUPLE, ast.LIST:
		for _, c := range node.Children {
			p.assignRuntime(scope, c, resources)
		}
	default:
		p.diags.Error(node.File, node.Span, "unsupported assignment target")
	}
}

// Annotate a statement (and the call it was inlined from) with the resources
// touched by its items.
func (p *Unroller) annotate(id ast.NodeID, items []sequence.Item) {
	var (
		node      = p.arena.Node(id)
		resources = set.UnionSortedSets(items, sequence.Item.Footprint).ToArray()
	)
	//
	node.Resources = resources
	//
	if node.InlinedFrom != ast.NONE {
		p.arena.Node(node.InlinedFrom).Resources = resources
	}
}

// Remove items which touch no resources, since they cannot be placed in any
// sequence.
func (p *Unroller) placed(stmt ast.NodeID, items []sequence.Item, msg string) []sequence.Item {
	var nitems []sequence.Item
	//
	for _, item := range items {
		if item.Footprint().Len() > 0 {
			nitems = append(nitems, item)
		}
	}
	//
	if len(nitems) != len(items) {
		node := p.arena.Node(stmt)
		p.diags.Warn(node.File, node.Span, "%s", msg)
	}
	//
	return nitems
}

func (p *Unroller) location(node *ast.Node) string {
	if node.File == nil {
		return "?"
	}
	//
	line := node.File.FindFirstEnclosingLine(node.Span)
	//
	return fmt.Sprintf("%s:%d", node.File.Filename(), line.Number())
}

// Check whether an expression is a call to an opaque instruction.
func isInstruction(arena *ast.Arena, id ast.NodeID) bool {
	node := arena.Node(id)
	return node.Kind == ast.CALL && (node.Call.Kind == ast.PRIMITIVE || node.Call.Kind == ast.STUB)
}

// Determine the block marker of a with statement, which may be qualified
// (e.g. "qgl2.qgl2.concur").
func blockKind(arena *ast.Arena, id ast.NodeID) string {
	expr := arena.Node(arena.Child(id, 0))
	//
	if expr.Kind == ast.NAME || expr.Kind == ast.ATTRIBUTE {
		return expr.Name
	}
	//
	return ""
}

// Collect the registers within a value.
func registers(value Value, resources *set.SortedSet[string]) {
	switch value.Kind {
	case REGISTER_VALUE:
		for _, r := range value.Resources {
			resources.Insert(r)
		}
	case LIST_VALUE, TUPLE_VALUE:
		for _, e := range value.Elements {
			registers(e, resources)
		}
	}
}

// Collect all parallel blocks nested within some items.
func nestedConcurs(items []sequence.Item, concurs []*sequence.Concur) []*sequence.Concur {
	for _, item := range items {
		switch item := item.(type) {
		case *sequence.Concur:
			concurs = append(concurs, item)
			//
			for _, b := range item.Branches {
				concurs = nestedConcurs(b.Items, concurs)
			}
		case *sequence.Unrolled:
			for _, iteration := range item.Iterations {
				concurs = nestedConcurs(iteration, concurs)
			}
		case *sequence.Control:
			concurs = nestedConcurs(item.Body, concurs)
			concurs = nestedConcurs(item.Else, concurs)
		}
	}
	//
	return concurs
}

// Disjoint sets over the integers 0..n-1.
type unionFind []int

func newUnionFind(n int) unionFind {
	parents := make(unionFind, n)
	//
	for i := range parents {
		parents[i] = i
	}
	//
	return parents
}

func (p unionFind) find(i int) int {
	for p[i] != i {
		p[i] = p[p[i]]
		i = p[i]
	}
	//
	return i
}

// Union two sets, keeping the smaller root so that roots identify the first
// member of each set.
func (p unionFind) union(i int, j int) {
	ri, rj := p.find(i), p.find(j)
	//
	if ri < rj {
		p[rj] = ri
	} else {
		p[ri] = rj
	}
}
