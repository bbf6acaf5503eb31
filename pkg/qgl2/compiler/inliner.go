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
	"slices"
	"strings"

	"github.com/qgl2/go-qgl2/pkg/qgl2/ast"
	"github.com/qgl2/go-qgl2/pkg/qgl2/diag"
	"github.com/qgl2/go-qgl2/pkg/util/collection/stack"
	log "github.com/sirupsen/logrus"
)

// DEFAULT_MAX_INLINE_DEPTH bounds the length of a chain of inlined calls.
const DEFAULT_MAX_INLINE_DEPTH = 64

// Suffix used when renaming the locals of an inlined function.
const renameSuffix = "___"

// Flattened is the result of inlining an entry point.  All statements live in
// a single arena, and no call within them refers to a plain function.
type Flattened struct {
	Arena *ast.Arena
	// Statements making up the flattened entry point.
	Body []ast.NodeID
	// Entry point from which this was produced.
	Entry *FunctionDecl
	// Stub calls, mapped to the stub they call.
	Stubs map[ast.NodeID]*FunctionDecl
	// Number of call sites inlined.
	Inlined uint
}

// AsFunction packages this flattened program as an entry function in a
// synthetic module, such that it can be inlined again.
func (p *Flattened) AsFunction() *FunctionDecl {
	var (
		module = &Module{
			Name:  p.Entry.Module.Name,
			File:  p.Entry.Module.File,
			Arena: p.Arena,
			refs:  make(map[ast.NodeID]moduleRef),
		}
		def = p.Arena.Add(ast.Node{Kind: ast.FUNCTION_DEF, Name: p.Entry.Name, Body: p.Body,
			File: p.Entry.Module.File, Span: p.Entry.Span()})
		fn = &FunctionDecl{Name: p.Entry.Name, Kind: ENTRY, Module: module, Node: def}
	)
	//
	module.Root = p.Arena.Add(ast.Node{Kind: ast.MODULE, Body: []ast.NodeID{def}})
	module.functions = []*FunctionDecl{fn}
	module.defs = map[string]*FunctionDecl{fn.Name: fn}
	//
	return fn
}

// Inliner flattens an entry point by recursively replacing every call to a
// plain function with a copy of that function's body.  Locals of each inlined
// body are renamed with a suffix unique to the call site, and parameters are
// bound by assignments at the head of the inlined block.
type Inliner struct {
	importer *Importer
	diags    *diag.Diagnostics
	maxDepth uint
	// Arena into which the flattened program is written.
	arena *ast.Arena
	// Counter used to generate unique suffixes.
	counter uint
	// Chain of functions currently being inlined.
	chain *stack.Stack[*FunctionDecl]
	// Constants currently being substituted.
	constants []Symbol
	stubs     map[ast.NodeID]*FunctionDecl
	inlined   uint
}

// Information about the function whose body is being copied.
type frame struct {
	fn     *FunctionDecl
	module *Module
	// Names bound by imports within the function body.
	locals    map[string]Symbol
	wildcards []Symbol
	// Local variables mapped to their new names.
	rename map[string]string
}

// NewInliner constructs an inliner which resolves names using a given importer.
func NewInliner(importer *Importer, diags *diag.Diagnostics, maxDepth uint) *Inliner {
	if maxDepth == 0 {
		maxDepth = DEFAULT_MAX_INLINE_DEPTH
	}
	//
	return &Inliner{
		importer: importer,
		diags:    diags,
		maxDepth: maxDepth,
		arena:    ast.NewArena(),
		chain:    stack.NewStack[*FunctionDecl](),
		stubs:    make(map[ast.NodeID]*FunctionDecl),
	}
}

// Inline flattens a given entry point.  Recoverable problems are reported as
// diagnostics, whilst fatal problems (e.g. recursive inlining) abort.
func (p *Inliner) Inline(entry *FunctionDecl) (*Flattened, *diag.FatalError) {
	var (
		f    = p.enter(entry, false)
		body []ast.NodeID
	)
	// Parameters of the entry point take their default values.
	for _, param := range entry.Params {
		if param.Default == ast.NONE {
			p.diags.Error(entry.Module.File, entry.Span(), "entry point %s has no value for parameter %s",
				entry.Name, param.Name)
			//
			continue
		}
		//
		value := p.expr(p.global(entry.Module), param.Default)
		body = append(body, p.bindParam(entry, param, param.Name, value))
	}
	//
	p.chain.Push(entry)
	stmts, err := p.block(f, entry.Body(), ast.NONE, true)
	p.chain.Pop()
	//
	if err != nil {
		return nil, err
	}
	//
	log.Debugf("inlined %d call sites into %s", p.inlined, entry.QualifiedName())
	//
	return &Flattened{p.arena, append(body, stmts...), entry, p.stubs, p.inlined}, nil
}

// Construct a frame for copying the body of a given function.  When renaming,
// every local is given the next unique suffix.
func (p *Inliner) enter(fn *FunctionDecl, rename bool) *frame {
	f := &frame{fn, fn.Module, make(map[string]Symbol), nil, make(map[string]string)}
	suffix := ""
	//
	if rename {
		p.counter++
		suffix = fmt.Sprintf("%s%d", renameSuffix, p.counter)
	}
	//
	for _, name := range Locals(fn) {
		f.rename[name] = name + suffix
	}
	//
	return f
}

// Construct a frame for copying expressions at the top level of a module.
func (p *Inliner) global(module *Module) *frame {
	return &frame{nil, module, make(map[string]Symbol), nil, make(map[string]string)}
}

// Copy a block of statements.  When last is set, the block is the body of a
// function and may end in a return statement, whose value (if any) is assigned
// to the given target.
func (p *Inliner) block(f *frame, stmts []ast.NodeID, target ast.NodeID, last bool) ([]ast.NodeID, *diag.FatalError) {
	var body []ast.NodeID
	//
	for i, id := range stmts {
		var (
			nstmts []ast.NodeID
			err    *diag.FatalError
		)
		//
		if last && i == len(stmts)-1 && f.module.Arena.Kind(id) == ast.RETURN {
			nstmts, err = p.ret(f, id, target)
		} else {
			nstmts, err = p.stmt(f, id)
		}
		//
		if err != nil {
			return nil, err
		}
		//
		body = append(body, nstmts...)
	}
	//
	return body, nil
}

// Copy a single statement.
func (p *Inliner) stmt(f *frame, id ast.NodeID) ([]ast.NodeID, *diag.FatalError) {
	var (
		arena = f.module.Arena
		node  = *arena.Node(id)
		err   *diag.FatalError
	)
	//
	switch node.Kind {
	case ast.PASS:
		return nil, nil
	case ast.FUNCTION_DEF:
		p.diags.Error(node.File, node.Span, "nested function definitions are not supported")
		return nil, nil
	case ast.RETURN:
		p.diags.Error(node.File, node.Span, "return only supported as the final statement of a function")
		return nil, nil
	case ast.IMPORT, ast.IMPORT_FROM:
		p.importer.BindImport(f.module, id, func(name string, symbol Symbol) {
			if name == "*" {
				f.wildcards = append(f.wildcards, symbol)
			} else {
				f.locals[name] = symbol
			}
		})
		//
		return nil, nil
	case ast.EXPR_STMT:
		if call := node.Children[0]; arena.Kind(call) == ast.CALL {
			return p.callStmt(f, id, call, ast.NONE)
		}
		//
		node.Children = p.exprs(f, node.Children)
	case ast.ASSIGN:
		if call := node.Children[1]; arena.Kind(call) == ast.CALL {
			return p.callStmt(f, id, call, node.Children[0])
		}
		//
		node.Children = p.exprs(f, node.Children)
	case ast.AUG_ASSIGN:
		node.Children = p.exprs(f, node.Children)
	case ast.IF, ast.FOR, ast.WHILE, ast.WITH:
		node.Children = p.exprs(f, node.Children)
		//
		if node.Body, err = p.block(f, node.Body, ast.NONE, false); err != nil {
			return nil, err
		} else if node.Else, err = p.block(f, node.Else, ast.NONE, false); err != nil {
			return nil, err
		}
	case ast.INLINED_BLOCK:
		// Already inlined, so copy as is.
		node.InlinedFrom = p.arena.Clone(arena, node.InlinedFrom)
		//
		if node.Body, err = p.block(f, node.Body, ast.NONE, false); err != nil {
			return nil, err
		}
	case ast.INVALID, ast.MODULE, ast.DECORATOR, ast.PARAM, ast.ALIAS, ast.NAME, ast.CONSTANT, ast.ATTRIBUTE,
		ast.CALL, ast.KEYWORD, ast.SUBSCRIPT, ast.LIST, ast.TUPLE, ast.UNARY_OP, ast.BIN_OP, ast.COMPARE,
		ast.BOOL_OP:
		panic(fmt.Sprintf("unexpected %s node in statement position", node.Kind))
	default:
		panic(fmt.Sprintf("unknown node kind %d", node.Kind))
	}
	//
	return []ast.NodeID{p.arena.Add(node)}, nil
}

// Copy the final return statement of a function body.
func (p *Inliner) ret(f *frame, id ast.NodeID, target ast.NodeID) ([]ast.NodeID, *diag.FatalError) {
	var (
		arena = f.module.Arena
		node  = arena.Node(id)
		value = arena.Child(id, 0)
	)
	//
	switch {
	case value == ast.NONE:
		// Missing values are reported at the call site
		return nil, nil
	case target == ast.NONE && arena.Kind(value) == ast.CALL:
		// Value is discarded, but the call must still happen.
		return p.callStmt(f, id, value, ast.NONE)
	case target == ast.NONE:
		return nil, nil
	case arena.Kind(value) == ast.CALL:
		return p.callStmt(f, id, value, target)
	}
	//
	assign := ast.Node{Kind: ast.ASSIGN, Children: []ast.NodeID{target, p.expr(f, value)}, File: node.File,
		Span: node.Span}
	//
	return []ast.NodeID{p.arena.Add(assign)}, nil
}

// Copy a statement consisting of a call, which is either used as an expression
// statement or assigned to a target.  The target is either a node of the
// current frame (when copying an assignment), or an already copied node (when
// copying a return).
func (p *Inliner) callStmt(f *frame, stmt ast.NodeID, call ast.NodeID, target ast.NodeID) ([]ast.NodeID,
	*diag.FatalError) {
	var (
		arena = f.module.Arena
		node  = *arena.Node(stmt)
	)
	// Copy the target of an assignment
	if node.Kind == ast.ASSIGN {
		target = p.expr(f, target)
	}
	//
	var value ast.NodeID
	//
	if arena.Node(call).Call.Kind != ast.UNRESOLVED {
		value = p.expr(f, call)
	} else if callee, ok := p.resolve(f, call); ok && callee.fn != nil && callee.fn.Kind != STUB {
		return p.inline(f, stmt, call, callee.fn, target)
	} else {
		value = p.tag(f, call, callee, ok)
	}
	// Annotations of the original statement are retained
	switch {
	case node.Kind == ast.ASSIGN:
		node.Children = []ast.NodeID{target, value}
	case node.Kind == ast.EXPR_STMT:
		node.Children = []ast.NodeID{value}
	case target == ast.NONE:
		node = ast.Node{Kind: ast.EXPR_STMT, Children: []ast.NodeID{value}, File: node.File, Span: node.Span}
	default:
		node = ast.Node{Kind: ast.ASSIGN, Children: []ast.NodeID{target, value}, File: node.File, Span: node.Span}
	}
	//
	return []ast.NodeID{p.arena.Add(node)}, nil
}

// Inline a call to a plain function, producing an inlined block.
func (p *Inliner) inline(f *frame, stmt ast.NodeID, call ast.NodeID, fn *FunctionDecl,
	target ast.NodeID) ([]ast.NodeID, *diag.FatalError) {
	var (
		arena = f.module.Arena
		node  = arena.Node(stmt)
		body  []ast.NodeID
	)
	// Check for recursion
	if p.chain.Find(func(g *FunctionDecl) bool { return g == fn }) >= 0 {
		return nil, p.diags.Fatal(node.File, node.Span, "recursive inlining (%s)", p.trace(fn))
	} else if p.chain.Len() >= p.maxDepth {
		return nil, p.diags.Fatal(node.File, node.Span, "inlining depth exceeds %d (%s)", p.maxDepth, p.trace(fn))
	}
	// Bind arguments to parameters
	args, ok := Bind(arena, call, fn, p.diags)
	//
	if !ok {
		return nil, nil
	}
	//
	callee := p.enter(fn, true)
	//
	for i, param := range fn.Params {
		var value ast.NodeID
		//
		if args[i] != ast.NONE {
			value = p.expr(f, args[i])
		} else {
			value = p.expr(p.global(fn.Module), param.Default)
		}
		//
		body = append(body, p.bindParam(fn, param, callee.rename[param.Name], value))
	}
	//
	log.Debugf("inlining %s into %s", fn.QualifiedName(), p.chain.Peek(0).QualifiedName())
	//
	p.chain.Push(fn)
	stmts, err := p.block(callee, fn.Body(), target, true)
	p.chain.Pop()
	//
	if err != nil {
		return nil, err
	} else if target != ast.NONE && !returnsValue(fn) {
		p.diags.Error(node.File, node.Span, "%s does not return a value", fn.Name)
	}
	//
	p.inlined++
	//
	return []ast.NodeID{p.arena.Add(ast.Node{
		Kind:        ast.INLINED_BLOCK,
		Name:        fn.Name,
		Body:        append(body, stmts...),
		InlinedFrom: p.arena.Clone(arena, call),
		File:        node.File,
		Span:        node.Span,
	})}, nil
}

// Describe the chain of calls leading to a given function.
func (p *Inliner) trace(fn *FunctionDecl) string {
	var names []string
	//
	for _, g := range p.chain.Items() {
		names = append(names, g.Name)
	}
	//
	return strings.Join(append(names, fn.Name), " -> ")
}

// Construct the assignment binding a parameter to its value.  This records the
// parameter's declared type, so that it can be checked once the value is
// known.
func (p *Inliner) bindParam(fn *FunctionDecl, param Param, name string, value ast.NodeID) ast.NodeID {
	var (
		vnode  = p.arena.Node(value)
		file   = vnode.File
		span   = vnode.Span
		target = p.arena.Add(ast.Node{Kind: ast.NAME, Name: name, File: file, Span: span})
	)
	//
	return p.arena.Add(ast.Node{
		Kind:       ast.ASSIGN,
		Name:       fn.Name,
		Annotation: param.Type.String(),
		Flag:       true,
		Children:   []ast.NodeID{target, value},
		File:       file,
		Span:       span,
	})
}

// Bind the arguments of a call to the parameters of a function, returning for
// each parameter the argument bound to it (or NONE when the parameter takes
// its default value).  Problems are reported, in which case false is returned.
func Bind(arena *ast.Arena, call ast.NodeID, fn *FunctionDecl, diags *diag.Diagnostics) ([]ast.NodeID, bool) {
	var (
		node     = arena.Node(call)
		args     = arena.Args(call)
		bindings = make([]ast.NodeID, len(fn.Params))
		ok       = true
	)
	//
	if len(args) > len(fn.Params) {
		diags.Error(node.File, node.Span, "too many arguments to %s", fn.Name)
		return nil, false
	}
	//
	copy(bindings, args)
	//
	for _, k := range arena.Keywords(call) {
		var (
			keyword = arena.Node(k)
			index   = fn.Param(keyword.Name)
		)
		//
		switch {
		case index < 0:
			diags.Error(keyword.File, keyword.Span, "unknown keyword argument %s for %s", keyword.Name, fn.Name)
			ok = false
		case bindings[index] != ast.NONE:
			diags.Error(keyword.File, keyword.Span, "duplicate binding of parameter %s in call to %s", keyword.Name,
				fn.Name)
			ok = false
		default:
			bindings[index] = keyword.Children[0]
		}
	}
	//
	for i, param := range fn.Params {
		if bindings[i] == ast.NONE && param.Default == ast.NONE {
			diags.Error(node.File, node.Span, "missing argument %s in call to %s", param.Name, fn.Name)
			ok = false
		}
	}
	//
	return bindings, ok
}

// Copy a list of expressions.
func (p *Inliner) exprs(f *frame, ids []ast.NodeID) []ast.NodeID {
	var nids []ast.NodeID
	//
	for _, id := range ids {
		nids = append(nids, p.expr(f, id))
	}
	//
	return nids
}

// Copy an expression, renaming locals, substituting constants and resolving
// calls.
func (p *Inliner) expr(f *frame, id ast.NodeID) ast.NodeID {
	node := *f.module.Arena.Node(id)
	//
	switch node.Kind {
	case ast.NAME:
		if name, ok := f.rename[node.Name]; ok {
			node.Name = name
		} else if symbol, ok := p.lookup(f, node.Name); ok && symbol.Kind == CONSTANT_SYMBOL {
			return p.constant(symbol, node.Name, id)
		}
	case ast.CALL:
		return p.call(f, id)
	case ast.CONSTANT:
		// nothing to do
	default:
		node.Children = p.exprs(f, node.Children)
	}
	//
	return p.arena.Add(node)
}

// Substitute the value of a module-level constant.
func (p *Inliner) constant(symbol Symbol, name string, id ast.NodeID) ast.NodeID {
	if slices.Contains(p.constants, symbol) {
		n := symbol.Module.Arena.Node(symbol.Node)
		p.diags.Error(n.File, n.Span, "circular definition of %s", name)
		//
		return p.arena.Add(ast.Node{Kind: ast.NAME, Name: name, File: n.File, Span: n.Span})
	}
	//
	p.constants = append(p.constants, symbol)
	value := p.expr(p.global(symbol.Module), symbol.Node)
	p.constants = p.constants[:len(p.constants)-1]
	//
	return value
}

// Copy a call used within an expression.  Such calls cannot be inlined, and
// hence must be to primitives, stubs or builtins.
func (p *Inliner) call(f *frame, id ast.NodeID) ast.NodeID {
	node := *f.module.Arena.Node(id)
	//
	if node.Call.Kind != ast.UNRESOLVED {
		// Already resolved (e.g. when inlining a flattened program)
		node.Children = p.exprs(f, node.Children)
		return p.arena.Add(node)
	}
	//
	callee, ok := p.resolve(f, id)
	//
	if ok && callee.fn != nil && callee.fn.Kind != STUB {
		p.diags.Error(node.File, node.Span, "call to %s cannot be inlined here", callee.fn.Name)
	}
	//
	return p.tag(f, id, callee, ok)
}

// Copy a call which is not being inlined, tagging it with its resolution.
func (p *Inliner) tag(f *frame, id ast.NodeID, callee resolution, resolved bool) ast.NodeID {
	node := *f.module.Arena.Node(id)
	node.Children = p.exprs(f, node.Children)
	//
	if !resolved || (callee.fn != nil && callee.fn.Kind != STUB) {
		return p.arena.Add(node)
	} else if callee.fn != nil {
		// Check arity of stubs
		if _, ok := Bind(f.module.Arena, id, callee.fn, p.diags); !ok {
			return p.arena.Add(node)
		}
		//
		node.Call = ast.CallTarget{Kind: ast.STUB, Module: callee.fn.StubModule, Symbol: callee.fn.StubSymbol}
		node.Children[0] = p.rename(node.Children[0], callee.fn.Name)
		nid := p.arena.Add(node)
		p.stubs[nid] = callee.fn
		//
		return nid
	}
	//
	node.Call = callee.target
	node.Children[0] = p.rename(node.Children[0], callee.target.Symbol)
	//
	return p.arena.Add(node)
}

// Replace a (copied) callee expression with a simple name.
func (p *Inliner) rename(callee ast.NodeID, name string) ast.NodeID {
	node := p.arena.Node(callee)
	//
	return p.arena.Add(ast.Node{Kind: ast.NAME, Name: name, File: node.File, Span: node.Span})
}

// The resolution of a callee, which is either a function declaration or an
// opaque target.
type resolution struct {
	fn     *FunctionDecl
	target ast.CallTarget
}

// Resolve the function called by a given call node, reporting an error if this
// is not possible.
func (p *Inliner) resolve(f *frame, call ast.NodeID) (resolution, bool) {
	var (
		arena = f.module.Arena
		node  = arena.Node(call)
		fun   = arena.Node(node.Children[0])
		name  = arena.Format(node.Children[0])
	)
	//
	symbol, ok := p.lookupCallee(f, node.Children[0])
	//
	if !ok {
		if fun.Kind == ast.NAME && f.rename[fun.Name] != "" {
			p.diags.Error(node.File, node.Span, "cannot call local variable %s", name)
		} else {
			p.diags.Error(node.File, node.Span, "unknown function %s", name)
		}
		//
		return resolution{}, false
	}
	//
	switch symbol.Kind {
	case FUNCTION_SYMBOL:
		return resolution{fn: symbol.Function}, true
	case INTRINSIC_SYMBOL:
		if symbol.Name == "" {
			break
		} else if isBuiltin(symbol.Name) {
			return resolution{target: ast.CallTarget{Kind: ast.BUILTIN, Symbol: symbol.Name}}, true
		}
		//
		return resolution{target: ast.CallTarget{Kind: ast.PRIMITIVE, Module: symbol.Intrinsic, Symbol: symbol.Name}}, true
	case BUILTIN_SYMBOL:
		return resolution{target: ast.CallTarget{Kind: ast.BUILTIN, Symbol: symbol.Name}}, true
	}
	//
	p.diags.Error(node.File, node.Span, "%s is not callable", name)
	//
	return resolution{}, false
}

// Resolve a callee expression, which is either a name or a dotted name.
func (p *Inliner) lookupCallee(f *frame, id ast.NodeID) (Symbol, bool) {
	var (
		arena = f.module.Arena
		parts []string
	)
	// Flatten dotted name
	for ; arena.Kind(id) == ast.ATTRIBUTE; id = arena.Child(id, 0) {
		parts = append([]string{arena.Node(id).Name}, parts...)
	}
	//
	if arena.Kind(id) != ast.NAME {
		return Symbol{}, false
	}
	//
	parts = append([]string{arena.Node(id).Name}, parts...)
	// Locals are never callable
	if _, ok := f.rename[parts[0]]; ok {
		return Symbol{}, false
	}
	// Longest prefix bound as a name (e.g. "import a.b")
	for n := len(parts); n > 0; n-- {
		symbol, ok := p.lookup(f, strings.Join(parts[:n], "."))
		//
		for _, member := range parts[n:] {
			if !ok {
				break
			}
			//
			symbol, ok = p.importer.Member(symbol, member)
		}
		//
		if ok {
			return symbol, true
		}
	}
	//
	return Symbol{}, false
}

// Lookup a (non-local) name from within a function body.  Imports within the
// function body take precedence over those of the enclosing module.
func (p *Inliner) lookup(f *frame, name string) (Symbol, bool) {
	if symbol, ok := f.locals[name]; ok {
		return p.importer.Resolve(symbol)
	} else if symbol, ok := p.importer.Lookup(f.module, name); ok {
		return symbol, true
	}
	//
	for i := len(f.wildcards) - 1; i >= 0; i-- {
		if wildcard := f.wildcards[i]; wildcard.Kind == INTRINSIC_SYMBOL {
			return Symbol{Kind: INTRINSIC_SYMBOL, Intrinsic: wildcard.Intrinsic, Name: name}, true
		} else if symbol, ok := p.importer.Lookup(wildcard.Module, name); ok {
			return symbol, true
		}
	}
	//
	return Symbol{}, false
}

// Locals returns the local variables of a function, which are its parameters
// and every name it assigns.
func Locals(fn *FunctionDecl) []string {
	var (
		arena  = fn.Module.Arena
		locals []string
	)
	//
	for _, param := range fn.Params {
		locals = append(locals, param.Name)
	}
	//
	for _, stmt := range fn.Body() {
		arena.Walk(stmt, func(id ast.NodeID) bool {
			node := arena.Node(id)
			//
			switch node.Kind {
			case ast.ASSIGN, ast.AUG_ASSIGN, ast.FOR:
				locals = targets(arena, node.Children[0], locals)
			case ast.FUNCTION_DEF:
				return false
			}
			//
			return node.Kind.IsStatement()
		})
	}
	//
	return locals
}

// Collect the names assigned by a target expression.
func targets(arena *ast.Arena, id ast.NodeID, names []string) []string {
	node := arena.Node(id)
	//
	switch node.Kind {
	case ast.NAME:
		if !slices.Contains(names, node.Name) {
			names = append(names, node.Name)
		}
	case ast.TUPLE, ast.LIST:
		for _, c := range node.Children {
			names = targets(arena, c, names)
		}
	}
	//
	return names
}

// Check whether a function ends by returning a value.
func returnsValue(fn *FunctionDecl) bool {
	var (
		arena = fn.Module.Arena
		body  = fn.Body()
	)
	//
	if len(body) == 0 {
		return false
	}
	//
	last := body[len(body)-1]
	//
	return arena.Kind(last) == ast.RETURN && arena.Child(last, 0) != ast.NONE
}
