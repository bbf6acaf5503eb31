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

	"github.com/qgl2/go-qgl2/pkg/qgl2/ast"
	"github.com/qgl2/go-qgl2/pkg/util/source"
)

// Module captures a single parsed source file, along with the names it binds at
// the top level.  Modules are cached by path, and their syntax trees are never
// modified after parsing.
type Module struct {
	// Dotted name of this module.
	Name string
	// Source file from which this module was parsed.
	File *source.File
	// Arena holding the syntax tree of this module.
	Arena *ast.Arena
	// Root node of the syntax tree (or NONE if the module failed to parse).
	Root ast.NodeID
	// Canonical path of the source file.
	path string
	// Top-level function definitions (in order of definition).
	functions []*FunctionDecl
	// Top-level function definitions, indexed by name.  Later definitions
	// replace earlier ones.
	defs map[string]*FunctionDecl
	// Names bound by top-level import statements.
	imports map[string]Symbol
	// Names bound by top-level constant assignments.
	constants map[string]Symbol
	// Modules imported using "*", in order of import.
	wildcards []Symbol
	// Modules referenced by import statements (or aliases) in this module.
	refs map[ast.NodeID]moduleRef
}

// Failed indicates whether this module could not be parsed.
func (p *Module) Failed() bool {
	return p.Root == ast.NONE
}

// Functions returns the top-level functions of this module which are visible
// by name (i.e. excluding those replaced by a later duplicate definition).
func (p *Module) Functions() []*FunctionDecl {
	var fns []*FunctionDecl
	//
	for _, fn := range p.functions {
		if p.defs[fn.Name] == fn {
			fns = append(fns, fn)
		}
	}
	//
	return fns
}

// Function returns the function with a given name defined in this module, or
// nil if no such function exists.
func (p *Module) Function(name string) *FunctionDecl {
	return p.defs[name]
}

func (p *Module) String() string {
	return p.Name
}

// FunctionKind classifies a function by its decorators.
type FunctionKind uint8

const (
	// PLAIN functions are inlined at every call site.
	PLAIN FunctionKind = iota
	// ENTRY functions are candidate entry points for compilation.
	ENTRY
	// STUB functions are opaque, and implemented externally.
	STUB
)

func (k FunctionKind) String() string {
	switch k {
	case PLAIN:
		return "plain"
	case ENTRY:
		return "entry"
	case STUB:
		return "stub"
	default:
		panic(fmt.Sprintf("unknown function kind %d", k))
	}
}

// ParamType is the declared type of a function parameter.
type ParamType uint8

const (
	// UNTYPED parameters accept any value.
	UNTYPED ParamType = iota
	// RESOURCE parameters ("qreg") accept a register.
	RESOURCE
	// RESOURCE_LIST parameters ("qreg_list") accept a list of registers.
	RESOURCE_LIST
	// CLASSICAL parameters ("classical") accept anything but a register.
	CLASSICAL
)

var paramTypes = map[string]ParamType{
	"qreg":      RESOURCE,
	"qreg_list": RESOURCE_LIST,
	"classical": CLASSICAL,
}

func (t ParamType) String() string {
	switch t {
	case UNTYPED:
		return ""
	case RESOURCE:
		return "qreg"
	case RESOURCE_LIST:
		return "qreg_list"
	case CLASSICAL:
		return "classical"
	default:
		panic(fmt.Sprintf("unknown parameter type %d", t))
	}
}

// Param is a formal parameter of a function.
type Param struct {
	Name string
	Type ParamType
	// Default value expression (in the arena of the enclosing module), or NONE.
	Default ast.NodeID
}

// FunctionDecl is a top-level function declared in some module.
type FunctionDecl struct {
	Name   string
	Kind   FunctionKind
	Params []Param
	// Module in which this function is declared.
	Module *Module
	// Function definition node in the module's arena.
	Node ast.NodeID
	// External implementation of a stub.
	StubModule string
	StubSymbol string
}

// Body returns the statements making up the body of this function.
func (p *FunctionDecl) Body() []ast.NodeID {
	return p.Module.Arena.Node(p.Node).Body
}

// Span returns the span of this function's signature.
func (p *FunctionDecl) Span() source.Span {
	return p.Module.Arena.Node(p.Node).Span
}

// QualifiedName returns the name of this function qualified by its module.
func (p *FunctionDecl) QualifiedName() string {
	return fmt.Sprintf("%s.%s", p.Module.Name, p.Name)
}

// Param returns the index of the parameter with a given name, or -1.
func (p *FunctionDecl) Param(name string) int {
	for i, param := range p.Params {
		if param.Name == name {
			return i
		}
	}
	//
	return -1
}

// SymbolKind identifies what a name is bound to.
type SymbolKind uint8

const (
	// FUNCTION_SYMBOL is bound to a function declaration.
	FUNCTION_SYMBOL SymbolKind = iota
	// MODULE_SYMBOL is bound to a loaded module.
	MODULE_SYMBOL
	// INTRINSIC_SYMBOL is bound to an intrinsic module (when Name is empty), or
	// to a primitive exported by an intrinsic module.
	INTRINSIC_SYMBOL
	// IMPORTED_SYMBOL is bound to a name in another module, which is resolved on
	// demand.
	IMPORTED_SYMBOL
	// CONSTANT_SYMBOL is bound to the value of a top-level assignment.
	CONSTANT_SYMBOL
	// BUILTIN_SYMBOL is bound to a function evaluated by the compiler itself.
	BUILTIN_SYMBOL
)

// Symbol describes the binding of a name.
type Symbol struct {
	Kind SymbolKind
	// Function (for FUNCTION_SYMBOL)
	Function *FunctionDecl
	// Module (for MODULE_SYMBOL, IMPORTED_SYMBOL, CONSTANT_SYMBOL)
	Module *Module
	// Intrinsic module name (for INTRINSIC_SYMBOL)
	Intrinsic string
	// Name within module (for INTRINSIC_SYMBOL, IMPORTED_SYMBOL,
	// BUILTIN_SYMBOL)
	Name string
	// Value expression (for CONSTANT_SYMBOL)
	Node ast.NodeID
}

// Reference to a module from an import statement, which is either a source
// file (identified by canonical path) or an intrinsic module.
type moduleRef struct {
	path      string
	intrinsic string
}
