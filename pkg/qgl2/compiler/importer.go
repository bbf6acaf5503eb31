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
	"context"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"

	"github.com/pkg/errors"
	"github.com/qgl2/go-qgl2/pkg/qgl2/ast"
	"github.com/qgl2/go-qgl2/pkg/qgl2/diag"
	"github.com/qgl2/go-qgl2/pkg/qgl2/parser"
	"github.com/qgl2/go-qgl2/pkg/util/source"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// DEFAULT_INTRINSICS lists the modules whose exports are treated as opaque
// primitives, rather than being loaded from source.
var DEFAULT_INTRINSICS = []string{"qgl2.qgl2", "qgl2.qgl1", "qgl2.basic_sequences", "QGL"}

// Maximum length of a chain of re-exported names.
const maxImportChain = 32

// Decorators recognised on top-level functions.
const (
	ENTRY_DECORATOR = "qgl2main"
	DECL_DECORATOR  = "qgl2decl"
	STUB_DECORATOR  = "qgl2stub"
)

// Importer is responsible for loading the entry module and (transitively) every
// module it imports, and subsequently for resolving names in those modules.
type Importer struct {
	diags *diag.Diagnostics
	// Additional directories to search for modules.
	path []string
	// Names of intrinsic modules.
	intrinsics []string
	// Directory of the entry module.
	entryDir string
	// Modules in order of discovery.
	modules []*Module
	// Modules indexed by canonical path.
	byPath map[string]*Module
}

// A module which has been discovered, but not yet loaded.
type pending struct {
	// Path as it should be displayed
	filename string
	// Canonical path
	path string
	// Dotted module name
	name string
	// Where it was first imported from (for error reporting)
	importer *Module
	node     ast.NodeID
}

// Result of reading and parsing a pending module.
type parsed struct {
	file  *source.File
	arena *ast.Arena
	root  ast.NodeID
	errs  []source.SyntaxError
	err   error
}

// NewImporter constructs an importer which reports into a given set of
// diagnostics.
func NewImporter(diags *diag.Diagnostics, path []string, intrinsics []string) *Importer {
	return &Importer{
		diags:      diags,
		path:       path,
		intrinsics: intrinsics,
		byPath:     make(map[string]*Module),
	}
}

// Modules returns all loaded modules, in the order they were discovered.
func (p *Importer) Modules() []*Module {
	return p.modules
}

// Files returns the filenames of all loaded modules.
func (p *Importer) Files() []string {
	var files []string
	//
	for _, m := range p.modules {
		files = append(files, m.File.Filename())
	}
	//
	return files
}

// IsIntrinsic determines whether a dotted module name refers to (a submodule
// of) an intrinsic module.
func (p *Importer) IsIntrinsic(name string) bool {
	for _, intrinsic := range p.intrinsics {
		if name == intrinsic || strings.HasPrefix(name, intrinsic+".") {
			return true
		}
	}
	//
	return false
}

// Load the given entry module along with every module reachable from it by
// import statements.  Modules are discovered in waves, where the modules of
// each wave are parsed in parallel before being merged (in order of discovery)
// into the resolution table.  An error is returned only when the entry module
// cannot be read, or the context is cancelled; all other problems are reported
// as diagnostics.
func (p *Importer) Load(ctx context.Context, filename string) (*Module, error) {
	path, err := filepath.Abs(filename)
	//
	if err != nil {
		return nil, errors.Wrapf(err, "cannot resolve %s", filename)
	}
	//
	p.entryDir = filepath.Dir(filename)
	stem := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	wave := []pending{{filename: filename, path: path, name: stem}}
	visited := map[string]bool{path: true}
	//
	for len(wave) > 0 {
		var next []pending
		//
		results, err := p.parseWave(ctx, wave)
		//
		if err != nil {
			return nil, err
		}
		//
		for i, item := range wave {
			if results[i].err != nil && item.importer == nil {
				return nil, results[i].err
			}
			//
			module := p.install(item, results[i])
			// Discover imports of this module
			for _, d := range p.discover(module) {
				if !visited[d.path] {
					visited[d.path] = true
					next = append(next, d)
				}
			}
		}
		//
		wave = next
	}
	// Build namespaces now that all modules are loaded
	for _, m := range p.modules {
		p.link(m)
	}
	//
	for _, m := range p.modules {
		p.checkImports(m)
	}
	//
	return p.byPath[path], nil
}

// Parse a wave of modules concurrently.  Workers never touch the diagnostics,
// since their ordering would then depend on scheduling.
func (p *Importer) parseWave(ctx context.Context, wave []pending) ([]parsed, error) {
	var (
		results = make([]parsed, len(wave))
		g, gctx = errgroup.WithContext(ctx)
	)
	//
	g.SetLimit(runtime.GOMAXPROCS(0))
	//
	for i, item := range wave {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			//
			bytes, err := os.ReadFile(item.filename)
			//
			if err != nil {
				results[i].err = errors.Wrapf(err, "cannot read module %s", item.name)
				return nil
			}
			//
			file := source.NewSourceFile(item.filename, bytes)
			arena, root, errs := parser.Parse(file)
			results[i] = parsed{file, arena, root, errs, nil}
			//
			return nil
		})
	}
	//
	return results, g.Wait()
}

// Install a freshly parsed module into the resolution table, reporting any
// problems arising.
func (p *Importer) install(item pending, result parsed) *Module {
	module := &Module{
		Name:      item.name,
		File:      result.file,
		Arena:     result.arena,
		Root:      result.root,
		path:      item.path,
		defs:      make(map[string]*FunctionDecl),
		imports:   make(map[string]Symbol),
		constants: make(map[string]Symbol),
		refs:      make(map[ast.NodeID]moduleRef),
	}
	//
	if result.err != nil {
		// Source file is unavailable, so report against the import.
		module.File = source.NewSourceFile(item.filename, nil)
		module.Arena = ast.NewArena()
		node := item.importer.Arena.Node(item.node)
		p.diags.Error(node.File, node.Span, "%s", result.err.Error())
	}
	//
	for _, err := range result.errs {
		p.diags.Report(diag.ERROR, err.SourceFile(), err.Span(), err.Message())
	}
	//
	if len(result.errs) > 0 {
		module.Root = ast.NONE
	}
	//
	log.Debugf("loaded module %s from %s", module.Name, module.File.Filename())
	//
	p.modules = append(p.modules, module)
	p.byPath[item.path] = module
	//
	return module
}

// Discover the modules referenced by all import statements in a module,
// including those nested within function bodies.
func (p *Importer) discover(module *Module) []pending {
	var found []pending
	//
	if module.Failed() {
		return nil
	}
	//
	module.Arena.Walk(module.Root, func(id ast.NodeID) bool {
		node := module.Arena.Node(id)
		//
		switch node.Kind {
		case ast.IMPORT:
			for _, alias := range node.Children {
				name := module.Arena.Node(alias).Name
				found = append(found, p.reference(module, alias, name, 0, true)...)
			}
			//
			return false
		case ast.IMPORT_FROM:
			// A bare relative import ("from . import x") need not name a package.
			base := p.reference(module, id, node.Name, node.Level, node.Name != "")
			_, resolved := module.refs[id]
			found = append(found, base...)
			// Names imported from a package may themselves be modules
			for _, alias := range node.Children {
				name := module.Arena.Node(alias).Name
				//
				if name != "*" && (node.Level > 0 || !p.IsIntrinsic(node.Name)) {
					sub := join(node.Name, name)
					found = append(found, p.reference(module, alias, sub, node.Level, !resolved && node.Name == "")...)
				}
			}
			//
			return false
		default:
			return true
		}
	})
	//
	return found
}

// Record the module referenced by a given node, returning it if it must be
// loaded.  When required, a failure to locate the module is reported.
func (p *Importer) reference(module *Module, node ast.NodeID, name string, level int,
	required bool) []pending {
	//
	if level == 0 && p.IsIntrinsic(name) {
		module.refs[node] = moduleRef{intrinsic: name}
		return nil
	}
	//
	filename, ok := p.locate(module, name, level)
	//
	if !ok {
		if required {
			n := module.Arena.Node(node)
			p.diags.Error(n.File, n.Span, "cannot find module %s", strings.Repeat(".", level)+name)
		}
		//
		return nil
	}
	//
	path, err := filepath.Abs(filename)
	//
	if err != nil {
		return nil
	}
	//
	module.refs[node] = moduleRef{path: path}
	// Relative modules are named after their location.
	if level > 0 {
		name = p.moduleName(filename)
	}
	//
	return []pending{{filename, path, name, module, node}}
}

// Locate the source file for a given module name, as referenced from a given
// module.  Relative imports are resolved only against the importing module's
// directory (walking up one directory for each dot after the first), whilst
// absolute imports search the importing module's directory, then the entry
// module's directory, then the configured path.
func (p *Importer) locate(module *Module, name string, level int) (string, bool) {
	var dirs []string
	//
	if level > 0 {
		dir := module.File.Dir()
		//
		for i := 1; i < level; i++ {
			dir = filepath.Dir(dir)
		}
		//
		dirs = append(dirs, dir)
	} else {
		for _, dir := range append([]string{module.File.Dir(), p.entryDir}, p.path...) {
			if !slices.Contains(dirs, dir) {
				dirs = append(dirs, dir)
			}
		}
	}
	//
	var parts []string
	//
	if name != "" {
		parts = strings.Split(name, ".")
	}
	//
	for _, dir := range dirs {
		base := filepath.Join(append([]string{dir}, parts...)...)
		//
		if len(parts) > 0 && isFile(base+".py") {
			return base + ".py", true
		} else if init := filepath.Join(base, "__init__.py"); isFile(init) {
			return init, true
		}
	}
	//
	return "", false
}

// Determine the dotted name of a module from its filename, relative to the
// entry directory where possible.
func (p *Importer) moduleName(filename string) string {
	name := filename
	//
	if rel, err := filepath.Rel(p.entryDir, filename); err == nil && !strings.HasPrefix(rel, "..") {
		name = rel
	}
	//
	name = strings.TrimSuffix(name, ".py")
	name = strings.TrimSuffix(name, string(filepath.Separator)+"__init__")
	//
	return strings.ReplaceAll(filepath.ToSlash(name), "/", ".")
}

// Build the top-level namespace of a module.
func (p *Importer) link(module *Module) {
	if module.Failed() {
		return
	}
	//
	for _, id := range module.Arena.Node(module.Root).Body {
		node := module.Arena.Node(id)
		//
		switch node.Kind {
		case ast.FUNCTION_DEF:
			fn := p.declare(module, id)
			//
			if _, ok := module.defs[fn.Name]; ok {
				p.diags.Warn(node.File, node.Span, "duplicate definition of %s", fn.Name)
			}
			//
			module.functions = append(module.functions, fn)
			module.defs[fn.Name] = fn
		case ast.IMPORT, ast.IMPORT_FROM:
			p.BindImport(module, id, func(name string, symbol Symbol) {
				if name == "*" {
					module.wildcards = append(module.wildcards, symbol)
				} else {
					module.imports[name] = symbol
				}
			})
		case ast.ASSIGN:
			target := module.Arena.Node(node.Children[0])
			//
			if target.Kind == ast.NAME {
				module.constants[target.Name] = Symbol{Kind: CONSTANT_SYMBOL, Module: module, Node: node.Children[1]}
			}
		}
	}
	// Imports take precedence over definitions
	for _, fn := range module.Functions() {
		if _, ok := module.imports[fn.Name]; ok {
			p.diags.Warn(module.File, fn.Span(), "definition of %s is shadowed by an import", fn.Name)
		}
	}
}

// BindImport binds the names introduced by an import statement in a given
// module, using a given binding function.  This is used both for top-level
// imports and for those within function bodies.  Modules imported using "*"
// are bound to the name "*".
func (p *Importer) BindImport(module *Module, stmt ast.NodeID, bind func(string, Symbol)) {
	node := module.Arena.Node(stmt)
	//
	switch node.Kind {
	case ast.IMPORT:
		for _, alias := range node.Children {
			var (
				a      = module.Arena.Node(alias)
				symbol = p.moduleSymbol(module, alias)
			)
			//
			if symbol == nil {
				continue
			} else if a.AsName != "" {
				bind(a.AsName, *symbol)
			} else {
				bind(a.Name, *symbol)
			}
		}
	case ast.IMPORT_FROM:
		base := p.moduleSymbol(module, stmt)
		//
		for _, alias := range node.Children {
			var (
				a    = module.Arena.Node(alias)
				name = a.Name
			)
			//
			if a.AsName != "" {
				name = a.AsName
			}
			//
			if sub := p.moduleSymbol(module, alias); sub != nil {
				bind(name, *sub)
			} else if base == nil {
				continue
			} else if a.Name == "*" {
				bind("*", *base)
			} else if base.Kind == INTRINSIC_SYMBOL {
				bind(name, Symbol{Kind: INTRINSIC_SYMBOL, Intrinsic: base.Intrinsic, Name: a.Name})
			} else {
				bind(name, Symbol{Kind: IMPORTED_SYMBOL, Module: base.Module, Name: a.Name})
			}
		}
	default:
		panic("not an import statement")
	}
}

// Determine the module symbol referenced by a given node, or nil if that could
// not be resolved (which will already have been reported).
func (p *Importer) moduleSymbol(module *Module, node ast.NodeID) *Symbol {
	ref, ok := module.refs[node]
	//
	if !ok {
		return nil
	} else if ref.intrinsic != "" {
		return &Symbol{Kind: INTRINSIC_SYMBOL, Intrinsic: ref.intrinsic}
	} else if m, ok := p.byPath[ref.path]; ok {
		return &Symbol{Kind: MODULE_SYMBOL, Module: m}
	}
	//
	return nil
}

// Check that every name imported from a module exists.
func (p *Importer) checkImports(module *Module) {
	if module.Failed() {
		return
	}
	//
	for _, id := range module.Arena.Node(module.Root).Body {
		node := module.Arena.Node(id)
		//
		if node.Kind != ast.IMPORT_FROM {
			continue
		}
		//
		for _, alias := range node.Children {
			name := module.Arena.Node(alias).AsName
			//
			if name == "" {
				name = module.Arena.Node(alias).Name
			}
			//
			symbol, ok := module.imports[name]
			//
			if !ok || symbol.Kind != IMPORTED_SYMBOL || symbol.Module.Failed() {
				continue
			} else if _, ok := p.Lookup(module, name); !ok {
				n := module.Arena.Node(alias)
				p.diags.Error(n.File, n.Span, "cannot import name %s from %s", n.Name, symbol.Module.Name)
			}
		}
	}
}

// Construct the declaration for a given function definition, classifying it by
// its decorators and its parameters by their annotations.
func (p *Importer) declare(module *Module, id ast.NodeID) *FunctionDecl {
	var (
		arena = module.Arena
		node  = arena.Node(id)
		fn    = &FunctionDecl{Name: node.Name, Kind: PLAIN, Module: module, Node: id}
	)
	//
	for _, d := range arena.Decorators(id) {
		var (
			decorator = arena.Node(d)
			name      = decorator.Name[strings.LastIndex(decorator.Name, ".")+1:]
		)
		//
		switch name {
		case ENTRY_DECORATOR:
			fn.Kind = ENTRY
		case DECL_DECORATOR:
			// plain function
		case STUB_DECORATOR:
			fn.Kind = STUB
			p.declareStub(module, fn, d)
		default:
			p.diags.Warn(decorator.File, decorator.Span, "unknown decorator %s ignored", decorator.Name)
		}
	}
	//
	for _, q := range arena.Params(id) {
		param := arena.Node(q)
		fn.Params = append(fn.Params, Param{param.Name, paramTypes[param.Annotation], arena.Child(q, 0)})
	}
	//
	return fn
}

// Stubs must name the module and symbol which implements them.
func (p *Importer) declareStub(module *Module, fn *FunctionDecl, decorator ast.NodeID) {
	var (
		node = module.Arena.Node(decorator)
		args []string
	)
	//
	for _, arg := range node.Children {
		n := module.Arena.Node(arg)
		//
		if n.Kind == ast.CONSTANT && n.Value.Kind == ast.STRING_LIT {
			args = append(args, n.Value.String)
		}
	}
	//
	if len(args) != 2 || len(node.Children) != 2 {
		p.diags.Error(node.File, node.Span, "stub %s requires a module name and a symbol name", fn.Name)
		return
	}
	//
	fn.StubModule, fn.StubSymbol = args[0], args[1]
}

// EntryPoint determines the function from which compilation should start.  If
// an override is given, then this is resolved in the namespace of the entry
// module.  Otherwise, there must be exactly one entry function declared in the
// entry module.
func (p *Importer) EntryPoint(module *Module, override string) (*FunctionDecl, *diag.FatalError) {
	var candidates []*FunctionDecl
	//
	if module.Failed() {
		return nil, p.diags.Fatal(module.File, source.Span{}, "cannot compile module %s", module.Name)
	} else if override != "" {
		symbol, ok := p.Lookup(module, override)
		//
		if !ok || symbol.Kind != FUNCTION_SYMBOL {
			return nil, p.diags.Fatal(module.File, source.Span{}, "entry point %s not found", override)
		} else if symbol.Function.Kind == STUB {
			return nil, p.diags.Fatal(module.File, symbol.Function.Span(), "entry point %s is a stub", override)
		}
		//
		return symbol.Function, nil
	}
	//
	for _, fn := range module.Functions() {
		if fn.Kind == ENTRY {
			candidates = append(candidates, fn)
		}
	}
	//
	switch len(candidates) {
	case 0:
		return nil, p.diags.Fatal(module.File, source.Span{}, "missing entry point")
	case 1:
		return candidates[0], nil
	default:
		var names []string
		//
		for _, fn := range candidates {
			names = append(names, fn.Name)
		}
		//
		return nil, p.diags.Fatal(module.File, candidates[1].Span(), "multiple entry points (%s)",
			strings.Join(names, ", "))
	}
}

// Lookup resolves a name in the top-level namespace of a given module.  Imports
// take precedence over definitions, which take precedence over builtins, which
// take precedence over names imported using "*".
func (p *Importer) Lookup(module *Module, name string) (Symbol, bool) {
	return p.lookup(module, name, 0)
}

func (p *Importer) lookup(module *Module, name string, depth uint) (Symbol, bool) {
	if depth > maxImportChain {
		return Symbol{}, false
	} else if symbol, ok := module.imports[name]; ok {
		return p.follow(symbol, depth)
	} else if fn, ok := module.defs[name]; ok {
		return Symbol{Kind: FUNCTION_SYMBOL, Function: fn}, true
	} else if symbol, ok := module.constants[name]; ok {
		return symbol, true
	} else if isBuiltin(name) {
		return Symbol{Kind: BUILTIN_SYMBOL, Name: name}, true
	}
	// Check wildcards (latest first)
	for i := len(module.wildcards) - 1; i >= 0; i-- {
		wildcard := module.wildcards[i]
		//
		if wildcard.Kind == INTRINSIC_SYMBOL {
			return Symbol{Kind: INTRINSIC_SYMBOL, Intrinsic: wildcard.Intrinsic, Name: name}, true
		} else if symbol, ok := p.lookup(wildcard.Module, name, depth+1); ok {
			return symbol, true
		}
	}
	//
	return Symbol{}, false
}

// Resolve follows an imported symbol to the symbol it ultimately refers to.
func (p *Importer) Resolve(symbol Symbol) (Symbol, bool) {
	return p.follow(symbol, 0)
}

// Follow an imported symbol to its definition.
func (p *Importer) follow(symbol Symbol, depth uint) (Symbol, bool) {
	if symbol.Kind == IMPORTED_SYMBOL {
		return p.lookup(symbol.Module, symbol.Name, depth+1)
	}
	//
	return symbol, true
}

// Member resolves an attribute of a symbol, such as a function within an
// imported module.
func (p *Importer) Member(symbol Symbol, name string) (Symbol, bool) {
	switch symbol.Kind {
	case MODULE_SYMBOL:
		return p.Lookup(symbol.Module, name)
	case INTRINSIC_SYMBOL:
		return Symbol{Kind: INTRINSIC_SYMBOL, Intrinsic: join(symbol.Intrinsic, symbol.Name), Name: name}, true
	case IMPORTED_SYMBOL:
		if resolved, ok := p.follow(symbol, 0); ok {
			return p.Member(resolved, name)
		}
	}
	//
	return Symbol{}, false
}

func join(module string, name string) string {
	if module == "" {
		return name
	} else if name == "" {
		return module
	}
	//
	return module + "." + name
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
