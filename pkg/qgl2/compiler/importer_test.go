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
	"path/filepath"
	"testing"

	"github.com/qgl2/go-qgl2/pkg/qgl2/diag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Importer_EntryPoint_01(t *testing.T) {
	importer, module, diags := loadModules(t, map[string]string{
		"main.py": preamble + `
@qgl2decl
def helper(q: qreg):
    X90(q)

@qgl2main
def main():
    q = QRegister('q1')
    helper(q)
`})
	entry, fatal := importer.EntryPoint(module, "")
	require.Nil(t, fatal)
	assert.Equal(t, "main", entry.Name)
	assert.Equal(t, ENTRY, entry.Kind)
	assert.Empty(t, diags.Items())
	assert.Len(t, module.Functions(), 2)
}

func Test_Importer_EntryPoint_02(t *testing.T) {
	importer, module, diags := loadModules(t, map[string]string{
		"main.py": preamble + `
@qgl2main
def first():
    pass

@qgl2main
def second():
    pass
`})
	_, fatal := importer.EntryPoint(module, "")
	require.NotNil(t, fatal)
	assert.Equal(t, "multiple entry points (first, second)", fatal.Message())
	assert.Equal(t, diag.FATAL, diags.Max())
	// Reported at the second entry point
	assert.Equal(t, 9, fatal.Line())
}

func Test_Importer_EntryPoint_03(t *testing.T) {
	importer, module, _ := loadModules(t, map[string]string{
		"main.py": preamble + `
@qgl2decl
def helper():
    pass
`})
	_, fatal := importer.EntryPoint(module, "")
	require.NotNil(t, fatal)
	assert.Equal(t, "missing entry point", fatal.Message())
}

func Test_Importer_EntryPoint_04(t *testing.T) {
	files := map[string]string{
		"main.py": preamble + `
@qgl2decl
def other():
    pass

@qgl2stub('QGL.PulsePrimitives', 'Utheta')
def stub(q: qreg):
    pass

@qgl2main
def main():
    pass
`}
	// Override resolves to a plain function
	importer, module, _ := loadModules(t, files)
	entry, fatal := importer.EntryPoint(module, "other")
	require.Nil(t, fatal)
	assert.Equal(t, "other", entry.Name)
	// Override which does not exist
	_, fatal = importer.EntryPoint(module, "missing")
	require.NotNil(t, fatal)
	assert.Equal(t, "entry point missing not found", fatal.Message())
	// Override which is a stub
	_, fatal = importer.EntryPoint(module, "stub")
	require.NotNil(t, fatal)
	assert.Equal(t, "entry point stub is a stub", fatal.Message())
}

func Test_Importer_FromImport_01(t *testing.T) {
	importer, module, diags := loadModules(t, map[string]string{
		"main.py": preamble + `
from lib import helper as h

@qgl2main
def main():
    h(QRegister('q1'))
`,
		"lib.py": preamble + `
@qgl2decl
def helper(q: qreg):
    X90(q)
`})
	require.Empty(t, diags.Items())
	//
	symbol, ok := importer.Lookup(module, "h")
	require.True(t, ok)
	require.Equal(t, FUNCTION_SYMBOL, symbol.Kind)
	assert.Equal(t, "helper", symbol.Function.Name)
	assert.Equal(t, "lib", symbol.Function.Module.Name)
	assert.Equal(t, RESOURCE, symbol.Function.Params[0].Type)
	// Original name is not bound
	_, ok = importer.Lookup(module, "helper")
	assert.False(t, ok)
	assert.Len(t, importer.Modules(), 2)
}

func Test_Importer_Package_01(t *testing.T) {
	importer, module, diags := loadModules(t, map[string]string{
		"main.py": preamble + `
import pkg.sub as m

@qgl2main
def main():
    m.pulse(QRegister('q1'))
`,
		"pkg/__init__.py": "",
		"pkg/sub.py": preamble + `
@qgl2decl
def pulse(q: qreg):
    Y90(q)
`})
	require.Empty(t, diags.Items())
	//
	symbol, ok := importer.Lookup(module, "m")
	require.True(t, ok)
	require.Equal(t, MODULE_SYMBOL, symbol.Kind)
	assert.Equal(t, "pkg.sub", symbol.Module.Name)
	//
	member, ok := importer.Member(symbol, "pulse")
	require.True(t, ok)
	require.Equal(t, FUNCTION_SYMBOL, member.Kind)
	assert.Equal(t, "pkg.sub.pulse", member.Function.QualifiedName())
}

func Test_Importer_Relative_01(t *testing.T) {
	importer, module, diags := loadModules(t, map[string]string{
		"main.py": preamble + `
from pkg.a import f

@qgl2main
def main():
    f()
`,
		"pkg/__init__.py": "",
		"pkg/a.py": `
from .b import g

def f():
    g()
`,
		"pkg/b.py": `
from . import c

def g():
    c.h()
`,
		"pkg/c.py": `
def h():
    pass
`})
	require.Empty(t, diags.Items())
	assert.Len(t, importer.Modules(), 4)
	//
	symbol, ok := importer.Lookup(module, "f")
	require.True(t, ok)
	assert.Equal(t, "pkg.a", symbol.Function.Module.Name)
}

func Test_Importer_Missing_01(t *testing.T) {
	_, module, diags := loadModules(t, map[string]string{
		"main.py": preamble + `
import nowhere

@qgl2main
def main():
    pass
`})
	assert.Equal(t, []string{"error: cannot find module nowhere"}, messages(diags))
	assert.False(t, module.Failed())
}

func Test_Importer_Missing_02(t *testing.T) {
	_, _, diags := loadModules(t, map[string]string{
		"main.py": preamble + `
from lib import absent

@qgl2main
def main():
    pass
`,
		"lib.py": `
def present():
    pass
`})
	assert.Equal(t, []string{"error: cannot import name absent from lib"}, messages(diags))
}

func Test_Importer_Cycle_01(t *testing.T) {
	importer, module, diags := loadModules(t, map[string]string{
		"main.py": preamble + `
from a import f

@qgl2main
def main():
    f()
`,
		"a.py": `
from b import g

def f():
    g()
`,
		"b.py": `
from a import f

def g():
    pass
`})
	require.Empty(t, diags.Items())
	assert.Len(t, importer.Modules(), 3)
	//
	_, ok := importer.Lookup(module, "f")
	assert.True(t, ok)
}

func Test_Importer_Duplicate_01(t *testing.T) {
	importer, module, diags := loadModules(t, map[string]string{
		"main.py": preamble + `
@qgl2decl
def f(q: qreg):
    X90(q)

@qgl2decl
def f(q: qreg):
    Y90(q)

@qgl2main
def main():
    pass
`})
	assert.Equal(t, []string{"warning: duplicate definition of f"}, messages(diags))
	// Last definition wins
	symbol, ok := importer.Lookup(module, "f")
	require.True(t, ok)
	assert.Contains(t, module.Arena.Dump(symbol.Function.Node, 0), "Y90(q)")
}

func Test_Importer_Stub_01(t *testing.T) {
	importer, module, diags := loadModules(t, map[string]string{
		"main.py": preamble + `
@qgl2stub('QGL.PulsePrimitives', 'Utheta')
def Utheta(q: qreg, amp=0, phase=0):
    pass

@qgl2stub('QGL.PulsePrimitives')
def Broken(q: qreg):
    pass

@qgl2main
def main():
    pass
`})
	assert.Equal(t, []string{"error: stub Broken requires a module name and a symbol name"}, messages(diags))
	//
	symbol, ok := importer.Lookup(module, "Utheta")
	require.True(t, ok)
	assert.Equal(t, STUB, symbol.Function.Kind)
	assert.Equal(t, "QGL.PulsePrimitives", symbol.Function.StubModule)
	assert.Equal(t, "Utheta", symbol.Function.StubSymbol)
	assert.Len(t, symbol.Function.Params, 3)
}

func Test_Importer_Intrinsic_01(t *testing.T) {
	importer, module, diags := loadModules(t, map[string]string{
		"main.py": `
from qgl2.qgl2 import *
import qgl2.qgl1 as q1

@qgl2main
def main():
    pass
`})
	require.Empty(t, diags.Items())
	// Wildcard from an intrinsic module
	symbol, ok := importer.Lookup(module, "QRegister")
	require.True(t, ok)
	assert.Equal(t, Symbol{Kind: INTRINSIC_SYMBOL, Intrinsic: "qgl2.qgl2", Name: "QRegister"}, symbol)
	// Attribute of an intrinsic module
	symbol, ok = importer.Lookup(module, "q1")
	require.True(t, ok)
	//
	member, ok := importer.Member(symbol, "X90")
	require.True(t, ok)
	assert.Equal(t, INTRINSIC_SYMBOL, member.Kind)
	assert.Equal(t, "X90", member.Name)
	//
	assert.True(t, importer.IsIntrinsic("qgl2.qgl1"))
	assert.False(t, importer.IsIntrinsic("lib"))
	// Builtins are always available
	symbol, ok = importer.Lookup(module, "range")
	require.True(t, ok)
	assert.Equal(t, BUILTIN_SYMBOL, symbol.Kind)
}

func Test_Importer_Wildcard_01(t *testing.T) {
	importer, module, diags := loadModules(t, map[string]string{
		"main.py": preamble + `
from lib import *

@qgl2main
def main():
    helper()
`,
		"lib.py": `
def helper():
    pass
`})
	require.Empty(t, diags.Items())
	//
	symbol, ok := importer.Lookup(module, "helper")
	require.True(t, ok)
	assert.Equal(t, "lib", symbol.Function.Module.Name)
}

func Test_Importer_Shadow_01(t *testing.T) {
	_, _, diags := loadModules(t, map[string]string{
		"main.py": preamble + `
def X90(q):
    pass

@qgl2main
def main():
    pass
`})
	assert.Equal(t, []string{"warning: definition of X90 is shadowed by an import"}, messages(diags))
}

func Test_Importer_ParseError_01(t *testing.T) {
	importer, module, diags := loadModules(t, map[string]string{
		"main.py": preamble + `
@qgl2main
def main(:
    pass
`})
	assert.True(t, module.Failed())
	assert.True(t, diags.Failed())
	//
	_, fatal := importer.EntryPoint(module, "")
	require.NotNil(t, fatal)
	assert.Equal(t, "cannot compile module main", fatal.Message())
}

func Test_Importer_ReadError_01(t *testing.T) {
	var (
		diags    = diag.NewDiagnostics()
		importer = NewImporter(diags, nil, DEFAULT_INTRINSICS)
	)
	//
	_, err := importer.Load(context.Background(), filepath.Join(t.TempDir(), "missing.py"))
	assert.Error(t, err)
}

func Test_Importer_SearchPath_01(t *testing.T) {
	var (
		libs  = writeModules(t, map[string]string{"shared.py": "def pulse():\n    pass\n"})
		dir   = writeModules(t, map[string]string{"main.py": "from shared import pulse\n"})
		diags = diag.NewDiagnostics()
	)
	//
	importer := NewImporter(diags, []string{libs}, DEFAULT_INTRINSICS)
	module, err := importer.Load(context.Background(), filepath.Join(dir, "main.py"))
	require.NoError(t, err)
	require.Empty(t, diags.Items())
	//
	symbol, ok := importer.Lookup(module, "pulse")
	require.True(t, ok)
	assert.Equal(t, filepath.Join(libs, "shared.py"), symbol.Function.Module.File.Filename())
	assert.Len(t, importer.Files(), 2)
}
