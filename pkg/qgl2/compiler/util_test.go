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
	"testing"

	"github.com/qgl2/go-qgl2/pkg/qgl2/diag"
	"github.com/stretchr/testify/require"
)

// Common preamble for test programs.
const preamble = `from qgl2.qgl2 import qgl2decl, qgl2main, qgl2stub, qreg, qreg_list, classical, concur, seq, QRegister
from qgl2.qgl1 import X90, Y90, Id, MEAS
`

// Write a set of modules into a fresh directory, returning that directory.
func writeModules(t *testing.T, files map[string]string) string {
	dir := t.TempDir()
	//
	for name, contents := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	}
	//
	return dir
}

// Load the module "main.py" from a set of modules.
func loadModules(t *testing.T, files map[string]string) (*Importer, *Module, *diag.Diagnostics) {
	var (
		dir      = writeModules(t, files)
		diags    = diag.NewDiagnostics()
		importer = NewImporter(diags, nil, DEFAULT_INTRINSICS)
	)
	//
	module, err := importer.Load(context.Background(), filepath.Join(dir, "main.py"))
	require.NoError(t, err)
	//
	return importer, module, diags
}

// Inline the entry point of "main.py" from a set of modules.
func inlineModules(t *testing.T, files map[string]string) (*Flattened, *diag.FatalError, *diag.Diagnostics) {
	importer, module, diags := loadModules(t, files)
	entry, fatal := importer.EntryPoint(module, "")
	require.Nil(t, fatal, "%v", diags.Items())
	//
	flat, fatal := NewInliner(importer, diags, 0).Inline(entry)
	//
	return flat, fatal, diags
}

// Compile "main.py" from a set of modules.
func compileModules(t *testing.T, files map[string]string) (*Result, *diag.Diagnostics) {
	var (
		dir   = writeModules(t, files)
		diags = diag.NewDiagnostics()
	)
	//
	result, err := Compile(context.Background(), DefaultConfig(filepath.Join(dir, "main.py")), diags)
	require.NoError(t, err)
	//
	return result, diags
}

// Extract the messages of all diagnostics.
func messages(diags *diag.Diagnostics) []string {
	var (
		items = diags.Items()
		msgs  []string
	)
	//
	for i := range items {
		msgs = append(msgs, items[i].Severity().String()+": "+items[i].Message())
	}
	//
	return msgs
}

// Dump a flattened program.
func dump(flat *Flattened) string {
	var text string
	//
	for _, stmt := range flat.Body {
		text += flat.Arena.Dump(stmt, 0)
	}
	//
	return text
}
