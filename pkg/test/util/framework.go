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
package util

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/qgl2/go-qgl2/pkg/qgl2/compiler"
	"github.com/qgl2/go-qgl2/pkg/qgl2/diag"
	"github.com/qgl2/go-qgl2/pkg/util/source"
)

// TestDir determines the (relative) location of the test directory.  That is
// where the QGL2 test programs (python) and their expected outputs are found.
const TestDir = "../../testdata"

// SOURCE_EXT is the extension of test programs.
const SOURCE_EXT = "py"

// OUTPUT_EXT is the extension of the expected output of a valid test program.
const OUTPUT_EXT = "out"

// Determine the filename of a given test with a given extension.
func testFilename(test, ext string) string {
	return fmt.Sprintf("%s/%s.%s", TestDir, test, ext)
}

// Compile the test program found in a given file.
func compile(t *testing.T, filename string) (*compiler.Result, *diag.Diagnostics) {
	var diags = diag.NewDiagnostics()
	//
	result, err := compiler.Compile(context.Background(), compiler.DefaultConfig(filename), diags)
	// Check test file read ok
	if err != nil {
		t.Fatal(err)
	}
	//
	return result, diags
}

func readSourceFile(t *testing.T, filename string) *source.File {
	bytes, err := os.ReadFile(filename)
	// Check test file read ok
	if err != nil {
		t.Fatal(err)
	}
	// Package up as source file
	return source.NewSourceFile(filename, bytes)
}

// Render a reported diagnostic in the same form as an expected one, without
// the filename.
func diagnosticToString(d *diag.Diagnostic) string {
	start, end := d.Columns()
	//
	return fmt.Sprintf("%d:%d-%d %s: %s", d.Line(), start, end, d.Severity(), d.Message())
}
