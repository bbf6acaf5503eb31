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
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/qgl2/go-qgl2/pkg/qgl2/diag"
)

// CheckInvalid checks that a given test program fails to compile, producing
// exactly the diagnostics given at its beginning.
func CheckInvalid(t *testing.T, test string) {
	var filename = testFilename(test, SOURCE_EXT)
	// Enable testing each program in parallel
	t.Parallel()
	//
	srcfile := readSourceFile(t, filename)
	// Extract expected diagnostics for comparison
	expected, errs := ExtractExpectedDiagnostics(srcfile)
	//
	if len(errs) > 0 {
		// Report any errors encountered parsing the expectations themselves.
		t.Fatal(errors.Join(errs...))
	} else if len(expected) == 0 {
		t.Fatalf("%s does not declare any expected diagnostics", filename)
	}
	//
	result, diags := compile(t, filename)
	// Check program did not compile!
	if !diags.Failed() || result.Program != nil {
		t.Fatalf("%s should not have compiled", filename)
	}
	//
	checkDiagnostics(t, filename, expected, diags.Items())
}

// Check the diagnostics reported for a program match those expected, in the
// order they were reported.
func checkDiagnostics(t *testing.T, filename string, expected []ExpectedDiagnostic, actual []diag.Diagnostic) {
	var (
		want = make([]string, len(expected))
		got  = make([]string, len(actual))
	)
	//
	for i, e := range expected {
		want[i] = e.String()
	}
	//
	for i := range actual {
		got[i] = diagnosticToString(&actual[i])
	}
	//
	if diff := cmp.Diff(want, got, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("%s: unexpected diagnostics (-want +got):\n%s", filename, diff)
	}
}
