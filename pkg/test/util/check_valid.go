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
	"bytes"
	"errors"
	"os"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/qgl2/go-qgl2/pkg/qgl2/sequence"
)

// CheckValid checks that a given test program compiles, producing the
// sequences given in its accompanying output file.  The program is also
// checked to survive encoding and decoding in each serialised format.
func CheckValid(t *testing.T, test string) {
	var filename = testFilename(test, SOURCE_EXT)
	// Enable testing each program in parallel
	t.Parallel()
	//
	srcfile := readSourceFile(t, filename)
	// Valid programs may still produce warnings.
	expected, errs := ExtractExpectedDiagnostics(srcfile)
	//
	if len(errs) > 0 {
		t.Fatal(errors.Join(errs...))
	}
	//
	result, diags := compile(t, filename)
	checkDiagnostics(t, filename, expected, diags.Items())
	//
	if result.Program == nil {
		t.Fatalf("%s should have compiled", filename)
	}
	// Compare against expected output
	output, err := os.ReadFile(testFilename(test, OUTPUT_EXT))
	//
	if err != nil {
		t.Fatal(err)
	} else if diff := cmp.Diff(string(output), result.Program.Text()); diff != "" {
		t.Errorf("%s: unexpected sequences (-want +got):\n%s", filename, diff)
	}
	//
	for _, format := range []string{sequence.JSON_FORMAT, sequence.TOML_FORMAT} {
		checkEncoding(t, filename, format, result.Program)
	}
}

// Check a program is unchanged by encoding and decoding it in a given format.
func checkEncoding(t *testing.T, filename string, format string, program *sequence.Program) {
	var buf bytes.Buffer
	//
	if err := program.Encode(&buf, format); err != nil {
		t.Fatalf("%s: %s", filename, err)
	}
	//
	decoded, err := sequence.Decode(&buf, format)
	//
	if err != nil {
		t.Fatalf("%s: %s", filename, err)
	} else if diff := cmp.Diff(program.Text(), decoded.Text()); diff != "" {
		t.Errorf("%s: %s encoding is lossy (-want +got):\n%s", filename, format, diff)
	} else if program.Fingerprint() != decoded.Fingerprint() {
		t.Errorf("%s: %s encoding changes fingerprint", filename, format)
	}
}
