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
package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fsnotify/fsnotify"
	"github.com/hashicorp/go-multierror"
	"github.com/qgl2/go-qgl2/pkg/qgl2/compiler"
	"github.com/qgl2/go-qgl2/pkg/qgl2/diag"
	"github.com/qgl2/go-qgl2/pkg/qgl2/sequence"
	"github.com/qgl2/go-qgl2/pkg/util/source"
	log "github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const program = `from qgl2.qgl2 import qgl2main, QRegister
from qgl2.qgl1 import X90

@qgl2main
def main():
    q = QRegister('q1')
    X90(q)
`

const broken = `from qgl2.qgl2 import qgl2main, classical

@qgl2main
def main(n: classical):
    pass
`

// ============================================================================
// Options
// ============================================================================

func Test_Options_Defaults(t *testing.T) {
	options, err := loadOptions(newTestCommand(t))
	//
	require.NoError(t, err)
	assert.Equal(t, sequence.TEXT_FORMAT, options.Format)
	assert.Equal(t, uint(compiler.DEFAULT_MAX_INLINE_DEPTH), options.MaxInlineDepth)
	assert.Equal(t, compiler.DEFAULT_INTRINSICS, options.Intrinsics)
	assert.False(t, options.ForceColor)
}

func Test_Options_Env(t *testing.T) {
	t.Setenv("QGL2_MAX_INLINE_DEPTH", "7")
	t.Setenv("QGL2_MAIN", "entry")
	//
	options, err := loadOptions(newTestCommand(t))
	//
	require.NoError(t, err)
	assert.Equal(t, uint(7), options.MaxInlineDepth)
	assert.Equal(t, "entry", options.Main)
	//
	config := options.Config("main.py")
	assert.Equal(t, "main.py", config.Entry)
	assert.Equal(t, "entry", config.Main)
	assert.Equal(t, uint(7), config.MaxInlineDepth)
}

func Test_Options_ConfigFile(t *testing.T) {
	var (
		dir      = t.TempDir()
		filename = filepath.Join(dir, "settings.toml")
		cmd      = newTestCommand(t)
	)
	//
	require.NoError(t, os.WriteFile(filename, []byte("max-inline-depth = 3\nformat = \"json\"\ncolor = true\n"), 0o600))
	require.NoError(t, cmd.Flags().Set("config", filename))
	//
	options, err := loadOptions(cmd)
	require.NoError(t, err)
	assert.Equal(t, uint(3), options.MaxInlineDepth)
	assert.Equal(t, sequence.JSON_FORMAT, options.Format)
	assert.True(t, options.Color)
	assert.True(t, options.ForceColor)
	// Flags take precedence
	require.NoError(t, cmd.Flags().Set("format", "toml"))
	options, err = loadOptions(cmd)
	require.NoError(t, err)
	assert.Equal(t, sequence.TOML_FORMAT, options.Format)
}

func Test_Options_MissingConfigFile(t *testing.T) {
	cmd := newTestCommand(t)
	require.NoError(t, cmd.Flags().Set("config", filepath.Join(t.TempDir(), "missing.toml")))
	//
	_, err := loadOptions(cmd)
	assert.Error(t, err)
}

func Test_Options_UnknownFormat(t *testing.T) {
	cmd := newTestCommand(t)
	require.NoError(t, cmd.Flags().Set("format", "yaml"))
	//
	_, err := loadOptions(cmd)
	assert.EqualError(t, err, `unknown output format "yaml"`)
}

// ============================================================================
// Compile
// ============================================================================

func Test_Compile_Success(t *testing.T) {
	var (
		stdout, stderr bytes.Buffer
		filename       = writeSource(t, program)
	)
	//
	code := runCompile(context.Background(), textOptions(), filename, testStreams(&stdout, &stderr))
	//
	assert.Equal(t, EXIT_SUCCESS, code)
	assert.Empty(t, stderr.String())
	assert.Equal(t, `q1:
    INIT
    BARRIER step_0 (q1)
    X90(q1)
    BARRIER end_1 (q1)
`, stdout.String())
}

func Test_Compile_OutputFile(t *testing.T) {
	var (
		stdout, stderr bytes.Buffer
		filename       = writeSource(t, program)
		options        = textOptions()
	)
	//
	options.Format = sequence.JSON_FORMAT
	options.Output = filepath.Join(t.TempDir(), "out.json")
	//
	code := runCompile(context.Background(), options, filename, testStreams(&stdout, &stderr))
	require.Equal(t, EXIT_SUCCESS, code)
	assert.Empty(t, stdout.String())
	//
	data, err := os.ReadFile(options.Output)
	require.NoError(t, err)
	//
	decoded, err := sequence.Decode(strings.NewReader(string(data)), sequence.JSON_FORMAT)
	require.NoError(t, err)
	assert.Equal(t, []string{"q1"}, decoded.Resources)
}

func Test_Compile_Table(t *testing.T) {
	var (
		stdout, stderr bytes.Buffer
		filename       = writeSource(t, program)
		options        = textOptions()
	)
	//
	options.Format = TABLE_FORMAT
	code := runCompile(context.Background(), options, filename, testStreams(&stdout, &stderr))
	//
	require.Equal(t, EXIT_SUCCESS, code)
	assert.Equal(t, "q1                 \nINIT               \nBARRIER step_0 (q1)\nX90(q1)            \nBARRIER end_1 (q1) \n",
		stdout.String())
}

func Test_Compile_Failure(t *testing.T) {
	var (
		stdout, stderr bytes.Buffer
		filename       = writeSource(t, broken)
	)
	//
	code := runCompile(context.Background(), textOptions(), filename, testStreams(&stdout, &stderr))
	//
	assert.Equal(t, EXIT_FAILURE, code)
	assert.Empty(t, stdout.String())
	assert.Contains(t, stderr.String(), "error: ")
}

func Test_Compile_MissingFile(t *testing.T) {
	var stdout, stderr bytes.Buffer
	//
	code := runCompile(context.Background(), textOptions(), filepath.Join(t.TempDir(), "missing.py"),
		testStreams(&stdout, &stderr))
	//
	assert.Equal(t, EXIT_USAGE, code)
	assert.NotEmpty(t, stderr.String())
}

func Test_Check(t *testing.T) {
	var stdout, stderr bytes.Buffer
	//
	assert.Equal(t, EXIT_SUCCESS, runCheck(context.Background(), textOptions(), writeSource(t, program),
		testStreams(&stdout, &stderr)))
	assert.Equal(t, EXIT_FAILURE, runCheck(context.Background(), textOptions(), writeSource(t, broken),
		testStreams(&stdout, &stderr)))
	assert.Empty(t, stdout.String())
}

func Test_CompileFile_Errors(t *testing.T) {
	var stdout, stderr bytes.Buffer
	//
	result, err := compileFile(context.Background(), textOptions(), writeSource(t, broken),
		testStreams(&stdout, &stderr))
	//
	require.NotNil(t, result)
	assert.Equal(t, EXIT_FAILURE, exitCode(result, err))
	assert.ErrorContains(t, err, "1 error occurred")
	assert.ErrorContains(t, err, "entry point main has no value for parameter n")
}

// ============================================================================
// Watch
// ============================================================================

func Test_Watch_Rebuild(t *testing.T) {
	var (
		stdout, stderr bytes.Buffer
		filename       = writeSource(t, program)
		hook           = logtest.NewGlobal()
		ctx            = context.Background()
	)
	//
	notify, err := fsnotify.NewWatcher()
	require.NoError(t, err)
	//
	defer notify.Close()
	//
	w := &watcher{textOptions(), filename, testStreams(&stdout, &stderr), notify, make(map[string]bool), 0}
	// Unchanged sequences are written once
	w.rebuild(ctx)
	w.rebuild(ctx)
	assert.Equal(t, 1, strings.Count(stdout.String(), "X90(q1)"))
	assert.True(t, w.dirs[filepath.Dir(filename)])
	// Changed sequences are written again
	require.NoError(t, os.WriteFile(filename, []byte(strings.ReplaceAll(program, "X90", "Y90")), 0o600))
	w.rebuild(ctx)
	assert.Equal(t, 1, strings.Count(stdout.String(), "X90(q1)"))
	assert.Equal(t, 1, strings.Count(stdout.String(), "Y90(q1)"))
	// Failures are reported without writing
	written := stdout.Len()
	//
	require.NoError(t, os.WriteFile(filename, []byte(broken), 0o600))
	w.rebuild(ctx)
	assert.Equal(t, written, stdout.Len())
	assert.Contains(t, stderr.String(), "has no value for parameter n")
	//
	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, log.WarnLevel, entry.Level)
	require.IsType(t, &multierror.Error{}, entry.Data[log.ErrorKey])
	assert.Len(t, entry.Data[log.ErrorKey].(*multierror.Error).Errors, 1)
	// Restoring the last program written does not rewrite it
	require.NoError(t, os.WriteFile(filename, []byte(strings.ReplaceAll(program, "X90", "Y90")), 0o600))
	w.rebuild(ctx)
	assert.Equal(t, written, stdout.Len())
}

// ============================================================================
// Printing
// ============================================================================

func Test_PrintDiagnostic(t *testing.T) {
	var (
		buf   bytes.Buffer
		file  = source.NewSourceFile("main.py", []byte("x = 1\ny = foo(x)\n"))
		diags = diag.NewDiagnostics()
	)
	// Highlight "foo"
	diags.Error(file, source.NewSpan(10, 13), "unknown function %s", "foo")
	printDiagnostics(&buf, diags, false)
	//
	assert.Equal(t, "main.py:2:5-8 error: unknown function foo\ny = foo(x)\n    ^^^\n", buf.String())
}

func Test_AlignSequences(t *testing.T) {
	var (
		both    = []string{"q1", "q2"}
		program = sequence.NewProgram(both)
	)
	//
	program.Sequences["q1"] = []sequence.Instruction{
		{Op: sequence.INIT},
		{Op: sequence.BARRIER, Label: "step_0", Resources: both},
		{Op: sequence.INSTR, Name: "X90", Args: []string{"q1"}},
		{Op: sequence.INSTR, Name: "Y90", Args: []string{"q1"}},
		{Op: sequence.BARRIER, Label: "end_1", Resources: both},
	}
	program.Sequences["q2"] = []sequence.Instruction{
		{Op: sequence.INIT},
		{Op: sequence.BARRIER, Label: "step_0", Resources: both},
		{Op: sequence.INSTR, Name: "X90", Args: []string{"q2"}},
		{Op: sequence.BARRIER, Label: "end_1", Resources: both},
	}
	//
	rows := alignSequences(program)
	require.Len(t, rows, 5)
	// Barriers sharing a label share a row
	assert.Equal(t, "step_0", rows[1][0].Label)
	assert.Equal(t, "step_0", rows[1][1].Label)
	assert.Equal(t, "Y90", rows[3][0].Name)
	assert.Nil(t, rows[3][1])
	assert.Equal(t, "end_1", rows[4][0].Label)
	assert.Equal(t, "end_1", rows[4][1].Label)
}

// ============================================================================
// Helpers
// ============================================================================

func newTestCommand(t *testing.T) *cobra.Command {
	var cmd = &cobra.Command{Use: "test"}
	// Run from an empty directory, such that no configuration file is found.
	t.Chdir(t.TempDir())
	//
	addCompileFlags(cmd)
	cmd.Flags().String("config", "", "")
	cmd.Flags().Bool("color", false, "")
	cmd.Flags().Bool("verbose", false, "")
	//
	return cmd
}

func textOptions() Options {
	return Options{Format: sequence.TEXT_FORMAT, MaxInlineDepth: compiler.DEFAULT_MAX_INLINE_DEPTH}
}

func testStreams(stdout, stderr *bytes.Buffer) streams {
	return streams{stdout, stderr, false, false}
}

func writeSource(t *testing.T, contents string) string {
	filename := filepath.Join(t.TempDir(), "main.py")
	require.NoError(t, os.WriteFile(filename, []byte(contents), 0o600))
	//
	return filename
}
