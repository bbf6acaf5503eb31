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
	"context"
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/qgl2/go-qgl2/pkg/qgl2/compiler"
	"github.com/qgl2/go-qgl2/pkg/qgl2/diag"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var compileCmd = &cobra.Command{
	Use:   "compile [flags] file",
	Short: "compile a QGL2 program into per-resource sequences.",
	Long: `Compile the entry point of a given QGL2 file, along with every module it imports,
	 into one instruction sequence per resource.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		options := setup(cmd)
		//
		os.Exit(runCompile(cmd.Context(), options, args[0], terminalStreams(options)))
	},
}

// Streams to which a command writes its output and diagnostics, and whether
// each supports colour.
type streams struct {
	stdout    io.Writer
	stderr    io.Writer
	colourOut bool
	colourErr bool
}

func terminalStreams(options Options) streams {
	return streams{os.Stdout, os.Stderr, useColour(options, os.Stdout), useColour(options, os.Stderr)}
}

// Compile a given file and write the resulting program, returning the exit
// code.
func runCompile(ctx context.Context, options Options, filename string, out streams) int {
	result, err := compileFile(ctx, options, filename, out)
	//
	if code := exitCode(result, err); code != EXIT_SUCCESS {
		return code
	} else if err := writeProgram(options, result.Program, out.stdout, out.colourOut); err != nil {
		fmt.Fprintln(out.stderr, err)
		return EXIT_USAGE
	}
	//
	return EXIT_SUCCESS
}

// Compile a given file, printing any diagnostics.  The result is nil only when
// the entry file could not be read.  When compilation fails, the returned error
// combines every error reported.
func compileFile(ctx context.Context, options Options, filename string, out streams) (*compiler.Result, error) {
	var diags = diag.NewDiagnostics()
	//
	if ctx == nil {
		ctx = context.Background()
	}
	//
	result, err := compiler.Compile(ctx, options.Config(filename), diags)
	//
	if err != nil {
		fmt.Fprintln(out.stderr, err)
		return nil, err
	}
	//
	printDiagnostics(out.stderr, diags, out.colourErr)
	//
	if !diags.Failed() {
		return result, nil
	}
	//
	log.Debugf("%d errors, %d warnings", diags.Count(diag.ERROR)+diags.Count(diag.FATAL),
		diags.Count(diag.WARNING))
	//
	if err = diags.Err(); err == nil {
		err = errors.Errorf("compilation of %s failed", filename)
	}
	//
	return result, err
}

// Determine the exit code for the outcome of compiling a file.
func exitCode(result *compiler.Result, err error) int {
	switch {
	case result == nil:
		return EXIT_USAGE
	case err != nil:
		return EXIT_FAILURE
	default:
		return EXIT_SUCCESS
	}
}

func init() {
	rootCmd.AddCommand(compileCmd)
	addCompileFlags(compileCmd)
}
