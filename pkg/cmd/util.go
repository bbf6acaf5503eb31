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
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/qgl2/go-qgl2/pkg/qgl2/diag"
	"github.com/qgl2/go-qgl2/pkg/qgl2/sequence"
	"github.com/qgl2/go-qgl2/pkg/util/termio"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// Process exit codes.
const (
	EXIT_SUCCESS = 0
	// Compilation reported an error.
	EXIT_FAILURE = 1
	// Usage, configuration or I/O error.
	EXIT_USAGE = 2
)

// GetFlag gets an expected flag, or exits if an error arises.
func GetFlag(cmd *cobra.Command, flag string) bool {
	r, err := cmd.Flags().GetBool(flag)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(EXIT_USAGE)
	}
	//
	return r
}

// GetString gets an expected string flag, or exits if an error arises.
func GetString(cmd *cobra.Command, flag string) string {
	r, err := cmd.Flags().GetString(flag)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(EXIT_USAGE)
	}
	//
	return r
}

// Determine whether colour should be used when writing to a given file.
func useColour(options Options, out *os.File) bool {
	if options.ForceColor {
		return options.Color
	}
	//
	return term.IsTerminal(int(out.Fd()))
}

// Escape used to highlight a diagnostic of a given severity.
func severityEscape(severity diag.Severity) termio.AnsiEscape {
	switch severity {
	case diag.WARNING:
		return termio.NewAnsiEscape().Bold().FgColour(termio.TERM_YELLOW)
	case diag.ERROR, diag.FATAL:
		return termio.NewAnsiEscape().Bold().FgColour(termio.TERM_RED)
	default:
		return termio.NewAnsiEscape()
	}
}

// Print all diagnostics in the order they were reported.
func printDiagnostics(w io.Writer, diags *diag.Diagnostics, colour bool) {
	items := diags.Items()
	//
	for i := range items {
		printDiagnostic(w, &items[i], colour)
	}
}

// Print a diagnostic with appropriate highlighting.
func printDiagnostic(w io.Writer, d *diag.Diagnostic, colour bool) {
	var (
		severity = severityEscape(d.Severity()).Wrap(d.Severity().String(), colour)
		err      = d.SyntaxError()
	)
	//
	if d.File() == nil {
		fmt.Fprintf(w, "%s: %s\n", severity, d.Message())
		return
	}
	//
	var (
		line       = err.FirstEnclosingLine()
		start, end = d.Columns()
		text       = line.String()
	)
	// Print error + line number
	fmt.Fprintf(w, "%s:%d:%d-%d %s: %s\n", d.File().Filename(), d.Line(), start, end, severity, d.Message())
	// Print line
	fmt.Fprintln(w, text)
	// Print indent (todo: account for tabs)
	fmt.Fprint(w, strings.Repeat(" ", max(start-1, 0)))
	// Print highlight
	fmt.Fprintln(w, severityEscape(d.Severity()).Wrap(strings.Repeat("^", max(end-start, 1)), colour))
}

// Write a compiled program in the configured format, either to the configured
// output file or to a given writer.  Colour applies only to the table format.
func writeProgram(options Options, program *sequence.Program, stdout io.Writer, colour bool) error {
	var out = stdout
	//
	if options.Output != "" {
		file, err := os.Create(options.Output)
		//
		if err != nil {
			return errors.Wrapf(err, "cannot create %s", options.Output)
		}
		//
		defer file.Close()
		//
		out = file
	}
	//
	if options.Format == TABLE_FORMAT {
		return NewSequencePrinter().AnsiEscapes(colour && options.Output == "").Print(out, program)
	}
	//
	return program.Encode(out, options.Format)
}
