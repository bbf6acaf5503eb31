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
package diag

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/qgl2/go-qgl2/pkg/util/source"
	log "github.com/sirupsen/logrus"
)

// Severity determines how serious a reported diagnostic is.  Severities are
// ordered such that a larger severity is more serious.
type Severity uint8

const (
	// NONE is the severity of a compilation where nothing has been reported.
	NONE Severity = iota
	// WARNING is an advisory diagnostic which does not prevent output.
	WARNING
	// ERROR is a recoverable diagnostic.  Compilation continues in order to
	// surface further errors, but no output is produced.
	ERROR
	// FATAL is a structural diagnostic which stops compilation immediately.
	FATAL
)

func (s Severity) String() string {
	switch s {
	case NONE:
		return "none"
	case WARNING:
		return "warning"
	case ERROR:
		return "error"
	case FATAL:
		return "fatal"
	default:
		panic(fmt.Sprintf("unknown severity %d", s))
	}
}

// Diagnostic is a single reported issue, tagged with the location in the
// original source file where it arose.
type Diagnostic struct {
	severity Severity
	// Underlying error which carries file, span and message.
	err source.SyntaxError
}

// Severity returns the severity of this diagnostic.
func (p *Diagnostic) Severity() Severity {
	return p.severity
}

// Message returns the message associated with this diagnostic.
func (p *Diagnostic) Message() string {
	return p.err.Message()
}

// SyntaxError returns the underlying (located) error for this diagnostic.
func (p *Diagnostic) SyntaxError() *source.SyntaxError {
	return &p.err
}

// File returns the file in which this diagnostic arose (or nil if it has no
// location).
func (p *Diagnostic) File() *source.File {
	return p.err.SourceFile()
}

// Line returns the line number (counting from 1) of this diagnostic, or 0 if
// it has no location.
func (p *Diagnostic) Line() int {
	if p.err.SourceFile() == nil {
		return 0
	}
	//
	line := p.err.FirstEnclosingLine()
	//
	return line.Number()
}

// Columns returns the column range (counting from 1) of this diagnostic on its
// line, or (0,0) if it has no location.
func (p *Diagnostic) Columns() (int, int) {
	if p.err.SourceFile() == nil {
		return 0, 0
	}
	//
	return p.err.Columns()
}

func (p *Diagnostic) String() string {
	if p.err.SourceFile() == nil {
		return fmt.Sprintf("%s: %s", p.severity, p.err.Message())
	}
	//
	start, end := p.Columns()
	//
	return fmt.Sprintf("%s:%d:%d-%d %s: %s", p.err.SourceFile().Filename(), p.Line(), start, end,
		p.severity, p.err.Message())
}

// Error implements the error interface.
func (p *Diagnostic) Error() string {
	return p.String()
}

// FatalError is returned (and threaded out of recursive traversals) when a
// fatal diagnostic is reported.  The diagnostic itself has already been
// recorded in the owning Diagnostics by the time this is returned.
type FatalError struct {
	Diagnostic
}

// Diagnostics accumulates the diagnostics reported during one compilation run,
// and tracks the maximum severity seen so far.  It is created once per run and
// threaded through every stage of the pipeline.
type Diagnostics struct {
	items    []Diagnostic
	severity Severity
}

// NewDiagnostics constructs an empty collector.
func NewDiagnostics() *Diagnostics {
	return &Diagnostics{nil, NONE}
}

// Report records a diagnostic of the given severity at a given location.  The
// file may be nil for diagnostics without a location.
func (p *Diagnostics) Report(severity Severity, file *source.File, span source.Span, msg string) {
	var err = noLocation(msg)
	//
	if file != nil {
		err = *file.SyntaxError(span, msg)
	}
	//
	log.Debugf("reporting %s: %s", severity, msg)
	//
	p.items = append(p.items, Diagnostic{severity, err})
	p.severity = max(p.severity, severity)
}

// Warn reports a warning at a given location.
func (p *Diagnostics) Warn(file *source.File, span source.Span, msg string, args ...any) {
	p.Report(WARNING, file, span, fmt.Sprintf(msg, args...))
}

// Error reports a (recoverable) error at a given location.
func (p *Diagnostics) Error(file *source.File, span source.Span, msg string, args ...any) {
	p.Report(ERROR, file, span, fmt.Sprintf(msg, args...))
}

// Fatal records a fatal diagnostic at a given location, and returns it so that
// the caller can abort its traversal.
func (p *Diagnostics) Fatal(file *source.File, span source.Span, msg string, args ...any) *FatalError {
	p.Report(FATAL, file, span, fmt.Sprintf(msg, args...))
	//
	return &FatalError{p.items[len(p.items)-1]}
}

// Escalate raises the maximum severity to (at least) ERROR, without recording
// a new diagnostic.  This is useful when a stage knows compilation has failed
// because of something already reported elsewhere.
func (p *Diagnostics) Escalate() {
	p.severity = max(p.severity, ERROR)
}

// Max returns the maximum severity reported so far.
func (p *Diagnostics) Max() Severity {
	return p.severity
}

// Failed checks whether any error-level (or fatal) diagnostic has been
// reported, in which case no output should be produced.
func (p *Diagnostics) Failed() bool {
	return p.severity >= ERROR
}

// Items returns all diagnostics in the order they were reported.
func (p *Diagnostics) Items() []Diagnostic {
	return p.items
}

// Count returns the number of diagnostics reported with a given severity.
func (p *Diagnostics) Count(severity Severity) uint {
	var n uint
	//
	for _, d := range p.items {
		if d.severity == severity {
			n++
		}
	}
	//
	return n
}

// Err returns all error-level and fatal diagnostics combined into a single
// error, or nil if there are none.
func (p *Diagnostics) Err() error {
	var result *multierror.Error
	//
	for i := range p.items {
		if p.items[i].severity >= ERROR {
			result = multierror.Append(result, &p.items[i])
		}
	}
	//
	return result.ErrorOrNil()
}

func noLocation(msg string) source.SyntaxError {
	return *(*source.File)(nil).SyntaxError(source.Span{}, msg)
}
