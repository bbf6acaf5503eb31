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
	"fmt"
	"strconv"
	"strings"

	"github.com/qgl2/go-qgl2/pkg/qgl2/diag"
	"github.com/qgl2/go-qgl2/pkg/util/source"
)

// ExpectedDiagnostic describes a diagnostic which a test program should
// produce.  These are given as comments at the beginning of the program, such
// as "#error:9:5-12:unknown function g".
type ExpectedDiagnostic struct {
	Severity diag.Severity
	// Line (counting from 1) and column range (counting from 1, end
	// exclusive) of the diagnostic.
	Line, Start, End int
	Message          string
}

func (p ExpectedDiagnostic) String() string {
	return fmt.Sprintf("%d:%d-%d %s: %s", p.Line, p.Start, p.End, p.Severity, p.Message)
}

var severities = map[string]diag.Severity{
	"#warning": diag.WARNING,
	"#error":   diag.ERROR,
	"#fatal":   diag.FATAL,
}

// ExtractExpectedDiagnostics extracts the expected diagnostics given at the
// beginning of a source file.  Extraction stops at the first line which does
// not describe a diagnostic.
func ExtractExpectedDiagnostics(srcfile *source.File) ([]ExpectedDiagnostic, []error) {
	var (
		lines    = srcfile.Lines()
		expected []ExpectedDiagnostic
		errs     []error
	)
	//
	for i := range lines {
		item, matched, err := parseExpectedDiagnostic(&lines[i], lines)
		//
		if !matched {
			break
		} else if err != nil {
			errs = append(errs, err)
		} else {
			expected = append(expected, item)
		}
	}
	//
	return expected, errs
}

func parseExpectedDiagnostic(line *source.Line, lines []source.Line) (ExpectedDiagnostic, bool, error) {
	var (
		contents = line.String()
		splits   = strings.Split(contents, ":")
		item     ExpectedDiagnostic
		ok       bool
		err      error
	)
	//
	if item.Severity, ok = severities[splits[0]]; !ok {
		return item, false, nil
	} else if len(splits) < 4 {
		return item, true, fmt.Errorf("malformed expected diagnostic \"%s\", should be e.g. \"#error:X:Y-Z:msg\"",
			contents)
	}
	// Parse line number
	if item.Line, err = strconv.Atoi(splits[1]); err != nil {
		return item, true, fmt.Errorf("invalid line \"%s\" (%s)", splits[1], err.Error())
	} else if item.Line == 0 || item.Line > len(lines) {
		return item, true, fmt.Errorf("invalid line \"%s\" (non-existent line)", splits[1])
	}
	// Parse columns
	if item.Start, item.End, err = parseColumns(splits[2]); err != nil {
		return item, true, err
	} else if item.End > lines[item.Line-1].Length()+1 {
		return item, true, fmt.Errorf("invalid span \"%d:%s\" (overflows to following line)", item.Line, splits[2])
	}
	//
	item.Message = strings.Join(splits[3:], ":")
	//
	return item, true, nil
}

func parseColumns(span string) (start, end int, err error) {
	var splits = strings.Split(span, "-")
	//
	if len(splits) != 2 {
		return 0, 0, fmt.Errorf("invalid span \"%s\" (malformed, should be X-Y)", span)
	}
	// Parse span start as integer
	if start, err = strconv.Atoi(splits[0]); err != nil {
		return 0, 0, fmt.Errorf("invalid span \"%s\" (%s)", span, err.Error())
	} else if start == 0 {
		return 0, 0, fmt.Errorf("invalid span \"%s\" (columns numbered from 1)", span)
	}
	// Parse span end as integer
	if end, err = strconv.Atoi(splits[1]); err != nil {
		return 0, 0, fmt.Errorf("invalid span \"%s\" (%s)", span, err.Error())
	} else if end < start {
		return 0, 0, fmt.Errorf("invalid span \"%s\" (ends before it starts)", span)
	}
	//
	return start, end, nil
}
