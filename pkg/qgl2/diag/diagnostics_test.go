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
	"errors"
	"testing"

	"github.com/qgl2/go-qgl2/pkg/util/source"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Diagnostics_Empty(t *testing.T) {
	diags := NewDiagnostics()
	//
	assert.Equal(t, NONE, diags.Max())
	assert.False(t, diags.Failed())
	assert.Empty(t, diags.Items())
	assert.NoError(t, diags.Err())
}

func Test_Diagnostics_Ordering(t *testing.T) {
	assert.Less(t, NONE, WARNING)
	assert.Less(t, WARNING, ERROR)
	assert.Less(t, ERROR, FATAL)
}

func Test_Diagnostics_Warning(t *testing.T) {
	diags := NewDiagnostics()
	file := source.NewSourceFile("test.py", []byte("X90(q1)\n"))
	//
	diags.Warn(file, source.NewSpan(0, 3), "statement %s touches no resources", "X90")
	//
	assert.Equal(t, WARNING, diags.Max())
	assert.False(t, diags.Failed())
	assert.NoError(t, diags.Err())
	assert.Equal(t, uint(1), diags.Count(WARNING))
	//
	items := diags.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "statement X90 touches no resources", items[0].Message())
	assert.Equal(t, 1, items[0].Line())
	//
	start, end := items[0].Columns()
	assert.Equal(t, 1, start)
	assert.Equal(t, 4, end)
	assert.Equal(t, "test.py:1:1-4 warning: statement X90 touches no resources", items[0].String())
}

func Test_Diagnostics_ErrorThenWarning(t *testing.T) {
	diags := NewDiagnostics()
	file := source.NewSourceFile("test.py", []byte("a = 1\nb = 2\n"))
	//
	diags.Error(file, source.NewSpan(6, 7), "unknown name b")
	diags.Warn(file, source.NewSpan(0, 1), "unused a")
	// High-water mark never decreases.
	assert.Equal(t, ERROR, diags.Max())
	assert.True(t, diags.Failed())
	assert.Equal(t, 2, diags.Items()[0].Line())
	//
	err := diags.Err()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "test.py:2:1-2 error: unknown name b")
	assert.NotContains(t, err.Error(), "unused a")
}

func Test_Diagnostics_Fatal(t *testing.T) {
	var fatal *FatalError
	//
	diags := NewDiagnostics()
	err := error(diags.Fatal(nil, source.Span{}, "multiple entry points"))
	//
	assert.Equal(t, FATAL, diags.Max())
	assert.True(t, errors.As(err, &fatal))
	assert.Equal(t, "multiple entry points", fatal.Message())
	assert.Equal(t, 0, fatal.Line())
	assert.Equal(t, "fatal: multiple entry points", fatal.Error())
}

func Test_Diagnostics_Escalate(t *testing.T) {
	diags := NewDiagnostics()
	diags.Escalate()
	//
	assert.True(t, diags.Failed())
	assert.Empty(t, diags.Items())
}
