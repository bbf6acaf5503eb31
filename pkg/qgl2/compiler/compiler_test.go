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
	"testing"

	"github.com/qgl2/go-qgl2/pkg/qgl2/diag"
	"github.com/qgl2/go-qgl2/pkg/qgl2/sequence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Compile_Concur_01(t *testing.T) {
	checkCompile(t, `
@qgl2main
def main():
    q = QRegister('q1')
    with concur:
        for i in range(3):
            X90(q)
`, `q1:
    INIT
    BARRIER step_0 (q1)
    BARRIER concur-begin_1 (q1)
    X90(q1)
    X90(q1)
    X90(q1)
    BARRIER concur-end_2 (q1)
    BARRIER end_3 (q1)
`)
}

func Test_Compile_Concur_02(t *testing.T) {
	checkCompile(t, `
@qgl2main
def main():
    q1 = QRegister('q1')
    q2 = QRegister('q2')
    with concur:
        X90(q1)
        with seq:
            Y90(q2)
            X90(q2)
    Id(q1)
`, `q1:
    INIT
    BARRIER step_0 (q1, q2)
    BARRIER concur-begin_1 (q1, q2)
    X90(q1)
    BARRIER concur-end_2 (q1, q2)
    BARRIER step_3 (q1, q2)
    Id(q1)
    BARRIER end_4 (q1, q2)
q2:
    INIT
    BARRIER step_0 (q1, q2)
    BARRIER concur-begin_1 (q1, q2)
    Y90(q2)
    X90(q2)
    BARRIER concur-end_2 (q1, q2)
    BARRIER step_3 (q1, q2)
    BARRIER end_4 (q1, q2)
`)
}

func Test_Compile_Concur_03(t *testing.T) {
	result, diags := compileModules(t, map[string]string{"main.py": preamble + `
from qgl2.qgl1 import CNOT

@qgl2main
def main():
    q1 = QRegister('q1')
    q2 = QRegister('q2')
    q3 = QRegister('q3')
    with concur:
        X90(q1)
        Y90(q2)
        CNOT(q1, q3)
`})
	require.NotNil(t, result.Program, "%v", messages(diags))
	require.Len(t, result.Schedule.Steps, 1)
	//
	concur := result.Schedule.Steps[0][0].(*sequence.Concur)
	require.Len(t, concur.Branches, 2)
	assert.Equal(t, []string{"q1", "q3"}, concur.Branches[0].Resources.ToArray())
	assert.Len(t, concur.Branches[0].Items, 2)
	assert.Equal(t, []string{"q2"}, concur.Branches[1].Resources.ToArray())
	// Multi-resource instructions appear in each sequence
	assert.Contains(t, result.Program.Sequence("q3"),
		sequence.Instruction{Op: sequence.INSTR, Name: "CNOT", Args: []string{"q1", "q3"}, Resources: []string{"q1", "q3"}})
}

func Test_Compile_Overlap_01(t *testing.T) {
	result, diags := compileModules(t, map[string]string{"main.py": preamble + `
@qgl2main
def main():
    q1 = QRegister('q1')
    with concur:
        with seq:
            X90(q1)
        Y90(q1)
`})
	assert.Nil(t, result.Program)
	assert.Equal(t, []string{"error: overlapping resources in parallel branches"}, messages(diags))
}

func Test_Compile_If_01(t *testing.T) {
	checkCompile(t, `
@qgl2main
def main():
    q1 = QRegister('q1')
    m = MEAS(q1)
    if m:
        X90(q1)
    else:
        Y90(q1)
`, `q1:
    INIT
    BARRIER step_0 (q1)
    MEAS(q1)
    BARRIER step_1 (q1)
    WAIT if_2 (q1)
    IF if_2: m
    X90(q1)
    ELSE if_2
    Y90(q1)
    ENDIF if_2
    BARRIER end_3 (q1)
`)
}

func Test_Compile_While_01(t *testing.T) {
	checkCompile(t, `
@qgl2main
def main():
    q1 = QRegister('q1')
    q2 = QRegister('q2')
    m = MEAS(q1)
    while not m:
        X90(q2)
`, `q1:
    INIT
    BARRIER step_0 (q1, q2)
    MEAS(q1)
    BARRIER step_1 (q1, q2)
    WAIT loop_2 (q1, q2)
    LOOP loop_2: not m
    ENDLOOP loop_2
    BARRIER end_3 (q1, q2)
q2:
    INIT
    BARRIER step_0 (q1, q2)
    BARRIER step_1 (q1, q2)
    WAIT loop_2 (q1, q2)
    LOOP loop_2: not m
    X90(q2)
    ENDLOOP loop_2
    BARRIER end_3 (q1, q2)
`)
}

func Test_Compile_StaticIf_01(t *testing.T) {
	result, diags := compileModules(t, map[string]string{"main.py": preamble + `
@qgl2main
def main(n=2):
    q = QRegister('q1')
    if n > 3:
        X90(q)
    else:
        Y90(q)
`})
	require.NotNil(t, result.Program)
	assert.Equal(t, []string{"warning: unreachable branch after static condition"}, messages(diags))
	assert.Equal(t, "q1:\n    INIT\n    BARRIER step_0 (q1)\n    Y90(q1)\n    BARRIER end_1 (q1)\n",
		result.Program.Text())
}

func Test_Compile_Unroll_01(t *testing.T) {
	// Loops over several resources synchronise between iterations
	checkCompile(t, `
@qgl2main
def main():
    qs = QRegister('a', 'b')
    for q in qs:
        X90(qs)
`, `a:
    INIT
    BARRIER step_0 (a, b)
    X90(QRegister('a', 'b'))
    BARRIER iter_1 (a, b)
    X90(QRegister('a', 'b'))
    BARRIER end_2 (a, b)
b:
    INIT
    BARRIER step_0 (a, b)
    X90(QRegister('a', 'b'))
    BARRIER iter_1 (a, b)
    X90(QRegister('a', 'b'))
    BARRIER end_2 (a, b)
`)
}

func Test_Compile_Unroll_02(t *testing.T) {
	result, diags := compileModules(t, map[string]string{"main.py": preamble + `
@qgl2main
def main():
    q = QRegister('q1')
    m = MEAS(q)
    for i in range(m):
        X90(q)
`})
	assert.Nil(t, result.Program)
	assert.Nil(t, result.Schedule)
	assert.Equal(t, diag.FATAL, diags.Max())
	assert.Equal(t, []string{"fatal: cannot statically unroll loop"}, messages(diags))
}

func Test_Compile_Overflow_01(t *testing.T) {
	result, diags := compileModules(t, map[string]string{"main.py": preamble + `
@qgl2main
def main():
    q = QRegister('q1')
    n = 3 ** 100000000000
    X90(q, n)
    for i in range(100000000000):
        Y90(q)
`})
	assert.Nil(t, result.Program)
	assert.Equal(t, []string{"error: integer overflow", "error: range exceeds 1048576 elements"}, messages(diags))
}

func Test_Compile_Register_01(t *testing.T) {
	result, diags := compileModules(t, map[string]string{"main.py": preamble + `
@qgl2main
def main():
    q = QRegister('q1')
    m = MEAS(q)
    r = QRegister(m)
    X90(r)
    Y90(q)
`})
	assert.Nil(t, result.Program)
	assert.Nil(t, result.Schedule)
	assert.Equal(t, diag.FATAL, diags.Max())
	assert.Equal(t, []string{"fatal: resource set cannot be statically determined"}, messages(diags))
}

func Test_Compile_Params_01(t *testing.T) {
	result, diags := compileModules(t, map[string]string{"main.py": preamble + `
def pulse(q: qreg, amp: classical, qs: qreg_list):
    X90(q, amp=amp)

@qgl2main
def main():
    q = QRegister('q1')
    pulse(1, q, [q, 2])
`})
	assert.Nil(t, result.Program)
	assert.Equal(t, []string{
		"error: parameter q of pulse expects a resource",
		"error: parameter amp of pulse expects a classical value",
		"error: parameter qs of pulse expects a list of resources",
	}, messages(diags)[:3])
}

func Test_Compile_Params_02(t *testing.T) {
	result, diags := compileModules(t, map[string]string{"main.py": preamble + `
@qgl2stub('QGL.PulsePrimitives', 'Utheta')
def Utheta(q: qreg, amp: classical = 0):
    pass

@qgl2main
def main():
    q = QRegister('q1')
    Utheta(q, amp=0.5)
    Utheta(q, amp=q)
`})
	assert.Nil(t, result.Program)
	assert.Equal(t, []string{"error: parameter amp of Utheta expects a classical value"}, messages(diags))
	// Stub calls are emitted under their target symbol
	require.NotNil(t, result.Schedule)
	instr := result.Schedule.Steps[0][0].(*sequence.Instr)
	assert.Equal(t, "Utheta", instr.Name)
	assert.Equal(t, []string{"q1", "amp=0.5"}, instr.Args)
}

func Test_Compile_Params_03(t *testing.T) {
	result, diags := compileModules(t, map[string]string{"main.py": preamble + `
def pulse(q: qreg, n):
    X90(q)
    n = 3
    q = 2

def measure(q: qreg):
    q = MEAS(q)

@qgl2main
def main():
    a = QRegister('a')
    pulse(a, 1)
    measure(a)
`})
	assert.Nil(t, result.Program)
	assert.Equal(t, []string{
		"error: resource parameter q cannot be assigned a classical value",
		"error: resource parameter q cannot be assigned a classical value",
	}, messages(diags))
}

func Test_Compile_Assign_01(t *testing.T) {
	checkCompile(t, `
@qgl2decl
def pick(qs: qreg_list, i):
    return qs[i]

@qgl2main
def main():
    qs = [QRegister('a'), QRegister('b')]
    a, b = qs
    q = pick(qs, 1)
    n = 0
    n += 2
    qs[0] = b
    X90(qs[0], n)
    Y90(q)
`, `b:
    INIT
    BARRIER step_0 (b)
    X90(b, 2)
    BARRIER step_1 (b)
    Y90(b)
    BARRIER end_2 (b)
`)
}

func Test_Compile_Entry_01(t *testing.T) {
	result, diags := compileModules(t, map[string]string{"main.py": preamble + `
@qgl2main
def first():
    pass

@qgl2main
def second():
    pass
`})
	assert.Nil(t, result.Flattened)
	assert.Equal(t, []string{"fatal: multiple entry points (first, second)"}, messages(diags))
}

func Test_Compile_Annotate_01(t *testing.T) {
	result, diags := compileModules(t, map[string]string{"main.py": preamble + `
def pulse(q):
    X90(q)

@qgl2main
def main():
    a = QRegister('a')
    pulse(a)
`})
	require.NotNil(t, result.Program, "%v", messages(diags))
	// Inlined blocks and their originating calls record the resources touched
	flat := result.Flattened
	block := flat.Arena.Node(flat.Body[1])
	assert.Equal(t, []string{"a"}, block.Resources)
	assert.Equal(t, []string{"a"}, flat.Arena.Node(block.InlinedFrom).Resources)
}

// ============================================================================
// Helpers
// ============================================================================

func checkCompile(t *testing.T, source string, expected string) {
	result, diags := compileModules(t, map[string]string{"main.py": preamble + source})
	//
	require.Empty(t, messages(diags))
	require.NotNil(t, result.Program)
	assert.Equal(t, expected, result.Program.Text())
}
