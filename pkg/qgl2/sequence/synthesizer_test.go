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
package sequence

import (
	"testing"

	"github.com/qgl2/go-qgl2/pkg/util/collection/set"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Synthesize_01(t *testing.T) {
	program := Synthesize(NewSchedule([]Item{pulse("X90", "q1")}, []Item{pulse("Y90", "q1")}))
	//
	assert.Equal(t, `q1:
    INIT
    BARRIER step_0 (q1)
    X90(q1)
    BARRIER step_1 (q1)
    Y90(q1)
    BARRIER end_2 (q1)
`, program.Text())
}

func Test_Synthesize_02(t *testing.T) {
	concur := NewConcur(
		NewBranch(pulse("X90", "q1"), pulse("Y90", "q1")),
		NewBranch(pulse("X90", "q2")),
	)
	program := Synthesize(NewSchedule([]Item{concur}))
	// Both sequences share the same barrier labels
	assert.Equal(t, []string{"q1", "q2"}, program.Resources)
	assert.Equal(t, program.Labels("q1"), program.Labels("q2"))
	assert.Equal(t, []string{"step_0", "concur-begin_1", "concur-end_2", "end_3"}, program.Labels("q1"))
	// Order within a branch is preserved
	assert.Equal(t, []string{"X90", "Y90"}, instructions(program.Sequence("q1")))
	assert.Equal(t, []string{"X90"}, instructions(program.Sequence("q2")))
}

func Test_Synthesize_03(t *testing.T) {
	// Nested parallel blocks only synchronise their own resources
	inner := NewConcur(NewBranch(pulse("X90", "q1")), NewBranch(pulse("X90", "q2")))
	outer := NewConcur(NewBranch(inner), NewBranch(pulse("Y90", "q3")))
	program := Synthesize(NewSchedule([]Item{outer}))
	//
	assert.Equal(t, []string{"step_0", "concur-begin_1", "concur-begin_2", "concur-end_3", "concur-end_4", "end_5"},
		program.Labels("q1"))
	assert.Equal(t, []string{"step_0", "concur-begin_1", "concur-end_4", "end_5"}, program.Labels("q3"))
	//
	for _, insn := range program.Sequence("q1") {
		if insn.Label == "concur-begin_2" {
			assert.Equal(t, []string{"q1", "q2"}, insn.Resources)
		}
	}
}

func Test_Synthesize_04(t *testing.T) {
	// Iteration barriers only for loops over several resources
	single := NewUnrolled([]Item{pulse("X90", "q1")}, []Item{pulse("X90", "q1")})
	multi := NewUnrolled([]Item{pulse("CNOT", "q1", "q2")}, []Item{pulse("CNOT", "q1", "q2")})
	program := Synthesize(NewSchedule([]Item{single}, []Item{multi}))
	//
	assert.Equal(t, []string{"step_0", "step_1", "iter_2", "end_3"}, program.Labels("q1"))
	assert.Equal(t, []string{"step_0", "step_1", "iter_2", "end_3"}, program.Labels("q2"))
	assert.Equal(t, []string{"X90", "X90", "CNOT", "CNOT"}, instructions(program.Sequence("q1")))
	assert.Equal(t, []string{"CNOT", "CNOT"}, instructions(program.Sequence("q2")))
}

func Test_Synthesize_05(t *testing.T) {
	control := NewControl(CONDITIONAL, "m", set.NewSortedSet("q1"), []Item{pulse("X90", "q2")},
		[]Item{pulse("Y90", "q2")})
	program := Synthesize(NewSchedule([]Item{control}))
	//
	assert.Equal(t, []string{"q1", "q2"}, control.Resources.ToArray())
	assert.Equal(t, `q1:
    INIT
    BARRIER step_0 (q1, q2)
    WAIT if_1 (q1, q2)
    IF if_1: m
    ELSE if_1
    ENDIF if_1
    BARRIER end_2 (q1, q2)
q2:
    INIT
    BARRIER step_0 (q1, q2)
    WAIT if_1 (q1, q2)
    IF if_1: m
    X90(q2)
    ELSE if_1
    Y90(q2)
    ENDIF if_1
    BARRIER end_2 (q1, q2)
`, program.Text())
}

func Test_Synthesize_06(t *testing.T) {
	loop := NewControl(LOOP_WHILE, "True", set.NewSortedSet[string](), []Item{pulse("X90", "q1")}, nil)
	program := Synthesize(NewSchedule([]Item{loop}))
	//
	assert.Equal(t, `q1:
    INIT
    BARRIER step_0 (q1)
    WAIT loop_1 (q1)
    LOOP loop_1: True
    X90(q1)
    ENDLOOP loop_1
    BARRIER end_2 (q1)
`, program.Text())
}

func Test_Synthesize_07(t *testing.T) {
	// Every barrier label appears in the sequence of every resource it names
	schedule := NewSchedule(
		[]Item{NewConcur(NewBranch(pulse("X90", "a")), NewBranch(pulse("Y90", "b"), pulse("Id", "b")))},
		[]Item{NewUnrolled([]Item{pulse("CZ", "b", "c")}, []Item{pulse("CZ", "b", "c")})},
		[]Item{pulse("MEAS", "a")},
	)
	program := Synthesize(schedule)
	//
	for _, r := range program.Resources {
		require.Equal(t, INIT, program.Sequence(r)[0].Op)
		//
		for _, insn := range program.Sequence(r) {
			if insn.Op != BARRIER {
				continue
			}
			//
			for _, other := range insn.Resources {
				assert.Contains(t, program.Labels(other), insn.Label, "%s missing from %s", insn.Label, other)
			}
		}
	}
}

func Test_Synthesize_08(t *testing.T) {
	// Labels are deterministic
	build := func() *Program {
		return Synthesize(NewSchedule([]Item{NewConcur(NewBranch(pulse("X90", "q1")), NewBranch(pulse("X90", "q2")))}))
	}
	//
	assert.Equal(t, build().Text(), build().Text())
	assert.Equal(t, build().Fingerprint(), build().Fingerprint())
}

// ============================================================================
// Helpers
// ============================================================================

func pulse(name string, resources ...string) *Instr {
	return &Instr{Name: name, Args: resources, Resources: set.NewSortedSet(resources...)}
}

// Names of the opaque instructions in a sequence.
func instructions(sequence []Instruction) []string {
	var names []string
	//
	for _, insn := range sequence {
		if insn.Op == INSTR {
			names = append(names, insn.Name)
		}
	}
	//
	return names
}
