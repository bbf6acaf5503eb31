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
	"bytes"
	"testing"

	"github.com/qgl2/go-qgl2/pkg/util/collection/set"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Program_Encode_01(t *testing.T) {
	for _, format := range []string{JSON_FORMAT, TOML_FORMAT} {
		var (
			buffer  bytes.Buffer
			program = sampleProgram()
		)
		//
		require.NoError(t, program.Encode(&buffer, format))
		//
		decoded, err := Decode(&buffer, format)
		require.NoError(t, err, format)
		assert.Equal(t, program.Resources, decoded.Resources, format)
		assert.Equal(t, program.Text(), decoded.Text(), format)
		assert.Equal(t, program.Fingerprint(), decoded.Fingerprint(), format)
	}
}

func Test_Program_Encode_02(t *testing.T) {
	var buffer bytes.Buffer
	//
	program := sampleProgram()
	require.NoError(t, program.Encode(&buffer, TEXT_FORMAT))
	assert.Equal(t, program.Text(), buffer.String())
	//
	assert.Error(t, program.Encode(&buffer, "xml"))
	//
	_, err := Decode(&buffer, TEXT_FORMAT)
	assert.Error(t, err)
}

func Test_Program_Encode_03(t *testing.T) {
	var buffer bytes.Buffer
	//
	require.NoError(t, sampleProgram().Encode(&buffer, JSON_FORMAT))
	// Opcodes are written by name
	assert.Contains(t, buffer.String(), `"op": "BARRIER"`)
	assert.Contains(t, buffer.String(), `"label": "concur-begin_1"`)
}

func Test_Program_Fingerprint_01(t *testing.T) {
	var (
		p1 = sampleProgram()
		p2 = Synthesize(NewSchedule([]Item{pulse("X90", "q1")}))
	)
	//
	assert.NotEqual(t, p1.Fingerprint(), p2.Fingerprint())
}

func Test_Opcode_01(t *testing.T) {
	var op Opcode
	//
	for _, expected := range []Opcode{INIT, BARRIER, INSTR, WAIT, IF, ELSE, ENDIF, LOOP, ENDLOOP} {
		text, err := expected.MarshalText()
		require.NoError(t, err)
		require.NoError(t, op.UnmarshalText(text))
		assert.Equal(t, expected, op)
	}
	//
	assert.Error(t, op.UnmarshalText([]byte("JUMP")))
}

func Test_Instruction_String_01(t *testing.T) {
	assert.Equal(t, "INIT", Instruction{Op: INIT}.String())
	assert.Equal(t, "BARRIER step_0 (q1, q2)", Instruction{Op: BARRIER, Label: "step_0", Resources: []string{"q1", "q2"}}.String())
	assert.Equal(t, "X90(q1, amp=0.5)", Instruction{Op: INSTR, Name: "X90", Args: []string{"q1", "amp=0.5"}}.String())
	assert.Equal(t, "IF if_3: m", Instruction{Op: IF, Label: "if_3", Condition: "m"}.String())
	assert.Equal(t, "ENDLOOP loop_1", Instruction{Op: ENDLOOP, Label: "loop_1"}.String())
}

func sampleProgram() *Program {
	control := NewControl(CONDITIONAL, "m == 1", set.NewSortedSet("q1"), []Item{pulse("X90", "q2")}, nil)
	//
	return Synthesize(NewSchedule(
		[]Item{NewConcur(NewBranch(pulse("X90", "q1")), NewBranch(pulse("Y90", "q2")))},
		[]Item{pulse("MEAS", "q1")},
		[]Item{control},
	))
}
