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
	"fmt"
	"strings"
)

// Opcode identifies the kind of an instruction in a per-resource sequence.
type Opcode uint8

const (
	// INIT marks the start of a sequence.
	INIT Opcode = iota
	// BARRIER synchronises all resources sharing its label.
	BARRIER
	// INSTR is an opaque instruction.
	INSTR
	// WAIT synchronises the resources of a runtime control construct, before
	// its condition is evaluated.
	WAIT
	// IF begins the body of a runtime conditional.
	IF
	// ELSE begins the alternative of a runtime conditional.
	ELSE
	// ENDIF ends a runtime conditional.
	ENDIF
	// LOOP begins the body of a runtime loop.
	LOOP
	// ENDLOOP ends a runtime loop.
	ENDLOOP
)

var opcodes = [...]string{
	INIT:    "INIT",
	BARRIER: "BARRIER",
	INSTR:   "INSTR",
	WAIT:    "WAIT",
	IF:      "IF",
	ELSE:    "ELSE",
	ENDIF:   "ENDIF",
	LOOP:    "LOOP",
	ENDLOOP: "ENDLOOP",
}

func (p Opcode) String() string {
	if int(p) < len(opcodes) {
		return opcodes[p]
	}
	//
	panic(fmt.Sprintf("unknown opcode %d", p))
}

// MarshalText implementation for encoding.TextMarshaler.
func (p Opcode) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implementation for encoding.TextUnmarshaler.
func (p *Opcode) UnmarshalText(text []byte) error {
	for i, name := range opcodes {
		if name == string(text) {
			*p = Opcode(i)
			return nil
		}
	}
	//
	return fmt.Errorf("unknown opcode %q", string(text))
}

// Instruction is a single entry in the sequence of one resource.
type Instruction struct {
	Op Opcode `json:"op" toml:"op"`
	// Label shared by all markers of the same synchronisation point.
	Label string `json:"label,omitempty" toml:"label,omitempty"`
	// Name and arguments of an opaque instruction.
	Name string   `json:"name,omitempty" toml:"name,omitempty"`
	Args []string `json:"args,omitempty" toml:"args,omitempty"`
	// Resources synchronised by a barrier, or acted on by an instruction.
	Resources []string `json:"resources,omitempty" toml:"resources,omitempty"`
	// Condition of a runtime control construct.
	Condition string `json:"condition,omitempty" toml:"condition,omitempty"`
}

func (p Instruction) String() string {
	switch p.Op {
	case INIT:
		return "INIT"
	case BARRIER, WAIT:
		return fmt.Sprintf("%s %s (%s)", p.Op, p.Label, strings.Join(p.Resources, ", "))
	case INSTR:
		return fmt.Sprintf("%s(%s)", p.Name, strings.Join(p.Args, ", "))
	case IF, LOOP:
		return fmt.Sprintf("%s %s: %s", p.Op, p.Label, p.Condition)
	case ELSE, ENDIF, ENDLOOP:
		return fmt.Sprintf("%s %s", p.Op, p.Label)
	default:
		panic(fmt.Sprintf("unknown opcode %d", p.Op))
	}
}
