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
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/cespare/xxhash/v2"
	"github.com/pkg/errors"
)

// Supported output formats.
const (
	TEXT_FORMAT = "text"
	JSON_FORMAT = "json"
	TOML_FORMAT = "toml"
)

// FORMATS lists the supported output formats.
var FORMATS = []string{TEXT_FORMAT, JSON_FORMAT, TOML_FORMAT}

// Program is the final output of compilation: one instruction sequence for
// each resource.
type Program struct {
	// Resources in sorted order.
	Resources []string `json:"resources" toml:"resources"`
	// Sequence of each resource.
	Sequences map[string][]Instruction `json:"sequences" toml:"sequence"`
}

// NewProgram constructs a program with empty sequences for the given
// resources.
func NewProgram(resources []string) *Program {
	return &Program{resources, make(map[string][]Instruction)}
}

// Sequence returns the instruction sequence for a given resource.
func (p *Program) Sequence(resource string) []Instruction {
	return p.Sequences[resource]
}

// Labels returns the labels of all barriers in the sequence of a given
// resource, in order.
func (p *Program) Labels(resource string) []string {
	var labels []string
	//
	for _, insn := range p.Sequences[resource] {
		if insn.Op == BARRIER {
			labels = append(labels, insn.Label)
		}
	}
	//
	return labels
}

// Text renders this program as text, with each resource followed by its
// (indented) instructions.
func (p *Program) Text() string {
	var builder strings.Builder
	//
	for _, r := range p.Resources {
		builder.WriteString(fmt.Sprintf("%s:\n", r))
		//
		for _, insn := range p.Sequences[r] {
			builder.WriteString(fmt.Sprintf("    %s\n", insn.String()))
		}
	}
	//
	return builder.String()
}

// Fingerprint returns a hash of this program's text rendering, such that two
// programs have the same fingerprint when they would produce the same output.
func (p *Program) Fingerprint() uint64 {
	return xxhash.Sum64String(p.Text())
}

// Encode writes this program to a given writer in a given format.
func (p *Program) Encode(w io.Writer, format string) error {
	var err error
	//
	switch format {
	case TEXT_FORMAT:
		_, err = io.WriteString(w, p.Text())
	case JSON_FORMAT:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		err = encoder.Encode(p)
	case TOML_FORMAT:
		err = toml.NewEncoder(w).Encode(p)
	default:
		return errors.Errorf("unknown output format %q", format)
	}
	//
	return errors.Wrapf(err, "cannot write %s output", format)
}

// Decode reads a program from a given reader in a given (structured) format.
func Decode(r io.Reader, format string) (*Program, error) {
	var (
		program Program
		err     error
	)
	//
	switch format {
	case JSON_FORMAT:
		err = json.NewDecoder(r).Decode(&program)
	case TOML_FORMAT:
		_, err = toml.NewDecoder(r).Decode(&program)
	default:
		return nil, errors.Errorf("cannot decode %q format", format)
	}
	//
	if err != nil {
		return nil, errors.Wrapf(err, "cannot read %s program", format)
	}
	//
	return &program, nil
}
