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

	"github.com/qgl2/go-qgl2/pkg/util/collection/set"
	log "github.com/sirupsen/logrus"
)

// Kinds of synchronisation point, used as label prefixes.
const (
	STEP_LABEL         = "step"
	CONCUR_BEGIN_LABEL = "concur-begin"
	CONCUR_END_LABEL   = "concur-end"
	ITER_LABEL         = "iter"
	IF_LABEL           = "if"
	LOOP_LABEL         = "loop"
	END_LABEL          = "end"
)

// Labels assigned to a single schedule item.
type labels struct {
	begin string
	end   string
	// Labels of the boundaries between iterations of an unrolled loop (if
	// any), where the ith label precedes iteration i+1.
	iters []string
}

// Synthesizer projects a schedule into one sequence per resource, threading
// shared barriers through those sequences.  Labels are generated from a
// single counter in program order, hence are independent of the program's
// content.
type Synthesizer struct {
	schedule *Schedule
	counter  uint
	steps    []string
	final    string
	labels   map[Item]*labels
}

// Synthesize the per-resource sequences of a given schedule.
func Synthesize(schedule *Schedule) *Program {
	p := &Synthesizer{schedule: schedule, labels: make(map[Item]*labels)}
	// Assign all labels first
	for _, step := range schedule.Steps {
		p.steps = append(p.steps, p.fresh(STEP_LABEL))
		p.label(step)
	}
	//
	p.final = p.fresh(END_LABEL)
	// Project each resource
	program := NewProgram(schedule.Resources.ToArray())
	//
	for _, r := range schedule.Resources.ToArray() {
		program.Sequences[r] = p.project(r)
		log.Debugf("synthesized %d instructions for %s", len(program.Sequences[r]), r)
	}
	//
	return program
}

func (p *Synthesizer) fresh(kind string) string {
	label := fmt.Sprintf("%s_%d", kind, p.counter)
	p.counter++
	//
	return label
}

// Assign labels to a list of items in program order.
func (p *Synthesizer) label(items []Item) {
	for _, item := range items {
		switch item := item.(type) {
		case *Instr:
			// no labels
		case *Concur:
			l := &labels{begin: p.fresh(CONCUR_BEGIN_LABEL)}
			//
			for _, branch := range item.Branches {
				p.label(branch.Items)
			}
			//
			l.end = p.fresh(CONCUR_END_LABEL)
			p.labels[item] = l
		case *Unrolled:
			l := &labels{}
			// Iterations only need synchronising across multiple resources
			for i, iteration := range item.Iterations {
				if i > 0 && item.Resources.Len() > 1 {
					l.iters = append(l.iters, p.fresh(ITER_LABEL))
				}
				//
				p.label(iteration)
			}
			//
			p.labels[item] = l
		case *Control:
			kind := IF_LABEL
			//
			if item.Kind == LOOP_WHILE {
				kind = LOOP_LABEL
			}
			//
			p.labels[item] = &labels{begin: p.fresh(kind)}
			p.label(item.Body)
			p.label(item.Else)
		default:
			panic(fmt.Sprintf("unknown schedule item %T", item))
		}
	}
}

// Project the schedule onto a given resource.
func (p *Synthesizer) project(resource string) []Instruction {
	var (
		all      = p.schedule.Resources.ToArray()
		sequence = []Instruction{{Op: INIT}}
	)
	//
	for i, step := range p.schedule.Steps {
		sequence = append(sequence, barrier(p.steps[i], p.schedule.Resources))
		sequence = p.projectItems(resource, step, sequence)
	}
	//
	return append(sequence, Instruction{Op: BARRIER, Label: p.final, Resources: all})
}

func (p *Synthesizer) projectItems(resource string, items []Item, sequence []Instruction) []Instruction {
	for _, item := range items {
		if !item.Footprint().Contains(resource) {
			continue
		}
		//
		switch item := item.(type) {
		case *Instr:
			sequence = append(sequence, Instruction{Op: INSTR, Name: item.Name, Args: item.Args,
				Resources: item.Resources.ToArray()})
		case *Concur:
			l := p.labels[item]
			sequence = append(sequence, barrier(l.begin, item.Resources))
			//
			for _, branch := range item.Branches {
				if branch.Resources.Contains(resource) {
					sequence = p.projectItems(resource, branch.Items, sequence)
				}
			}
			//
			sequence = append(sequence, barrier(l.end, item.Resources))
		case *Unrolled:
			l := p.labels[item]
			//
			for i, iteration := range item.Iterations {
				if i > 0 && len(l.iters) > 0 {
					sequence = append(sequence, barrier(l.iters[i-1], item.Resources))
				}
				//
				sequence = p.projectItems(resource, iteration, sequence)
			}
		case *Control:
			sequence = p.projectControl(resource, item, sequence)
		default:
			panic(fmt.Sprintf("unknown schedule item %T", item))
		}
	}
	//
	return sequence
}

func (p *Synthesizer) projectControl(resource string, item *Control, sequence []Instruction) []Instruction {
	label := p.labels[item].begin
	//
	sequence = append(sequence, Instruction{Op: WAIT, Label: label, Resources: item.Resources.ToArray()})
	//
	if item.Kind == LOOP_WHILE {
		sequence = append(sequence, Instruction{Op: LOOP, Label: label, Condition: item.Condition})
		sequence = p.projectItems(resource, item.Body, sequence)
		//
		return append(sequence, Instruction{Op: ENDLOOP, Label: label})
	}
	//
	sequence = append(sequence, Instruction{Op: IF, Label: label, Condition: item.Condition})
	sequence = p.projectItems(resource, item.Body, sequence)
	//
	if len(item.Else) > 0 {
		sequence = append(sequence, Instruction{Op: ELSE, Label: label})
		sequence = p.projectItems(resource, item.Else, sequence)
	}
	//
	return append(sequence, Instruction{Op: ENDIF, Label: label})
}

func barrier(label string, resources *set.SortedSet[string]) Instruction {
	return Instruction{Op: BARRIER, Label: label, Resources: resources.ToArray()}
}
