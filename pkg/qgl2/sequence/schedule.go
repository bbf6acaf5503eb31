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
	"github.com/qgl2/go-qgl2/pkg/util/collection/set"
)

// Item is an element of a schedule.  Every item knows the set of resources it
// touches, which determines which per-resource sequences it is projected into.
type Item interface {
	// Footprint returns the resources touched by this item.
	Footprint() *set.SortedSet[string]
}

// Instr is a single opaque instruction (e.g. a pulse or a measurement) acting
// on one or more resources.
type Instr struct {
	Name      string
	Args      []string
	Resources *set.SortedSet[string]
}

// Footprint implementation for Item interface.
func (p *Instr) Footprint() *set.SortedSet[string] {
	return p.Resources
}

// Concur is a parallel block, made up of branches touching disjoint resources.
type Concur struct {
	Resources *set.SortedSet[string]
	Branches  []*Branch
}

// NewConcur constructs a parallel block from a given set of branches.
func NewConcur(branches ...*Branch) *Concur {
	resources := set.UnionSortedSets(branches, func(b *Branch) *set.SortedSet[string] {
		return b.Resources
	})
	//
	return &Concur{resources, branches}
}

// Footprint implementation for Item interface.
func (p *Concur) Footprint() *set.SortedSet[string] {
	return p.Resources
}

// Branch is a sequential list of items within a parallel block.
type Branch struct {
	Resources *set.SortedSet[string]
	Items     []Item
}

// NewBranch constructs a branch from a given list of items.
func NewBranch(items ...Item) *Branch {
	return &Branch{footprint(items), items}
}

// Unrolled is a statically unrolled loop, holding one list of items per
// iteration (in iteration order).
type Unrolled struct {
	Resources  *set.SortedSet[string]
	Iterations [][]Item
}

// NewUnrolled constructs an unrolled loop from its iterations.
func NewUnrolled(iterations ...[]Item) *Unrolled {
	resources := set.UnionSortedSets(iterations, footprint)
	//
	return &Unrolled{resources, iterations}
}

// Footprint implementation for Item interface.
func (p *Unrolled) Footprint() *set.SortedSet[string] {
	return p.Resources
}

// ControlKind distinguishes runtime conditionals from runtime loops.
type ControlKind uint8

const (
	// CONDITIONAL is a branch on a runtime value.
	CONDITIONAL ControlKind = iota
	// LOOP_WHILE is a loop on a runtime value.
	LOOP_WHILE
)

// Control is a control-flow construct whose condition depends upon a value
// only known at runtime.  It is not expanded, but is preserved in the output.
type Control struct {
	Kind      ControlKind
	Condition string
	Resources *set.SortedSet[string]
	Body      []Item
	Else      []Item
}

// NewControl constructs a control-flow item.  Its resources include those on
// which the condition depends.
func NewControl(kind ControlKind, condition string, resources *set.SortedSet[string], body []Item,
	orelse []Item) *Control {
	//
	resources = resources.Clone()
	resources.InsertSorted(footprint(body))
	resources.InsertSorted(footprint(orelse))
	//
	return &Control{kind, condition, resources, body, orelse}
}

// Footprint implementation for Item interface.
func (p *Control) Footprint() *set.SortedSet[string] {
	return p.Resources
}

// Schedule is the result of unrolling a flattened program, consisting of a
// sequence of top-level steps.
type Schedule struct {
	// All resources touched by the program.
	Resources *set.SortedSet[string]
	Steps     [][]Item
}

// NewSchedule constructs a schedule from its steps.
func NewSchedule(steps ...[]Item) *Schedule {
	return &Schedule{set.UnionSortedSets(steps, footprint), steps}
}

// Determine the resources touched by a list of items.
func footprint(items []Item) *set.SortedSet[string] {
	return set.UnionSortedSets(items, Item.Footprint)
}
