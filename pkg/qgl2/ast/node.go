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
package ast

import (
	"fmt"
	"slices"

	"github.com/qgl2/go-qgl2/pkg/util/source"
)

// NodeID is an index into an arena.  The zero identifier never refers to a
// node, and is used to signal an absent node.
type NodeID uint32

// NONE represents the absence of a node.
const NONE NodeID = 0

// LiteralKind identifies the type of a constant.
type LiteralKind uint8

// Available literal kinds.
const (
	NONE_LIT LiteralKind = iota
	INT_LIT
	FLOAT_LIT
	STRING_LIT
	BOOL_LIT
)

// Literal represents a constant appearing in source.
type Literal struct {
	Kind   LiteralKind
	Int    int64
	Float  float64
	String string
	Bool   bool
}

// Node is a single syntax node.  Nodes refer to other nodes by identifier only,
// and hence a node is meaningless outside of the arena which holds it.
type Node struct {
	Kind Kind
	// Name holds an identifier, attribute, keyword or module name.
	Name string
	// AsName holds the local binding of an import alias.
	AsName string
	// Annotation holds a parameter's type annotation (e.g. qreg).
	Annotation string
	// Op holds operator text for operator nodes.
	Op string
	// Level holds the number of leading dots in a relative import.
	Level int
	// Flag holds a kind-specific boolean (e.g. whether a decorator has an
	// argument list).
	Flag bool
	// Value holds the value of a constant.
	Value Literal
	// Children holds operands.
	Children []NodeID
	// Body holds the main statement list.
	Body []NodeID
	// Else holds the alternative statement list of an if.
	Else []NodeID
	// File and Span locate the node in its original source.
	File *source.File
	Span source.Span
	// Resources annotates a statement with the set of quantum resources it
	// touches, in sorted order.
	Resources []string
	// InlinedFrom is a non-owning reference to the call node replaced by an
	// inlined block.
	InlinedFrom NodeID
	// Call records the resolution of a call node.
	Call CallTarget
}

// Arena holds a set of nodes indexed by NodeID.
type Arena struct {
	nodes []Node
}

// NewArena constructs an empty arena.
func NewArena() *Arena {
	// Slot zero is reserved so that NONE never aliases a real node.
	return &Arena{nodes: []Node{{Kind: INVALID}}}
}

// Add a node to this arena, returning its identifier.
func (p *Arena) Add(node Node) NodeID {
	if node.Kind == INVALID {
		panic("invalid node kind")
	}
	//
	p.nodes = append(p.nodes, node)
	//
	return NodeID(len(p.nodes) - 1)
}

// Node returns the node with the given identifier.  The returned pointer is
// invalidated by any subsequent Add.
func (p *Arena) Node(id NodeID) *Node {
	if id == NONE || int(id) >= len(p.nodes) {
		panic(fmt.Sprintf("invalid node identifier %d", id))
	}
	//
	return &p.nodes[id]
}

// Kind returns the kind of the given node.
func (p *Arena) Kind(id NodeID) Kind {
	return p.Node(id).Kind
}

// Len returns the number of nodes in this arena.
func (p *Arena) Len() int {
	return len(p.nodes) - 1
}

// Child returns the ith child of the given node, or NONE if no such child
// exists.
func (p *Arena) Child(id NodeID, i int) NodeID {
	children := p.Node(id).Children
	//
	if i < len(children) {
		return children[i]
	}
	//
	return NONE
}

// Params returns the parameters of a function definition.
func (p *Arena) Params(id NodeID) []NodeID {
	return p.childrenOf(id, PARAM)
}

// Decorators returns the decorators of a function definition.
func (p *Arena) Decorators(id NodeID) []NodeID {
	return p.childrenOf(id, DECORATOR)
}

// Args returns the positional arguments of a call.
func (p *Arena) Args(id NodeID) []NodeID {
	var args []NodeID
	//
	for _, c := range p.Node(id).Children[1:] {
		if p.Kind(c) != KEYWORD {
			args = append(args, c)
		}
	}
	//
	return args
}

// Keywords returns the keyword arguments of a call.
func (p *Arena) Keywords(id NodeID) []NodeID {
	return p.childrenOf(id, KEYWORD)
}

func (p *Arena) childrenOf(id NodeID, kind Kind) []NodeID {
	var nodes []NodeID
	//
	for _, c := range p.Node(id).Children {
		if p.Kind(c) == kind {
			nodes = append(nodes, c)
		}
	}
	//
	return nodes
}

// Walk visits the given node and then, provided fn returned true, all nodes
// beneath it in depth-first order.  The node referenced by InlinedFrom is not
// visited, since it is not owned by the block.
func (p *Arena) Walk(id NodeID, fn func(NodeID) bool) {
	if id == NONE || !fn(id) {
		return
	}
	// Copy slices since fn may add nodes.
	node := p.Node(id)
	children := slices.Clone(node.Children)
	body := slices.Clone(node.Body)
	orelse := slices.Clone(node.Else)
	//
	for _, c := range children {
		p.Walk(c, fn)
	}
	//
	for _, c := range body {
		p.Walk(c, fn)
	}
	//
	for _, c := range orelse {
		p.Walk(c, fn)
	}
}

// Clone copies the tree rooted at id in the src arena into this arena,
// returning the identifier of the copy.  The arenas may be the same.  Nodes
// referenced by InlinedFrom are copied as well, such that the copy never
// refers back into src.
func (p *Arena) Clone(src *Arena, id NodeID) NodeID {
	if id == NONE {
		return NONE
	}
	// Take a copy, since src may be p and Add can reallocate.
	node := *src.Node(id)
	node.Children = p.cloneAll(src, node.Children)
	node.Body = p.cloneAll(src, node.Body)
	node.Else = p.cloneAll(src, node.Else)
	node.Resources = slices.Clone(node.Resources)
	//
	if node.InlinedFrom != NONE {
		node.InlinedFrom = p.Clone(src, node.InlinedFrom)
	}
	//
	return p.Add(node)
}

func (p *Arena) cloneAll(src *Arena, ids []NodeID) []NodeID {
	if ids == nil {
		return nil
	}
	//
	nids := make([]NodeID, len(ids))
	//
	for i, id := range ids {
		nids[i] = p.Clone(src, id)
	}
	//
	return nids
}
