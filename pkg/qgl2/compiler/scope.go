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

// Binding captures what is known about a name at a given point during
// unrolling.
type Binding struct {
	// Current value bound to this name.
	Value Value
	// Indicates whether this name holds a resource (i.e. was bound to a
	// register, or declared as a resource parameter).
	Resource bool
	// Indicates whether this name was introduced by parameter binding.
	Parameter bool
}

// Scope is a lexical scope mapping names to bindings, chained to an enclosing
// scope.  Conditional and block statements share their enclosing scope, whilst
// each unrolled loop iteration gets a fresh child scope so that iteration
// variables never leak.
type Scope struct {
	parent   *Scope
	bindings map[string]*Binding
}

// NewScope constructs a scope nested within a given parent, which may be nil.
func NewScope(parent *Scope) *Scope {
	return &Scope{parent, make(map[string]*Binding)}
}

// Bind a name in this scope, shadowing any binding in an enclosing scope.
func (p *Scope) Bind(name string, value Value, parameter bool) {
	p.bindings[name] = &Binding{value, value.IsResource(), parameter}
}

// Assign a value to a name.  If the name is already bound in this scope or an
// enclosing scope, then that binding is updated in place (i.e. assignment
// mutates rather than shadows).  Otherwise, the name is bound in this scope.
func (p *Scope) Assign(name string, value Value) {
	if binding := p.Lookup(name); binding != nil {
		binding.Value = value
		binding.Resource = value.IsResource()
	} else {
		p.Bind(name, value, false)
	}
}

// Lookup the binding of a name, walking outwards through enclosing scopes.
// This returns nil if the name is not bound.
func (p *Scope) Lookup(name string) *Binding {
	for s := p; s != nil; s = s.parent {
		if binding, ok := s.bindings[name]; ok {
			return binding
		}
	}
	//
	return nil
}
