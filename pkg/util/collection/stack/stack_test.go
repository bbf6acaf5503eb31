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
package stack

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStack_PushPop(t *testing.T) {
	s := NewStack[string]()
	require.Equal(t, uint(0), s.Len())
	s.Push("a")
	s.Push("b")
	require.Equal(t, "b", s.Peek(0))
	require.Equal(t, "a", s.Peek(1))
	require.Equal(t, "b", s.Pop())
	require.Equal(t, uint(1), s.Len())
}

func TestStack_Find(t *testing.T) {
	s := NewStack[string]()
	s.Push("main")
	s.Push("helper")
	//
	require.Equal(t, 1, s.Find(func(n string) bool { return n == "helper" }))
	require.Equal(t, -1, s.Find(func(n string) bool { return n == "other" }))
	require.Equal(t, []string{"main", "helper"}, s.Items())
}
