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
package set

import (
	"fmt"
	"math/rand"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_SortedSet_00(t *testing.T) {
	set := NewSortedSet("q2", "q1", "q2", "q3")
	//
	assert.Equal(t, []string{"q1", "q2", "q3"}, set.ToArray())
	assert.True(t, set.Contains("q1"))
	assert.False(t, set.Contains("q4"))
	assert.Equal(t, "q1, q2, q3", set.String())
}

func Test_SortedSet_01(t *testing.T) {
	var (
		left  = NewSortedSet("q1", "q2")
		right = NewSortedSet("q2", "q3")
		other = NewSortedSet("q4")
	)
	//
	assert.True(t, left.Intersects(right))
	assert.False(t, left.Intersects(other))
	assert.False(t, left.Intersects(NewSortedSet[string]()))
}

func Test_SortedSet_02(t *testing.T) {
	var (
		small = NewSortedSet("q1")
		large = NewSortedSet("q1", "q2")
	)
	//
	assert.True(t, small.SubsetOf(large))
	assert.False(t, large.SubsetOf(small))
	assert.True(t, NewSortedSet[string]().SubsetOf(small))
	assert.True(t, large.Equals(NewSortedSet("q2", "q1")))
	assert.False(t, large.Equals(small))
}

func Test_SortedSet_03(t *testing.T) {
	var (
		first  = NewSortedSet("q1", "q3")
		second = NewSortedSet("q2")
		union  = UnionSortedSets([]*SortedSet[string]{first, second}, func(s *SortedSet[string]) *SortedSet[string] {
			return s
		})
	)
	//
	assert.Equal(t, []string{"q1", "q2", "q3"}, union.ToArray())
	// Operands are unchanged
	assert.Equal(t, []string{"q1", "q3"}, first.ToArray())
}

func Test_SortedSet_04(t *testing.T) {
	set := NewSortedSet("q1")
	clone := set.Clone()
	clone.Insert("q0")
	//
	assert.Equal(t, []string{"q1"}, set.ToArray())
	assert.Equal(t, []string{"q0", "q1"}, clone.ToArray())
}

func Test_SortedSet_05(t *testing.T) {
	for i := 0; i < 100; i++ {
		t.Run(fmt.Sprintf("i=%d", i), func(t *testing.T) {
			check_SortedSet_Insert(t, 10, 32)
			check_SortedSet_InsertSorted(t, 10, 32)
		})
	}
}

func Test_SortedSet_06(t *testing.T) {
	check_SortedSet_Insert(t, 1000, 64)
	check_SortedSet_InsertSorted(t, 500, 64)
}

// ===================================================================
// Test Helpers
// ===================================================================

func check_SortedSet_Insert(t *testing.T, n uint, m uint) {
	items := randomUints(n, m)
	set := NewSortedSet[uint]()
	// Insert items
	for _, item := range items {
		set.Insert(item)
	}
	//
	check_SortedSet(t, set, items)
}

func check_SortedSet_InsertSorted(t *testing.T, n uint, m uint) {
	var (
		left  = randomUints(n, m)
		right = randomUints(n, m)
		set   = NewSortedSet(left...)
	)
	//
	set.InsertSorted(NewSortedSet(right...))
	//
	check_SortedSet(t, set, append(left, right...))
}

func check_SortedSet(t *testing.T, set *SortedSet[uint], items []uint) {
	// Every item is contained
	for _, item := range items {
		assert.True(t, set.Contains(item))
	}
	// Every element was inserted
	for _, element := range set.ToArray() {
		assert.True(t, slices.Contains(items, element))
	}
	// Elements are sorted without duplicates
	assert.True(t, slices.IsSorted(set.ToArray()))
	assert.Equal(t, len(slices.Compact(slices.Sorted(slices.Values(items)))), set.Len())
}

func randomUints(n uint, m uint) []uint {
	items := make([]uint, n)
	//
	for i := range items {
		items[i] = uint(rand.Intn(int(m)))
	}
	//
	return items
}
