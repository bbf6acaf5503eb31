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
package test

import (
	"testing"

	"github.com/qgl2/go-qgl2/pkg/test/util"
)

func Test_Invalid_Entry_01(t *testing.T) {
	util.CheckInvalid(t, "invalid/entry_01")
}

func Test_Invalid_Overlap_01(t *testing.T) {
	util.CheckInvalid(t, "invalid/overlap_01")
}

func Test_Invalid_Binding_01(t *testing.T) {
	util.CheckInvalid(t, "invalid/binding_01")
}

func Test_Invalid_Keyword_01(t *testing.T) {
	util.CheckInvalid(t, "invalid/keyword_01")
}

func Test_Invalid_Unknown_01(t *testing.T) {
	util.CheckInvalid(t, "invalid/unknown_01")
}

func Test_Invalid_Import_01(t *testing.T) {
	util.CheckInvalid(t, "invalid/import_01")
}
