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

import (
	"context"

	"github.com/qgl2/go-qgl2/pkg/qgl2/diag"
	"github.com/qgl2/go-qgl2/pkg/qgl2/sequence"
	log "github.com/sirupsen/logrus"
)

// Config captures the options affecting compilation.
type Config struct {
	// Entry file to compile.
	Entry string
	// Name of the entry function, overriding any declared entry point.
	Main string
	// Additional directories to search for modules.
	Path []string
	// Modules whose exports are treated as primitives.
	Intrinsics []string
	// Maximum length of a chain of inlined calls.
	MaxInlineDepth uint
}

// DefaultConfig returns the configuration used when no options are given.
func DefaultConfig(entry string) Config {
	return Config{Entry: entry, Intrinsics: DEFAULT_INTRINSICS, MaxInlineDepth: DEFAULT_MAX_INLINE_DEPTH}
}

// Result captures the outcome of compilation.
type Result struct {
	// Compiled program, or nil if compilation failed.
	Program *sequence.Program
	// Flattened entry point, or nil if compilation stopped before inlining
	// completed.
	Flattened *Flattened
	// Schedule, or nil if compilation stopped before unrolling completed.
	Schedule *sequence.Schedule
	// Files of all modules loaded.
	Files []string
}

// Compile a program, reporting problems into a given set of diagnostics.  An
// error is returned only when the entry file cannot be read, or the context is
// cancelled.  Otherwise, compilation stops at the first fatal diagnostic, and
// no program is produced if any error-level diagnostic was reported.
func Compile(ctx context.Context, config Config, diags *diag.Diagnostics) (*Result, error) {
	var (
		result   Result
		importer = NewImporter(diags, config.Path, config.Intrinsics)
	)
	// Resolve namespaces
	module, err := importer.Load(ctx, config.Entry)
	//
	if err != nil {
		return nil, err
	}
	//
	result.Files = importer.Files()
	// Syntax errors have already been reported
	if module.Failed() {
		return &result, nil
	}
	//
	entry, fatal := importer.EntryPoint(module, config.Main)
	//
	if fatal != nil {
		return &result, nil
	}
	// Flatten entry point
	if result.Flattened, fatal = NewInliner(importer, diags, config.MaxInlineDepth).Inline(entry); fatal != nil {
		return &result, nil
	}
	// Unroll and group
	if result.Schedule, fatal = NewUnroller(result.Flattened, diags).Unroll(); fatal != nil {
		return &result, nil
	}
	//
	if diags.Failed() {
		log.Debugf("compilation of %s failed", config.Entry)
		return &result, nil
	}
	// Synthesize sequences
	result.Program = sequence.Synthesize(result.Schedule)
	//
	return &result, nil
}
