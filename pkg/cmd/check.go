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
package cmd

import (
	"context"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check [flags] file",
	Short: "check a QGL2 program for errors.",
	Long: `Check that a given QGL2 file compiles, reporting any diagnostics but without
	 emitting sequences.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		options := setup(cmd)
		//
		os.Exit(runCheck(cmd.Context(), options, args[0], terminalStreams(options)))
	},
}

// Check a given file, returning the exit code.
func runCheck(ctx context.Context, options Options, filename string, out streams) int {
	result, err := compileFile(ctx, options, filename, out)
	//
	if result != nil && result.Program != nil {
		log.Infof("%s: %d modules, %d resources", filename, len(result.Files), len(result.Program.Resources))
	}
	//
	return exitCode(result, err)
}

func init() {
	rootCmd.AddCommand(checkCmd)
	addCompileFlags(checkCmd)
}
