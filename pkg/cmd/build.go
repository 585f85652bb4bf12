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
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var buildCmd = &cobra.Command{
	Use:   "build source.zn",
	Short: "Compile a Zinc source file into a bytecode program blob.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		log.Debugf("compiling %s", args[0])

		prog, err := compile(args[0])
		if err != nil {
			reportError(err)
			os.Exit(1)
		}

		out := GetString(cmd, "output")
		if out == "" {
			out = args[0] + ".zbin"
			if GetFlag(cmd, "json") {
				out = args[0] + ".json"
			}
		}

		if err := writeProgram(cmd, prog, out); err != nil {
			reportError(err)
			os.Exit(1)
		}

		log.Debugf("wrote %d instructions to %s", len(prog.Instructions), out)
	},
}

func init() {
	rootCmd.AddCommand(buildCmd)
	buildCmd.Flags().StringP("output", "o", "", "output file (default: <source>.zbin, or .json with --json)")
}
