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
	"fmt"
	"os"

	"github.com/segmentio/encoding/json"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/zinc-lang/zinc/pkg/vm"
)

// runCmd executes a program in run mode (§4.6): values only, no constraint
// generation, the fast path used by iteration and dbg!/assert! debugging.
var runCmd = &cobra.Command{
	Use:   "run source.zn|program.zbin",
	Short: "Execute a program in run mode (no constraint generation).",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		prog, err := loadProgram(args[0])
		if err != nil {
			reportError(err)
			os.Exit(1)
		}

		inputVal, err := readInputJSON(GetString(cmd, "input"))
		if err != nil {
			reportError(err)
			os.Exit(1)
		}

		cells, err := vm.Bind(inputVal, prog.Header.Input)
		if err != nil {
			reportError(err)
			os.Exit(1)
		}

		log.Debugf("running %s with %d input cells", args[0], len(cells))

		m := vm.New(prog, vm.ModeRun, nil)

		outputs, err := m.Run(cells)
		if err != nil {
			reportError(err)
			os.Exit(1)
		}

		outVal, err := vm.Unbind(outputs, prog.Header.Output)
		if err != nil {
			reportError(err)
			os.Exit(1)
		}

		if out := GetString(cmd, "output"); out != "" {
			if err := writeJSON(out, outVal); err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}

			return
		}

		data, err := json.Marshal(outVal)
		if err != nil {
			reportError(err)
			os.Exit(1)
		}

		fmt.Println(string(data))
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().String("input", "", "JSON file holding the program's input value")
	runCmd.Flags().StringP("output", "o", "", "write the JSON output value here instead of stdout")
}
