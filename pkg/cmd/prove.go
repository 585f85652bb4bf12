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

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/zinc-lang/zinc/pkg/vm"
)

// proveCmd runs a program in prove mode (§4.6): a real witness is supplied,
// every constraint row is checked as it is derived, and on success a Proof
// plus the public outputs are produced.
var proveCmd = &cobra.Command{
	Use:   "prove source.zn|program.zbin",
	Short: "Execute a program in prove mode and emit a proof.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		prog, err := loadProgram(args[0])
		if err != nil {
			reportError(err)
			os.Exit(1)
		}

		var pk vm.ProvingKey
		if err := readJSON(GetString(cmd, "pk"), &pk); err != nil {
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

		logger := traceLogger(cmd)

		outputs, proof, err := vm.Prove(pk, prog, cells, logger)
		if err != nil {
			reportError(err)
			os.Exit(1)
		}

		outVal, err := vm.Unbind(outputs, prog.Header.Output)
		if err != nil {
			reportError(err)
			os.Exit(1)
		}

		log.Debugf("prove: produced %d output cells", len(outputs))

		if err := writeJSON(GetString(cmd, "proof"), proof); err != nil {
			reportError(err)
			os.Exit(1)
		}

		if out := GetString(cmd, "output"); out != "" {
			if err := writeJSON(out, outVal); err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(proveCmd)
	proveCmd.Flags().String("pk", "pk.json", "proving key produced by \"zincc setup\"")
	proveCmd.Flags().String("input", "", "JSON file holding the program's input value (public and private combined)")
	proveCmd.Flags().String("proof", "proof.json", "output file for the proof")
	proveCmd.Flags().StringP("output", "o", "", "write the JSON public output value here")
}
