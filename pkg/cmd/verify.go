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

	"github.com/spf13/cobra"

	"github.com/zinc-lang/zinc/pkg/vm"
)

// verifyCmd runs a program in verify mode (§4.6): given a verifying key,
// the claimed public outputs and a proof, it reports whether the proof is
// valid without re-executing the program.
var verifyCmd = &cobra.Command{
	Use:   "verify source.zn|program.zbin",
	Short: "Check a proof against a verifying key and claimed outputs.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		prog, err := loadProgram(args[0])
		if err != nil {
			reportError(err)
			os.Exit(1)
		}

		var vk vm.VerifyingKey
		if err := readJSON(GetString(cmd, "vk"), &vk); err != nil {
			reportError(err)
			os.Exit(1)
		}

		var proof vm.Proof
		if err := readJSON(GetString(cmd, "proof"), &proof); err != nil {
			reportError(err)
			os.Exit(1)
		}

		outputVal, err := readInputJSON(GetString(cmd, "output"))
		if err != nil {
			reportError(err)
			os.Exit(1)
		}

		outputs, err := vm.Bind(outputVal, prog.Header.Output)
		if err != nil {
			reportError(err)
			os.Exit(1)
		}

		valid, err := vm.Verify(vk, outputs, proof)
		if err != nil {
			reportError(err)
			os.Exit(1)
		}

		printVerdict(valid)
	},
}

func printVerdict(valid bool) {
	if valid {
		fmt.Println("valid")
		return
	}

	fmt.Println("invalid")
	os.Exit(1)
}

func init() {
	rootCmd.AddCommand(verifyCmd)
	verifyCmd.Flags().String("vk", "vk.json", "verifying key produced by \"zincc setup\"")
	verifyCmd.Flags().String("proof", "proof.json", "proof produced by \"zincc prove\"")
	verifyCmd.Flags().String("output", "", "JSON file holding the claimed public output value")
}
