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

// Package cmd is the zincc command-line surface: build/run/test/setup/
// prove/verify subcommands wired over the lexer/parser/semantic/emitter/vm
// pipeline, using a cobra+logrus CLI shape throughout.
package cmd

import (
	"fmt"
	"os"
	"runtime/debug"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// Version is filled in when building with a release tag; empty in "go run"/
// "go test" builds, where we fall back to runtime/debug's module info.
var Version string

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "zincc",
	Short: "Compiler and constraint-generating VM for the Zinc language.",
	Long: `zincc compiles Zinc source into bytecode and executes it inside a
zk-SNARK arithmetic circuit, in run, setup, prove or verify mode.`,
	Run: func(cmd *cobra.Command, args []string) {
		if GetFlag(cmd, "version") {
			fmt.Print("zincc ")

			if Version != "" {
				fmt.Print(Version)
			} else if info, ok := debug.ReadBuildInfo(); ok {
				fmt.Print(info.Main.Version)
			} else {
				fmt.Print("(unknown version)")
			}

			fmt.Println()

			return
		}

		_ = cmd.Help()
	},
}

// Execute adds all child commands to the root command and sets flags
// appropriately. Called once by cmd/zincc's main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().Bool("version", false, "report the version of this executable")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "increase logrus logging verbosity")
	rootCmd.PersistentFlags().Bool("json", false, "emit machine-readable JSON instead of text where supported")
	// The field is fixed to BN254, but the flag is kept for forward
	// compatibility rather than hard-coding it invisibly.
	rootCmd.PersistentFlags().String("field", "bn254", "scalar field the constraint system is built over")

	cobra.OnInitialize(func() {
		if cmdVerbose() {
			log.SetLevel(log.DebugLevel)
		}
	})
}

// cmdVerbose reports whether --verbose was passed anywhere on the command
// line; PersistentFlags are only bound to the invoked subcommand at
// Execute() time, so this is read lazily from rootCmd itself.
func cmdVerbose() bool {
	v, _ := rootCmd.PersistentFlags().GetBool("verbose")
	return v
}
