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
	"math/big"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/zinc-lang/zinc/pkg/semantic"
	"github.com/zinc-lang/zinc/pkg/vm"
	"github.com/zinc-lang/zinc/pkg/vm/gadgets"
)

// setupCmd derives a proving/verifying key pair from a program's constraint
// shape (§4.6 setup mode). This simplified implementation (see DESIGN.md)
// still has to execute the program once to discover which rows its control
// flow reaches, so a representative input is accepted (defaulting to an
// all-zero witness of the right cell width when none is given).
var setupCmd = &cobra.Command{
	Use:   "setup source.zn|program.zbin",
	Short: "Derive a proving/verifying key pair from a program's constraint shape.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		prog, err := loadProgram(args[0])
		if err != nil {
			reportError(err)
			os.Exit(1)
		}

		cells, err := setupCells(cmd, prog.Header.Input)
		if err != nil {
			reportError(err)
			os.Exit(1)
		}

		logger := traceLogger(cmd)

		pk, vk, err := vm.Setup(prog, cells, logger)
		if err != nil {
			reportError(err)
			os.Exit(1)
		}

		log.Debugf("setup: %d variables, %d constraint rows", pk.NumVariables, pk.NumRows)

		if err := writeJSON(GetString(cmd, "pk"), pk); err != nil {
			reportError(err)
			os.Exit(1)
		}

		if err := writeJSON(GetString(cmd, "vk"), vk); err != nil {
			reportError(err)
			os.Exit(1)
		}
	},
}

func setupCells(cmd *cobra.Command, t semantic.Type) ([]gadgets.Scalar, error) {
	if input := GetString(cmd, "input"); input != "" {
		val, err := readInputJSON(input)
		if err != nil {
			return nil, err
		}

		return vm.Bind(val, t)
	}

	cells := make([]gadgets.Scalar, t.Size())
	for i := range cells {
		cells[i] = gadgets.Const(big.NewInt(0))
	}

	return cells, nil
}

// traceLogger builds the per-constraint zap tracer (§1.1) when -v is set,
// matching the CLI-facing logrus verbosity flag; nil disables tracing.
func traceLogger(cmd *cobra.Command) *zap.Logger {
	if !GetFlag(cmd, "verbose") {
		return nil
	}

	logger, err := zap.NewDevelopment()
	if err != nil {
		return nil
	}

	return logger.Named("cs")
}

func init() {
	rootCmd.AddCommand(setupCmd)
	setupCmd.Flags().String("input", "", "JSON file holding a representative input value (default: all-zero witness)")
	setupCmd.Flags().String("pk", "pk.json", "output file for the proving key")
	setupCmd.Flags().String("vk", "vk.json", "output file for the verifying key")
}
