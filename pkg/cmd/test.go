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

	"github.com/zinc-lang/zinc/pkg/bytecode"
	"github.com/zinc-lang/zinc/pkg/semantic"
	"github.com/zinc-lang/zinc/pkg/vm"
)

// testCmd runs every `#[test]` entry recorded in a program's unit-test table
// (spec.md §4.3(i), §6.4) in run mode and classifies each against its
// `#[should_panic]`/`#[ignore]` metadata — the test-runner collaborator the
// core hands pass/fail results to (§7's "Propagation policy").
var testCmd = &cobra.Command{
	Use:   "test source.zn|program.zbin",
	Short: "Run a program's #[test] functions and report pass/fail.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		prog, err := loadProgram(args[0])
		if err != nil {
			reportError(err)
			os.Exit(1)
		}

		if len(prog.Header.UnitTests) == 0 {
			fmt.Println("no #[test] functions found")
			return
		}

		failures := 0

		for _, t := range prog.Header.UnitTests {
			if t.Ignored {
				fmt.Printf("test %s ... ignored\n", t.Name)
				continue
			}

			ok, err := runUnitTest(prog, t)

			switch {
			case ok:
				fmt.Printf("test %s ... ok\n", t.Name)
			default:
				fmt.Printf("test %s ... FAILED: %v\n", t.Name, err)
				failures++
			}
		}

		if failures > 0 {
			fmt.Printf("%d test(s) failed\n", failures)
			os.Exit(1)
		}
	},
}

// runUnitTest executes one zero-argument test function from its own entry
// address, reusing the program's shared instruction array (test bodies were
// already emitted alongside every other function by pkg/emitter). A run
// that returns an error is a pass iff ShouldPanic is set; a clean run is a
// pass iff it is not.
func runUnitTest(prog *bytecode.Program, t bytecode.UnitTest) (bool, error) {
	entry := &bytecode.Program{
		Header: bytecode.Header{
			Magic:        prog.Header.Magic,
			Version:      prog.Header.Version,
			Input:        semantic.UnitType{},
			Output:       semantic.UnitType{},
			EntryAddress: t.Address,
		},
		Instructions: prog.Instructions,
	}

	log.Debugf("running test %s at address %d", t.Name, t.Address)

	m := vm.New(entry, vm.ModeRun, nil)

	_, err := m.Run(nil)
	if t.ShouldPanic {
		if err == nil {
			return false, fmt.Errorf("expected a panic, but it completed successfully")
		}

		return true, nil
	}

	return err == nil, err
}

func init() {
	rootCmd.AddCommand(testCmd)
}
