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

// Command zincc is the Zinc toolchain's command-line entry point: build,
// run, test, setup, prove and verify subcommands over the compiler and
// constraint-generating VM in pkg/.
package main

import "github.com/zinc-lang/zinc/pkg/cmd"

func main() {
	cmd.Execute()
}
