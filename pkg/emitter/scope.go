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
package emitter

import (
	"github.com/zinc-lang/zinc/pkg/bytecode"
	"github.com/zinc-lang/zinc/pkg/semantic"
)

// localVar is one named binding in a function's data-stack frame.
type localVar struct {
	addr int
	size int
	typ  semantic.Type
}

// localScope mirrors semantic.Scope's parent-chained name table, but over
// the emitter's own addr-carrying entries — semantic's scopes are ephemeral
// and discarded once analysis finishes, so the emitter rebuilds the same
// nesting shape while re-walking each function body.
type localScope struct {
	parent *localScope
	vars   map[string]localVar
}

func newLocalScope(parent *localScope) *localScope {
	return &localScope{parent: parent, vars: make(map[string]localVar)}
}

func (s *localScope) declare(name string, v localVar) {
	s.vars[name] = v
}

func (s *localScope) resolve(name string) (localVar, bool) {
	for sc := s; sc != nil; sc = sc.parent {
		if v, ok := sc.vars[name]; ok {
			return v, true
		}
	}

	return localVar{}, false
}

// funcCtx holds the mutable state threaded through emission of a single
// function body: its growing instruction slice, its current data-stack
// bump-allocation cursor, and (for a contract method) the storage frame it
// was given.
type funcCtx struct {
	em    *Emitter
	fn    string
	scope *localScope

	instrs []bytecode.Instruction
	top    int

	storage     *semantic.ContractType
	selfAddr    int
	storageUsed bool
}

// emit appends instr to the function body being built and returns its
// index (used to record pending Call fixups).
func (c *funcCtx) emit(instr bytecode.Instruction) int {
	c.instrs = append(c.instrs, instr)
	return len(c.instrs) - 1
}

// alloc reserves sz fresh cells at the top of the function's data-stack
// frame and returns their base address.
func (c *funcCtx) alloc(sz int) int {
	addr := c.top
	c.top += sz

	return addr
}
