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
	"fmt"

	"github.com/zinc-lang/zinc/pkg/bytecode"
	"github.com/zinc-lang/zinc/pkg/semantic"
	"github.com/zinc-lang/zinc/pkg/syntax"
)

// typeOf returns the type the analyser resolved for expr. Every expression
// node the analyser visited via checkExprHint has an entry; nodes the
// emitter constructs itself (none) would not.
func (em *Emitter) typeOf(e syntax.Expr) semantic.Type {
	return em.types[e]
}

// emitFunction lowers one function body to its own instruction slice,
// starting a fresh address space at 0 (params first, in declaration order,
// skipping a leading self), then walking the body like checkBlock does.
func (em *Emitter) emitFunction(name string, fi funcInfo) ([]bytecode.Instruction, error) {
	ctx := &funcCtx{em: em, fn: name, scope: newLocalScope(nil), storage: fi.storage}

	ctx.emit(&bytecode.FunctionMarker{Name: name})

	paramIdx := 0

	for _, p := range fi.params {
		if p.Name == "self" {
			if fi.storage == nil {
				return nil, fmt.Errorf("self parameter outside a contract method")
			}

			ctx.emit(&bytecode.StorageFetch{})

			addr := ctx.alloc(fi.storage.Size())
			ctx.emit(&bytecode.Store{Addr: addr, Size: fi.storage.Size()})
			ctx.selfAddr = addr
			ctx.scope.declare(p.Name, localVar{addr, fi.storage.Size(), fi.storage})

			continue
		}

		pt := fi.sig.Params[paramIdx]
		paramIdx++

		addr := ctx.alloc(pt.Size())
		ctx.scope.declare(p.Name, localVar{addr, pt.Size(), pt})
	}

	resultSize := 0
	if fi.sig != nil {
		resultSize = fi.sig.Result.Size()
	}

	if fi.body != nil {
		if _, err := ctx.emitBlock(fi.body); err != nil {
			return nil, err
		}
	}

	if ctx.storageUsed {
		if err := ctx.writeBackStorage(); err != nil {
			return nil, err
		}
	}

	if name == "main" {
		ctx.emit(&bytecode.Exit{Outs: resultSize})
	} else {
		ctx.emit(&bytecode.Return{Outs: resultSize})
	}

	return ctx.instrs, nil
}

// writeBackStorage persists the (possibly mutated) self frame back to the
// contract's storage record. The calling convention used here — push the
// cells, then push the slot index, then StorageStore — is this emitter's
// own resolution of the open question of how StorageStore's implicit
// index operand is supplied; the VM's StorageStore pops the index first,
// then the cells.
func (c *funcCtx) writeBackStorage() error {
	size := c.storage.Size()

	c.emit(&bytecode.Load{Addr: c.selfAddr, Size: size})
	c.emit(&bytecode.Push{Value: encodeUint(0, 8), Type: semantic.IntType{Signed: false, Bits: 64}})
	c.emit(&bytecode.StorageStore{Size: size})

	return nil
}
