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

// Package emitter lowers a type-checked syntax tree into a bytecode.Program:
// it walks the same module.Items the semantic analyser walked, reusing the
// analyser's resolved global scope and per-expression type cache instead of
// re-deriving either, and assigns data-stack addresses, function entry
// points, and call-site fixups itself.
package emitter

import (
	"fmt"

	"github.com/zinc-lang/zinc/pkg/bytecode"
	"github.com/zinc-lang/zinc/pkg/semantic"
	"github.com/zinc-lang/zinc/pkg/syntax"
)

// pendingCall is a Call instruction whose target address is not yet known
// because the callee may be emitted later (or recursively refer back to
// the caller).
type pendingCall struct {
	fn     string // function currently being emitted
	index  int    // instruction index within that function's body
	target string // callee's emitter-assigned name
}

// funcInfo is everything the emitter knows about one named function ahead
// of emitting its body.
type funcInfo struct {
	sig     *semantic.FunctionSig
	params  []syntax.Param
	body    *syntax.BlockExpr
	storage *semantic.ContractType // non-nil when this is a contract method
}

// Emitter lowers one compiled module. It is single-use: construct one per
// Emit call.
type Emitter struct {
	global *semantic.Scope
	types  map[syntax.Expr]semantic.Type

	order  []string
	funcs  map[string]funcInfo
	bodies map[string][]bytecode.Instruction

	pending []pendingCall
}

// NewEmitter constructs an Emitter over an already-analysed module; global
// and types must come from the same semantic.Analyzer run (global from
// Analyze's return value, types from Analyzer.Types).
func NewEmitter(global *semantic.Scope, types map[syntax.Expr]semantic.Type) *Emitter {
	return &Emitter{
		global: global,
		types:  types,
		funcs:  make(map[string]funcInfo),
		bodies: make(map[string][]bytecode.Instruction),
	}
}

// Emit lowers module to a complete program: every function body is emitted
// into its own instruction slice, call sites are recorded as pending, and a
// final fixup pass concatenates the bodies and patches every Call.Addr once
// every function's offset is known.
func (em *Emitter) Emit(module *syntax.Module) (*bytecode.Program, error) {
	var contract *semantic.ContractType

	for _, item := range module.Items {
		switch s := item.(type) {
		case *syntax.FnDeclStmt:
			em.collectFunc(s.Name, s)
		case *syntax.ImplDeclStmt:
			entry, ok := em.global.Local(s.Name)
			if !ok || entry.Module == nil {
				return nil, fmt.Errorf("emitter: impl target %q not found", s.Name)
			}

			for _, inner := range s.Items {
				if fn, ok := inner.(*syntax.FnDeclStmt); ok {
					sig, ok := entry.Module.Local(fn.Name)
					if !ok || sig.Function == nil {
						return nil, fmt.Errorf("emitter: method %q.%q has no resolved signature", s.Name, fn.Name)
					}

					name := s.Name + "::" + fn.Name
					em.order = append(em.order, name)
					em.funcs[name] = funcInfo{sig: sig.Function, params: fn.Params, body: fn.Body}
				}
			}
		case *syntax.ContractDeclStmt:
			entry, ok := em.global.Local(s.Name)
			if !ok {
				return nil, fmt.Errorf("emitter: contract %q not found", s.Name)
			}

			ct, ok := entry.Named.(*semantic.ContractType)
			if !ok {
				return nil, fmt.Errorf("emitter: %q is not a contract", s.Name)
			}

			contract = ct

			for _, inner := range s.Items {
				if fn, ok := inner.(*syntax.FnDeclStmt); ok {
					em.collectContractFunc(s.Name, ct, fn)
				}
			}
		}
	}

	for _, name := range em.order {
		body, err := em.emitFunction(name, em.funcs[name])
		if err != nil {
			return nil, fmt.Errorf("emitter: function %q: %w", name, err)
		}

		em.bodies[name] = body
	}

	offsets := make(map[string]int, len(em.order))
	cursor := 0

	// The contract's storage backend (if any) must exist before any method
	// runs, so it is initialised ahead of every function body.
	var instrs []bytecode.Instruction

	if contract != nil {
		// FieldCount is the record's total cell width (not the named field
		// count) so the VM's default storage backend can size itself from
		// this instruction alone.
		instrs = append(instrs, &bytecode.StorageInit{FieldCount: contract.Size()})
		cursor = len(instrs)
	}

	for _, name := range em.order {
		offsets[name] = cursor
		cursor += len(em.bodies[name])
	}

	for _, name := range em.order {
		instrs = append(instrs, em.bodies[name]...)
	}

	for _, pc := range em.pending {
		target, ok := offsets[pc.target]
		if !ok {
			return nil, fmt.Errorf("emitter: call to undefined function %q", pc.target)
		}

		absolute := offsets[pc.fn] + pc.index
		call, ok := instrs[absolute].(*bytecode.Call)
		if !ok {
			return nil, fmt.Errorf("emitter: internal error patching call at %d", absolute)
		}

		call.Addr = target
	}

	entryAddr := 0
	if off, ok := offsets["main"]; ok {
		entryAddr = off
	}

	input, output := programSignature(em.funcs["main"])

	prog := bytecode.NewProgram(input, output, entryAddr)
	prog.Instructions = instrs

	for _, name := range em.order {
		fi := em.funcs[name]
		if fi.sig.Test == nil {
			continue
		}

		prog.Header.UnitTests = append(prog.Header.UnitTests, bytecode.UnitTest{
			Name:        name,
			Address:     offsets[name],
			ShouldPanic: fi.sig.Test.ShouldPanic,
			Ignored:     fi.sig.Test.Ignored,
		})
	}

	return prog, nil
}

func (em *Emitter) collectFunc(name string, s *syntax.FnDeclStmt) {
	entry, _ := em.global.Local(name)

	var sig *semantic.FunctionSig
	if entry != nil {
		sig = entry.Function
	}

	em.order = append(em.order, name)
	em.funcs[name] = funcInfo{sig: sig, params: s.Params, body: s.Body}
}

func (em *Emitter) collectContractFunc(recv string, ct *semantic.ContractType, fn *syntax.FnDeclStmt) {
	entry, _ := em.global.Local(recv)

	var sig *semantic.FunctionSig
	if entry != nil && entry.Module != nil {
		if m, ok := entry.Module.Local(fn.Name); ok {
			sig = m.Function
		}
	}

	name := recv + "::" + fn.Name
	em.order = append(em.order, name)
	em.funcs[name] = funcInfo{sig: sig, params: fn.Params, body: fn.Body, storage: ct}
}

func programSignature(fi funcInfo) (semantic.Type, semantic.Type) {
	if fi.sig == nil {
		return semantic.UnitType{}, semantic.UnitType{}
	}

	if len(fi.sig.Params) == 1 {
		return fi.sig.Params[0], fi.sig.Result
	}

	return semantic.TupleType{Elems: fi.sig.Params}, fi.sig.Result
}
