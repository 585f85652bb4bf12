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

// Package vm is the constraint-generating bytecode interpreter: it walks a
// compiled *bytecode.Program the same way a stack machine would, but every
// non-linear step also allocates and enforces a constraint-system row
// (pkg/vm/cs, pkg/vm/gadgets), so a program that executes to completion in
// prove mode carries a machine-checkable proof that its arithmetic holds.
//
// The interpreter does not maintain an explicit instruction pointer with
// jump targets: If/Else/EndIf are straight-line condition-stack operations
// (both branches always execute, guarded by a multiplier), LoopBegin is a
// static unroller that re-enters its own body range N times, and Call
// recurses into the callee's instruction range and unwinds via Go's own
// call stack when it hits Return — so the only "jumps" the VM ever performs
// are bounded, structured recursive descents, never raw goto-style targets.
package vm

import (
	"fmt"
	"math/big"

	"go.uber.org/zap"

	"github.com/zinc-lang/zinc/pkg/bytecode"
	"github.com/zinc-lang/zinc/pkg/collection/stack"
	"github.com/zinc-lang/zinc/pkg/semantic"
	"github.com/zinc-lang/zinc/pkg/vm/cs"
	"github.com/zinc-lang/zinc/pkg/vm/gadgets"
)

// Mode selects which of the four execution modes (§4.6) the Machine runs
// in; Verify does not execute a program at all (see VerifyProof) and so has
// no Mode constant of its own.
type Mode int

const (
	// ModeRun executes without generating any constraints, for fast
	// iteration (dbg!, tests, plain evaluation).
	ModeRun Mode = iota
	// ModeSetup derives a constraint shape (variable/row counts) without a
	// real witness, for deriving proving/verifying keys.
	ModeSetup
	// ModeProve fully executes with a real witness, enforcing every
	// constraint and failing fast on the first unsatisfied one.
	ModeProve
)

func (m Mode) String() string {
	switch m {
	case ModeRun:
		return "run"
	case ModeSetup:
		return "setup"
	case ModeProve:
		return "prove"
	default:
		return "unknown"
	}
}

// signal is the control-flow result of executing an instruction range:
// either it ran off the end normally, or it hit a Return/Exit that must
// unwind the enclosing recursion without running the rest of the range.
type signal int

const (
	sigNone signal = iota
	sigReturn
	sigExit
)

// frame is one call's local data stack: addresses are frame-relative
// (pkg/emitter starts every function's own address space at 0), growable
// on first touch since the bytecode carries no explicit frame-size operand.
type frame struct {
	cells []gadgets.Scalar
}

func newFrame() *frame { return &frame{} }

func (f *frame) ensure(addr, size int) {
	need := addr + size
	for len(f.cells) < need {
		f.cells = append(f.cells, gadgets.Const(big.NewInt(0)))
	}
}

func (f *frame) read(addr, size int) []gadgets.Scalar {
	f.ensure(addr, size)
	out := make([]gadgets.Scalar, size)
	copy(out, f.cells[addr:addr+size])

	return out
}

func (f *frame) write(addr int, vals []gadgets.Scalar) {
	f.ensure(addr, len(vals))
	copy(f.cells[addr:addr+len(vals)], vals)
}

// Machine executes a single compiled program under one Mode.
type Machine struct {
	prog    *bytecode.Program
	mode    Mode
	builder *cs.Builder
	logger  *zap.Logger

	eval  *stack.Stack[gadgets.Scalar]
	depth int

	storage       *Storage
	unconstrained int // depth counter for Set/UnsetUnconstrained

	outputs []gadgets.Scalar
}

// New constructs a Machine for prog under mode. logger may be nil.
func New(prog *bytecode.Program, mode Mode, logger *zap.Logger) *Machine {
	track := mode != ModeRun
	checkSat := mode == ModeProve

	return &Machine{
		prog:    prog,
		mode:    mode,
		builder: cs.NewBuilder(track, checkSat, logger),
		logger:  logger,
		eval:    stack.NewStack[gadgets.Scalar](),
	}
}

// Builder exposes the underlying constraint-system builder, e.g. so Setup
// can read back NumVariables/NumConstraints after a run.
func (m *Machine) Builder() *cs.Builder { return m.builder }

// Run executes the program's entry point with the given input cells
// already encoded as logical scalars, returning its output cells.
func (m *Machine) Run(input []gadgets.Scalar) ([]gadgets.Scalar, error) {
	if m.prog.Header.Input != nil {
		want := m.prog.Header.Input.Size()
		if len(input) != want {
			return nil, fmt.Errorf("vm: program expects %d input cells, got %d", want, len(input))
		}
	}

	fr := newFrame()
	fr.write(0, input)

	if err := m.run(fr, m.prog.Header.EntryAddress); err != nil {
		return nil, err
	}

	return m.outputs, nil
}

func (m *Machine) run(fr *frame, entry int) error {
	sig, err := m.exec(fr, entry, len(m.prog.Instructions))
	if err != nil {
		return err
	}

	if sig != sigExit {
		return newError(ErrCallStackCorruption, entry, "program did not exit")
	}

	return nil
}

func (m *Machine) trackEnabled() bool {
	return m.builder.Track && m.unconstrained == 0
}

func (m *Machine) builderFor() *cs.Builder {
	if m.trackEnabled() {
		return m.builder
	}

	return cs.NewBuilder(false, false, nil)
}

// condActive reports whether the innermost condition-stack guard is 1,
// gating Store/StorageStore/Assert side effects the way the condition
// stack gates constraint emission in a real SNARK-backed implementation
// (§4.6). This machine checks the concrete guard value directly rather
// than multiplying every guarded constraint by it, a simplification noted
// in DESIGN.md alongside the rest of the proving-scheme stand-in.
// condFrame is one level of the condition stack: own is this level's own
// (possibly negated by Else) guard, combined is own AND-ed with every
// enclosing level's combined guard — the value Store/Assert/StorageStore
// actually gate on.
type condFrame struct {
	own      gadgets.Scalar
	combined gadgets.Scalar
}

func (m *Machine) condActive(conds *stack.Stack[condFrame]) bool {
	if conds.IsEmpty() {
		return true
	}

	return conds.Peek(0).combined.Val.Sign() != 0
}

// popCells removes and returns the top n evaluation-stack cells, in the
// address-increasing order they were originally pushed in (index 0 is the
// deepest / first-pushed of the group).
func (m *Machine) popCells(n int) ([]gadgets.Scalar, error) {
	if int(m.eval.Len()) < n {
		return nil, newError(ErrStackUnderflow, 0, "need %d cells, have %d", n, m.eval.Len())
	}

	out := make([]gadgets.Scalar, n)
	for i := n - 1; i >= 0; i-- {
		out[i] = m.eval.Pop()
	}

	return out, nil
}

func (m *Machine) pushCells(vals []gadgets.Scalar) {
	m.eval.PushAll(vals)
}

func (m *Machine) pop1() (gadgets.Scalar, error) {
	vs, err := m.popCells(1)
	if err != nil {
		return gadgets.Scalar{}, err
	}

	return vs[0], nil
}

// exec runs instructions [start,end) against fr, returning how control left
// the range.
func (m *Machine) exec(fr *frame, start, end int) (signal, error) { //nolint:gocyclo
	conds := stack.NewStack[condFrame]()

	pc := start
	for pc < end {
		instr := m.prog.Instructions[pc]
		b := m.builderFor()

		switch ins := instr.(type) {
		case *bytecode.Push:
			m.pushCells([]gadgets.Scalar{scalarOf(ins.Value, ins.Type)})
		case *bytecode.Pop:
			if _, err := m.pop1(); err != nil {
				return sigNone, err
			}
		case *bytecode.Copy:
			if ins.Offset < 0 || uint(ins.Offset) >= m.eval.Len() {
				return sigNone, newError(ErrStackUnderflow, pc, "copy offset %d", ins.Offset)
			}

			m.pushCells([]gadgets.Scalar{m.eval.Peek(uint(ins.Offset))})
		case *bytecode.Load:
			m.pushCells(fr.read(ins.Addr, ins.Size))
		case *bytecode.Store:
			vals, err := m.popCells(ins.Size)
			if err != nil {
				return sigNone, err
			}

			if m.condActive(conds) {
				fr.write(ins.Addr, vals)
			}
		case *bytecode.LoadByIndex:
			idx, err := m.pop1()
			if err != nil {
				return sigNone, err
			}

			i := int(idx.Val.Int64())
			if i < 0 || ins.Addr+i*ins.Elem+ins.Elem > ins.Addr+ins.Total {
				return sigNone, newError(ErrIndexOutOfBounds, pc, "index %d", i)
			}

			m.pushCells(fr.read(ins.Addr+i*ins.Elem, ins.Elem))
		case *bytecode.StoreByIndex:
			idx, err := m.pop1()
			if err != nil {
				return sigNone, err
			}

			vals, err := m.popCells(ins.Elem)
			if err != nil {
				return sigNone, err
			}

			i := int(idx.Val.Int64())
			if i < 0 || ins.Addr+i*ins.Elem+ins.Elem > ins.Addr+ins.Total {
				return sigNone, newError(ErrIndexOutOfBounds, pc, "index %d", i)
			}

			if m.condActive(conds) {
				fr.write(ins.Addr+i*ins.Elem, vals)
			}
		case *bytecode.Slice:
			vals, err := m.popCells(ins.Total)
			if err != nil {
				return sigNone, err
			}

			if ins.Offset < 0 || ins.Offset+ins.Size > ins.Total {
				return sigNone, newError(ErrIndexOutOfBounds, pc, "slice %d..%d of %d", ins.Offset, ins.Offset+ins.Size, ins.Total)
			}

			m.pushCells(vals[ins.Offset : ins.Offset+ins.Size])

		case *bytecode.Add, *bytecode.Sub, *bytecode.Mul, *bytecode.Div, *bytecode.Rem, *bytecode.Neg:
			if err := m.execArith(b, pc, instr); err != nil {
				return sigNone, err
			}
		case *bytecode.Eq, *bytecode.Ne, *bytecode.Lt, *bytecode.Le, *bytecode.Gt, *bytecode.Ge:
			if err := m.execCompare(b, pc, instr); err != nil {
				return sigNone, err
			}
		case *bytecode.And, *bytecode.Or, *bytecode.Xor, *bytecode.Not:
			if err := m.execLogical(b, pc, instr); err != nil {
				return sigNone, err
			}
		case *bytecode.BitwiseAnd, *bytecode.BitwiseOr, *bytecode.BitwiseXor, *bytecode.BitwiseNot:
			if err := m.execBitwise(b, pc, instr); err != nil {
				return sigNone, err
			}
		case *bytecode.BitwiseShiftLeft:
			if err := m.execShift(b, pc, ins.Type, ins.Amount, true); err != nil {
				return sigNone, err
			}
		case *bytecode.BitwiseShiftRight:
			if err := m.execShift(b, pc, ins.Type, ins.Amount, false); err != nil {
				return sigNone, err
			}
		case *bytecode.Cast:
			if err := m.execCast(b, pc, ins); err != nil {
				return sigNone, err
			}

		case *bytecode.If:
			cond, err := m.pop1()
			if err != nil {
				return sigNone, err
			}

			parentCombined := gadgets.Const(big.NewInt(1))
			if !conds.IsEmpty() {
				parentCombined = conds.Peek(0).combined
			}

			combined, err := gadgets.And(b, parentCombined, cond)
			if err != nil {
				return sigNone, err
			}

			conds.Push(condFrame{own: cond, combined: combined})
		case *bytecode.Else:
			if conds.IsEmpty() {
				return sigNone, newError(ErrCallStackCorruption, pc, "else without if")
			}

			top := conds.Pop()
			parentCombined := gadgets.Const(big.NewInt(1))
			if !conds.IsEmpty() {
				parentCombined = conds.Peek(0).combined
			}

			notOwn := gadgets.Not(top.own)

			combined, err := gadgets.And(b, parentCombined, notOwn)
			if err != nil {
				return sigNone, err
			}

			conds.Push(condFrame{own: notOwn, combined: combined})
		case *bytecode.EndIf:
			if conds.IsEmpty() {
				return sigNone, newError(ErrCallStackCorruption, pc, "endif without if")
			}

			conds.Pop()

		case *bytecode.LoopBegin:
			bodyStart := pc + 1
			bodyEnd := bodyStart + ins.BodyLen
			// The emitter stores the range's start value into IndexAddr
			// ahead of LoopBegin; iteration i sees start+i.
			base := fr.read(ins.IndexAddr, 1)[0].Val

			for i := 0; i < ins.Iterations; i++ {
				fr.write(ins.IndexAddr, []gadgets.Scalar{gadgets.Const(new(big.Int).Add(base, big.NewInt(int64(i))))})

				sig, err := m.exec(fr, bodyStart, bodyEnd)
				if err != nil {
					return sigNone, err
				}

				if sig != sigNone {
					return sig, nil
				}
			}

			pc = bodyEnd
			continue
		case *bytecode.LoopEnd:
			// Marker only; LoopBegin already consumed the body range.

		case *bytecode.Call:
			args, err := m.popCells(ins.Args)
			if err != nil {
				return sigNone, err
			}

			if m.depth >= maxCallDepth {
				return sigNone, newError(ErrCallStackCorruption, pc, "call depth exceeded")
			}

			callee := newFrame()
			callee.write(0, args)

			m.depth++
			sig, err := m.exec(callee, ins.Addr, len(m.prog.Instructions))
			m.depth--

			if err != nil {
				return sigNone, err
			}

			if sig != sigReturn && sig != sigExit {
				return sigNone, newError(ErrCallStackCorruption, pc, "call %q did not return", ins.Name)
			}
		case *bytecode.Return:
			if int(m.eval.Len()) < ins.Outs {
				return sigNone, newError(ErrStackUnderflow, pc, "return expects %d cells", ins.Outs)
			}

			return sigReturn, nil
		case *bytecode.Exit:
			outs, err := m.popCells(ins.Outs)
			if err != nil {
				return sigNone, err
			}

			m.outputs = outs

			return sigExit, nil

		case *bytecode.StorageInit:
			m.storage = NewStorage(ins.FieldCount)
		case *bytecode.StorageFetch:
			if m.storage == nil {
				return sigNone, newError(ErrCallStackCorruption, pc, "storage not initialised")
			}

			m.pushCells(m.storage.Fetch())
		case *bytecode.StorageLoad:
			idx, err := m.pop1()
			if err != nil {
				return sigNone, err
			}

			vals, err := m.storage.Load(int(idx.Val.Int64()), ins.Size)
			if err != nil {
				return sigNone, err
			}

			m.pushCells(vals)
		case *bytecode.StorageStore:
			idx, err := m.pop1()
			if err != nil {
				return sigNone, err
			}

			vals, err := m.popCells(ins.Size)
			if err != nil {
				return sigNone, err
			}

			if m.condActive(conds) {
				if err := m.storage.Store(int(idx.Val.Int64()), vals); err != nil {
					return sigNone, err
				}
			}

		case *bytecode.SetUnconstrained:
			m.unconstrained++
		case *bytecode.UnsetUnconstrained:
			if m.unconstrained > 0 {
				m.unconstrained--
			}

		case *bytecode.Dbg:
			if m.mode == ModeRun {
				m.execDbg(ins)
			}
		case *bytecode.Assert:
			cond, err := m.pop1()
			if err != nil {
				return sigNone, err
			}

			if m.condActive(conds) {
				if err := b.EnforceEqual(cond.LC, cs.ConstUint(1), "assert"); err != nil {
					return sigNone, newError(ErrUnsatisfiedConstraint, pc, "%s", ins.Message)
				}

				if cond.Val.Sign() == 0 {
					return sigNone, newError(ErrAssertionFailed, pc, "%s", ins.Message)
				}
			}

		case *bytecode.FileMarker, *bytecode.FunctionMarker, *bytecode.LineMarker, *bytecode.ColumnMarker, *bytecode.NoOperation:
			// Diagnostics only.

		default:
			return sigNone, fmt.Errorf("vm: unhandled instruction %T at %d", ins, pc)
		}

		pc++
	}

	return sigNone, nil
}

func (m *Machine) execDbg(ins *bytecode.Dbg) {
	vals, err := m.popCells(len(ins.Types))
	if err != nil {
		return
	}

	args := make([]any, len(vals))
	for i, v := range vals {
		args[i] = v.Val.String()
	}

	if m.logger != nil {
		m.logger.Sugar().Infof(ins.Format, args...)
	}
}

// instrType resolves the semantic.Type carried on a typed instruction,
// shared by the arithmetic/comparison/bitwise dispatchers below.
func instrType(instr bytecode.Instruction) semantic.Type {
	switch ins := instr.(type) {
	case *bytecode.Add:
		return ins.Type
	case *bytecode.Sub:
		return ins.Type
	case *bytecode.Mul:
		return ins.Type
	case *bytecode.Div:
		return ins.Type
	case *bytecode.Rem:
		return ins.Type
	case *bytecode.Neg:
		return ins.Type
	case *bytecode.Eq:
		return ins.Type
	case *bytecode.Ne:
		return ins.Type
	case *bytecode.Lt:
		return ins.Type
	case *bytecode.Le:
		return ins.Type
	case *bytecode.Gt:
		return ins.Type
	case *bytecode.Ge:
		return ins.Type
	case *bytecode.BitwiseAnd:
		return ins.Type
	case *bytecode.BitwiseOr:
		return ins.Type
	case *bytecode.BitwiseXor:
		return ins.Type
	case *bytecode.BitwiseNot:
		return ins.Type
	default:
		return nil
	}
}
