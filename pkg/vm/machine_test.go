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
package vm

import (
	"math/big"
	"testing"

	"github.com/zinc-lang/zinc/pkg/bytecode"
	"github.com/zinc-lang/zinc/pkg/semantic"
	"github.com/zinc-lang/zinc/pkg/vm/gadgets"
)

var (
	u8     = semantic.IntType{Signed: false, Bits: 8}
	i8     = semantic.IntType{Signed: true, Bits: 8}
	boolT  = semantic.BoolType{}
	fieldT = semantic.FieldType{}
)

func scalars(vs ...int64) []gadgets.Scalar {
	out := make([]gadgets.Scalar, len(vs))
	for i, v := range vs {
		out[i] = gadgets.Const(big.NewInt(v))
	}

	return out
}

// pushU8 builds a Push of the u8 constant v.
func pushU8(v int64) *bytecode.Push {
	return &bytecode.Push{Value: []byte{byte(v)}, Type: u8}
}

// S1: `fn main(a: u8, b: u8) -> u8 { a + b }`
func TestMachine_S1_Add(t *testing.T) {
	input := semantic.TupleType{Elems: []semantic.Type{u8, u8}}
	prog := bytecode.NewProgram(input, u8, 0)
	prog.Instructions = []bytecode.Instruction{
		&bytecode.Load{Addr: 0, Size: 1},
		&bytecode.Load{Addr: 1, Size: 1},
		&bytecode.Add{Type: u8},
		&bytecode.Exit{Outs: 1},
	}

	m := New(prog, ModeProve, nil)

	out, err := m.Run(scalars(7, 35))
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if len(out) != 1 || out[0].Val.Cmp(big.NewInt(42)) != 0 {
		t.Fatalf("got %v, want [42]", out)
	}

	if m.Builder().NumConstraints() != 0 {
		t.Fatalf("addition should be linear: got %d constraints", m.Builder().NumConstraints())
	}
}

// S1 variant: addition overflowing u8 traps.
func TestMachine_S1_AddOverflowTraps(t *testing.T) {
	input := semantic.TupleType{Elems: []semantic.Type{u8, u8}}
	prog := bytecode.NewProgram(input, u8, 0)
	prog.Instructions = []bytecode.Instruction{
		&bytecode.Load{Addr: 0, Size: 1},
		&bytecode.Load{Addr: 1, Size: 1},
		&bytecode.Add{Type: u8},
		&bytecode.Exit{Outs: 1},
	}

	m := New(prog, ModeRun, nil)

	_, err := m.Run(scalars(200, 100))
	if err == nil {
		t.Fatal("expected overflow trap, got nil error")
	}

	rerr, ok := err.(*RuntimeError)
	if !ok || rerr.Kind != ErrIntegerOverflow {
		t.Fatalf("expected ErrIntegerOverflow, got %v", err)
	}
}

// S1 variant: unsigned subtraction underflow traps rather than wrapping.
func TestMachine_S1_SubUnderflowTraps(t *testing.T) {
	input := semantic.TupleType{Elems: []semantic.Type{u8, u8}}
	prog := bytecode.NewProgram(input, u8, 0)
	prog.Instructions = []bytecode.Instruction{
		&bytecode.Load{Addr: 0, Size: 1},
		&bytecode.Load{Addr: 1, Size: 1},
		&bytecode.Sub{Type: u8},
		&bytecode.Exit{Outs: 1},
	}

	m := New(prog, ModeRun, nil)

	_, err := m.Run(scalars(1, 2))
	if err == nil {
		t.Fatal("expected overflow trap, got nil error")
	}
}

// `fn main(x: field, y: field) -> field { x * y }` exercises the one
// real multiplicative gate.
func TestMachine_FieldMul(t *testing.T) {
	input := semantic.TupleType{Elems: []semantic.Type{fieldT, fieldT}}
	prog := bytecode.NewProgram(input, fieldT, 0)
	prog.Instructions = []bytecode.Instruction{
		&bytecode.Load{Addr: 0, Size: 1},
		&bytecode.Load{Addr: 1, Size: 1},
		&bytecode.Mul{Type: fieldT},
		&bytecode.Exit{Outs: 1},
	}

	m := New(prog, ModeProve, nil)

	out, err := m.Run(scalars(6, 7))
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if out[0].Val.Cmp(big.NewInt(42)) != 0 {
		t.Fatalf("got %v, want [42]", out)
	}

	if m.Builder().NumConstraints() == 0 {
		t.Fatal("multiplication must allocate at least one constraint")
	}
}

// An `if`/`else` guarding a conditional Store: both branches execute but
// only the taken branch's write lands.
func TestMachine_ConditionalStore(t *testing.T) {
	input := boolT
	prog := bytecode.NewProgram(input, u8, 0)
	prog.Instructions = []bytecode.Instruction{
		&bytecode.Load{Addr: 0, Size: 1}, // cond
		&bytecode.If{},
		pushU8(1),
		&bytecode.Store{Addr: 1, Size: 1},
		&bytecode.Else{},
		pushU8(2),
		&bytecode.Store{Addr: 1, Size: 1},
		&bytecode.EndIf{},
		&bytecode.Load{Addr: 1, Size: 1},
		&bytecode.Exit{Outs: 1},
	}

	m := New(prog, ModeProve, nil)

	out, err := m.Run(scalars(1))
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if out[0].Val.Cmp(big.NewInt(1)) != 0 {
		t.Fatalf("then branch: got %v, want [1]", out)
	}

	m2 := New(prog, ModeProve, nil)

	out2, err := m2.Run(scalars(0))
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if out2[0].Val.Cmp(big.NewInt(2)) != 0 {
		t.Fatalf("else branch: got %v, want [2]", out2)
	}
}

// S3: a statically-unrolled loop summing 0..n into an accumulator cell.
func TestMachine_S3_LoopSum(t *testing.T) {
	prog := bytecode.NewProgram(semantic.UnitType{}, u8, 0)
	prog.Instructions = []bytecode.Instruction{
		pushU8(0),
		&bytecode.Store{Addr: 0, Size: 1}, // acc = 0
		&bytecode.LoopBegin{Iterations: 4, BodyLen: 4, IndexAddr: 1},
		&bytecode.Load{Addr: 0, Size: 1},
		&bytecode.Load{Addr: 1, Size: 1},
		&bytecode.Add{Type: u8},
		&bytecode.Store{Addr: 0, Size: 1},
		&bytecode.LoopEnd{},
		&bytecode.Load{Addr: 0, Size: 1},
		&bytecode.Exit{Outs: 1},
	}

	m := New(prog, ModeProve, nil)

	out, err := m.Run(nil)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	// 0+1+2+3 = 6
	if out[0].Val.Cmp(big.NewInt(6)) != 0 {
		t.Fatalf("got %v, want [6]", out)
	}
}

// S2: an assertion failure is a distinct runtime error from a trapped
// arithmetic overflow or an unsatisfied constraint.
func TestMachine_S2_AssertFails(t *testing.T) {
	prog := bytecode.NewProgram(semantic.UnitType{}, semantic.UnitType{}, 0)
	prog.Instructions = []bytecode.Instruction{
		pushU8(0),
		&bytecode.Assert{Message: "must be nonzero"},
		&bytecode.Exit{Outs: 0},
	}

	m := New(prog, ModeRun, nil)

	_, err := m.Run(nil)
	if err == nil {
		t.Fatal("expected assertion failure")
	}

	rerr, ok := err.(*RuntimeError)
	if !ok || rerr.Kind != ErrAssertionFailed {
		t.Fatalf("expected ErrAssertionFailed, got %v", err)
	}
}

func TestMachine_Comparison(t *testing.T) {
	input := semantic.TupleType{Elems: []semantic.Type{i8, i8}}
	prog := bytecode.NewProgram(input, boolT, 0)
	prog.Instructions = []bytecode.Instruction{
		&bytecode.Load{Addr: 0, Size: 1},
		&bytecode.Load{Addr: 1, Size: 1},
		&bytecode.Lt{Type: i8},
		&bytecode.Exit{Outs: 1},
	}

	m := New(prog, ModeProve, nil)

	out, err := m.Run(scalars(-5, 3))
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if out[0].Val.Sign() == 0 {
		t.Fatalf("-5 < 3 should be true, got %v", out)
	}
}

func TestMachine_BitwiseAndShift(t *testing.T) {
	input := semantic.TupleType{Elems: []semantic.Type{u8, u8}}
	prog := bytecode.NewProgram(input, u8, 0)
	prog.Instructions = []bytecode.Instruction{
		&bytecode.Load{Addr: 0, Size: 1},
		&bytecode.Load{Addr: 1, Size: 1},
		&bytecode.BitwiseAnd{Type: u8},
		&bytecode.BitwiseShiftLeft{Type: u8, Amount: 1},
		&bytecode.Exit{Outs: 1},
	}

	m := New(prog, ModeProve, nil)

	// (0b1100 & 0b1010) << 1 = 0b1000 << 1 = 0b10000 = 16
	out, err := m.Run(scalars(0b1100, 0b1010))
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if out[0].Val.Cmp(big.NewInt(16)) != 0 {
		t.Fatalf("got %v, want [16]", out)
	}
}

func TestMachine_DivRemEuclidean(t *testing.T) {
	input := semantic.TupleType{Elems: []semantic.Type{i8, i8}}
	prog := bytecode.NewProgram(input, i8, 0)
	prog.Instructions = []bytecode.Instruction{
		&bytecode.Load{Addr: 0, Size: 1},
		&bytecode.Load{Addr: 1, Size: 1},
		&bytecode.Rem{Type: i8},
		&bytecode.Exit{Outs: 1},
	}

	m := New(prog, ModeProve, nil)

	// -7 rem 3 in Euclidean semantics is 2, not -1.
	out, err := m.Run(scalars(-7, 3))
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if out[0].Val.Cmp(big.NewInt(2)) != 0 {
		t.Fatalf("got %v, want [2]", out)
	}
}

func TestMachine_DivisionByZeroTraps(t *testing.T) {
	input := semantic.TupleType{Elems: []semantic.Type{u8, u8}}
	prog := bytecode.NewProgram(input, u8, 0)
	prog.Instructions = []bytecode.Instruction{
		&bytecode.Load{Addr: 0, Size: 1},
		&bytecode.Load{Addr: 1, Size: 1},
		&bytecode.Div{Type: u8},
		&bytecode.Exit{Outs: 1},
	}

	m := New(prog, ModeRun, nil)

	_, err := m.Run(scalars(10, 0))
	if err == nil {
		t.Fatal("expected division by zero error")
	}

	rerr, ok := err.(*RuntimeError)
	if !ok || rerr.Kind != ErrDivisionByZero {
		t.Fatalf("expected ErrDivisionByZero, got %v", err)
	}
}

// A recursive function (factorial) exercises Call/Return and the per-frame
// address space independence the emitter's frame-relative addressing
// promises: the callee's own Addr-0 cell never collides with the caller's.
// main calls the recursive fact function and exits with its result; fact
// itself only ever returns via Return, never falling through to Exit.
func TestMachine_RecursiveCall(t *testing.T) {
	// fn fact(n: u8) -> u8 { if n == 0 { 1 } else { n * fact(n - 1) } }
	// fn main(n: u8) -> u8 { fact(n) }
	mainBody := []bytecode.Instruction{
		&bytecode.Load{Addr: 0, Size: 1},
		&bytecode.Call{Addr: 3, Args: 1, Name: "fact"},
		&bytecode.Exit{Outs: 1},
	}

	factBody := []bytecode.Instruction{
		&bytecode.Load{Addr: 0, Size: 1},
		pushU8(0),
		&bytecode.Eq{Type: u8},
		&bytecode.If{},
		pushU8(1),
		&bytecode.Return{Outs: 1},
		&bytecode.Else{},
		&bytecode.Load{Addr: 0, Size: 1},
		&bytecode.Load{Addr: 0, Size: 1},
		pushU8(1),
		&bytecode.Sub{Type: u8},
		&bytecode.Call{Addr: 3, Args: 1, Name: "fact"},
		&bytecode.Mul{Type: u8},
		&bytecode.Return{Outs: 1},
		&bytecode.EndIf{},
	}

	prog := bytecode.NewProgram(u8, u8, 0)
	prog.Instructions = append(append([]bytecode.Instruction{}, mainBody...), factBody...)

	m := New(prog, ModeProve, nil)

	out, err := m.Run(scalars(5))
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if out[0].Val.Cmp(big.NewInt(120)) != 0 {
		t.Fatalf("fact(5): got %v, want [120]", out)
	}
}

func TestMachine_ContractStorage(t *testing.T) {
	prog := bytecode.NewProgram(u8, u8, 0)
	prog.Instructions = []bytecode.Instruction{
		&bytecode.StorageInit{FieldCount: 1},
		&bytecode.Load{Addr: 0, Size: 1},
		pushU8(0),
		&bytecode.StorageStore{Size: 1},
		&bytecode.StorageFetch{},
		&bytecode.Exit{Outs: 1},
	}

	m := New(prog, ModeProve, nil)

	out, err := m.Run(scalars(9))
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if len(out) != 1 || out[0].Val.Cmp(big.NewInt(9)) != 0 {
		t.Fatalf("got %v, want [9]", out)
	}
}
