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
	"math/big"
	"testing"

	"github.com/zinc-lang/zinc/pkg/bytecode"
	"github.com/zinc-lang/zinc/pkg/semantic"
	"github.com/zinc-lang/zinc/pkg/source"
	"github.com/zinc-lang/zinc/pkg/syntax"
	"github.com/zinc-lang/zinc/pkg/vm"
	"github.com/zinc-lang/zinc/pkg/vm/gadgets"
)

// compileText runs the full lex -> parse -> analyse -> emit pipeline over an
// in-memory source string, mirroring pkg/cmd's compile helper without the
// file-system dependency.
func compileText(t *testing.T, text string) *bytecode.Program {
	t.Helper()

	set := source.NewSet()

	file, err := set.Add("test.zn", []byte(text))
	if err != nil {
		t.Fatalf("unexpected source error: %v", err)
	}

	module, err := syntax.Parse(file)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}

	a := semantic.NewAnalyzer(file, semantic.NewScope(nil))

	global, err := a.Analyze(module)
	if err != nil {
		t.Fatalf("unexpected analysis error: %v", err)
	}

	em := NewEmitter(global, a.Types)

	prog, err := em.Emit(module)
	if err != nil {
		t.Fatalf("unexpected emit error: %v", err)
	}

	return prog
}

func runProgram(t *testing.T, prog *bytecode.Program, inputs ...int64) []gadgets.Scalar {
	t.Helper()

	values := make([]gadgets.Scalar, len(inputs))
	for i, v := range inputs {
		values[i] = gadgets.Const(big.NewInt(v))
	}

	m := vm.New(prog, vm.ModeProve, nil)

	out, err := m.Run(values)
	if err != nil {
		t.Fatalf("run error: %v", err)
	}

	return out
}

// S1: `fn main(a: u8, b: u8) -> u8 { a + b }` end-to-end through the full
// pipeline, not just the hand-built instruction sequence machine_test.go
// exercises directly.
func TestEmit_S1_Arithmetic(t *testing.T) {
	prog := compileText(t, `fn main(a: u8, b: u8) -> u8 { a + b }`)

	out := runProgram(t, prog, 42, 25)

	if len(out) != 1 || out[0].Val.Cmp(big.NewInt(67)) != 0 {
		t.Fatalf("got %v, want [67]", out)
	}
}

// S3: an unrolled `for` loop over a constant range sums into a mutable
// accumulator.
func TestEmit_S3_LoopSum(t *testing.T) {
	prog := compileText(t, `
fn main() -> u64 {
  let mut s: u64 = 0;
  for i in 0..10 { s = s + (i as u64); }
  s
}`)

	out := runProgram(t, prog)

	if len(out) != 1 || out[0].Val.Cmp(big.NewInt(45)) != 0 {
		t.Fatalf("got %v, want [45]", out)
	}
}

// An `if`/`else` expression compiles to a conditional value selection.
func TestEmit_IfElseExpression(t *testing.T) {
	prog := compileText(t, `
fn main(x: bool) -> u8 {
  if x { 1 } else { 2 }
}`)

	out := runProgram(t, prog, 1)
	if out[0].Val.Cmp(big.NewInt(1)) != 0 {
		t.Fatalf("true branch: got %v, want [1]", out)
	}

	out2 := runProgram(t, prog, 0)
	if out2[0].Val.Cmp(big.NewInt(2)) != 0 {
		t.Fatalf("false branch: got %v, want [2]", out2)
	}
}

// A recursive function call is emitted with a patched Call address once
// every function's offset is known (the fixup pass in Emit).
func TestEmit_RecursiveFunctionCall(t *testing.T) {
	prog := compileText(t, `
fn fact(n: u8) -> u8 {
  if n == 0 { 1 } else { n * fact(n - 1) }
}
fn main(n: u8) -> u8 { fact(n) }`)

	out := runProgram(t, prog, 5)

	if out[0].Val.Cmp(big.NewInt(120)) != 0 {
		t.Fatalf("fact(5): got %v, want [120]", out)
	}
}

// A struct field access compiles to a constant-offset load.
func TestEmit_StructFieldAccess(t *testing.T) {
	prog := compileText(t, `
struct Point { x: u8, y: u8 }
fn main() -> u8 {
  let p = Point { x: 3, y: 4 };
  p.x + p.y
}`)

	out := runProgram(t, prog)

	if out[0].Val.Cmp(big.NewInt(7)) != 0 {
		t.Fatalf("got %v, want [7]", out)
	}
}

// A structure literal constructs a value whose fields read back exactly as
// given — x - y only comes out right if x and y were each stored and loaded
// from their own offset rather than aliased to one another.
func TestEmit_StructLiteralConstruction(t *testing.T) {
	prog := compileText(t, `
struct Point { x: u8, y: u8 }
fn main() -> u8 {
  let p = Point { x: 9, y: 2 };
  p.x - p.y
}`)

	out := runProgram(t, prog)

	if out[0].Val.Cmp(big.NewInt(7)) != 0 {
		t.Fatalf("got %v, want [7]", out)
	}
}

// A constant array index compiles to a constant-offset Load rather than
// LoadByIndex.
func TestEmit_ArrayConstantIndex(t *testing.T) {
	prog := compileText(t, `
fn main() -> u8 {
  let a = [10, 20, 30];
  a[1]
}`)

	out := runProgram(t, prog)

	if out[0].Val.Cmp(big.NewInt(20)) != 0 {
		t.Fatalf("got %v, want [20]", out)
	}
}

// A runtime array index compiles to LoadByIndex, addressed at execution
// time rather than emission time.
func TestEmit_ArrayRuntimeIndex(t *testing.T) {
	prog := compileText(t, `
fn main(i: u8) -> u8 {
  let a = [10, 20, 30];
  a[i]
}`)

	out := runProgram(t, prog, 2)

	if out[0].Val.Cmp(big.NewInt(30)) != 0 {
		t.Fatalf("got %v, want [30]", out)
	}
}

// S2: assert! failure surfaces as a run-mode error.
func TestEmit_S2_AssertFails(t *testing.T) {
	prog := compileText(t, `fn main() { assert!(1 == 2); }`)

	m := vm.New(prog, vm.ModeRun, nil)

	_, err := m.Run(nil)
	if err == nil {
		t.Fatal("expected an assertion failure")
	}
}

// A match expression lowers to a chain of Eq+If/Else per branch.
func TestEmit_MatchExpression(t *testing.T) {
	prog := compileText(t, `
fn main(x: u8) -> u8 {
  match x { 1 => 10, 2 => 20, _ => 0 }
}`)

	out := runProgram(t, prog, 2)
	if out[0].Val.Cmp(big.NewInt(20)) != 0 {
		t.Fatalf("got %v, want [20]", out)
	}

	out2 := runProgram(t, prog, 9)
	if out2[0].Val.Cmp(big.NewInt(0)) != 0 {
		t.Fatalf("wildcard branch: got %v, want [0]", out2)
	}
}

// Compound assignment lowers to load; op; store.
func TestEmit_CompoundAssignment(t *testing.T) {
	prog := compileText(t, `
fn main() -> u8 {
  let mut x: u8 = 5;
  x += 3;
  x
}`)

	out := runProgram(t, prog)

	if out[0].Val.Cmp(big.NewInt(8)) != 0 {
		t.Fatalf("got %v, want [8]", out)
	}
}

// `#[test]` functions are recorded into the program header's unit-test
// table with their entry address and metadata.
func TestEmit_UnitTestTable(t *testing.T) {
	prog := compileText(t, `
#[test]
#[should_panic]
fn check_panics() { assert!(1 == 2); }

fn main() -> u8 { 0 }`)

	if len(prog.Header.UnitTests) != 1 {
		t.Fatalf("expected one unit test entry, got %d", len(prog.Header.UnitTests))
	}

	ut := prog.Header.UnitTests[0]
	if ut.Name != "check_panics" || !ut.ShouldPanic || ut.Ignored {
		t.Fatalf("unexpected unit test metadata: %+v", ut)
	}
}
