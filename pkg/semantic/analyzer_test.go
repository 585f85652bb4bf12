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
package semantic

import (
	"math/big"
	"strings"
	"testing"

	"github.com/zinc-lang/zinc/pkg/source"
	"github.com/zinc-lang/zinc/pkg/syntax"
)

func analyzeString(t *testing.T, text string) (*Analyzer, *Scope, error) {
	t.Helper()

	set := source.NewSet()

	file, err := set.Add("test.zn", []byte(text))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	module, err := syntax.Parse(file)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}

	a := NewAnalyzer(file, NewScope(nil))

	global, err := a.Analyze(module)

	return a, global, err
}

// S1: a well-typed function analyses cleanly and its body type matches its
// declared result.
func TestAnalyzer_S1_SimpleFunction(t *testing.T) {
	_, global, err := analyzeString(t, `fn main(a: u8, b: u8) -> u8 { a + b }`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	entry, ok := global.Local("main")
	if !ok || entry.Kind != EntryFunction {
		t.Fatalf("expected main to be declared as a function")
	}

	if entry.Function == nil || !Equal(entry.Function.Result, IntType{false, 8}) {
		t.Fatalf("expected main to return u8, got %v", entry.Function)
	}
}

// S4: match on an integer scrutinee missing a wildcard/binding branch is
// reported as not exhaustive.
func TestAnalyzer_S4_MatchNotExhausted(t *testing.T) {
	_, _, err := analyzeString(t, `
fn main(x: u8) -> u8 {
  match x { 1 => 10, 2 => 20 }
}`)
	if err == nil {
		t.Fatal("expected match-not-exhausted error")
	}

	if !strings.Contains(err.Error(), "err_match_not_exhausted") {
		t.Fatalf("expected err_match_not_exhausted, got %v", err)
	}
}

// A match with a trailing wildcard is exhaustive.
func TestAnalyzer_MatchWithWildcardIsExhaustive(t *testing.T) {
	_, _, err := analyzeString(t, `
fn main(x: u8) -> u8 {
  match x { 1 => 10, 2 => 20, _ => 0 }
}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// An enum match covering every variant is exhaustive without a wildcard.
func TestAnalyzer_MatchEnumFullyCovered(t *testing.T) {
	_, _, err := analyzeString(t, `
enum Color { Red = 0, Green = 1, Blue = 2 }
fn main(c: Color) -> u8 {
  match c { Color::Red => 1, Color::Green => 2, Color::Blue => 3 }
}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// A bool match covering both true and false is exhaustive without a
// wildcard (spec.md §4.3(f)).
func TestAnalyzer_MatchBoolFullyCovered(t *testing.T) {
	_, _, err := analyzeString(t, `
fn main(b: bool) -> u8 {
  match b { true => 1, false => 0 }
}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// A bool match covering only one of true/false with no wildcard is not
// exhaustive.
func TestAnalyzer_MatchBoolNotExhausted(t *testing.T) {
	_, _, err := analyzeString(t, `
fn main(b: bool) -> u8 {
  match b { true => 1 }
}`)
	if err == nil {
		t.Fatal("expected match-not-exhausted error")
	}

	if !strings.Contains(err.Error(), "err_match_not_exhausted") {
		t.Fatalf("expected err_match_not_exhausted, got %v", err)
	}
}

// Binary arithmetic across mismatched scalar types is a type error.
func TestAnalyzer_BinaryTypeMismatch(t *testing.T) {
	_, _, err := analyzeString(t, `fn main(a: u8, b: u16) -> u16 { a + b }`)
	if err == nil {
		t.Fatal("expected a type mismatch error")
	}
}

// A reference to an undeclared name is reported distinctly from a type
// error.
func TestAnalyzer_UndeclaredItem(t *testing.T) {
	_, _, err := analyzeString(t, `fn main() -> u8 { missing_name }`)
	if err == nil {
		t.Fatal("expected undeclared-item error")
	}
}

// Redeclaring a name at module scope is an error, matching §3's shadowing
// rule ("shadowing within the same scope level is forbidden").
func TestAnalyzer_RedeclaredItem(t *testing.T) {
	_, _, err := analyzeString(t, `
const X: u8 = 1;
const X: u8 = 2;
fn main() -> u8 { X }`)
	if err == nil {
		t.Fatal("expected redeclared-item error")
	}
}

// Mutual recursion between two functions resolves thanks to the two-pass
// declare/define scheme (§4.3).
func TestAnalyzer_MutualRecursion(t *testing.T) {
	_, _, err := analyzeString(t, `
fn is_even(n: u8) -> bool {
  if n == 0 { true } else { is_odd(n - 1) }
}
fn is_odd(n: u8) -> bool {
  if n == 0 { false } else { is_even(n - 1) }
}
fn main() -> bool { is_even(4) }`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// A self-referential type alias is a cyclic-reference error rather than an
// infinite loop.
func TestAnalyzer_CyclicTypeAlias(t *testing.T) {
	_, _, err := analyzeString(t, `
type A = B;
type B = A;
fn main() -> u8 { 0 }`)
	if err == nil {
		t.Fatal("expected cyclic reference error")
	}
}

// Constant folding over arithmetic, comparison and conditional expressions
// computes the same value a const-context expression would evaluate to at
// runtime (§4.3(e)).
func TestAnalyzer_ConstFolding(t *testing.T) {
	a, global, err := analyzeString(t, `
const N: u8 = 2 + 3 * 4;
fn main() -> u8 { N }`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	entry, ok := global.Local("N")
	if !ok || entry.Value == nil {
		t.Fatalf("expected N to fold to a constant value")
	}

	if entry.Value.Int.Int64() != 14 {
		t.Fatalf("got %v, want 14", entry.Value.Int)
	}

	_ = a
}

// Constant division by zero is reported immediately at fold time.
func TestAnalyzer_ConstDivisionByZero(t *testing.T) {
	_, _, err := analyzeString(t, `const N: u8 = 1 / 0; fn main() -> u8 { N }`)
	if err == nil {
		t.Fatal("expected constant division-by-zero error")
	}
}

// S5: casting to a strictly lesser bit-length is a hard semantic error, per
// §8 scenario S5 and the original compiler's CasterError::ToLesserBitlength
// (_examples/original_source/zinc-compiler/.../err_caster_to_lesser_bitlength.rs).
func TestAnalyzer_S5_NarrowingCastIsError(t *testing.T) {
	_, _, err := analyzeString(t, `
fn main() -> u64 {
  let x: u128 = 0;
  x as u64
}`)
	if err == nil {
		t.Fatal("expected a casting-to-lesser-bitlength error")
	}

	if !strings.Contains(err.Error(), "err_caster_to_lesser_bitlength") {
		t.Fatalf("expected err_caster_to_lesser_bitlength, got %v", err)
	}
}

// A same-width sign change (no bits actually discarded) is only a warning,
// not a hard failure.
func TestAnalyzer_SignChangeCastWarns(t *testing.T) {
	a, _, err := analyzeString(t, `
fn main() -> i8 {
  let x: u8 = 200;
  x as i8
}`)
	if err != nil {
		t.Fatalf("unexpected hard error for a same-width sign change: %v", err)
	}

	if a.Warnings() == nil {
		t.Fatal("expected a collected warning for the sign-changing cast")
	}
}

// Casting a field value to an integer is rejected outright, per §4.3(d).
func TestAnalyzer_FieldToIntCastIsError(t *testing.T) {
	_, _, err := analyzeString(t, `
fn main() -> u8 {
  let x: field = 0 as field;
  x as u8
}`)
	if err == nil {
		t.Fatal("expected field-to-int cast to be rejected")
	}
}

// Assigning through an immutable place is rejected.
func TestAnalyzer_AssignToImmutablePlace(t *testing.T) {
	_, _, err := analyzeString(t, `
fn main() -> u8 {
  let x: u8 = 1;
  x = 2;
  x
}`)
	if err == nil {
		t.Fatal("expected mutation-of-immutable-place error")
	}
}

// Assigning through a declared-mutable place succeeds.
func TestAnalyzer_AssignToMutablePlace(t *testing.T) {
	_, _, err := analyzeString(t, `
fn main() -> u8 {
  let mut x: u8 = 1;
  x = 2;
  x
}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// A duplicate structure field name is an error, per §3's invariant that
// every field in a structure has a unique name.
func TestAnalyzer_DuplicateStructField(t *testing.T) {
	_, _, err := analyzeString(t, `
struct Point { x: u8, x: u8 }
fn main() -> u8 { 0 }`)
	if err == nil {
		t.Fatal("expected duplicate struct field error")
	}
}

// A duplicate enumeration variant value is an error, per §3's invariant
// that every enum variant has a unique value.
func TestAnalyzer_DuplicateEnumVariantValue(t *testing.T) {
	_, _, err := analyzeString(t, `
enum E { A = 0, B = 0 }
fn main() -> u8 { 0 }`)
	if err == nil {
		t.Fatal("expected duplicate enum variant value error")
	}
}

// `#[test]` attached to a function with arguments is rejected.
func TestAnalyzer_TestAttributeOnFunctionWithArgs(t *testing.T) {
	_, _, err := analyzeString(t, `
#[test]
fn check(x: u8) { assert!(x == x); }`)
	if err == nil {
		t.Fatal("expected #[test] with arguments to be rejected")
	}
}

// An unknown attribute name is reported as an attribute error.
func TestAnalyzer_UnknownAttribute(t *testing.T) {
	_, _, err := analyzeString(t, `
#[bogus]
fn f() -> u8 { 0 }
fn main() -> u8 { 0 }`)
	if err == nil {
		t.Fatal("expected unknown-attribute error")
	}
}

// `impl` methods desugar through the receiver's own namespace, and the
// first parameter must be named self.
func TestAnalyzer_ImplMethodResolution(t *testing.T) {
	_, _, err := analyzeString(t, `
struct Point { x: u8, y: u8 }
impl Point {
  fn sum(self) -> u8 { self.x + self.y }
}
fn main() -> u8 {
  let p = Point { x: 1, y: 2 };
  p.sum()
}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// Integer inference computes the same minimal (sign, bit-length) for a
// literal across repeated inferences (§8's "integer inference is stable").
func TestAnalyzer_IntegerInferenceStable(t *testing.T) {
	n := big.NewInt(300)

	signed1, bits1 := minimalIntType(n)
	signed2, bits2 := minimalIntType(n)

	if signed1 != signed2 || bits1 != bits2 {
		t.Fatalf("inference unstable: (%v,%v) != (%v,%v)", signed1, bits1, signed2, bits2)
	}

	if signed1 || bits1 != 16 {
		t.Fatalf("expected minimal type u16 for 300, got signed=%v bits=%d", signed1, bits1)
	}
}

// A negative literal always infers as signed.
func TestAnalyzer_IntegerInferenceNegative(t *testing.T) {
	signed, bits := minimalIntType(big.NewInt(-5))
	if !signed || bits != 8 {
		t.Fatalf("expected minimal type i8 for -5, got signed=%v bits=%d", signed, bits)
	}
}
