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
package syntax

import (
	"testing"

	"github.com/zinc-lang/zinc/pkg/source"
)

func parseString(t *testing.T, text string) *Module {
	t.Helper()

	set := source.NewSet()

	file, err := set.Add("test.zn", []byte(text))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	module, err := Parse(file)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}

	return module
}

func TestParser_SimpleFunction(t *testing.T) {
	m := parseString(t, `fn main(a: u8, b: u8) -> u8 { a + b }`)

	if len(m.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(m.Items))
	}

	fn, ok := m.Items[0].(*FnDeclStmt)
	if !ok {
		t.Fatalf("expected a function declaration, got %T", m.Items[0])
	}

	if fn.Name != "main" || len(fn.Params) != 2 {
		t.Fatalf("unexpected function shape: %+v", fn)
	}

	if fn.Body.Tail == nil {
		t.Fatal("expected a tail expression")
	}

	bin, ok := fn.Body.Tail.(*BinaryExpr)
	if !ok || bin.Op != "+" {
		t.Fatalf("expected a + binary expression, got %T", fn.Body.Tail)
	}
}

func TestParser_LoopSum(t *testing.T) {
	m := parseString(t, `
fn main() -> u64 {
  let mut s: u64 = 0;
  for i in 0..10 { s = s + (i as u64); }
  s
}`)

	fn := m.Items[0].(*FnDeclStmt)
	if len(fn.Body.Stmts) != 2 {
		t.Fatalf("expected 2 statements, got %d: %+v", len(fn.Body.Stmts), fn.Body.Stmts)
	}

	let, ok := fn.Body.Stmts[0].(*LetStmt)
	if !ok || !let.Mutable || let.Name != "s" {
		t.Fatalf("unexpected first statement: %+v", fn.Body.Stmts[0])
	}

	loop, ok := fn.Body.Stmts[1].(*ForStmt)
	if !ok || loop.Var != "i" || loop.Range.Inclusive {
		t.Fatalf("unexpected loop statement: %+v", fn.Body.Stmts[1])
	}

	if fn.Body.Tail == nil {
		t.Fatal("expected tail expression `s`")
	}
}

func TestParser_MatchExpression(t *testing.T) {
	m := parseString(t, `fn main(x: u8) -> u8 { match x { 1 => 10, 2 => 20 } }`)

	fn := m.Items[0].(*FnDeclStmt)

	match, ok := fn.Body.Tail.(*MatchExpr)
	if !ok {
		t.Fatalf("expected a match expression, got %T", fn.Body.Tail)
	}

	if len(match.Arms) != 2 {
		t.Fatalf("expected 2 arms, got %d", len(match.Arms))
	}
}

func TestParser_FieldDivisionAndCalls(t *testing.T) {
	m := parseString(t, `
fn main(a: field, b: field) -> field { a * b_inv(b) }
fn b_inv(b: field) -> field { 1 as field / b }`)

	if len(m.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(m.Items))
	}

	main := m.Items[0].(*FnDeclStmt)

	bin, ok := main.Body.Tail.(*BinaryExpr)
	if !ok || bin.Op != "*" {
		t.Fatalf("expected a * expression, got %T", main.Body.Tail)
	}

	call, ok := bin.Right.(*CallExpr)
	if !ok {
		t.Fatalf("expected a call expression, got %T", bin.Right)
	}

	if callee, ok := call.Callee.(*Identifier); !ok || callee.Name != "b_inv" {
		t.Fatalf("unexpected callee: %+v", call.Callee)
	}
}

func TestParser_AssertStatement(t *testing.T) {
	m := parseString(t, `fn main() { assert!(1 == 2); }`)

	fn := m.Items[0].(*FnDeclStmt)
	if len(fn.Body.Stmts) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(fn.Body.Stmts))
	}

	if _, ok := fn.Body.Stmts[0].(*AssertStmt); !ok {
		t.Fatalf("expected an assert statement, got %T", fn.Body.Stmts[0])
	}
}

func TestParser_CompoundAssignment(t *testing.T) {
	m := parseString(t, `fn main() { let mut x: u8 = 0; x += 1; }`)

	fn := m.Items[0].(*FnDeclStmt)

	assign, ok := fn.Body.Stmts[1].(*AssignStmt)
	if !ok || assign.Op != "+" {
		t.Fatalf("expected a += assignment lowered to op +, got %+v", fn.Body.Stmts[1])
	}
}

func TestParser_StructAndEnum(t *testing.T) {
	m := parseString(t, `
struct Point { x: u8, y: u8 }
enum Color { Red = 0, Green = 1, Blue = 2 }`)

	if _, ok := m.Items[0].(*StructDeclStmt); !ok {
		t.Fatalf("expected a struct declaration, got %T", m.Items[0])
	}

	enumDecl, ok := m.Items[1].(*EnumDeclStmt)
	if !ok || len(enumDecl.Variants) != 3 {
		t.Fatalf("unexpected enum declaration: %+v", m.Items[1])
	}
}

func TestParser_Attributes(t *testing.T) {
	m := parseString(t, `
#[test]
#[should_panic]
fn test_overflow() { assert!(false); }`)

	fn := m.Items[0].(*FnDeclStmt)
	if len(fn.Attributes) != 2 {
		t.Fatalf("expected 2 attributes, got %d", len(fn.Attributes))
	}

	if fn.Attributes[0].Name != "test" || fn.Attributes[1].Name != "should_panic" {
		t.Fatalf("unexpected attributes: %+v", fn.Attributes)
	}
}

func TestParser_UnexpectedTokenReportsLocation(t *testing.T) {
	set := source.NewSet()

	file, _ := set.Add("test.zn", []byte(`fn main() { let x: u8 = ; }`))
	if _, err := Parse(file); err == nil {
		t.Fatal("expected a syntax error")
	}
}

func TestParser_ContractWithStorageFields(t *testing.T) {
	m := parseString(t, `
contract Wallet {
  owner: field,
  pub fn balance(self) -> field { self.owner }
}`)

	c, ok := m.Items[0].(*ContractDeclStmt)
	if !ok {
		t.Fatalf("expected a contract declaration, got %T", m.Items[0])
	}

	if len(c.Fields) != 1 || c.Fields[0].Name != "owner" {
		t.Fatalf("unexpected contract fields: %+v", c.Fields)
	}

	if len(c.Items) != 1 {
		t.Fatalf("expected 1 contract item, got %d", len(c.Items))
	}
}
