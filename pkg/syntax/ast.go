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

// Package syntax implements the Zinc parser: a Pratt / precedence-climbing
// expression parser plus recursive-descent statement/item parsing, producing
// a tagged-union syntax tree rooted at Module.
package syntax

import "github.com/zinc-lang/zinc/pkg/source"

// Type is the tagged union of type expressions appearing in source.
type Type interface {
	typeNode()
	Span() source.Span
}

// NamedType is a bare identifier type: a scalar keyword (bool, field,
// u8..u248, i8..i248), a user-defined struct/enum/type-alias name, or Self.
type NamedType struct {
	Name string
	span source.Span
}

func (t *NamedType) typeNode()        {}
func (t *NamedType) Span() source.Span { return t.span }

// ArrayType is `[T; N]` with a constant-expression length.
type ArrayType struct {
	Elem Type
	Size Expr
	span source.Span
}

func (t *ArrayType) typeNode()        {}
func (t *ArrayType) Span() source.Span { return t.span }

// TupleType is `(T1, T2, …)`; zero elements is the unit type `()`.
type TupleType struct {
	Elems []Type
	span  source.Span
}

func (t *TupleType) typeNode()        {}
func (t *TupleType) Span() source.Span { return t.span }

// RangeType is `Range<T>` / `RangeInclusive<T>`, the type of a `for`-loop
// range expression; never instantiatable as a variable.
type RangeType struct {
	Elem      Type
	Inclusive bool
	span      source.Span
}

func (t *RangeType) typeNode()        {}
func (t *RangeType) Span() source.Span { return t.span }

// FunctionType is the (non-instantiatable) type of a function value, used
// only internally by the semantic analyser's type model.
type FunctionType struct {
	Params []Type
	Result Type
	span   source.Span
}

func (t *FunctionType) typeNode()        {}
func (t *FunctionType) Span() source.Span { return t.span }

// Expr is the tagged union of expression forms.
type Expr interface {
	exprNode()
	Span() source.Span
}

// IntegerLiteral is a raw, not-yet-inferred integer literal; Text retains
// the original spelling (with underscores) so the semantic stage can choose
// decimal or hexadecimal parsing.
type IntegerLiteral struct {
	Text string
	span source.Span
}

func (e *IntegerLiteral) exprNode()        {}
func (e *IntegerLiteral) Span() source.Span { return e.span }

// BooleanLiteral is `true` or `false`.
type BooleanLiteral struct {
	Value bool
	span  source.Span
}

func (e *BooleanLiteral) exprNode()        {}
func (e *BooleanLiteral) Span() source.Span { return e.span }

// StringLiteral is a `"…"` literal, already unescaped by the lexer.
type StringLiteral struct {
	Value string
	span  source.Span
}

func (e *StringLiteral) exprNode()        {}
func (e *StringLiteral) Span() source.Span { return e.span }

// Identifier is a single unqualified name reference.
type Identifier struct {
	Name string
	span source.Span
}

func (e *Identifier) exprNode()        {}
func (e *Identifier) Span() source.Span { return e.span }

// Path is a qualified name `a::b::c`, used for module, type, and
// associated-item access.
type Path struct {
	Segments []string
	span     source.Span
}

func (e *Path) exprNode()        {}
func (e *Path) Span() source.Span { return e.span }

// BinaryExpr is a binary operator application; Op is the operator's
// canonical symbol spelling (e.g. "+", "==", "&&").
type BinaryExpr struct {
	Op          string
	Left, Right Expr
	span        source.Span
}

func (e *BinaryExpr) exprNode()        {}
func (e *BinaryExpr) Span() source.Span { return e.span }

// UnaryExpr is a prefix operator application: `-`, `!`, `~`.
type UnaryExpr struct {
	Op      string
	Operand Expr
	span    source.Span
}

func (e *UnaryExpr) exprNode()        {}
func (e *UnaryExpr) Span() source.Span { return e.span }

// CastExpr is `e as T`.
type CastExpr struct {
	Operand Expr
	Target  Type
	span    source.Span
}

func (e *CastExpr) exprNode()        {}
func (e *CastExpr) Span() source.Span { return e.span }

// CallExpr is `callee(args…)`.
type CallExpr struct {
	Callee Expr
	Args   []Expr
	span   source.Span
}

func (e *CallExpr) exprNode()        {}
func (e *CallExpr) Span() source.Span { return e.span }

// MethodCallExpr is `receiver.method(args…)`, desugared by the semantic
// analyser to `Path::method(receiver, args…)`.
type MethodCallExpr struct {
	Receiver Expr
	Method   string
	Args     []Expr
	span     source.Span
}

func (e *MethodCallExpr) exprNode()        {}
func (e *MethodCallExpr) Span() source.Span { return e.span }

// IndexExpr is `base[index]`, with index either a constant or runtime
// expression; the semantic stage distinguishes the two emission shapes.
type IndexExpr struct {
	Base, Index Expr
	span        source.Span
}

func (e *IndexExpr) exprNode()        {}
func (e *IndexExpr) Span() source.Span { return e.span }

// FieldExpr is `base.field` for a named structure field.
type FieldExpr struct {
	Base  Expr
	Field string
	span  source.Span
}

func (e *FieldExpr) exprNode()        {}
func (e *FieldExpr) Span() source.Span { return e.span }

// TupleIndexExpr is `base.N` for a tuple position.
type TupleIndexExpr struct {
	Base  Expr
	Index int
	span  source.Span
}

func (e *TupleIndexExpr) exprNode()        {}
func (e *TupleIndexExpr) Span() source.Span { return e.span }

// TupleExpr is `(e1, e2, …)`; zero elements is the unit value `()`.
type TupleExpr struct {
	Elems []Expr
	span  source.Span
}

func (e *TupleExpr) exprNode()        {}
func (e *TupleExpr) Span() source.Span { return e.span }

// ArrayRepeatExpr is `[value; count]`.
type ArrayRepeatExpr struct {
	Value, Count Expr
	span         source.Span
}

func (e *ArrayRepeatExpr) exprNode()        {}
func (e *ArrayRepeatExpr) Span() source.Span { return e.span }

// ArrayListExpr is `[e1, e2, …]`.
type ArrayListExpr struct {
	Elems []Expr
	span  source.Span
}

func (e *ArrayListExpr) exprNode()        {}
func (e *ArrayListExpr) Span() source.Span { return e.span }

// StructLiteralField is one `field: expr` entry of a structure literal.
type StructLiteralField struct {
	Name  string
	Value Expr
}

// StructLiteralExpr is `Name { field: e, … }`.
type StructLiteralExpr struct {
	Name   string
	Fields []StructLiteralField
	span   source.Span
}

func (e *StructLiteralExpr) exprNode()        {}
func (e *StructLiteralExpr) Span() source.Span { return e.span }

// BlockExpr is `{ stmts…; tail? }`; Tail is nil when the block ends with a
// semicolon-terminated statement (and thus evaluates to unit).
type BlockExpr struct {
	Stmts []Stmt
	Tail  Expr
	span  source.Span
}

func (e *BlockExpr) exprNode()        {}
func (e *BlockExpr) Span() source.Span { return e.span }

// IfExpr is `if cond { … } else { … }`; Else is nil, a *BlockExpr, or a
// nested *IfExpr (for `else if`).
type IfExpr struct {
	Cond Expr
	Then *BlockExpr
	Else Expr
	span source.Span
}

func (e *IfExpr) exprNode()        {}
func (e *IfExpr) Span() source.Span { return e.span }

// Pattern is the tagged union of match-arm patterns.
type Pattern interface {
	patternNode()
	Span() source.Span
}

// LiteralPattern matches a specific literal value (integer, bool, or an
// enumeration variant path).
type LiteralPattern struct {
	Value Expr
	span  source.Span
}

func (p *LiteralPattern) patternNode()     {}
func (p *LiteralPattern) Span() source.Span { return p.span }

// BindingPattern binds the scrutinee to a fresh name.
type BindingPattern struct {
	Name string
	span source.Span
}

func (p *BindingPattern) patternNode()     {}
func (p *BindingPattern) Span() source.Span { return p.span }

// WildcardPattern is `_`, matching anything without binding.
type WildcardPattern struct {
	span source.Span
}

func (p *WildcardPattern) patternNode()     {}
func (p *WildcardPattern) Span() source.Span { return p.span }

// MatchArm is one `pattern => expr` branch of a match expression.
type MatchArm struct {
	Pattern Pattern
	Value   Expr
}

// MatchExpr is `match scrutinee { pattern => expr, … }`.
type MatchExpr struct {
	Scrutinee Expr
	Arms      []MatchArm
	span      source.Span
}

func (e *MatchExpr) exprNode()        {}
func (e *MatchExpr) Span() source.Span { return e.span }

// RangeExpr is `start..end` or `start..=end`.
type RangeExpr struct {
	Start, End Expr
	Inclusive  bool
	span       source.Span
}

func (e *RangeExpr) exprNode()        {}
func (e *RangeExpr) Span() source.Span { return e.span }

// DbgExpr is `dbg!(format, args…)`, a distinguished builtin form rather
// than a generic call — matching the original bytecode's dedicated `Dbg`
// instruction.
type DbgExpr struct {
	Format string
	Args   []Expr
	span   source.Span
}

func (e *DbgExpr) exprNode()        {}
func (e *DbgExpr) Span() source.Span { return e.span }

// Stmt is the tagged union of statement and module-level item forms; items
// (struct/enum/impl/contract/fn/const/type/mod/use) reuse Stmt since both
// may appear at module scope and (fn/const/type) nested inside impl/contract.
type Stmt interface {
	stmtNode()
	Span() source.Span
}

// Attribute is `#[name]`, `#[name = lit]`, `#[name(inner, …)]`, or the
// inner form `#![…]`.
type Attribute struct {
	Name  string
	Value string
	Args  []string
	Inner bool
	span  source.Span
}

// Span returns the location of this attribute.
func (a Attribute) Span() source.Span { return a.span }

// LetStmt is `let [mut] name [: T] = e;`.
type LetStmt struct {
	Mutable bool
	Name    string
	Type    Type
	Value   Expr
	span    source.Span
}

func (s *LetStmt) stmtNode()        {}
func (s *LetStmt) Span() source.Span { return s.span }

// ConstStmt is `const NAME: T = e;`.
type ConstStmt struct {
	Name string
	Type Type
	Value Expr
	span source.Span
}

func (s *ConstStmt) stmtNode()        {}
func (s *ConstStmt) Span() source.Span { return s.span }

// TypeAliasStmt is `type Name = T;`.
type TypeAliasStmt struct {
	Name string
	Type Type
	span source.Span
}

func (s *TypeAliasStmt) stmtNode()        {}
func (s *TypeAliasStmt) Span() source.Span { return s.span }

// FieldDecl is one `name: T` entry of a structure or contract.
type FieldDecl struct {
	Name string
	Type Type
}

// StructDeclStmt is `struct Name { field: T, … }`.
type StructDeclStmt struct {
	Name   string
	Fields []FieldDecl
	span   source.Span
}

func (s *StructDeclStmt) stmtNode()        {}
func (s *StructDeclStmt) Span() source.Span { return s.span }

// EnumVariant is one `Variant = n` entry of an enumeration.
type EnumVariant struct {
	Name  string
	Value Expr // nil if implicitly the previous value + 1 (0 for the first)
}

// EnumDeclStmt is `enum Name { Variant = n, … }`.
type EnumDeclStmt struct {
	Name     string
	Variants []EnumVariant
	span     source.Span
}

func (s *EnumDeclStmt) stmtNode()        {}
func (s *EnumDeclStmt) Span() source.Span { return s.span }

// Param is one `[mut] name: T` function parameter.
type Param struct {
	Mutable bool
	Name    string
	Type    Type
}

// FnDeclStmt is `fn name([mut] a: T, …) [-> T] { … }`.
type FnDeclStmt struct {
	Public     bool
	Name       string
	Params     []Param
	Result     Type
	Body       *BlockExpr
	Attributes []Attribute
	span       source.Span
}

func (s *FnDeclStmt) stmtNode()        {}
func (s *FnDeclStmt) Span() source.Span { return s.span }

// ImplDeclStmt is `impl Name { … }`, containing nested fn/const items.
type ImplDeclStmt struct {
	Name  string
	Items []Stmt
	span  source.Span
}

func (s *ImplDeclStmt) stmtNode()        {}
func (s *ImplDeclStmt) Span() source.Span { return s.span }

// ContractDeclStmt is `contract Name { … }`, containing storage fields plus
// nested fn/const/pub-fn items.
type ContractDeclStmt struct {
	Name   string
	Fields []FieldDecl
	Items  []Stmt
	span   source.Span
}

func (s *ContractDeclStmt) stmtNode()        {}
func (s *ContractDeclStmt) Span() source.Span { return s.span }

// ModDeclStmt is `mod name;`.
type ModDeclStmt struct {
	Name string
	span source.Span
}

func (s *ModDeclStmt) stmtNode()        {}
func (s *ModDeclStmt) Span() source.Span { return s.span }

// UseStmt is `use path [as alias];`.
type UseStmt struct {
	Path  []string
	Alias string
	span  source.Span
}

func (s *UseStmt) stmtNode()        {}
func (s *UseStmt) Span() source.Span { return s.span }

// ForStmt is `for i in a..b [while cond] { … }`.
type ForStmt struct {
	Var   string
	Range *RangeExpr
	While Expr
	Body  *BlockExpr
	span  source.Span
}

func (s *ForStmt) stmtNode()        {}
func (s *ForStmt) Span() source.Span { return s.span }

// AssignStmt is `place = e;` or a compound form `place op= e;`; Op is "" for
// plain assignment and the arithmetic/bitwise symbol (e.g. "+") otherwise.
type AssignStmt struct {
	Target Expr
	Op     string
	Value  Expr
	span   source.Span
}

func (s *AssignStmt) stmtNode()        {}
func (s *AssignStmt) Span() source.Span { return s.span }

// ExprStmt is an expression used as a statement, terminated by `;`.
type ExprStmt struct {
	Value Expr
	span  source.Span
}

func (s *ExprStmt) stmtNode()        {}
func (s *ExprStmt) Span() source.Span { return s.span }

// AssertStmt is `require!(cond, message?)` or `assert!(cond)`.
type AssertStmt struct {
	Cond    Expr
	Message Expr // nil if no message was given
	span    source.Span
}

func (s *AssertStmt) stmtNode()        {}
func (s *AssertStmt) Span() source.Span { return s.span }

// DbgStmt is `dbg!(format, args…);` used as a standalone statement.
type DbgStmt struct {
	Value *DbgExpr
	span  source.Span
}

func (s *DbgStmt) stmtNode()        {}
func (s *DbgStmt) Span() source.Span { return s.span }

// Module is the root of a parsed source file: an ordered sequence of
// module-level items.
type Module struct {
	Items []Stmt
	span  source.Span
}

// Span returns the location spanning the whole module.
func (m *Module) Span() source.Span { return m.span }
