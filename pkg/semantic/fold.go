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

	"github.com/zinc-lang/zinc/pkg/syntax"
)

// ConstValue is a fully-reduced compile-time value: an arbitrary-precision
// integer (used for bool/int/field alike — bool as 0/1) paired with the
// type it was folded at. Folding keeps the integer unbounded until the
// point a declared or inferred bit-length is known, at which point overflow
// is checked immediately (§4.3(e)).
type ConstValue struct {
	Int  *big.Int
	Type Type
}

// foldConst evaluates a const-context expression at compile time. Only
// arithmetic, comparison, logical, bitwise, cast, and conditional
// expressions over literals are supported in const context; anything else
// (index and field access, function calls, non-const names) is an error.
func (a *Analyzer) foldConst(scope *Scope, expr syntax.Expr) (*ConstValue, error) {
	switch e := expr.(type) {
	case *syntax.IntegerLiteral:
		n, err := parseIntegerLiteral(e.Text)
		if err != nil {
			return nil, a.errorf(e.Span(), "%s", err.Error())
		}

		sign, bits := minimalIntType(n)

		return &ConstValue{n, IntType{sign, bits}}, nil
	case *syntax.BooleanLiteral:
		v := big.NewInt(0)
		if e.Value {
			v = big.NewInt(1)
		}

		return &ConstValue{v, BoolType{}}, nil
	case *syntax.Identifier:
		entry, ok := scope.Resolve(e.Name)
		if !ok || entry.Kind != EntryConstant {
			return nil, a.errUndeclaredItem(e.Span(), e.Name)
		}

		if err := a.defineEntry(scope, entry); err != nil {
			return nil, err
		}

		return entry.Value, nil
	case *syntax.UnaryExpr:
		return a.foldUnary(scope, e)
	case *syntax.BinaryExpr:
		return a.foldBinary(scope, e)
	case *syntax.CastExpr:
		return a.foldCast(scope, e)
	case *syntax.TupleIndexExpr, *syntax.FieldExpr, *syntax.IndexExpr:
		return nil, a.errorf(expr.Span(), "unsupported const expression")
	case *syntax.IfExpr:
		cond, err := a.foldConst(scope, e.Cond)
		if err != nil {
			return nil, err
		}

		if cond.Int.Sign() != 0 {
			return a.foldBlockConst(scope, e.Then)
		} else if e.Else != nil {
			return a.foldConst(scope, e.Else)
		}

		return &ConstValue{big.NewInt(0), UnitType{}}, nil
	default:
		return nil, a.errorf(expr.Span(), "expression is not supported in a constant context")
	}
}

func (a *Analyzer) foldBlockConst(scope *Scope, block *syntax.BlockExpr) (*ConstValue, error) {
	if len(block.Stmts) != 0 || block.Tail == nil {
		return nil, a.errorf(block.Span(), "only a trailing expression is supported in a constant context")
	}

	return a.foldConst(scope, block.Tail)
}

func (a *Analyzer) foldUnary(scope *Scope, e *syntax.UnaryExpr) (*ConstValue, error) {
	operand, err := a.foldConst(scope, e.Operand)
	if err != nil {
		return nil, err
	}

	switch e.Op {
	case "-":
		if _, ok := operand.Type.(FieldType); ok {
			return nil, a.errFieldNoUnaryNegation(e.Span())
		}

		it, ok := operand.Type.(IntType)
		if !ok || !it.Signed {
			return nil, a.errorf(e.Span(), "unary - requires a signed integer operand")
		}

		result := new(big.Int).Neg(operand.Int)

		if err := checkOverflow(result, it); err != nil {
			return nil, a.errorf(e.Span(), "%s", err.Error())
		}

		return &ConstValue{result, it}, nil
	case "!":
		if _, ok := operand.Type.(BoolType); !ok {
			return nil, a.errorf(e.Span(), "! requires a bool operand")
		}

		return &ConstValue{big.NewInt(1 - operand.Int.Int64()), BoolType{}}, nil
	case "~":
		it, ok := operand.Type.(IntType)
		if !ok {
			return nil, a.errorf(e.Span(), "~ requires an integer operand")
		}

		mask := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), uint(it.Bits)), big.NewInt(1))
		result := new(big.Int).Xor(operand.Int, mask)

		return &ConstValue{result, it}, nil
	default:
		return nil, a.errorf(e.Span(), "unsupported unary operator %q", e.Op)
	}
}

func (a *Analyzer) foldBinary(scope *Scope, e *syntax.BinaryExpr) (*ConstValue, error) {
	left, err := a.foldConst(scope, e.Left)
	if err != nil {
		return nil, err
	}

	right, err := a.foldConst(scope, e.Right)
	if err != nil {
		return nil, err
	}

	switch e.Op {
	case "==", "!=", "<", "<=", ">", ">=":
		return a.foldComparison(e, left, right)
	case "&&", "||", "^^":
		return a.foldLogical(e, left, right)
	default:
		return a.foldArithmetic(e, left, right)
	}
}

func (a *Analyzer) foldComparison(e *syntax.BinaryExpr, left, right *ConstValue) (*ConstValue, error) {
	if !Equal(left.Type, right.Type) {
		return nil, a.errTypeMismatch(e.Span(), left.Type, right.Type)
	}

	if _, isField := left.Type.(FieldType); isField {
		switch e.Op {
		case "<", "<=", ">", ">=":
			return nil, a.errFieldHasNoOrdering(e.Span())
		}
	}

	cmp := left.Int.Cmp(right.Int)

	var result bool

	switch e.Op {
	case "==":
		result = cmp == 0
	case "!=":
		result = cmp != 0
	case "<":
		result = cmp < 0
	case "<=":
		result = cmp <= 0
	case ">":
		result = cmp > 0
	case ">=":
		result = cmp >= 0
	}

	v := big.NewInt(0)
	if result {
		v = big.NewInt(1)
	}

	return &ConstValue{v, BoolType{}}, nil
}

func (a *Analyzer) foldLogical(e *syntax.BinaryExpr, left, right *ConstValue) (*ConstValue, error) {
	if _, ok := left.Type.(BoolType); !ok {
		return nil, a.errorf(e.Left.Span(), "logical operator requires a bool operand")
	}

	if _, ok := right.Type.(BoolType); !ok {
		return nil, a.errorf(e.Right.Span(), "logical operator requires a bool operand")
	}

	l, r := left.Int.Sign() != 0, right.Int.Sign() != 0

	var result bool

	switch e.Op {
	case "&&":
		result = l && r
	case "||":
		result = l || r
	case "^^":
		result = l != r
	}

	v := big.NewInt(0)
	if result {
		v = big.NewInt(1)
	}

	return &ConstValue{v, BoolType{}}, nil
}

func (a *Analyzer) foldArithmetic(e *syntax.BinaryExpr, left, right *ConstValue) (*ConstValue, error) {
	if !Equal(left.Type, right.Type) {
		return nil, a.errTypeMismatch(e.Span(), left.Type, right.Type)
	}

	isField := false
	if _, ok := left.Type.(FieldType); ok {
		isField = true
	}

	result := new(big.Int)

	switch e.Op {
	case "+":
		result.Add(left.Int, right.Int)
	case "-":
		result.Sub(left.Int, right.Int)
	case "*":
		result.Mul(left.Int, right.Int)
	case "/":
		if right.Int.Sign() == 0 {
			return nil, a.errConstDivByZero(e.Span())
		}

		if isField {
			return nil, a.errFieldNoDivision(e.Span())
		}

		result.Quo(left.Int, right.Int)
	case "%":
		if isField {
			return nil, a.errFieldHasNoRemainder(e.Span())
		}

		if right.Int.Sign() == 0 {
			return nil, a.errConstRemByZero(e.Span())
		}

		result.Rem(left.Int, right.Int)
	case "&":
		result.And(left.Int, right.Int)
	case "|":
		result.Or(left.Int, right.Int)
	case "^":
		result.Xor(left.Int, right.Int)
	case "<<":
		if isField {
			return nil, a.errFieldNoShift(e.Span())
		}

		result.Lsh(left.Int, uint(right.Int.Int64()))
	case ">>":
		if isField {
			return nil, a.errFieldNoShift(e.Span())
		}

		result.Rsh(left.Int, uint(right.Int.Int64()))
	default:
		return nil, a.errorf(e.Span(), "unsupported binary operator %q", e.Op)
	}

	if isField {
		result.Mod(result, bn254Modulus)
		return &ConstValue{result, left.Type}, nil
	}

	it := left.Type.(IntType)
	if err := checkOverflow(result, it); err != nil {
		return nil, a.errConstOverflow(e.Span(), it)
	}

	return &ConstValue{result, it}, nil
}

func (a *Analyzer) foldCast(scope *Scope, e *syntax.CastExpr) (*ConstValue, error) {
	operand, err := a.foldConst(scope, e.Operand)
	if err != nil {
		return nil, err
	}

	target, err := a.resolveType(scope, e.Target)
	if err != nil {
		return nil, err
	}

	value, lost, err := castConstValue(operand, target)
	if err != nil {
		if oor, ok := err.(enumValueOutOfRangeError); ok {
			return nil, a.errCasterEnumValueOutOfRange(e.Span(), oor.enumName)
		}

		return nil, a.errorf(e.Span(), "%s", err.Error())
	}

	if lost {
		ft, tt := operand.Type.(IntType), target.(IntType)
		a.warnErr(a.errCasterToLesserBitlength(e.Span(), ft, tt))
	}

	return value, nil
}

// checkOverflow reports a Go error (not a *source.SyntaxError — callers
// wrap it with their own span) if v does not fit within it's declared
// bit-length under two's-complement representation.
func checkOverflow(v *big.Int, it IntType) error {
	bound := new(big.Int).Lsh(big.NewInt(1), uint(it.Bits))

	if it.Signed {
		half := new(big.Int).Rsh(bound, 1)
		neg := new(big.Int).Neg(half)

		if v.Cmp(neg) < 0 || v.Cmp(half) >= 0 {
			return overflowError{it}
		}
	} else {
		if v.Sign() < 0 || v.Cmp(bound) >= 0 {
			return overflowError{it}
		}
	}

	return nil
}

type overflowError struct{ t IntType }

func (e overflowError) Error() string {
	return "value overflows " + e.t.String()
}

// parseIntegerLiteral parses the lexer's raw (decimal or 0x-hex,
// underscore-separated) integer text into a big.Int.
func parseIntegerLiteral(text string) (*big.Int, error) {
	clean := make([]byte, 0, len(text))

	for i := 0; i < len(text); i++ {
		if text[i] != '_' {
			clean = append(clean, text[i])
		}
	}

	base := 10

	s := string(clean)
	if len(s) > 1 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		base = 16
		s = s[2:]
	}

	n, ok := new(big.Int).SetString(s, base)
	if !ok {
		return nil, invalidLiteralError{text}
	}

	return n, nil
}

type invalidLiteralError struct{ text string }

func (e invalidLiteralError) Error() string {
	return "invalid integer literal " + e.text
}
