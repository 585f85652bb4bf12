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

	"github.com/zinc-lang/zinc/pkg/bytecode"
	"github.com/zinc-lang/zinc/pkg/semantic"
	"github.com/zinc-lang/zinc/pkg/vm/cs"
	"github.com/zinc-lang/zinc/pkg/vm/gadgets"
)

// finishArith range-checks (and traps on overflow) an integer/bool result,
// or wraps a field result modulo the scalar field prime, then pushes it.
func (m *Machine) finishArith(pc int, res gadgets.Scalar, t semantic.Type) error {
	if _, ok := t.(semantic.FieldType); ok {
		res.Val = wrapField(res.Val, t)
		res.LC = cs.Const(cs.FromBigInt(res.Val))
		m.pushCells([]gadgets.Scalar{res})

		return nil
	}

	if err := checkRange(res.Val, t); err != nil {
		return newError(ErrIntegerOverflow, pc, "%s", err)
	}

	m.pushCells([]gadgets.Scalar{res})

	return nil
}

func (m *Machine) execArith(b *cs.Builder, pc int, instr bytecode.Instruction) error {
	t := instrType(instr)

	bits, _, err := typeWidth(t)
	if err != nil {
		return newError(ErrCallStackCorruption, pc, "%s", err)
	}

	_, isField := t.(semantic.FieldType)

	if _, ok := instr.(*bytecode.Neg); ok {
		x, err := m.pop1()
		if err != nil {
			return err
		}

		return m.finishArith(pc, gadgets.Neg(x), t)
	}

	vals, err := m.popCells(2)
	if err != nil {
		return err
	}

	x, y := vals[0], vals[1]

	var res gadgets.Scalar

	switch instr.(type) {
	case *bytecode.Add:
		res = gadgets.Add(x, y)
	case *bytecode.Sub:
		res = gadgets.Sub(x, y)
	case *bytecode.Mul:
		res, err = gadgets.Mul(b, x, y)
	case *bytecode.Div:
		if isField {
			inv, ierr := gadgets.Inverse(b, y)
			if ierr != nil {
				return newError(ErrDivisionByZero, pc, "")
			}

			res, err = gadgets.Mul(b, x, inv)
		} else {
			q, _, derr := gadgets.DivRem(b, x, y, bits)
			if derr != nil {
				return newError(ErrDivisionByZero, pc, "%s", derr)
			}

			res = q
		}
	case *bytecode.Rem:
		if isField {
			return newError(ErrCallStackCorruption, pc, "remainder undefined for field")
		}

		_, r, derr := gadgets.DivRem(b, x, y, bits)
		if derr != nil {
			return newError(ErrDivisionByZero, pc, "%s", derr)
		}

		res = r
	}

	if err != nil {
		return err
	}

	return m.finishArith(pc, res, t)
}

func (m *Machine) execCompare(b *cs.Builder, pc int, instr bytecode.Instruction) error {
	t := instrType(instr)

	bits, signed, err := typeWidth(t)
	if err != nil {
		return newError(ErrCallStackCorruption, pc, "%s", err)
	}

	vals, err := m.popCells(2)
	if err != nil {
		return err
	}

	x, y := vals[0], vals[1]

	_ = signed // Compare's bias-cancellation makes sign irrelevant to the bit width used.

	var res gadgets.Scalar

	switch instr.(type) {
	case *bytecode.Eq:
		diff := gadgets.Sub(x, y)
		res, err = gadgets.IsZero(b, diff)
	case *bytecode.Ne:
		diff := gadgets.Sub(x, y)
		eq, ierr := gadgets.IsZero(b, diff)
		if ierr != nil {
			return ierr
		}

		res = gadgets.Not(eq)
	case *bytecode.Lt:
		ge, ierr := gadgets.Compare(b, x, y, bits)
		if ierr != nil {
			err = ierr
			break
		}

		res = gadgets.Not(ge)
	case *bytecode.Le:
		res, err = gadgets.Compare(b, y, x, bits)
	case *bytecode.Gt:
		ge, ierr := gadgets.Compare(b, y, x, bits)
		if ierr != nil {
			err = ierr
			break
		}

		res = gadgets.Not(ge)
	case *bytecode.Ge:
		res, err = gadgets.Compare(b, x, y, bits)
	}

	if err != nil {
		return err
	}

	m.pushCells([]gadgets.Scalar{res})

	return nil
}

func (m *Machine) execLogical(b *cs.Builder, pc int, instr bytecode.Instruction) error {
	if _, ok := instr.(*bytecode.Not); ok {
		x, err := m.pop1()
		if err != nil {
			return err
		}

		m.pushCells([]gadgets.Scalar{gadgets.Not(x)})

		return nil
	}

	vals, err := m.popCells(2)
	if err != nil {
		return err
	}

	x, y := vals[0], vals[1]

	var res gadgets.Scalar

	switch instr.(type) {
	case *bytecode.And:
		res, err = gadgets.And(b, x, y)
	case *bytecode.Or:
		res, err = gadgets.Or(b, x, y)
	case *bytecode.Xor:
		res, err = gadgets.Xor(b, x, y)
	}

	if err != nil {
		return err
	}

	m.pushCells([]gadgets.Scalar{res})

	return nil
}

func (m *Machine) execBitwise(b *cs.Builder, pc int, instr bytecode.Instruction) error {
	t := instrType(instr)

	bits, signed, err := typeWidth(t)
	if err != nil {
		return newError(ErrCallStackCorruption, pc, "%s", err)
	}

	if _, ok := instr.(*bytecode.BitwiseNot); ok {
		x, err := m.pop1()
		if err != nil {
			return err
		}

		res, err := gadgets.BitwiseNot(b, x, bits, signed)
		if err != nil {
			return newError(ErrIntegerOverflow, pc, "%s", err)
		}

		m.pushCells([]gadgets.Scalar{res})

		return nil
	}

	vals, err := m.popCells(2)
	if err != nil {
		return err
	}

	x, y := vals[0], vals[1]

	var res gadgets.Scalar

	switch instr.(type) {
	case *bytecode.BitwiseAnd:
		res, err = gadgets.BitwiseAnd(b, x, y, bits, signed)
	case *bytecode.BitwiseOr:
		res, err = gadgets.BitwiseOr(b, x, y, bits, signed)
	case *bytecode.BitwiseXor:
		res, err = gadgets.BitwiseXor(b, x, y, bits, signed)
	}

	if err != nil {
		return err
	}

	m.pushCells([]gadgets.Scalar{res})

	return nil
}

func (m *Machine) execShift(b *cs.Builder, pc int, t semantic.Type, amount int, left bool) error {
	bits, signed, err := typeWidth(t)
	if err != nil {
		return newError(ErrCallStackCorruption, pc, "%s", err)
	}

	x, err := m.pop1()
	if err != nil {
		return err
	}

	var res gadgets.Scalar

	if left {
		res, err = gadgets.ShiftLeft(b, x, amount, bits, signed)
	} else {
		res, err = gadgets.ShiftRight(b, x, amount, bits, signed)
	}

	if err != nil {
		return newError(ErrIntegerOverflow, pc, "%s", err)
	}

	m.pushCells([]gadgets.Scalar{res})

	return nil
}

// execCast implements §4.3(d): widening zero/sign-extends (reinterprets the
// same logical value at a wider range, never failing), narrowing
// range-checks the concrete value against the target's legal range and
// traps (overflow) if it does not fit — casts are explicit and therefore
// checked, unlike implicit arithmetic which also traps on overflow but
// never silently truncates.
func (m *Machine) execCast(b *cs.Builder, pc int, ins *bytecode.Cast) error {
	x, err := m.pop1()
	if err != nil {
		return err
	}

	switch t := ins.Target.(type) {
	case semantic.FieldType:
		v := wrapField(x.Val, ins.Target)
		m.pushCells([]gadgets.Scalar{{Val: v, LC: cs.Const(cs.FromBigInt(v))}})

		return nil
	case *semantic.EnumType:
		for _, v := range t.Variants {
			if x.Val.Cmp(big.NewInt(v.Value)) == 0 {
				m.pushCells([]gadgets.Scalar{x})
				return nil
			}
		}

		return newError(ErrIntegerOverflow, pc, "cast %s -> %s: %s is not a variant value", ins.From, ins.Target, x.Val)
	}

	if err := checkRange(x.Val, ins.Target); err != nil {
		return newError(ErrIntegerOverflow, pc, "cast %s -> %s: %s", ins.From, ins.Target, err)
	}

	bits, signed, err := typeWidth(ins.Target)
	if err != nil {
		return newError(ErrCallStackCorruption, pc, "%s", err)
	}

	// Re-validate the value fits the target's bit pattern, allocating the
	// witnesses that tie the source value to the cast's declared width.
	checked, err := gadgets.RangeCheck(b, biasFor(x, bits, signed), bits)
	if err != nil {
		return newError(ErrIntegerOverflow, pc, "cast %s -> %s: %s", ins.From, ins.Target, err)
	}

	unbiased := unbiasFor(checked, bits, signed)
	m.pushCells([]gadgets.Scalar{{Val: x.Val, LC: unbiased.LC}})

	return nil
}

func biasFor(x gadgets.Scalar, bits uint, signed bool) gadgets.Scalar {
	if !signed {
		return x
	}

	bias := new(big.Int).Lsh(big.NewInt(1), bits-1)

	return gadgets.Scalar{
		Val: new(big.Int).Add(x.Val, bias),
		LC:  x.LC.Plus(cs.Const(cs.FromBigInt(bias))),
	}
}

func unbiasFor(x gadgets.Scalar, bits uint, signed bool) gadgets.Scalar {
	if !signed {
		return x
	}

	bias := new(big.Int).Lsh(big.NewInt(1), bits-1)

	return gadgets.Scalar{
		Val: new(big.Int).Sub(x.Val, bias),
		LC:  x.LC.Plus(cs.Const(cs.FromBigInt(new(big.Int).Neg(bias)))),
	}
}
