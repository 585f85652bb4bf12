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

// Package gadgets implements the constraint-generating building blocks the
// VM composes into each bytecode arithmetic/comparison/bitwise/cast
// instruction: every non-linear operation (multiplication, division,
// comparison, bit decomposition) allocates a witness and enforces the
// relation that justifies it, rather than trusting the Go arithmetic that
// produced the value.
package gadgets

import (
	"fmt"
	"math/big"

	"github.com/bits-and-blooms/bitset"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/zinc-lang/zinc/pkg/vm/cs"
)

// Scalar is a constraint-tracked value: Val is its exact logical integer
// (negative for a negative signed int, unbounded for a field value before
// reduction), and LC is its field embedding — `cs.FromBigInt(Val)` evaluated
// against the current witness. Linear operations (Add, Sub, Neg) combine LC
// directly with no new constraint; non-linear ones (Mul, comparisons,
// bitwise, shifts) allocate a fresh witness and enforce the relation.
type Scalar struct {
	Val *big.Int
	LC  cs.LinearCombination
}

var negOneElem = negOneElement()

func negOneElement() fr.Element {
	var e fr.Element
	e.SetOne()
	e.Neg(&e)
	return e
}

// Const builds a constant scalar: no witness variable, just a value.
func Const(v *big.Int) Scalar {
	return Scalar{Val: new(big.Int).Set(v), LC: cs.Const(cs.FromBigInt(v))}
}

// witness allocates (when tracking) a fresh witness variable for v and
// returns its linear combination; under a non-tracking Builder it still
// returns a usable constant LC so callers need no separate code path.
func witness(b *cs.Builder, v *big.Int) cs.LinearCombination {
	if !b.Track {
		return cs.Const(cs.FromBigInt(v))
	}

	return cs.Var(b.Allocate(cs.FromBigInt(v)))
}

// Add returns x+y; purely linear, no constraint needed.
func Add(x, y Scalar) Scalar {
	return Scalar{Val: new(big.Int).Add(x.Val, y.Val), LC: x.LC.Plus(y.LC)}
}

// Sub returns x-y; purely linear.
func Sub(x, y Scalar) Scalar {
	return Scalar{Val: new(big.Int).Sub(x.Val, y.Val), LC: x.LC.Plus(y.LC.Scaled(negOneElem))}
}

// Neg returns -x; purely linear.
func Neg(x Scalar) Scalar {
	return Scalar{Val: new(big.Int).Neg(x.Val), LC: x.LC.Scaled(negOneElem)}
}

// Mul allocates z=x*y and enforces x·y=z.
func Mul(b *cs.Builder, x, y Scalar) (Scalar, error) {
	v := new(big.Int).Mul(x.Val, y.Val)
	lc := witness(b, v)

	if err := b.Enforce(x.LC, y.LC, lc, "mul"); err != nil {
		return Scalar{}, err
	}

	return Scalar{Val: v, LC: lc}, nil
}

// IsZero returns a boolean scalar (1 if x.Val == 0, else 0), using the
// standard `x·inv = 1-z, x·z = 0` gadget (inv is a dummy witness — any value
// satisfies the second equation when x is zero, and inv = 1/x otherwise).
func IsZero(b *cs.Builder, x Scalar) (Scalar, error) {
	var z, inv *big.Int

	if x.Val.Sign() == 0 {
		z, inv = big.NewInt(1), big.NewInt(0)
	} else {
		z = big.NewInt(0)

		var fe fr.Element
		fe.SetBigInt(modReduce(x.Val))
		fe.Inverse(&fe)

		var ib big.Int
		fe.BigInt(&ib)
		inv = &ib
	}

	zLC := witness(b, z)
	invLC := witness(b, inv)

	// x*inv = 1-z
	if err := b.Enforce(x.LC, invLC, cs.ConstUint(1).Plus(zLC.Scaled(negOneElem)), "is_zero/inv"); err != nil {
		return Scalar{}, err
	}
	// x*z = 0
	if err := b.Enforce(x.LC, zLC, cs.ConstUint(0), "is_zero/zero"); err != nil {
		return Scalar{}, err
	}

	return Scalar{Val: z, LC: zLC}, nil
}

func modReduce(v *big.Int) *big.Int {
	r := new(big.Int).Mod(v, cs.Modulus)
	if r.Sign() < 0 {
		r.Add(r, cs.Modulus)
	}

	return r
}

// Not negates a boolean scalar (1-x); purely linear.
func Not(x Scalar) Scalar {
	return Scalar{Val: new(big.Int).Sub(big.NewInt(1), x.Val), LC: cs.ConstUint(1).Plus(x.LC.Scaled(negOneElem))}
}

// And returns the boolean conjunction of x and y (x·y).
func And(b *cs.Builder, x, y Scalar) (Scalar, error) { return Mul(b, x, y) }

// Or returns the boolean disjunction of x and y (x+y-x·y).
func Or(b *cs.Builder, x, y Scalar) (Scalar, error) {
	xy, err := Mul(b, x, y)
	if err != nil {
		return Scalar{}, err
	}

	return Sub(Add(x, y), xy), nil
}

// Xor returns the boolean exclusive-or of x and y (x+y-2·x·y).
func Xor(b *cs.Builder, x, y Scalar) (Scalar, error) {
	xy, err := Mul(b, x, y)
	if err != nil {
		return Scalar{}, err
	}

	two := big.NewInt(2)
	doubled := Scalar{Val: new(big.Int).Mul(two, xy.Val), LC: xy.LC.Scaled(cs.FromBigInt(two))}

	return Sub(Add(x, y), doubled), nil
}

// Select returns a if cond is 1, else other — `cond·(a-other)+other`.
func Select(b *cs.Builder, cond, a, other Scalar) (Scalar, error) {
	diff := Sub(a, other)

	prod, err := Mul(b, cond, diff)
	if err != nil {
		return Scalar{}, err
	}

	return Add(prod, other), nil
}

// DivRem computes quotient and remainder of x by y with a Euclidean
// (always non-negative) remainder, enforcing x = y*q + r and range-checking
// r, and q offset by 2^bits (so a negative signed quotient passes), into
// bits+1 bits. Returns an error (division by zero) if y.Val is zero.
func DivRem(b *cs.Builder, x, y Scalar, bits uint) (q, r Scalar, err error) {
	if y.Val.Sign() == 0 {
		return Scalar{}, Scalar{}, fmt.Errorf("vm: division by zero")
	}

	qv, rv := new(big.Int), new(big.Int)
	qv.QuoRem(x.Val, y.Val, rv)

	if rv.Sign() < 0 {
		absY := new(big.Int).Abs(y.Val)
		rv.Add(rv, absY)

		if y.Val.Sign() < 0 {
			qv.Add(qv, big.NewInt(1))
		} else {
			qv.Sub(qv, big.NewInt(1))
		}
	}

	qLC := witness(b, qv)
	rLC := witness(b, rv)

	// x = y*q + r
	if err := b.Enforce(y.LC, qLC, x.LC.Plus(rLC.Scaled(negOneElem)), "div/identity"); err != nil {
		return Scalar{}, Scalar{}, err
	}

	rs := Scalar{Val: rv, LC: rLC}

	if _, err := RangeCheck(b, rs, bits+1); err != nil {
		return Scalar{}, Scalar{}, fmt.Errorf("vm: division remainder out of range: %w", err)
	}

	qs := Scalar{Val: qv, LC: qLC}
	qOffset := new(big.Int).Lsh(big.NewInt(1), bits)

	if _, err := RangeCheck(b, Add(qs, Const(qOffset)), bits+1); err != nil {
		return Scalar{}, Scalar{}, fmt.Errorf("vm: division quotient out of range: %w", err)
	}

	return qs, rs, nil
}

// Inverse returns the field inverse of x, erroring if x is zero.
func Inverse(b *cs.Builder, x Scalar) (Scalar, error) {
	if x.Val.Sign() == 0 {
		return Scalar{}, fmt.Errorf("vm: division by zero")
	}

	var fe fr.Element
	fe.SetBigInt(modReduce(x.Val))
	fe.Inverse(&fe)

	var iv big.Int
	fe.BigInt(&iv)

	lc := witness(b, &iv)

	if err := b.Enforce(x.LC, lc, cs.ConstUint(1), "inverse"); err != nil {
		return Scalar{}, err
	}

	return Scalar{Val: &iv, LC: lc}, nil
}

// RangeCheck decomposes x into `bits` boolean witnesses and enforces their
// weighted sum equals x, proving 0 <= x.Val < 2^bits.
func RangeCheck(b *cs.Builder, x Scalar, bits uint) (Scalar, error) {
	if x.Val.Sign() < 0 || x.Val.BitLen() > int(bits) {
		return Scalar{}, fmt.Errorf("vm: value does not fit in %d bits", bits)
	}

	bs := bitset.New(bits)
	bitLCs := make([]cs.LinearCombination, bits)

	for i := uint(0); i < bits; i++ {
		bit := x.Val.Bit(int(i))
		if bit == 1 {
			bs.Set(i)
		}

		bLC := witness(b, big.NewInt(int64(bit)))
		bitLCs[i] = bLC

		if err := b.Enforce(bLC, cs.ConstUint(1).Plus(bLC.Scaled(negOneElem)), cs.ConstUint(0), "range/bool"); err != nil {
			return Scalar{}, err
		}
	}

	sum := cs.LinearCombination{}
	weight := big.NewInt(1)

	for i := uint(0); i < bits; i++ {
		sum = sum.Plus(bitLCs[i].Scaled(cs.FromBigInt(weight)))
		weight = new(big.Int).Lsh(weight, 1)
	}

	if err := b.EnforceEqual(sum, x.LC, "range/reconstruct"); err != nil {
		return Scalar{}, err
	}

	if bitsetToBigInt(bs, bits).Cmp(x.Val) != 0 {
		return Scalar{}, fmt.Errorf("vm: range-check decomposition mismatch")
	}

	return x, nil
}

// Compare returns a boolean scalar for `x >= y`, both interpreted over
// `bits` bits; `x-y+2^bits` lands in [1, 2^(bits+1)-1] and its top bit
// (position `bits`) is set exactly when x >= y, regardless of signedness
// (the bias each signed operand's representation carries cancels in the
// subtraction).
func Compare(b *cs.Builder, x, y Scalar, bits uint) (Scalar, error) {
	shift := new(big.Int).Lsh(big.NewInt(1), bits)

	diffVal := new(big.Int).Sub(x.Val, y.Val)
	diffVal.Add(diffVal, shift)

	diffLC := x.LC.Plus(y.LC.Scaled(negOneElem)).Plus(cs.Const(cs.FromBigInt(shift)))

	checked, err := RangeCheck(b, Scalar{Val: diffVal, LC: diffLC}, bits+1)
	if err != nil {
		return Scalar{}, err
	}

	topBit := checked.Val.Bit(int(bits))

	return Scalar{Val: big.NewInt(int64(topBit)), LC: witness(b, big.NewInt(int64(topBit)))}, nil
}

// patternBits decomposes x into `bits` two's-complement pattern bits
// (LSB first) together with their concrete 0/1 values, biasing signed
// values into the unsigned window before decomposing.
func patternBits(b *cs.Builder, x Scalar, bits uint, signed bool) ([]cs.LinearCombination, []int, error) {
	bias := big.NewInt(0)
	if signed {
		bias = new(big.Int).Lsh(big.NewInt(1), bits-1)
	}

	biasedVal := new(big.Int).Add(x.Val, bias)
	biasedLC := x.LC.Plus(cs.Const(cs.FromBigInt(bias)))

	if _, err := RangeCheck(b, Scalar{Val: biasedVal, LC: biasedLC}, bits); err != nil {
		return nil, nil, fmt.Errorf("vm: value out of range for bit width %d: %w", bits, err)
	}

	bitLCs := make([]cs.LinearCombination, bits)
	ints := make([]int, bits)

	for i := uint(0); i < bits; i++ {
		bit := int(biasedVal.Bit(int(i)))
		if signed && i == bits-1 {
			bit ^= 1 // offset-binary -> two's complement: flip the sign bit
		}

		ints[i] = bit
		bitLCs[i] = witness(b, big.NewInt(int64(bit)))

		if err := b.Enforce(bitLCs[i], cs.ConstUint(1).Plus(bitLCs[i].Scaled(negOneElem)), cs.ConstUint(0), "pattern/bool"); err != nil {
			return nil, nil, err
		}
	}

	return bitLCs, ints, nil
}

// fromPatternBits is the inverse of patternBits: reconstructs the logical
// value and linear combination from an array of pattern bits and their
// concrete 0/1 values.
func fromPatternBits(bitLCs []cs.LinearCombination, ints []int, bits uint, signed bool) Scalar {
	bias := big.NewInt(0)
	if signed {
		bias = new(big.Int).Lsh(big.NewInt(1), bits-1)
	}

	offset := make([]int, bits)
	copy(offset, ints)

	if signed {
		offset[bits-1] ^= 1
	}

	val := big.NewInt(0)
	lc := cs.LinearCombination{}
	weight := big.NewInt(1)

	for i := uint(0); i < bits; i++ {
		if offset[i] == 1 {
			val.Add(val, weight)
		}

		bit := bitLCs[i]
		if signed && i == bits-1 {
			bit = cs.ConstUint(1).Plus(bit.Scaled(negOneElem))
		}

		lc = lc.Plus(bit.Scaled(cs.FromBigInt(weight)))
		weight = new(big.Int).Lsh(weight, 1)
	}

	val.Sub(val, bias)
	lc = lc.Plus(cs.Const(cs.FromBigInt(new(big.Int).Neg(bias))))

	return Scalar{Val: val, LC: lc}
}

// BitwiseNot complements every pattern bit of x within `bits` bits; purely
// linear (each bit's complement 1-b is linear), so no multiplicative
// constraint is needed beyond the initial decomposition.
func BitwiseNot(b *cs.Builder, x Scalar, bits uint, signed bool) (Scalar, error) {
	bitLCs, ints, err := patternBits(b, x, bits, signed)
	if err != nil {
		return Scalar{}, err
	}

	notLCs := make([]cs.LinearCombination, bits)
	notInts := make([]int, bits)

	for i := range bitLCs {
		notLCs[i] = cs.ConstUint(1).Plus(bitLCs[i].Scaled(negOneElem))
		notInts[i] = 1 - ints[i]
	}

	return fromPatternBits(notLCs, notInts, bits, signed), nil
}

// bitwisePairwise decomposes both operands into same-width pattern bits and
// combines them bit by bit with gate.
func bitwisePairwise(
	b *cs.Builder, x, y Scalar, bits uint, signed bool,
	gate func(b *cs.Builder, x, y Scalar) (Scalar, error),
) (Scalar, error) {
	xLCs, xInts, err := patternBits(b, x, bits, signed)
	if err != nil {
		return Scalar{}, err
	}

	yLCs, yInts, err := patternBits(b, y, bits, signed)
	if err != nil {
		return Scalar{}, err
	}

	outLCs := make([]cs.LinearCombination, bits)
	outInts := make([]int, bits)

	for i := uint(0); i < bits; i++ {
		r, err := gate(b, Scalar{Val: big.NewInt(int64(xInts[i])), LC: xLCs[i]}, Scalar{Val: big.NewInt(int64(yInts[i])), LC: yLCs[i]})
		if err != nil {
			return Scalar{}, err
		}

		outLCs[i] = r.LC
		outInts[i] = int(r.Val.Int64())
	}

	return fromPatternBits(outLCs, outInts, bits, signed), nil
}

// BitwiseAnd, BitwiseOr, BitwiseXor apply the corresponding boolean gate to
// every pattern bit of x and y.
func BitwiseAnd(b *cs.Builder, x, y Scalar, bits uint, signed bool) (Scalar, error) {
	return bitwisePairwise(b, x, y, bits, signed, And)
}

func BitwiseOr(b *cs.Builder, x, y Scalar, bits uint, signed bool) (Scalar, error) {
	return bitwisePairwise(b, x, y, bits, signed, Or)
}

func BitwiseXor(b *cs.Builder, x, y Scalar, bits uint, signed bool) (Scalar, error) {
	return bitwisePairwise(b, x, y, bits, signed, Xor)
}

// ShiftLeft truncates x's pattern left by amount bits within `bits` bits.
func ShiftLeft(b *cs.Builder, x Scalar, amount int, bits uint, signed bool) (Scalar, error) {
	xLCs, xInts, err := patternBits(b, x, bits, signed)
	if err != nil {
		return Scalar{}, err
	}

	outLCs := make([]cs.LinearCombination, bits)
	outInts := make([]int, bits)

	for i := uint(0); i < bits; i++ {
		src := int(i) - amount
		if src < 0 {
			outLCs[i] = cs.ConstUint(0)
			outInts[i] = 0
			continue
		}

		outLCs[i] = xLCs[src]
		outInts[i] = xInts[src]
	}

	return fromPatternBits(outLCs, outInts, bits, signed), nil
}

// ShiftRight shifts x's pattern right by amount bits; unsigned types shift
// in zeros, signed types sign-extend (arithmetic shift).
func ShiftRight(b *cs.Builder, x Scalar, amount int, bits uint, signed bool) (Scalar, error) {
	xLCs, xInts, err := patternBits(b, x, bits, signed)
	if err != nil {
		return Scalar{}, err
	}

	fillLC, fillInt := cs.ConstUint(0), 0
	if signed {
		fillLC, fillInt = xLCs[bits-1], xInts[bits-1]
	}

	outLCs := make([]cs.LinearCombination, bits)
	outInts := make([]int, bits)

	for i := uint(0); i < bits; i++ {
		src := int(i) + amount
		if src >= int(bits) {
			outLCs[i] = fillLC
			outInts[i] = fillInt
			continue
		}

		outLCs[i] = xLCs[src]
		outInts[i] = xInts[src]
	}

	return fromPatternBits(outLCs, outInts, bits, signed), nil
}

func bitsetToBigInt(bs *bitset.BitSet, bits uint) *big.Int {
	out := big.NewInt(0)

	for i := uint(0); i < bits; i++ {
		if bs.Test(i) {
			out.SetBit(out, int(i), 1)
		}
	}

	return out
}
