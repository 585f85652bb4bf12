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
	"fmt"
	"math/big"

	"github.com/zinc-lang/zinc/pkg/semantic"
	"github.com/zinc-lang/zinc/pkg/vm/cs"
	"github.com/zinc-lang/zinc/pkg/vm/gadgets"
)

func zeroInt() *big.Int { return big.NewInt(0) }

// scalarOf decodes a Push instruction's little-endian byte payload (written
// by pkg/emitter's encodeConst) back into its logical value: two's
// complement resign for signed integers, direct reduction for field
// constants.
func scalarOf(value []byte, t semantic.Type) gadgets.Scalar {
	n := beToLogical(value, t)
	return gadgets.Const(n)
}

func beToLogical(value []byte, t semantic.Type) *big.Int {
	n := leToBigInt(value)

	switch tt := t.(type) {
	case semantic.IntType:
		if tt.Signed {
			half := new(big.Int).Lsh(big.NewInt(1), uint(tt.Bits-1))
			if n.Cmp(half) >= 0 {
				mod := new(big.Int).Lsh(big.NewInt(1), uint(tt.Bits))
				n.Sub(n, mod)
			}
		}

		return n
	default:
		return n
	}
}

func leToBigInt(b []byte) *big.Int {
	be := make([]byte, len(b))
	for i, v := range b {
		be[len(b)-1-i] = v
	}

	return new(big.Int).SetBytes(be)
}

// typeWidth extracts the (bits, signed) pair a scalar instruction's Type
// needs for range checks and bit gadgets. FieldType and BoolType report
// their own fixed widths.
func typeWidth(t semantic.Type) (bits uint, signed bool, err error) {
	switch tt := t.(type) {
	case semantic.BoolType:
		return 1, false, nil
	case semantic.IntType:
		return uint(tt.Bits), tt.Signed, nil
	case semantic.FieldType:
		return uint(semantic.FieldBits), false, nil
	default:
		return 0, false, fmt.Errorf("vm: type %s is not a scalar", t)
	}
}

// checkRange reports whether v fits t's declared legal range — the runtime
// overflow trap for arithmetic on bool/int types; field values never trap
// (they simply wrap modulo the field prime).
func checkRange(v *big.Int, t semantic.Type) error {
	switch tt := t.(type) {
	case semantic.BoolType:
		if v.Sign() < 0 || v.Cmp(big.NewInt(1)) > 0 {
			return fmt.Errorf("vm: overflow: %s does not fit in bool", v)
		}

		return nil
	case semantic.IntType:
		var lo, hi big.Int

		if tt.Signed {
			lo.Neg(new(big.Int).Lsh(big.NewInt(1), uint(tt.Bits-1)))
			hi.Sub(new(big.Int).Lsh(big.NewInt(1), uint(tt.Bits-1)), big.NewInt(1))
		} else {
			lo.SetInt64(0)
			hi.Sub(new(big.Int).Lsh(big.NewInt(1), uint(tt.Bits)), big.NewInt(1))
		}

		if v.Cmp(&lo) < 0 || v.Cmp(&hi) > 0 {
			return fmt.Errorf("vm: overflow: %s does not fit in %s", v, t)
		}

		return nil
	case semantic.FieldType:
		return nil
	default:
		return fmt.Errorf("vm: type %s is not a scalar", t)
	}
}

// wrapField reduces a field-type value modulo the BN254 prime; a no-op for
// non-field types (those are range-checked by checkRange instead).
func wrapField(v *big.Int, t semantic.Type) *big.Int {
	if _, ok := t.(semantic.FieldType); !ok {
		return v
	}

	return new(big.Int).Mod(v, cs.Modulus)
}
