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
	"errors"
	"math/big"

	"github.com/zinc-lang/zinc/pkg/source"
)

// castKind classifies a source/target type pair against the casting
// relation of §4.3(d).
type castKind uint8

const (
	castIllegal castKind = iota
	castIdentity
	castIntToInt
	castIntToField
	castIntToEnum
	castEnumToInt
)

// classifyCast determines which branch of the casting relation a `from as
// to` cast falls into. The relation is total for integer-to-integer
// (checkCastType rejects a narrower bit-length and only warns on a
// same-width sign change), integer-to-field (always allowed),
// integer-to-enumeration (checked membership), enumeration-to-integer
// (always allowed), and identity casts. Field-to-integer, bool-to-anything,
// anything-to-bool, and casts through composite types are errors.
func classifyCast(from, to Type) castKind {
	if Equal(from, to) {
		return castIdentity
	}

	switch from.(type) {
	case IntType:
		switch to.(type) {
		case IntType:
			return castIntToInt
		case FieldType:
			return castIntToField
		case *EnumType:
			return castIntToEnum
		default:
			return castIllegal
		}
	case *EnumType:
		if _, ok := to.(IntType); ok {
			return castEnumToInt
		}

		return castIllegal
	default:
		return castIllegal
	}
}

// checkCastType validates a runtime (non-const) `e as T` cast against the
// casting relation. Casting to a strictly lesser bit-length is a hard
// semantic error (§8 scenario S5, matching the original compiler's
// CasterError::ToLesserBitlength); a same-width sign change is merely
// flagged as a warning, since no bits are actually discarded.
func (a *Analyzer) checkCastType(span source.Span, from, to Type) (Type, error) {
	switch classifyCast(from, to) {
	case castIdentity, castIntToField, castEnumToInt:
		return to, nil
	case castIntToInt:
		ft, tt := from.(IntType), to.(IntType)
		if tt.Bits < ft.Bits {
			return nil, a.errCasterToLesserBitlength(span, ft, tt)
		}

		if tt.Bits == ft.Bits && ft.Signed != tt.Signed {
			a.warnErr(a.errCasterToLesserBitlength(span, ft, tt))
		}

		return to, nil
	case castIntToEnum:
		// Membership is checked at constant-fold time when the operand is
		// a literal; for a runtime operand the VM's Cast checks the value
		// against the enumeration's declared values (see execCast in pkg/vm).
		return to, nil
	default:
		switch from.(type) {
		case IntType, *EnumType:
			return nil, a.errCasterToInvalidType(span, to)
		default:
			return nil, a.errCasterFromInvalidType(span, from)
		}
	}
}

// castConstValue performs a compile-time cast, used by fold.go. Returns
// whether the cast lost range (for warning purposes) alongside the result.
func castConstValue(v *ConstValue, target Type) (*ConstValue, bool, error) {
	switch classifyCast(v.Type, target) {
	case castIdentity:
		return &ConstValue{new(big.Int).Set(v.Int), target}, false, nil
	case castIntToField:
		n := new(big.Int).Mod(v.Int, bn254Modulus)
		return &ConstValue{n, target}, false, nil
	case castIntToInt:
		tt := target.(IntType)
		lost := checkOverflow(v.Int, tt) != nil
		n := wrapToWidth(v.Int, tt)

		return &ConstValue{n, target}, lost, nil
	case castIntToEnum:
		et := target.(*EnumType)
		for _, variant := range et.Variants {
			if big.NewInt(variant.Value).Cmp(v.Int) == 0 {
				return &ConstValue{new(big.Int).Set(v.Int), target}, false, nil
			}
		}

		return nil, false, enumValueOutOfRangeError{et.Name}
	case castEnumToInt:
		return &ConstValue{new(big.Int).Set(v.Int), target}, false, nil
	default:
		return nil, false, errors.New("err_caster_to_invalid_type: cast is not supported by the casting relation")
	}
}

// enumValueOutOfRangeError lets foldCast recover the enumeration name and
// route it through the Analyzer's own errCasterEnumValueOutOfRange
// constructor instead of a bare message.
type enumValueOutOfRangeError struct{ enumName string }

func (e enumValueOutOfRangeError) Error() string {
	return "err_caster_enum_value_out_of_range: value is not a valid variant of " + e.enumName
}

// wrapToWidth re-encodes n within an integer type's declared bit-length
// under two's complement, used when a narrowing cast is allowed to lose
// range (the warning has already been raised by the caller).
func wrapToWidth(n *big.Int, t IntType) *big.Int {
	mask := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), uint(t.Bits)), big.NewInt(1))
	wrapped := new(big.Int).And(n, mask)

	if t.Signed {
		half := new(big.Int).Lsh(big.NewInt(1), uint(t.Bits-1))
		if wrapped.Cmp(half) >= 0 {
			wrapped.Sub(wrapped, new(big.Int).Lsh(big.NewInt(1), uint(t.Bits)))
		}
	}

	return wrapped
}
