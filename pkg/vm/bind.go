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
	"github.com/zinc-lang/zinc/pkg/vm/gadgets"
)

// Bind flattens a Go-native value (bool, an integer kind, *big.Int, or a
// []any/map[string]any for arrays/tuples/structs) into the cell layout t
// describes, the same left-to-right order pkg/emitter assigns addresses in.
// It is the public/witness counterpart to scalarOf, which only decodes a
// Push instruction's serialized operand.
func Bind(value any, t semantic.Type) ([]gadgets.Scalar, error) {
	return bindPath("$", value, t)
}

func bindPath(path string, value any, t semantic.Type) ([]gadgets.Scalar, error) {
	switch tt := t.(type) {
	case semantic.BoolType:
		b, ok := value.(bool)
		if !ok {
			return nil, fmt.Errorf("vm: %s: expected bool, got %T", path, value)
		}

		n := big.NewInt(0)
		if b {
			n.SetInt64(1)
		}

		return []gadgets.Scalar{gadgets.Const(n)}, nil

	case semantic.IntType:
		n, err := toBigInt(value)
		if err != nil {
			return nil, fmt.Errorf("vm: %s: %w", path, err)
		}

		if err := checkRange(n, tt); err != nil {
			return nil, fmt.Errorf("vm: %s: %w", path, err)
		}

		return []gadgets.Scalar{gadgets.Const(n)}, nil

	case semantic.FieldType:
		n, err := toBigInt(value)
		if err != nil {
			return nil, fmt.Errorf("vm: %s: %w", path, err)
		}

		return []gadgets.Scalar{gadgets.Const(wrapField(n, tt))}, nil

	case semantic.UnitType:
		return nil, nil

	case semantic.ArrayType:
		elems, ok := value.([]any)
		if !ok {
			return nil, fmt.Errorf("vm: %s: expected array of length %d, got %T", path, tt.Len, value)
		}

		if len(elems) != tt.Len {
			return nil, fmt.Errorf("vm: %s: expected %d elements, got %d", path, tt.Len, len(elems))
		}

		var out []gadgets.Scalar

		for i, e := range elems {
			cells, err := bindPath(fmt.Sprintf("%s[%d]", path, i), e, tt.Elem)
			if err != nil {
				return nil, err
			}

			out = append(out, cells...)
		}

		return out, nil

	case semantic.TupleType:
		elems, ok := value.([]any)
		if !ok {
			return nil, fmt.Errorf("vm: %s: expected tuple of %d elements, got %T", path, len(tt.Elems), value)
		}

		if len(elems) != len(tt.Elems) {
			return nil, fmt.Errorf("vm: %s: expected %d elements, got %d", path, len(tt.Elems), len(elems))
		}

		var out []gadgets.Scalar

		for i, e := range elems {
			cells, err := bindPath(fmt.Sprintf("%s.%d", path, i), e, tt.Elems[i])
			if err != nil {
				return nil, err
			}

			out = append(out, cells...)
		}

		return out, nil

	case *semantic.StructType:
		fields, ok := value.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("vm: %s: expected struct %s fields, got %T", path, tt.Name, value)
		}

		var out []gadgets.Scalar

		for _, f := range tt.Fields {
			v, ok := fields[f.Name]
			if !ok {
				return nil, fmt.Errorf("vm: %s: missing field %q of %s", path, f.Name, tt.Name)
			}

			cells, err := bindPath(path+"."+f.Name, v, f.Type)
			if err != nil {
				return nil, err
			}

			out = append(out, cells...)
		}

		return out, nil

	case *semantic.EnumType:
		n, err := toBigInt(value)
		if err != nil {
			return nil, fmt.Errorf("vm: %s: %w", path, err)
		}

		for _, variant := range tt.Variants {
			if big.NewInt(variant.Value).Cmp(n) == 0 {
				return []gadgets.Scalar{gadgets.Const(n)}, nil
			}
		}

		return nil, fmt.Errorf("vm: %s: %s has no variant with value %s", path, tt.Name, n)

	default:
		return nil, fmt.Errorf("vm: %s: type %s cannot be bound from a Go value", path, t)
	}
}

func toBigInt(value any) (*big.Int, error) {
	switch v := value.(type) {
	case *big.Int:
		return new(big.Int).Set(v), nil
	case int:
		return big.NewInt(int64(v)), nil
	case int64:
		return big.NewInt(v), nil
	case uint64:
		return new(big.Int).SetUint64(v), nil
	case bool:
		if v {
			return big.NewInt(1), nil
		}

		return big.NewInt(0), nil
	default:
		return nil, fmt.Errorf("expected an integer value, got %T", value)
	}
}

// Unbind is the inverse of Bind: it renders t's flat output cells back into
// plain Go values (bool, *big.Int, []any, map[string]any) for callers that
// do not want to deal with gadgets.Scalar directly.
func Unbind(cells []gadgets.Scalar, t semantic.Type) (any, error) {
	v, rest, err := unbindPath(cells, t)
	if err != nil {
		return nil, err
	}

	if len(rest) != 0 {
		return nil, fmt.Errorf("vm: %d cells left over unbinding %s", len(rest), t)
	}

	return v, nil
}

func unbindPath(cells []gadgets.Scalar, t semantic.Type) (any, []gadgets.Scalar, error) {
	switch tt := t.(type) {
	case semantic.BoolType:
		if len(cells) < 1 {
			return nil, nil, fmt.Errorf("vm: not enough cells for %s", t)
		}

		return cells[0].Val.Sign() != 0, cells[1:], nil

	case semantic.IntType, semantic.FieldType, *semantic.EnumType:
		if len(cells) < 1 {
			return nil, nil, fmt.Errorf("vm: not enough cells for %s", t)
		}

		return new(big.Int).Set(cells[0].Val), cells[1:], nil

	case semantic.UnitType:
		return nil, cells, nil

	case semantic.ArrayType:
		out := make([]any, tt.Len)
		rest := cells

		for i := 0; i < tt.Len; i++ {
			var v any

			var err error

			v, rest, err = unbindPath(rest, tt.Elem)
			if err != nil {
				return nil, nil, err
			}

			out[i] = v
		}

		return out, rest, nil

	case semantic.TupleType:
		out := make([]any, len(tt.Elems))
		rest := cells

		for i, et := range tt.Elems {
			var v any

			var err error

			v, rest, err = unbindPath(rest, et)
			if err != nil {
				return nil, nil, err
			}

			out[i] = v
		}

		return out, rest, nil

	case *semantic.StructType:
		out := make(map[string]any, len(tt.Fields))
		rest := cells

		for _, f := range tt.Fields {
			var v any

			var err error

			v, rest, err = unbindPath(rest, f.Type)
			if err != nil {
				return nil, nil, err
			}

			out[f.Name] = v
		}

		return out, rest, nil

	default:
		return nil, nil, fmt.Errorf("vm: type %s cannot be unbound to a Go value", t)
	}
}
