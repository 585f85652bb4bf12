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

	"github.com/zinc-lang/zinc/pkg/semantic"
)

// bn254Modulus mirrors pkg/semantic's unexported constant: field constants
// must be reduced modulo the same prime the constraint-generating VM uses.
var bn254Modulus, _ = new(big.Int).SetString(
	"21888242871839275222246405745257275088548364400416034343698204186575808495617", 10)

// encodeConst renders a constant integer value as Push's little-endian
// byte payload for the given scalar type, two's-complementing signed
// integers to their declared bit-length.
func encodeConst(v *big.Int, t semantic.Type) []byte {
	switch tt := t.(type) {
	case semantic.BoolType:
		if v.Sign() != 0 {
			return []byte{1}
		}

		return []byte{0}
	case semantic.IntType:
		n := new(big.Int).Set(v)

		if tt.Signed && n.Sign() < 0 {
			mod := new(big.Int).Lsh(big.NewInt(1), uint(tt.Bits))
			n.Add(n, mod)
		}

		return leBytes(n, (tt.Bits+7)/8)
	case semantic.FieldType:
		n := new(big.Int).Mod(v, bn254Modulus)
		return leBytes(n, 32)
	case *semantic.EnumType:
		return leBytes(v, 8)
	default:
		return leBytes(v, 8)
	}
}

// encodeUint is a convenience wrapper over encodeConst for small unsigned
// constants the emitter itself materialises (e.g. the storage write-back
// slot index), sized to byteLen bytes.
func encodeUint(v uint64, byteLen int) []byte {
	return leBytes(new(big.Int).SetUint64(v), byteLen)
}

func bigFromInt64(v int64) *big.Int {
	return big.NewInt(v)
}

func leBytes(n *big.Int, size int) []byte {
	be := n.Bytes()
	out := make([]byte, size)

	for i := 0; i < len(be) && i < size; i++ {
		out[i] = be[len(be)-1-i]
	}

	return out
}
