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

import "math/big"

// bn254Modulus is the BN254 (BN256) scalar field's prime modulus, matching
// the concrete field gnark-crypto's ecc/bn254/fr package implements. Kept
// here (rather than importing gnark-crypto into the analyser) so constant
// folding over `field` values can reduce modulo the same prime the VM
// ultimately uses, without this package depending on the VM's constraint
// system machinery.
var bn254Modulus, _ = new(big.Int).SetString(
	"21888242871839275222246405745257275088548364400416034343698204186575808495617", 10)

// minimalIntType computes the minimal (sign, bit-length) representing n,
// per §4.3(c): bit-length rounded up to the next multiple of 8, capped at
// MaxBits. Negative values are always signed; non-negative values prefer
// unsigned unless they require the sign bit of every candidate width (they
// never do, since unsigned always has one more usable bit at the same
// width) so non-negative literals infer as unsigned.
func minimalIntType(n *big.Int) (signed bool, bits int) {
	if n.Sign() < 0 {
		return minimalSignedType(n)
	}

	for w := 8; w <= MaxBits; w += 8 {
		bound := new(big.Int).Lsh(big.NewInt(1), uint(w))
		if n.Cmp(bound) < 0 {
			return false, w
		}
	}

	return false, MaxBits
}

func minimalSignedType(n *big.Int) (signed bool, bits int) {
	for w := 8; w <= MaxBits; w += 8 {
		half := new(big.Int).Lsh(big.NewInt(1), uint(w-1))
		neg := new(big.Int).Neg(half)

		if n.Cmp(neg) >= 0 && n.Cmp(half) < 0 {
			return true, w
		}
	}

	return true, MaxBits
}

// fitsType reports whether the constant n can be represented at the given
// target integer type without data loss.
func fitsType(n *big.Int, t IntType) bool {
	return checkOverflow(n, t) == nil
}
