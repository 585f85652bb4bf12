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
package cs

import (
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// Modulus is the BN254 scalar field's prime, exported so callers outside
// this package (the VM's scalar model) can reduce logical integer values
// the same way gnark-crypto's fr.Element does internally.
var Modulus = fr.Modulus()

// FromBigInt reduces n modulo the field prime and returns the element,
// correctly handling negative n (two's-complement-free: field values have
// no sign, so -1 becomes Modulus-1).
func FromBigInt(n *big.Int) fr.Element {
	var e fr.Element
	e.SetBigInt(reduceSigned(n))

	return e
}

// ToBigInt returns e's canonical non-negative representative in [0, Modulus).
func ToBigInt(e fr.Element) *big.Int {
	var out big.Int
	e.BigInt(&out)

	return &out
}

// reduceSigned reduces a possibly-negative big.Int into [0, Modulus).
func reduceSigned(n *big.Int) *big.Int {
	r := new(big.Int).Mod(n, Modulus)
	if r.Sign() < 0 {
		r.Add(r, Modulus)
	}

	return r
}
