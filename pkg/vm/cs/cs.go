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

// Package cs builds an R1CS-shaped constraint system over the BN254 scalar
// field while the VM executes a program: every allocated value is a witness
// variable, and every gadget (in pkg/vm/gadgets) that needs a non-trivial
// operation enforces its semantics with one or more `(A·x)(B·x) = (C·x)`
// rows rather than trusting the Go-level arithmetic that computed them.
package cs

import (
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"go.uber.org/zap"
)

// VarID indexes a witness value held by a Builder. NoVar marks a linear
// combination term as a plain field constant with no associated witness.
type VarID int

// NoVar is the sentinel VarID for constant terms.
const NoVar VarID = -1

// Term is one coefficient·variable summand of a LinearCombination.
type Term struct {
	Coeff fr.Element
	Var   VarID
}

// LinearCombination is a sum of Terms: Σ Coeff_i · (witness[Var_i] or 1).
type LinearCombination []Term

// Const builds a single-term constant linear combination.
func Const(v fr.Element) LinearCombination {
	return LinearCombination{{Coeff: v, Var: NoVar}}
}

// ConstUint builds a constant linear combination from a small unsigned value.
func ConstUint(v uint64) LinearCombination {
	var e fr.Element
	e.SetUint64(v)
	return Const(e)
}

// Var builds the linear combination `1·witness[id]`.
func Var(id VarID) LinearCombination {
	var one fr.Element
	one.SetOne()
	return LinearCombination{{Coeff: one, Var: id}}
}

// Scaled returns lc with every coefficient multiplied by k.
func (lc LinearCombination) Scaled(k fr.Element) LinearCombination {
	out := make(LinearCombination, len(lc))

	for i, t := range lc {
		var c fr.Element
		c.Mul(&t.Coeff, &k)
		out[i] = Term{Coeff: c, Var: t.Var}
	}

	return out
}

// Plus concatenates the terms of lc and other into a single combination.
func (lc LinearCombination) Plus(other LinearCombination) LinearCombination {
	out := make(LinearCombination, 0, len(lc)+len(other))
	out = append(out, lc...)
	out = append(out, other...)

	return out
}

// Constraint is one recorded `A·B = C` row, kept for Setup's shape summary
// and for diagnostics; Label names the gadget that emitted it.
type Constraint struct {
	A, B, C LinearCombination
	Label   string
}

// state is the mutable store shared by a Builder and every Builder derived
// from it via Namespace, so nested namespaces see the same witness/rows.
type state struct {
	values      []fr.Element
	public      []bool
	constraints []Constraint
}

// Builder accumulates witness variables and constraints as the VM executes.
// With Track false (run mode) it is a no-op bookkeeper: Allocate still
// returns usable VarIDs (so gadget code does not need a separate code path)
// but Enforce never records or checks anything, so run mode pays none of
// the constraint-system cost.
type Builder struct {
	st       *state
	Track    bool
	CheckSat bool
	logger   *zap.Logger
}

// NewBuilder constructs a root Builder. track enables constraint recording;
// checkSat additionally evaluates every constraint against the current
// witness and reports the first violated one (prove mode only — setup mode
// records shape without claiming the witness is real). logger may be nil.
func NewBuilder(track, checkSat bool, logger *zap.Logger) *Builder {
	return &Builder{st: &state{}, Track: track, CheckSat: checkSat, logger: logger}
}

// Namespace returns a Builder sharing this one's witness/constraint store
// but logging under a nested name, for per-call/per-loop constraint tracing.
func (b *Builder) Namespace(name string) *Builder {
	nb := *b
	if b.logger != nil {
		nb.logger = b.logger.Named(name)
	}

	return &nb
}

// Allocate records a fresh private witness variable with value v.
func (b *Builder) Allocate(v fr.Element) VarID {
	b.st.values = append(b.st.values, v)
	b.st.public = append(b.st.public, false)
	id := VarID(len(b.st.values) - 1)

	if b.logger != nil {
		b.logger.Debug("allocate", zap.Int("var", int(id)))
	}

	return id
}

// AllocatePublic records a fresh public (input/output) witness variable.
func (b *Builder) AllocatePublic(v fr.Element) VarID {
	id := b.Allocate(v)
	b.st.public[id] = true

	return id
}

// Value returns the current witness value of id.
func (b *Builder) Value(id VarID) fr.Element {
	return b.st.values[id]
}

// NumVariables reports how many witness variables have been allocated.
func (b *Builder) NumVariables() int { return len(b.st.values) }

// NumConstraints reports how many rows have been recorded.
func (b *Builder) NumConstraints() int { return len(b.st.constraints) }

// Constraints returns the recorded rows (for setup-mode shape inspection).
func (b *Builder) Constraints() []Constraint { return b.st.constraints }

// Evaluate sums a linear combination's terms against the current witness.
func (b *Builder) Evaluate(lc LinearCombination) fr.Element {
	var sum fr.Element

	for _, t := range lc {
		if t.Var == NoVar {
			sum.Add(&sum, &t.Coeff)
			continue
		}

		var term fr.Element
		term.Mul(&t.Coeff, &b.st.values[t.Var])
		sum.Add(&sum, &term)
	}

	return sum
}

// Enforce records the row `a·b = c`. When CheckSat is set it also evaluates
// the row against the current witness and returns an error naming label if
// it does not hold — the "unsatisfied constraint" runtime error.
func (b *Builder) Enforce(a, bb, c LinearCombination, label string) error {
	if !b.Track {
		return nil
	}

	b.st.constraints = append(b.st.constraints, Constraint{A: a, B: bb, C: c, Label: label})

	if !b.CheckSat {
		return nil
	}

	lhs := b.Evaluate(a)
	rhs := b.Evaluate(bb)
	lhs.Mul(&lhs, &rhs)
	want := b.Evaluate(c)

	if !lhs.Equal(&want) {
		if b.logger != nil {
			b.logger.Warn("unsatisfied constraint", zap.String("label", label))
		}

		return fmt.Errorf("vm: unsatisfied constraint: %s", label)
	}

	return nil
}

// EnforceEqual is the common `a = b` special case of Enforce, recorded as
// `a·1 = b`.
func (b *Builder) EnforceEqual(a, bval LinearCombination, label string) error {
	return b.Enforce(a, ConstUint(1), bval, label)
}
