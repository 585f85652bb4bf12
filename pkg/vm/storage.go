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

import "github.com/zinc-lang/zinc/pkg/vm/gadgets"

// Storage is the in-memory default backend for the contract-storage
// instruction family (StorageInit/Fetch/Load/Store) — the "out-of-scope
// collaborator" interface the specification defers to an external
// persistence layer (e.g. a ledger) in a real deployment. A single active
// instance's record is held flat, sized at StorageInit and addressed the
// same way the data stack is.
type Storage struct {
	cells []gadgets.Scalar
}

// NewStorage allocates a zero-valued record of the given cell width.
func NewStorage(size int) *Storage {
	s := &Storage{cells: make([]gadgets.Scalar, size)}
	for i := range s.cells {
		s.cells[i] = gadgets.Const(zeroInt())
	}

	return s
}

// Fetch returns a copy of the entire current record.
func (s *Storage) Fetch() []gadgets.Scalar {
	out := make([]gadgets.Scalar, len(s.cells))
	copy(out, s.cells)

	return out
}

// Load reads size cells starting at idx.
func (s *Storage) Load(idx, size int) ([]gadgets.Scalar, error) {
	if idx < 0 || size < 0 || idx+size > len(s.cells) {
		return nil, newError(ErrIndexOutOfBounds, 0, "storage_load %d..%d (size %d)", idx, idx+size, len(s.cells))
	}

	out := make([]gadgets.Scalar, size)
	copy(out, s.cells[idx:idx+size])

	return out, nil
}

// Store writes vals starting at idx.
func (s *Storage) Store(idx int, vals []gadgets.Scalar) error {
	if idx < 0 || idx+len(vals) > len(s.cells) {
		return newError(ErrIndexOutOfBounds, 0, "storage_store %d..%d (size %d)", idx, idx+len(vals), len(s.cells))
	}

	copy(s.cells[idx:idx+len(vals)], vals)

	return nil
}
