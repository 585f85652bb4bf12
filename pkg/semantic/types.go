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

// Package semantic implements the two-pass Zinc semantic analyser: name
// resolution, type checking, integer inference, casting, constant folding,
// pattern exhaustiveness, method desugaring, and attribute handling.
package semantic

import (
	"fmt"
	"strings"
)

// MaxBits is the widest integer bit-length representable below the field
// itself (248), per the scalar-type contract.
const MaxBits = 248

// FieldBits is the (approximate) bit-width of the BN254 scalar field,
// used only for diagnostics; field arithmetic does not range-check.
const FieldBits = 254

// Type is the tagged union of Zinc's scalar and composite types. Two
// scalar types are equal iff their tag and bit-length agree (see Equal).
type Type interface {
	typeNode()
	// String renders the type for diagnostics, matching source spelling
	// where one exists (e.g. "u8", "[field; 4]").
	String() string
	// Size returns this type's size in field cells; panics for
	// non-instantiatable types (range, function, module).
	Size() int
	// Instantiatable reports whether a variable may be declared at this
	// type (false for range, function, and module "types").
	Instantiatable() bool
}

// BoolType is `bool`.
type BoolType struct{}

func (BoolType) typeNode()             {}
func (BoolType) String() string        { return "bool" }
func (BoolType) Size() int             { return 1 }
func (BoolType) Instantiatable() bool   { return true }

// IntType is a signed or unsigned integer with a fixed bit-length.
type IntType struct {
	Signed bool
	Bits   int
}

func (IntType) typeNode() {}

func (t IntType) String() string {
	if t.Signed {
		return fmt.Sprintf("i%d", t.Bits)
	}

	return fmt.Sprintf("u%d", t.Bits)
}

func (IntType) Size() int             { return 1 }
func (IntType) Instantiatable() bool   { return true }

// FieldType is `field`, the full BN254 scalar field.
type FieldType struct{}

func (FieldType) typeNode()             {}
func (FieldType) String() string        { return "field" }
func (FieldType) Size() int             { return 1 }
func (FieldType) Instantiatable() bool   { return true }

// UnitType is `()`.
type UnitType struct{}

func (UnitType) typeNode()             {}
func (UnitType) String() string        { return "()" }
func (UnitType) Size() int             { return 0 }
func (UnitType) Instantiatable() bool   { return true }

// ArrayType is `[Elem; Len]` with a constant length.
type ArrayType struct {
	Elem Type
	Len  int
}

func (ArrayType) typeNode() {}

func (t ArrayType) String() string {
	return fmt.Sprintf("[%s; %d]", t.Elem, t.Len)
}

func (t ArrayType) Size() int           { return t.Elem.Size() * t.Len }
func (ArrayType) Instantiatable() bool   { return true }

// TupleType is `(T1, T2, …)`; zero elements is the unit type.
type TupleType struct {
	Elems []Type
}

func (TupleType) typeNode() {}

func (t TupleType) String() string {
	parts := make([]string, len(t.Elems))
	for i, e := range t.Elems {
		parts[i] = e.String()
	}

	return "(" + strings.Join(parts, ", ") + ")"
}

func (t TupleType) Size() int {
	total := 0
	for _, e := range t.Elems {
		total += e.Size()
	}

	return total
}

func (TupleType) Instantiatable() bool { return true }

// StructField is one named, ordered field of a structure or contract type.
type StructField struct {
	Name string
	Type Type
}

// StructType is an ordered named-field structure.
type StructType struct {
	Name   string
	Fields []StructField
}

func (*StructType) typeNode()      {}
func (t *StructType) String() string { return t.Name }

func (t *StructType) Size() int {
	total := 0
	for _, f := range t.Fields {
		total += f.Type.Size()
	}

	return total
}

func (*StructType) Instantiatable() bool { return true }

// Offset returns the cell offset and size of a named field, and whether it
// exists.
func (t *StructType) Offset(name string) (offset, size int, ok bool) {
	for _, f := range t.Fields {
		if f.Name == name {
			return offset, f.Type.Size(), true
		}

		offset += f.Type.Size()
	}

	return 0, 0, false
}

// EnumVariant is one named, valued member of an enumeration.
type EnumVariant struct {
	Name  string
	Value int64
}

// EnumType is a named integer enumeration; every variant's value is
// mutually distinct (enforced at declaration time, see errors.go).
// Enumerations occupy a single cell, holding the active variant's integer
// value.
type EnumType struct {
	Name     string
	Variants []EnumVariant
}

func (*EnumType) typeNode()      {}
func (t *EnumType) String() string { return t.Name }
func (*EnumType) Size() int        { return 1 }
func (*EnumType) Instantiatable() bool { return true }

// Variant looks up a variant by name.
func (t *EnumType) Variant(name string) (EnumVariant, bool) {
	for _, v := range t.Variants {
		if v.Name == name {
			return v, true
		}
	}

	return EnumVariant{}, false
}

// RangeType is the (non-instantiatable) type of a `for`-loop range
// expression.
type RangeType struct {
	Elem      Type
	Inclusive bool
}

func (RangeType) typeNode() {}

func (t RangeType) String() string {
	if t.Inclusive {
		return fmt.Sprintf("RangeInclusive<%s>", t.Elem)
	}

	return fmt.Sprintf("Range<%s>", t.Elem)
}

func (RangeType) Size() int           { panic("range is not instantiatable") }
func (RangeType) Instantiatable() bool { return false }

// FunctionType is the (non-instantiatable) type of a function value.
type FunctionType struct {
	Params []Type
	Result Type
}

func (*FunctionType) typeNode() {}

func (t *FunctionType) String() string {
	parts := make([]string, len(t.Params))
	for i, p := range t.Params {
		parts[i] = p.String()
	}

	return fmt.Sprintf("fn(%s) -> %s", strings.Join(parts, ", "), t.Result)
}

func (*FunctionType) Size() int           { panic("function is not instantiatable") }
func (*FunctionType) Instantiatable() bool { return false }

// ModuleType is the (non-instantiatable) type of a module namespace.
type ModuleType struct {
	Name string
}

func (*ModuleType) typeNode()        {}
func (t *ModuleType) String() string { return "mod " + t.Name }
func (*ModuleType) Size() int           { panic("module is not instantiatable") }
func (*ModuleType) Instantiatable() bool { return false }

// ContractType is a contract's storage layout: a named, ordered collection
// of fields with an implicit `address` field and a `balances` array
// prepended. Since the core has no persistent on-chain storage
// collaborator, `balances` is modelled as a single-entry array (the
// contract's own balance) — see DESIGN.md.
type ContractType struct {
	Name   string
	Fields []StructField
}

func (*ContractType) typeNode() {}
func (t *ContractType) String() string { return t.Name }

func (t *ContractType) Size() int {
	total := FieldType{}.Size() + ArrayType{FieldType{}, 1}.Size()
	for _, f := range t.Fields {
		total += f.Type.Size()
	}

	return total
}

func (*ContractType) Instantiatable() bool { return true }

// Offset returns the cell offset and size of a named storage field
// (accounting for the implicit `address` and `balances` prefix), and
// whether it exists.
func (t *ContractType) Offset(name string) (offset, size int, ok bool) {
	offset = FieldType{}.Size() + ArrayType{FieldType{}, 1}.Size()

	for _, f := range t.Fields {
		if f.Name == name {
			return offset, f.Type.Size(), true
		}

		offset += f.Type.Size()
	}

	return 0, 0, false
}

// Equal reports whether two scalar or composite types are structurally
// identical — the only notion of type equality the analyser uses (there is
// no subtyping, and structs/enums compare by declared identity via Name).
func Equal(a, b Type) bool {
	switch a := a.(type) {
	case BoolType:
		_, ok := b.(BoolType)
		return ok
	case IntType:
		ib, ok := b.(IntType)
		return ok && a.Signed == ib.Signed && a.Bits == ib.Bits
	case FieldType:
		_, ok := b.(FieldType)
		return ok
	case UnitType:
		_, ok := b.(UnitType)
		return ok
	case ArrayType:
		ab, ok := b.(ArrayType)
		return ok && a.Len == ab.Len && Equal(a.Elem, ab.Elem)
	case TupleType:
		tb, ok := b.(TupleType)
		if !ok || len(a.Elems) != len(tb.Elems) {
			return false
		}

		for i := range a.Elems {
			if !Equal(a.Elems[i], tb.Elems[i]) {
				return false
			}
		}

		return true
	case *StructType:
		sb, ok := b.(*StructType)
		return ok && a.Name == sb.Name
	case *EnumType:
		eb, ok := b.(*EnumType)
		return ok && a.Name == eb.Name
	case *ContractType:
		cb, ok := b.(*ContractType)
		return ok && a.Name == cb.Name
	case *ModuleType:
		mb, ok := b.(*ModuleType)
		return ok && a.Name == mb.Name
	default:
		return false
	}
}

// IsScalar reports whether t is bool, an integer, or field.
func IsScalar(t Type) bool {
	switch t.(type) {
	case BoolType, IntType, FieldType:
		return true
	default:
		return false
	}
}

// IsInteger reports whether t is a signed or unsigned integer type.
func IsInteger(t Type) bool {
	_, ok := t.(IntType)
	return ok
}
