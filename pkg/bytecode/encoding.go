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
package bytecode

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/zinc-lang/zinc/pkg/semantic"
)

// writer is a small self-describing binary cursor shared by every
// instruction's encoding, matching the "structured binary (tagged union)
// plus a compact operand encoding" contract of §4.5.
type writer struct{ buf bytes.Buffer }

func (w *writer) u8(v uint8)   { w.buf.WriteByte(v) }
func (w *writer) bytes(b []byte) {
	w.uvarint(uint64(len(b)))
	w.buf.Write(b)
}
func (w *writer) str(s string) { w.bytes([]byte(s)) }

func (w *writer) uvarint(v uint64) {
	var tmp [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(tmp[:], v)
	w.buf.Write(tmp[:n])
}

func (w *writer) varint(v int64) {
	var tmp [binary.MaxVarintLen64]byte
	n := binary.PutVarint(tmp[:], v)
	w.buf.Write(tmp[:n])
}

func (w *writer) bool(v bool) {
	if v {
		w.u8(1)
	} else {
		w.u8(0)
	}
}

type reader struct {
	buf *bytes.Reader
}

func newReader(b []byte) *reader { return &reader{bytes.NewReader(b)} }

func (r *reader) u8() (uint8, error) { return r.buf.ReadByte() }

func (r *reader) uvarint() (uint64, error) {
	return binary.ReadUvarint(r.buf)
}

func (r *reader) varint() (int64, error) {
	return binary.ReadVarint(r.buf)
}

func (r *reader) bytes() ([]byte, error) {
	n, err := r.uvarint()
	if err != nil {
		return nil, err
	}

	out := make([]byte, n)
	if _, err := r.buf.Read(out); err != nil {
		return nil, err
	}

	return out, nil
}

func (r *reader) str() (string, error) {
	b, err := r.bytes()
	return string(b), err
}

func (r *reader) bool() (bool, error) {
	v, err := r.u8()
	return v == 1, err
}

func (r *reader) int_() (int, error) {
	v, err := r.varint()
	return int(v), err
}

func (w *writer) int_(v int) { w.varint(int64(v)) }

// Type tag discriminants for the compact type encoding below. Kept local to
// the binary format; unrelated to Opcode.
const (
	typeTagBool uint8 = iota
	typeTagInt
	typeTagField
	typeTagUnit
	typeTagArray
	typeTagTuple
	typeTagStruct
	typeTagEnum
	typeTagContract
)

func encodeType(w *writer, t semantic.Type) error {
	switch t := t.(type) {
	case semantic.BoolType:
		w.u8(typeTagBool)
	case semantic.IntType:
		w.u8(typeTagInt)
		w.bool(t.Signed)
		w.int_(t.Bits)
	case semantic.FieldType:
		w.u8(typeTagField)
	case semantic.UnitType:
		w.u8(typeTagUnit)
	case semantic.ArrayType:
		w.u8(typeTagArray)
		w.int_(t.Len)

		return encodeType(w, t.Elem)
	case semantic.TupleType:
		w.u8(typeTagTuple)
		w.int_(len(t.Elems))

		for _, e := range t.Elems {
			if err := encodeType(w, e); err != nil {
				return err
			}
		}
	case *semantic.StructType:
		w.u8(typeTagStruct)
		w.str(t.Name)
		w.int_(len(t.Fields))

		for _, f := range t.Fields {
			w.str(f.Name)

			if err := encodeType(w, f.Type); err != nil {
				return err
			}
		}
	case *semantic.EnumType:
		w.u8(typeTagEnum)
		w.str(t.Name)
		w.int_(len(t.Variants))

		for _, v := range t.Variants {
			w.str(v.Name)
			w.varint(v.Value)
		}
	case *semantic.ContractType:
		w.u8(typeTagContract)
		w.str(t.Name)
		w.int_(len(t.Fields))

		for _, f := range t.Fields {
			w.str(f.Name)

			if err := encodeType(w, f.Type); err != nil {
				return err
			}
		}
	default:
		return fmt.Errorf("bytecode: type %T has no binary encoding", t)
	}

	return nil
}

func decodeTypeList(r *reader, n int) ([]semantic.Type, error) {
	types := make([]semantic.Type, n)

	for i := range types {
		t, err := decodeType(r)
		if err != nil {
			return nil, err
		}

		types[i] = t
	}

	return types, nil
}

func decodeType(r *reader) (semantic.Type, error) {
	tag, err := r.u8()
	if err != nil {
		return nil, err
	}

	switch tag {
	case typeTagBool:
		return semantic.BoolType{}, nil
	case typeTagInt:
		signed, err := r.bool()
		if err != nil {
			return nil, err
		}

		bits, err := r.int_()

		return semantic.IntType{Signed: signed, Bits: bits}, err
	case typeTagField:
		return semantic.FieldType{}, nil
	case typeTagUnit:
		return semantic.UnitType{}, nil
	case typeTagArray:
		n, err := r.int_()
		if err != nil {
			return nil, err
		}

		elem, err := decodeType(r)
		if err != nil {
			return nil, err
		}

		return semantic.ArrayType{Elem: elem, Len: n}, nil
	case typeTagTuple:
		n, err := r.int_()
		if err != nil {
			return nil, err
		}

		elems := make([]semantic.Type, n)

		for i := range elems {
			elems[i], err = decodeType(r)
			if err != nil {
				return nil, err
			}
		}

		return semantic.TupleType{Elems: elems}, nil
	case typeTagStruct:
		name, err := r.str()
		if err != nil {
			return nil, err
		}

		n, err := r.int_()
		if err != nil {
			return nil, err
		}

		fields := make([]semantic.StructField, n)

		for i := range fields {
			fname, err := r.str()
			if err != nil {
				return nil, err
			}

			ftype, err := decodeType(r)
			if err != nil {
				return nil, err
			}

			fields[i] = semantic.StructField{Name: fname, Type: ftype}
		}

		return &semantic.StructType{Name: name, Fields: fields}, nil
	case typeTagEnum:
		name, err := r.str()
		if err != nil {
			return nil, err
		}

		n, err := r.int_()
		if err != nil {
			return nil, err
		}

		variants := make([]semantic.EnumVariant, n)

		for i := range variants {
			vname, err := r.str()
			if err != nil {
				return nil, err
			}

			val, err := r.varint()
			if err != nil {
				return nil, err
			}

			variants[i] = semantic.EnumVariant{Name: vname, Value: val}
		}

		return &semantic.EnumType{Name: name, Variants: variants}, nil
	case typeTagContract:
		name, err := r.str()
		if err != nil {
			return nil, err
		}

		n, err := r.int_()
		if err != nil {
			return nil, err
		}

		fields := make([]semantic.StructField, n)

		for i := range fields {
			fname, err := r.str()
			if err != nil {
				return nil, err
			}

			ftype, err := decodeType(r)
			if err != nil {
				return nil, err
			}

			fields[i] = semantic.StructField{Name: fname, Type: ftype}
		}

		return &semantic.ContractType{Name: name, Fields: fields}, nil
	default:
		return nil, fmt.Errorf("bytecode: unknown type tag %d", tag)
	}
}
