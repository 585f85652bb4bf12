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
	"reflect"
	"testing"

	"github.com/zinc-lang/zinc/pkg/semantic"
)

// buildSampleProgram mirrors S1 (§8): `fn main(a: u8, b: u8) -> u8 { a + b }`.
func buildSampleProgram() *Program {
	u8 := semantic.IntType{Signed: false, Bits: 8}
	input := semantic.TupleType{Elems: []semantic.Type{u8, u8}}
	p := NewProgram(input, u8, 0)

	p.Instructions = []Instruction{
		&Load{Addr: 0, Size: 1},
		&Load{Addr: 1, Size: 1},
		&Add{Type: u8},
		&Exit{Outs: 1},
	}
	p.Header.UnitTests = []UnitTest{{Name: "main", Address: 0, ShouldPanic: false, Ignored: false}}

	return p
}

func TestProgram_BinaryRoundTrip(t *testing.T) {
	p := buildSampleProgram()

	data, err := p.MarshalBinary()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var got Program
	if err := got.UnmarshalBinary(data); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if !reflect.DeepEqual(p.Header, got.Header) {
		t.Fatalf("header mismatch:\n got %#v\nwant %#v", got.Header, p.Header)
	}

	if len(got.Instructions) != len(p.Instructions) {
		t.Fatalf("instruction count mismatch: got %d want %d", len(got.Instructions), len(p.Instructions))
	}

	for i := range p.Instructions {
		if !reflect.DeepEqual(p.Instructions[i], got.Instructions[i]) {
			t.Errorf("instruction %d mismatch:\n got %#v\nwant %#v", i, got.Instructions[i], p.Instructions[i])
		}
	}
}

func TestProgram_BinaryRoundTrip_Deterministic(t *testing.T) {
	p := buildSampleProgram()

	a, err := p.MarshalBinary()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	b, err := p.MarshalBinary()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	if !reflect.DeepEqual(a, b) {
		t.Fatalf("encoding the same program twice produced different bytes")
	}
}

func TestProgram_StripDebug(t *testing.T) {
	p := buildSampleProgram()
	p.Instructions = append([]Instruction{
		&FileMarker{File: "main.zn"},
		&LineMarker{Line: 1},
	}, p.Instructions...)

	stripped := p.StripDebug()

	for _, instr := range stripped.Instructions {
		if instr.IsDebug() {
			t.Fatalf("StripDebug left a debug instruction: %s", instr)
		}
	}

	if len(stripped.Instructions) != len(p.Instructions)-2 {
		t.Fatalf("expected 2 debug instructions removed, got %d -> %d",
			len(p.Instructions), len(stripped.Instructions))
	}
}

func TestProgram_MarshalJSON(t *testing.T) {
	p := buildSampleProgram()

	data, err := p.MarshalJSON()
	if err != nil {
		t.Fatalf("marshal json: %v", err)
	}

	if len(data) == 0 {
		t.Fatal("expected non-empty JSON output")
	}
}
