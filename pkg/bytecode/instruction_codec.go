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

import "fmt"

// encodeInstruction appends one instruction's tag+operands to w. Producing
// the same instructions twice must yield byte-identical output (§4.5),
// which holds here since every field is written in declaration order with
// no map iteration.
func encodeInstruction(w *writer, instr Instruction) error {
	w.u8(uint8(instr.Opcode()))

	switch ins := instr.(type) {
	case *Push:
		w.bytes(ins.Value)

		return encodeType(w, ins.Type)
	case *Pop:
	case *Copy:
		w.int_(ins.Offset)
	case *Load:
		w.int_(ins.Addr)
		w.int_(ins.Size)
	case *LoadByIndex:
		w.int_(ins.Addr)
		w.int_(ins.Elem)
		w.int_(ins.Total)
	case *Store:
		w.int_(ins.Addr)
		w.int_(ins.Size)
	case *StoreByIndex:
		w.int_(ins.Addr)
		w.int_(ins.Elem)
		w.int_(ins.Total)
	case *Slice:
		w.int_(ins.Total)
		w.int_(ins.Offset)
		w.int_(ins.Size)
	case *Add:
		return encodeType(w, ins.Type)
	case *Sub:
		return encodeType(w, ins.Type)
	case *Mul:
		return encodeType(w, ins.Type)
	case *Div:
		return encodeType(w, ins.Type)
	case *Rem:
		return encodeType(w, ins.Type)
	case *Neg:
		return encodeType(w, ins.Type)
	case *Eq:
		return encodeType(w, ins.Type)
	case *Ne:
		return encodeType(w, ins.Type)
	case *Lt:
		return encodeType(w, ins.Type)
	case *Le:
		return encodeType(w, ins.Type)
	case *Gt:
		return encodeType(w, ins.Type)
	case *Ge:
		return encodeType(w, ins.Type)
	case *And:
	case *Or:
	case *Xor:
	case *Not:
	case *BitwiseAnd:
		return encodeType(w, ins.Type)
	case *BitwiseOr:
		return encodeType(w, ins.Type)
	case *BitwiseXor:
		return encodeType(w, ins.Type)
	case *BitwiseNot:
		return encodeType(w, ins.Type)
	case *BitwiseShiftLeft:
		w.int_(ins.Amount)

		return encodeType(w, ins.Type)
	case *BitwiseShiftRight:
		w.int_(ins.Amount)

		return encodeType(w, ins.Type)
	case *Cast:
		if err := encodeType(w, ins.From); err != nil {
			return err
		}

		return encodeType(w, ins.Target)
	case *If:
	case *Else:
	case *EndIf:
	case *LoopBegin:
		w.int_(ins.Iterations)
		w.int_(ins.BodyLen)
		w.int_(ins.IndexAddr)
	case *LoopEnd:
	case *Call:
		w.int_(ins.Addr)
		w.int_(ins.Args)
		w.str(ins.Name)
	case *Return:
		w.int_(ins.Outs)
	case *Exit:
		w.int_(ins.Outs)
	case *StorageInit:
		w.int_(ins.FieldCount)
	case *StorageFetch:
	case *StorageLoad:
		w.int_(ins.Size)
	case *StorageStore:
		w.int_(ins.Size)
	case *SetUnconstrained:
	case *UnsetUnconstrained:
	case *Dbg:
		w.str(ins.Format)
		w.int_(len(ins.Types))

		for _, t := range ins.Types {
			if err := encodeType(w, t); err != nil {
				return err
			}
		}
	case *Assert:
		w.str(ins.Message)
	case *FileMarker:
		w.str(ins.File)
	case *FunctionMarker:
		w.str(ins.Name)
	case *LineMarker:
		w.int_(ins.Line)
	case *ColumnMarker:
		w.int_(ins.Column)
	case *NoOperation:
	default:
		return fmt.Errorf("bytecode: instruction %T has no binary encoding", instr)
	}

	return nil
}

//nolint:gocyclo // exhaustive tagged-union decoder; one case per opcode, no default permitted (§4.5).
func decodeInstruction(r *reader) (Instruction, error) {
	tag, err := r.u8()
	if err != nil {
		return nil, err
	}

	op := Opcode(tag)

	switch op {
	case OpPush:
		val, err := r.bytes()
		if err != nil {
			return nil, err
		}

		typ, err := decodeType(r)

		return &Push{Value: val, Type: typ}, err
	case OpPop:
		return &Pop{}, nil
	case OpCopy:
		off, err := r.int_()
		return &Copy{Offset: off}, err
	case OpLoad:
		addr, err := r.int_()
		if err != nil {
			return nil, err
		}

		size, err := r.int_()

		return &Load{Addr: addr, Size: size}, err
	case OpLoadByIndex:
		addr, err := r.int_()
		if err != nil {
			return nil, err
		}

		elem, err := r.int_()
		if err != nil {
			return nil, err
		}

		total, err := r.int_()

		return &LoadByIndex{Addr: addr, Elem: elem, Total: total}, err
	case OpStore:
		addr, err := r.int_()
		if err != nil {
			return nil, err
		}

		size, err := r.int_()

		return &Store{Addr: addr, Size: size}, err
	case OpStoreByIndex:
		addr, err := r.int_()
		if err != nil {
			return nil, err
		}

		elem, err := r.int_()
		if err != nil {
			return nil, err
		}

		total, err := r.int_()

		return &StoreByIndex{Addr: addr, Elem: elem, Total: total}, err
	case OpSlice:
		total, err := r.int_()
		if err != nil {
			return nil, err
		}

		offset, err := r.int_()
		if err != nil {
			return nil, err
		}

		size, err := r.int_()

		return &Slice{Total: total, Offset: offset, Size: size}, err
	case OpAdd:
		t, err := decodeType(r)
		return &Add{Type: t}, err
	case OpSub:
		t, err := decodeType(r)
		return &Sub{Type: t}, err
	case OpMul:
		t, err := decodeType(r)
		return &Mul{Type: t}, err
	case OpDiv:
		t, err := decodeType(r)
		return &Div{Type: t}, err
	case OpRem:
		t, err := decodeType(r)
		return &Rem{Type: t}, err
	case OpNeg:
		t, err := decodeType(r)
		return &Neg{Type: t}, err
	case OpEq:
		t, err := decodeType(r)
		return &Eq{Type: t}, err
	case OpNe:
		t, err := decodeType(r)
		return &Ne{Type: t}, err
	case OpLt:
		t, err := decodeType(r)
		return &Lt{Type: t}, err
	case OpLe:
		t, err := decodeType(r)
		return &Le{Type: t}, err
	case OpGt:
		t, err := decodeType(r)
		return &Gt{Type: t}, err
	case OpGe:
		t, err := decodeType(r)
		return &Ge{Type: t}, err
	case OpAnd:
		return &And{}, nil
	case OpOr:
		return &Or{}, nil
	case OpXor:
		return &Xor{}, nil
	case OpNot:
		return &Not{}, nil
	case OpBitwiseAnd:
		t, err := decodeType(r)
		return &BitwiseAnd{Type: t}, err
	case OpBitwiseOr:
		t, err := decodeType(r)
		return &BitwiseOr{Type: t}, err
	case OpBitwiseXor:
		t, err := decodeType(r)
		return &BitwiseXor{Type: t}, err
	case OpBitwiseNot:
		t, err := decodeType(r)
		return &BitwiseNot{Type: t}, err
	case OpBitwiseShiftLeft:
		amt, err := r.int_()
		if err != nil {
			return nil, err
		}

		t, err := decodeType(r)

		return &BitwiseShiftLeft{Amount: amt, Type: t}, err
	case OpBitwiseShiftRight:
		amt, err := r.int_()
		if err != nil {
			return nil, err
		}

		t, err := decodeType(r)

		return &BitwiseShiftRight{Amount: amt, Type: t}, err
	case OpCast:
		from, err := decodeType(r)
		if err != nil {
			return nil, err
		}

		to, err := decodeType(r)

		return &Cast{From: from, Target: to}, err
	case OpIf:
		return &If{}, nil
	case OpElse:
		return &Else{}, nil
	case OpEndIf:
		return &EndIf{}, nil
	case OpLoopBegin:
		iters, err := r.int_()
		if err != nil {
			return nil, err
		}

		bodyLen, err := r.int_()
		if err != nil {
			return nil, err
		}

		idxAddr, err := r.int_()

		return &LoopBegin{Iterations: iters, BodyLen: bodyLen, IndexAddr: idxAddr}, err
	case OpLoopEnd:
		return &LoopEnd{}, nil
	case OpCall:
		addr, err := r.int_()
		if err != nil {
			return nil, err
		}

		args, err := r.int_()
		if err != nil {
			return nil, err
		}

		name, err := r.str()

		return &Call{Addr: addr, Args: args, Name: name}, err
	case OpReturn:
		outs, err := r.int_()
		return &Return{Outs: outs}, err
	case OpExit:
		outs, err := r.int_()
		return &Exit{Outs: outs}, err
	case OpStorageInit:
		n, err := r.int_()
		return &StorageInit{FieldCount: n}, err
	case OpStorageFetch:
		return &StorageFetch{}, nil
	case OpStorageLoad:
		size, err := r.int_()
		return &StorageLoad{Size: size}, err
	case OpStorageStore:
		size, err := r.int_()
		return &StorageStore{Size: size}, err
	case OpSetUnconstrained:
		return &SetUnconstrained{}, nil
	case OpUnsetUnconstrained:
		return &UnsetUnconstrained{}, nil
	case OpDbg:
		format, err := r.str()
		if err != nil {
			return nil, err
		}

		n, err := r.int_()
		if err != nil {
			return nil, err
		}

		typs, err := decodeTypeList(r, n)

		return &Dbg{Format: format, Types: typs}, err
	case OpAssert:
		msg, err := r.str()
		return &Assert{Message: msg}, err
	case OpFileMarker:
		f, err := r.str()
		return &FileMarker{File: f}, err
	case OpFunctionMarker:
		n, err := r.str()
		return &FunctionMarker{Name: n}, err
	case OpLineMarker:
		l, err := r.int_()
		return &LineMarker{Line: l}, err
	case OpColumnMarker:
		c, err := r.int_()
		return &ColumnMarker{Column: c}, err
	case OpNoOperation:
		return &NoOperation{}, nil
	default:
		return nil, fmt.Errorf("bytecode: unknown opcode %d", tag)
	}
}
