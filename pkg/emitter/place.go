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
	"fmt"

	"github.com/zinc-lang/zinc/pkg/semantic"
	"github.com/zinc-lang/zinc/pkg/syntax"
)

// place is an assignable (or addressable) data-stack location: either a
// fixed address (indexed == false) or a runtime-computed offset into a
// Total-sized aggregate based at Addr (indexed == true), matching the
// Load/Store vs LoadByIndex/StoreByIndex split in pkg/bytecode.
type place struct {
	addr    int
	size    int
	typ     semantic.Type
	indexed bool
	elem    int
	total   int
	index   syntax.Expr
}

// resolvePlace walks an lvalue-shaped expression (identifier, field,
// tuple-index, or array index chain, any nesting of the four) down to the
// fixed or runtime-indexed data-stack location it denotes.
func (c *funcCtx) resolvePlace(e syntax.Expr) (place, error) {
	switch ex := e.(type) {
	case *syntax.Identifier:
		v, ok := c.scope.resolve(ex.Name)
		if !ok {
			return place{}, fmt.Errorf("emitter: undeclared local %q", ex.Name)
		}

		return place{addr: v.addr, size: v.size, typ: v.typ}, nil
	case *syntax.FieldExpr:
		base, err := c.resolvePlace(ex.Base)
		if err != nil {
			return place{}, err
		}

		if base.indexed {
			return place{}, fmt.Errorf("emitter: field access on a runtime-indexed place is not supported")
		}

		offset, size, typ, err := fieldLayout(base.typ, ex.Field)
		if err != nil {
			return place{}, err
		}

		return place{addr: base.addr + offset, size: size, typ: typ}, nil
	case *syntax.TupleIndexExpr:
		base, err := c.resolvePlace(ex.Base)
		if err != nil {
			return place{}, err
		}

		if base.indexed {
			return place{}, fmt.Errorf("emitter: tuple index on a runtime-indexed place is not supported")
		}

		tt, ok := base.typ.(semantic.TupleType)
		if !ok || ex.Index < 0 || ex.Index >= len(tt.Elems) {
			return place{}, fmt.Errorf("emitter: invalid tuple index")
		}

		offset := 0
		for _, elem := range tt.Elems[:ex.Index] {
			offset += elem.Size()
		}

		return place{addr: base.addr + offset, size: tt.Elems[ex.Index].Size(), typ: tt.Elems[ex.Index]}, nil
	case *syntax.IndexExpr:
		base, err := c.resolvePlace(ex.Base)
		if err != nil {
			return place{}, err
		}

		if base.indexed {
			return place{}, fmt.Errorf("emitter: double runtime indexing is not supported")
		}

		at, ok := base.typ.(semantic.ArrayType)
		if !ok {
			return place{}, fmt.Errorf("emitter: cannot index into %s", base.typ)
		}

		if idx, err := c.em.evalConstInt(c.scope, ex.Index); err == nil {
			return place{
				addr: base.addr + int(idx)*at.Elem.Size(),
				size: at.Elem.Size(),
				typ:  at.Elem,
			}, nil
		}

		return place{
			addr:    base.addr,
			size:    at.Elem.Size(),
			typ:     at.Elem,
			indexed: true,
			elem:    at.Elem.Size(),
			total:   base.size,
			index:   ex.Index,
		}, nil
	default:
		return place{}, fmt.Errorf("emitter: expression is not an assignable place")
	}
}

func fieldLayout(base semantic.Type, field string) (offset, size int, typ semantic.Type, err error) {
	switch st := base.(type) {
	case *semantic.StructType:
		for _, f := range st.Fields {
			if f.Name == field {
				o, s, _ := st.Offset(field)
				return o, s, f.Type, nil
			}
		}
	case *semantic.ContractType:
		for _, f := range st.Fields {
			if f.Name == field {
				o, s, _ := st.Offset(field)
				return o, s, f.Type, nil
			}
		}
	}

	return 0, 0, nil, fmt.Errorf("emitter: unknown field %q", field)
}
