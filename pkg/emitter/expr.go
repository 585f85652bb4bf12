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
	"math/big"
	"strings"

	"github.com/zinc-lang/zinc/pkg/bytecode"
	"github.com/zinc-lang/zinc/pkg/semantic"
	"github.com/zinc-lang/zinc/pkg/syntax"
)

// loadFrom pushes a place's current value onto the evaluation stack.
func (c *funcCtx) loadFrom(p place) error {
	if p.indexed {
		if err := c.emitExpr(p.index); err != nil {
			return err
		}

		c.emit(&bytecode.LoadByIndex{Addr: p.addr, Elem: p.elem, Total: p.total})

		return nil
	}

	c.emit(&bytecode.Load{Addr: p.addr, Size: p.size})

	return nil
}

// storeInto writes the value already sitting atop the evaluation stack into
// a place; for a runtime-indexed place the index is pushed (and consumed)
// after the value, matching loadFrom's push-index-then-access shape.
func (c *funcCtx) storeInto(p place) error {
	if p.indexed {
		if err := c.emitExpr(p.index); err != nil {
			return err
		}

		c.emit(&bytecode.StoreByIndex{Addr: p.addr, Elem: p.elem, Total: p.total})

		return nil
	}

	c.emit(&bytecode.Store{Addr: p.addr, Size: p.size})

	return nil
}

// emitExpr lowers expr in value context: by the time it returns, its
// result occupies exactly typeOf(expr).Size() fresh cells atop the
// evaluation stack.
func (c *funcCtx) emitExpr(expr syntax.Expr) error {
	switch e := expr.(type) {
	case *syntax.IntegerLiteral, *syntax.BooleanLiteral:
		t := c.em.typeOf(expr)
		v := literalValue(expr)

		c.emit(&bytecode.Push{Value: encodeConst(v, t), Type: t})

		return nil
	case *syntax.Identifier:
		return c.emitIdentifier(e)
	case *syntax.Path:
		return c.emitPath(e)
	case *syntax.BinaryExpr:
		return c.emitBinary(e)
	case *syntax.UnaryExpr:
		return c.emitUnary(e)
	case *syntax.CastExpr:
		if err := c.emitExpr(e.Operand); err != nil {
			return err
		}

		c.emit(&bytecode.Cast{From: c.em.typeOf(e.Operand), Target: c.em.typeOf(e)})

		return nil
	case *syntax.CallExpr:
		return c.emitCall(e)
	case *syntax.MethodCallExpr:
		return c.emitMethodCall(e)
	case *syntax.FieldExpr, *syntax.TupleIndexExpr, *syntax.IndexExpr:
		return c.emitAccess(expr)
	case *syntax.TupleExpr:
		for _, el := range e.Elems {
			if err := c.emitExpr(el); err != nil {
				return err
			}
		}

		return nil
	case *syntax.ArrayRepeatExpr:
		at := c.em.typeOf(e).(semantic.ArrayType)

		for i := 0; i < at.Len; i++ {
			if err := c.emitExpr(e.Value); err != nil {
				return err
			}
		}

		return nil
	case *syntax.ArrayListExpr:
		for _, el := range e.Elems {
			if err := c.emitExpr(el); err != nil {
				return err
			}
		}

		return nil
	case *syntax.StructLiteralExpr:
		return c.emitStructLiteral(e)
	case *syntax.BlockExpr:
		_, err := c.emitBlock(e)
		return err
	case *syntax.IfExpr:
		return c.emitIf(e)
	case *syntax.MatchExpr:
		return c.emitMatch(e)
	case *syntax.DbgExpr:
		types := make([]semantic.Type, len(e.Args))

		for i, arg := range e.Args {
			if err := c.emitExpr(arg); err != nil {
				return err
			}

			types[i] = c.em.typeOf(arg)
		}

		c.emit(&bytecode.Dbg{Format: e.Format, Types: types})

		return nil
	default:
		return fmt.Errorf("emitter: unsupported expression %T", expr)
	}
}

func (c *funcCtx) emitIdentifier(e *syntax.Identifier) error {
	if v, ok := c.scope.resolve(e.Name); ok {
		c.emit(&bytecode.Load{Addr: v.addr, Size: v.size})
		return nil
	}

	entry, ok := c.em.global.Resolve(e.Name)
	if !ok || entry.Kind != semantic.EntryConstant {
		return fmt.Errorf("emitter: undeclared name %q", e.Name)
	}

	c.emit(&bytecode.Push{Value: encodeConst(entry.Value.Int, entry.Value.Type), Type: entry.Value.Type})

	return nil
}

func (c *funcCtx) emitPath(e *syntax.Path) error {
	entry, err := resolvePathEntry(c.em.global, e.Segments)
	if err != nil {
		return err
	}

	switch entry.Kind {
	case semantic.EntryEnumVariant:
		v := big.NewInt(entry.Variant.Value)
		c.emit(&bytecode.Push{Value: encodeConst(v, entry.EnumType), Type: entry.EnumType})

		return nil
	case semantic.EntryConstant:
		c.emit(&bytecode.Push{Value: encodeConst(entry.Value.Int, entry.Value.Type), Type: entry.Value.Type})
		return nil
	default:
		return fmt.Errorf("emitter: path %q is not a value", strings.Join(e.Segments, "::"))
	}
}

func (c *funcCtx) emitAccess(expr syntax.Expr) error {
	p, err := c.resolvePlace(expr)
	if err == nil {
		return c.loadFrom(p)
	}

	// Not a place (e.g. indexing straight into a call's result): evaluate
	// the base as a value and narrow it with Slice — only a constant
	// offset is supported in this fallback.
	switch e := expr.(type) {
	case *syntax.FieldExpr:
		if err := c.emitExpr(e.Base); err != nil {
			return err
		}

		baseType := c.em.typeOf(e.Base)

		offset, size, _, ferr := fieldLayout(baseType, e.Field)
		if ferr != nil {
			return ferr
		}

		c.emit(&bytecode.Slice{Total: baseType.Size(), Offset: offset, Size: size})

		return nil
	case *syntax.TupleIndexExpr:
		if err := c.emitExpr(e.Base); err != nil {
			return err
		}

		tt := c.em.typeOf(e.Base).(semantic.TupleType)

		offset := 0
		for _, el := range tt.Elems[:e.Index] {
			offset += el.Size()
		}

		c.emit(&bytecode.Slice{Total: tt.Size(), Offset: offset, Size: tt.Elems[e.Index].Size()})

		return nil
	case *syntax.IndexExpr:
		if err := c.emitExpr(e.Base); err != nil {
			return err
		}

		at := c.em.typeOf(e.Base).(semantic.ArrayType)

		idx, ierr := c.em.evalConstInt(c.scope, e.Index)
		if ierr != nil {
			return fmt.Errorf("emitter: runtime index into a non-place value is not supported")
		}

		c.emit(&bytecode.Slice{Total: at.Size(), Offset: int(idx) * at.Elem.Size(), Size: at.Elem.Size()})

		return nil
	default:
		return err
	}
}
