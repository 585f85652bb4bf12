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

// emitBlock lowers a block in value context: a fresh child scope for its
// statements, followed by its tail expression (if any) left atop the
// evaluation stack. Mirrors checkBlock's child-scope structure.
func (c *funcCtx) emitBlock(block *syntax.BlockExpr) (semantic.Type, error) {
	saved := c.scope
	c.scope = newLocalScope(saved)

	defer func() { c.scope = saved }()

	for _, stmt := range block.Stmts {
		if err := c.emitStmt(stmt); err != nil {
			return nil, err
		}
	}

	if block.Tail != nil {
		if err := c.emitExpr(block.Tail); err != nil {
			return nil, err
		}

		return c.em.typeOf(block.Tail), nil
	}

	return semantic.UnitType{}, nil
}

func (c *funcCtx) emitStmt(stmt syntax.Stmt) error {
	switch s := stmt.(type) {
	case *syntax.LetStmt:
		return c.emitLet(s.Name, s.Value)
	case *syntax.ConstStmt:
		// A block-scoped const is only ever read, never assigned; binding it
		// to an ordinary local cell is observationally identical to true
		// constant propagation for every consumer the emitter has to serve.
		return c.emitLet(s.Name, s.Value)
	case *syntax.ForStmt:
		return c.emitFor(s)
	case *syntax.AssignStmt:
		return c.emitAssign(s)
	case *syntax.ExprStmt:
		if err := c.emitExpr(s.Value); err != nil {
			return err
		}

		size := c.em.typeOf(s.Value).Size()
		for i := 0; i < size; i++ {
			c.emit(&bytecode.Pop{})
		}

		return nil
	case *syntax.AssertStmt:
		if err := c.emitExpr(s.Cond); err != nil {
			return err
		}

		message := ""
		if lit, ok := s.Message.(*syntax.StringLiteral); ok {
			message = lit.Value
		}

		c.emit(&bytecode.Assert{Message: message})

		return nil
	case *syntax.DbgStmt:
		return c.emitExpr(s.Value)
	default:
		return fmt.Errorf("emitter: unsupported statement %T", stmt)
	}
}

func (c *funcCtx) emitLet(name string, value syntax.Expr) error {
	if err := c.emitExpr(value); err != nil {
		return err
	}

	typ := c.em.typeOf(value)
	size := typ.Size()
	addr := c.alloc(size)

	c.emit(&bytecode.Store{Addr: addr, Size: size})
	c.scope.declare(name, localVar{addr: addr, size: size, typ: typ})

	return nil
}

// markStorageWrite flags that a function mutated its self frame, so
// emitFunction's epilogue writes it back to the contract's storage record.
func (c *funcCtx) markStorageWrite(p place) {
	if c.storage == nil {
		return
	}

	if p.addr >= c.selfAddr && p.addr < c.selfAddr+c.storage.Size() {
		c.storageUsed = true
	}
}

func (c *funcCtx) emitAssign(s *syntax.AssignStmt) error {
	p, err := c.resolvePlace(s.Target)
	if err != nil {
		return err
	}

	if s.Op == "" {
		if err := c.emitExpr(s.Value); err != nil {
			return err
		}
	} else {
		if err := c.loadFrom(p); err != nil {
			return err
		}

		if err := c.emitExpr(s.Value); err != nil {
			return err
		}

		instr, err := arithInstr(s.Op, p.typ)
		if err != nil {
			return err
		}

		c.emit(instr)
	}

	if err := c.storeInto(p); err != nil {
		return err
	}

	c.markStorageWrite(p)

	return nil
}

// emitFor lowers a counted range loop to LoopBegin/LoopEnd with the body
// emitted exactly once; the induction variable's cell is initialised to the
// range's start value ahead of LoopBegin and is expected to be advanced by
// one each repeated pass. A `while` guard is approximated by wrapping the
// body in an If/EndIf keyed on the guard, since the bytecode has no dynamic
// early-exit primitive across unrolled iterations.
func (c *funcCtx) emitFor(s *syntax.ForStmt) error {
	start, err := c.em.evalConstInt(c.scope, s.Range.Start)
	if err != nil {
		return fmt.Errorf("emitter: for-loop bounds must be compile-time constants: %w", err)
	}

	end, err := c.em.evalConstInt(c.scope, s.Range.End)
	if err != nil {
		return fmt.Errorf("emitter: for-loop bounds must be compile-time constants: %w", err)
	}

	iterations := end - start
	if s.Range.Inclusive {
		iterations++
	}

	elemType := c.em.typeOf(s.Range.Start)
	if elemType == nil {
		elemType = semantic.IntType{Signed: false, Bits: 32}
	}

	elemSize := elemType.Size()
	indexAddr := c.alloc(elemSize)

	c.emit(&bytecode.Push{Value: encodeConst(bigFromInt64(start), elemType), Type: elemType})
	c.emit(&bytecode.Store{Addr: indexAddr, Size: elemSize})

	loopBeginIdx := c.emit(&bytecode.LoopBegin{Iterations: int(iterations), IndexAddr: indexAddr})

	bodyStart := len(c.instrs)

	saved := c.scope
	c.scope = newLocalScope(saved)
	c.scope.declare(s.Var, localVar{addr: indexAddr, size: elemSize, typ: elemType})

	guarded := s.While != nil
	if guarded {
		if err := c.emitExpr(s.While); err != nil {
			c.scope = saved
			return err
		}

		c.emit(&bytecode.If{})
	}

	for _, stmt := range s.Body.Stmts {
		if err := c.emitStmt(stmt); err != nil {
			c.scope = saved
			return err
		}
	}

	if s.Body.Tail != nil {
		if err := c.emitExpr(s.Body.Tail); err != nil {
			c.scope = saved
			return err
		}

		tailSize := c.em.typeOf(s.Body.Tail).Size()
		for i := 0; i < tailSize; i++ {
			c.emit(&bytecode.Pop{})
		}
	}

	c.scope = saved

	if guarded {
		c.emit(&bytecode.EndIf{})
	}

	bodyLen := len(c.instrs) - bodyStart

	c.emit(&bytecode.LoopEnd{})

	if lb, ok := c.instrs[loopBeginIdx].(*bytecode.LoopBegin); ok {
		lb.BodyLen = bodyLen
	}

	return nil
}

func (c *funcCtx) emitIf(e *syntax.IfExpr) error {
	if err := c.emitExpr(e.Cond); err != nil {
		return err
	}

	c.emit(&bytecode.If{})

	if _, err := c.emitBlock(e.Then); err != nil {
		return err
	}

	if e.Else != nil {
		c.emit(&bytecode.Else{})

		switch els := e.Else.(type) {
		case *syntax.BlockExpr:
			if _, err := c.emitBlock(els); err != nil {
				return err
			}
		default:
			if err := c.emitExpr(els); err != nil {
				return err
			}
		}
	}

	c.emit(&bytecode.EndIf{})

	return nil
}

// emitMatch lowers a match over a scalar scrutinee to a chain of nested
// If/Else/EndIf triples comparing the (materialised once) scrutinee against
// each arm's pattern value in order, falling through to the final catch-all
// arm (a binding or wildcard pattern) when there is one. An enum or bool
// match that covers every value arm by arm has no catch-all; its last arm
// is guarded by its own comparison with no else branch.
func (c *funcCtx) emitMatch(e *syntax.MatchExpr) error {
	if err := c.emitExpr(e.Scrutinee); err != nil {
		return err
	}

	scrutType := c.em.typeOf(e.Scrutinee)
	size := scrutType.Size()
	addr := c.alloc(size)

	c.emit(&bytecode.Store{Addr: addr, Size: size})

	return c.emitMatchArms(e.Arms, addr, scrutType)
}

func (c *funcCtx) emitMatchArms(arms []syntax.MatchArm, addr int, scrutType semantic.Type) error {
	if len(arms) == 0 {
		return fmt.Errorf("emitter: match expression has no arms")
	}

	arm := arms[0]

	switch pat := arm.Pattern.(type) {
	case *syntax.WildcardPattern:
		return c.emitExpr(arm.Value)
	case *syntax.BindingPattern:
		saved := c.scope
		c.scope = newLocalScope(saved)
		c.scope.declare(pat.Name, localVar{addr: addr, size: scrutType.Size(), typ: scrutType})

		err := c.emitExpr(arm.Value)

		c.scope = saved

		return err
	case *syntax.LiteralPattern:
		value, typ, err := c.matchPatternValue(pat.Value, scrutType)
		if err != nil {
			return err
		}

		c.emit(&bytecode.Load{Addr: addr, Size: scrutType.Size()})
		c.emit(&bytecode.Push{Value: encodeConst(value, typ), Type: typ})
		c.emit(&bytecode.Eq{Type: scrutType})
		c.emit(&bytecode.If{})

		if err := c.emitExpr(arm.Value); err != nil {
			return err
		}

		if len(arms) > 1 {
			c.emit(&bytecode.Else{})

			if err := c.emitMatchArms(arms[1:], addr, scrutType); err != nil {
				return err
			}
		}

		c.emit(&bytecode.EndIf{})

		return nil
	default:
		return fmt.Errorf("emitter: unsupported match pattern %T", arm.Pattern)
	}
}

// matchPatternValue resolves a literal match pattern's comparison value,
// handling both plain literals/consts and enum-variant paths.
func (c *funcCtx) matchPatternValue(e syntax.Expr, scrutType semantic.Type) (*big.Int, semantic.Type, error) {
	if p, ok := e.(*syntax.Path); ok {
		entry, err := resolvePathEntry(c.em.global, p.Segments)
		if err != nil {
			return nil, nil, err
		}

		if entry.Kind != semantic.EntryEnumVariant {
			return nil, nil, fmt.Errorf("emitter: path pattern %q is not an enum variant", strings.Join(p.Segments, "::"))
		}

		return bigFromInt64(entry.Variant.Value), entry.EnumType, nil
	}

	v, err := c.em.evalConstInt(c.scope, e)
	if err != nil {
		return nil, nil, err
	}

	return bigFromInt64(v), scrutType, nil
}

func (c *funcCtx) emitStructLiteral(e *syntax.StructLiteralExpr) error {
	entry, ok := c.em.global.Local(e.Name)
	if !ok {
		return fmt.Errorf("emitter: undeclared struct %q", e.Name)
	}

	st, ok := entry.Named.(*semantic.StructType)
	if !ok {
		return fmt.Errorf("emitter: %q is not a structure", e.Name)
	}

	for _, f := range st.Fields {
		for _, lf := range e.Fields {
			if lf.Name == f.Name {
				if err := c.emitExpr(lf.Value); err != nil {
					return err
				}

				break
			}
		}
	}

	return nil
}

func (c *funcCtx) emitCall(e *syntax.CallExpr) error {
	name, err := c.calleeName(e.Callee)
	if err != nil {
		return err
	}

	args := 0

	for _, arg := range e.Args {
		if err := c.emitExpr(arg); err != nil {
			return err
		}

		args += c.em.typeOf(arg).Size()
	}

	idx := c.emit(&bytecode.Call{Name: name, Args: args})
	c.em.pending = append(c.em.pending, pendingCall{fn: c.fn, index: idx, target: name})

	return nil
}

func (c *funcCtx) calleeName(callee syntax.Expr) (string, error) {
	switch ce := callee.(type) {
	case *syntax.Identifier:
		return ce.Name, nil
	case *syntax.Path:
		return strings.Join(ce.Segments, "::"), nil
	default:
		return "", fmt.Errorf("emitter: unsupported call target %T", callee)
	}
}

func (c *funcCtx) emitMethodCall(e *syntax.MethodCallExpr) error {
	if err := c.emitExpr(e.Receiver); err != nil {
		return err
	}

	recvType := c.em.typeOf(e.Receiver)
	args := recvType.Size()

	for _, arg := range e.Args {
		if err := c.emitExpr(arg); err != nil {
			return err
		}

		args += c.em.typeOf(arg).Size()
	}

	name := recvType.String() + "::" + e.Method

	idx := c.emit(&bytecode.Call{Name: name, Args: args})
	c.em.pending = append(c.em.pending, pendingCall{fn: c.fn, index: idx, target: name})

	return nil
}
