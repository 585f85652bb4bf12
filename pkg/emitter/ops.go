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

	"github.com/zinc-lang/zinc/pkg/bytecode"
	"github.com/zinc-lang/zinc/pkg/semantic"
	"github.com/zinc-lang/zinc/pkg/syntax"
)

// arithInstr builds the instruction for a binary arithmetic/bitwise
// operator at the given operand type, shared by ordinary binary
// expressions and compound assignment (`+=` and friends).
func arithInstr(op string, t semantic.Type) (bytecode.Instruction, error) {
	switch op {
	case "+":
		return &bytecode.Add{Type: t}, nil
	case "-":
		return &bytecode.Sub{Type: t}, nil
	case "*":
		return &bytecode.Mul{Type: t}, nil
	case "/":
		return &bytecode.Div{Type: t}, nil
	case "%":
		return &bytecode.Rem{Type: t}, nil
	case "&":
		return &bytecode.BitwiseAnd{Type: t}, nil
	case "|":
		return &bytecode.BitwiseOr{Type: t}, nil
	case "^":
		return &bytecode.BitwiseXor{Type: t}, nil
	default:
		return nil, fmt.Errorf("emitter: unsupported arithmetic operator %q", op)
	}
}

func (c *funcCtx) emitBinary(e *syntax.BinaryExpr) error {
	switch e.Op {
	case "==", "!=", "<", "<=", ">", ">=":
		if err := c.emitExpr(e.Left); err != nil {
			return err
		}

		if err := c.emitExpr(e.Right); err != nil {
			return err
		}

		t := c.em.typeOf(e.Left)

		switch e.Op {
		case "==":
			c.emit(&bytecode.Eq{Type: t})
		case "!=":
			c.emit(&bytecode.Ne{Type: t})
		case "<":
			c.emit(&bytecode.Lt{Type: t})
		case "<=":
			c.emit(&bytecode.Le{Type: t})
		case ">":
			c.emit(&bytecode.Gt{Type: t})
		case ">=":
			c.emit(&bytecode.Ge{Type: t})
		}

		return nil
	case "&&", "||", "^^":
		if err := c.emitExpr(e.Left); err != nil {
			return err
		}

		if err := c.emitExpr(e.Right); err != nil {
			return err
		}

		switch e.Op {
		case "&&":
			c.emit(&bytecode.And{})
		case "||":
			c.emit(&bytecode.Or{})
		case "^^":
			c.emit(&bytecode.Xor{})
		}

		return nil
	case "<<", ">>":
		if err := c.emitExpr(e.Left); err != nil {
			return err
		}

		amount, err := c.em.evalConstInt(c.scope, e.Right)
		if err != nil {
			return fmt.Errorf("emitter: shift amount must be a compile-time constant: %w", err)
		}

		t := c.em.typeOf(e)

		if e.Op == "<<" {
			c.emit(&bytecode.BitwiseShiftLeft{Amount: int(amount), Type: t})
		} else {
			c.emit(&bytecode.BitwiseShiftRight{Amount: int(amount), Type: t})
		}

		return nil
	default:
		if err := c.emitExpr(e.Left); err != nil {
			return err
		}

		if err := c.emitExpr(e.Right); err != nil {
			return err
		}

		instr, err := arithInstr(e.Op, c.em.typeOf(e))
		if err != nil {
			return err
		}

		c.emit(instr)

		return nil
	}
}

func (c *funcCtx) emitUnary(e *syntax.UnaryExpr) error {
	if err := c.emitExpr(e.Operand); err != nil {
		return err
	}

	switch e.Op {
	case "-":
		c.emit(&bytecode.Neg{Type: c.em.typeOf(e.Operand)})
	case "!":
		c.emit(&bytecode.Not{})
	case "~":
		c.emit(&bytecode.BitwiseNot{Type: c.em.typeOf(e.Operand)})
	default:
		return fmt.Errorf("emitter: unsupported unary operator %q", e.Op)
	}

	return nil
}
