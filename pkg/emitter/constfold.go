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

	"github.com/zinc-lang/zinc/pkg/syntax"
)

// evalConstInt evaluates the narrow subset of constant-integer expressions
// the emitter itself needs a concrete Go value for: `for` loop bounds and
// fixed bit-shift amounts. It is deliberately not a re-implementation of
// pkg/semantic's full constant folder (foldConst is unexported and tied to
// an ephemeral *Scope); it only has to agree with foldConst on the inputs
// that already passed type-checking, namely literals, global constants, and
// +/-/* / over them.
func (em *Emitter) evalConstInt(scope *localScope, e syntax.Expr) (int64, error) {
	switch ex := e.(type) {
	case *syntax.IntegerLiteral:
		n, err := parseLiteralInt(ex.Text)
		if err != nil {
			return 0, err
		}

		return n.Int64(), nil
	case *syntax.BooleanLiteral:
		if ex.Value {
			return 1, nil
		}

		return 0, nil
	case *syntax.Identifier:
		entry, ok := em.global.Resolve(ex.Name)
		if !ok || entry.Value == nil {
			return 0, fmt.Errorf("emitter: %q is not a constant", ex.Name)
		}

		return entry.Value.Int.Int64(), nil
	case *syntax.UnaryExpr:
		v, err := em.evalConstInt(scope, ex.Operand)
		if err != nil {
			return 0, err
		}

		switch ex.Op {
		case "-":
			return -v, nil
		case "~":
			return ^v, nil
		default:
			return 0, fmt.Errorf("emitter: unsupported constant unary operator %q", ex.Op)
		}
	case *syntax.BinaryExpr:
		l, err := em.evalConstInt(scope, ex.Left)
		if err != nil {
			return 0, err
		}

		r, err := em.evalConstInt(scope, ex.Right)
		if err != nil {
			return 0, err
		}

		switch ex.Op {
		case "+":
			return l + r, nil
		case "-":
			return l - r, nil
		case "*":
			return l * r, nil
		case "/":
			return l / r, nil
		case "%":
			return l % r, nil
		default:
			return 0, fmt.Errorf("emitter: unsupported constant binary operator %q", ex.Op)
		}
	default:
		return 0, fmt.Errorf("emitter: expression is not a compile-time constant")
	}
}

func parseLiteralInt(text string) (*big.Int, error) {
	clean := make([]byte, 0, len(text))

	for i := 0; i < len(text); i++ {
		if text[i] != '_' {
			clean = append(clean, text[i])
		}
	}

	base := 10
	s := string(clean)

	if len(s) > 1 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		base = 16
		s = s[2:]
	}

	n, ok := new(big.Int).SetString(s, base)
	if !ok {
		return nil, fmt.Errorf("emitter: invalid integer literal %q", text)
	}

	return n, nil
}
