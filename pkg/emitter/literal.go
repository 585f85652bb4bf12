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

	"github.com/zinc-lang/zinc/pkg/semantic"
	"github.com/zinc-lang/zinc/pkg/syntax"
)

// literalValue extracts the arbitrary-precision value of an integer or
// boolean literal node, already known (by construction) to be one of the
// two by emitExpr's caller.
func literalValue(expr syntax.Expr) *big.Int {
	switch e := expr.(type) {
	case *syntax.IntegerLiteral:
		n, err := parseLiteralInt(e.Text)
		if err != nil {
			// Already validated during type-checking; cannot fail here.
			return big.NewInt(0)
		}

		return n
	case *syntax.BooleanLiteral:
		if e.Value {
			return big.NewInt(1)
		}

		return big.NewInt(0)
	default:
		return big.NewInt(0)
	}
}

// resolvePathEntry resolves `a::b::c` against the global scope, walking
// module, enum, and associated-item namespaces — a re-derivation of
// semantic's unexported resolvePathEntry, since the analyser's copy cannot
// be called from outside its package.
func resolvePathEntry(global *semantic.Scope, segs []string) (*semantic.Entry, error) {
	if len(segs) == 0 {
		return nil, fmt.Errorf("emitter: empty path")
	}

	cur, ok := global.Resolve(segs[0])
	if !ok {
		return nil, fmt.Errorf("emitter: undeclared name %q", segs[0])
	}

	for _, seg := range segs[1:] {
		if cur.Module == nil {
			return nil, fmt.Errorf("emitter: %q is not a namespace", cur.Name)
		}

		next, ok := cur.Module.Local(seg)
		if !ok {
			return nil, fmt.Errorf("emitter: %q has no member %q", cur.Name, seg)
		}

		cur = next
	}

	return cur, nil
}
