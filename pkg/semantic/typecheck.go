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
package semantic

import (
	"github.com/zinc-lang/zinc/pkg/source"
	"github.com/zinc-lang/zinc/pkg/syntax"
)

// checkBlock type-checks a block in a fresh child scope and returns the
// type of its trailing expression (unit if there is none).
func (a *Analyzer) checkBlock(parent *Scope, block *syntax.BlockExpr) (Type, error) {
	scope := NewScope(parent)

	for _, stmt := range block.Stmts {
		if err := a.checkStmt(scope, stmt); err != nil {
			return nil, err
		}
	}

	if block.Tail != nil {
		return a.checkExpr(scope, block.Tail)
	}

	return UnitType{}, nil
}

func (a *Analyzer) checkStmt(scope *Scope, stmt syntax.Stmt) error {
	switch s := stmt.(type) {
	case *syntax.LetStmt:
		return a.checkLet(scope, s)
	case *syntax.ConstStmt:
		value, err := a.foldConst(scope, s.Value)
		if err != nil {
			return err
		}

		entry, ok := scope.Declare(s.Name, EntryConstant)
		if !ok {
			return a.errRedeclaredItem(s.Span(), s.Name)
		}

		entry.Value, entry.Type, entry.State = value, value.Type, Defined

		return nil
	case *syntax.ForStmt:
		return a.checkFor(scope, s)
	case *syntax.AssignStmt:
		return a.checkAssign(scope, s)
	case *syntax.ExprStmt:
		_, err := a.checkExpr(scope, s.Value)
		return err
	case *syntax.AssertStmt:
		return a.checkAssert(scope, s)
	case *syntax.DbgStmt:
		_, err := a.checkExpr(scope, s.Value)
		return err
	default:
		return a.errorf(stmt.Span(), "item declarations are only supported at module scope")
	}
}

func (a *Analyzer) checkLet(scope *Scope, s *syntax.LetStmt) error {
	var hint Type

	if s.Type != nil {
		t, err := a.resolveType(scope, s.Type)
		if err != nil {
			return err
		}

		hint = t
	}

	vt, err := a.checkExprHint(scope, s.Value, hint)
	if err != nil {
		return err
	}

	if hint != nil && !Equal(hint, vt) {
		return a.errTypeMismatch(s.Value.Span(), hint, vt)
	}

	entry, ok := scope.Declare(s.Name, EntryVariable)
	if !ok {
		return a.errRedeclaredItem(s.Span(), s.Name)
	}

	entry.Type, entry.Mutable, entry.Memory, entry.State = vt, s.Mutable, MemoryStack, Defined

	return nil
}

func (a *Analyzer) checkFor(scope *Scope, s *syntax.ForStmt) error {
	rt, err := a.checkExpr(scope, s.Range)
	if err != nil {
		return err
	}

	rangeType, ok := rt.(RangeType)
	if !ok {
		return a.errorf(s.Range.Span(), "for-loop requires a range expression")
	}

	body := NewScope(scope)

	ve, _ := body.Declare(s.Var, EntryVariable)
	ve.Type, ve.Memory, ve.State = rangeType.Elem, MemoryStack, Defined

	if s.While != nil {
		wt, err := a.checkExpr(body, s.While)
		if err != nil {
			return err
		}

		if _, ok := wt.(BoolType); !ok {
			return a.errLoopWhileExpectedBoolean(s.While.Span(), wt)
		}
	}

	_, err = a.checkBlock(body, s.Body)

	return err
}

func (a *Analyzer) checkAssign(scope *Scope, s *syntax.AssignStmt) error {
	targetType, err := a.checkPlace(scope, s.Target)
	if err != nil {
		return err
	}

	valType, err := a.checkExprHint(scope, s.Value, targetType)
	if err != nil {
		return err
	}

	if s.Op == "" {
		if !Equal(targetType, valType) {
			return a.errTypeMismatch(s.Value.Span(), targetType, valType)
		}

		return nil
	}

	if !Equal(targetType, valType) {
		return a.errTypeMismatch(s.Value.Span(), targetType, valType)
	}

	_, err = a.arithmeticResultType(s.Span(), s.Op, targetType)

	return err
}

// checkPlace validates that expr denotes an assignable location and returns
// its type; the root variable must be declared mutable.
func (a *Analyzer) checkPlace(scope *Scope, expr syntax.Expr) (Type, error) {
	switch e := expr.(type) {
	case *syntax.Identifier:
		entry, ok := scope.Resolve(e.Name)
		if !ok || entry.Kind != EntryVariable {
			return nil, a.errUndeclaredItem(e.Span(), e.Name)
		}

		if !entry.Mutable {
			return nil, a.errMutatingImmutablePlace(e.Span(), e.Name)
		}

		return entry.Type, nil
	case *syntax.FieldExpr:
		baseType, err := a.checkPlace(scope, e.Base)
		if err != nil {
			return nil, err
		}

		return a.fieldType(e.Span(), baseType, e.Field)
	case *syntax.IndexExpr:
		baseType, err := a.checkPlace(scope, e.Base)
		if err != nil {
			return nil, err
		}

		at, ok := baseType.(ArrayType)
		if !ok {
			return nil, a.errorf(e.Span(), "cannot index into %s", baseType)
		}

		if _, err := a.checkExpr(scope, e.Index); err != nil {
			return nil, err
		}

		return at.Elem, nil
	case *syntax.TupleIndexExpr:
		baseType, err := a.checkPlace(scope, e.Base)
		if err != nil {
			return nil, err
		}

		tt, ok := baseType.(TupleType)
		if !ok || e.Index < 0 || e.Index >= len(tt.Elems) {
			return nil, a.errorf(e.Span(), "invalid tuple index")
		}

		return tt.Elems[e.Index], nil
	default:
		return nil, a.errAssigningToNonPlace(expr.Span())
	}
}

func (a *Analyzer) checkAssert(scope *Scope, s *syntax.AssertStmt) error {
	ct, err := a.checkExpr(scope, s.Cond)
	if err != nil {
		return err
	}

	if _, ok := ct.(BoolType); !ok {
		return a.errConditionExpectedBoolean(s.Cond.Span(), ct)
	}

	if s.Message != nil {
		if _, ok := s.Message.(*syntax.StringLiteral); !ok {
			return a.errorf(s.Message.Span(), "assertion message must be a string literal")
		}
	}

	return nil
}

// checkExpr type-checks expr with no contextual hint.
func (a *Analyzer) checkExpr(scope *Scope, expr syntax.Expr) (Type, error) {
	return a.checkExprHint(scope, expr, nil)
}

// checkExprHint type-checks expr, using hint (when non-nil) to resolve the
// width of an integer-literal or the element type of an empty aggregate —
// the only context-dependent forms in the language. The resolved type is
// recorded into a.Types so later stages (the bytecode emitter) need not
// re-derive it.
func (a *Analyzer) checkExprHint(scope *Scope, expr syntax.Expr, hint Type) (t Type, err error) {
	defer func() {
		if err == nil {
			a.Types[expr] = t
		}
	}()

	switch e := expr.(type) {
	case *syntax.IntegerLiteral:
		return a.checkIntegerLiteral(e, hint)
	case *syntax.BooleanLiteral:
		return BoolType{}, nil
	case *syntax.StringLiteral:
		return nil, a.errorf(e.Span(), "string literals may only appear as an assertion message")
	case *syntax.Identifier:
		return a.checkIdentifier(scope, e)
	case *syntax.Path:
		entry, err := a.resolvePathEntry(scope, e.Segments, e.Span())
		if err != nil {
			return nil, err
		}

		return a.entryValueType(scope, e.Span(), entry)
	case *syntax.BinaryExpr:
		return a.checkBinary(scope, e)
	case *syntax.UnaryExpr:
		return a.checkUnary(scope, e)
	case *syntax.CastExpr:
		operand, err := a.checkExpr(scope, e.Operand)
		if err != nil {
			return nil, err
		}

		target, err := a.resolveType(scope, e.Target)
		if err != nil {
			return nil, err
		}

		return a.checkCastType(e.Span(), operand, target)
	case *syntax.CallExpr:
		return a.checkCall(scope, e)
	case *syntax.MethodCallExpr:
		return a.checkMethodCall(scope, e)
	case *syntax.IndexExpr:
		baseType, err := a.checkExpr(scope, e.Base)
		if err != nil {
			return nil, err
		}

		at, ok := baseType.(ArrayType)
		if !ok {
			return nil, a.errorf(e.Span(), "cannot index into %s", baseType)
		}

		if _, err := a.checkExpr(scope, e.Index); err != nil {
			return nil, err
		}

		return at.Elem, nil
	case *syntax.FieldExpr:
		baseType, err := a.checkExpr(scope, e.Base)
		if err != nil {
			return nil, err
		}

		return a.fieldType(e.Span(), baseType, e.Field)
	case *syntax.TupleIndexExpr:
		baseType, err := a.checkExpr(scope, e.Base)
		if err != nil {
			return nil, err
		}

		tt, ok := baseType.(TupleType)
		if !ok || e.Index < 0 || e.Index >= len(tt.Elems) {
			return nil, a.errorf(e.Span(), "invalid tuple index")
		}

		return tt.Elems[e.Index], nil
	case *syntax.TupleExpr:
		elems := make([]Type, len(e.Elems))

		for i, el := range e.Elems {
			t, err := a.checkExpr(scope, el)
			if err != nil {
				return nil, err
			}

			elems[i] = t
		}

		return TupleType{elems}, nil
	case *syntax.ArrayRepeatExpr:
		return a.checkArrayRepeat(scope, e, hint)
	case *syntax.ArrayListExpr:
		return a.checkArrayList(scope, e, hint)
	case *syntax.StructLiteralExpr:
		return a.checkStructLiteral(scope, e)
	case *syntax.BlockExpr:
		return a.checkBlock(scope, e)
	case *syntax.IfExpr:
		return a.checkIf(scope, e)
	case *syntax.MatchExpr:
		return a.checkMatch(scope, e)
	case *syntax.RangeExpr:
		return a.checkRange(scope, e)
	case *syntax.DbgExpr:
		for _, arg := range e.Args {
			if _, err := a.checkExpr(scope, arg); err != nil {
				return nil, err
			}
		}

		return UnitType{}, nil
	default:
		return nil, a.errorf(expr.Span(), "unsupported expression")
	}
}

func (a *Analyzer) checkIntegerLiteral(e *syntax.IntegerLiteral, hint Type) (Type, error) {
	n, err := parseIntegerLiteral(e.Text)
	if err != nil {
		return nil, a.errorf(e.Span(), "%s", err.Error())
	}

	switch h := hint.(type) {
	case IntType:
		if !fitsType(n, h) {
			return nil, a.errLiteralDoesNotFitContext(e.Span(), hint)
		}

		return h, nil
	case FieldType:
		return h, nil
	}

	sign, bits := minimalIntType(n)
	if bits > MaxBits {
		return nil, a.errLiteralTooLarge(e.Span(), IntType{sign, bits})
	}

	return IntType{sign, bits}, nil
}

func (a *Analyzer) checkIdentifier(scope *Scope, e *syntax.Identifier) (Type, error) {
	entry, ok := scope.Resolve(e.Name)
	if !ok {
		return nil, a.errUndeclaredItem(e.Span(), e.Name)
	}

	return a.entryValueType(scope, e.Span(), entry)
}

func (a *Analyzer) entryValueType(scope *Scope, span source.Span, entry *Entry) (Type, error) {
	switch entry.Kind {
	case EntryVariable:
		return entry.Type, nil
	case EntryConstant:
		if err := a.defineEntry(scope, entry); err != nil {
			return nil, err
		}

		return entry.Value.Type, nil
	case EntryFunction:
		return entry.Type, nil
	case EntryEnumVariant:
		return entry.EnumType, nil
	default:
		return nil, a.errorf(span, "%q does not name a value", entry.Name)
	}
}

func (a *Analyzer) checkBinary(scope *Scope, e *syntax.BinaryExpr) (Type, error) {
	left, err := a.checkExpr(scope, e.Left)
	if err != nil {
		return nil, err
	}

	right, err := a.checkExprHint(scope, e.Right, left)
	if err != nil {
		return nil, err
	}

	switch e.Op {
	case "==", "!=", "<", "<=", ">", ">=":
		if !Equal(left, right) {
			return nil, a.errTypeMismatch(e.Span(), left, right)
		}

		if (e.Op == "<" || e.Op == "<=" || e.Op == ">" || e.Op == ">=") && !a.hasOrdering(left) {
			return nil, a.errFieldHasNoOrdering(e.Span())
		}

		return BoolType{}, nil
	case "&&", "||", "^^":
		if _, ok := left.(BoolType); !ok {
			return nil, a.errExpectedBool(e.Left.Span(), left)
		}

		if _, ok := right.(BoolType); !ok {
			return nil, a.errExpectedBool(e.Right.Span(), right)
		}

		return BoolType{}, nil
	default:
		if !Equal(left, right) {
			return nil, a.errTypeMismatch(e.Span(), left, right)
		}

		return a.arithmeticResultType(e.Span(), e.Op, left)
	}
}

// hasOrdering reports whether t supports <,<=,>,>= — every scalar type
// except field, which has no canonical total order modulo the prime.
func (a *Analyzer) hasOrdering(t Type) bool {
	if _, ok := t.(FieldType); ok {
		return false
	}

	return IsScalar(t)
}

func (a *Analyzer) arithmeticResultType(span source.Span, op string, t Type) (Type, error) {
	_, isField := t.(FieldType)

	switch op {
	case "+", "-", "*", "&", "|", "^":
		return t, nil
	case "/":
		if isField {
			return nil, a.errFieldNoDivision(span)
		}

		return t, nil
	case "%":
		if isField {
			return nil, a.errFieldHasNoRemainder(span)
		}

		return t, nil
	case "<<", ">>":
		if isField {
			return nil, a.errFieldNoShift(span)
		}

		return t, nil
	default:
		return nil, a.errorf(span, "unsupported operator %q", op)
	}
}

func (a *Analyzer) checkUnary(scope *Scope, e *syntax.UnaryExpr) (Type, error) {
	operand, err := a.checkExpr(scope, e.Operand)
	if err != nil {
		return nil, err
	}

	switch e.Op {
	case "-":
		if _, ok := operand.(FieldType); ok {
			return nil, a.errFieldNoUnaryNegation(e.Span())
		}

		it, ok := operand.(IntType)
		if !ok || !it.Signed {
			return nil, a.errorf(e.Span(), "unary - requires a signed integer operand")
		}

		return it, nil
	case "!":
		if _, ok := operand.(BoolType); !ok {
			return nil, a.errExpectedBool(e.Span(), operand)
		}

		return BoolType{}, nil
	case "~":
		if _, ok := operand.(IntType); !ok {
			return nil, a.errorf(e.Span(), "~ requires an integer operand")
		}

		return operand, nil
	default:
		return nil, a.errorf(e.Span(), "unsupported unary operator %q", e.Op)
	}
}

func (a *Analyzer) checkCall(scope *Scope, e *syntax.CallExpr) (Type, error) {
	var sig *FunctionSig

	switch callee := e.Callee.(type) {
	case *syntax.Identifier:
		entry, ok := scope.Resolve(callee.Name)
		if !ok || entry.Kind != EntryFunction {
			return nil, a.errCallOfNonFunction(e.Span(), callee.Name)
		}

		sig = entry.Function
	case *syntax.Path:
		entry, err := a.resolvePathEntry(scope, callee.Segments, callee.Span())
		if err != nil {
			return nil, err
		}

		if entry.Kind != EntryFunction {
			return nil, a.errCallOfNonFunction(e.Span(), entry.Name)
		}

		sig = entry.Function
	default:
		return nil, a.errorf(e.Span(), "callee is not a function")
	}

	if err := a.checkArgs(scope, e.Span(), sig.Params, e.Args); err != nil {
		return nil, err
	}

	return sig.Result, nil
}

func (a *Analyzer) checkArgs(scope *Scope, span source.Span, params []Type, args []syntax.Expr) error {
	if len(params) != len(args) {
		return a.errFunctionArgumentCountMismatch(span, len(params), len(args))
	}

	for i, arg := range args {
		at, err := a.checkExprHint(scope, arg, params[i])
		if err != nil {
			return err
		}

		if !Equal(at, params[i]) {
			return a.errTypeMismatch(arg.Span(), params[i], at)
		}
	}

	return nil
}

// checkMethodCall desugars `receiver.method(args…)` to the resolved impl
// method, mirroring the `Path::method(receiver, args…)` call the bytecode
// emitter will actually generate.
func (a *Analyzer) checkMethodCall(scope *Scope, e *syntax.MethodCallExpr) (Type, error) {
	recvType, err := a.checkExpr(scope, e.Receiver)
	if err != nil {
		return nil, err
	}

	typeEntry, ok := a.global.Local(recvType.String())
	if !ok || typeEntry.Kind != EntryType || typeEntry.Module == nil {
		return nil, a.errorf(e.Span(), "%s has no methods", recvType)
	}

	method, ok := typeEntry.Module.Local(e.Method)
	if !ok || method.Kind != EntryFunction {
		return nil, a.errorf(e.Span(), "%s has no method %q", recvType, e.Method)
	}

	if err := a.checkArgs(scope, e.Span(), method.Function.Params, e.Args); err != nil {
		return nil, err
	}

	return method.Function.Result, nil
}

func (a *Analyzer) checkArrayRepeat(scope *Scope, e *syntax.ArrayRepeatExpr, hint Type) (Type, error) {
	var elemHint Type
	if at, ok := hint.(ArrayType); ok {
		elemHint = at.Elem
	}

	value, err := a.checkExprHint(scope, e.Value, elemHint)
	if err != nil {
		return nil, err
	}

	count, err := a.foldConst(scope, e.Count)
	if err != nil {
		return nil, a.errArrayLengthNotConstant(e.Count.Span())
	}

	return ArrayType{value, int(count.Int.Int64())}, nil
}

func (a *Analyzer) checkArrayList(scope *Scope, e *syntax.ArrayListExpr, hint Type) (Type, error) {
	var elemHint Type
	if at, ok := hint.(ArrayType); ok {
		elemHint = at.Elem
	}

	if len(e.Elems) == 0 {
		if elemHint != nil {
			return ArrayType{elemHint, 0}, nil
		}

		return nil, a.errorf(e.Span(), "cannot infer the element type of an empty array literal")
	}

	first, err := a.checkExprHint(scope, e.Elems[0], elemHint)
	if err != nil {
		return nil, err
	}

	for _, el := range e.Elems[1:] {
		t, err := a.checkExprHint(scope, el, first)
		if err != nil {
			return nil, err
		}

		if !Equal(t, first) {
			return nil, a.errTypeMismatch(el.Span(), first, t)
		}
	}

	return ArrayType{first, len(e.Elems)}, nil
}

func (a *Analyzer) checkStructLiteral(scope *Scope, e *syntax.StructLiteralExpr) (Type, error) {
	entry, ok := a.global.Local(e.Name)
	if !ok || entry.Kind != EntryType {
		return nil, a.errUndeclaredItem(e.Span(), e.Name)
	}

	if err := a.defineEntry(a.global, entry); err != nil {
		return nil, err
	}

	st, ok := entry.Named.(*StructType)
	if !ok {
		return nil, a.errorf(e.Span(), "%s is not a structure", e.Name)
	}

	given := map[string]bool{}

	for _, f := range e.Fields {
		if given[f.Name] {
			return nil, a.errDuplicateStructField(e.Span(), f.Name)
		}

		given[f.Name] = true

		var fieldType Type

		for _, sf := range st.Fields {
			if sf.Name == f.Name {
				fieldType = sf.Type
				break
			}
		}

		if fieldType == nil {
			return nil, a.errUnknownStructField(e.Span(), f.Name)
		}

		vt, err := a.checkExprHint(scope, f.Value, fieldType)
		if err != nil {
			return nil, err
		}

		if !Equal(vt, fieldType) {
			return nil, a.errTypeMismatch(f.Value.Span(), fieldType, vt)
		}
	}

	for _, sf := range st.Fields {
		if !given[sf.Name] {
			return nil, a.errMissingStructField(e.Span(), sf.Name)
		}
	}

	return st, nil
}

func (a *Analyzer) checkIf(scope *Scope, e *syntax.IfExpr) (Type, error) {
	ct, err := a.checkExpr(scope, e.Cond)
	if err != nil {
		return nil, err
	}

	if _, ok := ct.(BoolType); !ok {
		return nil, a.errConditionExpectedBoolean(e.Cond.Span(), ct)
	}

	thenType, err := a.checkBlock(scope, e.Then)
	if err != nil {
		return nil, err
	}

	if e.Else == nil {
		if _, ok := thenType.(UnitType); !ok {
			return nil, a.errTypeMismatch(e.Span(), UnitType{}, thenType)
		}

		return UnitType{}, nil
	}

	elseType, err := a.checkExpr(scope, e.Else)
	if err != nil {
		return nil, err
	}

	if !Equal(thenType, elseType) {
		return nil, a.errTypeMismatch(e.Span(), thenType, elseType)
	}

	return thenType, nil
}

func (a *Analyzer) checkMatch(scope *Scope, e *syntax.MatchExpr) (Type, error) {
	scrutinee, err := a.checkExpr(scope, e.Scrutinee)
	if err != nil {
		return nil, err
	}

	var resultType Type

	hasCatchAll := false
	covered := map[string]bool{}
	coveredTrue, coveredFalse := false, false

	for _, arm := range e.Arms {
		armScope := NewScope(scope)

		catchAll, variant, boolLit, err := a.checkPattern(armScope, arm.Pattern, scrutinee)
		if err != nil {
			return nil, err
		}

		if catchAll {
			hasCatchAll = true
		}

		if variant != "" {
			if covered[variant] {
				return nil, a.errMatchDuplicate(arm.Pattern.Span())
			}

			covered[variant] = true
		}

		if boolLit != nil {
			if *boolLit {
				if coveredTrue {
					return nil, a.errMatchDuplicate(arm.Pattern.Span())
				}

				coveredTrue = true
			} else {
				if coveredFalse {
					return nil, a.errMatchDuplicate(arm.Pattern.Span())
				}

				coveredFalse = true
			}
		}

		vt, err := a.checkExprHint(armScope, arm.Value, resultType)
		if err != nil {
			return nil, err
		}

		if resultType == nil {
			resultType = vt
		} else if !Equal(resultType, vt) {
			return nil, a.errTypeMismatch(arm.Value.Span(), resultType, vt)
		}
	}

	if !hasCatchAll {
		switch st := scrutinee.(type) {
		case *EnumType:
			for _, v := range st.Variants {
				if !covered[v.Name] {
					return nil, a.errMatchNotExhausted(e.Span())
				}
			}
		case BoolType:
			if !coveredTrue || !coveredFalse {
				return nil, a.errMatchNotExhausted(e.Span())
			}
		default:
			return nil, a.errMatchNotExhausted(e.Span())
		}
	}

	if resultType == nil {
		return UnitType{}, nil
	}

	return resultType, nil
}

// checkPattern type-checks a match pattern against the scrutinee's type,
// binding any introduced names into scope. It reports whether the pattern
// is a catch-all (wildcard or binding), for an enum-variant literal pattern
// the variant name it covers, and for a boolean literal pattern the concrete
// true/false value it covers (nil for every other pattern kind) so the
// caller can track bool-exhaustiveness the same way it tracks enum-variant
// exhaustiveness.
func (a *Analyzer) checkPattern(scope *Scope, pattern syntax.Pattern, scrutinee Type) (catchAll bool, variant string, boolLit *bool, err error) {
	switch p := pattern.(type) {
	case *syntax.WildcardPattern:
		return true, "", nil, nil
	case *syntax.BindingPattern:
		entry, ok := scope.Declare(p.Name, EntryVariable)
		if !ok {
			return false, "", nil, a.errRedeclaredItem(p.Span(), p.Name)
		}

		entry.Type, entry.Memory, entry.State = scrutinee, MemoryStack, Defined

		return true, "", nil, nil
	case *syntax.LiteralPattern:
		if path, ok := p.Value.(*syntax.Path); ok {
			entry, err := a.resolvePathEntry(scope, path.Segments, path.Span())
			if err != nil {
				return false, "", nil, err
			}

			if entry.Kind != EntryEnumVariant || !Equal(entry.EnumType, scrutinee) {
				return false, "", nil, a.errTypeMismatch(p.Span(), scrutinee, entry.EnumType)
			}

			return false, entry.Variant.Name, nil, nil
		}

		value, err := a.foldConst(scope, p.Value)
		if err != nil {
			return false, "", nil, err
		}

		if !Equal(value.Type, scrutinee) {
			return false, "", nil, a.errTypeMismatch(p.Span(), scrutinee, value.Type)
		}

		if _, ok := value.Type.(BoolType); ok {
			b := value.Int.Sign() != 0
			return false, "", &b, nil
		}

		return false, "", nil, nil
	default:
		return false, "", nil, a.errorf(pattern.Span(), "unsupported pattern")
	}
}

func (a *Analyzer) checkRange(scope *Scope, e *syntax.RangeExpr) (Type, error) {
	start, err := a.checkExpr(scope, e.Start)
	if err != nil {
		return nil, err
	}

	end, err := a.checkExprHint(scope, e.End, start)
	if err != nil {
		return nil, err
	}

	if !IsInteger(start) || !Equal(start, end) {
		return nil, a.errTypeMismatch(e.Span(), start, end)
	}

	return RangeType{start, e.Inclusive}, nil
}

// fieldType resolves a `.field` access against a structure or contract
// type's layout.
func (a *Analyzer) fieldType(span source.Span, baseType Type, field string) (Type, error) {
	switch st := baseType.(type) {
	case *StructType:
		for _, f := range st.Fields {
			if f.Name == field {
				return f.Type, nil
			}
		}
	case *ContractType:
		for _, f := range st.Fields {
			if f.Name == field {
				return f.Type, nil
			}
		}
	}

	return nil, a.errUnknownStructField(span, field)
}

// resolvePathEntry resolves a `a::b::c` path against scope, walking module,
// enum, and associated-item namespaces.
func (a *Analyzer) resolvePathEntry(scope *Scope, segs []string, span source.Span) (*Entry, error) {
	if len(segs) == 0 {
		return nil, a.errorf(span, "empty path")
	}

	cur, ok := scope.Resolve(segs[0])
	if !ok {
		return nil, a.errUndeclaredItem(span, segs[0])
	}

	for _, seg := range segs[1:] {
		if cur.Kind == EntryType {
			if err := a.defineEntry(scope, cur); err != nil {
				return nil, err
			}
		}

		if cur.Module == nil {
			return nil, a.errNotNamespace(span, cur.Name)
		}

		next, ok := cur.Module.Local(seg)
		if !ok {
			return nil, a.errUndeclaredItem(span, seg)
		}

		cur = next
	}

	return cur, nil
}
