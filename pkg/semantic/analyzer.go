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
	"github.com/zinc-lang/zinc/pkg/syntax"
)

// Analyze runs both passes of the analyser over a parsed module and returns
// the populated global scope. Pass 1 declares every module-level item name
// (so forward references and mutual recursion resolve); pass 2 lazily
// defines each one, following §4.3's two-pass scheme.
func (a *Analyzer) Analyze(module *syntax.Module) (*Scope, error) {
	for _, item := range module.Items {
		if err := a.declareItem(a.global, item); err != nil {
			return nil, err
		}
	}

	for _, item := range module.Items {
		if err := a.defineNamedItem(a.global, item); err != nil {
			return nil, err
		}
	}

	return a.global, nil
}

// declareItem enters a module-level item's name into scope at its Declared
// binding state, without resolving its contents. impl blocks are not
// themselves named; their nested fn/const items are declared directly into
// the receiver type's own namespace (built lazily: the receiver type may
// not exist yet, so impl declaration is deferred into defineNamedItem).
func (a *Analyzer) declareItem(scope *Scope, item syntax.Stmt) error {
	switch s := item.(type) {
	case *syntax.FnDeclStmt:
		entry, ok := scope.Declare(s.Name, EntryFunction)
		if !ok {
			return a.errRedeclaredItem(s.Span(), s.Name)
		}

		entry.Node = s
	case *syntax.ConstStmt:
		entry, ok := scope.Declare(s.Name, EntryConstant)
		if !ok {
			return a.errRedeclaredItem(s.Span(), s.Name)
		}

		entry.Node = s
	case *syntax.TypeAliasStmt:
		entry, ok := scope.Declare(s.Name, EntryType)
		if !ok {
			return a.errRedeclaredItem(s.Span(), s.Name)
		}

		entry.Node = s
	case *syntax.StructDeclStmt:
		entry, ok := scope.Declare(s.Name, EntryType)
		if !ok {
			return a.errRedeclaredItem(s.Span(), s.Name)
		}

		entry.Node = s
	case *syntax.EnumDeclStmt:
		entry, ok := scope.Declare(s.Name, EntryType)
		if !ok {
			return a.errRedeclaredItem(s.Span(), s.Name)
		}

		entry.Node = s
	case *syntax.ContractDeclStmt:
		entry, ok := scope.Declare(s.Name, EntryType)
		if !ok {
			return a.errRedeclaredItem(s.Span(), s.Name)
		}

		entry.Node = s
	case *syntax.ModDeclStmt:
		entry, ok := scope.Declare(s.Name, EntryModule)
		if !ok {
			return a.errRedeclaredItem(s.Span(), s.Name)
		}

		entry.Module = NewScope(scope)
		entry.State = Defined
	case *syntax.UseStmt:
		return a.declareUse(scope, s)
	case *syntax.ImplDeclStmt:
		// Nothing to declare at this level; items are attached to the
		// receiver type's namespace once it is known to exist (pass 2).
		return nil
	default:
		return a.errorf(item.Span(), "item kind is not supported at module scope")
	}

	return nil
}

func (a *Analyzer) declareUse(scope *Scope, s *syntax.UseStmt) error {
	if len(s.Path) == 0 {
		return a.errorf(s.Span(), "use path must name at least one item")
	}

	target, ok := scope.Resolve(s.Path[0])
	if !ok {
		return a.errUseOfUndeclaredModule(s.Span(), s.Path[0])
	}

	for _, seg := range s.Path[1:] {
		if target.Kind != EntryModule || target.Module == nil {
			return a.errNotNamespace(s.Span(), target.Name)
		}

		next, ok := target.Module.Local(seg)
		if !ok {
			return a.errUndeclaredItem(s.Span(), seg)
		}

		target = next
	}

	name := s.Alias
	if name == "" {
		name = s.Path[len(s.Path)-1]
	}

	if !scope.Alias(name, target) {
		return a.errRedeclaredItem(s.Span(), name)
	}

	return nil
}

// defineNamedItem resolves a module-level item's body, following the
// lazy two-pass scheme: an item already Defined (from a prior forward
// reference) is skipped, one in Defining is a cycle, and Declared triggers
// its actual resolution.
func (a *Analyzer) defineNamedItem(scope *Scope, item syntax.Stmt) error {
	name, ok := itemName(item)
	if !ok {
		if impl, ok := item.(*syntax.ImplDeclStmt); ok {
			return a.defineImpl(scope, impl)
		}

		return nil
	}

	entry, ok := scope.Local(name)
	if !ok {
		return a.errUndeclaredItem(item.Span(), name)
	}

	return a.defineEntry(scope, entry)
}

func itemName(item syntax.Stmt) (string, bool) {
	switch s := item.(type) {
	case *syntax.FnDeclStmt:
		return s.Name, true
	case *syntax.ConstStmt:
		return s.Name, true
	case *syntax.TypeAliasStmt:
		return s.Name, true
	case *syntax.StructDeclStmt:
		return s.Name, true
	case *syntax.EnumDeclStmt:
		return s.Name, true
	case *syntax.ContractDeclStmt:
		return s.Name, true
	default:
		return "", false
	}
}

// defineEntry resolves a single scope entry's body in place, detecting
// cyclic type aliases and constant initialisers (§4.3 pass 2).
func (a *Analyzer) defineEntry(scope *Scope, entry *Entry) error {
	switch entry.State {
	case Defined:
		return nil
	case Defining:
		return a.errCyclicReference(entry.Node.Span(), entry.Name)
	}

	entry.State = Defining

	var err error

	switch node := entry.Node.(type) {
	case *syntax.ConstStmt:
		err = a.defineConst(scope, entry, node)
	case *syntax.TypeAliasStmt:
		err = a.defineTypeAlias(scope, entry, node)
	case *syntax.StructDeclStmt:
		err = a.defineStruct(scope, entry, node)
	case *syntax.EnumDeclStmt:
		err = a.defineEnum(scope, entry, node)
	case *syntax.ContractDeclStmt:
		err = a.defineContract(scope, entry, node)
	case *syntax.FnDeclStmt:
		err = a.defineFunctionSig(scope, entry, node)
	}

	if err != nil {
		return err
	}

	entry.State = Defined

	return nil
}

func (a *Analyzer) defineConst(scope *Scope, entry *Entry, s *syntax.ConstStmt) error {
	value, err := a.foldConst(scope, s.Value)
	if err != nil {
		return err
	}

	if s.Type != nil {
		declared, err := a.resolveType(scope, s.Type)
		if err != nil {
			return err
		}

		if it, ok := declared.(IntType); ok {
			if !fitsType(value.Int, it) {
				return a.errLiteralDoesNotFitContext(s.Value.Span(), declared)
			}

			value = &ConstValue{value.Int, it}
		} else if !Equal(declared, value.Type) {
			return a.errTypeMismatch(s.Value.Span(), declared, value.Type)
		}
	}

	entry.Value = value
	entry.Type = value.Type

	return nil
}

func (a *Analyzer) defineTypeAlias(scope *Scope, entry *Entry, s *syntax.TypeAliasStmt) error {
	t, err := a.resolveType(scope, s.Type)
	if err != nil {
		return err
	}

	entry.Named = t

	return nil
}

func (a *Analyzer) defineStruct(scope *Scope, entry *Entry, s *syntax.StructDeclStmt) error {
	st := &StructType{Name: s.Name}
	seen := map[string]bool{}

	for _, f := range s.Fields {
		if seen[f.Name] {
			return a.errDuplicateStructField(s.Span(), f.Name)
		}

		seen[f.Name] = true

		ft, err := a.resolveType(scope, f.Type)
		if err != nil {
			return err
		}

		st.Fields = append(st.Fields, StructField{f.Name, ft})
	}

	entry.Named = st

	return nil
}

func (a *Analyzer) defineEnum(scope *Scope, entry *Entry, s *syntax.EnumDeclStmt) error {
	et := &EnumType{Name: s.Name}
	seenValue := map[int64]string{}
	next := int64(0)

	for _, v := range s.Variants {
		value := next

		if v.Value != nil {
			cv, err := a.foldConst(scope, v.Value)
			if err != nil {
				return err
			}

			value = cv.Int.Int64()
		}

		if existing, dup := seenValue[value]; dup {
			return a.errDuplicateEnumVariantValue(s.Span(), existing, value)
		}

		seenValue[value] = v.Name
		et.Variants = append(et.Variants, EnumVariant{v.Name, value})
		next = value + 1
	}

	entry.Named = et
	entry.Module = NewScope(scope)

	for _, v := range et.Variants {
		variantEntry, _ := entry.Module.Declare(v.Name, EntryEnumVariant)
		variantEntry.EnumType = et
		variantEntry.Variant = v
		variantEntry.State = Defined
	}

	return nil
}

func (a *Analyzer) defineContract(scope *Scope, entry *Entry, s *syntax.ContractDeclStmt) error {
	ct := &ContractType{Name: s.Name}
	seen := map[string]bool{}

	for _, f := range s.Fields {
		if seen[f.Name] {
			return a.errDuplicateStructField(s.Span(), f.Name)
		}

		seen[f.Name] = true

		ft, err := a.resolveType(scope, f.Type)
		if err != nil {
			return err
		}

		ct.Fields = append(ct.Fields, StructField{f.Name, ft})
	}

	entry.Named = ct

	inner := NewScope(scope)
	for _, item := range s.Items {
		if err := a.declareItem(inner, item); err != nil {
			return err
		}
	}

	for _, item := range s.Items {
		if err := a.defineNamedItem(inner, item); err != nil {
			return err
		}
	}

	entry.Module = inner

	return nil
}

func (a *Analyzer) defineFunctionSig(scope *Scope, entry *Entry, s *syntax.FnDeclStmt) error {
	sig := &FunctionSig{}

	for _, p := range s.Params {
		if p.Name == "self" {
			continue
		}

		pt, err := a.resolveType(scope, p.Type)
		if err != nil {
			return err
		}

		sig.Params = append(sig.Params, pt)
	}

	if s.Result != nil {
		rt, err := a.resolveType(scope, s.Result)
		if err != nil {
			return err
		}

		sig.Result = rt
	} else {
		sig.Result = UnitType{}
	}

	meta, err := a.testMetadata(s)
	if err != nil {
		return err
	}

	sig.Test = meta
	entry.Function = sig
	entry.Type = &FunctionType{sig.Params, sig.Result}

	funcScope := NewScope(scope)

	for i, p := range s.Params {
		if p.Name == "self" {
			continue
		}

		pe, _ := funcScope.Declare(p.Name, EntryVariable)
		pe.Type = sig.Params[paramIndex(s.Params, i)]
		pe.Mutable = p.Mutable
		pe.Memory = MemoryStack
		pe.State = Defined
	}

	got, err := a.checkBlock(funcScope, s.Body)
	if err != nil {
		return err
	}

	if !Equal(got, sig.Result) {
		if _, unit := got.(UnitType); !(unit && s.Body.Tail == nil) {
			return a.errReturnTypeMismatch(s.Span(), sig.Result, got)
		}
	}

	return nil
}

// paramIndex maps a FnDeclStmt parameter index to its position within
// FunctionSig.Params, which omits a leading `self`.
func paramIndex(params []syntax.Param, i int) int {
	offset := 0
	if len(params) > 0 && params[0].Name == "self" {
		offset = 1
	}

	return i - offset
}

func (a *Analyzer) testMetadata(s *syntax.FnDeclStmt) (*TestMetadata, error) {
	var meta *TestMetadata

	for _, attr := range s.Attributes {
		switch attr.Name {
		case "test":
			if len(s.Params) != 0 {
				return nil, a.errTestFunctionHasArguments(s.Span(), s.Name)
			}

			if meta == nil {
				meta = &TestMetadata{}
			}
		case "should_panic":
			if meta == nil {
				meta = &TestMetadata{}
			}

			meta.ShouldPanic = true
		case "ignore":
			if meta == nil {
				meta = &TestMetadata{}
			}

			meta.Ignored = true
		case "inline", "test_entry":
			// Recognised but carries no analyser-visible effect; consumed
			// by the bytecode emitter.
		default:
			return nil, a.errUnknownAttribute(attr.Span(), attr.Name)
		}
	}

	return meta, nil
}

// defineImpl resolves an `impl Name { … }` block's nested fn/const items
// directly into the receiver type's namespace, rejecting a method whose
// self parameter is not its first. A self parameter carries no type, so
// it is not compared against the receiver.
func (a *Analyzer) defineImpl(scope *Scope, s *syntax.ImplDeclStmt) error {
	recv, ok := scope.Local(s.Name)
	if !ok || recv.Kind != EntryType {
		return a.errUndeclaredItem(s.Span(), s.Name)
	}

	if recv.Module == nil {
		recv.Module = NewScope(scope)
	}

	for _, item := range s.Items {
		if err := a.declareItem(recv.Module, item); err != nil {
			return err
		}
	}

	for _, item := range s.Items {
		if fn, ok := item.(*syntax.FnDeclStmt); ok {
			for i, p := range fn.Params {
				if p.Name == "self" && i != 0 {
					return a.errMethodFirstParameterNotSelf(fn.Span(), fn.Name)
				}
			}
		}

		if err := a.defineNamedItem(recv.Module, item); err != nil {
			return err
		}
	}

	return nil
}

// resolveType converts a parsed type expression into a semantic Type,
// resolving named types (scalars, structs, enums, aliases, contracts)
// against scope and folding array lengths as constant expressions.
func (a *Analyzer) resolveType(scope *Scope, t syntax.Type) (Type, error) {
	switch t := t.(type) {
	case *syntax.NamedType:
		return a.resolveNamedType(scope, t)
	case *syntax.ArrayType:
		elem, err := a.resolveType(scope, t.Elem)
		if err != nil {
			return nil, err
		}

		length, err := a.foldConst(scope, t.Size)
		if err != nil {
			return nil, a.errArrayLengthNotConstant(t.Span())
		}

		return ArrayType{elem, int(length.Int.Int64())}, nil
	case *syntax.TupleType:
		elems := make([]Type, len(t.Elems))

		for i, e := range t.Elems {
			et, err := a.resolveType(scope, e)
			if err != nil {
				return nil, err
			}

			elems[i] = et
		}

		return TupleType{elems}, nil
	case *syntax.RangeType:
		elem, err := a.resolveType(scope, t.Elem)
		if err != nil {
			return nil, err
		}

		return RangeType{elem, t.Inclusive}, nil
	case *syntax.FunctionType:
		params := make([]Type, len(t.Params))

		for i, p := range t.Params {
			pt, err := a.resolveType(scope, p)
			if err != nil {
				return nil, err
			}

			params[i] = pt
		}

		result, err := a.resolveType(scope, t.Result)
		if err != nil {
			return nil, err
		}

		return &FunctionType{params, result}, nil
	default:
		return nil, a.errorf(t.Span(), "unsupported type expression")
	}
}

func (a *Analyzer) resolveNamedType(scope *Scope, t *syntax.NamedType) (Type, error) {
	if bt, ok := scalarKeyword(t.Name); ok {
		return bt, nil
	}

	entry, ok := scope.Resolve(t.Name)
	if !ok || entry.Kind != EntryType {
		return nil, a.errUndeclaredItem(t.Span(), t.Name)
	}

	if err := a.defineEntry(scope, entry); err != nil {
		return nil, err
	}

	return entry.Named, nil
}

// scalarKeyword recognises bool, field, unit, and the parametrised uNN/iNN
// integer keywords; IsKeyword (pkg/lexical) already validated the suffix's
// shape, so this need only re-parse it.
func scalarKeyword(name string) (Type, bool) {
	switch name {
	case "bool":
		return BoolType{}, true
	case "field":
		return FieldType{}, true
	case "()":
		return UnitType{}, true
	}

	if len(name) < 2 {
		return nil, false
	}

	signed := name[0] == 'i'
	if !signed && name[0] != 'u' {
		return nil, false
	}

	bits := 0
	for _, c := range name[1:] {
		if c < '0' || c > '9' {
			return nil, false
		}

		bits = bits*10 + int(c-'0')
	}

	if bits == 0 || bits%8 != 0 || bits > MaxBits {
		return nil, false
	}

	return IntType{signed, bits}, true
}
