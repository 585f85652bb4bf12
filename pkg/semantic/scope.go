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
	"go.uber.org/atomic"
)

// itemIDCounter is the process-wide monotonically increasing item id
// counter: every declared scope item receives a stable unique id for
// diagnostics and cross-module references. It is the only piece of mutable
// process state and is guarded with an atomic so a multi-threaded host
// (e.g. compiling several modules from goroutines) never races on it; the
// core pipeline itself remains single-threaded and synchronous.
var itemIDCounter atomic.Uint64

// nextItemID allocates the next item id. Overflow beyond the id space is a
// fatal error in any realistic compilation, so it is not specially guarded
// here; a process compiling more than 2^64 items has larger problems.
func nextItemID() uint64 {
	return itemIDCounter.Inc()
}

// BindingState is the lazy-binding state of a scope entry, used by the
// two-pass declare/define scheme (and to detect cyclic type aliases and
// constants during pass 2).
type BindingState uint8

const (
	// Declared means pass 1 has entered the item's name but not resolved
	// its contents.
	Declared BindingState = iota
	// Defining means pass 2 is actively resolving this item's body;
	// re-entering an item in this state indicates a cycle.
	Defining
	// Defined means pass 2 has fully resolved this item's body.
	Defined
)

// EntryKind discriminates what kind of thing a scope entry names.
type EntryKind uint8

const (
	// EntryVariable is a local or parameter binding.
	EntryVariable EntryKind = iota
	// EntryConstant is a folded compile-time value.
	EntryConstant
	// EntryType is a handle to a type (struct, enum, alias, contract).
	EntryType
	// EntryModule is a nested scope.
	EntryModule
	// EntryFunction is a function declaration.
	EntryFunction
	// EntryEnumVariant is a single enumeration variant, reached through
	// its enclosing enumeration's namespace.
	EntryEnumVariant
)

// MemoryClass is where a variable's backing storage lives.
type MemoryClass uint8

const (
	// MemoryStack is the VM's flat data stack.
	MemoryStack MemoryClass = iota
	// MemoryContractStorage is a contract's persistent storage field.
	MemoryContractStorage
)

// Entry is one binding in a Scope: a variable, constant, type, module, or
// enumeration variant.
type Entry struct {
	ID    uint64
	Name  string
	Kind  EntryKind
	State BindingState

	// Variable-only fields.
	Type      Type
	Mutable   bool
	Memory    MemoryClass
	Address   int

	// Constant-only field: the folded value.
	Value *ConstValue

	// Type-only field: the resolved type this entry names.
	Named Type

	// Module-only field.
	Module *Scope

	// Function-only field.
	Function *FunctionSig

	// EnumVariant-only fields.
	EnumType *EnumType
	Variant  EnumVariant

	// Node is the syntax node this entry was declared from, used to
	// resolve its body lazily in pass 2.
	Node syntax.Stmt
}

// FunctionSig is a function's resolved signature.
type FunctionSig struct {
	Params []Type
	Result Type
	Entry  int // bytecode entry address, assigned during emission
	Test   *TestMetadata
}

// TestMetadata records `#[test]`/`#[should_panic]`/`#[ignore]` metadata for
// a zero-argument function.
type TestMetadata struct {
	ShouldPanic bool
	Ignored     bool
}

// Scope is a tree of name tables. Each entry is one of variable, constant,
// type, module, or enumeration variant. Shadowing within the same scope
// level is forbidden; inner scopes may shadow outer. Scopes have a strict
// parent chain; `use` statements insert re-export aliases.
type Scope struct {
	parent  *Scope
	entries map[string]*Entry
}

// NewScope constructs a root scope with no parent (typically one per
// module, chained to the enclosing module's scope).
func NewScope(parent *Scope) *Scope {
	return &Scope{parent, make(map[string]*Entry)}
}

// Parent returns this scope's enclosing scope, or nil for a root scope.
func (s *Scope) Parent() *Scope {
	return s.parent
}

// Declare enters a new entry at this scope level. Redeclaring a name
// already present at this exact level is an error (shadowing is only legal
// across scope levels); the caller is responsible for raising it.
func (s *Scope) Declare(name string, kind EntryKind) (*Entry, bool) {
	if _, exists := s.entries[name]; exists {
		return nil, false
	}

	entry := &Entry{ID: nextItemID(), Name: name, Kind: kind, State: Declared}
	s.entries[name] = entry

	return entry, true
}

// Local looks up a name at this scope level only (no parent walk).
func (s *Scope) Local(name string) (*Entry, bool) {
	e, ok := s.entries[name]
	return e, ok
}

// Resolve looks up a name in this scope or any ancestor, innermost first.
func (s *Scope) Resolve(name string) (*Entry, bool) {
	for sc := s; sc != nil; sc = sc.parent {
		if e, ok := sc.entries[name]; ok {
			return e, true
		}
	}

	return nil, false
}

// Alias re-exports an existing entry under a new name at this scope level,
// implementing `use path as alias;`. Returns false if the name already
// exists at this level.
func (s *Scope) Alias(name string, target *Entry) bool {
	if _, exists := s.entries[name]; exists {
		return false
	}

	s.entries[name] = target

	return true
}
