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
package source

import "fmt"

// SyntaxError is a structured error retaining the span of the original text
// where it arose. Despite the name, it is used uniformly for all five error
// kinds named in spec.md §7 (lexical, syntax, semantic, inference/overflow
// and — where a span is available — runtime), so every stage of the pipeline
// reports errors the same way.
type SyntaxError struct {
	file *File
	span Span
	msg  string
}

// SourceFile returns the file this error was reported against.
func (e *SyntaxError) SourceFile() *File {
	return e.file
}

// Span returns the span of text this error covers.
func (e *SyntaxError) Span() Span {
	return e.span
}

// Message returns the human-readable message for this error.
func (e *SyntaxError) Message() string {
	return e.msg
}

// Error implements the error interface.
func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s:%d:%d: %s", e.file.Filename(), e.span.Line, e.span.Column, e.msg)
}

// Map associates AST/IR nodes (by identity) with the span of source text
// they were parsed from. Kept separate from the node types themselves so
// that syntax and semantic nodes do not need to carry their own Span field
// (and so that folding / desugaring can cheaply re-point a span at a new
// node via Copy).
type Map[T comparable] struct {
	mapping map[T]Span
	file    *File
}

// NewMap constructs an initially empty source map for the given file.
func NewMap[T comparable](file *File) *Map[T] {
	return &Map[T]{make(map[T]Span), file}
}

// Source returns the file this map annotates.
func (m *Map[T]) Source() *File {
	return m.file
}

// Put registers the span of a freshly constructed node. Panics if the node
// is already registered, since that would indicate a node identity clash.
func (m *Map[T]) Put(item T, span Span) {
	if _, ok := m.mapping[item]; ok {
		panic(fmt.Sprintf("source map key already exists: %v", any(item)))
	}

	m.mapping[item] = span
}

// Has checks whether a node is registered in this map.
func (m *Map[T]) Has(item T) bool {
	_, ok := m.mapping[item]
	return ok
}

// Get returns the span registered for a node, panicking if absent.
func (m *Map[T]) Get(item T) Span {
	if s, ok := m.mapping[item]; ok {
		return s
	}

	panic(fmt.Sprintf("missing source map entry for %v", any(item)))
}

// Copy duplicates the span registered for "from" onto "to", used when a
// node is rewritten (e.g. constant folding) into a new node that should
// report errors at the same location.
func (m *Map[T]) Copy(from, to T) {
	if span, ok := m.mapping[from]; ok {
		m.mapping[to] = span
	}
}

// Maps aggregates per-file Map instances so that a diagnostic can be raised
// against any node regardless of which source file produced it — used once
// module linking has merged several parsed files together.
type Maps[T comparable] struct {
	maps []*Map[T]
}

// NewMaps constructs an initially empty aggregate of source maps.
func NewMaps[T comparable]() *Maps[T] {
	return &Maps[T]{}
}

// Join incorporates a per-file map into this aggregate.
func (m *Maps[T]) Join(mp *Map[T]) {
	m.maps = append(m.maps, mp)
}

// Has checks whether any joined map contains the given node.
func (m *Maps[T]) Has(node T) bool {
	for _, mp := range m.maps {
		if mp.Has(node) {
			return true
		}
	}

	return false
}

// SyntaxError constructs a syntax error against whichever joined map
// contains the given node. Panics if no map contains it, which would
// indicate a compiler bug (an unregistered node reached diagnostics).
func (m *Maps[T]) SyntaxError(node T, msg string) *SyntaxError {
	for _, mp := range m.maps {
		if mp.Has(node) {
			return mp.Source().SyntaxError(mp.Get(node), msg)
		}
	}

	panic("missing source mapping for node")
}
