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

// Span represents a contiguous slice of some source file, identified by a
// file id plus a half-open rune range [Start,End). Retaining physical
// indices (rather than the substring itself) lets diagnostics recover the
// enclosing line cheaply.
type Span struct {
	// File identifies which source file this span belongs to.
	File uint
	// Line is the 1-indexed line on which this span begins.
	Line int
	// Column is the 1-indexed column (in runes) on which this span begins.
	Column int
	// start is the first rune of this span in the file's contents.
	start int
	// end is one past the final rune of this span in the file's contents.
	end int
}

// NewSpan constructs a new span, checking that start <= end.
func NewSpan(file uint, line, column, start, end int) Span {
	if start > end {
		panic("invalid span")
	}

	return Span{file, line, column, start, end}
}

// Start returns the starting rune index of this span within its file.
func (p Span) Start() int {
	return p.start
}

// End returns one past the final rune index of this span within its file.
func (p Span) End() int {
	return p.end
}

// Length returns the number of runes covered by this span.
func (p Span) Length() int {
	return p.end - p.start
}

// Merge returns the smallest span enclosing both p and q. Both must refer to
// the same file.
func (p Span) Merge(q Span) Span {
	if p.File != q.File {
		panic("cannot merge spans from different files")
	}

	start, end := p.start, p.end
	if q.start < start {
		start = q.start
	}

	if q.end > end {
		end = q.end
	}
	//
	if q.start <= p.start {
		return NewSpan(p.File, q.Line, q.Column, start, end)
	}

	return NewSpan(p.File, p.Line, p.Column, start, end)
}
