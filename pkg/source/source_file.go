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

import (
	"fmt"
	"os"
	"unicode/utf8"
)

// File represents a single source file making up part (or all) of a project
// being compiled.
type File struct {
	// id uniquely identifies this file within its enclosing Set.
	id uint
	// filename is the (project-relative) path of this source file.
	filename string
	// contents holds the file's text, decoded as runes up front so the lexer
	// can index it directly instead of re-decoding UTF-8 on every advance.
	contents []rune
}

// Id returns the identifier of this file within its enclosing Set.
func (f *File) Id() uint {
	return f.id
}

// Filename returns the filename associated with this source file.
func (f *File) Filename() string {
	return f.filename
}

// Contents returns the decoded contents of this source file.
func (f *File) Contents() []rune {
	return f.contents
}

// SyntaxError constructs a syntax error over a given span of this file.
func (f *File) SyntaxError(span Span, msg string) *SyntaxError {
	return &SyntaxError{f, span, msg}
}

// Line extracts the text of the line enclosing the start of span.
func (f *File) Line(span Span) string {
	start := span.start
	for start > 0 && f.contents[start-1] != '\n' {
		start--
	}

	end := span.start
	for end < len(f.contents) && f.contents[end] != '\n' {
		end++
	}

	return string(f.contents[start:end])
}

// Set is an immutable collection of source files sharing a common id space,
// used to resolve a Span back to the File it was taken from.
type Set struct {
	files []File
}

// NewSet constructs an empty set of source files.
func NewSet() *Set {
	return &Set{}
}

// Add decodes the given bytes as UTF-8 and registers them as a new file
// within this set, returning the file and its assigned id. Non-UTF-8 input is
// rejected, matching spec.md §6.1.
func (s *Set) Add(filename string, contents []byte) (*File, error) {
	if !utf8.Valid(contents) {
		return nil, fmt.Errorf("%s: invalid UTF-8 input", filename)
	}

	id := uint(len(s.files))
	s.files = append(s.files, File{id, filename, []rune(string(contents))})

	return &s.files[id], nil
}

// ReadFiles reads each named file from disk and registers it in this set.
func (s *Set) ReadFiles(filenames ...string) ([]*File, error) {
	files := make([]*File, len(filenames))

	for i, name := range filenames {
		bytes, err := os.ReadFile(name)
		if err != nil {
			return nil, err
		}

		if files[i], err = s.Add(name, bytes); err != nil {
			return nil, err
		}
	}

	return files, nil
}

// Get returns the file with the given id.
func (s *Set) Get(id uint) *File {
	return &s.files[id]
}
