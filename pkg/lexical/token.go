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

// Package lexical implements the Zinc lexer: a single-pass, O(n) scan from
// source text to a flat token stream, per the lexer contract.
package lexical

import (
	"fmt"

	"github.com/zinc-lang/zinc/pkg/source"
)

// Kind discriminates the tagged token variant: keyword, identifier, literal
// (boolean / integer / string), symbol, comment.
type Kind uint8

const (
	// End marks the end of the token stream. Every token stream produced by
	// Lex terminates with exactly one End token.
	End Kind = iota
	// Identifier is any word not matching the keyword table.
	Identifier
	// Keyword is a word matching the fixed keyword table (see IsKeyword).
	Keyword
	// BooleanLiteral is the `true` or `false` literal.
	BooleanLiteral
	// IntegerLiteral is a decimal or hexadecimal integer literal.
	IntegerLiteral
	// StringLiteral is a `"…"` literal.
	StringLiteral
	// Symbol is a punctuation or operator lexeme, matched by maximal munch.
	Symbol
	// Comment is a `//` or `/* … */` comment, filtered from the pipeline but
	// retained as a token kind for downstream stages that request it (e.g.
	// doc extraction).
	Comment
)

// String renders a Kind for diagnostics.
func (k Kind) String() string {
	switch k {
	case End:
		return "end-of-file"
	case Identifier:
		return "identifier"
	case Keyword:
		return "keyword"
	case BooleanLiteral:
		return "boolean literal"
	case IntegerLiteral:
		return "integer literal"
	case StringLiteral:
		return "string literal"
	case Symbol:
		return "symbol"
	case Comment:
		return "comment"
	default:
		return "unknown"
	}
}

// Token is a single lexeme: its kind, literal text as it appeared in the
// source (for symbols and keywords, the canonical spelling; for
// identifiers and literals, the raw text), and the span it was lexed from.
type Token struct {
	Kind Kind
	Text string
	Span source.Span
}

// String renders a token for diagnostics and test failure messages.
func (t Token) String() string {
	return fmt.Sprintf("%s(%q)", t.Kind, t.Text)
}

// Is reports whether this token is a symbol or keyword with the given
// canonical text — the common case when a parser tier checks "is the next
// token `+`" or "is the next token `fn`".
func (t Token) Is(kind Kind, text string) bool {
	return t.Kind == kind && t.Text == text
}
