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
package lexical

import (
	"fmt"
	"strings"

	"github.com/zinc-lang/zinc/pkg/source"
)

// Lexer turns the runes of a single source.File into a flat token stream.
// It advances a cursor and, at each step, dispatches on the first rune's
// class to a sub-scanner; every sub-scanner reports how many runes it
// consumed. The lexer is single-pass and O(n) in the length of the input.
type Lexer struct {
	file   *source.File
	runes  []rune
	pos    int
	line   int
	column int
}

// NewLexer constructs a lexer over the given file's decoded contents.
func NewLexer(file *source.File) *Lexer {
	return &Lexer{file, file.Contents(), 0, 1, 1}
}

// Lex runs the lexer to completion, returning the filtered token stream
// (whitespace and comments removed) terminated by a single End token, or
// the first lexical error encountered.
func Lex(file *source.File) ([]Token, error) {
	lexer := NewLexer(file)

	var tokens []Token

	for {
		tok, err := lexer.next()
		if err != nil {
			return nil, err
		}

		switch tok.Kind {
		case Comment:
			// discarded: the pipeline never sees comments unless a
			// downstream stage explicitly asks for them, which none yet do.
		default:
			tokens = append(tokens, tok)
		}

		if tok.Kind == End {
			return tokens, nil
		}
	}
}

func (l *Lexer) atEnd() bool {
	return l.pos >= len(l.runes)
}

func (l *Lexer) peek(offset int) rune {
	i := l.pos + offset
	if i < 0 || i >= len(l.runes) {
		return 0
	}

	return l.runes[i]
}

// advance consumes and returns the current rune, updating line/column.
func (l *Lexer) advance() rune {
	r := l.runes[l.pos]
	l.pos++

	if r == '\n' {
		l.line++
		l.column = 1
	} else {
		l.column++
	}

	return r
}

func (l *Lexer) span(startPos, startLine, startCol int) source.Span {
	return source.NewSpan(l.file.Id(), startLine, startCol, startPos, l.pos)
}

func (l *Lexer) errorf(startPos, startLine, startCol int, format string, args ...any) error {
	span := l.span(startPos, startLine, startCol)
	return l.file.SyntaxError(span, fmt.Sprintf(format, args...))
}

// next scans and returns the single next token (possibly a Comment, which
// Lex filters out), or the first lexical error.
func (l *Lexer) next() (Token, error) {
	l.skipWhitespace()

	startPos, startLine, startCol := l.pos, l.line, l.column

	if l.atEnd() {
		return Token{End, "", l.span(startPos, startLine, startCol)}, nil
	}

	r := l.peek(0)

	switch {
	case r == '/' && l.peek(1) == '/':
		return l.scanLineComment(startPos, startLine, startCol)
	case r == '/' && l.peek(1) == '*':
		return l.scanBlockComment(startPos, startLine, startCol)
	case r == '"':
		return l.scanString(startPos, startLine, startCol)
	case isDigit(r):
		return l.scanNumber(startPos, startLine, startCol)
	case isWordStart(r):
		return l.scanWord(startPos, startLine, startCol)
	default:
		return l.scanSymbol(startPos, startLine, startCol)
	}
}

func (l *Lexer) skipWhitespace() {
	for !l.atEnd() {
		switch l.peek(0) {
		case ' ', '\t', '\r', '\n':
			l.advance()
		default:
			return
		}
	}
}

func (l *Lexer) scanLineComment(startPos, startLine, startCol int) (Token, error) {
	for !l.atEnd() && l.peek(0) != '\n' {
		l.advance()
	}

	return Token{Comment, l.text(startPos), l.span(startPos, startLine, startCol)}, nil
}

func (l *Lexer) scanBlockComment(startPos, startLine, startCol int) (Token, error) {
	l.advance() // '/'
	l.advance() // '*'

	depth := 1

	for depth > 0 {
		if l.atEnd() {
			return Token{}, l.errorf(startPos, startLine, startCol, "unterminated block comment")
		}

		switch {
		case l.peek(0) == '/' && l.peek(1) == '*':
			l.advance()
			l.advance()
			depth++
		case l.peek(0) == '*' && l.peek(1) == '/':
			l.advance()
			l.advance()
			depth--
		default:
			l.advance()
		}
	}

	return Token{Comment, l.text(startPos), l.span(startPos, startLine, startCol)}, nil
}

func (l *Lexer) scanString(startPos, startLine, startCol int) (Token, error) {
	l.advance() // opening quote

	var sb strings.Builder

	for {
		if l.atEnd() {
			return Token{}, l.errorf(startPos, startLine, startCol, "unterminated string literal")
		}

		r := l.peek(0)

		switch {
		case r == '"':
			l.advance()

			return Token{StringLiteral, sb.String(), l.span(startPos, startLine, startCol)}, nil
		case r == '\\' && (l.peek(1) == '"' || l.peek(1) == '\\'):
			l.advance()
			sb.WriteRune(l.advance())
		case r == '\n':
			return Token{}, l.errorf(startPos, startLine, startCol, "unterminated string literal")
		default:
			sb.WriteRune(l.advance())
		}
	}
}

func (l *Lexer) scanNumber(startPos, startLine, startCol int) (Token, error) {
	if l.peek(0) == '0' && (l.peek(1) == 'x' || l.peek(1) == 'X') {
		l.advance()
		l.advance()

		digits := 0
		for !l.atEnd() && (isHexDigit(l.peek(0)) || l.peek(0) == '_') {
			if l.peek(0) != '_' {
				digits++
			}

			l.advance()
		}

		if digits == 0 {
			return Token{}, l.errorf(startPos, startLine, startCol, "invalid hexadecimal integer literal")
		}

		return Token{IntegerLiteral, l.text(startPos), l.span(startPos, startLine, startCol)}, nil
	}

	for !l.atEnd() && (isDigit(l.peek(0)) || l.peek(0) == '_') {
		l.advance()
	}

	// A number immediately followed by a word character (other than a
	// recognised type-suffix boundary) is an invalid literal; the lexer
	// itself does not parse numeric suffixes, so any trailing letter is
	// rejected here to avoid silently truncating e.g. `123abc`.
	if !l.atEnd() && isWordStart(l.peek(0)) {
		return Token{}, l.errorf(startPos, startLine, startCol, "invalid integer literal")
	}

	return Token{IntegerLiteral, l.text(startPos), l.span(startPos, startLine, startCol)}, nil
}

func (l *Lexer) scanWord(startPos, startLine, startCol int) (Token, error) {
	for !l.atEnd() && isWordPart(l.peek(0)) {
		l.advance()
	}

	text := l.text(startPos)
	span := l.span(startPos, startLine, startCol)

	switch text {
	case "true", "false":
		return Token{BooleanLiteral, text, span}, nil
	default:
		if IsKeyword(text) {
			return Token{Keyword, text, span}, nil
		}

		return Token{Identifier, text, span}, nil
	}
}

func (l *Lexer) scanSymbol(startPos, startLine, startCol int) (Token, error) {
	for _, sym := range symbols {
		if l.matches(sym) {
			for range sym {
				l.advance()
			}

			return Token{Symbol, sym, l.span(startPos, startLine, startCol)}, nil
		}
	}

	return Token{}, l.errorf(startPos, startLine, startCol, "invalid symbol %q", string(l.peek(0)))
}

func (l *Lexer) matches(sym string) bool {
	for i, r := range []rune(sym) {
		if l.peek(i) != r {
			return false
		}
	}

	return true
}

func (l *Lexer) text(startPos int) string {
	return string(l.runes[startPos:l.pos])
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isHexDigit(r rune) bool {
	return isDigit(r) || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}

func isWordStart(r rune) bool {
	return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isWordPart(r rune) bool {
	return isWordStart(r) || isDigit(r)
}
