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
	"testing"

	"github.com/zinc-lang/zinc/pkg/source"
)

func lexString(t *testing.T, text string) []Token {
	t.Helper()

	set := source.NewSet()

	file, err := set.Add("test.zn", []byte(text))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tokens, err := Lex(file)
	if err != nil {
		t.Fatalf("unexpected lex error: %v", err)
	}

	return tokens
}

func checkKinds(t *testing.T, tokens []Token, kinds ...Kind) {
	t.Helper()

	if len(tokens) != len(kinds) {
		t.Fatalf("got %d tokens %v, expected %d kinds %v", len(tokens), tokens, len(kinds), kinds)
	}

	for i, k := range kinds {
		if tokens[i].Kind != k {
			t.Errorf("token %d: got kind %v, expected %v (%v)", i, tokens[i].Kind, k, tokens[i])
		}
	}
}

func TestLexer_Empty(t *testing.T) {
	checkKinds(t, lexString(t, ""), End)
}

func TestLexer_WhitespaceOnly(t *testing.T) {
	checkKinds(t, lexString(t, "  \t\n\n  "), End)
}

func TestLexer_LineComment(t *testing.T) {
	tokens := lexString(t, "// hello\nlet")
	checkKinds(t, tokens, Keyword, End)

	if tokens[0].Span.Line != 2 {
		t.Errorf("expected let on line 2, got %d", tokens[0].Span.Line)
	}
}

func TestLexer_BlockComment(t *testing.T) {
	checkKinds(t, lexString(t, "/* a /* nested */ comment */ let"), Keyword, End)
}

func TestLexer_UnterminatedBlockComment(t *testing.T) {
	set := source.NewSet()

	file, _ := set.Add("test.zn", []byte("/* oops"))
	if _, err := Lex(file); err == nil {
		t.Fatal("expected an error for an unterminated block comment")
	}
}

func TestLexer_StringLiteral(t *testing.T) {
	tokens := lexString(t, `"hello \"world\""`)
	checkKinds(t, tokens, StringLiteral, End)

	if tokens[0].Text != `hello "world"` {
		t.Errorf("got %q", tokens[0].Text)
	}
}

func TestLexer_UnterminatedString(t *testing.T) {
	set := source.NewSet()

	file, _ := set.Add("test.zn", []byte(`"oops`))
	if _, err := Lex(file); err == nil {
		t.Fatal("expected an error for an unterminated string literal")
	}
}

func TestLexer_IntegerLiterals(t *testing.T) {
	tokens := lexString(t, "123 1_000 0xFF 0x_ff_00")
	checkKinds(t, tokens, IntegerLiteral, IntegerLiteral, IntegerLiteral, IntegerLiteral, End)
}

func TestLexer_InvalidHex(t *testing.T) {
	set := source.NewSet()

	file, _ := set.Add("test.zn", []byte("0x"))
	if _, err := Lex(file); err == nil {
		t.Fatal("expected an error for an empty hexadecimal literal")
	}
}

func TestLexer_Keywords(t *testing.T) {
	tokens := lexString(t, "let mut fn u8 i248 field true false")
	checkKinds(t, tokens, Keyword, Keyword, Keyword, Keyword, Keyword, Keyword, BooleanLiteral, BooleanLiteral, End)
}

func TestLexer_IdentifierNotKeyword(t *testing.T) {
	tokens := lexString(t, "u7 i249 u0 letter")
	checkKinds(t, tokens, Identifier, Identifier, Identifier, Identifier, End)
}

func TestLexer_MaximalMunchSymbols(t *testing.T) {
	tokens := lexString(t, "..= <<= >>= #![ #[ .. :: -> => && || ^^ == != <= >= << >> += -=")

	for i := 0; i < len(tokens)-1; i++ {
		if tokens[i].Kind != Symbol {
			t.Errorf("token %d: got %v, expected symbol", i, tokens[i])
		}
	}

	want := []string{"..=", "<<=", ">>=", "#![", "#[", "..", "::", "->", "=>", "&&", "||", "^^", "==", "!=", "<=", ">=", "<<", ">>", "+=", "-="}
	for i, w := range want {
		if tokens[i].Text != w {
			t.Errorf("token %d: got %q, expected %q", i, tokens[i].Text, w)
		}
	}
}

func TestLexer_SingleCharSymbolsNotGreedy(t *testing.T) {
	tokens := lexString(t, "(){}[],;:=+-*/%<>!~&|^.")
	checkKinds(t, tokens,
		Symbol, Symbol, Symbol, Symbol, Symbol, Symbol, Symbol, Symbol, Symbol,
		Symbol, Symbol, Symbol, Symbol, Symbol, Symbol, Symbol, Symbol, Symbol,
		Symbol, Symbol, Symbol, Symbol, Symbol, End)
}

func TestLexer_InvalidSymbol(t *testing.T) {
	set := source.NewSet()

	file, _ := set.Add("test.zn", []byte("@"))
	if _, err := Lex(file); err == nil {
		t.Fatal("expected an error for an invalid symbol")
	}
}

func TestLexer_CommentsFiltered(t *testing.T) {
	tokens := lexString(t, "let // trailing comment\nx")
	checkKinds(t, tokens, Keyword, Identifier, End)
}

func TestLexer_TrailingLetterAfterNumberRejected(t *testing.T) {
	set := source.NewSet()

	file, _ := set.Add("test.zn", []byte("123abc"))
	if _, err := Lex(file); err == nil {
		t.Fatal("expected an error for a number directly followed by a letter")
	}
}

func TestLexer_LineColumnTracking(t *testing.T) {
	tokens := lexString(t, "let\nmut x")
	checkKinds(t, tokens, Keyword, Keyword, Identifier, End)

	if tokens[0].Span.Line != 1 || tokens[0].Span.Column != 1 {
		t.Errorf("let: got line %d col %d", tokens[0].Span.Line, tokens[0].Span.Column)
	}

	if tokens[1].Span.Line != 2 || tokens[1].Span.Column != 1 {
		t.Errorf("mut: got line %d col %d", tokens[1].Span.Line, tokens[1].Span.Column)
	}

	if tokens[2].Span.Line != 2 || tokens[2].Span.Column != 5 {
		t.Errorf("x: got line %d col %d", tokens[2].Span.Line, tokens[2].Span.Column)
	}
}
