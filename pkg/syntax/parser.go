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
package syntax

import (
	"fmt"
	"strings"

	"github.com/zinc-lang/zinc/pkg/lexical"
	"github.com/zinc-lang/zinc/pkg/source"
)

// Parser consumes a token stream produced by pkg/lexical and yields a
// Module, or the first syntax error with location and an "expected one of"
// set. It does not attempt error recovery: parsing stops at the first
// failure.
type Parser struct {
	file   *source.File
	tokens []lexical.Token
	pos    int

	// noStructLiteral suppresses `Name { … }` struct-literal parsing while
	// set, so that the condition of an `if`/`for…while` and the scrutinee
	// of a `match` can be followed by a block without the parser mistaking
	// the block's opening `{` for a struct literal's field list.
	noStructLiteral bool
}

// NewParser constructs a parser over an already-lexed token stream.
func NewParser(file *source.File, tokens []lexical.Token) *Parser {
	return &Parser{file: file, tokens: tokens}
}

// Parse lexes and parses a whole file into a Module.
func Parse(file *source.File) (module *Module, err error) {
	tokens, err := lexical.Lex(file)
	if err != nil {
		return nil, err
	}

	return NewParser(file, tokens).ParseModule()
}

// parseError is the internal panic payload used to unwind the recursive
// descent to ParseModule's recover without threading an error return
// through every helper — standard for a parser with no error recovery.
type parseError struct {
	err error
}

// ParseModule parses the whole token stream into a Module, translating any
// internal panic into a returned error.
func (p *Parser) ParseModule() (module *Module, err error) {
	defer func() {
		if r := recover(); r != nil {
			if pe, ok := r.(parseError); ok {
				err = pe.err
			} else {
				panic(r)
			}
		}
	}()

	start := p.peek(0).Span

	var items []Stmt
	for !p.atEnd() {
		items = append(items, p.parseItem())
	}

	end := p.peek(0).Span

	return &Module{items, start.Merge(end)}, nil
}

// ---------------------------------------------------------------- cursor

func (p *Parser) peek(offset int) lexical.Token {
	i := p.pos + offset
	if i >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}

	return p.tokens[i]
}

func (p *Parser) atEnd() bool {
	return p.peek(0).Kind == lexical.End
}

func (p *Parser) advance() lexical.Token {
	tok := p.peek(0)
	if !p.atEnd() {
		p.pos++
	}

	return tok
}

func (p *Parser) check(kind lexical.Kind, text string) bool {
	return p.peek(0).Is(kind, text)
}

func (p *Parser) checkKeyword(word string) bool {
	return p.check(lexical.Keyword, word)
}

func (p *Parser) checkSymbol(sym string) bool {
	return p.check(lexical.Symbol, sym)
}

func (p *Parser) matchSymbol(sym string) bool {
	if p.checkSymbol(sym) {
		p.advance()
		return true
	}

	return false
}

func (p *Parser) matchKeyword(word string) bool {
	if p.checkKeyword(word) {
		p.advance()
		return true
	}

	return false
}

func (p *Parser) fail(span source.Span, format string, args ...any) {
	panic(parseError{p.file.SyntaxError(span, fmt.Sprintf(format, args...))})
}

// expect consumes the next token if it matches kind/text, otherwise raises
// a syntax error naming the single expected lexeme.
func (p *Parser) expect(kind lexical.Kind, text string) lexical.Token {
	if !p.check(kind, text) {
		p.fail(p.peek(0).Span, "expected %q, found %s", text, p.peek(0))
	}

	return p.advance()
}

func (p *Parser) expectOneOf(kind lexical.Kind, texts ...string) lexical.Token {
	for _, t := range texts {
		if p.check(kind, t) {
			return p.advance()
		}
	}

	p.fail(p.peek(0).Span, "expected one of %s, found %s", strings.Join(texts, ", "), p.peek(0))

	panic("unreachable")
}

func (p *Parser) expectIdentifier() string {
	if p.peek(0).Kind != lexical.Identifier {
		p.fail(p.peek(0).Span, "expected an identifier, found %s", p.peek(0))
	}

	return p.advance().Text
}

// ---------------------------------------------------------------- attributes

func (p *Parser) parseAttributes() []Attribute {
	var attrs []Attribute

	for p.checkSymbol("#[") || p.checkSymbol("#![") {
		inner := p.checkSymbol("#![")
		start := p.advance().Span

		name := p.expectIdentifier()

		attr := Attribute{Name: name, Inner: inner}

		switch {
		case p.matchSymbol("="):
			switch p.peek(0).Kind {
			case lexical.StringLiteral, lexical.IntegerLiteral, lexical.Identifier:
				attr.Value = p.advance().Text
			default:
				p.fail(p.peek(0).Span, "expected a literal, found %s", p.peek(0))
			}
		case p.matchSymbol("("):
			for !p.checkSymbol(")") {
				attr.Args = append(attr.Args, p.expectIdentifier())
				if !p.matchSymbol(",") {
					break
				}
			}

			p.expect(lexical.Symbol, ")")
		}

		end := p.expect(lexical.Symbol, "]").Span
		attr.span = start.Merge(end)
		attrs = append(attrs, attr)
	}

	return attrs
}

// ---------------------------------------------------------------- items / statements

func (p *Parser) parseItem() Stmt {
	attrs := p.parseAttributes()

	public := p.matchKeyword("pub")

	switch {
	case p.checkKeyword("fn"):
		return p.parseFn(attrs, public)
	case p.checkKeyword("let"):
		return p.parseLet()
	case p.checkKeyword("const"):
		return p.parseConst()
	case p.checkKeyword("type"):
		return p.parseTypeAlias()
	case p.checkKeyword("struct"):
		return p.parseStruct()
	case p.checkKeyword("enum"):
		return p.parseEnum()
	case p.checkKeyword("impl"):
		return p.parseImpl()
	case p.checkKeyword("contract"):
		return p.parseContract()
	case p.checkKeyword("mod"):
		return p.parseMod()
	case p.checkKeyword("use"):
		return p.parseUse()
	default:
		p.fail(p.peek(0).Span, "expected an item, found %s", p.peek(0))
		panic("unreachable")
	}
}

func (p *Parser) parseStmt() Stmt {
	switch {
	case p.checkKeyword("let"):
		return p.parseLet()
	case p.checkKeyword("const"):
		return p.parseConst()
	case p.checkKeyword("type"):
		return p.parseTypeAlias()
	case p.checkKeyword("struct"):
		return p.parseStruct()
	case p.checkKeyword("enum"):
		return p.parseEnum()
	case p.checkKeyword("fn"):
		return p.parseFn(p.parseAttributes(), false)
	case p.checkKeyword("impl"):
		return p.parseImpl()
	case p.checkKeyword("contract"):
		return p.parseContract()
	case p.checkKeyword("mod"):
		return p.parseMod()
	case p.checkKeyword("use"):
		return p.parseUse()
	case p.checkKeyword("for"):
		return p.parseFor()
	case (p.peek(0).Is(lexical.Identifier, "assert") || p.peek(0).Is(lexical.Identifier, "require")) &&
		p.peek(1).Is(lexical.Symbol, "!"):
		return p.parseAssert()
	case p.peek(0).Is(lexical.Identifier, "dbg") && p.peek(1).Is(lexical.Symbol, "!"):
		return p.parseDbgStmt()
	default:
		return p.parseExprOrAssignStmt()
	}
}

// parseAssert parses `assert!(cond)` or `require!(cond, message?)` as a
// dedicated statement form, matching the dedicated bytecode Assert
// instruction rather than lowering through a generic call.
func (p *Parser) parseAssert() Stmt {
	start := p.advance().Span // 'assert' / 'require'
	p.expect(lexical.Symbol, "!")
	p.expect(lexical.Symbol, "(")

	cond := p.parseExpr()

	var message Expr
	if p.matchSymbol(",") {
		message = p.parseExpr()
	}

	p.expect(lexical.Symbol, ")")

	end := p.expect(lexical.Symbol, ";").Span

	return &AssertStmt{cond, message, start.Merge(end)}
}

// parseDbgStmt parses `dbg!(format, args…);` used as a standalone
// statement rather than nested within a larger expression.
func (p *Parser) parseDbgStmt() Stmt {
	start := p.peek(0).Span

	expr := p.parseDbg().(*DbgExpr)

	end := p.expect(lexical.Symbol, ";").Span

	return &DbgStmt{expr, start.Merge(end)}
}

func (p *Parser) parseType() Type {
	start := p.peek(0).Span

	switch {
	case p.matchSymbol("("):
		var elems []Type
		for !p.checkSymbol(")") {
			elems = append(elems, p.parseType())
			if !p.matchSymbol(",") {
				break
			}
		}

		end := p.expect(lexical.Symbol, ")").Span

		return &TupleType{elems, start.Merge(end)}
	case p.matchSymbol("["):
		elem := p.parseType()
		p.expect(lexical.Symbol, ";")
		size := p.parseExpr()
		end := p.expect(lexical.Symbol, "]").Span

		return &ArrayType{elem, size, start.Merge(end)}
	default:
		// bool, field, Self and the uNN/iNN integer types lex as keywords.
		if tok := p.peek(0); tok.Kind == lexical.Keyword {
			t := tok.Text
			if t == "bool" || t == "field" || t == "Self" || (len(t) > 1 && (t[0] == 'u' || t[0] == 'i') && t[1] >= '0' && t[1] <= '9') {
				p.advance()
				return &NamedType{t, start}
			}
		}

		name := p.expectIdentifier()
		return &NamedType{name, start}
	}
}

func (p *Parser) parseLet() Stmt {
	start := p.advance().Span // 'let'
	mutable := p.matchKeyword("mut")
	name := p.expectIdentifier()

	var typ Type
	if p.matchSymbol(":") {
		typ = p.parseType()
	}

	p.expect(lexical.Symbol, "=")
	value := p.parseExpr()
	end := p.expect(lexical.Symbol, ";").Span

	return &LetStmt{mutable, name, typ, value, start.Merge(end)}
}

func (p *Parser) parseConst() Stmt {
	start := p.advance().Span // 'const'
	name := p.expectIdentifier()
	p.expect(lexical.Symbol, ":")
	typ := p.parseType()
	p.expect(lexical.Symbol, "=")
	value := p.parseExpr()
	end := p.expect(lexical.Symbol, ";").Span

	return &ConstStmt{name, typ, value, start.Merge(end)}
}

func (p *Parser) parseTypeAlias() Stmt {
	start := p.advance().Span // 'type'
	name := p.expectIdentifier()
	p.expect(lexical.Symbol, "=")
	typ := p.parseType()
	end := p.expect(lexical.Symbol, ";").Span

	return &TypeAliasStmt{name, typ, start.Merge(end)}
}

func (p *Parser) parseFieldList() []FieldDecl {
	p.expect(lexical.Symbol, "{")

	var fields []FieldDecl
	for !p.checkSymbol("}") {
		name := p.expectIdentifier()
		p.expect(lexical.Symbol, ":")
		typ := p.parseType()
		fields = append(fields, FieldDecl{name, typ})

		if !p.matchSymbol(",") {
			break
		}
	}

	p.expect(lexical.Symbol, "}")

	return fields
}

// parseStructLiteral parses the `{ field: e, … }` tail of `Name { … }`, the
// structure-literal operand form of §4.2's grammar table. name/start are
// the already-consumed leading identifier.
func (p *Parser) parseStructLiteral(name string, start source.Span) Expr {
	p.expect(lexical.Symbol, "{")

	var fields []StructLiteralField
	for !p.checkSymbol("}") {
		fname := p.expectIdentifier()
		p.expect(lexical.Symbol, ":")
		value := p.parseExpr()
		fields = append(fields, StructLiteralField{fname, value})

		if !p.matchSymbol(",") {
			break
		}
	}

	end := p.expect(lexical.Symbol, "}").Span

	return &StructLiteralExpr{name, fields, start.Merge(end)}
}

func (p *Parser) parseStruct() Stmt {
	start := p.advance().Span // 'struct'
	name := p.expectIdentifier()
	fields := p.parseFieldList()

	return &StructDeclStmt{name, fields, start}
}

func (p *Parser) parseEnum() Stmt {
	start := p.advance().Span // 'enum'
	name := p.expectIdentifier()
	p.expect(lexical.Symbol, "{")

	var variants []EnumVariant
	for !p.checkSymbol("}") {
		vname := p.expectIdentifier()

		var value Expr
		if p.matchSymbol("=") {
			value = p.parseExpr()
		}

		variants = append(variants, EnumVariant{vname, value})

		if !p.matchSymbol(",") {
			break
		}
	}

	end := p.expect(lexical.Symbol, "}").Span

	return &EnumDeclStmt{name, variants, start.Merge(end)}
}

func (p *Parser) parseImpl() Stmt {
	start := p.advance().Span // 'impl'
	name := p.expectIdentifier()
	p.expect(lexical.Symbol, "{")

	var items []Stmt
	for !p.checkSymbol("}") {
		items = append(items, p.parseItem())
	}

	end := p.expect(lexical.Symbol, "}").Span

	return &ImplDeclStmt{name, items, start.Merge(end)}
}

func (p *Parser) parseContract() Stmt {
	start := p.advance().Span // 'contract'
	name := p.expectIdentifier()
	p.expect(lexical.Symbol, "{")

	var fields []FieldDecl

	var items []Stmt
	for !p.checkSymbol("}") {
		if p.peek(0).Kind == lexical.Identifier && p.peek(1).Is(lexical.Symbol, ":") {
			fname := p.advance().Text
			p.expect(lexical.Symbol, ":")
			ftype := p.parseType()
			fields = append(fields, FieldDecl{fname, ftype})

			p.matchSymbol(",")

			continue
		}

		items = append(items, p.parseItem())
	}

	end := p.expect(lexical.Symbol, "}").Span

	return &ContractDeclStmt{name, fields, items, start.Merge(end)}
}

func (p *Parser) parseMod() Stmt {
	start := p.advance().Span // 'mod'
	name := p.expectIdentifier()
	end := p.expect(lexical.Symbol, ";").Span

	return &ModDeclStmt{name, start.Merge(end)}
}

func (p *Parser) parseUse() Stmt {
	start := p.advance().Span // 'use'

	path := []string{p.expectIdentifier()}
	for p.matchSymbol("::") {
		path = append(path, p.expectIdentifier())
	}

	var alias string
	if p.matchKeyword("as") {
		alias = p.expectIdentifier()
	}

	end := p.expect(lexical.Symbol, ";").Span

	return &UseStmt{path, alias, start.Merge(end)}
}

func (p *Parser) parseFn(attrs []Attribute, public bool) Stmt {
	start := p.advance().Span // 'fn'
	name := p.expectIdentifier()
	p.expect(lexical.Symbol, "(")

	var params []Param
	for !p.checkSymbol(")") {
		mutable := p.matchKeyword("mut")
		if p.matchKeyword("self") {
			params = append(params, Param{mutable, "self", nil})
		} else {
			pname := p.expectIdentifier()
			p.expect(lexical.Symbol, ":")
			ptype := p.parseType()
			params = append(params, Param{mutable, pname, ptype})
		}

		if !p.matchSymbol(",") {
			break
		}
	}

	p.expect(lexical.Symbol, ")")

	var result Type
	if p.matchSymbol("->") {
		result = p.parseType()
	}

	body := p.parseBlock()

	return &FnDeclStmt{public, name, params, result, body, attrs, start.Merge(body.Span())}
}

func (p *Parser) parseFor() Stmt {
	start := p.advance().Span // 'for'
	variable := p.expectIdentifier()
	p.expect(lexical.Keyword, "in")

	rangeStart := p.parseExprNoStruct()
	r, ok := rangeStart.(*RangeExpr)

	if !ok {
		p.fail(rangeStart.Span(), "expected a range expression")
	}

	var while Expr
	if p.matchKeyword("while") {
		while = p.parseExprNoStruct()
	}

	body := p.parseBlock()

	return &ForStmt{variable, r, while, body, start.Merge(body.Span())}
}

// compoundOps lists every compound-assignment operator symbol together with
// its underlying binary operator, per the `+=`, `-=`, … lowering rule.
var compoundOps = map[string]string{
	"+=": "+", "-=": "-", "*=": "*", "/=": "/", "%=": "%",
	"&=": "&", "|=": "|", "^=": "^", "<<=": "<<", ">>=": ">>",
}

func (p *Parser) parseExprOrAssignStmt() Stmt {
	start := p.peek(0).Span
	expr := p.parseExpr()

	if p.checkSymbol("=") {
		p.advance()
		value := p.parseExpr()
		end := p.expect(lexical.Symbol, ";").Span

		return &AssignStmt{expr, "", value, start.Merge(end)}
	}

	for sym, op := range compoundOps {
		if p.checkSymbol(sym) {
			p.advance()
			value := p.parseExpr()
			end := p.expect(lexical.Symbol, ";").Span

			return &AssignStmt{expr, op, value, start.Merge(end)}
		}
	}

	if p.matchSymbol(";") {
		return &ExprStmt{expr, start.Merge(expr.Span())}
	}

	// Trailing expression of a block: returned to parseBlock directly.
	return &ExprStmt{expr, expr.Span()}
}

// ---------------------------------------------------------------- expressions

func (p *Parser) parseBlock() *BlockExpr {
	start := p.expect(lexical.Symbol, "{").Span

	// A block's own contents are never under the no-struct-literal
	// restriction its caller may be in (e.g. an `if` condition) — only the
	// condition/scrutinee expression itself is restricted, not the body
	// that follows it.
	prevNoStruct := p.noStructLiteral
	p.noStructLiteral = false
	defer func() { p.noStructLiteral = prevNoStruct }()

	var stmts []Stmt

	var tail Expr

	for !p.checkSymbol("}") {
		s := p.parseStmt()

		// A bare expression statement not terminated by `;` and directly
		// followed by the block's closing brace is the block's tail value
		// rather than a statement; parseExprOrAssignStmt leaves the `;` in
		// place when it is present, so its absence is what we test for.
		if es, ok := s.(*ExprStmt); ok && !p.priorTokenWasSemicolon() && p.checkSymbol("}") {
			tail = es.Value
			break
		}

		stmts = append(stmts, s)
	}

	end := p.expect(lexical.Symbol, "}").Span

	return &BlockExpr{stmts, tail, start.Merge(end)}
}

// priorTokenWasSemicolon reports whether the token just consumed was `;`,
// used by parseBlock to distinguish a semicolon-terminated statement from a
// block's trailing (tail) expression.
func (p *Parser) priorTokenWasSemicolon() bool {
	return p.pos > 0 && p.tokens[p.pos-1].Is(lexical.Symbol, ";")
}

// parseExprNoStruct parses an expression with struct-literal parsing
// suppressed for its whole extent (but not for any nested block, which
// restores its own context), used for the condition of an `if`, the
// scrutinee of a `match`, and the range/`while` condition of a `for`, each
// of which is immediately followed by a `{ … }` block or arm list that must
// not be swallowed as a struct literal's field list.
func (p *Parser) parseExprNoStruct() Expr {
	prev := p.noStructLiteral
	p.noStructLiteral = true

	expr := p.parseExpr()

	p.noStructLiteral = prev

	return expr
}

func (p *Parser) parseExpr() Expr {
	return p.parseRange()
}

func (p *Parser) parseRange() Expr {
	left := p.parseOr()

	if p.checkSymbol("..") || p.checkSymbol("..=") {
		inclusive := p.checkSymbol("..=")
		start := p.advance().Span

		var right Expr
		if !p.checkSymbol(")") && !p.checkSymbol("]") && !p.checkSymbol("{") &&
			!p.checkSymbol(";") && !p.checkSymbol(",") {
			right = p.parseOr()
		}

		span := left.Span().Merge(start)
		if right != nil {
			span = span.Merge(right.Span())
		}

		return &RangeExpr{left, right, inclusive, span}
	}

	return left
}

func (p *Parser) parseOr() Expr {
	left := p.parseXor()

	for p.checkSymbol("||") {
		p.advance()

		right := p.parseXor()
		left = &BinaryExpr{"||", left, right, left.Span().Merge(right.Span())}
	}

	return left
}

func (p *Parser) parseXor() Expr {
	left := p.parseAnd()

	for p.checkSymbol("^^") {
		p.advance()

		right := p.parseAnd()
		left = &BinaryExpr{"^^", left, right, left.Span().Merge(right.Span())}
	}

	return left
}

func (p *Parser) parseAnd() Expr {
	left := p.parseComparison()

	for p.checkSymbol("&&") {
		p.advance()

		right := p.parseComparison()
		left = &BinaryExpr{"&&", left, right, left.Span().Merge(right.Span())}
	}

	return left
}

var comparisonOps = []string{"==", "!=", "<=", ">=", "<", ">"}

func (p *Parser) parseComparison() Expr {
	left := p.parseBitwise()

	for _, op := range comparisonOps {
		if p.checkSymbol(op) {
			p.advance()

			right := p.parseBitwise()

			return &BinaryExpr{op, left, right, left.Span().Merge(right.Span())}
		}
	}

	return left
}

func (p *Parser) parseBitwise() Expr {
	left := p.parseShift()

	for p.checkSymbol("|") || p.checkSymbol("^") || p.checkSymbol("&") {
		op := p.advance().Text

		right := p.parseShift()
		left = &BinaryExpr{op, left, right, left.Span().Merge(right.Span())}
	}

	return left
}

func (p *Parser) parseShift() Expr {
	left := p.parseAdditive()

	for p.checkSymbol("<<") || p.checkSymbol(">>") {
		op := p.advance().Text

		right := p.parseAdditive()
		left = &BinaryExpr{op, left, right, left.Span().Merge(right.Span())}
	}

	return left
}

func (p *Parser) parseAdditive() Expr {
	left := p.parseMultiplicative()

	for p.checkSymbol("+") || p.checkSymbol("-") {
		op := p.advance().Text

		right := p.parseMultiplicative()
		left = &BinaryExpr{op, left, right, left.Span().Merge(right.Span())}
	}

	return left
}

func (p *Parser) parseMultiplicative() Expr {
	left := p.parseCast()

	for p.checkSymbol("*") || p.checkSymbol("/") || p.checkSymbol("%") {
		op := p.advance().Text

		right := p.parseCast()
		left = &BinaryExpr{op, left, right, left.Span().Merge(right.Span())}
	}

	return left
}

func (p *Parser) parseCast() Expr {
	left := p.parseUnary()

	for p.matchKeyword("as") {
		target := p.parseType()
		left = &CastExpr{left, target, left.Span().Merge(target.Span())}
	}

	return left
}

func (p *Parser) parseUnary() Expr {
	if p.checkSymbol("-") || p.checkSymbol("!") || p.checkSymbol("~") {
		start := p.advance()
		operand := p.parseUnary()

		return &UnaryExpr{start.Text, operand, start.Span.Merge(operand.Span())}
	}

	return p.parsePostfix()
}

func (p *Parser) parsePostfix() Expr {
	expr := p.parsePrimary()

	for {
		switch {
		case p.matchSymbol("."):
			if p.peek(0).Kind == lexical.IntegerLiteral {
				tok := p.advance()
				idx := 0

				for _, r := range tok.Text {
					idx = idx*10 + int(r-'0')
				}

				expr = &TupleIndexExpr{expr, idx, expr.Span().Merge(tok.Span)}

				continue
			}

			name := p.expectIdentifier()

			if p.checkSymbol("(") {
				args := p.parseArgs()
				end := p.tokens[p.pos-1].Span
				expr = &MethodCallExpr{expr, name, args, expr.Span().Merge(end)}
			} else {
				expr = &FieldExpr{expr, name, expr.Span()}
			}
		case p.matchSymbol("["):
			index := p.parseExpr()
			end := p.expect(lexical.Symbol, "]").Span
			expr = &IndexExpr{expr, index, expr.Span().Merge(end)}
		case p.checkSymbol("("):
			args := p.parseArgs()
			end := p.tokens[p.pos-1].Span
			expr = &CallExpr{expr, args, expr.Span().Merge(end)}
		case p.matchSymbol("::"):
			name := p.expectIdentifier()
			if path, ok := expr.(*Path); ok {
				path.Segments = append(path.Segments, name)
			} else if ident, ok := expr.(*Identifier); ok {
				expr = &Path{[]string{ident.Name, name}, ident.Span().Merge(p.tokens[p.pos-1].Span)}
			} else {
				p.fail(expr.Span(), "invalid path expression")
			}
		default:
			return expr
		}
	}
}

func (p *Parser) parseArgs() []Expr {
	p.expect(lexical.Symbol, "(")

	var args []Expr
	for !p.checkSymbol(")") {
		args = append(args, p.parseExpr())
		if !p.matchSymbol(",") {
			break
		}
	}

	p.expect(lexical.Symbol, ")")

	return args
}

func (p *Parser) parsePrimary() Expr {
	tok := p.peek(0)

	switch {
	case tok.Kind == lexical.IntegerLiteral:
		p.advance()
		return &IntegerLiteral{tok.Text, tok.Span}
	case tok.Kind == lexical.BooleanLiteral:
		p.advance()
		return &BooleanLiteral{tok.Text == "true", tok.Span}
	case tok.Kind == lexical.StringLiteral:
		p.advance()
		return &StringLiteral{tok.Text, tok.Span}
	case tok.Kind == lexical.Identifier:
		p.advance()

		if !p.noStructLiteral && p.checkSymbol("{") {
			return p.parseStructLiteral(tok.Text, tok.Span)
		}

		return &Identifier{tok.Text, tok.Span}
	case tok.Is(lexical.Keyword, "self") || tok.Is(lexical.Keyword, "Self"):
		p.advance()
		return &Identifier{tok.Text, tok.Span}
	case tok.Is(lexical.Keyword, "if"):
		return p.parseIf()
	case tok.Is(lexical.Keyword, "match"):
		return p.parseMatch()
	case tok.Is(lexical.Identifier, "dbg") && p.peek(1).Is(lexical.Symbol, "!"):
		return p.parseDbg()
	case tok.Is(lexical.Symbol, "{"):
		return p.parseBlock()
	case tok.Is(lexical.Symbol, "("):
		return p.parseTupleOrParen()
	case tok.Is(lexical.Symbol, "["):
		return p.parseArray()
	default:
		p.fail(tok.Span, "expected an expression, found %s", tok)
		panic("unreachable")
	}
}

func (p *Parser) parseDbg() Expr {
	start := p.advance().Span // 'dbg'
	p.expect(lexical.Symbol, "!")
	p.expect(lexical.Symbol, "(")

	format := ""
	if p.peek(0).Kind == lexical.StringLiteral {
		format = p.advance().Text
	}

	var args []Expr
	for p.matchSymbol(",") {
		args = append(args, p.parseExpr())
	}

	end := p.expect(lexical.Symbol, ")").Span

	return &DbgExpr{format, args, start.Merge(end)}
}

func (p *Parser) parseTupleOrParen() Expr {
	start := p.advance().Span // '('

	if p.matchSymbol(")") {
		return &TupleExpr{nil, start}
	}

	first := p.parseExpr()

	if p.matchSymbol(")") {
		return first
	}

	elems := []Expr{first}
	for p.matchSymbol(",") {
		if p.checkSymbol(")") {
			break
		}

		elems = append(elems, p.parseExpr())
	}

	end := p.expect(lexical.Symbol, ")").Span

	return &TupleExpr{elems, start.Merge(end)}
}

func (p *Parser) parseArray() Expr {
	start := p.advance().Span // '['

	if p.matchSymbol("]") {
		return &ArrayListExpr{nil, start}
	}

	first := p.parseExpr()

	if p.matchSymbol(";") {
		count := p.parseExpr()
		end := p.expect(lexical.Symbol, "]").Span

		return &ArrayRepeatExpr{first, count, start.Merge(end)}
	}

	elems := []Expr{first}
	for p.matchSymbol(",") {
		if p.checkSymbol("]") {
			break
		}

		elems = append(elems, p.parseExpr())
	}

	end := p.expect(lexical.Symbol, "]").Span

	return &ArrayListExpr{elems, start.Merge(end)}
}

func (p *Parser) parseIf() Expr {
	start := p.advance().Span // 'if'
	cond := p.parseExprNoStruct()
	then := p.parseBlock()

	var elseExpr Expr
	if p.matchKeyword("else") {
		if p.checkKeyword("if") {
			elseExpr = p.parseIf()
		} else {
			elseExpr = p.parseBlock()
		}
	}

	end := then.Span()
	if elseExpr != nil {
		end = elseExpr.Span()
	}

	return &IfExpr{cond, then, elseExpr, start.Merge(end)}
}

func (p *Parser) parseMatch() Expr {
	start := p.advance().Span // 'match'
	scrutinee := p.parseExprNoStruct()
	p.expect(lexical.Symbol, "{")

	var arms []MatchArm
	for !p.checkSymbol("}") {
		pattern := p.parsePattern()
		p.expect(lexical.Symbol, "=>")
		value := p.parseExpr()
		arms = append(arms, MatchArm{pattern, value})

		if !p.matchSymbol(",") {
			break
		}
	}

	end := p.expect(lexical.Symbol, "}").Span

	return &MatchExpr{scrutinee, arms, start.Merge(end)}
}

func (p *Parser) parsePattern() Pattern {
	tok := p.peek(0)

	if tok.Is(lexical.Identifier, "_") {
		p.advance()
		return &WildcardPattern{tok.Span}
	}

	switch tok.Kind {
	case lexical.IntegerLiteral, lexical.BooleanLiteral:
		value := p.parseUnary()
		return &LiteralPattern{value, value.Span()}
	case lexical.Identifier:
		if p.peek(1).Is(lexical.Symbol, "::") {
			value := p.parsePostfix()
			return &LiteralPattern{value, value.Span()}
		}

		p.advance()

		return &BindingPattern{tok.Text, tok.Span}
	default:
		p.fail(tok.Span, "expected a pattern, found %s", tok)
		panic("unreachable")
	}
}
