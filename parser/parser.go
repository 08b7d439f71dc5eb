// Package parser implements a hand-written recursive-descent parser (Pratt
// expression parsing + statement-grammar descent) over the token stream
// produced by package lexer, building the tagged-sum tree in package ast.
//
// This mirrors the implementation strategy of the reference project's own
// source-grammar dependency: no parser generator, no grammar DSL, just a
// Parser walking tokens with one token of lookahead.
package parser

import (
	"fmt"

	"github.com/orapgcore/oracore/ast"
	"github.com/orapgcore/oracore/lexer"
)

// Kind identifies what grammar rule the top-level source text is parsed as.
type Kind int

const (
	ViewSelect Kind = iota
	StandaloneFunction
	StandaloneProcedure
	PackageSpec
	PackageBody
	TriggerBody
	TypeBody
)

// SyntaxError is one parse failure with its source location.
type SyntaxError struct {
	Pos     lexer.Position
	Message string
}

func (e SyntaxError) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Pos.Line, e.Pos.Column, e.Message)
}

// Parser holds the token cursor and accumulated errors for one parse.
type Parser struct {
	l *lexer.Lexer

	curToken  lexer.Token
	peekToken lexer.Token

	errors []SyntaxError

	prefixParseFns map[lexer.TokenType]prefixParseFn
	infixParseFns  map[lexer.TokenType]infixParseFn
}

type (
	prefixParseFn func() ast.Expression
	infixParseFn  func(ast.Expression) ast.Expression
)

// New constructs a Parser over source text. Per the memory-hygiene contract
// in spec §4.1, a Parser is single-use: construct one per Parse call and let
// it (and any predictive lookahead state it holds) be discarded afterward —
// there is no persistent cache to release explicitly.
func New(source string) *Parser {
	p := &Parser{l: lexer.New(source)}

	p.prefixParseFns = make(map[lexer.TokenType]prefixParseFn)
	p.registerPrefix(lexer.IDENT, p.parseIdentifierOrCall)
	p.registerPrefix(lexer.QIDENT, p.parseIdentifierOrCall)
	p.registerPrefix(lexer.NUMBER, p.parseNumberLiteral)
	p.registerPrefix(lexer.STRING, p.parseStringLiteral)
	p.registerPrefix(lexer.NULLTOK, p.parseNullLiteral)
	p.registerPrefix(lexer.BINDVAR, p.parseBindVar)
	p.registerPrefix(lexer.ROWNUM, p.parseRowNum)
	p.registerPrefix(lexer.LEVEL, p.parseLevel)
	p.registerPrefix(lexer.NOT, p.parsePrefixExpression)
	p.registerPrefix(lexer.MINUS, p.parsePrefixExpression)
	p.registerPrefix(lexer.PLUS, p.parsePrefixExpression)
	p.registerPrefix(lexer.LPAREN, p.parseGroupedOrSubquery)
	p.registerPrefix(lexer.CASE, p.parseCaseExpression)
	p.registerPrefix(lexer.SELECT, p.parseSubqueryAsExpression)
	p.registerPrefix(lexer.IDENT, p.parseIdentifierOrCall)
	p.registerPrefix(lexer.PRIOR, func() ast.Expression {
		pos := p.curToken.Pos
		p.nextToken()
		arg := p.parseExpression(PREFIX_PREC)
		return &ast.FunctionCall{Pos: pos, Name: &ast.Identifier{Pos: pos, Parts: []string{"PRIOR"}}, Arguments: []ast.Expression{arg}}
	})

	p.infixParseFns = make(map[lexer.TokenType]infixParseFn)
	for _, t := range []lexer.TokenType{
		lexer.PLUS, lexer.MINUS, lexer.STAR, lexer.SLASH, lexer.CONCAT,
		lexer.EQ, lexer.NOTEQ, lexer.LT, lexer.GT, lexer.LTE, lexer.GTE,
		lexer.AND, lexer.OR, lexer.LIKE,
	} {
		p.registerInfix(t, p.parseInfixExpression)
	}
	p.registerInfix(lexer.IS, p.parseIsExpression)
	p.registerInfix(lexer.BETWEEN, p.parseBetweenExpression)
	p.registerInfix(lexer.IN, p.parseInExpression)
	p.registerInfix(lexer.NOT, p.parseNotInBetweenOrLike)
	p.registerInfix(lexer.LPAREN, p.parseIndexOrCallExpression)
	p.registerInfix(lexer.DOT, p.parseFieldAccessExpression)
	p.registerInfix(lexer.PERCENT, p.parseCursorAttrExpression)

	p.nextToken()
	p.nextToken()
	return p
}

func (p *Parser) registerPrefix(t lexer.TokenType, fn prefixParseFn) { p.prefixParseFns[t] = fn }
func (p *Parser) registerInfix(t lexer.TokenType, fn infixParseFn)   { p.infixParseFns[t] = fn }

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.l.NextToken()
}

func (p *Parser) curTokenIs(t lexer.TokenType) bool  { return p.curToken.Type == t }
func (p *Parser) peekTokenIs(t lexer.TokenType) bool { return p.peekToken.Type == t }

func (p *Parser) curIsKeyword(kw string) bool {
	return p.curToken.Type.IsKeyword() && eqFold(p.curToken.Literal, kw)
}

func (p *Parser) peekIsKeyword(kw string) bool {
	return p.peekToken.Type.IsKeyword() && eqFold(p.peekToken.Literal, kw)
}

func eqFold(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		ca, cb := a[i], b[i]
		if ca >= 'A' && ca <= 'Z' {
			ca += 32
		}
		if cb >= 'A' && cb <= 'Z' {
			cb += 32
		}
		if ca != cb {
			return false
		}
	}
	return true
}

func (p *Parser) expectPeek(t lexer.TokenType) bool {
	if p.peekTokenIs(t) {
		p.nextToken()
		return true
	}
	p.peekError(t)
	return false
}

func (p *Parser) peekError(t lexer.TokenType) {
	p.errors = append(p.errors, SyntaxError{
		Pos:     p.peekToken.Pos,
		Message: fmt.Sprintf("expected next token to be %d, got %d (%q)", t, p.peekToken.Type, p.peekToken.Literal),
	})
}

func (p *Parser) errorf(pos lexer.Position, format string, args ...interface{}) {
	p.errors = append(p.errors, SyntaxError{Pos: pos, Message: fmt.Sprintf(format, args...)})
}

// Errors returns accumulated syntax errors.
func (p *Parser) Errors() []SyntaxError { return p.errors }

// Parse parses source text according to kind and returns the resulting
// Program, or a non-empty error slice on syntax failure (§4.1 C1 contract).
func Parse(source string, kind Kind) (*ast.Program, []SyntaxError) {
	p := New(source)
	prog := &ast.Program{}

	switch kind {
	case ViewSelect:
		stmt := p.parseCreateOrBareSelectAsView()
		if stmt != nil {
			prog.Units = append(prog.Units, stmt)
		}
	case StandaloneFunction:
		if fn := p.parseCreateFunction(); fn != nil {
			prog.Units = append(prog.Units, fn)
		}
	case StandaloneProcedure:
		if proc := p.parseCreateProcedure(); proc != nil {
			prog.Units = append(prog.Units, proc)
		}
	case PackageSpec:
		if pkg := p.parseCreatePackageSpec(); pkg != nil {
			prog.Units = append(prog.Units, pkg)
		}
	case PackageBody:
		if body := p.parseCreatePackageBody(); body != nil {
			prog.Units = append(prog.Units, body)
		}
	case TriggerBody:
		if trg := p.parseCreateTrigger(); trg != nil {
			prog.Units = append(prog.Units, trg)
		}
	case TypeBody:
		if tb := p.parseCreateTypeBody(); tb != nil {
			prog.Units = append(prog.Units, tb)
		}
	}

	if len(p.errors) > 0 {
		return nil, p.errors
	}
	return prog, nil
}
