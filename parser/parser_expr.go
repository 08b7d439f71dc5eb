package parser

import (
	"github.com/orapgcore/oracore/ast"
	"github.com/orapgcore/oracore/lexer"
)

// Operator precedence, lowest to highest.
const (
	LOWEST = iota
	OR_PREC
	AND_PREC
	NOT_PREC
	COMPARISON
	CONCAT_PREC
	SUM
	PRODUCT
	PREFIX_PREC
	CALL
	INDEX
)

var precedences = map[lexer.TokenType]int{
	lexer.OR:      OR_PREC,
	lexer.AND:     AND_PREC,
	lexer.EQ:      COMPARISON,
	lexer.NOTEQ:   COMPARISON,
	lexer.LT:      COMPARISON,
	lexer.GT:      COMPARISON,
	lexer.LTE:     COMPARISON,
	lexer.GTE:     COMPARISON,
	lexer.IS:      COMPARISON,
	lexer.IN:      COMPARISON,
	lexer.LIKE:    COMPARISON,
	lexer.BETWEEN: COMPARISON,
	lexer.NOT:     COMPARISON,
	lexer.CONCAT:  CONCAT_PREC,
	lexer.PLUS:    SUM,
	lexer.MINUS:   SUM,
	lexer.STAR:    PRODUCT,
	lexer.SLASH:   PRODUCT,
	lexer.LPAREN:  CALL,
	lexer.DOT:     INDEX,
	lexer.PERCENT: INDEX,
}

func (p *Parser) peekPrecedence() int {
	if pr, ok := precedences[p.peekToken.Type]; ok {
		return pr
	}
	return LOWEST
}

func (p *Parser) curPrecedence() int {
	if pr, ok := precedences[p.curToken.Type]; ok {
		return pr
	}
	return LOWEST
}

func (p *Parser) parseExpression(precedence int) ast.Expression {
	prefix := p.prefixParseFns[p.curToken.Type]
	if prefix == nil {
		p.errorf(p.curToken.Pos, "no prefix parse function for %q", p.curToken.Literal)
		return nil
	}
	left := prefix()

	for !p.peekTokenIs(lexer.SEMI) && precedence < p.peekPrecedence() {
		infix := p.infixParseFns[p.peekToken.Type]
		if infix == nil {
			return left
		}
		p.nextToken()
		left = infix(left)
	}
	return left
}

func (p *Parser) parseIdentifierOrCall() ast.Expression {
	pos := p.curToken.Pos
	parts := []string{p.curToken.Literal}
	for p.peekTokenIs(lexer.DOT) {
		// Only fold into a dotted Identifier when followed by another
		// identifier; a.b.c(...) is resolved at translation time against the
		// catalog (§4.2), so the parser stays syntax-only here.
		save, saveLexer := *p, *p.l
		p.nextToken() // consume DOT
		if !p.peekTokenIs(lexer.IDENT) && !p.peekTokenIs(lexer.QIDENT) {
			*p = save
			*p.l = saveLexer
			break
		}
		p.nextToken()
		parts = append(parts, p.curToken.Literal)
	}
	ident := &ast.Identifier{Pos: pos, Parts: parts}

	if p.peekTokenIs(lexer.LPAREN) {
		p.nextToken()
		if p.peekTokenIs(lexer.PLUS) {
			return p.parseIndexOrCallExpression(ident)
		}
		args := p.parseExpressionList(lexer.RPAREN)
		return &ast.FunctionCall{Pos: pos, Name: ident, Arguments: args}
	}
	return ident
}

func (p *Parser) parseExpressionList(end lexer.TokenType) []ast.Expression {
	var list []ast.Expression
	if p.peekTokenIs(end) {
		p.nextToken()
		return list
	}
	p.nextToken()
	list = append(list, p.parseExpression(LOWEST))
	for p.peekTokenIs(lexer.COMMA) {
		p.nextToken()
		p.nextToken()
		list = append(list, p.parseExpression(LOWEST))
	}
	if !p.expectPeek(end) {
		return nil
	}
	return list
}

func (p *Parser) parseNumberLiteral() ast.Expression {
	return &ast.NumberLiteral{Pos: p.curToken.Pos, Value: p.curToken.Literal}
}

func (p *Parser) parseStringLiteral() ast.Expression {
	return &ast.StringLiteral{Pos: p.curToken.Pos, Value: p.curToken.Literal}
}

func (p *Parser) parseNullLiteral() ast.Expression {
	return &ast.NullLiteral{Pos: p.curToken.Pos}
}

func (p *Parser) parseRowNum() ast.Expression { return &ast.RowNum{Pos: p.curToken.Pos} }
func (p *Parser) parseLevel() ast.Expression  { return &ast.Level{Pos: p.curToken.Pos} }

func (p *Parser) parseBindVar() ast.Expression {
	pos := p.curToken.Pos
	lit := p.curToken.Literal // includes leading ':'
	name := lit[1:]
	bv := &ast.BindVar{Pos: pos, Name: name}
	if p.peekTokenIs(lexer.DOT) {
		p.nextToken()
		if p.expectPeek(lexer.IDENT) {
			bv.Field = p.curToken.Literal
		}
	}
	return bv
}

func (p *Parser) parsePrefixExpression() ast.Expression {
	pos := p.curToken.Pos
	op := p.curToken.Literal
	p.nextToken()
	right := p.parseExpression(PREFIX_PREC)
	return &ast.PrefixExpression{Pos: pos, Operator: op, Right: right}
}

func (p *Parser) parseInfixExpression(left ast.Expression) ast.Expression {
	pos := p.curToken.Pos
	op := p.curToken.Literal
	prec := p.curPrecedence()
	p.nextToken()
	right := p.parseExpression(prec)
	return &ast.InfixExpression{Pos: pos, Left: left, Operator: op, Right: right}
}

func (p *Parser) parseIsExpression(left ast.Expression) ast.Expression {
	pos := p.curToken.Pos
	not := false
	if p.peekTokenIs(lexer.NOT) {
		p.nextToken()
		not = true
	}
	if !p.expectPeek(lexer.NULLTOK) {
		return nil
	}
	return &ast.IsNullExpression{Pos: pos, Expr: left, Not: not}
}

func (p *Parser) parseBetweenExpression(left ast.Expression) ast.Expression {
	pos := p.curToken.Pos
	p.nextToken()
	low := p.parseExpression(CONCAT_PREC)
	if !p.expectPeek(lexer.AND) {
		return nil
	}
	p.nextToken()
	high := p.parseExpression(CONCAT_PREC)
	return &ast.BetweenExpression{Pos: pos, Expr: left, Low: low, High: high}
}

func (p *Parser) parseInExpression(left ast.Expression) ast.Expression {
	pos := p.curToken.Pos
	if !p.expectPeek(lexer.LPAREN) {
		return nil
	}
	if p.peekTokenIs(lexer.SELECT) {
		p.nextToken()
		sub := p.parseSelect()
		if !p.expectPeek(lexer.RPAREN) {
			return nil
		}
		return &ast.InExpression{Pos: pos, Expr: left, Subquery: &ast.SubqueryExpression{Pos: pos, Subquery: sub}}
	}
	list := p.parseExpressionList(lexer.RPAREN)
	return &ast.InExpression{Pos: pos, Expr: left, List: list}
}

// parseNotInBetweenOrLike handles `expr NOT IN (...)`, `expr NOT BETWEEN`,
// and `expr NOT LIKE` by peeking past NOT for the real operator.
func (p *Parser) parseNotInBetweenOrLike(left ast.Expression) ast.Expression {
	pos := p.curToken.Pos
	switch {
	case p.peekTokenIs(lexer.IN):
		p.nextToken()
		e := p.parseInExpression(left)
		if in, ok := e.(*ast.InExpression); ok {
			in.Not = true
		}
		return e
	case p.peekTokenIs(lexer.BETWEEN):
		p.nextToken()
		e := p.parseBetweenExpression(left)
		if b, ok := e.(*ast.BetweenExpression); ok {
			b.Not = true
		}
		return e
	case p.peekTokenIs(lexer.LIKE):
		p.nextToken()
		op := "NOT LIKE"
		prec := p.curPrecedence()
		p.nextToken()
		right := p.parseExpression(prec)
		return &ast.InfixExpression{Pos: pos, Left: left, Operator: op, Right: right}
	}
	p.errorf(pos, "unexpected NOT in expression")
	return left
}

func (p *Parser) parseGroupedOrSubquery() ast.Expression {
	pos := p.curToken.Pos
	if p.peekTokenIs(lexer.SELECT) {
		p.nextToken()
		sel := p.parseSelect()
		if !p.expectPeek(lexer.RPAREN) {
			return nil
		}
		return &ast.SubqueryExpression{Pos: pos, Subquery: sel}
	}
	p.nextToken()
	expr := p.parseExpression(LOWEST)
	if !p.expectPeek(lexer.RPAREN) {
		return nil
	}
	return expr
}

func (p *Parser) parseSubqueryAsExpression() ast.Expression {
	// Reached only when SELECT appears directly as a prefix, e.g. inside
	// EXISTS(...) handling that delegates here after consuming EXISTS.
	pos := p.curToken.Pos
	sel := p.parseSelect()
	return &ast.SubqueryExpression{Pos: pos, Subquery: sel}
}

func (p *Parser) parseCaseExpression() ast.Expression {
	pos := p.curToken.Pos
	expr := &ast.CaseExpression{Pos: pos}

	if !p.peekTokenIs(lexer.WHEN) {
		p.nextToken()
		expr.Subject = p.parseExpression(LOWEST)
	}

	for p.peekTokenIs(lexer.WHEN) {
		p.nextToken()
		p.nextToken()
		cond := p.parseExpression(LOWEST)
		if !p.expectPeek(lexer.THEN) {
			return nil
		}
		p.nextToken()
		result := p.parseExpression(LOWEST)
		expr.Whens = append(expr.Whens, ast.CaseWhen{Condition: cond, Result: result})
	}

	if p.peekTokenIs(lexer.ELSE) {
		p.nextToken()
		p.nextToken()
		expr.Else = p.parseExpression(LOWEST)
	}

	if !p.expectPeek(lexer.END) {
		return nil
	}
	return expr
}

func (p *Parser) parseIndexOrCallExpression(left ast.Expression) ast.Expression {
	pos := p.curToken.Pos

	// Oracle's outer-join marker, col(+), is the one place a bare '+' can
	// follow '(' in this grammar; resolve it without backtracking since the
	// lexer has no ungetToken.
	if p.peekTokenIs(lexer.PLUS) {
		p.nextToken() // curToken = PLUS
		if p.peekTokenIs(lexer.RPAREN) {
			p.nextToken() // curToken = RPAREN
			return &ast.OuterJoinSuffix{Pos: pos, Inner: left}
		}
		first := &ast.PrefixExpression{Pos: p.curToken.Pos, Operator: "+", Right: p.parseExpression(PREFIX_PREC)}
		args := []ast.Expression{first}
		for p.peekTokenIs(lexer.COMMA) {
			p.nextToken()
			p.nextToken()
			args = append(args, p.parseExpression(LOWEST))
		}
		if !p.expectPeek(lexer.RPAREN) {
			return nil
		}
		if ident, ok := left.(*ast.Identifier); ok {
			return &ast.FunctionCall{Pos: pos, Name: ident, Arguments: args}
		}
		return &ast.IndexExpression{Pos: pos, Left: left}
	}

	args := p.parseExpressionList(lexer.RPAREN)
	if ident, ok := left.(*ast.Identifier); ok {
		return &ast.FunctionCall{Pos: pos, Name: ident, Arguments: args}
	}
	if len(args) == 1 {
		return &ast.IndexExpression{Pos: pos, Left: left, Index: args[0]}
	}
	return &ast.IndexExpression{Pos: pos, Left: left}
}

func (p *Parser) parseFieldAccessExpression(left ast.Expression) ast.Expression {
	pos := p.curToken.Pos
	if !p.expectPeek(lexer.IDENT) && !p.curTokenIs(lexer.IDENT) {
		return left
	}
	return &ast.FieldAccess{Pos: pos, Expr: left, Field: p.curToken.Literal}
}

func (p *Parser) parseCursorAttrExpression(left ast.Expression) ast.Expression {
	pos := p.curToken.Pos
	if !p.expectPeek(lexer.IDENT) {
		return left
	}
	attr := p.curToken.Literal
	name := "SQL"
	if id, ok := left.(*ast.Identifier); ok {
		name = id.Last()
	}
	return &ast.CursorAttrExpression{Pos: pos, CursorName: name, Attr: attr}
}
