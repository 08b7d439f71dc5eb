package parser

import (
	"strconv"

	"github.com/orapgcore/oracore/ast"
	"github.com/orapgcore/oracore/lexer"
)

// ---- CREATE ... top-level units -------------------------------------------

// skipCreateOrReplace consumes an optional leading CREATE [OR REPLACE].
func (p *Parser) skipCreateOrReplace() {
	if p.curIsKeyword("create") {
		p.nextToken()
		if p.curIsKeyword("or") {
			p.nextToken() // OR
			p.nextToken() // REPLACE
		}
	}
}

func (p *Parser) parseSchemaQualifiedName() (schema, name string) {
	name = p.curToken.Literal
	if p.peekTokenIs(lexer.DOT) {
		schema = name
		p.nextToken() // DOT
		p.nextToken() // name
		name = p.curToken.Literal
	}
	return schema, name
}

func (p *Parser) parseCreateOrBareSelectAsView() ast.Statement {
	p.skipCreateOrReplace()
	if p.curIsKeyword("view") {
		p.nextToken()
		v := &ast.CreateViewStatement{Pos: p.curToken.Pos}
		v.Schema, v.Name = p.parseSchemaQualifiedName()
		if !p.expectPeek(lexer.AS) {
			return nil
		}
		p.nextToken()
		v.Select = p.parseSelect()
		return v
	}
	// A bare SELECT, translated directly (view body without the CREATE VIEW wrapper).
	return p.parseSelect()
}

func (p *Parser) parseParameterList() []ast.ParameterDef {
	var params []ast.ParameterDef
	if !p.expectPeek(lexer.LPAREN) {
		return nil
	}
	if p.peekTokenIs(lexer.RPAREN) {
		p.nextToken()
		return params
	}
	for {
		p.nextToken()
		pd := ast.ParameterDef{Pos: p.curToken.Pos, Name: p.curToken.Literal, Mode: "IN"}
		p.nextToken()
		if p.curIsKeyword("in") {
			p.nextToken()
			if p.curIsKeyword("out") {
				pd.Mode = "IN OUT"
				p.nextToken()
			} else {
				pd.Mode = "IN"
			}
		} else if p.curIsKeyword("out") {
			pd.Mode = "OUT"
			p.nextToken()
		}
		pd.DataType = p.parseDataType()
		if p.peekTokenIs(lexer.ASSIGN) || p.peekIsKeyword("default") {
			p.nextToken()
			p.nextToken()
			pd.Default = p.parseExpression(LOWEST)
		}
		params = append(params, pd)
		if p.peekTokenIs(lexer.COMMA) {
			p.nextToken()
			continue
		}
		break
	}
	if !p.expectPeek(lexer.RPAREN) {
		return nil
	}
	return params
}

func (p *Parser) parseDataType() *ast.DataType {
	dt := &ast.DataType{Pos: p.curToken.Pos, Name: p.curToken.Literal}
	base := p.curToken.Literal

	// schema.table%ROWTYPE, variable%TYPE, schema.table.column%TYPE
	var nameParts []string
	nameParts = append(nameParts, base)
	for p.peekTokenIs(lexer.DOT) {
		p.nextToken()
		p.nextToken()
		nameParts = append(nameParts, p.curToken.Literal)
	}
	if p.peekTokenIs(lexer.PERCENT) {
		p.nextToken()
		p.nextToken()
		if p.curIsKeyword("rowtype") {
			dt.IsRowType = true
		} else {
			dt.IsTypeAttr = true
		}
		switch len(nameParts) {
		case 1:
			dt.RefObject = nameParts[0]
		case 2:
			dt.RefSchema = nameParts[0]
			if dt.IsRowType {
				dt.RefObject = nameParts[1]
			} else {
				dt.RefObject = nameParts[0]
				dt.RefField = nameParts[1]
			}
		case 3:
			dt.RefSchema = nameParts[0]
			dt.RefObject = nameParts[1]
			dt.RefField = nameParts[2]
		}
		dt.Name = ""
		return dt
	}
	dt.Name = nameParts[len(nameParts)-1]

	if p.peekTokenIs(lexer.LPAREN) {
		p.nextToken() // (
		p.nextToken()
		dt.HasLength = true
		n, _ := strconv.Atoi(p.curToken.Literal)
		dt.Length = n
		dt.Precision = n
		if p.peekTokenIs(lexer.COMMA) {
			p.nextToken()
			p.nextToken()
			s, _ := strconv.Atoi(p.curToken.Literal)
			dt.Scale = s
		}
		p.expectPeek(lexer.RPAREN)
	}
	return dt
}

func (p *Parser) parseCreateFunction() *ast.CreateFunctionStatement {
	p.skipCreateOrReplace()
	if !p.curIsKeyword("function") {
		p.errorf(p.curToken.Pos, "expected FUNCTION")
		return nil
	}
	f := &ast.CreateFunctionStatement{Pos: p.curToken.Pos}
	p.nextToken()
	f.Schema, f.Name = p.parseSchemaQualifiedName()
	if p.peekTokenIs(lexer.LPAREN) {
		f.Parameters = p.parseParameterList()
	}
	if !p.expectPeek(lexer.RETURN) {
		return nil
	}
	p.nextToken()
	f.ReturnType = p.parseDataType()
	p.skipToKeyword("is", "as")
	f.Body = p.parseBlock()
	return f
}

func (p *Parser) parseCreateProcedure() *ast.CreateProcedureStatement {
	p.skipCreateOrReplace()
	if !p.curIsKeyword("procedure") {
		p.errorf(p.curToken.Pos, "expected PROCEDURE")
		return nil
	}
	proc := &ast.CreateProcedureStatement{Pos: p.curToken.Pos}
	p.nextToken()
	proc.Schema, proc.Name = p.parseSchemaQualifiedName()
	if p.peekTokenIs(lexer.LPAREN) {
		proc.Parameters = p.parseParameterList()
	}
	p.skipToKeyword("is", "as")
	proc.Body = p.parseBlock()
	return proc
}

// skipToKeyword advances until curToken matches one of the given keywords
// (IS/AS both introduce a PL/SQL body in Oracle).
func (p *Parser) skipToKeyword(kws ...string) {
	for !p.curTokenIs(lexer.EOF) {
		for _, kw := range kws {
			if p.curIsKeyword(kw) {
				return
			}
		}
		p.nextToken()
	}
}

func (p *Parser) parseCreatePackageSpec() *ast.CreatePackageStatement {
	p.skipCreateOrReplace()
	if !p.curIsKeyword("package") {
		p.errorf(p.curToken.Pos, "expected PACKAGE")
		return nil
	}
	p.nextToken()
	pkg := &ast.CreatePackageStatement{Pos: p.curToken.Pos}
	pkg.Schema, pkg.Name = p.parseSchemaQualifiedName()
	p.skipToKeyword("is", "as")
	p.nextToken()

	for !p.curIsKeyword("end") && !p.curTokenIs(lexer.EOF) {
		switch {
		case p.curIsKeyword("function"):
			p.nextToken()
			m := ast.PackageMemberSig{Kind: "FUNCTION", Name: p.curToken.Literal}
			if p.peekTokenIs(lexer.LPAREN) {
				m.Parameters = p.parseParameterList()
			}
			if p.expectPeek(lexer.RETURN) {
				p.nextToken()
				m.ReturnType = p.parseDataType()
			}
			pkg.Members = append(pkg.Members, m)
			p.skipStatementTerminator()
		case p.curIsKeyword("procedure"):
			p.nextToken()
			m := ast.PackageMemberSig{Kind: "PROCEDURE", Name: p.curToken.Literal}
			if p.peekTokenIs(lexer.LPAREN) {
				m.Parameters = p.parseParameterList()
			}
			pkg.Members = append(pkg.Members, m)
			p.skipStatementTerminator()
		case p.curIsKeyword("type"):
			td := p.parseTypeDecl()
			pkg.Members = append(pkg.Members, ast.PackageMemberSig{Kind: "TYPE", Name: td.Name, TypeDecl: td})
		case p.curTokenIs(lexer.IDENT):
			vd := p.parseVariableDeclStatement()
			pkg.Members = append(pkg.Members, ast.PackageMemberSig{
				Kind: "VARIABLE", Name: vd.Name, VarType: vd.DataType,
				VarDefault: vd.Default, VarConstant: vd.Constant,
			})
		default:
			p.nextToken()
		}
	}
	return pkg
}

func (p *Parser) skipStatementTerminator() {
	for !p.curTokenIs(lexer.SEMI) && !p.curTokenIs(lexer.EOF) {
		p.nextToken()
	}
	if p.curTokenIs(lexer.SEMI) {
		p.nextToken()
	}
}

func (p *Parser) parseCreatePackageBody() *ast.CreatePackageBodyStatement {
	p.skipCreateOrReplace()
	if !p.curIsKeyword("package") {
		p.errorf(p.curToken.Pos, "expected PACKAGE")
		return nil
	}
	p.nextToken()
	if p.curIsKeyword("body") {
		p.nextToken()
	}
	body := &ast.CreatePackageBodyStatement{Pos: p.curToken.Pos}
	body.Schema, body.Name = p.parseSchemaQualifiedName()
	p.skipToKeyword("is", "as")
	p.nextToken()

	for !p.curIsKeyword("end") && !p.curTokenIs(lexer.EOF) {
		switch {
		case p.curIsKeyword("function"):
			fn := p.parseCreateFunctionBodyMember()
			body.Members = append(body.Members, ast.PackageBodyMember{Kind: "FUNCTION", Function: fn})
		case p.curIsKeyword("procedure"):
			proc := p.parseCreateProcedureBodyMember()
			body.Members = append(body.Members, ast.PackageBodyMember{Kind: "PROCEDURE", Procedure: proc})
		case p.curIsKeyword("type"):
			td := p.parseTypeDecl()
			body.Members = append(body.Members, ast.PackageBodyMember{Kind: "TYPE", TypeDecl: td})
		case p.curIsKeyword("begin"):
			blk := p.parseBlock()
			body.Init = blk.Statements
		case p.curTokenIs(lexer.IDENT):
			vd := p.parseVariableDeclStatement()
			body.Members = append(body.Members, ast.PackageBodyMember{Kind: "VARIABLE", VarDecl: vd})
		default:
			p.nextToken()
		}
	}
	return body
}

func (p *Parser) parseCreateFunctionBodyMember() *ast.CreateFunctionStatement {
	f := &ast.CreateFunctionStatement{Pos: p.curToken.Pos}
	p.nextToken()
	f.Name = p.curToken.Literal
	if p.peekTokenIs(lexer.LPAREN) {
		f.Parameters = p.parseParameterList()
	}
	if p.expectPeek(lexer.RETURN) {
		p.nextToken()
		f.ReturnType = p.parseDataType()
	}
	p.skipToKeyword("is", "as")
	f.Body = p.parseBlock()
	return f
}

func (p *Parser) parseCreateProcedureBodyMember() *ast.CreateProcedureStatement {
	proc := &ast.CreateProcedureStatement{Pos: p.curToken.Pos}
	p.nextToken()
	proc.Name = p.curToken.Literal
	if p.peekTokenIs(lexer.LPAREN) {
		proc.Parameters = p.parseParameterList()
	}
	p.skipToKeyword("is", "as")
	proc.Body = p.parseBlock()
	return proc
}

func (p *Parser) parseCreateTrigger() *ast.CreateTriggerStatement {
	p.skipCreateOrReplace()
	if !p.curIsKeyword("trigger") {
		p.errorf(p.curToken.Pos, "expected TRIGGER")
		return nil
	}
	p.nextToken()
	t := &ast.CreateTriggerStatement{Pos: p.curToken.Pos}
	t.Schema, t.Name = p.parseSchemaQualifiedName()
	p.nextToken()
	switch {
	case eqFold(p.curToken.Literal, "before"):
		t.Timing = "BEFORE"
		p.nextToken()
	case eqFold(p.curToken.Literal, "after"):
		t.Timing = "AFTER"
		p.nextToken()
	}
	for {
		switch {
		case p.curIsKeyword("insert"):
			t.Events = append(t.Events, "INSERT")
		case p.curIsKeyword("update"):
			t.Events = append(t.Events, "UPDATE")
		case p.curIsKeyword("delete"):
			t.Events = append(t.Events, "DELETE")
		}
		if p.peekIsKeyword("or") {
			p.nextToken()
			p.nextToken()
			continue
		}
		break
	}
	if !eqFold(p.peekToken.Literal, "on") {
		p.errorf(p.peekToken.Pos, "expected ON after trigger events, got %q", p.peekToken.Literal)
	} else {
		p.nextToken() // ON
		p.nextToken()
		name := p.curToken.Literal
		tr := &ast.TableRef{Name: name}
		if p.peekTokenIs(lexer.DOT) {
			p.nextToken()
			p.nextToken()
			tr.Schema = name
			tr.Name = p.curToken.Literal
		}
		t.Table = tr
	}
	for !p.curIsKeyword("begin") && !p.curTokenIs(lexer.EOF) {
		if p.curIsKeyword("row") {
			t.ForEachRow = true
		}
		if p.curIsKeyword("follows") {
			p.nextToken()
			t.Follows = p.curToken.Literal
		}
		p.nextToken()
	}
	t.Body = p.parseBlock()
	return t
}

func (p *Parser) parseCreateTypeBody() *ast.CreateTypeBodyStatement {
	p.skipCreateOrReplace()
	if !p.curIsKeyword("type") {
		p.errorf(p.curToken.Pos, "expected TYPE")
		return nil
	}
	p.nextToken()
	if p.curIsKeyword("body") {
		p.nextToken()
	}
	tb := &ast.CreateTypeBodyStatement{Pos: p.curToken.Pos}
	tb.Schema, tb.Name = p.parseSchemaQualifiedName()
	p.skipToKeyword("is", "as")
	p.nextToken()

	for !p.curIsKeyword("end") && !p.curTokenIs(lexer.EOF) {
		if p.curIsKeyword("member") || p.curIsKeyword("constructor") {
			p.nextToken()
			if p.curIsKeyword("function") || p.curIsKeyword("procedure") {
				isFn := p.curIsKeyword("function")
				p.nextToken()
				m := ast.CreateFunctionStatement{Pos: p.curToken.Pos, Name: p.curToken.Literal}
				if p.peekTokenIs(lexer.LPAREN) {
					m.Parameters = p.parseParameterList()
				}
				if isFn && p.expectPeek(lexer.RETURN) {
					p.nextToken()
					m.ReturnType = p.parseDataType()
				}
				p.skipToKeyword("is", "as")
				m.Body = p.parseBlock()
				tb.Methods = append(tb.Methods, m)
				continue
			}
		}
		p.nextToken()
	}
	return tb
}

// ---- Blocks, declarations, statements --------------------------------------

func (p *Parser) parseBlock() *ast.Block {
	blk := &ast.Block{Pos: p.curToken.Pos}

	if p.curIsKeyword("declare") {
		p.nextToken()
		for !p.curIsKeyword("begin") && !p.curTokenIs(lexer.EOF) {
			if decl := p.parseDeclaration(); decl != nil {
				blk.Declarations = append(blk.Declarations, decl)
			} else {
				p.nextToken()
			}
		}
	}

	if !p.curIsKeyword("begin") {
		// Functions/procedures without an explicit DECLARE still begin with
		// local declarations directly, followed by BEGIN.
		for !p.curIsKeyword("begin") && !p.curTokenIs(lexer.EOF) {
			if decl := p.parseDeclaration(); decl != nil {
				blk.Declarations = append(blk.Declarations, decl)
			} else {
				p.nextToken()
			}
		}
	}
	if p.curIsKeyword("begin") {
		p.nextToken()
	}

	for !p.curIsKeyword("exception") && !p.curIsKeyword("end") && !p.curTokenIs(lexer.EOF) {
		if stmt := p.parseStatement(); stmt != nil {
			blk.Statements = append(blk.Statements, stmt)
		} else {
			p.nextToken()
		}
	}

	if p.curIsKeyword("exception") {
		p.nextToken()
		for p.curIsKeyword("when") {
			h := ast.ExceptionHandler{Pos: p.curToken.Pos}
			p.nextToken()
			h.Names = append(h.Names, p.curToken.Literal)
			for p.peekIsKeyword("or") {
				p.nextToken()
				p.nextToken()
				h.Names = append(h.Names, p.curToken.Literal)
			}
			p.expectPeek(lexer.THEN)
			p.nextToken()
			for !p.curIsKeyword("when") && !p.curIsKeyword("end") && !p.curTokenIs(lexer.EOF) {
				if stmt := p.parseStatement(); stmt != nil {
					h.Statements = append(h.Statements, stmt)
				} else {
					p.nextToken()
				}
			}
			blk.Handlers = append(blk.Handlers, h)
		}
	}

	if p.curIsKeyword("end") {
		p.nextToken()
		for !p.curTokenIs(lexer.SEMI) && !p.curTokenIs(lexer.EOF) {
			p.nextToken()
		}
	}
	return blk
}

func (p *Parser) parseDeclaration() ast.Statement {
	switch {
	case p.curIsKeyword("cursor"):
		return p.parseCursorDecl()
	case p.curIsKeyword("type"):
		return p.parseTypeDecl()
	case p.curIsKeyword("pragma"):
		return p.parsePragmaStatement()
	case p.curTokenIs(lexer.IDENT):
		return p.parseVariableDeclStatement()
	}
	return nil
}

func (p *Parser) parseVariableDeclStatement() *ast.VariableDecl {
	v := &ast.VariableDecl{Pos: p.curToken.Pos, Name: p.curToken.Literal}
	p.nextToken()
	if p.curIsKeyword("constant") {
		v.Constant = true
		p.nextToken()
	}
	v.DataType = p.parseDataType()
	if p.peekIsKeyword("not") {
		p.nextToken()
		p.nextToken() // NULL
		v.NotNull = true
	}
	if p.peekTokenIs(lexer.ASSIGN) || p.peekIsKeyword("default") {
		p.nextToken()
		p.nextToken()
		v.Default = p.parseExpression(LOWEST)
	}
	p.skipStatementTerminator()
	return v
}

func (p *Parser) parseTypeDecl() *ast.TypeDecl {
	td := &ast.TypeDecl{Pos: p.curToken.Pos}
	p.nextToken()
	td.Name = p.curToken.Literal
	p.expectPeek(lexer.IS)
	p.nextToken()

	switch {
	case p.curIsKeyword("record"):
		td.Category = "RECORD"
		p.expectPeek(lexer.LPAREN)
		p.nextToken()
		for !p.curTokenIs(lexer.RPAREN) && !p.curTokenIs(lexer.EOF) {
			f := ast.RecordField{Name: p.curToken.Literal}
			p.nextToken()
			f.DataType = p.parseDataType()
			td.Fields = append(td.Fields, f)
			if p.peekTokenIs(lexer.COMMA) {
				p.nextToken()
				p.nextToken()
				continue
			}
			p.nextToken()
		}
	case p.curIsKeyword("table"):
		td.Category = "TABLE_OF"
		p.expectPeek(lexer.OF)
		p.nextToken()
		td.Element = p.parseDataType()
		if p.peekIsKeyword("index") {
			td.Category = "INDEX_BY"
			p.nextToken() // INDEX
			p.nextToken() // BY
			p.nextToken()
			td.KeyType = p.parseDataType()
		}
	case p.curIsKeyword("varray"):
		td.Category = "VARRAY"
		p.expectPeek(lexer.LPAREN)
		p.nextToken()
		n, _ := strconv.Atoi(p.curToken.Literal)
		td.Size = n
		p.expectPeek(lexer.RPAREN)
		p.expectPeek(lexer.OF)
		p.nextToken()
		td.Element = p.parseDataType()
	case eqFold(p.curToken.Literal, "ref"):
		td.Category = "REF_CURSOR"
		p.nextToken()
	}
	p.skipStatementTerminator()
	return td
}

func (p *Parser) parseCursorDecl() *ast.CursorDecl {
	c := &ast.CursorDecl{Pos: p.curToken.Pos}
	p.nextToken()
	c.Name = p.curToken.Literal
	if p.peekTokenIs(lexer.LPAREN) {
		// cursor parameters are parsed and discarded; references to them
		// inside the cursor's SELECT render as plain identifiers.
		p.parseParameterList()
	}
	p.expectPeek(lexer.IS)
	p.nextToken()
	c.Select = p.parseSelect()
	p.skipStatementTerminator()
	return c
}

func (p *Parser) parsePragmaStatement() *ast.PragmaStatement {
	pr := &ast.PragmaStatement{Pos: p.curToken.Pos}
	p.nextToken()
	pr.Name = p.curToken.Literal
	if p.peekTokenIs(lexer.LPAREN) {
		p.nextToken()
		pr.Arguments = p.parseExpressionList(lexer.RPAREN)
	}
	p.skipStatementTerminator()
	return pr
}

func (p *Parser) parseStatement() ast.Statement {
	switch {
	case p.curIsKeyword("if"):
		return p.parseIfStatement()
	case p.curIsKeyword("case"):
		return p.parseCaseStatement()
	case p.curIsKeyword("loop"):
		return p.parseLoopStatement()
	case p.curIsKeyword("while"):
		return p.parseWhileStatement()
	case p.curIsKeyword("for"):
		return p.parseForStatement()
	case p.curIsKeyword("exit"):
		return p.parseExitStatement()
	case p.curIsKeyword("continue"):
		return p.parseContinueStatement()
	case p.curIsKeyword("return"):
		return p.parseReturnStatement()
	case p.curIsKeyword("null"):
		stmt := &ast.NullStatement{Pos: p.curToken.Pos}
		p.skipStatementTerminator()
		return stmt
	case p.curIsKeyword("raise"):
		return p.parseRaiseStatement()
	case p.curIsKeyword("open"):
		return p.parseOpenStatement()
	case p.curIsKeyword("fetch"):
		return p.parseFetchStatement()
	case p.curIsKeyword("close"):
		return p.parseCloseStatement()
	case p.curIsKeyword("begin") || p.curIsKeyword("declare"):
		return p.parseBlock()
	case p.curIsKeyword("select"):
		return p.parseSelectIntoOrPlain()
	case p.curIsKeyword("insert"):
		return p.parseInsertStatement()
	case p.curIsKeyword("update"):
		return p.parseUpdateStatement()
	case p.curIsKeyword("delete"):
		return p.parseDeleteStatement()
	case p.curIsKeyword("with"):
		return p.parseWithStatement()
	case p.curIsKeyword("pragma"):
		return p.parsePragmaStatement()
	case p.curTokenIs(lexer.IDENT) || p.curTokenIs(lexer.QIDENT):
		return p.parseAssignmentOrCallStatement()
	}
	p.errorf(p.curToken.Pos, "unexpected token %q in statement position", p.curToken.Literal)
	return nil
}

func (p *Parser) parseStatementList(terminators ...string) []ast.Statement {
	var stmts []ast.Statement
	for !p.curTokenIs(lexer.EOF) {
		for _, t := range terminators {
			if p.curIsKeyword(t) {
				return stmts
			}
		}
		if stmt := p.parseStatement(); stmt != nil {
			stmts = append(stmts, stmt)
		} else {
			p.nextToken()
		}
	}
	return stmts
}

func (p *Parser) parseIfStatement() *ast.IfStatement {
	ifs := &ast.IfStatement{Pos: p.curToken.Pos}
	p.nextToken()
	ifs.Condition = p.parseExpression(LOWEST)
	p.expectPeek(lexer.THEN)
	p.nextToken()
	ifs.Then = p.parseStatementList("elsif", "else", "end")

	for p.curIsKeyword("elsif") {
		p.nextToken()
		cond := p.parseExpression(LOWEST)
		p.expectPeek(lexer.THEN)
		p.nextToken()
		body := p.parseStatementList("elsif", "else", "end")
		ifs.ElsifConds = append(ifs.ElsifConds, cond)
		ifs.ElsifBodies = append(ifs.ElsifBodies, body)
	}

	if p.curIsKeyword("else") {
		p.nextToken()
		ifs.Else = p.parseStatementList("end")
	}
	if p.curIsKeyword("end") {
		p.nextToken() // END
		if p.curIsKeyword("if") {
			p.nextToken()
		}
		p.skipStatementTerminator()
	}
	return ifs
}

func (p *Parser) parseCaseStatement() *ast.CaseStatement {
	cs := &ast.CaseStatement{Pos: p.curToken.Pos}
	p.nextToken()
	if !p.curIsKeyword("when") {
		cs.Subject = p.parseExpression(LOWEST)
		p.nextToken()
	}
	for p.curIsKeyword("when") {
		p.nextToken()
		cond := p.parseExpression(LOWEST)
		p.expectPeek(lexer.THEN)
		p.nextToken()
		body := p.parseStatementList("when", "else", "end")
		cs.Whens = append(cs.Whens, ast.CaseStmtWhen{Condition: cond, Body: body})
	}
	if p.curIsKeyword("else") {
		p.nextToken()
		cs.Else = p.parseStatementList("end")
	}
	if p.curIsKeyword("end") {
		p.nextToken()
		if p.curIsKeyword("case") {
			p.nextToken()
		}
		p.skipStatementTerminator()
	}
	return cs
}

func (p *Parser) parseLoopStatement() *ast.LoopStatement {
	ls := &ast.LoopStatement{Pos: p.curToken.Pos}
	p.nextToken()
	ls.Body = p.parseStatementList("end")
	p.consumeEndLoop()
	return ls
}

func (p *Parser) consumeEndLoop() {
	if p.curIsKeyword("end") {
		p.nextToken()
		if p.curIsKeyword("loop") {
			p.nextToken()
		}
		p.skipStatementTerminator()
	}
}

func (p *Parser) parseWhileStatement() *ast.WhileStatement {
	ws := &ast.WhileStatement{Pos: p.curToken.Pos}
	p.nextToken()
	ws.Condition = p.parseExpression(LOWEST)
	p.expectPeek(lexer.LOOP)
	p.nextToken()
	ws.Body = p.parseStatementList("end")
	p.consumeEndLoop()
	return ws
}

func (p *Parser) parseForStatement() ast.Statement {
	pos := p.curToken.Pos
	p.nextToken()
	varName := p.curToken.Literal
	p.expectPeek(lexer.IN)
	p.nextToken()

	if p.curTokenIs(lexer.LPAREN) {
		p.nextToken()
		sel := p.parseSelect()
		p.expectPeek(lexer.RPAREN)
		p.expectPeek(lexer.LOOP)
		p.nextToken()
		f := &ast.CursorForStatement{Pos: pos, Var: varName, Select: sel}
		f.Body = p.parseStatementList("end")
		p.consumeEndLoop()
		return f
	}

	reverse := false
	if p.curIsKeyword("reverse") {
		reverse = true
		p.nextToken()
	}
	// Disambiguate numeric FOR (lo..hi) from cursor FOR (cursor_name).
	low := p.parseExpression(LOWEST)
	if p.peekTokenIs(lexer.DOTDOT) {
		p.nextToken()
		p.nextToken()
		high := p.parseExpression(LOWEST)
		p.expectPeek(lexer.LOOP)
		p.nextToken()
		nf := &ast.NumericForStatement{Pos: pos, Var: varName, Reverse: reverse, Low: low, High: high}
		nf.Body = p.parseStatementList("end")
		p.consumeEndLoop()
		return nf
	}
	// cursor_name form: `low` parsed as an Identifier naming the cursor.
	p.expectPeek(lexer.LOOP)
	p.nextToken()
	cf := &ast.CursorForStatement{Pos: pos, Var: varName}
	if id, ok := low.(*ast.Identifier); ok {
		cf.CursorName = id.Last()
	}
	cf.Body = p.parseStatementList("end")
	p.consumeEndLoop()
	return cf
}

func (p *Parser) parseExitStatement() *ast.ExitStatement {
	e := &ast.ExitStatement{Pos: p.curToken.Pos}
	if p.peekIsKeyword("when") {
		p.nextToken()
		p.nextToken()
		e.When = p.parseExpression(LOWEST)
	}
	p.skipStatementTerminator()
	return e
}

func (p *Parser) parseContinueStatement() *ast.ContinueStatement {
	c := &ast.ContinueStatement{Pos: p.curToken.Pos}
	if p.peekIsKeyword("when") {
		p.nextToken()
		p.nextToken()
		c.When = p.parseExpression(LOWEST)
	}
	p.skipStatementTerminator()
	return c
}

func (p *Parser) parseReturnStatement() *ast.ReturnStatement {
	r := &ast.ReturnStatement{Pos: p.curToken.Pos}
	if !p.peekTokenIs(lexer.SEMI) {
		p.nextToken()
		r.Value = p.parseExpression(LOWEST)
	}
	p.skipStatementTerminator()
	return r
}

func (p *Parser) parseRaiseStatement() ast.Statement {
	pos := p.curToken.Pos
	if p.peekIsKeyword("raise_application_error") {
		// not reached: RAISE_APPLICATION_ERROR is parsed as a call statement.
	}
	r := &ast.RaiseStatement{Pos: pos}
	if p.peekTokenIs(lexer.SEMI) {
		p.skipStatementTerminator()
		return r
	}
	p.nextToken()
	r.ExceptionName = p.curToken.Literal
	p.skipStatementTerminator()
	return r
}

func (p *Parser) parseOpenStatement() *ast.OpenStatement {
	o := &ast.OpenStatement{Pos: p.curToken.Pos}
	p.nextToken()
	o.CursorName = p.curToken.Literal
	p.skipStatementTerminator()
	return o
}

func (p *Parser) parseFetchStatement() *ast.FetchStatement {
	f := &ast.FetchStatement{Pos: p.curToken.Pos}
	p.nextToken()
	f.CursorName = p.curToken.Literal
	p.expectPeek(lexer.INTO)
	p.nextToken()
	f.Targets = append(f.Targets, p.parseExpression(LOWEST))
	for p.peekTokenIs(lexer.COMMA) {
		p.nextToken()
		p.nextToken()
		f.Targets = append(f.Targets, p.parseExpression(LOWEST))
	}
	p.skipStatementTerminator()
	return f
}

func (p *Parser) parseCloseStatement() *ast.CloseStatement {
	c := &ast.CloseStatement{Pos: p.curToken.Pos}
	p.nextToken()
	c.CursorName = p.curToken.Literal
	p.skipStatementTerminator()
	return c
}

// parseAssignmentOrCallStatement handles `target := expr;`, a bare procedure
// call `pkg.proc(args);`, and RAISE_APPLICATION_ERROR(...) which Oracle
// treats as an ordinary call.
func (p *Parser) parseAssignmentOrCallStatement() ast.Statement {
	pos := p.curToken.Pos
	target := p.parseExpression(CALL)
	if p.peekTokenIs(lexer.ASSIGN) {
		p.nextToken()
		p.nextToken()
		value := p.parseExpression(LOWEST)
		p.skipStatementTerminator()
		return &ast.AssignmentStatement{Pos: pos, Target: target, Value: value}
	}
	if fc, ok := target.(*ast.FunctionCall); ok && eqFold(fc.Name.Last(), "raise_application_error") {
		rs := &ast.RaiseStatement{Pos: pos, IsAppError: true}
		if len(fc.Arguments) > 0 {
			rs.Code = fc.Arguments[0]
		}
		if len(fc.Arguments) > 1 {
			rs.Message = fc.Arguments[1]
		}
		p.skipStatementTerminator()
		return rs
	}
	p.skipStatementTerminator()
	// A bare call statement is represented as an assignment whose Value is
	// nil and Target holds the call; the translator renders it as a CALL
	// statement.
	return &ast.AssignmentStatement{Pos: pos, Target: target, Value: nil}
}

// ---- DML --------------------------------------------------------------

func (p *Parser) parseTableRef() *ast.TableRef {
	tr := &ast.TableRef{Name: p.curToken.Literal}
	if p.peekTokenIs(lexer.DOT) {
		p.nextToken()
		p.nextToken()
		tr.Schema = tr.Name
		tr.Name = p.curToken.Literal
	}
	if p.peekTokenIs(lexer.IDENT) {
		p.nextToken()
		tr.Alias = p.curToken.Literal
	} else if p.peekIsKeyword("as") {
		p.nextToken()
		p.nextToken()
		tr.Alias = p.curToken.Literal
	}
	return tr
}

func (p *Parser) parseSelect() *ast.SelectStatement {
	sel := &ast.SelectStatement{Pos: p.curToken.Pos}
	p.nextToken() // consume SELECT
	if p.curIsKeyword("distinct") {
		sel.Distinct = true
		p.nextToken()
	}

	for {
		col := ast.SelectColumn{}
		col.Expression = p.parseExpression(LOWEST)
		if p.peekIsKeyword("as") {
			p.nextToken()
			p.nextToken()
			col.Alias = p.curToken.Literal
		} else if p.peekTokenIs(lexer.IDENT) {
			p.nextToken()
			col.Alias = p.curToken.Literal
		}
		sel.Columns = append(sel.Columns, col)
		if p.peekTokenIs(lexer.COMMA) {
			p.nextToken()
			p.nextToken()
			continue
		}
		break
	}

	if p.peekTokenIs(lexer.FROM) {
		p.nextToken()
		p.nextToken()
		if p.curIsKeyword("dual") {
			sel.FromDual = true
			p.nextToken()
		} else {
			sel.Tables = append(sel.Tables, *p.parseTableRef())
			for p.peekTokenIs(lexer.COMMA) {
				p.nextToken()
				p.nextToken()
				sel.Tables = append(sel.Tables, *p.parseTableRef())
			}
		}
	}

	if p.peekTokenIs(lexer.WHERE) {
		p.nextToken()
		p.nextToken()
		sel.Where = p.parseExpression(LOWEST)
	}

	if p.peekIsKeyword("start") {
		p.nextToken() // START
		p.nextToken() // WITH
		p.nextToken()
		sel.StartWith = p.parseExpression(LOWEST)
	}
	if p.peekIsKeyword("connect") {
		p.nextToken() // CONNECT
		p.nextToken() // BY
		if p.peekIsKeyword("nocycle") {
			p.nextToken()
			sel.IsConnectByNocycle = true
		}
		p.nextToken()
		sel.ConnectBy = p.parseExpression(LOWEST)
	}

	if p.peekIsKeyword("group") {
		p.nextToken() // GROUP
		p.nextToken() // BY
		p.nextToken()
		sel.GroupBy = append(sel.GroupBy, p.parseExpression(LOWEST))
		for p.peekTokenIs(lexer.COMMA) {
			p.nextToken()
			p.nextToken()
			sel.GroupBy = append(sel.GroupBy, p.parseExpression(LOWEST))
		}
	}
	if p.peekIsKeyword("having") {
		p.nextToken()
		p.nextToken()
		sel.Having = p.parseExpression(LOWEST)
	}
	if p.peekIsKeyword("order") {
		p.nextToken() // ORDER
		p.nextToken() // BY
		p.nextToken()
		sel.OrderBy = append(sel.OrderBy, p.parseOrderByItem())
		for p.peekTokenIs(lexer.COMMA) {
			p.nextToken()
			p.nextToken()
			sel.OrderBy = append(sel.OrderBy, p.parseOrderByItem())
		}
	}

	if p.peekIsKeyword("union") {
		p.nextToken()
		op := "UNION"
		if p.peekIsKeyword("all") {
			p.nextToken()
			op = "UNION ALL"
		}
		p.nextToken()
		sel.SetOp = op
		sel.SetRight = p.parseSelect()
	} else if p.peekTokenIs(lexer.MINUSTOK) {
		p.nextToken()
		p.nextToken()
		sel.SetOp = "MINUS"
		sel.SetRight = p.parseSelect()
	}

	if p.peekIsKeyword("for") {
		p.nextToken() // FOR
		p.nextToken() // XML
		fx := &ast.ForXMLClause{ForType: "XML"}
		if p.peekIsKeyword("path") {
			p.nextToken()
			p.expectPeek(lexer.LPAREN)
			p.nextToken()
			fx.ElementName = p.curToken.Literal
			p.expectPeek(lexer.RPAREN)
		}
		if p.peekTokenIs(lexer.COMMA) {
			p.nextToken()
			if p.peekIsKeyword("root") {
				p.nextToken()
				p.expectPeek(lexer.LPAREN)
				p.nextToken()
				fx.Root = p.curToken.Literal
				p.expectPeek(lexer.RPAREN)
			}
		}
		sel.ForClause = fx
	}

	return sel
}

func (p *Parser) parseOrderByItem() ast.OrderByItem {
	item := ast.OrderByItem{Expression: p.parseExpression(LOWEST)}
	if p.peekIsKeyword("desc") {
		p.nextToken()
		item.Desc = true
	} else if p.peekIsKeyword("asc") {
		p.nextToken()
	}
	return item
}

func (p *Parser) parseSelectIntoOrPlain() ast.Statement {
	pos := p.curToken.Pos
	save, saveLexer := *p, *p.l
	sel := p.parseSelect()
	_ = pos
	if p.peekTokenIs(lexer.INTO) {
		// SELECT ... INTO: re-read the statement from its SELECT keyword.
		*p = save
		*p.l = saveLexer
		return p.parseSelectInto()
	}
	p.skipStatementTerminator()
	return sel
}

// parseSelectInto is used by callers that know a SELECT..INTO is expected
// (assignment-free fetch of a single row into PL/SQL variables).
func (p *Parser) parseSelectInto() *ast.SelectIntoStatement {
	sis := &ast.SelectIntoStatement{Pos: p.curToken.Pos}
	p.nextToken()
	col := ast.SelectColumn{Expression: p.parseExpression(LOWEST)}
	cols := []ast.SelectColumn{col}
	for p.peekTokenIs(lexer.COMMA) {
		p.nextToken()
		p.nextToken()
		cols = append(cols, ast.SelectColumn{Expression: p.parseExpression(LOWEST)})
	}
	p.expectPeek(lexer.INTO)
	p.nextToken()
	sis.Targets = append(sis.Targets, p.parseExpression(LOWEST))
	for p.peekTokenIs(lexer.COMMA) {
		p.nextToken()
		p.nextToken()
		sis.Targets = append(sis.Targets, p.parseExpression(LOWEST))
	}
	sel := &ast.SelectStatement{Pos: sis.Pos, Columns: cols}
	if p.peekTokenIs(lexer.FROM) {
		p.nextToken()
		p.nextToken()
		if p.curIsKeyword("dual") {
			sel.FromDual = true
		} else {
			sel.Tables = append(sel.Tables, *p.parseTableRef())
			for p.peekTokenIs(lexer.COMMA) {
				p.nextToken()
				p.nextToken()
				sel.Tables = append(sel.Tables, *p.parseTableRef())
			}
		}
	}
	if p.peekTokenIs(lexer.WHERE) {
		p.nextToken()
		p.nextToken()
		sel.Where = p.parseExpression(LOWEST)
	}
	sis.Select = sel
	p.skipStatementTerminator()
	return sis
}

func (p *Parser) parseInsertStatement() *ast.InsertStatement {
	ins := &ast.InsertStatement{Pos: p.curToken.Pos}
	p.nextToken() // INSERT
	p.expectPeek(lexer.INTO)
	p.nextToken()
	ins.Table = p.parseTableRef()
	if p.peekTokenIs(lexer.LPAREN) {
		p.nextToken()
		p.nextToken()
		ins.Columns = append(ins.Columns, p.curToken.Literal)
		for p.peekTokenIs(lexer.COMMA) {
			p.nextToken()
			p.nextToken()
			ins.Columns = append(ins.Columns, p.curToken.Literal)
		}
		p.expectPeek(lexer.RPAREN)
	}
	if p.peekIsKeyword("values") {
		p.nextToken()
		for {
			p.expectPeek(lexer.LPAREN)
			vals := p.parseExpressionList(lexer.RPAREN)
			ins.ValuesLists = append(ins.ValuesLists, vals)
			if p.peekTokenIs(lexer.COMMA) {
				p.nextToken()
				continue
			}
			break
		}
	} else if p.peekTokenIs(lexer.SELECT) {
		p.nextToken()
		ins.Select = p.parseSelect()
	}
	if p.peekTokenIs(lexer.RETURNING) {
		p.nextToken()
		ins.ReturningInto = p.parseReturningIntoClause()
	}
	p.skipStatementTerminator()
	return ins
}

// parseReturningIntoClause parses `RETURNING col [, col ...] INTO v [, v ...]`
// starting with curToken on RETURNING. §4.4 treats this as a hard
// UnsupportedFeature at translation time (no PostgreSQL RETURNING...INTO
// target-list form), but the parser still captures it for that diagnostic.
func (p *Parser) parseReturningIntoClause() []ast.Expression {
	p.nextToken()
	p.parseExpression(LOWEST)
	for p.peekTokenIs(lexer.COMMA) {
		p.nextToken()
		p.nextToken()
		p.parseExpression(LOWEST)
	}
	var targets []ast.Expression
	if p.expectPeek(lexer.INTO) {
		p.nextToken()
		targets = append(targets, p.parseExpression(LOWEST))
		for p.peekTokenIs(lexer.COMMA) {
			p.nextToken()
			p.nextToken()
			targets = append(targets, p.parseExpression(LOWEST))
		}
	}
	return targets
}

func (p *Parser) parseUpdateStatement() *ast.UpdateStatement {
	u := &ast.UpdateStatement{Pos: p.curToken.Pos}
	p.nextToken() // UPDATE
	u.Table = p.parseTableRef()
	p.expectPeek(lexer.SET)
	p.nextToken()
	for {
		col := p.curToken.Literal
		p.expectPeek(lexer.EQ)
		p.nextToken()
		val := p.parseExpression(LOWEST)
		u.Assignments = append(u.Assignments, ast.UpdateAssignment{Column: col, Value: val})
		if p.peekTokenIs(lexer.COMMA) {
			p.nextToken()
			p.nextToken()
			continue
		}
		break
	}
	if p.peekTokenIs(lexer.WHERE) {
		p.nextToken()
		p.nextToken()
		u.Where = p.parseExpression(LOWEST)
	}
	if p.peekTokenIs(lexer.RETURNING) {
		p.nextToken()
		u.ReturningInto = p.parseReturningIntoClause()
	}
	p.skipStatementTerminator()
	return u
}

func (p *Parser) parseDeleteStatement() *ast.DeleteStatement {
	d := &ast.DeleteStatement{Pos: p.curToken.Pos}
	p.nextToken() // DELETE
	if p.curIsKeyword("from") {
		d.HasFrom = true
		p.nextToken()
	}
	d.Table = p.parseTableRef()
	if p.peekTokenIs(lexer.WHERE) {
		p.nextToken()
		p.nextToken()
		d.Where = p.parseExpression(LOWEST)
	}
	if p.peekTokenIs(lexer.RETURNING) {
		p.nextToken()
		d.ReturningInto = p.parseReturningIntoClause()
	}
	p.skipStatementTerminator()
	return d
}

func (p *Parser) parseWithStatement() *ast.WithStatement {
	ws := &ast.WithStatement{Pos: p.curToken.Pos}
	p.nextToken() // WITH
	for {
		cte := ast.CTEDef{Name: p.curToken.Literal}
		if p.peekTokenIs(lexer.LPAREN) {
			p.nextToken()
			p.nextToken()
			cte.Columns = append(cte.Columns, p.curToken.Literal)
			for p.peekTokenIs(lexer.COMMA) {
				p.nextToken()
				p.nextToken()
				cte.Columns = append(cte.Columns, p.curToken.Literal)
			}
			p.expectPeek(lexer.RPAREN)
		}
		p.expectPeek(lexer.AS)
		p.expectPeek(lexer.LPAREN)
		p.nextToken()
		cte.Query = p.parseSelect()
		p.expectPeek(lexer.RPAREN)
		ws.CTEs = append(ws.CTEs, cte)
		if p.peekTokenIs(lexer.COMMA) {
			p.nextToken()
			p.nextToken()
			continue
		}
		break
	}
	p.nextToken()
	switch {
	case p.curIsKeyword("select"):
		ws.Body = p.parseSelect()
	case p.curIsKeyword("insert"):
		ws.Body = p.parseInsertStatement()
	case p.curIsKeyword("update"):
		ws.Body = p.parseUpdateStatement()
	case p.curIsKeyword("delete"):
		ws.Body = p.parseDeleteStatement()
	}
	return ws
}
