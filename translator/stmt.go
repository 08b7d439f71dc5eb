package translator

import (
	"fmt"
	"strings"

	"github.com/orapgcore/oracore/ast"
	"github.com/orapgcore/oracore/diagnostics"
	"github.com/orapgcore/oracore/oracleisms"
	"github.com/orapgcore/oracore/xformctx"
)

func (t *Translator) translateBlock(b *ast.Block) (string, *diagnostics.Diagnostics) {
	return t.translateBlockWithPrelude(b, nil)
}

func (t *Translator) translateBlockWithPrelude(b *ast.Block, prelude []string) (string, *diagnostics.Diagnostics) {
	t.Ctx.PushScope()
	defer t.Ctx.PopScope()

	combined := append(append([]ast.Statement{}, b.Declarations...), b.Statements...)
	oracleisms.PreScanCursorAttrs(combined, t.Ctx)
	for _, h := range b.Handlers {
		oracleisms.PreScanCursorAttrs(h.Statements, t.Ctx)
	}

	var declLines []string
	for _, d := range b.Declarations {
		lines, err := t.translateDeclaration(d)
		if err != nil {
			return "", err
		}
		declLines = append(declLines, lines...)
	}

	var bodyLines []string
	bodyLines = append(bodyLines, prelude...)
	stmtLines, err := t.translateStatements(b.Statements)
	if err != nil {
		return "", err
	}
	bodyLines = append(bodyLines, stmtLines...)

	var sb strings.Builder
	if len(declLines) > 0 {
		sb.WriteString("DECLARE\n")
		for _, l := range declLines {
			sb.WriteString("  " + l + "\n")
		}
	}
	sb.WriteString("BEGIN\n")
	for _, l := range bodyLines {
		sb.WriteString("  " + l + "\n")
	}
	if len(b.Handlers) > 0 {
		sb.WriteString("EXCEPTION\n")
		for _, h := range b.Handlers {
			names := make([]string, len(h.Names))
			for i, n := range h.Names {
				names[i] = MapExceptionName(n)
			}
			fmt.Fprintf(&sb, "  WHEN %s THEN\n", strings.Join(names, " OR "))
			lines, err := t.translateStatements(h.Statements)
			if err != nil {
				return "", err
			}
			for _, l := range lines {
				sb.WriteString("    " + l + "\n")
			}
		}
	}
	sb.WriteString("END;")
	return sb.String(), nil
}

func (t *Translator) translateDeclaration(d ast.Statement) ([]string, *diagnostics.Diagnostics) {
	switch n := d.(type) {
	case *ast.VariableDecl:
		return t.translateVariableDecl(n)
	case *ast.CursorDecl:
		selSQL, err := t.translateSelect(n.Select)
		if err != nil {
			return nil, err
		}
		lines := []string{fmt.Sprintf("%s CURSOR FOR %s;", strings.ToLower(n.Name), selSQL)}
		if t.Ctx.CursorAttrNeeded(n.Name) {
			lines = append(lines, oracleisms.TrackingDeclarations(n.Name)...)
		}
		return lines, nil
	case *ast.TypeDecl:
		t.Ctx.RegisterInlineType(n.Name, inlineTypeFromDecl(t, n))
		return nil, nil
	case *ast.PragmaStatement:
		if strings.EqualFold(n.Name, "EXCEPTION_INIT") && len(n.Arguments) == 2 {
			if id, ok := n.Arguments[0].(*ast.Identifier); ok {
				if num, ok := n.Arguments[1].(*ast.NumberLiteral); ok {
					exceptionNames[strings.ToUpper(id.Last())] = "P" + num.Value
				}
			}
		}
		return nil, nil
	}
	return nil, nil
}

func inlineTypeFromDecl(t *Translator, td *ast.TypeDecl) xformctx.InlineTypeDefinition {
	def := xformctx.InlineTypeDefinition{Name: td.Name, Category: td.Category, ConversionStrategy: "JSONB"}
	for _, f := range td.Fields {
		def.Fields = append(def.Fields, xformctx.InlineField{
			Name:       f.Name,
			OracleType: f.DataType.Name,
			PostgresType: t.Dialect.MapType(f.DataType.Name, f.DataType.Precision, f.DataType.Scale, f.DataType.Length, f.DataType.HasLength),
		})
	}
	if td.Element != nil {
		def.ElementType = td.Element.Name
	}
	if td.KeyType != nil {
		def.KeyType = td.KeyType.Name
	}
	return def
}

func (t *Translator) translateVariableDecl(v *ast.VariableDecl) ([]string, *diagnostics.Diagnostics) {
	dt := v.DataType
	var pgType string
	isInline := dt.IsRowType || isCollectionCategory(t, dt)
	if isInline {
		pgType = "jsonb"
	} else {
		pgType = t.Dialect.MapType(t.resolveTypeName(dt), dt.Precision, dt.Scale, dt.Length, dt.HasLength)
	}

	t.Ctx.DeclareVariable(v.Name, xformctx.VarInfo{OracleType: t.resolveTypeName(dt), IsRecord: dt.IsRowType})

	line := strings.ToLower(v.Name) + " " + pgType
	if v.Constant {
		line += " CONSTANT"
	}
	switch {
	case v.Default != nil:
		expr, err := t.translateExpr(v.Default)
		if err != nil {
			return nil, err
		}
		if isInline {
			if _, ok := v.Default.(*ast.StringLiteral); ok {
				expr = oracleisms.WrapStringLiteral(expr)
			}
		}
		line += " := " + expr + ";"
	case isInline:
		def, _ := t.Ctx.ResolveInlineType(dt.Name)
		line += " := " + oracleisms.DeclarationInit(def) + ";"
	default:
		line += ";"
	}
	return []string{line}, nil
}

func isCollectionCategory(t *Translator, dt *ast.DataType) bool {
	if dt.Name == "" {
		return false
	}
	def, ok := t.Ctx.ResolveInlineType(dt.Name)
	return ok && def.Category != ""
}

func (t *Translator) resolveTypeName(dt *ast.DataType) string {
	if dt.IsTypeAttr {
		if oracleType, ok := t.resolvePercentType(dt); ok {
			return oracleType
		}
		return "VARCHAR2"
	}
	return dt.Name
}

// resolvePercentType resolves a %TYPE reference: local scope, then catalog
// column (§4.5.5). It resolves one level and does not consult the package
// spec.
func (t *Translator) resolvePercentType(dt *ast.DataType) (string, bool) {
	const maxDepth = 16
	seen := map[string]bool{}
	name := dt.RefObject
	field := dt.RefField
	schema := dt.RefSchema
	for depth := 0; depth < maxDepth; depth++ {
		key := strings.ToLower(schema + "." + name + "." + field)
		if seen[key] {
			return "", false
		}
		seen[key] = true

		if field != "" {
			if info, ok := t.Ctx.LookupVariable(name); ok {
				return info.OracleType, true
			}
			if schema == "" {
				schema = t.Ctx.CurrentSchema()
			}
			if ct, ok := t.Catalog.ColumnType(schema, name, field); ok {
				return ct, true
			}
			return "", false
		}
		if info, ok := t.Ctx.LookupVariable(name); ok {
			return info.OracleType, true
		}
		return "", false
	}
	return "", false
}

func (t *Translator) translateStatements(stmts []ast.Statement) ([]string, *diagnostics.Diagnostics) {
	var lines []string
	for _, s := range stmts {
		more, err := t.translateStmt(s)
		if err != nil {
			return nil, err
		}
		lines = append(lines, more...)
	}
	return lines, nil
}

func (t *Translator) translateStmt(s ast.Statement) ([]string, *diagnostics.Diagnostics) {
	switch n := s.(type) {
	case *ast.Block:
		rendered, err := t.translateBlock(n)
		if err != nil {
			return nil, err
		}
		return []string{rendered}, nil

	case *ast.AssignmentStatement:
		return t.translateAssignment(n)

	case *ast.IfStatement:
		return t.translateIf(n)

	case *ast.CaseStatement:
		return t.translateCaseStatement(n)

	case *ast.LoopStatement:
		body, err := t.translateStatements(n.Body)
		if err != nil {
			return nil, err
		}
		return wrap("LOOP", body, "END LOOP;"), nil

	case *ast.WhileStatement:
		cond, err := t.translateExpr(n.Condition)
		if err != nil {
			return nil, err
		}
		body, err := t.translateStatements(n.Body)
		if err != nil {
			return nil, err
		}
		return wrap("WHILE "+cond+" LOOP", body, "END LOOP;"), nil

	case *ast.NumericForStatement:
		lo, err := t.translateExpr(n.Low)
		if err != nil {
			return nil, err
		}
		hi, err := t.translateExpr(n.High)
		if err != nil {
			return nil, err
		}
		t.Ctx.PushScope()
		t.Ctx.DeclareVariable(n.Var, xformctx.VarInfo{OracleType: "PLS_INTEGER"})
		body, err := t.translateStatements(n.Body)
		t.Ctx.PopScope()
		if err != nil {
			return nil, err
		}
		reverse := ""
		if n.Reverse {
			reverse = "REVERSE "
		}
		header := fmt.Sprintf("FOR %s IN %s%s..%s LOOP", strings.ToLower(n.Var), reverse, lo, hi)
		return wrap(header, body, "END LOOP;"), nil

	case *ast.CursorForStatement:
		return t.translateCursorFor(n)

	case *ast.ExitStatement:
		if n.When == nil {
			return []string{"EXIT;"}, nil
		}
		cond, err := t.translateExpr(n.When)
		if err != nil {
			return nil, err
		}
		return []string{"EXIT WHEN " + cond + ";"}, nil

	case *ast.ContinueStatement:
		if n.When == nil {
			return []string{"CONTINUE;"}, nil
		}
		cond, err := t.translateExpr(n.When)
		if err != nil {
			return nil, err
		}
		return []string{"CONTINUE WHEN " + cond + ";"}, nil

	case *ast.ReturnStatement:
		if n.Value == nil {
			return []string{"RETURN;"}, nil
		}
		v, err := t.translateExpr(n.Value)
		if err != nil {
			return nil, err
		}
		return []string{"RETURN " + v + ";"}, nil

	case *ast.NullStatement:
		return []string{"NULL;"}, nil

	case *ast.RaiseStatement:
		return t.translateRaise(n)

	case *ast.OpenStatement:
		lines := []string{"OPEN " + strings.ToLower(n.CursorName) + ";"}
		if t.Ctx.CursorAttrNeeded(n.CursorName) {
			lines = append(lines, oracleisms.OnOpen(n.CursorName))
		}
		return lines, nil

	case *ast.FetchStatement:
		targets := make([]string, len(n.Targets))
		for i, tg := range n.Targets {
			e, err := t.translateExpr(tg)
			if err != nil {
				return nil, err
			}
			targets[i] = e
		}
		lines := []string{fmt.Sprintf("FETCH %s INTO %s;", strings.ToLower(n.CursorName), strings.Join(targets, ", "))}
		if t.Ctx.CursorAttrNeeded(n.CursorName) {
			lines = append(lines, oracleisms.OnFetch(n.CursorName)...)
		}
		return lines, nil

	case *ast.CloseStatement:
		lines := []string{"CLOSE " + strings.ToLower(n.CursorName) + ";"}
		if t.Ctx.CursorAttrNeeded(n.CursorName) {
			lines = append(lines, oracleisms.OnClose(n.CursorName))
		}
		return lines, nil

	case *ast.SelectIntoStatement:
		return t.translateSelectInto(n)

	case *ast.InsertStatement:
		return t.translateInsert(n)

	case *ast.UpdateStatement:
		return t.translateUpdate(n)

	case *ast.DeleteStatement:
		return t.translateDelete(n)

	case *ast.WithStatement:
		return t.translateWithStatement(n)

	case *ast.SelectStatement:
		sql, err := t.translateSelect(n)
		if err != nil {
			return nil, err
		}
		return []string{sql + ";"}, nil
	}
	return nil, t.fail(diagnostics.UnsupportedFeature, s.Position(), "", "unsupported statement type %T", s)
}

func wrap(header string, body []string, footer string) []string {
	lines := []string{header}
	lines = append(lines, body...)
	lines = append(lines, footer)
	return lines
}

func (t *Translator) translateAssignment(n *ast.AssignmentStatement) ([]string, *diagnostics.Diagnostics) {
	t.Ctx.EnterAssignmentTarget()
	defer t.Ctx.LeaveAssignmentTarget()

	if n.Value == nil {
		// A bare call statement: a procedure call.
		call, err := t.translateExpr(n.Target)
		if err != nil {
			return nil, err
		}
		if _, ok := n.Target.(*ast.FunctionCall); !ok {
			call += "()"
		}
		return []string{"CALL " + call + ";"}, nil
	}

	rhs, err := t.translateExpr(n.Value)
	if err != nil {
		return nil, err
	}

	switch target := n.Target.(type) {
	case *ast.Identifier:
		kind, pkg, name := oracleisms.ResolvePackageVariableRef(target.Parts, t.Ctx)
		if kind == oracleisms.UnqualifiedPackageVar || kind == oracleisms.QualifiedPackageVar {
			return []string{"PERFORM " + oracleisms.RenderWrite(t.Ctx, pkg, name, rhs) + ";"}, nil
		}
		lhs, err := t.translateExpr(target)
		if err != nil {
			return nil, err
		}
		if _, ok := n.Value.(*ast.StringLiteral); ok {
			if info, ok := t.Ctx.LookupVariable(target.Last()); ok && info.IsRecord {
				rhs = oracleisms.WrapStringLiteral(rhs)
			}
		}
		return []string{lhs + " := " + rhs + ";"}, nil

	case *ast.FieldAccess:
		base, path := flattenFieldPath(target)
		baseName, err := t.translateExpr(base)
		if err != nil {
			return nil, err
		}
		_, isStr := n.Value.(*ast.StringLiteral)
		return []string{oracleisms.FieldWrite(baseName, path, rhs, isStr)}, nil

	case *ast.IndexExpression:
		baseName, err := t.translateExpr(target.Left)
		if err != nil {
			return nil, err
		}
		idx, err := t.translateExpr(target.Index)
		if err != nil {
			return nil, err
		}
		_, isStr := n.Value.(*ast.StringLiteral)
		return []string{oracleisms.ArrayElementWrite(baseName, idx, rhs, isStr)}, nil
	}

	lhs, err := t.translateExpr(n.Target)
	if err != nil {
		return nil, err
	}
	return []string{lhs + " := " + rhs + ";"}, nil
}

// flattenFieldPath collects a chain of .field accesses down to the root
// variable expression, for nested jsonb writes (v.f.g := e).
func flattenFieldPath(fa *ast.FieldAccess) (ast.Expression, []string) {
	var path []string
	var cur ast.Expression = fa
	for {
		f, ok := cur.(*ast.FieldAccess)
		if !ok {
			break
		}
		path = append([]string{f.Field}, path...)
		cur = f.Expr
	}
	return cur, path
}

func (t *Translator) translateIf(n *ast.IfStatement) ([]string, *diagnostics.Diagnostics) {
	cond, err := t.translateExpr(n.Condition)
	if err != nil {
		return nil, err
	}
	thenBody, err := t.translateStatements(n.Then)
	if err != nil {
		return nil, err
	}
	var lines []string
	lines = append(lines, "IF "+cond+" THEN")
	lines = append(lines, indent(thenBody)...)
	for i, ec := range n.ElsifConds {
		c, err := t.translateExpr(ec)
		if err != nil {
			return nil, err
		}
		body, err := t.translateStatements(n.ElsifBodies[i])
		if err != nil {
			return nil, err
		}
		lines = append(lines, "ELSIF "+c+" THEN")
		lines = append(lines, indent(body)...)
	}
	if len(n.Else) > 0 {
		elseBody, err := t.translateStatements(n.Else)
		if err != nil {
			return nil, err
		}
		lines = append(lines, "ELSE")
		lines = append(lines, indent(elseBody)...)
	}
	lines = append(lines, "END IF;")
	return lines, nil
}

func indent(lines []string) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = "  " + l
	}
	return out
}

func (t *Translator) translateCaseStatement(n *ast.CaseStatement) ([]string, *diagnostics.Diagnostics) {
	var lines []string
	header := "CASE"
	if n.Subject != nil {
		s, err := t.translateExpr(n.Subject)
		if err != nil {
			return nil, err
		}
		header += " " + s
	}
	lines = append(lines, header)
	for _, w := range n.Whens {
		cond, err := t.translateExpr(w.Condition)
		if err != nil {
			return nil, err
		}
		body, err := t.translateStatements(w.Body)
		if err != nil {
			return nil, err
		}
		lines = append(lines, "  WHEN "+cond+" THEN")
		lines = append(lines, indent(indent(body))...)
	}
	if len(n.Else) > 0 {
		elseBody, err := t.translateStatements(n.Else)
		if err != nil {
			return nil, err
		}
		lines = append(lines, "  ELSE")
		lines = append(lines, indent(indent(elseBody))...)
	}
	lines = append(lines, "END CASE;")
	return lines, nil
}

func (t *Translator) translateCursorFor(n *ast.CursorForStatement) ([]string, *diagnostics.Diagnostics) {
	t.Ctx.PushScope()
	t.Ctx.DeclareVariable(n.Var, xformctx.VarInfo{IsRecord: true})
	body, err := t.translateStatements(n.Body)
	t.Ctx.PopScope()
	if err != nil {
		return nil, err
	}

	var header string
	if n.Select != nil {
		sel, err := t.translateSelect(n.Select)
		if err != nil {
			return nil, err
		}
		header = fmt.Sprintf("FOR %s IN (%s) LOOP", strings.ToLower(n.Var), sel)
	} else {
		header = fmt.Sprintf("FOR %s IN %s LOOP", strings.ToLower(n.Var), strings.ToLower(n.CursorName))
	}
	return wrap(header, body, "END LOOP;"), nil
}

func (t *Translator) translateRaise(n *ast.RaiseStatement) ([]string, *diagnostics.Diagnostics) {
	if n.IsAppError {
		code, err := t.translateExpr(n.Code)
		if err != nil {
			return nil, err
		}
		msg, err := t.translateExpr(n.Message)
		if err != nil {
			return nil, err
		}
		return []string{fmt.Sprintf("RAISE EXCEPTION USING ERRCODE = %s, MESSAGE = %s;", code, msg)}, nil
	}
	if n.ExceptionName == "" {
		return []string{"RAISE;"}, nil
	}
	return []string{"RAISE EXCEPTION '%', " + MapExceptionName(n.ExceptionName) + ";"}, nil
}
