package translator

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/orapgcore/oracore/ast"
	"github.com/orapgcore/oracore/diagnostics"
	"github.com/orapgcore/oracore/oracleisms"
)

// translateSelect renders one SELECT as PostgreSQL text, wiring in the
// CONNECT BY (§4.5.1), (+) outer-join (§4.5.2), and ROWNUM-as-filter (§4.4.3)
// sub-transformers before falling through to the plain query-shape rendering.
func (t *Translator) translateSelect(sel *ast.SelectStatement) (string, *diagnostics.Diagnostics) {
	if sel == nil {
		return "", nil
	}

	for _, tr := range sel.Tables {
		alias := tr.Alias
		if alias == "" {
			alias = tr.Name
		}
		t.Ctx.DeclareAlias(alias, tr.Schema, tr.Name)
	}

	if sel.ForClause != nil {
		t.warn(sel.Pos, sel.ForClause.ForType, "FOR XML rendered as a plain result set; no PostgreSQL FOR XML equivalent in this phase")
	}

	if oracleisms.IsHierarchical(sel) {
		return t.translateHierarchical(sel)
	}

	where, limitExpr := sel.Where, sel.RowNumLimit
	if limitExpr == nil {
		var remaining ast.Expression
		remaining, limitExpr = extractRowNumLimit(where)
		where = remaining
	}

	colsSQL, err := t.translateColumns(sel.Columns)
	if err != nil {
		return "", err
	}

	var fromSQL, whereSQL string
	if !sel.FromDual && len(sel.Tables) > 0 {
		joinResult, jerr := oracleisms.AnalyzeOuterJoins(sel.Tables, where)
		if jerr != nil {
			return "", jerr
		}
		fromSQL, err = t.renderFrom(joinResult)
		if err != nil {
			return "", err
		}
		if joinResult.Remainder != nil {
			whereSQL, err = t.translateExpr(joinResult.Remainder)
			if err != nil {
				return "", err
			}
		}
	} else if where != nil {
		whereSQL, err = t.translateExpr(where)
		if err != nil {
			return "", err
		}
	}

	var sb strings.Builder
	sb.WriteString("SELECT ")
	if sel.Distinct {
		sb.WriteString("DISTINCT ")
	}
	sb.WriteString(colsSQL)
	if fromSQL != "" {
		sb.WriteString(" FROM " + fromSQL)
	}
	if whereSQL != "" {
		sb.WriteString(" WHERE " + whereSQL)
	}
	if len(sel.GroupBy) > 0 {
		g, gerr := t.translateExprList(sel.GroupBy)
		if gerr != nil {
			return "", gerr
		}
		sb.WriteString(" GROUP BY " + g)
	}
	if sel.Having != nil {
		h, herr := t.translateExpr(sel.Having)
		if herr != nil {
			return "", herr
		}
		sb.WriteString(" HAVING " + h)
	}
	if len(sel.OrderBy) > 0 {
		parts := make([]string, len(sel.OrderBy))
		for i, o := range sel.OrderBy {
			v, oerr := t.translateExpr(o.Expression)
			if oerr != nil {
				return "", oerr
			}
			if o.Desc {
				v += " DESC"
			}
			parts[i] = v
		}
		sb.WriteString(" ORDER BY " + strings.Join(parts, ", "))
	}
	if limitExpr != nil {
		l, lerr := t.translateExpr(limitExpr)
		if lerr != nil {
			return "", lerr
		}
		sb.WriteString(" LIMIT " + l)
	}

	base := sb.String()
	if sel.SetOp != "" && sel.SetRight != nil {
		op := strings.ToUpper(sel.SetOp)
		if op == "MINUS" {
			op = "EXCEPT"
		}
		right, rerr := t.translateSelect(sel.SetRight)
		if rerr != nil {
			return "", rerr
		}
		base = base + " " + op + " " + right
	}
	if len(sel.WithCTEs) > 0 {
		cte, cerr := t.renderCTEs(sel.WithCTEs)
		if cerr != nil {
			return "", cerr
		}
		base = cte + " " + base
	}
	return base, nil
}

// translateHierarchical lowers a CONNECT BY query to a recursive CTE per
// §4.5.1, forcing the substituted LEVEL column to surface as "level" so the
// recursive branch's h.level reference resolves against a real CTE column.
func (t *Translator) translateHierarchical(sel *ast.SelectStatement) (string, *diagnostics.Diagnostics) {
	const cteName = "__hier"
	plan := oracleisms.PlanHierarchical(sel, cteName)
	forceLevelAlias(sel.Columns, plan.BaseBranch.Columns)
	forceLevelAlias(sel.Columns, plan.RecursiveBranch.Columns)

	base, err := t.translateSelect(plan.BaseBranch)
	if err != nil {
		return "", err
	}
	recur, err := t.translateSelect(plan.RecursiveBranch)
	if err != nil {
		return "", err
	}

	cte := fmt.Sprintf("WITH RECURSIVE %s AS (%s UNION ALL %s)", cteName, base, recur)
	outer := "SELECT * FROM " + cteName + " h"
	if plan.OuterFilter != nil {
		w, werr := t.translateExpr(plan.OuterFilter)
		if werr != nil {
			return "", werr
		}
		outer += " WHERE " + w
	}
	return cte + " " + outer, nil
}

// forceLevelAlias aliases the rewritten LEVEL column "level" in branch,
// matching its position in the original column list.
func forceLevelAlias(original []ast.SelectColumn, branch []ast.SelectColumn) {
	for i, c := range original {
		if _, ok := c.Expression.(*ast.Level); ok && i < len(branch) {
			branch[i].Alias = "level"
		}
	}
}

func (t *Translator) renderFrom(jr *oracleisms.OuterJoinResult) (string, *diagnostics.Diagnostics) {
	var sb strings.Builder
	sb.WriteString(t.tableRefSQL(jr.Base))
	for _, j := range jr.Joins {
		tbl := t.tableRefSQL(j.Table)
		if j.Kind == oracleisms.LeftJoin {
			onParts := make([]string, len(j.On))
			for i, c := range j.On {
				v, err := t.translateExpr(c)
				if err != nil {
					return "", err
				}
				onParts[i] = v
			}
			sb.WriteString(" LEFT JOIN " + tbl + " ON " + strings.Join(onParts, " AND "))
		} else {
			sb.WriteString(", " + tbl)
		}
	}
	return sb.String(), nil
}

func (t *Translator) tableRefSQL(tr ast.TableRef) string {
	if t.Ctx.IsCTE(tr.Name) {
		if tr.Alias != "" {
			return strings.ToLower(tr.Name) + " " + strings.ToLower(tr.Alias)
		}
		return strings.ToLower(tr.Name)
	}
	sql := t.qualify(tr.Schema, tr.Name)
	if tr.Alias != "" {
		sql += " " + strings.ToLower(tr.Alias)
	}
	return sql
}

func (t *Translator) translateColumns(cols []ast.SelectColumn) (string, *diagnostics.Diagnostics) {
	if len(cols) == 0 {
		return "*", nil
	}
	parts := make([]string, len(cols))
	for i, c := range cols {
		v, err := t.translateExpr(c.Expression)
		if err != nil {
			return "", err
		}
		if c.Alias != "" {
			v += " AS " + strings.ToLower(c.Alias)
		}
		parts[i] = v
	}
	return strings.Join(parts, ", "), nil
}

func (t *Translator) translateExprList(exprs []ast.Expression) (string, *diagnostics.Diagnostics) {
	parts := make([]string, len(exprs))
	for i, e := range exprs {
		v, err := t.translateExpr(e)
		if err != nil {
			return "", err
		}
		parts[i] = v
	}
	return strings.Join(parts, ", "), nil
}

// extractRowNumLimit implements §4.4.3: a top-level `ROWNUM <= n` or
// `ROWNUM < n` WHERE conjunct is hoisted into a LIMIT clause rather than
// rendered as a filter, since PostgreSQL has no ROWNUM pseudo-column.
// `ROWNUM <= 0` / `< 1` clamp to LIMIT 0 (spec §8 boundary case).
func extractRowNumLimit(where ast.Expression) (ast.Expression, ast.Expression) {
	conjuncts := splitTopAnd(where)
	var remaining []ast.Expression
	var limit ast.Expression
	for _, c := range conjuncts {
		if infix, ok := c.(*ast.InfixExpression); ok && limit == nil {
			if _, isRowNum := infix.Left.(*ast.RowNum); isRowNum && (infix.Operator == "<=" || infix.Operator == "<") {
				limit = rownumBoundToLimit(infix.Right, infix.Operator)
				continue
			}
		}
		remaining = append(remaining, c)
	}
	return joinTopAnd(remaining), limit
}

func rownumBoundToLimit(bound ast.Expression, op string) ast.Expression {
	if lit, ok := bound.(*ast.NumberLiteral); ok {
		n, err := strconv.Atoi(lit.Value)
		if err == nil {
			if op == "<" {
				n--
			}
			if n < 0 {
				n = 0
			}
			return &ast.NumberLiteral{Pos: lit.Pos, Value: strconv.Itoa(n)}
		}
	}
	if op == "<" {
		return &ast.InfixExpression{Left: bound, Operator: "-", Right: &ast.NumberLiteral{Value: "1"}}
	}
	return bound
}

func splitTopAnd(e ast.Expression) []ast.Expression {
	if e == nil {
		return nil
	}
	if infix, ok := e.(*ast.InfixExpression); ok && strings.EqualFold(infix.Operator, "AND") {
		return append(splitTopAnd(infix.Left), splitTopAnd(infix.Right)...)
	}
	return []ast.Expression{e}
}

func joinTopAnd(cs []ast.Expression) ast.Expression {
	if len(cs) == 0 {
		return nil
	}
	out := cs[0]
	for _, c := range cs[1:] {
		out = &ast.InfixExpression{Pos: c.Position(), Left: out, Operator: "AND", Right: c}
	}
	return out
}

// renderCTEs renders a WITH clause, auto-detecting RECURSIVE (§4.4.1) when
// any CTE's own query refers back to its own name.
func (t *Translator) renderCTEs(ctes []ast.CTEDef) (string, *diagnostics.Diagnostics) {
	for _, c := range ctes {
		t.Ctx.DeclareCTE(c.Name)
	}
	recursive := false
	for _, c := range ctes {
		if selectReferencesTable(c.Query, c.Name) {
			recursive = true
			break
		}
	}

	parts := make([]string, len(ctes))
	for i, c := range ctes {
		sel, err := t.translateSelect(c.Query)
		if err != nil {
			return "", err
		}
		cols := ""
		if len(c.Columns) > 0 {
			lc := make([]string, len(c.Columns))
			for j, cc := range c.Columns {
				lc[j] = strings.ToLower(cc)
			}
			cols = " (" + strings.Join(lc, ", ") + ")"
		}
		parts[i] = strings.ToLower(c.Name) + cols + " AS (" + sel + ")"
	}
	kw := "WITH "
	if recursive {
		kw = "WITH RECURSIVE "
	}
	return kw + strings.Join(parts, ", "), nil
}

func selectReferencesTable(sel *ast.SelectStatement, name string) bool {
	if sel == nil {
		return false
	}
	for _, tr := range sel.Tables {
		if strings.EqualFold(tr.Name, name) {
			return true
		}
	}
	if sel.SetRight != nil {
		return selectReferencesTable(sel.SetRight, name)
	}
	return false
}

func (t *Translator) translateSelectInto(n *ast.SelectIntoStatement) ([]string, *diagnostics.Diagnostics) {
	sel, err := t.translateSelect(n.Select)
	if err != nil {
		return nil, err
	}
	targets := make([]string, len(n.Targets))
	for i, tg := range n.Targets {
		v, terr := t.translateExpr(tg)
		if terr != nil {
			return nil, terr
		}
		targets[i] = v
	}
	stripped := strings.TrimPrefix(sel, "SELECT ")
	fromIdx := strings.Index(stripped, " FROM ")
	var line string
	if fromIdx == -1 {
		line = fmt.Sprintf("SELECT %s INTO %s;", stripped, strings.Join(targets, ", "))
	} else {
		line = fmt.Sprintf("SELECT %s INTO %s%s;", stripped[:fromIdx], strings.Join(targets, ", "), stripped[fromIdx:])
	}
	lines := []string{line}
	if t.Ctx.SQLAttributeNeeded() {
		lines = append(lines, oracleisms.SQLAttributeDiagnostics())
	}
	return lines, nil
}

func (t *Translator) translateInsert(n *ast.InsertStatement) ([]string, *diagnostics.Diagnostics) {
	if len(n.ReturningInto) > 0 {
		return nil, t.fail(diagnostics.UnsupportedFeature, n.Pos, "", "INSERT ... RETURNING ... INTO is not supported in this phase")
	}
	var sb strings.Builder
	sb.WriteString("INSERT INTO " + t.qualify(n.Table.Schema, n.Table.Name))
	if len(n.Columns) > 0 {
		cols := make([]string, len(n.Columns))
		for i, c := range n.Columns {
			cols[i] = strings.ToLower(c)
		}
		sb.WriteString(" (" + strings.Join(cols, ", ") + ")")
	}
	if n.Select != nil {
		sel, err := t.translateSelect(n.Select)
		if err != nil {
			return nil, err
		}
		sb.WriteString(" " + sel)
	} else {
		rows := make([]string, len(n.ValuesLists))
		for i, vl := range n.ValuesLists {
			parts := make([]string, len(vl))
			for j, v := range vl {
				p, err := t.translateExpr(v)
				if err != nil {
					return nil, err
				}
				parts[j] = p
			}
			rows[i] = "(" + strings.Join(parts, ", ") + ")"
		}
		sb.WriteString(" VALUES " + strings.Join(rows, ", "))
	}
	sb.WriteString(";")
	lines := []string{sb.String()}
	if t.Ctx.SQLAttributeNeeded() {
		lines = append(lines, oracleisms.SQLAttributeDiagnostics())
	}
	return lines, nil
}

func (t *Translator) translateUpdate(n *ast.UpdateStatement) ([]string, *diagnostics.Diagnostics) {
	if len(n.ReturningInto) > 0 {
		return nil, t.fail(diagnostics.UnsupportedFeature, n.Pos, "", "UPDATE ... RETURNING ... INTO is not supported in this phase")
	}
	sets := make([]string, len(n.Assignments))
	for i, a := range n.Assignments {
		v, err := t.translateExpr(a.Value)
		if err != nil {
			return nil, err
		}
		sets[i] = strings.ToLower(a.Column) + " = " + v
	}
	var sb strings.Builder
	sb.WriteString("UPDATE " + t.qualify(n.Table.Schema, n.Table.Name) + " SET " + strings.Join(sets, ", "))
	if n.Where != nil {
		w, err := t.translateExpr(n.Where)
		if err != nil {
			return nil, err
		}
		sb.WriteString(" WHERE " + w)
	}
	sb.WriteString(";")
	lines := []string{sb.String()}
	if t.Ctx.SQLAttributeNeeded() {
		lines = append(lines, oracleisms.SQLAttributeDiagnostics())
	}
	return lines, nil
}

func (t *Translator) translateDelete(n *ast.DeleteStatement) ([]string, *diagnostics.Diagnostics) {
	if len(n.ReturningInto) > 0 {
		return nil, t.fail(diagnostics.UnsupportedFeature, n.Pos, "", "DELETE ... RETURNING ... INTO is not supported in this phase")
	}
	var sb strings.Builder
	sb.WriteString("DELETE FROM " + t.qualify(n.Table.Schema, n.Table.Name))
	if n.Where != nil {
		w, err := t.translateExpr(n.Where)
		if err != nil {
			return nil, err
		}
		sb.WriteString(" WHERE " + w)
	}
	sb.WriteString(";")
	lines := []string{sb.String()}
	if t.Ctx.SQLAttributeNeeded() {
		lines = append(lines, oracleisms.SQLAttributeDiagnostics())
	}
	return lines, nil
}

func (t *Translator) translateWithStatement(n *ast.WithStatement) ([]string, *diagnostics.Diagnostics) {
	cte, err := t.renderCTEs(n.CTEs)
	if err != nil {
		return nil, err
	}
	switch body := n.Body.(type) {
	case *ast.SelectStatement:
		sel, serr := t.translateSelect(body)
		if serr != nil {
			return nil, serr
		}
		return []string{cte + " " + sel + ";"}, nil
	case *ast.InsertStatement:
		lines, ierr := t.translateInsert(body)
		if ierr != nil {
			return nil, ierr
		}
		return prependCTE(cte, lines), nil
	case *ast.UpdateStatement:
		lines, uerr := t.translateUpdate(body)
		if uerr != nil {
			return nil, uerr
		}
		return prependCTE(cte, lines), nil
	case *ast.DeleteStatement:
		lines, derr := t.translateDelete(body)
		if derr != nil {
			return nil, derr
		}
		return prependCTE(cte, lines), nil
	}
	return nil, t.fail(diagnostics.UnsupportedFeature, n.Pos, "", "unsupported WITH body type %T", n.Body)
}

func prependCTE(cte string, lines []string) []string {
	if len(lines) == 0 {
		return lines
	}
	out := append([]string{}, lines...)
	out[0] = cte + " " + out[0]
	return out
}
