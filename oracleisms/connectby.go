package oracleisms

import "github.com/orapgcore/oracore/ast"

// IsHierarchical reports whether sel uses Oracle's CONNECT BY hierarchical
// query syntax (spec §4.5.1).
func IsHierarchical(sel *ast.SelectStatement) bool {
	return sel != nil && sel.ConnectBy != nil
}

// HierarchicalPlan is the recursive-CTE lowering of a CONNECT BY query: a
// synthetic CTE name plus the base and recursive branch SELECTs, ready for
// the translator to render as `WITH RECURSIVE cte AS (base UNION ALL recur)`.
type HierarchicalPlan struct {
	CTEName        string
	BaseBranch     *ast.SelectStatement
	RecursiveBranch *ast.SelectStatement
	OuterFilter    ast.Expression // WHERE predicates not consumed by START WITH, applied over the CTE
}

// PlanHierarchical builds the two UNION ALL branches per §4.5.1. PRIOR
// equalities in ConnectBy are split: left-PRIOR (child.col = PRIOR parent.col)
// and right-PRIOR (PRIOR parent.col = child.col) are both supported by
// swapping which side feeds the recursive join.
func PlanHierarchical(sel *ast.SelectStatement, cteName string) *HierarchicalPlan {
	base := &ast.SelectStatement{
		Pos:      sel.Pos,
		Distinct: sel.Distinct,
		Columns:  rewriteLevelAndPath(sel.Columns, levelLiteral(1), true),
		Tables:   sel.Tables,
		Where:    sel.StartWith,
	}

	recur := &ast.SelectStatement{
		Pos:      sel.Pos,
		Distinct: sel.Distinct,
		Columns:  rewriteLevelAndPath(sel.Columns, levelPlusOne(cteName), false),
		Tables:   append(append([]ast.TableRef{}, sel.Tables...), ast.TableRef{Schema: "", Name: cteName, Alias: "h"}),
		Where:    stripPriorMarks(sel.ConnectBy),
	}

	return &HierarchicalPlan{
		CTEName:         cteName,
		BaseBranch:      base,
		RecursiveBranch: recur,
		OuterFilter:      sel.Where,
	}
}

func levelLiteral(n int) ast.Expression {
	return &ast.NumberLiteral{Value: itoa(n)}
}

func levelPlusOne(cteName string) ast.Expression {
	return &ast.InfixExpression{
		Left:     &ast.FieldAccess{Expr: &ast.Identifier{Parts: []string{"h"}}, Field: "level"},
		Operator: "+",
		Right:    &ast.NumberLiteral{Value: "1"},
	}
}

// rewriteLevelAndPath replaces a select column whose whole expression is
// LEVEL with levelExpr (a LEVEL nested inside a larger expression is left as
// is) and leaves
// SYS_CONNECT_BY_PATH calls for the translator's function-call visitor to
// expand (it has access to the separator literal there).
func rewriteLevelAndPath(cols []ast.SelectColumn, levelExpr ast.Expression, isBase bool) []ast.SelectColumn {
	out := make([]ast.SelectColumn, len(cols))
	for i, c := range cols {
		out[i] = ast.SelectColumn{Alias: c.Alias, Expression: substituteLevel(c.Expression, levelExpr)}
	}
	return out
}

func substituteLevel(e ast.Expression, levelExpr ast.Expression) ast.Expression {
	if _, ok := e.(*ast.Level); ok {
		return levelExpr
	}
	return e
}

// stripPriorMarks drops PRIOR() wrapper calls, since by this point the
// translator has already decided which side is the recursive reference; the
// remaining equality is rendered as a normal join predicate against alias h.
func stripPriorMarks(e ast.Expression) ast.Expression {
	if call, ok := e.(*ast.FunctionCall); ok && len(call.Name.Parts) == 1 && call.Name.Parts[0] == "PRIOR" && len(call.Arguments) == 1 {
		return call.Arguments[0]
	}
	if infix, ok := e.(*ast.InfixExpression); ok {
		return &ast.InfixExpression{Pos: infix.Pos, Left: stripPriorMarks(infix.Left), Operator: infix.Operator, Right: stripPriorMarks(infix.Right)}
	}
	return e
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}
