// Package oracleisms implements the Oracle-ism sub-transformers (C5):
// CONNECT BY lowering, (+) outer-join rewriting, cursor-attribute tracking,
// package-variable session-state rewriting, inline-type-as-jsonb encoding,
// and Oracle date-function translation (spec §4.5).
package oracleisms

import "github.com/orapgcore/oracore/ast"

// WalkExpr visits e and every expression nested inside it, depth-first.
// Shared by the cursor-attribute pre-scan and by any other pass that needs
// to find every expression reachable from a subtree without descending into
// statements (statement recursion is WalkStatements' job).
func WalkExpr(e ast.Expression, visit func(ast.Expression)) {
	if e == nil {
		return
	}
	visit(e)
	switch n := e.(type) {
	case *ast.PrefixExpression:
		WalkExpr(n.Right, visit)
	case *ast.InfixExpression:
		WalkExpr(n.Left, visit)
		WalkExpr(n.Right, visit)
	case *ast.BetweenExpression:
		WalkExpr(n.Expr, visit)
		WalkExpr(n.Low, visit)
		WalkExpr(n.High, visit)
	case *ast.InExpression:
		WalkExpr(n.Expr, visit)
		for _, v := range n.List {
			WalkExpr(v, visit)
		}
		if n.Subquery != nil {
			visit(n.Subquery)
			if n.Subquery.Subquery != nil {
				WalkExpr(n.Subquery.Subquery, visit)
			}
		}
	case *ast.IsNullExpression:
		WalkExpr(n.Expr, visit)
	case *ast.FunctionCall:
		for _, a := range n.Arguments {
			WalkExpr(a, visit)
		}
	case *ast.IndexExpression:
		WalkExpr(n.Left, visit)
		WalkExpr(n.Index, visit)
	case *ast.FieldAccess:
		WalkExpr(n.Expr, visit)
	case *ast.CaseExpression:
		WalkExpr(n.Subject, visit)
		for _, w := range n.Whens {
			WalkExpr(w.Condition, visit)
			WalkExpr(w.Result, visit)
		}
		WalkExpr(n.Else, visit)
	case *ast.CastExpression:
		WalkExpr(n.Expression, visit)
	case *ast.SubqueryExpression:
		if n.Subquery != nil {
			WalkExpr(n.Subquery, visit)
		}
	case *ast.ExistsExpression:
		if n.Subquery != nil {
			WalkExpr(n.Subquery, visit)
		}
	case *ast.ConstructorCall:
		for _, a := range n.Arguments {
			WalkExpr(a, visit)
		}
	case *ast.OuterJoinSuffix:
		WalkExpr(n.Inner, visit)
	case *ast.SelectStatement:
		for _, c := range n.Columns {
			WalkExpr(c.Expression, visit)
		}
		WalkExpr(n.Where, visit)
		WalkExpr(n.StartWith, visit)
		WalkExpr(n.ConnectBy, visit)
		for _, g := range n.GroupBy {
			WalkExpr(g, visit)
		}
		WalkExpr(n.Having, visit)
		for _, o := range n.OrderBy {
			WalkExpr(o.Expression, visit)
		}
		WalkExpr(n.RowNumLimit, visit)
		if n.SetRight != nil {
			WalkExpr(n.SetRight, visit)
		}
		for _, cte := range n.WithCTEs {
			if cte.Query != nil {
				WalkExpr(cte.Query, visit)
			}
		}
	}
}

// WalkStatements visits every expression reachable from stmts, recursing
// into nested blocks/bodies, and calls onStmt (if non-nil) for every
// statement node in traversal order — the hook cursor-attribute tracking
// uses to react to OPEN/FETCH/CLOSE.
func WalkStatements(stmts []ast.Statement, visitExpr func(ast.Expression), onStmt func(ast.Statement)) {
	for _, s := range stmts {
		if onStmt != nil {
			onStmt(s)
		}
		walkOneStatement(s, visitExpr, onStmt)
	}
}

func walkOneStatement(s ast.Statement, visitExpr func(ast.Expression), onStmt func(ast.Statement)) {
	switch n := s.(type) {
	case *ast.Block:
		WalkStatements(n.Declarations, visitExpr, onStmt)
		WalkStatements(n.Statements, visitExpr, onStmt)
		for _, h := range n.Handlers {
			WalkStatements(h.Statements, visitExpr, onStmt)
		}
	case *ast.VariableDecl:
		WalkExpr(n.Default, visitExpr)
	case *ast.CursorDecl:
		if n.Select != nil {
			WalkExpr(n.Select, visitExpr)
		}
	case *ast.PragmaStatement:
		for _, a := range n.Arguments {
			WalkExpr(a, visitExpr)
		}
	case *ast.AssignmentStatement:
		WalkExpr(n.Target, visitExpr)
		WalkExpr(n.Value, visitExpr)
	case *ast.IfStatement:
		WalkExpr(n.Condition, visitExpr)
		WalkStatements(n.Then, visitExpr, onStmt)
		for _, c := range n.ElsifConds {
			WalkExpr(c, visitExpr)
		}
		for _, b := range n.ElsifBodies {
			WalkStatements(b, visitExpr, onStmt)
		}
		WalkStatements(n.Else, visitExpr, onStmt)
	case *ast.CaseStatement:
		WalkExpr(n.Subject, visitExpr)
		for _, w := range n.Whens {
			WalkExpr(w.Condition, visitExpr)
			WalkStatements(w.Body, visitExpr, onStmt)
		}
		WalkStatements(n.Else, visitExpr, onStmt)
	case *ast.LoopStatement:
		WalkStatements(n.Body, visitExpr, onStmt)
	case *ast.WhileStatement:
		WalkExpr(n.Condition, visitExpr)
		WalkStatements(n.Body, visitExpr, onStmt)
	case *ast.NumericForStatement:
		WalkExpr(n.Low, visitExpr)
		WalkExpr(n.High, visitExpr)
		WalkStatements(n.Body, visitExpr, onStmt)
	case *ast.CursorForStatement:
		if n.Select != nil {
			WalkExpr(n.Select, visitExpr)
		}
		WalkStatements(n.Body, visitExpr, onStmt)
	case *ast.ExitStatement:
		WalkExpr(n.When, visitExpr)
	case *ast.ContinueStatement:
		WalkExpr(n.When, visitExpr)
	case *ast.ReturnStatement:
		WalkExpr(n.Value, visitExpr)
	case *ast.RaiseStatement:
		WalkExpr(n.Code, visitExpr)
		WalkExpr(n.Message, visitExpr)
	case *ast.FetchStatement:
		for _, t := range n.Targets {
			WalkExpr(t, visitExpr)
		}
	case *ast.SelectIntoStatement:
		if n.Select != nil {
			WalkExpr(n.Select, visitExpr)
		}
		for _, t := range n.Targets {
			WalkExpr(t, visitExpr)
		}
	case *ast.SelectStatement:
		WalkExpr(n, visitExpr)
	case *ast.InsertStatement:
		for _, vl := range n.ValuesLists {
			for _, v := range vl {
				WalkExpr(v, visitExpr)
			}
		}
		if n.Select != nil {
			WalkExpr(n.Select, visitExpr)
		}
		for _, r := range n.ReturningInto {
			WalkExpr(r, visitExpr)
		}
	case *ast.UpdateStatement:
		for _, a := range n.Assignments {
			WalkExpr(a.Value, visitExpr)
		}
		WalkExpr(n.Where, visitExpr)
		for _, r := range n.ReturningInto {
			WalkExpr(r, visitExpr)
		}
	case *ast.DeleteStatement:
		WalkExpr(n.Where, visitExpr)
		for _, r := range n.ReturningInto {
			WalkExpr(r, visitExpr)
		}
	case *ast.WithStatement:
		for _, cte := range n.CTEs {
			if cte.Query != nil {
				WalkExpr(cte.Query, visitExpr)
			}
		}
		if n.Body != nil {
			WalkStatements([]ast.Statement{n.Body}, visitExpr, onStmt)
		}
	}
}
