package oracleisms

import (
	"strings"

	"github.com/orapgcore/oracore/ast"
	"github.com/orapgcore/oracore/xformctx"
)

// PreScanCursorAttrs implements the pre-scan half of §4.5.3: it walks stmts
// before statement translation begins, recording which explicit cursors have
// their %FOUND/%NOTFOUND/%ROWCOUNT/%ISOPEN attributes read, and whether the
// implicit SQL%... cursor is referenced at all.
func PreScanCursorAttrs(stmts []ast.Statement, ctx *xformctx.Context) {
	visit := func(e ast.Expression) {
		attr, ok := e.(*ast.CursorAttrExpression)
		if !ok {
			return
		}
		if strings.EqualFold(attr.CursorName, "SQL") {
			ctx.SetSQLAttributeNeeded(true)
			return
		}
		ctx.MarkCursorAttrNeeded(attr.CursorName)
	}
	WalkStatements(stmts, visit, nil)
}

// TrackingDeclarations renders the three local declarations §4.5.3 requires
// for an explicit cursor whose attributes are read somewhere in the body.
func TrackingDeclarations(cursorName string) []string {
	n := strings.ToLower(cursorName)
	return []string{
		n + "__found boolean;",
		n + "__rowcount integer := 0;",
		n + "__isopen boolean := false;",
	}
}

// OnOpen/OnFetch/OnClose render the bookkeeping statements emitted right
// after the corresponding OPEN/FETCH/CLOSE statement, when that cursor's
// attributes are read anywhere in the body.
func OnOpen(cursorName string) string {
	return strings.ToLower(cursorName) + "__isopen := true;"
}

func OnFetch(cursorName string) []string {
	n := strings.ToLower(cursorName)
	return []string{
		n + "__found := FOUND;",
		"IF " + n + "__found THEN " + n + "__rowcount := " + n + "__rowcount + 1; END IF;",
	}
}

func OnClose(cursorName string) string {
	return strings.ToLower(cursorName) + "__isopen := false;"
}

// SQLAttributeDiagnostics renders the `GET DIAGNOSTICS` line emitted after
// each DML/SELECT INTO when the implicit SQL%... cursor is referenced.
func SQLAttributeDiagnostics() string {
	return "GET DIAGNOSTICS sql__rowcount = ROW_COUNT;"
}

// RenderAttr renders a cursor-attribute read as PL/pgSQL text, per the
// mapping table in §4.5.3.
func RenderAttr(cursorName, attr string) string {
	if strings.EqualFold(cursorName, "SQL") {
		switch strings.ToUpper(attr) {
		case "FOUND":
			return "(sql__rowcount > 0)"
		case "NOTFOUND":
			return "(sql__rowcount = 0)"
		case "ROWCOUNT":
			return "sql__rowcount"
		case "ISOPEN":
			return "false"
		}
	}
	n := strings.ToLower(cursorName)
	switch strings.ToUpper(attr) {
	case "FOUND":
		return n + "__found"
	case "NOTFOUND":
		return "(NOT " + n + "__found)"
	case "ROWCOUNT":
		return n + "__rowcount"
	case "ISOPEN":
		return n + "__isopen"
	}
	return n + "__" + strings.ToLower(attr)
}
