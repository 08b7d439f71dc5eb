package oracleisms

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/orapgcore/oracore/xformctx"
)

// DeclarationInit renders the jsonb initializer for a RECORD/TABLE_OF/
// VARRAY/INDEX_BY/%ROWTYPE variable declaration, per §4.5.5.
func DeclarationInit(def xformctx.InlineTypeDefinition) string {
	switch def.Category {
	case "TABLE_OF", "VARRAY", "INDEX_BY":
		return "'[]'::jsonb"
	default: // RECORD, ROWTYPE
		return "'{}'::jsonb"
	}
}

// ConstructorLiteral renders `T(a,b,c)` as a jsonb array literal, quoting
// string-shaped arguments; args are already-translated PostgreSQL text with
// a flag for whether the source argument was a string literal.
func ConstructorLiteral(args []string, isString []bool) string {
	var sb strings.Builder
	sb.WriteString("jsonb_build_array(")
	for i, a := range args {
		if i > 0 {
			sb.WriteString(", ")
		}
		if isString[i] {
			sb.WriteString("to_jsonb(" + a + "::text)")
		} else {
			sb.WriteString("to_jsonb(" + a + ")")
		}
	}
	sb.WriteString(")")
	return sb.String()
}

// FieldWrite renders `v.f := e` as a jsonb_set reassignment. path is the
// dotted field chain (e.g. ["f"] or ["f","g"] for a nested write).
func FieldWrite(varName string, path []string, rhsExpr string, isString bool) string {
	value := "to_jsonb(" + rhsExpr + ")"
	if isString {
		value = "to_jsonb(" + rhsExpr + "::text)"
	}
	createMissing := ""
	if len(path) > 1 {
		createMissing = ", true"
	}
	return fmt.Sprintf("%s := jsonb_set(%s, '{%s}', %s%s);", varName, varName, strings.Join(path, ","), value, createMissing)
}

// FieldRead renders `v.f` on the RHS. pgType is the field's mapped
// PostgreSQL scalar type, or "" when f is itself a nested object/array (in
// which case the raw jsonb sub-object is returned, per §4.5.5).
func FieldRead(varName, field, pgType string) string {
	if pgType == "" {
		return fmt.Sprintf("%s->'%s'", varName, field)
	}
	return fmt.Sprintf("(%s->>'%s')::%s", varName, field, pgType)
}

// ArrayElementRead renders `a(i)`, converting Oracle's 1-based index to
// jsonb's 0-based array offset. When indexExpr is a literal integer, the
// offset is folded at translation time.
func ArrayElementRead(varName, indexExpr string) string {
	if n, err := strconv.Atoi(indexExpr); err == nil {
		return fmt.Sprintf("(%s->%d)", varName, n-1)
	}
	return fmt.Sprintf("(%s->((%s)-1))", varName, indexExpr)
}

// ArrayElementWrite renders `a(i) := e`.
func ArrayElementWrite(varName, indexExpr, rhsExpr string, isString bool) string {
	value := "to_jsonb(" + rhsExpr + ")"
	if isString {
		value = "to_jsonb(" + rhsExpr + "::text)"
	}
	var offset string
	if n, err := strconv.Atoi(indexExpr); err == nil {
		offset = strconv.Itoa(n - 1)
	} else {
		offset = fmt.Sprintf("(%s)-1", indexExpr)
	}
	return fmt.Sprintf("%s := jsonb_set(%s, ('{' || (%s)::text || '}')::text[], %s);", varName, varName, offset, value)
}

// MapRead renders `m('k')`.
func MapRead(varName, keyLiteral string) string {
	return fmt.Sprintf("(%s->>%s)", varName, keyLiteral)
}

// MapWrite renders `m('k') := e`.
func MapWrite(varName, keyExpr, rhsExpr string, isString bool) string {
	value := "to_jsonb(" + rhsExpr + ")"
	if isString {
		value = "to_jsonb(" + rhsExpr + "::text)"
	}
	return fmt.Sprintf("%s := jsonb_set(%s, ('{' || %s || '}')::text[], %s);", varName, varName, keyExpr, value)
}

// WrapStringLiteral wraps a string literal assigned into a jsonb-typed
// target, avoiding PostgreSQL's polymorphic to_jsonb inference error on a
// bare untyped string constant (§4.5.5).
func WrapStringLiteral(quoted string) string {
	return "to_jsonb(" + quoted + "::text)"
}
