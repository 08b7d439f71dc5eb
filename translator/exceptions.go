package translator

import "strings"

// exceptionNames maps Oracle's built-in named exceptions to PL/pgSQL
// condition names, per spec §4.4 ("a fixed table of ~20 PL/pgSQL condition
// names"). Names absent here are treated as user-defined: either a
// PRAGMA EXCEPTION_INIT-declared SQLSTATE, or re-raised by its own name
// uppercased (PL/pgSQL accepts arbitrary condition names for RAISE/WHEN).
var exceptionNames = map[string]string{
	"NO_DATA_FOUND":          "NO_DATA_FOUND",
	"TOO_MANY_ROWS":          "TOO_MANY_ROWS",
	"DUP_VAL_ON_INDEX":       "UNIQUE_VIOLATION",
	"INVALID_CURSOR":         "INVALID_CURSOR_STATE",
	"INVALID_NUMBER":         "INVALID_TEXT_REPRESENTATION",
	"ZERO_DIVIDE":            "DIVISION_BY_ZERO",
	"VALUE_ERROR":            "DATA_EXCEPTION",
	"LOGIN_DENIED":           "INVALID_PASSWORD",
	"NOT_LOGGED_ON":          "INVALID_AUTHORIZATION_SPECIFICATION",
	"STORAGE_ERROR":          "OUT_OF_MEMORY",
	"PROGRAM_ERROR":          "INTERNAL_ERROR",
	"TIMEOUT_ON_RESOURCE":    "LOCK_NOT_AVAILABLE",
	"ACCESS_INTO_NULL":       "NULL_VALUE_NOT_ALLOWED",
	"COLLECTION_IS_NULL":     "NULL_VALUE_NOT_ALLOWED",
	"SUBSCRIPT_BEYOND_COUNT": "ARRAY_SUBSCRIPT_ERROR",
	"SUBSCRIPT_OUTSIDE_LIMIT": "ARRAY_SUBSCRIPT_ERROR",
	"CASE_NOT_FOUND":         "CASE_NOT_FOUND",
	"CURSOR_ALREADY_OPEN":    "INVALID_CURSOR_STATE",
	"ROWTYPE_MISMATCH":       "DATATYPE_MISMATCH",
	"SELF_IS_NULL":           "NULL_VALUE_NOT_ALLOWED",
	"OTHERS":                 "OTHERS",
}

// MapExceptionName translates one exception name appearing in a WHEN clause
// or a bare RAISE. Unknown names pass through uppercased, covering
// user-defined exceptions the package-level PRAGMA EXCEPTION_INIT table
// already resolved to application-defined condition names.
func MapExceptionName(name string) string {
	if mapped, ok := exceptionNames[strings.ToUpper(name)]; ok {
		return mapped
	}
	return strings.ToUpper(name)
}
