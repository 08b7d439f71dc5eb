// Package dialect holds PostgreSQL-target rendering facts: identifier
// quoting, boolean/limit literal shape, and Oracle-type -> PostgreSQL-type
// mapping. Adapted from the reference project's multi-backend SQLDialect,
// trimmed to the single PostgreSQL target this transpiler emits (source-side
// Oracle type classification lives alongside it, since both concerns are
// "how do I render this type fact").
package dialect

import (
	"fmt"
	"strings"
)

// Postgres holds the handful of PostgreSQL-target rendering facts the
// translator needs; unlike the reference project's per-backend dialect
// interface, there is exactly one target here, so this is a plain struct
// rather than an interface with one implementation.
type Postgres struct{}

func (Postgres) QuoteIdentifier(name string) string { return `"` + name + `"` }

func (Postgres) BooleanLiteral(b bool) string {
	if b {
		return "TRUE"
	}
	return "FALSE"
}

func (Postgres) LimitClause(n int) string { return fmt.Sprintf("LIMIT %d", n) }

// MapType renders an Oracle DataType (already parsed into name/precision/
// scale/length) as PostgreSQL source text. This is the target-side half of
// C6/C5's type handling: given an Oracle type name, what PostgreSQL type
// does a declaration or cast use.
func (Postgres) MapType(oracleName string, precision, scale, length int, hasLength bool) string {
	switch strings.ToUpper(oracleName) {
	case "NUMBER":
		switch {
		case precision == 0 && scale == 0 && !hasLength:
			return "NUMERIC"
		case scale > 0:
			return fmt.Sprintf("NUMERIC(%d,%d)", precision, scale)
		default:
			return fmt.Sprintf("NUMERIC(%d)", precision)
		}
	case "VARCHAR2", "NVARCHAR2":
		if hasLength {
			return fmt.Sprintf("VARCHAR(%d)", length)
		}
		return "VARCHAR"
	case "CHAR":
		if hasLength {
			return fmt.Sprintf("CHAR(%d)", length)
		}
		return "CHAR"
	case "DATE":
		return "TIMESTAMP"
	case "TIMESTAMP":
		return "TIMESTAMP"
	case "CLOB":
		return "TEXT"
	case "BLOB":
		return "BYTEA"
	case "PLS_INTEGER", "BINARY_INTEGER", "SIMPLE_INTEGER":
		return "INTEGER"
	case "BOOLEAN":
		return "BOOLEAN"
	case "SYS_REFCURSOR":
		return "REFCURSOR"
	default:
		return strings.ToLower(oracleName)
	}
}

// TypeDefault returns the PostgreSQL zero-value literal for a mapped type,
// used by the package-variable getter fallback on current_setting failure
// (spec §4.5.4: "on exception returns the type-default").
func (Postgres) TypeDefault(pgType string) string {
	upper := strings.ToUpper(pgType)
	switch {
	case strings.HasPrefix(upper, "NUMERIC"), upper == "INTEGER", upper == "BIGINT":
		return "0"
	case upper == "BOOLEAN":
		return "FALSE"
	case upper == "TIMESTAMP":
		return "CURRENT_TIMESTAMP"
	default:
		return "''"
	}
}

// IsDateLike applies the column-name heuristic from spec §4.5.6 used only
// when the type evaluator returns UNKNOWN.
func IsDateLike(identifier string) bool {
	lower := strings.ToLower(identifier)
	for _, frag := range []string{"date", "time", "hire", "created"} {
		if strings.Contains(lower, frag) {
			return true
		}
	}
	return false
}
