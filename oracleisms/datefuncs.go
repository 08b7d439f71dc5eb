package oracleisms

import (
	"fmt"
	"strings"

	"github.com/orapgcore/oracore/ast"
	"github.com/orapgcore/oracore/dialect"
	"github.com/orapgcore/oracore/typeeval"
)

// AddMonths renders ADD_MONTHS(d,n).
func AddMonths(d, n string) string {
	return fmt.Sprintf("(%s + (%s || ' months')::interval)", d, n)
}

// MonthsBetween renders MONTHS_BETWEEN(a,b) via AGE's year/month extraction.
func MonthsBetween(a, b string) string {
	return fmt.Sprintf("(EXTRACT(YEAR FROM AGE(%s, %s)) * 12 + EXTRACT(MONTH FROM AGE(%s, %s)))", a, b, a, b)
}

// LastDay renders LAST_DAY(d).
func LastDay(d string) string {
	return fmt.Sprintf("(DATE_TRUNC('month', %s) + INTERVAL '1 month' - INTERVAL '1 day')", d)
}

// IsDateTruncOrRound decides whether a TRUNC/ROUND call operates on a date
// (vs. a number), per §4.5.6's three-tier disambiguation: explicit format
// string, then the type evaluator, then the identifier-name heuristic.
// Ambiguous cases default to numeric, matching the reference behavior.
func IsDateTruncOrRound(args []ast.Expression, ev *typeeval.Evaluator) bool {
	if len(args) >= 2 {
		if _, ok := args[1].(*ast.StringLiteral); ok {
			return true // an explicit date format mask was supplied
		}
	}
	if len(args) >= 1 {
		if ev != nil {
			if t := ev.Analyze(args[0]); t == "DATE" {
				return true
			} else if t != typeeval.Unknown {
				return false // the evaluator inferred a non-date type
			}
		}
		if id, ok := args[0].(*ast.Identifier); ok && dialect.IsDateLike(id.Last()) {
			return true
		}
	}
	return false
}

// DateTrunc renders Oracle's date-flavored TRUNC(d[,fmt]).
func DateTrunc(d, fmt_ string) string {
	unit := oracleDateFormatToTruncUnit(fmt_)
	return fmt.Sprintf("DATE_TRUNC('%s', %s)", unit, d)
}

// DateRound renders Oracle's date-flavored ROUND(d[,fmt]); PostgreSQL has no
// date ROUND primitive, so this composes DATE_TRUNC with a half-unit offset.
func DateRound(d, fmt_ string) string {
	unit := oracleDateFormatToTruncUnit(fmt_)
	return fmt.Sprintf("DATE_TRUNC('%s', %s + INTERVAL '1 %s' / 2)", unit, d, unit)
}

func oracleDateFormatToTruncUnit(fmt_ string) string {
	switch strings.ToUpper(strings.Trim(fmt_, "'\"")) {
	case "YYYY", "YEAR", "RRRR", "RR":
		return "year"
	case "MM", "MONTH", "MON":
		return "month"
	case "DD", "DDD", "D", "DAY":
		return "day"
	case "HH", "HH24":
		return "hour"
	case "MI":
		return "minute"
	default:
		return "day"
	}
}
