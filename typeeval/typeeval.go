// Package typeeval implements the two-pass Oracle-type evaluator (C6):
// an analysis pass that fills a token-position-keyed cache, and queries from
// C4/C5 against that cache for the remainder of one translation. The cache
// is cleared at the end of every translation (spec §4.6, §9).
package typeeval

import (
	"strings"

	"github.com/orapgcore/oracore/ast"
	"github.com/orapgcore/oracore/catalog"
)

// Unknown is returned by Query when no type could be inferred.
const Unknown = "UNKNOWN"

type posKey struct {
	line, col int
}

// Evaluator holds the analysis-pass results for one translation. Construct
// one per translation; discard (let it be garbage collected) at the end —
// there is no explicit Close, matching the "cleared at end of translation"
// requirement via simply not retaining the value.
type Evaluator struct {
	cat           *catalog.Catalog
	currentSchema string
	types         map[posKey]string
}

// New constructs an Evaluator bound to the catalog and schema for one
// translation.
func New(cat *catalog.Catalog, currentSchema string) *Evaluator {
	return &Evaluator{cat: cat, currentSchema: currentSchema, types: make(map[posKey]string)}
}

// Analyze walks expr (and its children) recording the inferred Oracle type
// of every sub-expression it can determine, keyed by source position.
func (e *Evaluator) Analyze(expr ast.Expression) string {
	if expr == nil {
		return Unknown
	}
	t := e.infer(expr)
	e.types[posKey{expr.Position().Line, expr.Position().Column}] = t
	return t
}

// TypeAt returns the cached inferred type for node, or Unknown.
func (e *Evaluator) TypeAt(node ast.Node) string {
	if node == nil {
		return Unknown
	}
	if t, ok := e.types[posKey{node.Position().Line, node.Position().Column}]; ok {
		return t
	}
	return Unknown
}

func (e *Evaluator) infer(expr ast.Expression) string {
	switch n := expr.(type) {
	case *ast.NumberLiteral:
		if strings.Contains(n.Value, ".") {
			return "NUMBER"
		}
		return "NUMBER"
	case *ast.StringLiteral:
		return "VARCHAR2"
	case *ast.NullLiteral:
		return Unknown
	case *ast.BoolLiteral:
		return "BOOLEAN"
	case *ast.RowNum, *ast.Level:
		return "NUMBER"
	case *ast.PrefixExpression:
		return e.infer(n.Right)
	case *ast.InfixExpression:
		return e.inferInfix(n)
	case *ast.CastExpression:
		return n.Type.Name
	case *ast.Identifier:
		return e.inferIdentifier(n)
	case *ast.FunctionCall:
		return e.inferCall(n)
	case *ast.CaseExpression:
		for _, w := range n.Whens {
			if t := e.infer(w.Result); t != Unknown {
				return t
			}
		}
		if n.Else != nil {
			return e.infer(n.Else)
		}
		return Unknown
	case *ast.FieldAccess:
		return Unknown // requires record field typing, resolved by xformctx at call sites
	case *ast.SequenceExpression:
		return "NUMBER"
	default:
		return Unknown
	}
}

func (e *Evaluator) inferInfix(n *ast.InfixExpression) string {
	switch n.Operator {
	case "+", "-", "*", "/":
		lt, rt := e.infer(n.Left), e.infer(n.Right)
		if lt == "DATE" || rt == "DATE" {
			return "DATE"
		}
		return "NUMBER"
	case "||":
		return "VARCHAR2"
	case "=", "<>", "<", ">", "<=", ">=", "AND", "OR", "LIKE":
		return "BOOLEAN"
	default:
		return Unknown
	}
}

func (e *Evaluator) inferIdentifier(id *ast.Identifier) string {
	if len(id.Parts) == 1 {
		return Unknown // a bare name may be a column or local; xformctx resolves which
	}
	// schema.table.column or table.column: consult the catalog.
	n := len(id.Parts)
	col := id.Parts[n-1]
	table := id.Parts[n-2]
	schema := e.currentSchema
	if n >= 3 {
		schema = id.Parts[n-3]
	}
	if t, ok := e.cat.ColumnType(schema, table, col); ok {
		return t
	}
	return Unknown
}

func (e *Evaluator) inferCall(fc *ast.FunctionCall) string {
	switch strings.ToUpper(fc.Name.Last()) {
	case "SYSDATE", "ADD_MONTHS", "LAST_DAY", "TO_DATE", "TRUNC":
		return "DATE"
	case "TO_CHAR", "SUBSTR", "UPPER", "LOWER", "TRIM", "LPAD", "RPAD", "DECODE":
		return "VARCHAR2"
	case "NVL", "NVL2", "COALESCE":
		if len(fc.Arguments) > 1 {
			if t := e.infer(fc.Arguments[1]); t != Unknown {
				return t
			}
		}
		return Unknown
	case "COUNT", "INSTR", "LENGTH", "ROUND", "MOD", "MONTHS_BETWEEN":
		return "NUMBER"
	default:
		return Unknown
	}
}

// IsDateExpr reports whether expr was inferred as an Oracle DATE, used by
// the TRUNC/ROUND disambiguator (§4.5.6, §9 Open Question 2) before it falls
// back to the column-name heuristic.
func (e *Evaluator) IsDateExpr(expr ast.Expression) bool {
	return e.infer(expr) == "DATE"
}
