package translator

import (
	"fmt"
	"strings"

	"github.com/orapgcore/oracore/ast"
	"github.com/orapgcore/oracore/diagnostics"
	"github.com/orapgcore/oracore/oracleisms"
	"github.com/orapgcore/oracore/typeeval"
)

// translateExpr renders one expression tree as PostgreSQL text (spec §4.4's
// expression-level rule table).
func (t *Translator) translateExpr(e ast.Expression) (string, *diagnostics.Diagnostics) {
	if e == nil {
		return "", nil
	}
	t.Eval.Analyze(e)

	switch n := e.(type) {
	case *ast.NumberLiteral:
		return n.Value, nil
	case *ast.StringLiteral:
		return "'" + strings.ReplaceAll(n.Value, "'", "''") + "'", nil
	case *ast.NullLiteral:
		return "NULL", nil
	case *ast.BoolLiteral:
		return t.Dialect.BooleanLiteral(n.Value), nil
	case *ast.RowNum:
		return "row_number() OVER ()", nil
	case *ast.Level:
		return "h.level", nil
	case *ast.BindVar:
		return t.translateBindVar(n)
	case *ast.Identifier:
		return t.translateIdentifier(n)
	case *ast.PrefixExpression:
		right, err := t.translateExpr(n.Right)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("(%s %s)", n.Operator, right), nil
	case *ast.InfixExpression:
		return t.translateInfix(n)
	case *ast.BetweenExpression:
		return t.translateBetween(n)
	case *ast.InExpression:
		return t.translateIn(n)
	case *ast.IsNullExpression:
		expr, err := t.translateExpr(n.Expr)
		if err != nil {
			return "", err
		}
		if n.Not {
			return expr + " IS NOT NULL", nil
		}
		return expr + " IS NULL", nil
	case *ast.FunctionCall:
		return t.translateCall(n)
	case *ast.IndexExpression:
		return t.translateIndexRead(n)
	case *ast.FieldAccess:
		return t.translateFieldRead(n)
	case *ast.CursorAttrExpression:
		return oracleisms.RenderAttr(n.CursorName, n.Attr), nil
	case *ast.SequenceExpression:
		return t.translateSequence(n)
	case *ast.CaseExpression:
		return t.translateCaseExpr(n)
	case *ast.CastExpression:
		inner, err := t.translateExpr(n.Expression)
		if err != nil {
			return "", err
		}
		pgType := t.Dialect.MapType(n.Type.Name, n.Type.Precision, n.Type.Scale, n.Type.Length, n.Type.HasLength)
		return fmt.Sprintf("CAST(%s AS %s)", inner, pgType), nil
	case *ast.SubqueryExpression:
		sel, err := t.translateSelect(n.Subquery)
		if err != nil {
			return "", err
		}
		return "(" + sel + ")", nil
	case *ast.ExistsExpression:
		sel, err := t.translateSelect(n.Subquery)
		if err != nil {
			return "", err
		}
		if n.Not {
			return "NOT EXISTS (" + sel + ")", nil
		}
		return "EXISTS (" + sel + ")", nil
	case *ast.ConstructorCall:
		return t.translateConstructor(n)
	case *ast.OuterJoinSuffix:
		// reached only if an outer-join analyzer pass did not strip it first
		// (e.g. a (+) mark appearing outside a WHERE-clause equality).
		return "", t.fail(diagnostics.UnsupportedFeature, n.Pos, "", "(+) outer-join marker used outside a WHERE-clause equality predicate")
	}
	return "", t.fail(diagnostics.UnsupportedFeature, e.Position(), "", "unsupported expression type %T", e)
}

func (t *Translator) translateBindVar(n *ast.BindVar) (string, *diagnostics.Diagnostics) {
	name := strings.ToUpper(n.Name)
	if name == "NEW" || name == "OLD" {
		if n.Field != "" {
			return name + "." + strings.ToLower(n.Field), nil
		}
		return name, nil
	}
	return "$" + n.Name, nil
}

// translateIdentifier resolves a (possibly dotted) name against every
// pattern spec §4.2/§4.5.4 recognizes: a local variable, a package variable
// (rendered as a getter call), a table-qualified column, or a bare column
// reference left to PostgreSQL's own name resolution.
func (t *Translator) translateIdentifier(id *ast.Identifier) (string, *diagnostics.Diagnostics) {
	kind, pkg, name := oracleisms.ResolvePackageVariableRef(id.Parts, t.Ctx)
	switch kind {
	case oracleisms.UnqualifiedPackageVar, oracleisms.QualifiedPackageVar:
		if pc, ok := t.Ctx.LookupPackageContext(t.Ctx.CurrentSchema(), pkg); ok {
			if oracleType, ok := pc.VariableType(name); ok && pc.IsConstant(name) {
				if lit, ok := t.constantLiteral(pkg, name); ok {
					_ = oracleType
					return lit, nil
				}
			}
		}
		return oracleisms.RenderRead(t.Ctx, pkg, name), nil
	}

	if len(id.Parts) == 1 {
		if info, ok := t.Ctx.LookupVariable(id.Parts[0]); ok {
			_ = info
			return strings.ToLower(id.Parts[0]), nil
		}
		return strings.ToLower(id.Parts[0]), nil
	}

	n := len(id.Parts)
	alias := id.Parts[n-2]
	col := id.Parts[n-1]
	if at, ok := t.Ctx.LookupAlias(alias); ok {
		_ = at
		return strings.ToLower(alias) + "." + strings.ToLower(col), nil
	}
	parts := make([]string, len(id.Parts))
	for i, p := range id.Parts {
		parts[i] = strings.ToLower(p)
	}
	return strings.Join(parts, "."), nil
}

// constantLiteral resolves a package constant to its literal text via the
// catalog's PackageSignature.DefaultLiterals exact decimal default, when
// known (§4.5.4:
// "constants are inlined, never call a getter").
func (t *Translator) constantLiteral(pkg, name string) (string, bool) {
	ps, ok := t.Catalog.LookupPackage(t.Ctx.CurrentSchema(), pkg)
	if !ok {
		return "", false
	}
	d, ok := ps.DefaultLiterals[strings.ToLower(name)]
	if !ok {
		return "", false
	}
	return d.String(), true
}

func (t *Translator) translateInfix(n *ast.InfixExpression) (string, *diagnostics.Diagnostics) {
	left, err := t.translateExpr(n.Left)
	if err != nil {
		return "", err
	}
	right, err := t.translateExpr(n.Right)
	if err != nil {
		return "", err
	}
	switch n.Operator {
	case "||":
		return fmt.Sprintf("(%s || %s)", left, right), nil
	default:
		return fmt.Sprintf("(%s %s %s)", left, n.Operator, right), nil
	}
}

func (t *Translator) translateBetween(n *ast.BetweenExpression) (string, *diagnostics.Diagnostics) {
	expr, err := t.translateExpr(n.Expr)
	if err != nil {
		return "", err
	}
	lo, err := t.translateExpr(n.Low)
	if err != nil {
		return "", err
	}
	hi, err := t.translateExpr(n.High)
	if err != nil {
		return "", err
	}
	not := ""
	if n.Not {
		not = "NOT "
	}
	return fmt.Sprintf("(%s %sBETWEEN %s AND %s)", expr, not, lo, hi), nil
}

func (t *Translator) translateIn(n *ast.InExpression) (string, *diagnostics.Diagnostics) {
	expr, err := t.translateExpr(n.Expr)
	if err != nil {
		return "", err
	}
	not := ""
	if n.Not {
		not = "NOT "
	}
	if n.Subquery != nil {
		sel, err := t.translateSelect(n.Subquery.Subquery)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("(%s %sIN (%s))", expr, not, sel), nil
	}
	parts := make([]string, len(n.List))
	for i, v := range n.List {
		p, err := t.translateExpr(v)
		if err != nil {
			return "", err
		}
		parts[i] = p
	}
	return fmt.Sprintf("(%s %sIN (%s))", expr, not, strings.Join(parts, ", ")), nil
}

func (t *Translator) translateIndexRead(n *ast.IndexExpression) (string, *diagnostics.Diagnostics) {
	base, err := t.translateExpr(n.Left)
	if err != nil {
		return "", err
	}
	idx, err := t.translateExpr(n.Index)
	if err != nil {
		return "", err
	}
	if id, ok := n.Left.(*ast.Identifier); ok {
		if _, ok := n.Index.(*ast.StringLiteral); ok {
			if info, ok2 := t.Ctx.LookupVariable(id.Last()); ok2 && info.IsCollection && info.IndexKeyType == "VARCHAR2" {
				return oracleisms.MapRead(base, idx), nil
			}
		}
	}
	return oracleisms.ArrayElementRead(base, idx), nil
}

func (t *Translator) translateFieldRead(n *ast.FieldAccess) (string, *diagnostics.Diagnostics) {
	// A field access through a known FROM-clause alias (table or CTE) is a
	// plain qualified column reference, not a jsonb record field.
	if id, ok := n.Expr.(*ast.Identifier); ok && len(id.Parts) == 1 {
		if _, isAlias := t.Ctx.LookupAlias(id.Parts[0]); isAlias {
			if _, isVar := t.Ctx.LookupVariable(id.Parts[0]); !isVar {
				return strings.ToLower(id.Parts[0]) + "." + strings.ToLower(n.Field), nil
			}
		}
	}

	base, err := t.translateExpr(n.Expr)
	if err != nil {
		return "", err
	}
	pgType := ""
	if id, ok := n.Expr.(*ast.Identifier); ok {
		if info, ok2 := t.Ctx.LookupVariable(id.Last()); ok2 && info.IsRecord {
			if def, ok3 := t.Ctx.ResolveInlineType(info.OracleType); ok3 {
				for _, f := range def.Fields {
					if strings.EqualFold(f.Name, n.Field) {
						pgType = f.PostgresType
						break
					}
				}
			}
		}
	}
	return oracleisms.FieldRead(base, n.Field, pgType), nil
}

func (t *Translator) translateSequence(n *ast.SequenceExpression) (string, *diagnostics.Diagnostics) {
	schema := n.Schema
	if schema == "" {
		schema = t.Ctx.CurrentSchema()
	}
	seqName := t.Dialect.QuoteIdentifier(schema) + "." + t.Dialect.QuoteIdentifier(n.Sequence)
	switch strings.ToUpper(n.Attr) {
	case "NEXTVAL":
		return fmt.Sprintf("nextval('%s')", strings.ReplaceAll(seqName, "'", "''")), nil
	case "CURRVAL":
		return fmt.Sprintf("currval('%s')", strings.ReplaceAll(seqName, "'", "''")), nil
	}
	return "", t.fail(diagnostics.UnsupportedFeature, n.Pos, n.Attr, "unknown sequence attribute %s", n.Attr)
}

func (t *Translator) translateCaseExpr(n *ast.CaseExpression) (string, *diagnostics.Diagnostics) {
	var sb strings.Builder
	sb.WriteString("CASE")
	if n.Subject != nil {
		s, err := t.translateExpr(n.Subject)
		if err != nil {
			return "", err
		}
		sb.WriteString(" " + s)
	}
	for _, w := range n.Whens {
		c, err := t.translateExpr(w.Condition)
		if err != nil {
			return "", err
		}
		r, err := t.translateExpr(w.Result)
		if err != nil {
			return "", err
		}
		sb.WriteString(" WHEN " + c + " THEN " + r)
	}
	if n.Else != nil {
		e, err := t.translateExpr(n.Else)
		if err != nil {
			return "", err
		}
		sb.WriteString(" ELSE " + e)
	}
	sb.WriteString(" END")
	return sb.String(), nil
}

func (t *Translator) translateConstructor(n *ast.ConstructorCall) (string, *diagnostics.Diagnostics) {
	args := make([]string, len(n.Arguments))
	isStr := make([]bool, len(n.Arguments))
	for i, a := range n.Arguments {
		v, err := t.translateExpr(a)
		if err != nil {
			return "", err
		}
		args[i] = v
		_, isStr[i] = a.(*ast.StringLiteral)
	}
	return oracleisms.ConstructorLiteral(args, isStr), nil
}

// translateCall dispatches a FunctionCall: Oracle built-ins get rewritten per
// §4.4's table; unrecognized single-part names pass through as PostgreSQL
// function calls; package-qualified calls are flattened to pkg__fn (§4.5.4).
func (t *Translator) translateCall(fc *ast.FunctionCall) (string, *diagnostics.Diagnostics) {
	args := make([]string, len(fc.Arguments))
	for i, a := range fc.Arguments {
		v, err := t.translateExpr(a)
		if err != nil {
			return "", err
		}
		args[i] = v
	}

	if len(fc.Name.Parts) == 1 {
		if rendered, handled, err := t.translateBuiltinCall(fc, args); handled {
			return rendered, err
		}
		return fmt.Sprintf("%s(%s)", strings.ToLower(fc.Name.Last()), strings.Join(args, ", ")), nil
	}

	// pkg.fn(...) or schema.pkg.fn(...): flatten to the translated function
	// name, qualified by currentSchema unless an explicit schema was given.
	n := len(fc.Name.Parts)
	fn := fc.Name.Parts[n-1]
	pkg := fc.Name.Parts[n-2]
	schema := t.Ctx.CurrentSchema()
	if n >= 3 {
		schema = fc.Name.Parts[n-3]
	}
	flat := strings.ToLower(pkg) + "__" + strings.ToLower(fn)
	return fmt.Sprintf("%s.%s(%s)", t.Dialect.QuoteIdentifier(schema), t.Dialect.QuoteIdentifier(flat), strings.Join(args, ", ")), nil
}

// translateBuiltinCall rewrites one Oracle built-in per §4.4/§4.5.6. Returns
// handled=false when fc.Name is not a recognized built-in, so the caller
// falls back to passing the call through verbatim.
func (t *Translator) translateBuiltinCall(fc *ast.FunctionCall, args []string) (string, bool, *diagnostics.Diagnostics) {
	name := strings.ToUpper(fc.Name.Last())
	switch name {
	case "SYSDATE":
		return "CURRENT_TIMESTAMP", true, nil
	case "NVL":
		return fmt.Sprintf("COALESCE(%s)", strings.Join(args, ", ")), true, nil
	case "NVL2":
		if len(args) != 3 {
			break
		}
		return fmt.Sprintf("(CASE WHEN %s IS NOT NULL THEN %s ELSE %s END)", args[0], args[1], args[2]), true, nil
	case "DECODE":
		return t.translateDecode(args), true, nil
	case "SUBSTR":
		return t.translateSubstr(args), true, nil
	case "INSTR":
		return t.translateInstr(args), true, nil
	case "REGEXP_REPLACE":
		return fmt.Sprintf("regexp_replace(%s)", strings.Join(args, ", ")), true, nil
	case "REGEXP_SUBSTR":
		if len(args) < 2 {
			break
		}
		return fmt.Sprintf("(regexp_match(%s, %s))[1]", args[0], args[1]), true, nil
	case "TO_CHAR":
		return t.translateToChar(fc, args), true, nil
	case "TO_DATE", "TO_TIMESTAMP":
		return t.translateToDate(args), true, nil
	case "TO_NUMBER":
		if len(args) == 0 {
			break
		}
		return fmt.Sprintf("(%s)::numeric", args[0]), true, nil
	case "ADD_MONTHS":
		if len(args) != 2 {
			break
		}
		return oracleisms.AddMonths(args[0], args[1]), true, nil
	case "MONTHS_BETWEEN":
		if len(args) != 2 {
			break
		}
		return oracleisms.MonthsBetween(args[0], args[1]), true, nil
	case "LAST_DAY":
		if len(args) != 1 {
			break
		}
		return oracleisms.LastDay(args[0]), true, nil
	case "TRUNC":
		return t.translateTruncOrRound(fc, args, true), true, nil
	case "ROUND":
		return t.translateTruncOrRound(fc, args, false), true, nil
	case "SYS_CONNECT_BY_PATH":
		if len(args) != 2 {
			break
		}
		return fmt.Sprintf("('/' || %s)", args[0]), true, nil
	case "PRIOR":
		if len(args) != 1 {
			break
		}
		return args[0], true, nil
	case "EMPTY_CLOB", "EMPTY_BLOB":
		return "NULL", true, nil
	}
	return "", false, nil
}

func (t *Translator) translateDecode(args []string) string {
	if len(args) < 3 {
		return fmt.Sprintf("decode_unsupported(%s)", strings.Join(args, ", "))
	}
	subject := args[0]
	var sb strings.Builder
	sb.WriteString("(CASE ")
	i := 1
	for ; i+1 < len(args); i += 2 {
		sb.WriteString(fmt.Sprintf("WHEN %s IS NOT DISTINCT FROM %s THEN %s ", subject, args[i], args[i+1]))
	}
	if i < len(args) {
		sb.WriteString("ELSE " + args[i] + " ")
	}
	sb.WriteString("END)")
	return sb.String()
}

func (t *Translator) translateSubstr(args []string) string {
	if len(args) < 2 {
		return fmt.Sprintf("substring(%s)", strings.Join(args, ", "))
	}
	s := args[0]
	start := fmt.Sprintf("(CASE WHEN (%s) < 0 THEN greatest(length(%s) + (%s) + 1, 1) ELSE (%s) END)", args[1], s, args[1], args[1])
	if len(args) == 2 {
		return fmt.Sprintf("substring(%s FROM %s)", s, start)
	}
	return fmt.Sprintf("substring(%s FROM %s FOR %s)", s, start, args[2])
}

func (t *Translator) translateInstr(args []string) string {
	if len(args) < 2 {
		return fmt.Sprintf("strpos(%s)", strings.Join(args, ", "))
	}
	if len(args) == 2 {
		return fmt.Sprintf("strpos(%s, %s)", args[0], args[1])
	}
	// INSTR's 3rd/4th positional args (start position, nth occurrence) have
	// no single strpos equivalent; the common start=1,occurrence=1 case
	// degrades to strpos and a position offset for a positive start.
	return fmt.Sprintf("(CASE WHEN strpos(substring(%s FROM %s), %s) = 0 THEN 0 ELSE strpos(substring(%s FROM %s), %s) + (%s) - 1 END)",
		args[0], args[2], args[1], args[0], args[2], args[1], args[2])
}

func (t *Translator) translateToChar(fc *ast.FunctionCall, args []string) string {
	if len(args) == 1 {
		return fmt.Sprintf("(%s)::text", args[0])
	}
	fmtArg, ok := fc.Arguments[1].(*ast.StringLiteral)
	if !ok {
		return fmt.Sprintf("to_char(%s, %s)", args[0], args[1])
	}
	pgFmt := oracleToCharFormat(fmtArg.Value)
	return fmt.Sprintf("to_char(%s, '%s')", args[0], pgFmt)
}

func (t *Translator) translateToDate(args []string) string {
	if len(args) == 1 {
		return fmt.Sprintf("(%s)::timestamp", args[0])
	}
	return fmt.Sprintf("to_timestamp(%s, %s)", args[0], args[1])
}

func oracleToCharFormat(oracleFmt string) string {
	repl := strings.NewReplacer(
		"YYYY", "YYYY", "RRRR", "YYYY", "RR", "YY",
		"MON", "Mon", "MM", "MM", "DD", "DD",
		"HH24", "HH24", "HH", "HH12", "MI", "MI", "SS", "SS",
		"DAY", "Day", "DY", "Dy",
	)
	return repl.Replace(oracleFmt)
}

func (t *Translator) translateTruncOrRound(fc *ast.FunctionCall, args []string, isTrunc bool) string {
	isDate := oracleisms.IsDateTruncOrRound(fc.Arguments, t.Eval)
	fmtArg := ""
	if len(fc.Arguments) >= 2 {
		if lit, ok := fc.Arguments[1].(*ast.StringLiteral); ok {
			fmtArg = lit.Value
		}
	}
	if fmtArg == "" && len(fc.Arguments) >= 1 && t.Eval.Analyze(fc.Arguments[0]) == typeeval.Unknown {
		t.warn(fc.Pos, fc.Name.Last(), "%s argument type not inferred; date-vs-numeric choice made by column-name heuristic", strings.ToUpper(fc.Name.Last()))
	}
	if isDate {
		if isTrunc {
			return oracleisms.DateTrunc(args[0], fmtArg)
		}
		return oracleisms.DateRound(args[0], fmtArg)
	}
	if len(args) == 1 {
		if isTrunc {
			return fmt.Sprintf("trunc(%s)", args[0])
		}
		return fmt.Sprintf("round(%s)", args[0])
	}
	if isTrunc {
		return fmt.Sprintf("trunc(%s, %s)", args[0], args[1])
	}
	return fmt.Sprintf("round(%s, %s)", args[0], args[1])
}
