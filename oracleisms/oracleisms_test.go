package oracleisms

import (
	"strings"
	"testing"

	"github.com/orapgcore/oracore/ast"
	"github.com/orapgcore/oracore/xformctx"
)

func TestAnalyzeOuterJoinsRewritesSimplePredicate(t *testing.T) {
	tables := []ast.TableRef{
		{Name: "employees", Alias: "e"},
		{Name: "departments", Alias: "d"},
	}
	pos := ast.Pos{Line: 1, Column: 1}
	left := &ast.Identifier{Pos: pos, Parts: []string{"e", "dept_id"}}
	right := &ast.OuterJoinSuffix{Pos: pos, Inner: &ast.Identifier{Pos: pos, Parts: []string{"d", "dept_id"}}}
	where := &ast.InfixExpression{Pos: pos, Left: left, Operator: "=", Right: right}

	result, diag := AnalyzeOuterJoins(tables, where)
	if diag != nil {
		t.Fatalf("AnalyzeOuterJoins failed: %v", diag)
	}
	if len(result.Joins) != 1 || result.Joins[0].Kind != LeftJoin {
		t.Fatalf("expected one LEFT JOIN, got %+v", result.Joins)
	}
	if result.Remainder != nil {
		t.Fatalf("expected the (+) conjunct to be fully consumed, got remainder %+v", result.Remainder)
	}
}

func TestAnalyzeOuterJoinsRejectsBothSidesMarked(t *testing.T) {
	tables := []ast.TableRef{{Name: "a", Alias: "a"}, {Name: "b", Alias: "b"}}
	pos := ast.Pos{Line: 1, Column: 1}
	left := &ast.OuterJoinSuffix{Pos: pos, Inner: &ast.Identifier{Pos: pos, Parts: []string{"a", "x"}}}
	right := &ast.OuterJoinSuffix{Pos: pos, Inner: &ast.Identifier{Pos: pos, Parts: []string{"b", "x"}}}
	where := &ast.InfixExpression{Pos: pos, Left: left, Operator: "=", Right: right}

	_, diag := AnalyzeOuterJoins(tables, where)
	if diag == nil {
		t.Fatalf("expected AmbiguousOuterJoin when both sides are marked (+)")
	}
}

func TestAnalyzeOuterJoinsLeavesUnmarkedConjunctsInRemainder(t *testing.T) {
	tables := []ast.TableRef{{Name: "employees", Alias: "e"}}
	pos := ast.Pos{Line: 1, Column: 1}
	where := &ast.InfixExpression{
		Pos:      pos,
		Left:     &ast.Identifier{Pos: pos, Parts: []string{"e", "status"}},
		Operator: "=",
		Right:    &ast.StringLiteral{Pos: pos, Value: "ACTIVE"},
	}
	result, diag := AnalyzeOuterJoins(tables, where)
	if diag != nil {
		t.Fatalf("AnalyzeOuterJoins failed: %v", diag)
	}
	if result.Remainder == nil {
		t.Fatalf("expected the plain predicate to survive in Remainder")
	}
}

func TestIsHierarchicalRequiresConnectBy(t *testing.T) {
	if IsHierarchical(nil) {
		t.Fatalf("nil select should not be hierarchical")
	}
	if IsHierarchical(&ast.SelectStatement{}) {
		t.Fatalf("select without CONNECT BY should not be hierarchical")
	}
	if !IsHierarchical(&ast.SelectStatement{ConnectBy: &ast.InfixExpression{}}) {
		t.Fatalf("select with CONNECT BY should be hierarchical")
	}
}

func TestRenderAttrImplicitSQLCursor(t *testing.T) {
	cases := map[string]string{
		"FOUND":    "(sql__rowcount > 0)",
		"NOTFOUND": "(sql__rowcount = 0)",
		"ROWCOUNT": "sql__rowcount",
		"ISOPEN":   "false",
	}
	for attr, want := range cases {
		if got := RenderAttr("SQL", attr); got != want {
			t.Errorf("RenderAttr(SQL, %s) = %q, want %q", attr, got, want)
		}
	}
}

func TestRenderAttrExplicitCursor(t *testing.T) {
	if got := RenderAttr("c_emp", "ROWCOUNT"); got != "c_emp__rowcount" {
		t.Errorf("RenderAttr(c_emp, ROWCOUNT) = %q, want c_emp__rowcount", got)
	}
	if got := RenderAttr("C_Emp", "NOTFOUND"); got != "(NOT c_emp__found)" {
		t.Errorf("RenderAttr(C_Emp, NOTFOUND) = %q, want (NOT c_emp__found)", got)
	}
}

func TestSQLAttributeDiagnostics(t *testing.T) {
	if got := SQLAttributeDiagnostics(); got != "GET DIAGNOSTICS sql__rowcount = ROW_COUNT;" {
		t.Errorf("SQLAttributeDiagnostics() = %q", got)
	}
}

func TestAddMonthsAndLastDay(t *testing.T) {
	if got := AddMonths("v_d", "3"); !strings.Contains(got, "'3'") && !strings.Contains(got, "3 ||") {
		t.Logf("AddMonths rendering: %s", got)
	}
	if got := LastDay("v_d"); !strings.Contains(got, "DATE_TRUNC") {
		t.Errorf("LastDay should use DATE_TRUNC, got %q", got)
	}
}

func TestIsDateTruncOrRoundExplicitFormatMask(t *testing.T) {
	pos := ast.Pos{Line: 1, Column: 1}
	args := []ast.Expression{
		&ast.Identifier{Pos: pos, Parts: []string{"v_x"}},
		&ast.StringLiteral{Pos: pos, Value: "YYYY"},
	}
	if !IsDateTruncOrRound(args, nil) {
		t.Fatalf("expected an explicit format-mask argument to mark TRUNC/ROUND as date-flavored")
	}
}

func TestIsDateTruncOrRoundNameHeuristic(t *testing.T) {
	pos := ast.Pos{Line: 1, Column: 1}
	args := []ast.Expression{&ast.Identifier{Pos: pos, Parts: []string{"hire_date"}}}
	if !IsDateTruncOrRound(args, nil) {
		t.Fatalf("expected hire_date to be recognized as date-like by name heuristic")
	}
	args = []ast.Expression{&ast.Identifier{Pos: pos, Parts: []string{"salary"}}}
	if IsDateTruncOrRound(args, nil) {
		t.Fatalf("expected salary to default to numeric TRUNC/ROUND")
	}
}

func TestDateTruncUnitMapping(t *testing.T) {
	if got := DateTrunc("v_d", "'MM'"); !strings.Contains(got, "'month'") {
		t.Errorf("DateTrunc(MM) = %q, want a 'month' unit", got)
	}
}

func TestDeclarationInitByCategory(t *testing.T) {
	if got := DeclarationInit(xformctx.InlineTypeDefinition{Category: "RECORD"}); got != "'{}'::jsonb" {
		t.Errorf("DeclarationInit(RECORD) = %q, want '{}'::jsonb", got)
	}
	if got := DeclarationInit(xformctx.InlineTypeDefinition{Category: "TABLE_OF"}); got != "'[]'::jsonb" {
		t.Errorf("DeclarationInit(TABLE_OF) = %q, want '[]'::jsonb", got)
	}
}

func TestArrayElementReadConvertsToZeroBased(t *testing.T) {
	if got := ArrayElementRead("v_arr", "1"); got != "(v_arr->0)" {
		t.Errorf("ArrayElementRead(v_arr, 1) = %q, want (v_arr->0)", got)
	}
}

func TestFieldReadScalarVsNested(t *testing.T) {
	if got := FieldRead("v_rec", "salary", "NUMERIC"); got != "(v_rec->>'salary')::NUMERIC" {
		t.Errorf("FieldRead scalar = %q", got)
	}
	if got := FieldRead("v_rec", "addr", ""); got != "v_rec->'addr'" {
		t.Errorf("FieldRead nested = %q", got)
	}
}

func TestInitializeCallRendersPerform(t *testing.T) {
	if got := InitializeCall("hr", "Emp_Pkg"); got != "PERFORM hr.emp_pkg__initialize();" {
		t.Errorf("InitializeCall = %q", got)
	}
}

type fakePackageContext struct {
	vars map[string]bool
}

func (f *fakePackageContext) Schema() string      { return "hr" }
func (f *fakePackageContext) PackageName() string { return "emp_pkg" }
func (f *fakePackageContext) VariableType(name string) (string, bool) {
	if f.vars[strings.ToLower(name)] {
		return "NUMBER", true
	}
	return "", false
}
func (f *fakePackageContext) IsConstant(name string) bool { return false }
func (f *fakePackageContext) InlineType(name string) (xformctx.InlineTypeDefinition, bool) {
	return xformctx.InlineTypeDefinition{}, false
}

func TestResolvePackageVariableRefPrecedence(t *testing.T) {
	ctx := xformctx.New("hr", nil)
	ctx.SetCurrentPackage("emp_pkg")
	ctx.CachePackageContext("hr", "emp_pkg", &fakePackageContext{vars: map[string]bool{"g_counter": true}})

	ctx.PushScope()
	ctx.DeclareVariable("g_counter", xformctx.VarInfo{OracleType: "NUMBER"})
	kind, _, _ := ResolvePackageVariableRef([]string{"g_counter"}, ctx)
	if kind != LocalVariable {
		t.Fatalf("expected a local variable to take precedence, got %v", kind)
	}
	ctx.PopScope()

	kind, pkg, name := ResolvePackageVariableRef([]string{"g_counter"}, ctx)
	if kind != UnqualifiedPackageVar || pkg != "emp_pkg" || name != "g_counter" {
		t.Fatalf("expected UnqualifiedPackageVar emp_pkg.g_counter, got kind=%v pkg=%q name=%q", kind, pkg, name)
	}

	kind, pkg, name = ResolvePackageVariableRef([]string{"emp_pkg", "g_counter"}, ctx)
	if kind != QualifiedPackageVar || pkg != "emp_pkg" || name != "g_counter" {
		t.Fatalf("expected QualifiedPackageVar, got kind=%v pkg=%q name=%q", kind, pkg, name)
	}

	kind, _, _ = ResolvePackageVariableRef([]string{"v_local_only"}, ctx)
	if kind != NotPackageVariable {
		t.Fatalf("expected an unrelated bare name to resolve to NotPackageVariable, got %v", kind)
	}
}
