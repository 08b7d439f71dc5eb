package xformctx

import (
	"testing"

	"github.com/orapgcore/oracore/catalog"
)

func TestPopScopeOnEmptyStackPanics(t *testing.T) {
	ctx := New("HR", catalog.New())
	defer func() {
		if recover() == nil {
			t.Fatalf("expected PopScope on an empty stack to panic")
		}
	}()
	ctx.PopScope()
}

func TestScopeNestingShadowsOuterVariable(t *testing.T) {
	ctx := New("HR", catalog.New())
	ctx.PushScope()
	ctx.DeclareVariable("v_count", VarInfo{OracleType: "NUMBER"})

	ctx.PushScope()
	ctx.DeclareVariable("v_count", VarInfo{OracleType: "VARCHAR2"})
	if got, ok := ctx.LookupVariable("v_count"); !ok || got.OracleType != "VARCHAR2" {
		t.Fatalf("expected inner scope to shadow outer: got %+v, ok=%v", got, ok)
	}
	ctx.PopScope()

	if got, ok := ctx.LookupVariable("v_count"); !ok || got.OracleType != "NUMBER" {
		t.Fatalf("expected outer declaration to resurface after PopScope: got %+v, ok=%v", got, ok)
	}
	ctx.PopScope()

	if _, ok := ctx.LookupVariable("v_count"); ok {
		t.Fatalf("expected lookup to fail once every scope has been popped")
	}
}

func TestLookupVariableCaseInsensitive(t *testing.T) {
	ctx := New("HR", catalog.New())
	ctx.PushScope()
	ctx.DeclareVariable("V_Name", VarInfo{OracleType: "VARCHAR2"})
	if _, ok := ctx.LookupVariable("v_name"); !ok {
		t.Fatalf("expected case-insensitive variable lookup to succeed")
	}
}

func TestClearAliasesDropsAliasesAndCTEs(t *testing.T) {
	ctx := New("HR", catalog.New())
	ctx.DeclareAlias("e", "HR", "EMPLOYEES")
	ctx.DeclareCTE("ranked")

	if _, ok := ctx.LookupAlias("e"); !ok {
		t.Fatalf("expected alias e to resolve before ClearAliases")
	}
	if !ctx.IsCTE("ranked") {
		t.Fatalf("expected ranked to be a known CTE before ClearAliases")
	}

	ctx.ClearAliases()

	if _, ok := ctx.LookupAlias("e"); ok {
		t.Fatalf("expected alias e to be gone after ClearAliases")
	}
	if ctx.IsCTE("ranked") {
		t.Fatalf("expected ranked to no longer be a known CTE after ClearAliases")
	}
}

func TestCursorAttrNeeded(t *testing.T) {
	ctx := New("HR", catalog.New())
	if ctx.CursorAttrNeeded("c_emp") {
		t.Fatalf("expected CursorAttrNeeded to default to false")
	}
	ctx.MarkCursorAttrNeeded("C_EMP")
	if !ctx.CursorAttrNeeded("c_emp") {
		t.Fatalf("expected MarkCursorAttrNeeded to be case-insensitive")
	}
}

func TestPackageVariableGetterSetterNaming(t *testing.T) {
	ctx := New("hr", catalog.New())
	if got := ctx.PackageVariableGetter("Emp_Pkg", "Max_Salary"); got != "hr.emp_pkg__get_max_salary()" {
		t.Errorf("PackageVariableGetter = %q, want hr.emp_pkg__get_max_salary()", got)
	}
	if got := ctx.PackageVariableSetterCall("Emp_Pkg", "Max_Salary", "50000"); got != "hr.emp_pkg__set_max_salary(50000)" {
		t.Errorf("PackageVariableSetterCall = %q, want hr.emp_pkg__set_max_salary(50000)", got)
	}
}

func TestResolveInlineTypeLocalBeforePackage(t *testing.T) {
	ctx := New("HR", catalog.New())
	ctx.RegisterInlineType("emp_rec", InlineTypeDefinition{Name: "emp_rec", Category: "RECORD"})

	def, ok := ctx.ResolveInlineType("EMP_REC")
	if !ok || def.Category != "RECORD" {
		t.Fatalf("expected local inline type to resolve: %+v, ok=%v", def, ok)
	}

	if _, ok := ctx.ResolveInlineType("unknown_type"); ok {
		t.Fatalf("expected lookup of unregistered inline type to fail")
	}
}
