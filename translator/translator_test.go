package translator

import (
	"context"
	"strings"
	"testing"

	"github.com/orapgcore/oracore/ast"
	"github.com/orapgcore/oracore/catalog"
	"github.com/orapgcore/oracore/parser"
)

func translateViewSrc(t *testing.T, src string) string {
	t.Helper()
	prog, errs := parser.Parse(src, parser.ViewSelect)
	if len(errs) > 0 {
		t.Fatalf("parse failed for %q: %v", src, errs)
	}
	v, ok := prog.Units[0].(*ast.CreateViewStatement)
	if !ok {
		t.Fatalf("expected *ast.CreateViewStatement, got %T", prog.Units[0])
	}

	tr := New(context.Background(), catalog.New(), "hr", nil)
	out, diag, _ := tr.TranslateView(v)
	if diag != nil {
		t.Fatalf("TranslateView failed: %v", diag)
	}
	return out
}

func TestTranslateViewRewritesOuterJoinToAnsi(t *testing.T) {
	src := `CREATE VIEW emp_dept AS
SELECT e.name, d.dept_name
FROM employees e, departments d
WHERE e.dept_id = d.dept_id(+)`

	out := translateViewSrc(t, src)
	if !strings.Contains(out, "LEFT JOIN") {
		t.Fatalf("expected LEFT JOIN in output, got:\n%s", out)
	}
	if strings.Contains(out, "(+)") {
		t.Fatalf("expected (+) marker to be gone, got:\n%s", out)
	}
}

func TestTranslateViewRownumBecomesLimit(t *testing.T) {
	src := `CREATE VIEW top_emp AS
SELECT e.name
FROM employees e
WHERE ROWNUM <= 10`

	out := translateViewSrc(t, src)
	if !strings.Contains(out, "LIMIT 10") {
		t.Fatalf("expected LIMIT 10 in output, got:\n%s", out)
	}
}

func TestTranslateViewRownumLessThanOneClampsToLimitZero(t *testing.T) {
	src := `CREATE VIEW nobody AS
SELECT e.name
FROM employees e
WHERE ROWNUM < 1`

	out := translateViewSrc(t, src)
	if !strings.Contains(out, "LIMIT 0") {
		t.Fatalf("expected LIMIT 0 (boundary clamp), got:\n%s", out)
	}
}

func TestTranslateViewConnectByBecomesRecursiveCTE(t *testing.T) {
	src := `CREATE VIEW org_chart AS
SELECT e.name, LEVEL
FROM employees e
START WITH e.manager_id IS NULL
CONNECT BY PRIOR e.employee_id = e.manager_id`

	out := translateViewSrc(t, src)
	if !strings.Contains(out, "WITH RECURSIVE") {
		t.Fatalf("expected WITH RECURSIVE in output, got:\n%s", out)
	}
	if !strings.Contains(out, "UNION ALL") {
		t.Fatalf("expected UNION ALL in recursive CTE, got:\n%s", out)
	}
}

func TestTranslateFunctionRendersAsPlpgsql(t *testing.T) {
	src := `CREATE FUNCTION get_salary(p_emp_id NUMBER) RETURN NUMBER IS
  v_salary NUMBER;
BEGIN
  SELECT salary INTO v_salary FROM employees WHERE employee_id = p_emp_id;
  RETURN v_salary;
END;`

	prog, errs := parser.Parse(src, parser.StandaloneFunction)
	if len(errs) > 0 {
		t.Fatalf("parse failed: %v", errs)
	}
	fn, ok := prog.Units[0].(*ast.CreateFunctionStatement)
	if !ok {
		t.Fatalf("expected *ast.CreateFunctionStatement, got %T", prog.Units[0])
	}

	tr := New(context.Background(), catalog.New(), "hr", nil)
	out, diag, _ := tr.TranslateFunction(fn, "")
	if diag != nil {
		t.Fatalf("TranslateFunction failed: %v", diag)
	}
	if !strings.Contains(out, "get_salary") {
		t.Fatalf("expected function name in output, got:\n%s", out)
	}
	if !strings.Contains(strings.ToUpper(out), "RETURN") {
		t.Fatalf("expected a RETURN statement in output, got:\n%s", out)
	}
}

func TestTranslateProcedureEmitsCursorRowcountDiagnostics(t *testing.T) {
	src := `CREATE PROCEDURE purge_inactive IS
BEGIN
  DELETE FROM employees WHERE status = 'INACTIVE';
  IF SQL%ROWCOUNT > 0 THEN
    NULL;
  END IF;
END;`

	prog, errs := parser.Parse(src, parser.StandaloneProcedure)
	if len(errs) > 0 {
		t.Fatalf("parse failed: %v", errs)
	}
	proc, ok := prog.Units[0].(*ast.CreateProcedureStatement)
	if !ok {
		t.Fatalf("expected *ast.CreateProcedureStatement, got %T", prog.Units[0])
	}

	tr := New(context.Background(), catalog.New(), "hr", nil)
	out, diag, _ := tr.TranslateProcedure(proc, "")
	if diag != nil {
		t.Fatalf("TranslateProcedure failed: %v", diag)
	}
	if !strings.Contains(out, "GET DIAGNOSTICS") {
		t.Fatalf("expected GET DIAGNOSTICS emitted for SQL%%ROWCOUNT use, got:\n%s", out)
	}
}
