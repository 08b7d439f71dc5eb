package pkgctx

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type fakeFetcher struct {
	spec, body string
	specErr    error
}

func (f *fakeFetcher) FetchPackageSpec(ctx context.Context, schema, name string) (string, error) {
	if f.specErr != nil {
		return "", f.specErr
	}
	return f.spec, nil
}

func (f *fakeFetcher) FetchPackageBody(ctx context.Context, schema, name string) (string, error) {
	return f.body, nil
}

const emptySpec = `CREATE PACKAGE emp_pkg IS
  max_salary NUMBER := 100000;
END;`

const emptyBody = `CREATE PACKAGE BODY emp_pkg IS
END;`

func TestEnsurePackageContextExtractsSpecVariable(t *testing.T) {
	fetcher := &fakeFetcher{spec: emptySpec, body: emptyBody}
	p := NewPipeline(fetcher, nil)

	pc, err := p.EnsurePackageContext(context.Background(), "hr", "emp_pkg")
	if err != nil {
		t.Fatalf("EnsurePackageContext failed: %v", err)
	}
	oracleType, ok := pc.VariableType("max_salary")
	if !ok || oracleType != "NUMBER" {
		t.Fatalf("VariableType(max_salary) = (%q, %v), want (NUMBER, true)", oracleType, ok)
	}
}

func TestEnsurePackageContextIsCachedPerKey(t *testing.T) {
	fetcher := &fakeFetcher{spec: emptySpec, body: emptyBody}
	p := NewPipeline(fetcher, nil)

	pc1, err := p.EnsurePackageContext(context.Background(), "hr", "emp_pkg")
	if err != nil {
		t.Fatalf("first EnsurePackageContext failed: %v", err)
	}
	pc2, err := p.EnsurePackageContext(context.Background(), "HR", "EMP_PKG")
	if err != nil {
		t.Fatalf("second EnsurePackageContext failed: %v", err)
	}
	if pc1 != pc2 {
		t.Fatalf("expected a case-insensitive cache hit to return the same *PackageContext")
	}
}

func TestEnsurePackageContextPropagatesFetchError(t *testing.T) {
	fetcher := &fakeFetcher{specErr: errors.New("boom")}
	p := NewPipeline(fetcher, nil)

	if _, err := p.EnsurePackageContext(context.Background(), "hr", "emp_pkg"); err == nil {
		t.Fatalf("expected fetch error to propagate")
	}
}

func TestHelperDDLNamingConvention(t *testing.T) {
	fetcher := &fakeFetcher{spec: emptySpec, body: emptyBody}
	p := NewPipeline(fetcher, nil)

	pc, err := p.EnsurePackageContext(context.Background(), "hr", "emp_pkg")
	if err != nil {
		t.Fatalf("EnsurePackageContext failed: %v", err)
	}

	stmts := HelperDDL(pc)
	joined := strings.Join(stmts, "\n")
	for _, want := range []string{
		"hr.emp_pkg__initialize()",
		"hr.emp_pkg__get_max_salary()",
		"hr.emp_pkg__set_max_salary(",
	} {
		if !strings.Contains(joined, want) {
			t.Errorf("expected HelperDDL output to contain %q, got:\n%s", want, joined)
		}
	}
}

func TestEnsurePackageContextToleratesNilApplier(t *testing.T) {
	fetcher := &fakeFetcher{spec: emptySpec, body: emptyBody}
	p := NewPipeline(fetcher, nil)
	if _, err := p.EnsurePackageContext(context.Background(), "hr", "emp_pkg"); err != nil {
		t.Fatalf("expected a nil applier to be tolerated, got: %v", err)
	}
}
