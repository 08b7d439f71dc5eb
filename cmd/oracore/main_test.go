package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/orapgcore/oracore/diagnostics"
	"github.com/orapgcore/oracore/parser"
)

func TestSniffKindRecognizesEveryUnitKind(t *testing.T) {
	cases := map[string]parser.Kind{
		"CREATE VIEW emp AS SELECT 1 FROM DUAL":               parser.ViewSelect,
		"CREATE OR REPLACE FUNCTION f RETURN NUMBER IS BEGIN RETURN 1; END;": parser.StandaloneFunction,
		"CREATE PROCEDURE p IS BEGIN NULL; END;":              parser.StandaloneProcedure,
		"CREATE TRIGGER t BEFORE INSERT ON emp BEGIN NULL; END;": parser.TriggerBody,
		"CREATE PACKAGE pkg IS END;":                           parser.PackageSpec,
		"CREATE PACKAGE BODY pkg IS END;":                      parser.PackageBody,
		"CREATE TYPE BODY t IS END;":                           parser.TypeBody,
	}
	for src, want := range cases {
		got, err := sniffKind(src)
		if err != nil {
			t.Fatalf("sniffKind(%q) failed: %v", src, err)
		}
		if got != want {
			t.Errorf("sniffKind(%q) = %v, want %v", src, got, want)
		}
	}
}

func TestSniffKindRejectsBareSelect(t *testing.T) {
	if _, err := sniffKind("SELECT 1 FROM DUAL"); err == nil {
		t.Fatalf("expected a bare SELECT (no CREATE wrapper) to be rejected")
	}
}

func TestSniffKindRejectsUnknownKeyword(t *testing.T) {
	if _, err := sniffKind("CREATE INDEX idx ON t(c)"); err == nil {
		t.Fatalf("expected an unrecognized CREATE target to be rejected")
	}
}

func TestValidateFlagsRequiresCatalogAndSchema(t *testing.T) {
	if err := validateFlags("a.sql", "", false, "", "", "", "hr"); err == nil {
		t.Fatalf("expected missing --catalog to be rejected")
	}
	if err := validateFlags("a.sql", "", false, "", "", "cat.json", ""); err == nil {
		t.Fatalf("expected missing --schema to be rejected")
	}
	if err := validateFlags("a.sql", "", false, "", "", "cat.json", "hr"); err != nil {
		t.Fatalf("expected a valid single-file invocation to pass, got: %v", err)
	}
}

func TestValidateFlagsRejectsConflictingInputModes(t *testing.T) {
	if err := validateFlags("a.sql", "dir", false, "", "", "cat.json", "hr"); err == nil {
		t.Fatalf("expected file + --dir to be rejected")
	}
}

func TestValidateFlagsRejectsOutdirWithoutDir(t *testing.T) {
	if err := validateFlags("a.sql", "", false, "", "out", "cat.json", "hr"); err == nil {
		t.Fatalf("expected --outdir without --dir to be rejected")
	}
}

func TestValidateFlagsRejectsOutputAndOutdirTogether(t *testing.T) {
	if err := validateFlags("", "dir", false, "o.sql", "outdir", "cat.json", "hr"); err == nil {
		t.Fatalf("expected --output and --outdir together to be rejected")
	}
}

func TestAnnotateOutputNoneLevelPassesThroughUnchanged(t *testing.T) {
	sql := "SELECT 1;"
	warnings := []diagnostics.Warning{{Message: "dropped something"}}
	if got := annotateOutput("none", warnings, sql); got != sql {
		t.Errorf("annotateOutput(none) = %q, want unchanged %q", got, sql)
	}
	if got := annotateOutput("", nil, sql); got != sql {
		t.Errorf("annotateOutput(no warnings) = %q, want unchanged %q", got, sql)
	}
}

func TestAnnotateOutputStandardLevelPrependsComments(t *testing.T) {
	sql := "SELECT 1;"
	warnings := []diagnostics.Warning{{Message: "FOLLOWS dropped", Line: 3, Column: 1}}
	got := annotateOutput("standard", warnings, sql)
	if !strings.Contains(got, "FOLLOWS dropped") || !strings.HasSuffix(got, sql) {
		t.Errorf("annotateOutput(standard) = %q", got)
	}
}

func TestAnnotateOutputVerboseIncludesPosition(t *testing.T) {
	sql := "SELECT 1;"
	warnings := []diagnostics.Warning{{Message: "m", Line: 3, Column: 7, Identifier: "x"}}
	got := annotateOutput("verbose", warnings, sql)
	if !strings.Contains(got, "3:7") {
		t.Errorf("annotateOutput(verbose) missing position, got %q", got)
	}
}

func TestDirFetcherFailsWithoutPackageDir(t *testing.T) {
	f := dirFetcher{}
	if _, err := f.read("hr", "emp_pkg", "pks"); err == nil {
		t.Fatalf("expected a fetch with no --package-dir configured to fail")
	}
}

func TestDirFetcherReadsLowercasedFilename(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hr.emp_pkg.pks")
	if err := os.WriteFile(path, []byte("CREATE PACKAGE emp_pkg IS END;"), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}
	f := dirFetcher{dir: dir}
	got, err := f.read("HR", "Emp_Pkg", "pks")
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if !strings.Contains(got, "CREATE PACKAGE") {
		t.Errorf("unexpected contents: %q", got)
	}
}

const fixtureCatalog = `{
	"tables": [
		{"schema": "HR", "name": "EMPLOYEES", "columns": [
			{"name": "NAME", "oracle_type": "VARCHAR2"},
			{"name": "DEPT_ID", "oracle_type": "NUMBER"}
		]}
	]
}`

func TestRunTranslatesSingleFileToStdout(t *testing.T) {
	dir := t.TempDir()
	catPath := filepath.Join(dir, "cat.json")
	if err := os.WriteFile(catPath, []byte(fixtureCatalog), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}
	sqlPath := filepath.Join(dir, "v.sql")
	if err := os.WriteFile(sqlPath, []byte("CREATE VIEW emp_names AS SELECT name FROM employees"), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}

	var stdout, stderr bytes.Buffer
	code := run([]string{"--catalog", catPath, "--schema", "hr", sqlPath}, nil, &stdout, &stderr)
	if code != 0 {
		t.Fatalf("run() = %d, stderr: %s", code, stderr.String())
	}
	if !strings.Contains(stdout.String(), "CREATE OR REPLACE VIEW") {
		t.Errorf("expected translated view SQL on stdout, got: %s", stdout.String())
	}
}

func TestRunReportsUsageErrorOnMissingCatalog(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run([]string{"--schema", "hr", "missing.sql"}, nil, &stdout, &stderr)
	if code != 2 {
		t.Fatalf("run() without --catalog = %d, want 2", code)
	}
}

func TestRunShowsUsageWithNoInputMode(t *testing.T) {
	dir := t.TempDir()
	catPath := filepath.Join(dir, "cat.json")
	os.WriteFile(catPath, []byte(fixtureCatalog), 0o644)

	var stdout, stderr bytes.Buffer
	code := run([]string{"--catalog", catPath, "--schema", "hr"}, nil, &stdout, &stderr)
	if code != 0 {
		t.Fatalf("run() with no input mode = %d, want 0 (usage banner)", code)
	}
	if !strings.Contains(stdout.String(), "Usage:") {
		t.Errorf("expected usage banner on stdout, got: %s", stdout.String())
	}
}
