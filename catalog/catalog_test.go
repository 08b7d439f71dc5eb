package catalog

import "testing"

func TestLookupTableCaseInsensitive(t *testing.T) {
	c := New()
	c.AddTable(&Table{
		Schema: "HR",
		Name:   "EMPLOYEES",
		Columns: []Column{
			{Name: "EMPLOYEE_ID", OracleType: "NUMBER"},
			{Name: "HIRE_DATE", OracleType: "DATE"},
		},
	})

	if _, ok := c.LookupTable("hr", "employees"); !ok {
		t.Fatalf("expected case-insensitive lookup to find hr.employees")
	}
	if _, ok := c.LookupTable("hr", "departments"); ok {
		t.Fatalf("expected lookup of unknown table to fail")
	}
}

func TestColumnType(t *testing.T) {
	c := New()
	c.AddTable(&Table{
		Schema:  "HR",
		Name:    "EMPLOYEES",
		Columns: []Column{{Name: "SALARY", OracleType: "NUMBER"}},
	})

	got, ok := c.ColumnType("HR", "EMPLOYEES", "salary")
	if !ok || got != "NUMBER" {
		t.Fatalf("ColumnType(HR.EMPLOYEES.salary) = (%q, %v), want (NUMBER, true)", got, ok)
	}
	if _, ok := c.ColumnType("HR", "EMPLOYEES", "nonexistent"); ok {
		t.Fatalf("expected ColumnType lookup of unknown column to fail")
	}
}

func TestResolveSynonymPrefersCurrentSchemaOverPublic(t *testing.T) {
	c := New()
	c.AddSynonym("HR", "EMP", ObjectRef{Schema: "HR", Object: "EMPLOYEES"})
	c.AddSynonym("PUBLIC", "EMP", ObjectRef{Schema: "OTHER", Object: "EMPLOYEES_VIEW"})

	ref, ok := c.ResolveSynonym("HR", "EMP")
	if !ok || ref.Schema != "HR" || ref.Object != "EMPLOYEES" {
		t.Fatalf("ResolveSynonym should prefer schema-local synonym, got %+v", ref)
	}

	ref, ok = c.ResolveSynonym("FIN", "EMP")
	if !ok || ref.Schema != "OTHER" {
		t.Fatalf("ResolveSynonym should fall back to PUBLIC, got %+v, ok=%v", ref, ok)
	}

	if _, ok := c.ResolveSynonym("FIN", "NOPE"); ok {
		t.Fatalf("expected no synonym to resolve for an unknown name")
	}
}

func TestLoadFromJSON(t *testing.T) {
	data := []byte(`{
		"tables": [
			{"schema": "HR", "name": "EMPLOYEES", "columns": [
				{"name": "ID", "oracle_type": "NUMBER", "nullable": false}
			]}
		],
		"packages": [
			{
				"schema": "HR", "name": "EMP_PKG",
				"functions": [{"name": "GET_NAME", "return_type": "VARCHAR2", "parameters": []}],
				"variables": {"MAX_SALARY": "NUMBER"},
				"defaults": {"MAX_SALARY": "100000.50"}
			}
		],
		"synonyms": [
			{"schema": "PUBLIC", "name": "EMP", "target_schema": "HR", "target_object": "EMPLOYEES"}
		]
	}`)

	c, err := LoadFromJSON(data)
	if err != nil {
		t.Fatalf("LoadFromJSON failed: %v", err)
	}

	if _, ok := c.LookupTable("HR", "EMPLOYEES"); !ok {
		t.Errorf("expected HR.EMPLOYEES to load")
	}

	pkg, ok := c.LookupPackage("HR", "EMP_PKG")
	if !ok {
		t.Fatalf("expected HR.EMP_PKG to load")
	}
	if _, ok := pkg.FunctionSignatures["get_name"]; !ok {
		t.Errorf("expected get_name function signature to be indexed lower-cased")
	}
	lit, ok := pkg.DefaultLiterals["max_salary"]
	if !ok || lit.String() != "100000.5" {
		t.Errorf("expected exact decimal default literal 100000.5, got %v (ok=%v)", lit, ok)
	}

	if _, ok := c.ResolveSynonym("ANY", "EMP"); !ok {
		t.Errorf("expected PUBLIC.EMP synonym to resolve")
	}
}

func TestLoadFromJSONRejectsInvalidDefaultLiteral(t *testing.T) {
	data := []byte(`{"packages":[{"schema":"HR","name":"P","defaults":{"X":"not-a-number"}}]}`)
	if _, err := LoadFromJSON(data); err == nil {
		t.Fatalf("expected an error for a non-numeric default literal")
	}
}
