package dialect

import "testing"

func TestMapTypeNumber(t *testing.T) {
	var d Postgres
	cases := []struct {
		name                          string
		precision, scale, length      int
		hasLength                     bool
		want                          string
	}{
		{"bare NUMBER", 0, 0, 0, false, "NUMERIC"},
		{"NUMBER with scale", 10, 2, 0, false, "NUMERIC(10,2)"},
		{"NUMBER precision only", 5, 0, 0, false, "NUMERIC(5)"},
	}
	for _, c := range cases {
		got := d.MapType("NUMBER", c.precision, c.scale, c.length, c.hasLength)
		if got != c.want {
			t.Errorf("%s: MapType(NUMBER) = %q, want %q", c.name, got, c.want)
		}
	}
}

func TestMapTypeVarchar2(t *testing.T) {
	var d Postgres
	if got := d.MapType("VARCHAR2", 0, 0, 50, true); got != "VARCHAR(50)" {
		t.Errorf("MapType(VARCHAR2, 50) = %q, want VARCHAR(50)", got)
	}
	if got := d.MapType("VARCHAR2", 0, 0, 0, false); got != "VARCHAR" {
		t.Errorf("MapType(VARCHAR2, unsized) = %q, want VARCHAR", got)
	}
}

func TestMapTypeDateIsTimestamp(t *testing.T) {
	var d Postgres
	if got := d.MapType("DATE", 0, 0, 0, false); got != "TIMESTAMP" {
		t.Errorf("MapType(DATE) = %q, want TIMESTAMP", got)
	}
}

func TestMapTypeUnknownPassesThroughLowercased(t *testing.T) {
	var d Postgres
	if got := d.MapType("XMLTYPE", 0, 0, 0, false); got != "xmltype" {
		t.Errorf("MapType(XMLTYPE) = %q, want xmltype", got)
	}
}

func TestTypeDefault(t *testing.T) {
	var d Postgres
	cases := map[string]string{
		"NUMERIC(10,2)": "0",
		"INTEGER":       "0",
		"BOOLEAN":       "FALSE",
		"TIMESTAMP":     "CURRENT_TIMESTAMP",
		"VARCHAR(50)":   "''",
	}
	for pgType, want := range cases {
		if got := d.TypeDefault(pgType); got != want {
			t.Errorf("TypeDefault(%s) = %q, want %q", pgType, got, want)
		}
	}
}

func TestQuoteIdentifier(t *testing.T) {
	var d Postgres
	if got := d.QuoteIdentifier("Orders"); got != `"Orders"` {
		t.Errorf("QuoteIdentifier = %q, want \"Orders\"", got)
	}
}

func TestBooleanLiteral(t *testing.T) {
	var d Postgres
	if d.BooleanLiteral(true) != "TRUE" || d.BooleanLiteral(false) != "FALSE" {
		t.Errorf("BooleanLiteral mismatch")
	}
}

func TestLimitClause(t *testing.T) {
	var d Postgres
	if got := d.LimitClause(0); got != "LIMIT 0" {
		t.Errorf("LimitClause(0) = %q, want LIMIT 0", got)
	}
}

func TestIsDateLike(t *testing.T) {
	cases := map[string]bool{
		"hire_date":  true,
		"created_at": true,
		"start_time": true,
		"salary":     false,
		"name":       false,
	}
	for id, want := range cases {
		if got := IsDateLike(id); got != want {
			t.Errorf("IsDateLike(%q) = %v, want %v", id, got, want)
		}
	}
}
