package segment

import (
	"strings"
	"testing"
)

func TestScanTwoMembers(t *testing.T) {
	src := "FUNCTION foo(x NUMBER) RETURN NUMBER IS BEGIN RETURN x; END; " +
		"PROCEDURE bar IS BEGIN NULL; END;"

	members, err := Scan(src)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if len(members) != 2 {
		t.Fatalf("expected 2 members, got %d: %+v", len(members), members)
	}

	if members[0].Name != "foo" || members[0].Kind != "FUNCTION" {
		t.Errorf("member 0 = %+v, want Name=foo Kind=FUNCTION", members[0])
	}
	if members[1].Name != "bar" || members[1].Kind != "PROCEDURE" {
		t.Errorf("member 1 = %+v, want Name=bar Kind=PROCEDURE", members[1])
	}

	procIdx := strings.Index(src, "PROCEDURE")
	if members[0].EndOffset != procIdx {
		t.Errorf("member foo EndOffset = %d, want %d (start of PROCEDURE)", members[0].EndOffset, procIdx)
	}
	if members[1].EndOffset != len(src) {
		t.Errorf("member bar EndOffset = %d, want %d (end of input)", members[1].EndOffset, len(src))
	}
}

func TestScanIgnoresKeywordsInsideStringLiterals(t *testing.T) {
	src := "FUNCTION foo RETURN VARCHAR2 IS BEGIN RETURN 'end of function, not really'; END;"
	members, err := Scan(src)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if len(members) != 1 || members[0].Name != "foo" {
		t.Fatalf("expected a single member foo, got %+v", members)
	}
}

func TestScanUnbalancedNestingFails(t *testing.T) {
	src := "FUNCTION foo RETURN NUMBER IS BEGIN RETURN 1;"
	_, err := Scan(src)
	if err == nil {
		t.Fatalf("expected unbalanced BEGIN/END to fail segmentation")
	}
	if err.Kind != "SegmentationFailed" {
		t.Errorf("expected SegmentationFailed, got %v", err.Kind)
	}
}

func TestScanUnterminatedBlockCommentFails(t *testing.T) {
	src := "FUNCTION foo RETURN NUMBER IS /* never closed BEGIN RETURN 1; END;"
	_, err := Scan(src)
	if err == nil {
		t.Fatalf("expected unterminated block comment to fail segmentation")
	}
}

func TestScanNoMembers(t *testing.T) {
	members, err := Scan("-- just a comment, no members here\n")
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if len(members) != 0 {
		t.Errorf("expected no members, got %+v", members)
	}
}
