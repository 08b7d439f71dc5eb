//go:build !postgres

package pgapply

import (
	"context"
	"errors"
	"testing"
)

func TestApplierWithoutPostgresTagReturnsSentinelError(t *testing.T) {
	a := New("postgres://localhost/test")
	if err := a.ApplyDDL(context.Background(), "SELECT 1"); !errors.Is(err, ErrPostgresNotAvailable) {
		t.Fatalf("ApplyDDL without the postgres build tag = %v, want ErrPostgresNotAvailable", err)
	}
	if err := a.Close(); err != nil {
		t.Fatalf("Close() = %v, want nil", err)
	}
}
