//go:build !postgres

package pgapply

import "context"

// Applier is the stub pkgctx.DDLApplier used when the binary is built
// without the "postgres" tag. ApplyDDL fails with ErrPostgresNotAvailable
// so callers get a clear, immediate error instead of a nil-pointer panic
// when they wire a real DDLApplier into pkgctx.NewPipeline without the
// matching build tag; Close returns nil.
type Applier struct {
	DSN string
}

// New constructs a stub Applier. dsn is recorded but unused.
func New(dsn string) *Applier {
	return &Applier{DSN: dsn}
}

func (a *Applier) ApplyDDL(ctx context.Context, stmt string) error {
	return ErrPostgresNotAvailable
}

func (a *Applier) Close() error { return nil }
