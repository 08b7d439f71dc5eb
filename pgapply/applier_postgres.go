//go:build postgres

package pgapply

import (
	"context"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Applier is a pkgctx.DDLApplier backed by a lazily-opened pgx/v5 pool. One
// Applier is shared across every EnsurePackageContext call within a job;
// the pool is opened on first use and closed by the caller via Close.
type Applier struct {
	DSN string

	mu   sync.Mutex
	pool *pgxpool.Pool
}

// New constructs an Applier over dsn. The connection pool is not opened
// until the first ApplyDDL call.
func New(dsn string) *Applier {
	return &Applier{DSN: dsn}
}

func (a *Applier) ensurePool(ctx context.Context) (*pgxpool.Pool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.pool != nil {
		return a.pool, nil
	}
	pool, err := pgxpool.New(ctx, a.DSN)
	if err != nil {
		return nil, fmt.Errorf("pgapply: open pool: %w", err)
	}
	a.pool = pool
	return pool, nil
}

// ApplyDDL executes stmt against the pool, wrapped in its own implicit
// transaction (helper DDL is idempotent CREATE OR REPLACE text, per
// pkgctx.HelperDDL, so no explicit transaction management is needed here).
func (a *Applier) ApplyDDL(ctx context.Context, stmt string) error {
	pool, err := a.ensurePool(ctx)
	if err != nil {
		return err
	}
	if _, err := pool.Exec(ctx, stmt); err != nil {
		return fmt.Errorf("pgapply: exec DDL: %w", err)
	}
	return nil
}

// Close releases the pool, if one was opened.
func (a *Applier) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.pool != nil {
		a.pool.Close()
		a.pool = nil
	}
	return nil
}
