// Package pgapply is the core's reference implementation of
// pkgctx.DDLApplier (spec §6, "applyDdl"): applying the session-state
// helper DDL that pkgctx.HelperDDL generates to a live PostgreSQL target.
// It is environment-facing, out of the core translation contract, and
// build-tag-gated: a real pgx/v5-backed
// applier behind the "postgres" build tag, and a stub returning a sentinel
// error otherwise, so the rest of the module never requires a live
// database to compile or run its translation path.
package pgapply

import "errors"

// ErrPostgresNotAvailable is returned by Applier.ApplyDDL when the binary
// was built without the "postgres" tag.
var ErrPostgresNotAvailable = errors.New("pgapply: postgres adapter not available: build with the postgres tag")
