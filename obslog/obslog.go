// Package obslog provides structured logging for translation runs and
// catalog-load telemetry, adapted from the reference project's SPLogger
// family of slog-backed loggers (file/db/multi/nop backends) to this
// project's events: diagnostics, warnings, and package-context cache
// activity.
package obslog

import (
	"context"
	"log/slog"

	"github.com/orapgcore/oracore/diagnostics"
)

// Logger is the interface translation callers depend on.
type Logger interface {
	LogDiagnostic(ctx context.Context, unit string, d *diagnostics.Diagnostics)
	LogWarning(ctx context.Context, unit string, w diagnostics.Warning)
	LogCatalogLoad(ctx context.Context, tableCount, packageCount int)
	LogPackageContextBuilt(ctx context.Context, schema, pkg string, cacheHit bool)
}

// SlogLogger logs translation events using the standard log/slog package.
type SlogLogger struct {
	logger *slog.Logger
}

// NewSlogLogger constructs a logger over logger, or slog.Default() if nil.
func NewSlogLogger(logger *slog.Logger) *SlogLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogLogger{logger: logger}
}

func (l *SlogLogger) LogDiagnostic(ctx context.Context, unit string, d *diagnostics.Diagnostics) {
	l.logger.ErrorContext(ctx, "translation failed",
		slog.String("unit", unit),
		slog.String("kind", string(d.Kind)),
		slog.String("message", d.Message),
		slog.Int("line", d.Line),
		slog.Int("column", d.Column),
		slog.String("identifier", d.Identifier),
	)
}

func (l *SlogLogger) LogWarning(ctx context.Context, unit string, w diagnostics.Warning) {
	l.logger.WarnContext(ctx, "translation warning",
		slog.String("unit", unit),
		slog.String("message", w.Message),
		slog.Int("line", w.Line),
		slog.Int("column", w.Column),
		slog.String("identifier", w.Identifier),
	)
}

func (l *SlogLogger) LogCatalogLoad(ctx context.Context, tableCount, packageCount int) {
	l.logger.InfoContext(ctx, "catalog loaded",
		slog.Int("tables", tableCount),
		slog.Int("packages", packageCount),
	)
}

func (l *SlogLogger) LogPackageContextBuilt(ctx context.Context, schema, pkg string, cacheHit bool) {
	l.logger.DebugContext(ctx, "package context resolved",
		slog.String("schema", schema),
		slog.String("package", pkg),
		slog.Bool("cache_hit", cacheHit),
	)
}

// NopLogger discards every event; the default for library callers who don't
// want translation telemetry.
type NopLogger struct{}

func (NopLogger) LogDiagnostic(context.Context, string, *diagnostics.Diagnostics) {}
func (NopLogger) LogWarning(context.Context, string, diagnostics.Warning)        {}
func (NopLogger) LogCatalogLoad(context.Context, int, int)                       {}
func (NopLogger) LogPackageContextBuilt(context.Context, string, string, bool)   {}

// MultiLogger fans events out to several loggers, e.g. slog + a test spy.
type MultiLogger struct {
	Loggers []Logger
}

func (m MultiLogger) LogDiagnostic(ctx context.Context, unit string, d *diagnostics.Diagnostics) {
	for _, l := range m.Loggers {
		l.LogDiagnostic(ctx, unit, d)
	}
}

func (m MultiLogger) LogWarning(ctx context.Context, unit string, w diagnostics.Warning) {
	for _, l := range m.Loggers {
		l.LogWarning(ctx, unit, w)
	}
}

func (m MultiLogger) LogCatalogLoad(ctx context.Context, tableCount, packageCount int) {
	for _, l := range m.Loggers {
		l.LogCatalogLoad(ctx, tableCount, packageCount)
	}
}

func (m MultiLogger) LogPackageContextBuilt(ctx context.Context, schema, pkg string, cacheHit bool) {
	for _, l := range m.Loggers {
		l.LogPackageContextBuilt(ctx, schema, pkg, cacheHit)
	}
}
