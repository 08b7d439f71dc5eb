package obslog

import (
	"context"
	"testing"

	"github.com/orapgcore/oracore/diagnostics"
)

type spyLogger struct {
	diagnostics int
	warnings    int
	catalogLoad int
	pkgBuilt    int
}

func (s *spyLogger) LogDiagnostic(context.Context, string, *diagnostics.Diagnostics) { s.diagnostics++ }
func (s *spyLogger) LogWarning(context.Context, string, diagnostics.Warning)         { s.warnings++ }
func (s *spyLogger) LogCatalogLoad(context.Context, int, int)                        { s.catalogLoad++ }
func (s *spyLogger) LogPackageContextBuilt(context.Context, string, string, bool)     { s.pkgBuilt++ }

func TestMultiLoggerFansOutToEveryLogger(t *testing.T) {
	a, b := &spyLogger{}, &spyLogger{}
	m := MultiLogger{Loggers: []Logger{a, b}}
	ctx := context.Background()

	m.LogWarning(ctx, "unit", diagnostics.Warning{Message: "m"})
	m.LogCatalogLoad(ctx, 3, 1)
	m.LogPackageContextBuilt(ctx, "hr", "emp_pkg", true)
	m.LogDiagnostic(ctx, "unit", diagnostics.New(diagnostics.UnsupportedFeature, 1, 1, "", "nope"))

	for name, s := range map[string]*spyLogger{"a": a, "b": b} {
		if s.warnings != 1 || s.catalogLoad != 1 || s.pkgBuilt != 1 || s.diagnostics != 1 {
			t.Errorf("logger %s received %+v, want one of each event", name, s)
		}
	}
}

func TestNopLoggerDiscardsEverything(t *testing.T) {
	var n NopLogger
	ctx := context.Background()
	n.LogWarning(ctx, "unit", diagnostics.Warning{Message: "m"})
	n.LogCatalogLoad(ctx, 1, 1)
	n.LogPackageContextBuilt(ctx, "hr", "emp_pkg", false)
	n.LogDiagnostic(ctx, "unit", diagnostics.New(diagnostics.UnsupportedFeature, 1, 1, "", "nope"))
}

func TestNewSlogLoggerDefaultsWhenNilLoggerGiven(t *testing.T) {
	l := NewSlogLogger(nil)
	if l == nil {
		t.Fatalf("expected NewSlogLogger(nil) to construct a usable logger")
	}
	l.LogCatalogLoad(context.Background(), 2, 0)
}
