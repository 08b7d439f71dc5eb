// Package translator implements the Expression & Statement Translators (C4):
// the syntax-directed visitors that render an Oracle PL/SQL AST as
// PostgreSQL PL/pgSQL text, delegating Oracle-specific rewrites to package
// oracleisms and type resolution to package typeeval (spec §4.4).
package translator

import (
	"context"
	"fmt"
	"strings"

	"github.com/orapgcore/oracore/ast"
	"github.com/orapgcore/oracore/catalog"
	"github.com/orapgcore/oracore/dialect"
	"github.com/orapgcore/oracore/diagnostics"
	"github.com/orapgcore/oracore/oracleisms"
	pgquery "github.com/pganalyze/pg_query_go/v5"
	"github.com/orapgcore/oracore/pkgctx"
	"github.com/orapgcore/oracore/typeeval"
	"github.com/orapgcore/oracore/xformctx"
)

// Translator holds the state for one translation run: a fresh Context and
// Evaluator per spec §4.3/§4.6 ("construct one per translation").
type Translator struct {
	Catalog  *catalog.Catalog
	Ctx      *xformctx.Context
	Eval     *typeeval.Evaluator
	Pipeline *pkgctx.Pipeline // stored as given; no renderer reads it
	Dialect  dialect.Postgres

	goCtx    context.Context
	warnings []diagnostics.Warning
}

// New constructs a Translator for one translation unit owned by
// currentSchema. pipeline may be nil; goCtx and pipeline are stored on the
// Translator and not consulted during translation.
func New(goCtx context.Context, cat *catalog.Catalog, currentSchema string, pipeline *pkgctx.Pipeline) *Translator {
	return &Translator{
		Catalog:  cat,
		Ctx:      xformctx.New(currentSchema, cat),
		Eval:     typeeval.New(cat, currentSchema),
		Pipeline: pipeline,
		goCtx:    goCtx,
	}
}

func (t *Translator) warn(pos ast.Pos, identifier, format string, args ...interface{}) {
	t.warnings = append(t.warnings, diagnostics.Warning{
		Message:    fmt.Sprintf(format, args...),
		Line:       pos.Line,
		Column:     pos.Column,
		Identifier: identifier,
	})
}

func (t *Translator) fail(kind diagnostics.Kind, pos ast.Pos, identifier, format string, args ...interface{}) *diagnostics.Diagnostics {
	return diagnostics.New(kind, pos.Line, pos.Column, identifier, format, args...)
}

// qualify prefixes an unqualified table/object name with currentSchema, per
// §4.4 ("all identifiers on table positions prefixed with currentSchema when
// unqualified").
func (t *Translator) qualify(schema, name string) string {
	if schema == "" {
		schema = t.Ctx.CurrentSchema()
	}
	return t.Dialect.QuoteIdentifier(schema) + "." + t.Dialect.QuoteIdentifier(name)
}

// TranslateView renders a CREATE VIEW statement (spec §2: view/source-level
// translation unit kind ViewSelect).
func (t *Translator) TranslateView(v *ast.CreateViewStatement) (string, *diagnostics.Diagnostics, []diagnostics.Warning) {
	if v.Schema != "" {
		t.Ctx.SetCurrentFunction("")
	}
	selSQL, err := t.translateSelect(v.Select)
	if err != nil {
		return "", err, t.warnings
	}
	out := fmt.Sprintf("CREATE OR REPLACE VIEW %s AS\n%s;", t.qualify(v.Schema, v.Name), selSQL)
	return out, nil, t.warnings
}

// TranslateFunction renders a standalone or package-body function.
func (t *Translator) TranslateFunction(fn *ast.CreateFunctionStatement, pkg string) (string, *diagnostics.Diagnostics, []diagnostics.Warning) {
	t.Ctx.SetCurrentPackage(pkg)
	name := fn.Name
	if pkg != "" {
		name = strings.ToLower(pkg) + "__" + strings.ToLower(fn.Name)
	}
	t.Ctx.SetCurrentFunction(name)

	params := t.translateParams(fn.Parameters)
	retType := t.Dialect.MapType(fn.ReturnType.Name, fn.ReturnType.Precision, fn.ReturnType.Scale, fn.ReturnType.Length, fn.ReturnType.HasLength)

	body, err := t.translateSubprogramBody(fn.Body, fn.Schema, pkg)
	if err != nil {
		return "", err, t.warnings
	}

	out := fmt.Sprintf("CREATE OR REPLACE FUNCTION %s(%s) RETURNS %s AS $$\n%s\n$$ LANGUAGE plpgsql;",
		t.qualify(fn.Schema, name), params, retType, body)
	return out, nil, t.warnings
}

// TranslateProcedure renders a standalone or package-body procedure.
func (t *Translator) TranslateProcedure(proc *ast.CreateProcedureStatement, pkg string) (string, *diagnostics.Diagnostics, []diagnostics.Warning) {
	t.Ctx.SetCurrentPackage(pkg)
	name := proc.Name
	if pkg != "" {
		name = strings.ToLower(pkg) + "__" + strings.ToLower(proc.Name)
	}
	t.Ctx.SetCurrentFunction(name)

	params := t.translateParams(proc.Parameters)
	body, err := t.translateSubprogramBody(proc.Body, proc.Schema, pkg)
	if err != nil {
		return "", err, t.warnings
	}

	out := fmt.Sprintf("CREATE OR REPLACE PROCEDURE %s(%s) AS $$\n%s\n$$ LANGUAGE plpgsql;",
		t.qualify(proc.Schema, name), params, body)
	return out, nil, t.warnings
}

// TranslateTriggerBody renders a CREATE TRIGGER ... body, rewriting :NEW/:OLD
// to NEW/OLD (§4.4) and dropping FOLLOWS with a warning (§4.5, §4.9).
func (t *Translator) TranslateTriggerBody(trg *ast.CreateTriggerStatement) (string, *diagnostics.Diagnostics, []diagnostics.Warning) {
	t.Ctx.SetCurrentFunction(strings.ToLower(trg.Name) + "__fn")

	if trg.Follows != "" {
		t.warn(trg.Pos, trg.Follows, "FOLLOWS %s dropped: PL/pgSQL triggers have no equivalent ordering clause", trg.Follows)
	}

	if !trg.ForEachRow && trg.Body != nil {
		var ref *ast.BindVar
		oracleisms.WalkStatements([]ast.Statement{trg.Body}, func(e ast.Expression) {
			if bv, ok := e.(*ast.BindVar); ok && ref == nil && (strings.EqualFold(bv.Name, "NEW") || strings.EqualFold(bv.Name, "OLD")) {
				ref = bv
			}
		}, nil)
		if ref != nil {
			return "", t.fail(diagnostics.UnsupportedFeature, ref.Pos, ":"+strings.ToUpper(ref.Name), "statement-level trigger reads :%s; PostgreSQL needs REFERENCING transition tables for this", strings.ToUpper(ref.Name)), t.warnings
		}
	}

	body, err := t.translateBlock(trg.Body)
	if err != nil {
		return "", err, t.warnings
	}

	fnName := strings.ToLower(trg.Name) + "__fn"
	var sb strings.Builder
	fmt.Fprintf(&sb, "CREATE OR REPLACE FUNCTION %s() RETURNS trigger AS $$\n%s\nRETURN NEW;\n$$ LANGUAGE plpgsql;\n\n", t.qualify(trg.Schema, fnName), body)

	timing := strings.ToUpper(strings.ReplaceAll(trg.Timing, "_", " "))
	events := strings.Join(trg.Events, " OR ")
	forEach := ""
	if trg.ForEachRow {
		forEach = " FOR EACH ROW"
	}
	fmt.Fprintf(&sb, "CREATE OR REPLACE TRIGGER %s %s %s ON %s%s EXECUTE FUNCTION %s();",
		strings.ToLower(trg.Name), timing, events, t.qualify(trg.Table.Schema, trg.Table.Name), forEach, t.qualify(trg.Schema, fnName))

	return sb.String(), nil, t.warnings
}

// translateSubprogramBody wraps a function/procedure body with the package
// initializer call (§4.5.4) when pkg is non-empty.
func (t *Translator) translateSubprogramBody(body *ast.Block, schema, pkg string) (string, *diagnostics.Diagnostics) {
	var prelude []string
	if pkg != "" {
		if schema == "" {
			schema = t.Ctx.CurrentSchema()
		}
		prelude = append(prelude, "PERFORM "+schema+"."+strings.ToLower(pkg)+"__initialize();")
	}
	return t.translateBlockWithPrelude(body, prelude)
}

func (t *Translator) translateParams(params []ast.ParameterDef) string {
	parts := make([]string, len(params))
	for i, p := range params {
		mode := ""
		switch p.Mode {
		case "OUT":
			mode = "OUT "
		case "IN OUT":
			mode = "INOUT "
		}
		pgType := t.Dialect.MapType(p.DataType.Name, p.DataType.Precision, p.DataType.Scale, p.DataType.Length, p.DataType.HasLength)
		parts[i] = fmt.Sprintf("%s%s %s", mode, p.Name, pgType)
	}
	return strings.Join(parts, ", ")
}

// Validate parses sql with pg_query_go to catch malformed translator output
// before it reaches a caller (SPEC_FULL.md §4.11; spec §8 invariant 4).
func Validate(sql string) error {
	_, err := pgquery.Parse(sql)
	return err
}
