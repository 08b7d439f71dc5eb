// Package pkgctx implements the Package Context Pipeline (C7): on-demand
// parse of a package spec + body, extraction of package-level variables and
// inline types, and generation of session-scoped getter/setter/initializer
// DDL. The cache this package builds is per-job, never global (spec §4.7).
package pkgctx

import (
	"context"
	"fmt"
	"strings"

	"github.com/orapgcore/oracore/ast"
	"github.com/orapgcore/oracore/dialect"
	"github.com/orapgcore/oracore/parser"
	"github.com/orapgcore/oracore/xformctx"
)

// SourceFetcher is the environment collaborator C7 uses to retrieve package
// source text (spec §6, out of scope for the core: Oracle data-dictionary
// extraction).
type SourceFetcher interface {
	FetchPackageSpec(ctx context.Context, schema, name string) (string, error)
	FetchPackageBody(ctx context.Context, schema, name string) (string, error)
}

// DDLApplier is the environment collaborator that applies generated helper
// DDL to a live target (spec §6: applyDdl). The core's own pgapply package
// provides a reference implementation behind a build tag; it is not part of
// the core's dependency surface.
type DDLApplier interface {
	ApplyDDL(ctx context.Context, stmt string) error
}

// VarEntry describes one package-level variable, public or private.
type VarEntry struct {
	OracleType      string
	PostgresType    string
	DefaultExpr     ast.Expression
	IsConstant      bool
	DeclaredIn      string // SPEC, BODY
}

// PackageContext is the ephemeral (one-job-lifetime) state C7 builds for a
// single schema.package (spec §3.4).
type PackageContext struct {
	schema      string
	packageName string

	variables   map[string]VarEntry
	inlineTypes map[string]xformctx.InlineTypeDefinition

	helpersGenerated bool
}

func (pc *PackageContext) Schema() string      { return pc.schema }
func (pc *PackageContext) PackageName() string { return pc.packageName }

func (pc *PackageContext) VariableType(name string) (string, bool) {
	v, ok := pc.variables[strings.ToLower(name)]
	if !ok {
		return "", false
	}
	return v.OracleType, true
}

func (pc *PackageContext) IsConstant(name string) bool {
	v, ok := pc.variables[strings.ToLower(name)]
	return ok && v.IsConstant
}

func (pc *PackageContext) InlineType(name string) (xformctx.InlineTypeDefinition, bool) {
	d, ok := pc.inlineTypes[strings.ToLower(name)]
	return d, ok
}

// Variables exposes the full variable map for helper-DDL generation.
func (pc *PackageContext) Variables() map[string]VarEntry { return pc.variables }

// Pipeline implements EnsurePackageContext: fetch, parse, extract, emit
// helper DDL, cache — all scoped to one job.
type Pipeline struct {
	fetcher SourceFetcher
	applier DDLApplier
	cache   map[string]*PackageContext // per-job cache, never shared across jobs
}

// NewPipeline constructs a Pipeline for a single translation job. Callers
// must construct a fresh Pipeline per job; the cache is not safe to reuse
// across jobs (spec §4.7: "per-job, not global").
func NewPipeline(fetcher SourceFetcher, applier DDLApplier) *Pipeline {
	return &Pipeline{fetcher: fetcher, applier: applier, cache: make(map[string]*PackageContext)}
}

func cacheKey(schema, name string) string {
	return strings.ToLower(schema) + "." + strings.ToLower(name)
}

// EnsurePackageContext returns the cached PackageContext for (schema, name),
// building it on first use per spec §4.7 steps 1-6.
func (p *Pipeline) EnsurePackageContext(ctx context.Context, schema, name string) (*PackageContext, error) {
	key := cacheKey(schema, name)
	if pc, ok := p.cache[key]; ok {
		return pc, nil
	}

	pc := &PackageContext{
		schema:      schema,
		packageName: name,
		variables:   make(map[string]VarEntry),
		inlineTypes: make(map[string]xformctx.InlineTypeDefinition),
	}

	specSrc, err := p.fetcher.FetchPackageSpec(ctx, schema, name)
	if err != nil {
		return nil, fmt.Errorf("pkgctx: fetch spec %s.%s: %w", schema, name, err)
	}
	specProg, errs := parser.Parse(specSrc, parser.PackageSpec)
	if len(errs) > 0 {
		return nil, fmt.Errorf("pkgctx: parse spec %s.%s: %v", schema, name, errs)
	}
	if len(specProg.Units) > 0 {
		if spec, ok := specProg.Units[0].(*ast.CreatePackageStatement); ok {
			mergeSpecMembers(pc, spec)
		}
	}

	bodySrc, err := p.fetcher.FetchPackageBody(ctx, schema, name)
	if err != nil {
		return nil, fmt.Errorf("pkgctx: fetch body %s.%s: %w", schema, name, err)
	}
	bodyProg, errs := parser.Parse(bodySrc, parser.PackageBody)
	if len(errs) > 0 {
		return nil, fmt.Errorf("pkgctx: parse body %s.%s: %v", schema, name, errs)
	}
	if len(bodyProg.Units) > 0 {
		if body, ok := bodyProg.Units[0].(*ast.CreatePackageBodyStatement); ok {
			mergeBodyMembers(pc, body)
		}
	}

	if p.applier != nil {
		for _, stmt := range HelperDDL(pc) {
			if err := p.applier.ApplyDDL(ctx, stmt); err != nil {
				return nil, fmt.Errorf("pkgctx: apply helper DDL for %s.%s: %w", schema, name, err)
			}
		}
		pc.helpersGenerated = true
	}

	p.cache[key] = pc
	return pc, nil
}

func mergeSpecMembers(pc *PackageContext, spec *ast.CreatePackageStatement) {
	for _, m := range spec.Members {
		switch m.Kind {
		case "VARIABLE":
			pc.variables[strings.ToLower(m.Name)] = VarEntry{
				OracleType:   typeName(m.VarType),
				PostgresType: dialect.Postgres{}.MapType(typeName(m.VarType), m.VarType.Precision, m.VarType.Scale, m.VarType.Length, m.VarType.HasLength),
				DefaultExpr:  m.VarDefault,
				IsConstant:   m.VarConstant,
				DeclaredIn:   "SPEC",
			}
		case "TYPE":
			if m.TypeDecl != nil {
				pc.inlineTypes[strings.ToLower(m.Name)] = inlineTypeFromDecl(m.TypeDecl)
			}
		}
	}
}

func mergeBodyMembers(pc *PackageContext, body *ast.CreatePackageBodyStatement) {
	for _, m := range body.Members {
		switch m.Kind {
		case "VARIABLE":
			if m.VarDecl == nil {
				continue
			}
			name := strings.ToLower(m.VarDecl.Name)
			if _, exists := pc.variables[name]; exists {
				continue // already declared in spec
			}
			pc.variables[name] = VarEntry{
				OracleType:   typeName(m.VarDecl.DataType),
				PostgresType: dialect.Postgres{}.MapType(typeName(m.VarDecl.DataType), m.VarDecl.DataType.Precision, m.VarDecl.DataType.Scale, m.VarDecl.DataType.Length, m.VarDecl.DataType.HasLength),
				DefaultExpr:  m.VarDecl.Default,
				IsConstant:   m.VarDecl.Constant,
				DeclaredIn:   "BODY",
			}
		case "TYPE":
			if m.TypeDecl != nil {
				name := strings.ToLower(m.TypeDecl.Name)
				if _, exists := pc.inlineTypes[name]; !exists {
					pc.inlineTypes[name] = inlineTypeFromDecl(m.TypeDecl)
				}
			}
		}
	}
}

func typeName(dt *ast.DataType) string {
	if dt == nil {
		return ""
	}
	if dt.Name != "" {
		return dt.Name
	}
	return dt.RefObject
}

func inlineTypeFromDecl(td *ast.TypeDecl) xformctx.InlineTypeDefinition {
	def := xformctx.InlineTypeDefinition{
		Name:               td.Name,
		Category:           td.Category,
		ConversionStrategy: "JSONB",
	}
	for _, f := range td.Fields {
		def.Fields = append(def.Fields, xformctx.InlineField{
			Name:         f.Name,
			OracleType:   typeName(f.DataType),
			PostgresType: dialect.Postgres{}.MapType(typeName(f.DataType), f.DataType.Precision, f.DataType.Scale, f.DataType.Length, f.DataType.HasLength),
		})
	}
	if td.Element != nil {
		def.ElementType = typeName(td.Element)
	}
	if td.KeyType != nil {
		def.KeyType = typeName(td.KeyType)
	}
	return def
}

// HelperDDL renders the session-state helper functions for pc, per §4.5.4's
// naming convention (schema.pkg__initialize/get_v/set_v).
func HelperDDL(pc *PackageContext) []string {
	var stmts []string
	schema, pkg := pc.schema, pc.packageName
	d := dialect.Postgres{}

	var initBody strings.Builder
	fmt.Fprintf(&initBody, "CREATE OR REPLACE FUNCTION %s.%s__initialize() RETURNS void AS $$\nBEGIN\n", schema, pkg)
	fmt.Fprintf(&initBody, "  IF current_setting('%s.%s.__initialized', true) IS DISTINCT FROM 'true' THEN\n", schema, pkg)
	for name, v := range pc.variables {
		if v.IsConstant || v.DefaultExpr == nil {
			continue
		}
		fmt.Fprintf(&initBody, "    PERFORM set_config('%s.%s.%s', %s, false);\n", schema, pkg, name, literalText(v.DefaultExpr))
	}
	fmt.Fprintf(&initBody, "    PERFORM set_config('%s.%s.__initialized', 'true', false);\n", schema, pkg)
	initBody.WriteString("  END IF;\nEND;\n$$ LANGUAGE plpgsql;")
	stmts = append(stmts, initBody.String())

	for name, v := range pc.variables {
		if v.IsConstant {
			continue
		}
		getter := fmt.Sprintf(
			"CREATE OR REPLACE FUNCTION %s.%s__get_%s() RETURNS %s AS $$\nBEGIN\n  RETURN current_setting('%s.%s.%s', true)::%s;\nEXCEPTION WHEN OTHERS THEN\n  RETURN %s;\nEND;\n$$ LANGUAGE plpgsql;",
			schema, pkg, name, v.PostgresType, schema, pkg, name, v.PostgresType, d.TypeDefault(v.PostgresType))
		setter := fmt.Sprintf(
			"CREATE OR REPLACE FUNCTION %s.%s__set_%s(p %s) RETURNS void AS $$\nBEGIN\n  PERFORM set_config('%s.%s.%s', p::text, false);\nEND;\n$$ LANGUAGE plpgsql;",
			schema, pkg, name, v.PostgresType, schema, pkg, name)
		stmts = append(stmts, getter, setter)
	}
	return stmts
}

// literalText renders a default-expression literal for embedding in
// set_config; a default that is not a number, string or NULL literal
// renders as NULL.
func literalText(expr ast.Expression) string {
	switch e := expr.(type) {
	case *ast.NumberLiteral:
		return "'" + e.Value + "'"
	case *ast.StringLiteral:
		return "'" + strings.ReplaceAll(e.Value, "'", "''") + "'"
	case *ast.NullLiteral:
		return "NULL"
	default:
		return "NULL"
	}
}
