package oracleisms

import (
	"strings"

	"github.com/orapgcore/oracore/xformctx"
)

// ReferenceKind classifies a name reference against the three patterns in
// §4.5.4's table, resolved in priority order: a local variable always wins
// (per §4.5.4, "local variables in variableScopeStack take precedence").
type ReferenceKind int

const (
	NotPackageVariable ReferenceKind = iota
	LocalVariable
	UnqualifiedPackageVar // pattern 1: g_counter
	QualifiedPackageVar   // pattern 2/3: pkg.g_counter, hr.pkg.g_counter
)

// ResolvePackageVariableRef classifies a dotted-identifier reference parts
// against ctx, returning the kind and the (pkg, name) pair to use for
// getter/setter rendering when it resolves to a package variable.
func ResolvePackageVariableRef(parts []string, ctx *xformctx.Context) (ReferenceKind, string, string) {
	if len(parts) == 1 {
		if _, ok := ctx.LookupVariable(parts[0]); ok {
			return LocalVariable, "", ""
		}
		if ctx.CurrentPackageName() != "" && ctx.IsPackageVariable(ctx.CurrentPackageName(), parts[0]) {
			return UnqualifiedPackageVar, ctx.CurrentPackageName(), parts[0]
		}
		return NotPackageVariable, "", ""
	}

	if len(parts) == 2 {
		pkg, name := parts[0], parts[1]
		if ctx.IsPackageVariable(pkg, name) {
			return QualifiedPackageVar, pkg, name
		}
		return NotPackageVariable, "", ""
	}

	if len(parts) == 3 {
		schema, pkg, name := parts[0], parts[1], parts[2]
		if strings.EqualFold(schema, ctx.CurrentSchema()) && ctx.IsPackageVariable(pkg, name) {
			return QualifiedPackageVar, pkg, name
		}
		return NotPackageVariable, "", ""
	}

	return NotPackageVariable, "", ""
}

// RenderRead renders a package-variable read as its getter call, for
// constants too; inlining a constant's literal is done by the caller.
func RenderRead(ctx *xformctx.Context, pkg, name string) string {
	if ctx.IsPackageVariable(pkg, name) {
		if pc, ok := ctx.LookupPackageContext(ctx.CurrentSchema(), pkg); ok && pc.IsConstant(name) {
			// Constants are inlined by the caller, which has the catalog's
			// DefaultLiterals; RenderRead is only reached for non-constants.
			_ = pc
		}
	}
	return ctx.PackageVariableGetter(pkg, name)
}

// RenderWrite renders a PERFORM-able setter call for an assignment target.
func RenderWrite(ctx *xformctx.Context, pkg, name, rhs string) string {
	return ctx.PackageVariableSetterCall(pkg, name, rhs)
}

// InitializeCall renders the `PERFORM schema.pkg__initialize();` line every
// translated package function/procedure body is prefixed with (§4.5.4).
func InitializeCall(schema, pkg string) string {
	return "PERFORM " + schema + "." + strings.ToLower(pkg) + "__initialize();"
}
