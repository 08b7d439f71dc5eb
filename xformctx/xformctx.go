// Package xformctx implements the three-layer Transformation Context (C3):
// immutable globals set at construction, per-translation read-only state set
// once before traversal, and mutable-during-traversal scope bookkeeping with
// strict push/pop discipline (spec §3.3, §4.3).
package xformctx

import (
	"strings"

	"github.com/orapgcore/oracore/catalog"
)

// VarInfo describes one local variable/cursor/collection known to the
// current scope stack.
type VarInfo struct {
	OracleType    string
	IsRecord      bool
	IsCursor      bool
	IsCollection  bool
	IndexKeyType  string
}

// InlineTypeDefinition mirrors spec §3.5: a RECORD/TABLE_OF/VARRAY/INDEX_BY/
// ROWTYPE/TYPE_REFERENCE declared inline within a program unit or package.
type InlineTypeDefinition struct {
	Name     string
	Category string // RECORD, TABLE_OF, VARRAY, INDEX_BY, ROWTYPE, TYPE_REFERENCE
	Fields   []InlineField
	ElementType string
	KeyType     string
	ConversionStrategy string // always "JSONB" in phase 1
}

type InlineField struct {
	Name        string
	OracleType  string
	PostgresType string
}

// PackageContext is the subset of C7's PackageContext that C3 needs to read
// (variables + inline types); C7 owns the authoritative definition and hands
// a *pkgctx.PackageContext satisfying this shape to xformctx via CachePackageContext.
type PackageContext interface {
	Schema() string
	PackageName() string
	VariableType(name string) (oracleType string, ok bool)
	IsConstant(name string) bool
	InlineType(name string) (InlineTypeDefinition, bool)
}

type scope map[string]VarInfo

// Context is the per-translation transformation context.
type Context struct {
	// Layer A — immutable globals.
	currentSchema string
	cat           *catalog.Catalog

	// Layer B — per-translation, read-only after construction.
	currentFunctionName string
	currentPackageName  string
	packageCache        map[string]PackageContext // "schema.package" -> PackageContext
	inlineTypeRegistry  map[string]InlineTypeDefinition

	// Layer C — mutable during traversal.
	tableAliases       map[string]AliasedTable
	cteNames           map[string]bool
	variableScopeStack []scope
	cursorAttrNeeds    map[string]bool
	sqlAttributeNeeded bool
	inAssignmentTarget bool
}

// AliasedTable is what a FROM-clause alias resolves to.
type AliasedTable struct {
	Schema string
	Table  string
}

// New constructs a Context with Layer A set. Layer B fields are set via the
// Set* setters before traversal begins; Layer C starts empty.
func New(currentSchema string, cat *catalog.Catalog) *Context {
	return &Context{
		currentSchema:      currentSchema,
		cat:                cat,
		packageCache:       make(map[string]PackageContext),
		inlineTypeRegistry: make(map[string]InlineTypeDefinition),
		tableAliases:       make(map[string]AliasedTable),
		cteNames:           make(map[string]bool),
		cursorAttrNeeds:    make(map[string]bool),
	}
}

func (c *Context) CurrentSchema() string       { return c.currentSchema }
func (c *Context) Catalog() *catalog.Catalog    { return c.cat }

// SetCurrentFunction/SetCurrentPackage populate Layer B before traversal.
func (c *Context) SetCurrentFunction(name string) { c.currentFunctionName = name }
func (c *Context) SetCurrentPackage(name string)  { c.currentPackageName = name }
func (c *Context) CurrentFunctionName() string     { return c.currentFunctionName }
func (c *Context) CurrentPackageName() string      { return c.currentPackageName }

func (c *Context) CachePackageContext(schema, name string, pc PackageContext) {
	c.packageCache[pkgKey(schema, name)] = pc
}

func (c *Context) LookupPackageContext(schema, name string) (PackageContext, bool) {
	pc, ok := c.packageCache[pkgKey(schema, name)]
	return pc, ok
}

func pkgKey(schema, name string) string {
	return strings.ToLower(schema) + "." + strings.ToLower(name)
}

// ---- Variable scope stack (Layer C) ----------------------------------------

// PushScope opens a new nested variable scope (block entry).
func (c *Context) PushScope() {
	c.variableScopeStack = append(c.variableScopeStack, make(scope))
}

// PopScope closes the innermost scope (block exit). Calling PopScope with no
// pushed scope is a programmer error — scope-stack underflow is reserved for
// a panic per spec §9 ("panics... for invariant violations").
func (c *Context) PopScope() {
	n := len(c.variableScopeStack)
	if n == 0 {
		panic("xformctx: PopScope on empty variableScopeStack")
	}
	c.variableScopeStack = c.variableScopeStack[:n-1]
}

// ScopeDepth reports the current nesting depth, for the caller to assert
// stack balance at translation start/end (spec §8 invariant 1/2).
func (c *Context) ScopeDepth() int { return len(c.variableScopeStack) }

// DeclareVariable registers name in the innermost scope.
func (c *Context) DeclareVariable(name string, info VarInfo) {
	n := len(c.variableScopeStack)
	if n == 0 {
		c.PushScope()
		n = 1
	}
	c.variableScopeStack[n-1][strings.ToLower(name)] = info
}

// LookupVariable walks the stack from innermost to outermost.
func (c *Context) LookupVariable(name string) (VarInfo, bool) {
	key := strings.ToLower(name)
	for i := len(c.variableScopeStack) - 1; i >= 0; i-- {
		if v, ok := c.variableScopeStack[i][key]; ok {
			return v, true
		}
	}
	return VarInfo{}, false
}

// ---- Assignment-target flag -------------------------------------------------

func (c *Context) EnterAssignmentTarget() { c.inAssignmentTarget = true }
func (c *Context) LeaveAssignmentTarget() { c.inAssignmentTarget = false }
func (c *Context) InAssignmentTarget() bool { return c.inAssignmentTarget }

// ---- Table aliases & CTE names ---------------------------------------------

func (c *Context) DeclareAlias(alias, schema, table string) {
	c.tableAliases[strings.ToLower(alias)] = AliasedTable{Schema: schema, Table: table}
}

func (c *Context) LookupAlias(alias string) (AliasedTable, bool) {
	a, ok := c.tableAliases[strings.ToLower(alias)]
	return a, ok
}

// ClearAliases drops all FROM-clause aliases and CTE names. The translator
// does not call it, so aliases and CTE names declared during a translation
// stay declared until its Context is discarded.
func (c *Context) ClearAliases() {
	c.tableAliases = make(map[string]AliasedTable)
	c.cteNames = make(map[string]bool)
}

func (c *Context) DeclareCTE(name string)       { c.cteNames[strings.ToLower(name)] = true }
func (c *Context) IsCTE(name string) bool       { return c.cteNames[strings.ToLower(name)] }

// ---- Cursor attribute tracking (populated by the §4.5.3 pre-scan) ----------

func (c *Context) MarkCursorAttrNeeded(cursorName string) {
	c.cursorAttrNeeds[strings.ToLower(cursorName)] = true
}

func (c *Context) CursorAttrNeeded(cursorName string) bool {
	return c.cursorAttrNeeds[strings.ToLower(cursorName)]
}

func (c *Context) SetSQLAttributeNeeded(v bool) { c.sqlAttributeNeeded = v }
func (c *Context) SQLAttributeNeeded() bool      { return c.sqlAttributeNeeded }

// ---- Inline type registry ---------------------------------------------------

func (c *Context) RegisterInlineType(name string, def InlineTypeDefinition) {
	c.inlineTypeRegistry[strings.ToLower(name)] = def
}

// ResolveInlineType cascades local scope -> current package -> schema, per
// spec §4.3.
func (c *Context) ResolveInlineType(name string) (InlineTypeDefinition, bool) {
	key := strings.ToLower(name)
	if def, ok := c.inlineTypeRegistry[key]; ok {
		return def, true
	}
	if c.currentPackageName != "" {
		if pc, ok := c.LookupPackageContext(c.currentSchema, c.currentPackageName); ok {
			if def, ok := pc.InlineType(name); ok {
				return def, true
			}
		}
	}
	return InlineTypeDefinition{}, false
}

// ---- Package-variable reference rules (§4.5.4) -----------------------------

// IsPackageVariable reports whether (pkg, name) names a known package
// variable, consulting the cached PackageContext for pkg.
func (c *Context) IsPackageVariable(pkg, name string) bool {
	pc, ok := c.LookupPackageContext(c.currentSchema, pkg)
	if !ok {
		return false
	}
	_, ok = pc.VariableType(name)
	return ok
}

// PackageVariableGetter renders the getter-call form for (pkg, name).
func (c *Context) PackageVariableGetter(pkg, name string) string {
	return c.currentSchema + "." + strings.ToLower(pkg) + "__get_" + strings.ToLower(name) + "()"
}

// PackageVariableSetterCall renders a PERFORM-able setter call.
func (c *Context) PackageVariableSetterCall(pkg, name, rhsExpr string) string {
	return c.currentSchema + "." + strings.ToLower(pkg) + "__set_" + strings.ToLower(name) + "(" + rhsExpr + ")"
}
