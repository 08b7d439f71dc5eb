// Package catalog implements the metadata catalog and its O(1)
// case-insensitive indices (C2). It is built once from an extractor's
// output and is immutable and freely shareable across concurrent
// translations (spec §3.2, §5).
package catalog

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Column is one ordered column of a Table.
type Column struct {
	Name       string
	OracleType string
	Nullable   bool
}

// Table is a schema-qualified table or view, with its ordered column list.
type Table struct {
	Schema  string
	Name    string
	Columns []Column
}

// ColumnByName returns the column with the given name, case-insensitively.
func (t *Table) ColumnByName(name string) (Column, bool) {
	for _, c := range t.Columns {
		if strings.EqualFold(c.Name, name) {
			return c, true
		}
	}
	return Column{}, false
}

// MethodSignature is one method of a user-defined object TypeDefinition.
type MethodSignature struct {
	Name       string
	Parameters []string // oracleType per positional parameter
}

// TypeDefinition describes a user object type: hr.address_t, for example.
type TypeDefinition struct {
	Schema     string
	Name       string
	Attributes map[string]string // attr name -> oracleType, insertion order not significant
	Methods    []MethodSignature
}

// ParamSig is one parameter of a package function/procedure signature.
type ParamSig struct {
	Name       string
	OracleType string
	Mode       string // IN, OUT, IN OUT
}

// FunctionSig is a package function signature (spec §3.2).
type FunctionSig struct {
	Name       string
	Parameters []ParamSig
	ReturnType string
}

// ProcedureSig is a package procedure signature.
type ProcedureSig struct {
	Name       string
	Parameters []ParamSig
}

// PackageSignature is the catalog's view of one package: its public surface.
type PackageSignature struct {
	Schema             string
	Name               string
	FunctionSignatures  map[string]FunctionSig
	ProcedureSignatures map[string]ProcedureSig
	PublicVariables     map[string]string // name -> oracleType
	PublicTypes         map[string]string // name -> inline-type category (RECORD, TABLE_OF, ...)
	DefaultLiterals     map[string]decimal.Decimal // numeric default literals, exact precision
}

// ObjectRef names a (schema, object) pair a synonym resolves to.
type ObjectRef struct {
	Schema string
	Object string
}

// Catalog holds the full set of precomputed lookups. Keys are normalized to
// lower-case so every lookup is case-insensitive, per spec §3.2.
type Catalog struct {
	tables   map[string]*Table            // "schema.table" -> Table
	types    map[string]*TypeDefinition    // "schema.typename" -> TypeDefinition
	packages map[string]*PackageSignature  // "schema.package" -> PackageSignature
	synonyms map[string]ObjectRef          // "schema.synonym" -> ObjectRef ("PUBLIC" is a pseudo-schema)
}

func key(schema, name string) string {
	return strings.ToLower(schema) + "." + strings.ToLower(name)
}

// New returns an empty Catalog, ready for population via the Add* methods
// (used by tests and by LoadFromJSON).
func New() *Catalog {
	return &Catalog{
		tables:   make(map[string]*Table),
		types:    make(map[string]*TypeDefinition),
		packages: make(map[string]*PackageSignature),
		synonyms: make(map[string]ObjectRef),
	}
}

func (c *Catalog) AddTable(t *Table) { c.tables[key(t.Schema, t.Name)] = t }
func (c *Catalog) AddType(t *TypeDefinition) { c.types[key(t.Schema, t.Name)] = t }
func (c *Catalog) AddPackage(p *PackageSignature) { c.packages[key(p.Schema, p.Name)] = p }
func (c *Catalog) AddSynonym(schema, name string, ref ObjectRef) {
	c.synonyms[key(schema, name)] = ref
}

// LookupTable returns the table for schema.name.
func (c *Catalog) LookupTable(schema, name string) (*Table, bool) {
	t, ok := c.tables[key(schema, name)]
	return t, ok
}

// LookupType returns the user object type for schema.name.
func (c *Catalog) LookupType(schema, name string) (*TypeDefinition, bool) {
	t, ok := c.types[key(schema, name)]
	return t, ok
}

// LookupPackage returns the package signature for schema.name.
func (c *Catalog) LookupPackage(schema, name string) (*PackageSignature, bool) {
	p, ok := c.packages[key(schema, name)]
	return p, ok
}

// ColumnType resolves schema.table.column -> oracleType, for %TYPE.
func (c *Catalog) ColumnType(schema, table, column string) (string, bool) {
	t, ok := c.LookupTable(schema, table)
	if !ok {
		return "", false
	}
	col, ok := t.ColumnByName(column)
	if !ok {
		return "", false
	}
	return col.OracleType, true
}

// ResolveSynonym implements §4.2 rule 1: try (currentSchema, name), then
// (PUBLIC, name). Returns the object it resolves to and whether a synonym
// fired at all (false means name should be used as-is).
func (c *Catalog) ResolveSynonym(currentSchema, name string) (ObjectRef, bool) {
	if ref, ok := c.synonyms[key(currentSchema, name)]; ok {
		return ref, true
	}
	if ref, ok := c.synonyms[key("PUBLIC", name)]; ok {
		return ref, true
	}
	return ObjectRef{}, false
}

// ---- JSON snapshot loading --------------------------------------------------

type jsonColumn struct {
	Name       string `json:"name"`
	OracleType string `json:"oracle_type"`
	Nullable   bool   `json:"nullable"`
}

type jsonTable struct {
	Schema  string       `json:"schema"`
	Name    string       `json:"name"`
	Columns []jsonColumn `json:"columns"`
}

type jsonType struct {
	Schema     string            `json:"schema"`
	Name       string            `json:"name"`
	Attributes map[string]string `json:"attributes"`
	Methods    []struct {
		Name       string   `json:"name"`
		Parameters []string `json:"parameters"`
	} `json:"methods"`
}

type jsonParam struct {
	Name       string `json:"name"`
	OracleType string `json:"oracle_type"`
	Mode       string `json:"mode"`
}

type jsonPackage struct {
	Schema    string `json:"schema"`
	Name      string `json:"name"`
	Functions []struct {
		Name       string      `json:"name"`
		Parameters []jsonParam `json:"parameters"`
		ReturnType string      `json:"return_type"`
	} `json:"functions"`
	Procedures []struct {
		Name       string      `json:"name"`
		Parameters []jsonParam `json:"parameters"`
	} `json:"procedures"`
	Variables map[string]string `json:"variables"`
	Types     map[string]string `json:"types"`
	Defaults  map[string]string `json:"defaults"` // decimal-string literals
}

type jsonSynonym struct {
	Schema       string `json:"schema"`
	Name         string `json:"name"`
	TargetSchema string `json:"target_schema"`
	TargetObject string `json:"target_object"`
}

type jsonSnapshot struct {
	Tables   []jsonTable   `json:"tables"`
	Types    []jsonType    `json:"types"`
	Packages []jsonPackage `json:"packages"`
	Synonyms []jsonSynonym `json:"synonyms"`
}

// LoadFromJSON builds a Catalog from a JSON metadata snapshot shaped after
// Oracle ALL_TAB_COLUMNS/ALL_PROCEDURES/ALL_SYNONYMS-style extraction — the
// out-of-scope extractor's output, per spec §1.
func LoadFromJSON(data []byte) (*Catalog, error) {
	var snap jsonSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("catalog: decode snapshot: %w", err)
	}
	c := New()

	for _, jt := range snap.Tables {
		t := &Table{Schema: jt.Schema, Name: jt.Name}
		for _, jc := range jt.Columns {
			t.Columns = append(t.Columns, Column{Name: jc.Name, OracleType: jc.OracleType, Nullable: jc.Nullable})
		}
		c.AddTable(t)
	}

	for _, jt := range snap.Types {
		td := &TypeDefinition{Schema: jt.Schema, Name: jt.Name, Attributes: jt.Attributes}
		for _, m := range jt.Methods {
			td.Methods = append(td.Methods, MethodSignature{Name: m.Name, Parameters: m.Parameters})
		}
		c.AddType(td)
	}

	for _, jp := range snap.Packages {
		ps := &PackageSignature{
			Schema:              jp.Schema,
			Name:                jp.Name,
			FunctionSignatures:  make(map[string]FunctionSig),
			ProcedureSignatures: make(map[string]ProcedureSig),
			PublicVariables:     jp.Variables,
			PublicTypes:         jp.Types,
			DefaultLiterals:     make(map[string]decimal.Decimal),
		}
		for _, f := range jp.Functions {
			fs := FunctionSig{Name: f.Name, ReturnType: f.ReturnType}
			for _, p := range f.Parameters {
				fs.Parameters = append(fs.Parameters, ParamSig{Name: p.Name, OracleType: p.OracleType, Mode: p.Mode})
			}
			ps.FunctionSignatures[strings.ToLower(f.Name)] = fs
		}
		for _, pr := range jp.Procedures {
			prs := ProcedureSig{Name: pr.Name}
			for _, p := range pr.Parameters {
				prs.Parameters = append(prs.Parameters, ParamSig{Name: p.Name, OracleType: p.OracleType, Mode: p.Mode})
			}
			ps.ProcedureSignatures[strings.ToLower(pr.Name)] = prs
		}
		for name, lit := range jp.Defaults {
			d, err := decimal.NewFromString(lit)
			if err != nil {
				return nil, fmt.Errorf("catalog: package %s.%s default %s: %w", jp.Schema, jp.Name, name, err)
			}
			ps.DefaultLiterals[strings.ToLower(name)] = d
		}
		c.AddPackage(ps)
	}

	for _, js := range snap.Synonyms {
		c.AddSynonym(js.Schema, js.Name, ObjectRef{Schema: js.TargetSchema, Object: js.TargetObject})
	}

	return c, nil
}
