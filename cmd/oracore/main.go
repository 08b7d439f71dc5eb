// Command oracore translates Oracle PL/SQL source (views, standalone
// functions/procedures, package bodies, trigger bodies) into PostgreSQL
// PL/pgSQL text, following the input/output and flag conventions of the
// reference project's own CLI (single file, directory batch, or stdin;
// single output file, output directory, or stdout).
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/orapgcore/oracore/ast"
	"github.com/orapgcore/oracore/catalog"
	"github.com/orapgcore/oracore/diagnostics"
	"github.com/orapgcore/oracore/obslog"
	"github.com/orapgcore/oracore/parser"
	"github.com/orapgcore/oracore/pgapply"
	"github.com/orapgcore/oracore/pkgctx"
	"github.com/orapgcore/oracore/translator"
)

const version = "0.1.0"

// annotateFlag supports both --annotate and --annotate=level, mirroring
// the reference CLI's custom boolean-or-value flag.
type annotateFlag struct {
	level string
}

func (f *annotateFlag) String() string {
	if f.level == "" {
		return "none"
	}
	return f.level
}

func (f *annotateFlag) Set(s string) error {
	if s == "" || s == "true" {
		f.level = "standard"
		return nil
	}
	switch s {
	case "none", "minimal", "standard", "verbose":
		f.level = s
		return nil
	default:
		return fmt.Errorf("invalid annotate level %q: must be none, minimal, standard, or verbose", s)
	}
}

func (f *annotateFlag) IsBoolFlag() bool { return true }

func (f *annotateFlag) Level() string {
	if f.level == "" {
		return "none"
	}
	return f.level
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

type config struct {
	inputFile  string
	inputDir   string
	readStdin  bool
	output     string
	outDir     string
	force      bool
	catalog    string
	schema     string
	packageDir string
	applyDSN   string
	validate   bool
	annotate   string

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("oracore", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var (
		inputDir   = fs.String("d", "", "Read all .sql files from directory")
		inputDirL  = fs.String("dir", "", "Read all .sql files from directory")
		readStdin  = fs.Bool("s", false, "Read from stdin")
		readStdinL = fs.Bool("stdin", false, "Read from stdin")
		output     = fs.String("o", "", "Write to single output file")
		outputL    = fs.String("output", "", "Write to single output file")
		outDir     = fs.String("O", "", "Write to output directory (creates if needed)")
		outDirL    = fs.String("outdir", "", "Write to output directory (creates if needed)")
		force      = fs.Bool("f", false, "Allow overwriting existing files")
		forceL     = fs.Bool("force", false, "Allow overwriting existing files")
		catFile    = fs.String("catalog", "", "Path to a JSON catalog snapshot (required)")
		schema     = fs.String("schema", "", "Current schema for unqualified identifier resolution (required)")
		packageDir = fs.String("package-dir", "", "Directory of .pks/.pkb source, for cross-package constant/variable resolution")
		applyDSN   = fs.String("apply-ddl", "", "PostgreSQL DSN to apply package helper DDL to (requires building with -tags postgres)")
		validate   = fs.Bool("validate", true, "Parse generated SQL with pg_query_go before emitting it")
		showHelp   = fs.Bool("h", false, "Show help")
		helpL      = fs.Bool("help", false, "Show help")
		showVer    = fs.Bool("v", false, "Show version")
		versionL   = fs.Bool("version", false, "Show version")
	)

	var annotate annotateFlag
	fs.Var(&annotate, "annotate", "Include warnings as leading comments (levels: none, minimal, standard, verbose)")

	fs.Usage = func() { printUsage(stderr) }

	if err := fs.Parse(args); err != nil {
		return 2
	}

	if *inputDirL != "" {
		*inputDir = *inputDirL
	}
	if *readStdinL {
		*readStdin = true
	}
	if *outputL != "" {
		*output = *outputL
	}
	if *outDirL != "" {
		*outDir = *outDirL
	}
	if *forceL {
		*force = true
	}
	if *helpL {
		*showHelp = true
	}
	if *versionL {
		*showVer = true
	}

	if *showHelp {
		printUsage(stdout)
		return 0
	}
	if *showVer {
		fmt.Fprintf(stdout, "oracore version %s\n", version)
		return 0
	}

	remaining := fs.Args()
	inputFile := ""
	if len(remaining) > 1 {
		fmt.Fprintln(stderr, "error: too many arguments")
		return 2
	}
	if len(remaining) == 1 {
		inputFile = remaining[0]
	}

	if inputFile == "" && *inputDir == "" && !*readStdin {
		printUsage(stdout)
		return 0
	}

	if err := validateFlags(inputFile, *inputDir, *readStdin, *output, *outDir, *catFile, *schema); err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 2
	}

	cfg := &config{
		inputFile:  inputFile,
		inputDir:   *inputDir,
		readStdin:  *readStdin,
		output:     *output,
		outDir:     *outDir,
		force:      *force,
		catalog:    *catFile,
		schema:     *schema,
		packageDir: *packageDir,
		applyDSN:   *applyDSN,
		validate:   *validate,
		annotate:   annotate.Level(),
		stdin:      stdin,
		stdout:     stdout,
		stderr:     stderr,
	}

	if err := execute(cfg); err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	return 0
}

func validateFlags(inputFile, inputDir string, readStdin bool, output, outDir, catFile, schema string) error {
	inputModes := 0
	if inputFile != "" {
		inputModes++
	}
	if inputDir != "" {
		inputModes++
	}
	if readStdin {
		inputModes++
	}
	if inputModes > 1 {
		return fmt.Errorf("cannot combine multiple input modes (file, --dir, --stdin)")
	}
	if outDir != "" && inputDir == "" {
		return fmt.Errorf("--outdir requires --dir (directory-to-directory mode)")
	}
	if output != "" && outDir != "" {
		return fmt.Errorf("cannot specify both --output and --outdir")
	}
	if catFile == "" {
		return fmt.Errorf("--catalog is required")
	}
	if schema == "" {
		return fmt.Errorf("--schema is required")
	}
	return nil
}

func execute(cfg *config) error {
	data, err := os.ReadFile(cfg.catalog)
	if err != nil {
		return fmt.Errorf("reading catalog %s: %w", cfg.catalog, err)
	}
	cat, err := catalog.LoadFromJSON(data)
	if err != nil {
		return fmt.Errorf("loading catalog: %w", err)
	}

	logger := obslog.NewSlogLogger(slog.New(slog.NewTextHandler(cfg.stderr, nil)))

	switch {
	case cfg.inputDir != "":
		return executeDirectory(cfg, cat, logger)
	case cfg.inputFile != "":
		return executeSingleFile(cfg, cat, logger)
	case cfg.readStdin:
		return executeStdin(cfg, cat, logger)
	default:
		return fmt.Errorf("no input specified")
	}
}

func executeStdin(cfg *config, cat *catalog.Catalog, logger obslog.Logger) error {
	source, err := io.ReadAll(cfg.stdin)
	if err != nil {
		return fmt.Errorf("reading stdin: %w", err)
	}
	result, err := doTranslate(cfg, cat, logger, "<stdin>", string(source))
	if err != nil {
		return err
	}
	return writeOutput(cfg, result)
}

func executeSingleFile(cfg *config, cat *catalog.Catalog, logger obslog.Logger) error {
	source, err := os.ReadFile(cfg.inputFile)
	if err != nil {
		return fmt.Errorf("reading %s: %w", cfg.inputFile, err)
	}
	result, err := doTranslate(cfg, cat, logger, cfg.inputFile, string(source))
	if err != nil {
		return fmt.Errorf("%s: %w", cfg.inputFile, err)
	}
	return writeOutput(cfg, result)
}

func executeDirectory(cfg *config, cat *catalog.Catalog, logger obslog.Logger) error {
	entries, err := os.ReadDir(cfg.inputDir)
	if err != nil {
		return fmt.Errorf("reading directory %s: %w", cfg.inputDir, err)
	}
	if cfg.outDir != "" {
		if err := os.MkdirAll(cfg.outDir, 0o755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(strings.ToLower(entry.Name()), ".sql") {
			continue
		}
		inputPath := filepath.Join(cfg.inputDir, entry.Name())
		source, err := os.ReadFile(inputPath)
		if err != nil {
			return fmt.Errorf("reading %s: %w", inputPath, err)
		}

		result, err := doTranslate(cfg, cat, logger, inputPath, string(source))
		if err != nil {
			return fmt.Errorf("%s: %w", inputPath, err)
		}

		if cfg.outDir != "" {
			outName := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name())) + ".sql"
			outPath := filepath.Join(cfg.outDir, outName)
			if !cfg.force {
				if _, err := os.Stat(outPath); err == nil {
					return fmt.Errorf("output file %s already exists (use --force to overwrite)", outPath)
				}
			}
			if err := os.WriteFile(outPath, []byte(result), 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", outPath, err)
			}
			fmt.Fprintf(cfg.stderr, "%s -> %s\n", inputPath, outPath)
		} else {
			fmt.Fprintln(cfg.stdout, result)
		}
	}
	return nil
}

func writeOutput(cfg *config, content string) error {
	if cfg.output != "" {
		if !cfg.force {
			if _, err := os.Stat(cfg.output); err == nil {
				return fmt.Errorf("output file %s already exists (use --force to overwrite)", cfg.output)
			}
		}
		return os.WriteFile(cfg.output, []byte(content), 0o644)
	}
	fmt.Fprintln(cfg.stdout, content)
	return nil
}

// newPipeline builds the package-context pipeline for one job. With a blank
// packageDir every fetch fails; translating a package body resolves its own
// package context first, so a package body then fails with an error. Other
// units do not fetch.
func newPipeline(cfg *config) *pkgctx.Pipeline {
	fetcher := dirFetcher{dir: cfg.packageDir}
	var applier pkgctx.DDLApplier
	if cfg.applyDSN != "" {
		applier = pgapply.New(cfg.applyDSN)
	}
	return pkgctx.NewPipeline(fetcher, applier)
}

// dirFetcher implements pkgctx.SourceFetcher by reading
// <dir>/<schema>.<name>.pks and .pkb files, lowercased.
type dirFetcher struct {
	dir string
}

func (f dirFetcher) FetchPackageSpec(ctx context.Context, schema, name string) (string, error) {
	return f.read(schema, name, "pks")
}

func (f dirFetcher) FetchPackageBody(ctx context.Context, schema, name string) (string, error) {
	return f.read(schema, name, "pkb")
}

func (f dirFetcher) read(schema, name, ext string) (string, error) {
	if f.dir == "" {
		return "", fmt.Errorf("no --package-dir configured: cannot fetch %s.%s.%s", schema, name, ext)
	}
	path := filepath.Join(f.dir, strings.ToLower(schema)+"."+strings.ToLower(name)+"."+ext)
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return string(data), nil
}

// doTranslate sniffs the unit kind, parses, dispatches to the matching
// translator entry point, and (when cfg.validate) parses the generated SQL
// with pg_query_go before returning it.
func doTranslate(cfg *config, cat *catalog.Catalog, logger obslog.Logger, unitName, source string) (string, error) {
	kind, err := sniffKind(source)
	if err != nil {
		return "", err
	}

	prog, syntaxErrs := parser.Parse(source, kind)
	if len(syntaxErrs) > 0 {
		msgs := make([]string, len(syntaxErrs))
		for i, e := range syntaxErrs {
			msgs[i] = e.Error()
		}
		return "", fmt.Errorf("syntax error: %s", strings.Join(msgs, "; "))
	}
	if len(prog.Units) == 0 {
		return "", fmt.Errorf("no translatable unit found")
	}

	ctx := context.Background()
	pipeline := newPipeline(cfg)

	var out string
	var derr *diagnostics.Diagnostics
	var warnings []diagnostics.Warning

	switch unit := prog.Units[0].(type) {
	case *ast.CreateViewStatement:
		tr := translator.New(ctx, cat, cfg.schema, pipeline)
		out, derr, warnings = tr.TranslateView(unit)
	case *ast.CreateFunctionStatement:
		tr := translator.New(ctx, cat, cfg.schema, pipeline)
		out, derr, warnings = tr.TranslateFunction(unit, "")
	case *ast.CreateProcedureStatement:
		tr := translator.New(ctx, cat, cfg.schema, pipeline)
		out, derr, warnings = tr.TranslateProcedure(unit, "")
	case *ast.CreateTriggerStatement:
		tr := translator.New(ctx, cat, cfg.schema, pipeline)
		out, derr, warnings = tr.TranslateTriggerBody(unit)
	case *ast.CreatePackageBodyStatement:
		out, derr, warnings, err = translatePackageBody(ctx, cat, pipeline, cfg.schema, unit)
		if err != nil {
			return "", err
		}
	case *ast.CreatePackageStatement:
		return "", fmt.Errorf("package spec %s has no standalone translation: supply the package body", unit.Name)
	case *ast.CreateTypeBodyStatement:
		return "", fmt.Errorf("type body %s translation is not supported by this CLI", unit.Name)
	default:
		return "", fmt.Errorf("unsupported top-level unit %T", unit)
	}

	if derr != nil {
		return "", fmt.Errorf("%s: %s", unitName, derr.Error())
	}
	for _, w := range warnings {
		logger.LogWarning(ctx, unitName, w)
	}

	if cfg.validate {
		if err := translator.Validate(out); err != nil {
			return "", fmt.Errorf("generated SQL failed validation: %w", err)
		}
	}

	return annotateOutput(cfg.annotate, warnings, out), nil
}

// translatePackageBody renders every FUNCTION/PROCEDURE member of a
// package body plus the session-state helper DDL for its package
// variables, concatenating the result into one translation unit (spec
// §4.5.4, §4.7 step 6).
func translatePackageBody(ctx context.Context, cat *catalog.Catalog, pipeline *pkgctx.Pipeline, schema string, body *ast.CreatePackageBodyStatement) (string, *diagnostics.Diagnostics, []diagnostics.Warning, error) {
	pc, err := pipeline.EnsurePackageContext(ctx, schema, body.Name)
	if err != nil {
		return "", nil, nil, fmt.Errorf("resolving package context for %s: %w", body.Name, err)
	}

	var parts []string
	parts = append(parts, pkgctx.HelperDDL(pc)...)

	var allWarnings []diagnostics.Warning
	for _, m := range body.Members {
		tr := translator.New(ctx, cat, schema, pipeline)
		tr.Ctx.CachePackageContext(schema, body.Name, pc)
		switch m.Kind {
		case "FUNCTION":
			out, derr, warns := tr.TranslateFunction(m.Function, body.Name)
			if derr != nil {
				return "", derr, nil, nil
			}
			parts = append(parts, out)
			allWarnings = append(allWarnings, warns...)
		case "PROCEDURE":
			out, derr, warns := tr.TranslateProcedure(m.Procedure, body.Name)
			if derr != nil {
				return "", derr, nil, nil
			}
			parts = append(parts, out)
			allWarnings = append(allWarnings, warns...)
		}
	}

	return strings.Join(parts, "\n\n"), nil, allWarnings, nil
}

// sniffKind scans for the CREATE [OR REPLACE] ... keyword sequence that
// identifies which grammar rule to parse the unit with. It never builds an
// AST itself; package segment's full-text scanner (C8) is reserved for
// splitting an already-identified PACKAGE/TYPE BODY into members.
func sniffKind(source string) (parser.Kind, error) {
	fields := strings.Fields(strings.ToUpper(source))
	i := 0
	for i < len(fields) && fields[i] == "CREATE" {
		i++
	}
	if i < len(fields) && fields[i] == "OR" && i+1 < len(fields) && fields[i+1] == "REPLACE" {
		i += 2
	}
	if i >= len(fields) {
		return 0, fmt.Errorf("could not identify a CREATE statement")
	}

	switch fields[i] {
	case "VIEW":
		return parser.ViewSelect, nil
	case "FUNCTION":
		return parser.StandaloneFunction, nil
	case "PROCEDURE":
		return parser.StandaloneProcedure, nil
	case "TRIGGER":
		return parser.TriggerBody, nil
	case "PACKAGE":
		if i+1 < len(fields) && fields[i+1] == "BODY" {
			return parser.PackageBody, nil
		}
		return parser.PackageSpec, nil
	case "TYPE":
		if i+1 < len(fields) && fields[i+1] == "BODY" {
			return parser.TypeBody, nil
		}
		return 0, fmt.Errorf("CREATE TYPE (spec) is a catalog-load concern, not a translation unit")
	default:
		return 0, fmt.Errorf("unrecognized top-level unit keyword %q", fields[i])
	}
}

// annotateOutput prepends a leading comment block of warnings when level is
// minimal or above.
func annotateOutput(level string, warnings []diagnostics.Warning, sql string) string {
	if level == "" || level == "none" || len(warnings) == 0 {
		return sql
	}
	var sb strings.Builder
	sb.WriteString("-- oracore warnings:\n")
	for _, w := range warnings {
		if level == "verbose" {
			fmt.Fprintf(&sb, "--   %d:%d [%s] %s\n", w.Line, w.Column, w.Identifier, w.Message)
		} else {
			fmt.Fprintf(&sb, "--   %s\n", w.Message)
		}
	}
	sb.WriteString(sql)
	return sb.String()
}

func printUsage(w io.Writer) {
	fmt.Fprint(w, `oracore - Oracle PL/SQL to PostgreSQL PL/pgSQL translator

Usage:
  oracore --catalog <file> --schema <name> [options] <input.sql>
  oracore --catalog <file> --schema <name> [options] -s < input.sql
  oracore --catalog <file> --schema <name> [options] -d <path>

Input (mutually exclusive):
  <file.sql>            Read single file
  -s, --stdin           Read from stdin
  -d, --dir <path>      Read all .sql files from directory

Output (mutually exclusive):
  (no flag)             Write to stdout
  -o, --output <file>   Write to single file
  -O, --outdir <path>   Write to directory (creates if needed)

Required:
  --catalog <file>      Path to a JSON catalog snapshot
  --schema <name>       Current schema for unqualified identifier resolution

Options:
  --package-dir <path>  Directory of .pks/.pkb source for cross-package lookups
  --apply-ddl <dsn>     Apply package helper DDL to this PostgreSQL DSN
                        (requires building with -tags postgres)
  --validate            Parse generated SQL with pg_query_go (default: true)
  --annotate[=level]    Prepend warnings as leading comments
                        Levels: none, minimal, standard, verbose (default: none)
  -f, --force           Allow overwriting existing files
  -h, --help            Show help
  -v, --version         Show version

Exit codes:
  0  Success
  1  Translation error
  2  CLI usage error
`)
}
