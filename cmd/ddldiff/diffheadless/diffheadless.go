// Package diffheadless implements the "diff-headless" subcommand: it loads
// two schema snapshots into disposable PostgreSQL containers, diffs them,
// and prints or applies the resulting DDL. Grounded on the teacher's
// cmd/generate command (cobraflags.StringFlag + cobraflags.RegisterMap for
// flag wiring, RunE doing the real work) generalized to spin up
// testcontainers-go Postgres instances instead of reading local Go source.
package diffheadless

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-extras/cobraflags"
	"github.com/jackc/pgx/v5"
	"github.com/spf13/cobra"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/ddldiff/ddldiff/applier"
	"github.com/ddldiff/ddldiff/catalog"
	"github.com/ddldiff/ddldiff/config"
	"github.com/ddldiff/ddldiff/depgraph"
	"github.com/ddldiff/ddldiff/emit"
	"github.com/ddldiff/ddldiff/pgcatalog"
	"github.com/ddldiff/ddldiff/planner"
	"github.com/ddldiff/ddldiff/schemadiff"
)

const (
	initialSQLFlag     = "initial-sql"
	masterSQLFlag      = "master-sql"
	branchSQLFlag      = "branch-sql"
	postgresImageFlag  = "postgres-image"
	outputFlag         = "output"
	schemasFlag        = "schemas"
	ignoredSchemasFlag = "ignored-schemas"
	expansionDepthFlag = "dependency-expansion-depth"
	verifyFlag         = "verify"
	verboseFlag        = "verbose"
)

var stringFlags = map[string]cobraflags.Flag{
	initialSQLFlag: &cobraflags.StringFlag{
		Name:  initialSQLFlag,
		Value: "",
		Usage: "Path to SQL loaded into both the master and branch databases before their own scripts",
	},
	masterSQLFlag: &cobraflags.StringFlag{
		Name:  masterSQLFlag,
		Value: "",
		Usage: "Path to SQL describing the current (source) schema, applied after --initial-sql",
	},
	branchSQLFlag: &cobraflags.StringFlag{
		Name:  branchSQLFlag,
		Value: "",
		Usage: "Path to SQL describing the desired (target) schema, applied after --initial-sql",
	},
	postgresImageFlag: &cobraflags.StringFlag{
		Name:  postgresImageFlag,
		Value: "postgres:17",
		Usage: "Docker image used for the disposable comparison databases",
	},
	outputFlag: &cobraflags.StringFlag{
		Name:  outputFlag,
		Value: "",
		Usage: "File to write the generated DDL to; empty means stdout",
	},
	schemasFlag: &cobraflags.StringFlag{
		Name:  schemasFlag,
		Value: "public",
		Usage: "Comma-separated list of schemas to extract and compare",
	},
	ignoredSchemasFlag: &cobraflags.StringFlag{
		Name:  ignoredSchemasFlag,
		Value: "",
		Usage: "Comma-separated schemas to exclude from --schemas in addition to config.Default()'s own ignore list",
	},
}

// cliDefaults is the Options baseline this command is built against: the
// library default (config.Default()) with verification turned on, since a
// CLI run with no master to keep clean should confirm its own output by
// default, unlike a library caller composing diff-headless into a larger
// pipeline.
var cliDefaults = config.Default().WithVerify(true)

// NewCommand builds the diff-headless subcommand.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "diff-headless",
		Short: "Diff two schema snapshots loaded into disposable Postgres containers",
		RunE:  run,
	}
	cobraflags.RegisterMap(cmd, stringFlags)
	cmd.Flags().Int(expansionDepthFlag, cliDefaults.DependencyExpansionDepth, "Hops package depgraph walks past a changeset's own objects (0 uses depgraph.DefaultExpansionDepth)")
	cmd.Flags().Bool(verifyFlag, cliDefaults.Verify, "apply the generated DDL to the master database and confirm it matches the branch schema")
	cmd.Flags().Bool(verboseFlag, false, "log each extraction and application step")
	return cmd
}

// optionsFromFlags builds this run's config.Options from the bound flags,
// starting from cliDefaults so unset flags keep the CLI's own baseline
// rather than the library's programmatic default.
func optionsFromFlags(cmd *cobra.Command) *config.Options {
	cfg := *cliDefaults
	if extra := splitCSV(stringFlags[ignoredSchemasFlag].GetString()); len(extra) > 0 {
		cfg.IgnoredSchemas = append(append([]string{}, cfg.IgnoredSchemas...), extra...)
	}

	depth, _ := cmd.Flags().GetInt(expansionDepthFlag)
	result := cfg.WithDependencyExpansionDepth(depth)

	verify, _ := cmd.Flags().GetBool(verifyFlag)
	result = result.WithVerify(verify)

	return result
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func run(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	initialSQL := stringFlags[initialSQLFlag].GetString()
	masterSQL := stringFlags[masterSQLFlag].GetString()
	branchSQL := stringFlags[branchSQLFlag].GetString()
	image := stringFlags[postgresImageFlag].GetString()
	output := stringFlags[outputFlag].GetString()
	verbose, _ := cmd.Flags().GetBool(verboseFlag)
	cfg := optionsFromFlags(cmd)
	schemas := cfg.FilterIgnoredSchemas(splitCSV(stringFlags[schemasFlag].GetString()))

	if masterSQL == "" || branchSQL == "" {
		return fmt.Errorf("diff-headless: --master-sql and --branch-sql are required")
	}

	logf := func(format string, args ...any) {
		if verbose {
			fmt.Fprintf(cmd.ErrOrStderr(), format+"\n", args...)
		}
	}

	logf("starting master database (%s)", image)
	masterConn, masterCleanup, err := startLoadedDatabase(ctx, image, initialSQL, masterSQL)
	if err != nil {
		return fmt.Errorf("diff-headless: master database: %w", err)
	}
	defer masterCleanup()

	logf("starting branch database (%s)", image)
	branchConn, branchCleanup, err := startLoadedDatabase(ctx, image, initialSQL, branchSQL)
	if err != nil {
		return fmt.Errorf("diff-headless: branch database: %w", err)
	}
	defer branchCleanup()

	logf("extracting master catalog (schemas: %v)", schemas)
	source, err := pgcatalog.Extract(ctx, masterConn, schemas)
	if err != nil {
		return fmt.Errorf("diff-headless: extracting master catalog: %w", err)
	}

	logf("extracting branch catalog (schemas: %v)", schemas)
	target, err := pgcatalog.Extract(ctx, branchConn, schemas)
	if err != nil {
		return fmt.Errorf("diff-headless: extracting branch catalog: %w", err)
	}

	changes := schemadiff.Diff(source, target)
	graph := depgraph.Build(source, target, changes, cfg.DependencyExpansionDepth)

	ordered, err := planner.Plan(changes, graph)
	if err != nil {
		var cycleErr *planner.CycleError
		if errors.As(err, &cycleErr) {
			fmt.Fprintln(cmd.ErrOrStderr(), cycleErr.Error())
		}
		return fmt.Errorf("diff-headless: planning change order: %w", err)
	}

	statements, err := emit.All(ordered)
	if err != nil {
		return fmt.Errorf("diff-headless: emitting DDL: %w", err)
	}

	if err := writeStatements(output, statements); err != nil {
		return fmt.Errorf("diff-headless: writing output: %w", err)
	}

	if !cfg.Verify {
		return nil
	}

	logf("applying generated DDL to master database for verification")
	if err := applier.New(masterConn).Apply(ctx, statements); err != nil {
		return fmt.Errorf("diff-headless: verification failed applying DDL: %w", err)
	}

	logf("re-extracting master catalog after apply")
	migrated, err := pgcatalog.Extract(ctx, masterConn, schemas)
	if err != nil {
		return fmt.Errorf("diff-headless: re-extracting master catalog: %w", err)
	}

	if !catalog.CatalogSemanticEqual(migrated, target) {
		return fmt.Errorf("diff-headless: verification failed: migrated master catalog does not semantically equal the branch catalog")
	}

	logf("verification succeeded")
	return nil
}

// startLoadedDatabase spins up a disposable Postgres container, loads
// initialPath then scriptPath into it (either may be empty), and returns a
// live connection plus a cleanup func that closes the connection and
// terminates the container.
func startLoadedDatabase(ctx context.Context, image, initialPath, scriptPath string) (conn *pgx.Conn, cleanup func(), err error) {
	container, err := tcpostgres.Run(ctx, image,
		tcpostgres.WithDatabase("ddldiff"),
		tcpostgres.WithUsername("ddldiff"),
		tcpostgres.WithPassword("ddldiff"),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("starting container: %w", err)
	}

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, nil, fmt.Errorf("resolving connection string: %w", err)
	}

	conn, err = pgx.Connect(ctx, connStr)
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, nil, fmt.Errorf("connecting: %w", err)
	}

	cleanup = func() {
		_ = conn.Close(ctx)
		_ = container.Terminate(ctx)
	}

	for _, path := range []string{initialPath, scriptPath} {
		if path == "" {
			continue
		}
		sql, readErr := os.ReadFile(path)
		if readErr != nil {
			cleanup()
			return nil, nil, fmt.Errorf("reading %s: %w", path, readErr)
		}
		if _, execErr := conn.Exec(ctx, string(sql)); execErr != nil {
			cleanup()
			return nil, nil, fmt.Errorf("applying %s: %w", path, execErr)
		}
	}

	return conn, cleanup, nil
}

func writeStatements(path string, statements []string) error {
	w := os.Stdout
	if path != "" {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	for _, stmt := range statements {
		if _, err := fmt.Fprintln(w, stmt); err != nil {
			return err
		}
	}
	return nil
}
