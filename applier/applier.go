// Package applier executes emitted DDL statements against a live
// PostgreSQL connection, per spec.md §4.9. It sits outside the pure core
// (catalog, change, schemadiff, depgraph, planner, emit) and is only ever
// invoked by the CLI's --verify path and by this module's own integration
// tests: the core's job ends at producing a statement list, not running it.
package applier

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
)

// Applier runs a statement list inside a single transaction, rolling back
// on the first failure, the way the teacher's migration/migrator.Migrator
// applies migration files: a WithLogger copy-and-return-pointer for
// configuration, context.Context on every blocking call, errors wrapped
// with fmt.Errorf.
type Applier struct {
	conn   *pgx.Conn
	logger *slog.Logger
}

// New creates an Applier bound to conn.
func New(conn *pgx.Conn) *Applier {
	return &Applier{conn: conn, logger: slog.Default()}
}

// WithLogger returns a copy of a with its logger replaced.
func (a *Applier) WithLogger(l *slog.Logger) *Applier {
	tmp := *a
	tmp.logger = l
	return &tmp
}

// Apply runs every statement in order inside one transaction. If any
// statement fails, the transaction is rolled back and Apply returns the
// error, naming the statement's position so the caller can report which
// part of the plan failed.
func (a *Applier) Apply(ctx context.Context, statements []string) error {
	tx, err := a.conn.Begin(ctx)
	if err != nil {
		return fmt.Errorf("applier: beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for i, stmt := range statements {
		a.logger.Debug("applying statement", "index", i, "statement", stmt)
		if _, err := tx.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("applier: statement %d failed: %w", i, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("applier: committing transaction: %w", err)
	}
	return nil
}
