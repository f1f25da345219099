// Package pgcatalog extracts a catalog.Catalog snapshot from a live
// PostgreSQL connection, per spec.md §4.8. It is the one package in this
// module that touches a database; everything upstream of it (catalog,
// change, schemadiff, depgraph, planner, emit) is pure and DB-free.
//
// Queries go against pg_catalog directly rather than information_schema,
// the way the teacher's dbschema/postgres.Reader queries information_schema
// for portability: this module only ever targets PostgreSQL, so pg_catalog
// gives access to definitions (pg_get_indexdef, pg_get_viewdef, ...) and
// OIDs information_schema does not expose.
package pgcatalog

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/ddldiff/ddldiff/catalog"
)

// Extract reads every entity kind catalog.Catalog models, scoped to the
// given schemas, and assembles them into a validated Catalog. schemas
// defaults to {"public"} when empty.
func Extract(ctx context.Context, conn *pgx.Conn, schemas []string) (*catalog.Catalog, error) {
	if len(schemas) == 0 {
		schemas = []string{"public"}
	}

	b := catalog.NewBuilder()
	for _, s := range schemas {
		b.AddSchema(catalog.Schema{Name: s})
	}

	ext := &extractor{conn: conn, schemas: schemas, b: b, oidIndex: map[uint32]string{}}

	steps := []func(context.Context) error{
		ext.extractRelations,
		ext.extractColumns,
		ext.extractConstraints,
		ext.extractIndexes,
		ext.extractSequences,
		ext.extractPolicies,
		ext.extractRoutines,
		ext.extractTriggers,
		ext.extractTypes,
	}
	for _, step := range steps {
		if err := step(ctx); err != nil {
			return nil, err
		}
	}
	// Dependencies must be read last: edge classification relies on the
	// oid -> stable_id index populated by every extractor above.
	if err := ext.extractDependencies(ctx); err != nil {
		return nil, err
	}

	cat, err := b.Build()
	if err != nil {
		return nil, fmt.Errorf("pgcatalog: assembling catalog: %w", err)
	}
	return cat, nil
}

type extractor struct {
	conn    *pgx.Conn
	schemas []string
	b       *catalog.Builder

	// oidIndex maps a pg_catalog row's oid to the stable_id of the entity
	// it became, so extractDependencies can translate pg_depend's
	// objid/refobjid pairs without re-querying.
	oidIndex map[uint32]string
}

func (e *extractor) remember(oid uint32, stableID string) {
	if oid != 0 {
		e.oidIndex[oid] = stableID
	}
}

func (e *extractor) stableIDFor(oid uint32) (string, bool) {
	id, ok := e.oidIndex[oid]
	return id, ok
}
