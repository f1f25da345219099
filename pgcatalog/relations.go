package pgcatalog

import (
	"context"
	"fmt"

	"github.com/ddldiff/ddldiff/catalog"
)

const relationsQuery = `
SELECT c.oid, n.nspname, c.relname, c.relkind, c.relrowsecurity,
       COALESCE(obj_description(c.oid, 'pg_class'), '')
FROM pg_class c
JOIN pg_namespace n ON n.oid = c.relnamespace
WHERE n.nspname = ANY($1)
  AND c.relkind IN ('r', 'v', 'm')
ORDER BY c.relname`

// extractRelations reads tables, views, and materialized views. View and
// materialized-view bodies are captured with pg_get_viewdef so the emitter
// can reuse them verbatim in CREATE [MATERIALIZED] VIEW ... AS statements.
func (e *extractor) extractRelations(ctx context.Context) error {
	rows, err := e.conn.Query(ctx, relationsQuery, e.schemas)
	if err != nil {
		return fmt.Errorf("pgcatalog: querying relations: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var oid uint32
		var schema, name, relkind, comment string
		var rls bool
		if err := rows.Scan(&oid, &schema, &name, &relkind, &rls, &comment); err != nil {
			return fmt.Errorf("pgcatalog: scanning relation: %w", err)
		}

		kind, err := relationKind(relkind)
		if err != nil {
			return err
		}

		rel := catalog.Relation{Kind: kind, Schema: schema, Name: name, Comment: comment, RLSEnabled: rls, OID: oid}
		if kind != catalog.Table {
			def, err := e.viewDefinition(ctx, oid)
			if err != nil {
				return err
			}
			rel.Definition = def
		}

		e.b.AddRelation(rel)
		e.remember(oid, rel.StableID())
	}
	return rows.Err()
}

func relationKind(relkind string) (catalog.RelationKind, error) {
	switch relkind {
	case "r":
		return catalog.Table, nil
	case "v":
		return catalog.View, nil
	case "m":
		return catalog.MaterializedView, nil
	default:
		return 0, fmt.Errorf("pgcatalog: unexpected relkind %q", relkind)
	}
}

func (e *extractor) viewDefinition(ctx context.Context, oid uint32) (string, error) {
	var def string
	err := e.conn.QueryRow(ctx, "SELECT pg_get_viewdef($1::oid)", oid).Scan(&def)
	if err != nil {
		return "", fmt.Errorf("pgcatalog: reading view definition for oid %d: %w", oid, err)
	}
	return def, nil
}
