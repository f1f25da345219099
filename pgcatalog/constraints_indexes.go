package pgcatalog

import (
	"context"
	"fmt"

	"github.com/ddldiff/ddldiff/catalog"
)

const constraintsQuery = `
SELECT con.oid, n.nspname, c.relname, con.conname, con.contype,
       pg_get_constraintdef(con.oid),
       fn.nspname, fc.relname
FROM pg_constraint con
JOIN pg_class c ON c.oid = con.conrelid
JOIN pg_namespace n ON n.oid = c.relnamespace
LEFT JOIN pg_class fc ON fc.oid = con.confrelid
LEFT JOIN pg_namespace fn ON fn.oid = fc.relnamespace
WHERE n.nspname = ANY($1)
ORDER BY c.relname, con.conname`

func (e *extractor) extractConstraints(ctx context.Context) error {
	rows, err := e.conn.Query(ctx, constraintsQuery, e.schemas)
	if err != nil {
		return fmt.Errorf("pgcatalog: querying constraints: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var oid uint32
		var schema, table, name, contype, definition string
		var foreignSchema, foreignTable *string
		if err := rows.Scan(&oid, &schema, &table, &name, &contype, &definition, &foreignSchema, &foreignTable); err != nil {
			return fmt.Errorf("pgcatalog: scanning constraint: %w", err)
		}

		kind, err := constraintKind(contype)
		if err != nil {
			return err
		}

		con := catalog.Constraint{
			Schema: schema, Table: table, Name: name, Kind: kind,
			Definition: definition, ForeignSchema: foreignSchema, ForeignTable: foreignTable,
			OID: oid,
		}
		e.b.AddConstraint(con)
		e.remember(oid, con.StableID())
	}
	return rows.Err()
}

func constraintKind(contype string) (catalog.ConstraintKind, error) {
	switch contype {
	case "p":
		return catalog.PrimaryKey, nil
	case "f":
		return catalog.ForeignKey, nil
	case "u":
		return catalog.Unique, nil
	case "c":
		return catalog.Check, nil
	case "x":
		return catalog.Exclude, nil
	default:
		return "", fmt.Errorf("pgcatalog: unexpected contype %q", contype)
	}
}

const indexesQuery = `
SELECT i.oid, n.nspname, c.relname, ic.relname, pg_get_indexdef(i.indexrelid),
       i.indisprimary, i.indisunique
FROM pg_index i
JOIN pg_class c ON c.oid = i.indrelid
JOIN pg_class ic ON ic.oid = i.indexrelid
JOIN pg_namespace n ON n.oid = c.relnamespace
WHERE n.nspname = ANY($1)
ORDER BY ic.relname`

func (e *extractor) extractIndexes(ctx context.Context) error {
	rows, err := e.conn.Query(ctx, indexesQuery, e.schemas)
	if err != nil {
		return fmt.Errorf("pgcatalog: querying indexes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var oid uint32
		var schema, table, name, definition string
		var isPrimary, isUnique bool
		if err := rows.Scan(&oid, &schema, &table, &name, &definition, &isPrimary, &isUnique); err != nil {
			return fmt.Errorf("pgcatalog: scanning index: %w", err)
		}

		idx := catalog.Index{
			Schema: schema, Table: table, Name: name,
			Definition: definition, IsPrimary: isPrimary, IsUnique: isUnique,
			OID: oid,
		}
		e.b.AddIndex(idx)
		e.remember(oid, idx.StableID())
	}
	return rows.Err()
}
