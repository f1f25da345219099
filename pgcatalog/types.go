package pgcatalog

import (
	"context"
	"fmt"

	"github.com/ddldiff/ddldiff/catalog"
)

const typesQuery = `
SELECT t.oid, n.nspname, t.typname, t.typtype, t.typbasetype::regtype::text,
       COALESCE(pg_get_constraintdef(con.oid), '')
FROM pg_type t
JOIN pg_namespace n ON n.oid = t.typnamespace
LEFT JOIN pg_constraint con ON con.contypid = t.oid
WHERE n.nspname = ANY($1) AND t.typtype IN ('e', 'c', 'd')
  AND t.typrelid = 0 -- excludes the implicit row type of every table
ORDER BY t.typname`

const enumValuesQuery = `
SELECT e.enumlabel
FROM pg_enum e
WHERE e.enumtypid = $1
ORDER BY e.enumsortorder`

// extractTypes reads enums and domains in full. Composite types are
// registered by name and kind only: package catalog does not model a
// composite's member list (see DESIGN.md), so package emit refuses to
// generate DDL for a CreateType of one (a DropType is still emitted).
func (e *extractor) extractTypes(ctx context.Context) error {
	rows, err := e.conn.Query(ctx, typesQuery, e.schemas)
	if err != nil {
		return fmt.Errorf("pgcatalog: querying types: %w", err)
	}
	defer rows.Close()

	type row struct {
		oid                    uint32
		schema, name, typtype  string
		baseType, constraintDef string
	}
	var typeRows []row
	for rows.Next() {
		var r row
		if err := rows.Scan(&r.oid, &r.schema, &r.name, &r.typtype, &r.baseType, &r.constraintDef); err != nil {
			return fmt.Errorf("pgcatalog: scanning type: %w", err)
		}
		typeRows = append(typeRows, r)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for _, r := range typeRows {
		t := catalog.Type{Schema: r.schema, Name: r.name, OID: r.oid}
		switch r.typtype {
		case "e":
			t.Kind = catalog.EnumType
			values, err := e.enumValues(ctx, r.oid)
			if err != nil {
				return err
			}
			t.EnumValues = values
		case "c":
			t.Kind = catalog.CompositeType
		case "d":
			t.Kind = catalog.DomainType
			t.BaseType = r.baseType
			if r.constraintDef != "" {
				t.Constraint = &r.constraintDef
			}
		}

		e.b.AddType(t)
		e.remember(r.oid, t.StableID())
	}
	return nil
}

func (e *extractor) enumValues(ctx context.Context, typeOID uint32) ([]string, error) {
	rows, err := e.conn.Query(ctx, enumValuesQuery, typeOID)
	if err != nil {
		return nil, fmt.Errorf("pgcatalog: querying enum values for oid %d: %w", typeOID, err)
	}
	defer rows.Close()

	var values []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("pgcatalog: scanning enum value: %w", err)
		}
		values = append(values, v)
	}
	return values, rows.Err()
}
