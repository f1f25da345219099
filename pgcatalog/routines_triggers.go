package pgcatalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/ddldiff/ddldiff/catalog"
)

const routinesQuery = `
SELECT p.oid, n.nspname, p.proname, p.prokind,
       pg_get_function_identity_arguments(p.oid),
       pg_get_functiondef(p.oid)
FROM pg_proc p
JOIN pg_namespace n ON n.oid = p.pronamespace
WHERE n.nspname = ANY($1)
ORDER BY p.proname`

func (e *extractor) extractRoutines(ctx context.Context) error {
	rows, err := e.conn.Query(ctx, routinesQuery, e.schemas)
	if err != nil {
		return fmt.Errorf("pgcatalog: querying routines: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var oid uint32
		var schema, name, prokind, argTypes, definition string
		if err := rows.Scan(&oid, &schema, &name, &prokind, &argTypes, &definition); err != nil {
			return fmt.Errorf("pgcatalog: scanning routine: %w", err)
		}

		kind := catalog.FunctionRoutine
		if prokind == "p" {
			kind = catalog.ProcedureRoutine
		}

		r := catalog.Routine{Schema: schema, Name: name, ArgTypes: argTypes, Kind: kind, Definition: definition, OID: oid}
		e.b.AddRoutine(r)
		e.remember(oid, r.StableID())
	}
	return rows.Err()
}

const triggersQuery = `
SELECT t.oid, n.nspname, c.relname, t.tgname, pg_get_triggerdef(t.oid)
FROM pg_trigger t
JOIN pg_class c ON c.oid = t.tgrelid
JOIN pg_namespace n ON n.oid = c.relnamespace
WHERE n.nspname = ANY($1) AND NOT t.tgisinternal
ORDER BY c.relname, t.tgname`

func (e *extractor) extractTriggers(ctx context.Context) error {
	rows, err := e.conn.Query(ctx, triggersQuery, e.schemas)
	if err != nil {
		return fmt.Errorf("pgcatalog: querying triggers: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var oid uint32
		var schema, table, name, definition string
		if err := rows.Scan(&oid, &schema, &table, &name, &definition); err != nil {
			return fmt.Errorf("pgcatalog: scanning trigger: %w", err)
		}

		trg := catalog.Trigger{Schema: schema, Table: table, Name: name, Definition: strings.TrimSpace(definition), OID: oid}
		e.b.AddTrigger(trg)
		e.remember(oid, trg.StableID())
	}
	return rows.Err()
}
