package pgcatalog

import (
	"context"
	"fmt"

	"github.com/ddldiff/ddldiff/catalog"
)

const sequencesQuery = `
SELECT c.oid, n.nspname, c.relname, s.seqtypid::regtype::text,
       s.seqincrement, s.seqmin, s.seqmax, s.seqstart, s.seqcache, s.seqcycle
FROM pg_sequence s
JOIN pg_class c ON c.oid = s.seqrelid
JOIN pg_namespace n ON n.oid = c.relnamespace
WHERE n.nspname = ANY($1)
ORDER BY c.relname`

// sequenceOwnershipQuery finds the column a sequence is OWNED BY, the
// deptype='a' ("auto") edge PostgreSQL records for SERIAL-style columns.
const sequenceOwnershipQuery = `
SELECT tn.nspname, tc.relname, ta.attname
FROM pg_depend d
JOIN pg_class tc ON tc.oid = d.refobjid
JOIN pg_namespace tn ON tn.oid = tc.relnamespace
JOIN pg_attribute ta ON ta.attrelid = d.refobjid AND ta.attnum = d.refobjsubid
WHERE d.objid = $1 AND d.classid = 'pg_class'::regclass AND d.deptype = 'a'`

func (e *extractor) extractSequences(ctx context.Context) error {
	rows, err := e.conn.Query(ctx, sequencesQuery, e.schemas)
	if err != nil {
		return fmt.Errorf("pgcatalog: querying sequences: %w", err)
	}
	defer rows.Close()

	type row struct {
		oid                                           uint32
		schema, name, dataType                        string
		increment, min, max, start, cache             int64
		cycle                                          bool
	}
	var seqs []row
	for rows.Next() {
		var r row
		if err := rows.Scan(&r.oid, &r.schema, &r.name, &r.dataType, &r.increment, &r.min, &r.max, &r.start, &r.cache, &r.cycle); err != nil {
			return fmt.Errorf("pgcatalog: scanning sequence: %w", err)
		}
		seqs = append(seqs, r)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for _, r := range seqs {
		seq := catalog.Sequence{
			Schema: r.schema, Name: r.name, DataType: r.dataType,
			Increment: r.increment, MinValue: r.min, MaxValue: r.max,
			StartValue: r.start, Cache: r.cache, Cycle: r.cycle, OID: r.oid,
		}

		var ownedSchema, ownedTable, ownedColumn string
		err := e.conn.QueryRow(ctx, sequenceOwnershipQuery, r.oid).Scan(&ownedSchema, &ownedTable, &ownedColumn)
		switch {
		case err == nil:
			seq.OwnedBySchema, seq.OwnedByTable, seq.OwnedByColumn = &ownedSchema, &ownedTable, &ownedColumn
		case isNoRows(err):
			// Standalone sequence, not owned by any column.
		default:
			return fmt.Errorf("pgcatalog: resolving ownership for sequence %s.%s: %w", r.schema, r.name, err)
		}

		e.b.AddSequence(seq)
		e.remember(r.oid, seq.StableID())
	}
	return nil
}
