package pgcatalog

import (
	"context"
	"fmt"

	"github.com/ddldiff/ddldiff/catalog"
)

const columnsQuery = `
SELECT n.nspname, c.relname, a.attname, a.attnum,
       format_type(a.atttypid, a.atttypmod), a.attnotnull,
       pg_get_expr(d.adbin, d.adrelid)
FROM pg_attribute a
JOIN pg_class c ON c.oid = a.attrelid
JOIN pg_namespace n ON n.oid = c.relnamespace
LEFT JOIN pg_attrdef d ON d.adrelid = a.attrelid AND d.adnum = a.attnum
WHERE n.nspname = ANY($1)
  AND c.relkind = 'r'
  AND a.attnum > 0
  AND NOT a.attisdropped
ORDER BY c.relname, a.attnum`

// extractColumns reads table columns only: view and materialized-view
// "columns" are fully determined by their captured Definition and are not
// modeled separately (catalog.Column's doc comment).
func (e *extractor) extractColumns(ctx context.Context) error {
	rows, err := e.conn.Query(ctx, columnsQuery, e.schemas)
	if err != nil {
		return fmt.Errorf("pgcatalog: querying columns: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var schema, table, name, dataType string
		var position int32
		var notNull bool
		var def *string
		if err := rows.Scan(&schema, &table, &name, &position, &dataType, &notNull, &def); err != nil {
			return fmt.Errorf("pgcatalog: scanning column: %w", err)
		}

		e.b.AddColumn(catalog.Column{
			Schema: schema, Table: table, Name: name,
			DataType: dataType, Nullable: !notNull, Default: def,
			Position: int(position),
		})
	}
	return rows.Err()
}
