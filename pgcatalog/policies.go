package pgcatalog

import (
	"context"
	"fmt"

	"github.com/ddldiff/ddldiff/catalog"
)

const policiesQuery = `
SELECT p.oid, n.nspname, c.relname, p.polname, p.polpermissive, p.polcmd,
       pg_get_expr(p.polqual, p.polrelid), pg_get_expr(p.polwithcheck, p.polrelid),
       COALESCE(ARRAY(SELECT rolname FROM pg_roles WHERE oid = ANY(p.polroles)), '{}')
FROM pg_policy p
JOIN pg_class c ON c.oid = p.polrelid
JOIN pg_namespace n ON n.oid = c.relnamespace
WHERE n.nspname = ANY($1)
ORDER BY c.relname, p.polname`

func (e *extractor) extractPolicies(ctx context.Context) error {
	rows, err := e.conn.Query(ctx, policiesQuery, e.schemas)
	if err != nil {
		return fmt.Errorf("pgcatalog: querying policies: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var oid uint32
		var schema, table, name string
		var permissive bool
		var polcmd byte
		var usingExpr, withCheckExpr *string
		var roles []string
		if err := rows.Scan(&oid, &schema, &table, &name, &permissive, &polcmd, &usingExpr, &withCheckExpr, &roles); err != nil {
			return fmt.Errorf("pgcatalog: scanning policy: %w", err)
		}

		pol := catalog.Policy{
			Schema: schema, Table: table, Name: name,
			Permissive: permissive, Command: policyCommand(polcmd),
			Roles: roles, UsingExpr: usingExpr, WithCheckExpr: withCheckExpr,
			OID: oid,
		}
		e.b.AddPolicy(pol)
		e.remember(oid, pol.StableID())
	}
	return rows.Err()
}

func policyCommand(polcmd byte) string {
	switch polcmd {
	case 'r':
		return "SELECT"
	case 'a':
		return "INSERT"
	case 'w':
		return "UPDATE"
	case 'd':
		return "DELETE"
	default:
		return "ALL"
	}
}
