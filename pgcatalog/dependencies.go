package pgcatalog

import (
	"context"
	"fmt"

	"github.com/ddldiff/ddldiff/catalog"
)

// dependenciesQuery reads pg_depend restricted to the "normal", "auto" and
// "extension" dependency kinds; internal and pin (system catalog wiring)
// dependencies are never relevant here and are excluded at the source
// rather than filtered out after the fact.
const dependenciesQuery = `
SELECT d.objid, d.refobjid, d.deptype
FROM pg_depend d
WHERE d.deptype IN ('n', 'a', 'e')
  AND d.objid <> d.refobjid`

func (e *extractor) extractDependencies(ctx context.Context) error {
	rows, err := e.conn.Query(ctx, dependenciesQuery)
	if err != nil {
		return fmt.Errorf("pgcatalog: querying dependencies: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var objID, refObjID uint32
		var deptype string
		if err := rows.Scan(&objID, &refObjID, &deptype); err != nil {
			return fmt.Errorf("pgcatalog: scanning dependency: %w", err)
		}

		dependentID, depOK := e.stableIDFor(objID)
		referencedID, refOK := e.stableIDFor(refObjID)
		if !depOK || !refOK {
			// One or both endpoints are outside this catalog's tracked
			// entities (a role, an extension control object, a system
			// catalog): spec.md §4.4 discards these.
			continue
		}

		e.b.AddDependency(catalog.Dependency{
			DependentID:  dependentID,
			ReferencedID: referencedID,
			Kind:         dependencyKind(deptype),
		})
	}
	return rows.Err()
}

func dependencyKind(deptype string) catalog.DependencyKind {
	switch deptype {
	case "n":
		return catalog.DependencyNormal
	case "a":
		return catalog.DependencyAuto
	case "e":
		return catalog.DependencyExtension
	default:
		return catalog.DependencyUnknown
	}
}
