package catalog

import "fmt"

// SemanticEqual reports whether two entities are semantically equal: their
// concrete Go type matches, and every identity and data field compares
// equal. Internal fields (like OID) are never consulted. a and b must both
// be one of the concrete entity types defined in this package; any other
// type (including a type mismatch between a and b) is not semantically
// equal.
func SemanticEqual(a, b any) bool {
	switch av := a.(type) {
	case Schema:
		bv, ok := b.(Schema)
		return ok && av.SemanticEqual(bv)
	case Relation:
		bv, ok := b.(Relation)
		return ok && av.SemanticEqual(bv)
	case Column:
		bv, ok := b.(Column)
		return ok && av.SemanticEqual(bv)
	case Constraint:
		bv, ok := b.(Constraint)
		return ok && av.SemanticEqual(bv)
	case Index:
		bv, ok := b.(Index)
		return ok && av.SemanticEqual(bv)
	case Sequence:
		bv, ok := b.(Sequence)
		return ok && av.SemanticEqual(bv)
	case Policy:
		bv, ok := b.(Policy)
		return ok && av.SemanticEqual(bv)
	case Routine:
		bv, ok := b.(Routine)
		return ok && av.SemanticEqual(bv)
	case Trigger:
		bv, ok := b.(Trigger)
		return ok && av.SemanticEqual(bv)
	case Type:
		bv, ok := b.(Type)
		return ok && av.SemanticEqual(bv)
	default:
		return false
	}
}

// CatalogSemanticEqual reports whether two catalogs contain the same set
// of entity stable_ids and whether every corresponding pair is
// semantically equal. The raw Dependencies edge list is not part of
// identity (it is derived, not a keyed collection) and is not compared.
//
// The predicate is reflexive, symmetric, and transitive by construction:
// it reduces to equality of (stable_id -> entity) maps under a symmetric,
// transitive per-type equality, and map equality inherits those
// properties.
func CatalogSemanticEqual(a, b *Catalog) bool {
	return mapEqual(a.schemas, b.schemas, Schema.SemanticEqual) &&
		mapEqual(a.relations, b.relations, Relation.SemanticEqual) &&
		mapEqual(a.columns, b.columns, Column.SemanticEqual) &&
		mapEqual(a.constraints, b.constraints, Constraint.SemanticEqual) &&
		mapEqual(a.indexes, b.indexes, Index.SemanticEqual) &&
		mapEqual(a.sequences, b.sequences, Sequence.SemanticEqual) &&
		mapEqual(a.policies, b.policies, Policy.SemanticEqual) &&
		mapEqual(a.routines, b.routines, Routine.SemanticEqual) &&
		mapEqual(a.triggers, b.triggers, Trigger.SemanticEqual) &&
		mapEqual(a.types, b.types, Type.SemanticEqual)
}

func mapEqual[T any](a, b map[string]T, eq func(T, T) bool) bool {
	if len(a) != len(b) {
		return false
	}
	for id, va := range a {
		vb, ok := b[id]
		if !ok || !eq(va, vb) {
			return false
		}
	}
	return true
}

// InvariantError reports a violated catalog invariant detected during
// Build: a dangling reference or a duplicate stable_id. It is fatal; the
// core refuses to operate on an invalid catalog.
type InvariantError struct {
	Violations []string
}

func (e *InvariantError) Error() string {
	if len(e.Violations) == 1 {
		return fmt.Sprintf("catalog: invariant violation: %s", e.Violations[0])
	}
	return fmt.Sprintf("catalog: %d invariant violations, first: %s", len(e.Violations), e.Violations[0])
}
