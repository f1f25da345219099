// Package planner implements the operation semantics (spec.md §4.5) and
// constraint solver (spec.md §4.6): it converts a change stream plus its
// dependency subgraph (package depgraph) into an ordered DDL statement
// sequence by generating BEFORE constraints between change indices and
// then topologically sorting them.
package planner

import (
	"fmt"

	"github.com/ddldiff/ddldiff/catalog"
	"github.com/ddldiff/ddldiff/change"
	"github.com/ddldiff/ddldiff/depgraph"
)

// Constraint is an ordering requirement: the change at index Before must
// precede the change at index After in the final output. Reason is kept
// only for diagnostics, per spec.md §4.5.
type Constraint struct {
	Before int
	After  int
	Reason string
}

// BuildConstraints implements spec.md §4.5. For every unordered pair of
// changes it determines, via origin-selected dependency lookups, whether
// one depends on the other, and if so emits the constraint dictated by
// their operations. It also applies the sequence-ownership inversion
// (§4.5 step 4) and the same-stable_id priority ordering (§4.5 step 5).
func BuildConstraints(changes []change.Change, graph *depgraph.Graph) []Constraint {
	var out []Constraint

	for i := 0; i < len(changes); i++ {
		for j := i + 1; j < len(changes); j++ {
			a, b := changes[i], changes[j]

			if c, ok := sequenceOwnershipInversion(i, a, j, b); ok {
				out = append(out, c)
				continue
			}

			if c, ok := dependencyConstraint(i, a, j, b, graph); ok {
				out = append(out, c)
			}
			if c, ok := dependencyConstraint(j, b, i, a, graph); ok {
				out = append(out, c)
			}
		}
	}

	out = append(out, samestableIDPriorityConstraints(changes)...)
	return out
}

// dependencyConstraint tests whether the change at depIdx depends on the
// change at refIdx (spec.md §4.5 steps 1-3) and, if so, returns the
// resulting constraint.
func dependencyConstraint(depIdx int, dep change.Change, refIdx int, ref change.Change, graph *depgraph.Graph) (Constraint, bool) {
	origin := originFor(dep.Operation())
	if !graph.DependsOn(origin, dep.StableID(), ref.StableID()) {
		return Constraint{}, false
	}
	return constraintForOperations(depIdx, dep, refIdx, ref)
}

func originFor(op change.Operation) depgraph.Origin {
	if op == change.Drop {
		return depgraph.Source
	}
	return depgraph.Target
}

func isCAR(op change.Operation) bool {
	return op == change.Create || op == change.Alter || op == change.Replace
}

// constraintForOperations implements the table in spec.md §4.5 step 3.
// The one cell the table leaves unspecified — a Drop depending on a
// Create/Alter/Replace — cannot arise from a well-formed SOURCE-origin
// edge (the referenced object, being newly Created, cannot have existed
// in the source catalog for a SOURCE edge to name it), so it yields no
// constraint; see DESIGN.md.
func constraintForOperations(depIdx int, dep change.Change, refIdx int, ref change.Change) (Constraint, bool) {
	switch {
	case dep.Operation() == change.Drop && ref.Operation() == change.Drop:
		return Constraint{
			Before: depIdx, After: refIdx,
			Reason: fmt.Sprintf("%s (drop) depends on %s (drop): dependents drop first", dep.StableID(), ref.StableID()),
		}, true
	case isCAR(dep.Operation()) && isCAR(ref.Operation()):
		return Constraint{
			Before: refIdx, After: depIdx,
			Reason: fmt.Sprintf("%s depends on %s: referenced object created/altered/replaced first", dep.StableID(), ref.StableID()),
		}, true
	case isCAR(dep.Operation()) && ref.Operation() == change.Drop:
		return Constraint{
			Before: refIdx, After: depIdx,
			Reason: fmt.Sprintf("%s depends on dropped %s: drop precedes reuse", dep.StableID(), ref.StableID()),
		}, true
	default:
		return Constraint{}, false
	}
}

// sequenceOwnershipInversion implements spec.md §4.5 step 4: PostgreSQL's
// own pg_depend reports a column-owned sequence as depending on its table,
// but when both are being created the bare sequence must still be created
// first, because the table's column default references it via nextval().
// This is detected directly from the CreateSequence/CreateTable payloads
// (the catalog.Sequence ownership fields captured at extraction time)
// rather than from the dependency graph, so the inversion applies even
// when the bounded expansion in package depgraph happened not to retain
// that edge. It only overrides the ordering between CreateSequence and
// CreateTable: the ALTER SEQUENCE ... OWNED BY statement itself is a
// separate change (change.AlterSequenceOwnership) that legitimately
// depends on the table and is left to the generic dependencyConstraint
// path below, which schedules it after CreateTable.
func sequenceOwnershipInversion(i int, a change.Change, j int, b change.Change) (Constraint, bool) {
	seqIdx, seq, tableIdx, table, ok := splitSequenceAndTable(i, a, j, b)
	if !ok {
		return Constraint{}, false
	}
	if a.Operation() != change.Create || b.Operation() != change.Create {
		return Constraint{}, false
	}
	if seq.OwnedBySchema == nil || seq.OwnedByTable == nil {
		return Constraint{}, false
	}
	if *seq.OwnedBySchema != table.Schema || *seq.OwnedByTable != table.Name {
		return Constraint{}, false
	}
	return Constraint{
		Before: seqIdx, After: tableIdx,
		Reason: fmt.Sprintf("sequence %s owned by a column of table %s being created: sequence precedes table", seq.StableID(), table.StableID()),
	}, true
}

func splitSequenceAndTable(i int, a change.Change, j int, b change.Change) (seqIdx int, seq catalog.Sequence, tableIdx int, table catalog.Relation, ok bool) {
	if cs, isSeq := a.(change.CreateSequence); isSeq {
		if ct, isTable := b.(change.CreateTable); isTable {
			return i, cs.Sequence, j, ct.Table, true
		}
	}
	if cs, isSeq := b.(change.CreateSequence); isSeq {
		if ct, isTable := a.(change.CreateTable); isTable {
			return j, cs.Sequence, i, ct.Table, true
		}
	}
	return 0, catalog.Sequence{}, 0, catalog.Relation{}, false
}

// samestableIDPriorityConstraints implements spec.md §4.5 step 5: within
// every group of changes sharing a stable_id, Drop precedes Create
// precedes Alter precedes Replace. This is what orders the Drop-then-
// Create pairs package schemadiff emits for entities with no in-place
// ALTER or REPLACE path.
func samestableIDPriorityConstraints(changes []change.Change) []Constraint {
	groups := map[string][]int{}
	for idx, c := range changes {
		groups[c.StableID()] = append(groups[c.StableID()], idx)
	}

	var out []Constraint
	for _, idxs := range groups {
		if len(idxs) < 2 {
			continue
		}
		for x := 0; x < len(idxs); x++ {
			for y := x + 1; y < len(idxs); y++ {
				pi, pj := changes[idxs[x]].Operation().Priority(), changes[idxs[y]].Operation().Priority()
				switch {
				case pi < pj:
					out = append(out, Constraint{Before: idxs[x], After: idxs[y], Reason: "same object: " + changes[idxs[x]].Operation().String() + " precedes " + changes[idxs[y]].Operation().String()})
				case pj < pi:
					out = append(out, Constraint{Before: idxs[y], After: idxs[x], Reason: "same object: " + changes[idxs[y]].Operation().String() + " precedes " + changes[idxs[x]].Operation().String()})
				}
			}
		}
	}
	return out
}
