// Package schemadiff implements the per-entity differ of spec.md §4.3: a
// pure, deterministic function that compares two catalog.Catalog snapshots
// and emits the unordered change stream (package change) describing how to
// turn the source into the target. Diff never mutates either catalog and
// never touches a database; it has no failure modes on validated inputs.
package schemadiff

import (
	"sort"

	"github.com/ddldiff/ddldiff/catalog"
	"github.com/ddldiff/ddldiff/change"
)

// Diff compares source against target and returns the unordered stream of
// changes that would bring source to a catalog semantically equal to
// target. The result is deterministic: within each entity kind, changes
// are emitted in three groups (creations, then removals, then changes to
// entities present in both catalogs), each group in stable_id
// lexicographic order; the kind as a whole is therefore not in one single
// stable_id order. The overall list interleaves kinds in a fixed, but
// otherwise insignificant, order — ordering changes relative to each other
// is the constraint solver's job (package planner), not the differ's.
//
// Diff is safe to call concurrently from multiple goroutines: it holds no
// shared mutable state and both catalogs are read-only.
func Diff(source, target *catalog.Catalog) []change.Change {
	var out []change.Change

	out = append(out, diffSchemas(source, target)...)
	out = append(out, diffSequences(source, target)...)
	out = append(out, diffTypes(source, target)...)
	out = append(out, diffTables(source, target)...)
	out = append(out, diffTableRLS(source, target)...)
	out = append(out, diffViews(source, target)...)
	out = append(out, diffMaterializedViews(source, target)...)
	out = append(out, diffIndexes(source, target)...)
	out = append(out, diffConstraints(source, target)...)
	out = append(out, diffRoutines(source, target)...)
	out = append(out, diffTriggers(source, target)...)
	out = append(out, diffPolicies(source, target)...)

	return out
}

func sortedKeys[T any](m map[string]T) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func diffSchemas(source, target *catalog.Catalog) []change.Change {
	var out []change.Change
	srcM, tgtM := source.Schemas(), target.Schemas()

	for _, id := range sortedKeys(tgtM) {
		if _, ok := srcM[id]; !ok {
			out = append(out, change.CreateSchema{Schema: tgtM[id]})
		}
	}
	for _, id := range sortedKeys(srcM) {
		if _, ok := tgtM[id]; !ok {
			out = append(out, change.DropSchema{Schema: srcM[id]})
		}
	}
	// Schemas have no data fields beyond identity, so two schemas sharing
	// a stable_id are always semantically equal: nothing more to emit.
	return out
}

func diffSequences(source, target *catalog.Catalog) []change.Change {
	var out []change.Change
	srcM, tgtM := source.Sequences(), target.Sequences()

	for _, id := range sortedKeys(tgtM) {
		if _, ok := srcM[id]; !ok {
			t := tgtM[id]
			out = append(out, change.CreateSequence{Sequence: t})
			if t.OwnedByTable != nil {
				out = append(out, change.AlterSequenceOwnership{Sequence: t})
			}
		}
	}
	for _, id := range sortedKeys(srcM) {
		if _, ok := tgtM[id]; !ok {
			out = append(out, change.DropSequence{Sequence: srcM[id]})
		}
	}
	for _, id := range sortedKeys(tgtM) {
		s, ok := srcM[id]
		if !ok {
			continue
		}
		t := tgtM[id]
		if !sequenceDataEqual(s, t) {
			out = append(out, change.AlterSequence{Old: s, New: t})
		}
		if !sequenceOwnershipEqual(s, t) {
			out = append(out, change.AlterSequenceOwnership{Sequence: t})
		}
	}
	return out
}

// sequenceDataEqual compares every Sequence field that ALTER SEQUENCE's
// non-ownership clauses can change. Ownership is compared separately by
// sequenceOwnershipEqual: the two are emitted as distinct changes (package
// change's AlterSequence vs AlterSequenceOwnership) because only ownership
// depends on another entity (the owning table) existing first.
func sequenceDataEqual(a, b catalog.Sequence) bool {
	return a.DataType == b.DataType &&
		a.Increment == b.Increment &&
		a.MinValue == b.MinValue &&
		a.MaxValue == b.MaxValue &&
		a.StartValue == b.StartValue &&
		a.Cache == b.Cache &&
		a.Cycle == b.Cycle
}

func sequenceOwnershipEqual(a, b catalog.Sequence) bool {
	return stringPtrEq(a.OwnedBySchema, b.OwnedBySchema) &&
		stringPtrEq(a.OwnedByTable, b.OwnedByTable) &&
		stringPtrEq(a.OwnedByColumn, b.OwnedByColumn)
}

func diffTypes(source, target *catalog.Catalog) []change.Change {
	var out []change.Change
	srcM, tgtM := source.Types(), target.Types()

	for _, id := range sortedKeys(tgtM) {
		if _, ok := srcM[id]; !ok {
			out = append(out, change.CreateType{Type: tgtM[id]})
		}
	}
	for _, id := range sortedKeys(srcM) {
		if _, ok := tgtM[id]; !ok {
			out = append(out, change.DropType{Type: srcM[id]})
		}
	}
	for _, id := range sortedKeys(tgtM) {
		s, ok := srcM[id]
		if !ok {
			continue
		}
		t := tgtM[id]
		if s.SemanticEqual(t) {
			continue
		}
		if s.Kind == catalog.EnumType && t.Kind == catalog.EnumType && isEnumSupersetExtension(s.EnumValues, t.EnumValues) {
			out = append(out, change.AlterType{Type: t, AddedValues: addedEnumValues(s.EnumValues, t.EnumValues)})
			continue
		}
		// Composite/domain changes, or enum value removal/reordering, have
		// no safe in-place ALTER in PostgreSQL: drop then create.
		out = append(out, change.DropType{Type: s}, change.CreateType{Type: t})
	}
	return out
}

// isEnumSupersetExtension reports whether target only adds values to
// source's enum, preserving the existing order of source's values. This is
// the one enum modification PostgreSQL can do in place (ALTER TYPE ... ADD
// VALUE); anything else (removal, reordering) requires a rebuild.
func isEnumSupersetExtension(source, target []string) bool {
	if len(target) < len(source) {
		return false
	}
	for i, v := range source {
		if target[i] != v {
			return false
		}
	}
	return true
}

func addedEnumValues(source, target []string) []string {
	return append([]string(nil), target[len(source):]...)
}

func diffTables(source, target *catalog.Catalog) []change.Change {
	var out []change.Change
	srcM, tgtM := relationsOfKind(source, catalog.Table), relationsOfKind(target, catalog.Table)

	for _, id := range sortedKeys(tgtM) {
		if _, ok := srcM[id]; !ok {
			t := tgtM[id]
			out = append(out, change.CreateTable{Table: t, Columns: catalog.ColumnsOf(target, id)})
		}
	}
	for _, id := range sortedKeys(srcM) {
		if _, ok := tgtM[id]; !ok {
			out = append(out, change.DropTable{Table: srcM[id]})
		}
	}
	for _, id := range sortedKeys(tgtM) {
		if _, ok := srcM[id]; !ok {
			continue
		}
		t := tgtM[id]
		ops := diffColumns(source, target, id)
		if len(ops) > 0 {
			out = append(out, change.NewAlterTable(t, ops))
		}
	}
	return out
}

func relationsOfKind(c *catalog.Catalog, kind catalog.RelationKind) map[string]catalog.Relation {
	out := map[string]catalog.Relation{}
	for id, r := range c.Relations() {
		if r.Kind == kind {
			out[id] = r
		}
	}
	return out
}

// diffColumns compares the columns of the table identified by
// tableStableID across both catalogs, keyed by column name, and returns
// the ordered, normalized AlterTable sub-operations.
func diffColumns(source, target *catalog.Catalog, tableStableID string) []change.ColumnOp {
	srcCols := map[string]catalog.Column{}
	for _, c := range catalog.ColumnsOf(source, tableStableID) {
		srcCols[c.Name] = c
	}
	tgtCols := map[string]catalog.Column{}
	for _, c := range catalog.ColumnsOf(target, tableStableID) {
		tgtCols[c.Name] = c
	}

	var ops []change.ColumnOp
	for _, name := range sortedColumnNames(tgtCols) {
		if _, ok := srcCols[name]; !ok {
			ops = append(ops, change.AddColumn{Column: tgtCols[name]})
		}
	}
	for _, name := range sortedColumnNames(srcCols) {
		if _, ok := tgtCols[name]; !ok {
			ops = append(ops, change.DropColumn{Name: name})
		}
	}
	for _, name := range sortedColumnNames(tgtCols) {
		s, ok := srcCols[name]
		if !ok {
			continue
		}
		t := tgtCols[name]
		if s.SemanticEqual(t) {
			continue
		}
		if s.DataType != t.DataType {
			ops = append(ops, change.AlterColumnType{Name: name, NewType: t.DataType})
		}
		if !stringPtrEq(s.Default, t.Default) {
			if t.Default != nil {
				ops = append(ops, change.SetColumnDefault{Name: name, Default: *t.Default})
			} else {
				ops = append(ops, change.DropColumnDefault{Name: name})
			}
		}
		if s.Nullable != t.Nullable {
			if t.Nullable {
				ops = append(ops, change.DropColumnNotNull{Name: name})
			} else {
				ops = append(ops, change.SetColumnNotNull{Name: name})
			}
		}
	}
	return ops
}

func sortedColumnNames(m map[string]catalog.Column) []string {
	names := make([]string, 0, len(m))
	for n := range m {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func stringPtrEq(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// diffTableRLS resolves spec.md §9's open question about RLS-enabled
// state by emitting it as an explicit table-level change: present for a
// newly-created table only when RLS must be enabled, and for an existing
// table whenever its RLSEnabled flag toggles.
func diffTableRLS(source, target *catalog.Catalog) []change.Change {
	var out []change.Change
	srcM, tgtM := relationsOfKind(source, catalog.Table), relationsOfKind(target, catalog.Table)

	for _, id := range sortedKeys(tgtM) {
		t := tgtM[id]
		s, existed := srcM[id]
		switch {
		case !existed:
			if t.RLSEnabled {
				out = append(out, change.SetTableRLS{Table: t, Enabled: true})
			}
		case s.RLSEnabled != t.RLSEnabled:
			out = append(out, change.SetTableRLS{Table: t, Enabled: t.RLSEnabled})
		}
	}
	return out
}

func diffViews(source, target *catalog.Catalog) []change.Change {
	return diffReplaceableRelation(source, target, catalog.View,
		func(r catalog.Relation) change.Change { return change.CreateView{View: r} },
		func(r catalog.Relation) change.Change { return change.DropView{View: r} },
		func(r catalog.Relation) change.Change { return change.ReplaceView{View: r} },
	)
}

func diffMaterializedViews(source, target *catalog.Catalog) []change.Change {
	var out []change.Change
	srcM, tgtM := relationsOfKind(source, catalog.MaterializedView), relationsOfKind(target, catalog.MaterializedView)

	for _, id := range sortedKeys(tgtM) {
		if _, ok := srcM[id]; !ok {
			out = append(out, change.CreateMaterializedView{View: tgtM[id]})
		}
	}
	for _, id := range sortedKeys(srcM) {
		if _, ok := tgtM[id]; !ok {
			out = append(out, change.DropMaterializedView{View: srcM[id]})
		}
	}
	for _, id := range sortedKeys(tgtM) {
		s, ok := srcM[id]
		if !ok {
			continue
		}
		t := tgtM[id]
		if s.SemanticEqual(t) {
			continue
		}
		// No CREATE OR REPLACE MATERIALIZED VIEW in PostgreSQL: rebuild.
		out = append(out, change.DropMaterializedView{View: s}, change.CreateMaterializedView{View: t})
	}
	return out
}

func diffReplaceableRelation(
	source, target *catalog.Catalog,
	kind catalog.RelationKind,
	onCreate, onDrop, onReplace func(catalog.Relation) change.Change,
) []change.Change {
	var out []change.Change
	srcM, tgtM := relationsOfKind(source, kind), relationsOfKind(target, kind)

	for _, id := range sortedKeys(tgtM) {
		if _, ok := srcM[id]; !ok {
			out = append(out, onCreate(tgtM[id]))
		}
	}
	for _, id := range sortedKeys(srcM) {
		if _, ok := tgtM[id]; !ok {
			out = append(out, onDrop(srcM[id]))
		}
	}
	for _, id := range sortedKeys(tgtM) {
		s, ok := srcM[id]
		if !ok {
			continue
		}
		t := tgtM[id]
		if !s.SemanticEqual(t) {
			out = append(out, onReplace(t))
		}
	}
	return out
}

func diffIndexes(source, target *catalog.Catalog) []change.Change {
	var out []change.Change
	srcM, tgtM := source.Indexes(), target.Indexes()

	for _, id := range sortedKeys(tgtM) {
		if _, ok := srcM[id]; !ok {
			out = append(out, change.CreateIndex{Index: tgtM[id]})
		}
	}
	for _, id := range sortedKeys(srcM) {
		if _, ok := tgtM[id]; !ok {
			out = append(out, change.DropIndex{Index: srcM[id]})
		}
	}
	for _, id := range sortedKeys(tgtM) {
		s, ok := srcM[id]
		if !ok {
			continue
		}
		t := tgtM[id]
		if !s.SemanticEqual(t) {
			// Indexes have no ALTER form for definition changes.
			out = append(out, change.DropIndex{Index: s}, change.CreateIndex{Index: t})
		}
	}
	return out
}

func diffConstraints(source, target *catalog.Catalog) []change.Change {
	var out []change.Change
	srcM, tgtM := source.Constraints(), target.Constraints()

	for _, id := range sortedKeys(tgtM) {
		if _, ok := srcM[id]; !ok {
			out = append(out, change.CreateConstraint{Constraint: tgtM[id]})
		}
	}
	for _, id := range sortedKeys(srcM) {
		if _, ok := tgtM[id]; !ok {
			out = append(out, change.DropConstraint{Constraint: srcM[id]})
		}
	}
	for _, id := range sortedKeys(tgtM) {
		s, ok := srcM[id]
		if !ok {
			continue
		}
		t := tgtM[id]
		if !s.SemanticEqual(t) {
			// PostgreSQL has no generic ALTER CONSTRAINT for definition
			// changes (only deferrability, which this system does not
			// track): rebuild.
			out = append(out, change.DropConstraint{Constraint: s}, change.CreateConstraint{Constraint: t})
		}
	}
	return out
}

func diffRoutines(source, target *catalog.Catalog) []change.Change {
	return diffReplaceableRoutine(source, target)
}

func diffReplaceableRoutine(source, target *catalog.Catalog) []change.Change {
	var out []change.Change
	srcM, tgtM := source.Routines(), target.Routines()

	for _, id := range sortedKeys(tgtM) {
		if _, ok := srcM[id]; !ok {
			out = append(out, change.CreateRoutine{Routine: tgtM[id]})
		}
	}
	for _, id := range sortedKeys(srcM) {
		if _, ok := tgtM[id]; !ok {
			out = append(out, change.DropRoutine{Routine: srcM[id]})
		}
	}
	for _, id := range sortedKeys(tgtM) {
		s, ok := srcM[id]
		if !ok {
			continue
		}
		t := tgtM[id]
		if !s.SemanticEqual(t) {
			out = append(out, change.ReplaceRoutine{Routine: t})
		}
	}
	return out
}

func diffTriggers(source, target *catalog.Catalog) []change.Change {
	var out []change.Change
	srcM, tgtM := source.Triggers(), target.Triggers()

	for _, id := range sortedKeys(tgtM) {
		if _, ok := srcM[id]; !ok {
			out = append(out, change.CreateTrigger{Trigger: tgtM[id]})
		}
	}
	for _, id := range sortedKeys(srcM) {
		if _, ok := tgtM[id]; !ok {
			out = append(out, change.DropTrigger{Trigger: srcM[id]})
		}
	}
	for _, id := range sortedKeys(tgtM) {
		s, ok := srcM[id]
		if !ok {
			continue
		}
		t := tgtM[id]
		if !s.SemanticEqual(t) {
			out = append(out, change.ReplaceTrigger{Trigger: t})
		}
	}
	return out
}

func diffPolicies(source, target *catalog.Catalog) []change.Change {
	var out []change.Change
	srcM, tgtM := source.Policies(), target.Policies()

	for _, id := range sortedKeys(tgtM) {
		if _, ok := srcM[id]; !ok {
			out = append(out, change.CreatePolicy{Policy: tgtM[id]})
		}
	}
	for _, id := range sortedKeys(srcM) {
		if _, ok := tgtM[id]; !ok {
			out = append(out, change.DropPolicy{Policy: srcM[id]})
		}
	}
	for _, id := range sortedKeys(tgtM) {
		s, ok := srcM[id]
		if !ok {
			continue
		}
		t := tgtM[id]
		if !s.SemanticEqual(t) {
			out = append(out, change.AlterPolicy{Old: s, New: t})
		}
	}
	return out
}
