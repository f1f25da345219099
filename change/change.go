// Package change defines the change taxonomy: one tagged variant per
// (entity, operation) pair, each carrying the minimal payload needed for
// DDL emission (package emit) and dependency analysis (packages depgraph
// and planner). Changes are produced by package schemadiff and are
// immutable once created.
package change

import "github.com/ddldiff/ddldiff/catalog"

// Operation discriminates what is being done to an entity.
type Operation int

const (
	Create Operation = iota
	Drop
	Alter
	Replace
)

func (o Operation) String() string {
	switch o {
	case Create:
		return "CREATE"
	case Drop:
		return "DROP"
	case Alter:
		return "ALTER"
	case Replace:
		return "REPLACE"
	default:
		return "UNKNOWN"
	}
}

// Priority implements the same-object ordering from spec §4.5 step 5:
// Drop < Create < Alter < Replace.
func (o Operation) Priority() int {
	switch o {
	case Drop:
		return 0
	case Create:
		return 1
	case Alter:
		return 2
	case Replace:
		return 3
	default:
		return 99
	}
}

// Change is implemented by every tagged variant in this package. StableID
// identifies the affected entity; this is the identity the dependency
// extractor and constraint solver key on.
type Change interface {
	StableID() string
	Operation() Operation
	// Kind names the entity kind for diagnostics (e.g. "table", "index").
	Kind() string
}

// --- Schema ---

type CreateSchema struct{ Schema catalog.Schema }

func (c CreateSchema) StableID() string    { return c.Schema.StableID() }
func (CreateSchema) Operation() Operation  { return Create }
func (CreateSchema) Kind() string          { return "schema" }

type DropSchema struct{ Schema catalog.Schema }

func (c DropSchema) StableID() string   { return c.Schema.StableID() }
func (DropSchema) Operation() Operation { return Drop }
func (DropSchema) Kind() string         { return "schema" }

// --- Table ---

type CreateTable struct {
	Table   catalog.Relation
	Columns []catalog.Column // ordered by position
}

func (c CreateTable) StableID() string   { return c.Table.StableID() }
func (CreateTable) Operation() Operation { return Create }
func (CreateTable) Kind() string         { return "table" }

type DropTable struct{ Table catalog.Relation }

func (c DropTable) StableID() string   { return c.Table.StableID() }
func (DropTable) Operation() Operation { return Drop }
func (DropTable) Kind() string         { return "table" }

// ColumnOp is one sub-operation inside an AlterTable change.
type ColumnOp interface {
	columnName() string
	subPriority() int
}

type AddColumn struct{ Column catalog.Column }

func (o AddColumn) columnName() string { return o.Column.Name }
func (AddColumn) subPriority() int     { return 1 }

type DropColumn struct{ Name string }

func (o DropColumn) columnName() string { return o.Name }
func (DropColumn) subPriority() int     { return 0 }

// AlterColumnType changes a column's data type. Using, when non-empty, is
// the USING expression PostgreSQL needs for non-trivial casts.
type AlterColumnType struct {
	Name     string
	NewType  string
	Using    string
}

func (o AlterColumnType) columnName() string { return o.Name }
func (AlterColumnType) subPriority() int     { return 2 }

type SetColumnDefault struct {
	Name    string
	Default string
}

func (o SetColumnDefault) columnName() string { return o.Name }
func (SetColumnDefault) subPriority() int      { return 3 }

type DropColumnDefault struct{ Name string }

func (o DropColumnDefault) columnName() string { return o.Name }
func (DropColumnDefault) subPriority() int      { return 3 }

type SetColumnNotNull struct{ Name string }

func (o SetColumnNotNull) columnName() string { return o.Name }
func (SetColumnNotNull) subPriority() int      { return 4 }

type DropColumnNotNull struct{ Name string }

func (o DropColumnNotNull) columnName() string { return o.Name }
func (DropColumnNotNull) subPriority() int      { return 4 }

// AlterTable bundles every column-level sub-operation for one table into a
// single change. NewAlterTable normalizes sub-operation order per spec
// §4.2: drops before adds of the same column name, and type changes
// before default changes on the same column.
type AlterTable struct {
	Table      catalog.Relation
	Operations []ColumnOp
}

func (c AlterTable) StableID() string   { return c.Table.StableID() }
func (AlterTable) Operation() Operation { return Alter }
func (AlterTable) Kind() string         { return "table" }

// NewAlterTable builds an AlterTable change with normalized sub-operation
// order: grouped by column name (alphabetically, for determinism), with
// each column's own operations ordered by subPriority.
func NewAlterTable(table catalog.Relation, ops []ColumnOp) AlterTable {
	normalized := make([]ColumnOp, len(ops))
	copy(normalized, ops)
	stableSortColumnOps(normalized)
	return AlterTable{Table: table, Operations: normalized}
}

func stableSortColumnOps(ops []ColumnOp) {
	// Insertion sort keyed by (column name, sub-priority), stable with
	// respect to ties: small slices, no need for sort.Slice's overhead or
	// import.
	for i := 1; i < len(ops); i++ {
		j := i
		for j > 0 && columnOpLess(ops[j], ops[j-1]) {
			ops[j-1], ops[j] = ops[j], ops[j-1]
			j--
		}
	}
}

func columnOpLess(a, b ColumnOp) bool {
	if a.columnName() != b.columnName() {
		return a.columnName() < b.columnName()
	}
	return a.subPriority() < b.subPriority()
}

// --- Index ---

type CreateIndex struct{ Index catalog.Index }

func (c CreateIndex) StableID() string   { return c.Index.StableID() }
func (CreateIndex) Operation() Operation { return Create }
func (CreateIndex) Kind() string         { return "index" }

type DropIndex struct{ Index catalog.Index }

func (c DropIndex) StableID() string   { return c.Index.StableID() }
func (DropIndex) Operation() Operation { return Drop }
func (DropIndex) Kind() string         { return "index" }

// --- Constraint ---

type CreateConstraint struct{ Constraint catalog.Constraint }

func (c CreateConstraint) StableID() string   { return c.Constraint.StableID() }
func (CreateConstraint) Operation() Operation { return Create }
func (CreateConstraint) Kind() string         { return "constraint" }

type DropConstraint struct{ Constraint catalog.Constraint }

func (c DropConstraint) StableID() string   { return c.Constraint.StableID() }
func (DropConstraint) Operation() Operation { return Drop }
func (DropConstraint) Kind() string         { return "constraint" }

// --- Sequence ---

type CreateSequence struct{ Sequence catalog.Sequence }

func (c CreateSequence) StableID() string   { return c.Sequence.StableID() }
func (CreateSequence) Operation() Operation { return Create }
func (CreateSequence) Kind() string         { return "sequence" }

type DropSequence struct{ Sequence catalog.Sequence }

func (c DropSequence) StableID() string   { return c.Sequence.StableID() }
func (DropSequence) Operation() Operation { return Drop }
func (DropSequence) Kind() string         { return "sequence" }

// AlterSequence carries the full target definition; the emitter computes
// the ALTER SEQUENCE clauses that changed. It never touches ownership —
// see AlterSequenceOwnership — since the two have different dependency
// requirements: ownership depends on the owning table existing, the rest
// of a sequence's definition does not.
type AlterSequence struct {
	Old catalog.Sequence
	New catalog.Sequence
}

func (c AlterSequence) StableID() string   { return c.New.StableID() }
func (AlterSequence) Operation() Operation { return Alter }
func (AlterSequence) Kind() string         { return "sequence" }

// AlterSequenceOwnership is its own change, separate from CreateSequence
// and AlterSequence, because it has a dependency CreateSequence does not:
// ALTER SEQUENCE ... OWNED BY <table>.<col> requires the owning table to
// already exist, so when both the sequence and its owning table are being
// created, this must be scheduled after the table's CreateTable while the
// bare CreateSequence (needed for any column DEFAULT referencing it) still
// precedes the table. Sequence carries the target ownership (nil
// OwnedByTable means the ownership is being cleared).
type AlterSequenceOwnership struct{ Sequence catalog.Sequence }

func (c AlterSequenceOwnership) StableID() string   { return c.Sequence.StableID() }
func (AlterSequenceOwnership) Operation() Operation { return Alter }
func (AlterSequenceOwnership) Kind() string         { return "sequence" }

// --- View ---

type CreateView struct{ View catalog.Relation }

func (c CreateView) StableID() string   { return c.View.StableID() }
func (CreateView) Operation() Operation { return Create }
func (CreateView) Kind() string         { return "view" }

type DropView struct{ View catalog.Relation }

func (c DropView) StableID() string   { return c.View.StableID() }
func (DropView) Operation() Operation { return Drop }
func (DropView) Kind() string         { return "view" }

type ReplaceView struct{ View catalog.Relation }

func (c ReplaceView) StableID() string   { return c.View.StableID() }
func (ReplaceView) Operation() Operation { return Replace }
func (ReplaceView) Kind() string         { return "view" }

// --- Materialized view ---
//
// PostgreSQL has no CREATE OR REPLACE MATERIALIZED VIEW, so unlike views,
// a changed materialized view is always a Drop followed by a Create (see
// DESIGN.md for why this departs from the illustrative Replace list in
// spec.md §4.2: spec.md's own Non-goals rule out inventing DDL PostgreSQL
// cannot express).

type CreateMaterializedView struct{ View catalog.Relation }

func (c CreateMaterializedView) StableID() string   { return c.View.StableID() }
func (CreateMaterializedView) Operation() Operation { return Create }
func (CreateMaterializedView) Kind() string         { return "materialized_view" }

type DropMaterializedView struct{ View catalog.Relation }

func (c DropMaterializedView) StableID() string   { return c.View.StableID() }
func (DropMaterializedView) Operation() Operation { return Drop }
func (DropMaterializedView) Kind() string         { return "materialized_view" }

// --- Routine (function / procedure) ---

type CreateRoutine struct{ Routine catalog.Routine }

func (c CreateRoutine) StableID() string   { return c.Routine.StableID() }
func (CreateRoutine) Operation() Operation { return Create }
func (CreateRoutine) Kind() string         { return "routine" }

type DropRoutine struct{ Routine catalog.Routine }

func (c DropRoutine) StableID() string   { return c.Routine.StableID() }
func (DropRoutine) Operation() Operation { return Drop }
func (DropRoutine) Kind() string         { return "routine" }

type ReplaceRoutine struct{ Routine catalog.Routine }

func (c ReplaceRoutine) StableID() string   { return c.Routine.StableID() }
func (ReplaceRoutine) Operation() Operation { return Replace }
func (ReplaceRoutine) Kind() string         { return "routine" }

// --- Trigger ---

type CreateTrigger struct{ Trigger catalog.Trigger }

func (c CreateTrigger) StableID() string   { return c.Trigger.StableID() }
func (CreateTrigger) Operation() Operation { return Create }
func (CreateTrigger) Kind() string         { return "trigger" }

type DropTrigger struct{ Trigger catalog.Trigger }

func (c DropTrigger) StableID() string   { return c.Trigger.StableID() }
func (DropTrigger) Operation() Operation { return Drop }
func (DropTrigger) Kind() string         { return "trigger" }

type ReplaceTrigger struct{ Trigger catalog.Trigger }

func (c ReplaceTrigger) StableID() string   { return c.Trigger.StableID() }
func (ReplaceTrigger) Operation() Operation { return Replace }
func (ReplaceTrigger) Kind() string         { return "trigger" }

// --- Type ---

type CreateType struct{ Type catalog.Type }

func (c CreateType) StableID() string   { return c.Type.StableID() }
func (CreateType) Operation() Operation { return Create }
func (CreateType) Kind() string         { return "type" }

type DropType struct{ Type catalog.Type }

func (c DropType) StableID() string   { return c.Type.StableID() }
func (DropType) Operation() Operation { return Drop }
func (DropType) Kind() string         { return "type" }

// AlterType currently only models enum value addition (ADD VALUE), the
// only alteration PostgreSQL allows without a rebuild; any other type
// change falls back to drop-then-create in the differ.
type AlterType struct {
	Type        catalog.Type
	AddedValues []string
}

func (c AlterType) StableID() string   { return c.Type.StableID() }
func (AlterType) Operation() Operation { return Alter }
func (AlterType) Kind() string         { return "type" }

// --- Policy ---

type CreatePolicy struct{ Policy catalog.Policy }

func (c CreatePolicy) StableID() string   { return c.Policy.StableID() }
func (CreatePolicy) Operation() Operation { return Create }
func (CreatePolicy) Kind() string         { return "policy" }

type DropPolicy struct{ Policy catalog.Policy }

func (c DropPolicy) StableID() string   { return c.Policy.StableID() }
func (DropPolicy) Operation() Operation { return Drop }
func (DropPolicy) Kind() string         { return "policy" }

type AlterPolicy struct {
	Old catalog.Policy
	New catalog.Policy
}

func (c AlterPolicy) StableID() string   { return c.New.StableID() }
func (AlterPolicy) Operation() Operation { return Alter }
func (AlterPolicy) Kind() string         { return "policy" }

// SetTableRLS is the explicit table-level change resolving spec.md §9's
// open question about RLS-enabled state: enabling or disabling row-level
// security is its own change, never bundled into AlterTable.
type SetTableRLS struct {
	Table   catalog.Relation
	Enabled bool
}

func (c SetTableRLS) StableID() string   { return c.Table.StableID() }
func (SetTableRLS) Operation() Operation { return Alter }
func (SetTableRLS) Kind() string         { return "table_rls" }
