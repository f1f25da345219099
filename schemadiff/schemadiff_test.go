package schemadiff_test

import (
	"testing"

	"github.com/frankban/quicktest"

	"github.com/ddldiff/ddldiff/catalog"
	"github.com/ddldiff/ddldiff/change"
	"github.com/ddldiff/ddldiff/schemadiff"
)

func build(t *testing.T, b *catalog.Builder) *catalog.Catalog {
	t.Helper()
	cat, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}
	return cat
}

func strp(s string) *string { return &s }

// TestDiff_IdentityProducesNoChanges covers the identity property
// (Diff(A, A) is empty) required by spec's testable properties.
func TestDiff_IdentityProducesNoChanges(t *testing.T) {
	c := quicktest.New(t)

	b := catalog.NewBuilder().
		AddSchema(catalog.Schema{Name: "public"}).
		AddRelation(catalog.Relation{Kind: catalog.Table, Schema: "public", Name: "users"}).
		AddColumn(catalog.Column{Schema: "public", Table: "users", Name: "id", DataType: "bigint", Position: 1})
	cat := build(t, b)

	c.Assert(schemadiff.Diff(cat, cat), quicktest.HasLen, 0)
}

// TestDiff_NewTableEmitsCreateWithOrderedColumns covers spec scenario 1:
// adding a brand-new table produces a single CreateTable change carrying
// its columns in position order.
func TestDiff_NewTableEmitsCreateWithOrderedColumns(t *testing.T) {
	c := quicktest.New(t)

	source := build(t, catalog.NewBuilder().AddSchema(catalog.Schema{Name: "public"}))
	target := build(t, catalog.NewBuilder().
		AddSchema(catalog.Schema{Name: "public"}).
		AddRelation(catalog.Relation{Kind: catalog.Table, Schema: "public", Name: "orders"}).
		AddColumn(catalog.Column{Schema: "public", Table: "orders", Name: "total", DataType: "numeric", Position: 2}).
		AddColumn(catalog.Column{Schema: "public", Table: "orders", Name: "id", DataType: "bigint", Position: 1}))

	changes := schemadiff.Diff(source, target)

	var created *change.CreateTable
	for i := range changes {
		if ct, ok := changes[i].(change.CreateTable); ok {
			created = &ct
		}
	}
	c.Assert(created, quicktest.Not(quicktest.IsNil))
	c.Assert(len(created.Columns), quicktest.Equals, 2)
	c.Assert(created.Columns[0].Name, quicktest.Equals, "id")
	c.Assert(created.Columns[1].Name, quicktest.Equals, "total")
}

// TestDiff_ColumnTypeChangeEmitsAlterColumnType covers spec scenario 4.
func TestDiff_ColumnTypeChangeEmitsAlterColumnType(t *testing.T) {
	c := quicktest.New(t)

	source := build(t, catalog.NewBuilder().
		AddSchema(catalog.Schema{Name: "public"}).
		AddRelation(catalog.Relation{Kind: catalog.Table, Schema: "public", Name: "users"}).
		AddColumn(catalog.Column{Schema: "public", Table: "users", Name: "age", DataType: "smallint", Position: 1}))
	target := build(t, catalog.NewBuilder().
		AddSchema(catalog.Schema{Name: "public"}).
		AddRelation(catalog.Relation{Kind: catalog.Table, Schema: "public", Name: "users"}).
		AddColumn(catalog.Column{Schema: "public", Table: "users", Name: "age", DataType: "integer", Position: 1}))

	changes := schemadiff.Diff(source, target)

	var alter *change.AlterTable
	for i := range changes {
		if at, ok := changes[i].(change.AlterTable); ok {
			alter = &at
		}
	}
	c.Assert(alter, quicktest.Not(quicktest.IsNil))
	c.Assert(len(alter.Operations), quicktest.Equals, 1)
	typeOp, ok := alter.Operations[0].(change.AlterColumnType)
	c.Assert(ok, quicktest.IsTrue)
	c.Assert(typeOp.NewType, quicktest.Equals, "integer")
}

func TestDiff_EnumSupersetExtensionEmitsAlterType(t *testing.T) {
	c := quicktest.New(t)

	source := build(t, catalog.NewBuilder().
		AddSchema(catalog.Schema{Name: "public"}).
		AddType(catalog.Type{Schema: "public", Name: "order_status", Kind: catalog.EnumType, EnumValues: []string{"pending", "shipped"}}))
	target := build(t, catalog.NewBuilder().
		AddSchema(catalog.Schema{Name: "public"}).
		AddType(catalog.Type{Schema: "public", Name: "order_status", Kind: catalog.EnumType, EnumValues: []string{"pending", "shipped", "refunded"}}))

	changes := schemadiff.Diff(source, target)
	c.Assert(len(changes), quicktest.Equals, 1)
	alter, ok := changes[0].(change.AlterType)
	c.Assert(ok, quicktest.IsTrue)
	c.Assert(alter.AddedValues, quicktest.DeepEquals, []string{"refunded"})
}

func TestDiff_EnumReorderFallsBackToDropCreate(t *testing.T) {
	c := quicktest.New(t)

	source := build(t, catalog.NewBuilder().
		AddSchema(catalog.Schema{Name: "public"}).
		AddType(catalog.Type{Schema: "public", Name: "order_status", Kind: catalog.EnumType, EnumValues: []string{"pending", "shipped"}}))
	target := build(t, catalog.NewBuilder().
		AddSchema(catalog.Schema{Name: "public"}).
		AddType(catalog.Type{Schema: "public", Name: "order_status", Kind: catalog.EnumType, EnumValues: []string{"shipped", "pending"}}))

	changes := schemadiff.Diff(source, target)
	c.Assert(len(changes), quicktest.Equals, 2)
	_, isDrop := changes[0].(change.DropType)
	_, isCreate := changes[1].(change.CreateType)
	c.Assert(isDrop, quicktest.IsTrue)
	c.Assert(isCreate, quicktest.IsTrue)
}

func TestDiff_NewTableWithRLSEmitsSetTableRLS(t *testing.T) {
	c := quicktest.New(t)

	source := build(t, catalog.NewBuilder().AddSchema(catalog.Schema{Name: "public"}))
	target := build(t, catalog.NewBuilder().
		AddSchema(catalog.Schema{Name: "public"}).
		AddRelation(catalog.Relation{Kind: catalog.Table, Schema: "public", Name: "orders", RLSEnabled: true}))

	changes := schemadiff.Diff(source, target)
	var rls *change.SetTableRLS
	for i := range changes {
		if r, ok := changes[i].(change.SetTableRLS); ok {
			rls = &r
		}
	}
	c.Assert(rls, quicktest.Not(quicktest.IsNil))
	c.Assert(rls.Enabled, quicktest.IsTrue)
}

func TestDiff_ReplaceableViewDefinitionChangeEmitsReplace(t *testing.T) {
	c := quicktest.New(t)

	source := build(t, catalog.NewBuilder().
		AddSchema(catalog.Schema{Name: "public"}).
		AddRelation(catalog.Relation{Kind: catalog.View, Schema: "public", Name: "active_users", Definition: "SELECT 1"}))
	target := build(t, catalog.NewBuilder().
		AddSchema(catalog.Schema{Name: "public"}).
		AddRelation(catalog.Relation{Kind: catalog.View, Schema: "public", Name: "active_users", Definition: "SELECT 2"}))

	changes := schemadiff.Diff(source, target)
	c.Assert(len(changes), quicktest.Equals, 1)
	_, ok := changes[0].(change.ReplaceView)
	c.Assert(ok, quicktest.IsTrue)
}

func TestDiff_MaterializedViewChangeFallsBackToDropCreate(t *testing.T) {
	c := quicktest.New(t)

	source := build(t, catalog.NewBuilder().
		AddSchema(catalog.Schema{Name: "public"}).
		AddRelation(catalog.Relation{Kind: catalog.MaterializedView, Schema: "public", Name: "totals", Definition: "SELECT 1"}))
	target := build(t, catalog.NewBuilder().
		AddSchema(catalog.Schema{Name: "public"}).
		AddRelation(catalog.Relation{Kind: catalog.MaterializedView, Schema: "public", Name: "totals", Definition: "SELECT 2"}))

	changes := schemadiff.Diff(source, target)
	c.Assert(len(changes), quicktest.Equals, 2)
	_, isDrop := changes[0].(change.DropMaterializedView)
	_, isCreate := changes[1].(change.CreateMaterializedView)
	c.Assert(isDrop, quicktest.IsTrue)
	c.Assert(isCreate, quicktest.IsTrue)
}

func TestDiff_PolicyChangeEmitsAlterPolicy(t *testing.T) {
	c := quicktest.New(t)

	source := build(t, catalog.NewBuilder().
		AddSchema(catalog.Schema{Name: "public"}).
		AddRelation(catalog.Relation{Kind: catalog.Table, Schema: "public", Name: "orders"}).
		AddPolicy(catalog.Policy{Schema: "public", Table: "orders", Name: "tenant_isolation", Command: "ALL", UsingExpr: strp("true")}))
	target := build(t, catalog.NewBuilder().
		AddSchema(catalog.Schema{Name: "public"}).
		AddRelation(catalog.Relation{Kind: catalog.Table, Schema: "public", Name: "orders"}).
		AddPolicy(catalog.Policy{Schema: "public", Table: "orders", Name: "tenant_isolation", Command: "ALL", UsingExpr: strp("tenant_id = 1")}))

	changes := schemadiff.Diff(source, target)
	var alter *change.AlterPolicy
	for i := range changes {
		if a, ok := changes[i].(change.AlterPolicy); ok {
			alter = &a
		}
	}
	c.Assert(alter, quicktest.Not(quicktest.IsNil))
	c.Assert(*alter.New.UsingExpr, quicktest.Equals, "tenant_id = 1")
}

// TestDiff_NewOwnedSequenceEmitsSeparateOwnershipChange covers spec
// scenario 3: a brand-new column-owned sequence must produce its OWNED BY
// attachment as a distinct change from the CREATE SEQUENCE, so the planner
// is free to schedule it after the owning table is created.
func TestDiff_NewOwnedSequenceEmitsSeparateOwnershipChange(t *testing.T) {
	c := quicktest.New(t)

	source := build(t, catalog.NewBuilder().AddSchema(catalog.Schema{Name: "public"}))
	target := build(t, catalog.NewBuilder().
		AddSchema(catalog.Schema{Name: "public"}).
		AddSequence(catalog.Sequence{
			Schema: "public", Name: "orders_id_seq", DataType: "bigint",
			OwnedBySchema: strp("public"), OwnedByTable: strp("orders"), OwnedByColumn: strp("id"),
		}))

	changes := schemadiff.Diff(source, target)

	var created *change.CreateSequence
	var ownership *change.AlterSequenceOwnership
	for i := range changes {
		switch v := changes[i].(type) {
		case change.CreateSequence:
			created = &v
		case change.AlterSequenceOwnership:
			ownership = &v
		}
	}
	c.Assert(created, quicktest.Not(quicktest.IsNil))
	c.Assert(ownership, quicktest.Not(quicktest.IsNil))
	c.Assert(*ownership.Sequence.OwnedByTable, quicktest.Equals, "orders")
}

// TestDiff_OwnershipOnlyChangeEmitsAlterSequenceOwnership covers the
// in-place case: re-pointing an existing sequence at a different owning
// column must not be folded into AlterSequence, since that change touches
// only the non-ownership clauses (INCREMENT BY, CACHE, etc).
func TestDiff_OwnershipOnlyChangeEmitsAlterSequenceOwnership(t *testing.T) {
	c := quicktest.New(t)

	source := build(t, catalog.NewBuilder().
		AddSchema(catalog.Schema{Name: "public"}).
		AddSequence(catalog.Sequence{
			Schema: "public", Name: "orders_id_seq", DataType: "bigint",
			OwnedBySchema: strp("public"), OwnedByTable: strp("orders"), OwnedByColumn: strp("id"),
		}))
	target := build(t, catalog.NewBuilder().
		AddSchema(catalog.Schema{Name: "public"}).
		AddSequence(catalog.Sequence{
			Schema: "public", Name: "orders_id_seq", DataType: "bigint",
			OwnedBySchema: strp("public"), OwnedByTable: strp("orders"), OwnedByColumn: strp("legacy_id"),
		}))

	changes := schemadiff.Diff(source, target)

	var alterSeq *change.AlterSequence
	var ownership *change.AlterSequenceOwnership
	for i := range changes {
		switch v := changes[i].(type) {
		case change.AlterSequence:
			alterSeq = &v
		case change.AlterSequenceOwnership:
			ownership = &v
		}
	}
	c.Assert(alterSeq, quicktest.IsNil)
	c.Assert(ownership, quicktest.Not(quicktest.IsNil))
	c.Assert(*ownership.Sequence.OwnedByColumn, quicktest.Equals, "legacy_id")
}
