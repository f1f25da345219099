package planner_test

import (
	"testing"

	"github.com/frankban/quicktest"

	"github.com/ddldiff/ddldiff/catalog"
	"github.com/ddldiff/ddldiff/change"
	"github.com/ddldiff/ddldiff/depgraph"
	"github.com/ddldiff/ddldiff/planner"
)

func strp(s string) *string { return &s }

func emptyCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.NewBuilder().Build()
	if err != nil {
		t.Fatal(err)
	}
	return cat
}

// TestPlan_CreateTableBeforeForeignKey covers spec scenario 2: creating a
// table whose new constraint references another new table must create the
// referenced table first.
func TestPlan_CreateTableBeforeForeignKey(t *testing.T) {
	c := quicktest.New(t)

	orders := catalog.Relation{Kind: catalog.Table, Schema: "public", Name: "orders"}
	customers := catalog.Relation{Kind: catalog.Table, Schema: "public", Name: "customers"}
	fk := catalog.Constraint{
		Schema: "public", Table: "orders", Name: "orders_customer_fkey",
		Kind: catalog.ForeignKey, Columns: []string{"customer_id"},
		ForeignSchema: strp("public"), ForeignTable: strp("customers"), ForeignColumns: []string{"id"},
	}

	changes := []change.Change{
		change.CreateTable{Table: orders},
		change.CreateConstraint{Constraint: fk},
		change.CreateTable{Table: customers},
	}

	target, err := catalog.NewBuilder().
		AddSchema(catalog.Schema{Name: "public"}).
		AddRelation(orders).AddRelation(customers).
		AddConstraint(fk).
		AddDependency(catalog.Dependency{DependentID: fk.StableID(), ReferencedID: customers.StableID(), Kind: catalog.DependencyNormal}).
		Build()
	c.Assert(err, quicktest.IsNil)

	graph := depgraph.Build(emptyCatalog(t), target, changes, 2)

	ordered, err := planner.Plan(changes, graph)
	c.Assert(err, quicktest.IsNil)

	pos := map[string]int{}
	for i, ch := range ordered {
		pos[ch.StableID()+ch.Kind()] = i
	}
	c.Assert(pos[customers.StableID()+"table"] < pos[fk.StableID()+"constraint"], quicktest.IsTrue)
}

// TestPlan_DropOrderReversesCreateOrder covers spec scenario 3: dropping a
// table that a constraint referenced must drop the constraint first.
func TestPlan_DropOrderReversesCreateOrder(t *testing.T) {
	c := quicktest.New(t)

	customers := catalog.Relation{Kind: catalog.Table, Schema: "public", Name: "customers"}
	fk := catalog.Constraint{
		Schema: "public", Table: "orders", Name: "orders_customer_fkey",
		Kind: catalog.ForeignKey, Columns: []string{"customer_id"},
		ForeignSchema: strp("public"), ForeignTable: strp("customers"), ForeignColumns: []string{"id"},
	}

	changes := []change.Change{
		change.DropTable{Table: customers},
		change.DropConstraint{Constraint: fk},
	}

	source, err := catalog.NewBuilder().
		AddSchema(catalog.Schema{Name: "public"}).
		AddRelation(catalog.Relation{Kind: catalog.Table, Schema: "public", Name: "orders"}).
		AddRelation(customers).
		AddConstraint(fk).
		AddDependency(catalog.Dependency{DependentID: fk.StableID(), ReferencedID: customers.StableID(), Kind: catalog.DependencyNormal}).
		Build()
	c.Assert(err, quicktest.IsNil)

	graph := depgraph.Build(source, emptyCatalog(t), changes, 2)

	ordered, err := planner.Plan(changes, graph)
	c.Assert(err, quicktest.IsNil)

	pos := map[string]int{}
	for i, ch := range ordered {
		pos[ch.StableID()+ch.Kind()] = i
	}
	c.Assert(pos[fk.StableID()+"constraint"] < pos[customers.StableID()+"table"], quicktest.IsTrue)
}

// TestPlan_SequenceCreatedBeforeOwningTable covers the ownership inversion
// of spec.md §4.5 step 4, and spec.md Scenario 3's ordering of the bare
// sequence, then the table, then the OWNED BY attachment.
// The attachment is a separate change (change.AlterSequenceOwnership) that
// must land after CreateTable or PostgreSQL rejects it with "relation does
// not exist" at apply time, since the table doesn't exist yet otherwise.
func TestPlan_SequenceCreatedBeforeOwningTable(t *testing.T) {
	c := quicktest.New(t)

	seq := catalog.Sequence{
		Schema: "public", Name: "orders_id_seq", DataType: "bigint",
		OwnedBySchema: strp("public"), OwnedByTable: strp("orders"), OwnedByColumn: strp("id"),
	}
	table := catalog.Relation{Kind: catalog.Table, Schema: "public", Name: "orders"}

	changes := []change.Change{
		change.CreateTable{Table: table},
		change.CreateSequence{Sequence: seq},
		change.AlterSequenceOwnership{Sequence: seq},
	}

	target, err := catalog.NewBuilder().
		AddSchema(catalog.Schema{Name: "public"}).
		AddRelation(table).
		AddSequence(seq).
		AddDependency(catalog.Dependency{DependentID: seq.StableID(), ReferencedID: table.StableID(), Kind: catalog.DependencyAuto}).
		Build()
	c.Assert(err, quicktest.IsNil)

	graph := depgraph.Build(emptyCatalog(t), target, changes, 2)
	ordered, err := planner.Plan(changes, graph)
	c.Assert(err, quicktest.IsNil)

	pos := map[string]int{}
	for i, ch := range ordered {
		pos[ch.Kind()+ch.Operation().String()] = i
	}
	c.Assert(pos["sequenceCREATE"] < pos["tableCREATE"], quicktest.IsTrue)
	c.Assert(pos["tableCREATE"] < pos["sequenceALTER"], quicktest.IsTrue)
}

// TestPlan_SameObjectDropBeforeCreate covers spec.md §4.5 step 5: when
// schemadiff emits a Drop+Create pair for the same stable_id (no in-place
// alter path), the drop must be scheduled first.
func TestPlan_SameObjectDropBeforeCreate(t *testing.T) {
	c := quicktest.New(t)

	idx := catalog.Index{Schema: "public", Table: "users", Name: "users_email_idx"}
	changes := []change.Change{
		change.CreateIndex{Index: idx},
		change.DropIndex{Index: idx},
	}

	graph := depgraph.Build(emptyCatalog(t), emptyCatalog(t), changes, 2)
	ordered, err := planner.Plan(changes, graph)
	c.Assert(err, quicktest.IsNil)
	c.Assert(ordered[0].Operation(), quicktest.Equals, change.Drop)
	c.Assert(ordered[1].Operation(), quicktest.Equals, change.Create)
}

// TestPlan_CycleIsReportedNotSilentlyDropped covers invariant 9: a genuine
// cycle across origin-tagged edges must fail loudly, unlike the teacher's
// reference sortTablesByDependencies, which warns and appends leftovers.
func TestPlan_CycleIsReportedNotSilentlyDropped(t *testing.T) {
	c := quicktest.New(t)

	a := catalog.Relation{Kind: catalog.Table, Schema: "public", Name: "a"}
	b := catalog.Relation{Kind: catalog.Table, Schema: "public", Name: "b"}
	fkA := catalog.Constraint{
		Schema: "public", Table: "a", Name: "a_b_fkey", Kind: catalog.ForeignKey,
		Columns: []string{"b_id"}, ForeignSchema: strp("public"), ForeignTable: strp("b"), ForeignColumns: []string{"id"},
	}
	fkB := catalog.Constraint{
		Schema: "public", Table: "b", Name: "b_a_fkey", Kind: catalog.ForeignKey,
		Columns: []string{"a_id"}, ForeignSchema: strp("public"), ForeignTable: strp("a"), ForeignColumns: []string{"id"},
	}

	changes := []change.Change{
		change.CreateConstraint{Constraint: fkA},
		change.CreateConstraint{Constraint: fkB},
	}

	target, err := catalog.NewBuilder().
		AddSchema(catalog.Schema{Name: "public"}).
		AddRelation(a).AddRelation(b).
		AddConstraint(fkA).AddConstraint(fkB).
		AddDependency(catalog.Dependency{DependentID: fkA.StableID(), ReferencedID: fkB.StableID(), Kind: catalog.DependencyNormal}).
		AddDependency(catalog.Dependency{DependentID: fkB.StableID(), ReferencedID: fkA.StableID(), Kind: catalog.DependencyNormal}).
		Build()
	c.Assert(err, quicktest.IsNil)

	graph := depgraph.Build(emptyCatalog(t), target, changes, 2)

	_, err = planner.Plan(changes, graph)
	c.Assert(err, quicktest.Not(quicktest.IsNil))
	var cycleErr *planner.CycleError
	c.Assert(errorsAs(err, &cycleErr), quicktest.IsTrue)
	c.Assert(len(cycleErr.Cycles) > 0, quicktest.IsTrue)
}

func errorsAs(err error, target **planner.CycleError) bool {
	ce, ok := err.(*planner.CycleError)
	if !ok {
		return false
	}
	*target = ce
	return true
}
