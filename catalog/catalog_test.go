package catalog_test

import (
	"testing"

	"github.com/frankban/quicktest"

	"github.com/ddldiff/ddldiff/catalog"
)

func usersTable() *catalog.Builder {
	b := catalog.NewBuilder()
	b.AddSchema(catalog.Schema{Name: "public"})
	b.AddRelation(catalog.Relation{Kind: catalog.Table, Schema: "public", Name: "users"})
	b.AddColumn(catalog.Column{Schema: "public", Table: "users", Name: "id", DataType: "bigint", Position: 1})
	return b
}

func TestSemanticEqual_IgnoresInternalFields(t *testing.T) {
	c := quicktest.New(t)

	a := catalog.Column{Schema: "public", Table: "users", Name: "id", DataType: "bigint", Position: 1, OID: 111}
	b := catalog.Column{Schema: "public", Table: "users", Name: "id", DataType: "bigint", Position: 1, OID: 222}

	c.Assert(catalog.SemanticEqual(a, b), quicktest.IsTrue)
}

func TestSemanticEqual_DataFieldDifference(t *testing.T) {
	c := quicktest.New(t)

	a := catalog.Column{Schema: "public", Table: "users", Name: "id", DataType: "bigint", Position: 1}
	b := catalog.Column{Schema: "public", Table: "users", Name: "id", DataType: "int", Position: 1}

	c.Assert(catalog.SemanticEqual(a, b), quicktest.IsFalse)
}

func TestSemanticEqual_TypeMismatch(t *testing.T) {
	c := quicktest.New(t)

	a := catalog.Schema{Name: "public"}
	b := catalog.Relation{Kind: catalog.Table, Schema: "public", Name: "public"}

	c.Assert(catalog.SemanticEqual(a, b), quicktest.IsFalse)
}

func TestCatalogSemanticEqual_Reflexive(t *testing.T) {
	c := quicktest.New(t)

	cat, err := usersTable().Build()
	c.Assert(err, quicktest.IsNil)
	c.Assert(catalog.CatalogSemanticEqual(cat, cat), quicktest.IsTrue)
}

func TestCatalogSemanticEqual_IgnoresInternalIDChurn(t *testing.T) {
	c := quicktest.New(t)

	a, err := usersTable().Build()
	c.Assert(err, quicktest.IsNil)

	bBuilder := catalog.NewBuilder()
	bBuilder.AddSchema(catalog.Schema{Name: "public"})
	bBuilder.AddRelation(catalog.Relation{Kind: catalog.Table, Schema: "public", Name: "users"})
	bBuilder.AddColumn(catalog.Column{Schema: "public", Table: "users", Name: "id", DataType: "bigint", Position: 1, OID: 999})
	b, err := bBuilder.Build()
	c.Assert(err, quicktest.IsNil)

	c.Assert(catalog.CatalogSemanticEqual(a, b), quicktest.IsTrue)
}

func TestCatalogSemanticEqual_DetectsDifference(t *testing.T) {
	c := quicktest.New(t)

	a, err := usersTable().Build()
	c.Assert(err, quicktest.IsNil)

	emptyB, err := catalog.NewBuilder().Build()
	c.Assert(err, quicktest.IsNil)

	c.Assert(catalog.CatalogSemanticEqual(a, emptyB), quicktest.IsFalse)
}

func TestBuild_RejectsDanglingTableReference(t *testing.T) {
	c := quicktest.New(t)

	b := catalog.NewBuilder()
	b.AddSchema(catalog.Schema{Name: "public"})
	b.AddColumn(catalog.Column{Schema: "public", Table: "missing", Name: "id", Position: 1})

	_, err := b.Build()
	c.Assert(err, quicktest.ErrorMatches, ".*missing.*not present.*")
}

func TestBuild_RejectsDanglingSchemaReference(t *testing.T) {
	c := quicktest.New(t)

	b := catalog.NewBuilder()
	b.AddRelation(catalog.Relation{Kind: catalog.Table, Schema: "missing", Name: "users"})

	_, err := b.Build()
	c.Assert(err, quicktest.ErrorMatches, `.*schema "missing" not present.*`)
}

func TestBuild_DiscardsUnknownDependencyEndpoints(t *testing.T) {
	c := quicktest.New(t)

	b := usersTable()
	b.AddDependency(catalog.Dependency{
		DependentID:  "t:public.users",
		ReferencedID: "f:pg_catalog.some_internal_fn()",
		Kind:         catalog.DependencyUnknown,
	})

	_, err := b.Build()
	c.Assert(err, quicktest.IsNil)
}

func TestColumnsOf_OrdersByPosition(t *testing.T) {
	c := quicktest.New(t)

	b := catalog.NewBuilder()
	b.AddSchema(catalog.Schema{Name: "public"})
	b.AddRelation(catalog.Relation{Kind: catalog.Table, Schema: "public", Name: "users"})
	b.AddColumn(catalog.Column{Schema: "public", Table: "users", Name: "email", Position: 2})
	b.AddColumn(catalog.Column{Schema: "public", Table: "users", Name: "id", Position: 1})
	b.AddColumn(catalog.Column{Schema: "public", Table: "users", Name: "created_at", Position: 3})

	cat, err := b.Build()
	c.Assert(err, quicktest.IsNil)

	cols := catalog.ColumnsOf(cat, "t:public.users")
	c.Assert(len(cols), quicktest.Equals, 3)
	c.Assert(cols[0].Name, quicktest.Equals, "id")
	c.Assert(cols[1].Name, quicktest.Equals, "email")
	c.Assert(cols[2].Name, quicktest.Equals, "created_at")
}
