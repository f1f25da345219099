// Package catalog defines the canonical, immutable representation of a
// PostgreSQL schema snapshot used throughout ddldiff: the entity types, the
// stable_id scheme that lets two snapshots of the same logical schema be
// compared across databases, and the semantic-equality predicate the rest
// of the system is built on.
//
// Every entity classifies its own fields as identity, data, or internal by
// construction (through the methods on this package's types) rather than
// through reflection or struct tags read at runtime: identity fields make
// up the stable_id and participate in semantic equality, data fields are
// observable DDL-affecting state and also participate in semantic
// equality, and internal fields exist only to help the extractor correlate
// rows across queries and are ignored by every equality check.
package catalog

import "fmt"

// Entity is implemented by every catalog object that carries a stable_id.
type Entity interface {
	StableID() string
}

// Schema is a PostgreSQL namespace.
type Schema struct {
	Name string // identity
}

// StableID implements Entity.
func (s Schema) StableID() string { return "s:" + s.Name }

// SemanticEqual reports whether two schemas are interchangeable for DDL
// purposes. Schema has no data fields beyond its identity.
func (s Schema) SemanticEqual(other Schema) bool { return s.Name == other.Name }

// RelationKind discriminates the three object kinds sharing the Relation
// shape: ordinary tables, views, and materialized views. Each kind maps to
// a distinct stable_id prefix and a distinct family of change variants,
// because their alterability differs completely.
type RelationKind int

const (
	Table RelationKind = iota
	View
	MaterializedView
)

func (k RelationKind) prefix() string {
	switch k {
	case Table:
		return "t"
	case View:
		return "v"
	case MaterializedView:
		return "m"
	default:
		panic(fmt.Sprintf("catalog: unknown relation kind %d", int(k)))
	}
}

// Relation is a table, view, or materialized view.
type Relation struct {
	Kind   RelationKind // identity
	Schema string       // identity
	Name   string       // identity

	// Definition is the captured "SELECT ..." body for views and
	// materialized views (from pg_get_viewdef), always empty for tables.
	Definition string // data
	Comment    string // data
	RLSEnabled bool   // data, tables only

	OID uint32 // internal
}

// StableID implements Entity.
func (r Relation) StableID() string {
	return r.Kind.prefix() + ":" + r.Schema + "." + r.Name
}

// SemanticEqual compares identity and data fields, ignoring OID.
func (r Relation) SemanticEqual(other Relation) bool {
	return r.Kind == other.Kind &&
		r.Schema == other.Schema &&
		r.Name == other.Name &&
		r.Definition == other.Definition &&
		r.Comment == other.Comment &&
		r.RLSEnabled == other.RLSEnabled
}

// Column belongs to a table. View and materialized-view columns are not
// modeled separately: their shape is fully determined by Definition.
type Column struct {
	Schema string // identity
	Table  string // identity
	Name   string // identity

	DataType string  // data
	Nullable bool    // data
	Default  *string // data, nil means no default

	// Position is the extractor-provided ordinal position. It is data
	// because column order is observable in generated CREATE TABLE
	// statements, even though PostgreSQL offers no ALTER TABLE ... REORDER
	// and the differ therefore never emits a change for position alone.
	Position int // data

	OID uint32 // internal
}

// StableID implements Entity.
func (c Column) StableID() string {
	return "col:" + c.Schema + "." + c.Table + "." + c.Name
}

// TableStableID returns the stable_id of the table this column belongs to.
func (c Column) TableStableID() string {
	return Table.prefix() + ":" + c.Schema + "." + c.Table
}

// SemanticEqual compares identity and data fields, ignoring OID.
func (c Column) SemanticEqual(other Column) bool {
	if c.Schema != other.Schema || c.Table != other.Table || c.Name != other.Name {
		return false
	}
	if c.DataType != other.DataType || c.Nullable != other.Nullable || c.Position != other.Position {
		return false
	}
	return stringPtrEqual(c.Default, other.Default)
}

// ConstraintKind enumerates the PostgreSQL constraint kinds this system
// tracks.
type ConstraintKind string

const (
	PrimaryKey ConstraintKind = "PRIMARY KEY"
	ForeignKey ConstraintKind = "FOREIGN KEY"
	Unique     ConstraintKind = "UNIQUE"
	Check      ConstraintKind = "CHECK"
	Exclude    ConstraintKind = "EXCLUDE"
)

// Constraint is scoped under its owning table.
type Constraint struct {
	Schema string // identity
	Table  string // identity
	Name   string // identity

	Kind    ConstraintKind // data
	Columns []string       // data

	// Definition is the captured pg_get_constraintdef() text, reused
	// verbatim by the emitter.
	Definition string // data

	ForeignSchema  *string  // data
	ForeignTable   *string  // data
	ForeignColumns []string // data
	OnDelete       *string  // data
	OnUpdate       *string  // data

	OID uint32 // internal
}

// StableID implements Entity.
func (c Constraint) StableID() string {
	return "c:" + c.Schema + "." + c.Table + "." + c.Name
}

// TableStableID returns the stable_id of the owning table.
func (c Constraint) TableStableID() string {
	return Table.prefix() + ":" + c.Schema + "." + c.Table
}

// SemanticEqual compares identity and data fields, ignoring OID.
func (c Constraint) SemanticEqual(other Constraint) bool {
	return c.Schema == other.Schema &&
		c.Table == other.Table &&
		c.Name == other.Name &&
		c.Kind == other.Kind &&
		stringSliceEqual(c.Columns, other.Columns) &&
		c.Definition == other.Definition &&
		stringPtrEqual(c.ForeignSchema, other.ForeignSchema) &&
		stringPtrEqual(c.ForeignTable, other.ForeignTable) &&
		stringSliceEqual(c.ForeignColumns, other.ForeignColumns) &&
		stringPtrEqual(c.OnDelete, other.OnDelete) &&
		stringPtrEqual(c.OnUpdate, other.OnUpdate)
}

// Index is scoped under its owning table.
type Index struct {
	Schema string // identity
	Table  string // identity
	Name   string // identity

	// Definition is the captured pg_get_indexdef() text.
	Definition string // data
	IsPrimary  bool   // data
	IsUnique   bool   // data

	OID uint32 // internal
}

// StableID implements Entity.
func (i Index) StableID() string { return "i:" + i.Schema + "." + i.Name }

// TableStableID returns the stable_id of the owning table.
func (i Index) TableStableID() string {
	return Table.prefix() + ":" + i.Schema + "." + i.Table
}

// SemanticEqual compares identity and data fields, ignoring OID.
func (i Index) SemanticEqual(other Index) bool {
	return i.Schema == other.Schema &&
		i.Table == other.Table &&
		i.Name == other.Name &&
		i.Definition == other.Definition &&
		i.IsPrimary == other.IsPrimary &&
		i.IsUnique == other.IsUnique
}

// Sequence is a standalone or column-owned sequence.
type Sequence struct {
	Schema string // identity
	Name   string // identity

	DataType  string // data
	Increment int64  // data
	MinValue  int64  // data
	MaxValue  int64  // data
	StartValue int64 // data
	Cache     int64  // data
	Cycle     bool   // data

	// OwnedBySchema/OwnedByTable/OwnedByColumn record a SERIAL-style
	// ownership relationship (ALTER SEQUENCE ... OWNED BY). Nil when the
	// sequence is not column-owned.
	OwnedBySchema *string // data
	OwnedByTable  *string // data
	OwnedByColumn *string // data

	OID uint32 // internal
}

// StableID implements Entity.
func (s Sequence) StableID() string { return "S:" + s.Schema + "." + s.Name }

// SemanticEqual compares identity and data fields, ignoring OID.
func (s Sequence) SemanticEqual(other Sequence) bool {
	return s.Schema == other.Schema &&
		s.Name == other.Name &&
		s.DataType == other.DataType &&
		s.Increment == other.Increment &&
		s.MinValue == other.MinValue &&
		s.MaxValue == other.MaxValue &&
		s.StartValue == other.StartValue &&
		s.Cache == other.Cache &&
		s.Cycle == other.Cycle &&
		stringPtrEqual(s.OwnedBySchema, other.OwnedBySchema) &&
		stringPtrEqual(s.OwnedByTable, other.OwnedByTable) &&
		stringPtrEqual(s.OwnedByColumn, other.OwnedByColumn)
}

// Policy is a row-level-security policy, scoped under its table.
type Policy struct {
	Schema string // identity
	Table  string // identity
	Name   string // identity

	Permissive     bool     // data
	Command        string   // data: ALL, SELECT, INSERT, UPDATE, DELETE
	Roles          []string // data
	UsingExpr      *string  // data
	WithCheckExpr  *string  // data

	OID uint32 // internal
}

// StableID implements Entity.
func (p Policy) StableID() string { return "p:" + p.Schema + "." + p.Table + "." + p.Name }

// TableStableID returns the stable_id of the owning table.
func (p Policy) TableStableID() string {
	return Table.prefix() + ":" + p.Schema + "." + p.Table
}

// SemanticEqual compares identity and data fields, ignoring OID.
func (p Policy) SemanticEqual(other Policy) bool {
	return p.Schema == other.Schema &&
		p.Table == other.Table &&
		p.Name == other.Name &&
		p.Permissive == other.Permissive &&
		p.Command == other.Command &&
		stringSliceEqual(p.Roles, other.Roles) &&
		stringPtrEqual(p.UsingExpr, other.UsingExpr) &&
		stringPtrEqual(p.WithCheckExpr, other.WithCheckExpr)
}

// RoutineKind distinguishes functions from procedures.
type RoutineKind string

const (
	FunctionRoutine  RoutineKind = "FUNCTION"
	ProcedureRoutine RoutineKind = "PROCEDURE"
)

// Routine is a PostgreSQL function or procedure. ArgTypes participates in
// identity because PostgreSQL allows overloading by argument signature.
type Routine struct {
	Schema   string // identity
	Name     string // identity
	ArgTypes string // identity, comma-joined formatted argument type list

	Kind RoutineKind // data

	// Definition is the captured pg_get_functiondef() text, whose "CREATE"
	// prefix the emitter rewrites to "CREATE OR REPLACE" for Replace
	// changes.
	Definition string // data

	OID uint32 // internal
}

// StableID implements Entity.
func (r Routine) StableID() string {
	return "f:" + r.Schema + "." + r.Name + "(" + r.ArgTypes + ")"
}

// SemanticEqual compares identity and data fields, ignoring OID.
func (r Routine) SemanticEqual(other Routine) bool {
	return r.Schema == other.Schema &&
		r.Name == other.Name &&
		r.ArgTypes == other.ArgTypes &&
		r.Kind == other.Kind &&
		r.Definition == other.Definition
}

// Trigger is scoped under its owning table.
type Trigger struct {
	Schema string // identity
	Table  string // identity
	Name   string // identity

	// Definition is the captured pg_get_triggerdef() text.
	Definition string // data

	OID uint32 // internal
}

// StableID implements Entity.
func (t Trigger) StableID() string { return "tg:" + t.Schema + "." + t.Table + "." + t.Name }

// TableStableID returns the stable_id of the owning table.
func (t Trigger) TableStableID() string {
	return Table.prefix() + ":" + t.Schema + "." + t.Table
}

// SemanticEqual compares identity and data fields, ignoring OID.
func (t Trigger) SemanticEqual(other Trigger) bool {
	return t.Schema == other.Schema &&
		t.Table == other.Table &&
		t.Name == other.Name &&
		t.Definition == other.Definition
}

// TypeKind enumerates the custom type kinds this system tracks.
type TypeKind string

const (
	EnumType      TypeKind = "ENUM"
	CompositeType TypeKind = "COMPOSITE"
	DomainType    TypeKind = "DOMAIN"
)

// Type is a custom PostgreSQL type (enum, composite, or domain).
type Type struct {
	Schema string // identity
	Name   string // identity

	Kind TypeKind // data

	// EnumValues is populated for Kind == EnumType, in declaration order.
	EnumValues []string // data

	// BaseType and Constraint are populated for Kind == DomainType.
	BaseType   string  // data
	Constraint *string // data

	OID uint32 // internal
}

// StableID implements Entity.
func (t Type) StableID() string { return "typ:" + t.Schema + "." + t.Name }

// SemanticEqual compares identity and data fields, ignoring OID.
func (t Type) SemanticEqual(other Type) bool {
	return t.Schema == other.Schema &&
		t.Name == other.Name &&
		t.Kind == other.Kind &&
		stringSliceEqual(t.EnumValues, other.EnumValues) &&
		t.BaseType == other.BaseType &&
		stringPtrEqual(t.Constraint, other.Constraint)
}

// DependencyKind classifies a raw dependency edge the way pg_depend does,
// so the extractor can discard edges that are not meaningful for ordering
// (e.g. internal/auto dependencies on the implementation details of
// another object).
type DependencyKind string

const (
	DependencyNormal    DependencyKind = "normal"
	DependencyInternal  DependencyKind = "internal"
	DependencyAuto      DependencyKind = "auto"
	DependencyExtension DependencyKind = "extension"
	// DependencyUnknown marks an edge whose endpoint could not be resolved
	// to a tracked entity (a system catalog object, a role, or anything
	// else outside this catalog's scope). Such edges are discarded by the
	// dependency extractor per spec.
	DependencyUnknown DependencyKind = "unknown"
)

// Dependency is a raw, directed dependency edge as reported by the source
// database. It is not itself a keyed entity: the same logical edge may
// appear, absent, or differently classified across two snapshots, which is
// exactly the asymmetry the dependency extractor exploits.
type Dependency struct {
	DependentID  string
	ReferencedID string
	Kind         DependencyKind
}

// Catalog is an immutable snapshot of a PostgreSQL schema's DDL-relevant
// state. Construct one with NewBuilder; once Build succeeds, a Catalog is
// never mutated again by any package in this module.
type Catalog struct {
	schemas     map[string]Schema
	relations   map[string]Relation
	columns     map[string]Column
	constraints map[string]Constraint
	indexes     map[string]Index
	sequences   map[string]Sequence
	policies    map[string]Policy
	routines    map[string]Routine
	triggers    map[string]Trigger
	types       map[string]Type
	dependencies []Dependency
}

// Schemas returns the catalog's schemas keyed by stable_id.
func (c *Catalog) Schemas() map[string]Schema { return c.schemas }

// Relations returns the catalog's tables, views, and materialized views
// keyed by stable_id.
func (c *Catalog) Relations() map[string]Relation { return c.relations }

// Columns returns the catalog's columns keyed by stable_id.
func (c *Catalog) Columns() map[string]Column { return c.columns }

// Constraints returns the catalog's constraints keyed by stable_id.
func (c *Catalog) Constraints() map[string]Constraint { return c.constraints }

// Indexes returns the catalog's indexes keyed by stable_id.
func (c *Catalog) Indexes() map[string]Index { return c.indexes }

// Sequences returns the catalog's sequences keyed by stable_id.
func (c *Catalog) Sequences() map[string]Sequence { return c.sequences }

// Policies returns the catalog's RLS policies keyed by stable_id.
func (c *Catalog) Policies() map[string]Policy { return c.policies }

// Routines returns the catalog's functions and procedures keyed by
// stable_id.
func (c *Catalog) Routines() map[string]Routine { return c.routines }

// Triggers returns the catalog's triggers keyed by stable_id.
func (c *Catalog) Triggers() map[string]Trigger { return c.triggers }

// Types returns the catalog's custom types keyed by stable_id.
func (c *Catalog) Types() map[string]Type { return c.types }

// Dependencies returns the catalog's raw dependency edge list.
func (c *Catalog) Dependencies() []Dependency { return c.dependencies }

// ColumnsOf returns the columns of the table identified by tableStableID,
// ordered by their extractor-provided position. The returned slice is a
// fresh copy; mutating it does not affect the catalog.
func ColumnsOf(c *Catalog, tableStableID string) []Column {
	var cols []Column
	for _, col := range c.columns {
		if col.TableStableID() == tableStableID {
			cols = append(cols, col)
		}
	}
	sortColumnsByPosition(cols)
	return cols
}

func sortColumnsByPosition(cols []Column) {
	// Insertion sort: table column counts are small and this keeps the
	// catalog package dependency-free.
	for i := 1; i < len(cols); i++ {
		j := i
		for j > 0 && cols[j-1].Position > cols[j].Position {
			cols[j-1], cols[j] = cols[j], cols[j-1]
			j--
		}
	}
}

func stringPtrEqual(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func stringSliceEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
