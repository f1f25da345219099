package catalog

import "fmt"

// Builder assembles a Catalog from individually-added entities. It is the
// only way to produce a *Catalog: Build validates every invariant from
// spec §3 and refuses to hand back an invalid snapshot. Builder itself is
// not safe for concurrent use; a Catalog returned from Build is immutable
// and safe to share across goroutines.
type Builder struct {
	cat        Catalog
	seen       map[string]string // stable_id -> kind, for duplicate detection
	violations []string
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{
		cat: Catalog{
			schemas:     map[string]Schema{},
			relations:   map[string]Relation{},
			columns:     map[string]Column{},
			constraints: map[string]Constraint{},
			indexes:     map[string]Index{},
			sequences:   map[string]Sequence{},
			policies:    map[string]Policy{},
			routines:    map[string]Routine{},
			triggers:    map[string]Trigger{},
			types:       map[string]Type{},
		},
		seen: map[string]string{},
	}
}

func (b *Builder) mark(id, kind string) {
	if prior, ok := b.seen[id]; ok {
		b.violations = append(b.violations, fmt.Sprintf("duplicate stable_id %q (first seen as %s, again as %s)", id, prior, kind))
		return
	}
	b.seen[id] = kind
}

// AddSchema adds a schema to the catalog under construction.
func (b *Builder) AddSchema(s Schema) *Builder {
	b.mark(s.StableID(), "schema")
	b.cat.schemas[s.StableID()] = s
	return b
}

// AddRelation adds a table, view, or materialized view.
func (b *Builder) AddRelation(r Relation) *Builder {
	b.mark(r.StableID(), "relation")
	b.cat.relations[r.StableID()] = r
	return b
}

// AddColumn adds a column.
func (b *Builder) AddColumn(c Column) *Builder {
	b.mark(c.StableID(), "column")
	b.cat.columns[c.StableID()] = c
	return b
}

// AddConstraint adds a constraint.
func (b *Builder) AddConstraint(c Constraint) *Builder {
	b.mark(c.StableID(), "constraint")
	b.cat.constraints[c.StableID()] = c
	return b
}

// AddIndex adds an index.
func (b *Builder) AddIndex(i Index) *Builder {
	b.mark(i.StableID(), "index")
	b.cat.indexes[i.StableID()] = i
	return b
}

// AddSequence adds a sequence.
func (b *Builder) AddSequence(s Sequence) *Builder {
	b.mark(s.StableID(), "sequence")
	b.cat.sequences[s.StableID()] = s
	return b
}

// AddPolicy adds an RLS policy.
func (b *Builder) AddPolicy(p Policy) *Builder {
	b.mark(p.StableID(), "policy")
	b.cat.policies[p.StableID()] = p
	return b
}

// AddRoutine adds a function or procedure.
func (b *Builder) AddRoutine(r Routine) *Builder {
	b.mark(r.StableID(), "routine")
	b.cat.routines[r.StableID()] = r
	return b
}

// AddTrigger adds a trigger.
func (b *Builder) AddTrigger(t Trigger) *Builder {
	b.mark(t.StableID(), "trigger")
	b.cat.triggers[t.StableID()] = t
	return b
}

// AddType adds a custom type.
func (b *Builder) AddType(t Type) *Builder {
	b.mark(t.StableID(), "type")
	b.cat.types[t.StableID()] = t
	return b
}

// AddDependency appends a raw dependency edge.
func (b *Builder) AddDependency(d Dependency) *Builder {
	b.cat.dependencies = append(b.cat.dependencies, d)
	return b
}

// Build validates all invariants and returns the assembled, immutable
// Catalog. On any invariant violation it returns a non-nil *InvariantError
// alongside a nil Catalog.
func (b *Builder) Build() (*Catalog, error) {
	violations := append([]string(nil), b.violations...)

	for id, r := range b.cat.relations {
		if _, ok := b.cat.schemas["s:"+r.Schema]; !ok {
			violations = append(violations, fmt.Sprintf("relation %s: schema %q not present in catalog", id, r.Schema))
		}
	}
	schemaOf := map[string]string{}
	for id, s := range b.cat.sequences {
		schemaOf[id] = s.Schema
	}
	for id, r := range b.cat.routines {
		schemaOf[id] = r.Schema
	}
	for id, t := range b.cat.types {
		schemaOf[id] = t.Schema
	}
	for id, schema := range schemaOf {
		if _, ok := b.cat.schemas["s:"+schema]; !ok {
			violations = append(violations, fmt.Sprintf("%s: schema %q not present in catalog", id, schema))
		}
	}
	for id, c := range b.cat.columns {
		if _, ok := b.cat.relations[c.TableStableID()]; !ok {
			violations = append(violations, fmt.Sprintf("column %s: table %s not present in catalog", id, c.TableStableID()))
		}
	}
	for id, c := range b.cat.constraints {
		if _, ok := b.cat.relations[c.TableStableID()]; !ok {
			violations = append(violations, fmt.Sprintf("constraint %s: table %s not present in catalog", id, c.TableStableID()))
		}
	}
	for id, i := range b.cat.indexes {
		if _, ok := b.cat.relations[i.TableStableID()]; !ok {
			violations = append(violations, fmt.Sprintf("index %s: table %s not present in catalog", id, i.TableStableID()))
		}
	}
	for id, t := range b.cat.triggers {
		if _, ok := b.cat.relations[t.TableStableID()]; !ok {
			violations = append(violations, fmt.Sprintf("trigger %s: table %s not present in catalog", id, t.TableStableID()))
		}
	}
	for id, p := range b.cat.policies {
		if _, ok := b.cat.relations[p.TableStableID()]; !ok {
			violations = append(violations, fmt.Sprintf("policy %s: table %s not present in catalog", id, p.TableStableID()))
		}
	}
	for i, dep := range b.cat.dependencies {
		if dep.Kind == DependencyUnknown {
			continue // unresolved endpoints are discarded downstream, not a build-time error
		}
		if !b.entityExists(dep.DependentID) || !b.entityExists(dep.ReferencedID) {
			violations = append(violations, fmt.Sprintf("dependency edge #%d (%s -> %s): endpoint not present in catalog", i, dep.DependentID, dep.ReferencedID))
		}
	}

	if len(violations) > 0 {
		return nil, &InvariantError{Violations: violations}
	}
	return &b.cat, nil
}

func (b *Builder) entityExists(id string) bool {
	if _, ok := b.cat.schemas[id]; ok {
		return true
	}
	if _, ok := b.cat.relations[id]; ok {
		return true
	}
	if _, ok := b.cat.columns[id]; ok {
		return true
	}
	if _, ok := b.cat.constraints[id]; ok {
		return true
	}
	if _, ok := b.cat.indexes[id]; ok {
		return true
	}
	if _, ok := b.cat.sequences[id]; ok {
		return true
	}
	if _, ok := b.cat.policies[id]; ok {
		return true
	}
	if _, ok := b.cat.routines[id]; ok {
		return true
	}
	if _, ok := b.cat.triggers[id]; ok {
		return true
	}
	if _, ok := b.cat.types[id]; ok {
		return true
	}
	return false
}
