// Package config provides configuration options for ddldiff's comparison
// and execution behavior.
//
// This package provides a simple, programmatic API for configuring schema
// comparison and DDL execution when using ddldiff as a library. It focuses
// on providing clean Go APIs rather than external configuration file
// management.
package config

// Options contains configuration for a single diff run: which schemas to
// compare, how far the dependency extractor (package depgraph) expands
// past the changed objects, and whether the CLI should apply and verify
// the generated DDL against a disposable database.
type Options struct {
	// IgnoredSchemas is a list of PostgreSQL schema names that should be
	// ignored during comparison. These schemas will:
	// - Never be reported as missing, even if absent from the target
	// - Be excluded from catalog extraction entirely
	// - Be treated as if they don't exist for comparison purposes
	//
	// Common schemas to ignore include:
	// - pg_catalog, information_schema: always present, never user-managed
	IgnoredSchemas []string

	// DependencyExpansionDepth bounds how many hops package depgraph walks
	// out from a changeset's own objects when building the ordering
	// subgraph (spec.md §9's open question about whether the default of 2
	// is always sufficient). 0 means use depgraph.DefaultExpansionDepth.
	DependencyExpansionDepth int

	// Verify, when true, tells the CLI to apply the generated DDL to a
	// disposable database (via package applier) and re-extract it to
	// confirm the result matches the target catalog, rather than only
	// printing the statements.
	Verify bool
}

// Default returns the default options: no ignored schemas beyond the
// always-excluded system namespaces, the depgraph package's default
// expansion depth, and verification off.
func Default() *Options {
	return &Options{
		IgnoredSchemas:           []string{"pg_catalog", "information_schema"},
		DependencyExpansionDepth: 0,
		Verify:                   false,
	}
}

// WithIgnoredSchemas returns a new Options with the specified ignored
// schemas. This completely replaces the default ignored schema list.
//
// Example:
//
//	opts := config.WithIgnoredSchemas("pg_catalog", "information_schema", "audit")
func WithIgnoredSchemas(schemas ...string) *Options {
	o := Default()
	o.IgnoredSchemas = schemas
	return o
}

// WithAdditionalIgnoredSchemas returns a new Options that includes the
// default ignored schemas plus the additional ones specified.
func WithAdditionalIgnoredSchemas(schemas ...string) *Options {
	o := Default()
	all := make([]string, len(o.IgnoredSchemas)+len(schemas))
	copy(all, o.IgnoredSchemas)
	copy(all[len(o.IgnoredSchemas):], schemas)
	o.IgnoredSchemas = all
	return o
}

// WithDependencyExpansionDepth returns a copy of o with its expansion
// depth replaced.
func (o *Options) WithDependencyExpansionDepth(depth int) *Options {
	tmp := *o
	tmp.DependencyExpansionDepth = depth
	return &tmp
}

// WithVerify returns a copy of o with Verify set.
func (o *Options) WithVerify(verify bool) *Options {
	tmp := *o
	tmp.Verify = verify
	return &tmp
}

// IsSchemaIgnored reports whether the given schema name should be ignored
// during comparison based on the current configuration.
func (o *Options) IsSchemaIgnored(schemaName string) bool {
	for _, ignored := range o.IgnoredSchemas {
		if ignored == schemaName {
			return true
		}
	}
	return false
}

// FilterIgnoredSchemas removes ignored schemas from the provided slice and
// returns a new slice containing only non-ignored schemas. This is useful
// for narrowing a schema list before extraction.
func (o *Options) FilterIgnoredSchemas(schemas []string) []string {
	filtered := make([]string, 0, len(schemas))
	for _, s := range schemas {
		if !o.IsSchemaIgnored(s) {
			filtered = append(filtered, s)
		}
	}
	return filtered
}
