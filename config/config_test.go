package config_test

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/ddldiff/ddldiff/config"
)

func TestDefault(t *testing.T) {
	c := qt.New(t)

	opts := config.Default()

	c.Assert(opts, qt.IsNotNil)
	c.Assert(opts.IgnoredSchemas, qt.DeepEquals, []string{"pg_catalog", "information_schema"})
	c.Assert(opts.DependencyExpansionDepth, qt.Equals, 0)
	c.Assert(opts.Verify, qt.IsFalse)
}

func TestWithIgnoredSchemas(t *testing.T) {
	tests := []struct {
		name     string
		schemas  []string
		expected []string
	}{
		{
			name:     "single schema",
			schemas:  []string{"audit"},
			expected: []string{"audit"},
		},
		{
			name:     "multiple schemas",
			schemas:  []string{"audit", "reporting"},
			expected: []string{"audit", "reporting"},
		},
		{
			name:     "empty list",
			schemas:  []string{},
			expected: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := qt.New(t)

			opts := config.WithIgnoredSchemas(tt.schemas...)
			c.Assert(opts.IgnoredSchemas, qt.DeepEquals, tt.expected)
		})
	}
}

func TestWithAdditionalIgnoredSchemas(t *testing.T) {
	tests := []struct {
		name       string
		additional []string
		expected   []string
	}{
		{
			name:       "add single schema",
			additional: []string{"audit"},
			expected:   []string{"pg_catalog", "information_schema", "audit"},
		},
		{
			name:       "add multiple schemas",
			additional: []string{"audit", "reporting"},
			expected:   []string{"pg_catalog", "information_schema", "audit", "reporting"},
		},
		{
			name:       "add no schemas",
			additional: []string{},
			expected:   []string{"pg_catalog", "information_schema"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := qt.New(t)

			opts := config.WithAdditionalIgnoredSchemas(tt.additional...)
			c.Assert(opts.IgnoredSchemas, qt.DeepEquals, tt.expected)
		})
	}
}

func TestOptions_WithDependencyExpansionDepth(t *testing.T) {
	c := qt.New(t)

	base := config.Default()
	deeper := base.WithDependencyExpansionDepth(5)

	c.Assert(deeper.DependencyExpansionDepth, qt.Equals, 5)
	c.Assert(base.DependencyExpansionDepth, qt.Equals, 0, qt.Commentf("WithDependencyExpansionDepth must not mutate the receiver"))
}

func TestOptions_WithVerify(t *testing.T) {
	c := qt.New(t)

	base := config.Default()
	verifying := base.WithVerify(true)

	c.Assert(verifying.Verify, qt.IsTrue)
	c.Assert(base.Verify, qt.IsFalse, qt.Commentf("WithVerify must not mutate the receiver"))
}

func TestOptions_IsSchemaIgnored(t *testing.T) {
	tests := []struct {
		name           string
		ignoredSchemas []string
		schemaName     string
		expected       bool
	}{
		{
			name:           "schema is ignored",
			ignoredSchemas: []string{"pg_catalog", "audit"},
			schemaName:     "pg_catalog",
			expected:       true,
		},
		{
			name:           "schema is not ignored",
			ignoredSchemas: []string{"pg_catalog", "audit"},
			schemaName:     "public",
			expected:       false,
		},
		{
			name:           "empty ignore list",
			ignoredSchemas: []string{},
			schemaName:     "pg_catalog",
			expected:       false,
		},
		{
			name:           "case sensitive matching",
			ignoredSchemas: []string{"audit"},
			schemaName:     "AUDIT",
			expected:       false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := qt.New(t)

			opts := &config.Options{IgnoredSchemas: tt.ignoredSchemas}

			result := opts.IsSchemaIgnored(tt.schemaName)
			c.Assert(result, qt.Equals, tt.expected)
		})
	}
}

func TestOptions_FilterIgnoredSchemas(t *testing.T) {
	tests := []struct {
		name           string
		ignoredSchemas []string
		inputSchemas   []string
		expected       []string
	}{
		{
			name:           "filter some schemas",
			ignoredSchemas: []string{"pg_catalog", "information_schema"},
			inputSchemas:   []string{"pg_catalog", "public", "information_schema", "audit"},
			expected:       []string{"public", "audit"},
		},
		{
			name:           "filter all schemas",
			ignoredSchemas: []string{"pg_catalog", "information_schema"},
			inputSchemas:   []string{"pg_catalog", "information_schema"},
			expected:       []string{},
		},
		{
			name:           "filter no schemas",
			ignoredSchemas: []string{"audit"},
			inputSchemas:   []string{"pg_catalog", "public"},
			expected:       []string{"pg_catalog", "public"},
		},
		{
			name:           "empty input list",
			ignoredSchemas: []string{"pg_catalog"},
			inputSchemas:   []string{},
			expected:       []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := qt.New(t)

			opts := &config.Options{IgnoredSchemas: tt.ignoredSchemas}

			result := opts.FilterIgnoredSchemas(tt.inputSchemas)
			c.Assert(result, qt.DeepEquals, tt.expected)
		})
	}
}

func TestLibraryUsageExamples(t *testing.T) {
	c := qt.New(t)

	t.Run("default usage", func(t *testing.T) {
		opts := config.Default()
		c.Assert(opts.IsSchemaIgnored("pg_catalog"), qt.IsTrue)
		c.Assert(opts.IsSchemaIgnored("public"), qt.IsFalse)
	})

	t.Run("custom ignore list", func(t *testing.T) {
		opts := config.WithIgnoredSchemas("pg_catalog", "audit")
		c.Assert(opts.IsSchemaIgnored("pg_catalog"), qt.IsTrue)
		c.Assert(opts.IsSchemaIgnored("audit"), qt.IsTrue)
		c.Assert(opts.IsSchemaIgnored("public"), qt.IsFalse)
	})

	t.Run("additional ignored schemas", func(t *testing.T) {
		opts := config.WithAdditionalIgnoredSchemas("audit")
		c.Assert(opts.IsSchemaIgnored("pg_catalog"), qt.IsTrue)
		c.Assert(opts.IsSchemaIgnored("audit"), qt.IsTrue)
		c.Assert(opts.IsSchemaIgnored("public"), qt.IsFalse)
	})

	t.Run("verify and expansion depth chain", func(t *testing.T) {
		opts := config.Default().WithVerify(true).WithDependencyExpansionDepth(3)
		c.Assert(opts.Verify, qt.IsTrue)
		c.Assert(opts.DependencyExpansionDepth, qt.Equals, 3)
	})
}
