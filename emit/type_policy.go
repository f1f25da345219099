package emit

import (
	"fmt"
	"strings"

	"github.com/ddldiff/ddldiff/catalog"
	"github.com/ddldiff/ddldiff/change"
)

func emitCreateType(t catalog.Type) ([]string, error) {
	switch t.Kind {
	case catalog.EnumType:
		values := make([]string, len(t.EnumValues))
		for i, v := range t.EnumValues {
			values[i] = quoteLiteral(v)
		}
		return []string{fmt.Sprintf("CREATE TYPE %s AS ENUM (%s);", qualified(t.Schema, t.Name), strings.Join(values, ", "))}, nil
	case catalog.DomainType:
		stmt := fmt.Sprintf("CREATE DOMAIN %s AS %s", qualified(t.Schema, t.Name), t.BaseType)
		if t.Constraint != nil {
			// pg_get_constraintdef already returns the full "CHECK (...)" text.
			stmt += " " + *t.Constraint
		}
		return []string{stmt + ";"}, nil
	default:
		return nil, &UnsupportedChangeError{
			StableID: t.StableID(), Kind: "type",
			Reason: "composite type member list is not captured by the catalog extractor",
		}
	}
}

func emitAlterType(c change.AlterType) []string {
	stmts := make([]string, 0, len(c.AddedValues))
	for _, v := range c.AddedValues {
		stmts = append(stmts, fmt.Sprintf("ALTER TYPE %s ADD VALUE %s;", qualified(c.Type.Schema, c.Type.Name), quoteLiteral(v)))
	}
	return stmts
}

func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func emitCreatePolicy(p catalog.Policy) string {
	var b strings.Builder
	fmt.Fprintf(&b, "CREATE POLICY %s ON %s", quoteIdent(p.Name), qualified(p.Schema, p.Table))
	if p.Permissive {
		b.WriteString(" AS PERMISSIVE")
	} else {
		b.WriteString(" AS RESTRICTIVE")
	}
	fmt.Fprintf(&b, " FOR %s", p.Command)
	if len(p.Roles) > 0 {
		fmt.Fprintf(&b, " TO %s", strings.Join(quoteIdents(p.Roles), ", "))
	}
	if p.UsingExpr != nil {
		fmt.Fprintf(&b, " USING (%s)", *p.UsingExpr)
	}
	if p.WithCheckExpr != nil {
		fmt.Fprintf(&b, " WITH CHECK (%s)", *p.WithCheckExpr)
	}
	b.WriteString(";")
	return b.String()
}

// emitAlterPolicy implements the ALTER POLICY-or-replace decision: a
// changed command or permissive/restrictive mode has no ALTER POLICY
// equivalent and falls back to drop-then-create; everything else (roles,
// USING, WITH CHECK) is expressible as a single ALTER POLICY.
func emitAlterPolicy(c change.AlterPolicy) []string {
	if c.Old.Command != c.New.Command || c.Old.Permissive != c.New.Permissive {
		return []string{
			fmt.Sprintf("DROP POLICY %s ON %s;", quoteIdent(c.Old.Name), qualified(c.Old.Schema, c.Old.Table)),
			emitCreatePolicy(c.New),
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "ALTER POLICY %s ON %s", quoteIdent(c.New.Name), qualified(c.New.Schema, c.New.Table))
	// Unlike CREATE POLICY, ALTER POLICY leaves existing roles untouched
	// when TO is omitted, so reverting to PUBLIC needs it spelled out.
	if len(c.New.Roles) > 0 {
		fmt.Fprintf(&b, " TO %s", strings.Join(quoteIdents(c.New.Roles), ", "))
	} else {
		b.WriteString(" TO PUBLIC")
	}
	if c.New.UsingExpr != nil {
		fmt.Fprintf(&b, " USING (%s)", *c.New.UsingExpr)
	}
	if c.New.WithCheckExpr != nil {
		fmt.Fprintf(&b, " WITH CHECK (%s)", *c.New.WithCheckExpr)
	}
	b.WriteString(";")
	return []string{b.String()}
}

func quoteIdents(names []string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = quoteIdent(n)
	}
	return out
}
