package emit

import (
	"fmt"
	"strings"

	"github.com/ddldiff/ddldiff/catalog"
	"github.com/ddldiff/ddldiff/change"
)

func emitCreateTable(c change.CreateTable) string {
	var b strings.Builder
	fmt.Fprintf(&b, "CREATE TABLE %s (\n", qualified(c.Table.Schema, c.Table.Name))
	for i, col := range c.Columns {
		b.WriteString("  ")
		b.WriteString(columnDef(col))
		if i < len(c.Columns)-1 {
			b.WriteString(",")
		}
		b.WriteString("\n")
	}
	b.WriteString(");")
	return b.String()
}

func columnDef(col catalog.Column) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s", quoteIdent(col.Name), col.DataType)
	if !col.Nullable {
		b.WriteString(" NOT NULL")
	}
	if col.Default != nil {
		fmt.Fprintf(&b, " DEFAULT %s", *col.Default)
	}
	return b.String()
}

func emitAlterTable(c change.AlterTable) string {
	table := qualified(c.Table.Schema, c.Table.Name)
	clauses := make([]string, 0, len(c.Operations))
	for _, op := range c.Operations {
		clauses = append(clauses, alterClause(op))
	}
	return fmt.Sprintf("ALTER TABLE %s\n  %s;", table, strings.Join(clauses, ",\n  "))
}

func alterClause(op change.ColumnOp) string {
	switch o := op.(type) {
	case change.AddColumn:
		return "ADD COLUMN " + columnDef(o.Column)
	case change.DropColumn:
		return "DROP COLUMN " + quoteIdent(o.Name)
	case change.AlterColumnType:
		clause := fmt.Sprintf("ALTER COLUMN %s TYPE %s", quoteIdent(o.Name), o.NewType)
		if o.Using != "" {
			clause += " USING " + o.Using
		}
		return clause
	case change.SetColumnDefault:
		return fmt.Sprintf("ALTER COLUMN %s SET DEFAULT %s", quoteIdent(o.Name), o.Default)
	case change.DropColumnDefault:
		return fmt.Sprintf("ALTER COLUMN %s DROP DEFAULT", quoteIdent(o.Name))
	case change.SetColumnNotNull:
		return fmt.Sprintf("ALTER COLUMN %s SET NOT NULL", quoteIdent(o.Name))
	case change.DropColumnNotNull:
		return fmt.Sprintf("ALTER COLUMN %s DROP NOT NULL", quoteIdent(o.Name))
	default:
		panic(fmt.Sprintf("emit: unhandled column operation %T", op))
	}
}

func emitAddConstraint(c catalog.Constraint) string {
	return fmt.Sprintf("ALTER TABLE %s ADD CONSTRAINT %s %s;",
		qualified(c.Schema, c.Table), quoteIdent(c.Name), c.Definition)
}

func emitSetTableRLS(c change.SetTableRLS) string {
	verb := "DISABLE"
	if c.Enabled {
		verb = "ENABLE"
	}
	return fmt.Sprintf("ALTER TABLE %s %s ROW LEVEL SECURITY;", qualified(c.Table.Schema, c.Table.Name), verb)
}
