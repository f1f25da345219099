// Package emit turns an ordered change stream (package planner's output)
// into PostgreSQL DDL text, per spec.md §4.7. Each change becomes one or
// more complete statements; All concatenates them in input order, which
// callers must already have topologically sorted.
package emit

import (
	"fmt"
	"strings"

	"github.com/ddldiff/ddldiff/change"
)

// UnsupportedChangeError is returned for a change this emitter cannot
// express as DDL: a CreateType of a composite type, whose body package
// catalog does not model beyond its name and kind, or any change type with
// no emitter case.
type UnsupportedChangeError struct {
	StableID string
	Kind     string
	Reason   string
}

func (e *UnsupportedChangeError) Error() string {
	return fmt.Sprintf("emit: cannot emit DDL for %s (%s): %s", e.StableID, e.Kind, e.Reason)
}

// All emits the DDL statements for every change, in order. A change that
// needs more than one statement (e.g. AlterType with several ADD VALUEs,
// or an AlterPolicy whose command or permissive mode changed, which falls
// back to drop then create) contributes each of them in sequence.
func All(changes []change.Change) ([]string, error) {
	var out []string
	for _, c := range changes {
		stmts, err := one(c)
		if err != nil {
			return nil, err
		}
		out = append(out, stmts...)
	}
	return out, nil
}

func one(c change.Change) ([]string, error) {
	switch v := c.(type) {
	case change.CreateSchema:
		return []string{fmt.Sprintf("CREATE SCHEMA %s;", quoteIdent(v.Schema.Name))}, nil
	case change.DropSchema:
		return []string{fmt.Sprintf("DROP SCHEMA %s;", quoteIdent(v.Schema.Name))}, nil

	case change.CreateTable:
		return []string{emitCreateTable(v)}, nil
	case change.DropTable:
		return []string{fmt.Sprintf("DROP TABLE %s;", qualified(v.Table.Schema, v.Table.Name))}, nil
	case change.AlterTable:
		return []string{emitAlterTable(v)}, nil

	case change.CreateIndex:
		return []string{ensureSemicolon(v.Index.Definition)}, nil
	case change.DropIndex:
		return []string{fmt.Sprintf("DROP INDEX %s;", qualified(v.Index.Schema, v.Index.Name))}, nil

	case change.CreateConstraint:
		return []string{emitAddConstraint(v.Constraint)}, nil
	case change.DropConstraint:
		return []string{fmt.Sprintf("ALTER TABLE %s DROP CONSTRAINT %s;",
			qualified(v.Constraint.Schema, v.Constraint.Table), quoteIdent(v.Constraint.Name))}, nil

	case change.CreateSequence:
		return emitCreateSequence(v.Sequence), nil
	case change.DropSequence:
		return []string{fmt.Sprintf("DROP SEQUENCE %s;", qualified(v.Sequence.Schema, v.Sequence.Name))}, nil
	case change.AlterSequence:
		return emitAlterSequence(v.Old, v.New), nil
	case change.AlterSequenceOwnership:
		return emitAlterSequenceOwnership(v.Sequence), nil

	case change.CreateView:
		return []string{fmt.Sprintf("CREATE VIEW %s AS %s;", qualified(v.View.Schema, v.View.Name), v.View.Definition)}, nil
	case change.DropView:
		return []string{fmt.Sprintf("DROP VIEW %s;", qualified(v.View.Schema, v.View.Name))}, nil
	case change.ReplaceView:
		return []string{fmt.Sprintf("CREATE OR REPLACE VIEW %s AS %s;", qualified(v.View.Schema, v.View.Name), v.View.Definition)}, nil

	case change.CreateMaterializedView:
		return []string{fmt.Sprintf("CREATE MATERIALIZED VIEW %s AS %s;", qualified(v.View.Schema, v.View.Name), v.View.Definition)}, nil
	case change.DropMaterializedView:
		return []string{fmt.Sprintf("DROP MATERIALIZED VIEW %s;", qualified(v.View.Schema, v.View.Name))}, nil

	case change.CreateRoutine:
		return []string{ensureSemicolon(v.Routine.Definition)}, nil
	case change.DropRoutine:
		return []string{emitDropRoutine(v.Routine)}, nil
	case change.ReplaceRoutine:
		return []string{ensureSemicolon(replaceRoutinePrefix(v.Routine))}, nil

	case change.CreateTrigger:
		return []string{ensureSemicolon(v.Trigger.Definition)}, nil
	case change.DropTrigger:
		return []string{fmt.Sprintf("DROP TRIGGER %s ON %s;", quoteIdent(v.Trigger.Name), qualified(v.Trigger.Schema, v.Trigger.Table))}, nil
	case change.ReplaceTrigger:
		return []string{ensureSemicolon(replaceTriggerPrefix(v.Trigger))}, nil

	case change.CreateType:
		return emitCreateType(v.Type)
	case change.DropType:
		return []string{fmt.Sprintf("DROP TYPE %s;", qualified(v.Type.Schema, v.Type.Name))}, nil
	case change.AlterType:
		return emitAlterType(v), nil

	case change.CreatePolicy:
		return []string{emitCreatePolicy(v.Policy)}, nil
	case change.DropPolicy:
		return []string{fmt.Sprintf("DROP POLICY %s ON %s;", quoteIdent(v.Policy.Name), qualified(v.Policy.Schema, v.Policy.Table))}, nil
	case change.AlterPolicy:
		return emitAlterPolicy(v), nil

	case change.SetTableRLS:
		return []string{emitSetTableRLS(v)}, nil

	default:
		return nil, &UnsupportedChangeError{StableID: c.StableID(), Kind: c.Kind(), Reason: "no emitter registered for this change type"}
	}
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func qualified(schema, name string) string {
	return quoteIdent(schema) + "." + quoteIdent(name)
}

func ensureSemicolon(s string) string {
	trimmed := strings.TrimRight(s, " \t\n\r")
	if strings.HasSuffix(trimmed, ";") {
		return trimmed
	}
	return trimmed + ";"
}
