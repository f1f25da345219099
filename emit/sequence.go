package emit

import (
	"fmt"
	"strings"

	"github.com/ddldiff/ddldiff/catalog"
)

// emitCreateSequence emits only the bare CREATE SEQUENCE; any ownership is
// a separate change (change.AlterSequenceOwnership, see
// emitAlterSequenceOwnership) so the planner can schedule it after the
// owning table exists, per spec.md Scenario 3.
func emitCreateSequence(s catalog.Sequence) []string {
	var b strings.Builder
	fmt.Fprintf(&b, "CREATE SEQUENCE %s", qualified(s.Schema, s.Name))
	fmt.Fprintf(&b, " AS %s", s.DataType)
	fmt.Fprintf(&b, " INCREMENT BY %d", s.Increment)
	fmt.Fprintf(&b, " MINVALUE %d MAXVALUE %d", s.MinValue, s.MaxValue)
	fmt.Fprintf(&b, " START WITH %d", s.StartValue)
	fmt.Fprintf(&b, " CACHE %d", s.Cache)
	if s.Cycle {
		b.WriteString(" CYCLE")
	} else {
		b.WriteString(" NO CYCLE")
	}
	b.WriteString(";")
	return []string{b.String()}
}

// emitAlterSequenceOwnership emits the OWNED BY clause that ties a
// sequence to a table column, or detaches it (OWNED BY NONE) when
// s.OwnedByTable is nil.
func emitAlterSequenceOwnership(s catalog.Sequence) []string {
	if s.OwnedByTable == nil || s.OwnedByColumn == nil {
		return []string{fmt.Sprintf("ALTER SEQUENCE %s OWNED BY NONE;", qualified(s.Schema, s.Name))}
	}
	schema := s.Schema
	if s.OwnedBySchema != nil {
		schema = *s.OwnedBySchema
	}
	return []string{fmt.Sprintf("ALTER SEQUENCE %s OWNED BY %s.%s;",
		qualified(s.Schema, s.Name), qualified(schema, *s.OwnedByTable), quoteIdent(*s.OwnedByColumn))}
}

// emitAlterSequence diffs the data fields of old and new and emits one
// ALTER SEQUENCE statement touching only the clauses that changed.
func emitAlterSequence(old, new catalog.Sequence) []string {
	var clauses []string
	if old.DataType != new.DataType {
		clauses = append(clauses, "AS "+new.DataType)
	}
	if old.StartValue != new.StartValue {
		clauses = append(clauses, fmt.Sprintf("START WITH %d", new.StartValue))
	}
	if old.Increment != new.Increment {
		clauses = append(clauses, fmt.Sprintf("INCREMENT BY %d", new.Increment))
	}
	if old.MinValue != new.MinValue || old.MaxValue != new.MaxValue {
		clauses = append(clauses, fmt.Sprintf("MINVALUE %d MAXVALUE %d", new.MinValue, new.MaxValue))
	}
	if old.Cache != new.Cache {
		clauses = append(clauses, fmt.Sprintf("CACHE %d", new.Cache))
	}
	if old.Cycle != new.Cycle {
		if new.Cycle {
			clauses = append(clauses, "CYCLE")
		} else {
			clauses = append(clauses, "NO CYCLE")
		}
	}
	if len(clauses) == 0 {
		return nil
	}
	return []string{fmt.Sprintf("ALTER SEQUENCE %s %s;", qualified(new.Schema, new.Name), strings.Join(clauses, " "))}
}
