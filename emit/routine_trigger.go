package emit

import (
	"fmt"
	"strings"

	"github.com/ddldiff/ddldiff/catalog"
)

func emitDropRoutine(r catalog.Routine) string {
	verb := "FUNCTION"
	if r.Kind == catalog.ProcedureRoutine {
		verb = "PROCEDURE"
	}
	return fmt.Sprintf("DROP %s %s(%s);", verb, qualified(r.Schema, r.Name), r.ArgTypes)
}

// replaceRoutinePrefix rewrites the captured "CREATE FUNCTION"/"CREATE
// PROCEDURE" definition text into its "CREATE OR REPLACE" form by prefix
// substitution, reusing the definition string verbatim otherwise.
func replaceRoutinePrefix(r catalog.Routine) string {
	for _, prefix := range []string{"CREATE FUNCTION", "CREATE PROCEDURE"} {
		if strings.HasPrefix(strings.ToUpper(r.Definition), prefix) {
			return "CREATE OR REPLACE" + r.Definition[len("CREATE"):]
		}
	}
	return r.Definition
}

// replaceTriggerPrefix rewrites the captured "CREATE TRIGGER" definition
// into "CREATE OR REPLACE TRIGGER" (PostgreSQL 14+).
func replaceTriggerPrefix(t catalog.Trigger) string {
	if strings.HasPrefix(strings.ToUpper(t.Definition), "CREATE TRIGGER") {
		return "CREATE OR REPLACE" + t.Definition[len("CREATE"):]
	}
	return t.Definition
}
