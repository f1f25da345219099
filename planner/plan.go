package planner

import (
	"github.com/ddldiff/ddldiff/change"
	"github.com/ddldiff/ddldiff/depgraph"
)

// Plan is the single entry point package emit and package applier consume:
// it builds the ordering constraints for changes over graph and solves
// them into one deterministic, dependency-respecting sequence.
func Plan(changes []change.Change, graph *depgraph.Graph) ([]change.Change, error) {
	constraints := BuildConstraints(changes, graph)
	return Solve(changes, constraints)
}
