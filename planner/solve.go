package planner

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ddldiff/ddldiff/change"
)

// Solve orders changes by their constraints using Kahn's algorithm,
// generalizing the in-degree based approach of core/goschema/utils.go's
// sortTablesByDependencies to arbitrary change indices. Unlike that
// reference, which logs a warning and appends whatever is left over when
// it finds a cycle, Solve treats a cycle as a hard failure and reports
// every simple cycle it can find (spec.md §4.6, invariant 9).
//
// Among changes with no remaining unsatisfied constraint at a given step,
// the one with the smallest original index is chosen, so the result is
// deterministic and preserves the changeset's own emission order wherever
// the constraints leave a choice.
func Solve(changes []change.Change, constraints []Constraint) ([]change.Change, error) {
	n := len(changes)
	adj := make([][]int, n)   // Before -> [After, ...]
	indeg := make([]int, n)

	seen := make(map[[2]int]bool)
	for _, c := range constraints {
		key := [2]int{c.Before, c.After}
		if seen[key] {
			continue
		}
		seen[key] = true
		adj[c.Before] = append(adj[c.Before], c.After)
		indeg[c.After]++
	}

	var ready []int
	for i := 0; i < n; i++ {
		if indeg[i] == 0 {
			ready = append(ready, i)
		}
	}

	out := make([]change.Change, 0, n)
	processed := make([]bool, n)

	for len(ready) > 0 {
		sort.Ints(ready)
		idx := ready[0]
		ready = ready[1:]

		out = append(out, changes[idx])
		processed[idx] = true

		for _, next := range adj[idx] {
			indeg[next]--
			if indeg[next] == 0 {
				ready = append(ready, next)
			}
		}
	}

	if len(out) == n {
		return out, nil
	}

	var remaining []int
	for i := 0; i < n; i++ {
		if !processed[i] {
			remaining = append(remaining, i)
		}
	}
	return nil, &CycleError{Cycles: findSimpleCycles(changes, adj, remaining)}
}

// CycleError is returned by Solve when the constraint set cannot be
// topologically ordered. Each entry in Cycles is one simple cycle,
// described change by change so the caller can report stable_id and
// operation kind without re-deriving them.
type CycleError struct {
	Cycles [][]CycleStep
}

// CycleStep names one change participating in a reported cycle.
type CycleStep struct {
	StableID string
	Kind     string
}

func (e *CycleError) Error() string {
	if len(e.Cycles) == 0 {
		return "planner: dependency cycle detected among unordered changes"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "planner: %d dependency cycle(s) detected:", len(e.Cycles))
	for _, cyc := range e.Cycles {
		b.WriteString("\n  ")
		for i, step := range cyc {
			if i > 0 {
				b.WriteString(" -> ")
			}
			fmt.Fprintf(&b, "%s(%s)", step.StableID, step.Kind)
		}
		if len(cyc) > 0 {
			fmt.Fprintf(&b, " -> %s(%s)", cyc[0].StableID, cyc[0].Kind)
		}
	}
	return b.String()
}

// findSimpleCycles enumerates simple cycles restricted to the subgraph of
// changes left unordered after Kahn's algorithm stalls (every node here
// has indeg > 0, so it sits on a cycle or downstream of one). It performs a
// bounded DFS from each remaining node, reporting a cycle the first time
// the walk returns to its start, and dedupes rotations of the same cycle.
func findSimpleCycles(changes []change.Change, adj [][]int, remaining []int) [][]CycleStep {
	inRemaining := map[int]bool{}
	for _, i := range remaining {
		inRemaining[i] = true
	}

	var cycles [][]CycleStep
	dedupe := map[string]bool{}

	var path []int
	onPath := map[int]bool{}

	var walk func(start, node int)
	walk = func(start, node int) {
		for _, next := range adj[node] {
			if !inRemaining[next] {
				continue
			}
			if next == start && len(path) > 0 {
				cyc := append([]int(nil), path...)
				key := canonicalCycleKey(cyc)
				if !dedupe[key] {
					dedupe[key] = true
					cycles = append(cycles, toCycleSteps(changes, cyc))
				}
				continue
			}
			if onPath[next] || len(path) > 24 {
				continue
			}
			path = append(path, next)
			onPath[next] = true
			walk(start, next)
			onPath[next] = false
			path = path[:len(path)-1]
		}
	}

	for _, start := range remaining {
		path = []int{start}
		onPath[start] = true
		walk(start, start)
		onPath[start] = false
	}

	return cycles
}

func canonicalCycleKey(cyc []int) string {
	if len(cyc) == 0 {
		return ""
	}
	minPos := 0
	for i, v := range cyc {
		if v < cyc[minPos] {
			minPos = i
		}
	}
	rotated := append(append([]int(nil), cyc[minPos:]...), cyc[:minPos]...)
	parts := make([]string, len(rotated))
	for i, v := range rotated {
		parts[i] = fmt.Sprint(v)
	}
	return strings.Join(parts, ",")
}

func toCycleSteps(changes []change.Change, cyc []int) []CycleStep {
	steps := make([]CycleStep, len(cyc))
	for i, idx := range cyc {
		steps[i] = CycleStep{StableID: changes[idx].StableID(), Kind: changes[idx].Kind()}
	}
	return steps
}
