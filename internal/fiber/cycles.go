package fiber

import (
	"fmt"
	"strings"

	"github.com/dejo1307/pagerepl/internal/snapshot"
)

// CyclicDependencyError reports components whose dependency sets can never be
// satisfied. Cycles lists every strongly connected component found; Remaining is
// set when the scheduler stalled.
type CyclicDependencyError struct {
	Cycles    [][]snapshot.ComponentID
	Remaining []snapshot.ComponentID
}

func (e *CyclicDependencyError) Error() string {
	if len(e.Cycles) == 0 {
		return fmt.Sprintf("cyclic component dependency: no schedulable component among %v", e.Remaining)
	}
	parts := make([]string, 0, len(e.Cycles))
	for _, c := range e.Cycles {
		ids := make([]string, 0, len(c)+1)
		for _, id := range c {
			ids = append(ids, string(id))
		}
		ids = append(ids, string(c[0]))
		parts = append(parts, strings.Join(ids, " -> "))
	}
	return "cyclic component dependency: " + strings.Join(parts, "; ")
}

// findCycles runs Tarjan's SCC over the component edge map and returns every SCC
// with more than one member. Self edges never exist because BuildGraph skips them.
// Vertices are visited in the given order so the result is deterministic.
func findCycles(order []snapshot.ComponentID, graph map[snapshot.ComponentID][]snapshot.ComponentID) [][]snapshot.ComponentID {
	var (
		index    int
		stack    []snapshot.ComponentID
		onStack  = make(map[snapshot.ComponentID]bool)
		indices  = make(map[snapshot.ComponentID]int)
		lowlinks = make(map[snapshot.ComponentID]int)
		cycles   [][]snapshot.ComponentID
	)

	var strongConnect func(v snapshot.ComponentID)
	strongConnect = func(v snapshot.ComponentID) {
		indices[v] = index
		lowlinks[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range graph[v] {
			if _, visited := indices[w]; !visited {
				strongConnect(w)
				if lowlinks[w] < lowlinks[v] {
					lowlinks[v] = lowlinks[w]
				}
			} else if onStack[w] {
				if indices[w] < lowlinks[v] {
					lowlinks[v] = indices[w]
				}
			}
		}

		if lowlinks[v] == indices[v] {
			var scc []snapshot.ComponentID
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			if len(scc) > 1 {
				// popped in reverse discovery order
				for i, j := 0, len(scc)-1; i < j; i, j = i+1, j-1 {
					scc[i], scc[j] = scc[j], scc[i]
				}
				cycles = append(cycles, scc)
			}
		}
	}

	for _, v := range order {
		if _, visited := indices[v]; !visited {
			strongConnect(v)
		}
	}
	return cycles
}
