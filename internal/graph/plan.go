package graph

import (
	"fmt"
	"strings"
)

// Stage is a set of task ids whose dependencies all belong to earlier stages.
type Stage []string

// Plan validates g and partitions it into ordered stages.
//
// Each round takes the tasks whose dependencies are all scheduled. Sequential
// tasks in that set become singleton stages in declaration order, and the
// parallel tasks are appended as one combined stage.
func Plan(g *Graph) ([]Stage, error) {
	if problems := Validate(g); len(problems) > 0 {
		verr := &ValidationError{Problems: problems}
		for _, p := range problems {
			if strings.HasPrefix(p, cyclePrefix) {
				verr.cycle = true
			} else {
				verr.missing = true
			}
		}
		return nil, verr
	}

	remaining := make(map[string]bool, len(g.order))
	for _, id := range g.order {
		remaining[id] = true
	}

	var stages []Stage
	for len(remaining) > 0 {
		var ready []string
		for _, id := range g.order {
			if !remaining[id] {
				continue
			}
			if isReady(g.nodes[id], remaining) {
				ready = append(ready, id)
			}
		}

		if len(ready) == 0 {
			return nil, &GraphError{
				Kind: ErrPlanningInvariant,
				Msg:  fmt.Sprintf("%d tasks remain unscheduled; this may indicate a cycle in the dependencies", len(remaining)),
			}
		}

		var parallel Stage
		for _, id := range ready {
			if g.nodes[id].mode == ModeParallel {
				parallel = append(parallel, id)
				continue
			}
			stages = append(stages, Stage{id})
		}
		if len(parallel) > 0 {
			stages = append(stages, parallel)
		}

		for _, id := range ready {
			delete(remaining, id)
		}
	}

	return stages, nil
}

func isReady(n *node, remaining map[string]bool) bool {
	for _, dep := range n.deps {
		if remaining[dep] {
			return false
		}
	}
	return true
}
