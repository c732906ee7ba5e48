package graph

// Validate reports problems that make g unschedulable. It never fails and
// never mutates g; an empty result means g is valid.
//
// At most one cycle is reported, as the first one found by a depth-first
// traversal in declaration order. Every dependency naming an id that is not
// a node yields its own message.
func Validate(g *Graph) []string {
	var problems []string

	if path := findCycle(g); path != nil {
		problems = append(problems, cycleMessage(path))
	}

	for _, id := range g.order {
		for _, dep := range g.nodes[id].deps {
			if !g.Has(dep) {
				problems = append(problems, missingMessage(id, dep))
			}
		}
	}

	return problems
}

// findCycle returns a closed path (first element repeated at the end) along
// dependency -> dependent edges, or nil if g is acyclic.
func findCycle(g *Graph) []string {
	dependents := make(map[string][]string, len(g.order))
	for _, id := range g.order {
		for _, dep := range g.nodes[id].deps {
			if g.Has(dep) {
				dependents[dep] = append(dependents[dep], id)
			}
		}
	}

	const (
		white = iota
		gray
		black
	)
	color := make(map[string]int, len(g.order))
	var stack []string

	var visit func(id string) []string
	visit = func(id string) []string {
		color[id] = gray
		stack = append(stack, id)
		for _, next := range dependents[id] {
			switch color[next] {
			case gray:
				start := 0
				for i := len(stack) - 1; i >= 0; i-- {
					if stack[i] == next {
						start = i
						break
					}
				}
				path := append([]string(nil), stack[start:]...)
				return append(path, next)
			case white:
				if path := visit(next); path != nil {
					return path
				}
			}
		}
		stack = stack[:len(stack)-1]
		color[id] = black
		return nil
	}

	for _, id := range g.order {
		if color[id] != white {
			continue
		}
		if path := visit(id); path != nil {
			return path
		}
	}
	return nil
}
