// Package graph builds, validates and plans subtask dependency graphs.
//
// A Graph is rebuilt from descriptors on every planning call. Validate and
// Plan only read it, so the same Graph can be checked any number of times.
package graph

import (
	"fmt"
	"strings"
)

// Mode controls whether ready tasks are grouped for concurrent execution.
type Mode string

const (
	ModeSequential Mode = "sequential"
	ModeParallel   Mode = "parallel"
)

// ParseMode accepts "sequential" or "parallel" in any case.
// An empty string yields ModeSequential.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeSequential:
		return ModeSequential, nil
	case ModeParallel:
		return ModeParallel, nil
	}
	return "", fmt.Errorf("invalid execution mode %q: must be %q or %q", s, ModeSequential, ModeParallel)
}

// Descriptor is the input for one graph node.
type Descriptor struct {
	ID           string
	Dependencies []string
	Mode         Mode
}

type node struct {
	id   string
	mode Mode
	deps []string
}

// Graph is a directed graph where an edge A -> B means B depends on A.
type Graph struct {
	order []string
	nodes map[string]*node
}

// Build creates a graph with one node per descriptor and one edge per
// declared dependency. Duplicate and empty ids are rejected.
func Build(descs []Descriptor) (*Graph, error) {
	g := &Graph{
		order: make([]string, 0, len(descs)),
		nodes: make(map[string]*node, len(descs)),
	}

	for i, d := range descs {
		if d.ID == "" {
			return nil, &GraphError{Kind: ErrEmptyID, Msg: fmt.Sprintf("descriptor %d", i)}
		}
		if _, exists := g.nodes[d.ID]; exists {
			return nil, &GraphError{Kind: ErrDuplicateID, Msg: d.ID}
		}

		mode := d.Mode
		if mode == "" {
			mode = ModeSequential
		}

		seen := make(map[string]bool, len(d.Dependencies))
		deps := make([]string, 0, len(d.Dependencies))
		for _, dep := range d.Dependencies {
			if seen[dep] {
				continue
			}
			seen[dep] = true
			deps = append(deps, dep)
		}

		g.nodes[d.ID] = &node{id: d.ID, mode: mode, deps: deps}
		g.order = append(g.order, d.ID)
	}

	return g, nil
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	return len(g.order)
}

// IDs returns node ids in declaration order.
func (g *Graph) IDs() []string {
	return append([]string(nil), g.order...)
}

// Has reports whether id is a node.
func (g *Graph) Has(id string) bool {
	_, ok := g.nodes[id]
	return ok
}

// Mode returns the execution mode of id, or "" if id is not a node.
func (g *Graph) Mode(id string) Mode {
	if n, ok := g.nodes[id]; ok {
		return n.mode
	}
	return ""
}

// Dependencies returns the declared dependencies of id, including any that
// are not nodes of the graph.
func (g *Graph) Dependencies(id string) []string {
	if n, ok := g.nodes[id]; ok {
		return append([]string(nil), n.deps...)
	}
	return nil
}
