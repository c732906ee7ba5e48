package graph

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidGraph matches any validation failure reported by Plan.
	ErrInvalidGraph = errors.New("invalid dependency graph")
	// ErrCycle matches a validation failure that includes a dependency cycle.
	ErrCycle = errors.New("dependency cycle")
	// ErrMissingDependency matches a validation failure that includes a dangling dependency.
	ErrMissingDependency = errors.New("missing dependency")
	// ErrDuplicateID is returned by Build when two descriptors share an id.
	ErrDuplicateID = errors.New("duplicate task id")
	// ErrEmptyID is returned by Build when a descriptor has no id.
	ErrEmptyID = errors.New("empty task id")
	// ErrPlanningInvariant is returned by Plan when no task is ready while tasks remain.
	ErrPlanningInvariant = errors.New("could not find next tasks to execute")
)

// GraphError wraps a structural failure found while building or planning a graph.
type GraphError struct {
	Kind error
	Msg  string
}

func (e *GraphError) Error() string {
	if e == nil {
		return ""
	}
	if e.Msg == "" {
		return e.Kind.Error()
	}
	return fmt.Sprintf("%s: %s", e.Kind.Error(), e.Msg)
}

func (e *GraphError) Unwrap() error { return e.Kind }

// ValidationError carries every problem Validate reported for a graph.
type ValidationError struct {
	Problems []string

	cycle   bool
	missing bool
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", ErrInvalidGraph.Error(), strings.Join(e.Problems, "; "))
}

// Is lets callers test for ErrInvalidGraph, ErrCycle or ErrMissingDependency.
func (e *ValidationError) Is(target error) bool {
	switch target {
	case ErrInvalidGraph:
		return true
	case ErrCycle:
		return e.cycle
	case ErrMissingDependency:
		return e.missing
	}
	return false
}

func cycleMessage(path []string) string {
	return cyclePrefix + strings.Join(path, " -> ")
}

func missingMessage(dependent, missing string) string {
	return fmt.Sprintf("task %s depends on missing task %s", dependent, missing)
}

const cyclePrefix = "dependency cycle detected: "
