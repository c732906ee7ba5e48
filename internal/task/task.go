package task

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/pablasso/orca/internal/graph"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Task is the executor input: a set of subtasks and a default execution mode.
type Task struct {
	ID            string     `json:"id,omitempty"`
	Title         string     `json:"title,omitempty"`
	ExecutionMode graph.Mode `json:"executionMode,omitempty" validate:"omitempty,oneof=sequential parallel"`
	Subtasks      []Subtask  `json:"subtasks" validate:"dive"`
}

// Subtask is one unit of work. Command runs through the shell; Prompt is used
// by agent runners when there is no command.
type Subtask struct {
	ID            string     `json:"id,omitempty"`
	Title         string     `json:"title,omitempty"`
	Description   string     `json:"description,omitempty"`
	Command       string     `json:"command,omitempty"`
	Prompt        string     `json:"prompt,omitempty"`
	Dependencies  []string   `json:"dependencies,omitempty"`
	ExecutionMode graph.Mode `json:"executionMode,omitempty" validate:"omitempty,oneof=sequential parallel"`
}

// Validate checks field-level constraints such as execution mode values.
func (t *Task) Validate() error {
	if err := validate.Struct(t); err != nil {
		return fmt.Errorf("invalid task: %w", err)
	}
	return nil
}

// Normalized returns a copy with defaults applied: missing subtask ids become
// subtask-{i}, missing dependencies become empty and missing modes inherit
// the task mode, which itself defaults to sequential.
func (t Task) Normalized() Task {
	if t.ExecutionMode == "" {
		t.ExecutionMode = graph.ModeSequential
	}

	subtasks := make([]Subtask, len(t.Subtasks))
	for i, st := range t.Subtasks {
		if st.ID == "" {
			st.ID = fmt.Sprintf("subtask-%d", i)
		}
		if st.Dependencies == nil {
			st.Dependencies = []string{}
		} else {
			st.Dependencies = append([]string{}, st.Dependencies...)
		}
		if st.ExecutionMode == "" {
			st.ExecutionMode = t.ExecutionMode
		}
		subtasks[i] = st
	}
	t.Subtasks = subtasks
	return t
}

// Descriptors converts subtasks to graph descriptors.
func (t Task) Descriptors() []graph.Descriptor {
	descs := make([]graph.Descriptor, len(t.Subtasks))
	for i, st := range t.Subtasks {
		descs[i] = graph.Descriptor{
			ID:           st.ID,
			Dependencies: st.Dependencies,
			Mode:         st.ExecutionMode,
		}
	}
	return descs
}

// DuplicateSubtaskIDs returns ids that appear more than once, in first-seen order.
func (t Task) DuplicateSubtaskIDs() []string {
	seen := make(map[string]int, len(t.Subtasks))
	var dups []string
	for _, st := range t.Subtasks {
		seen[st.ID]++
		if seen[st.ID] == 2 {
			dups = append(dups, st.ID)
		}
	}
	return dups
}
