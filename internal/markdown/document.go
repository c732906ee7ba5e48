// Package markdown converts task documents written in the task list template
// into structured JSON, and amends documents that drift from the template.
package markdown

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Document statuses and priorities.
const (
	StatusNotStarted = "not_started"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusBlocked    = "blocked"

	PriorityMedium = "medium"
)

// Metadata identifies the document.
type Metadata struct {
	TaskID   string `json:"task_id" validate:"required"`
	Title    string `json:"title" validate:"required"`
	Status   string `json:"status" validate:"oneof=not_started in_progress completed blocked"`
	Priority string `json:"priority" validate:"oneof=low medium high critical"`
}

// Subtask is one "### Task N" block.
type Subtask struct {
	ID            string   `json:"id" validate:"required"`
	Title         string   `json:"title" validate:"required"`
	Description   string   `json:"description"`
	Steps         []string `json:"steps"`
	Status        string   `json:"status" validate:"oneof=not_started in_progress completed blocked"`
	Dependencies  []string `json:"dependencies"`
	ExecutionMode string   `json:"execution_mode,omitempty" validate:"omitempty,oneof=sequential parallel"`
}

// UsageExample is one row of the usage table.
type UsageExample struct {
	Command        string `json:"command"`
	Description    string `json:"description"`
	Example        string `json:"example"`
	ExpectedOutput string `json:"expected_output"`
}

// Document is the structured form of a task document.
type Document struct {
	Metadata      Metadata            `json:"metadata"`
	Objective     string              `json:"objective" validate:"required"`
	Requirements  []string            `json:"requirements"`
	Overview      string              `json:"overview" validate:"required"`
	Subtasks      []Subtask           `json:"subtasks" validate:"dive"`
	Resources     map[string][]string `json:"resources"`
	UsageExamples []UsageExample      `json:"usage_examples"`
}

// Validate checks struct constraints and then the embedded JSON schema.
// Status and priority values are lowercased first.
func (d *Document) Validate() error {
	d.normalize()

	if err := validate.Struct(d); err != nil {
		return fmt.Errorf("task validation failed: %w", err)
	}
	return validateSchema(d)
}

// normalize lowercases enum values and replaces nil collections with empty
// ones so the JSON form always carries arrays and objects.
func (d *Document) normalize() {
	d.Metadata.Status = strings.ToLower(orDefault(d.Metadata.Status, StatusNotStarted))
	d.Metadata.Priority = strings.ToLower(orDefault(d.Metadata.Priority, PriorityMedium))

	if d.Requirements == nil {
		d.Requirements = []string{}
	}
	if d.Subtasks == nil {
		d.Subtasks = []Subtask{}
	}
	if d.Resources == nil {
		d.Resources = map[string][]string{}
	}
	if d.UsageExamples == nil {
		d.UsageExamples = []UsageExample{}
	}

	for i := range d.Subtasks {
		st := &d.Subtasks[i]
		st.Status = strings.ToLower(orDefault(st.Status, StatusNotStarted))
		st.ExecutionMode = strings.ToLower(st.ExecutionMode)
		if st.Steps == nil {
			st.Steps = []string{}
		}
		if st.Dependencies == nil {
			st.Dependencies = []string{}
		}
	}
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
