package markdown

import (
	"github.com/pablasso/orca/internal/ai"
	"github.com/pablasso/orca/internal/graph"
	"github.com/pablasso/orca/internal/task"
)

// TaskID returns the executor task id for the document.
func (d *Document) TaskID() string {
	return "task-" + d.Metadata.TaskID
}

// ToTask maps the document to an executor task. Subtasks carry an agent
// prompt and no command. Dependencies written as task-N refer to the subtask
// numbered N and are rewritten to its id; other references are kept.
func (d *Document) ToTask(mode graph.Mode) task.Task {
	if mode == "" {
		mode = graph.ModeSequential
	}

	ids := make(map[string]bool, len(d.Subtasks))
	for _, st := range d.Subtasks {
		ids[st.ID] = true
	}

	subtasks := make([]task.Subtask, len(d.Subtasks))
	for i, st := range d.Subtasks {
		stMode := graph.Mode(st.ExecutionMode)
		effective := stMode
		if effective == "" {
			effective = mode
		}

		deps := make([]string, 0, len(st.Dependencies))
		for _, dep := range st.Dependencies {
			deps = append(deps, resolveDependency(dep, ids))
		}

		subtasks[i] = task.Subtask{
			ID:            st.ID,
			Title:         st.Title,
			Description:   st.Description,
			Prompt:        ai.BuildSubtaskPrompt(st.Title, st.Description, st.Steps, string(effective)),
			Dependencies:  deps,
			ExecutionMode: stMode,
		}
	}

	return task.Task{
		ID:            d.TaskID(),
		Title:         d.Metadata.Title,
		ExecutionMode: mode,
		Subtasks:      subtasks,
	}
}

func resolveDependency(dep string, ids map[string]bool) string {
	if ids[dep] {
		return dep
	}
	if m := taskRefRe.FindStringSubmatch(dep); m != nil && ids[m[1]] {
		return m[1]
	}
	return dep
}
