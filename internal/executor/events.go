package executor

import (
	"github.com/pablasso/orca/internal/graph"
	"github.com/pablasso/orca/internal/task"
)

// Events receives callbacks during task execution. Callbacks for members of a
// parallel stage arrive from multiple goroutines; implementations must be
// safe for concurrent use.
type Events interface {
	// OnTaskStart is called once the record has been created and persisted.
	OnTaskStart(taskID string, total int)

	// OnStageStart is called before a planned stage runs. stage is 1-based.
	OnStageStart(taskID string, stage, totalStages int, ids []string)

	// OnSubtaskStart is called when a subtask moves to running.
	OnSubtaskStart(taskID, subtaskID string)

	// OnSubtaskComplete is called when a subtask succeeds.
	OnSubtaskComplete(taskID, subtaskID string, exitCode int)

	// OnSubtaskFailed is called when a subtask fails.
	OnSubtaskFailed(taskID, subtaskID string, err error)

	// OnFallback is called when planning failed and the task mode is used instead.
	OnFallback(taskID string, mode graph.Mode, reason error)

	// OnTaskFinish is called with the final record.
	OnTaskFinish(rec *task.Record)
}

// NopEvents ignores every callback.
type NopEvents struct{}

func (NopEvents) OnTaskStart(string, int)                 {}
func (NopEvents) OnStageStart(string, int, int, []string) {}
func (NopEvents) OnSubtaskStart(string, string)           {}
func (NopEvents) OnSubtaskComplete(string, string, int)   {}
func (NopEvents) OnSubtaskFailed(string, string, error)   {}
func (NopEvents) OnFallback(string, graph.Mode, error)    {}
func (NopEvents) OnTaskFinish(*task.Record)               {}

// MultiEvents fans every callback out to each element in order.
type MultiEvents []Events

func (m MultiEvents) OnTaskStart(taskID string, total int) {
	for _, e := range m {
		e.OnTaskStart(taskID, total)
	}
}

func (m MultiEvents) OnStageStart(taskID string, stage, totalStages int, ids []string) {
	for _, e := range m {
		e.OnStageStart(taskID, stage, totalStages, ids)
	}
}

func (m MultiEvents) OnSubtaskStart(taskID, subtaskID string) {
	for _, e := range m {
		e.OnSubtaskStart(taskID, subtaskID)
	}
}

func (m MultiEvents) OnSubtaskComplete(taskID, subtaskID string, exitCode int) {
	for _, e := range m {
		e.OnSubtaskComplete(taskID, subtaskID, exitCode)
	}
}

func (m MultiEvents) OnSubtaskFailed(taskID, subtaskID string, err error) {
	for _, e := range m {
		e.OnSubtaskFailed(taskID, subtaskID, err)
	}
}

func (m MultiEvents) OnFallback(taskID string, mode graph.Mode, reason error) {
	for _, e := range m {
		e.OnFallback(taskID, mode, reason)
	}
}

func (m MultiEvents) OnTaskFinish(rec *task.Record) {
	for _, e := range m {
		e.OnTaskFinish(rec)
	}
}

var (
	_ Events = NopEvents{}
	_ Events = MultiEvents(nil)
	_ Events = (*task.ProgressLogger)(nil)
)
