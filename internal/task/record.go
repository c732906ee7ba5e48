// Package task holds the executor's data model and its on-disk state:
// execution records, the record store, per-task locks and progress logs.
package task

import (
	"time"

	"github.com/pablasso/orca/internal/graph"
)

// Status is the lifecycle state of a task or subtask.
type Status string

// Status constants
const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	// StatusCancelled is reserved; nothing produces it yet.
	StatusCancelled Status = "cancelled"
)

// IsTerminal reports whether no further transitions are expected.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusCancelled:
		return true
	}
	return false
}

// SubtaskState is the tracked state of one subtask within a Record.
type SubtaskState struct {
	ID        string     `json:"id"`
	Status    Status     `json:"status"`
	Output    string     `json:"output,omitempty"`
	Error     string     `json:"error,omitempty"`
	ExitCode  *int       `json:"exitCode,omitempty"`
	StartTime *time.Time `json:"startTime,omitempty"`
	EndTime   *time.Time `json:"endTime,omitempty"`
}

// Record is the execution state of a task, persisted after every mutation.
type Record struct {
	TaskID        string         `json:"taskId"`
	Status        Status         `json:"status"`
	Subtasks      []SubtaskState `json:"subtasks"`
	ExecutionMode graph.Mode     `json:"executionMode"`
	StartTime     time.Time      `json:"startTime"`
	EndTime       *time.Time     `json:"endTime"`
	Error         string         `json:"error,omitempty"`
}

// NewRecord creates a RUNNING record with every subtask PENDING.
func NewRecord(t Task, start time.Time) *Record {
	rec := &Record{
		TaskID:        t.ID,
		Status:        StatusRunning,
		Subtasks:      make([]SubtaskState, len(t.Subtasks)),
		ExecutionMode: t.ExecutionMode,
		StartTime:     start,
	}
	for i, st := range t.Subtasks {
		rec.Subtasks[i] = SubtaskState{ID: st.ID, Status: StatusPending}
	}
	return rec
}

// Subtask returns the state for id, or nil.
func (r *Record) Subtask(id string) *SubtaskState {
	for i := range r.Subtasks {
		if r.Subtasks[i].ID == id {
			return &r.Subtasks[i]
		}
	}
	return nil
}

// Counts returns how many subtasks are in each status.
func (r *Record) Counts() map[Status]int {
	counts := make(map[Status]int)
	for _, st := range r.Subtasks {
		counts[st.Status]++
	}
	return counts
}

// Clone returns a deep copy.
func (r *Record) Clone() *Record {
	c := *r
	c.Subtasks = make([]SubtaskState, len(r.Subtasks))
	for i, st := range r.Subtasks {
		c.Subtasks[i] = st
		c.Subtasks[i].ExitCode = copyPtr(st.ExitCode)
		c.Subtasks[i].StartTime = copyPtr(st.StartTime)
		c.Subtasks[i].EndTime = copyPtr(st.EndTime)
	}
	c.EndTime = copyPtr(r.EndTime)
	return &c
}

// Duration returns the elapsed time, up to now if the record is still running.
func (r *Record) Duration() time.Duration {
	if r.EndTime != nil {
		return r.EndTime.Sub(r.StartTime)
	}
	return time.Since(r.StartTime)
}

func copyPtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
