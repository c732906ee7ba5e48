package task

import (
	"testing"
	"time"

	"github.com/pablasso/orca/internal/graph"
)

func TestNewRecord(t *testing.T) {
	tk := Task{
		ID:            "task-1",
		ExecutionMode: graph.ModeParallel,
		Subtasks:      []Subtask{{ID: "a"}, {ID: "b"}},
	}
	start := time.Now()

	rec := NewRecord(tk, start)

	if rec.Status != StatusRunning {
		t.Errorf("expected running, got %s", rec.Status)
	}
	if rec.EndTime != nil {
		t.Error("expected nil end time")
	}
	if rec.ExecutionMode != graph.ModeParallel {
		t.Errorf("expected parallel, got %s", rec.ExecutionMode)
	}
	if len(rec.Subtasks) != 2 {
		t.Fatalf("expected 2 subtasks, got %d", len(rec.Subtasks))
	}
	for _, st := range rec.Subtasks {
		if st.Status != StatusPending {
			t.Errorf("subtask %s: expected pending, got %s", st.ID, st.Status)
		}
	}
	if rec.Subtask("b") == nil || rec.Subtask("missing") != nil {
		t.Error("Subtask lookup returned the wrong result")
	}
}

func TestRecord_CloneIsDeep(t *testing.T) {
	code := 0
	now := time.Now()
	rec := &Record{
		TaskID:   "task-1",
		Status:   StatusRunning,
		EndTime:  &now,
		Subtasks: []SubtaskState{{ID: "a", Status: StatusCompleted, ExitCode: &code, StartTime: &now}},
	}

	c := rec.Clone()
	c.Subtasks[0].Status = StatusFailed
	*c.Subtasks[0].ExitCode = 7
	*c.EndTime = now.Add(time.Hour)

	if rec.Subtasks[0].Status != StatusCompleted {
		t.Error("clone shares subtask slice with original")
	}
	if *rec.Subtasks[0].ExitCode != 0 {
		t.Error("clone shares exit code pointer with original")
	}
	if !rec.EndTime.Equal(now) {
		t.Error("clone shares end time pointer with original")
	}
}

func TestRecord_Counts(t *testing.T) {
	rec := &Record{Subtasks: []SubtaskState{
		{Status: StatusCompleted},
		{Status: StatusCompleted},
		{Status: StatusFailed},
		{Status: StatusPending},
	}}

	counts := rec.Counts()
	if counts[StatusCompleted] != 2 || counts[StatusFailed] != 1 || counts[StatusPending] != 1 {
		t.Errorf("unexpected counts: %v", counts)
	}
	if counts[StatusRunning] != 0 {
		t.Errorf("expected no running subtasks, got %d", counts[StatusRunning])
	}
}

func TestStatus_IsTerminal(t *testing.T) {
	tests := []struct {
		status Status
		want   bool
	}{
		{StatusPending, false},
		{StatusRunning, false},
		{StatusCompleted, true},
		{StatusFailed, true},
		{StatusCancelled, true},
	}

	for _, tt := range tests {
		if got := tt.status.IsTerminal(); got != tt.want {
			t.Errorf("%s.IsTerminal() = %v, want %v", tt.status, got, tt.want)
		}
	}
}

func TestRecord_Duration(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(90 * time.Second)
	rec := &Record{StartTime: start, EndTime: &end}

	if got := rec.Duration(); got != 90*time.Second {
		t.Errorf("expected 90s, got %v", got)
	}
}
