package task

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/pablasso/orca/internal/graph"
)

const progressExt = ".progress.log"

// Event type constants for progress logging.
const (
	EventTaskStarted      = "task_started"
	EventTaskCompleted    = "task_completed"
	EventTaskFailed       = "task_failed"
	EventStageStarted     = "stage_started"
	EventSubtaskStarted   = "subtask_started"
	EventSubtaskCompleted = "subtask_completed"
	EventSubtaskFailed    = "subtask_failed"
	EventFallback         = "fallback"
)

// ProgressEvent represents a single progress log entry.
type ProgressEvent struct {
	Timestamp time.Time      `json:"timestamp"`
	Event     string         `json:"event"`
	Data      map[string]any `json:"data,omitempty"`
}

// ProgressLogger appends progress events to a JSON Lines file per task,
// <dir>/<taskId>.progress.log. It is safe for concurrent use.
type ProgressLogger struct {
	dir string
	mu  sync.Mutex
}

// NewProgressLogger creates a progress logger writing under dir.
func NewProgressLogger(dir string) *ProgressLogger {
	return &ProgressLogger{dir: dir}
}

// Path returns the progress log path for taskID.
func (p *ProgressLogger) Path(taskID string) string {
	return filepath.Join(p.dir, taskID+progressExt)
}

// Log appends a progress event to the task's log file.
func (p *ProgressLogger) Log(taskID, event string, data map[string]any) error {
	entry := ProgressEvent{
		Timestamp: time.Now(),
		Event:     event,
		Data:      data,
	}

	jsonBytes, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	jsonBytes = append(jsonBytes, '\n')

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := os.MkdirAll(p.dir, 0755); err != nil {
		return err
	}
	f, err := os.OpenFile(p.Path(taskID), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = f.Write(jsonBytes)
	return err
}

// ReadEvents returns every event logged for taskID, in order.
func (p *ProgressLogger) ReadEvents(taskID string) ([]ProgressEvent, error) {
	data, err := os.ReadFile(p.Path(taskID))
	if err != nil {
		return nil, err
	}

	var events []ProgressEvent
	dec := json.NewDecoder(bytes.NewReader(data))
	for dec.More() {
		var e ProgressEvent
		if err := dec.Decode(&e); err != nil {
			return events, err
		}
		events = append(events, e)
	}
	return events, nil
}

// The methods below let a ProgressLogger receive executor events.
// Write failures are dropped; the progress log is best effort.

func (p *ProgressLogger) OnTaskStart(taskID string, total int) {
	p.Log(taskID, EventTaskStarted, map[string]any{"subtasks": total})
}

func (p *ProgressLogger) OnStageStart(taskID string, stage, totalStages int, ids []string) {
	p.Log(taskID, EventStageStarted, map[string]any{
		"stage":        stage,
		"total_stages": totalStages,
		"subtask_ids":  ids,
	})
}

func (p *ProgressLogger) OnSubtaskStart(taskID, subtaskID string) {
	p.Log(taskID, EventSubtaskStarted, map[string]any{"subtask_id": subtaskID})
}

func (p *ProgressLogger) OnSubtaskComplete(taskID, subtaskID string, exitCode int) {
	p.Log(taskID, EventSubtaskCompleted, map[string]any{
		"subtask_id": subtaskID,
		"exit_code":  exitCode,
	})
}

func (p *ProgressLogger) OnSubtaskFailed(taskID, subtaskID string, err error) {
	p.Log(taskID, EventSubtaskFailed, map[string]any{
		"subtask_id": subtaskID,
		"error":      err.Error(),
	})
}

func (p *ProgressLogger) OnFallback(taskID string, mode graph.Mode, reason error) {
	p.Log(taskID, EventFallback, map[string]any{
		"mode":   string(mode),
		"reason": reason.Error(),
	})
}

func (p *ProgressLogger) OnTaskFinish(r *Record) {
	counts := r.Counts()
	data := map[string]any{
		"total_subtasks":     len(r.Subtasks),
		"completed_subtasks": counts[StatusCompleted],
		"failed_subtasks":    counts[StatusFailed],
		"duration_ms":        r.Duration().Milliseconds(),
	}
	event := EventTaskCompleted
	if r.Status == StatusFailed {
		event = EventTaskFailed
		data["error"] = r.Error
	}
	p.Log(r.TaskID, event, data)
}
