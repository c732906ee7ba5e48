package views

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/pablasso/orca/internal/task"
	"github.com/pablasso/orca/internal/tui/msgs"
)

func records(ids ...string) []*task.Record {
	var out []*task.Record
	for _, id := range ids {
		out = append(out, &task.Record{
			TaskID:    id,
			Status:    task.StatusCompleted,
			StartTime: time.Now(),
			Subtasks:  []task.SubtaskState{{ID: "1", Status: task.StatusCompleted}},
		})
	}
	return out
}

func TestTaskListModel_Navigation(t *testing.T) {
	m := NewTaskListModel()
	m.SetRecords(records("task-a", "task-b", "task-c"))

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("j")})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	if m.Cursor() != 2 {
		t.Errorf("cursor = %d, want 2 (clamped)", m.Cursor())
	}

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyUp})
	if m.Cursor() != 1 {
		t.Errorf("cursor = %d, want 1", m.Cursor())
	}

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected enter to produce a command")
	}
	open, ok := cmd().(msgs.OpenTaskMsg)
	if !ok || open.TaskID != "task-b" {
		t.Errorf("got %#v, want OpenTaskMsg{task-b}", cmd())
	}
}

func TestTaskListModel_SetRecordsKeepsSelection(t *testing.T) {
	m := NewTaskListModel()
	m.SetRecords(records("task-a", "task-b"))
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})

	m.SetRecords(records("task-new", "task-a", "task-b"))

	if m.Cursor() != 2 {
		t.Errorf("cursor = %d, want 2 (still on task-b)", m.Cursor())
	}

	m.SetRecords(records("task-x"))
	if m.Cursor() != 0 {
		t.Errorf("cursor = %d, want 0 after the selection disappeared", m.Cursor())
	}
}

func TestTaskListModel_View(t *testing.T) {
	t.Run("empty list shows hint", func(t *testing.T) {
		m := NewTaskListModel()
		m.SetSize(80, 20)

		view := m.View()
		if !strings.Contains(view, "No tasks found.") {
			t.Errorf("expected empty message, got:\n%s", view)
		}
	})

	t.Run("zero size renders nothing", func(t *testing.T) {
		m := NewTaskListModel()
		if m.View() != "" {
			t.Error("expected empty view before the first resize")
		}
	})

	t.Run("records show id and progress", func(t *testing.T) {
		m := NewTaskListModel()
		m.SetSize(100, 20)
		m.SetRecords(records("task-a"))

		view := m.View()
		if !strings.Contains(view, "task-a") || !strings.Contains(view, "1/1") {
			t.Errorf("expected task-a with 1/1, got:\n%s", view)
		}
	})
}

func TestTaskDetailModel(t *testing.T) {
	rec := &task.Record{
		TaskID:    "task-d",
		Status:    task.StatusFailed,
		StartTime: time.Now(),
		Error:     "stage 2 failed",
		Subtasks: []task.SubtaskState{
			{ID: "1", Status: task.StatusCompleted, Output: "built ok"},
			{ID: "2", Status: task.StatusFailed, Error: "exit status 1"},
		},
	}
	m := NewTaskDetailModel(rec, 100, 30)

	view := m.View()
	for _, want := range []string{"task-d", "stage 2 failed", "built ok", "(1 failed)"} {
		if !strings.Contains(view, want) {
			t.Errorf("expected view to contain %q, got:\n%s", want, view)
		}
	}

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	if m.Cursor() != 1 {
		t.Fatalf("cursor = %d, want 1", m.Cursor())
	}
	if !strings.Contains(m.View(), "exit status 1") {
		t.Errorf("expected selected subtask error, got:\n%s", m.View())
	}

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if cmd == nil {
		t.Fatal("expected esc to produce a command")
	}
	if _, ok := cmd().(msgs.BackMsg); !ok {
		t.Error("expected BackMsg")
	}
}
