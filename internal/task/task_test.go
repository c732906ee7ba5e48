package task

import (
	"reflect"
	"strings"
	"testing"

	"github.com/pablasso/orca/internal/graph"
)

func TestTask_Normalized(t *testing.T) {
	in := Task{
		ID:            "task-1",
		ExecutionMode: graph.ModeParallel,
		Subtasks: []Subtask{
			{Command: "echo a"},
			{ID: "b", Command: "echo b", Dependencies: []string{"subtask-0"}, ExecutionMode: graph.ModeSequential},
		},
	}

	got := in.Normalized()

	if got.Subtasks[0].ID != "subtask-0" {
		t.Errorf("expected generated id subtask-0, got %q", got.Subtasks[0].ID)
	}
	if got.Subtasks[0].Dependencies == nil || len(got.Subtasks[0].Dependencies) != 0 {
		t.Errorf("expected empty dependencies, got %#v", got.Subtasks[0].Dependencies)
	}
	if got.Subtasks[0].ExecutionMode != graph.ModeParallel {
		t.Errorf("expected inherited mode parallel, got %q", got.Subtasks[0].ExecutionMode)
	}
	if got.Subtasks[1].ExecutionMode != graph.ModeSequential {
		t.Errorf("expected explicit mode to be kept, got %q", got.Subtasks[1].ExecutionMode)
	}

	// The input must be left untouched.
	if in.Subtasks[0].ID != "" {
		t.Error("Normalized mutated the input task")
	}
}

func TestTask_Normalized_DefaultsTaskMode(t *testing.T) {
	got := Task{Subtasks: []Subtask{{Command: "true"}}}.Normalized()

	if got.ExecutionMode != graph.ModeSequential {
		t.Errorf("expected sequential, got %q", got.ExecutionMode)
	}
	if got.Subtasks[0].ExecutionMode != graph.ModeSequential {
		t.Errorf("expected subtask to inherit sequential, got %q", got.Subtasks[0].ExecutionMode)
	}
}

func TestTask_Descriptors(t *testing.T) {
	tk := Task{
		ExecutionMode: graph.ModeParallel,
		Subtasks: []Subtask{
			{ID: "1"},
			{ID: "2", Dependencies: []string{"1"}},
		},
	}.Normalized()

	want := []graph.Descriptor{
		{ID: "1", Dependencies: []string{}, Mode: graph.ModeParallel},
		{ID: "2", Dependencies: []string{"1"}, Mode: graph.ModeParallel},
	}
	if got := tk.Descriptors(); !reflect.DeepEqual(got, want) {
		t.Errorf("got %#v, want %#v", got, want)
	}
}

func TestTask_Validate(t *testing.T) {
	tests := []struct {
		name    string
		task    Task
		wantErr string
	}{
		{
			name: "valid modes",
			task: Task{ExecutionMode: graph.ModeParallel, Subtasks: []Subtask{{ExecutionMode: graph.ModeSequential}}},
		},
		{
			name: "empty modes are allowed",
			task: Task{Subtasks: []Subtask{{}}},
		},
		{
			name:    "invalid task mode",
			task:    Task{ExecutionMode: "eventually"},
			wantErr: "ExecutionMode",
		},
		{
			name:    "invalid subtask mode",
			task:    Task{Subtasks: []Subtask{{ExecutionMode: "later"}}},
			wantErr: "Subtasks[0].ExecutionMode",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.task.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error to mention %q, got: %v", tt.wantErr, err)
			}
		})
	}
}

func TestTask_DuplicateSubtaskIDs(t *testing.T) {
	tk := Task{Subtasks: []Subtask{{ID: "a"}, {ID: "b"}, {ID: "a"}, {ID: "a"}, {ID: "b"}}}

	got := tk.DuplicateSubtaskIDs()
	want := []string{"a", "b"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}

	if dups := (Task{Subtasks: []Subtask{{ID: "x"}}}).DuplicateSubtaskIDs(); dups != nil {
		t.Errorf("expected no duplicates, got %v", dups)
	}
}
