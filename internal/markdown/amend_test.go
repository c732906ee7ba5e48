package markdown

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pablasso/orca/internal/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckRequiredSections(t *testing.T) {
	missing := CheckRequiredSections(readFixture(t, "sample_task.md"))
	assert.Equal(t, []string{
		"## Version Control Plan",
		"## Progress Tracking",
		"## Report Documentation Requirements",
	}, missing)

	assert.Equal(t, RequiredSections, CheckRequiredSections("nothing here"))
}

func TestCheckRequiredSections_SubtaskHeadingIsNotTitle(t *testing.T) {
	missing := CheckRequiredSections("### Task 1: Only a subtask\n")
	assert.Contains(t, missing, "# Task")
}

func TestDetectExecutionMode(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		wantMode graph.Mode
		wantDeps []string
	}{
		{
			name:     "defaults to sequential",
			text:     "Write the parser.",
			wantMode: graph.ModeSequential,
			wantDeps: []string{},
		},
		{
			name:     "parallel mention",
			text:     "Runs in Parallel with the others.",
			wantMode: graph.ModeParallel,
			wantDeps: []string{},
		},
		{
			name:     "depends on list",
			text:     "This depends on: Task 1, Task 3 and task-4.",
			wantMode: graph.ModeSequential,
			wantDeps: []string{"task-1", "task-3", "task-4"},
		},
		{
			name:     "dependency phrase stops at the sentence end",
			text:     "Depends on Task 2. Task 5 is unrelated.",
			wantMode: graph.ModeSequential,
			wantDeps: []string{"task-2"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mode, deps := DetectExecutionMode(tt.text)
			assert.Equal(t, tt.wantMode, mode)
			assert.Equal(t, tt.wantDeps, deps)
		})
	}
}

func TestAmend_BareDocument(t *testing.T) {
	amended := Amend(readFixture(t, "bare_task.md"))

	assert.Empty(t, CheckRequiredSections(amended))
	assert.True(t, strings.HasPrefix(amended, "# Task 012: Cache Warmer ⏳ Not Started\n\n**Objective**: [REPLACE WITH SPECIFIC OBJECTIVE]\n\n**Requirements**:\n1."))
	assert.Contains(t, amended, "### Task 1: Collect keys ⏳ Not Started\n\n**Execution Mode**: SEQUENTIAL\n\nRead hot keys")
	assert.Contains(t, amended, "### Task 2: Prime the cache ⏳ Not Started\n\n**Execution Mode**: PARALLEL\n**Dependencies**: task-1\n")
	assert.Contains(t, amended, "- [ ] 1.1 Scan the log")
	assert.Contains(t, amended, "- [ ] Write keys to every shard")
	assert.Contains(t, amended, "`/docs/reports/012_task_[SUBTASK]_[feature_name].md`")
	assert.NotContains(t, amended, "[TASK_NUMBER]")

	implIdx := strings.Index(amended, "## Implementation Tasks")
	firstTask := strings.Index(amended, "### Task 1:")
	require.NotEqual(t, -1, implIdx)
	assert.Less(t, implIdx, firstTask)

	// The amended document converts.
	doc, err := Convert(amended)
	require.NoError(t, err)
	require.Len(t, doc.Subtasks, 2)
	assert.Equal(t, "parallel", doc.Subtasks[1].ExecutionMode)
	assert.Equal(t, []string{"task-1"}, doc.Subtasks[1].Dependencies)
	assert.Equal(t, []string{"1.1 Scan the log"}, doc.Subtasks[0].Steps)
	assert.Equal(t, "Read hot keys from the access log.", doc.Subtasks[0].Description)
}

func TestAmend_IsIdempotent(t *testing.T) {
	for _, name := range []string{"bare_task.md", "sample_task.md"} {
		t.Run(name, func(t *testing.T) {
			once := Amend(readFixture(t, name))
			assert.Equal(t, once, Amend(once))
		})
	}
}

func TestAmend_KeepsExistingExecutionInfo(t *testing.T) {
	amended := Amend(readFixture(t, "sample_task.md"))

	assert.Equal(t, 1, strings.Count(amended, "**Execution Mode**: PARALLEL"))
	assert.Contains(t, amended, "### Task 3: Query API ⏳ In Progress\n\n**Execution Mode**: SEQUENTIAL\n\n**Dependencies**: Task 1, Task 2")
	assert.Contains(t, amended, "### Task 2: Indexer ✅ Complete\n")

	doc, err := Convert(amended)
	require.NoError(t, err)
	assert.Equal(t, []string{"requests: HTTP client", "elasticsearch: search client"}, doc.Resources["python_packages"])
}

func TestAmend_NoTasksAddsTemplates(t *testing.T) {
	amended := Amend("# Task 3: Empty\n")

	assert.Contains(t, amended, "### Task 1: [FEATURE NAME] ⏳ Not Started")
	assert.Contains(t, amended, "### Task 2: Completion Verification and Iteration ⏳ Not Started")
	assert.Contains(t, amended, "- [ ] 2.7 Mark task complete only if ALL sub-tasks pass")
}

func TestAmend_MissingTitle(t *testing.T) {
	amended := Amend("Notes about the work.\n")
	assert.True(t, strings.HasPrefix(amended, "# Task 001: [DESCRIPTIVE NAME] ⏳ Not Started\n\n**Objective**:"))
}

func TestEnsureCheckboxes_SkipsCodeFences(t *testing.T) {
	in := "- item\n```\n- code\n```\n- [x] done\n  - nested\n"
	want := "- [ ] item\n```\n- code\n```\n- [x] done\n  - [ ] nested\n"
	assert.Equal(t, want, ensureCheckboxes(in))
}

func TestAmendFile(t *testing.T) {
	out := filepath.Join(t.TempDir(), "amended.md")

	amended, err := AmendFile("testdata/bare_task.md", out)
	require.NoError(t, err)

	written, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, amended, string(written))
}

func TestTemplate(t *testing.T) {
	for _, s := range sectionOrder {
		if s == "# Task" {
			continue
		}
		tmpl, ok := Template(s)
		assert.True(t, ok, s)
		assert.NotEmpty(t, tmpl, s)
	}

	_, ok := Template("## Unknown")
	assert.False(t, ok)
}

func TestAmend_TemplateTasksGetExecutionMode(t *testing.T) {
	amended := Amend("# Task 3: Empty\n")

	assert.Contains(t, amended, "**Priority**: [HIGH/MEDIUM/LOW] | **Complexity**: [HIGH/MEDIUM/LOW] | **Impact**: [HIGH/MEDIUM/LOW]\n\n**Execution Mode**: SEQUENTIAL\n")
	assert.Equal(t, amended, Amend(amended))
}
