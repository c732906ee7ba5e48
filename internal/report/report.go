// Package report renders markdown reports for executed subtasks and tasks.
package report

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/pablasso/orca/internal/task"
	"github.com/pablasso/orca/internal/util"
)

// excerptLimit is the response length past which only the head and tail are kept.
const (
	excerptLimit = 2000
	excerptSize  = 500
)

// SubtaskReport is the input for a per-subtask report.
type SubtaskReport struct {
	TaskID      string
	SubtaskID   string
	Title       string
	Description string
	Mode        string
	Executor    string
	Status      task.Status
	Response    string
	Error       string
	ExitCode    *int
	Duration    time.Duration
}

// FromRecord builds a SubtaskReport from a persisted record. It returns false
// if the record has no such subtask.
func FromRecord(rec *task.Record, subtaskID, title string) (SubtaskReport, bool) {
	st := rec.Subtask(subtaskID)
	if st == nil {
		return SubtaskReport{}, false
	}

	r := SubtaskReport{
		TaskID:    rec.TaskID,
		SubtaskID: st.ID,
		Title:     title,
		Mode:      string(rec.ExecutionMode),
		Executor:  "orca",
		Status:    st.Status,
		Response:  st.Output,
		Error:     st.Error,
		ExitCode:  st.ExitCode,
	}
	if r.Title == "" {
		r.Title = st.ID
	}
	if st.StartTime != nil && st.EndTime != nil {
		r.Duration = st.EndTime.Sub(*st.StartTime)
	}
	return r, true
}

// SubtaskFileName returns <taskID>_task_<subtaskID>_<slug>.md.
func SubtaskFileName(taskID, subtaskID, title string) string {
	name := fmt.Sprintf("%s_task_%s", taskID, subtaskID)
	if slug := util.Slugify(title); slug != "" {
		name += "_" + slug
	}
	return name + ".md"
}

// SummaryFileName returns <taskID>_execution_summary.md.
func SummaryFileName(taskID string) string {
	return taskID + "_execution_summary.md"
}

var funcs = template.FuncMap{
	"seconds": func(d time.Duration) string { return fmt.Sprintf("%.6f", d.Seconds()) },
	"human":   HumanDuration,
	"bytes":   func(s string) string { return humanize.Bytes(uint64(len(s))) },
	"exit": func(code *int) string {
		if code == nil {
			return "-"
		}
		return fmt.Sprint(*code)
	},
	"stamp": func(t *time.Time) string {
		if t == nil {
			return "-"
		}
		return t.Format(time.RFC3339)
	},
}

var subtaskTmpl = template.Must(template.New("subtask").Funcs(funcs).Parse(`# Task {{.SubtaskID}}: {{.Title}}

## Task Summary
{{if .Description}}{{.Description}}{{else}}No description provided.{{end}}

## Research Findings
{{.Findings}}

## Non-Mocked Results
` + "```" + `
Execution Time: {{seconds .Duration}} seconds
Status: {{.Status}}
Exit Code: {{exit .ExitCode}}
Output Size: {{bytes .Response}}
` + "```" + `

## Performance Metrics
The task was executed in {{.Mode}} mode and finished in {{human .Duration}}.
{{if .Error}}
## Errors
` + "```" + `
{{.Error}}
` + "```" + `
{{end}}
## Verification Evidence
- Task executed with {{.Executor}}
- Execution time measured and recorded
- Response captured and saved

## Limitations Found
{{if .Limitations}}{{.Limitations}}{{else}}None recorded.{{end}}
`))

type subtaskView struct {
	SubtaskReport
	Findings    string
	Limitations string
}

// RenderSubtask renders the report markdown. Long responses are reduced to
// their head under findings and their tail under limitations.
func RenderSubtask(r SubtaskReport) (string, error) {
	v := subtaskView{SubtaskReport: r, Findings: strings.TrimSpace(r.Response)}
	if len(v.Findings) > excerptLimit {
		full := v.Findings
		v.Findings = full[:excerptSize]
		v.Limitations = full[len(full)-excerptSize:]
	}
	if v.Findings == "" {
		v.Findings = "No output captured."
	}
	if v.Executor == "" {
		v.Executor = "orca"
	}

	var buf bytes.Buffer
	if err := subtaskTmpl.Execute(&buf, v); err != nil {
		return "", fmt.Errorf("failed to render subtask report: %w", err)
	}
	return buf.String(), nil
}

// WriteSubtask renders r into dir and returns the file path.
func WriteSubtask(dir string, r SubtaskReport) (string, error) {
	content, err := RenderSubtask(r)
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, SubtaskFileName(r.TaskID, r.SubtaskID, r.Title))
	if err := writeFile(path, content); err != nil {
		return "", err
	}
	return path, nil
}

var summaryTmpl = template.Must(template.New("summary").Funcs(funcs).Parse(`# Execution Summary: {{.TaskID}}

**Status**: {{.Status}}
**Execution Mode**: {{.ExecutionMode}}
**Started**: {{.StartTime.Format "2006-01-02T15:04:05Z07:00"}}
**Finished**: {{stamp .EndTime}}
**Duration**: {{human .Duration}}

## Subtasks

| ID | Title | Status | Exit Code | Duration |
|----|-------|--------|-----------|----------|
{{range .Rows}}| {{.ID}} | {{.Title}} | {{.Status}} | {{exit .ExitCode}} | {{.Duration}} |
{{end}}
## Totals

- Completed: {{.Completed}}
- Failed: {{.Failed}}
- Pending: {{.Pending}}
{{if .Error}}
## Error

{{.Error}}
{{end}}`))

type summaryRow struct {
	ID       string
	Title    string
	Status   task.Status
	ExitCode *int
	Duration string
}

type summaryView struct {
	*task.Record
	Duration  time.Duration
	Rows      []summaryRow
	Completed int
	Failed    int
	Pending   int
}

// RenderSummary renders the execution summary for rec. titles maps subtask
// ids to display titles; missing entries fall back to the id.
func RenderSummary(rec *task.Record, titles map[string]string) (string, error) {
	counts := rec.Counts()
	v := summaryView{
		Record:    rec,
		Duration:  rec.Duration(),
		Completed: counts[task.StatusCompleted],
		Failed:    counts[task.StatusFailed],
		Pending:   counts[task.StatusPending],
	}
	for _, st := range rec.Subtasks {
		row := summaryRow{ID: st.ID, Title: titles[st.ID], Status: st.Status, ExitCode: st.ExitCode, Duration: "-"}
		if row.Title == "" {
			row.Title = st.ID
		}
		if st.StartTime != nil && st.EndTime != nil {
			row.Duration = HumanDuration(st.EndTime.Sub(*st.StartTime))
		}
		v.Rows = append(v.Rows, row)
	}

	var buf bytes.Buffer
	if err := summaryTmpl.Execute(&buf, v); err != nil {
		return "", fmt.Errorf("failed to render summary: %w", err)
	}
	return buf.String(), nil
}

// WriteSummary renders the summary into dir and returns the file path.
func WriteSummary(dir string, rec *task.Record, titles map[string]string) (string, error) {
	content, err := RenderSummary(rec, titles)
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, SummaryFileName(rec.TaskID))
	if err := writeFile(path, content); err != nil {
		return "", err
	}
	return path, nil
}

// HumanDuration prints sub-minute durations precisely and longer ones the way
// humanize prints relative times ("3 minutes").
func HumanDuration(d time.Duration) string {
	if d < time.Minute {
		return d.Round(time.Millisecond).String()
	}
	base := time.Unix(0, 0)
	return strings.TrimSpace(humanize.RelTime(base, base.Add(d), "", ""))
}

func writeFile(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create reports directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}
