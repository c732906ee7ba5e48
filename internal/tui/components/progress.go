package components

import (
	"fmt"
	"strings"

	"github.com/pablasso/orca/internal/task"
	"github.com/pablasso/orca/internal/tui/styles"
)

const (
	filledChar = "■"
	emptyChar  = "□"
)

// Progress renders a progress bar like: ■■■■□□□□ 50%
type Progress struct {
	Current int
	Failed  int
	Total   int
	Width   int // character width of the bar portion
}

// NewProgress creates a new Progress instance.
func NewProgress(current, total, width int) Progress {
	return Progress{
		Current: current,
		Total:   total,
		Width:   width,
	}
}

// ForRecord counts finished subtasks of rec. Failed subtasks fill the bar in
// the error color.
func ForRecord(rec *task.Record, width int) Progress {
	counts := rec.Counts()
	return Progress{
		Current: counts[task.StatusCompleted] + counts[task.StatusFailed],
		Failed:  counts[task.StatusFailed],
		Total:   len(rec.Subtasks),
		Width:   width,
	}
}

// View returns the rendered progress bar string.
func (p Progress) View() string {
	if p.Total <= 0 || p.Width <= 0 {
		return ""
	}

	current := min(max(p.Current, 0), p.Total)
	failed := min(max(p.Failed, 0), current)

	percent := (current * 100) / p.Total
	filled := (current * p.Width) / p.Total
	failedCells := (failed * p.Width) / p.Total
	if failed > 0 && failedCells == 0 {
		failedCells = 1
	}
	failedCells = min(failedCells, filled)

	bar := strings.Repeat(filledChar, filled-failedCells)
	if failedCells > 0 {
		bar += styles.ErrorStyle.Render(strings.Repeat(filledChar, failedCells))
	}
	bar += strings.Repeat(emptyChar, p.Width-filled)

	if failed > 0 {
		return fmt.Sprintf("%s %d%% (%d failed)", bar, percent, failed)
	}
	return fmt.Sprintf("%s %d%%", bar, percent)
}
