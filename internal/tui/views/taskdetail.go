package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/pablasso/orca/internal/report"
	"github.com/pablasso/orca/internal/task"
	"github.com/pablasso/orca/internal/tui/components"
	"github.com/pablasso/orca/internal/tui/msgs"
	"github.com/pablasso/orca/internal/tui/styles"
)

const progressWidth = 30

// TaskDetailModel shows one record: its progress, every subtask and the
// output of the selected subtask.
type TaskDetailModel struct {
	rec    *task.Record
	cursor int
	output viewport.Model
	width  int
	height int
}

// NewTaskDetailModel creates a detail view for rec.
func NewTaskDetailModel(rec *task.Record, width, height int) TaskDetailModel {
	m := TaskDetailModel{rec: rec, output: viewport.New(0, 0)}
	m.SetSize(width, height)
	m.refreshOutput()
	return m
}

// TaskID returns the id of the shown record.
func (m TaskDetailModel) TaskID() string {
	return m.rec.TaskID
}

// SetRecord replaces the record after a reload.
func (m *TaskDetailModel) SetRecord(rec *task.Record) {
	m.rec = rec
	if m.cursor >= len(rec.Subtasks) {
		m.cursor = max(len(rec.Subtasks)-1, 0)
	}
	m.refreshOutput()
}

// SetSize updates the model dimensions.
func (m *TaskDetailModel) SetSize(width, height int) {
	m.width = width
	m.height = height

	// header (4) + subtasks + separator + status bar
	reserved := 6 + len(m.rec.Subtasks)
	m.output.Width = width
	m.output.Height = max(height-reserved, 3)
}

func (m *TaskDetailModel) refreshOutput() {
	if m.cursor >= len(m.rec.Subtasks) {
		m.output.SetContent("")
		return
	}

	st := m.rec.Subtasks[m.cursor]
	var b strings.Builder
	if st.Error != "" {
		b.WriteString(styles.ErrorStyle.Render("Error: "+st.Error) + "\n\n")
	}
	if st.Output != "" {
		b.WriteString(st.Output)
	} else if st.Error == "" {
		b.WriteString(styles.SubtleStyle.Render("No output yet."))
	}
	m.output.SetContent(b.String())
	m.output.GotoTop()
}

// Update implements tea.Model.
func (m TaskDetailModel) Update(msg tea.Msg) (TaskDetailModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Back):
			return m, func() tea.Msg { return msgs.BackMsg{} }
		case key.Matches(msg, keys.Up):
			if m.cursor > 0 {
				m.cursor--
				m.refreshOutput()
			}
			return m, nil
		case key.Matches(msg, keys.Down):
			if m.cursor < len(m.rec.Subtasks)-1 {
				m.cursor++
				m.refreshOutput()
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.output, cmd = m.output.Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m TaskDetailModel) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	rec := m.rec
	header := []string{
		styles.TitleStyle.Render(rec.TaskID),
		fmt.Sprintf("%s · %s mode · %s",
			styles.Status(rec.Status).Render(string(rec.Status)),
			rec.ExecutionMode,
			report.HumanDuration(rec.Duration()),
		),
		components.ForRecord(rec, progressWidth).View(),
	}
	if rec.Error != "" {
		header = append(header, styles.ErrorStyle.Render(rec.Error))
	}

	lines := make([]string, 0, len(rec.Subtasks))
	for i, st := range rec.Subtasks {
		indicator := "○"
		if i == m.cursor {
			indicator = "●"
		}
		line := fmt.Sprintf("%s %-10s %s", indicator, st.ID, styles.Status(st.Status).Render(string(st.Status)))
		if st.StartTime != nil && st.EndTime != nil {
			line += styles.SubtleStyle.Render("  " + report.HumanDuration(st.EndTime.Sub(*st.StartTime)))
		}
		if i == m.cursor {
			line = styles.SelectedStyle.Render(line)
		}
		lines = append(lines, line)
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		strings.Join(header, "\n"),
		strings.Join(lines, "\n"),
		styles.SubtleStyle.Render(strings.Repeat("─", m.width)),
		m.output.View(),
	)

	bar := components.NewStatusBar().Render(m.width, []key.Binding{keys.Up, keys.Down, keys.Back, keys.Quit})
	return lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.PlaceVertical(max(m.height-1, 0), lipgloss.Top, content),
		bar,
	)
}

// Cursor returns the selected subtask index.
func (m TaskDetailModel) Cursor() int {
	return m.cursor
}
