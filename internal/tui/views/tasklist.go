package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/pablasso/orca/internal/task"
	"github.com/pablasso/orca/internal/tui/components"
	"github.com/pablasso/orca/internal/tui/msgs"
	"github.com/pablasso/orca/internal/tui/styles"
)

// TaskListModel lists execution records, most recent first.
type TaskListModel struct {
	records []*task.Record
	cursor  int
	spinner spinner.Model
	width   int
	height  int
}

// NewTaskListModel creates an empty list.
func NewTaskListModel() TaskListModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.RunningStyle
	return TaskListModel{spinner: s}
}

// Init implements tea.Model.
func (m TaskListModel) Init() tea.Cmd {
	return m.spinner.Tick
}

// SetRecords replaces the records, keeping the cursor on the same task when
// it is still present.
func (m *TaskListModel) SetRecords(records []*task.Record) {
	selected := ""
	if m.cursor < len(m.records) {
		selected = m.records[m.cursor].TaskID
	}

	m.records = records
	m.cursor = 0
	for i, rec := range records {
		if rec.TaskID == selected {
			m.cursor = i
			break
		}
	}
}

// Update implements tea.Model.
func (m TaskListModel) Update(msg tea.Msg) (TaskListModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, keys.Down):
			if m.cursor < len(m.records)-1 {
				m.cursor++
			}
		case key.Matches(msg, keys.Open):
			if m.cursor < len(m.records) {
				id := m.records[m.cursor].TaskID
				return m, func() tea.Msg { return msgs.OpenTaskMsg{TaskID: id} }
			}
		}
	}
	return m, nil
}

// View implements tea.Model.
func (m TaskListModel) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	var body string
	if len(m.records) == 0 {
		body = lipgloss.JoinVertical(lipgloss.Center,
			"No tasks found.",
			"",
			styles.SubtleStyle.Render("Run 'orca task execute <task.json>' and records show up here."),
		)
	} else {
		lines := make([]string, 0, len(m.records))
		for i, rec := range m.records {
			lines = append(lines, m.formatLine(i, rec))
		}
		body = strings.Join(lines, "\n")
	}

	title := lipgloss.PlaceHorizontal(m.width, lipgloss.Center, styles.TitleStyle.Render("Tasks"))
	content := lipgloss.JoinVertical(lipgloss.Left, title, lipgloss.PlaceHorizontal(m.width, lipgloss.Center, body))

	bar := components.NewStatusBar().Render(m.width, []key.Binding{keys.Up, keys.Down, keys.Open, keys.Reload, keys.Quit})
	return lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.PlaceVertical(max(m.height-1, 0), lipgloss.Top, content),
		bar,
	)
}

// formatLine formats a single record line for display.
func (m TaskListModel) formatLine(index int, rec *task.Record) string {
	indicator := "○"
	if index == m.cursor {
		indicator = "●"
	}

	status := string(rec.Status)
	if rec.Status == task.StatusRunning {
		status = m.spinner.View() + status
	}

	counts := rec.Counts()
	line := fmt.Sprintf("%s %-36s %-12s %3d/%-3d %s",
		indicator,
		rec.TaskID,
		status,
		counts[task.StatusCompleted],
		len(rec.Subtasks),
		humanize.Time(rec.StartTime),
	)

	switch {
	case index == m.cursor:
		return styles.SelectedStyle.Render(line)
	case rec.Status == task.StatusFailed:
		return styles.ErrorStyle.Render(line)
	case rec.Status == task.StatusCompleted:
		return styles.SubtleStyle.Render(line)
	}
	return line
}

// SetSize updates the model dimensions.
func (m *TaskListModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// Records returns the listed records.
func (m TaskListModel) Records() []*task.Record {
	return m.records
}

// Cursor returns the current cursor position.
func (m TaskListModel) Cursor() int {
	return m.cursor
}
