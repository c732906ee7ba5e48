// Package tui implements the orca dashboard: a live list of execution
// records with a per-task detail view.
package tui

import (
	"fmt"
	"os"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/fsnotify/fsnotify"
	"github.com/pablasso/orca/internal/logging"
	"github.com/pablasso/orca/internal/task"
	"github.com/pablasso/orca/internal/tui/msgs"
	"github.com/pablasso/orca/internal/tui/styles"
	"github.com/pablasso/orca/internal/tui/views"
)

// Minimum terminal dimensions for the dashboard.
const (
	MinTerminalWidth  = 60
	MinTerminalHeight = 15
)

// View represents the different screens in the TUI.
type View int

const (
	ViewList View = iota
	ViewDetail
)

var (
	quitKey   = key.NewBinding(key.WithKeys("q", "ctrl+c"))
	reloadKey = key.NewBinding(key.WithKeys("r"))
)

// Model is the main Bubble Tea model that switches between the list and
// detail views.
type Model struct {
	currentView View
	width       int
	height      int

	list   views.TaskListModel
	detail views.TaskDetailModel

	store   *task.Store
	watcher *fsnotify.Watcher
	logger  *logging.Logger
	err     error
}

// Run starts the dashboard over the records in storageDir and blocks until
// the user quits.
func Run(storageDir string, logger *logging.Logger) error {
	if info, err := os.Stat(storageDir); err != nil || !info.IsDir() {
		return fmt.Errorf("storage directory %s does not exist. Run 'orca init' first", storageDir)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(storageDir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", storageDir, err)
	}

	m := initialModel(task.NewStore(storageDir), logger)
	m.watcher = watcher

	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err = p.Run()
	return err
}

func initialModel(store *task.Store, logger *logging.Logger) Model {
	if logger == nil {
		logger = logging.NopLogger()
	}
	return Model{
		currentView: ViewList,
		list:        views.NewTaskListModel(),
		store:       store,
		logger:      logger,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{loadRecords(m.store), m.list.Init()}
	if m.watcher != nil {
		cmds = append(cmds, waitForChange(m.watcher))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetSize(msg.Width, msg.Height)
		if m.currentView == ViewDetail {
			m.detail.SetSize(msg.Width, msg.Height)
		}
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, quitKey) {
			return m, tea.Quit
		}
		if key.Matches(msg, reloadKey) {
			return m, loadRecords(m.store)
		}

	case msgs.RecordsLoadedMsg:
		m.err = msg.Err
		if msg.Err != nil {
			m.logger.Warn("failed to load records", "error", msg.Err)
			return m, nil
		}
		m.list.SetRecords(msg.Records)
		if m.currentView == ViewDetail {
			if rec := findRecord(msg.Records, m.detail.TaskID()); rec != nil {
				m.detail.SetRecord(rec)
			}
		}
		return m, nil

	case msgs.StoreChangedMsg:
		return m, tea.Batch(loadRecords(m.store), waitForChange(m.watcher))

	case msgs.WatchErrorMsg:
		m.logger.Warn("record watcher error", "error", msg.Err)
		return m, waitForChange(m.watcher)

	case msgs.OpenTaskMsg:
		if rec := findRecord(m.list.Records(), msg.TaskID); rec != nil {
			m.detail = views.NewTaskDetailModel(rec, m.width, m.height)
			m.currentView = ViewDetail
		}
		return m, nil

	case msgs.BackMsg:
		m.currentView = ViewList
		return m, nil
	}

	var cmd tea.Cmd
	switch m.currentView {
	case ViewDetail:
		// The list keeps the spinner ticking while the detail view is open.
		if _, ok := msg.(tea.KeyMsg); !ok {
			m.list, cmd = m.list.Update(msg)
			var detailCmd tea.Cmd
			m.detail, detailCmd = m.detail.Update(msg)
			return m, tea.Batch(cmd, detailCmd)
		}
		m.detail, cmd = m.detail.Update(msg)
	default:
		m.list, cmd = m.list.Update(msg)
	}
	return m, cmd
}

// View implements tea.Model.
func (m Model) View() string {
	if m.width > 0 && m.height > 0 && (m.width < MinTerminalWidth || m.height < MinTerminalHeight) {
		return m.renderTerminalTooSmall()
	}

	if m.err != nil {
		return styles.ErrorStyle.Render("Error: " + m.err.Error())
	}

	if m.currentView == ViewDetail {
		return m.detail.View()
	}
	return m.list.View()
}

func (m Model) renderTerminalTooSmall() string {
	msg := lipgloss.JoinVertical(lipgloss.Center,
		styles.ErrorStyle.Render("Terminal too small"),
		"",
		fmt.Sprintf("Minimum: %dx%d", MinTerminalWidth, MinTerminalHeight),
		fmt.Sprintf("Current: %dx%d", m.width, m.height),
	)
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, msg)
}

func findRecord(records []*task.Record, id string) *task.Record {
	for _, rec := range records {
		if rec.TaskID == id {
			return rec
		}
	}
	return nil
}
