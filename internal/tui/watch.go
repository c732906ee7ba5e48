package tui

import (
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fsnotify/fsnotify"
	"github.com/pablasso/orca/internal/task"
	"github.com/pablasso/orca/internal/tui/msgs"
)

// settle coalesces the burst of writes a running task produces.
const settle = 150 * time.Millisecond

func loadRecords(store *task.Store) tea.Cmd {
	return func() tea.Msg {
		records, err := store.List()
		return msgs.RecordsLoadedMsg{Records: records, Err: err}
	}
}

// isRecordEvent reports whether ev touched a record file. Temp files and
// progress logs are ignored.
func isRecordEvent(ev fsnotify.Event) bool {
	if filepath.Ext(ev.Name) != ".json" || strings.Contains(filepath.Base(ev.Name), ".tmp.") {
		return false
	}
	return ev.Has(fsnotify.Create) || ev.Has(fsnotify.Write) || ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename)
}

// waitForChange blocks until a record file changes, then drains events for
// the settle period.
func waitForChange(w *fsnotify.Watcher) tea.Cmd {
	return func() tea.Msg {
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return nil
				}
				if !isRecordEvent(ev) {
					continue
				}
				drain(w, settle)
				return msgs.StoreChangedMsg{}
			case err, ok := <-w.Errors:
				if !ok {
					return nil
				}
				return msgs.WatchErrorMsg{Err: err}
			}
		}
	}
}

func drain(w *fsnotify.Watcher, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	for {
		select {
		case _, ok := <-w.Events:
			if !ok {
				return
			}
		case <-timer.C:
			return
		}
	}
}
