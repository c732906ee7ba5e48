// Package msgs defines the messages passed between dashboard views.
package msgs

import "github.com/pablasso/orca/internal/task"

// RecordsLoadedMsg carries a fresh read of the record store.
type RecordsLoadedMsg struct {
	Records []*task.Record
	Err     error
}

// StoreChangedMsg is sent when a record file was written or removed.
type StoreChangedMsg struct{}

// WatchErrorMsg reports a watcher failure. Watching continues.
type WatchErrorMsg struct {
	Err error
}

// OpenTaskMsg asks for the detail view of a task.
type OpenTaskMsg struct {
	TaskID string
}

// BackMsg returns from the detail view to the list.
type BackMsg struct{}
