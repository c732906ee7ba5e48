// Package display renders a single-line terminal status for a running task.
package display

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/pablasso/orca/internal/graph"
	"github.com/pablasso/orca/internal/task"
)

// State holds the current display state.
type State struct {
	TaskID      string
	Stage       int
	TotalStages int
	Total       int
	Running     int
	Completed   int
	Failed      int
	Status      task.Status
	StartTime   time.Time
}

// Display manages the terminal status line. It implements executor.Events.
type Display struct {
	mu       sync.Mutex
	writer   io.Writer
	state    State
	ticker   *time.Ticker
	done     chan struct{}
	wg       sync.WaitGroup // Ensures goroutine exits before Stop() returns
	active   bool
	lastLine string
}

// New creates a new Display writing to the given writer.
func New(w io.Writer) *Display {
	return &Display{
		writer: w,
		done:   make(chan struct{}),
		state:  State{Status: task.StatusPending},
	}
}

// Start begins the display update loop.
func (d *Display) Start() {
	d.mu.Lock()
	if d.active {
		d.mu.Unlock()
		return
	}
	d.active = true
	d.done = make(chan struct{})
	d.state.StartTime = time.Now()
	d.ticker = time.NewTicker(time.Second)
	d.wg.Add(1)
	d.mu.Unlock()

	go d.updateLoop()
}

// Stop halts the display update loop and clears the status line.
// Blocks until the update goroutine has exited to prevent race conditions.
func (d *Display) Stop() {
	d.mu.Lock()
	if !d.active {
		d.mu.Unlock()
		return
	}
	d.active = false
	d.mu.Unlock()

	d.ticker.Stop()
	close(d.done)
	d.wg.Wait()
	d.clearLine()
}

// Snapshot returns a copy of the current state.
func (d *Display) Snapshot() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

func (d *Display) OnTaskStart(taskID string, total int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.state.TaskID = taskID
	d.state.Total = total
	d.state.Status = task.StatusRunning
}

func (d *Display) OnStageStart(_ string, stage, totalStages int, _ []string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.state.Stage = stage
	d.state.TotalStages = totalStages
}

func (d *Display) OnSubtaskStart(string, string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.state.Running++
}

func (d *Display) OnSubtaskComplete(string, string, int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.state.Running = max(d.state.Running-1, 0)
	d.state.Completed++
}

func (d *Display) OnSubtaskFailed(string, string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.state.Running = max(d.state.Running-1, 0)
	d.state.Failed++
}

// OnFallback prints the planning failure above the status line.
func (d *Display) OnFallback(_ string, mode graph.Mode, reason error) {
	d.PrintAbove("Dependency planning failed (%v); running in %s mode", reason, mode)
}

func (d *Display) OnTaskFinish(rec *task.Record) {
	counts := rec.Counts()
	d.mu.Lock()
	defer d.mu.Unlock()
	d.state.Status = rec.Status
	d.state.Running = 0
	d.state.Completed = counts[task.StatusCompleted]
	d.state.Failed = counts[task.StatusFailed]
}

// updateLoop periodically renders the status line.
func (d *Display) updateLoop() {
	defer d.wg.Done()
	d.render()
	for {
		select {
		case <-d.ticker.C:
			d.render()
		case <-d.done:
			return
		}
	}
}

// render draws the current status line.
func (d *Display) render() {
	d.mu.Lock()
	state := d.state
	lastLine := d.lastLine
	d.mu.Unlock()

	line := formatLine(state, time.Since(state.StartTime))

	// Only update if changed (reduces flicker)
	if line == lastLine {
		return
	}

	d.mu.Lock()
	d.lastLine = line
	d.mu.Unlock()

	fmt.Fprintf(d.writer, "\r\033[K%s", line)
}

// formatLine creates the status line string.
func formatLine(state State, elapsed time.Duration) string {
	if state.Total == 0 {
		return ""
	}

	stage := "Stage -"
	if state.TotalStages > 0 {
		stage = fmt.Sprintf("Stage %d/%d", state.Stage, state.TotalStages)
	}

	return fmt.Sprintf("%s │ %d running │ %d/%d done │ %d failed │ ⏱ %s │ %s",
		stage,
		state.Running,
		state.Completed,
		state.Total,
		state.Failed,
		formatDuration(elapsed),
		state.Status)
}

// clearLine clears the status line.
func (d *Display) clearLine() {
	fmt.Fprintf(d.writer, "\r\033[K")
}

// PrintAbove prints a message above the status line.
func (d *Display) PrintAbove(format string, args ...any) {
	d.clearLine()
	fmt.Fprintf(d.writer, format+"\n", args...)

	d.mu.Lock()
	d.lastLine = ""
	active := d.active
	d.mu.Unlock()
	if active {
		d.render()
	}
}

func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}
