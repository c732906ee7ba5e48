// Package executor runs a task's subtasks in dependency order and persists
// the execution record after every state change.
package executor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/pablasso/orca/internal/graph"
	"github.com/pablasso/orca/internal/logging"
	"github.com/pablasso/orca/internal/task"
	"github.com/sourcegraph/conc/pool"
)

// Executor orchestrates the execution of tasks. One Executor may run several
// tasks concurrently; each task id owns its own record.
type Executor struct {
	store       *task.Store
	runner      Runner
	events      Events
	logger      *logging.Logger
	maxParallel int

	mu     sync.Mutex
	active map[string]*run
}

// New creates an Executor persisting records to store. It runs subtasks with
// a ShellRunner unless WithRunner says otherwise.
func New(store *task.Store) *Executor {
	return &Executor{
		store:  store,
		runner: NewShellRunner(),
		events: NopEvents{},
		logger: logging.NopLogger(),
		active: make(map[string]*run),
	}
}

// WithRunner sets the subtask runner.
func (e *Executor) WithRunner(r Runner) *Executor {
	e.runner = r
	return e
}

// WithEvents sets the event receiver.
func (e *Executor) WithEvents(ev Events) *Executor {
	if ev == nil {
		ev = NopEvents{}
	}
	e.events = ev
	return e
}

// WithLogger sets the logger.
func (e *Executor) WithLogger(l *logging.Logger) *Executor {
	if l == nil {
		l = logging.NopLogger()
	}
	e.logger = l
	return e
}

// WithMaxParallel bounds how many members of a parallel stage run at once.
// Zero or less means unbounded.
func (e *Executor) WithMaxParallel(n int) *Executor {
	e.maxParallel = n
	return e
}

// run is the mutable state of one task execution. Every mutation is followed
// by a save under the same lock, so the file on disk never goes backwards.
type run struct {
	mu    sync.Mutex
	rec   *task.Record
	store *task.Store
}

func (r *run) update(fn func(rec *task.Record)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	fn(r.rec)
	return r.store.Save(r.rec)
}

func (r *run) snapshot() *task.Record {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rec.Clone()
}

// Execute runs t to completion and returns the final record. The returned
// error is non-nil exactly when the task ended FAILED, or when the task could
// not be accepted at all, in which case the record is nil.
func (e *Executor) Execute(ctx context.Context, t task.Task) (*task.Record, error) {
	r, t, err := e.accept(t)
	if err != nil {
		return nil, err
	}
	return e.complete(ctx, r, t)
}

// Start accepts t and runs it in the background. The initial record is
// persisted and visible through Status before Start returns; done is closed
// when the execution ends.
func (e *Executor) Start(ctx context.Context, t task.Task) (taskID string, done <-chan struct{}, err error) {
	r, t, err := e.accept(t)
	if err != nil {
		return "", nil, err
	}

	ch := make(chan struct{})
	go func() {
		defer close(ch)
		e.complete(ctx, r, t)
	}()
	return t.ID, ch, nil
}

// accept validates and normalizes t, persists its initial record and marks
// it active.
func (e *Executor) accept(t task.Task) (*run, task.Task, error) {
	if err := t.Validate(); err != nil {
		return nil, t, err
	}
	t = t.Normalized()
	if t.ID == "" {
		t.ID = fmt.Sprintf("task-%d", time.Now().Unix())
	}

	r := &run{rec: task.NewRecord(t, time.Now()), store: e.store}
	if err := r.update(func(*task.Record) {}); err != nil {
		return nil, t, fmt.Errorf("failed to persist task record: %w", err)
	}
	e.setActive(t.ID, r)
	return r, t, nil
}

func (e *Executor) complete(ctx context.Context, r *run, t task.Task) (*task.Record, error) {
	log := e.logger.WithTask(t.ID)
	log.Info("task started", "subtasks", len(t.Subtasks), "mode", t.ExecutionMode)
	e.events.OnTaskStart(t.ID, len(t.Subtasks))

	runErr := e.dispatch(ctx, r, t, log)

	saveErr := r.update(func(rec *task.Record) {
		end := time.Now()
		rec.EndTime = &end
		if runErr != nil {
			rec.Status = task.StatusFailed
			rec.Error = runErr.Error()
		} else {
			rec.Status = task.StatusCompleted
		}
	})
	final := r.snapshot()

	if saveErr != nil {
		// Keep the record reachable through Status.
		log.Error("failed to persist final record", "error", saveErr)
	} else {
		e.removeActive(t.ID, r)
	}

	counts := final.Counts()
	if runErr != nil {
		log.Error("task failed", "error", runErr, "duration", final.Duration().String())
	} else {
		log.Info("task completed",
			"completed", counts[task.StatusCompleted],
			"failed", counts[task.StatusFailed],
			"duration", final.Duration().String())
	}
	e.events.OnTaskFinish(final)

	return final, runErr
}

// Status returns the record for taskID, preferring the in-memory record of a
// running task over the persisted one. Unknown ids yield task.ErrNotFound.
func (e *Executor) Status(taskID string) (*task.Record, error) {
	e.mu.Lock()
	r, ok := e.active[taskID]
	e.mu.Unlock()
	if ok {
		return r.snapshot(), nil
	}
	return e.store.Load(taskID)
}

// Active returns the ids of tasks currently executing.
func (e *Executor) Active() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	ids := make([]string, 0, len(e.active))
	for id := range e.active {
		ids = append(ids, id)
	}
	return ids
}

func (e *Executor) setActive(id string, r *run) {
	e.mu.Lock()
	e.active[id] = r
	e.mu.Unlock()
}

// removeActive only drops the entry if it still belongs to r; a later
// execution of the same id may have replaced it.
func (e *Executor) removeActive(id string, r *run) {
	e.mu.Lock()
	if e.active[id] == r {
		delete(e.active, id)
	}
	e.mu.Unlock()
}

// dispatch picks the execution strategy. A non-nil return fails the task.
func (e *Executor) dispatch(ctx context.Context, r *run, t task.Task, log *logging.Logger) error {
	if dups := t.DuplicateSubtaskIDs(); len(dups) > 0 {
		return &DuplicateIDError{IDs: dups}
	}

	byID := make(map[string]task.Subtask, len(t.Subtasks))
	for _, st := range t.Subtasks {
		byID[st.ID] = st
	}

	stages, err := planStages(t)
	if err != nil {
		log.Warn("dependency planning failed, falling back to task mode",
			"mode", t.ExecutionMode, "error", err)
		e.events.OnFallback(t.ID, t.ExecutionMode, err)
		e.runFallback(ctx, r, t, log)
		return nil
	}

	for i, stage := range stages {
		if err := ctx.Err(); err != nil {
			return err
		}

		log.Debug("stage started", "stage", i+1, "stages", len(stages), "subtasks", []string(stage))
		e.events.OnStageStart(t.ID, i+1, len(stages), stage)

		if len(stage) == 1 {
			if err := e.runSubtask(ctx, r, byID[stage[0]], log); err != nil {
				return &StageError{Stage: i + 1, SubtaskID: stage[0], Err: err}
			}
			continue
		}

		members := make([]task.Subtask, len(stage))
		for j, id := range stage {
			members[j] = byID[id]
		}
		e.runGroup(ctx, r, members, log)
	}
	return nil
}

func planStages(t task.Task) ([]graph.Stage, error) {
	g, err := graph.Build(t.Descriptors())
	if err != nil {
		return nil, err
	}
	return graph.Plan(g)
}

// runFallback ignores dependencies. Sequential mode continues past failures.
func (e *Executor) runFallback(ctx context.Context, r *run, t task.Task, log *logging.Logger) {
	if t.ExecutionMode == graph.ModeParallel {
		e.runGroup(ctx, r, t.Subtasks, log)
		return
	}
	for _, st := range t.Subtasks {
		e.runSubtask(ctx, r, st, log)
	}
}

// runGroup runs members concurrently and waits for all of them. Failures are
// recorded per subtask and never cancel siblings.
func (e *Executor) runGroup(ctx context.Context, r *run, members []task.Subtask, log *logging.Logger) {
	p := pool.New()
	if e.maxParallel > 0 {
		p = p.WithMaxGoroutines(e.maxParallel)
	}
	for _, st := range members {
		p.Go(func() {
			e.runSubtask(ctx, r, st, log)
		})
	}
	p.Wait()
}

// runSubtask drives one subtask through RUNNING to COMPLETED or FAILED and
// returns the runner's error.
func (e *Executor) runSubtask(ctx context.Context, r *run, st task.Subtask, log *logging.Logger) error {
	log = log.WithSubtask(st.ID)
	taskID := r.rec.TaskID

	start := time.Now()
	if err := r.update(func(rec *task.Record) {
		s := rec.Subtask(st.ID)
		s.Status = task.StatusRunning
		s.StartTime = &start
	}); err != nil {
		log.Warn("failed to persist record", "error", err)
	}
	log.Info("subtask started")
	e.events.OnSubtaskStart(taskID, st.ID)

	res, err := e.invoke(ctx, st)

	end := time.Now()
	if saveErr := r.update(func(rec *task.Record) {
		s := rec.Subtask(st.ID)
		s.EndTime = &end
		s.Output = res.Output
		if exitCode, ok := exitCodeOf(res, err); ok {
			s.ExitCode = &exitCode
		}
		if err != nil {
			s.Status = task.StatusFailed
			s.Error = err.Error()
		} else {
			s.Status = task.StatusCompleted
		}
	}); saveErr != nil {
		log.Warn("failed to persist record", "error", saveErr)
	}

	if err != nil {
		log.Warn("subtask failed", "error", err, "duration", end.Sub(start).String())
		e.events.OnSubtaskFailed(taskID, st.ID, err)
		return err
	}
	log.Info("subtask completed", "exit_code", res.ExitCode, "duration", end.Sub(start).String())
	e.events.OnSubtaskComplete(taskID, st.ID, res.ExitCode)
	return nil
}

// invoke calls the runner, turning a panic into an error so one bad subtask
// cannot take down its stage.
func (e *Executor) invoke(ctx context.Context, st task.Subtask) (res Result, err error) {
	defer func() {
		if v := recover(); v != nil {
			err = fmt.Errorf("subtask panicked: %v", v)
		}
	}()
	return e.runner.Run(ctx, st)
}

// exitCodeOf reports the exit code when a process actually ran.
func exitCodeOf(res Result, err error) (int, bool) {
	if err == nil {
		return res.ExitCode, true
	}
	var execErr *ExecutionError
	if errors.As(err, &execErr) {
		return execErr.ExitCode, true
	}
	return 0, false
}
