// Package scheduler implements the SyncScheduler (spec.md §4.5): one
// long-running task per configured table, running an initial reconciliation
// immediately then polling on an interval, with cooperative shutdown.
package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/meilisync/connector/internal/config"
	"github.com/meilisync/connector/internal/reconcile"
)

// State names a per-table task's position in its lifecycle, per spec.md
// §4.5: Starting → InitialSync → Idle ⇄ Syncing → Stopping → Stopped.
type State int

const (
	Starting State = iota
	InitialSync
	Idle
	Syncing
	Stopping
	Stopped
)

func (s State) String() string {
	switch s {
	case Starting:
		return "Starting"
	case InitialSync:
		return "InitialSync"
	case Idle:
		return "Idle"
	case Syncing:
		return "Syncing"
	case Stopping:
		return "Stopping"
	case Stopped:
		return "Stopped"
	default:
		return "Unknown"
	}
}

// Task owns one table's periodic reconciliation loop.
type Task struct {
	table      config.TableConfig
	db         config.DatabaseConfig
	reconciler *reconcile.Reconciler
	logger     *slog.Logger

	mu    sync.RWMutex
	state State

	done chan struct{}
}

// NewTask builds a Task for table, ready to Run.
func NewTask(table config.TableConfig, db config.DatabaseConfig, r *reconcile.Reconciler, logger *slog.Logger) *Task {
	if logger == nil {
		logger = slog.Default()
	}
	return &Task{
		table:      table,
		db:         db,
		reconciler: r,
		logger:     logger.With("table", table.Name),
		state:      Starting,
		done:       make(chan struct{}),
	}
}

// State reports the task's current lifecycle state.
func (t *Task) State() State {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.state
}

func (t *Task) setState(s State) {
	t.mu.Lock()
	t.state = s
	t.mu.Unlock()
}

// Done returns a channel closed once the task has fully stopped, letting
// the Orchestrator detect "all tasks done" independently of the shutdown
// signal it also holds (spec.md §4.5).
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Run performs the initial reconciliation immediately, then loops: wait for
// either the poll interval or ctx cancellation, reconcile, repeat. A cycle
// already in progress is never interrupted by shutdown — only the wait
// between cycles observes it (spec.md §4.5, §5).
func (t *Task) Run(ctx context.Context) {
	defer close(t.done)
	defer t.setState(Stopped)

	interval := time.Duration(t.db.PollIntervalSeconds) * time.Second
	if interval <= 0 {
		interval = time.Duration(config.DefaultPollIntervalSeconds) * time.Second
	}

	t.setState(InitialSync)
	t.runCycle(ctx)

	for {
		t.setState(Idle)
		timer := time.NewTimer(interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			t.setState(Stopping)
			return
		case <-timer.C:
			t.setState(Syncing)
			t.runCycle(ctx)
		}
	}
}

func (t *Task) runCycle(ctx context.Context) {
	stats, err := t.reconciler.ReconcileOnce(context.WithoutCancel(ctx), t.table, t.db)
	if err != nil {
		t.logger.Error("reconciliation cycle failed, will retry next tick", "error", err)
		return
	}
	t.logger.Debug("reconciliation cycle succeeded", "deleted", stats.Deleted, "upserted", stats.Upserted)
}

// Scheduler owns the set of per-table Tasks and their goroutines.
type Scheduler struct {
	tasks []*Task
}

// New builds a Scheduler with one Task per table.
func New(tables []config.TableConfig, db config.DatabaseConfig, r *reconcile.Reconciler, logger *slog.Logger) *Scheduler {
	s := &Scheduler{}
	for _, table := range tables {
		s.tasks = append(s.tasks, NewTask(table, db, r, logger))
	}
	return s
}

// Start launches every task's goroutine, observing ctx for shutdown.
func (s *Scheduler) Start(ctx context.Context) {
	for _, task := range s.tasks {
		go task.Run(ctx)
	}
}

// Tasks exposes the scheduler's task handles, for the Orchestrator to join.
func (s *Scheduler) Tasks() []*Task {
	return s.tasks
}

// Wait blocks until every task has signaled completion.
func (s *Scheduler) Wait() {
	for _, task := range s.tasks {
		<-task.Done()
	}
}
