package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/meilisync/connector/internal/config"
	"github.com/meilisync/connector/internal/dbadapter"
	"github.com/meilisync/connector/internal/document"
	"github.com/meilisync/connector/internal/reconcile"
	"github.com/meilisync/connector/internal/searchclient"
)

type countingAdapter struct {
	calls atomic.Int32
}

func (a *countingAdapter) ListTables(ctx context.Context) ([]string, error) { return nil, nil }
func (a *countingAdapter) ColumnsOf(ctx context.Context, table string) ([]dbadapter.Column, error) {
	return nil, nil
}
func (a *countingAdapter) PrimaryKeyOf(ctx context.Context, table string) (string, error) {
	return "id", nil
}
func (a *countingAdapter) FetchAll(ctx context.Context, table string) ([]dbadapter.Row, error) {
	a.calls.Add(1)
	return nil, nil
}
func (a *countingAdapter) FetchRecord(ctx context.Context, table, pk string) (dbadapter.Row, bool, error) {
	return dbadapter.Row{}, false, nil
}
func (a *countingAdapter) TableSchema(ctx context.Context, table string) ([]dbadapter.Column, error) {
	return nil, nil
}
func (a *countingAdapter) Close() error { return nil }

type noopSearch struct{}

func (noopSearch) EnsureIndex(ctx context.Context, indexName, primaryKey string, settings searchclient.IndexSettings) error {
	return nil
}
func (noopSearch) ListDocuments(ctx context.Context, indexName string) ([]document.Document, error) {
	return nil, nil
}
func (noopSearch) UpsertDocuments(ctx context.Context, indexName string, docs []document.Document, batchSize int) error {
	return nil
}
func (noopSearch) DeleteDocuments(ctx context.Context, indexName string, ids []string, batchSize int) error {
	return nil
}

func TestTask_RunsInitialSyncImmediatelyThenStopsOnCancel(t *testing.T) {
	adapter := &countingAdapter{}
	r := &reconcile.Reconciler{Adapter: adapter, Search: noopSearch{}}
	task := NewTask(
		config.TableConfig{Name: "products", PrimaryKey: "id"},
		config.DatabaseConfig{PollIntervalSeconds: 3600},
		r, nil,
	)

	ctx, cancel := context.WithCancel(context.Background())
	go task.Run(ctx)

	require.Eventually(t, func() bool { return adapter.calls.Load() >= 1 }, time.Second, time.Millisecond)

	cancel()
	select {
	case <-task.Done():
	case <-time.After(time.Second):
		t.Fatal("task did not stop after cancellation")
	}
	require.Equal(t, Stopped, task.State())
	// The long poll interval means exactly one cycle (the initial sync) ran.
	require.Equal(t, int32(1), adapter.calls.Load())
}

func TestScheduler_WaitReturnsAfterAllTasksStop(t *testing.T) {
	tables := []config.TableConfig{
		{Name: "a", PrimaryKey: "id"},
		{Name: "b", PrimaryKey: "id"},
	}
	r := &reconcile.Reconciler{Adapter: &countingAdapter{}, Search: noopSearch{}}
	s := New(tables, config.DatabaseConfig{PollIntervalSeconds: 3600}, r, nil)

	ctx, cancel := context.WithCancel(context.Background())
	s.Start(ctx)
	cancel()

	done := make(chan struct{})
	go func() {
		s.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler.Wait did not return")
	}
}
