package orchestrator

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/meilisync/connector/internal/config"
	"github.com/meilisync/connector/internal/dbadapter"
	"github.com/meilisync/connector/internal/document"
	"github.com/meilisync/connector/internal/searchclient"
)

type stubAdapter struct {
	tables []string
	closed bool
}

func (a *stubAdapter) ListTables(ctx context.Context) ([]string, error) { return a.tables, nil }
func (a *stubAdapter) ColumnsOf(ctx context.Context, table string) ([]dbadapter.Column, error) {
	return nil, nil
}
func (a *stubAdapter) PrimaryKeyOf(ctx context.Context, table string) (string, error) {
	return "id", nil
}
func (a *stubAdapter) FetchAll(ctx context.Context, table string) ([]dbadapter.Row, error) {
	return nil, nil
}
func (a *stubAdapter) FetchRecord(ctx context.Context, table, pk string) (dbadapter.Row, bool, error) {
	return dbadapter.Row{}, false, nil
}
func (a *stubAdapter) TableSchema(ctx context.Context, table string) ([]dbadapter.Column, error) {
	return nil, nil
}
func (a *stubAdapter) Close() error { a.closed = true; return nil }

type stubSearch struct {
	ensured []string
}

func (s *stubSearch) EnsureIndex(ctx context.Context, indexName, primaryKey string, settings searchclient.IndexSettings) error {
	s.ensured = append(s.ensured, indexName)
	return nil
}
func (s *stubSearch) ListDocuments(ctx context.Context, indexName string) ([]document.Document, error) {
	return nil, nil
}
func (s *stubSearch) UpsertDocuments(ctx context.Context, indexName string, docs []document.Document, batchSize int) error {
	return nil
}
func (s *stubSearch) DeleteDocuments(ctx context.Context, indexName string, ids []string, batchSize int) error {
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		Meilisearch: config.MeilisearchConfig{Host: "http://localhost:7700"},
		Database: config.DatabaseConfig{
			Type:                "sqlite",
			ConnectionString:    "sqlite::memory:",
			PollIntervalSeconds: 3600,
			Tables:              []config.TableConfig{{Name: "products", PrimaryKey: "id"}},
		},
	}
}

func TestStart_EnsuresIndexForEachConfiguredTable(t *testing.T) {
	adapter := &stubAdapter{tables: []string{"products"}}
	search := &stubSearch{}
	o := &Orchestrator{cfg: testConfig(), adapter: adapter, search: search}

	err := o.start(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"products"}, search.ensured)

	o.stop()
	require.True(t, adapter.closed)
}

func TestStart_FailsWhenConfiguredTableMissing(t *testing.T) {
	adapter := &stubAdapter{tables: []string{"other_table"}}
	search := &stubSearch{}
	o := &Orchestrator{cfg: testConfig(), adapter: adapter, search: search}

	err := o.start(context.Background())
	require.Error(t, err)
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	adapter := &stubAdapter{tables: []string{"products"}}
	search := &stubSearch{}
	o := &Orchestrator{cfg: testConfig(), adapter: adapter, search: search}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- o.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}
}
