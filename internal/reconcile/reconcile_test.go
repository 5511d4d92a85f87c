package reconcile

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/meilisync/connector/internal/config"
	"github.com/meilisync/connector/internal/dbadapter"
	"github.com/meilisync/connector/internal/document"
	"github.com/meilisync/connector/internal/searchclient"
)

type fakeAdapter struct {
	rows []dbadapter.Row
}

func (f *fakeAdapter) ListTables(ctx context.Context) ([]string, error) { return nil, nil }
func (f *fakeAdapter) ColumnsOf(ctx context.Context, table string) ([]dbadapter.Column, error) {
	return nil, nil
}
func (f *fakeAdapter) PrimaryKeyOf(ctx context.Context, table string) (string, error) {
	return "id", nil
}
func (f *fakeAdapter) FetchAll(ctx context.Context, table string) ([]dbadapter.Row, error) {
	return f.rows, nil
}
func (f *fakeAdapter) FetchRecord(ctx context.Context, table, pk string) (dbadapter.Row, bool, error) {
	return dbadapter.Row{}, false, nil
}
func (f *fakeAdapter) TableSchema(ctx context.Context, table string) ([]dbadapter.Column, error) {
	return nil, nil
}
func (f *fakeAdapter) Close() error { return nil }

type fakeSearch struct {
	documents []document.Document

	mu       sync.Mutex
	deleted  []string
	upserted []document.Document
}

func newFakeSearchClient(documents []document.Document) *fakeSearch {
	return &fakeSearch{documents: documents}
}

func (f *fakeSearch) EnsureIndex(ctx context.Context, indexName, primaryKey string, settings searchclient.IndexSettings) error {
	return nil
}

func (f *fakeSearch) ListDocuments(ctx context.Context, indexName string) ([]document.Document, error) {
	return f.documents, nil
}

func (f *fakeSearch) UpsertDocuments(ctx context.Context, indexName string, docs []document.Document, batchSize int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upserted = append(f.upserted, docs...)
	return nil
}

func (f *fakeSearch) DeleteDocuments(ctx context.Context, indexName string, ids []string, batchSize int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, ids...)
	return nil
}

var _ searchclient.Client = (*fakeSearch)(nil)

func row(id int64, name string) dbadapter.Row {
	r := dbadapter.NewRow()
	r.Set("id", id)
	r.Set("name", name)
	return r
}

func tableConfig() config.TableConfig {
	return config.TableConfig{Name: "products", PrimaryKey: "id"}
}

func TestReconcileOnce_DeletesExtrasAndUpsertsNew(t *testing.T) {
	adapter := &fakeAdapter{rows: []dbadapter.Row{
		row(1, "widget"),
		row(2, "gadget"),
	}}
	search := newFakeSearchClient([]document.Document{
		{"id": int64(1), "name": "widget"},
		{"id": int64(3), "name": "stale"},
	})

	r := &Reconciler{Adapter: adapter, Search: search}
	stats, err := r.ReconcileOnce(context.Background(), tableConfig(), config.DatabaseConfig{})
	require.NoError(t, err)
	require.Equal(t, 1, stats.Deleted)
	require.Equal(t, 1, stats.Upserted)
	require.ElementsMatch(t, []string{"3"}, search.deleted)
	require.Len(t, search.upserted, 1)
	require.Equal(t, int64(2), search.upserted[0]["id"])
}

func TestReconcileOnce_SkipsRowsWithInvalidPrimaryKey(t *testing.T) {
	badRow := dbadapter.NewRow()
	badRow.Set("name", "no id here")

	adapter := &fakeAdapter{rows: []dbadapter.Row{badRow, row(5, "ok")}}
	search := newFakeSearchClient(nil)

	r := &Reconciler{Adapter: adapter, Search: search}
	stats, err := r.ReconcileOnce(context.Background(), tableConfig(), config.DatabaseConfig{})
	require.NoError(t, err)
	require.Equal(t, 1, stats.MissingPK)
	require.Equal(t, 1, stats.Upserted)
}

func TestReconcileOnce_NoOpWhenAlreadyInSync(t *testing.T) {
	adapter := &fakeAdapter{rows: []dbadapter.Row{row(1, "widget")}}
	search := newFakeSearchClient([]document.Document{{"id": int64(1), "name": "widget"}})

	r := &Reconciler{Adapter: adapter, Search: search}
	stats, err := r.ReconcileOnce(context.Background(), tableConfig(), config.DatabaseConfig{})
	require.NoError(t, err)
	require.Equal(t, 0, stats.Deleted)
	require.Equal(t, 0, stats.Upserted)
}
