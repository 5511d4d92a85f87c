package searchclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/meilisync/connector/internal/document"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *MeilisearchClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewMeilisearchClient(Options{
		Host:                srv.URL,
		IndexSettleCooldown: time.Millisecond,
		SettingsCooldown:    time.Millisecond,
		BatchCooldown:       time.Millisecond,
		MaxElapsedTime:      time.Second,
	})
}

func TestEnsureIndex_CreatesWhenMissingThenAppliesSettings(t *testing.T) {
	var sawCreate, sawSettings bool
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet:
			w.WriteHeader(http.StatusNotFound)
		case r.Method == http.MethodPost && r.URL.Path == "/indexes":
			sawCreate = true
			w.WriteHeader(http.StatusAccepted)
		case r.Method == http.MethodPatch:
			sawSettings = true
			w.WriteHeader(http.StatusAccepted)
		default:
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
	})

	tolerant := true
	err := c.EnsureIndex(context.Background(), "products", "id", IndexSettings{
		SearchableAttributes: []string{"name"},
		TypoTolerance:        &tolerant,
	})
	require.NoError(t, err)
	require.True(t, sawCreate)
	require.True(t, sawSettings)
}

func TestEnsureIndex_SkipsCreateWhenIndexExists(t *testing.T) {
	var sawCreate bool
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet:
			w.WriteHeader(http.StatusOK)
		case r.Method == http.MethodPost:
			sawCreate = true
			w.WriteHeader(http.StatusAccepted)
		case r.Method == http.MethodPatch:
			w.WriteHeader(http.StatusAccepted)
		}
	})

	err := c.EnsureIndex(context.Background(), "products", "id", IndexSettings{})
	require.NoError(t, err)
	require.False(t, sawCreate)
}

func TestListDocuments_PaginatesUntilShortPage(t *testing.T) {
	calls := 0
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		var results []document.Document
		if calls == 1 {
			for i := 0; i < 1000; i++ {
				results = append(results, document.Document{"id": i})
			}
		} else {
			results = []document.Document{{"id": 1000}}
		}
		json.NewEncoder(w).Encode(map[string]any{"results": results})
	})

	docs, err := c.ListDocuments(context.Background(), "products")
	require.NoError(t, err)
	require.Len(t, docs, 1001)
	require.Equal(t, 2, calls)
}

func TestUpsertDocuments_SplitsIntoChunks(t *testing.T) {
	var chunkSizes []int
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var chunk []document.Document
		json.NewDecoder(r.Body).Decode(&chunk)
		chunkSizes = append(chunkSizes, len(chunk))
		w.WriteHeader(http.StatusAccepted)
	})

	docs := make([]document.Document, 5)
	for i := range docs {
		docs[i] = document.Document{"id": i}
	}
	err := c.UpsertDocuments(context.Background(), "products", docs, 2)
	require.NoError(t, err)
	require.Equal(t, []int{2, 2, 1}, chunkSizes)
}

func TestDeleteDocuments_PermanentFailureStopsRetrying(t *testing.T) {
	calls := 0
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadRequest)
	})

	err := c.DeleteDocuments(context.Background(), "products", []string{"1"}, 10)
	require.Error(t, err)
	require.Equal(t, 1, calls, "4xx responses must not be retried")
}
