// Package searchclient defines the SearchClient capability (spec.md §4.2):
// creating/updating an index, listing its documents, and submitting batched
// upserts and deletions. meilisearch.go is the sole concrete implementation,
// a small typed HTTP client — no Go SDK for the backend exists anywhere in
// the retrieved reference corpus, so this talks the REST API directly.
package searchclient

import (
	"context"

	"github.com/meilisync/connector/internal/document"
)

// IndexSettings carries the per-index tuning knobs from TableConfig
// (spec.md §3) that get pushed through ensure_index.
type IndexSettings struct {
	SearchableAttributes []string
	RankingRules         []string
	TypoTolerance        *bool
}

// Client is the SearchClient capability.
type Client interface {
	// EnsureIndex creates the index with primaryKey if absent, then applies
	// settings in either case. Idempotent (spec.md §4.2).
	EnsureIndex(ctx context.Context, indexName, primaryKey string, settings IndexSettings) error

	// ListDocuments returns every document currently in the index.
	ListDocuments(ctx context.Context, indexName string) ([]document.Document, error)

	// UpsertDocuments writes docs in chunks of batchSize.
	UpsertDocuments(ctx context.Context, indexName string, docs []document.Document, batchSize int) error

	// DeleteDocuments removes ids in chunks of batchSize.
	DeleteDocuments(ctx context.Context, indexName string, ids []string, batchSize int) error
}
