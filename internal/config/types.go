// Package config models the declarative TOML configuration document: which
// tables to mirror into which search indices, how often to reconcile them,
// and per-index search tuning. Loading, parsing, and validating this
// document is ambient plumbing around the reconciliation engine, not part
// of the engine itself.
package config

// DatabaseType enumerates the supported database dialects.
type DatabaseType string

const (
	SQLite   DatabaseType = "sqlite"
	Postgres DatabaseType = "postgres"
	MySQL    DatabaseType = "mysql"
)

// Default performance knobs, applied when a TOML document omits them.
const (
	DefaultPollIntervalSeconds  = 60
	DefaultConnectionPoolSize   = 5
	DefaultMaxConcurrentBatches = 5
	DefaultDocumentBatchSize    = 100
	DefaultUpsertBatchSize      = 100
	DefaultDeleteBatchSize      = 1000

	DefaultMaxTextLength    = 10_000_000 // code points
	DefaultMaxFields        = 65_536
	DefaultMaxDocumentBytes = 10 * 1024 * 1024 // 10 MB

	// Heuristic cooldowns (§4.2, §9): not contractual, compensate for the
	// search backend's asynchronous task model.
	DefaultIndexSettleCooldownMs = 1000
	DefaultSettingsCooldownMs    = 500
	DefaultBatchCooldownMs       = 100
)

// Config is the top-level, immutable-once-loaded configuration document.
type Config struct {
	Meilisearch MeilisearchConfig `toml:"meilisearch"`
	Database    DatabaseConfig    `toml:"database"`

	// raw preserves the full decoded document (including fields this
	// struct doesn't model) so Save can round-trip unknown keys.
	raw map[string]any
}

// MeilisearchConfig is the `[meilisearch]` table.
type MeilisearchConfig struct {
	Host   string  `toml:"host"`
	APIKey *string `toml:"api_key,omitempty"`
}

// DatabaseConfig is the `[database]` table, including the repeated
// `[[database.tables]]` entries.
type DatabaseConfig struct {
	// Type is serialized as TOML key "type" (the rename called out in
	// spec.md §6, where the underlying field was named type_ to dodge a
	// reserved word in the source language this was distilled from).
	Type                 DatabaseType  `toml:"type"`
	ConnectionString     string        `toml:"connection_string"`
	PollIntervalSeconds  int           `toml:"poll_interval_seconds,omitempty"`
	Tables               []TableConfig `toml:"tables"`
	ConnectionPoolSize   int           `toml:"connection_pool_size,omitempty"`
	MaxConcurrentBatches int           `toml:"max_concurrent_batches,omitempty"`
	DocumentBatchSize    int           `toml:"document_batch_size,omitempty"`

	// Optional normalizer/cooldown overrides (§12 of SPEC_FULL.md); all
	// have documented defaults and need not appear in the TOML document.
	MaxTextLength          int `toml:"max_text_length,omitempty"`
	MaxFieldsPerDocument    int `toml:"max_fields_per_document,omitempty"`
	MaxDocumentBytes        int `toml:"max_document_bytes,omitempty"`
	IndexSettleCooldownMs   int `toml:"index_settle_cooldown_ms,omitempty"`
	SettingsCooldownMs      int `toml:"settings_cooldown_ms,omitempty"`
	BatchCooldownMs         int `toml:"batch_cooldown_ms,omitempty"`
	UpsertBatchSize         int `toml:"upsert_batch_size,omitempty"`
	DeleteBatchSize         int `toml:"delete_batch_size,omitempty"`
}

// TableConfig describes one mirrored table and the index it populates.
type TableConfig struct {
	Name            string   `toml:"name"`
	PrimaryKey      string   `toml:"primary_key"`
	IndexName       string   `toml:"index_name,omitempty"`
	FieldsToIndex   []string `toml:"fields_to_index,omitempty"`
	WatchForChanges bool     `toml:"watch_for_changes,omitempty"`

	SearchableAttributes []string `toml:"searchable_attributes,omitempty"`
	RankingRules         []string `toml:"ranking_rules,omitempty"`
	TypoTolerance        *bool    `toml:"typo_tolerance,omitempty"`
}

// Index returns the configured index name, defaulting to the table name.
func (t TableConfig) Index() string {
	if t.IndexName != "" {
		return t.IndexName
	}
	return t.Name
}
