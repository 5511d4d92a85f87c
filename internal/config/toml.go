package config

import (
	"bytes"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/meilisync/connector/internal/errs"
)

// Load reads and parses a TOML configuration document from path, applies
// defaults for any omitted performance knob, and validates it.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) // #nosec G304 - operator-supplied config path
	if err != nil {
		return nil, errs.Wrap("config.Load", errs.Io, err)
	}
	return Parse(data)
}

// Parse decodes raw TOML bytes into a Config, applying defaults and
// validating the result. The raw document is retained so Save can
// round-trip fields this struct doesn't model (§6: unknown fields MUST be
// preserved across round-trip serialization).
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return nil, errs.Wrap("config.Parse", errs.Config, err)
	}

	var raw map[string]any
	if _, err := toml.Decode(string(data), &raw); err != nil {
		return nil, errs.Wrap("config.Parse", errs.Config, err)
	}
	cfg.raw = raw

	applyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save serializes cfg back to path, merging the typed fields over the
// originally-decoded raw document so that operator-added keys this struct
// doesn't model survive the round trip.
func (c *Config) Save(path string) error {
	merged := c.mergedDocument()

	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	if err := enc.Encode(merged); err != nil {
		return errs.Wrap("Config.Save", errs.ConfigSerialization, err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil { // #nosec G306 - config is not secret material beyond the api key
		return errs.Wrap("Config.Save", errs.Io, err)
	}
	return nil
}

func (c *Config) mergedDocument() map[string]any {
	merged := map[string]any{}
	for k, v := range c.raw {
		merged[k] = v
	}

	meili := map[string]any{"host": c.Meilisearch.Host}
	if c.Meilisearch.APIKey != nil {
		meili["api_key"] = *c.Meilisearch.APIKey
	}
	merged["meilisearch"] = meili

	db, _ := merged["database"].(map[string]any)
	if db == nil {
		db = map[string]any{}
	}
	db["type"] = string(c.Database.Type)
	db["connection_string"] = c.Database.ConnectionString
	db["poll_interval_seconds"] = c.Database.PollIntervalSeconds
	db["connection_pool_size"] = c.Database.ConnectionPoolSize
	db["max_concurrent_batches"] = c.Database.MaxConcurrentBatches
	db["document_batch_size"] = c.Database.DocumentBatchSize

	tables := make([]map[string]any, 0, len(c.Database.Tables))
	for _, t := range c.Database.Tables {
		tbl := map[string]any{
			"name":              t.Name,
			"primary_key":       t.PrimaryKey,
			"index_name":        t.Index(),
			"watch_for_changes": t.WatchForChanges,
		}
		if len(t.FieldsToIndex) > 0 {
			tbl["fields_to_index"] = t.FieldsToIndex
		}
		if len(t.SearchableAttributes) > 0 {
			tbl["searchable_attributes"] = t.SearchableAttributes
		}
		if len(t.RankingRules) > 0 {
			tbl["ranking_rules"] = t.RankingRules
		}
		if t.TypoTolerance != nil {
			tbl["typo_tolerance"] = *t.TypoTolerance
		}
		tables = append(tables, tbl)
	}
	db["tables"] = tables
	merged["database"] = db

	return merged
}
