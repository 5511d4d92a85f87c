package config

import (
	"fmt"

	"github.com/meilisync/connector/internal/errs"
)

// Validate checks structural invariants of a decoded configuration
// document: required fields present, no duplicate table/index names, and a
// recognized database type.
func Validate(cfg *Config) error {
	if cfg.Meilisearch.Host == "" {
		return errs.New("config.Validate", errs.Config, "meilisearch.host is required", nil)
	}
	switch cfg.Database.Type {
	case SQLite, Postgres, MySQL:
	default:
		return errs.New("config.Validate", errs.Config, fmt.Sprintf("unknown database.type %q", cfg.Database.Type), nil)
	}
	if cfg.Database.ConnectionString == "" {
		return errs.New("config.Validate", errs.Config, "database.connection_string is required", nil)
	}
	if len(cfg.Database.Tables) == 0 {
		return errs.New("config.Validate", errs.Config, "database.tables must contain at least one table", nil)
	}

	seenNames := make(map[string]bool, len(cfg.Database.Tables))
	seenIndices := make(map[string]bool, len(cfg.Database.Tables))
	for _, t := range cfg.Database.Tables {
		if t.Name == "" {
			return errs.New("config.Validate", errs.Config, "table entry missing name", nil)
		}
		if t.PrimaryKey == "" {
			return errs.New("config.Validate", errs.Config, fmt.Sprintf("table %q missing primary_key", t.Name), nil)
		}
		if seenNames[t.Name] {
			return errs.New("config.Validate", errs.Config, fmt.Sprintf("duplicate table %q", t.Name), nil)
		}
		seenNames[t.Name] = true

		idx := t.Index()
		if seenIndices[idx] {
			return errs.New("config.Validate", errs.Config, fmt.Sprintf("duplicate index_name %q", idx), nil)
		}
		seenIndices[idx] = true
	}
	return nil
}
