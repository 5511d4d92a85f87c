// Package orchestrator implements the lifecycle entry point (spec.md §4.6):
// builds the DatabaseAdapter and SearchClient from configuration, prepares
// indices, starts the SyncScheduler, and blocks until shutdown is signaled.
package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"github.com/meilisync/connector/internal/config"
	"github.com/meilisync/connector/internal/dbadapter"
	"github.com/meilisync/connector/internal/errs"
	"github.com/meilisync/connector/internal/reconcile"
	"github.com/meilisync/connector/internal/scheduler"
	"github.com/meilisync/connector/internal/searchclient"
)

const tailWait = 100 * time.Millisecond

// Orchestrator owns the engine's lifecycle for one loaded Config.
type Orchestrator struct {
	cfg    *config.Config
	logger *slog.Logger

	adapter   dbadapter.Adapter
	search    searchclient.Client
	scheduler *scheduler.Scheduler
	cancel    context.CancelFunc
}

// New builds an Orchestrator for cfg. logger may be nil (defaults to slog.Default()).
func New(cfg *config.Config, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{cfg: cfg, logger: logger}
}

func (o *Orchestrator) log() *slog.Logger {
	if o.logger != nil {
		return o.logger
	}
	return slog.Default()
}

// Run builds the adapter and search client, ensures every configured
// index, starts the scheduler, and blocks until ctx is canceled or an
// OS interrupt/term signal arrives; it then stops cleanly.
//
// A caller that already manages signal handling can pass a ctx derived
// from signal.NotifyContext itself; Run always also installs its own
// SIGINT/SIGTERM handling as a convenience for `run` (spec.md §6).
func (o *Orchestrator) Run(ctx context.Context) error {
	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := o.start(sigCtx); err != nil {
		return err
	}

	<-sigCtx.Done()
	o.log().Info("shutdown signal received")
	o.stop()
	return nil
}

func (o *Orchestrator) start(ctx context.Context) error {
	if o.adapter == nil {
		adapter, err := dbadapter.Open(ctx, o.cfg.Database.ConnectionString, o.cfg.Database.ConnectionPoolSize)
		if err != nil {
			return fmt.Errorf("building database adapter: %w", err)
		}
		o.adapter = adapter
	}

	tables, err := o.adapter.ListTables(ctx)
	if err != nil {
		return fmt.Errorf("listing tables: %w", err)
	}
	for _, tc := range o.cfg.Database.Tables {
		if !slices.Contains(tables, tc.Name) {
			return errs.New("orchestrator.start", errs.Database, tc.Name, fmt.Errorf("configured table %q not found in database", tc.Name))
		}
	}

	if o.search == nil {
		o.search = searchclient.NewMeilisearchClient(searchclient.Options{
			Host:                o.cfg.Meilisearch.Host,
			APIKey:              apiKey(o.cfg.Meilisearch.APIKey),
			IndexSettleCooldown: millis(o.cfg.Database.IndexSettleCooldownMs, config.DefaultIndexSettleCooldownMs),
			SettingsCooldown:    millis(o.cfg.Database.SettingsCooldownMs, config.DefaultSettingsCooldownMs),
			BatchCooldown:       millis(o.cfg.Database.BatchCooldownMs, config.DefaultBatchCooldownMs),
		})
	}

	for _, tc := range o.cfg.Database.Tables {
		settings := searchclient.IndexSettings{
			SearchableAttributes: tc.SearchableAttributes,
			RankingRules:         tc.RankingRules,
			TypoTolerance:        tc.TypoTolerance,
		}
		if err := o.search.EnsureIndex(ctx, tc.Index(), tc.PrimaryKey, settings); err != nil {
			return fmt.Errorf("ensuring index %q: %w", tc.Index(), err)
		}
	}

	r := &reconcile.Reconciler{Adapter: o.adapter, Search: o.search, Logger: o.log()}
	o.scheduler = scheduler.New(o.cfg.Database.Tables, o.cfg.Database, r, o.log())
	runCtx, cancel := context.WithCancel(ctx)
	o.cancel = cancel
	o.scheduler.Start(runCtx)
	return nil
}

func (o *Orchestrator) stop() {
	if o.cancel != nil {
		o.cancel()
	}
	o.scheduler.Wait()
	if o.adapter != nil {
		if err := o.adapter.Close(); err != nil {
			o.log().Warn("closing database adapter", "error", err)
		}
	}
	time.Sleep(tailWait)
}

func apiKey(k *string) string {
	if k == nil {
		return ""
	}
	return *k
}

func millis(v, def int) time.Duration {
	if v <= 0 {
		v = def
	}
	return time.Duration(v) * time.Millisecond
}
