// Package reconcile implements the Reconciler (spec.md §4.4): one pass of
// set-difference reconciliation for a single (table, index) pair.
package reconcile

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/meilisync/connector/internal/config"
	"github.com/meilisync/connector/internal/dbadapter"
	"github.com/meilisync/connector/internal/document"
	"github.com/meilisync/connector/internal/errs"
	"github.com/meilisync/connector/internal/pkid"
	"github.com/meilisync/connector/internal/searchclient"
)

// Reconciler performs reconciliation cycles for tables sharing one
// DatabaseAdapter and SearchClient. A single Reconciler is shared by every
// per-table task the scheduler runs.
type Reconciler struct {
	Adapter dbadapter.Adapter
	Search  searchclient.Client
	Logger  *slog.Logger
}

// Stats summarizes one completed cycle, returned for scheduler-level
// logging and tests.
type Stats struct {
	Deleted       int
	Upserted      int
	MissingPK     int
	InvalidPK     int
	RemoteDropped int
}

func (r *Reconciler) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slog.Default()
}

// ReconcileOnce runs one full cycle for table against db's batching
// parameters, per the algorithm in spec.md §4.4.
func (r *Reconciler) ReconcileOnce(ctx context.Context, table config.TableConfig, db config.DatabaseConfig) (Stats, error) {
	var stats Stats
	log := r.logger().With("table", table.Name, "index", table.Index())

	var rows []dbadapter.Row
	var remoteDocs []document.Document

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		rows, err = r.Adapter.FetchAll(gctx, table.Name)
		if err != nil {
			return errs.Wrap("reconcile.FetchAll", errs.Database, err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		remoteDocs, err = r.Search.ListDocuments(gctx, table.Index())
		if err != nil {
			return errs.Wrap("reconcile.ListDocuments", errs.Search, err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		log.Error("reconcile cycle aborted during fetch", "error", err)
		return stats, err
	}

	remote := make(map[string]struct{}, len(remoteDocs))
	for _, d := range remoteDocs {
		v, ok := d[table.PrimaryKey]
		if !ok {
			stats.RemoteDropped++
			continue
		}
		s, err := pkid.StringOf(v)
		if err != nil || !pkid.Valid(s) {
			stats.RemoteDropped++
			continue
		}
		remote[s] = struct{}{}
	}
	if stats.RemoteDropped > 0 {
		log.Debug("skipped indexed documents with invalid primary key", "count", stats.RemoteDropped)
	}

	local := make(map[string]dbadapter.Row, len(rows))
	for _, row := range rows {
		v, ok := row.Get(table.PrimaryKey)
		if !ok {
			stats.MissingPK++
			continue
		}
		s, err := pkid.StringOf(v)
		if err != nil || !pkid.Valid(s) {
			stats.InvalidPK++
			continue
		}
		local[s] = row // last-seen wins, per fetch_all's insertion order
	}
	if stats.MissingPK > 0 || stats.InvalidPK > 0 {
		log.Warn("skipped rows with unusable primary key",
			"missing_field", stats.MissingPK, "invalid_value", stats.InvalidPK)
	}

	var toDelete []string
	for key := range remote {
		if _, ok := local[key]; !ok {
			toDelete = append(toDelete, key)
		}
	}
	if len(toDelete) > 0 {
		batch := db.DeleteBatchSize
		if batch <= 0 {
			batch = config.DefaultDeleteBatchSize
		}
		if err := r.Search.DeleteDocuments(ctx, table.Index(), toDelete, batch); err != nil {
			log.Error("delete_documents failed", "error", err)
			return stats, err
		}
		stats.Deleted = len(toDelete)
	}

	normalizer := document.NewNormalizer(db)
	var toUpsert []document.Document
	for key, row := range local {
		if _, ok := remote[key]; ok {
			continue
		}
		doc, warned, err := normalizer.Normalize(table, row)
		if err != nil {
			log.Debug("skipping row that failed normalization", "primary_key", key, "error", err)
			continue
		}
		if warned {
			log.Warn("document exceeded field-count cap; excess fields dropped",
				"primary_key", key, "table", table.Name)
		}
		toUpsert = append(toUpsert, doc)
	}

	if len(toUpsert) > 0 {
		batchSize := db.DocumentBatchSize
		if batchSize <= 0 {
			batchSize = config.DefaultDocumentBatchSize
		}
		maxConcurrent := db.MaxConcurrentBatches
		if maxConcurrent <= 0 {
			maxConcurrent = config.DefaultMaxConcurrentBatches
		}
		upsertBatch := db.UpsertBatchSize
		if upsertBatch <= 0 {
			upsertBatch = config.DefaultUpsertBatchSize
		}

		var upsertGroup errgroup.Group
		upsertGroup.SetLimit(maxConcurrent)
		for start := 0; start < len(toUpsert); start += batchSize {
			end := min(start+batchSize, len(toUpsert))
			chunk := toUpsert[start:end]
			upsertGroup.Go(func() error {
				if err := r.Search.UpsertDocuments(ctx, table.Index(), chunk, upsertBatch); err != nil {
					log.Error("upsert_documents chunk failed", "error", err)
					return err
				}
				return nil
			})
		}
		if err := upsertGroup.Wait(); err != nil {
			// Non-fatal: already logged per-chunk; the scheduler retries
			// the whole table on the next tick.
			return stats, err
		}
		stats.Upserted = len(toUpsert)
	}

	log.Info("reconciliation cycle complete",
		"deleted", stats.Deleted, "upserted", stats.Upserted)
	return stats, nil
}
