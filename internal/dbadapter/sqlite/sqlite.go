// Package sqlite implements the DatabaseAdapter capability for SQLite,
// registering itself with internal/dbadapter under the "sqlite" URL
// scheme. Uses modernc.org/sqlite, a CGO-free pure-Go driver, so the
// engine builds without a C toolchain.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite" // registers the "sqlite" database/sql driver

	"github.com/meilisync/connector/internal/dbadapter"
	"github.com/meilisync/connector/internal/dbadapter/sqlutil"
	"github.com/meilisync/connector/internal/errs"
)

func init() {
	dbadapter.Register("sqlite", Open)
}

// Adapter is the sqlite DatabaseAdapter.
type Adapter struct {
	db *sql.DB
}

// Open builds a sqlite Adapter from a "sqlite://path" or "sqlite::memory:"
// connection URL, applying the file-path normalization rule of spec.md §4.1.
func Open(ctx context.Context, connectionURL string, poolSize int) (dbadapter.Adapter, error) {
	target := dbadapter.ParseSQLiteTarget(connectionURL)

	dsn := target
	if target != ":memory:" {
		normalized, err := sqlutil.NormalizeFilePath(target)
		if err != nil {
			return nil, errs.Wrap("sqlite.Open", errs.Database, err)
		}
		dsn = normalized
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errs.Wrap("sqlite.Open", errs.Database, err)
	}
	sqlutil.ConfigurePool(db, poolSize)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, errs.Wrap("sqlite.Open", errs.Database, err)
	}

	return &Adapter{db: db}, nil
}

func (a *Adapter) ListTables(ctx context.Context) ([]string, error) {
	rows, err := a.db.QueryContext(ctx, `SELECT name FROM sqlite_master WHERE type = 'table'`)
	if err != nil {
		return nil, errs.Wrap("sqlite.ListTables", errs.Database, err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, errs.Wrap("sqlite.ListTables", errs.Database, err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.Wrap("sqlite.ListTables", errs.Database, err)
	}
	return dbadapter.FilterSystemTables("sqlite", names), nil
}

func (a *Adapter) ColumnsOf(ctx context.Context, table string) ([]dbadapter.Column, error) {
	rows, err := a.db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", sqlutil.QuoteIdent(table, '"')))
	if err != nil {
		return nil, errs.Wrap("sqlite.ColumnsOf", errs.Database, err)
	}
	defer rows.Close()

	var cols []dbadapter.Column
	for rows.Next() {
		var (
			cid        int
			name       string
			ctype      string
			notNull    int
			dfltValue  sql.NullString
			primaryKey int
		)
		if err := rows.Scan(&cid, &name, &ctype, &notNull, &dfltValue, &primaryKey); err != nil {
			return nil, errs.Wrap("sqlite.ColumnsOf", errs.Database, err)
		}
		cols = append(cols, dbadapter.Column{Name: name, DeclaredType: ctype, IsPrimaryKey: primaryKey > 0})
	}
	return cols, rows.Err()
}

func (a *Adapter) PrimaryKeyOf(ctx context.Context, table string) (string, error) {
	cols, err := a.ColumnsOf(ctx, table)
	if err != nil {
		return "", err
	}
	for _, c := range cols {
		if c.IsPrimaryKey {
			return c.Name, nil
		}
	}
	return "", errs.NoPrimaryKeyError("sqlite.PrimaryKeyOf", table)
}

func (a *Adapter) FetchAll(ctx context.Context, table string) ([]dbadapter.Row, error) {
	pk, err := a.PrimaryKeyOf(ctx, table)
	if err != nil && !errs.Of(err, errs.NoPrimaryKey) {
		return nil, err
	}
	query := fmt.Sprintf("SELECT * FROM %s", sqlutil.QuoteIdent(table, '"'))
	rows, err := sqlutil.ScanTable(ctx, a.db, query, pk)
	if err != nil {
		return nil, errs.Wrap("sqlite.FetchAll", errs.Database, err)
	}
	return rows, nil
}

func (a *Adapter) FetchRecord(ctx context.Context, table, pkValue string) (dbadapter.Row, bool, error) {
	pk, err := a.PrimaryKeyOf(ctx, table)
	if err != nil {
		return dbadapter.Row{}, false, err
	}
	query := fmt.Sprintf("SELECT * FROM %s WHERE %s = ?", sqlutil.QuoteIdent(table, '"'), sqlutil.QuoteIdent(pk, '"'))
	row, ok, err := sqlutil.ScanOne(ctx, a.db, query, pk, pkValue)
	if err != nil {
		return dbadapter.Row{}, false, errs.Wrap("sqlite.FetchRecord", errs.Database, err)
	}
	return row, ok, nil
}

func (a *Adapter) TableSchema(ctx context.Context, table string) ([]dbadapter.Column, error) {
	cols, err := a.ColumnsOf(ctx, table)
	if err != nil {
		return nil, err
	}
	out := make([]dbadapter.Column, len(cols))
	for i, c := range cols {
		out[i] = dbadapter.Column{Name: c.Name, DeclaredType: c.DeclaredType}
	}
	return out, nil
}

func (a *Adapter) Close() error { return a.db.Close() }
