// Package dbadapter defines the DatabaseAdapter capability (spec.md §4.1):
// introspecting a relational database and streaming whole-table scans as
// structured records. Concrete dialects (sqlite, postgres, mysql) live in
// sibling packages and register themselves here by URL scheme, the same
// way database/sql drivers register themselves — the engine only ever
// depends on this package's Adapter interface, never a concrete dialect.
package dbadapter

import (
	"context"
	"strings"
	"sync"

	"github.com/meilisync/connector/internal/errs"
)

// Row is an ordered-by-insertion mapping from column name to a typed
// scalar, preserving the column order of the underlying table scan so the
// Normalizer's field-count cap (spec.md §4.3) drops columns deterministically.
// A column whose value was null (and isn't the primary key, nor literally
// named "id") is simply absent.
type Row struct {
	Columns []string
	Values  map[string]any
}

// NewRow builds an empty Row ready for Set calls.
func NewRow() Row {
	return Row{Values: make(map[string]any)}
}

// Set appends column to the order (if not already present) and stores value.
func (r *Row) Set(column string, value any) {
	if r.Values == nil {
		r.Values = make(map[string]any)
	}
	if _, exists := r.Values[column]; !exists {
		r.Columns = append(r.Columns, column)
	}
	r.Values[column] = value
}

// Get returns the value stored for column and whether it was present.
func (r Row) Get(column string) (any, bool) {
	v, ok := r.Values[column]
	return v, ok
}

// Len reports the number of columns present in the row.
func (r Row) Len() int { return len(r.Columns) }

// Column describes one column as reported by schema introspection.
type Column struct {
	Name         string
	DeclaredType string
	IsPrimaryKey bool
}

// Adapter is the DatabaseAdapter capability: introspection plus full-table
// scans. Implementations must be safe for concurrent use by multiple
// per-table reconciliation tasks sharing one Adapter instance.
type Adapter interface {
	ListTables(ctx context.Context) ([]string, error)
	ColumnsOf(ctx context.Context, table string) ([]Column, error)
	PrimaryKeyOf(ctx context.Context, table string) (string, error)
	FetchAll(ctx context.Context, table string) ([]Row, error)

	// FetchRecord looks up a single row by primary key value, supplementing
	// the reconciliation loop (which only ever does full-table scans) with
	// a point lookup for operator debugging (SPEC_FULL.md §12).
	FetchRecord(ctx context.Context, table, pk string) (Row, bool, error)

	// TableSchema returns name/declared-type pairs without the is-pk flag.
	// The `generate` command does not call it.
	TableSchema(ctx context.Context, table string) ([]Column, error)

	Close() error
}

// OpenFunc constructs an Adapter from a full connection URL (e.g.
// "sqlite:///var/data/app.db") and a bounded connection-pool size.
type OpenFunc func(ctx context.Context, connectionURL string, poolSize int) (Adapter, error)

var (
	registryMu sync.RWMutex
	registry   = map[string]OpenFunc{}
)

// Register associates a URL scheme with an OpenFunc. Dialect packages call
// this from an init() func, mirroring database/sql driver registration.
func Register(scheme string, open OpenFunc) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[scheme] = open
}

// Open parses connectionURL's scheme and dispatches to the registered
// adapter, per spec.md §6's database URL scheme table. An unrecognized
// scheme yields errs.UnsupportedDatabaseType.
func Open(ctx context.Context, connectionURL string, poolSize int) (Adapter, error) {
	scheme, _, _ := strings.Cut(connectionURL, "://")
	if scheme == connectionURL {
		// No "://" separator at all (e.g. "sqlite::memory:").
		scheme, _, _ = strings.Cut(connectionURL, ":")
	}

	registryMu.RLock()
	open, ok := registry[scheme]
	registryMu.RUnlock()
	if !ok {
		return nil, errs.UnsupportedSchemeError("dbadapter.Open", scheme)
	}
	return open(ctx, connectionURL, poolSize)
}

// ParseSQLiteTarget extracts the filesystem path (or ":memory:") from a
// sqlite:// URL, per spec.md §6: "sqlite://<absolute-or-relative-path>" or
// "sqlite::memory:".
func ParseSQLiteTarget(connectionURL string) string {
	if rest, ok := strings.CutPrefix(connectionURL, "sqlite://"); ok {
		return rest
	}
	if rest, ok := strings.CutPrefix(connectionURL, "sqlite:"); ok {
		return rest
	}
	return connectionURL
}

// SystemTablePrefixes lists the implementation-internal table-name
// prefixes excluded by ListTables, per dialect.
var SystemTablePrefixes = map[string][]string{
	"sqlite":   {"sqlite_"},
	"postgres": {"pg_"},
	"mysql":    {"mysql", "performance_schema", "information_schema", "sys"},
}

func isSystemTable(dialect, name string) bool {
	for _, p := range SystemTablePrefixes[dialect] {
		if strings.HasPrefix(name, p) || name == p {
			return true
		}
	}
	return false
}

// FilterSystemTables removes implementation-internal tables from names.
func FilterSystemTables(dialect string, names []string) []string {
	out := names[:0:0]
	for _, n := range names {
		if !isSystemTable(dialect, n) {
			out = append(out, n)
		}
	}
	return out
}
