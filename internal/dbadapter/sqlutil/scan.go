package sqlutil

import (
	"context"
	"database/sql"

	"github.com/meilisync/connector/internal/dbadapter"
)

// ScanTable runs a single full-table-scan query (a single statement, giving
// the single-point-in-time-consistent read spec.md §4.1 requires) and
// converts each row into a dbadapter.Row via ConvertScalar, with
// pkColumn driving the null-coercion rule for the identity column.
func ScanTable(ctx context.Context, db *sql.DB, query string, pkColumn string) ([]dbadapter.Row, error) {
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	dest := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range dest {
		ptrs[i] = &dest[i]
	}

	var out []dbadapter.Row
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		row := dbadapter.NewRow()
		for i, col := range cols {
			if v, present := ConvertScalar(col, col == pkColumn, dest[i]); present {
				row.Set(col, v)
			}
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// ScanOne runs a single-row lookup query and converts the result, reporting
// (a zero Row, false, nil) when no row matched.
func ScanOne(ctx context.Context, db *sql.DB, query string, pkColumn string, args ...any) (dbadapter.Row, bool, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return dbadapter.Row{}, false, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return dbadapter.Row{}, false, err
	}

	if !rows.Next() {
		return dbadapter.Row{}, false, rows.Err()
	}

	dest := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range dest {
		ptrs[i] = &dest[i]
	}
	if err := rows.Scan(ptrs...); err != nil {
		return dbadapter.Row{}, false, err
	}

	row := dbadapter.NewRow()
	for i, col := range cols {
		if v, present := ConvertScalar(col, col == pkColumn, dest[i]); present {
			row.Set(col, v)
		}
	}
	return row, true, nil
}
