package sqlutil

import "database/sql"

// ConfigurePool bounds db's connection pool to size, per
// database.connection_pool_size (§3). Idle connections are capped at the
// same size so the pool doesn't thrash under bursty per-table polling.
func ConfigurePool(db *sql.DB, size int) {
	if size <= 0 {
		size = 1
	}
	db.SetMaxOpenConns(size)
	db.SetMaxIdleConns(size)
}
