// Package document implements the DocumentNormalizer (spec.md §4.3):
// converting a database row into a document acceptable to the search
// service, enforcing per-field and per-document size limits and the
// primary-key invariants.
package document

// Document is a mapping from string field name to a JSON-style scalar or
// string, always containing the primary-key field (spec.md §3).
type Document map[string]any

// ErrMissingPrimaryKey is returned when the Row lacks a valid primary key.
type ErrMissingPrimaryKey struct {
	Table string
}

func (e *ErrMissingPrimaryKey) Error() string {
	return "row missing valid primary key for table " + e.Table
}

// ErrTooLarge is returned when the normalized document exceeds the
// document-size cap, after caller-visible truncation/dropping already ran.
type ErrTooLarge struct {
	Table      string
	ByteLength int
	Limit      int
}

func (e *ErrTooLarge) Error() string {
	return "document too large"
}
