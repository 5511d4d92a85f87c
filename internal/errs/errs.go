// Package errs defines the flat error-kind taxonomy shared across the
// reconciliation engine. There are no dialect-specific error types: every
// failure is one of a small set of kinds carrying a human-readable detail
// string, wrapped with the operation that produced it.
package errs

import (
	"errors"
	"fmt"
)

// Kind is one of the error kinds named in the engine's error taxonomy.
type Kind int

const (
	// Database covers adapter failures: connection, introspection, scan.
	Database Kind = iota
	// Search covers search-client failures: index ops, document ops.
	Search
	// Config covers config load/validation failures.
	Config
	// ConfigSerialization covers config write/round-trip failures.
	ConfigSerialization
	// NoPrimaryKey means a table has no usable primary key column.
	NoPrimaryKey
	// UnsupportedDatabaseType means a database URL scheme has no adapter.
	UnsupportedDatabaseType
	// Io covers filesystem and other local I/O failures.
	Io
	// NotImplemented marks a feature reserved but not yet built.
	NotImplemented
)

func (k Kind) String() string {
	switch k {
	case Database:
		return "Database"
	case Search:
		return "Search"
	case Config:
		return "Config"
	case ConfigSerialization:
		return "ConfigSerialization"
	case NoPrimaryKey:
		return "NoPrimaryKey"
	case UnsupportedDatabaseType:
		return "UnsupportedDatabaseType"
	case Io:
		return "Io"
	case NotImplemented:
		return "NotImplemented"
	default:
		return "Unknown"
	}
}

// Error is the concrete error type produced by the engine. Detail carries
// kind-specific context (a table name, a URL scheme, ...).
type Error struct {
	Kind   Kind
	Detail string
	Op     string
	Err    error
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Detail != "" {
		msg += "(" + e.Detail + ")"
	}
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is supports errors.Is comparisons against other *Error values by kind:
// errors.Is(err, &errs.Error{Kind: errs.Database}) matches any Database error.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Kind == t.Kind
	}
	return false
}

// New builds an *Error for the given kind, wrapping op and an optional cause.
func New(op string, kind Kind, detail string, cause error) *Error {
	return &Error{Kind: kind, Detail: detail, Op: op, Err: cause}
}

// Wrap is a convenience for wrapping an arbitrary error as the given kind
// with no detail string, the common case for adapter and search-client calls.
func Wrap(op string, kind Kind, cause error) *Error {
	return &Error{Kind: kind, Op: op, Err: cause}
}

// NoPrimaryKeyError reports a table lacking a usable primary key, carrying
// the table name as Detail per spec's NoPrimaryKey(table) kind.
func NoPrimaryKeyError(op, table string) *Error {
	return &Error{Kind: NoPrimaryKey, Detail: table, Op: op, Err: fmt.Errorf("table %q has no primary key", table)}
}

// UnsupportedSchemeError reports a database URL scheme with no registered
// adapter, carrying the scheme as Detail per spec's UnsupportedDatabaseType(scheme) kind.
func UnsupportedSchemeError(op, scheme string) *Error {
	return &Error{Kind: UnsupportedDatabaseType, Detail: scheme, Op: op, Err: fmt.Errorf("unsupported database scheme %q", scheme)}
}

// Of reports whether err (or any error it wraps) is an *Error of kind k.
func Of(err error, k Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == k
	}
	return false
}
