package sqlutil

import "strings"

// QuoteIdent quotes a bare identifier (table or column name) for the given
// quote character, doubling any embedded occurrence of it.
func QuoteIdent(name string, quote byte) string {
	q := string(quote)
	escaped := strings.ReplaceAll(name, q, q+q)
	return q + escaped + q
}
