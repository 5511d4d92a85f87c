// Package sqlutil holds the scan/convert/pool helpers shared by the three
// dialect adapters (sqlite, postgres, mysql), generalizing the teacher's
// internal/storage/dolt/batch.go generic batching pattern to whole-table
// scans and the scalar-conversion rule of spec.md §4.1.
package sqlutil

import (
	"encoding/json"
	"fmt"
	"strconv"
	"unicode/utf8"
)

// ConvertScalar maps a database/sql scan destination to the Row's typed
// scalar representation, attempting signed integer, then floating point,
// then string, then boolean, then opaque bytes (rendered as a "BLOB(n)"
// placeholder string) in that order, per spec.md §4.1.
//
// Null coercion: for an ordinary column, v == nil yields (nil, false) —
// the column is absent from the resulting Row. For the primary-key column,
// and for any column literally named "id" (even when it isn't the
// configured primary key, to preserve historical behavior), a null value
// is coerced to the integer zero instead of being dropped.
func ConvertScalar(colName string, isIdentityColumn bool, v any) (value any, present bool) {
	if v == nil {
		if isIdentityColumn || colName == "id" {
			return int64(0), true
		}
		return nil, false
	}

	switch t := v.(type) {
	case int64:
		return t, true
	case int32:
		return int64(t), true
	case int:
		return int64(t), true
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case bool:
		return t, true
	case string:
		return coerceTextLike(colName, []byte(t), t), true
	case []byte:
		return coerceTextLike(colName, t, string(t)), true
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprintf("%v", t), true
		}
		return string(b), true
	}
}

// coerceTextLike applies the integer -> float -> string -> bytes attempt
// order to a value the driver already handed back as text or bytes (many
// drivers return numeric/boolean columns this way for some dialects).
func coerceTextLike(colName string, raw []byte, asString string) any {
	if n, err := strconv.ParseInt(asString, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(asString, 64); err == nil {
		return f
	}
	if utf8.Valid(raw) {
		return asString
	}
	return fmt.Sprintf("BLOB(%d)", len(raw))
}
