package document

import (
	"encoding/json"
	"unicode/utf8"

	"github.com/meilisync/connector/internal/config"
	"github.com/meilisync/connector/internal/dbadapter"
	"github.com/meilisync/connector/internal/pkid"
)

// Normalizer converts database rows into documents acceptable to the search
// service, enforcing the per-field and per-document size limits from
// DatabaseConfig (spec.md §4.3).
type Normalizer struct {
	MaxTextLength int
	MaxFields     int
	MaxDocBytes   int
}

// NewNormalizer builds a Normalizer from the table's owning DatabaseConfig,
// falling back to the package defaults for any unset cap.
func NewNormalizer(db config.DatabaseConfig) *Normalizer {
	n := &Normalizer{
		MaxTextLength: db.MaxTextLength,
		MaxFields:     db.MaxFieldsPerDocument,
		MaxDocBytes:   db.MaxDocumentBytes,
	}
	if n.MaxTextLength <= 0 {
		n.MaxTextLength = config.DefaultMaxTextLength
	}
	if n.MaxFields <= 0 {
		n.MaxFields = config.DefaultMaxFields
	}
	if n.MaxDocBytes <= 0 {
		n.MaxDocBytes = config.DefaultMaxDocumentBytes
	}
	return n
}

// Normalize applies the DocumentNormalizer contract to row for the given
// table. warned reports whether the field-count cap was hit, so the caller
// can emit its one warning for this document without the Normalizer itself
// logging.
func (n *Normalizer) Normalize(table config.TableConfig, row dbadapter.Row) (doc Document, warned bool, err error) {
	pkRaw, ok := row.Get(table.PrimaryKey)
	if !ok {
		return nil, false, &ErrMissingPrimaryKey{Table: table.Name}
	}
	pkStr, err := pkid.StringOf(pkRaw)
	if err != nil || !pkid.Valid(pkStr) {
		return nil, false, &ErrMissingPrimaryKey{Table: table.Name}
	}

	doc = Document{table.PrimaryKey: pkRaw}
	fieldCount := 1

	for _, col := range row.Columns {
		if col == table.PrimaryKey {
			continue
		}
		if fieldCount >= n.MaxFields {
			warned = true
			break
		}
		v, _ := row.Get(col)
		doc[col] = n.normalizeValue(v)
		fieldCount++
	}

	encoded, err := json.Marshal(doc)
	if err != nil {
		return nil, warned, err
	}
	if len(encoded) > n.MaxDocBytes {
		return nil, warned, &ErrTooLarge{Table: table.Name, ByteLength: len(encoded), Limit: n.MaxDocBytes}
	}
	return doc, warned, nil
}

func (n *Normalizer) normalizeValue(v any) any {
	if v == nil {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		return v
	}
	if utf8.RuneCountInString(s) <= n.MaxTextLength {
		return s
	}
	runes := []rune(s)
	return string(runes[:n.MaxTextLength])
}
