package store

import (
	"strings"
	"time"
)

// Attribute names of the table, shared by every backend.
const (
	AttrPK        = "PK"
	AttrSK        = "SK"
	AttrType      = "type"
	AttrData      = "data"
	AttrDataZ     = "dataZ"
	AttrTTL       = "ttl"
	AttrCreatedAt = "createdAt"
	AttrIndexPK   = "GSI1PK"
	AttrIndexSK   = "GSI1SK"

	// TypeIndex is the secondary index keyed by (type, createdAt).
	TypeIndex = "GSI1"
)

// Sort keys used by the fusion service.
const (
	SortKeyData     = "DATA"
	SortKeyMetadata = "METADATA"
)

// TimeLayout is the creation timestamp format: UTC, millisecond precision.
// Lexical order of formatted values matches chronological order.
const TimeLayout = "2006-01-02T15:04:05.000Z"

// Document is a schemaless JSON-like payload.
type Document map[string]any

// RecordType tags the purpose of a record.
type RecordType string

const (
	TypeCache      RecordType = "CACHE"
	TypeHistory    RecordType = "HISTORY"
	TypeCustomData RecordType = "CUSTOM_DATA"
)

// Valid reports whether t is one of the known record types.
func (t RecordType) Valid() bool {
	switch t {
	case TypeCache, TypeHistory, TypeCustomData:
		return true
	default:
		return false
	}
}

func (t RecordType) String() string { return string(t) }

// Record is one row of the table.
//
// IndexKey and IndexSort are derived by the store on Put (Type and CreatedAt
// respectively); values supplied by callers are overwritten.
type Record struct {
	PartitionKey string
	SortKey      string
	Type         RecordType
	Payload      Document
	ExpiresAt    int64 // epoch seconds
	CreatedAt    string
	IndexKey     string
	IndexSort    string
}

// Expired reports whether now has reached the record's expiry.
func (r Record) Expired(now time.Time) bool {
	return r.ExpiresAt <= now.Unix()
}

// CreatedTime parses CreatedAt. The zero time is returned for malformed values.
func (r Record) CreatedTime() time.Time {
	t, err := time.Parse(TimeLayout, r.CreatedAt)
	if err != nil {
		return time.Time{}
	}
	return t
}

// compositeKey is the flat identity of a record, "PK_SK".
func compositeKey(pk, sk string) string {
	return pk + "_" + sk
}

func validateKeyPair(pk, sk string) error {
	if strings.TrimSpace(pk) == "" || strings.TrimSpace(sk) == "" {
		return ErrInvalidKey
	}
	return nil
}

// Page is one slice of a listing. NextCursor is empty when the listing is
// exhausted.
type Page struct {
	Items      []Record
	NextCursor string
}

// FormatTime renders t in TimeLayout.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// cloneDocument deep-copies nested maps and slices so callers never share
// mutable state with a backend.
func cloneDocument(d Document) Document {
	if d == nil {
		return nil
	}
	out := make(Document, len(d))
	for k, v := range d {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return map[string]any(cloneDocument(Document(t)))
	case Document:
		return cloneDocument(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	default:
		return v
	}
}

func cloneRecord(r Record) Record {
	r.Payload = cloneDocument(r.Payload)
	return r
}
