package store

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
)

// Cursor is a backend's last-evaluated key: attribute name to string value.
type Cursor map[string]string

// EncodeCursor renders c as base64(JSON). A nil or empty cursor encodes to "".
func EncodeCursor(c Cursor) string {
	if len(c) == 0 {
		return ""
	}
	data, err := json.Marshal(c)
	if err != nil {
		return ""
	}
	return base64.StdEncoding.EncodeToString(data)
}

// DecodeCursor parses a value produced by EncodeCursor. The empty string
// decodes to a nil cursor.
func DecodeCursor(s string) (Cursor, error) {
	if s == "" {
		return nil, nil
	}
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCursor, err)
	}
	var c Cursor
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCursor, err)
	}
	if c[AttrPK] == "" || c[AttrSK] == "" {
		return nil, fmt.Errorf("%w: missing key attributes", ErrInvalidCursor)
	}
	return c, nil
}

func cursorFor(r Record, indexed bool) Cursor {
	c := Cursor{AttrPK: r.PartitionKey, AttrSK: r.SortKey}
	if indexed {
		c[AttrIndexPK] = r.IndexKey
		c[AttrIndexSK] = r.IndexSort
	}
	return c
}
