package cache

import (
	"errors"
	"strings"
)

// MaxKeyLength is the maximum allowed length for a cache key.
const MaxKeyLength = 512

// Sentinel errors for cache operations.
var (
	ErrNilStore   = errors.New("cache: store is nil")
	ErrInvalidKey = errors.New("cache: key is invalid")
	ErrKeyTooLong = errors.New("cache: key exceeds max length")
	ErrEncode     = errors.New("cache: payload is not a JSON object")
)

// Key identifies a cache entry. The rendered form is "TAG#ID", or "TAG"
// when ID is empty.
type Key struct {
	Tag string
	ID  string

	aggregate bool
}

// EntityKey returns a key naming one identified resource. Writes under an
// entity key are recorded in the history log.
func EntityKey(tag, id string) Key {
	return Key{Tag: tag, ID: id}
}

// AggregateKey returns a key for a collection or page. Aggregate keys are
// never recorded in the history log.
func AggregateKey(tag, id string) Key {
	return Key{Tag: tag, ID: id, aggregate: true}
}

// String renders the key.
func (k Key) String() string {
	if k.ID == "" {
		return k.Tag
	}
	return k.Tag + "#" + k.ID
}

// Individual reports whether k names a single identified resource.
func (k Key) Individual() bool {
	return !k.aggregate && k.ID != ""
}

// ParseKey is the inverse of String for entity keys.
func ParseKey(s string) Key {
	tag, id, ok := strings.Cut(s, "#")
	if !ok {
		return AggregateKey(s, "")
	}
	return EntityKey(tag, id)
}

// ValidateKey checks if a key is valid for caching.
func ValidateKey(key string) error {
	if key == "" || strings.TrimSpace(key) == "" {
		return ErrInvalidKey
	}
	if len(key) > MaxKeyLength {
		return ErrKeyTooLong
	}
	// Reject keys with newlines or carriage returns
	if strings.ContainsAny(key, "\n\r") {
		return ErrInvalidKey
	}
	return nil
}
