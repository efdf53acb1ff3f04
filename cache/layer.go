package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jonwraymond/fusionapi/observe"
	"github.com/jonwraymond/fusionapi/store"
)

// HistoryPrefix prefixes the partition key of every history record.
const HistoryPrefix = "HISTORY#"

// Lookup outcomes reported to a LookupRecorder.
const (
	OutcomeHit   = "hit"
	OutcomeMiss  = "miss"
	OutcomeStale = "stale"
	OutcomeError = "error"
)

// LookupRecorder receives the outcome of every ReadCache call.
type LookupRecorder interface {
	RecordCacheLookup(ctx context.Context, tag, outcome string)
}

// Option configures a Layer.
type Option func(*Layer)

// WithLogger sets the logger used for best-effort failures.
func WithLogger(l observe.Logger) Option {
	return func(c *Layer) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithRecorder reports lookup outcomes to r.
func WithRecorder(r LookupRecorder) Option {
	return func(c *Layer) {
		c.recorder = r
	}
}

// WithClock overrides the clock used for expiry and history keys.
func WithClock(now func() time.Time) Option {
	return func(c *Layer) {
		if now != nil {
			c.now = now
		}
	}
}

// Layer reads and writes cache entries and the history log.
//
// Contract:
//   - Concurrency: safe for concurrent use; concurrent writers of one key
//     race and the last write wins.
//   - Errors: store failures on read and cache write are returned; history
//     failures are logged only.
type Layer struct {
	store    store.Store
	policy   Policy
	logger   observe.Logger
	recorder LookupRecorder
	now      func() time.Time
}

// NewLayer creates a Layer over s.
func NewLayer(s store.Store, policy Policy, opts ...Option) (*Layer, error) {
	if s == nil {
		return nil, ErrNilStore
	}
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	c := &Layer{
		store:  s,
		policy: policy,
		logger: observe.NopLogger(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Policy returns the layer's lifetimes.
func (c *Layer) Policy() Policy { return c.policy }

// ReadCache returns the payload cached under key. Absent and expired
// entries are misses; expired entries are left in place.
func (c *Layer) ReadCache(ctx context.Context, key Key) (store.Document, bool, error) {
	if err := ValidateKey(key.String()); err != nil {
		return nil, false, err
	}

	rec, ok, err := c.store.Get(ctx, key.String(), store.SortKeyData)
	switch {
	case err != nil:
		c.record(ctx, key, OutcomeError)
		return nil, false, err
	case !ok:
		c.record(ctx, key, OutcomeMiss)
		return nil, false, nil
	case rec.Expired(c.now()):
		c.record(ctx, key, OutcomeStale)
		return nil, false, nil
	}

	c.record(ctx, key, OutcomeHit)
	return rec.Payload, true, nil
}

// WriteCache stores payload under key for ttl, or for the policy default
// when ttl is zero. Entity keys also get a history record.
func (c *Layer) WriteCache(ctx context.Context, key Key, payload any, ttl time.Duration) error {
	if err := ValidateKey(key.String()); err != nil {
		return err
	}
	doc, err := ToDocument(payload)
	if err != nil {
		return err
	}
	if ttl <= 0 {
		ttl = c.policy.TTLFor(key)
	} else {
		ttl = c.policy.EffectiveTTL(ttl)
	}

	now := c.now()
	_, err = c.store.Put(ctx, store.Record{
		PartitionKey: key.String(),
		SortKey:      store.SortKeyData,
		Type:         store.TypeCache,
		Payload:      doc,
		ExpiresAt:    now.Add(ttl).Unix(),
	})
	if err != nil {
		return fmt.Errorf("cache: write %s: %w", key, err)
	}

	if key.Individual() {
		c.appendHistory(ctx, key, doc, now)
	}
	return nil
}

func (c *Layer) appendHistory(ctx context.Context, key Key, doc store.Document, now time.Time) {
	_, err := c.store.Put(ctx, store.Record{
		PartitionKey: HistoryPrefix + strconv.FormatInt(now.UnixMilli(), 10),
		SortKey:      key.String(),
		Type:         store.TypeHistory,
		Payload:      doc,
		ExpiresAt:    now.Add(c.policy.HistoryRetention).Unix(),
	})
	if err != nil {
		c.logger.Warn(ctx, "history write failed",
			observe.Field{Key: "cache.key", Value: key.String()},
			observe.Err(err),
		)
	}
}

// ListHistory returns the payloads of the most recent history records,
// newest first.
func (c *Layer) ListHistory(ctx context.Context, limit int) ([]store.Document, error) {
	page, err := c.HistoryPage(ctx, limit, "")
	if err != nil {
		return nil, err
	}
	docs := make([]store.Document, 0, len(page.Entries))
	for _, e := range page.Entries {
		docs = append(docs, e.Payload)
	}
	return docs, nil
}

// HistoryEntry is one history record.
type HistoryEntry struct {
	ID        string         `json:"id"`
	Key       string         `json:"cacheKey"`
	Payload   store.Document `json:"data"`
	CreatedAt string         `json:"createdAt"`
}

// HistoryPage is one page of history, newest first.
type HistoryPage struct {
	Entries    []HistoryEntry `json:"items"`
	NextCursor string         `json:"nextToken,omitempty"`
}

// HistoryPage lists history records starting at cursor.
func (c *Layer) HistoryPage(ctx context.Context, limit int, cursor string) (HistoryPage, error) {
	page, err := c.store.QueryByType(ctx, store.TypeHistory, limit, cursor)
	if err != nil {
		return HistoryPage{}, err
	}
	out := HistoryPage{
		Entries:    make([]HistoryEntry, 0, len(page.Items)),
		NextCursor: page.NextCursor,
	}
	for _, r := range page.Items {
		out.Entries = append(out.Entries, HistoryEntry{
			ID:        strings.TrimPrefix(r.PartitionKey, HistoryPrefix),
			Key:       r.SortKey,
			Payload:   r.Payload,
			CreatedAt: r.CreatedAt,
		})
	}
	return out, nil
}

func (c *Layer) record(ctx context.Context, key Key, outcome string) {
	if c.recorder != nil {
		c.recorder.RecordCacheLookup(ctx, key.Tag, outcome)
	}
}

// ToDocument converts a JSON-encodable value into a store.Document.
func ToDocument(v any) (store.Document, error) {
	switch d := v.(type) {
	case store.Document:
		return d, nil
	case map[string]any:
		return store.Document(d), nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncode, err)
	}
	var doc store.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncode, err)
	}
	return doc, nil
}

// Decode fills v from a cached document.
func Decode(doc store.Document, v any) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("cache: decode: %w", err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("cache: decode: %w", err)
	}
	return nil
}
