package store

import (
	"context"
	"errors"
	"time"
)

// Listing limits.
const (
	DefaultLimit = 10
	MaxLimit     = 100
)

// Store is the key-value contract the cache and the orchestrator depend on.
//
// Contract:
//   - Concurrency: implementations must be safe for concurrent use.
//   - Context: every method honors cancellation and deadlines.
//   - Errors: backend failures match ErrUnavailable; absence is not an error.
//   - Ownership: returned records are copies; callers may mutate them.
type Store interface {
	// Put upserts r, stamping CreatedAt and the index attributes.
	Put(ctx context.Context, r Record) (Record, error)

	// Get returns the record at (pk, sk), or false when there is none.
	Get(ctx context.Context, pk, sk string) (Record, bool, error)

	// QueryByType lists records of one type, newest first.
	QueryByType(ctx context.Context, t RecordType, limit int, cursor string) (Page, error)

	// Scan lists records of all types in storage order.
	Scan(ctx context.Context, limit int, cursor string) (Page, error)

	// Delete removes the record at (pk, sk) and reports whether it existed.
	Delete(ctx context.Context, pk, sk string) (bool, error)
}

// Option configures a KV.
type Option func(*KV)

// WithClock overrides the clock used to stamp CreatedAt.
func WithClock(now func() time.Time) Option {
	return func(kv *KV) {
		if now != nil {
			kv.now = now
		}
	}
}

// KV implements Store on top of a Backend.
type KV struct {
	backend Backend
	now     func() time.Time
}

// New creates a KV over backend.
func New(backend Backend, opts ...Option) *KV {
	kv := &KV{backend: backend, now: time.Now}
	for _, opt := range opts {
		opt(kv)
	}
	return kv
}

var _ Store = (*KV)(nil)

// Put implements Store.
func (kv *KV) Put(ctx context.Context, r Record) (Record, error) {
	if err := validateKeyPair(r.PartitionKey, r.SortKey); err != nil {
		return Record{}, err
	}
	if !r.Type.Valid() {
		return Record{}, ErrInvalidType
	}

	r.CreatedAt = FormatTime(kv.now())
	r.IndexKey = r.Type.String()
	r.IndexSort = r.CreatedAt
	r.Payload = cloneDocument(r.Payload)

	if _, err := kv.exec(ctx, Request{Op: OpPut, Record: r}); err != nil {
		return Record{}, err
	}
	return r, nil
}

// Get implements Store.
func (kv *KV) Get(ctx context.Context, pk, sk string) (Record, bool, error) {
	if err := validateKeyPair(pk, sk); err != nil {
		return Record{}, false, err
	}
	resp, err := kv.exec(ctx, Request{Op: OpGet, PartitionKey: pk, SortKey: sk})
	if err != nil || !resp.Found {
		return Record{}, false, err
	}
	return resp.Record, true, nil
}

// QueryByType implements Store.
func (kv *KV) QueryByType(ctx context.Context, t RecordType, limit int, cursor string) (Page, error) {
	if !t.Valid() {
		return Page{}, ErrInvalidType
	}
	return kv.list(ctx, Request{Op: OpQueryByType, Type: t}, limit, cursor)
}

// Scan implements Store.
func (kv *KV) Scan(ctx context.Context, limit int, cursor string) (Page, error) {
	return kv.list(ctx, Request{Op: OpScan}, limit, cursor)
}

// Delete implements Store.
func (kv *KV) Delete(ctx context.Context, pk, sk string) (bool, error) {
	if err := validateKeyPair(pk, sk); err != nil {
		return false, err
	}
	resp, err := kv.exec(ctx, Request{Op: OpDelete, PartitionKey: pk, SortKey: sk})
	if err != nil {
		return false, err
	}
	return resp.Found, nil
}

func (kv *KV) list(ctx context.Context, req Request, limit int, cursor string) (Page, error) {
	c, err := DecodeCursor(cursor)
	if err != nil {
		return Page{}, err
	}
	req.Limit = NormalizeLimit(limit)
	req.Cursor = c

	resp, err := kv.exec(ctx, req)
	if err != nil {
		return Page{}, err
	}
	return Page{Items: resp.Items, NextCursor: EncodeCursor(resp.Next)}, nil
}

func (kv *KV) exec(ctx context.Context, req Request) (Response, error) {
	if err := ctx.Err(); err != nil {
		return Response{}, err
	}
	resp, err := kv.backend.Execute(ctx, req)
	if err != nil {
		if errors.Is(err, ErrUnknownOp) || errors.Is(err, ErrInvalidCursor) {
			return Response{}, err
		}
		return Response{}, unavailable(req.Op, err)
	}
	return resp, nil
}

// NormalizeLimit applies DefaultLimit to non-positive values and caps at MaxLimit.
func NormalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}
