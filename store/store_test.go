package store

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stepClock returns a clock that advances by step on every call.
func stepClock(start time.Time, step time.Duration) func() time.Time {
	t := start.Add(-step)
	return func() time.Time {
		t = t.Add(step)
		return t
	}
}

var epoch = time.Date(2024, 5, 4, 12, 0, 0, 0, time.UTC)

func newTestKV() *KV {
	return New(NewMemory(), WithClock(stepClock(epoch, time.Millisecond)))
}

type failingBackend struct{ err error }

func (f failingBackend) Execute(context.Context, Request) (Response, error) {
	return Response{}, f.err
}

// TestKV_PutIsIdempotentUpsert verifies a second Put replaces the first.
func TestKV_PutIsIdempotentUpsert(t *testing.T) {
	ctx := context.Background()
	kv := newTestKV()

	_, err := kv.Put(ctx, Record{PartitionKey: "CHARACTER#1", SortKey: SortKeyData, Type: TypeCache, Payload: Document{"v": 1.0}})
	require.NoError(t, err)
	_, err = kv.Put(ctx, Record{PartitionKey: "CHARACTER#1", SortKey: SortKeyData, Type: TypeCache, Payload: Document{"v": 2.0}})
	require.NoError(t, err)

	got, ok, err := kv.Get(ctx, "CHARACTER#1", SortKeyData)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 2.0, got.Payload["v"])

	page, err := kv.Scan(ctx, 10, "")
	require.NoError(t, err)
	assert.Len(t, page.Items, 1)
}

// TestKV_PutDerivesIndexAttributes verifies caller-provided index values are overwritten.
func TestKV_PutDerivesIndexAttributes(t *testing.T) {
	kv := newTestKV()

	r, err := kv.Put(context.Background(), Record{
		PartitionKey: "HISTORY#1",
		SortKey:      "CHARACTER#1",
		Type:         TypeHistory,
		IndexKey:     "BOGUS",
		IndexSort:    "yesterday",
		CreatedAt:    "whenever",
	})
	require.NoError(t, err)

	assert.Equal(t, "2024-05-04T12:00:00.000Z", r.CreatedAt)
	assert.Equal(t, "HISTORY", r.IndexKey)
	assert.Equal(t, r.CreatedAt, r.IndexSort)
	assert.Equal(t, epoch, r.CreatedTime())
}

// TestKV_PutValidation verifies rejected records never reach the backend.
func TestKV_PutValidation(t *testing.T) {
	tests := []struct {
		name string
		rec  Record
		want error
	}{
		{"missing pk", Record{SortKey: "DATA", Type: TypeCache}, ErrInvalidKey},
		{"blank sk", Record{PartitionKey: "A", SortKey: "  ", Type: TypeCache}, ErrInvalidKey},
		{"unknown type", Record{PartitionKey: "A", SortKey: "DATA", Type: "OTHER"}, ErrInvalidType},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mem := NewMemory()
			_, err := New(mem).Put(context.Background(), tt.rec)
			assert.ErrorIs(t, err, tt.want)
			assert.Zero(t, mem.Len())
		})
	}
}

// TestKV_GetMissing verifies absence is not an error.
func TestKV_GetMissing(t *testing.T) {
	_, ok, err := newTestKV().Get(context.Background(), "CHARACTER#404", SortKeyData)
	require.NoError(t, err)
	assert.False(t, ok)
}

// TestKV_ReturnedRecordsAreCopies verifies callers cannot mutate stored payloads.
func TestKV_ReturnedRecordsAreCopies(t *testing.T) {
	ctx := context.Background()
	kv := newTestKV()
	payload := Document{"nested": map[string]any{"k": "v"}}
	_, err := kv.Put(ctx, Record{PartitionKey: "A", SortKey: "DATA", Type: TypeCache, Payload: payload})
	require.NoError(t, err)

	payload["nested"].(map[string]any)["k"] = "changed"
	got, _, err := kv.Get(ctx, "A", "DATA")
	require.NoError(t, err)
	got.Payload["extra"] = true

	again, _, err := kv.Get(ctx, "A", "DATA")
	require.NoError(t, err)
	assert.Equal(t, "v", again.Payload["nested"].(map[string]any)["k"])
	assert.NotContains(t, again.Payload, "extra")
}

// TestKV_Delete verifies Delete reports whether the record existed.
func TestKV_Delete(t *testing.T) {
	ctx := context.Background()
	kv := newTestKV()
	_, err := kv.Put(ctx, Record{PartitionKey: "A", SortKey: "DATA", Type: TypeCache})
	require.NoError(t, err)

	existed, err := kv.Delete(ctx, "A", "DATA")
	require.NoError(t, err)
	assert.True(t, existed)

	existed, err = kv.Delete(ctx, "A", "DATA")
	require.NoError(t, err)
	assert.False(t, existed)
}

// TestKV_QueryByTypeNewestFirst verifies ordering and cursor round trip.
func TestKV_QueryByTypeNewestFirst(t *testing.T) {
	ctx := context.Background()
	kv := newTestKV()

	for i := 1; i <= 5; i++ {
		_, err := kv.Put(ctx, Record{PartitionKey: fmt.Sprintf("HISTORY#%d", i), SortKey: "CHARACTER#1", Type: TypeHistory})
		require.NoError(t, err)
	}
	_, err := kv.Put(ctx, Record{PartitionKey: "CHARACTER#1", SortKey: SortKeyData, Type: TypeCache})
	require.NoError(t, err)

	var seen []string
	cursor := ""
	for pages := 0; ; pages++ {
		require.Less(t, pages, 10, "pagination did not terminate")
		page, err := kv.QueryByType(ctx, TypeHistory, 2, cursor)
		require.NoError(t, err)
		for _, r := range page.Items {
			assert.Equal(t, TypeHistory, r.Type)
			seen = append(seen, r.PartitionKey)
		}
		if page.NextCursor == "" {
			break
		}
		cursor = page.NextCursor
	}

	assert.Equal(t, []string{"HISTORY#5", "HISTORY#4", "HISTORY#3", "HISTORY#2", "HISTORY#1"}, seen)
}

// TestKV_QueryByTypeExactPage verifies no cursor is returned when a page ends the listing.
func TestKV_QueryByTypeExactPage(t *testing.T) {
	ctx := context.Background()
	kv := newTestKV()
	for i := 0; i < 2; i++ {
		_, err := kv.Put(ctx, Record{PartitionKey: fmt.Sprintf("HISTORY#%d", i), SortKey: "X", Type: TypeHistory})
		require.NoError(t, err)
	}

	page, err := kv.QueryByType(ctx, TypeHistory, 2, "")
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)
	assert.Empty(t, page.NextCursor)
}

// TestKV_QueryByTypeTieBreak verifies records sharing a timestamp are all returned once.
func TestKV_QueryByTypeTieBreak(t *testing.T) {
	ctx := context.Background()
	kv := New(NewMemory(), WithClock(func() time.Time { return epoch }))
	for _, pk := range []string{"HISTORY#a", "HISTORY#c", "HISTORY#b"} {
		_, err := kv.Put(ctx, Record{PartitionKey: pk, SortKey: "X", Type: TypeHistory})
		require.NoError(t, err)
	}

	first, err := kv.QueryByType(ctx, TypeHistory, 1, "")
	require.NoError(t, err)
	second, err := kv.QueryByType(ctx, TypeHistory, 5, first.NextCursor)
	require.NoError(t, err)

	require.Len(t, first.Items, 1)
	assert.Equal(t, "HISTORY#c", first.Items[0].PartitionKey)
	require.Len(t, second.Items, 2)
	assert.Equal(t, "HISTORY#b", second.Items[0].PartitionKey)
	assert.Equal(t, "HISTORY#a", second.Items[1].PartitionKey)
}

// TestKV_ScanPagination verifies Scan visits every record once in key order.
func TestKV_ScanPagination(t *testing.T) {
	ctx := context.Background()
	kv := newTestKV()
	keys := []string{"C", "A", "B"}
	for _, k := range keys {
		_, err := kv.Put(ctx, Record{PartitionKey: k, SortKey: "DATA", Type: TypeCache})
		require.NoError(t, err)
	}

	first, err := kv.Scan(ctx, 2, "")
	require.NoError(t, err)
	require.NotEmpty(t, first.NextCursor)
	second, err := kv.Scan(ctx, 2, first.NextCursor)
	require.NoError(t, err)

	got := []string{first.Items[0].PartitionKey, first.Items[1].PartitionKey, second.Items[0].PartitionKey}
	assert.Equal(t, []string{"A", "B", "C"}, got)
	assert.Empty(t, second.NextCursor)
}

// TestKV_InvalidCursor verifies foreign cursors are rejected.
func TestKV_InvalidCursor(t *testing.T) {
	kv := newTestKV()
	for _, cursor := range []string{"%%%", "bm90IGpzb24=", EncodeCursor(Cursor{"other": "x"})} {
		_, err := kv.Scan(context.Background(), 10, cursor)
		assert.ErrorIs(t, err, ErrInvalidCursor, cursor)
	}
}

// TestKV_BackendErrorsAreUnavailable verifies backend failures keep their cause.
func TestKV_BackendErrorsAreUnavailable(t *testing.T) {
	cause := errors.New("connection refused")
	kv := New(failingBackend{err: cause})
	ctx := context.Background()

	_, _, err := kv.Get(ctx, "A", "DATA")
	require.ErrorIs(t, err, ErrUnavailable)
	assert.ErrorIs(t, err, cause)

	var ue *UnavailableError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, OpGet, ue.Op)
	assert.Same(t, cause, errors.Unwrap(err))

	_, err = kv.Put(ctx, Record{PartitionKey: "A", SortKey: "DATA", Type: TypeCache})
	assert.ErrorIs(t, err, ErrUnavailable)
	_, err = kv.QueryByType(ctx, TypeHistory, 1, "")
	assert.ErrorIs(t, err, ErrUnavailable)
	_, err = kv.Delete(ctx, "A", "DATA")
	assert.ErrorIs(t, err, ErrUnavailable)
}

// TestKV_CanceledContext verifies canceled calls do not reach the backend.
func TestKV_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	mem := NewMemory()
	_, err := New(mem).Put(ctx, Record{PartitionKey: "A", SortKey: "DATA", Type: TypeCache})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, mem.Len())
}

// TestNormalizeLimit verifies defaulting and capping.
func TestNormalizeLimit(t *testing.T) {
	tests := []struct{ in, want int }{
		{0, DefaultLimit},
		{-3, DefaultLimit},
		{1, 1},
		{100, 100},
		{1000, MaxLimit},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeLimit(tt.in), "NormalizeLimit(%d)", tt.in)
	}
}

// TestRecord_Expired verifies a record is dead from its expiry second on.
func TestRecord_Expired(t *testing.T) {
	r := Record{ExpiresAt: epoch.Unix()}
	assert.False(t, r.Expired(epoch.Add(-time.Second)))
	assert.True(t, r.Expired(epoch))
	assert.True(t, r.Expired(epoch.Add(time.Second)))
}

// TestMemory_UnknownOp verifies unsupported operations are rejected.
func TestMemory_UnknownOp(t *testing.T) {
	_, err := NewMemory().Execute(context.Background(), Request{Op: Op(99)})
	assert.ErrorIs(t, err, ErrUnknownOp)
}
