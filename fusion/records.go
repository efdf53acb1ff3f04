package fusion

import (
	"context"
	"errors"
	"fmt"

	"github.com/jonwraymond/fusionapi/cache"
	"github.com/jonwraymond/fusionapi/observe"
	"github.com/jonwraymond/fusionapi/store"
)

// CustomRecord acknowledges a stored custom document.
type CustomRecord struct {
	ID        string         `json:"id"`
	CreatedAt string         `json:"createdAt"`
	Data      store.Document `json:"data"`
}

// StoreCustomData saves a caller-supplied document under a fresh id with
// the history retention period.
func (o *Orchestrator) StoreCustomData(ctx context.Context, doc store.Document) (CustomRecord, error) {
	if len(doc) == 0 {
		return CustomRecord{}, fmt.Errorf("%w: custom data must be a non-empty object", ErrInvalidInput)
	}
	id := o.newID()

	op := observe.Operation{Name: "store_custom", Target: id}
	return observe.Observe(ctx, o.mw, op, func(ctx context.Context) (CustomRecord, error) {
		rec, err := o.store.Put(ctx, store.Record{
			PartitionKey: TagCustom + "#" + id,
			SortKey:      store.SortKeyMetadata,
			Type:         store.TypeCustomData,
			Payload:      doc,
			ExpiresAt:    o.now().Add(o.policy.HistoryRetention).Unix(),
		})
		if err != nil {
			return CustomRecord{}, fmt.Errorf("fusion: store custom data: %w", err)
		}
		return CustomRecord{ID: id, CreatedAt: rec.CreatedAt, Data: rec.Payload}, nil
	})
}

// History returns one page of the history log, newest first. Limit
// defaults to 10 and is capped at 100.
func (o *Orchestrator) History(ctx context.Context, limit int, cursor string) (cache.HistoryPage, error) {
	limit = store.NormalizeLimit(limit)

	op := observe.Operation{Name: "history"}
	return observe.Observe(ctx, o.mw, op, func(ctx context.Context) (cache.HistoryPage, error) {
		page, err := o.cache.HistoryPage(ctx, limit, cursor)
		if errors.Is(err, store.ErrInvalidCursor) {
			return cache.HistoryPage{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
		}
		return page, err
	})
}

// InspectedRecord is the JSON view of a stored record.
type InspectedRecord struct {
	PartitionKey string         `json:"PK"`
	SortKey      string         `json:"SK"`
	Type         string         `json:"type"`
	Data         store.Document `json:"data,omitempty"`
	ExpiresAt    int64          `json:"ttl"`
	CreatedAt    string         `json:"createdAt"`
	Expired      bool           `json:"expired"`
}

// Snapshot is a debugging view of the store contents.
type Snapshot struct {
	Records      []InspectedRecord    `json:"records"`
	RecordCount  int                  `json:"recordCount"`
	History      []cache.HistoryEntry `json:"history"`
	HistoryCount int                  `json:"historyCount"`
	Timestamp    string               `json:"timestamp"`
}

// Inspect returns up to limit records from a store scan together with the
// most recent history entries. Limit defaults to 100 and is capped at 100.
func (o *Orchestrator) Inspect(ctx context.Context, limit int) (Snapshot, error) {
	if limit <= 0 {
		limit = store.MaxLimit
	}
	limit = store.NormalizeLimit(limit)

	op := observe.Operation{Name: "inspect"}
	return observe.Observe(ctx, o.mw, op, func(ctx context.Context) (Snapshot, error) {
		scan, err := o.store.Scan(ctx, limit, "")
		if err != nil {
			return Snapshot{}, fmt.Errorf("fusion: inspect scan: %w", err)
		}
		hist, err := o.cache.HistoryPage(ctx, limit, "")
		if err != nil {
			return Snapshot{}, fmt.Errorf("fusion: inspect history: %w", err)
		}

		now := o.now()
		records := make([]InspectedRecord, 0, len(scan.Items))
		for _, r := range scan.Items {
			records = append(records, InspectedRecord{
				PartitionKey: r.PartitionKey,
				SortKey:      r.SortKey,
				Type:         r.Type.String(),
				Data:         r.Payload,
				ExpiresAt:    r.ExpiresAt,
				CreatedAt:    r.CreatedAt,
				Expired:      r.Expired(now),
			})
		}
		return Snapshot{
			Records:      records,
			RecordCount:  len(records),
			History:      hist.Entries,
			HistoryCount: len(hist.Entries),
			Timestamp:    store.FormatTime(now),
		}, nil
	})
}
