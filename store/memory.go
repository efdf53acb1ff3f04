package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Memory is an in-process Backend. Records are kept in a map keyed by
// "PK_SK"; listings sort on demand. It is intended for tests and local runs.
type Memory struct {
	mu    sync.RWMutex
	items map[string]Record
}

// NewMemory creates an empty in-memory backend.
func NewMemory() *Memory {
	return &Memory{items: make(map[string]Record)}
}

var _ Backend = (*Memory)(nil)

// Len returns the number of stored records.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}

// Execute implements Backend.
func (m *Memory) Execute(ctx context.Context, req Request) (Response, error) {
	if err := ctx.Err(); err != nil {
		return Response{}, err
	}

	switch req.Op {
	case OpPut:
		m.mu.Lock()
		m.items[compositeKey(req.Record.PartitionKey, req.Record.SortKey)] = cloneRecord(req.Record)
		m.mu.Unlock()
		return Response{Record: req.Record}, nil

	case OpGet:
		m.mu.RLock()
		r, ok := m.items[compositeKey(req.PartitionKey, req.SortKey)]
		m.mu.RUnlock()
		if !ok {
			return Response{}, nil
		}
		return Response{Record: cloneRecord(r), Found: true}, nil

	case OpDelete:
		key := compositeKey(req.PartitionKey, req.SortKey)
		m.mu.Lock()
		_, ok := m.items[key]
		delete(m.items, key)
		m.mu.Unlock()
		return Response{Found: ok}, nil

	case OpQueryByType:
		matches := m.collect(func(r Record) bool { return r.IndexKey == req.Type.String() })
		sort.Slice(matches, func(i, j int) bool { return newerFirst(matches[i], matches[j]) })
		return paginate(matches, req, true, func(r Record, c Cursor) bool {
			return newerFirst(cursorRecord(c), r)
		}), nil

	case OpScan:
		all := m.collect(func(Record) bool { return true })
		sort.Slice(all, func(i, j int) bool {
			return compositeKey(all[i].PartitionKey, all[i].SortKey) < compositeKey(all[j].PartitionKey, all[j].SortKey)
		})
		return paginate(all, req, false, func(r Record, c Cursor) bool {
			return compositeKey(r.PartitionKey, r.SortKey) > compositeKey(c[AttrPK], c[AttrSK])
		}), nil

	default:
		return Response{}, fmt.Errorf("%w: %d", ErrUnknownOp, req.Op)
	}
}

func (m *Memory) collect(keep func(Record) bool) []Record {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Record, 0, len(m.items))
	for _, r := range m.items {
		if keep(r) {
			out = append(out, cloneRecord(r))
		}
	}
	return out
}

// newerFirst orders by IndexSort descending, breaking ties on the primary
// key descending so the order is total.
func newerFirst(a, b Record) bool {
	if a.IndexSort != b.IndexSort {
		return a.IndexSort > b.IndexSort
	}
	if a.PartitionKey != b.PartitionKey {
		return a.PartitionKey > b.PartitionKey
	}
	return a.SortKey > b.SortKey
}

func cursorRecord(c Cursor) Record {
	return Record{
		PartitionKey: c[AttrPK],
		SortKey:      c[AttrSK],
		IndexKey:     c[AttrIndexPK],
		IndexSort:    c[AttrIndexSK],
	}
}

// paginate skips items up to and including the cursor position, then
// returns at most req.Limit items. Next is set only if items remain.
func paginate(sorted []Record, req Request, indexed bool, after func(Record, Cursor) bool) Response {
	start := 0
	if req.Cursor != nil {
		start = len(sorted)
		for i, r := range sorted {
			if after(r, req.Cursor) {
				start = i
				break
			}
		}
	}

	end := start + NormalizeLimit(req.Limit)
	if end > len(sorted) {
		end = len(sorted)
	}

	resp := Response{Items: sorted[start:end]}
	if end < len(sorted) && end > start {
		resp.Next = cursorFor(sorted[end-1], indexed)
	}
	return resp
}
