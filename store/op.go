package store

import "context"

// Op enumerates the operations a Backend executes.
type Op int

const (
	OpPut Op = iota + 1
	OpGet
	OpQueryByType
	OpScan
	OpDelete
)

func (o Op) String() string {
	switch o {
	case OpPut:
		return "put"
	case OpGet:
		return "get"
	case OpQueryByType:
		return "query"
	case OpScan:
		return "scan"
	case OpDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// Request is a single backend operation. Only the fields relevant to Op are
// read: Record for OpPut, PartitionKey/SortKey for OpGet and OpDelete, Type
// for OpQueryByType, and Limit/Cursor for both listings.
type Request struct {
	Op           Op
	Record       Record
	PartitionKey string
	SortKey      string
	Type         RecordType
	Limit        int
	Cursor       Cursor
}

// Response carries the result of a Request.
type Response struct {
	Record Record // OpGet, OpPut
	Found  bool   // OpGet, OpDelete
	Items  []Record
	Next   Cursor // listings; nil when exhausted
}

// Backend executes store operations against one physical storage engine.
//
// Contract:
//   - Concurrency: implementations must be safe for concurrent use.
//   - Context: implementations must honor cancellation and deadlines.
//   - Errors: a missing record is not an error (Found is false). Any
//     returned error is reported to callers as ErrUnavailable.
type Backend interface {
	Execute(ctx context.Context, req Request) (Response, error)
}
