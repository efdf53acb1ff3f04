package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
	"github.com/klauspost/compress/zstd"
)

// DefaultCompressAbove is the payload size, in encoded JSON bytes, above
// which Dynamo stores the payload zstd-compressed.
const DefaultCompressAbove = 32 * 1024

// API is the subset of the DynamoDB client used by Dynamo.
type API interface {
	GetItem(ctx context.Context, in *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DeleteItem(ctx context.Context, in *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Query(ctx context.Context, in *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	Scan(ctx context.Context, in *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

var _ API = (*dynamodb.Client)(nil)

// item is the table representation of a Record.
type item struct {
	PK        string         `dynamodbav:"PK"`
	SK        string         `dynamodbav:"SK"`
	Type      string         `dynamodbav:"type"`
	Data      map[string]any `dynamodbav:"data,omitempty"`
	DataZ     []byte         `dynamodbav:"dataZ,omitempty"`
	TTL       int64          `dynamodbav:"ttl"`
	CreatedAt string         `dynamodbav:"createdAt"`
	GSI1PK    string         `dynamodbav:"GSI1PK"`
	GSI1SK    string         `dynamodbav:"GSI1SK"`
}

// DynamoOption configures a Dynamo backend.
type DynamoOption func(*Dynamo)

// WithCompressAbove sets the compression threshold in bytes. Zero or a
// negative value disables compression.
func WithCompressAbove(n int) DynamoOption {
	return func(d *Dynamo) {
		d.compressAbove = n
	}
}

// Dynamo is a Backend over a single DynamoDB table with the GSI1 type index.
type Dynamo struct {
	api           API
	table         string
	compressAbove int
	enc           *zstd.Encoder
	dec           *zstd.Decoder
}

// NewDynamo creates a backend for table using api.
func NewDynamo(api API, table string, opts ...DynamoOption) (*Dynamo, error) {
	if api == nil {
		return nil, errors.New("store: dynamodb client is nil")
	}
	if table == "" {
		return nil, errors.New("store: table name is required")
	}

	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		return nil, fmt.Errorf("store: zstd encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("store: zstd decoder: %w", err)
	}

	d := &Dynamo{
		api:           api,
		table:         table,
		compressAbove: DefaultCompressAbove,
		enc:           enc,
		dec:           dec,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

var _ Backend = (*Dynamo)(nil)

// Execute implements Backend.
func (d *Dynamo) Execute(ctx context.Context, req Request) (Response, error) {
	switch req.Op {
	case OpPut:
		return d.put(ctx, req.Record)
	case OpGet:
		return d.get(ctx, req.PartitionKey, req.SortKey)
	case OpDelete:
		return d.delete(ctx, req.PartitionKey, req.SortKey)
	case OpQueryByType:
		return d.query(ctx, req)
	case OpScan:
		return d.scan(ctx, req)
	default:
		return Response{}, fmt.Errorf("%w: %d", ErrUnknownOp, req.Op)
	}
}

func (d *Dynamo) put(ctx context.Context, r Record) (Response, error) {
	it, err := d.toItem(r)
	if err != nil {
		return Response{}, err
	}
	av, err := attributevalue.MarshalMap(it)
	if err != nil {
		return Response{}, fmt.Errorf("marshalling item: %w", err)
	}
	_, err = d.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(d.table),
		Item:      av,
	})
	if err != nil {
		return Response{}, apiError("PutItem", err)
	}
	return Response{Record: r}, nil
}

func (d *Dynamo) get(ctx context.Context, pk, sk string) (Response, error) {
	out, err := d.api.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(d.table),
		Key:       primaryKey(pk, sk),
	})
	if err != nil {
		return Response{}, apiError("GetItem", err)
	}
	if len(out.Item) == 0 {
		return Response{}, nil
	}
	r, err := d.fromAttributes(out.Item)
	if err != nil {
		return Response{}, err
	}
	return Response{Record: r, Found: true}, nil
}

func (d *Dynamo) delete(ctx context.Context, pk, sk string) (Response, error) {
	out, err := d.api.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:    aws.String(d.table),
		Key:          primaryKey(pk, sk),
		ReturnValues: types.ReturnValueAllOld,
	})
	if err != nil {
		return Response{}, apiError("DeleteItem", err)
	}
	return Response{Found: len(out.Attributes) > 0}, nil
}

func (d *Dynamo) query(ctx context.Context, req Request) (Response, error) {
	start, err := startKey(req.Cursor)
	if err != nil {
		return Response{}, err
	}
	out, err := d.api.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(d.table),
		IndexName:              aws.String(TypeIndex),
		KeyConditionExpression: aws.String("#pk = :type"),
		ExpressionAttributeNames: map[string]string{
			"#pk": AttrIndexPK,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":type": &types.AttributeValueMemberS{Value: req.Type.String()},
		},
		ScanIndexForward:  aws.Bool(false),
		Limit:             aws.Int32(int32(NormalizeLimit(req.Limit))),
		ExclusiveStartKey: start,
	})
	if err != nil {
		return Response{}, apiError("Query", err)
	}
	return d.listResponse(out.Items, out.LastEvaluatedKey)
}

func (d *Dynamo) scan(ctx context.Context, req Request) (Response, error) {
	start, err := startKey(req.Cursor)
	if err != nil {
		return Response{}, err
	}
	out, err := d.api.Scan(ctx, &dynamodb.ScanInput{
		TableName:         aws.String(d.table),
		Limit:             aws.Int32(int32(NormalizeLimit(req.Limit))),
		ExclusiveStartKey: start,
	})
	if err != nil {
		return Response{}, apiError("Scan", err)
	}
	return d.listResponse(out.Items, out.LastEvaluatedKey)
}

func (d *Dynamo) listResponse(items []map[string]types.AttributeValue, last map[string]types.AttributeValue) (Response, error) {
	resp := Response{Items: make([]Record, 0, len(items))}
	for _, av := range items {
		r, err := d.fromAttributes(av)
		if err != nil {
			return Response{}, err
		}
		resp.Items = append(resp.Items, r)
	}
	if len(last) > 0 {
		var c Cursor
		if err := attributevalue.UnmarshalMap(last, &c); err != nil {
			return Response{}, fmt.Errorf("unmarshalling last evaluated key: %w", err)
		}
		resp.Next = c
	}
	return resp, nil
}

func (d *Dynamo) toItem(r Record) (item, error) {
	it := item{
		PK:        r.PartitionKey,
		SK:        r.SortKey,
		Type:      r.Type.String(),
		TTL:       r.ExpiresAt,
		CreatedAt: r.CreatedAt,
		GSI1PK:    r.IndexKey,
		GSI1SK:    r.IndexSort,
	}
	if r.Payload == nil {
		return it, nil
	}

	if d.compressAbove > 0 {
		raw, err := json.Marshal(r.Payload)
		if err != nil {
			return item{}, fmt.Errorf("encoding payload: %w", err)
		}
		if len(raw) > d.compressAbove {
			it.DataZ = d.enc.EncodeAll(raw, nil)
			return it, nil
		}
	}
	it.Data = r.Payload
	return it, nil
}

func (d *Dynamo) fromAttributes(av map[string]types.AttributeValue) (Record, error) {
	var it item
	if err := attributevalue.UnmarshalMap(av, &it); err != nil {
		return Record{}, fmt.Errorf("unmarshalling item: %w", err)
	}

	r := Record{
		PartitionKey: it.PK,
		SortKey:      it.SK,
		Type:         RecordType(it.Type),
		Payload:      Document(it.Data),
		ExpiresAt:    it.TTL,
		CreatedAt:    it.CreatedAt,
		IndexKey:     it.GSI1PK,
		IndexSort:    it.GSI1SK,
	}
	if len(it.DataZ) > 0 {
		raw, err := d.dec.DecodeAll(it.DataZ, nil)
		if err != nil {
			return Record{}, fmt.Errorf("decompressing payload of %s/%s: %w", it.PK, it.SK, err)
		}
		var doc Document
		if err := json.Unmarshal(raw, &doc); err != nil {
			return Record{}, fmt.Errorf("decoding payload of %s/%s: %w", it.PK, it.SK, err)
		}
		r.Payload = doc
	}
	return r, nil
}

func primaryKey(pk, sk string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		AttrPK: &types.AttributeValueMemberS{Value: pk},
		AttrSK: &types.AttributeValueMemberS{Value: sk},
	}
}

func startKey(c Cursor) (map[string]types.AttributeValue, error) {
	if len(c) == 0 {
		return nil, nil
	}
	av, err := attributevalue.MarshalMap(map[string]string(c))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCursor, err)
	}
	return av, nil
}

// apiError annotates err with the DynamoDB error code when there is one.
func apiError(call string, err error) error {
	var ae smithy.APIError
	if errors.As(err, &ae) {
		return fmt.Errorf("dynamodb %s %s: %w", call, ae.ErrorCode(), err)
	}
	return fmt.Errorf("dynamodb %s: %w", call, err)
}
