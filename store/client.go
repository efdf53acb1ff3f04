package store

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"go.opentelemetry.io/contrib/instrumentation/github.com/aws/aws-sdk-go-v2/otelaws"
)

type clientConfig struct {
	region      string
	endpoint    string
	credentials aws.CredentialsProvider
}

// ClientOption configures NewDynamoClient.
type ClientOption func(*clientConfig)

// WithRegion overrides the AWS region resolved from the environment.
func WithRegion(region string) ClientOption {
	return func(c *clientConfig) {
		c.region = region
	}
}

// WithEndpoint points the client at a non-AWS endpoint such as DynamoDB Local.
func WithEndpoint(url string) ClientOption {
	return func(c *clientConfig) {
		c.endpoint = url
	}
}

// WithStaticCredentials uses fixed credentials instead of the default chain.
func WithStaticCredentials(accessKey, secretKey string) ClientOption {
	return func(c *clientConfig) {
		c.credentials = credentials.NewStaticCredentialsProvider(accessKey, secretKey, "")
	}
}

// NewDynamoClient loads the default AWS configuration and returns a
// DynamoDB client instrumented with OpenTelemetry.
func NewDynamoClient(ctx context.Context, opts ...ClientOption) (*dynamodb.Client, error) {
	var cc clientConfig
	for _, opt := range opts {
		opt(&cc)
	}

	var loadOpts []func(*config.LoadOptions) error
	if cc.region != "" {
		loadOpts = append(loadOpts, config.WithRegion(cc.region))
	}
	if cc.credentials != nil {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(cc.credentials))
	}

	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}
	otelaws.AppendMiddlewares(&cfg.APIOptions)

	return dynamodb.NewFromConfig(cfg, func(o *dynamodb.Options) {
		if cc.endpoint != "" {
			o.BaseEndpoint = aws.String(cc.endpoint)
		}
	}), nil
}
