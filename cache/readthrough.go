package cache

import (
	"context"
	"time"

	"github.com/jonwraymond/fusionapi/observe"
)

// LoadFunc produces the value for a cache miss.
type LoadFunc[T any] func(ctx context.Context) (T, error)

// ReadThrough returns the value cached under key, or runs load on a miss
// and writes its result back for ttl. The second return value reports a
// cache hit.
//
// Read failures are treated as misses and write failures are logged, so
// the cache never turns a successful load into an error. Errors from load
// are not cached.
func ReadThrough[T any](ctx context.Context, c *Layer, key Key, ttl time.Duration, load LoadFunc[T]) (T, bool, error) {
	var zero T

	doc, ok, err := c.ReadCache(ctx, key)
	if err != nil {
		c.logger.Warn(ctx, "cache read failed, treating as miss",
			observe.Field{Key: "cache.key", Value: key.String()},
			observe.Err(err),
		)
	}
	if ok {
		var cached T
		if err := Decode(doc, &cached); err == nil {
			return cached, true, nil
		}
	}

	v, err := load(ctx)
	if err != nil {
		return zero, false, err
	}

	if err := c.WriteCache(ctx, key, v, ttl); err != nil {
		c.logger.Warn(ctx, "cache write failed",
			observe.Field{Key: "cache.key", Value: key.String()},
			observe.Err(err),
		)
	}
	return v, false, nil
}
