// Package cache provides the byte caches used to memoize layout results.
//
// Three backends are available: [NullCache] (caching disabled), [FileCache]
// (one JSON file per entry, used by the CLI) and [RedisCache] (shared by
// HTTP service replicas). [Open] picks a backend from [Options].
//
// Keys are produced by a [Keyer] so that callers never hand-build them:
//
//	keyer := cache.NewDefaultKeyer()
//	key := keyer.LayoutKey(graphHash, cache.LayoutKeyOpts{Algorithm: "layered"})
//	data, hit, err := c.Get(ctx, key)
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/matzehuels/cardgraph/pkg/observability"
)

// Cache stores opaque byte values under string keys.
//
// A miss is reported as hit == false with a nil error. Implementations
// must be safe for concurrent use.
type Cache interface {
	Get(ctx context.Context, key string) (data []byte, hit bool, err error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// GetJSON reads key and decodes it into v. keyType labels the lookup for
// observability hooks ("layout", "route", ...). An entry that no longer
// decodes is dropped and reported as a miss.
func GetJSON(ctx context.Context, c Cache, keyType, key string, v any) (bool, error) {
	data, hit, err := c.Get(ctx, key)
	if err != nil {
		return false, err
	}
	if !hit {
		observability.Cache().OnCacheMiss(ctx, keyType)
		return false, nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		_ = c.Delete(ctx, key)
		observability.Cache().OnCacheMiss(ctx, keyType)
		return false, nil
	}
	observability.Cache().OnCacheHit(ctx, keyType)
	return true, nil
}

// SetJSON encodes v and stores it under key.
func SetJSON(ctx context.Context, c Cache, keyType, key string, v any, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s entry: %w", keyType, err)
	}
	if err := c.Set(ctx, key, data, ttl); err != nil {
		return err
	}
	observability.Cache().OnCacheSet(ctx, keyType, len(data))
	return nil
}
