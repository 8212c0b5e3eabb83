// ABOUTME: Caching schema provider keyed by application and resource.
// ABOUTME: Wraps any schema fetcher with a byte cache (memory, SQLite or Redis) and hint overrides.

package backend

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/pyconkr/console/internal/schema"
)

// SchemaFetcher returns the schema for a resource.
type SchemaFetcher interface {
	FetchSchema(ctx context.Context, app, resource string) (SchemaInfo, error)
}

// Cache stores encoded schema documents.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// HintOverrides returns local hints layered over the backend's, keyed by app
// then resource.
type HintOverrides map[string]map[string]schema.LayoutHints

// For returns the override for a resource, if any.
func (o HintOverrides) For(app, resource string) (schema.LayoutHints, bool) {
	if o == nil {
		return schema.LayoutHints{}, false
	}
	h, ok := o[app][resource]
	return h, ok
}

// CachedSchemaProvider serves schemas from cache before asking the fetcher.
// Cache failures are logged and fall through to the fetcher. Concurrent misses
// for the same key share one fetch.
type CachedSchemaProvider struct {
	fetcher   SchemaFetcher
	cache     Cache
	ttl       time.Duration
	overrides HintOverrides
	logger    *zap.Logger
	inflight  singleflight.Group
}

// NewCachedSchemaProvider wraps fetcher. A nil cache disables caching.
func NewCachedSchemaProvider(fetcher SchemaFetcher, cache Cache, ttl time.Duration, overrides HintOverrides, logger *zap.Logger) *CachedSchemaProvider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedSchemaProvider{
		fetcher:   fetcher,
		cache:     cache,
		ttl:       ttl,
		overrides: overrides,
		logger:    logger.Named("schema"),
	}
}

// CacheKey is the cache key for a resource schema.
func CacheKey(app, resource string) string {
	return "schema:" + app + ":" + resource
}

// FetchSchema implements SchemaFetcher.
func (p *CachedSchemaProvider) FetchSchema(ctx context.Context, app, resource string) (SchemaInfo, error) {
	info, err := p.lookup(ctx, app, resource)
	if err != nil {
		return SchemaInfo{}, err
	}
	if o, ok := p.overrides.For(app, resource); ok {
		info.Hints = info.Hints.Merge(o)
	}
	return info, nil
}

func (p *CachedSchemaProvider) lookup(ctx context.Context, app, resource string) (SchemaInfo, error) {
	key := CacheKey(app, resource)
	log := p.logger.With(zap.String("key", key))

	if p.cache != nil {
		raw, ok, err := p.cache.Get(ctx, key)
		switch {
		case err != nil:
			schemaCacheLookups.WithLabelValues("error").Inc()
			log.Warn("Schema cache lookup failed", zap.Error(err))
		case ok:
			var info SchemaInfo
			if err := json.Unmarshal(raw, &info); err == nil {
				schemaCacheLookups.WithLabelValues("hit").Inc()
				return info, nil
			}
			schemaCacheLookups.WithLabelValues("error").Inc()
			log.Warn("Discarding undecodable cached schema")
		default:
			schemaCacheLookups.WithLabelValues("miss").Inc()
		}
	}

	v, err, _ := p.inflight.Do(key, func() (any, error) {
		info, err := p.fetcher.FetchSchema(ctx, app, resource)
		if err != nil {
			return SchemaInfo{}, err
		}

		if p.cache != nil {
			raw, err := json.Marshal(info)
			if err == nil {
				err = p.cache.Set(ctx, key, raw, p.ttl)
			}
			if err != nil {
				log.Warn("Failed to cache schema", zap.Error(err))
			}
		}
		return info, nil
	})
	if err != nil {
		return SchemaInfo{}, err
	}
	return v.(SchemaInfo), nil
}
