package endpoint

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/matst80/slask-facets/pkg/common/jsoncompat"
	"github.com/matst80/slask-facets/pkg/types"
	"go.uber.org/zap"
)

// ErrCacheMiss is returned by a Cache when the key is not present.
var ErrCacheMiss = errors.New("cache miss")

type Cache interface {
	Get(ctx context.Context, key string, out any) error
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
}

// CachedEndpoint serves repeated isolated facet queries from a cache.
// Queries that ask for result rows always go to the wrapped endpoint.
type CachedEndpoint struct {
	next   SearchEndpoint
	cache  Cache
	ttl    time.Duration
	logger *zap.Logger
}

func NewCachedEndpoint(next SearchEndpoint, cache Cache, ttl time.Duration, logger *zap.Logger) *CachedEndpoint {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &CachedEndpoint{next: next, cache: cache, ttl: ttl, logger: logger}
}

// CacheKey ignores the searchUid so identical isolated queries share an entry.
func CacheKey(q *types.Query) (string, error) {
	c := q.Clone()
	c.SearchUid = ""
	data, err := jsoncompat.Marshal(c)
	if err != nil {
		return "", err
	}
	return "facets:" + strconv.FormatUint(xxhash.Sum64(data), 16), nil
}

func (e *CachedEndpoint) Search(ctx context.Context, q *types.Query) (*types.QueryResults, error) {
	if !q.IsIsolatedFacetQuery() {
		return e.next.Search(ctx, q)
	}
	key, err := CacheKey(q)
	if err != nil {
		return e.next.Search(ctx, q)
	}

	var cached types.QueryResults
	err = e.cache.Get(ctx, key, &cached)
	if err == nil {
		cacheHits.Inc()
		cached.SearchUid = q.SearchUid
		return &cached, nil
	}
	if !errors.Is(err, ErrCacheMiss) {
		e.logger.Warn("facet cache read failed", zap.String("key", key), zap.Error(err))
	}

	res, err := e.next.Search(ctx, q)
	if err != nil {
		return nil, err
	}
	if err := e.cache.Set(ctx, key, res, e.ttl); err != nil {
		e.logger.Warn("facet cache write failed", zap.String("key", key), zap.Error(err))
	}
	return res, nil
}
