package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/matst80/slask-facets/pkg/common/jsoncompat"
	"github.com/matst80/slask-facets/pkg/endpoint"
	"github.com/redis/go-redis/v9"
)

const localTtl = time.Minute

type LocalEntry struct {
	Expires time.Time
	Data    []byte
}

// Cache keeps encoded values in redis and a short lived local copy in memory.
// Local copies never outlive ttl.
type Cache struct {
	Addr     string
	Password string
	DB       int
	client   redis.Cmdable
	ttl      time.Duration
	mu       sync.RWMutex
	memCache map[string]LocalEntry
	now      func() time.Time
}

// ClientOptions accepts either a redis:// url or a plain host:port address. A
// non empty password overrides the one in the url.
func ClientOptions(redisUrl, password string) (*redis.Options, error) {
	if !strings.Contains(redisUrl, "://") {
		return &redis.Options{Addr: redisUrl, Password: password}, nil
	}
	opts, err := redis.ParseURL(redisUrl)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	if password != "" {
		opts.Password = password
	}
	return opts, nil
}

func NewCache(redisUrl, password string, ttl time.Duration) (*Cache, error) {
	opts, err := ClientOptions(redisUrl, password)
	if err != nil {
		return nil, err
	}
	c := NewWithClient(redis.NewClient(opts), ttl)
	c.Addr = opts.Addr
	c.Password = opts.Password
	c.DB = opts.DB
	return c, nil
}

func NewWithClient(client redis.Cmdable, ttl time.Duration) *Cache {
	if ttl <= 0 || ttl > localTtl {
		ttl = localTtl
	}
	return &Cache{
		client:   client,
		ttl:      ttl,
		memCache: make(map[string]LocalEntry),
		now:      time.Now,
	}
}

func (c *Cache) getLocal(key string) ([]byte, bool) {
	c.mu.RLock()
	local, found := c.memCache[key]
	c.mu.RUnlock()
	if !found {
		return nil, false
	}
	if local.Expires.Before(c.now()) {
		c.mu.Lock()
		delete(c.memCache, key)
		c.mu.Unlock()
		return nil, false
	}
	return local.Data, true
}

func (c *Cache) setLocal(key string, data []byte, expiration time.Duration) {
	if expiration <= 0 || expiration > c.ttl {
		expiration = c.ttl
	}
	c.mu.Lock()
	c.memCache[key] = LocalEntry{Expires: c.now().Add(expiration), Data: data}
	c.mu.Unlock()
}

func (c *Cache) Get(ctx context.Context, key string, out any) error {
	if data, ok := c.getLocal(key); ok {
		return jsoncompat.Unmarshal(data, out)
	}
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return endpoint.ErrCacheMiss
	}
	if err != nil {
		return err
	}
	if err = jsoncompat.Unmarshal(data, out); err != nil {
		return err
	}
	c.setLocal(key, data, c.ttl)
	return nil
}

func (c *Cache) Set(ctx context.Context, key string, value any, expiration time.Duration) error {
	data, err := jsoncompat.Marshal(value)
	if err != nil {
		return err
	}
	c.setLocal(key, data, expiration)
	return c.client.Set(ctx, key, data, expiration).Err()
}

func (c *Cache) Close() error {
	if closer, ok := c.client.(interface{ Close() error }); ok {
		return closer.Close()
	}
	return nil
}
