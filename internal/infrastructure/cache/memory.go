package cache

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"github.com/kvalencee/alfaia/pkg/errors"
)

// Hooks receives cache lifecycle notifications. Used to feed metrics
// without coupling the cache to an exporter. Nil funcs are skipped.
type Hooks struct {
	OnHit   func(key string)
	OnMiss  func(key string)
	OnEvict func(key string)
}

type memoryCache struct {
	lru        *lru.Cache[string, []byte]
	serializer Serializer
	group      singleflight.Group
	hooks      Hooks
}

type MemoryOption func(*memoryCache)

func WithSerializer(s Serializer) MemoryOption {
	return func(c *memoryCache) { c.serializer = s }
}

func WithHooks(h Hooks) MemoryOption {
	return func(c *memoryCache) { c.hooks = h }
}

// NewMemoryCache builds a bounded in-process cache. capacity is the
// maximum number of entries; the least recently used entry is evicted
// when full.
func NewMemoryCache(capacity int, opts ...MemoryOption) (Cache, error) {
	if capacity <= 0 {
		return nil, errors.New(errors.ErrCodeValidation, "cache capacity must be positive")
	}
	c := &memoryCache{serializer: &jsonSerializer{}}
	for _, opt := range opts {
		opt(c)
	}
	l, err := lru.NewWithEvict(capacity, func(key string, _ []byte) {
		if c.hooks.OnEvict != nil {
			c.hooks.OnEvict(key)
		}
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to create lru cache")
	}
	c.lru = l
	return c, nil
}

func (c *memoryCache) GetOrCompute(ctx context.Context, key string, dest interface{}, compute ComputeFunc) (bool, error) {
	if data, ok := c.lru.Get(key); ok {
		if c.hooks.OnHit != nil {
			c.hooks.OnHit(key)
		}
		return true, c.serializer.Unmarshal(data, dest)
	}
	if c.hooks.OnMiss != nil {
		c.hooks.OnMiss(key)
	}

	data, err, _ := c.group.Do(key, func() (interface{}, error) {
		// Another caller may have finished while we waited for the slot.
		if cached, ok := c.lru.Get(key); ok {
			return cached, nil
		}
		v, computeErr := compute(ctx)
		if computeErr != nil {
			return nil, computeErr
		}
		b, marshalErr := c.serializer.Marshal(v)
		if marshalErr != nil {
			return nil, errors.Wrap(marshalErr, errors.ErrCodeSerialization, "failed to serialize cache value")
		}
		c.lru.Add(key, b)
		return b, nil
	})
	if err != nil {
		return false, err
	}
	return false, c.serializer.Unmarshal(data.([]byte), dest)
}

func (c *memoryCache) Delete(_ context.Context, keys ...string) error {
	for _, k := range keys {
		c.lru.Remove(k)
	}
	return nil
}

func (c *memoryCache) Close() error {
	c.lru.Purge()
	return nil
}

// Len reports the number of resident entries. Exposed for tests and
// capacity tuning.
func (c *memoryCache) Len() int {
	return c.lru.Len()
}
