package cache

import (
	"context"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/kvalencee/alfaia/internal/config"
	"github.com/kvalencee/alfaia/internal/infrastructure/monitoring/logging"
	"github.com/kvalencee/alfaia/pkg/errors"
)

type redisCache struct {
	client     *redis.Client
	logger     logging.Logger
	prefix     string
	defaultTTL time.Duration
	serializer Serializer
	group      singleflight.Group
}

// NewRedisCache connects to Redis and returns a Cache backed by it.
// Entries are shared across processes, so identical sentences submitted
// to different instances reuse one computation per instance plus the
// shared store.
func NewRedisCache(cfg config.RedisConfig, log logging.Logger) (Cache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeServiceUnavailable, "redis connection failed")
	}

	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = config.DefaultRedisKeyPrefix
	}
	ttl := cfg.DefaultTTL
	if ttl == 0 {
		ttl = 15 * time.Minute
	}
	return &redisCache{
		client:     client,
		logger:     log,
		prefix:     prefix,
		defaultTTL: ttl,
		serializer: &jsonSerializer{},
	}, nil
}

func (c *redisCache) fullKey(key string) string {
	return c.prefix + key
}

func (c *redisCache) jitterTTL(ttl time.Duration) time.Duration {
	// +/- 10% so entries written in one burst do not expire together.
	jitter := float64(ttl) * 0.1 * (rand.Float64()*2 - 1)
	return ttl + time.Duration(jitter)
}

func (c *redisCache) GetOrCompute(ctx context.Context, key string, dest interface{}, compute ComputeFunc) (bool, error) {
	data, err := c.client.Get(ctx, c.fullKey(key)).Bytes()
	if err == nil {
		return true, c.serializer.Unmarshal(data, dest)
	}
	if err != redis.Nil {
		return false, errors.Wrap(err, errors.ErrCodeCacheError, "failed to get from cache")
	}

	val, err, _ := c.group.Do(key, func() (interface{}, error) {
		if cached, getErr := c.client.Get(ctx, c.fullKey(key)).Bytes(); getErr == nil {
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
		if setErr := c.client.Set(ctx, c.fullKey(key), b, c.jitterTTL(c.defaultTTL)).Err(); setErr != nil {
			c.logger.Warn("failed to store computed value", logging.String("key", key), logging.Err(setErr))
		}
		return b, nil
	})
	if err != nil {
		return false, err
	}
	return false, c.serializer.Unmarshal(val.([]byte), dest)
}

func (c *redisCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	fullKeys := make([]string, len(keys))
	for i, k := range keys {
		fullKeys[i] = c.fullKey(k)
	}
	return c.client.Del(ctx, fullKeys...).Err()
}

func (c *redisCache) Close() error {
	return c.client.Close()
}
