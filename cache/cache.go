// Package cache stores rendered API responses. Redis backs it when
// configured; otherwise every lookup misses.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// TTLs for cached directory responses.
const (
	RegionTTL  = time.Hour
	CityTTL    = 30 * time.Minute
	ListingTTL = 30 * time.Minute
)

const keyPrefix = "livebait:"

const connectionTimeout = 5 * time.Second

// ErrEmptyAddress is returned when no Redis address is configured.
var ErrEmptyAddress = errors.New("redis address is required")

type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
}

// Nop never stores anything.
type Nop struct{}

func (Nop) Get(context.Context, string) ([]byte, bool)         { return nil, false }
func (Nop) Set(context.Context, string, []byte, time.Duration) {}

// RedisCache is a Cache on a Redis server. Errors are logged and treated
// as misses so a Redis outage only costs latency.
type RedisCache struct {
	client *redis.Client
	log    logrus.FieldLogger
}

type Config struct {
	Address  string
	Password string
	DB       int
}

// NewRedisClient connects and pings the server.
func NewRedisClient(cfg Config) (*redis.Client, error) {
	if cfg.Address == "" {
		return nil, ErrEmptyAddress
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), connectionTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, errors.Wrap(err, "redis ping failed")
	}
	return client, nil
}

func NewRedisCache(client *redis.Client, log logrus.FieldLogger) *RedisCache {
	return &RedisCache{client: client, log: log}
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool) {
	val, err := c.client.Get(ctx, keyPrefix+key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.WithError(err).WithField("key", key).Warn("Cache read failed")
		}
		return nil, false
	}
	return val, true
}

func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if err := c.client.Set(ctx, keyPrefix+key, value, ttl).Err(); err != nil {
		c.log.WithError(err).WithField("key", key).Warn("Cache write failed")
	}
}

// New picks a RedisCache when an address is set, falling back to Nop if
// the server cannot be reached.
func New(cfg Config, log logrus.FieldLogger) Cache {
	if cfg.Address == "" {
		return Nop{}
	}
	client, err := NewRedisClient(cfg)
	if err != nil {
		log.WithError(err).Warn("Redis unavailable, response cache disabled")
		return Nop{}
	}
	return NewRedisCache(client, log)
}

// GetJSON decodes a cached value into dst.
func GetJSON(ctx context.Context, c Cache, key string, dst interface{}) bool {
	raw, ok := c.Get(ctx, key)
	if !ok {
		return false
	}
	return json.Unmarshal(raw, dst) == nil
}

// SetJSON encodes value and stores it.
func SetJSON(ctx context.Context, c Cache, key string, value interface{}, ttl time.Duration) {
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	c.Set(ctx, key, raw, ttl)
}
