package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/vmihailenco/msgpack/v5"

	"shopping-consolidator/internal/logger"
	"shopping-consolidator/internal/shopping"
)

const keyPrefix = "shopping:consolidated:"

// Entry is the cached part of a consolidation result. The original list is not stored: it is
// what the key was derived from.
type Entry struct {
	Items   []shopping.ConsolidatedItem `msgpack:"items"`
	Dropped []string                    `msgpack:"dropped,omitempty"`
	Applied bool                        `msgpack:"applied"`
}

// NewEntry captures r for caching.
func NewEntry(r shopping.Result) Entry {
	return Entry{Items: r.Items, Dropped: r.Dropped, Applied: r.Applied()}
}

// Result rebuilds a full result around original.
func (e Entry) Result(original shopping.ShoppingList) shopping.Result {
	return shopping.Result{Original: original, Items: e.Items, Dropped: e.Dropped}
}

// Key derives the cache key for a list. Category and item order are part of the key since
// they decide the output order.
func Key(list shopping.ShoppingList) (string, error) {
	raw, err := json.Marshal(list)
	if err != nil {
		return "", fmt.Errorf("failed to encode shopping list for cache key: %w", err)
	}
	sum := sha256.Sum256(raw)
	return keyPrefix + hex.EncodeToString(sum[:]), nil
}

// RedisCache stores consolidation results in Redis with a fixed TTL.
type RedisCache struct {
	log *logger.Logger
	rdb *goredis.Client
	ttl time.Duration
}

// NewRedisCache connects to addr and verifies the connection.
func NewRedisCache(ctx context.Context, log *logger.Logger, addr string, ttl time.Duration) (*RedisCache, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if addr == "" {
		return nil, fmt.Errorf("missing redis address")
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &RedisCache{
		log: log.With("service", "RedisCache"),
		rdb: rdb,
		ttl: ttl,
	}, nil
}

// Get returns the entry stored under key. A miss is (nil, false, nil).
func (c *RedisCache) Get(ctx context.Context, key string) (*Entry, bool, error) {
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get: %w", err)
	}

	entry, err := decodeEntry(raw)
	if err != nil {
		// A stale layout is a miss; the next Set overwrites it.
		c.log.Warn("discarding undecodable cache entry", "key", key, "error", err)
		return nil, false, nil
	}
	return entry, true, nil
}

// Set stores entry under key for the cache TTL.
func (c *RedisCache) Set(ctx context.Context, key string, entry Entry) error {
	raw, err := encodeEntry(entry)
	if err != nil {
		return err
	}
	if err := c.rdb.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Close closes the Redis client.
func (c *RedisCache) Close() error {
	return c.rdb.Close()
}

func encodeEntry(e Entry) ([]byte, error) {
	raw, err := msgpack.Marshal(&e)
	if err != nil {
		return nil, fmt.Errorf("failed to encode cache entry: %w", err)
	}
	return raw, nil
}

func decodeEntry(raw []byte) (*Entry, error) {
	var e Entry
	if err := msgpack.Unmarshal(raw, &e); err != nil {
		return nil, fmt.Errorf("failed to decode cache entry: %w", err)
	}
	return &e, nil
}
