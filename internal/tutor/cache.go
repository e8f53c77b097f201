package tutor

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mudhay027/ritaitutor/config"
)

const cacheKeyPrefix = "ritai:retrieve:"

// RetrievalCache is an optional short-TTL Redis cache for retrieval results.
// A nil *RetrievalCache is valid and behaves as a permanent miss, so callers
// never branch on whether caching is enabled. Cache errors degrade to a
// direct index call.
type RetrievalCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *log.Logger
}

// NewRetrievalCache connects to Redis when an address is configured and
// returns nil otherwise.
func NewRetrievalCache(cfg config.RedisConfig, ttl time.Duration, logger *log.Logger) *RetrievalCache {
	if cfg.Addr == "" {
		return nil
	}
	if ttl <= 0 {
		ttl = 2 * time.Minute
	}
	if logger == nil {
		logger = log.New(log.Writer(), "[CACHE] ", log.LstdFlags)
	}
	client := redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB})
	return &RetrievalCache{client: client, ttl: ttl, logger: logger}
}

func cacheKey(query string, topK int, activePDF string) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%d|%s", query, topK, activePDF)))
	return cacheKeyPrefix + hex.EncodeToString(sum[:])
}

// Get returns cached passages for the query, if present.
func (c *RetrievalCache) Get(ctx context.Context, query string, topK int, activePDF string) ([]Passage, bool) {
	if c == nil {
		return nil, false
	}
	raw, err := c.client.Get(ctx, cacheKey(query, topK, activePDF)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Printf("cache get: %v", err)
		}
		return nil, false
	}
	var passages []Passage
	if err := json.Unmarshal(raw, &passages); err != nil {
		c.logger.Printf("cache get: corrupt entry: %v", err)
		return nil, false
	}
	return passages, true
}

// Put stores passages for the query. Empty result sets are not cached so a
// recovering indexer is retried immediately.
func (c *RetrievalCache) Put(ctx context.Context, query string, topK int, activePDF string, passages []Passage) {
	if c == nil || len(passages) == 0 {
		return
	}
	raw, err := json.Marshal(passages)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, cacheKey(query, topK, activePDF), raw, c.ttl).Err(); err != nil {
		c.logger.Printf("cache put: %v", err)
	}
}

// Flush drops all cached retrieval entries. Called when an index rebuild is
// triggered, since the passages backing every entry may have changed.
func (c *RetrievalCache) Flush(ctx context.Context) {
	if c == nil {
		return
	}
	iter := c.client.Scan(ctx, 0, cacheKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			c.logger.Printf("cache flush: %v", err)
			return
		}
	}
	if err := iter.Err(); err != nil {
		c.logger.Printf("cache flush: %v", err)
	}
}

// Close releases the Redis connection.
func (c *RetrievalCache) Close() error {
	if c == nil {
		return nil
	}
	return c.client.Close()
}
