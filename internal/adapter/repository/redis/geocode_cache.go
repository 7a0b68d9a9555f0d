package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/V4T54L/rentwise/internal/domain"
)

const geocodeKeyPrefix = "rentwise:geocode:"

// kv is the subset of redis.Cmdable the cache needs.
type kv interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// GeocodeCache implements domain.GeocodeCache on Redis string keys with a TTL.
type GeocodeCache struct {
	client kv
	ttl    time.Duration
	logger *slog.Logger
}

// NewGeocodeCache creates a new Redis geocode cache.
func NewGeocodeCache(client redis.Cmdable, ttl time.Duration, logger *slog.Logger) *GeocodeCache {
	return newGeocodeCache(client, ttl, logger)
}

func newGeocodeCache(client kv, ttl time.Duration, logger *slog.Logger) *GeocodeCache {
	return &GeocodeCache{client: client, ttl: ttl, logger: logger.With("component", "geocode_cache")}
}

// Get returns the cached answer for addr or nil on a miss.
func (c *GeocodeCache) Get(ctx context.Context, addr domain.Address) (*domain.GeocodeResult, error) {
	raw, err := c.client.Get(ctx, geocodeKey(addr)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read geocode cache: %w", err)
	}

	var r domain.GeocodeResult
	if err := json.Unmarshal(raw, &r); err != nil {
		c.logger.Warn("discarding corrupt geocode cache entry", "error", err)
		return nil, nil
	}
	return &r, nil
}

// Set stores the answer for addr.
func (c *GeocodeCache) Set(ctx context.Context, addr domain.Address, r domain.GeocodeResult) error {
	raw, err := json.Marshal(r)
	if err != nil {
		return err
	}
	if err := c.client.Set(ctx, geocodeKey(addr), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write geocode cache: %w", err)
	}
	return nil
}

// geocodeKey hashes the normalized address so keys stay short and free of
// user-supplied separators.
func geocodeKey(addr domain.Address) string {
	norm := strings.ToLower(strings.Join([]string{
		strings.TrimSpace(addr.Street),
		strings.TrimSpace(addr.City),
		strings.TrimSpace(addr.State),
		strings.TrimSpace(addr.Country),
		strings.TrimSpace(addr.PostalCode),
	}, "|"))
	sum := sha256.Sum256([]byte(norm))
	return geocodeKeyPrefix + hex.EncodeToString(sum[:])
}
