package data

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
)

// ResponseCache keeps decoded hashprice responses in memory so repeated
// backtests over the same window do not hit the API again.
type ResponseCache struct {
	store *cache.Cache
	ttl   time.Duration
}

// NewResponseCache returns nil when ttl <= 0, which disables caching. All
// methods accept a nil receiver.
func NewResponseCache(ttl time.Duration) *ResponseCache {
	if ttl <= 0 {
		return nil
	}
	return &ResponseCache{
		store: cache.New(ttl, 2*ttl),
		ttl:   ttl,
	}
}

func (c *ResponseCache) Get(key string) ([]PricePoint, bool) {
	if c == nil {
		return nil, false
	}
	v, ok := c.store.Get(key)
	if !ok {
		return nil, false
	}
	points, ok := v.([]PricePoint)
	return points, ok
}

func (c *ResponseCache) Set(key string, points []PricePoint) {
	if c == nil {
		return
	}
	c.store.Set(key, points, c.ttl)
}

func (c *ResponseCache) Clear() {
	if c == nil {
		return
	}
	c.store.Flush()
}

func (c *ResponseCache) Len() int {
	if c == nil {
		return 0
	}
	return c.store.ItemCount()
}

// CacheKey hashes the query so keys stay short regardless of parameters.
func CacheKey(parts ...any) string {
	keyStr := fmt.Sprintf("%q", parts)
	hash := sha256.Sum256([]byte(keyStr))
	return hex.EncodeToString(hash[:])
}
