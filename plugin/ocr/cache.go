package ocr

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync/atomic"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Cache defaults.
const (
	DefaultCacheCapacity = 256
	DefaultCacheTTL      = 10 * time.Minute
)

// CachedRecognizer remembers recognized text per image content so repeated
// uploads of the same picture skip tesseract. Failures are never cached.
type CachedRecognizer struct {
	next  Recognizer
	cache *expirable.LRU[string, string]

	hits, misses atomic.Int64
}

// NewCachedRecognizer wraps next with an LRU cache of at most capacity entries.
func NewCachedRecognizer(next Recognizer, capacity int, ttl time.Duration) *CachedRecognizer {
	if capacity <= 0 {
		capacity = DefaultCacheCapacity
	}
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &CachedRecognizer{
		next:  next,
		cache: expirable.NewLRU[string, string](capacity, nil, ttl),
	}
}

// ExtractText returns the cached text for image, or runs the wrapped recognizer.
func (c *CachedRecognizer) ExtractText(ctx context.Context, image []byte, mimeType string) (string, error) {
	key := imageKey(image)
	if text, ok := c.cache.Get(key); ok {
		c.hits.Add(1)
		return text, nil
	}
	c.misses.Add(1)

	text, err := c.next.ExtractText(ctx, image, mimeType)
	if err != nil {
		return "", err
	}
	c.cache.Add(key, text)
	return text, nil
}

// IsSupported delegates to the wrapped recognizer.
func (c *CachedRecognizer) IsSupported(mimeType string) bool {
	return c.next.IsSupported(mimeType)
}

// Len returns the number of cached images.
func (c *CachedRecognizer) Len() int {
	return c.cache.Len()
}

// Stats returns the hit and miss counters.
func (c *CachedRecognizer) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

func imageKey(image []byte) string {
	sum := sha256.Sum256(image)
	return hex.EncodeToString(sum[:])
}

var _ Recognizer = (*CachedRecognizer)(nil)
