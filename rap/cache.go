package rap

import (
	"log/slog"
	"strconv"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/zeebo/xxh3"
)

// DefaultCacheSize is the number of decoded trees kept by a [Cache] when no
// size is given.
const DefaultCacheSize = 256

// cacheKey identifies a decode by buffer content and depth limit.
type cacheKey struct {
	hash     xxh3.Uint128
	maxDepth int
}

// Cache decodes buffers through a [Decoder] and remembers the resulting trees,
// keyed by a hash of the buffer content, so identical configs shipped in
// several addons are decoded once. Failed decodes are not cached.
//
// A Cache is safe for concurrent use.
type Cache struct {
	dec    *Decoder
	trees  *lru.Cache[cacheKey, *Tree]
	hits   atomic.Int64
	misses atomic.Int64
}

// NewCache returns a Cache holding at most size trees. A size less than 1
// selects [DefaultCacheSize].
func NewCache(size int, opts ...Option) (*Cache, error) {
	if size < 1 {
		size = DefaultCacheSize
	}

	trees, err := lru.New[cacheKey, *Tree](size)
	if err != nil {
		return nil, WrapError(err).With(slog.Int("size", size))
	}

	return &Cache{dec: NewDecoder(opts...), trees: trees}, nil
}

// Decode returns the tree for buf, decoding it only if an identical buffer
// has not been decoded before.
func (c *Cache) Decode(buf []byte) (*Tree, error) {
	key := cacheKey{hash: xxh3.Hash128(buf), maxDepth: c.dec.maxDepth}

	if t, ok := c.trees.Get(key); ok {
		c.hits.Add(1)
		c.dec.logger.TraceContext(c.dec.ctx, "cache hit",
			slog.String("hash", formatHash(key.hash)))

		return t, nil
	}

	c.misses.Add(1)

	t, err := c.dec.Decode(buf)
	if err != nil {
		return nil, err
	}

	c.trees.Add(key, t)

	return t, nil
}

// Stats returns the number of cache hits and misses so far.
func (c *Cache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

// Len returns the number of cached trees.
func (c *Cache) Len() int { return c.trees.Len() }

// Purge drops every cached tree.
func (c *Cache) Purge() { c.trees.Purge() }

func formatHash(h xxh3.Uint128) string {
	return strconv.FormatUint(h.Hi, 16) + strconv.FormatUint(h.Lo, 16)
}
