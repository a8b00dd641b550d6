package parseas

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/reoring/parseas/internal/cache"
)

// DefaultCacheSize is the capacity of DefaultCache.
const DefaultCacheSize = 2048

// cacheKey identifies a wrapper schema: the shape plus the naming override.
// Literal names compare by value, namers by handle identity.
type cacheKey struct {
	shape reflect.Type
	name  string
	namer *Namer
}

var errNameUnresolved = errors.New("parseas: wrapper name not resolved")

// CacheStats is a snapshot of a Cache's counters.
type CacheStats = cache.Stats

// Cache memoizes wrapper schemas per (shape, naming override). It is safe
// for concurrent use and builds each entry at most once.
type Cache struct {
	lru *cache.LRU[cacheKey, *Schema]
}

var defaultCache = MustNewCache(DefaultCacheSize)

// DefaultCache returns the process-wide cache used when no WithCache option
// is given.
func DefaultCache() *Cache { return defaultCache }

// NewCache creates a cache holding at most size wrapper schemas.
func NewCache(size int) (*Cache, error) {
	l, err := cache.New(size, func(k cacheKey, s *Schema) {
		log().Debug("parseas: evicted wrapper schema", "schema", s.Name(), "shape", DisplayType(k.shape))
	})
	if err != nil {
		return nil, fmt.Errorf("parseas: new cache: %w", err)
	}
	return &Cache{lru: l}, nil
}

// MustNewCache is like NewCache but panics on error.
func MustNewCache(size int) *Cache {
	c, err := NewCache(size)
	if err != nil {
		panic(err)
	}
	return c
}

// Lookup returns the wrapper schema for shape under the given naming
// options (WithTypeName, WithTypeNamer), synthesizing it on first use.
// Other options are ignored.
func (c *Cache) Lookup(shape reflect.Type, opts ...Option) (*Schema, error) {
	o := newOptions(opts)
	return c.lookup(shape, o.naming)
}

func (c *Cache) lookup(shape reflect.Type, n naming) (*Schema, error) {
	if shape == nil {
		return nil, fmt.Errorf("%w: nil type", ErrUnsupportedType)
	}
	key := cacheKey{shape: shape, name: n.name, namer: n.namer}
	if n.name != "" {
		key.namer = nil
	}
	// The name is resolved outside the cache lock so a namer may itself
	// use the cache. Concurrent first lookups may each call the namer;
	// only one schema is built.
	for {
		var name string
		if !c.lru.Contains(key) {
			name = n.resolve(shape)
		}
		s, err := c.lru.GetOrCreate(key, func() (*Schema, error) {
			if name == "" {
				// evicted between Contains and GetOrCreate
				return nil, errNameUnresolved
			}
			s, err := RootSchema(name, shape)
			if err != nil {
				return nil, err
			}
			log().Debug("parseas: synthesized wrapper schema", "schema", name, "shape", DisplayType(shape))
			return s, nil
		})
		if err == errNameUnresolved {
			continue
		}
		return s, err
	}
}

// Len returns the number of cached schemas.
func (c *Cache) Len() int { return c.lru.Len() }

// Resize changes the capacity and returns the number of evicted schemas.
func (c *Cache) Resize(size int) int { return c.lru.Resize(size) }

// Purge drops all cached schemas.
func (c *Cache) Purge() { c.lru.Purge() }

// Stats returns hit, miss and eviction counters.
func (c *Cache) Stats() CacheStats { return c.lru.Stats() }
