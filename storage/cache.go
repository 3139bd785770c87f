package storage

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/coocood/freecache"
	"github.com/dustin/go-humanize"
	"github.com/golang/groupcache/singleflight"

	"github.com/latticeview/latticeview/lattice"
)

// MinCacheBytes is the smallest cache freecache will allocate.
const MinCacheBytes = 512 * 1024

// CachedStore is a Store that tries an in-memory record cache before resorting to
// the wrapped Store.  Concurrent misses on the same key share a single backend read.
// Writes go through to the wrapped Store before the cache is updated.
type CachedStore struct {
	Store

	cache  *freecache.Cache
	flight singleflight.Group

	backendReads uint64
}

// NewCachedStore wraps a Store with a record cache of roughly the given size in bytes.
func NewCachedStore(store Store, cacheBytes int) *CachedStore {
	if cacheBytes < MinCacheBytes {
		cacheBytes = MinCacheBytes
	}
	lattice.Infof("Initializing record cache of %s for %s\n", humanize.Bytes(uint64(cacheBytes)), store)
	return &CachedStore{
		Store: store,
		cache: freecache.NewCache(cacheBytes),
	}
}

func (c *CachedStore) String() string {
	return fmt.Sprintf("cached %s", c.Store)
}

// Get returns a record from the cache if present, else reads it from the wrapped Store.
func (c *CachedStore) Get(ctx context.Context, key string) ([]byte, error) {
	if value, err := c.cache.Get([]byte(key)); err == nil {
		return value, nil
	}
	v, err := c.flight.Do(key, func() (interface{}, error) {
		atomic.AddUint64(&c.backendReads, 1)
		value, err := c.Store.Get(ctx, key)
		if err != nil {
			return nil, err
		}
		c.set(key, value)
		return value, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

// Put writes the record to the wrapped Store and then the cache.
func (c *CachedStore) Put(ctx context.Context, key string, value []byte) error {
	if err := c.Store.Put(ctx, key, value); err != nil {
		c.cache.Del([]byte(key))
		return err
	}
	c.set(key, value)
	return nil
}

// Delete removes the record from the cache and the wrapped Store.
func (c *CachedStore) Delete(ctx context.Context, key string) error {
	c.cache.Del([]byte(key))
	return c.Store.Delete(ctx, key)
}

func (c *CachedStore) set(key string, value []byte) {
	if err := c.cache.Set([]byte(key), value, 0); err != nil {
		// Records larger than 1/1024 of the cache are not cached.
		lattice.Debugf("Not caching record %q (%s): %v\n", key, humanize.Bytes(uint64(len(value))), err)
	}
}

// CacheStats describes the record cache.
type CacheStats struct {
	Entries      int64
	Hits         int64
	Misses       int64
	BackendReads uint64
}

func (s CacheStats) String() string {
	return fmt.Sprintf("%s cached records, %s hits, %s misses, %s backend reads",
		humanize.Comma(s.Entries), humanize.Comma(s.Hits), humanize.Comma(s.Misses),
		humanize.Comma(int64(s.BackendReads)))
}

// Stats returns the current cache statistics.
func (c *CachedStore) Stats() CacheStats {
	return CacheStats{
		Entries:      c.cache.EntryCount(),
		Hits:         c.cache.HitCount(),
		Misses:       c.cache.MissCount(),
		BackendReads: atomic.LoadUint64(&c.backendReads),
	}
}
