package vdatum

import (
	"container/list"
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/couchcryptid/adcirc-etl/internal/domain"
	"github.com/couchcryptid/adcirc-etl/internal/observability"
)

// CachedConverter wraps a DatumConverter with an in-memory LRU cache.
type CachedConverter struct {
	inner   domain.DatumConverter
	cache   *lruCache[string, domain.DatumResult]
	metrics *observability.Metrics
}

// NewCachedConverter creates a cache decorator around a converter.
func NewCachedConverter(inner domain.DatumConverter, maxEntries int, metrics *observability.Metrics) *CachedConverter {
	return &CachedConverter{
		inner:   inner,
		cache:   newLRUCache[string, domain.DatumResult](maxEntries),
		metrics: metrics,
	}
}

func (c *CachedConverter) Convert(ctx context.Context, req domain.DatumRequest) (domain.DatumResult, error) {
	key := cacheKey(req)
	if result, ok := c.cache.get(key); ok {
		c.metrics.DatumCache.WithLabelValues("hit").Inc()
		return result, nil
	}
	c.metrics.DatumCache.WithLabelValues("miss").Inc()

	result, err := c.inner.Convert(ctx, req)
	if err != nil {
		return result, err
	}
	// Points without a height are not cached so they are retried next run.
	if !math.IsNaN(result.Height) {
		c.cache.put(key, result)
	}
	return result, nil
}

func cacheKey(req domain.DatumRequest) string {
	return fmt.Sprintf("%.6f,%.6f|%g|%s|%s|%s|%s|%s",
		req.Lat, req.Lon, req.Height,
		req.SourceHorizontal, req.SourceVertical, req.SourceUnit,
		req.TargetVertical, req.TargetUnit)
}

// lruCache is a thread-safe LRU cache. The front of order is the most
// recently used entry.
type lruCache[K comparable, V any] struct {
	maxEntries int
	mu         sync.Mutex
	entries    map[K]*list.Element
	order      *list.List
}

type lruEntry[K comparable, V any] struct {
	key   K
	value V
}

func newLRUCache[K comparable, V any](maxEntries int) *lruCache[K, V] {
	return &lruCache[K, V]{
		maxEntries: maxEntries,
		entries:    make(map[K]*list.Element),
		order:      list.New(),
	}
}

func (c *lruCache[K, V]) get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	c.order.MoveToFront(el)
	return el.Value.(*lruEntry[K, V]).value, true
}

func (c *lruCache[K, V]) put(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[key]; ok {
		el.Value.(*lruEntry[K, V]).value = value
		c.order.MoveToFront(el)
		return
	}

	c.entries[key] = c.order.PushFront(&lruEntry[K, V]{key: key, value: value})
	if c.order.Len() > c.maxEntries {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.entries, oldest.Value.(*lruEntry[K, V]).key)
	}
}

func (c *lruCache[K, V]) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}
