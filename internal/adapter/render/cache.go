package render

import (
	"fmt"
	"sync"

	"github.com/couchcryptid/sea-ice-etl/internal/observability"
)

// LayerCache keeps decoded, projected basemap layers in an LRU so repeated
// renders in one process read each shapefile once.
type LayerCache struct {
	cache   *lruCache
	metrics *observability.Metrics
}

// NewLayerCache creates a cache holding at most maxEntries layers.
func NewLayerCache(maxEntries int, metrics *observability.Metrics) *LayerCache {
	return &LayerCache{cache: newLRUCache(maxEntries), metrics: metrics}
}

// Load returns the layer for path, decoding it on a miss. Failed loads are
// not cached so a fixed file is picked up on the next render.
func (c *LayerCache) Load(path string, kind LayerKind, p PolarStereographic, minLat float64) (*Layer, error) {
	key := fmt.Sprintf("%s|%s|%.6f|%.6f", kind, path, p.CentralLongitude, minLat)
	if layer, ok := c.cache.get(key); ok {
		c.metrics.BasemapCache.WithLabelValues("hit").Inc()
		return layer, nil
	}
	c.metrics.BasemapCache.WithLabelValues("miss").Inc()

	layer, err := LoadShapefile(path, kind, p, minLat)
	if err != nil {
		return nil, err
	}
	c.cache.put(key, layer)
	return layer, nil
}

// lruCache is a simple thread-safe LRU cache of layers.
type lruCache struct {
	maxEntries int
	mu         sync.Mutex
	entries    map[string]*entry
	head       *entry // most recently used
	tail       *entry // least recently used
}

type entry struct {
	key   string
	value *Layer
	prev  *entry
	next  *entry
}

func newLRUCache(maxEntries int) *lruCache {
	if maxEntries < 1 {
		maxEntries = 1
	}
	return &lruCache{
		maxEntries: maxEntries,
		entries:    make(map[string]*entry),
	}
}

func (c *lruCache) get(key string) (*Layer, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	c.moveToFront(e)
	return e.value, true
}

func (c *lruCache) put(key string, value *Layer) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		e.value = value
		c.moveToFront(e)
		return
	}

	e := &entry{key: key, value: value}
	c.entries[key] = e
	c.addToFront(e)

	if len(c.entries) > c.maxEntries {
		c.evictTail()
	}
}

func (c *lruCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *lruCache) moveToFront(e *entry) {
	if e == c.head {
		return
	}
	c.remove(e)
	c.addToFront(e)
}

func (c *lruCache) addToFront(e *entry) {
	e.next = c.head
	e.prev = nil
	if c.head != nil {
		c.head.prev = e
	}
	c.head = e
	if c.tail == nil {
		c.tail = e
	}
}

func (c *lruCache) remove(e *entry) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		c.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		c.tail = e.prev
	}
}

func (c *lruCache) evictTail() {
	if c.tail == nil {
		return
	}
	delete(c.entries, c.tail.key)
	c.remove(c.tail)
}
