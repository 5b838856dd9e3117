package render

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/sea-ice-etl/internal/observability"
)

func TestLRUCache_Eviction(t *testing.T) {
	c := newLRUCache(2)
	a, b, d := &Layer{}, &Layer{}, &Layer{}

	c.put("a", a)
	c.put("b", b)
	_, ok := c.get("a") // a becomes most recent
	require.True(t, ok)
	c.put("d", d) // evicts b

	_, ok = c.get("b")
	assert.False(t, ok, "b should have been evicted")
	got, ok := c.get("a")
	assert.True(t, ok)
	assert.Same(t, a, got)
	assert.Equal(t, 2, c.len())
}

func TestLRUCache_UpdateExisting(t *testing.T) {
	c := newLRUCache(2)
	first, second := &Layer{}, &Layer{Kind: LineLayer}

	c.put("k", first)
	c.put("k", second)

	got, ok := c.get("k")
	require.True(t, ok)
	assert.Same(t, second, got)
	assert.Equal(t, 1, c.len())
}

func TestLRUCache_ManyEntries(t *testing.T) {
	c := newLRUCache(10)
	for i := range 100 {
		c.put(fmt.Sprintf("k%d", i), &Layer{})
	}
	assert.Equal(t, 10, c.len())
	_, ok := c.get("k99")
	assert.True(t, ok)
	_, ok = c.get("k0")
	assert.False(t, ok)
}

func TestLayerCache_LoadErrorNotCached(t *testing.T) {
	metrics := observability.NewMetricsForTesting()
	c := NewLayerCache(4, metrics)
	path := filepath.Join(t.TempDir(), "absent.shp")

	_, err := c.Load(path, FillLayer, NewPolarStereographic(0), 60)
	require.Error(t, err)
	_, err = c.Load(path, FillLayer, NewPolarStereographic(0), 60)
	require.Error(t, err)

	assert.Equal(t, 0, c.cache.len())
	assert.InDelta(t, 2, testutil.ToFloat64(metrics.BasemapCache.WithLabelValues("miss")), 0)
}
