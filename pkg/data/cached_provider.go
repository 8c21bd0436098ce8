package data

import (
	"context"
	"log"
	"path/filepath"
	"sync"

	"github.com/ducminhle1904/dca-montecarlo/pkg/types"
)

// MemoryCache implements DataCache using in-memory storage.
// PriceSeries is immutable, so entries are shared without copying.
type MemoryCache struct {
	cache map[string]types.PriceSeries
	mutex sync.RWMutex
}

// NewMemoryCache creates a new in-memory cache
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		cache: make(map[string]types.PriceSeries),
	}
}

// Get retrieves data from cache if available
func (c *MemoryCache) Get(key string) (types.PriceSeries, bool) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	series, exists := c.cache[key]
	return series, exists
}

// Set stores data in cache, replacing any previous entry
func (c *MemoryCache) Set(key string, series types.PriceSeries) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.cache[key] = series
}

// Clear removes all cached data
func (c *MemoryCache) Clear() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.cache = make(map[string]types.PriceSeries)
}

// Size returns the number of cached entries
func (c *MemoryCache) Size() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	return len(c.cache)
}

// CachedProvider wraps another HistoryProvider with caching functionality
type CachedProvider struct {
	provider HistoryProvider
	cache    DataCache
}

// NewCachedProvider creates a new cached data provider
func NewCachedProvider(provider HistoryProvider) *CachedProvider {
	return &CachedProvider{
		provider: provider,
		cache:    NewMemoryCache(),
	}
}

// GetName returns the name of the underlying provider with cache indication
func (p *CachedProvider) GetName() string {
	return "Cached " + p.provider.GetName()
}

// LoadHistory loads data with caching. Failed loads are not cached.
func (p *CachedProvider) LoadHistory(ctx context.Context, source string) (types.PriceSeries, error) {
	if cached, exists := p.cache.Get(source); exists {
		return cached, nil
	}

	log.Printf("🔄 Loading price history from %s", filepath.Base(source))
	series, err := p.provider.LoadHistory(ctx, source)
	if err != nil {
		log.Printf("❌ Failed to load history from %s: %v", filepath.Base(source), err)
		return types.PriceSeries{}, err
	}

	p.cache.Set(source, series)

	log.Printf("✅ Loaded and cached history from %s (%d months)", filepath.Base(source), series.Len())
	return series, nil
}

// ClearCache clears all cached data, forcing the next load to hit the source
func (p *CachedProvider) ClearCache() {
	p.cache.Clear()
}

// GetCacheSize returns the number of cached entries
func (p *CachedProvider) GetCacheSize() int {
	return p.cache.Size()
}
