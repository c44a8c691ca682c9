package style

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/geoquad/tilebuilder/internal/metrics"
	"github.com/geoquad/tilebuilder/internal/tberrors"
	"golang.org/x/sync/singleflight"
)

// Loader parses a stylesheet file into a Provider. absDir is the file's
// parent directory, passed separately so a real MapCSS parser can resolve
// relative @import paths against it (spec §4.3).
type Loader interface {
	Load(path, absDir string) (Provider, error)
}

// Cache maps an absolute stylesheet path to a lazily-parsed, cached
// Provider. Concurrent first-miss lookups for the same path are
// collapsed by golang.org/x/sync/singleflight, which is the generalized,
// per-key form of the "simple mutex" spec §4.3 calls for. Cached entries
// live for the lifetime of the Cache (spec: "Lifetime of cached providers
// >= lifetime of Application") — this is never an LRU, since eviction
// would violate that invariant.
type Cache struct {
	loader Loader

	mu        sync.RWMutex
	providers map[string]Provider

	group singleflight.Group
}

// NewCache creates an empty cache backed by loader.
func NewCache(loader Loader) *Cache {
	return &Cache{
		loader:    loader,
		providers: make(map[string]Provider),
	}
}

// Get returns the cached Provider for path, parsing it on first access.
func (c *Cache) Get(path string) (Provider, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, tberrors.Wrap(tberrors.StyleNotReadable, path, err)
	}

	c.mu.RLock()
	if p, ok := c.providers[abs]; ok {
		c.mu.RUnlock()
		metrics.IncStyleCacheHit()
		return p, nil
	}
	c.mu.RUnlock()
	metrics.IncStyleCacheMiss()

	v, err, _ := c.group.Do(abs, func() (interface{}, error) {
		c.mu.RLock()
		if p, ok := c.providers[abs]; ok {
			c.mu.RUnlock()
			return p, nil
		}
		c.mu.RUnlock()

		if _, statErr := os.Stat(abs); statErr != nil {
			return nil, tberrors.Wrap(tberrors.StyleNotReadable, abs, statErr)
		}

		p, loadErr := c.loader.Load(abs, filepath.Dir(abs))
		if loadErr != nil {
			return nil, tberrors.Wrap(tberrors.StyleParseFailed, abs, loadErr)
		}

		c.mu.Lock()
		c.providers[abs] = p
		c.mu.Unlock()
		return p, nil
	})
	if err != nil {
		return nil, err
	}
	p, ok := v.(Provider)
	if !ok {
		return nil, fmt.Errorf("style cache: unexpected value type for %s", abs)
	}
	return p, nil
}

// Len returns the number of cached providers, for tests asserting
// Testable Property 3 (cache idempotence).
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.providers)
}
