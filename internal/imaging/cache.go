package imaging

import "sync"

// CarrierCache provides thread-safe caching of flattened carriers to avoid
// redundant decode work when the same image is used by several operations.
//
// Entries are keyed by the exact path string passed to Load; relative and
// absolute paths to the same file occupy separate entries. Cached carriers
// remain in memory until evicted, so long-running processes should call
// Evict or Clear between batches.
type CarrierCache struct {
	mu       sync.RWMutex
	carriers map[string]*Carrier
}

// NewCarrierCache creates an empty cache ready for concurrent use.
func NewCarrierCache() *CarrierCache {
	return &CarrierCache{
		carriers: make(map[string]*Carrier),
	}
}

// Load returns the carrier for path, decoding and caching it on first use.
// The returned carrier is a copy; the cached one is never handed out, so
// callers may freely mutate the sample buffer they receive.
func (c *CarrierCache) Load(path string) (*Carrier, error) {
	c.mu.RLock()
	if cached, ok := c.carriers[path]; ok {
		c.mu.RUnlock()
		return cached.Clone(), nil
	}
	c.mu.RUnlock()

	carrier, err := Load(path)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.carriers[path] = carrier
	c.mu.Unlock()

	return carrier.Clone(), nil
}

// Evict removes a single entry. Unknown paths are ignored.
func (c *CarrierCache) Evict(path string) {
	c.mu.Lock()
	delete(c.carriers, path)
	c.mu.Unlock()
}

// Clear drops every cached carrier.
func (c *CarrierCache) Clear() {
	c.mu.Lock()
	c.carriers = make(map[string]*Carrier)
	c.mu.Unlock()
}

// Len returns the number of cached carriers.
func (c *CarrierCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.carriers)
}
