package metadata

import (
	"context"
	"sync"
	"time"
)

const (
	// healthyTTL is how long a successful probe is trusted.
	healthyTTL = 5 * time.Minute
	// failedTTL is how long a failed probe suppresses re-probing.
	failedTTL = time.Minute
)

type healthEntry struct {
	err       error
	checkedAt time.Time
}

// HealthCache memoizes source reachability so repeated lookups against an
// unreachable backend fail fast instead of re-dialing every track. Healthy
// results are cached longer than failures.
type HealthCache struct {
	mu      sync.Mutex
	entries map[string]healthEntry
	now     func() time.Time
}

// NewHealthCache returns an empty cache.
func NewHealthCache() *HealthCache {
	return &HealthCache{
		entries: make(map[string]healthEntry),
		now:     time.Now,
	}
}

// Check probes the source unless a fresh cached result exists. The returned
// error is nil when the source is considered healthy.
func (h *HealthCache) Check(ctx context.Context, source Source) error {
	name := source.Name()

	h.mu.Lock()
	entry, ok := h.entries[name]
	if ok {
		age := h.now().Sub(entry.checkedAt)
		ttl := healthyTTL
		if entry.err != nil {
			ttl = failedTTL
		}
		if age < ttl {
			h.mu.Unlock()
			return entry.err
		}
	}
	h.mu.Unlock()

	err := source.Ping(ctx)

	h.mu.Lock()
	h.entries[name] = healthEntry{err: err, checkedAt: h.now()}
	h.mu.Unlock()
	return err
}

// Invalidate drops the cached result for a source.
func (h *HealthCache) Invalidate(name string) {
	h.mu.Lock()
	delete(h.entries, name)
	h.mu.Unlock()
}
