package microservice

import (
	"sync"
)

// HealthRegistry holds named boolean health probes. The bridge registers
// one probe per consumer group plus a base readiness probe; the aggregate
// is healthy only when every probe reports true.
type HealthRegistry struct {
	mu     sync.RWMutex
	checks map[string]func() bool
}

// NewHealthRegistry creates an empty registry.
func NewHealthRegistry() *HealthRegistry {
	return &HealthRegistry{
		checks: make(map[string]func() bool),
	}
}

// AddCheck registers a named probe. A later registration under the same
// name replaces the earlier one.
func (r *HealthRegistry) AddCheck(name string, check func() bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.checks[name] = check
}

// Healthy reports the logical AND of all registered probes. An empty
// registry is healthy.
func (r *HealthRegistry) Healthy() bool {
	for _, ok := range r.Statuses() {
		if !ok {
			return false
		}
	}
	return true
}

// Statuses returns the current result of every probe keyed by name.
func (r *HealthRegistry) Statuses() map[string]bool {
	r.mu.RLock()
	checks := make(map[string]func() bool, len(r.checks))
	for name, check := range r.checks {
		checks[name] = check
	}
	r.mu.RUnlock()

	// Probes run outside the lock; a slow probe must not block registration.
	statuses := make(map[string]bool, len(checks))
	for name, check := range checks {
		statuses[name] = check()
	}
	return statuses
}
