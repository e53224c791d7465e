package dashboard

import (
	"sync"
	"time"
)

// registryTTL matches the auth session lifetime, so controllers for sessions
// that never log out still age out.
const registryTTL = 24 * time.Hour

type entry struct {
	ctrl     *Controller
	lastSeen time.Time
}

// Registry maps auth session tokens to dashboard controllers. Each full
// dashboard page load replaces the session's entry; htmx partial requests
// look it up.
type Registry struct {
	mu      sync.Mutex
	entries map[string]*entry
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]*entry)}
}

// Put registers the controller for a session, replacing any previous one,
// and prunes entries not seen within the session lifetime.
func (r *Registry) Put(token string, c *Controller) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	for tok, e := range r.entries {
		if now.Sub(e.lastSeen) > registryTTL {
			delete(r.entries, tok)
		}
	}
	r.entries[token] = &entry{ctrl: c, lastSeen: now}
}

// Get returns the session's controller, if any.
func (r *Registry) Get(token string) (*Controller, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[token]
	if !ok {
		return nil, false
	}
	e.lastSeen = time.Now()
	return e.ctrl, true
}

// Delete drops the session's controller, used on logout.
func (r *Registry) Delete(token string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, token)
}
