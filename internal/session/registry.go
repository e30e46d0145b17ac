package session

import "sync"

// Registry tracks bearer tokens the commerce API has rejected and which
// tokens have already restored their remote cart. Revocation is the global
// session-invalidation signal: once a token lands here, every later request
// carrying it is treated as a guest.
type Registry struct {
	mu      sync.Mutex
	revoked map[string]struct{}
	seen    map[string]struct{}
}

func NewRegistry() *Registry {
	return &Registry{
		revoked: make(map[string]struct{}),
		seen:    make(map[string]struct{}),
	}
}

// Invalidate records a token the backend answered 401 for.
func (r *Registry) Invalidate(token string) {
	if token == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.revoked[token] = struct{}{}
	delete(r.seen, token)
}

func (r *Registry) Revoked(token string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.revoked[token]
	return ok
}

// FirstSeen reports whether this token is new to the registry and marks it
// seen. The first sighting is session establishment, which is when the remote
// cart replaces local state.
func (r *Registry) FirstSeen(token string) bool {
	if token == "" {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.seen[token]; ok {
		return false
	}
	r.seen[token] = struct{}{}
	return true
}
