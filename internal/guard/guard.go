// Package guard limits each user to one in-flight command.
package guard

import "sync"

// Registry tracks the users with an active command.
type Registry struct {
	mu     sync.Mutex
	active map[string]struct{}
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{active: make(map[string]struct{})}
}

// TryAcquire marks userID active. It returns false when the user already has
// an active command. The returned release func is safe to call more than once.
func (r *Registry) TryAcquire(userID string) (release func(), ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, busy := r.active[userID]; busy {
		return func() {}, false
	}
	r.active[userID] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			r.mu.Lock()
			delete(r.active, userID)
			r.mu.Unlock()
		})
	}, true
}

// Active reports whether userID has an active command.
func (r *Registry) Active(userID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.active[userID]
	return ok
}

// Len returns the number of users with an active command.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.active)
}
