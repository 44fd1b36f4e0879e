package chat

import "sync"

// Registry binds live connection handles to claimed display names. It is
// the only owner of that mapping. Duplicate display names are permitted
// unless the router runs in unique-names mode; lookups by name return the
// first match under map iteration order.
type Registry struct {
	mu    sync.RWMutex
	names map[string]string // connection id -> display name
}

func NewRegistry() *Registry {
	return &Registry{
		names: make(map[string]string),
	}
}

// Register binds a display name to a connection.
func (r *Registry) Register(connID, displayName string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.names[connID] = displayName
}

// Unregister removes the binding and reports the name, if any. A
// connection that disconnects before joining has no binding.
func (r *Registry) Unregister(connID string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	name, ok := r.names[connID]
	if ok {
		delete(r.names, connID)
	}
	return name, ok
}

// Name returns the display name bound to a connection.
func (r *Registry) Name(connID string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	name, ok := r.names[connID]
	return name, ok
}

// AllNames snapshots every bound display name for a presence broadcast.
// Order follows map iteration and is not stable across mutations.
func (r *Registry) AllNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.names))
	for _, name := range r.names {
		names = append(names, name)
	}
	return names
}

// FindByName returns the connection currently holding a display name.
func (r *Registry) FindByName(displayName string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for connID, name := range r.names {
		if name == displayName {
			return connID, true
		}
	}
	return "", false
}

// HasName reports whether any live connection holds the display name.
func (r *Registry) HasName(displayName string) bool {
	_, ok := r.FindByName(displayName)
	return ok
}
