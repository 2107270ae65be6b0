package broadcast

import (
	"slices"
	"sync"

	"github.com/google/uuid"
)

// Registry holds the clients currently connected. It is safe for concurrent
// use.
type Registry struct {
	mu      sync.RWMutex
	clients map[uuid.UUID]Client
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{clients: make(map[uuid.UUID]Client)}
}

// Add adds a client to the Registry, replacing any client with the same ID.
func (r *Registry) Add(c Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clients[c.ID()] = c
}

// Remove removes the client with the ID passed. It returns false if no such
// client was present.
func (r *Registry) Remove(id uuid.UUID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.clients[id]
	delete(r.clients, id)
	return ok
}

// Client looks up the client with the ID passed.
func (r *Registry) Client(id uuid.UUID) (Client, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.clients[id]
	return c, ok
}

// Len returns the number of clients in the Registry.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.clients)
}

// clientSlicePool holds scratch slices used to snapshot the clients of a
// Registry. Every broadcast takes a snapshot, so the slices are reused.
var clientSlicePool = sync.Pool{
	New: func() any {
		s := make([]Client, 0, 8)
		return &s
	},
}

// snapshot returns the clients currently in the Registry. The slice must be
// handed back through release.
func (r *Registry) snapshot() *[]Client {
	r.mu.RLock()
	defer r.mu.RUnlock()

	clients := clientSlicePool.Get().(*[]Client)
	*clients = slices.Grow((*clients)[:0], len(r.clients))
	for _, c := range r.clients {
		*clients = append(*clients, c)
	}
	return clients
}

func release(clients *[]Client) {
	clear(*clients)
	*clients = (*clients)[:0]
	clientSlicePool.Put(clients)
}
