package ws

import (
	"sync"

	"github.com/google/uuid"

	"github.com/dkralj/banter/internal/domain"
)

// Registry is the single source of truth for who is online. It maps live,
// authenticated connections to their identity behind one mutex, the only
// synchronization point shared between the broadcast and moderation paths.
//
// A user may hold any number of concurrent connections; FindByUser returns
// all of them.
type Registry struct {
	mu      sync.RWMutex
	clients map[uuid.UUID]*Client
	byUser  map[int64]map[uuid.UUID]*Client
}

func NewRegistry() *Registry {
	return &Registry{
		clients: make(map[uuid.UUID]*Client),
		byUser:  make(map[int64]map[uuid.UUID]*Client),
	}
}

// Add registers an authenticated connection. The client must carry its
// identity before it is added.
func (r *Registry) Add(c *Client) {
	ident := c.Identity()
	if ident == nil {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.clients[c.id] = c
	conns := r.byUser[ident.UserID]
	if conns == nil {
		conns = make(map[uuid.UUID]*Client)
		r.byUser[ident.UserID] = conns
	}
	conns[c.id] = c
}

// Remove drops a connection from the registry. Removing an absent connection
// is a no-op; the return value reports whether the client was present.
func (r *Registry) Remove(c *Client) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.clients[c.id]; !ok {
		return false
	}
	delete(r.clients, c.id)

	if ident := c.Identity(); ident != nil {
		conns := r.byUser[ident.UserID]
		delete(conns, c.id)
		if len(conns) == 0 {
			delete(r.byUser, ident.UserID)
		}
	}
	return true
}

// FindByUser returns every live connection of a user, possibly none.
func (r *Registry) FindByUser(userID int64) []*Client {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conns := r.byUser[userID]
	out := make([]*Client, 0, len(conns))
	for _, c := range conns {
		out = append(out, c)
	}
	return out
}

// All returns a snapshot of every registered connection.
func (r *Registry) All() []*Client {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Client, 0, len(r.clients))
	for _, c := range r.clients {
		out = append(out, c)
	}
	return out
}

// SnapshotOnline returns one entry per online user, regardless of how many
// connections they hold.
func (r *Registry) SnapshotOnline() []domain.UserRef {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.UserRef, 0, len(r.byUser))
	for _, conns := range r.byUser {
		for _, c := range conns {
			out = append(out, c.Identity().Ref())
			break
		}
	}
	return out
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.clients)
}
