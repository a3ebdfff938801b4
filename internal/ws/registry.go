package ws

import (
	"sort"
	"sync"

	"pigeon/internal/models"
)

// Registry is the single shared mutable structure of the core: a map
// from user id to the set of that user's open connections. Every
// mutation and read goes through one mutex, so snapshots never observe
// a partially updated connection set.
type Registry struct {
	mu      sync.Mutex
	clients map[*Client]struct{}
	byUser  map[int]map[*Client]struct{}
}

func NewRegistry() *Registry {
	return &Registry{
		clients: make(map[*Client]struct{}),
		byUser:  make(map[int]map[*Client]struct{}),
	}
}

func (r *Registry) Add(c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clients[c] = struct{}{}
	set, ok := r.byUser[c.userID]
	if !ok {
		set = make(map[*Client]struct{})
		r.byUser[c.userID] = set
	}
	set[c] = struct{}{}
}

// Remove is idempotent; it reports whether the client was present, so
// callers close the send channel and re-broadcast presence exactly once.
func (r *Registry) Remove(c *Client) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.clients[c]; !ok {
		return false
	}
	delete(r.clients, c)
	if set, ok := r.byUser[c.userID]; ok {
		delete(set, c)
		if len(set) == 0 {
			delete(r.byUser, c.userID)
		}
	}
	return true
}

// Snapshot returns the distinct identities currently holding at least
// one connection, ordered by user id.
func (r *Registry) Snapshot() []models.Presence {
	r.mu.Lock()
	defer r.mu.Unlock()
	online := make([]models.Presence, 0, len(r.byUser))
	for userID, set := range r.byUser {
		for c := range set {
			online = append(online, models.Presence{UserID: userID, Username: c.username})
			break
		}
	}
	sort.Slice(online, func(i, j int) bool { return online[i].UserID < online[j].UserID })
	return online
}

// ConnectionsFor returns every open connection of the given user.
func (r *Registry) ConnectionsFor(userID int) []*Client {
	r.mu.Lock()
	defer r.mu.Unlock()
	set := r.byUser[userID]
	out := make([]*Client, 0, len(set))
	for c := range set {
		out = append(out, c)
	}
	return out
}

// All returns every registered connection.
func (r *Registry) All() []*Client {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Client, 0, len(r.clients))
	for c := range r.clients {
		out = append(out, c)
	}
	return out
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.clients)
}
