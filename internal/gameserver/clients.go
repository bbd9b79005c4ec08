package gameserver

import (
	"sync"
)

// Clients tracks every connected client and the entity each one owns.
// Thread-safe: registration happens on connection goroutines, fanout on the
// simulation goroutine.
type Clients struct {
	mu       sync.RWMutex
	all      map[*Client]struct{}
	byEntity map[uint32]*Client
}

// NewClients creates an empty client registry.
func NewClients() *Clients {
	return &Clients{
		all:      make(map[*Client]struct{}, 256),
		byEntity: make(map[uint32]*Client, 256),
	}
}

// Register adds a freshly accepted client.
func (cs *Clients) Register(c *Client) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.all[c] = struct{}{}
}

// BindEntity indexes the client by the entity it now owns.
func (cs *Clients) BindEntity(entityID uint32, c *Client) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.byEntity[entityID] = c
}

// Unregister removes the client and its entity binding.
func (cs *Clients) Unregister(c *Client) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	delete(cs.all, c)
	if id := c.EntityID(); id != 0 {
		if cs.byEntity[id] == c {
			delete(cs.byEntity, id)
		}
	}
}

// ByEntity returns the client owning the given entity, or nil.
func (cs *Clients) ByEntity(entityID uint32) *Client {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return cs.byEntity[entityID]
}

// Count returns the number of connected clients.
func (cs *Clients) Count() int {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return len(cs.all)
}

// InWorldCount returns the number of clients bound to an entity.
func (cs *Clients) InWorldCount() int {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return len(cs.byEntity)
}

// Broadcast queues the packet to every in-world client. Each client gets
// the same plaintext slice; transports that encrypt must copy before
// mutating.
func (cs *Clients) Broadcast(pkt []byte) {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	for _, c := range cs.byEntity {
		c.Send(pkt)
	}
}

// SendTo queues the packet to the client owning entityID, if connected.
func (cs *Clients) SendTo(entityID uint32, pkt []byte) {
	cs.mu.RLock()
	c := cs.byEntity[entityID]
	cs.mu.RUnlock()
	if c != nil {
		c.Send(pkt)
	}
}

// ForEach visits every registered client until fn returns false.
func (cs *Clients) ForEach(fn func(*Client) bool) {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	for c := range cs.all {
		if !fn(c) {
			return
		}
	}
}
