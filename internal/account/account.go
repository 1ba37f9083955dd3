// Package account answers who "me" is and which peers we hold a
// relationship with. Key material and relationship negotiation live elsewhere.
package account

import (
	"context"
	"sort"
	"sync"

	id "parley/pkg/domain"
)

// Identity is the local account this engine acts for.
type Identity struct {
	address id.Address
}

func NewIdentity(address id.Address) *Identity {
	return &Identity{address: address}
}

func (i *Identity) Address() id.Address {
	return i.address
}

func (i *Identity) IsMe(addr id.Address) bool {
	return addr == i.address
}

// InMemoryRelationships is the relationship set used when no relationship
// service is wired. It is seeded from configuration.
type InMemoryRelationships struct {
	mu    sync.RWMutex
	peers map[id.Address]struct{}
}

func NewInMemoryRelationships(peers ...id.Address) *InMemoryRelationships {
	r := &InMemoryRelationships{peers: make(map[id.Address]struct{}, len(peers))}
	for _, p := range peers {
		r.peers[p] = struct{}{}
	}
	return r
}

func (r *InMemoryRelationships) Add(peer id.Address) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.peers[peer] = struct{}{}
}

func (r *InMemoryRelationships) Remove(peer id.Address) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.peers, peer)
}

func (r *InMemoryRelationships) HasRelationship(_ context.Context, peer id.Address) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.peers[peer]
	return ok, nil
}

// Peers returns the related addresses in sorted order.
func (r *InMemoryRelationships) Peers() []id.Address {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]id.Address, 0, len(r.peers))
	for p := range r.peers {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
