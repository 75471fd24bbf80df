package registry

import (
	"errors"
	"sort"
	"sync"

	"github.com/hupe1980/simmesh/core"
)

// ErrDuplicateID is returned when registering an agent whose id is already taken.
var ErrDuplicateID = errors.New("registry: duplicate agent id")

// InMemory is a volatile Registry implementation storing agents in a process
// local map. It is safe for concurrent access. Agents are stored by pointer:
// the registry gives out handles, the agent's own mutex guards its state.
type InMemory struct {
	mu     sync.RWMutex
	agents map[string]*core.Agent
}

// NewInMemory constructs an empty in-memory registry.
func NewInMemory() *InMemory {
	return &InMemory{agents: make(map[string]*core.Agent)}
}

// Register adds an agent to the population.
func (r *InMemory) Register(a *core.Agent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.agents[a.ID]; exists {
		return ErrDuplicateID
	}
	r.agents[a.ID] = a
	return nil
}

// Get returns the agent with the given id, or nil and false when unknown.
func (r *InMemory) Get(id string) (*core.Agent, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.agents[id]
	return a, ok
}

// All returns a snapshot slice of every registered agent, ordered by id so a
// scan pass iterates the population in a stable order.
func (r *InMemory) All() []*core.Agent {
	r.mu.RLock()
	defer r.mu.RUnlock()
	all := make([]*core.Agent, 0, len(r.agents))
	for _, a := range r.agents {
		all = append(all, a)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return all
}

// Len returns the current population size.
func (r *InMemory) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.agents)
}
