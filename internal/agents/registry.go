package agents

import (
	"fmt"
	"slices"
	"strings"

	"github.com/renato0307/duet/internal/domain"
	"github.com/renato0307/duet/internal/ports"
)

// Registry is the read-only table of agent descriptors.
// It is built once at startup and shared by all sessions without locking.
type Registry struct {
	agents map[string]*domain.AgentDescriptor
}

// NewRegistry returns a registry holding only the built-in descriptors
func NewRegistry() *Registry {
	return LoadRegistry(nil, nil)
}

// LoadRegistry builds the registry from the built-ins, replacing or adding
// the given overrides by ID and applying configured executable paths.
func LoadRegistry(overrides []domain.AgentDescriptor, paths map[string]string) *Registry {
	r := &Registry{agents: make(map[string]*domain.AgentDescriptor)}

	for _, d := range Builtin() {
		r.agents[d.ID] = &d
	}
	for _, d := range overrides {
		r.agents[d.ID] = &d
	}
	for id, path := range paths {
		if d, ok := r.agents[id]; ok && path != "" {
			d.Path = path
		}
	}

	return r
}

// Get returns the descriptor for the given agent ID
func (r *Registry) Get(id string) (*domain.AgentDescriptor, error) {
	d, ok := r.agents[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s (known: %s)", ports.ErrUnknownAgent, id, strings.Join(r.IDs(), ", "))
	}
	return d, nil
}

// IDs returns the sorted agent IDs
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.agents))
	for id := range r.agents {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// List returns the descriptors sorted by ID
func (r *Registry) List() []*domain.AgentDescriptor {
	ids := r.IDs()
	list := make([]*domain.AgentDescriptor, 0, len(ids))
	for _, id := range ids {
		list = append(list, r.agents[id])
	}
	return list
}
