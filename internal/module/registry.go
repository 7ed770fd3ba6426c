package module

import (
	"sort"

	"github.com/eliteGoblin/focusd/hotkeyd/internal/domain"
)

// Registry holds the loaded modules by id.
type Registry struct {
	modules map[domain.ModuleID]domain.Module
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		modules: make(map[domain.ModuleID]domain.Module),
	}
}

// NewRegistryWithModules creates a registry holding modules.
func NewRegistryWithModules(modules ...domain.Module) *Registry {
	r := NewRegistry()
	for _, m := range modules {
		r.Register(m)
	}
	return r
}

// Register adds a module. A module with the same id is replaced.
func (r *Registry) Register(m domain.Module) {
	r.modules[m.ID()] = m
}

// Get returns a module by ID.
func (r *Registry) Get(id domain.ModuleID) (domain.Module, bool) {
	m, ok := r.modules[id]
	return m, ok
}

// GetAll returns all modules sorted by id.
func (r *Registry) GetAll() []domain.Module {
	result := make([]domain.Module, 0, len(r.modules))
	for _, id := range r.List() {
		result = append(result, r.modules[id])
	}
	return result
}

// List returns all module IDs, sorted.
func (r *Registry) List() []domain.ModuleID {
	ids := make([]domain.ModuleID, 0, len(r.modules))
	for id := range r.modules {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
