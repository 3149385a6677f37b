// Package registry holds the set of discovered mods keyed by UUID and builds the
// dependency graph the resolver consumes.
package registry

import (
	"errors"
	"fmt"
	"sync"

	"github.com/leefowlercu/modorder/internal/modmeta"
)

// ErrDuplicateUUID is matched by every *DuplicateError.
var ErrDuplicateUUID = errors.New("duplicate mod UUID")

// DuplicateError reports a second package declaring an already registered UUID.
type DuplicateError struct {
	UUID string
	// Existing is the source of the mod that was kept.
	Existing string
	// Rejected is the source of the mod that was refused.
	Rejected string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("mod %s from %s already registered from %s", e.UUID, e.Rejected, e.Existing)
}

// Is reports whether target is ErrDuplicateUUID.
func (e *DuplicateError) Is(target error) bool {
	return target == ErrDuplicateUUID
}

// Registry maps UUIDs to mods and remembers registration order.
type Registry struct {
	mu    sync.RWMutex
	mods  map[string]*modmeta.Mod
	order []string
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{mods: make(map[string]*modmeta.Mod)}
}

// Register adds m. A mod whose UUID is already present is rejected with a *DuplicateError
// and the first registration is kept.
func (r *Registry) Register(m *modmeta.Mod) error {
	if m == nil || m.UUID == "" {
		return fmt.Errorf("cannot register mod without UUID; %w", modmeta.ErrIncompleteMetadata)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.mods[m.UUID]; ok {
		return &DuplicateError{UUID: m.UUID, Existing: existing.Source, Rejected: m.Source}
	}
	r.mods[m.UUID] = m
	r.order = append(r.order, m.UUID)
	return nil
}

// Get returns the mod registered under uuid.
func (r *Registry) Get(uuid string) (*modmeta.Mod, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.mods[uuid]
	return m, ok
}

// Mods returns all mods in registration order.
func (r *Registry) Mods() []*modmeta.Mod {
	r.mu.RLock()
	defer r.mu.RUnlock()

	mods := make([]*modmeta.Mod, len(r.order))
	for i, id := range r.order {
		mods[i] = r.mods[id]
	}
	return mods
}

// Order returns the registered UUIDs in registration order.
func (r *Registry) Order() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}

// Len returns the number of registered mods.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// BuildGraph snapshots the registry into a dependency graph. Every declared dependency
// becomes an edge, including those whose target is not registered.
func (r *Registry) BuildGraph() *Graph {
	r.mu.RLock()
	defer r.mu.RUnlock()

	g := newGraph(len(r.order))
	for _, id := range r.order {
		m := r.mods[id]
		g.addNode(m)
		for _, dep := range m.Dependencies {
			g.addEdge(Edge{From: id, To: dep.UUID, Name: dep.Name, MinVersion: dep.MinVersion})
		}
	}
	return g
}
