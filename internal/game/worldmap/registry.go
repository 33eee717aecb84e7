package worldmap

import "fmt"

// Registry is the static id → GameMap lookup table the store queries on map
// loads. Maps are registered once at startup and never mutated afterwards.
type Registry struct {
	maps map[string]*GameMap
}

// NewRegistry returns an empty Registry.
//
// Postcondition: the internal map is initialised.
func NewRegistry() *Registry {
	return &Registry{maps: make(map[string]*GameMap)}
}

// Register adds m to the registry.
//
// Precondition:  m must not be nil and must have passed Validate.
// Postcondition: Get(m.ID) returns (m, true); returns error if m.ID already registered.
func (r *Registry) Register(m *GameMap) error {
	if _, exists := r.maps[m.ID]; exists {
		return fmt.Errorf("worldmap: Registry.Register: map ID %q already registered", m.ID)
	}
	r.maps[m.ID] = m
	return nil
}

// Get returns the GameMap for the given id and whether it was found.
//
// Postcondition: ok is true iff the id is registered.
func (r *Registry) Get(id string) (*GameMap, bool) {
	m, ok := r.maps[id]
	return m, ok
}

// Count returns the number of registered maps.
func (r *Registry) Count() int {
	return len(r.maps)
}

// All returns all registered maps in unspecified order.
//
// Postcondition: len(result) == Count().
func (r *Registry) All() []*GameMap {
	out := make([]*GameMap, 0, len(r.maps))
	for _, m := range r.maps {
		out = append(out, m)
	}
	return out
}
