package engine

import (
	"fmt"
	"sync"
)

// Relationship declares that a document field holds the id of another
// resource's record.
type Relationship struct {
	// Resource is the registry name of the referenced resource.
	Resource string
}

// Resource describes one entity type mounted on the engine: where its
// documents live and which of its fields reference other resources.
type Resource struct {
	Name          string
	Collection    string
	Relationships map[string]Relationship
}

// Registry holds the cross-resource relationship graph the population
// resolver walks. It is populated once at startup from static
// configuration.
type Registry struct {
	mu        sync.RWMutex
	resources map[string]Resource
}

// NewRegistry creates an empty resource registry.
func NewRegistry() *Registry {
	return &Registry{resources: make(map[string]Resource)}
}

// Register adds a resource to the registry. Registering the same name twice
// is a configuration error.
func (r *Registry) Register(res Resource) error {
	if res.Name == "" {
		return fmt.Errorf("resource name is required")
	}
	if res.Collection == "" {
		return fmt.Errorf("resource %q: collection is required", res.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.resources[res.Name]; exists {
		return fmt.Errorf("resource %q already registered", res.Name)
	}
	r.resources[res.Name] = res
	return nil
}

// Resource looks up a registered resource by name.
func (r *Registry) Resource(name string) (Resource, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	res, ok := r.resources[name]
	return res, ok
}
