package processors

import (
	"sort"
	"sync"

	"parley/internal/requests/models"
	dErrors "parley/pkg/domain-errors"
)

// Factory builds a processor from the engine's dependencies.
type Factory func(deps Dependencies) Processor

// Registry maps item type tags to processors. Each engine owns one.
type Registry struct {
	mu        sync.RWMutex
	deps      Dependencies
	factories map[string]Factory
	instances map[string]Processor
	generic   Processor
}

func NewRegistry(deps Dependencies) *Registry {
	return &Registry{
		deps:      deps,
		factories: make(map[string]Factory),
		instances: make(map[string]Processor),
		generic:   NewGenericProcessor(deps),
	}
}

// NewDefaultRegistry returns a registry with the built-in item types.
func NewDefaultRegistry(deps Dependencies) *Registry {
	r := NewRegistry(deps)
	r.Replace(models.TypeCreateAttributeRequestItem, NewCreateAttributeProcessor)
	r.Replace(models.TypeReadAttributeRequestItem, NewReadAttributeProcessor)
	r.Replace(models.TypeProposeAttributeRequestItem, NewProposeAttributeProcessor)
	r.Replace(models.TypeShareAttributeRequestItem, NewShareAttributeProcessor)
	return r
}

// Register adds a processor for itemType. A second registration of the same
// tag is a conflict; use Replace to override.
func (r *Registry) Register(itemType string, factory Factory) error {
	if itemType == "" || factory == nil {
		return dErrors.New(dErrors.CodeInvalidInput, "item type and factory are required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.factories[itemType]; exists {
		return dErrors.Newf(dErrors.CodeConflict, "a processor for %s is already registered", itemType)
	}
	r.factories[itemType] = factory
	return nil
}

// Replace sets the processor for itemType, overriding any previous one.
func (r *Registry) Replace(itemType string, factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[itemType] = factory
	delete(r.instances, itemType)
}

// ProcessorFor returns the processor registered for item's type. Used when
// creating requests, where an unknown type is an error.
func (r *Registry) ProcessorFor(item models.RequestItem) (Processor, error) {
	if p := r.lookup(item.ItemType()); p != nil {
		return p, nil
	}
	return nil, dErrors.Newf(dErrors.CodeMissingProcessor, "no processor registered for %s", item.ItemType())
}

// ProcessorOrGeneric falls back to the generic processor. Used when deciding
// and applying, where peers may send types we do not know.
func (r *Registry) ProcessorOrGeneric(item models.RequestItem) Processor {
	if p := r.lookup(item.ItemType()); p != nil {
		return p
	}
	return r.generic
}

// Types lists the registered tags in sorted order.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.factories))
	for t := range r.factories {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

func (r *Registry) lookup(itemType string) Processor {
	r.mu.RLock()
	p, ok := r.instances[itemType]
	factory, registered := r.factories[itemType]
	r.mu.RUnlock()
	if ok {
		return p
	}
	if !registered {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.instances[itemType]; ok {
		return p
	}
	factory, registered = r.factories[itemType]
	if !registered {
		return nil
	}
	p = factory(r.deps)
	r.instances[itemType] = p
	return p
}
