package source

import (
	"context"
	"fmt"

	"ReviewPulse/internal/domain"
	"ReviewPulse/internal/ports"
)

// Extractor captures a single store strategy (Play Store, App Store, etc.).
type Extractor interface {
	Name() string
	Fetch(ctx context.Context, req ports.FetchRequest) ([]domain.Review, error)
}

// Registry keeps a mapping from store names to their extractors.
type Registry struct {
	extractors map[string]Extractor
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{extractors: map[string]Extractor{}}
}

// Register adds or replaces an extractor implementation.
func (r *Registry) Register(extractor Extractor) {
	if r.extractors == nil {
		r.extractors = map[string]Extractor{}
	}
	r.extractors[extractor.Name()] = extractor
}

// Resolve returns an extractor by name or an error if it is absent.
func (r *Registry) Resolve(name string) (Extractor, error) {
	if extractor, ok := r.extractors[name]; ok {
		return extractor, nil
	}
	return nil, fmt.Errorf("extractor %s is not registered", name)
}
