package recommend

import (
	"fmt"

	"NewsRecommender/internal/domain"
)

// Strategy turns a corpus snapshot into one feature vector per article, in
// input order. Implementations only produce the vector space; ranking logic
// lives in the index.
type Strategy interface {
	Name() string

	// RequiresEmbeddings reports whether snapshot rows must carry a
	// precomputed dense vector.
	RequiresEmbeddings() bool

	Vectorize(articles []domain.Article) ([][]float64, error)
}

// Registry keeps a mapping from strategy names to their implementations.
type Registry struct {
	strategies map[string]Strategy
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{strategies: map[string]Strategy{}}
}

// Register adds or replaces a strategy implementation.
func (r *Registry) Register(strategy Strategy) {
	if r.strategies == nil {
		r.strategies = map[string]Strategy{}
	}
	r.strategies[strategy.Name()] = strategy
}

// Resolve returns a strategy by name or an error if it is absent.
func (r *Registry) Resolve(name string) (Strategy, error) {
	if strategy, ok := r.strategies[name]; ok {
		return strategy, nil
	}
	return nil, fmt.Errorf("vector strategy %s is not registered", name)
}
