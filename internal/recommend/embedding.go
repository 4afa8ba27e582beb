package recommend

import (
	"fmt"

	"NewsRecommender/internal/domain"
)

// EmbeddingStrategy stacks precomputed dense vectors stored alongside the
// articles into a matrix. The vectors are produced out-of-band by an external
// text-embedding model; this strategy never encodes text itself.
type EmbeddingStrategy struct{}

var _ Strategy = (*EmbeddingStrategy)(nil)

// NewEmbeddingStrategy returns the stored-embedding strategy.
func NewEmbeddingStrategy() *EmbeddingStrategy {
	return &EmbeddingStrategy{}
}

// Name identifies the strategy inside the registry.
func (s *EmbeddingStrategy) Name() string {
	return "embedding"
}

// RequiresEmbeddings is true: rows without a stored vector cannot be indexed.
func (s *EmbeddingStrategy) RequiresEmbeddings() bool {
	return true
}

// Vectorize validates and stacks the stored vectors in input order. Any
// article lacking a vector yields a MissingEmbeddingError; dimension
// mismatches are rejected as corrupt data.
func (s *EmbeddingStrategy) Vectorize(articles []domain.Article) ([][]float64, error) {
	matrix := make([][]float64, len(articles))
	dim := 0

	for i, article := range articles {
		if len(article.Embedding) == 0 {
			return nil, &MissingEmbeddingError{ArticleID: article.ID}
		}
		if dim == 0 {
			dim = len(article.Embedding)
		} else if len(article.Embedding) != dim {
			return nil, fmt.Errorf("article %d embedding has %d dimensions, expected %d",
				article.ID, len(article.Embedding), dim)
		}

		vec := make([]float64, dim)
		copy(vec, article.Embedding)
		matrix[i] = vec
	}

	return matrix, nil
}
