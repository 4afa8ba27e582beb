package recommend

import (
	"errors"
	"fmt"
)

// ErrArticleNotFound signals that the seed article id is absent from the
// current snapshot. Distinct from a valid empty recommendation list.
var ErrArticleNotFound = errors.New("article not found in snapshot")

// ErrIndexNotBuilt signals a query against a service whose matrix has not
// been built yet. Fatal configuration error, never retried.
var ErrIndexNotBuilt = errors.New("similarity index not built")

// MissingEmbeddingError reports an article inside the snapshot that lacks a
// stored embedding while the embedding strategy is active. Callers must
// pre-filter the snapshot to indexed articles.
type MissingEmbeddingError struct {
	ArticleID int64
}

func (e *MissingEmbeddingError) Error() string {
	return fmt.Sprintf("article %d has no stored embedding", e.ArticleID)
}
