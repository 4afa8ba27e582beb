package ports

import (
	"context"
	"time"

	"NewsRecommender/internal/domain"
)

// ArticleStore persists articles and serves read-only corpus snapshots.
type ArticleStore interface {
	// Insert appends an article; duplicates on (source, title) are silently
	// skipped and reported via the returned flag.
	Insert(ctx context.Context, article domain.Article) (inserted bool, err error)

	GetByID(ctx context.Context, id int64) (domain.Article, error)

	// List returns a page of articles with optional category filter and
	// case-insensitive title search, newest first, plus the unpaged total.
	List(ctx context.Context, q ArticleQuery) ([]domain.Article, int64, error)

	// Snapshot loads the rows the recommendation core indexes. When
	// withEmbeddings is set, only rows carrying an embedding are returned;
	// otherwise only rows with non-empty content. Ordered by id.
	Snapshot(ctx context.Context, withEmbeddings bool) ([]domain.Article, error)

	// MissingEmbeddings lists articles that still need a vector backfilled.
	MissingEmbeddings(ctx context.Context, limit int) ([]domain.Article, error)

	// SaveEmbedding stores the JSON-encoded vector for one article.
	SaveEmbedding(ctx context.Context, id int64, embedding []float64) error

	Stats(ctx context.Context) (domain.CorpusStats, error)
}

// ArticleQuery carries listing parameters for ArticleStore.List.
type ArticleQuery struct {
	Page     int
	PageSize int
	Category string
	Search   string
}

// InteractionStore appends interaction events and aggregates them per article.
type InteractionStore interface {
	Append(ctx context.Context, event domain.InteractionEvent) error
	AggregateStats(ctx context.Context) ([]domain.InteractionStat, error)
}

// ArticleSource pulls fresh articles from an upstream provider.
type ArticleSource interface {
	FetchCategory(ctx context.Context, category string) ([]domain.Article, error)
}

// Embedder encodes article text into a fixed-length dense vector out-of-band.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

// Sanitizer normalizes raw provider text before storage.
type Sanitizer interface {
	Clean(text string) string
}

// Scheduler controls when the refresh job executes.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
