package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"NewsRecommender/internal/infrastructure/embedder"
	"NewsRecommender/internal/ports"
)

const defaultBackfillBatch = 50

// Backfiller vectorizes stored articles that do not yet carry an embedding.
// It runs in batches so a large backlog cannot hold a refresh cycle hostage.
type Backfiller struct {
	store     ports.ArticleStore
	embedder  ports.Embedder
	batchSize int
	logger    *slog.Logger
}

func NewBackfiller(store ports.ArticleStore, emb ports.Embedder, batchSize int, logger *slog.Logger) *Backfiller {
	if batchSize <= 0 {
		batchSize = defaultBackfillBatch
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Backfiller{
		store:     store,
		embedder:  emb,
		batchSize: batchSize,
		logger:    logger,
	}
}

// Run embeds pending articles until the backlog is empty or ctx is done.
// It returns the number of vectors written.
func (b *Backfiller) Run(ctx context.Context) (int, error) {
	var embedded int

	for {
		if err := ctx.Err(); err != nil {
			return embedded, err
		}

		pending, err := b.store.MissingEmbeddings(ctx, b.batchSize)
		if err != nil {
			return embedded, fmt.Errorf("load pending articles: %w", err)
		}
		if len(pending) == 0 {
			return embedded, nil
		}

		for _, article := range pending {
			vector, err := b.embedder.Embed(ctx, embedder.EmbeddingText(article.Title, article.Content))
			if err != nil {
				return embedded, fmt.Errorf("embed article %d: %w", article.ID, err)
			}
			if err := b.store.SaveEmbedding(ctx, article.ID, vector); err != nil {
				return embedded, fmt.Errorf("save embedding for article %d: %w", article.ID, err)
			}
			embedded++
		}

		b.logger.Info("embedding batch complete", "embedded", embedded, "batch", len(pending))

		// A short batch means the backlog is drained.
		if len(pending) < b.batchSize {
			return embedded, nil
		}
	}
}
