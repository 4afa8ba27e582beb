package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"NewsRecommender/internal/ports"
)

// IngestReport summarizes one ingestion run across all categories.
type IngestReport struct {
	Fetched          int
	Inserted         int
	Duplicates       int
	Dropped          int
	FailedCategories []string
}

// Ingester pulls headlines per category, cleans them and stores the
// survivors. A failing category does not abort the run.
type Ingester struct {
	source     ports.ArticleSource
	store      ports.ArticleStore
	cleaner    ports.Sanitizer
	categories []string
	logger     *slog.Logger
}

func NewIngester(
	source ports.ArticleSource,
	store ports.ArticleStore,
	cleaner ports.Sanitizer,
	categories []string,
	logger *slog.Logger,
) *Ingester {
	if logger == nil {
		logger = slog.Default()
	}
	return &Ingester{
		source:     source,
		store:      store,
		cleaner:    cleaner,
		categories: categories,
		logger:     logger,
	}
}

// Run executes one full ingestion pass.
func (i *Ingester) Run(ctx context.Context) (IngestReport, error) {
	var report IngestReport

	for _, category := range i.categories {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		articles, err := i.source.FetchCategory(ctx, category)
		if err != nil {
			i.logger.Error("fetch category failed", "category", category, "error", err)
			report.FailedCategories = append(report.FailedCategories, category)
			continue
		}
		report.Fetched += len(articles)

		for _, article := range articles {
			article.Title = i.cleaner.Clean(article.Title)
			article.Content = i.cleaner.Clean(article.Content)
			if article.Title == "" || article.Content == "" {
				report.Dropped++
				continue
			}

			inserted, err := i.store.Insert(ctx, article)
			if err != nil {
				return report, fmt.Errorf("store article %q: %w", article.Title, err)
			}
			if inserted {
				report.Inserted++
			} else {
				report.Duplicates++
			}
		}

		i.logger.Info("category ingested", "category", category, "fetched", len(articles))
	}

	if len(report.FailedCategories) == len(i.categories) && len(i.categories) > 0 {
		return report, fmt.Errorf("all %d categories failed to fetch", len(i.categories))
	}
	return report, nil
}
