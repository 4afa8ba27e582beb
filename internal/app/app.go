package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"NewsRecommender/internal/config"
	"NewsRecommender/internal/infrastructure/embedder"
	"NewsRecommender/internal/infrastructure/httpapi"
	"NewsRecommender/internal/infrastructure/newsapi"
	"NewsRecommender/internal/infrastructure/scheduler"
	"NewsRecommender/internal/infrastructure/storage"
	"NewsRecommender/internal/logging"
	"NewsRecommender/internal/recommend"
	"NewsRecommender/internal/textclean"
	"NewsRecommender/internal/usecase"
)

const shutdownTimeout = 15 * time.Second

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg       config.Config
	logger    *slog.Logger
	db        *sql.DB
	service   *recommend.Service
	refresher *usecase.Refresher
	scheduler *scheduler.CronScheduler
	server    *httpapi.Server
}

// New builds a runnable application instance: storage, provider clients,
// the recommendation service and the HTTP surface.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level, cfg.Logging.Format)
	}

	db, err := storage.Open(ctx, cfg.Database.DSN)
	if err != nil {
		return nil, err
	}
	if err := storage.EnsureSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	repo := storage.NewPostgresRepository(db)

	registry := recommend.NewRegistry()
	lexical := recommend.NewLexicalStrategy()
	if cfg.Recommender.MaxFeatures > 0 {
		lexical.MaxFeatures = cfg.Recommender.MaxFeatures
	}
	if cfg.Recommender.MinDocFreq > 0 {
		lexical.MinDocFreq = cfg.Recommender.MinDocFreq
	}
	if cfg.Recommender.MaxDocShare > 0 {
		lexical.MaxDocShare = cfg.Recommender.MaxDocShare
	}
	registry.Register(lexical)
	registry.Register(recommend.NewEmbeddingStrategy())

	strategy, err := registry.Resolve(cfg.Recommender.Strategy)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	service := recommend.NewService(repo, repo, strategy, recommend.Params{
		TopN:             cfg.Recommender.TopN,
		MinSimilarity:    cfg.Recommender.MinSimilarity,
		CategoryBoost:    cfg.Recommender.CategoryBoost,
		ContentWeight:    cfg.Recommender.ContentWeight,
		PopularityWeight: cfg.Recommender.PopularityWeight,
		NearDuplicate:    cfg.Recommender.NearDuplicate,
	}, baseLogger.With("component", "recommender"))

	source := newsapi.NewClient(cfg.NewsAPI.APIKey, cfg.NewsAPI.BaseURL, cfg.NewsAPI.PageSize, 30*time.Second)
	ingester := usecase.NewIngester(source, repo, textclean.New(), cfg.NewsAPI.Categories,
		baseLogger.With("component", "ingester"))

	var backfiller *usecase.Backfiller
	if strategy.RequiresEmbeddings() {
		if cfg.OpenAI.APIKey == "" {
			_ = db.Close()
			return nil, fmt.Errorf("strategy %s needs an OpenAI api key", strategy.Name())
		}
		backfiller = usecase.NewBackfiller(repo,
			embedder.NewOpenAIEmbedder(cfg.OpenAI.APIKey, cfg.OpenAI.Model),
			cfg.OpenAI.BackfillBatch,
			baseLogger.With("component", "backfiller"))
	}

	refresher := usecase.NewRefresher(ingester, backfiller, service,
		baseLogger.With("component", "refresher"))

	cronScheduler, err := scheduler.NewCronScheduler(cfg.Scheduler.CronExpression, cfg.Scheduler.Timezone)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	server := httpapi.NewServer(service, repo, repo, service.Rebuild, httpapi.Options{
		Addr:           cfg.Server.Addr,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		DefaultTopN:    cfg.Recommender.TopN,
		DefaultMode:    recommend.ModeHybrid,
		MaxPageSize:    cfg.Server.MaxPageSize,
	}, baseLogger.With("component", "http"))

	return &Application{
		cfg:       cfg,
		logger:    baseLogger,
		db:        db,
		service:   service,
		refresher: refresher,
		scheduler: cronScheduler,
		server:    server,
	}, nil
}

// Run starts the scheduler and the HTTP server and blocks until ctx is
// cancelled or the server fails.
func (a *Application) Run(ctx context.Context) error {
	defer a.db.Close()

	// Warm the snapshot so the first request does not pay the build cost.
	// An empty database is fine; a dead one is not.
	if err := a.service.Rebuild(ctx); err != nil {
		return fmt.Errorf("initial index build: %w", err)
	}

	if err := a.scheduler.Start(ctx, a.refresher.Job()); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- a.server.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		a.stopScheduler()
		return err
	case <-ctx.Done():
	}

	a.logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	a.stopScheduler()
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	return nil
}

// Refresh runs one ingest-and-rebuild cycle outside the schedule.
func (a *Application) Refresh(ctx context.Context) error {
	return a.refresher.Run(ctx)
}

func (a *Application) stopScheduler() {
	stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := a.scheduler.Stop(stopCtx); err != nil {
		a.logger.Warn("scheduler stop timed out", "error", err)
	}
}
