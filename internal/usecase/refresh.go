package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"NewsRecommender/internal/recommend"
)

// Refresher chains a full refresh cycle: ingest new headlines, backfill
// embeddings when the active strategy needs them, then rebuild the index.
type Refresher struct {
	ingester   *Ingester
	backfiller *Backfiller
	service    *recommend.Service
	logger     *slog.Logger
}

// NewRefresher wires the refresh cycle. backfiller may be nil when the
// active strategy vectorizes locally.
func NewRefresher(ingester *Ingester, backfiller *Backfiller, service *recommend.Service, logger *slog.Logger) *Refresher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Refresher{
		ingester:   ingester,
		backfiller: backfiller,
		service:    service,
		logger:     logger,
	}
}

// Run executes one refresh cycle.
func (r *Refresher) Run(ctx context.Context) error {
	started := time.Now()

	report, err := r.ingester.Run(ctx)
	if err != nil {
		return fmt.Errorf("ingest: %w", err)
	}

	var embedded int
	if r.backfiller != nil {
		embedded, err = r.backfiller.Run(ctx)
		if err != nil {
			return fmt.Errorf("backfill embeddings: %w", err)
		}
	}

	if err := r.service.Rebuild(ctx); err != nil {
		return fmt.Errorf("rebuild index: %w", err)
	}

	r.logger.Info("refresh cycle complete",
		"fetched", report.Fetched,
		"inserted", report.Inserted,
		"duplicates", report.Duplicates,
		"dropped", report.Dropped,
		"embedded", embedded,
		"elapsed", time.Since(started).Round(time.Millisecond),
	)
	return nil
}

// Job adapts Run to the scheduler callback shape. Errors are logged, not
// propagated; the next tick retries.
func (r *Refresher) Job() func(time.Time) {
	return func(fireTime time.Time) {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()

		if err := r.Run(ctx); err != nil {
			r.logger.Error("scheduled refresh failed", "fired_at", fireTime, "error", err)
		}
	}
}
