package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"NewsRecommender/internal/ports"
)

// CronScheduler runs the refresh job on a cron expression in a fixed
// timezone.
type CronScheduler struct {
	spec     string
	location *time.Location
	cron     *cron.Cron
}

var _ ports.Scheduler = (*CronScheduler)(nil)

func NewCronScheduler(spec, timezone string) (*CronScheduler, error) {
	location, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", timezone, err)
	}
	return &CronScheduler{spec: spec, location: location}, nil
}

// Start registers the job and begins ticking. The job receives the scheduled
// fire time.
func (s *CronScheduler) Start(ctx context.Context, job func(time.Time)) error {
	s.cron = cron.New(cron.WithLocation(s.location))
	if _, err := s.cron.AddFunc(s.spec, func() {
		job(time.Now().In(s.location))
	}); err != nil {
		return fmt.Errorf("register cron job %q: %w", s.spec, err)
	}
	s.cron.Start()
	return nil
}

// Stop halts scheduling and waits for a running job to finish, bounded by ctx.
func (s *CronScheduler) Stop(ctx context.Context) error {
	if s.cron == nil {
		return nil
	}
	select {
	case <-s.cron.Stop().Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
