// Package scheduler runs background jobs on cron schedules.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"spendwise/internal/logger"
	"spendwise/internal/services"
)

// jobTimeout bounds a single run of the monthly digest.
const jobTimeout = 10 * time.Minute

// Scheduler wraps a seconds-resolution cron in a fixed location.
type Scheduler struct {
	cron *cron.Cron
}

// New creates a Scheduler evaluating schedules in loc.
func New(loc *time.Location) *Scheduler {
	if loc == nil {
		loc = time.UTC
	}
	return &Scheduler{
		cron: cron.New(cron.WithLocation(loc), cron.WithSeconds()),
	}
}

// ScheduleDigest registers the monthly digest job under spec, a six-field
// cron expression (second minute hour day month weekday).
func (s *Scheduler) ScheduleDigest(spec string, digests services.DigestServicer) (cron.EntryID, error) {
	id, err := s.cron.AddFunc(spec, func() {
		RunDigest(context.Background(), digests)
	})
	if err != nil {
		return 0, fmt.Errorf("invalid digest schedule %q: %w", spec, err)
	}
	return id, nil
}

// RunDigest runs the monthly digest once. The digest service logs its own
// totals; only a failed run is reported here.
func RunDigest(ctx context.Context, digests services.DigestServicer) {
	ctx, cancel := context.WithTimeout(ctx, jobTimeout)
	defer cancel()

	run, err := digests.RunMonthlyDigest(ctx)
	if err != nil {
		logger.Get().Errorw("Monthly digest failed", "error", err)
		return
	}
	logger.Get().Debugw("Scheduled digest run complete", "month", run.Month.Key())
}

// Next returns when the entry runs next, or the zero time if it is unknown.
func (s *Scheduler) Next(id cron.EntryID) time.Time {
	return s.cron.Entry(id).Next
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop stops the scheduler and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}
