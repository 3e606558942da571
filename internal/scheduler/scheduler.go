package scheduler

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/rs/zerolog/log"

	"github.com/aqimon/aqi-alerting/internal/airquality"
)

// Scheduler drives the alert sweep on a fixed period.
type Scheduler struct {
	scheduler *gocron.Scheduler
	sweeper   *airquality.Sweeper
	interval  time.Duration
}

// New creates a Scheduler running the sweep every interval.
func New(sweeper *airquality.Sweeper, interval time.Duration) *Scheduler {
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		sweeper:   sweeper,
		interval:  interval,
	}
}

// Start schedules the periodic sweep and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	interval := s.interval
	if interval <= 0 {
		interval = time.Hour
	}

	_, err := s.scheduler.Every(interval).Do(func() {
		// A sweep is expected to finish well within the period; the
		// timeout bounds a sweep wedged on a slow provider.
		ctx, cancel := context.WithTimeout(context.Background(), interval)
		defer cancel()

		summary := s.sweeper.RunSweep(ctx)
		log.Info().
			Int("totalSubscribers", summary.TotalSubscribers).
			Int("alertsSent", summary.AlertsSent).
			Int("errors", summary.Errors).
			Msg("scheduled sweep finished")
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler and cancels any future runs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
