package airquality

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/aqimon/aqi-alerting/internal/observability"
)

// Summary aggregates one sweep over all subscribers.
type Summary struct {
	TotalSubscribers int `json:"totalSubscribers"`
	Processed        int `json:"processed"`
	Skipped          int `json:"skipped"`
	AlertsSent       int `json:"alertsSent"`
	Errors           int `json:"errors"`
}

// UnitResult describes the outcome of processing a single subscriber.
type UnitResult struct {
	Skipped    bool     `json:"skipped"`
	SkipReason string   `json:"skipReason,omitempty"`
	Location   string   `json:"location,omitempty"`
	AQIIndex   int      `json:"aqiIndex,omitempty"`
	Category   Category `json:"category,omitempty"`
	Threshold  int      `json:"threshold"`
	Alerted    bool     `json:"alerted"`
	EmailSent  bool     `json:"emailSent"`
	EmailErr   error    `json:"-"`
}

// Sweeper runs the resolve → fetch → evaluate pipeline across subscribers.
// Each subscriber is an isolated unit: any failure is captured as a value,
// counted, and never aborts the sweep.
type Sweeper struct {
	subscribers SubscriberStore
	locations   LocationStore
	fetcher     *Fetcher
	evaluator   *Evaluator
	threshold   func() int
	metrics     *observability.Metrics
}

// NewSweeper creates a Sweeper. threshold is read once per run so config
// changes apply on the next sweep. metrics may be nil.
func NewSweeper(
	subscribers SubscriberStore,
	locations LocationStore,
	fetcher *Fetcher,
	evaluator *Evaluator,
	threshold func() int,
	metrics *observability.Metrics,
) *Sweeper {
	return &Sweeper{
		subscribers: subscribers,
		locations:   locations,
		fetcher:     fetcher,
		evaluator:   evaluator,
		threshold:   threshold,
		metrics:     metrics,
	}
}

// RunSweep processes every known subscriber once, in store-enumeration
// order. Errors are counted per subscriber and never propagate out.
func (s *Sweeper) RunSweep(ctx context.Context) Summary {
	threshold := s.threshold()
	subs := s.subscribers.All()
	summary := Summary{TotalSubscribers: len(subs)}

	log.Info().Int("subscribers", len(subs)).Int("threshold", threshold).Msg("sweep started")

	for _, sub := range subs {
		res, err := s.processOne(ctx, sub, threshold)
		if err != nil {
			summary.Errors++
			log.Error().Err(err).Str("subscriber", sub.ID).Str("email", sub.Email).
				Msg("sweep unit failed")
			continue
		}
		if res.Skipped {
			summary.Skipped++
			log.Debug().Str("subscriber", sub.ID).Str("reason", res.SkipReason).
				Msg("subscriber skipped")
			continue
		}

		summary.Processed++
		if res.Alerted {
			if res.EmailErr != nil {
				summary.Errors++
			} else {
				summary.AlertsSent++
			}
		}
	}

	if s.metrics != nil {
		s.metrics.SweepsTotal.Inc()
		s.metrics.SubscribersProcessed.Add(float64(summary.Processed))
		s.metrics.AlertsSent.Add(float64(summary.AlertsSent))
		s.metrics.SweepErrors.Add(float64(summary.Errors))
	}

	log.Info().
		Int("processed", summary.Processed).
		Int("skipped", summary.Skipped).
		Int("alertsSent", summary.AlertsSent).
		Int("errors", summary.Errors).
		Msg("sweep completed")

	return summary
}

// ProcessSubscriber runs the per-subscriber unit for one subscriber on
// demand with the same semantics as a sweep iteration.
func (s *Sweeper) ProcessSubscriber(ctx context.Context, subscriberID string) (UnitResult, error) {
	sub, ok := s.subscribers.Get(subscriberID)
	if !ok {
		return UnitResult{}, fmt.Errorf("%w: subscriber %s", ErrNotFound, subscriberID)
	}
	return s.processOne(ctx, sub, s.threshold())
}

// processOne is the isolated unit of work. Panics anywhere in the pipeline
// are converted to errors so the enclosing sweep can keep going.
func (s *Sweeper) processOne(ctx context.Context, sub Subscriber, threshold int) (res UnitResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("subscriber %s: panic: %v", sub.ID, r)
		}
	}()

	res.Threshold = threshold

	if sub.HomeLocationID == "" {
		res.Skipped = true
		res.SkipReason = "no home location set"
		return res, nil
	}
	if strings.TrimSpace(sub.Email) == "" {
		res.Skipped = true
		res.SkipReason = "no email address"
		return res, nil
	}

	loc, ok := s.locations.Get(sub.HomeLocationID)
	if !ok {
		res.Skipped = true
		res.SkipReason = "home location no longer exists"
		return res, nil
	}
	res.Location = loc.Name

	reading, err := s.fetcher.FetchLatest(ctx, loc)
	if err != nil {
		return res, fmt.Errorf("fetch for %s: %w", loc.Name, err)
	}
	res.AQIIndex = reading.AQIIndex
	res.Category = reading.Category

	eval := s.evaluator.Evaluate(sub, loc, reading, threshold)
	res.Alerted = eval.Alerted
	res.EmailSent = eval.Alerted && eval.EmailErr == nil
	res.EmailErr = eval.EmailErr
	return res, nil
}
