package airquality

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

// Fetcher obtains the current pollutant snapshot for a resolved Location,
// classifies it, and persists it as an immutable Reading.
type Fetcher struct {
	provider Provider
	resolver *Resolver
	readings ReadingStore
	clock    clockwork.Clock
}

// NewFetcher creates a Fetcher. A nil clock falls back to the real clock.
func NewFetcher(provider Provider, resolver *Resolver, readings ReadingStore, clock clockwork.Clock) *Fetcher {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Fetcher{provider: provider, resolver: resolver, readings: readings, clock: clock}
}

// FetchLatest fetches fresh pollutant data for loc and stores a Reading.
// A Location without coordinates gets one backfill attempt first. No partial
// reading is ever persisted on provider or parse failure.
func (f *Fetcher) FetchLatest(ctx context.Context, loc Location) (Reading, error) {
	if !loc.HasCoordinates() {
		loc = f.resolver.EnsureCoordinates(ctx, loc)
		if !loc.HasCoordinates() {
			return Reading{}, fmt.Errorf("%w: %s", ErrMissingCoordinates, loc.Name)
		}
	}

	sample, err := f.provider.AirPollution(ctx, *loc.Latitude, *loc.Longitude)
	if err != nil {
		return Reading{}, upstream(fmt.Errorf("air pollution for %s: %v", loc.Name, err))
	}

	reading := Reading{
		ID:         uuid.NewString(),
		LocationID: loc.ID,
		Category:   CategoryForIndex(sample.AQIIndex),
		Pollutants: sample.Pollutants,
		AQIIndex:   sample.AQIIndex,
		Latitude:   *loc.Latitude,
		Longitude:  *loc.Longitude,
		RecordedAt: f.clock.Now().UTC(),
	}
	return f.readings.Save(reading), nil
}
