package airquality

import "context"

// GeoResult is one geocoding match from the provider.
type GeoResult struct {
	Name    string
	Country string
	Lat     float64
	Lon     float64
}

// PollutionSample is the parsed current air-pollution measurement.
type PollutionSample struct {
	AQIIndex   int
	Pollutants PollutantPanel
}

// Provider abstracts the external geocoding/air-quality API.
type Provider interface {
	Geocode(ctx context.Context, name string, limit int) ([]GeoResult, error)
	ReverseGeocode(ctx context.Context, lat, lon float64, limit int) ([]GeoResult, error)
	AirPollution(ctx context.Context, lat, lon float64) (PollutionSample, error)
}

// LocationStore is the contract the location record store must satisfy.
// Save is insert-or-update by ID and must keep the case-insensitive name
// index consistent; concurrent saves are last-write-wins.
type LocationStore interface {
	FindByName(name string) (Location, bool)
	Get(id string) (Location, bool)
	Save(loc Location) Location
}

// ReadingStore persists immutable readings; history is append-only.
type ReadingStore interface {
	Save(r Reading) Reading
	LatestFor(locationID string) (Reading, bool)
}

// SubscriberStore is read-only from the pipeline's perspective; the
// registration collaborator owns writes.
type SubscriberStore interface {
	All() []Subscriber
	Get(id string) (Subscriber, bool)
}

// NotificationStore records alert events.
type NotificationStore interface {
	Create(subscriberID, locationID, message string) Notification
}

// EmailGateway delivers alert emails. Implementations must reject blank
// recipients instead of silently dropping them.
type EmailGateway interface {
	Send(to, subject, body string) error
}
