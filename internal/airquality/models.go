package airquality

import (
	"time"
)

// Category is the human-readable air-quality band derived from the
// provider's 1-5 ordinal index.
type Category string

const (
	CategoryGood     Category = "Good"
	CategoryFair     Category = "Fair"
	CategoryModerate Category = "Moderate"
	CategoryPoor     Category = "Poor"
	CategoryVeryPoor Category = "Very Poor"
	CategoryUnknown  Category = "Unknown"
)

// CategoryForIndex maps the provider's ordinal AQI scale to a category.
// Any value outside 1-5 maps to CategoryUnknown rather than failing.
func CategoryForIndex(index int) Category {
	switch index {
	case 1:
		return CategoryGood
	case 2:
		return CategoryFair
	case 3:
		return CategoryModerate
	case 4:
		return CategoryPoor
	case 5:
		return CategoryVeryPoor
	default:
		return CategoryUnknown
	}
}

// Location is a canonical, deduplicated geographic entity. Coordinates are
// pointers because a Location can transiently lack them until backfill
// succeeds; such a Location is never handed to callers of Resolve.
type Location struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Country   string   `json:"country,omitempty"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

// HasCoordinates reports whether both latitude and longitude are set.
func (l Location) HasCoordinates() bool {
	return l.Latitude != nil && l.Longitude != nil
}

// PollutantPanel holds the raw component concentrations (µg/m³) returned by
// the air-pollution endpoint.
type PollutantPanel struct {
	PM25 float64 `json:"pm25"`
	PM10 float64 `json:"pm10"`
	CO   float64 `json:"co"`
	NO   float64 `json:"no"`
	NO2  float64 `json:"no2"`
	O3   float64 `json:"o3"`
	SO2  float64 `json:"so2"`
	NH3  float64 `json:"nh3"`
}

// Reading is one immutable pollutant snapshot for a Location. The
// coordinates are copied from the Location at fetch time so later Location
// mutations do not rewrite history.
type Reading struct {
	ID         string         `json:"id"`
	LocationID string         `json:"locationId"`
	Category   Category       `json:"category"`
	Pollutants PollutantPanel `json:"pollutants"`
	AQIIndex   int            `json:"aqiIndex"`
	Latitude   float64        `json:"latitude"`
	Longitude  float64        `json:"longitude"`
	RecordedAt time.Time      `json:"recordedAt"`
}

// Subscriber is owned by the registration collaborator; the pipeline only
// reads it. A Subscriber without a home location or email is skipped by
// sweeps, not treated as an error.
type Subscriber struct {
	ID             string `json:"id"`
	Email          string `json:"email"`
	HomeLocationID string `json:"homeLocationId,omitempty"`
}

// Notification records one alert event for a subscriber. Marking it read
// belongs to the collaborator surface, not the pipeline.
type Notification struct {
	ID           string    `json:"id"`
	SubscriberID string    `json:"subscriberId"`
	LocationID   string    `json:"locationId"`
	Message      string    `json:"message"`
	IsRead       bool      `json:"isRead"`
	CreatedAt    time.Time `json:"createdAt"`
}
