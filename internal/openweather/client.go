package openweather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sony/gobreaker"

	"github.com/aqimon/aqi-alerting/internal/airquality"
	"github.com/aqimon/aqi-alerting/internal/observability"
)

const defaultBaseURL = "https://api.openweathermap.org"

// Client is a typed OpenWeatherMap client covering geocoding (both
// directions), current air pollution, current weather, and the 5-day
// forecast. All calls share one circuit breaker and retry policy.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	backoff    backoffConfig
	circuit    *gobreaker.CircuitBreaker
	metrics    *observability.Metrics
}

// Option customizes a Client.
type Option func(*Client)

// WithBaseURL points the client at a different API host, used by tests.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithMetrics enables provider request-duration metrics.
func WithMetrics(m *observability.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// NewClient creates a Client using the shared outbound HTTP client.
func NewClient(httpClient *http.Client, apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		httpClient: httpClient,
		backoff: backoffConfig{
			maxRetries:      3,
			initialInterval: 500 * time.Millisecond,
			maxInterval:     5 * time.Second,
		},
		circuit: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "openweathermap",
			MaxRequests: 5,
			Interval:    1 * time.Minute,
			Timeout:     2 * time.Minute,
		}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// getJSON performs a GET against path with the given query values and
// decodes the body into target.
func (c *Client) getJSON(ctx context.Context, endpoint, path string, values url.Values, target interface{}) error {
	if c.apiKey == "" {
		return fmt.Errorf("openweathermap api key is not configured")
	}
	values.Set("appid", c.apiKey)

	started := time.Now()
	resp, err := doRequest(ctx, c.httpClient, c.circuit, c.backoff, func() (*http.Request, error) {
		u := fmt.Sprintf("%s%s?%s", c.baseURL, path, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	})
	if c.metrics != nil {
		c.metrics.ProviderRequestDuration.WithLabelValues(endpoint).Observe(time.Since(started).Seconds())
	}
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("decode %s response: %w", endpoint, err)
	}
	return nil
}

// Geocode resolves a place name to candidate coordinates via the direct
// geocoding endpoint. An empty slice means no match, not an error.
func (c *Client) Geocode(ctx context.Context, name string, limit int) ([]airquality.GeoResult, error) {
	if limit < 1 {
		limit = 1
	}
	values := url.Values{}
	values.Set("q", name)
	values.Set("limit", strconv.Itoa(limit))

	var payload []struct {
		Name    string  `json:"name"`
		Country string  `json:"country"`
		Lat     float64 `json:"lat"`
		Lon     float64 `json:"lon"`
	}
	if err := c.getJSON(ctx, "geocode", "/geo/1.0/direct", values, &payload); err != nil {
		return nil, err
	}

	results := make([]airquality.GeoResult, 0, len(payload))
	for _, item := range payload {
		results = append(results, airquality.GeoResult{
			Name:    item.Name,
			Country: item.Country,
			Lat:     item.Lat,
			Lon:     item.Lon,
		})
	}
	return results, nil
}

// ReverseGeocode resolves coordinates to candidate place names.
func (c *Client) ReverseGeocode(ctx context.Context, lat, lon float64, limit int) ([]airquality.GeoResult, error) {
	if limit < 1 {
		limit = 1
	}
	values := url.Values{}
	values.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	values.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	values.Set("limit", strconv.Itoa(limit))

	var payload []struct {
		Name    string  `json:"name"`
		Country string  `json:"country"`
		Lat     float64 `json:"lat"`
		Lon     float64 `json:"lon"`
	}
	if err := c.getJSON(ctx, "reverse_geocode", "/geo/1.0/reverse", values, &payload); err != nil {
		return nil, err
	}

	results := make([]airquality.GeoResult, 0, len(payload))
	for _, item := range payload {
		results = append(results, airquality.GeoResult{
			Name:    item.Name,
			Country: item.Country,
			Lat:     item.Lat,
			Lon:     item.Lon,
		})
	}
	return results, nil
}

// AirPollution fetches the current pollution sample for coordinates. An
// empty list in the payload is a provider failure, not a valid sample.
func (c *Client) AirPollution(ctx context.Context, lat, lon float64) (airquality.PollutionSample, error) {
	values := url.Values{}
	values.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	values.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))

	var payload struct {
		List []struct {
			Main struct {
				AQI int `json:"aqi"`
			} `json:"main"`
			Components struct {
				CO   float64 `json:"co"`
				NO   float64 `json:"no"`
				NO2  float64 `json:"no2"`
				O3   float64 `json:"o3"`
				SO2  float64 `json:"so2"`
				PM25 float64 `json:"pm2_5"`
				PM10 float64 `json:"pm10"`
				NH3  float64 `json:"nh3"`
			} `json:"components"`
		} `json:"list"`
	}
	if err := c.getJSON(ctx, "air_pollution", "/data/2.5/air_pollution", values, &payload); err != nil {
		return airquality.PollutionSample{}, err
	}
	if len(payload.List) == 0 {
		return airquality.PollutionSample{}, fmt.Errorf("air pollution response contained no samples")
	}

	first := payload.List[0]
	return airquality.PollutionSample{
		AQIIndex: first.Main.AQI,
		Pollutants: airquality.PollutantPanel{
			PM25: first.Components.PM25,
			PM10: first.Components.PM10,
			CO:   first.Components.CO,
			NO:   first.Components.NO,
			NO2:  first.Components.NO2,
			O3:   first.Components.O3,
			SO2:  first.Components.SO2,
			NH3:  first.Components.NH3,
		},
	}, nil
}
