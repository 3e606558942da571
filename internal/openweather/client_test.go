package openweather

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(&http.Client{Timeout: 5 * time.Second}, "test-key", WithBaseURL(server.URL))
}

func TestGeocode(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/geo/1.0/direct", r.URL.Path)
		assert.Equal(t, "Karachi", r.URL.Query().Get("q"))
		assert.Equal(t, "1", r.URL.Query().Get("limit"))
		assert.Equal(t, "test-key", r.URL.Query().Get("appid"))
		w.Write([]byte(`[{"name":"Karachi","country":"PK","lat":24.86,"lon":67.00}]`))
	})

	results, err := client.Geocode(context.Background(), "Karachi", 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Karachi", results[0].Name)
	assert.Equal(t, "PK", results[0].Country)
	assert.Equal(t, 24.86, results[0].Lat)
	assert.Equal(t, 67.00, results[0].Lon)
}

func TestGeocodeEmptyResultIsNotAnError(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	})

	results, err := client.Geocode(context.Background(), "Atlantis", 1)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestReverseGeocode(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/geo/1.0/reverse", r.URL.Path)
		assert.Equal(t, "24.86", r.URL.Query().Get("lat"))
		assert.Equal(t, "67", r.URL.Query().Get("lon"))
		w.Write([]byte(`[{"name":"Clifton","country":"PK","lat":24.81,"lon":67.03}]`))
	})

	results, err := client.ReverseGeocode(context.Background(), 24.86, 67, 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Clifton", results[0].Name)
}

func TestAirPollution(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/data/2.5/air_pollution", r.URL.Path)
		w.Write([]byte(`{"list":[{"main":{"aqi":3},"components":{"co":201.9,"no":0.01,"no2":0.77,"o3":68.66,"so2":0.64,"pm2_5":35.5,"pm10":60.1,"nh3":0.12}}]}`))
	})

	sample, err := client.AirPollution(context.Background(), 24.86, 67)
	require.NoError(t, err)
	assert.Equal(t, 3, sample.AQIIndex)
	assert.Equal(t, 35.5, sample.Pollutants.PM25)
	assert.Equal(t, 60.1, sample.Pollutants.PM10)
	assert.Equal(t, 201.9, sample.Pollutants.CO)
	assert.Equal(t, 0.12, sample.Pollutants.NH3)
}

func TestAirPollutionEmptyListFails(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"list":[]}`))
	})

	_, err := client.AirPollution(context.Background(), 24.86, 67)
	assert.Error(t, err)
}

func TestCurrentWeather(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/data/2.5/weather", r.URL.Path)
		assert.Equal(t, "metric", r.URL.Query().Get("units"))
		w.Write([]byte(`{"name":"Karachi","sys":{"country":"PK"},"main":{"temp":31.4,"feels_like":35.2,"humidity":62},"weather":[{"main":"Haze","icon":"50d"}]}`))
	})

	current, err := client.CurrentWeather(context.Background(), 24.86, 67, "")
	require.NoError(t, err)
	assert.Equal(t, "Karachi", current.City)
	assert.Equal(t, "PK", current.Country)
	assert.Equal(t, 31.4, current.Temperature)
	assert.Equal(t, 62, current.Humidity)
	assert.Equal(t, "Haze", current.Weather)
}

func TestForecast(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/data/2.5/forecast", r.URL.Path)
		w.Write([]byte(`{"city":{"name":"Karachi","country":"PK"},"list":[{"dt_txt":"2026-03-01 12:00:00","main":{"temp":30.1,"feels_like":33.0,"humidity":60},"weather":[{"main":"Clear","icon":"01d"}]},{"dt_txt":"2026-03-01 15:00:00","main":{"temp":29.0,"feels_like":31.5,"humidity":64},"weather":[]}]}`))
	})

	forecast, err := client.Forecast(context.Background(), 24.86, 67, "metric")
	require.NoError(t, err)
	assert.Equal(t, "Karachi", forecast.City)
	require.Len(t, forecast.Items, 2)
	assert.Equal(t, "2026-03-01 12:00:00", forecast.Items[0].DateTime)
	assert.Equal(t, "Clear", forecast.Items[0].Weather)
	assert.Empty(t, forecast.Items[1].Weather, "missing weather array is tolerated")
}

func TestMissingAPIKey(t *testing.T) {
	client := NewClient(&http.Client{}, "")

	_, err := client.Geocode(context.Background(), "Karachi", 1)
	assert.Error(t, err)
}

func TestNonSuccessStatusFails(t *testing.T) {
	calls := 0
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := client.Geocode(context.Background(), "Karachi", 1)
	assert.Error(t, err)
	assert.GreaterOrEqual(t, calls, 1)
}
