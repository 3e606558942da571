package openweather

import (
	"context"
	"net/url"
	"strconv"
)

// CurrentWeather is the normalized current-conditions view returned to
// interactive callers alongside the air-quality reading.
type CurrentWeather struct {
	City        string  `json:"city"`
	Country     string  `json:"country"`
	Temperature float64 `json:"temperature"`
	FeelsLike   float64 `json:"feelsLike"`
	Humidity    int     `json:"humidity"`
	Weather     string  `json:"weather"`
	Icon        string  `json:"icon"`
}

// ForecastItem is one 3-hour forecast slot.
type ForecastItem struct {
	DateTime    string  `json:"dateTime"`
	Temperature float64 `json:"temperature"`
	FeelsLike   float64 `json:"feelsLike"`
	Humidity    int     `json:"humidity"`
	Weather     string  `json:"weather"`
	Icon        string  `json:"icon"`
}

// Forecast is the 5-day forecast for a city.
type Forecast struct {
	City    string         `json:"city"`
	Country string         `json:"country"`
	Items   []ForecastItem `json:"items"`
}

func normalizeUnits(units string) string {
	switch units {
	case "metric", "imperial", "standard":
		return units
	default:
		return "metric"
	}
}

// CurrentWeather fetches current conditions for coordinates.
func (c *Client) CurrentWeather(ctx context.Context, lat, lon float64, units string) (CurrentWeather, error) {
	values := url.Values{}
	values.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	values.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	values.Set("units", normalizeUnits(units))

	var payload struct {
		Name string `json:"name"`
		Sys  struct {
			Country string `json:"country"`
		} `json:"sys"`
		Main struct {
			Temp      float64 `json:"temp"`
			FeelsLike float64 `json:"feels_like"`
			Humidity  int     `json:"humidity"`
		} `json:"main"`
		Weather []struct {
			Main string `json:"main"`
			Icon string `json:"icon"`
		} `json:"weather"`
	}
	if err := c.getJSON(ctx, "weather", "/data/2.5/weather", values, &payload); err != nil {
		return CurrentWeather{}, err
	}

	out := CurrentWeather{
		City:        payload.Name,
		Country:     payload.Sys.Country,
		Temperature: payload.Main.Temp,
		FeelsLike:   payload.Main.FeelsLike,
		Humidity:    payload.Main.Humidity,
	}
	if len(payload.Weather) > 0 {
		out.Weather = payload.Weather[0].Main
		out.Icon = payload.Weather[0].Icon
	}
	return out, nil
}

// Forecast fetches the 5-day / 3-hour forecast for coordinates.
func (c *Client) Forecast(ctx context.Context, lat, lon float64, units string) (Forecast, error) {
	values := url.Values{}
	values.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	values.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	values.Set("units", normalizeUnits(units))

	var payload struct {
		City struct {
			Name    string `json:"name"`
			Country string `json:"country"`
		} `json:"city"`
		List []struct {
			DtTxt string `json:"dt_txt"`
			Main  struct {
				Temp      float64 `json:"temp"`
				FeelsLike float64 `json:"feels_like"`
				Humidity  int     `json:"humidity"`
			} `json:"main"`
			Weather []struct {
				Main string `json:"main"`
				Icon string `json:"icon"`
			} `json:"weather"`
		} `json:"list"`
	}
	if err := c.getJSON(ctx, "forecast", "/data/2.5/forecast", values, &payload); err != nil {
		return Forecast{}, err
	}

	out := Forecast{
		City:    payload.City.Name,
		Country: payload.City.Country,
		Items:   make([]ForecastItem, 0, len(payload.List)),
	}
	for _, item := range payload.List {
		fi := ForecastItem{
			DateTime:    item.DtTxt,
			Temperature: item.Main.Temp,
			FeelsLike:   item.Main.FeelsLike,
			Humidity:    item.Main.Humidity,
		}
		if len(item.Weather) > 0 {
			fi.Weather = item.Weather[0].Main
			fi.Icon = item.Weather[0].Icon
		}
		out.Items = append(out.Items, fi)
	}
	return out, nil
}
