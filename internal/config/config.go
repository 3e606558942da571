package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// AppConfig holds all service settings, populated from the environment.
type AppConfig struct {
	OpenWeatherAPIKey string

	// SweepInterval controls how often the alert sweep runs.
	SweepInterval time.Duration

	// AlertThreshold is the inclusive lower bound on the 1-5 ordinal AQI
	// scale at which alerts fire. The default of 101 sits above that scale,
	// so alerts stay off until an operator configures a threshold in range.
	AlertThreshold int

	// HTTPTimeout bounds each outbound provider call.
	HTTPTimeout time.Duration

	// Reading store retention.
	StoreMaxHistory int           // max readings per location (0 = unlimited)
	StoreMaxAge     time.Duration // max age of readings (0 = unlimited)

	// SMTP settings for the email gateway. Empty host disables delivery.
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string

	Port     string
	LogLevel string
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Info().Msg("no .env file found, using process environment")
	}

	cfg := &AppConfig{}

	cfg.OpenWeatherAPIKey = os.Getenv("OPENWEATHER_API_KEY")

	intervalStr := getenvDefault("SWEEP_INTERVAL", "1h")
	interval, err := time.ParseDuration(intervalStr)
	if err != nil {
		return nil, fmt.Errorf("invalid SWEEP_INTERVAL: %w", err)
	}
	cfg.SweepInterval = interval

	cfg.AlertThreshold = getenvInt("ALERT_AQI_THRESHOLD", 101)

	timeoutStr := getenvDefault("HTTP_TIMEOUT", "10s")
	timeout, err := time.ParseDuration(timeoutStr)
	if err != nil {
		return nil, fmt.Errorf("invalid HTTP_TIMEOUT: %w", err)
	}
	cfg.HTTPTimeout = timeout

	cfg.StoreMaxHistory = getenvInt("STORE_MAX_HISTORY", 168) // a week at hourly sweeps

	maxAgeStr := getenvDefault("STORE_MAX_AGE", "168h")
	maxAge, err := time.ParseDuration(maxAgeStr)
	if err != nil {
		return nil, fmt.Errorf("invalid STORE_MAX_AGE: %w", err)
	}
	cfg.StoreMaxAge = maxAge

	cfg.SMTPHost = os.Getenv("SMTP_HOST")
	cfg.SMTPPort = getenvInt("SMTP_PORT", 587)
	cfg.SMTPUsername = os.Getenv("SMTP_USERNAME")
	cfg.SMTPPassword = os.Getenv("SMTP_PASSWORD")
	cfg.SMTPFrom = getenvDefault("SMTP_FROM", "alerts@aqi-alerting.local")

	cfg.Port = getenvDefault("PORT", "8080")
	cfg.LogLevel = getenvDefault("LOG_LEVEL", "info")

	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}
