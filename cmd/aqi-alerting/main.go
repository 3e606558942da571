package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/aqimon/aqi-alerting/internal/airquality"
	httpapi "github.com/aqimon/aqi-alerting/internal/api/http"
	"github.com/aqimon/aqi-alerting/internal/config"
	"github.com/aqimon/aqi-alerting/internal/mail"
	"github.com/aqimon/aqi-alerting/internal/observability"
	"github.com/aqimon/aqi-alerting/internal/openweather"
	"github.com/aqimon/aqi-alerting/internal/scheduler"
	"github.com/aqimon/aqi-alerting/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(level)
	}

	metrics := observability.NewMetrics()
	clock := clockwork.NewRealClock()

	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}
	provider := openweather.NewClient(httpClient, cfg.OpenWeatherAPIKey,
		openweather.WithMetrics(metrics))

	// In-memory record stores standing in for the persistence collaborator.
	locations := store.NewLocationStore()
	readings := store.NewReadingStore(cfg.StoreMaxHistory, cfg.StoreMaxAge)
	subscribers := store.NewSubscriberStore()
	notifications := store.NewNotificationStore(clock)

	gateway := mail.NewGateway(mail.Config{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPFrom,
	})

	// Core pipeline.
	resolver := airquality.NewResolver(provider, locations)
	fetcher := airquality.NewFetcher(provider, resolver, readings, clock)
	evaluator := airquality.NewEvaluator(notifications, gateway)
	sweeper := airquality.NewSweeper(subscribers, locations, fetcher, evaluator,
		func() int { return cfg.AlertThreshold }, metrics)

	// Hourly sweep driver.
	sched := scheduler.New(sweeper, cfg.SweepInterval)
	if err := sched.Start(); err != nil {
		log.Fatal().Err(err).Msg("failed to start scheduler")
	}
	defer sched.Stop()

	app := fiber.New(fiber.Config{
		AppName:               "aqi-alerting",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	app.Use(fiberlogger.New())
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "aqi-alerting",
		})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	httpapi.RegisterRoutes(app, httpapi.Deps{
		Resolver:      resolver,
		Fetcher:       fetcher,
		Weather:       provider,
		Sweeper:       sweeper,
		Notifications: notifications,
		History:       readings,
		Subscribers:   subscribers,
		Mail:          gateway,
	})

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Error().Err(err).Msg("fiber server stopped")
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("error during shutdown")
	}
}
