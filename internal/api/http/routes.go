package httpapi

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/aqimon/aqi-alerting/internal/airquality"
	"github.com/aqimon/aqi-alerting/internal/openweather"
)

var validate = validator.New()

// LocationResolver resolves free-text input to a stored Location.
type LocationResolver interface {
	Resolve(ctx context.Context, input string) (airquality.Location, error)
}

// ReadingFetcher fetches and persists the current reading for a Location.
type ReadingFetcher interface {
	FetchLatest(ctx context.Context, loc airquality.Location) (airquality.Reading, error)
}

// WeatherClient provides the weather views served next to readings.
type WeatherClient interface {
	CurrentWeather(ctx context.Context, lat, lon float64, units string) (openweather.CurrentWeather, error)
	Forecast(ctx context.Context, lat, lon float64, units string) (openweather.Forecast, error)
}

// SweepRunner exposes the sweep for operational triggering.
type SweepRunner interface {
	RunSweep(ctx context.Context) airquality.Summary
	ProcessSubscriber(ctx context.Context, subscriberID string) (airquality.UnitResult, error)
}

// NotificationAccess is the collaborator surface over stored notifications.
type NotificationAccess interface {
	ForSubscriber(subscriberID string) []airquality.Notification
	MarkRead(id string) (airquality.Notification, bool)
}

// ReadingHistory reads stored reading history for a location.
type ReadingHistory interface {
	HistoryFor(locationID string) []airquality.Reading
}

// SubscriberWriter registers subscribers; a stand-in for the external
// registration collaborator.
type SubscriberWriter interface {
	Save(sub airquality.Subscriber) airquality.Subscriber
}

// EmailSender sends a single email.
type EmailSender interface {
	Send(to, subject, body string) error
}

// Deps bundles everything the HTTP layer needs.
type Deps struct {
	Resolver      LocationResolver
	Fetcher       ReadingFetcher
	Weather       WeatherClient
	Sweeper       SweepRunner
	Notifications NotificationAccess
	History       ReadingHistory
	Subscribers   SubscriberWriter
	Mail          EmailSender
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, deps Deps) {
	v1 := app.Group("/api/v1")

	v1.Get("/data", handleData(deps))
	v1.Get("/history", handleHistory(deps))

	v1.Get("/notifications", handleListNotifications(deps))
	v1.Post("/notifications/:id/read", handleMarkRead(deps))

	v1.Post("/subscribers", handleCreateSubscriber(deps))

	ops := v1.Group("/ops")
	ops.Get("/test-email", handleTestEmail(deps))
	ops.Post("/subscribers/:id/trigger", handleTriggerSubscriber(deps))
	ops.Post("/sweep", handleSweep(deps))
}

// statusForError maps the domain error taxonomy onto HTTP status codes.
func statusForError(err error) int {
	switch {
	case errors.Is(err, airquality.ErrValidation):
		return fiber.StatusBadRequest
	case errors.Is(err, airquality.ErrNotFound),
		errors.Is(err, airquality.ErrMissingCoordinates):
		return fiber.StatusNotFound
	case errors.Is(err, airquality.ErrUpstream):
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}

type dataQuery struct {
	Location string `validate:"required"`
	Units    string `validate:"omitempty,oneof=metric imperial standard"`
}

func handleData(deps Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		q := dataQuery{
			Location: c.Query("location"),
			Units:    c.Query("units", "metric"),
		}
		if err := validate.Struct(q); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		ctx := c.UserContext()
		loc, err := deps.Resolver.Resolve(ctx, q.Location)
		if err != nil {
			return fiber.NewError(statusForError(err), err.Error())
		}

		result := fiber.Map{
			"location": loc,
		}

		reading, readErr := deps.Fetcher.FetchLatest(ctx, loc)
		if readErr == nil {
			result["aqi"] = reading
		}

		var weatherErr, forecastErr error
		if loc.HasCoordinates() {
			if current, err := deps.Weather.CurrentWeather(ctx, *loc.Latitude, *loc.Longitude, q.Units); err == nil {
				result["currentWeather"] = current
			} else {
				weatherErr = err
			}
			if forecast, err := deps.Weather.Forecast(ctx, *loc.Latitude, *loc.Longitude, q.Units); err == nil {
				result["forecast"] = forecast
			} else {
				forecastErr = err
			}
		}

		// The location resolved but nothing upstream answered.
		if readErr != nil && weatherErr != nil && forecastErr != nil {
			return fiber.NewError(statusForError(readErr), readErr.Error())
		}

		return c.JSON(result)
	}
}

func handleHistory(deps Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		location := c.Query("location")
		if location == "" {
			return fiber.NewError(fiber.StatusBadRequest, "location query parameter is required")
		}

		loc, err := deps.Resolver.Resolve(c.UserContext(), location)
		if err != nil {
			return fiber.NewError(statusForError(err), err.Error())
		}

		return c.JSON(fiber.Map{
			"location": loc,
			"readings": deps.History.HistoryFor(loc.ID),
		})
	}
}

func handleListNotifications(deps Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		subscriberID := c.Query("subscriberId")
		if subscriberID == "" {
			return fiber.NewError(fiber.StatusBadRequest, "subscriberId query parameter is required")
		}
		return c.JSON(deps.Notifications.ForSubscriber(subscriberID))
	}
}

func handleMarkRead(deps Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		n, ok := deps.Notifications.MarkRead(c.Params("id"))
		if !ok {
			return fiber.NewError(fiber.StatusNotFound, "notification not found")
		}
		return c.JSON(n)
	}
}

type subscriberRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Location string `json:"location" validate:"required"`
}

func handleCreateSubscriber(deps Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req subscriberRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		loc, err := deps.Resolver.Resolve(c.UserContext(), req.Location)
		if err != nil {
			return fiber.NewError(statusForError(err), err.Error())
		}

		sub := deps.Subscribers.Save(airquality.Subscriber{
			Email:          req.Email,
			HomeLocationID: loc.ID,
		})
		return c.Status(fiber.StatusCreated).JSON(sub)
	}
}

func handleTestEmail(deps Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		to := c.Query("to")
		err := deps.Mail.Send(to,
			"Test Email from AQI Alerting",
			"This is a test email from the air-quality alerting service.\n\n"+
				"If you received this email, the notification pipeline can reach you.")
		if err != nil {
			return fiber.NewError(statusForError(err), err.Error())
		}
		return c.JSON(fiber.Map{"success": true, "to": to})
	}
}

func handleTriggerSubscriber(deps Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		res, err := deps.Sweeper.ProcessSubscriber(c.UserContext(), c.Params("id"))
		if err != nil {
			return fiber.NewError(statusForError(err), err.Error())
		}

		out := fiber.Map{
			"skipped":   res.Skipped,
			"threshold": res.Threshold,
			"alerted":   res.Alerted,
			"emailSent": res.EmailSent,
		}
		if res.Skipped {
			out["skipReason"] = res.SkipReason
		} else {
			out["location"] = res.Location
			out["currentAQI"] = res.AQIIndex
			out["category"] = res.Category
		}
		if res.EmailErr != nil {
			out["emailError"] = res.EmailErr.Error()
		}
		return c.JSON(out)
	}
}

func handleSweep(deps Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(deps.Sweeper.RunSweep(c.UserContext()))
	}
}
