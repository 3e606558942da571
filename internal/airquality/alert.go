package airquality

import (
	"fmt"

	"github.com/rs/zerolog/log"
)

// EvalResult reports what Evaluate did. NotificationID is set when a
// notification was recorded; EmailErr carries a dispatch failure without
// undoing the notification.
type EvalResult struct {
	Alerted        bool   `json:"alerted"`
	NotificationID string `json:"notificationId,omitempty"`
	EmailErr       error  `json:"-"`
}

// Evaluator decides whether a reading crosses the alert threshold and, when
// it does, records a notification and dispatches an email. The two side
// effects are independent: an email failure never un-creates the
// notification.
type Evaluator struct {
	notifications NotificationStore
	mail          EmailGateway
}

// NewEvaluator creates an Evaluator.
func NewEvaluator(notifications NotificationStore, mail EmailGateway) *Evaluator {
	return &Evaluator{notifications: notifications, mail: mail}
}

// Evaluate fires when reading.AQIIndex >= threshold (inclusive lower bound
// on the 1-5 ordinal scale). Below threshold it has no side effects.
func (e *Evaluator) Evaluate(sub Subscriber, loc Location, reading Reading, threshold int) EvalResult {
	if reading.AQIIndex < threshold {
		return EvalResult{}
	}

	msg := fmt.Sprintf("AQI Alert! The air quality for %s is %d (%s)",
		loc.Name, reading.AQIIndex, reading.Category)
	n := e.notifications.Create(sub.ID, loc.ID, msg)

	subject := "AQI Update for " + loc.Name
	err := e.mail.Send(sub.Email, subject, alertBody(reading.AQIIndex))
	if err != nil {
		log.Error().Err(err).Str("to", sub.Email).Str("location", loc.Name).
			Msg("alert email dispatch failed")
	} else {
		log.Info().Str("to", sub.Email).Str("location", loc.Name).
			Int("aqi", reading.AQIIndex).Msg("alert email sent")
	}

	return EvalResult{Alerted: true, NotificationID: n.ID, EmailErr: err}
}

// alertBody returns the fixed email body for an ordinal AQI value.
func alertBody(index int) string {
	switch index {
	case 1:
		return "Air quality is Good. Enjoy your day!"
	case 2:
		return "Air quality is Fair. Sensitive groups should take care."
	case 3:
		return "Air quality is Moderate. Consider limiting outdoor activity."
	case 4:
		return "Air quality is Poor. Better to stay indoors."
	case 5:
		return "Air quality is Very Poor. Avoid going outside!"
	default:
		return "Air quality data unavailable."
	}
}
