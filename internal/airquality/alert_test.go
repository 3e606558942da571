package airquality_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aqimon/aqi-alerting/internal/airquality"
	"github.com/aqimon/aqi-alerting/internal/store"
)

func evalFixture(mailErr error) (*airquality.Evaluator, *store.NotificationStore, *fakeMail) {
	notifications := store.NewNotificationStore(nil)
	mail := &fakeMail{err: mailErr}
	return airquality.NewEvaluator(notifications, mail), notifications, mail
}

func TestEvaluateThresholdBoundary(t *testing.T) {
	sub := airquality.Subscriber{ID: "sub-1", Email: "user@example.com", HomeLocationID: "loc-1"}
	loc := karachiLocation()

	for index := 1; index <= 5; index++ {
		for threshold := 1; threshold <= 6; threshold++ {
			name := fmt.Sprintf("index %d threshold %d", index, threshold)
			t.Run(name, func(t *testing.T) {
				evaluator, _, mail := evalFixture(nil)
				reading := airquality.Reading{
					AQIIndex: index,
					Category: airquality.CategoryForIndex(index),
				}

				res := evaluator.Evaluate(sub, loc, reading, threshold)
				assert.Equal(t, index >= threshold, res.Alerted)
				assert.Equal(t, index >= threshold, len(mail.sent) == 1)
			})
		}
	}
}

func TestEvaluateDefaultThresholdNeverFires(t *testing.T) {
	// The shipped default threshold (101) sits above the 1-5 ordinal scale,
	// so no reading can trigger it until an operator lowers it.
	evaluator, _, mail := evalFixture(nil)
	sub := airquality.Subscriber{ID: "sub-1", Email: "user@example.com"}

	for index := 1; index <= 5; index++ {
		res := evaluator.Evaluate(sub, karachiLocation(), airquality.Reading{AQIIndex: index}, 101)
		assert.False(t, res.Alerted)
	}
	assert.Empty(t, mail.sent)
}

func TestEvaluateAlertContent(t *testing.T) {
	evaluator, notifications, mail := evalFixture(nil)
	sub := airquality.Subscriber{ID: "sub-1", Email: "user@example.com", HomeLocationID: "loc-karachi"}
	loc := karachiLocation()
	reading := airquality.Reading{AQIIndex: 3, Category: airquality.CategoryModerate, LocationID: loc.ID}

	res := evaluator.Evaluate(sub, loc, reading, 3)
	require.True(t, res.Alerted)
	require.NotEmpty(t, res.NotificationID)

	stored := notifications.ForSubscriber("sub-1")
	require.Len(t, stored, 1)
	assert.Contains(t, stored[0].Message, "Moderate")
	assert.Contains(t, stored[0].Message, "Karachi")
	assert.False(t, stored[0].IsRead)

	require.Len(t, mail.sent, 1)
	assert.Equal(t, "user@example.com", mail.sent[0].to)
	assert.Equal(t, "AQI Update for Karachi", mail.sent[0].subject)
	assert.Equal(t, "Air quality is Moderate. Consider limiting outdoor activity.", mail.sent[0].body)
}

func TestEvaluateEmailBodies(t *testing.T) {
	bodies := map[int]string{
		1: "Air quality is Good. Enjoy your day!",
		2: "Air quality is Fair. Sensitive groups should take care.",
		3: "Air quality is Moderate. Consider limiting outdoor activity.",
		4: "Air quality is Poor. Better to stay indoors.",
		5: "Air quality is Very Poor. Avoid going outside!",
		7: "Air quality data unavailable.",
	}
	sub := airquality.Subscriber{ID: "sub-1", Email: "user@example.com"}

	for index, want := range bodies {
		evaluator, _, mail := evalFixture(nil)
		evaluator.Evaluate(sub, karachiLocation(), airquality.Reading{
			AQIIndex: index,
			Category: airquality.CategoryForIndex(index),
		}, 1)
		require.Len(t, mail.sent, 1, "index %d", index)
		assert.Equal(t, want, mail.sent[0].body, "index %d", index)
	}
}

func TestEvaluateEmailFailureKeepsNotification(t *testing.T) {
	evaluator, notifications, _ := evalFixture(errors.New("smtp down"))
	sub := airquality.Subscriber{ID: "sub-1", Email: "user@example.com"}

	res := evaluator.Evaluate(sub, karachiLocation(), airquality.Reading{
		AQIIndex: 5, Category: airquality.CategoryVeryPoor,
	}, 4)

	assert.True(t, res.Alerted)
	assert.Error(t, res.EmailErr)
	assert.Len(t, notifications.ForSubscriber("sub-1"), 1,
		"email failure must not un-create the notification")
}

func TestEvaluateBelowThresholdHasNoSideEffects(t *testing.T) {
	evaluator, notifications, mail := evalFixture(nil)
	sub := airquality.Subscriber{ID: "sub-1", Email: "user@example.com"}

	res := evaluator.Evaluate(sub, karachiLocation(), airquality.Reading{AQIIndex: 2}, 4)
	assert.False(t, res.Alerted)
	assert.Empty(t, mail.sent)
	assert.Empty(t, notifications.ForSubscriber("sub-1"))
}
