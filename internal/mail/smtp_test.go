package mail

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aqimon/aqi-alerting/internal/airquality"
)

func TestSendRejectsBlankRecipient(t *testing.T) {
	g := NewGateway(Config{Host: "smtp.example.com", Port: 587, From: "alerts@example.com"})

	for _, to := range []string{"", "   ", "\t"} {
		err := g.Send(to, "subject", "body")
		assert.ErrorIs(t, err, airquality.ErrValidation, "recipient %q", to)
	}
}

func TestSendFailsWhenUnconfigured(t *testing.T) {
	g := NewGateway(Config{})

	err := g.Send("user@example.com", "subject", "body")
	assert.Error(t, err, "an unconfigured gateway must fail, not silently drop")
}
