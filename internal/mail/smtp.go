// Package mail implements the outbound email gateway over SMTP.
package mail

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	gomail "gopkg.in/gomail.v2"

	"github.com/aqimon/aqi-alerting/internal/airquality"
)

// Config holds SMTP transport settings. An empty Host disables delivery.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Gateway sends plain-text email via SMTP. A blank recipient is rejected,
// never silently dropped; an unconfigured gateway fails every send so sweep
// error counters reflect the missing transport.
type Gateway struct {
	dialer *gomail.Dialer
	from   string
}

// NewGateway creates a Gateway from cfg.
func NewGateway(cfg Config) *Gateway {
	g := &Gateway{from: cfg.From}
	if cfg.Host != "" {
		g.dialer = gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	}
	return g
}

// Send delivers one message.
func (g *Gateway) Send(to, subject, body string) error {
	if strings.TrimSpace(to) == "" {
		return fmt.Errorf("%w: email recipient cannot be empty", airquality.ErrValidation)
	}
	if g.dialer == nil {
		return fmt.Errorf("email gateway is not configured (SMTP_HOST unset)")
	}

	m := gomail.NewMessage()
	m.SetHeader("From", g.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	if err := g.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("send email to %s: %w", to, err)
	}
	log.Debug().Str("to", to).Str("subject", subject).Msg("email sent")
	return nil
}
