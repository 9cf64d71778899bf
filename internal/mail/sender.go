// Package mail delivers email over SMTP.
package mail

import (
	"errors"

	"gopkg.in/gomail.v2"
)

// Config holds SMTP settings.
type Config struct {
	Host string
	Port int
	User string
	Pass string
	From string
}

// ErrNotConfigured is returned when no SMTP host is set.
var ErrNotConfigured = errors.New("smtp host not configured")

type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// Sender sends plain text emails through one SMTP server.
type Sender struct {
	cfg    Config
	dialer dialer
}

// NewSender returns a sender for cfg.
func NewSender(cfg Config) *Sender {
	if cfg.From == "" {
		cfg.From = "no-reply@hotel-booking.local"
	}
	return &Sender{cfg: cfg, dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Pass)}
}

// Message builds the MIME message for one email.
func (s *Sender) Message(to, subject, body string) *gomail.Message {
	m := gomail.NewMessage()
	m.SetHeader("From", s.cfg.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)
	return m
}

// Send delivers one email.
func (s *Sender) Send(to, subject, body string) error {
	if s.cfg.Host == "" {
		return ErrNotConfigured
	}
	return s.dialer.DialAndSend(s.Message(to, subject, body))
}
