// Package mailer delivers one-time codes and payment confirmations by email.
package mailer

import (
	"fmt"
	"log"
	"net/smtp"
	"time"
)

// Mailer is the notification capability the payment core depends on. SendOtp
// failures abort a start/resend; SendConfirmation failures never undo a
// committed finalization.
type Mailer interface {
	SendOtp(to, code string, ttl time.Duration) error
	SendConfirmation(to, details string) error
}

type Config struct {
	Host     string
	Port     string
	User     string
	Password string
	From     string
}

// New returns an SMTP mailer, or a log-only mailer when SMTP is not
// configured so the flow stays exercisable in development.
func New(cfg Config) Mailer {
	if cfg.Host == "" {
		log.Println("SMTP not configured, using log transport for emails")
		return &logMailer{}
	}
	return &smtpMailer{cfg: cfg}
}

type smtpMailer struct {
	cfg Config
}

func (m *smtpMailer) SendOtp(to, code string, ttl time.Duration) error {
	body := fmt.Sprintf("Your OTP code is %s (valid %d minutes).", code, int(ttl.Minutes()))
	return m.send(to, "Your iBank OTP", body)
}

func (m *smtpMailer) SendConfirmation(to, details string) error {
	return m.send(to, "Payment confirmation", "Your payment was successful: "+details)
}

func (m *smtpMailer) send(to, subject, body string) error {
	var auth smtp.Auth
	if m.cfg.User != "" {
		auth = smtp.PlainAuth("", m.cfg.User, m.cfg.Password, m.cfg.Host)
	}

	message := []byte(fmt.Sprintf("To: %s\r\n"+
		"Subject: %s\r\n"+
		"\r\n"+
		"%s\r\n", to, subject, body))

	addr := fmt.Sprintf("%s:%s", m.cfg.Host, m.cfg.Port)

	if err := smtp.SendMail(addr, auth, m.cfg.From, []string{to}, message); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

type logMailer struct{}

func (m *logMailer) SendOtp(to, code string, ttl time.Duration) error {
	log.Printf("OTP mail to %s: code %s (valid %s)", to, code, ttl)
	return nil
}

func (m *logMailer) SendConfirmation(to, details string) error {
	log.Printf("Confirmation mail to %s: %s", to, details)
	return nil
}
