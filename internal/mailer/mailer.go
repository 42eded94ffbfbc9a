// Package mailer sends sign-in link email over SMTP.
package mailer

import (
	"fmt"

	"gopkg.in/gomail.v2"
)

// SMTPConfig holds connection settings for the outbound SMTP server.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Mailer delivers sign-in link email.
type Mailer struct {
	cfg    SMTPConfig
	dialer *gomail.Dialer
}

// New creates a Mailer for the given SMTP settings.
func New(cfg SMTPConfig) *Mailer {
	dialer := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	return &Mailer{
		cfg:    cfg,
		dialer: dialer,
	}
}

// SendSignInLink emails a passwordless sign-in link to the recipient.
// The link is single use and expires; the body says so.
func (m *Mailer) SendSignInLink(email, linkURL string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.cfg.From)
	msg.SetHeader("To", email)
	msg.SetHeader("Subject", "Your sign-in link")
	msg.SetBody("text/html", signInBody(linkURL))

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("send sign-in link to %s: %w", email, err)
	}

	return nil
}

func signInBody(linkURL string) string {
	return fmt.Sprintf(`<p>Your access has been approved.</p>
<p><a href="%s">Click here to sign in</a>.</p>
<p>The link can be used once and expires shortly. If you did not request
access, you can ignore this email.</p>`, linkURL)
}
