package mailer

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/danchok124-del/shift-manager-backend/config"
)

// Mailer is the outbound notification collaborator. It is constructed once at
// startup and injected; delivery failures must never roll back the business
// transition that triggered the send.
type Mailer interface {
	SendPasswordReset(ctx context.Context, to, resetLink string) error
}

// SMTPMailer delivers mail over SMTP.
type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

// NewSMTP creates an SMTP mailer from the mail configuration.
func NewSMTP(cfg *config.MailConfig) *SMTPMailer {
	return &SMTPMailer{
		dialer: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

// SendPasswordReset sends the password-reset link. The link is valid for one
// hour; the wording mirrors the reset flow on the frontend.
func (m *SMTPMailer) SendPasswordReset(_ context.Context, to, resetLink string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", "Password Reset Request")
	msg.SetBody("text/plain", fmt.Sprintf(
		"You requested a password reset. Please use the following link to reset your password: %s", resetLink))
	msg.AddAlternative("text/html", fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
		  <h2>Password Reset Request</h2>
		  <p>You requested a password reset for your Shift Management account.</p>
		  <p>Please click the link below to reset your password. This link is valid for 1 hour.</p>
		  <p><a href="%s">Reset Password</a></p>
		  <p>If you did not request this, please ignore this email.</p>
		</div>`, resetLink))

	return m.dialer.DialAndSend(msg)
}
