// Package mailer delivers password reset codes over SMTP.
package mailer

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"

	"swiftpos/pkg/logger"
)

// Config holds SMTP settings.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTPSender sends reset codes by email.
type SMTPSender struct {
	dialer *gomail.Dialer
	from   string
}

// NewSMTPSender creates an SMTP sender.
func NewSMTPSender(cfg Config) *SMTPSender {
	return &SMTPSender{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

// SendResetCode implements auth.ResetCodeSender.
func (s *SMTPSender) SendResetCode(ctx context.Context, email, code string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", email)
	m.SetHeader("Subject", "Your password reset code")
	m.SetBody("text/plain", fmt.Sprintf(
		"Your password reset code is: %s\n\nThe code expires in a few minutes. If you did not request a reset, ignore this message.", code))

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("send reset code: %w", err)
	}

	logger.Info(ctx, "reset code sent", "email", email)
	return nil
}

// LogSender writes reset codes to the log instead of sending mail.
// Used when SMTP is not configured (local development).
type LogSender struct{}

// SendResetCode implements auth.ResetCodeSender.
func (s *LogSender) SendResetCode(ctx context.Context, email, code string) error {
	logger.Info(ctx, "password reset code (smtp disabled)", "email", email, "code", code)
	return nil
}
