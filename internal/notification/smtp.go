package notification

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/spec-kit/tourism-service/internal/config"
)

// SMTPNotifier sends email through an SMTP relay.
type SMTPNotifier struct {
	config config.NotificationConfig
	dialer *gomail.Dialer
}

// NewSMTPNotifier creates the notifier.
func NewSMTPNotifier(cfg config.NotificationConfig) *SMTPNotifier {
	return &SMTPNotifier{
		config: cfg,
		dialer: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword),
	}
}

func (s *SMTPNotifier) Send(ctx context.Context, templateID string, vars map[string]string) error {
	msg, err := render(templateID, vars)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.config.EmailFrom, s.config.EmailFromName)
	m.SetHeader("To", vars[VarTo])
	m.SetHeader("Subject", msg.subject)
	m.SetBody("text/plain", msg.plain)
	m.AddAlternative("text/html", msg.html)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
