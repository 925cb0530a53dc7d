// Package notification delivers templated emails to companies and employees.
package notification

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/tourism-service/internal/config"
)

// Template identifiers.
const (
	TemplateCompanyApproved     = "company_approved"
	TemplateResubmissionRequest = "resubmission_request"
	TemplateEmployeeApproved    = "employee_approved"
)

// Template variables.
const (
	VarTo             = "to"
	VarName           = "name"
	VarCertificateID  = "certificate_id"
	VarCertificateURL = "certificate_url"
	VarRemarks        = "remarks"
	VarMissingDetails = "missing_details"
)

// Notifier sends a templated message.
type Notifier interface {
	Send(ctx context.Context, templateID string, vars map[string]string) error
}

// New returns the SMTP notifier when a host is configured and the log notifier otherwise.
func New(cfg config.NotificationConfig, logger *zap.Logger) Notifier {
	if strings.TrimSpace(cfg.SMTPHost) == "" {
		logger.Warn("NOTIFY_SMTP_HOST not provided; emails are logged instead of sent")
		return NewLogNotifier(logger)
	}
	return NewSMTPNotifier(cfg)
}

// message is a rendered email.
type message struct {
	subject string
	html    string
	plain   string
}

// render builds the message for templateID. It fails on unknown templates and on a
// missing recipient.
func render(templateID string, vars map[string]string) (message, error) {
	if strings.TrimSpace(vars[VarTo]) == "" {
		return message{}, fmt.Errorf("template %s: missing recipient", templateID)
	}
	name := vars[VarName]
	if name == "" {
		name = "Sir/Madam"
	}

	switch templateID {
	case TemplateCompanyApproved, TemplateEmployeeApproved:
		subject := "Your tourism accreditation has been approved"
		if templateID == TemplateCompanyApproved {
			subject = "Your establishment has been approved"
		}
		return message{
			subject: subject,
			html: fmt.Sprintf(`
		<html>
		<body>
			<h2>Congratulations, %s!</h2>
			<p>Your application has been approved. Your tourism certificate number is <strong>%s</strong>.</p>
			<p>The certificate can be verified at <a href="%s">%s</a>.</p>
		</body>
		</html>
	`, name, vars[VarCertificateID], vars[VarCertificateURL], vars[VarCertificateURL]),
			plain: fmt.Sprintf(`
Congratulations, %s!

Your application has been approved. Your tourism certificate number is %s.

The certificate can be verified at:
%s
	`, name, vars[VarCertificateID], vars[VarCertificateURL]),
		}, nil

	case TemplateResubmissionRequest:
		details := strings.Split(vars[VarMissingDetails], "\n")
		var items, lines strings.Builder
		for _, d := range details {
			if d = strings.TrimSpace(d); d == "" {
				continue
			}
			fmt.Fprintf(&items, "<li>%s</li>", d)
			fmt.Fprintf(&lines, "- %s\n", d)
		}
		return message{
			subject: "Additional requirements needed for your application",
			html: fmt.Sprintf(`
		<html>
		<body>
			<h2>Hello %s,</h2>
			<p>Your application was marked incomplete. Please resubmit the following:</p>
			<ul>%s</ul>
			<p>%s</p>
		</body>
		</html>
	`, name, items.String(), vars[VarRemarks]),
			plain: fmt.Sprintf(`
Hello %s,

Your application was marked incomplete. Please resubmit the following:
%s
%s
	`, name, lines.String(), vars[VarRemarks]),
		}, nil

	default:
		return message{}, fmt.Errorf("unknown notification template %q", templateID)
	}
}
