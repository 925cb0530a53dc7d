package notification

import (
	"context"

	"go.uber.org/zap"
)

// LogNotifier renders messages and logs them instead of sending. It is used when no
// SMTP relay is configured.
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier creates the notifier.
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (l *LogNotifier) Send(_ context.Context, templateID string, vars map[string]string) error {
	msg, err := render(templateID, vars)
	if err != nil {
		return err
	}
	l.logger.Info("notification",
		zap.String("template", templateID),
		zap.String("to", vars[VarTo]),
		zap.String("subject", msg.subject))
	return nil
}
