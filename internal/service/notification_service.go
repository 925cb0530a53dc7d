package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/tourism-service/internal/config"
	"github.com/spec-kit/tourism-service/internal/domain"
	"github.com/spec-kit/tourism-service/internal/events"
	"github.com/spec-kit/tourism-service/internal/notification"
)

const notificationTimeout = 30 * time.Second

// NotificationService turns review decisions into emails. Delivery runs in the
// background and its failures are only logged.
type NotificationService struct {
	dispatcher events.Dispatcher
	notifier   notification.Notifier
	logger     *zap.Logger
	baseURL    string
	wg         sync.WaitGroup
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, notifier notification.Notifier, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		notifier:   notifier,
		logger:     loggerOrNop(logger).Named("notifications"),
		baseURL:    strings.TrimRight(cfg.PublicBaseURL, "/"),
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil || n.notifier == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventCompanyStatusChanged, n.handleCompanyStatusChanged)
	n.dispatcher.Subscribe(events.EventEmployeeStatusChanged, n.handleEmployeeStatusChanged)
}

// Wait blocks until in-flight deliveries finish.
func (n *NotificationService) Wait() {
	n.wg.Wait()
}

func (n *NotificationService) handleCompanyStatusChanged(ctx context.Context, event events.Event) error {
	return n.handleStatusChanged(ctx, event, notification.TemplateCompanyApproved)
}

func (n *NotificationService) handleEmployeeStatusChanged(ctx context.Context, event events.Event) error {
	return n.handleStatusChanged(ctx, event, notification.TemplateEmployeeApproved)
}

func (n *NotificationService) handleStatusChanged(ctx context.Context, event events.Event, approvedTemplate string) error {
	payload, ok := event.Payload.(events.StatusChangedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T for %s", event.Payload, event.Type)
	}

	vars := map[string]string{
		notification.VarTo:      payload.Email,
		notification.VarName:    payload.Name,
		notification.VarRemarks: payload.Remarks,
	}

	var templateID string
	switch payload.NewStatus {
	case domain.StatusApproved:
		templateID = approvedTemplate
		if payload.CertificateID != "" {
			vars[notification.VarCertificateID] = payload.CertificateID
			vars[notification.VarCertificateURL] = n.baseURL + "/tourism_certificate/" + payload.CertificateID
		}
	case domain.StatusIncomplete:
		if len(payload.MissingDetails) == 0 {
			n.logger.Debug("no missing details supplied; resubmission email skipped", zap.String("subject_id", event.SubjectID))
			return nil
		}
		templateID = notification.TemplateResubmissionRequest
		vars[notification.VarMissingDetails] = strings.Join(payload.MissingDetails, "\n")
	default:
		return nil
	}

	n.deliver(ctx, event, templateID, vars)
	return nil
}

// deliver sends in a goroutine detached from the request lifetime.
func (n *NotificationService) deliver(ctx context.Context, event events.Event, templateID string, vars map[string]string) {
	sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notificationTimeout)
	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		defer cancel()
		defer func() {
			if r := recover(); r != nil {
				n.logger.Error("notification panic recovered",
					zap.String("template", templateID),
					zap.Any("panic", r),
					zap.Stack("stack"))
			}
		}()

		if err := n.notifier.Send(sendCtx, templateID, vars); err != nil {
			n.logger.Warn("notification failed",
				zap.String("template", templateID),
				zap.String("event_type", string(event.Type)),
				zap.String("subject_id", event.SubjectID),
				zap.Error(err))
			return
		}
		n.logger.Debug("notification sent",
			zap.String("template", templateID),
			zap.String("subject_id", event.SubjectID))
	}()
}
