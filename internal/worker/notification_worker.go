package worker

import (
	"github.com/spec-kit/tourism-service/internal/service"
)

// StartNotificationWorker registers notification handlers. The returned stop func
// waits for deliveries still in flight.
func StartNotificationWorker(notificationService *service.NotificationService) (stop func()) {
	if notificationService == nil {
		return func() {}
	}
	notificationService.RegisterHandlers()
	return notificationService.Wait
}
