package worker

import (
	"github.com/spec-kit/support-desk/internal/events"
	"github.com/spec-kit/support-desk/internal/service"
)

// StartNotificationWorker registers the event subscribers: automated thread
// messages first, then logging and stream forwarding.
func StartNotificationWorker(dispatcher events.Dispatcher, messenger *service.AutomatedMessenger, notifications *service.NotificationService) {
	if dispatcher == nil {
		return
	}
	if messenger != nil {
		messenger.RegisterHandlers(dispatcher)
	}
	if notifications != nil {
		notifications.RegisterHandlers()
	}
}
