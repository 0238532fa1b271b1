package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/events"
	"github.com/spec-kit/support-desk/internal/repository"
)

const welcomeMessage = `Thank you for contacting our support team!

We've received your ticket #%d and %s. Here's what happens next:

- Review: our team will look at your request within the next few hours.
- Response: you'll receive an initial reply within 24 hours.
- Updates: we'll keep you informed of any progress right here in this conversation.

Feel free to add more information or ask questions at any time.

Best regards,
Support Team`

const (
	welcomeRouted = "it has been routed to one of our specialists"
	welcomeQueued = "it is in our queue; the next available specialist will pick it up"
)

// AutomatedMessenger posts system-authored notes into ticket threads when
// tickets are created or change status. Failures are logged and dropped.
type AutomatedMessenger struct {
	comments repository.CommentRepository
	logger   *zap.Logger
}

// NewAutomatedMessenger builds the messenger.
func NewAutomatedMessenger(comments repository.CommentRepository, logger *zap.Logger) *AutomatedMessenger {
	return &AutomatedMessenger{comments: comments, logger: logger}
}

// RegisterHandlers subscribes to ticket lifecycle events.
func (m *AutomatedMessenger) RegisterHandlers(dispatcher events.Dispatcher) {
	if dispatcher == nil {
		return
	}
	dispatcher.Subscribe(events.EventTicketCreated, m.handleTicketCreated)
	dispatcher.Subscribe(events.EventTicketStatusChanged, m.handleStatusChanged)
}

func (m *AutomatedMessenger) handleTicketCreated(ctx context.Context, event events.Event) error {
	assigned := false
	if payload, ok := event.Payload.(events.TicketCreatedPayload); ok {
		assigned = payload.AssignedAdminID != nil
	}
	m.post(ctx, event.TicketID, welcomeBody(event.TicketID, assigned))
	return nil
}

func welcomeBody(ticketID int64, assigned bool) string {
	routing := welcomeQueued
	if assigned {
		routing = welcomeRouted
	}
	return fmt.Sprintf(welcomeMessage, ticketID, routing)
}

func (m *AutomatedMessenger) handleStatusChanged(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketStatusChangedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T", event.Payload)
	}
	adminName := event.Actor.Name
	if adminName == "" {
		adminName = "our support team"
	}
	body := StatusMessage(payload.NewStatus, adminName, payload.CustomerName, event.TicketID)
	if body == "" {
		return nil
	}
	m.post(ctx, event.TicketID, body)
	return nil
}

// StatusMessage renders the customer-facing note for a status change. It
// returns "" for statuses that have no template.
func StatusMessage(status domain.TicketStatus, adminName, customerName string, ticketID int64) string {
	greeting := "Hello"
	if customerName != "" {
		greeting = "Hi " + customerName
	}
	switch status {
	case domain.TicketStatusInProgress:
		return fmt.Sprintf("Status update\n\n%s, ticket #%d is now being actively worked on by %s. We'll keep you updated on our progress.",
			greeting, ticketID, adminName)
	case domain.TicketStatusResolved:
		return fmt.Sprintf("Ticket resolved\n\n%s, %s has marked ticket #%d as resolved.\n\nIf this solves your issue, no further action is needed. If you need more help, reply here and we'll be happy to assist.",
			greeting, adminName, ticketID)
	case domain.TicketStatusClosed:
		return fmt.Sprintf("Ticket closed\n\n%s, ticket #%d has been closed by %s.\n\nIf you need further assistance, please submit a new support ticket. Thank you for using our support service!",
			greeting, ticketID, adminName)
	}
	return ""
}

func (m *AutomatedMessenger) post(ctx context.Context, ticketID int64, body string) {
	comment := &domain.Comment{
		TicketID:   ticketID,
		AuthorType: domain.AuthorTypeSystem,
		Body:       body,
	}
	if err := m.comments.Create(ctx, comment); err != nil {
		m.logger.Warn("automated message not delivered", zap.Int64("ticket_id", ticketID), zap.Error(err))
		return
	}
	m.logger.Debug("automated message sent", zap.Int64("ticket_id", ticketID), zap.Int64("comment_id", comment.ID))
}
