package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/events"
	"github.com/spec-kit/support-desk/internal/repository"
	apperrors "github.com/spec-kit/support-desk/pkg/errorutil"
)

// TicketService coordinates ticket workflows.
type TicketService struct {
	tickets    repository.TicketRepository
	comments   repository.CommentRepository
	admins     repository.AdminRepository
	categories repository.CategoryRepository
	router     *Router
	dispatcher events.Dispatcher
	uploads    *UploadService
	logger     *zap.Logger
	now        func() time.Time
}

// TicketDependencies bundles repositories for ticket service.
type TicketDependencies struct {
	TicketRepo   repository.TicketRepository
	CommentRepo  repository.CommentRepository
	AdminRepo    repository.AdminRepository
	CategoryRepo repository.CategoryRepository
	Router       *Router
	Dispatcher   events.Dispatcher
	Uploads      *UploadService
	Logger       *zap.Logger
	// Now defaults to time.Now.
	Now func() time.Time
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	Title         string
	Description   string
	CustomerName  string
	CustomerEmail string
	CustomerPhone *string
	CategoryID    *int64
	Priority      domain.TicketPriority
}

// AssigneeChange carries an optional assignment. Set with a nil ID unassigns.
type AssigneeChange struct {
	Set bool
	ID  *int64
}

// TicketUpdateInput lists the mutable fields; nil means unchanged.
type TicketUpdateInput struct {
	Status      *domain.TicketStatus
	Priority    *domain.TicketPriority
	Assignee    AssigneeChange
	Title       *string
	Description *string
}

func (in TicketUpdateInput) empty() bool {
	return in.Status == nil && in.Priority == nil && !in.Assignee.Set && in.Title == nil && in.Description == nil
}

// CommentInput is an admin-authored thread entry.
type CommentInput struct {
	Body        string
	IsInternal  bool
	Attachments []domain.Attachment
}

// CustomerMessageInput is a customer-authored thread entry.
type CustomerMessageInput struct {
	Body          string
	CustomerName  string
	CustomerEmail string
	Attachments   []domain.Attachment
}

// SweepResult reports a bulk assignment pass.
type SweepResult struct {
	TotalUnassigned int `json:"totalUnassigned"`
	Assigned        int `json:"assigned"`
	Failed          int `json:"failed"`
	ActiveAdmins    int `json:"activeAdmins"`
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	uploads := deps.Uploads
	if uploads == nil {
		uploads = NewUploadService(defaultUploadMaxBytes)
	}
	return &TicketService{
		tickets:    deps.TicketRepo,
		comments:   deps.CommentRepo,
		admins:     deps.AdminRepo,
		categories: deps.CategoryRepo,
		router:     deps.Router,
		dispatcher: deps.Dispatcher,
		uploads:    uploads,
		logger:     logger,
		now:        now,
	}
}

// Create stores a new ticket and routes it. Routing never blocks creation.
func (s *TicketService) Create(ctx context.Context, input TicketCreateInput, actor events.Actor) (*domain.Ticket, error) {
	title := strings.TrimSpace(input.Title)
	description := strings.TrimSpace(input.Description)
	customerName := strings.TrimSpace(input.CustomerName)
	customerEmail := strings.TrimSpace(input.CustomerEmail)
	if title == "" || description == "" || customerName == "" || customerEmail == "" || input.CategoryID == nil {
		return nil, apperrors.NewValidationError("Missing required fields", "title, description, customer_name, customer_email and category_id are required")
	}
	if _, err := mail.ParseAddress(customerEmail); err != nil {
		return nil, apperrors.NewValidationError("Invalid customer email", "")
	}
	priority := input.Priority
	if priority == "" {
		priority = domain.TicketPriorityMedium
	}
	if !priority.Valid() {
		return nil, apperrors.NewValidationError("Invalid priority", string(priority))
	}
	if _, err := s.categories.GetByID(ctx, *input.CategoryID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewValidationError("Invalid category", "")
		}
		return nil, apperrors.NewInternalError(err)
	}

	ticket := &domain.Ticket{
		Title:           title,
		Description:     description,
		Status:          domain.TicketStatusOpen,
		Priority:        priority,
		CustomerName:    customerName,
		CustomerEmail:   customerEmail,
		CustomerPhone:   trimOptional(input.CustomerPhone),
		CategoryID:      input.CategoryID,
		AssignedAdminID: s.router.AutoAssign(ctx, input.CategoryID),
	}

	err := s.tickets.Create(ctx, ticket)
	if errors.Is(err, repository.ErrInvalidReference) && ticket.AssignedAdminID != nil {
		// The chosen admin was deleted in between; keep the ticket unassigned.
		ticket.AssignedAdminID = nil
		err = s.tickets.Create(ctx, ticket)
	}
	if err != nil {
		return nil, mapRepoError(err, "category")
	}

	s.publish(ctx, events.NewEvent(events.EventTicketCreated, ticket.ID, actor, events.TicketCreatedPayload{
		CategoryID:      ticket.CategoryID,
		AssignedAdminID: ticket.AssignedAdminID,
		Priority:        ticket.Priority,
		Title:           ticket.Title,
		CustomerName:    ticket.CustomerName,
		CustomerEmail:   ticket.CustomerEmail,
	}))
	return s.Get(ctx, ticket.ID)
}

// Get fetches a ticket with display joins.
func (s *TicketService) Get(ctx context.Context, id int64) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err, "Ticket")
	}
	return ticket, nil
}

// ListForAdmin lists the tickets in the admin's category, or every ticket
// when the admin has no category.
func (s *TicketService) ListForAdmin(ctx context.Context, admin *domain.Admin) ([]domain.Ticket, error) {
	return s.list(ctx, repository.TicketFilter{CategoryID: admin.CategoryID})
}

// ListAll lists every ticket, newest first.
func (s *TicketService) ListAll(ctx context.Context, statuses []domain.TicketStatus) ([]domain.Ticket, error) {
	for _, st := range statuses {
		if !st.Valid() {
			return nil, apperrors.NewValidationError("Invalid status", string(st))
		}
	}
	return s.list(ctx, repository.TicketFilter{Statuses: statuses})
}

// ListResolved lists resolved and closed tickets in the admin's scope,
// most recently resolved first.
func (s *TicketService) ListResolved(ctx context.Context, admin *domain.Admin) ([]domain.Ticket, error) {
	return s.list(ctx, repository.TicketFilter{
		CategoryID:      admin.CategoryID,
		Statuses:        []domain.TicketStatus{domain.TicketStatusResolved, domain.TicketStatusClosed},
		OrderByResolved: true,
	})
}

func (s *TicketService) list(ctx context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	tickets, err := s.tickets.List(ctx, filter)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	if tickets == nil {
		tickets = []domain.Ticket{}
	}
	return tickets, nil
}

// Update applies the provided field changes.
func (s *TicketService) Update(ctx context.Context, id int64, input TicketUpdateInput, actor *domain.Admin) (*domain.Ticket, error) {
	if input.empty() {
		return nil, apperrors.NewValidationError("No fields to update", "")
	}
	if input.Status != nil && !input.Status.Valid() {
		return nil, apperrors.NewValidationError("Invalid status", string(*input.Status))
	}
	if input.Priority != nil && !input.Priority.Valid() {
		return nil, apperrors.NewValidationError("Invalid priority", string(*input.Priority))
	}
	if input.Title != nil && strings.TrimSpace(*input.Title) == "" {
		return nil, apperrors.NewValidationError("Title cannot be empty", "")
	}
	if input.Description != nil && strings.TrimSpace(*input.Description) == "" {
		return nil, apperrors.NewValidationError("Description cannot be empty", "")
	}

	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err, "Ticket")
	}
	if input.Assignee.Set && input.Assignee.ID != nil {
		if err := s.requireActiveAdmin(ctx, *input.Assignee.ID); err != nil {
			return nil, err
		}
	}

	oldStatus, oldPriority, oldAssignee := ticket.Status, ticket.Priority, ticket.AssignedAdminID
	if input.Title != nil {
		ticket.Title = strings.TrimSpace(*input.Title)
	}
	if input.Description != nil {
		ticket.Description = strings.TrimSpace(*input.Description)
	}
	if input.Priority != nil {
		ticket.Priority = *input.Priority
	}
	if input.Assignee.Set {
		ticket.AssignedAdminID = input.Assignee.ID
	}
	if input.Status != nil {
		ticket.SetStatus(*input.Status, s.now())
	}

	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, mapAssignmentError(err)
	}

	by := adminActor(actor)
	if ticket.Status != oldStatus {
		s.publish(ctx, events.NewEvent(events.EventTicketStatusChanged, ticket.ID, by, events.TicketStatusChangedPayload{
			OldStatus:    oldStatus,
			NewStatus:    ticket.Status,
			CustomerName: ticket.CustomerName,
		}))
	}
	if ticket.Priority != oldPriority {
		s.publish(ctx, events.NewEvent(events.EventTicketPriorityChanged, ticket.ID, by, events.TicketPriorityChangedPayload{
			OldPriority: oldPriority,
			NewPriority: ticket.Priority,
		}))
	}
	if !sameID(oldAssignee, ticket.AssignedAdminID) {
		s.publish(ctx, events.NewEvent(events.EventTicketAssigned, ticket.ID, by, events.TicketAssignedPayload{
			PreviousAdminID: oldAssignee,
			AssignedAdminID: ticket.AssignedAdminID,
		}))
	}
	return s.Get(ctx, ticket.ID)
}

// Assign hands the ticket to another admin. A non-empty reason is recorded
// as an internal note authored by the acting admin.
func (s *TicketService) Assign(ctx context.Context, id, adminID int64, reason string, actor *domain.Admin) (*domain.Ticket, error) {
	if adminID <= 0 {
		return nil, apperrors.NewValidationError("Admin ID is required", "")
	}
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err, "Ticket")
	}
	if err := s.requireActiveAdmin(ctx, adminID); err != nil {
		return nil, err
	}

	previous := ticket.AssignedAdminID
	ticket.AssignedAdminID = &adminID
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, mapAssignmentError(err)
	}

	reason = strings.TrimSpace(reason)
	if reason != "" {
		note := &domain.Comment{
			TicketID:   ticket.ID,
			AdminID:    &actor.ID,
			AuthorType: domain.AuthorTypeAdmin,
			Body:       "Ticket forwarded: " + reason,
			IsInternal: true,
		}
		if err := s.comments.Create(ctx, note); err != nil {
			s.logger.Warn("failed to record forwarding note", zap.Int64("ticket_id", ticket.ID), zap.Error(err))
		}
	}

	s.publish(ctx, events.NewEvent(events.EventTicketAssigned, ticket.ID, adminActor(actor), events.TicketAssignedPayload{
		PreviousAdminID: previous,
		AssignedAdminID: ticket.AssignedAdminID,
		Reason:          reason,
	}))
	return s.Get(ctx, ticket.ID)
}

// AddAdminComment appends an admin entry to the thread.
func (s *TicketService) AddAdminComment(ctx context.Context, ticketID int64, actor *domain.Admin, input CommentInput) (*domain.Comment, error) {
	body := strings.TrimSpace(input.Body)
	if body == "" && len(input.Attachments) == 0 {
		return nil, apperrors.NewValidationError("Message or attachment is required", "")
	}
	attachments, err := s.checkAttachments(input.Attachments)
	if err != nil {
		return nil, err
	}
	comment := &domain.Comment{
		TicketID:    ticketID,
		AdminID:     &actor.ID,
		AuthorType:  domain.AuthorTypeAdmin,
		Body:        body,
		Attachments: attachments,
		IsInternal:  input.IsInternal,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, mapRepoError(err, "Ticket")
	}
	name, email := actor.Name, actor.Email
	comment.AdminName, comment.AdminEmail = &name, &email

	s.publishMessage(ctx, comment, adminActor(actor))
	return comment, nil
}

// AddCustomerMessage appends a customer entry. Customer entries are never
// internal. Missing name or email default to the ticket's customer.
func (s *TicketService) AddCustomerMessage(ctx context.Context, ticketID int64, input CustomerMessageInput) (*domain.Comment, error) {
	body := strings.TrimSpace(input.Body)
	if body == "" && len(input.Attachments) == 0 {
		return nil, apperrors.NewValidationError("Message or attachment is required", "")
	}
	attachments, err := s.checkAttachments(input.Attachments)
	if err != nil {
		return nil, err
	}
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, mapRepoError(err, "Ticket")
	}
	name := strings.TrimSpace(input.CustomerName)
	if name == "" {
		name = ticket.CustomerName
	}
	email := strings.TrimSpace(input.CustomerEmail)
	if email == "" {
		email = ticket.CustomerEmail
	}

	comment := &domain.Comment{
		TicketID:      ticket.ID,
		AuthorType:    domain.AuthorTypeCustomer,
		Body:          body,
		Attachments:   attachments,
		CustomerName:  &name,
		CustomerEmail: &email,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, mapRepoError(err, "Ticket")
	}
	s.publishMessage(ctx, comment, events.Actor{Type: events.ActorCustomer, Name: name})
	return comment, nil
}

// ListComments returns the admin view of the thread, internal notes included.
func (s *TicketService) ListComments(ctx context.Context, ticketID int64) ([]domain.Comment, error) {
	return s.thread(ctx, ticketID, true)
}

// ListCustomerMessages returns the customer view of the thread.
func (s *TicketService) ListCustomerMessages(ctx context.Context, ticketID int64) ([]domain.Comment, error) {
	return s.thread(ctx, ticketID, false)
}

func (s *TicketService) thread(ctx context.Context, ticketID int64, includeInternal bool) ([]domain.Comment, error) {
	if _, err := s.tickets.GetByID(ctx, ticketID); err != nil {
		return nil, mapRepoError(err, "Ticket")
	}
	comments, err := s.comments.ListByTicket(ctx, ticketID, includeInternal)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	if comments == nil {
		comments = []domain.Comment{}
	}
	return comments, nil
}

// SweepUnassigned routes every open or in-progress ticket that has no
// assignee. Individual failures are counted, not returned.
func (s *TicketService) SweepUnassigned(ctx context.Context) (*SweepResult, error) {
	pending, err := s.tickets.List(ctx, repository.TicketFilter{
		UnassignedOnly: true,
		Statuses:       []domain.TicketStatus{domain.TicketStatusOpen, domain.TicketStatusInProgress},
	})
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	result := &SweepResult{TotalUnassigned: len(pending)}
	for i := range pending {
		if err := ctx.Err(); err != nil {
			return nil, apperrors.NewInternalError(err)
		}
		ticket := &pending[i]
		adminID := s.router.AutoAssign(ctx, ticket.CategoryID)
		if adminID == nil {
			result.Failed++
			continue
		}
		ticket.AssignedAdminID = adminID
		if err := s.tickets.Update(ctx, ticket); err != nil {
			s.logger.Warn("sweep assignment failed", zap.Int64("ticket_id", ticket.ID), zap.Error(err))
			result.Failed++
			continue
		}
		result.Assigned++
		s.publish(ctx, events.NewEvent(events.EventTicketAssigned, ticket.ID, events.Actor{Type: events.ActorSystem}, events.TicketAssignedPayload{
			AssignedAdminID: adminID,
			Reason:          "auto-assignment sweep",
		}))
	}

	active, err := s.admins.CountActive(ctx)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	result.ActiveAdmins = active
	s.logger.Info("unassigned ticket sweep finished",
		zap.Int("total", result.TotalUnassigned),
		zap.Int("assigned", result.Assigned),
		zap.Int("failed", result.Failed))
	return result, nil
}

func (s *TicketService) checkAttachments(in []domain.Attachment) ([]domain.Attachment, error) {
	out := make([]domain.Attachment, 0, len(in))
	for _, a := range in {
		checked, err := s.uploads.CheckAttachment(a)
		if err != nil {
			return nil, err
		}
		out = append(out, checked)
	}
	return out, nil
}

// mapAssignmentError covers an assignee deleted between the check and the write.
func mapAssignmentError(err error) error {
	if errors.Is(err, repository.ErrInvalidReference) {
		return apperrors.NewValidationError("Invalid assignee", "admin no longer exists")
	}
	return mapRepoError(err, "Ticket")
}

func (s *TicketService) requireActiveAdmin(ctx context.Context, adminID int64) error {
	admin, err := s.admins.GetByID(ctx, adminID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NewValidationError("Invalid assignee", fmt.Sprintf("admin %d does not exist", adminID))
		}
		return apperrors.NewInternalError(err)
	}
	if !admin.IsActive {
		return apperrors.NewValidationError("Invalid assignee", fmt.Sprintf("admin %d is inactive", adminID))
	}
	return nil
}

func (s *TicketService) publishMessage(ctx context.Context, comment *domain.Comment, actor events.Actor) {
	s.publish(ctx, events.NewEvent(events.EventTicketMessageAdded, comment.TicketID, actor, events.TicketMessageAddedPayload{
		CommentID:   comment.ID,
		AuthorType:  comment.AuthorType,
		IsInternal:  comment.IsInternal,
		Attachments: len(comment.Attachments),
		BodyPreview: preview(comment.Body, 120),
	}))
}

func (s *TicketService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	s.dispatcher.Publish(ctx, event)
}

func adminActor(admin *domain.Admin) events.Actor {
	if admin == nil {
		return events.Actor{Type: events.ActorSystem}
	}
	id := admin.ID
	return events.Actor{Type: events.ActorAdmin, AdminID: &id, Name: admin.Name}
}

func sameID(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func trimOptional(v *string) *string {
	if v == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*v)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func preview(body string, limit int) string {
	runes := []rune(body)
	if len(runes) <= limit {
		return body
	}
	return string(runes[:limit]) + "..."
}
