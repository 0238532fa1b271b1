package service

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/events"
	"github.com/spec-kit/support-desk/internal/repository"
	apperrors "github.com/spec-kit/support-desk/pkg/errorutil"
)

func statusPtr(s domain.TicketStatus) *domain.TicketStatus { return &s }

func TestCreateValidation(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	valid := TicketCreateInput{Title: "t", Description: "d", CustomerName: "n", CustomerEmail: "n@example.com", CategoryID: idPtr(1)}

	cases := []struct {
		name   string
		mutate func(*TicketCreateInput)
	}{
		{"missing title", func(in *TicketCreateInput) { in.Title = "  " }},
		{"missing category", func(in *TicketCreateInput) { in.CategoryID = nil }},
		{"bad email", func(in *TicketCreateInput) { in.CustomerEmail = "not-an-email" }},
		{"bad priority", func(in *TicketCreateInput) { in.Priority = "critical" }},
		{"unknown category", func(in *TicketCreateInput) { in.CategoryID = idPtr(999) }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := valid
			tc.mutate(&in)
			_, err := h.tickets.Create(ctx, in, events.Actor{Type: events.ActorCustomer})
			if !apperrors.IsStatus(err, http.StatusBadRequest) {
				t.Fatalf("expected 400, got %v", err)
			}
		})
	}
}

func TestCreateDefaultsAndWelcome(t *testing.T) {
	h := newHarness(t)
	ticket := h.newTicket(t, 2)

	if ticket.Status != domain.TicketStatusOpen || ticket.Priority != domain.TicketPriorityMedium {
		t.Fatalf("defaults wrong: %s %s", ticket.Status, ticket.Priority)
	}
	if ticket.AssignedAdminID != nil {
		t.Fatalf("no admins exist, ticket must stay unassigned")
	}
	if ticket.CategoryName == nil || *ticket.CategoryName == "" {
		t.Fatalf("category join missing")
	}

	thread, err := h.tickets.ListCustomerMessages(context.Background(), ticket.ID)
	if err != nil {
		t.Fatalf("thread: %v", err)
	}
	if len(thread) != 1 || thread[0].AuthorType != domain.AuthorTypeSystem || thread[0].AdminID != nil {
		t.Fatalf("expected one system welcome message, got %+v", thread)
	}
	if strings.Contains(thread[0].Body, welcomeRouted) || !strings.Contains(thread[0].Body, welcomeQueued) {
		t.Fatalf("unassigned ticket must not claim routing: %q", thread[0].Body)
	}

	h.addAdmin(t, "billing@example.com", idPtr(2), domain.AdminRoleAdmin)
	routed := h.newTicket(t, 2)
	thread, err = h.tickets.ListCustomerMessages(context.Background(), routed.ID)
	if err != nil || len(thread) != 1 {
		t.Fatalf("routed thread: %v %+v", err, thread)
	}
	if !strings.Contains(thread[0].Body, welcomeRouted) {
		t.Fatalf("assigned ticket welcome: %q", thread[0].Body)
	}
}

func TestResolveStampsOnceAndPostsMessage(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	admin := h.addAdmin(t, "a@example.com", idPtr(2), domain.AdminRoleAdmin)
	ticket := h.newTicket(t, 2)

	h.clock.Advance(time.Hour)
	resolved, err := h.tickets.Update(ctx, ticket.ID, TicketUpdateInput{Status: statusPtr(domain.TicketStatusResolved)}, admin)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if resolved.ResolvedAt == nil {
		t.Fatalf("resolved_at not stamped")
	}
	stamp := *resolved.ResolvedAt

	h.clock.Advance(time.Hour)
	again, err := h.tickets.Update(ctx, ticket.ID, TicketUpdateInput{Status: statusPtr(domain.TicketStatusResolved)}, admin)
	if err != nil {
		t.Fatalf("resolve again: %v", err)
	}
	if !again.ResolvedAt.Equal(stamp) {
		t.Fatalf("resolved_at changed from %v to %v", stamp, again.ResolvedAt)
	}

	thread, _ := h.tickets.ListCustomerMessages(ctx, ticket.ID)
	if len(thread) != 2 {
		t.Fatalf("expected welcome + resolved message, got %d", len(thread))
	}
	last := thread[len(thread)-1]
	if last.AuthorType != domain.AuthorTypeSystem || !strings.Contains(last.Body, admin.Name) || !strings.Contains(last.Body, "Jordan") {
		t.Fatalf("resolved template wrong: %+v", last)
	}
}

func TestUpdateRules(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	admin := h.addAdmin(t, "a@example.com", idPtr(2), domain.AdminRoleAdmin)
	ticket := h.newTicket(t, 2)

	if _, err := h.tickets.Update(ctx, ticket.ID, TicketUpdateInput{}, admin); !apperrors.IsStatus(err, http.StatusBadRequest) {
		t.Fatalf("empty update: %v", err)
	}
	if _, err := h.tickets.Update(ctx, ticket.ID, TicketUpdateInput{Status: statusPtr("pending")}, admin); !apperrors.IsStatus(err, http.StatusBadRequest) {
		t.Fatalf("bad status: %v", err)
	}
	if _, err := h.tickets.Update(ctx, 404, TicketUpdateInput{Status: statusPtr(domain.TicketStatusClosed)}, admin); !apperrors.IsStatus(err, http.StatusNotFound) {
		t.Fatalf("unknown ticket: %v", err)
	}
	if _, err := h.tickets.Update(ctx, ticket.ID, TicketUpdateInput{Assignee: AssigneeChange{Set: true, ID: idPtr(999)}}, admin); !apperrors.IsStatus(err, http.StatusBadRequest) {
		t.Fatalf("unknown assignee: %v", err)
	}

	updated, err := h.tickets.Update(ctx, ticket.ID, TicketUpdateInput{Assignee: AssigneeChange{Set: true}}, admin)
	if err != nil {
		t.Fatalf("unassign: %v", err)
	}
	if updated.AssignedAdminID != nil {
		t.Fatalf("explicit null should unassign")
	}
}

func TestCommentsVisibilityAndActivity(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	admin := h.addAdmin(t, "a@example.com", idPtr(2), domain.AdminRoleAdmin)
	ticket := h.newTicket(t, 2)

	h.clock.Advance(10 * time.Minute)
	note, err := h.tickets.AddAdminComment(ctx, ticket.ID, admin, CommentInput{Body: "check logs", IsInternal: true})
	if err != nil {
		t.Fatalf("internal note: %v", err)
	}
	h.clock.Advance(10 * time.Minute)
	reply, err := h.tickets.AddCustomerMessage(ctx, ticket.ID, CustomerMessageInput{Body: "any news?"})
	if err != nil {
		t.Fatalf("customer reply: %v", err)
	}
	if reply.IsInternal || reply.CustomerEmail == nil || *reply.CustomerEmail != "jordan@example.com" {
		t.Fatalf("customer snapshot wrong: %+v", reply)
	}

	adminView, _ := h.tickets.ListComments(ctx, ticket.ID)
	customerView, _ := h.tickets.ListCustomerMessages(ctx, ticket.ID)
	if len(adminView) != 3 || len(customerView) != 2 {
		t.Fatalf("admin=%d customer=%d", len(adminView), len(customerView))
	}
	for _, c := range customerView {
		if c.ID == note.ID {
			t.Fatalf("internal note leaked to customer")
		}
	}

	current, _ := h.tickets.Get(ctx, ticket.ID)
	if current.UpdatedAt.Before(reply.CreatedAt) {
		t.Fatalf("updated_at %v behind last comment %v", current.UpdatedAt, reply.CreatedAt)
	}

	if _, err := h.tickets.AddCustomerMessage(ctx, ticket.ID, CustomerMessageInput{}); !apperrors.IsStatus(err, http.StatusBadRequest) {
		t.Fatalf("empty message: %v", err)
	}
	if _, err := h.tickets.AddAdminComment(ctx, 999, admin, CommentInput{Body: "x"}); !apperrors.IsStatus(err, http.StatusNotFound) {
		t.Fatalf("unknown ticket: %v", err)
	}
	withFile, err := h.tickets.AddCustomerMessage(ctx, ticket.ID, CustomerMessageInput{
		Attachments: []domain.Attachment{{ID: "f", Name: "a.png", URL: dataURL("image/png", pngHeader)}},
	})
	if err != nil || len(withFile.Attachments) != 1 {
		t.Fatalf("attachment-only message: %v", err)
	}
}

func TestMessageAttachmentsMustPassUploadRules(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	admin := h.addAdmin(t, "files@example.com", nil, domain.AdminRoleAdmin)
	ticket := h.newTicket(t, 1)

	script := []domain.Attachment{{ID: "x", Name: "x.html", Type: "text/html", URL: "javascript:alert(document.cookie)"}}
	if _, err := h.tickets.AddCustomerMessage(ctx, ticket.ID, CustomerMessageInput{Body: "see file", Attachments: script}); !apperrors.IsStatus(err, http.StatusBadRequest) {
		t.Fatalf("customer script attachment: %v", err)
	}
	if _, err := h.tickets.AddAdminComment(ctx, ticket.ID, admin, CommentInput{Body: "see file", Attachments: script}); !apperrors.IsStatus(err, http.StatusBadRequest) {
		t.Fatalf("admin script attachment: %v", err)
	}

	thread, err := h.tickets.ListComments(ctx, ticket.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	for _, c := range thread {
		if len(c.Attachments) > 0 {
			t.Fatalf("rejected attachment was stored: %+v", c)
		}
	}
}

type vanishingAssigneeRepo struct {
	repository.TicketRepository
}

func (vanishingAssigneeRepo) Update(context.Context, *domain.Ticket) error {
	return repository.ErrInvalidReference
}

func TestAssigneeDeletedMidUpdateIsBadRequest(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	actor := h.addAdmin(t, "actor@example.com", nil, domain.AdminRoleAdmin)
	target := h.addAdmin(t, "target@example.com", nil, domain.AdminRoleAdmin)
	ticket := h.newTicket(t, 1)

	svc := NewTicketService(TicketDependencies{
		TicketRepo:   vanishingAssigneeRepo{h.store.Tickets()},
		CommentRepo:  h.store.Comments(),
		AdminRepo:    h.store.Admins(),
		CategoryRepo: h.store.Categories(),
		Router:       h.router,
		Dispatcher:   h.dispatcher,
	})

	_, err := svc.Update(ctx, ticket.ID, TicketUpdateInput{Assignee: AssigneeChange{Set: true, ID: &target.ID}}, actor)
	if !apperrors.IsStatus(err, http.StatusBadRequest) {
		t.Fatalf("update: expected 400, got %v", err)
	}
	_, err = svc.Assign(ctx, ticket.ID, target.ID, "", actor)
	if !apperrors.IsStatus(err, http.StatusBadRequest) {
		t.Fatalf("assign: expected 400, got %v", err)
	}
}

func TestAssignWithReason(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	a := h.addAdmin(t, "a@example.com", idPtr(2), domain.AdminRoleAdmin)
	b := h.addAdmin(t, "b@example.com", idPtr(3), domain.AdminRoleAdmin)
	ticket := h.newTicket(t, 2)

	updated, err := h.tickets.Assign(ctx, ticket.ID, b.ID, "billing question", a)
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if *updated.AssignedAdminID != b.ID || updated.AssignedAdminName == nil {
		t.Fatalf("assignment not applied: %+v", updated)
	}
	thread, _ := h.tickets.ListComments(ctx, ticket.ID)
	last := thread[len(thread)-1]
	if !last.IsInternal || last.Body != "Ticket forwarded: billing question" || *last.AdminID != a.ID {
		t.Fatalf("forward note wrong: %+v", last)
	}

	if _, err := h.tickets.Assign(ctx, ticket.ID, 0, "", a); !apperrors.IsStatus(err, http.StatusBadRequest) {
		t.Fatalf("missing admin id: %v", err)
	}
}

func TestListScopes(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	scoped := h.addAdmin(t, "a@example.com", idPtr(2), domain.AdminRoleAdmin)
	global := h.addAdmin(t, "g@example.com", nil, domain.AdminRoleSuperAdmin)

	mine := h.newTicket(t, 2)
	h.newTicket(t, 3)
	if _, err := h.tickets.Update(ctx, mine.ID, TicketUpdateInput{Status: statusPtr(domain.TicketStatusClosed)}, scoped); err != nil {
		t.Fatalf("close: %v", err)
	}

	scopedList, _ := h.tickets.ListForAdmin(ctx, scoped)
	if len(scopedList) != 1 || scopedList[0].ID != mine.ID {
		t.Fatalf("category scope broken: %+v", scopedList)
	}
	globalList, _ := h.tickets.ListForAdmin(ctx, global)
	if len(globalList) != 2 {
		t.Fatalf("admin without category should see all, got %d", len(globalList))
	}
	resolved, _ := h.tickets.ListResolved(ctx, scoped)
	if len(resolved) != 1 || resolved[0].ResolvedAt == nil {
		t.Fatalf("resolved list: %+v", resolved)
	}
	openOnly, _ := h.tickets.ListAll(ctx, []domain.TicketStatus{domain.TicketStatusOpen})
	if len(openOnly) != 1 {
		t.Fatalf("status filter: %d", len(openOnly))
	}
}

func TestSweepUnassigned(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.newTicket(t, 1)
	h.newTicket(t, 2)

	result, err := h.tickets.SweepUnassigned(ctx)
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if result.TotalUnassigned != 2 || result.Assigned != 0 || result.Failed != 2 || result.ActiveAdmins != 0 {
		t.Fatalf("empty sweep: %+v", result)
	}

	admin := h.addAdmin(t, "a@example.com", idPtr(2), domain.AdminRoleAdmin)
	result, err = h.tickets.SweepUnassigned(ctx)
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if result.Assigned != 2 || result.Failed != 0 || result.ActiveAdmins != 1 {
		t.Fatalf("sweep result: %+v", result)
	}
	left, _ := h.store.Tickets().List(ctx, repository.TicketFilter{UnassignedOnly: true})
	if len(left) != 0 {
		t.Fatalf("%d tickets still unassigned", len(left))
	}
	all, _ := h.store.Tickets().List(ctx, repository.TicketFilter{AssignedAdminID: &admin.ID})
	if len(all) != 2 {
		t.Fatalf("expected both tickets on admin %d", admin.ID)
	}
}

type brokenComments struct {
	repository.CommentRepository
}

func (brokenComments) Create(context.Context, *domain.Comment) error {
	return errors.New("disk full")
}

func TestAutomatedMessageFailureDoesNotBlockUpdate(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	admin := h.addAdmin(t, "a@example.com", idPtr(2), domain.AdminRoleAdmin)
	ticket := h.newTicket(t, 2)

	dispatcher := events.NewInMemoryDispatcher(nil)
	NewAutomatedMessenger(brokenComments{}, h.auth.logger).RegisterHandlers(dispatcher)
	svc := NewTicketService(TicketDependencies{
		TicketRepo:   h.store.Tickets(),
		CommentRepo:  h.store.Comments(),
		AdminRepo:    h.store.Admins(),
		CategoryRepo: h.store.Categories(),
		Router:       h.router,
		Dispatcher:   dispatcher,
	})

	updated, err := svc.Update(ctx, ticket.ID, TicketUpdateInput{Status: statusPtr(domain.TicketStatusInProgress)}, admin)
	if err != nil {
		t.Fatalf("update should succeed despite messaging failure: %v", err)
	}
	if updated.Status != domain.TicketStatusInProgress {
		t.Fatalf("status not applied")
	}
}

func TestStatusMessageTemplates(t *testing.T) {
	for _, status := range []domain.TicketStatus{domain.TicketStatusInProgress, domain.TicketStatusResolved, domain.TicketStatusClosed} {
		msg := StatusMessage(status, "Sam", "Jordan", 42)
		if !strings.Contains(msg, "Sam") || !strings.Contains(msg, "Jordan") || !strings.Contains(msg, "#42") {
			t.Fatalf("%s template missing fields: %q", status, msg)
		}
	}
	if StatusMessage(domain.TicketStatusOpen, "Sam", "Jordan", 42) != "" {
		t.Fatalf("open has no template")
	}
}
