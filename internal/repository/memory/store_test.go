package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/repository"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestStore(t *testing.T) (*Store, *fakeClock) {
	t.Helper()
	clock := &fakeClock{t: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
	store := NewStore(WithClock(clock.Now))
	if err := store.Categories().SeedDefaults(context.Background(), domain.DefaultCategories()); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return store, clock
}

func mustAdmin(t *testing.T, s *Store, email string, categoryID *int64, active bool) *domain.Admin {
	t.Helper()
	a := &domain.Admin{Email: email, Name: email, Role: domain.AdminRoleAdmin, CategoryID: categoryID, IsActive: active, PasswordHash: "x"}
	if err := s.Admins().Create(context.Background(), a); err != nil {
		t.Fatalf("create admin %s: %v", email, err)
	}
	return a
}

func mustTicket(t *testing.T, s *Store, categoryID, assignee *int64, status domain.TicketStatus) *domain.Ticket {
	t.Helper()
	tk := &domain.Ticket{
		Title: "t", Description: "d", Status: status, Priority: domain.TicketPriorityMedium,
		CustomerName: "Cust", CustomerEmail: "c@example.com", CategoryID: categoryID, AssignedAdminID: assignee,
	}
	if err := s.Tickets().Create(context.Background(), tk); err != nil {
		t.Fatalf("create ticket: %v", err)
	}
	return tk
}

func int64Ptr(v int64) *int64 { return &v }

func TestSeedDefaultsIsIdempotent(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	if err := s.Categories().SeedDefaults(ctx, domain.DefaultCategories()); err != nil {
		t.Fatalf("reseed: %v", err)
	}
	cats, _ := s.Categories().List(ctx)
	if len(cats) != len(domain.DefaultCategories()) {
		t.Fatalf("got %d categories", len(cats))
	}
	for i := 1; i < len(cats); i++ {
		if cats[i-1].Name > cats[i].Name {
			t.Fatalf("categories not sorted by name: %v", cats)
		}
	}
}

func TestAdminEmailUnique(t *testing.T) {
	s, _ := newTestStore(t)
	mustAdmin(t, s, "a@example.com", nil, true)
	err := s.Admins().Create(context.Background(), &domain.Admin{Email: "a@example.com", Name: "dup", Role: domain.AdminRoleAdmin})
	if !errors.Is(err, repository.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
}

func TestListLoadsCountsNonClosedTickets(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	cat := int64Ptr(2)

	a := mustAdmin(t, s, "a@example.com", cat, true)
	b := mustAdmin(t, s, "b@example.com", cat, true)
	mustAdmin(t, s, "inactive@example.com", cat, false)
	mustAdmin(t, s, "other@example.com", int64Ptr(3), true)

	mustTicket(t, s, cat, &a.ID, domain.TicketStatusOpen)
	mustTicket(t, s, cat, &a.ID, domain.TicketStatusResolved)
	mustTicket(t, s, cat, &b.ID, domain.TicketStatusClosed)

	loads, err := s.Admins().ListLoads(ctx, cat)
	if err != nil {
		t.Fatalf("loads: %v", err)
	}
	if len(loads) != 2 {
		t.Fatalf("expected two active admins in category, got %+v", loads)
	}
	if loads[0].AdminID != b.ID || loads[0].TicketCount != 0 {
		t.Fatalf("least loaded should be b with 0, got %+v", loads[0])
	}
	if loads[1].AdminID != a.ID || loads[1].TicketCount != 2 {
		t.Fatalf("a should carry 2 tickets, got %+v", loads[1])
	}

	all, _ := s.Admins().ListLoads(ctx, nil)
	if len(all) != 3 {
		t.Fatalf("expected three active admins overall, got %d", len(all))
	}
}

func TestCommentBumpsTicketUpdatedAt(t *testing.T) {
	s, clock := newTestStore(t)
	ctx := context.Background()
	tk := mustTicket(t, s, nil, nil, domain.TicketStatusOpen)

	clock.Advance(time.Hour)
	c := &domain.Comment{TicketID: tk.ID, AuthorType: domain.AuthorTypeCustomer, Body: "hello"}
	if err := s.Comments().Create(ctx, c); err != nil {
		t.Fatalf("comment: %v", err)
	}
	got, _ := s.Tickets().GetByID(ctx, tk.ID)
	if got.UpdatedAt.Before(c.CreatedAt) {
		t.Fatalf("updated_at %v precedes comment %v", got.UpdatedAt, c.CreatedAt)
	}

	if err := s.Comments().Create(ctx, &domain.Comment{TicketID: 999, AuthorType: domain.AuthorTypeCustomer, Body: "x"}); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("unknown ticket should be ErrNotFound, got %v", err)
	}
}

func TestInternalCommentsFiltered(t *testing.T) {
	s, clock := newTestStore(t)
	ctx := context.Background()
	tk := mustTicket(t, s, nil, nil, domain.TicketStatusOpen)
	admin := mustAdmin(t, s, "a@example.com", nil, true)

	_ = s.Comments().Create(ctx, &domain.Comment{TicketID: tk.ID, AuthorType: domain.AuthorTypeCustomer, Body: "public"})
	clock.Advance(time.Minute)
	_ = s.Comments().Create(ctx, &domain.Comment{TicketID: tk.ID, AdminID: &admin.ID, AuthorType: domain.AuthorTypeAdmin, Body: "secret", IsInternal: true})

	all, _ := s.Comments().ListByTicket(ctx, tk.ID, true)
	if len(all) != 2 || all[1].AdminName == nil || *all[1].AdminName != admin.Name {
		t.Fatalf("admin view wrong: %+v", all)
	}
	public, _ := s.Comments().ListByTicket(ctx, tk.ID, false)
	if len(public) != 1 || public[0].Body != "public" {
		t.Fatalf("customer view leaked internal comment: %+v", public)
	}
}

func TestTicketUpdateKeepsResolvedAt(t *testing.T) {
	s, clock := newTestStore(t)
	ctx := context.Background()
	tk := mustTicket(t, s, nil, nil, domain.TicketStatusOpen)

	tk.SetStatus(domain.TicketStatusResolved, clock.Now())
	if err := s.Tickets().Update(ctx, tk); err != nil {
		t.Fatalf("update: %v", err)
	}
	first := *tk.ResolvedAt

	clock.Advance(time.Hour)
	later := clock.Now()
	tk.ResolvedAt = &later
	if err := s.Tickets().Update(ctx, tk); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, _ := s.Tickets().GetByID(ctx, tk.ID)
	if !got.ResolvedAt.Equal(first) {
		t.Fatalf("resolved_at overwritten: %v != %v", got.ResolvedAt, first)
	}
}

func TestDeleteAdminUnassignsTickets(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	a := mustAdmin(t, s, "a@example.com", nil, true)
	tk := mustTicket(t, s, nil, &a.ID, domain.TicketStatusOpen)

	if err := s.Admins().Delete(ctx, a.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	got, _ := s.Tickets().GetByID(ctx, tk.ID)
	if got.AssignedAdminID != nil {
		t.Fatalf("ticket still assigned to deleted admin")
	}
	if err := s.Admins().Delete(ctx, a.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("second delete should be ErrNotFound, got %v", err)
	}
}

func TestTicketListFilters(t *testing.T) {
	s, clock := newTestStore(t)
	ctx := context.Background()
	a := mustAdmin(t, s, "a@example.com", nil, true)

	open := mustTicket(t, s, int64Ptr(1), nil, domain.TicketStatusOpen)
	clock.Advance(time.Minute)
	mine := mustTicket(t, s, int64Ptr(2), &a.ID, domain.TicketStatusInProgress)

	unassigned, _ := s.Tickets().List(ctx, repository.TicketFilter{UnassignedOnly: true})
	if len(unassigned) != 1 || unassigned[0].ID != open.ID {
		t.Fatalf("unassigned filter: %+v", unassigned)
	}
	byCat, _ := s.Tickets().List(ctx, repository.TicketFilter{CategoryID: int64Ptr(2)})
	if len(byCat) != 1 || byCat[0].ID != mine.ID || byCat[0].AssignedAdminName == nil {
		t.Fatalf("category filter: %+v", byCat)
	}
	all, _ := s.Tickets().List(ctx, repository.TicketFilter{})
	if len(all) != 2 || all[0].ID != mine.ID {
		t.Fatalf("expected newest first: %+v", all)
	}
	paged, _ := s.Tickets().List(ctx, repository.TicketFilter{Limit: 1, Offset: 1})
	if len(paged) != 1 || paged[0].ID != open.ID {
		t.Fatalf("paging: %+v", paged)
	}
}

func TestDanglingReferencesAreInvalid(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	tk := mustTicket(t, s, nil, nil, domain.TicketStatusOpen)

	tk.AssignedAdminID = int64Ptr(404)
	if err := s.Tickets().Update(ctx, tk); !errors.Is(err, repository.ErrInvalidReference) {
		t.Fatalf("unknown assignee: got %v", err)
	}
	orphan := &domain.Ticket{Title: "t", Description: "d", Status: domain.TicketStatusOpen, CategoryID: int64Ptr(404)}
	if err := s.Tickets().Create(ctx, orphan); !errors.Is(err, repository.ErrInvalidReference) {
		t.Fatalf("unknown category: got %v", err)
	}
	admin := &domain.Admin{Email: "x@example.com", Name: "x", Role: domain.AdminRoleAdmin, CategoryID: int64Ptr(404)}
	if err := s.Admins().Create(ctx, admin); !errors.Is(err, repository.ErrInvalidReference) {
		t.Fatalf("admin with unknown category: got %v", err)
	}
}
