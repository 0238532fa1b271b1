package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/repository"
)

func TestSelectLeastLoaded(t *testing.T) {
	cases := []struct {
		name  string
		loads []domain.AdminLoad
		want  *int64
	}{
		{"empty", nil, nil},
		{"single", []domain.AdminLoad{{AdminID: 9, TicketCount: 40}}, idPtr(9)},
		{"fewest wins", []domain.AdminLoad{{AdminID: 1, TicketCount: 3}, {AdminID: 2, TicketCount: 1}, {AdminID: 3, TicketCount: 2}}, idPtr(2)},
		{"tie lowest id", []domain.AdminLoad{{AdminID: 7, TicketCount: 1}, {AdminID: 4, TicketCount: 1}, {AdminID: 5, TicketCount: 1}}, idPtr(4)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := selectLeastLoaded(tc.loads)
			if (got == nil) != (tc.want == nil) || (got != nil && *got != *tc.want) {
				t.Fatalf("selectLeastLoaded = %v want %v", deref(got), deref(tc.want))
			}
		})
	}
}

func deref(v *int64) any {
	if v == nil {
		return nil
	}
	return *v
}

func TestAutoAssignNoAdmins(t *testing.T) {
	h := newHarness(t)
	if got := h.router.AutoAssign(context.Background(), idPtr(2)); got != nil {
		t.Fatalf("expected nil with no admins, got %d", *got)
	}
	if h.metrics.Snapshot().Assignments[assignOutcomeUnassigned] != 1 {
		t.Fatalf("unassigned outcome not recorded")
	}
}

func TestAutoAssignSingleCategoryAdmin(t *testing.T) {
	h := newHarness(t)
	h.addAdmin(t, "other@example.com", idPtr(1), domain.AdminRoleAdmin)
	x := h.addAdmin(t, "x@example.com", idPtr(2), domain.AdminRoleAdmin)

	for i := 0; i < 3; i++ {
		got := h.router.AutoAssign(context.Background(), idPtr(2))
		if got == nil || *got != x.ID {
			t.Fatalf("run %d: expected admin %d, got %v", i, x.ID, deref(got))
		}
	}
}

func TestAutoAssignBalancesLoad(t *testing.T) {
	h := newHarness(t)
	a := h.addAdmin(t, "a@example.com", idPtr(2), domain.AdminRoleAdmin)
	b := h.addAdmin(t, "b@example.com", idPtr(2), domain.AdminRoleAdmin)

	first := h.newTicket(t, 2)
	second := h.newTicket(t, 2)
	third := h.newTicket(t, 2)

	if *first.AssignedAdminID != a.ID || *second.AssignedAdminID != b.ID || *third.AssignedAdminID != a.ID {
		t.Fatalf("unexpected rotation %d %d %d", *first.AssignedAdminID, *second.AssignedAdminID, *third.AssignedAdminID)
	}
}

func TestAutoAssignFallsBackToAnyActiveAdmin(t *testing.T) {
	h := newHarness(t)
	inactive := h.addAdmin(t, "inactive@example.com", idPtr(2), domain.AdminRoleAdmin)
	h.deactivate(t, inactive)
	general := h.addAdmin(t, "general@example.com", nil, domain.AdminRoleAdmin)

	got := h.router.AutoAssign(context.Background(), idPtr(2))
	if got == nil || *got != general.ID {
		t.Fatalf("expected fallback to %d, got %v", general.ID, deref(got))
	}
	if h.metrics.Snapshot().Assignments[assignOutcomeFallback] != 1 {
		t.Fatalf("fallback outcome not recorded")
	}
}

type failingAdmins struct {
	repository.AdminRepository
}

func (failingAdmins) ListLoads(context.Context, *int64) ([]domain.AdminLoad, error) {
	return nil, errors.New("connection refused")
}

func TestAutoAssignStoreErrorYieldsNil(t *testing.T) {
	router := NewRouter(failingAdmins{}, nil, zap.NewNop())
	if got := router.AutoAssign(context.Background(), idPtr(1)); got != nil {
		t.Fatalf("expected nil on store error")
	}
}
