package service

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/support-desk/internal/auth"
	"github.com/spec-kit/support-desk/internal/config"
	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/events"
	"github.com/spec-kit/support-desk/internal/observability"
	"github.com/spec-kit/support-desk/internal/repository/memory"
)

type harness struct {
	store      *memory.Store
	clock      *testClock
	metrics    *observability.Metrics
	dispatcher events.Dispatcher
	router     *Router
	tickets    *TicketService
	admins     *AdminService
	auth       *AuthService
}

type testClock struct{ t time.Time }

func (c *testClock) Now() time.Time          { return c.t }
func (c *testClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newHarness(t *testing.T) *harness {
	t.Helper()
	logger := zap.NewNop()
	clock := &testClock{t: time.Date(2024, 6, 3, 8, 0, 0, 0, time.UTC)}
	store := memory.NewStore(memory.WithClock(clock.Now))
	if err := store.Categories().SeedDefaults(context.Background(), domain.DefaultCategories()); err != nil {
		t.Fatalf("seed categories: %v", err)
	}

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher(logger)
	router := NewRouter(store.Admins(), metrics, logger)
	NewAutomatedMessenger(store.Comments(), logger).RegisterHandlers(dispatcher)

	authCfg := config.AuthConfig{BcryptCost: 4}
	return &harness{
		store:      store,
		clock:      clock,
		metrics:    metrics,
		dispatcher: dispatcher,
		router:     router,
		tickets: NewTicketService(TicketDependencies{
			TicketRepo:   store.Tickets(),
			CommentRepo:  store.Comments(),
			AdminRepo:    store.Admins(),
			CategoryRepo: store.Categories(),
			Router:       router,
			Dispatcher:   dispatcher,
			Logger:       logger,
			Now:          clock.Now,
		}),
		admins: NewAdminService(store.Admins(), store.Categories(), 4, logger),
		auth:   NewAuthService(authCfg, store.Admins(), auth.NewTokenManager("test-secret", 24*time.Hour), logger),
	}
}

func (h *harness) addAdmin(t *testing.T, email string, categoryID *int64, role domain.AdminRole) *domain.Admin {
	t.Helper()
	admin, err := h.admins.Create(context.Background(), AdminCreateInput{
		Email: email, Password: "password123", Name: "Admin " + email, Role: role, CategoryID: categoryID,
	})
	if err != nil {
		t.Fatalf("create admin %s: %v", email, err)
	}
	return admin
}

func (h *harness) deactivate(t *testing.T, admin *domain.Admin) {
	t.Helper()
	_, err := h.admins.Update(context.Background(), admin.ID, AdminUpdateInput{
		Email: admin.Email, Name: admin.Name, Role: admin.Role, CategoryID: admin.CategoryID, IsActive: false,
	})
	if err != nil {
		t.Fatalf("deactivate: %v", err)
	}
}

func (h *harness) newTicket(t *testing.T, categoryID int64) *domain.Ticket {
	t.Helper()
	ticket, err := h.tickets.Create(context.Background(), TicketCreateInput{
		Title:         "Cannot log in",
		Description:   "The login page spins forever",
		CustomerName:  "Jordan",
		CustomerEmail: "jordan@example.com",
		CategoryID:    &categoryID,
	}, events.Actor{Type: events.ActorCustomer})
	if err != nil {
		t.Fatalf("create ticket: %v", err)
	}
	return ticket
}

func idPtr(v int64) *int64 { return &v }
