package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/observability"
	"github.com/spec-kit/support-desk/internal/repository"
)

// Assignment outcomes recorded in metrics.
const (
	assignOutcomeCategory   = "category"
	assignOutcomeFallback   = "fallback"
	assignOutcomeUnassigned = "unassigned"
	assignOutcomeError      = "error"
)

// Router picks an owner for new tickets.
//
// Candidates are the active admins of the ticket's category, or every
// active admin when the category has none. Among candidates the one with the
// fewest non-closed assigned tickets wins, lowest id first on ties. The
// read-then-write is not atomic; two concurrent tickets may pick the same
// admin.
type Router struct {
	admins  repository.AdminRepository
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewRouter builds a router.
func NewRouter(admins repository.AdminRepository, metrics *observability.Metrics, logger *zap.Logger) *Router {
	return &Router{admins: admins, metrics: metrics, logger: logger}
}

// AutoAssign returns the chosen admin id, or nil when nobody can take the
// ticket. It never fails: store errors are logged and yield nil.
func (r *Router) AutoAssign(ctx context.Context, categoryID *int64) *int64 {
	if categoryID != nil {
		loads, err := r.admins.ListLoads(ctx, categoryID)
		if err != nil {
			r.fail(err, categoryID)
			return nil
		}
		if id := selectLeastLoaded(loads); id != nil {
			r.metrics.RecordAssignment(assignOutcomeCategory)
			return id
		}
	}

	loads, err := r.admins.ListLoads(ctx, nil)
	if err != nil {
		r.fail(err, categoryID)
		return nil
	}
	id := selectLeastLoaded(loads)
	if id == nil {
		r.metrics.RecordAssignment(assignOutcomeUnassigned)
		r.logger.Info("no active admin available, ticket left unassigned")
		return nil
	}
	r.metrics.RecordAssignment(assignOutcomeFallback)
	return id
}

func (r *Router) fail(err error, categoryID *int64) {
	r.metrics.RecordAssignment(assignOutcomeError)
	fields := []zap.Field{zap.Error(err)}
	if categoryID != nil {
		fields = append(fields, zap.Int64("category_id", *categoryID))
	}
	r.logger.Warn("auto-assignment failed", fields...)
}

// selectLeastLoaded returns the admin with the smallest ticket count,
// breaking ties by lowest id. It does not rely on input order.
func selectLeastLoaded(loads []domain.AdminLoad) *int64 {
	if len(loads) == 0 {
		return nil
	}
	best := loads[0]
	for _, l := range loads[1:] {
		if l.TicketCount < best.TicketCount || (l.TicketCount == best.TicketCount && l.AdminID < best.AdminID) {
			best = l
		}
	}
	id := best.AdminID
	return &id
}
