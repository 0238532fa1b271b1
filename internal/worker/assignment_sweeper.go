package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/support-desk/internal/service"
)

// Sweeper is the part of the ticket service the sweeper drives.
type Sweeper interface {
	SweepUnassigned(ctx context.Context) (*service.SweepResult, error)
}

// AssignmentSweeper periodically routes tickets left without an owner, for
// instance those created while no admin was active.
type AssignmentSweeper struct {
	tickets  Sweeper
	interval time.Duration
	logger   *zap.Logger
}

// NewAssignmentSweeper builds a sweeper. A non-positive interval disables Run.
func NewAssignmentSweeper(tickets Sweeper, interval time.Duration, logger *zap.Logger) *AssignmentSweeper {
	return &AssignmentSweeper{tickets: tickets, interval: interval, logger: logger}
}

// RunOnce performs a single pass.
func (w *AssignmentSweeper) RunOnce(ctx context.Context) (*service.SweepResult, error) {
	return w.tickets.SweepUnassigned(ctx)
}

// Run sweeps on every tick until ctx is cancelled.
func (w *AssignmentSweeper) Run(ctx context.Context) {
	if w.interval <= 0 {
		return
	}
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Info("assignment sweeper started", zap.Duration("interval", w.interval))
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("assignment sweeper stopped")
			return
		case <-ticker.C:
			result, err := w.RunOnce(ctx)
			if err != nil {
				w.logger.Warn("assignment sweep failed", zap.Error(err))
				continue
			}
			if result.TotalUnassigned > 0 {
				w.logger.Info("assignment sweep",
					zap.Int("assigned", result.Assigned),
					zap.Int("failed", result.Failed))
			}
		}
	}
}
