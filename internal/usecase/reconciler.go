package usecase

import (
	"context"
	"log/slog"
	"time"

	"ReadLater/internal/metrics"
	"ReadLater/internal/ports"
)

// Reconciler periodically fails items that were left PENDING or PROCESSING,
// e.g. after the process died in the middle of a bulk import.
type Reconciler struct {
	sweeper    ports.StaleItemSweeper
	driver     ports.Scheduler
	staleAfter time.Duration
	logger     *slog.Logger
}

// NewReconciler wires the sweeper with a scheduler driver.
func NewReconciler(sweeper ports.StaleItemSweeper, driver ports.Scheduler, staleAfter time.Duration, logger *slog.Logger) *Reconciler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Reconciler{sweeper: sweeper, driver: driver, staleAfter: staleAfter, logger: logger}
}

// RunOnce fails items created before now-staleAfter that never reached a terminal status.
func (r *Reconciler) RunOnce(ctx context.Context, now time.Time) (int64, error) {
	n, err := r.sweeper.FailStale(ctx, now.Add(-r.staleAfter))
	if err != nil {
		return 0, err
	}
	if n > 0 {
		metrics.StaleItemsFailed.Add(float64(n))
		r.logger.Info("stale items marked failed", "count", n)
	}
	return n, nil
}

// Start registers the sweep with the scheduler.
func (r *Reconciler) Start(ctx context.Context) error {
	if r.driver == nil || r.sweeper == nil {
		return nil
	}

	job := func(trigger time.Time) {
		if _, err := r.RunOnce(ctx, trigger); err != nil {
			r.logger.Error("reconcile stale items", "error", err)
		}
	}
	return r.driver.Start(ctx, job)
}

// Stop tears down the underlying scheduler.
func (r *Reconciler) Stop(ctx context.Context) error {
	if r.driver == nil {
		return nil
	}
	return r.driver.Stop(ctx)
}
