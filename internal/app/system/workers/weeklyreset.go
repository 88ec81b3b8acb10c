// internal/app/system/workers/weeklyreset.go
package workers

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mongang/mongang/internal/app/points"
	"github.com/mongang/mongang/internal/app/system/timeouts"
	"github.com/mongang/mongang/internal/domain/models"
	"go.uber.org/zap"
)

// Resetter zeroes every weekly counter across users and gangs.
type Resetter interface {
	ResetAllWeeklyPoints(ctx context.Context) (points.ResetCounts, error)
}

// ResetMarkerStore persists the boundary of the last completed weekly reset,
// so a restarted or double-fired worker does not reset the same week twice.
type ResetMarkerStore interface {
	LastWeeklyReset(ctx context.Context) (time.Time, error)
	SetLastWeeklyReset(ctx context.Context, boundary time.Time) error
}

// SystemRecorder appends system entries to the activity log.
type SystemRecorder interface {
	RecordSystem(ctx context.Context, targetType, targetID, reason string) error
}

// WeeklyReset is a background worker that zeroes weekly point counters once
// per week. It polls on a short interval and compares a persisted marker
// against the current week boundary (Monday 00:00 UTC), so resets fire at
// most once per week no matter how often the check runs, and a reset missed
// during downtime is caught on the next tick after startup.
type WeeklyReset struct {
	resetter Resetter
	marker   ResetMarkerStore
	activity SystemRecorder
	log      *zap.Logger
	interval time.Duration
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

// NewWeeklyReset creates a new weekly reset worker.
func NewWeeklyReset(resetter Resetter, marker ResetMarkerStore, activity SystemRecorder, logger *zap.Logger, interval time.Duration) *WeeklyReset {
	return &WeeklyReset{
		resetter: resetter,
		marker:   marker,
		activity: activity,
		log:      logger,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// WeekBoundary returns the most recent Monday 00:00 UTC at or before t.
func WeekBoundary(t time.Time) time.Time {
	t = t.UTC()
	daysSinceMonday := (int(t.Weekday()) + 6) % 7
	midnight := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return midnight.AddDate(0, 0, -daysSinceMonday)
}

// Start begins the background reset loop. The check also runs once
// immediately so a reset missed while the process was down is applied
// without waiting for the first tick.
func (w *WeeklyReset) Start() {
	w.wg.Add(1)
	go w.run()
	w.log.Info("weekly reset worker started", zap.Duration("interval", w.interval))
}

// Stop signals the worker to stop and waits for it to finish.
func (w *WeeklyReset) Stop() {
	close(w.stopCh)
	w.wg.Wait()
	w.log.Info("weekly reset worker stopped")
}

func (w *WeeklyReset) run() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.check()
	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.check()
		}
	}
}

func (w *WeeklyReset) check() {
	ctx, cancel := context.WithTimeout(context.Background(), timeouts.Batch())
	defer cancel()

	if _, err := w.RunOnce(ctx, time.Now()); err != nil {
		w.log.Error("weekly reset check failed", zap.Error(err))
	}
}

// RunOnce performs one guarded reset check at the given instant. It returns
// true when a reset actually ran. Calling it repeatedly within the same week
// resets at most once.
func (w *WeeklyReset) RunOnce(ctx context.Context, now time.Time) (bool, error) {
	boundary := WeekBoundary(now)

	last, err := w.marker.LastWeeklyReset(ctx)
	if err != nil {
		return false, fmt.Errorf("weekly reset: load marker: %w", err)
	}
	if !last.Before(boundary) {
		return false, nil
	}

	counts, err := w.resetter.ResetAllWeeklyPoints(ctx)
	if err != nil {
		return false, fmt.Errorf("weekly reset: %w", err)
	}

	// The marker is advanced only after the reset succeeds, so a failed
	// reset is retried on the next tick.
	if err := w.marker.SetLastWeeklyReset(ctx, boundary); err != nil {
		return true, fmt.Errorf("weekly reset: save marker: %w", err)
	}

	if w.activity != nil {
		reason := fmt.Sprintf("weekly reset for week of %s: %d users, %d gangs",
			boundary.Format("2006-01-02"), counts.Users, counts.Gangs)
		if err := w.activity.RecordSystem(ctx, models.TargetGang, "all", reason); err != nil {
			w.log.Warn("weekly reset: activity entry failed", zap.Error(err))
		}
	}

	w.log.Info("weekly reset completed",
		zap.Time("week_boundary", boundary),
		zap.Int64("users", counts.Users),
		zap.Int64("gangs", counts.Gangs))
	return true, nil
}
