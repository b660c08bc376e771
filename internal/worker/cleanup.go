// Package worker holds the background maintenance loops.
package worker

import (
	"context"
	"time"

	"github.com/Skotchmaster/hrms_backend/internal/logging"
	"github.com/Skotchmaster/hrms_backend/internal/repo"
)

// Cleanup periodically deletes read notifications past the retention window.
type Cleanup struct {
	Notifications *repo.NotificationRepo
	Interval      time.Duration
	RetentionDays int
}

// Run blocks until ctx is cancelled. One pass fires immediately on start so
// a restart never postpones retention by a full interval.
func (w *Cleanup) Run(ctx context.Context) {
	interval := w.Interval
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	l := logging.FromContext(ctx)

	w.pass(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			l.Info("cleanup worker stopped")
			return
		case <-ticker.C:
			w.pass(ctx)
		}
	}
}

func (w *Cleanup) pass(ctx context.Context) {
	l := logging.FromContext(ctx)
	deleted, err := w.Notifications.Cleanup(ctx, w.RetentionDays)
	if err != nil {
		l.Error("notification cleanup failed", "error", err)
		return
	}
	if deleted > 0 {
		l.Info("notification cleanup", "deleted", deleted, "retention_days", w.RetentionDays)
	}
}
