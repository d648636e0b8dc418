// Package ratelimit implements a fixed-window request limiter keyed by
// (client address, endpoint), persisted in the shared relational store so
// every backend instance sees the same counters.
//
// The window is fixed, not sliding: a burst straddling a window boundary can
// admit up to twice the configured rate. This matches the behavior the
// existing clients were tuned against; see DESIGN.md before changing it.
package ratelimit

import (
	"context"
	"log/slog"
	"time"

	"echo-memory/backend/internal/ratelimit/repository"
)

// Limiter decides, per request, whether a (client address, endpoint) pair has
// exceeded its call budget for the current window.
type Limiter struct {
	repo       repository.Repository
	max        int
	window     time.Duration
	failClosed bool
	logger     *slog.Logger
}

// New returns a Limiter enforcing max hits per window. When failClosed is
// false (the default deployment), a store failure admits the request so that
// a database outage does not take the whole API down with it; failClosed
// true inverts that for stricter environments.
func New(repo repository.Repository, max int, window time.Duration, failClosed bool, logger *slog.Logger) *Limiter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Limiter{repo: repo, max: max, window: window, failClosed: failClosed, logger: logger}
}

// CheckAndRecord records a hit for the pair at now and reports whether the
// request must be rejected. The store performs the whole decision atomically;
// concurrent requests at the limit boundary cannot overshoot the budget.
func (l *Limiter) CheckAndRecord(ctx context.Context, clientAddr, endpoint string, now time.Time) bool {
	limited, err := l.repo.Upsert(ctx, clientAddr, endpoint, now.Unix(), int64(l.window/time.Second), l.max)
	if err != nil {
		l.logger.Error("rate limiter store unavailable",
			"client", clientAddr, "endpoint", endpoint, "fail_closed", l.failClosed, "error", err)
		return l.failClosed
	}
	return limited
}

// Cleanup deletes counters whose last hit is older than one window. Runs off
// the request path.
func (l *Limiter) Cleanup(ctx context.Context, now time.Time) error {
	removed, err := l.repo.DeleteExpired(ctx, now.Add(-l.window).Unix())
	if err != nil {
		return err
	}
	if removed > 0 {
		l.logger.Debug("rate limiter cleanup", "removed", removed)
	}
	return nil
}

// RunSweeper calls Cleanup every interval until ctx is done. Intended to run
// in its own goroutine next to the HTTP server.
func (l *Limiter) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if err := l.Cleanup(ctx, now); err != nil {
				l.logger.Error("rate limiter cleanup failed", "error", err)
			}
		}
	}
}
