// Package background contains services and tasks that run in the background,
// independently of direct HTTP request-response cycles.
package background

import (
	"context"
	"log/slog"
	"time"
)

// sweepTimeout bounds a single DeleteExpired call so a stuck datastore cannot
// stall the loop past shutdown.
const sweepTimeout = 30 * time.Second

// ExpiredSessionDeleter is the part of a session store the sweeper needs.
type ExpiredSessionDeleter interface {
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// StartSessionSweeper launches a goroutine that purges expired sessions every
// interval. Closing stopChan ends it; the returned channel is closed once the
// goroutine has exited, so shutdown code can wait for it.
func StartSessionSweeper(store ExpiredSessionDeleter, interval time.Duration, logger *slog.Logger, stopChan <-chan struct{}) <-chan struct{} {
	return startSweeper(store, interval, logger, stopChan, time.Now)
}

func startSweeper(store ExpiredSessionDeleter, interval time.Duration, logger *slog.Logger, stopChan <-chan struct{}, now func() time.Time) <-chan struct{} {
	done := make(chan struct{})
	logger.Info("session sweeper starting", "interval", interval)

	go func() {
		defer close(done)
		defer logger.Info("session sweeper stopped")

		ticker := time.NewTicker(interval)
		// Important to stop the ticker when done to free resources.
		defer ticker.Stop()

		for {
			select {
			case <-stopChan:
				return
			case <-ticker.C:
				sweepOnce(store, logger, now())
			}
		}
	}()

	return done
}

func sweepOnce(store ExpiredSessionDeleter, logger *slog.Logger, now time.Time) {
	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()

	removed, err := store.DeleteExpired(ctx, now)
	if err != nil {
		logger.Error("failed to delete expired sessions", "error", err)
		return
	}
	if removed > 0 {
		logger.Info("expired sessions deleted", "count", removed)
	}
}
