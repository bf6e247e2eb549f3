package syncer

import (
	"context"
	"errors"
	"time"
)

// Start runs a first cycle after initialDelay and then one every interval,
// until ctx is done. It blocks; call it in its own goroutine.
func (e *Engine) Start(ctx context.Context, initialDelay, interval time.Duration) {
	e.log.Info("sync scheduler started", "initial_delay", initialDelay, "interval", interval)

	timer := time.NewTimer(initialDelay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return
	case <-timer.C:
		e.tick(ctx)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			e.log.Info("sync scheduler stopped")
			return
		case <-ticker.C:
			e.tick(ctx)
		}
	}
}

func (e *Engine) tick(ctx context.Context) {
	_, err := e.Run(ctx)
	if errors.Is(err, ErrBusy) {
		e.log.Debug("sync tick skipped, previous cycle still running")
	}
	// other errors are logged by Run; the next tick retries
}
