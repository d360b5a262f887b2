package ttldict

import (
	"context"
	"log/slog"
	"time"
)

// StartCleaner purges the Dict every interval until ctx is done or
// StopCleaner is called, so expired entries are released and their
// callbacks fire even when nobody accesses the Dict. A running cleaner is
// replaced. A non-positive interval only stops the running cleaner.
func (d *Dict[K, V]) StartCleaner(ctx context.Context, interval time.Duration) {
	d.cleanerMu.Lock()
	defer d.cleanerMu.Unlock()

	d.stopCleanerLocked()
	if interval <= 0 {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	d.stopCleaner = cancel
	d.cleanerDone = done

	go d.cleanupCycle(ctx, interval, done)
}

// StopCleaner stops the running cleaner and waits for it to exit.
func (d *Dict[K, V]) StopCleaner() {
	d.cleanerMu.Lock()
	defer d.cleanerMu.Unlock()

	d.stopCleanerLocked()
}

func (d *Dict[K, V]) stopCleanerLocked() {
	if d.stopCleaner == nil {
		return
	}

	d.stopCleaner()
	<-d.cleanerDone
	d.stopCleaner = nil
	d.cleanerDone = nil
}

func (d *Dict[K, V]) cleanupCycle(ctx context.Context, interval time.Duration, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	d.log.Debug("cleaner started", slog.Duration("interval", interval))
	for {
		select {
		case <-ticker.C:
			d.Purge()
		case <-ctx.Done():
			d.log.Debug("cleaner stopped")
			return
		}
	}
}
