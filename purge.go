package ttldict

import (
	"log/slog"
	"runtime/debug"
)

// purgeLocked pops every queue record scheduled before now. A record only
// deletes its key if it was enqueued by the write that produced the
// currently stored entry; records left behind by overwrites or removals
// are dropped without effect.
func (d *Dict[K, V]) purgeLocked() {
	now := d.now()
	removed := 0

	for {
		r, ok := d.queue.peek()
		if !ok || !r.exp.Before(now) {
			break
		}
		d.queue.pop()

		e, ok := d.store[r.key]
		if !ok || e.seq != r.seq || !e.exp.Before(now) {
			continue
		}

		delete(d.store, r.key)
		removed++

		if r.cb == nil {
			continue
		}
		f := firedCallback[K, V]{key: r.key, val: e.val, cb: r.cb}
		if d.deferCallbacks {
			d.pending = append(d.pending, f)
		} else {
			d.invoke(f)
		}
	}

	if removed > 0 {
		d.metrics.Expired(removed)
		d.metrics.Size(len(d.store))
		d.log.Debug("purged expired entries",
			slog.Int("count", removed),
			slog.Int("remaining", len(d.store)))
	}
}

// invoke runs an expiration callback. A panicking callback is logged and
// counted; it never aborts the purge or reaches the caller.
func (d *Dict[K, V]) invoke(f firedCallback[K, V]) {
	defer func() {
		if recovered := recover(); recovered != nil {
			d.metrics.CallbackPanic()
			d.log.Error("expiration callback panicked",
				slog.Any("key", f.key),
				slog.Any("recovered", recovered),
				slog.String("stack", string(debug.Stack())))
		}
	}()

	f.cb(f.key, f.val)
}
