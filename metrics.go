package ttldict

// Metrics receives instrumentation events from a Dict. Implementations must
// be safe for concurrent use; the Dict calls them while holding its lock, so
// they must not block.
type Metrics interface {
	// Hit records a lookup that found a live key.
	Hit()
	// Miss records a lookup of an absent or expired key.
	Miss()
	// Write records an insert or overwrite.
	Write()
	// Expired records n entries removed by a purge.
	Expired(n int)
	// CallbackPanic records an expiration callback that panicked.
	CallbackPanic()
	// Size reports the number of entries after a mutation.
	Size(n int)
}

type nopMetrics struct{}

func (nopMetrics) Hit()           {}
func (nopMetrics) Miss()          {}
func (nopMetrics) Write()         {}
func (nopMetrics) Expired(int)    {}
func (nopMetrics) CallbackPanic() {}
func (nopMetrics) Size(int)       {}

// NopMetrics returns a Metrics implementation that discards everything.
func NopMetrics() Metrics { return nopMetrics{} }
