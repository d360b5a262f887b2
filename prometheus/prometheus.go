// Package prometheus provides a Prometheus implementation of ttldict.Metrics.
package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/zekroTJA/ttldict"
)

const defaultNamespace = "ttldict"

type Opts struct {
	// Namespace prefixes every metric name. Defaults to "ttldict".
	Namespace string
	// Subsystem distinguishes several dicts registered on one registry.
	Subsystem   string
	ConstLabels prometheus.Labels
}

type dictMetrics struct {
	hits           prometheus.Counter
	misses         prometheus.Counter
	writes         prometheus.Counter
	expired        prometheus.Counter
	callbackPanics prometheus.Counter
	entries        prometheus.Gauge
}

// NewMetrics creates the dict metrics and registers them on reg.
func NewMetrics(reg prometheus.Registerer, opts Opts) ttldict.Metrics {
	if opts.Namespace == "" {
		opts.Namespace = defaultNamespace
	}
	f := promauto.With(reg)

	counter := func(name, help string) prometheus.Counter {
		return f.NewCounter(prometheus.CounterOpts{
			Namespace:   opts.Namespace,
			Subsystem:   opts.Subsystem,
			Name:        name,
			Help:        help,
			ConstLabels: opts.ConstLabels,
		})
	}

	return &dictMetrics{
		hits:           counter("hits_total", "Total number of lookups that found a live key"),
		misses:         counter("misses_total", "Total number of lookups of absent or expired keys"),
		writes:         counter("writes_total", "Total number of inserts and overwrites"),
		expired:        counter("expired_total", "Total number of entries removed by expiration"),
		callbackPanics: counter("callback_panics_total", "Total number of expiration callbacks that panicked"),
		entries: f.NewGauge(prometheus.GaugeOpts{
			Namespace:   opts.Namespace,
			Subsystem:   opts.Subsystem,
			Name:        "entries",
			Help:        "Number of entries currently stored",
			ConstLabels: opts.ConstLabels,
		}),
	}
}

func (m *dictMetrics) Hit()           { m.hits.Inc() }
func (m *dictMetrics) Miss()          { m.misses.Inc() }
func (m *dictMetrics) Write()         { m.writes.Inc() }
func (m *dictMetrics) Expired(n int)  { m.expired.Add(float64(n)) }
func (m *dictMetrics) CallbackPanic() { m.callbackPanics.Inc() }
func (m *dictMetrics) Size(n int)     { m.entries.Set(float64(n)) }

var _ ttldict.Metrics = (*dictMetrics)(nil)
