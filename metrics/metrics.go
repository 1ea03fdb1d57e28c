// Package metrics exports history engine activity as Prometheus metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/javanhut/ivaldi-history/history"
)

// Collector holds the metrics for one or more engines. Metrics are
// registered on the registerer passed to New, never on the global default.
type Collector struct {
	Events       *prometheus.CounterVec
	Branches     prometheus.Gauge
	Entries      prometheus.Gauge
	PayloadBytes prometheus.Gauge
}

// New registers the collector's metrics on reg.
func New(reg prometheus.Registerer) *Collector {
	f := promauto.With(reg)
	return &Collector{
		Events: f.NewCounterVec(prometheus.CounterOpts{
			Name: "ivh_history_events_total",
			Help: "History events by type",
		}, []string{"type"}),
		Branches: f.NewGauge(prometheus.GaugeOpts{
			Name: "ivh_history_branches",
			Help: "Current number of branches",
		}),
		Entries: f.NewGauge(prometheus.GaugeOpts{
			Name: "ivh_history_entries",
			Help: "Current number of entries across all branches",
		}),
		PayloadBytes: f.NewGauge(prometheus.GaugeOpts{
			Name: "ivh_history_payload_bytes",
			Help: "Bytes held by distinct recorded states",
		}),
	}
}

// Observe updates the gauges from an engine summary.
func (c *Collector) Observe(s history.Stats) {
	c.Branches.Set(float64(s.Branches))
	c.Entries.Set(float64(s.Entries))
	c.PayloadBytes.Set(float64(s.PayloadBytes))
}

// Attach subscribes c to h and seeds the gauges. The returned function
// detaches it. Clear emits no event, so call Observe after clearing.
func Attach[T any](c *Collector, h *history.Engine[T]) func() {
	c.Observe(h.Stats())
	return h.On(func(ev history.Event[T]) {
		c.Events.WithLabelValues(string(ev.Type)).Inc()
		c.Observe(h.Stats())
	})
}
