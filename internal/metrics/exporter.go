// Package metrics exposes sentinel counters in Prometheus format.
//
// The exporter is fed from the event bus rather than the store, so what it
// reports is exactly what live clients were told.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"sentinel/internal/domain"
	"sentinel/internal/events"
	"sentinel/internal/store"
)

const namespace = "sentinel"

// Exporter translates events into Prometheus metrics
type Exporter struct {
	registry *prometheus.Registry

	scans        *prometheus.CounterVec
	scanDuration prometheus.Histogram
	hosts        *prometheus.CounterVec
	vulns        *prometheus.CounterVec
	remediations prometheus.Counter
	policies     prometheus.Counter
	logs         *prometheus.CounterVec
}

// New creates an exporter with its own registry. liveClients, when set,
// backs a gauge of connected live subscribers.
func New(liveClients func() int) *Exporter {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	e := &Exporter{
		registry: registry,
		scans: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scans_total",
			Help:      "Finished discovery scans by status",
		}, []string{"status"}),
		scanDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "scan_duration_seconds",
			Help:      "Wall time of finished discovery scans",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
		hosts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "hosts_discovered_total",
			Help:      "Hosts written to the store by source",
		}, []string{"source"}),
		vulns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "vulnerabilities_found_total",
			Help:      "Vulnerabilities reported on discovered hosts by severity",
		}, []string{"severity"}),
		remediations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "remediations_applied_total",
			Help:      "Vulnerabilities marked remediated",
		}),
		policies: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "policies_created_total",
			Help:      "Compliance policies created",
		}),
		logs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "log_entries_total",
			Help:      "Activity log entries by level",
		}, []string{"level"}),
	}

	registry.MustRegister(e.scans, e.scanDuration, e.hosts, e.vulns, e.remediations, e.policies, e.logs)

	if liveClients != nil {
		registry.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "live_clients",
			Help:      "Connected live-channel subscribers",
		}, func() float64 { return float64(liveClients()) }))
	}

	return e
}

// Observe updates metrics for one event. It is a bus handler and never blocks.
func (e *Exporter) Observe(ev events.Event) {
	switch data := ev.Data.(type) {
	case domain.Host:
		source := string(data.Source)
		if source == "" {
			source = string(domain.SourceSimulated)
		}
		e.hosts.WithLabelValues(source).Inc()
		for _, v := range data.Vulnerabilities {
			e.vulns.WithLabelValues(string(v.Severity)).Inc()
		}
	case domain.ScanRecord:
		e.scans.WithLabelValues(string(data.Status)).Inc()
		e.scanDuration.Observe(float64(data.Duration) / 1000)
	case store.RemediationResult:
		e.remediations.Inc()
	case domain.Policy:
		e.policies.Inc()
	case domain.LogEntry:
		e.logs.WithLabelValues(string(data.Level)).Inc()
	}
}

// Registry returns the underlying registry
func (e *Exporter) Registry() *prometheus.Registry {
	return e.registry
}

// Handler serves the registry in the Prometheus text format
func (e *Exporter) Handler() http.Handler {
	return promhttp.HandlerFor(e.registry, promhttp.HandlerOpts{})
}
