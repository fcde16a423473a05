// Package metrics records per-run scan metrics in a private Prometheus
// registry and writes them as a node-exporter textfile.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the scan metrics.
type Metrics struct {
	Registry *prometheus.Registry

	ItemsFetched    *prometheus.CounterVec
	TopicsExtracted prometheus.Gauge
	ClustersFound   prometheus.Gauge
	RunDuration     prometheus.Gauge
	LastRun         prometheus.Gauge
}

// New registers the scan metrics on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		ItemsFetched: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "topicscan_items_fetched_total",
			Help: "Items kept after fetching, by source.",
		}, []string{"source"}),
		TopicsExtracted: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "topicscan_topics_extracted",
			Help: "Topics extracted by the last run.",
		}),
		ClustersFound: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "topicscan_clusters_found",
			Help: "Clusters found by the last run.",
		}),
		RunDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "topicscan_run_duration_seconds",
			Help: "Wall time of the last run.",
		}),
		LastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "topicscan_last_run_timestamp_seconds",
			Help: "Unix time the last run finished.",
		}),
	}
	m.Registry.MustRegister(m.ItemsFetched, m.TopicsExtracted, m.ClustersFound, m.RunDuration, m.LastRun)
	return m
}

// Run is the outcome of one scan.
type Run struct {
	FetchedBySource map[string]int
	Topics          int
	Clusters        int
	Duration        time.Duration
	Finished        time.Time
}

// Observe records a finished run.
func (m *Metrics) Observe(r Run) {
	for source, n := range r.FetchedBySource {
		m.ItemsFetched.WithLabelValues(source).Add(float64(n))
	}
	m.TopicsExtracted.Set(float64(r.Topics))
	m.ClustersFound.Set(float64(r.Clusters))
	m.RunDuration.Set(r.Duration.Seconds())
	m.LastRun.Set(float64(r.Finished.Unix()))
}

// WriteTextfile writes the registry to path atomically.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.Registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
