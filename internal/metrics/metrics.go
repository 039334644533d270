// Package metrics holds the Prometheus collectors exported by the HTTP
// adapter.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Import batch outcomes, used as the "result" label.
const (
	ResultApplied    = "applied"
	ResultInvalid    = "invalid"
	ResultConstraint = "constraint"
	ResultError      = "error"
)

// Metrics is one set of collectors. Each server builds its own and
// registers it on the registry it serves, so tests never collide on the
// default registry.
type Metrics struct {
	Requests        *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	ImportBatches   *prometheus.CounterVec
	ImportedItems   prometheus.Counter
	ListedRows      prometheus.Histogram
}

// New creates unregistered collectors.
func New() *Metrics {
	return &Metrics{
		Requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "dropscope_http_requests_total", Help: "HTTP requests by route and status code"},
			[]string{"route", "code"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "dropscope_http_request_duration_seconds",
				Help:    "HTTP request latency by route",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route"},
		),
		ImportBatches: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "dropscope_import_batches_total", Help: "Import batches by result"},
			[]string{"result"},
		),
		ImportedItems: prometheus.NewCounter(
			prometheus.CounterOpts{Name: "dropscope_imported_items_total", Help: "Items applied by successful imports"},
		),
		ListedRows: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "dropscope_list_rows",
				Help:    "Rows returned per listing",
				Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 250, 500, 1000},
			},
		),
	}
}

// Register registers every collector on reg.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{
		m.Requests, m.RequestDuration, m.ImportBatches, m.ImportedItems, m.ListedRows,
	} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// ObserveRequest records one finished HTTP request.
func (m *Metrics) ObserveRequest(route, code string, d time.Duration) {
	m.Requests.WithLabelValues(route, code).Inc()
	m.RequestDuration.WithLabelValues(route).Observe(d.Seconds())
}

// ObserveImport records one import batch. items counts only for applied
// batches.
func (m *Metrics) ObserveImport(result string, items int) {
	m.ImportBatches.WithLabelValues(result).Inc()
	if result == ResultApplied {
		m.ImportedItems.Add(float64(items))
	}
}

// ObserveList records the size of one listing.
func (m *Metrics) ObserveList(rows int) {
	m.ListedRows.Observe(float64(rows))
}
