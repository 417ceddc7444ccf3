package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	registry            *prometheus.Registry
	ActiveRecords       prometheus.Gauge
	RecordsTotal        prometheus.Counter
	Issues              *prometheus.GaugeVec
	AnalysisPassesTotal prometheus.Counter
}

func NewMetrics() *Metrics {
	r := prometheus.NewRegistry()
	m := &Metrics{
		registry: r,
		ActiveRecords: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "pixelwatch",
			Name:      "active_records",
			Help:      "Number of request records in the working set",
		}),
		RecordsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "pixelwatch",
			Name:      "records_total",
			Help:      "Total request records ingested",
		}),
		Issues: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "pixelwatch",
			Name:      "issues",
			Help:      "Issues currently attached to records, by type and severity",
		}, []string{"type", "severity"}),
		AnalysisPassesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "pixelwatch",
			Name:      "analysis_passes_total",
			Help:      "Total detection/correlation passes run",
		}),
	}
	r.MustRegister(m.ActiveRecords, m.RecordsTotal, m.Issues, m.AnalysisPassesTotal)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }
