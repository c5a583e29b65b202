package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics are the conversion counters exported by the server.
type Metrics struct {
	Runs          *prometheus.CounterVec
	Pages         prometheus.Counter
	PageFailures  prometheus.Counter
	Records       prometheus.Counter
	DroppedBlocks prometheus.Counter
	Duration      prometheus.Histogram
}

// NewMetrics creates the conversion metrics and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cashier_converter",
			Name:      "runs_total",
			Help:      "Conversion runs by outcome.",
		}, []string{"outcome"}),
		Pages: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "cashier_converter",
			Name:      "pages_total",
			Help:      "Pages processed.",
		}),
		PageFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "cashier_converter",
			Name:      "page_failures_total",
			Help:      "Pages whose text could not be extracted.",
		}),
		Records: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "cashier_converter",
			Name:      "records_total",
			Help:      "Transaction records emitted.",
		}),
		DroppedBlocks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "cashier_converter",
			Name:      "dropped_blocks_total",
			Help:      "Blocks discarded for lack of a timestamp.",
		}),
		Duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "cashier_converter",
			Name:      "run_duration_seconds",
			Help:      "Wall time of a conversion run.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 12),
		}),
	}
	if reg != nil {
		reg.MustRegister(m.Runs, m.Pages, m.PageFailures, m.Records, m.DroppedBlocks, m.Duration)
	}
	return m
}

func (m *Metrics) observe(res *Result, outcome string) {
	if m == nil {
		return
	}
	m.Runs.WithLabelValues(outcome).Inc()
	m.Pages.Add(float64(res.Pages))
	m.PageFailures.Add(float64(res.PageFailures))
	m.Records.Add(float64(res.Records))
	m.DroppedBlocks.Add(float64(res.DroppedBlocks))
	m.Duration.Observe(res.Duration.Seconds())
}
