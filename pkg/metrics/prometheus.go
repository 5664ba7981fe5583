package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Error kinds used as the "kind" label of ErrorsCount
const (
	KindValidation = "validation"
	KindTransport  = "transport"
	KindConfig     = "config"
	KindOther      = "other"
)

// Metrics holds all prometheus metrics
type Metrics struct {
	Extractions    *prometheus.CounterVec
	ProcessingTime prometheus.Histogram
	CostUSD        prometheus.Counter
	ErrorsCount    *prometheus.CounterVec
}

// NewMetrics creates new prometheus metrics registered on reg.
// A nil reg registers on the default prometheus registry.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		Extractions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "extractions_total",
			Help:      "The total number of flight extractions by outcome",
		}, []string{"status"}),
		ProcessingTime: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "extraction_duration_seconds",
			Help:      "Time taken to extract flight information from an email",
			Buckets:   prometheus.DefBuckets,
		}),
		CostUSD: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "extraction_cost_usd_total",
			Help:      "Accumulated cost reported by the agent service in USD",
		}),
		ErrorsCount: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "errors_total",
			Help:      "The total number of errors",
		}, []string{"kind"}),
	}
}
