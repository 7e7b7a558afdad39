package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all application metrics
type Metrics struct {
	// Directory search metrics
	SearchRequests prometheus.Counter
	SearchResults  prometheus.Histogram
	SearchEmpty    prometheus.Counter
	SearchLatency  prometheus.Histogram

	// Booking metrics
	Bookings *prometheus.CounterVec

	// SOS metrics
	AlertsTriggered *prometheus.CounterVec
	KeyPresses      *prometheus.CounterVec
	KeyListeners    prometheus.Gauge

	// Broker metrics
	BrokerPublishes *prometheus.CounterVec
	BrokerLatency   *prometheus.HistogramVec

	// Relay metrics
	RelayMessages *prometheus.CounterVec
	RelayLatency  *prometheus.HistogramVec
}

// NewMetrics creates all application metrics and registers them on reg.
// A nil registerer falls back to the default Prometheus registry.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		SearchRequests: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "directory",
			Name:      "searches_total",
			Help:      "Total number of directory filter/sort evaluations",
		}),
		SearchResults: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "directory",
			Name:      "search_results",
			Help:      "Number of doctors returned per search",
			Buckets:   []float64{0, 1, 2, 5, 10, 25, 50, 100},
		}),
		SearchEmpty: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "directory",
			Name:      "search_empty_total",
			Help:      "Total number of searches that matched no doctor",
		}),
		SearchLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "directory",
			Name:      "search_duration_seconds",
			Help:      "Time spent filtering and sorting the directory",
			Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1},
		}),
		Bookings: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "booking",
			Name:      "submissions_total",
			Help:      "Total number of booking submissions by outcome",
		}, []string{"outcome"}),
		AlertsTriggered: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sos",
			Name:      "alerts_triggered_total",
			Help:      "Total number of SOS alerts fired",
		}, []string{"source"}),
		KeyPresses: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sos",
			Name:      "key_presses_total",
			Help:      "Total number of key presses seen by the SOS detector",
		}, []string{"qualifying"}),
		KeyListeners: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "sos",
			Name:      "active_listeners",
			Help:      "Current number of active SOS key listeners",
		}),
		BrokerPublishes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "broker",
			Name:      "publishes_total",
			Help:      "Total number of broker publishes",
		}, []string{"channel", "status"}),
		BrokerLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "broker",
			Name:      "publish_duration_seconds",
			Help:      "Duration of broker publishes",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5},
		}, []string{"channel"}),
		RelayMessages: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "relay",
			Name:      "messages_total",
			Help:      "Total number of broker messages handled by the relay",
		}, []string{"channel", "status"}),
		RelayLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "relay",
			Name:      "handle_duration_seconds",
			Help:      "Time spent handling one relayed message",
			Buckets:   prometheus.DefBuckets,
		}, []string{"channel"}),
	}
}

// New creates metrics on a private registry so repeated construction never
// collides. Used by tests and tools that do not expose /metrics.
func New(namespace string) *Metrics {
	return NewMetrics(namespace, prometheus.NewRegistry())
}
