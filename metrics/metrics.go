package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds the board's Prometheus instruments on a private
// registry so tests can create collectors freely.
type Collector struct {
	reg *prometheus.Registry

	PollsTotal   prometheus.Counter
	PollErrors   *prometheus.CounterVec // stage label: transport|decode
	PollDuration prometheus.Histogram

	FeedTimestamp    prometheus.Gauge
	TripsInSnapshot  prometheus.Gauge
	AlertsInSnapshot prometheus.Gauge

	RefreshForced     prometheus.Counter
	RefreshSuppressed prometheus.Counter
}

func NewCollector() *Collector {
	reg := prometheus.NewRegistry()

	c := &Collector{
		reg: reg,
		PollsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "board_polls_total",
			Help: "Total feed poll attempts.",
		}),
		PollErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "board_poll_errors_total",
			Help: "Poll failures by stage.",
		}, []string{"stage"}),
		PollDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "board_poll_duration_seconds",
			Help:    "Wall time of one fetch+decode+project cycle.",
			Buckets: prometheus.DefBuckets,
		}),
		FeedTimestamp: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "board_feed_timestamp_seconds",
			Help: "Header timestamp of the last successfully applied feed.",
		}),
		TripsInSnapshot: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "board_snapshot_trips",
			Help: "Projected trips in the current snapshot.",
		}),
		AlertsInSnapshot: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "board_snapshot_alerts",
			Help: "Service alerts in the current snapshot.",
		}),
		RefreshForced: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "board_manual_refresh_total",
			Help: "Manual refresh requests that triggered a poll.",
		}),
		RefreshSuppressed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "board_manual_refresh_suppressed_total",
			Help: "Manual refresh requests rejected by the rate gate.",
		}),
	}

	reg.MustRegister(
		c.PollsTotal, c.PollErrors, c.PollDuration,
		c.FeedTimestamp, c.TripsInSnapshot, c.AlertsInSnapshot,
		c.RefreshForced, c.RefreshSuppressed,
	)
	return c
}

// Handler exposes the registry for the /metrics endpoint.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.reg, promhttp.HandlerOpts{})
}
