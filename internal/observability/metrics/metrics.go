package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

var Passes = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "ffnbot_passes_total",
	Help: "Number of polling passes by strategy and result",
}, []string{"strategy", "result"})

var PassDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "ffnbot_pass_duration_seconds",
	Help:    "Wall time of a polling pass, excluding the inter-pass delay",
	Buckets: prometheus.ExponentialBuckets(0.5, 2, 12),
}, []string{"strategy"})

var ItemsHandled = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "ffnbot_items_handled_total",
	Help: "Number of new items handled, by kind",
}, []string{"kind"})

var ItemsSkipped = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "ffnbot_items_skipped_total",
	Help: "Number of new items skipped before reply formulation, by reason",
}, []string{"reason"})

var RepliesPosted = promauto.NewCounter(prometheus.CounterOpts{
	Name: "ffnbot_replies_posted_total",
	Help: "Number of replies posted",
})

var RepliesSkipped = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "ffnbot_replies_skipped_total",
	Help: "Number of formulated replies that were not posted, by reason",
}, []string{"reason"})

var ReplyFailures = promauto.NewCounter(prometheus.CounterOpts{
	Name: "ffnbot_reply_failures_total",
	Help: "Number of replies that failed to post",
})

var StoreSize = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "ffnbot_checked_items",
	Help: "Number of identifiers in the dedup store",
})

var StoreSaveFailures = promauto.NewCounter(prometheus.CounterOpts{
	Name: "ffnbot_store_save_failures_total",
	Help: "Number of failed dedup store flushes",
})

// CounterValue reads the current value of c, or 0 when it cannot be read.
func CounterValue(c prometheus.Counter) float64 {
	var m dto.Metric
	if err := c.Write(&m); err != nil || m.Counter == nil {
		return 0
	}
	return m.Counter.GetValue()
}
