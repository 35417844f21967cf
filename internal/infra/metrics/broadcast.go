package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		broadcastRunsTotal,
		broadcastDeliveriesTotal,
		broadcastRunDuration,
		groupRelayMessagesTotal,
		registeredGroups,
	)
}

var (
	broadcastRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "broadcast_runs_total",
			Help: "Completed promo broadcast runs per theme, language and content source.",
		},
		[]string{"theme", "lang", "source"}, // source: 'ai', 'static'
	)

	broadcastDeliveriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "broadcast_deliveries_total",
			Help: "Per-recipient promo outcomes.",
		},
		[]string{"theme", "lang", "result"}, // 'success', 'error', 'skipped'
	)

	broadcastRunDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "broadcast_run_duration_seconds",
			Help:    "Wall time of a promo broadcast run.",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600, 1200},
		},
		[]string{"theme"},
	)

	groupRelayMessagesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "group_relay_messages_total",
			Help: "Group relay sends, labeled by result.",
		},
		[]string{"result"}, // 'delivered', 'removed', 'failed'
	)

	registeredGroups = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "registered_groups",
			Help: "Group chats currently registered for event relay.",
		},
	)
)

// ObserveBroadcastRun records the counters of one finished run.
func ObserveBroadcastRun(theme, lang string, usedAI bool, success, errors, skipped int, d time.Duration) {
	source := "static"
	if usedAI {
		source = "ai"
	}
	theme, lang = norm(theme), norm(lang)
	broadcastRunsTotal.WithLabelValues(theme, lang, source).Inc()
	broadcastDeliveriesTotal.WithLabelValues(theme, lang, "success").Add(float64(success))
	broadcastDeliveriesTotal.WithLabelValues(theme, lang, "error").Add(float64(errors))
	broadcastDeliveriesTotal.WithLabelValues(theme, lang, "skipped").Add(float64(skipped))
	if d > 0 {
		broadcastRunDuration.WithLabelValues(theme).Observe(d.Seconds())
	}
}

func ObserveGroupRelay(delivered, removed, failed int) {
	groupRelayMessagesTotal.WithLabelValues("delivered").Add(float64(delivered))
	groupRelayMessagesTotal.WithLabelValues("removed").Add(float64(removed))
	groupRelayMessagesTotal.WithLabelValues("failed").Add(float64(failed))
}

func SetRegisteredGroups(n int) {
	registeredGroups.Set(float64(n))
}
