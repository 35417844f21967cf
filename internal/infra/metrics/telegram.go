package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		recipientsRegisteredTotal,
		telegramCommandsReceivedTotal,
		telegramRateLimitTriggeredTotal,
		telegramSendsTotal,
		adminRequestsTotal,
	)
}

var (
	recipientsRegisteredTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "recipients_registered_total",
			Help: "Total number of /start registrations.",
		},
	)

	telegramCommandsReceivedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "telegram_commands_received_total",
			Help: "Counts incoming messages and commands from users.",
		},
		[]string{"command"},
	)

	telegramRateLimitTriggeredTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "telegram_rate_limit_triggered_total",
			Help: "Total number of times users have been rate-limited.",
		},
	)

	telegramSendsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "telegram_sends_total",
			Help: "Outbound Bot API calls by method and HTTP-like status.",
		},
		[]string{"method", "status"},
	)

	adminRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "admin_requests_total",
			Help: "Tracks admin API requests.",
		},
		[]string{"endpoint", "status"}, // status: 'authorized', 'unauthorized', 'error'
	)
)

func IncRecipientsRegistered() {
	recipientsRegisteredTotal.Inc()
}

func IncTelegramCommand(command string) {
	telegramCommandsReceivedTotal.WithLabelValues(norm(command)).Inc()
}

func IncRateLimitTriggered() {
	telegramRateLimitTriggeredTotal.Inc()
}

func IncTelegramSend(method, status string) {
	telegramSendsTotal.WithLabelValues(norm(method), status).Inc()
}

func IncAdminRequest(endpoint, status string) {
	adminRequestsTotal.WithLabelValues(endpoint, norm(status)).Inc()
}
