package websocket

import "github.com/prometheus/client_golang/prometheus"

var (
	wsSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "support_chat_ws_sessions",
			Help: "Current number of connected websocket sessions.",
		},
	)
	wsMessagesDelivered = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "support_chat_ws_messages_delivered_total",
			Help: "Total envelopes handed to session buffers.",
		},
	)
	wsMessagesDropped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "support_chat_ws_messages_dropped_total",
			Help: "Envelopes skipped because a session buffer was full.",
		},
	)
	wsClientEventsRejected = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "support_chat_ws_client_events_rejected_total",
			Help: "Client envelopes that were not valid typing events.",
		},
	)
)

func init() {
	prometheus.MustRegister(wsSessions, wsMessagesDelivered, wsMessagesDropped, wsClientEventsRejected)
}

func incSessions() {
	wsSessions.Inc()
}

func decSessions() {
	wsSessions.Dec()
}

func addDelivered(count int) {
	wsMessagesDelivered.Add(float64(count))
}

func addDropped(count int) {
	wsMessagesDropped.Add(float64(count))
}
