package chat

import "github.com/prometheus/client_golang/prometheus"

var (
	chatsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "support_chat_chats_created_total",
			Help: "Total chats opened by customers.",
		},
	)
	escalations = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "support_chat_escalations_total",
			Help: "Total chats handed from the AI to a human.",
		},
	)
	aiReplies = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "support_chat_ai_replies_total",
			Help: "Messages posted by the AI author, by kind.",
		},
		[]string{"kind"},
	)
	completionFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "support_chat_completion_failures_total",
			Help: "Completion calls that failed and were replaced by the apology.",
		},
	)
	followUpFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "support_chat_follow_up_failures_total",
			Help: "Background follow-up jobs that returned an error.",
		},
	)
)

func init() {
	prometheus.MustRegister(chatsCreated, escalations, aiReplies, completionFailures, followUpFailures)
}
