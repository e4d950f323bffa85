package metrics

import "github.com/prometheus/client_golang/prometheus"

// Prometheus metrics for the embedding backend, chat backend, and tools.
var (
	EmbeddingRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "minerva",
			Name:      "embedding_requests_total",
			Help:      "Total number of embedding requests",
		},
		[]string{"model", "status"},
	)

	EmbeddingRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "minerva",
			Name:      "embedding_request_duration_seconds",
			Help:      "Embedding request duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"model"},
	)

	EmbeddingTokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "minerva",
			Name:      "embedding_tokens_total",
			Help:      "Total embedding tokens consumed",
		},
		[]string{"model", "type"},
	)

	ChatRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "minerva",
			Name:      "chat_requests_total",
			Help:      "Total number of chat-completion requests",
		},
		[]string{"model", "status"},
	)

	ChatRoundsPerTurn = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "minerva",
			Name:      "chat_rounds_per_turn",
			Help:      "Model round-trips needed to produce one answer",
			Buckets:   []float64{1, 2, 3, 4, 5, 6, 7, 8},
		},
	)

	ToolInvocationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "minerva",
			Name:      "tool_invocations_total",
			Help:      "Total tool invocations requested by the model",
		},
		[]string{"tool", "status"},
	)
)

var registered bool

// Register registers backend and tool metrics. Must be called once from main.
func Register() {
	if registered {
		return
	}
	prometheus.MustRegister(EmbeddingRequestsTotal)
	prometheus.MustRegister(EmbeddingRequestDuration)
	prometheus.MustRegister(EmbeddingTokensTotal)
	prometheus.MustRegister(ChatRequestsTotal)
	prometheus.MustRegister(ChatRoundsPerTurn)
	prometheus.MustRegister(ToolInvocationsTotal)
	registered = true
}
