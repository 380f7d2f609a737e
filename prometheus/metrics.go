package prometheus

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Agent lifecycle counters
var (
	AgentCreateCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "agent_create_total",
			Help: "Total number of agent creations",
		},
	)

	AgentDeleteCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "agent_delete_total",
			Help: "Total number of agent deletions",
		},
	)

	AgentProvisionErrorCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agent_provision_errors_total",
			Help: "Total number of remote provisioning failures",
		},
		[]string{"operation"}, // operation can be "create", "delete", "sweep"
	)
)

// Conversation counters
var (
	ConverseCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "converse_turns_total",
			Help: "Total number of conversation turns handled",
		},
	)

	LeadCaptureCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "converse_leads_captured_total",
			Help: "Total number of leads captured from conversation turns",
		},
	)

	ProviderChatDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "provider_chat_duration_seconds",
			Help:    "Duration of remote provider chat calls in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)
)

// Document counters
var (
	DocumentProcessCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "document_process_total",
			Help: "Total number of document processing outcomes",
		},
		[]string{"status"}, // "ready" or "error"
	)

	KnowledgeBaseSyncCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "knowledge_base_sync_total",
			Help: "Total number of knowledge-base item uploads",
		},
		[]string{"result"}, // "ok" or "failed"
	)
)

// Widget and sweep counters
var (
	WidgetEmbedCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "widget_embed_total",
			Help: "Total number of embed snippet requests",
		},
		[]string{"cache"}, // "hit" or "miss"
	)

	SweepDeletedCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "sweep_remote_agents_deleted_total",
			Help: "Total number of orphaned remote agents deleted by the sweep",
		},
	)
)

var RequestDurationHistogram = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "agent_service_http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	},
	[]string{"method", "path"},
)

func init() {
	prometheus.MustRegister(AgentCreateCounter)
	prometheus.MustRegister(AgentDeleteCounter)
	prometheus.MustRegister(AgentProvisionErrorCounter)
	prometheus.MustRegister(ConverseCounter)
	prometheus.MustRegister(LeadCaptureCounter)
	prometheus.MustRegister(ProviderChatDuration)
	prometheus.MustRegister(DocumentProcessCounter)
	prometheus.MustRegister(KnowledgeBaseSyncCounter)
	prometheus.MustRegister(WidgetEmbedCounter)
	prometheus.MustRegister(SweepDeletedCounter)
	prometheus.MustRegister(RequestDurationHistogram)
}

func GetPrometheusHandler() http.Handler {
	return promhttp.Handler()
}

// MetricsMiddleware is an Echo middleware function that records HTTP request metrics
func MetricsMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			// Record metrics after the request is processed
			method := c.Request().Method
			path := c.Path()

			duration := time.Since(start).Seconds()
			RequestDurationHistogram.WithLabelValues(method, path).Observe(duration)

			return err
		}
	}
}
