package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics is a centralized interface for the gateway's Prometheus metrics:
// classification throughput and accuracy proxies, cache hit ratio, context
// store size, workflow step outcomes, tool broker dispatch latency,
// session multiplexer load, rate-limit rejections, and HTTP request
// latency.
//
// Usage:
//
//	metrics := observability.NewMetrics()
//	metrics.RecordClassification("email", "high", 0.012)
type Metrics struct {
	// ClassificationCounter counts classify() calls by resolved category
	// and confidence level.
	// Labels: category, confidence_level
	ClassificationCounter *prometheus.CounterVec

	// ClassificationDuration measures classify() latency in seconds.
	// Labels: category
	ClassificationDuration *prometheus.HistogramVec

	// CacheLookups counts cache Get calls by tier and outcome.
	// Labels: tier (local|shared), outcome (hit|miss)
	CacheLookups *prometheus.CounterVec

	// ContextStoreSize is a gauge of currently held conversation contexts.
	ContextStoreSize prometheus.Gauge

	// WorkflowStepCounter counts workflow step completions by outcome.
	// Labels: outcome (completed|failed|prompted)
	WorkflowStepCounter *prometheus.CounterVec

	// WorkflowActive is a gauge of in-flight multi-step workflows.
	WorkflowActive prometheus.Gauge

	// ToolDispatchDuration measures broker.Dispatch latency in seconds.
	// Labels: tool_name, status (success|error)
	ToolDispatchDuration *prometheus.HistogramVec

	// ToolDispatchCounter counts broker.Dispatch calls.
	// Labels: tool_name, status
	ToolDispatchCounter *prometheus.CounterVec

	// ToolHealthGauge reports 1 if a registered tool is healthy, else 0.
	// Labels: tool_name
	ToolHealthGauge *prometheus.GaugeVec

	// ActiveSessions is a gauge of currently connected duplex clients.
	ActiveSessions prometheus.Gauge

	// SessionEvictions counts idle-eviction by the session janitor.
	SessionEvictions prometheus.Counter

	// RateLimitRejections counts requests denied by the token bucket.
	// Labels: key_kind (user|ip|composite)
	RateLimitRejections *prometheus.CounterVec

	// QueueDepth is a gauge of items waiting in the priority batch queue.
	// Labels: priority (low|normal|high)
	QueueDepth *prometheus.GaugeVec

	// HTTPRequestDuration measures REST API request latency.
	// Labels: method, path, status_code
	HTTPRequestDuration *prometheus.HistogramVec

	// HTTPRequestCounter counts REST API requests.
	// Labels: method, path, status_code
	HTTPRequestCounter *prometheus.CounterVec

	// AnalyticsEventsDropped counts events dropped by the analytics sink
	// when its bounded buffer is full.
	AnalyticsEventsDropped prometheus.Counter
}

// NewMetrics creates and registers every gateway metric with Prometheus's
// default registry. Call once at process startup.
func NewMetrics() *Metrics {
	return &Metrics{
		ClassificationCounter: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "jarvisgate_classifications_total",
				Help: "Total number of classify() calls by category and confidence level",
			},
			[]string{"category", "confidence_level"},
		),

		ClassificationDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "jarvisgate_classification_duration_seconds",
				Help:    "Duration of classify() calls in seconds",
				Buckets: []float64{0.001, 0.005, 0.01, 0.02, 0.05, 0.1, 0.5, 1},
			},
			[]string{"category"},
		),

		CacheLookups: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "jarvisgate_cache_lookups_total",
				Help: "Total cache lookups by tier and outcome",
			},
			[]string{"tier", "outcome"},
		),

		ContextStoreSize: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "jarvisgate_context_store_size",
				Help: "Current number of held conversation contexts",
			},
		),

		WorkflowStepCounter: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "jarvisgate_workflow_steps_total",
				Help: "Total workflow step completions by outcome",
			},
			[]string{"outcome"},
		),

		WorkflowActive: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "jarvisgate_workflows_active",
				Help: "Current number of in-flight multi-step workflows",
			},
		),

		ToolDispatchDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "jarvisgate_tool_dispatch_duration_seconds",
				Help:    "Duration of broker tool dispatch calls in seconds",
				Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30},
			},
			[]string{"tool_name", "status"},
		),

		ToolDispatchCounter: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "jarvisgate_tool_dispatches_total",
				Help: "Total broker tool dispatch calls by tool and status",
			},
			[]string{"tool_name", "status"},
		),

		ToolHealthGauge: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "jarvisgate_tool_healthy",
				Help: "1 if a registered tool reports healthy, else 0",
			},
			[]string{"tool_name"},
		),

		ActiveSessions: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "jarvisgate_active_sessions",
				Help: "Current number of connected duplex client sessions",
			},
		),

		SessionEvictions: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "jarvisgate_session_evictions_total",
				Help: "Total sessions evicted by the idle janitor",
			},
		),

		RateLimitRejections: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "jarvisgate_rate_limit_rejections_total",
				Help: "Total requests denied by the rate limiter",
			},
			[]string{"key_kind"},
		),

		QueueDepth: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "jarvisgate_priority_queue_depth",
				Help: "Current priority batch queue depth by tier",
			},
			[]string{"priority"},
		),

		HTTPRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "jarvisgate_http_request_duration_seconds",
				Help:    "Duration of REST API requests in seconds",
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
			},
			[]string{"method", "path", "status_code"},
		),

		HTTPRequestCounter: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "jarvisgate_http_requests_total",
				Help: "Total REST API requests",
			},
			[]string{"method", "path", "status_code"},
		),

		AnalyticsEventsDropped: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "jarvisgate_analytics_events_dropped_total",
				Help: "Total analytics events dropped because the sink buffer was full",
			},
		),
	}
}

// RecordClassification records one classify() call's outcome and latency.
func (m *Metrics) RecordClassification(category, confidenceLevel string, durationSeconds float64) {
	m.ClassificationCounter.WithLabelValues(category, confidenceLevel).Inc()
	m.ClassificationDuration.WithLabelValues(category).Observe(durationSeconds)
}

// RecordCacheLookup records a cache Get outcome for the given tier.
func (m *Metrics) RecordCacheLookup(tier string, hit bool) {
	outcome := "miss"
	if hit {
		outcome = "hit"
	}
	m.CacheLookups.WithLabelValues(tier, outcome).Inc()
}

// SetContextStoreSize sets the current context store gauge.
func (m *Metrics) SetContextStoreSize(n int) {
	m.ContextStoreSize.Set(float64(n))
}

// RecordWorkflowStep records a workflow step's outcome.
func (m *Metrics) RecordWorkflowStep(outcome string) {
	m.WorkflowStepCounter.WithLabelValues(outcome).Inc()
}

// WorkflowStarted increments the active-workflow gauge.
func (m *Metrics) WorkflowStarted() {
	m.WorkflowActive.Inc()
}

// WorkflowFinished decrements the active-workflow gauge.
func (m *Metrics) WorkflowFinished() {
	m.WorkflowActive.Dec()
}

// RecordToolDispatch records a broker.Dispatch call's outcome and latency.
func (m *Metrics) RecordToolDispatch(toolName, status string, durationSeconds float64) {
	m.ToolDispatchCounter.WithLabelValues(toolName, status).Inc()
	m.ToolDispatchDuration.WithLabelValues(toolName, status).Observe(durationSeconds)
}

// SetToolHealth records whether a tool currently reports healthy.
func (m *Metrics) SetToolHealth(toolName string, healthy bool) {
	value := 0.0
	if healthy {
		value = 1.0
	}
	m.ToolHealthGauge.WithLabelValues(toolName).Set(value)
}

// SetActiveSessions sets the connected-session gauge.
func (m *Metrics) SetActiveSessions(n int) {
	m.ActiveSessions.Set(float64(n))
}

// RecordSessionEviction increments the idle-eviction counter.
func (m *Metrics) RecordSessionEviction() {
	m.SessionEvictions.Inc()
}

// RecordRateLimitRejection increments the rejection counter for keyKind.
func (m *Metrics) RecordRateLimitRejection(keyKind string) {
	m.RateLimitRejections.WithLabelValues(keyKind).Inc()
}

// SetQueueDepth sets the priority queue depth gauge for a priority tier.
func (m *Metrics) SetQueueDepth(priority string, depth int) {
	m.QueueDepth.WithLabelValues(priority).Set(float64(depth))
}

// RecordHTTPRequest records a REST API request's latency and status.
func (m *Metrics) RecordHTTPRequest(method, path, statusCode string, durationSeconds float64) {
	m.HTTPRequestCounter.WithLabelValues(method, path, statusCode).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path, statusCode).Observe(durationSeconds)
}

// RecordAnalyticsEventDropped increments the dropped-event counter.
func (m *Metrics) RecordAnalyticsEventDropped() {
	m.AnalyticsEventsDropped.Inc()
}
