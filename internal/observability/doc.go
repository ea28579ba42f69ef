// Package observability provides monitoring and debugging capabilities for
// the gateway through metrics, structured logging, and distributed tracing.
//
// # Overview
//
// The observability package implements the three pillars of observability:
//
//  1. Metrics - Quantitative measurements using Prometheus
//  2. Logging - Structured logs with sensitive data redaction
//  3. Tracing - Distributed request tracing with OpenTelemetry
//
// # Architecture
//
// The package is designed to be:
//   - Low-overhead: Minimal performance impact on production systems
//   - Type-safe: Strongly-typed APIs reduce configuration errors
//   - Production-ready: Built-in security (redaction) and reliability features
//   - Standards-based: Uses Prometheus, OpenTelemetry, and slog
//
// # Metrics
//
// Metrics are implemented using Prometheus client libraries and track:
//   - Classification throughput, latency, and confidence distribution
//   - Cache hit ratio across the local and shared tiers
//   - Workflow step outcomes and in-flight workflow count
//   - Tool broker dispatch latency and per-tool health
//   - Duplex session count and idle evictions
//   - Rate-limit rejections and priority queue depth
//   - REST request/response latency
//
// Example usage:
//
//	metrics := observability.NewMetrics()
//
//	// Track a classification
//	start := time.Now()
//	result := classifier.Classify(ctx, utterance)
//	metrics.RecordClassification(string(result.Category), string(result.ConfidenceLevel()), time.Since(start).Seconds())
//
//	// Track a tool dispatch
//	start = time.Now()
//	_, err := broker.Dispatch(ctx, "email", "send", params)
//	status := "success"
//	if err != nil {
//	    status = "error"
//	}
//	metrics.RecordToolDispatch("email", status, time.Since(start).Seconds())
//
// # Logging
//
// Logging is built on Go's slog package with enhancements for:
//   - Automatic request ID correlation from context
//   - Sensitive data redaction (API keys, passwords, tokens)
//   - JSON output for production, text for development
//   - Configurable log levels
//
// Example usage:
//
//	logger := observability.NewLogger(observability.LogConfig{
//	    Level:     "info",
//	    Format:    "json",
//	    AddSource: true,
//	})
//
//	// Add context IDs for correlation
//	ctx := observability.AddRequestID(ctx, requestID)
//	ctx = observability.AddSessionID(ctx, sessionID)
//
//	// Structured logging with automatic context correlation
//	logger.Info(ctx, "classified utterance",
//	    "category", result.Category,
//	    "user_id", userID,
//	    "confidence", result.Confidence,
//	)
//
//	// Error logging with automatic redaction
//	logger.Error(ctx, "tool dispatch failed",
//	    "tool", "email",
//	    "api_key", apiKey, // Automatically redacted
//	)
//
// # Tracing
//
// Distributed tracing uses OpenTelemetry to track a request across
// classify, context-store, workflow, and broker-dispatch boundaries:
//   - End-to-end request visualization
//   - Performance bottleneck identification
//   - Service dependency mapping
//   - Error correlation across components
//
// Example usage:
//
//	tracer, shutdown := observability.NewTracer(observability.TraceConfig{
//	    ServiceName:    "jarvisgate",
//	    ServiceVersion: "1.0.0",
//	    Environment:    "production",
//	    Endpoint:       "localhost:4317", // OTLP collector
//	    SamplingRate:   0.1,              // Sample 10% of traces
//	})
//	defer shutdown(context.Background())
//
//	ctx, span := tracer.Start(ctx, "classify_utterance")
//	defer span.End()
//
// # Context Propagation
//
// All three components integrate with Go's context for automatic correlation:
//
//	// Add IDs to context
//	ctx = observability.AddRequestID(ctx, "req-123")
//	ctx = observability.AddSessionID(ctx, "sess-456")
//	ctx = observability.AddUserID(ctx, "user-789")
//	ctx = observability.AddChannel(ctx, "duplex")
//
//	// IDs automatically appear in logs
//	logger.Info(ctx, "request received") // Includes request_id, session_id, etc.
//
//	// Spans inherit context
//	ctx, span := tracer.Start(ctx, "operation")
//	// Trace context propagates to child spans
//
// # Security Considerations
//
// The logging component automatically redacts:
//   - API keys (Anthropic, OpenAI, generic)
//   - Passwords and secrets
//   - JWT tokens
//   - Bearer tokens
//   - Custom patterns via configuration
//
// Sensitive fields in maps are also redacted:
//   - password, passwd, pwd
//   - secret, api_key, apikey
//   - token, auth, authorization
//   - private_key, privatekey
//
// # Performance
//
// The observability system is designed for minimal overhead:
//   - Metrics use lock-free counters where possible
//   - Logging with slog is highly efficient
//   - Tracing supports sampling to reduce overhead
//   - Context propagation is zero-allocation in most cases
//
// # Configuration
//
// All components support configuration via structs:
//
//	// Metrics - no configuration needed, auto-registered
//	metrics := observability.NewMetrics()
//
//	// Logging - configurable output, level, format
//	logger := observability.NewLogger(observability.LogConfig{
//	    Level:          os.Getenv("LOG_LEVEL"),
//	    Format:         "json",
//	    AddSource:      true,
//	    RedactPatterns: []string{`custom-secret-\d+`},
//	})
//
//	// Tracing - configurable sampling, endpoint, attributes
//	tracer, shutdown := observability.NewTracer(observability.TraceConfig{
//	    ServiceName:    "jarvisgate",
//	    ServiceVersion: version,
//	    Environment:    env,
//	    Endpoint:       os.Getenv("OTEL_ENDPOINT"),
//	    SamplingRate:   0.1,
//	})
//	defer shutdown(context.Background())
//
// # Testing
//
// All components provide testable interfaces:
//   - Metrics can be verified using prometheus/testutil
//   - Logging can write to bytes.Buffer for assertions
//   - Tracing works with no-op exporters in tests
//
// # Best Practices
//
//  1. Always propagate context to enable correlation
//  2. Use defer for span.End() to ensure spans are closed
//  3. Record errors on both metrics and traces
//  4. Use structured logging with key-value pairs
//  5. Set appropriate sampling rates for high-traffic systems
//  6. Use typed metric labels (avoid high-cardinality values)
//  7. Call shutdown() on tracer during graceful shutdown
//
// # Monitoring Dashboard
//
// The metrics exposed can be used to build dashboards:
//
//	# Classification throughput
//	rate(jarvisgate_classifications_total[5m])
//
//	# Classification latency (95th percentile)
//	histogram_quantile(0.95, rate(jarvisgate_classification_duration_seconds_bucket[5m]))
//
//	# Cache hit ratio
//	rate(jarvisgate_cache_lookups_total{outcome="hit"}[5m]) /
//	rate(jarvisgate_cache_lookups_total[5m])
//
//	# Active sessions
//	jarvisgate_active_sessions
//
//	# Tool dispatch latency
//	rate(jarvisgate_tool_dispatch_duration_seconds_sum[5m]) /
//	rate(jarvisgate_tool_dispatch_duration_seconds_count[5m])
//
// # Alerting
//
// Recommended alerts based on metrics:
//   - High rate-limit rejection rate: rate(jarvisgate_rate_limit_rejections_total[5m]) > threshold
//   - High classification latency: p95 latency > 1s
//   - Unhealthy tool: jarvisgate_tool_healthy == 0
//   - Session accumulation: jarvisgate_active_sessions growing unbounded
//
// # Further Reading
//
//   - Prometheus best practices: https://prometheus.io/docs/practices/naming/
//   - OpenTelemetry specification: https://opentelemetry.io/docs/specs/otel/
//   - slog documentation: https://pkg.go.dev/log/slog
package observability
