package gateway

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/haasonsaas/jarvisgate/internal/auth"
	"github.com/haasonsaas/jarvisgate/internal/model"
	"github.com/haasonsaas/jarvisgate/internal/observability"
	"github.com/haasonsaas/jarvisgate/internal/ratelimit"
)

// corsMiddleware makes the gateway's REST surface permissive by
// default, per the CORS requirement in §4.H.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type, X-Client-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// observeMiddleware stamps the request context with correlation fields
// (request id, channel, and the verified subject when present), opens a
// root span for the route, and records HTTP request duration/outcome
// metrics and a structured access log line, keyed by the route pattern
// rather than the raw path so cardinality stays bounded.
func (s *Server) observeMiddleware(pattern string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" && s.newID != nil {
			requestID = s.newID()
		}
		ctx := observability.AddRequestID(r.Context(), requestID)
		ctx = observability.AddChannel(ctx, "rest")
		if subject, ok := auth.SubjectFromContext(ctx); ok {
			ctx = observability.AddUserID(ctx, subject)
		}

		var span trace.Span
		if s.tracer != nil {
			ctx, span = s.tracer.TraceHTTPRequest(ctx, r.Method, pattern)
		}
		r = r.WithContext(ctx)

		start := s.now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		duration := s.now().Sub(start).Seconds()

		if span != nil {
			s.tracer.SetAttributes(span, "http.status_code", rec.status)
			if rec.status >= http.StatusInternalServerError {
				s.tracer.RecordError(span, fmt.Errorf("http %d", rec.status))
			}
			span.End()
		}
		if s.metrics != nil {
			s.metrics.RecordHTTPRequest(r.Method, pattern, strconv.Itoa(rec.status), duration)
		}
		s.logInfo(ctx, "http request",
			"method", r.Method, "pattern", pattern, "status", rec.status,
			"duration_ms", float64(time.Duration(duration*float64(time.Second)).Milliseconds()))
	})
}

// rateLimitMiddleware enforces the per-key token bucket ahead of
// protected handlers, keyed by the verified subject when present and
// falling back to the remote address otherwise.
func (s *Server) rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.limiter == nil {
			next.ServeHTTP(w, r)
			return
		}
		key := rateLimitKey(r)
		if !s.limiter.Allow(key) {
			if s.metrics != nil {
				s.metrics.RecordRateLimitRejection(rateLimitKeyKind(r))
			}
			writeDomainError(w, model.NewError(model.KindRateLimited, "gateway", "rate limit exceeded", nil))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func rateLimitKey(r *http.Request) string {
	if subject, ok := auth.SubjectFromContext(r.Context()); ok {
		return ratelimit.CompositeKey("user", subject)
	}
	return ratelimit.CompositeKey("ip", r.RemoteAddr)
}

func rateLimitKeyKind(r *http.Request) string {
	if _, ok := auth.SubjectFromContext(r.Context()); ok {
		return "user"
	}
	return "ip"
}

// unprotected wraps handler with CORS and observability only.
func (s *Server) unprotected(pattern string, handler http.HandlerFunc) http.Handler {
	return corsMiddleware(s.observeMiddleware(pattern, handler))
}

// protected wraps handler with CORS, observability, rate limiting, and
// bearer authentication, in that execution order.
func (s *Server) protected(pattern string, handler http.HandlerFunc) http.Handler {
	wrapped := auth.Middleware(s.auth, nil)(handler)
	wrapped = s.rateLimitMiddleware(wrapped)
	return corsMiddleware(s.observeMiddleware(pattern, wrapped))
}
