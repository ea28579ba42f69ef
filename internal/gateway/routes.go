package gateway

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// registerRoutes builds the REST surface plus the duplex endpoint on
// mux. Route matching uses Go's method+pattern ServeMux syntax, the
// same router choice the teacher makes (plain net/http, no third-party
// router).
func (s *Server) registerRoutes(mux *http.ServeMux) {
	mux.Handle("GET /health", s.unprotected("/health", s.handleHealth))
	mux.Handle("GET /health/services", s.unprotected("/health/services", s.handleServiceHealth))
	mux.Handle("POST /auth/token", s.unprotected("/auth/token", s.handleIssueToken))
	mux.Handle("GET /auth/verify", s.unprotected("/auth/verify", s.handleVerifyToken))
	mux.Handle("/metrics", promhttp.Handler())

	mux.Handle("POST /voice/classify", s.protected("/voice/classify", s.handleClassify))
	mux.Handle("GET /voice/categories", s.protected("/voice/categories", s.handleCategories))
	mux.Handle("GET /voice/patterns/{category}", s.protected("/voice/patterns/{category}", s.handlePatterns))
	mux.Handle("GET /voice/metrics", s.protected("/voice/metrics", s.handleClassifierMetrics))
	mux.Handle("POST /voice/process", s.protected("/voice/process", s.handleVoiceProcess))

	mux.Handle("GET /context/{user}/{session}/summary", s.protected("/context/{user}/{session}/summary", s.handleContextSummary))
	mux.Handle("GET /context/{user}/{session}/suggestions", s.protected("/context/{user}/{session}/suggestions", s.handleContextSuggestions))
	mux.Handle("POST /context/{user}/{session}/interaction", s.protected("/context/{user}/{session}/interaction", s.handleAppendInteraction))
	mux.Handle("DELETE /context/{user}/{session}", s.protected("/context/{user}/{session}", s.handleClearContext))
	mux.Handle("DELETE /context/{user}", s.protected("/context/{user}", s.handleClearUserContext))

	mux.Handle("POST /workflows", s.protected("/workflows", s.handleWorkflowStart))
	mux.Handle("GET /workflows/{id}", s.protected("/workflows/{id}", s.handleWorkflowGet))
	mux.Handle("POST /workflows/{id}/continue", s.protected("/workflows/{id}/continue", s.handleWorkflowContinue))

	mux.Handle("GET /tools/status", s.protected("/tools/status", s.handleToolStatus))
	mux.Handle("POST /tools/{name}/ping", s.protected("/tools/{name}/ping", s.handleToolPing))

	mux.Handle("POST /document/generate", s.protected("/document/generate", s.toolDispatchHandler("document_generation", "generate")))
	mux.Handle("POST /document/fetch", s.protected("/document/fetch", s.toolDispatchHandler("document_generation", "fetch")))
	mux.Handle("POST /email/send", s.protected("/email/send", s.toolDispatchHandler("email", "send")))
	mux.Handle("POST /calendar/schedule", s.protected("/calendar/schedule", s.toolDispatchHandler("calendar", "schedule")))
	mux.Handle("GET /calendar/events", s.protected("/calendar/events", s.toolDispatchHandler("calendar", "list")))
	mux.Handle("POST /calendar/cancel", s.protected("/calendar/cancel", s.toolDispatchHandler("calendar", "cancel")))
	mux.Handle("POST /search/web", s.protected("/search/web", s.toolDispatchHandler("web_search", "search")))
	mux.Handle("POST /ai/process", s.protected("/ai/process", s.toolDispatchHandler("ai", "complete")))
	mux.Handle("POST /ai/route", s.protected("/ai/route", s.toolDispatchHandler("ai", "route_ai")))

	mux.HandleFunc("GET /duplex/{client_id}", s.serveDuplex)
}
