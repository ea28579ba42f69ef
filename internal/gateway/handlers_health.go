package gateway

import "net/http"

// handleHealth is the unauthenticated liveness endpoint: service name,
// version, subsystem statuses, and current open-session count. Modeled
// on the teacher's handleHealthz JSON shape.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	subsystems := map[string]string{}
	for _, d := range s.broker.StatusAll() {
		subsystems[d.Name] = string(d.Status)
	}
	status := "ok"
	httpStatus := http.StatusOK
	for _, st := range subsystems {
		if st == "error" {
			status = "degraded"
			httpStatus = http.StatusServiceUnavailable
			break
		}
	}
	writeJSON(w, httpStatus, map[string]any{
		"status":        status,
		"version":       Version,
		"subsystems":    subsystems,
		"open_sessions": s.sessions.Count(),
		"timestamp":     s.now(),
	})
}

// handleServiceHealth pings every registered tool and reports the
// resulting descriptor set, satisfying §4.H's "service health pings"
// unauthenticated operation.
func (s *Server) handleServiceHealth(w http.ResponseWriter, r *http.Request) {
	for _, d := range s.broker.StatusAll() {
		_ = s.broker.Ping(d.Name)
	}
	writeJSON(w, http.StatusOK, s.broker.StatusAll())
}
