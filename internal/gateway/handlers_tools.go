package gateway

import (
	"encoding/json"
	"net/http"
)

func (s *Server) handleToolStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.broker.StatusAll())
}

func (s *Server) handleToolPing(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if err := s.broker.Ping(name); err != nil {
		writeDomainError(w, err)
		return
	}
	descriptor, _ := s.broker.Status(name)
	writeJSON(w, http.StatusOK, descriptor)
}

// toolDispatchHandler builds a handler that decodes an optional JSON
// params object and forwards it to the broker as a single command
// against a fixed tool, covering the document/email/calendar/search/ai
// convenience endpoints without one handwritten handler per route.
func (s *Server) toolDispatchHandler(toolName, command string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var params map[string]any
		if r.ContentLength != 0 {
			if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
				writeDomainError(w, decodeError(err))
				return
			}
		}
		result, err := s.broker.Dispatch(r.Context(), toolName, command, params)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"tool":    result.Tool,
			"command": result.Command,
			"output":  result.Output,
		})
	}
}
