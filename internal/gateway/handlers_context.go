package gateway

import (
	"encoding/json"
	"net/http"

	"github.com/haasonsaas/jarvisgate/internal/model"
)

func (s *Server) handleContextSummary(w http.ResponseWriter, r *http.Request) {
	user, session := r.PathValue("user"), r.PathValue("session")
	summary, ok := s.contexts.Summary(user, session)
	if !ok {
		writeDomainError(w, model.NewError(model.KindNotFound, "gateway", "no context for "+user+"/"+session, nil))
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleContextSuggestions(w http.ResponseWriter, r *http.Request) {
	user, session := r.PathValue("user"), r.PathValue("session")
	writeJSON(w, http.StatusOK, map[string]any{"suggestions": s.contexts.Suggestions(user, session)})
}

type interactionRequest struct {
	UserInput   string         `json:"user_input"`
	BotResponse string         `json:"bot_response"`
	Category    string         `json:"category"`
	Parameters  map[string]any `json:"parameters"`
}

func (s *Server) handleAppendInteraction(w http.ResponseWriter, r *http.Request) {
	user, session := r.PathValue("user"), r.PathValue("session")
	var req interactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDomainError(w, decodeError(err))
		return
	}
	category := model.Category(req.Category)
	if !category.Valid() {
		writeDomainError(w, model.NewError(model.KindInvalidInput, "gateway", "unknown category: "+req.Category, nil))
		return
	}
	ctxRecord := s.contexts.AppendInteraction(user, session, req.UserInput, req.BotResponse, category, req.Parameters)
	writeJSON(w, http.StatusOK, ctxRecord)
}

func (s *Server) handleClearContext(w http.ResponseWriter, r *http.Request) {
	user, session := r.PathValue("user"), r.PathValue("session")
	s.contexts.Clear(user, session)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleClearUserContext(w http.ResponseWriter, r *http.Request) {
	user := r.PathValue("user")
	s.contexts.ClearUser(user)
	w.WriteHeader(http.StatusNoContent)
}
