package gateway

import (
	"encoding/json"
	"net/http"

	"github.com/haasonsaas/jarvisgate/internal/classifier"
	"github.com/haasonsaas/jarvisgate/internal/model"
)

type workflowStartRequest struct {
	Text       string `json:"text"`
	UserID     string `json:"user_id"`
	SessionID  string `json:"session_id"`
	UseContext bool   `json:"use_context"`
}

// handleWorkflowStart classifies the utterance and hands the result to
// the Workflow Engine, which decides whether it warrants a
// MultiStepWorkflow at all (a simple utterance bypasses creation).
func (s *Server) handleWorkflowStart(w http.ResponseWriter, r *http.Request) {
	var req workflowStartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDomainError(w, decodeError(err))
		return
	}
	utterance := model.Utterance{
		Text: req.Text, UserID: req.UserID, SessionID: req.SessionID,
		UseContext: req.UseContext, ReceivedAt: s.now(),
	}
	if err := utterance.Validate(); err != nil {
		writeDomainError(w, err)
		return
	}

	var snapshot *classifier.ContextSnapshot
	if req.UseContext {
		if ctxRecord, ok := s.contexts.Get(req.UserID, req.SessionID, false); ok {
			snapshot = &classifier.ContextSnapshot{LastCategory: ctxRecord.LastCategory}
		}
	}
	result := s.classifier.Classify(utterance, snapshot)

	wf := s.workflows.Process(req.UserID, req.SessionID, req.Text, result)
	if s.metrics != nil {
		s.metrics.WorkflowStarted()
	}
	s.analytics.Track(model.AnalyticsEvent{
		Type: model.EventWorkflowStart, UserID: req.UserID, SessionID: req.SessionID,
		Category: result.Category, Timestamp: s.now(),
		Payload: map[string]any{"workflow_id": wf.ID, "complexity": wf.Complexity},
	})
	writeJSON(w, http.StatusCreated, wf)
}

func (s *Server) handleWorkflowGet(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	wf, ok := s.workflows.Get(id)
	if !ok {
		writeDomainError(w, model.NewError(model.KindNotFound, "gateway", "workflow not found: "+id, nil))
		return
	}
	writeJSON(w, http.StatusOK, wf)
}

type workflowContinueRequest struct {
	UserInput string `json:"user_input"`
}

func (s *Server) handleWorkflowContinue(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	var req workflowContinueRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeDomainError(w, decodeError(err))
			return
		}
	}
	wf, err := s.workflows.Continue(r.Context(), id, req.UserInput, s.dispatcher)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if wf.Status == model.WorkflowCompleted || wf.Status == model.WorkflowFailed {
		if s.metrics != nil {
			s.metrics.WorkflowFinished()
		}
		s.analytics.Track(model.AnalyticsEvent{
			Type: model.EventWorkflowEnd, UserID: wf.UserID, SessionID: wf.SessionID,
			Timestamp: s.now(), Payload: map[string]any{"workflow_id": wf.ID, "status": wf.Status},
		})
	}
	writeJSON(w, http.StatusOK, wf)
}
