package gateway

import (
	"encoding/base64"
	"encoding/json"
	"net/http"

	"github.com/haasonsaas/jarvisgate/internal/cache"
	"github.com/haasonsaas/jarvisgate/internal/classifier"
	"github.com/haasonsaas/jarvisgate/internal/model"
)

type classifyRequest struct {
	Text               string `json:"text"`
	UserID             string `json:"user_id"`
	SessionID          string `json:"session_id"`
	UseContext         bool   `json:"use_context"`
	IncludeSuggestions bool   `json:"include_suggestions"`
}

// handleClassify runs the classify path: two-tier cache lookup, then a
// fresh classification on miss, then cache population and a
// non-blocking analytics event.
func (s *Server) handleClassify(w http.ResponseWriter, r *http.Request) {
	var req classifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDomainError(w, decodeError(err))
		return
	}

	utterance := model.Utterance{
		Text:       req.Text,
		UserID:     req.UserID,
		SessionID:  req.SessionID,
		UseContext: req.UseContext,
		ReceivedAt: s.now(),
	}
	if err := utterance.Validate(); err != nil {
		writeDomainError(w, err)
		return
	}

	key := cache.Fingerprint(req.Text, req.UserID, req.SessionID, req.UseContext)
	if cached, ok := s.cache.Get(r.Context(), key); ok {
		if s.metrics != nil {
			s.metrics.RecordCacheLookup("local", true)
		}
		writeJSON(w, http.StatusOK, classificationResponse(cached, req.IncludeSuggestions))
		return
	}
	if s.metrics != nil {
		s.metrics.RecordCacheLookup("local", false)
	}

	var snapshot *classifier.ContextSnapshot
	if req.UseContext {
		if ctxRecord, ok := s.contexts.Get(req.UserID, req.SessionID, false); ok {
			snapshot = &classifier.ContextSnapshot{LastCategory: ctxRecord.LastCategory}
		}
	}

	start := s.now()
	result := s.classifier.Classify(utterance, snapshot)
	if s.metrics != nil {
		s.metrics.RecordClassification(string(result.Category), string(result.ConfidenceLevel()), s.now().Sub(start).Seconds())
	}
	s.cache.Put(r.Context(), key, result)

	s.analytics.Track(model.AnalyticsEvent{
		Type:      model.EventCommand,
		UserID:    req.UserID,
		SessionID: req.SessionID,
		Category:  result.Category,
		Timestamp: s.now(),
		Payload:   map[string]any{"confidence": result.Confidence},
	})

	writeJSON(w, http.StatusOK, classificationResponse(result, req.IncludeSuggestions))
}

func classificationResponse(result model.ClassificationResult, includeSuggestions bool) map[string]any {
	resp := map[string]any{
		"category":              result.Category,
		"intent":                result.Intent,
		"confidence":            result.Confidence,
		"confidence_level":      result.ConfidenceLevel(),
		"requires_confirmation": result.RequiresConfirmation(),
		"parameters":            result.Parameters,
		"normalized_text":       result.NormalizedText,
	}
	if includeSuggestions {
		resp["suggestions"] = result.Suggestions
	}
	return resp
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"categories": model.Categories})
}

func (s *Server) handlePatterns(w http.ResponseWriter, r *http.Request) {
	category := r.PathValue("category")
	writeJSON(w, http.StatusOK, map[string]any{
		"category": category,
		"patterns": classifier.PatternsFor(category),
	})
}

// handleClassifierMetrics exposes a small operational snapshot beyond
// the raw Prometheus series at /metrics, useful for quick inspection
// without a scrape.
func (s *Server) handleClassifierMetrics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"cache_size":        s.cache.Size(),
		"analytics_dropped": s.analytics.Dropped(),
		"active_workflows":  s.workflows.RunningCount(),
		"open_sessions":     s.sessions.Count(),
		"classifier_down":   s.classifier.Unavailable(),
	})
}

type voiceProcessRequest struct {
	Audio string `json:"audio"`
}

// handleVoiceProcess is the REST counterpart to the duplex "audio"
// message type. It runs the process_voice composition (speech-to-text
// -> ai -> text-to-speech) over the broker's registered voice and ai
// tools; a missing voice tool surfaces as tool_unknown rather than a
// hardcoded failure.
func (s *Server) handleVoiceProcess(w http.ResponseWriter, r *http.Request) {
	var req voiceProcessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDomainError(w, decodeError(err))
		return
	}
	raw, err := base64.StdEncoding.DecodeString(req.Audio)
	if err != nil {
		writeDomainError(w, model.NewError(model.KindInvalidInput, "gateway", "audio must be base64-encoded", err))
		return
	}
	result, err := s.broker.ProcessVoice(r.Context(), raw)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"transcript": result.Transcript,
		"reply":      result.Reply,
		"audio":      base64.StdEncoding.EncodeToString(result.Audio),
	})
}
