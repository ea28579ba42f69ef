package gateway

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/haasonsaas/jarvisgate/internal/auth"
	"github.com/haasonsaas/jarvisgate/internal/model"
)

type tokenRequest struct {
	APIKey string `json:"api_key"`
}

// handleIssueToken issues a bearer token for a recognized api_key. The
// client hint header lets mobile clients request the longer lifetime
// auth.Service.Issue grants them.
func (s *Server) handleIssueToken(w http.ResponseWriter, r *http.Request) {
	var req tokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDomainError(w, decodeError(err))
		return
	}
	clientHint := r.Header.Get("X-Client-Type")
	token, lifetime, err := s.auth.Issue(req.APIKey, clientHint)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"access_token": token,
		"token_type":   "bearer",
		"expires_in":   int(lifetime.Seconds()),
	})
}

func extractBearerToken(header string) string {
	const prefix = "bearer "
	if len(header) < len(prefix) {
		return ""
	}
	if !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}

// handleVerifyToken checks a bearer token's signature and expiry and
// reports its claims plus expiry-proximity flags.
func (s *Server) handleVerifyToken(w http.ResponseWriter, r *http.Request) {
	token := extractBearerToken(r.Header.Get("Authorization"))
	if token == "" {
		writeDomainError(w, model.NewError(model.KindInvalidCredentials, "gateway", "missing bearer token", nil))
		return
	}
	claims, err := s.auth.Verify(token)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	now := s.now()
	writeJSON(w, http.StatusOK, map[string]any{
		"subject":                claims.Subject,
		"issued_at":              claims.IssuedAt,
		"expires_at":             claims.ExpiresAt,
		"time_remaining_seconds": int(auth.TimeRemaining(claims, now).Seconds()),
		"is_expiring_soon":       auth.IsExpiringSoon(claims, now),
	})
}
