package auth

import (
	"crypto/subtle"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/haasonsaas/jarvisgate/internal/model"
)

var (
	ErrAuthDisabled = errors.New("auth disabled")
	ErrInvalidToken = errors.New("invalid token")
	ErrInvalidKey   = errors.New("invalid api key")
	ErrExpiredToken = errors.New("expired token")
)

// Config configures the Token Authenticator.
type Config struct {
	// JWTSecret signs issued tokens. Required for Enabled() to be true.
	JWTSecret string
	// APIKeys is the static catalog validated on issue().
	APIKeys []APIKeyConfig
	// Now is injectable for tests; defaults to time.Now.
	Now func() time.Time
}

// APIKeyConfig declares one recognized external service key.
type APIKeyConfig struct {
	Key    string
	UserID string
}

// TokenClaims is the caller-facing view of a verified token.
type TokenClaims struct {
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Service implements issue/verify/refresh.
type Service struct {
	mu      sync.RWMutex
	codec   *jwtCodec
	apiKeys map[string]string // key -> user id
	now     func() time.Time
}

// NewService constructs the authenticator from static configuration.
func NewService(cfg Config) *Service {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	s := &Service{apiKeys: map[string]string{}, now: now}
	if strings.TrimSpace(cfg.JWTSecret) != "" {
		s.codec = newJWTCodec(cfg.JWTSecret)
	}
	for _, entry := range cfg.APIKeys {
		key := strings.TrimSpace(entry.Key)
		if key == "" {
			continue
		}
		s.apiKeys[key] = entry.UserID
	}
	return s
}

// Enabled reports whether auth checks should run.
func (s *Service) Enabled() bool {
	if s == nil {
		return false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.codec != nil
}

// Issue validates api_key against the static catalog and, on success, mints
// a signed token for the matched subject. clientHint selects the mobile
// policy lifetime.
func (s *Service) Issue(apiKey, clientHint string) (token string, lifetime time.Duration, err error) {
	if s == nil || s.codec == nil {
		return "", 0, model.NewError(model.KindInternal, "auth", "authenticator not configured", ErrAuthDisabled)
	}
	subject, ok := s.lookupAPIKey(apiKey)
	if !ok {
		return "", 0, model.NewError(model.KindInvalidCredentials, "auth", "unknown api key", ErrInvalidKey)
	}
	lifetime = DefaultLifetime
	if isMobileHint(clientHint) {
		lifetime = MobileLifetime
	}
	token, err = s.codec.sign(subject, s.now(), lifetime)
	if err != nil {
		return "", 0, model.NewError(model.KindInternal, "auth", "failed to sign token", err)
	}
	return token, lifetime, nil
}

// lookupAPIKey uses constant-time comparison against every candidate to
// avoid leaking which prefix matched via timing (adapted from the teacher's
// ValidateAPIKey).
func (s *Service) lookupAPIKey(apiKey string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	input := strings.TrimSpace(apiKey)
	var subject string
	var matched bool
	for storedKey, userID := range s.apiKeys {
		if subtle.ConstantTimeCompare([]byte(input), []byte(storedKey)) == 1 {
			subject, matched = userID, true
		}
	}
	return subject, matched
}

func isMobileHint(hint string) bool {
	h := strings.ToLower(strings.TrimSpace(hint))
	return h == "ios" || h == "android" || h == "mobile"
}

// Verify checks signature and expiry, returning distinct errors for
// structurally-invalid vs expired tokens.
func (s *Service) Verify(token string) (TokenClaims, error) {
	if s == nil || s.codec == nil {
		return TokenClaims{}, model.NewError(model.KindInternal, "auth", "authenticator not configured", ErrAuthDisabled)
	}
	claims, err := s.codec.parse(token)
	if err != nil {
		return TokenClaims{}, model.NewError(model.KindInvalidCredentials, "auth", "invalid token", ErrInvalidToken)
	}
	exp := claims.ExpiresAt.Time
	if !exp.After(s.now()) {
		return TokenClaims{}, model.NewError(model.KindExpiredCredentials, "auth", "token expired", ErrExpiredToken)
	}
	return TokenClaims{
		Subject:   claims.Subject,
		IssuedAt:  claims.IssuedAt.Time,
		ExpiresAt: exp,
	}, nil
}

// Refresh reissues a token for the same subject with a fresh expiry.
func (s *Service) Refresh(claims TokenClaims, lifetime time.Duration) (string, error) {
	if s == nil || s.codec == nil {
		return "", model.NewError(model.KindInternal, "auth", "authenticator not configured", ErrAuthDisabled)
	}
	if lifetime <= 0 {
		lifetime = DefaultLifetime
	}
	token, err := s.codec.sign(claims.Subject, s.now(), lifetime)
	if err != nil {
		return "", model.NewError(model.KindInternal, "auth", "failed to sign token", err)
	}
	return token, nil
}

// TimeRemaining is used by GET /auth/verify's time_remaining_seconds field.
func TimeRemaining(claims TokenClaims, now time.Time) time.Duration {
	d := claims.ExpiresAt.Sub(now)
	if d < 0 {
		return 0
	}
	return d
}

// IsExpiringSoon reports whether claims expires within 300 seconds of now.
func IsExpiringSoon(claims TokenClaims, now time.Time) bool {
	return TimeRemaining(claims, now) < 300*time.Second
}
