package auth

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/haasonsaas/jarvisgate/internal/model"
)

type contextKey string

const subjectContextKey contextKey = "auth_subject"

// WithSubject stores the authenticated subject on the context.
func WithSubject(ctx context.Context, subject string) context.Context {
	return context.WithValue(ctx, subjectContextKey, subject)
}

// SubjectFromContext retrieves the authenticated subject, if any.
func SubjectFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(subjectContextKey).(string)
	return v, ok
}

// Middleware enforces bearer auth on every tool-facing endpoint
//"). Unauthenticated
// endpoints must not be wrapped by this middleware.
func Middleware(service *Service, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if service == nil || !service.Enabled() {
				writeAuthError(w, model.NewError(model.KindInternal, "auth", "authenticator not configured", ErrAuthDisabled))
				return
			}
			token := extractBearer(r.Header.Get("Authorization"))
			if token == "" {
				writeAuthError(w, model.NewError(model.KindInvalidCredentials, "auth", "missing bearer token", nil))
				return
			}
			claims, err := service.Verify(token)
			if err != nil {
				if logger != nil {
					logger.Warn("bearer verification failed", "error", err)
				}
				writeAuthError(w, err)
				return
			}
			ctx := WithSubject(r.Context(), claims.Subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func extractBearer(header string) string {
	const prefix = "bearer "
	if len(header) < len(prefix) {
		return ""
	}
	if !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}

func writeAuthError(w http.ResponseWriter, err error) {
	kind := model.KindInvalidCredentials
	if de, ok := model.AsError(err); ok {
		kind = de.Kind
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(kind.HTTPStatus())
	_, _ = w.Write([]byte(`{"error":"` + string(kind) + `"}`))
}
