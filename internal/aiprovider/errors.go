package aiprovider

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// FailoverReason categorizes why a provider call failed, adapted from the
// teacher's internal/agent/providers error classification.
type FailoverReason string

const (
	FailoverBilling          FailoverReason = "billing"
	FailoverRateLimit        FailoverReason = "rate_limit"
	FailoverAuth             FailoverReason = "auth"
	FailoverTimeout          FailoverReason = "timeout"
	FailoverServerError      FailoverReason = "server_error"
	FailoverInvalidRequest   FailoverReason = "invalid_request"
	FailoverModelUnavailable FailoverReason = "model_unavailable"
	FailoverUnknown          FailoverReason = "unknown"
)

// IsRetryable reports whether retrying the same provider/model may succeed.
func (r FailoverReason) IsRetryable() bool {
	switch r {
	case FailoverRateLimit, FailoverTimeout, FailoverServerError:
		return true
	default:
		return false
	}
}

// ShouldFailover reports whether the caller should try a different model.
func (r FailoverReason) ShouldFailover() bool {
	switch r {
	case FailoverBilling, FailoverAuth, FailoverModelUnavailable:
		return true
	default:
		return false
	}
}

// ProviderError is a structured error from select_optimal or a dispatch
// call, carrying enough context for the broker's retry/failover logic.
type ProviderError struct {
	Reason FailoverReason
	Vendor Vendor
	Model  string
	Status int
	Cause  error
}

func (e *ProviderError) Error() string {
	parts := []string{fmt.Sprintf("[%s]", e.Reason)}
	if e.Vendor != "" {
		parts = append(parts, string(e.Vendor))
	}
	if e.Model != "" {
		parts = append(parts, "model="+e.Model)
	}
	if e.Cause != nil {
		parts = append(parts, e.Cause.Error())
	}
	return strings.Join(parts, " ")
}

func (e *ProviderError) Unwrap() error { return e.Cause }

// NewProviderError wraps cause, classifying it by message content.
func NewProviderError(vendor Vendor, model string, cause error) *ProviderError {
	return &ProviderError{Vendor: vendor, Model: model, Cause: cause, Reason: ClassifyError(cause)}
}

// WithStatus reclassifies by HTTP status.
func (e *ProviderError) WithStatus(status int) *ProviderError {
	e.Status = status
	e.Reason = classifyStatusCode(status)
	return e
}

// ClassifyError inspects an error's message for known failure signatures.
func ClassifyError(err error) FailoverReason {
	if err == nil {
		return FailoverUnknown
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "timeout"), strings.Contains(msg, "deadline exceeded"):
		return FailoverTimeout
	case strings.Contains(msg, "rate limit"), strings.Contains(msg, "429"):
		return FailoverRateLimit
	case strings.Contains(msg, "unauthorized"), strings.Contains(msg, "invalid api key"), strings.Contains(msg, "401"), strings.Contains(msg, "403"):
		return FailoverAuth
	case strings.Contains(msg, "billing"), strings.Contains(msg, "quota"), strings.Contains(msg, "402"):
		return FailoverBilling
	case strings.Contains(msg, "model not found"), strings.Contains(msg, "does not exist"):
		return FailoverModelUnavailable
	case strings.Contains(msg, "server error"), strings.Contains(msg, "500"), strings.Contains(msg, "503"):
		return FailoverServerError
	default:
		return FailoverUnknown
	}
}

func classifyStatusCode(status int) FailoverReason {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return FailoverAuth
	case status == http.StatusPaymentRequired:
		return FailoverBilling
	case status == http.StatusTooManyRequests:
		return FailoverRateLimit
	case status == http.StatusBadRequest:
		return FailoverInvalidRequest
	case status == http.StatusNotFound:
		return FailoverModelUnavailable
	case status >= 500:
		return FailoverServerError
	default:
		return FailoverUnknown
	}
}

// IsProviderError reports whether err carries a *ProviderError.
func IsProviderError(err error) bool {
	var pe *ProviderError
	return errors.As(err, &pe)
}

// ShouldFailover reports whether err warrants trying a different model.
func ShouldFailover(err error) bool {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Reason.ShouldFailover()
	}
	return ClassifyError(err).ShouldFailover()
}
