package gateway

import (
	"encoding/json"
	"net/http"

	"github.com/haasonsaas/jarvisgate/internal/model"
)

// writeJSON writes body as a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeDomainError maps err onto the wire error envelope, following the
// same {"error": "<kind>"} shape and HTTPStatus() mapping internal/auth's
// bearer middleware already uses, so the gateway speaks one error
// vocabulary end to end instead of inventing a second translation layer.
func writeDomainError(w http.ResponseWriter, err error) {
	kind := model.KindInternal
	message := "internal error"
	if de, ok := model.AsError(err); ok {
		kind = de.Kind
		message = de.Message
	} else if err != nil {
		message = err.Error()
	}
	writeJSON(w, kind.HTTPStatus(), map[string]string{
		"error":   string(kind),
		"message": message,
	})
}

func decodeError(err error) error {
	return model.NewError(model.KindInvalidInput, "gateway", "invalid request body", err)
}
