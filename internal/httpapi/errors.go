package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/shivam222343/verbafest-backend/internal/service"
	"github.com/shivam222343/verbafest-backend/internal/store"
)

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// kindOf maps the service error taxonomy to stable machine kinds and HTTP
// statuses. Unknown errors are opaque 500s.
func kindOf(err error) (string, int) {
	switch {
	case errors.Is(err, service.ErrValidation):
		return "validation_error", http.StatusBadRequest
	case errors.Is(err, service.ErrInvalidEligibility):
		return "invalid_eligibility", http.StatusUnprocessableEntity
	case errors.Is(err, service.ErrEmptyShortlist):
		return "empty_shortlist", http.StatusBadRequest
	case errors.Is(err, service.ErrConflict):
		return "conflict", http.StatusConflict
	case errors.Is(err, service.ErrNotAssigned):
		return "not_assigned", http.StatusForbidden
	case errors.Is(err, service.ErrNoTopicsAvailable):
		return "no_topics_available", http.StatusConflict
	case errors.Is(err, service.ErrInvalidState):
		return "invalid_state", http.StatusConflict
	case errors.Is(err, store.ErrNotFound):
		return "not_found", http.StatusNotFound
	default:
		return "internal", http.StatusInternalServerError
	}
}

func (a *API) writeError(w http.ResponseWriter, err error) {
	kind, status := kindOf(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		a.log.Error("request failed", zap.Error(err))
		msg = "internal error"
	}
	writeJSON(w, status, errorBody{Error: errorDetail{Kind: kind, Message: msg}})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: malformed json body", service.ErrValidation)
	}
	return nil
}
