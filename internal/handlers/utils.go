package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/carbnb/apiserver/internal/services"
	"github.com/carbnb/apiserver/internal/store"
	"github.com/carbnb/apiserver/types"
)

type contextKey string

const contextPrincipalKey contextKey = "principal"

// ErrorResponse is a simple error payload.
type ErrorResponse struct {
	Error string `json:"error"`
}

func principalFromContext(ctx context.Context) (types.Principal, error) {
	principal, ok := ctx.Value(contextPrincipalKey).(types.Principal)
	if !ok || principal.UserID < 1 {
		return types.Principal{}, errors.New("missing principal")
	}
	return principal, nil
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}

// writeServiceError maps domain errors to HTTP statuses. Anything
// outside the taxonomy becomes a generic server fault so internals do
// not leak.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrForbidden):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, services.ErrConflict):
		writeError(w, http.StatusConflict, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "server error")
	}
}
