package shared

import (
	"encoding/json"
	"errors"
	"net/http"
)

type errorBody struct {
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// RespondJSON writes v as a JSON response with the given status.
func RespondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// RespondError maps domain errors onto HTTP statuses and writes a JSON body.
func RespondError(w http.ResponseWriter, err error) {
	var ve *ValidationError
	switch {
	case errors.As(err, &ve):
		RespondJSON(w, http.StatusBadRequest, errorBody{Message: ve.Reason, Field: ve.Field})
	case errors.Is(err, ErrNotFound):
		RespondJSON(w, http.StatusNotFound, errorBody{Message: "content unavailable"})
	case errors.Is(err, ErrInvalidCredentials):
		RespondJSON(w, http.StatusBadRequest, errorBody{Message: "invalid credentials"})
	case errors.Is(err, ErrEmailTaken):
		RespondJSON(w, http.StatusBadRequest, errorBody{Message: "user exists"})
	case errors.Is(err, ErrUnauthenticated):
		RespondJSON(w, http.StatusUnauthorized, errorBody{Message: "unauthenticated"})
	case errors.Is(err, ErrForbidden):
		RespondJSON(w, http.StatusForbidden, errorBody{Message: "forbidden"})
	default:
		RespondJSON(w, http.StatusInternalServerError, errorBody{Message: http.StatusText(http.StatusInternalServerError)})
	}
}
