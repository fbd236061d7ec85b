package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/achowdhury/flashgen/internal/apperror"
	"github.com/achowdhury/flashgen/pkg/validator"
)

// ErrorResponse is the error format returned by every endpoint:
// a machine-readable type plus a human-readable message.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// Headers are already sent; logging is all that's left.
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// writeError maps a domain error to its HTTP status code. The service layer
// knows nothing about HTTP; this is the only place the translation happens.
func writeError(w http.ResponseWriter, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		status := http.StatusInternalServerError
		errorType := "internal_error"

		switch {
		case errors.Is(err, apperror.ErrValidation):
			status = http.StatusBadRequest
			errorType = "validation_error"
		case errors.Is(err, apperror.ErrNotFound):
			status = http.StatusNotFound
			errorType = "not_found"
		case errors.Is(err, apperror.ErrConflict):
			status = http.StatusConflict
			errorType = "conflict"
		case errors.Is(err, apperror.ErrGeneration):
			status = http.StatusInternalServerError
			errorType = "generation_failed"
		}

		writeJSON(w, status, ErrorResponse{
			Error:   errorType,
			Message: appErr.Message,
		})
		return
	}

	// Unknown error: never leak internals to the client.
	writeJSON(w, http.StatusInternalServerError, ErrorResponse{
		Error:   "internal_error",
		Message: "An internal error occurred",
	})
}

// decodeAndValidate decodes the request body into dst and checks its
// `validate` tags. Any failure comes back as a validation error, so nothing
// reaches the service until the schema holds.
func decodeAndValidate(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperror.ValidationFailed("body", "invalid JSON body")
	}

	if err := validator.ValidateStruct(dst); err != nil {
		var verr *validator.Error
		if errors.As(err, &verr) && len(verr.Fields) > 0 {
			first := verr.Fields[0]
			return apperror.ValidationFailed(first.Field, first.Message)
		}
		return apperror.ValidationFailed("", err.Error())
	}

	return nil
}
