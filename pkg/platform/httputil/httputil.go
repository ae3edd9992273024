// Package httputil holds the JSON envelope helpers shared by every handler.
package httputil

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation"

	dErrors "bistro/pkg/domain-errors"
)

// maxBodyBytes bounds request bodies; the largest payload is a payment with its cart ids.
const maxBodyBytes = 1 << 20

// ErrorResponse is the error envelope returned to clients.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// Validatable is implemented by request DTOs.
type Validatable interface {
	Validate() error
}

// WriteJSON writes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError translates err into a status and error envelope. Errors without a
// code, and internal errors, never leak their message.
func WriteError(w http.ResponseWriter, err error) {
	de, ok := dErrors.As(err)
	if !ok {
		WriteJSON(w, http.StatusInternalServerError, ErrorResponse{Error: string(dErrors.CodeInternal)})
		return
	}
	status := dErrors.ToHTTPStatus(de.Code)
	resp := ErrorResponse{Error: string(de.Code)}
	if status != http.StatusInternalServerError {
		resp.Message = de.Message
	}
	WriteJSON(w, status, resp)
}

// DecodeJSON decodes the request body into T and runs its validation rules.
// On failure it writes a 400 and returns false.
func DecodeJSON[T Validatable](w http.ResponseWriter, r *http.Request, logger *slog.Logger, ctx context.Context, requestID string) (*T, bool) {
	var req T
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		logger.WarnContext(ctx, "failed to decode request body",
			"request_id", requestID,
			"error", err,
		)
		WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return nil, false
	}
	if err := req.Validate(); err != nil {
		logger.WarnContext(ctx, "request validation failed",
			"request_id", requestID,
			"error", err,
		)
		WriteError(w, ValidationError(err))
		return nil, false
	}
	return &req, true
}

// ValidationError converts ozzo-validation output into a coded error. Internal
// rule failures are not client errors.
func ValidationError(err error) error {
	var internal validation.InternalError
	if errors.As(err, &internal) {
		return dErrors.Wrap(err, dErrors.CodeInternal, "validation failed")
	}
	return dErrors.Wrap(err, dErrors.CodeValidation, err.Error())
}
