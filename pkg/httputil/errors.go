package httputil

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/getmockd/apisim/pkg/mock"
	"github.com/getmockd/apisim/pkg/store"
	"github.com/getmockd/apisim/pkg/template"
)

// Generic messages returned in place of internal error details.
const (
	ErrMsgInternalError   = "An internal error occurred"
	ErrMsgOperationFailed = "Operation failed"
	ErrMsgNotFound        = "Resource not found"
	ErrMsgConflict        = "Resource already exists"
	ErrMsgInvalidJSON     = "Invalid JSON in request body"
)

// Error codes used in {error, message} bodies.
const (
	CodeValidation  = "validation_error"
	CodeTemplate    = "template_error"
	CodeNotFound    = "not_found"
	CodeConflict    = "conflict"
	CodeInternal    = "internal_error"
	CodeInvalidJSON = "invalid_json"
)

// StatusFor returns the status code err maps to.
func StatusFor(err error) int {
	switch {
	case mock.IsValidationError(err):
		return http.StatusBadRequest
	case template.IsError(err):
		return http.StatusUnprocessableEntity
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// WriteDomainError writes err as an {error, message} response. Validation
// and template errors carry their own message; anything that maps to 500 is
// logged with operation and replaced by a generic message.
func WriteDomainError(w http.ResponseWriter, log *slog.Logger, err error, operation string) {
	status := StatusFor(err)
	switch status {
	case http.StatusBadRequest:
		var ve *mock.ValidationError
		errors.As(err, &ve)
		WriteBadRequest(w, CodeValidation, ve.Message)
	case http.StatusUnprocessableEntity:
		WriteError(w, status, CodeTemplate, err.Error())
	case http.StatusNotFound:
		WriteNotFound(w, CodeNotFound, ErrMsgNotFound)
	case http.StatusConflict:
		WriteConflict(w, CodeConflict, ErrMsgConflict)
	default:
		if log != nil {
			log.Error("operation failed", "operation", operation, "error", err)
		}
		WriteInternalError(w, CodeInternal, ErrMsgOperationFailed)
	}
}
