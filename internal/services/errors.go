package services

import (
	"errors"
	"net/http"

	"github.com/yungbote/checkia-backend/internal/platform/apierr"
)

var (
	ErrNotFound         = apierr.NotFound("not_found", errors.New("not found"))
	ErrForbidden        = apierr.New(http.StatusForbidden, "forbidden", errors.New("forbidden"))
	ErrNotAuthenticated = apierr.Unauthorized(errors.New("not authenticated"))

	ErrStorageUnavailable = apierr.New(http.StatusServiceUnavailable, "storage_unavailable", errors.New("object storage not configured"))
)

// ValidationError rejects a submission at intake. No job is created.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func newValidationError(field, msg string) error {
	return apierr.BadRequest("validation_error", &ValidationError{Field: field, Message: msg})
}

func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
