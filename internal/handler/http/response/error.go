package response

import (
	"errors"
	"net/http"

	"github.com/cmlabs-hris/hris-timeclock/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-timeclock/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-timeclock/internal/pkg/validator"
)

var (
	ErrInvalidToken          = errors.New("invalid or missing access token")
	ErrManagerAccessRequired = errors.New("manager or owner access required")
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Auth errors
	case errors.Is(err, ErrInvalidToken):
		Unauthorized(w, err.Error())
	case errors.Is(err, ErrManagerAccessRequired):
		Fail(w, http.StatusForbidden, CodeForbidden, err.Error(), nil)
	case errors.Is(err, jwt.ErrInvalidRole):
		BadRequest(w, err.Error(), nil)

	// Import preconditions carry a user-facing message
	case errors.Is(err, attendance.ErrEmptyFile),
		errors.Is(err, attendance.ErrRequiredHeadersMissing),
		errors.Is(err, attendance.ErrUnsupportedFile),
		errors.Is(err, attendance.ErrInvalidMode):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, attendance.ErrFileTooLarge):
		Fail(w, http.StatusRequestEntityTooLarge, CodePayloadTooLarge, err.Error(), nil)
	case errors.Is(err, attendance.ErrNothingToExport):
		Fail(w, http.StatusNotFound, CodeNotFound, err.Error(), nil)

	// Default
	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}
