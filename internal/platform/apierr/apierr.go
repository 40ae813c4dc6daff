package apierr

import (
	"fmt"
	"net/http"

	apperrors "github.com/lawcomply/lawcomply-backend/internal/pkg/errors"
)

type Error struct {
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

// FromError maps domain errors onto an HTTP status and a stable code.
// Unrecognized errors become 500 with fallbackCode.
func FromError(err error, fallbackCode string) *Error {
	if err == nil {
		return nil
	}
	var ae *Error
	if apperrors.As(err, &ae) {
		return ae
	}
	switch {
	case apperrors.Is(err, apperrors.ErrValidation):
		return New(http.StatusBadRequest, "invalid_request", err)
	case apperrors.Is(err, apperrors.ErrRegulationNotFound):
		return New(http.StatusNotFound, "regulation_not_found", err)
	case apperrors.Is(err, apperrors.ErrNotFound):
		return New(http.StatusNotFound, "not_found", err)
	case apperrors.Is(err, apperrors.ErrUnauthorized):
		return New(http.StatusUnauthorized, "unauthorized", err)
	case apperrors.Is(err, apperrors.ErrForbidden):
		return New(http.StatusForbidden, "forbidden", err)
	case apperrors.Is(err, apperrors.ErrConflict):
		return New(http.StatusConflict, "conflict", err)
	case apperrors.Is(err, apperrors.ErrSchema):
		return New(http.StatusInternalServerError, "schema_mismatch", err)
	case apperrors.Is(err, apperrors.ErrPersistence):
		return New(http.StatusInternalServerError, "persistence_failed", err)
	}
	return New(http.StatusInternalServerError, fallbackCode, err)
}
