package utils

import "errors"

// Domain errors. Handlers wrap them with detail and Error maps them to a status.
var (
	ErrValidation   = errors.New("validation error")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
)

// detailedError keeps the sentinel for errors.Is while showing only the detail to clients.
type detailedError struct {
	kind   error
	detail string
}

func (e *detailedError) Error() string { return e.detail }
func (e *detailedError) Unwrap() error { return e.kind }

func wrap(kind error, detail string) error {
	return &detailedError{kind: kind, detail: detail}
}

func Invalid(detail string) error      { return wrap(ErrValidation, detail) }
func Unauthorized(detail string) error { return wrap(ErrUnauthorized, detail) }
func Forbidden(detail string) error    { return wrap(ErrForbidden, detail) }
func NotFound(detail string) error     { return wrap(ErrNotFound, detail) }
func Conflict(detail string) error     { return wrap(ErrConflict, detail) }
