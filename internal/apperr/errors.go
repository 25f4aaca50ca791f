package apperr

import "errors"

// ErrInvalid is returned when the input fails domain validation (HTTP 400).
var ErrInvalid = errors.New("invalid input")

// ErrConflict indicates a uniqueness conflict, e.g. a taken email or category id (HTTP 409).
var ErrConflict = errors.New("conflict")

// ErrNotFound indicates that the requested resource does not exist.
var ErrNotFound = errors.New("not found")

// ErrUnauthorized means the caller is not authenticated or the credentials are wrong.
var ErrUnauthorized = errors.New("unauthorized")

// ErrForbidden means the caller is authenticated but lacks the required role.
var ErrForbidden = errors.New("forbidden")
