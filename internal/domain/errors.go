package domain

import (
	"errors"
	"net/http"
)

// Sentinel errors for recoverable conditions; match with errors.Is().
var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	// ErrUnavailable marks a transient downstream failure the client
	// can retry (order persistence, pipeline outage). Prior state is
	// always preserved when it is returned.
	ErrUnavailable = errors.New("temporarily unavailable")
)

// HTTPError lets domain error types carry their own status code, so the
// handler layer can map new error kinds without editing a switch.
type HTTPError interface {
	error
	StatusCode() int
}

type (
	// NotFoundError indicates a missing resource.
	NotFoundError struct {
		Message string
	}

	// ValidationError indicates invalid input.
	ValidationError struct {
		Message string
	}
)

func (e *NotFoundError) Error() string   { return e.Message }
func (e *ValidationError) Error() string { return e.Message }

func (e *NotFoundError) StatusCode() int   { return http.StatusNotFound }
func (e *ValidationError) StatusCode() int { return http.StatusBadRequest }

// Is lets errors.Is() match the typed errors against their sentinels.
func (e *NotFoundError) Is(target error) bool   { return target == ErrNotFound }
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }
