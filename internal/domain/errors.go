package domain

import (
	"errors"
	"fmt"
)

// Error types for consistent error handling across the feed core.

// ErrNotFound indicates a resource was not found.
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ErrTransport indicates that the underlying fetch or mutation failed.
// It is surfaced verbatim to callers as a failed state transition.
type ErrTransport struct {
	Service string
	Err     error
}

func (e *ErrTransport) Error() string {
	return fmt.Sprintf("transport error [%s]: %v", e.Service, e.Err)
}

func (e *ErrTransport) Unwrap() error {
	return e.Err
}

// ErrCircuitOpen indicates the circuit breaker is open.
type ErrCircuitOpen struct {
	Service string
}

func (e *ErrCircuitOpen) Error() string {
	return fmt.Sprintf("circuit breaker open for service: %s", e.Service)
}

// ErrValidation indicates a validation error (bad input).
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error on '%s': %s", e.Field, e.Message)
}

var (
	// ErrSuperseded is returned to the caller of a load whose response
	// arrived after a newer reset had started. The response was discarded.
	ErrSuperseded = errors.New("load superseded by a newer reset")

	// ErrLoadInFlight is returned when LoadNext is called while another
	// load is still running. No fetch is issued.
	ErrLoadInFlight = errors.New("a load is already in flight")
)
