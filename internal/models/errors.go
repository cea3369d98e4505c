package models

import "fmt"

// BackendError is the single error kind surfaced by the persistence backend.
// Callers treat the message as opaque; the coordinator propagates it
// unchanged and never retries.
type BackendError struct {
	Message string
}

func (e *BackendError) Error() string { return e.Message }

// Error constructors.
var (
	ErrSlotNotFound = func(id string) *BackendError {
		return &BackendError{Message: fmt.Sprintf("save slot with id '%s' does not exist", id)}
	}
	ErrNoActiveSlot = &BackendError{Message: "no save slot is currently loaded"}
	ErrBackend      = func(op string, err error) *BackendError {
		return &BackendError{Message: fmt.Sprintf("%s: %v", op, err)}
	}
)
