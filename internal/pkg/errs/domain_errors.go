package errs

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Error taxonomy shared by the use case and handler layers
var (
	// Unknown slot or hold id. Not retryable as-is.
	ErrNotFound = errors.New("not found")
	// Malformed input. Not retryable without correction.
	ErrInvalidArgument = errors.New("invalid argument")
	// Slot already held, occupied or reserved. Retryable after the returned expiry.
	ErrConflict = errors.New("conflict")
	// Illegal hold transition.
	ErrInvalidState = errors.New("invalid state")
	// Storage unreachable or failing. Retryable with backoff.
	ErrUnavailable = errors.New("unavailable")
)

type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Resource, e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

func NotFound(resource, id string) error {
	return &NotFoundError{Resource: resource, ID: id}
}

type InvalidArgumentError struct {
	Field  string
	Reason string
}

func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *InvalidArgumentError) Is(target error) bool {
	return target == ErrInvalidArgument
}

func InvalidArgument(field, reason string) error {
	return &InvalidArgumentError{Field: field, Reason: reason}
}

type ConflictReason string

const (
	ConflictHeld     ConflictReason = "held"
	ConflictOccupied ConflictReason = "occupied"
	ConflictReserved ConflictReason = "reserved"
	ConflictExists   ConflictReason = "exists"
)

// ConflictError names what blocks the slot so callers can retry after Until or pick another slot.
type ConflictError struct {
	SlotID         string
	Reason         ConflictReason
	BlockingHoldID *uuid.UUID
	BlockingStatus string
	Until          *time.Time
}

func (e *ConflictError) Error() string {
	msg := fmt.Sprintf("slot %q conflict: %s", e.SlotID, e.Reason)
	if e.BlockingHoldID != nil {
		msg += fmt.Sprintf(" by hold %s", e.BlockingHoldID)
	}
	if e.Until != nil {
		msg += " until " + e.Until.UTC().Format(time.RFC3339)
	}
	return msg
}

func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

type InvalidStateError struct {
	HoldID    uuid.UUID
	Status    string
	Operation string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("cannot %s hold %s in status %s", e.Operation, e.HoldID, e.Status)
}

func (e *InvalidStateError) Is(target error) bool {
	return target == ErrInvalidState
}
