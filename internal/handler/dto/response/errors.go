package response

import (
	"time"

	"github.com/google/uuid"
)

// Error details attached to httperr.Response.Detail

type NotFoundDetail struct {
	Resource string `json:"resource"`
	ID       string `json:"id"`
}

type InvalidArgumentDetail struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

type ConflictDetail struct {
	SlotID         string     `json:"slot_id"`
	Reason         string     `json:"reason"`
	BlockingHoldID *uuid.UUID `json:"blocking_hold_id,omitempty"`
	BlockingStatus string     `json:"blocking_status,omitempty"`
	Until          *time.Time `json:"until,omitempty"`
}

type InvalidStateDetail struct {
	HoldID    uuid.UUID `json:"hold_id"`
	Status    string    `json:"status"`
	Operation string    `json:"operation"`
}
