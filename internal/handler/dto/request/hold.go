package request

import (
	"github.com/google/uuid"
)

type PlaceHoldRequest struct {
	SlotID string `json:"slot_id" binding:"required"`
	// Omitted means the configured default (2 minutes unless overridden)
	HoldMinutes *int       `json:"hold_minutes,omitempty"`
	UserID      *uuid.UUID `json:"user_id,omitempty"`
}
