package queries

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Read models (DTO for read side)
type HoldView struct {
	ID          uuid.UUID  `json:"id"`
	SlotID      string     `json:"slot_id"`
	UserID      *uuid.UUID `json:"user_id,omitempty"`
	Status      string     `json:"status"`
	HoldUntil   time.Time  `json:"hold_until"`
	ConfirmedAt *time.Time `json:"confirmed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

type SlotView struct {
	ID              string          `json:"slot_id"`
	ZoneID          string          `json:"zone_id"`
	Polygon         json.RawMessage `json:"polygon,omitempty"`
	VehicleTypeHint *string         `json:"vehicle_type_hint,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

type OccupancyView struct {
	SlotID               string     `json:"slot_id"`
	Occupied             bool       `json:"occupied"`
	Confidence           float64    `json:"confidence"`
	VehicleType          *string    `json:"vehicle_type,omitempty"`
	LastSeen             *time.Time `json:"last_seen,omitempty"`
	ReservedUntil        *time.Time `json:"reserved_until,omitempty"`
	PredictedFreeMinutes *int       `json:"predicted_free_minutes,omitempty"`
	PredictionConfidence *float64   `json:"prediction_confidence,omitempty"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

// AvailabilityView is the single answer to "can this slot be held right now".
type AvailabilityView struct {
	SlotID               string     `json:"slot_id"`
	ZoneID               string     `json:"zone_id"`
	Occupied             bool       `json:"occupied"`
	Confidence           float64    `json:"confidence"`
	ReservedUntil        *time.Time `json:"reserved_until,omitempty"`
	ActiveHoldID         *uuid.UUID `json:"active_hold_id,omitempty"`
	ActiveHoldStatus     *string    `json:"active_hold_status,omitempty"`
	PredictedFreeMinutes *int       `json:"predicted_free_minutes,omitempty"`
	Available            bool       `json:"available"`
}

type EventView struct {
	Seq       int64          `json:"seq"`
	SlotID    string         `json:"slot_id"`
	Type      string         `json:"event_type"`
	Meta      map[string]any `json:"meta"`
	Source    string         `json:"source"`
	CreatedAt time.Time      `json:"created_at"`
}

type EventPage struct {
	Events []*EventView `json:"events"`
	// NextAfter is the seq to pass as after for the next page
	NextAfter int64 `json:"next_after"`
}

type OverstayView struct {
	HoldID          uuid.UUID  `json:"hold_id"`
	SlotID          string     `json:"slot_id"`
	UserID          *uuid.UUID `json:"user_id,omitempty"`
	ConfirmedAt     time.Time  `json:"confirmed_at"`
	ParkedMinutes   int        `json:"parked_minutes"`
	OverstayMinutes int        `json:"overstay_minutes"`
	Severity        string     `json:"severity"`
}
