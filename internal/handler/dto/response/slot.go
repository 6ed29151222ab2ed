package response

import (
	"encoding/json"
	"time"

	"parking-hold-engine/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
)

type SlotResponse struct {
	ID              string          `json:"slot_id"`
	ZoneID          string          `json:"zone_id"`
	Polygon         json.RawMessage `json:"polygon,omitempty" swaggertype:"object"`
	VehicleTypeHint *string         `json:"vehicle_type_hint,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

type OccupancyResponse struct {
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

type AvailabilityResponse struct {
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

func FromSlotView(v *queries.SlotView) (*SlotResponse, error) {
	var resp SlotResponse
	if err := copier.Copy(&resp, v); err != nil {
		return nil, err
	}
	return &resp, nil
}

func FromSlotViews(vs []*queries.SlotView) ([]*SlotResponse, error) {
	resp := make([]*SlotResponse, 0, len(vs))
	if err := copier.Copy(&resp, &vs); err != nil {
		return nil, err
	}
	return resp, nil
}

func FromOccupancyView(v *queries.OccupancyView) (*OccupancyResponse, error) {
	var resp OccupancyResponse
	if err := copier.Copy(&resp, v); err != nil {
		return nil, err
	}
	return &resp, nil
}

func FromAvailabilityView(v *queries.AvailabilityView) (*AvailabilityResponse, error) {
	var resp AvailabilityResponse
	if err := copier.Copy(&resp, v); err != nil {
		return nil, err
	}
	return &resp, nil
}

func FromAvailabilityViews(vs []*queries.AvailabilityView) ([]*AvailabilityResponse, error) {
	resp := make([]*AvailabilityResponse, 0, len(vs))
	if err := copier.Copy(&resp, &vs); err != nil {
		return nil, err
	}
	return resp, nil
}
