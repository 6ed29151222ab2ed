package request

import (
	"encoding/json"
)

type CreateSlotRequest struct {
	SlotID          string          `json:"slot_id" binding:"required"`
	ZoneID          string          `json:"zone_id" binding:"required"`
	Polygon         json.RawMessage `json:"polygon,omitempty" swaggertype:"object"`
	VehicleTypeHint *string         `json:"vehicle_type_hint,omitempty"`
}

type UpdateSlotRequest struct {
	ZoneID          *string         `json:"zone_id,omitempty"`
	Polygon         json.RawMessage `json:"polygon,omitempty" swaggertype:"object"`
	VehicleTypeHint *string         `json:"vehicle_type_hint,omitempty"`
}

func (r UpdateSlotRequest) IsEmpty() bool {
	return r.ZoneID == nil && len(r.Polygon) == 0 && r.VehicleTypeHint == nil
}
