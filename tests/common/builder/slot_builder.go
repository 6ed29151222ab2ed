//go:build unit || e2e

package builder

import (
	"encoding/json"
	"time"

	domslot "parking-hold-engine/internal/domain/slot"
	reqdto "parking-hold-engine/internal/handler/dto/request"
	"parking-hold-engine/internal/usecase/commands"
)

type SlotBuilder struct {
	SlotID          string
	ZoneID          string
	Polygon         json.RawMessage
	VehicleTypeHint *string
	Now             time.Time
}

func NewSlotBuilder() *SlotBuilder {
	return &SlotBuilder{
		SlotID:  "slot_001",
		ZoneID:  "zone_a",
		Polygon: json.RawMessage(`[[0,0],[0,5],[2.5,5],[2.5,0]]`),
		Now:     time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC),
	}
}

func (b *SlotBuilder) With(mutate func(*SlotBuilder)) *SlotBuilder {
	mutate(b)
	return b
}

func (b *SlotBuilder) WithSlotID(id string) *SlotBuilder {
	b.SlotID = id
	return b
}

func (b *SlotBuilder) WithZoneID(id string) *SlotBuilder {
	b.ZoneID = id
	return b
}

func (b *SlotBuilder) BuildDomain() (*domslot.Slot, error) {
	return domslot.NewSlot(b.SlotID, b.ZoneID, b.Polygon, b.VehicleTypeHint, b.Now)
}

func (b *SlotBuilder) BuildCreateInput() commands.CreateSlotInput {
	return commands.CreateSlotInput{
		SlotID:          b.SlotID,
		ZoneID:          b.ZoneID,
		Polygon:         b.Polygon,
		VehicleTypeHint: b.VehicleTypeHint,
	}
}

func (b *SlotBuilder) BuildCreateRequestDTO() reqdto.CreateSlotRequest {
	return reqdto.CreateSlotRequest{
		SlotID:          b.SlotID,
		ZoneID:          b.ZoneID,
		Polygon:         b.Polygon,
		VehicleTypeHint: b.VehicleTypeHint,
	}
}
