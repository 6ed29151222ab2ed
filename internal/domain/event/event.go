package event

import "time"

type Type string

const (
	TypeSlotCreated      Type = "slot_created"
	TypeSlotUpdated      Type = "slot_updated"
	TypeHoldCreated      Type = "hold_created"
	TypeHoldConfirmed    Type = "hold_confirmed"
	TypeHoldExpired      Type = "hold_expired"
	TypeHoldCancelled    Type = "hold_cancelled"
	TypeHoldReleased     Type = "hold_released"
	TypeOccupancyChanged Type = "occupancy_changed"
)

func (t Type) String() string {
	return string(t)
}

type Source string

const (
	SourceLedger     Source = "ledger"
	SourceSweeper    Source = "sweeper"
	SourceEdge       Source = "edge"
	SourceAdmin      Source = "admin"
	SourcePrediction Source = "prediction"
)

// Event is append-only. Seq is assigned by the log on commit.
type Event struct {
	Seq       int64
	SlotID    string
	Type      Type
	Meta      map[string]any
	Source    Source
	CreatedAt time.Time
}

func New(slotID string, typ Type, source Source, meta map[string]any, now time.Time) *Event {
	if meta == nil {
		meta = map[string]any{}
	}
	return &Event{
		SlotID:    slotID,
		Type:      typ,
		Meta:      meta,
		Source:    source,
		CreatedAt: now,
	}
}
