package response

import (
	"time"

	"parking-hold-engine/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
)

type EventResponse struct {
	Seq       int64          `json:"seq"`
	SlotID    string         `json:"slot_id"`
	Type      string         `json:"event_type"`
	Meta      map[string]any `json:"meta"`
	Source    string         `json:"source"`
	CreatedAt time.Time      `json:"created_at"`
}

type EventPageResponse struct {
	Events    []*EventResponse `json:"events"`
	NextAfter int64            `json:"next_after"`
}

type OverstayResponse struct {
	HoldID          uuid.UUID  `json:"hold_id"`
	SlotID          string     `json:"slot_id"`
	UserID          *uuid.UUID `json:"user_id,omitempty"`
	ConfirmedAt     time.Time  `json:"confirmed_at"`
	ParkedMinutes   int        `json:"parked_minutes"`
	OverstayMinutes int        `json:"overstay_minutes"`
	Severity        string     `json:"severity"`
}

func FromEventPage(p *queries.EventPage) (*EventPageResponse, error) {
	resp := EventPageResponse{Events: make([]*EventResponse, 0, len(p.Events))}
	if err := copier.Copy(&resp, p); err != nil {
		return nil, err
	}
	return &resp, nil
}

func FromOverstayViews(vs []*queries.OverstayView) ([]*OverstayResponse, error) {
	resp := make([]*OverstayResponse, 0, len(vs))
	if err := copier.Copy(&resp, &vs); err != nil {
		return nil, err
	}
	return resp, nil
}
