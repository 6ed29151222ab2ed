package response

import (
	"time"

	"parking-hold-engine/internal/domain/hold"
	"parking-hold-engine/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
)

type HoldResponse struct {
	ID          uuid.UUID  `json:"hold_id"`
	SlotID      string     `json:"slot_id"`
	UserID      *uuid.UUID `json:"user_id,omitempty"`
	Status      string     `json:"status"`
	HoldUntil   time.Time  `json:"hold_until"`
	ConfirmedAt *time.Time `json:"confirmed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// FromHold renders a hold returned by a ledger write, which is always in its persisted state.
func FromHold(h *hold.Hold) *HoldResponse {
	return &HoldResponse{
		ID:          h.ID(),
		SlotID:      h.SlotID(),
		UserID:      h.UserID(),
		Status:      h.Status().String(),
		HoldUntil:   h.HoldUntil(),
		ConfirmedAt: h.ConfirmedAt(),
		CreatedAt:   h.CreatedAt(),
		UpdatedAt:   h.UpdatedAt(),
	}
}

func FromHoldView(v *queries.HoldView) (*HoldResponse, error) {
	var resp HoldResponse
	if err := copier.Copy(&resp, v); err != nil {
		return nil, err
	}
	return &resp, nil
}
