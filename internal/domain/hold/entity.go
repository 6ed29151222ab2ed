package hold

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidDuration   = errors.New("hold duration out of bounds")
	ErrInvalidSlotID     = errors.New("slot id is required")
	ErrInvalidTransition = errors.New("invalid hold transition")
	ErrHoldExpired       = errors.New("hold has expired")
)

type Bounds struct {
	MinMinutes int
	MaxMinutes int
}

func (b Bounds) Validate(minutes int) error {
	if minutes < b.MinMinutes || minutes > b.MaxMinutes {
		return ErrInvalidDuration
	}
	return nil
}

type Hold struct {
	id          uuid.UUID
	userID      *uuid.UUID
	slotID      string
	status      Status
	holdUntil   time.Time
	confirmedAt *time.Time
	createdAt   time.Time
	updatedAt   time.Time
}

func NewHold(slotID string, minutes int, userID *uuid.UUID, bounds Bounds, now time.Time) (*Hold, error) {
	if slotID == "" {
		return nil, ErrInvalidSlotID
	}
	if err := bounds.Validate(minutes); err != nil {
		return nil, err
	}

	return &Hold{
		id:        uuid.New(),
		userID:    userID,
		slotID:    slotID,
		status:    StatusHolding,
		holdUntil: now.Add(time.Duration(minutes) * time.Minute),
		createdAt: now,
		updatedAt: now,
	}, nil
}

func ReconstructHold(
	id uuid.UUID,
	userID *uuid.UUID,
	slotID string,
	status Status,
	holdUntil time.Time,
	confirmedAt *time.Time,
	createdAt, updatedAt time.Time,
) *Hold {
	return &Hold{
		id:          id,
		userID:      userID,
		slotID:      slotID,
		status:      status,
		holdUntil:   holdUntil,
		confirmedAt: confirmedAt,
		createdAt:   createdAt,
		updatedAt:   updatedAt,
	}
}

// EffectiveStatus is the only expiry predicate: a holding hold past its deadline is expired
// whether or not that has been persisted yet.
func EffectiveStatus(h *Hold, now time.Time) Status {
	if h.status == StatusHolding && now.After(h.holdUntil) {
		return StatusExpired
	}
	return h.status
}

// IsStale reports a holding hold that must be persisted as expired.
func (h *Hold) IsStale(now time.Time) bool {
	return h.status == StatusHolding && EffectiveStatus(h, now) == StatusExpired
}

func (h *Hold) Confirm(now time.Time) error {
	if h.IsStale(now) {
		return ErrHoldExpired
	}
	if err := h.transition(OpConfirm, now); err != nil {
		return err
	}
	h.confirmedAt = &now
	return nil
}

func (h *Hold) Cancel(now time.Time) error {
	if h.IsStale(now) {
		return ErrHoldExpired
	}
	return h.transition(OpCancel, now)
}

func (h *Hold) Release(now time.Time) error {
	return h.transition(OpRelease, now)
}

func (h *Hold) Expire(now time.Time) error {
	if !h.IsStale(now) {
		return ErrInvalidTransition
	}
	return h.transition(OpExpire, now)
}

func (h *Hold) transition(op Operation, now time.Time) error {
	if !CanTransition(h.status, op.target()) {
		return ErrInvalidTransition
	}
	h.status = op.target()
	h.updatedAt = now
	return nil
}

func (h *Hold) ID() uuid.UUID           { return h.id }
func (h *Hold) UserID() *uuid.UUID      { return h.userID }
func (h *Hold) SlotID() string          { return h.slotID }
func (h *Hold) Status() Status          { return h.status }
func (h *Hold) HoldUntil() time.Time    { return h.holdUntil }
func (h *Hold) ConfirmedAt() *time.Time { return h.confirmedAt }
func (h *Hold) CreatedAt() time.Time    { return h.createdAt }
func (h *Hold) UpdatedAt() time.Time    { return h.updatedAt }

func (h *Hold) IsActive(now time.Time) bool {
	return EffectiveStatus(h, now).IsActive()
}

// Clone returns an independent copy for stores that hand out snapshots.
func (h *Hold) Clone() *Hold {
	c := *h
	if h.userID != nil {
		id := *h.userID
		c.userID = &id
	}
	if h.confirmedAt != nil {
		t := *h.confirmedAt
		c.confirmedAt = &t
	}
	return &c
}
