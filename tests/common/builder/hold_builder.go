//go:build unit || e2e

package builder

import (
	"time"

	domhold "parking-hold-engine/internal/domain/hold"
	reqdto "parking-hold-engine/internal/handler/dto/request"
	"parking-hold-engine/internal/usecase/commands"

	"github.com/google/uuid"
)

var DefaultBounds = domhold.Bounds{MinMinutes: 1, MaxMinutes: 60}

type HoldBuilder struct {
	SlotID  string
	Minutes int
	UserID  *uuid.UUID
	Now     time.Time
}

func NewHoldBuilder() *HoldBuilder {
	return &HoldBuilder{
		SlotID:  "slot_001",
		Minutes: 2,
		Now:     time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC),
	}
}

func (b *HoldBuilder) With(mutate func(*HoldBuilder)) *HoldBuilder {
	mutate(b)
	return b
}

func (b *HoldBuilder) WithSlotID(id string) *HoldBuilder {
	b.SlotID = id
	return b
}

func (b *HoldBuilder) WithMinutes(m int) *HoldBuilder {
	b.Minutes = m
	return b
}

func (b *HoldBuilder) WithUserID(id uuid.UUID) *HoldBuilder {
	b.UserID = &id
	return b
}

func (b *HoldBuilder) WithNow(t time.Time) *HoldBuilder {
	b.Now = t
	return b
}

// Build methods
func (b *HoldBuilder) BuildDomain() (*domhold.Hold, error) {
	return domhold.NewHold(b.SlotID, b.Minutes, b.UserID, DefaultBounds, b.Now)
}

// BuildPersisted reconstructs a hold as a repository would return it.
func (b *HoldBuilder) BuildPersisted(status domhold.Status) *domhold.Hold {
	var confirmedAt *time.Time
	if status == domhold.StatusConfirmed || status == domhold.StatusReleased {
		t := b.Now.Add(time.Minute)
		confirmedAt = &t
	}
	return domhold.ReconstructHold(
		uuid.New(),
		b.UserID,
		b.SlotID,
		status,
		b.Now.Add(time.Duration(b.Minutes)*time.Minute),
		confirmedAt,
		b.Now,
		b.Now,
	)
}

func (b *HoldBuilder) BuildPlaceInput() commands.PlaceHoldInput {
	minutes := b.Minutes
	return commands.PlaceHoldInput{
		SlotID:      b.SlotID,
		HoldMinutes: &minutes,
		UserID:      b.UserID,
	}
}

func (b *HoldBuilder) BuildPlaceRequestDTO() reqdto.PlaceHoldRequest {
	minutes := b.Minutes
	return reqdto.PlaceHoldRequest{
		SlotID:      b.SlotID,
		HoldMinutes: &minutes,
		UserID:      b.UserID,
	}
}
