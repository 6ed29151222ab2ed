package slot

import (
	"encoding/json"
	"errors"
	"regexp"
	"time"
)

var (
	ErrInvalidSlotID  = errors.New("slot id must be 1-64 characters of letters, digits, '_' or '-'")
	ErrInvalidZoneID  = errors.New("zone id is required")
	ErrInvalidPolygon = errors.New("polygon must be a JSON array or object")
)

var slotIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

func ValidateID(id string) error {
	if !slotIDPattern.MatchString(id) {
		return ErrInvalidSlotID
	}
	return nil
}

type Slot struct {
	id              string
	zoneID          string
	polygon         json.RawMessage
	vehicleTypeHint *string
	createdAt       time.Time
	updatedAt       time.Time
}

func NewSlot(id, zoneID string, polygon json.RawMessage, vehicleTypeHint *string, now time.Time) (*Slot, error) {
	if err := ValidateID(id); err != nil {
		return nil, err
	}
	s := &Slot{id: id, createdAt: now, updatedAt: now}
	if err := s.apply(&zoneID, polygon, vehicleTypeHint); err != nil {
		return nil, err
	}
	return s, nil
}

func ReconstructSlot(
	id, zoneID string,
	polygon json.RawMessage,
	vehicleTypeHint *string,
	createdAt, updatedAt time.Time,
) *Slot {
	return &Slot{
		id:              id,
		zoneID:          zoneID,
		polygon:         polygon,
		vehicleTypeHint: vehicleTypeHint,
		createdAt:       createdAt,
		updatedAt:       updatedAt,
	}
}

// Edit applies an administrative change. Nil arguments leave the attribute untouched.
func (s *Slot) Edit(zoneID *string, polygon json.RawMessage, vehicleTypeHint *string, now time.Time) error {
	if err := s.apply(zoneID, polygon, vehicleTypeHint); err != nil {
		return err
	}
	s.updatedAt = now
	return nil
}

func (s *Slot) apply(zoneID *string, polygon json.RawMessage, vehicleTypeHint *string) error {
	if zoneID != nil {
		if *zoneID == "" {
			return ErrInvalidZoneID
		}
		s.zoneID = *zoneID
	}
	if len(polygon) > 0 {
		if !validPolygon(polygon) {
			return ErrInvalidPolygon
		}
		s.polygon = polygon
	}
	if vehicleTypeHint != nil {
		s.vehicleTypeHint = vehicleTypeHint
	}
	return nil
}

func validPolygon(raw json.RawMessage) bool {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return false
	}
	switch v.(type) {
	case []any, map[string]any:
		return true
	default:
		return false
	}
}

func (s *Slot) ID() string               { return s.id }
func (s *Slot) ZoneID() string           { return s.zoneID }
func (s *Slot) Polygon() json.RawMessage { return s.polygon }
func (s *Slot) VehicleTypeHint() *string { return s.vehicleTypeHint }
func (s *Slot) CreatedAt() time.Time     { return s.createdAt }
func (s *Slot) UpdatedAt() time.Time     { return s.updatedAt }
