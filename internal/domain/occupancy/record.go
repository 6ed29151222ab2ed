package occupancy

import (
	"errors"
	"time"
)

// MaxPredictedFreeMinutes caps a prediction at one week.
const MaxPredictedFreeMinutes = 7 * 24 * 60

var (
	ErrInvalidConfidence = errors.New("confidence must be within [0, 1]")
	ErrInvalidPrediction = errors.New("predicted free minutes must be within [0, 10080]")
)

// Record is the sensed state of one slot. Occupied, Confidence, VehicleType and LastSeen belong to
// the detection pipeline, ReservedUntil to the reservation ledger, the prediction fields to the
// prediction service.
type Record struct {
	SlotID               string
	Occupied             bool
	Confidence           float64
	VehicleType          *string
	LastSeen             *time.Time
	ReservedUntil        *time.Time
	PredictedFreeMinutes *int
	PredictionConfidence *float64
	UpdatedAt            time.Time
}

func NewRecord(slotID string, now time.Time) *Record {
	return &Record{SlotID: slotID, UpdatedAt: now}
}

func ValidateConfidence(v float64) error {
	if v < 0 || v > 1 {
		return ErrInvalidConfidence
	}
	return nil
}

func ValidatePrediction(freeMinutes int) error {
	if freeMinutes < 0 || freeMinutes > MaxPredictedFreeMinutes {
		return ErrInvalidPrediction
	}
	return nil
}

// BlocksHold is the occupancy gate for new holds.
func (r *Record) BlocksHold(threshold float64) bool {
	return r.Occupied && r.Confidence >= threshold
}

func (r *Record) IsReserved(now time.Time) bool {
	return r.ReservedUntil != nil && r.ReservedUntil.After(now)
}

type Sensing struct {
	Occupied    bool
	Confidence  float64
	VehicleType *string
}

// ApplySensing records a detection and reports whether the observable state changed.
func (r *Record) ApplySensing(s Sensing, now time.Time) (bool, error) {
	if err := ValidateConfidence(s.Confidence); err != nil {
		return false, err
	}
	changed := r.LastSeen == nil || r.Occupied != s.Occupied || !sameString(r.VehicleType, s.VehicleType)

	r.Occupied = s.Occupied
	r.Confidence = s.Confidence
	r.VehicleType = s.VehicleType
	r.LastSeen = &now
	r.UpdatedAt = now
	return changed, nil
}

func (r *Record) ApplyPrediction(freeMinutes int, confidence float64, now time.Time) error {
	if err := ValidatePrediction(freeMinutes); err != nil {
		return err
	}
	if err := ValidateConfidence(confidence); err != nil {
		return err
	}
	r.PredictedFreeMinutes = &freeMinutes
	r.PredictionConfidence = &confidence
	r.UpdatedAt = now
	return nil
}

func (r *Record) Clone() *Record {
	c := *r
	c.VehicleType = clonePtr(r.VehicleType)
	c.LastSeen = clonePtr(r.LastSeen)
	c.ReservedUntil = clonePtr(r.ReservedUntil)
	c.PredictedFreeMinutes = clonePtr(r.PredictedFreeMinutes)
	c.PredictionConfidence = clonePtr(r.PredictionConfidence)
	return &c
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func sameString(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
