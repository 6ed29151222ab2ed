package shared

type SlotFilter struct {
	ZoneID *string
}

const (
	DefaultEventLimit = 100
	MaxEventLimit     = 1000
)

type EventFilter struct {
	AfterSeq int64
	SlotID   *string
	Limit    int
}

// Normalize clamps the page size into [1, MaxEventLimit].
func (f EventFilter) Normalize() EventFilter {
	switch {
	case f.Limit <= 0:
		f.Limit = DefaultEventLimit
	case f.Limit > MaxEventLimit:
		f.Limit = MaxEventLimit
	}
	if f.AfterSeq < 0 {
		f.AfterSeq = 0
	}
	return f
}
