package hold

type Status string

const (
	StatusHolding   Status = "holding"
	StatusConfirmed Status = "confirmed"
	StatusExpired   Status = "expired"
	StatusCancelled Status = "cancelled"
	StatusReleased  Status = "released"
)

func (s Status) String() string {
	return string(s)
}

func (s Status) IsValid() bool {
	switch s {
	case StatusHolding, StatusConfirmed, StatusExpired, StatusCancelled, StatusReleased:
		return true
	default:
		return false
	}
}

// IsActive reports whether the status blocks the slot for new holds.
func (s Status) IsActive() bool {
	return s == StatusHolding || s == StatusConfirmed
}

func (s Status) IsTerminal() bool {
	return s == StatusExpired || s == StatusCancelled || s == StatusReleased
}

// ActiveStatuses is the set covered by the one-active-hold-per-slot rule.
var ActiveStatuses = []Status{StatusHolding, StatusConfirmed}

var transitions = map[Status][]Status{
	StatusHolding:   {StatusConfirmed, StatusExpired, StatusCancelled},
	StatusConfirmed: {StatusReleased},
}

func CanTransition(from, to Status) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

type Operation string

const (
	OpConfirm Operation = "confirm"
	OpCancel  Operation = "cancel"
	OpRelease Operation = "release"
	OpExpire  Operation = "expire"
)

func (o Operation) String() string {
	return string(o)
}

func (o Operation) target() Status {
	switch o {
	case OpConfirm:
		return StatusConfirmed
	case OpCancel:
		return StatusCancelled
	case OpRelease:
		return StatusReleased
	case OpExpire:
		return StatusExpired
	default:
		return ""
	}
}
