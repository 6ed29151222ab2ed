package hold

import "time"

type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

type OverstayPolicy struct {
	Bound       time.Duration
	GracePeriod time.Duration
}

type Overstay struct {
	Hold     *Hold
	Parked   time.Duration
	Over     time.Duration
	Severity Severity
}

// DetectOverstay returns nil unless h is a confirmed session that ran past bound plus grace.
func (p OverstayPolicy) DetectOverstay(h *Hold, now time.Time) *Overstay {
	if h.status != StatusConfirmed || h.confirmedAt == nil {
		return nil
	}
	parked := now.Sub(*h.confirmedAt)
	over := parked - p.Bound
	if over <= p.GracePeriod {
		return nil
	}
	return &Overstay{
		Hold:     h,
		Parked:   parked,
		Over:     over,
		Severity: severityFor(over),
	}
}

func severityFor(over time.Duration) Severity {
	switch {
	case over < 30*time.Minute:
		return SeverityLow
	case over < 60*time.Minute:
		return SeverityMedium
	default:
		return SeverityHigh
	}
}
