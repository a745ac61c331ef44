package domain

import "time"

// ActionKind driver decision on a booking
type ActionKind string

const (
	ActionApprove ActionKind = "approve"
	ActionCancel  ActionKind = "cancel"
)

// TargetStatus returns the status a successful action conventionally yields
func (k ActionKind) TargetStatus() BookingStatus {
	if k == ActionApprove {
		return StatusApproved
	}
	return StatusCancelled
}

// ActionOutcome result of a finished driver action
type ActionOutcome string

const (
	OutcomeApplied  ActionOutcome = "applied"
	OutcomeDeclined ActionOutcome = "declined"
	OutcomeFailed   ActionOutcome = "failed"
)

// PendingAction in-flight approve/cancel call for one booking.
// At most one may exist per booking.
type PendingAction struct {
	BookingID string
	Kind      ActionKind
	RequestID string
	StartedAt time.Time
}

// ActionRecord finished driver action, kept in the action journal
type ActionRecord struct {
	ID           int64
	BookingID    string
	DriverID     string
	Kind         ActionKind
	Outcome      ActionOutcome
	ResultStatus *BookingStatus
	Message      *string
	RequestID    string
	StartedAt    time.Time
	FinishedAt   time.Time
}

// Duration returns how long the action took
func (r *ActionRecord) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}
