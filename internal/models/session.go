package models

import "time"

type SessionStatus string

const (
	StatusRequested SessionStatus = "requested"
	StatusConfirmed SessionStatus = "confirmed"
	StatusCompleted SessionStatus = "completed"
	StatusCancelled SessionStatus = "cancelled"
)

// IsTerminal reports whether no further transition may leave this status.
func (s SessionStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// CanTransitionTo encodes the session state machine:
// requested -> confirmed -> completed, with cancellation allowed from
// requested and confirmed only.
func (s SessionStatus) CanTransitionTo(next SessionStatus) bool {
	switch s {
	case StatusRequested:
		return next == StatusConfirmed || next == StatusCancelled
	case StatusConfirmed:
		return next == StatusCompleted || next == StatusCancelled
	default:
		return false
	}
}

type CancelActor string

const (
	CancelledByNone      CancelActor = "none"
	CancelledByClient    CancelActor = "client"
	CancelledBySupporter CancelActor = "supporter"
)

type SessionType string

const (
	SessionTypeChat  SessionType = "chat"
	SessionTypePhone SessionType = "phone"
	SessionTypeVideo SessionType = "video"
)

// Canonical duration and price per session type. Supporters do not set
// their own rates; pricing is uniform across the marketplace.
var sessionTypeSpecs = map[SessionType]struct {
	DurationMinutes int
	PriceCents      int64
}{
	SessionTypeChat:  {DurationMinutes: 30, PriceCents: 2500},
	SessionTypePhone: {DurationMinutes: 45, PriceCents: 4000},
	SessionTypeVideo: {DurationMinutes: 60, PriceCents: 5000},
}

func (t SessionType) Valid() bool {
	_, ok := sessionTypeSpecs[t]
	return ok
}

func (t SessionType) DurationMinutes() int {
	return sessionTypeSpecs[t].DurationMinutes
}

func (t SessionType) PriceCents() int64 {
	return sessionTypeSpecs[t].PriceCents
}

type Session struct {
	ID                 int64         `json:"id"`
	ClientID           int64         `json:"client_id"`
	SupporterID        int64         `json:"supporter_id"`
	SessionType        SessionType   `json:"session_type"`
	ScheduledAt        time.Time     `json:"scheduled_at"`
	DurationMinutes    int           `json:"duration_minutes"`
	PriceCents         int64         `json:"price_cents"`
	Status             SessionStatus `json:"status"`
	CancelledBy        CancelActor   `json:"cancelled_by"`
	CancellationReason *string       `json:"cancellation_reason"`
	RefundCents        int64         `json:"refund_cents"`
	ChargeRef          *string       `json:"-"`
	CreatedAt          time.Time     `json:"created_at"`
	UpdatedAt          time.Time     `json:"updated_at"`
}

// EndsAt is the scheduled end of the session.
func (s *Session) EndsAt() time.Time {
	return s.ScheduledAt.Add(time.Duration(s.DurationMinutes) * time.Minute)
}
