package notify

import (
	"context"
	"time"
)

// ReminderPayload is the content handed to the delivery service for one
// pre-session reminder. Delivery transport (push, SMS) is external; this
// backend only decides content and timing.
type ReminderPayload struct {
	SessionID     int64     `json:"session_id"`
	ClientID      int64     `json:"client_id"`
	SupporterID   int64     `json:"supporter_id"`
	SessionType   string    `json:"session_type"`
	ScheduledAt   time.Time `json:"scheduled_at"`
	OffsetMinutes int       `json:"offset_minutes"`
}

// Transport is the external reminder-delivery service. ScheduleFire arms a
// delivery at fireAt addressed by handle; Cancel disarms one handle.
type Transport interface {
	ScheduleFire(ctx context.Context, handle string, fireAt time.Time, payload ReminderPayload) error
	Cancel(ctx context.Context, handle string) error
}

// CancellationEvent notifies the non-cancelling party that a session was
// cancelled and what was refunded.
type CancellationEvent struct {
	EventID      string `json:"event_id"`
	SessionID    int64  `json:"session_id"`
	CancelledBy  string `json:"cancelled_by"`
	NotifyUserID int64  `json:"notify_user_id"`
	RefundCents  int64  `json:"refund_cents"`
	Reason       string `json:"reason"`
}

// RefundReconciliationEvent flags a refund the payment processor failed to
// issue even though the session is already cancelled, for manual follow-up.
type RefundReconciliationEvent struct {
	EventID     string `json:"event_id"`
	SessionID   int64  `json:"session_id"`
	ChargeRef   string `json:"charge_ref"`
	AmountCents int64  `json:"amount_cents"`
	Cause       string `json:"cause"`
}

type EventPublisher interface {
	PublishCancellation(ctx context.Context, event CancellationEvent) error
	PublishRefundReconciliation(ctx context.Context, event RefundReconciliationEvent) error
}
