package services

import (
	"fmt"
	"time"

	"github.com/aylin-t/PeerSupportBack/internal/models"
)

// RefundPolicy defines the two cancellation thresholds, in hours before the
// scheduled start. NoRefundHours must be less than FullRefundHours.
type RefundPolicy struct {
	FullRefundHours int
	NoRefundHours   int
}

type RefundBreakdown struct {
	Percentage  int    `json:"percentage"`
	AmountCents int64  `json:"amount_cents"`
	Reason      string `json:"reason"`
}

// ComputeRefund maps a cancellation to its refund tier. Supporter-initiated
// cancellations always refund in full. Client cancellations are tiered on
// how far ahead of the scheduled start the cancellation lands; a session
// already started or passed falls in the most restrictive tier. Pure
// function: no clock, no storage.
func ComputeRefund(
	policy RefundPolicy,
	priceCents int64,
	scheduledAt time.Time,
	now time.Time,
	cancelledBy models.CancelActor,
) RefundBreakdown {
	if cancelledBy == models.CancelledBySupporter {
		return RefundBreakdown{
			Percentage:  100,
			AmountCents: priceCents,
			Reason:      "supporter-initiated cancellation: full refund",
		}
	}

	hoursUntil := scheduledAt.Sub(now).Hours()
	switch {
	case hoursUntil >= float64(policy.FullRefundHours):
		return RefundBreakdown{
			Percentage:  100,
			AmountCents: priceCents,
			Reason:      fmt.Sprintf("cancelled %d+ hours ahead: full refund", policy.FullRefundHours),
		}
	case hoursUntil >= float64(policy.NoRefundHours):
		return RefundBreakdown{
			Percentage:  50,
			AmountCents: roundHalfUpPercent(priceCents, 50),
			Reason: fmt.Sprintf("cancelled between %d and %d hours ahead: half refund",
				policy.NoRefundHours, policy.FullRefundHours),
		}
	default:
		return RefundBreakdown{
			Percentage:  0,
			AmountCents: 0,
			Reason:      fmt.Sprintf("cancelled under %d hours ahead: no refund", policy.NoRefundHours),
		}
	}
}

// roundHalfUpPercent computes cents*percent/100 rounded half-up.
func roundHalfUpPercent(cents int64, percent int) int64 {
	return (cents*int64(percent) + 50) / 100
}
