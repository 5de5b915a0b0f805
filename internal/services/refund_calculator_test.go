package services

import (
	"testing"
	"time"

	"github.com/aylin-t/PeerSupportBack/internal/models"
)

func TestComputeRefundClientTiers(t *testing.T) {
	policy := RefundPolicy{FullRefundHours: 4, NoRefundHours: 2}
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name        string
		hoursAhead  time.Duration
		wantPercent int
		wantCents   int64
	}{
		{"well ahead", 5 * time.Hour, 100, 5000},
		{"exactly full threshold", 4 * time.Hour, 100, 5000},
		{"inside partial window", 3 * time.Hour, 50, 2500},
		{"exactly partial threshold", 2 * time.Hour, 50, 2500},
		{"last minute", 1 * time.Hour, 0, 0},
		{"already started", -30 * time.Minute, 0, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ComputeRefund(policy, 5000, now.Add(tc.hoursAhead), now, models.CancelledByClient)
			if got.Percentage != tc.wantPercent {
				t.Fatalf("expected %d%%, got %d%%", tc.wantPercent, got.Percentage)
			}
			if got.AmountCents != tc.wantCents {
				t.Fatalf("expected %d cents, got %d", tc.wantCents, got.AmountCents)
			}
		})
	}
}

func TestComputeRefundSupporterAlwaysFull(t *testing.T) {
	policy := RefundPolicy{FullRefundHours: 24, NoRefundHours: 2}
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	// Even inside the client's no-refund window.
	got := ComputeRefund(policy, 4000, now.Add(30*time.Minute), now, models.CancelledBySupporter)
	if got.Percentage != 100 || got.AmountCents != 4000 {
		t.Fatalf("expected full refund, got %d%% / %d cents", got.Percentage, got.AmountCents)
	}
}

func TestComputeRefundRoundsHalfUp(t *testing.T) {
	policy := RefundPolicy{FullRefundHours: 24, NoRefundHours: 2}
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	got := ComputeRefund(policy, 2501, now.Add(3*time.Hour), now, models.CancelledByClient)
	if got.AmountCents != 1251 {
		t.Fatalf("expected 1251 cents (half-up), got %d", got.AmountCents)
	}
}

func TestComputeRefundNeverExceedsPrice(t *testing.T) {
	policy := RefundPolicy{FullRefundHours: 24, NoRefundHours: 2}
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	for hours := 0; hours <= 48; hours++ {
		got := ComputeRefund(policy, 5000, now.Add(time.Duration(hours)*time.Hour), now, models.CancelledByClient)
		if got.AmountCents < 0 || got.AmountCents > 5000 {
			t.Fatalf("refund out of range at %dh: %d cents", hours, got.AmountCents)
		}
	}
}

func TestComputeRefundMonotonicInLeadTime(t *testing.T) {
	policy := RefundPolicy{FullRefundHours: 24, NoRefundHours: 2}
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	prev := int64(-1)
	for hours := 0; hours <= 30; hours++ {
		got := ComputeRefund(policy, 5000, now.Add(time.Duration(hours)*time.Hour), now, models.CancelledByClient)
		if got.AmountCents < prev {
			t.Fatalf("refund decreased with more lead time at %dh: %d < %d", hours, got.AmountCents, prev)
		}
		prev = got.AmountCents
	}
}
