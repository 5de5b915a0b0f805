package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/aylin-t/PeerSupportBack/internal/models"
)

type stubSupporterReader struct {
	profile *models.SupporterProfile
	err     error
}

func (s *stubSupporterReader) GetByUserID(_ context.Context, _ int64) (*models.SupporterProfile, error) {
	return s.profile, s.err
}

func mondayMorning() models.WeeklyAvailability {
	return models.WeeklyAvailability{
		time.Monday: {
			Enabled: true,
			Windows: []models.TimeWindow{{Start: "09:00", End: "12:00"}},
		},
	}
}

func TestSlotsForDateFillsWindowOnGrid(t *testing.T) {
	// 2026-01-05 is a Monday.
	date := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	now := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)

	slots := SlotsForDate(mondayMorning(), time.UTC, date, 30, now)
	if got := len(slots); got != 6 {
		t.Fatalf("expected 6 slots in a 3h window, got %d", got)
	}
	if !slots[0].StartUTC.Equal(time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected first slot at 09:00, got %v", slots[0].StartUTC)
	}
	last := slots[len(slots)-1]
	if !last.StartUTC.Equal(time.Date(2026, 1, 5, 11, 30, 0, 0, time.UTC)) {
		t.Fatalf("expected last slot start at 11:30, got %v", last.StartUTC)
	}
	if !last.EndUTC.Equal(time.Date(2026, 1, 5, 12, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected last slot to end exactly at window close, got %v", last.EndUTC)
	}
	if slots[0].Display != "9:00 AM" {
		t.Fatalf("expected display 9:00 AM, got %q", slots[0].Display)
	}
}

func TestSlotsForDateDropsSlotsThatOverrunWindow(t *testing.T) {
	date := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	now := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)

	// 60-minute sessions in a 3h window: 09:00, 09:30, ..., 11:00. A start
	// at 11:30 would overrun 12:00 and must not appear.
	slots := SlotsForDate(mondayMorning(), time.UTC, date, 60, now)
	if got := len(slots); got != 5 {
		t.Fatalf("expected 5 slots, got %d", got)
	}
	last := slots[len(slots)-1]
	if !last.StartUTC.Equal(time.Date(2026, 1, 5, 11, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected last start at 11:00, got %v", last.StartUTC)
	}
}

func TestSlotsForDateSameDayKeepsOnlyFutureStarts(t *testing.T) {
	date := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	now := time.Date(2026, 1, 5, 10, 15, 0, 0, time.UTC)

	slots := SlotsForDate(mondayMorning(), time.UTC, date, 30, now)
	if got := len(slots); got != 3 {
		t.Fatalf("expected 3 remaining slots, got %d", got)
	}
	if !slots[0].StartUTC.Equal(time.Date(2026, 1, 5, 10, 30, 0, 0, time.UTC)) {
		t.Fatalf("expected first remaining slot at 10:30, got %v", slots[0].StartUTC)
	}
}

func TestSlotsForDateSameDayExcludesExactNow(t *testing.T) {
	date := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	now := time.Date(2026, 1, 5, 10, 30, 0, 0, time.UTC)

	slots := SlotsForDate(mondayMorning(), time.UTC, date, 30, now)
	if !slots[0].StartUTC.Equal(time.Date(2026, 1, 5, 11, 0, 0, 0, time.UTC)) {
		t.Fatalf("slot starting exactly now must be dropped, got first %v", slots[0].StartUTC)
	}
}

func TestSlotsForDateDisabledDayIsEmpty(t *testing.T) {
	// 2026-01-06 is a Tuesday; only Monday is enabled.
	date := time.Date(2026, 1, 6, 0, 0, 0, 0, time.UTC)
	now := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)

	if slots := SlotsForDate(mondayMorning(), time.UTC, date, 30, now); len(slots) != 0 {
		t.Fatalf("expected no slots on a disabled day, got %d", len(slots))
	}
}

func TestSlotsForDateConvertsSupporterTimezoneToUTC(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	date := time.Date(2026, 1, 5, 0, 0, 0, 0, loc)
	now := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)

	slots := SlotsForDate(mondayMorning(), loc, date, 30, now)
	if len(slots) == 0 {
		t.Fatal("expected slots")
	}
	// 09:00 EST is 14:00 UTC in January.
	if !slots[0].StartUTC.Equal(time.Date(2026, 1, 5, 14, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected 14:00 UTC, got %v", slots[0].StartUTC)
	}
	if slots[0].Display != "9:00 AM" {
		t.Fatalf("display must stay in supporter local time, got %q", slots[0].Display)
	}
}

func TestBookableDatesFiltersToEnabledWeekdays(t *testing.T) {
	now := time.Date(2026, 1, 5, 8, 0, 0, 0, time.UTC) // Monday

	dates := BookableDates(mondayMorning(), time.UTC, 14, now)
	if got := len(dates); got != 2 {
		t.Fatalf("expected 2 Mondays in a 14-day horizon, got %d", got)
	}
	for _, d := range dates {
		if d.Weekday() != time.Monday {
			t.Fatalf("expected only Mondays, got %v", d.Weekday())
		}
	}
}

func TestBookableDatesEmptyAvailabilityIsUnconstrained(t *testing.T) {
	now := time.Date(2026, 1, 5, 8, 0, 0, 0, time.UTC)

	dates := BookableDates(models.WeeklyAvailability{}, time.UTC, 7, now)
	if got := len(dates); got != 7 {
		t.Fatalf("empty availability must not constrain dates, got %d of 7", got)
	}
}

func TestResolverSlotAvailable(t *testing.T) {
	resolver := NewAvailabilityResolver(&stubSupporterReader{
		profile: &models.SupporterProfile{
			UserID:       7,
			Timezone:     "UTC",
			Availability: mondayMorning(),
		},
	})
	resolver.now = func() time.Time {
		return time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)
	}

	ok, err := resolver.SlotAvailable(context.Background(), 7, models.SessionTypeChat,
		time.Date(2026, 1, 5, 9, 30, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("SlotAvailable: %v", err)
	}
	if !ok {
		t.Fatal("expected 09:30 chat slot to be available")
	}

	ok, err = resolver.SlotAvailable(context.Background(), 7, models.SessionTypeChat,
		time.Date(2026, 1, 5, 9, 45, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("SlotAvailable: %v", err)
	}
	if ok {
		t.Fatal("expected off-grid 09:45 start to be unavailable")
	}
}

func TestResolverMapsMissingSupporter(t *testing.T) {
	resolver := NewAvailabilityResolver(&stubSupporterReader{err: pgx.ErrNoRows})

	if _, err := resolver.ListBookableDates(context.Background(), 99, 14); !errors.Is(err, ErrSupporterNotFound) {
		t.Fatalf("expected ErrSupporterNotFound, got %v", err)
	}
}

func TestResolverRejectsUnknownTimezone(t *testing.T) {
	resolver := NewAvailabilityResolver(&stubSupporterReader{
		profile: &models.SupporterProfile{UserID: 7, Timezone: "Mars/Olympus"},
	})

	if _, err := resolver.ListBookableDates(context.Background(), 7, 14); !errors.Is(err, ErrUnknownTimezone) {
		t.Fatalf("expected ErrUnknownTimezone, got %v", err)
	}
}

func TestListSlotsRejectsUnknownSessionType(t *testing.T) {
	resolver := NewAvailabilityResolver(&stubSupporterReader{
		profile: &models.SupporterProfile{UserID: 7, Timezone: "UTC", Availability: mondayMorning()},
	})

	_, err := resolver.ListSlots(context.Background(), 7, time.Now(), models.SessionType("carrier_pigeon"))
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}
