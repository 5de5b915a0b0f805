package services

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/aylin-t/PeerSupportBack/internal/models"
)

// Candidate slot starts are enumerated on a fixed half-hour grid from the
// start of each availability window.
const slotGranularityMinutes = 30

var (
	ErrSupporterNotFound = errors.New("supporter not found")
	ErrUnknownTimezone   = errors.New("unknown supporter timezone")
)

type supporterProfileReader interface {
	GetByUserID(ctx context.Context, userID int64) (*models.SupporterProfile, error)
}

// AvailabilityResolver turns a supporter's recurring weekly schedule into
// concrete bookable dates and slots. Slot math happens in the supporter's
// timezone, the canonical scheduling zone; every produced timestamp is UTC.
type AvailabilityResolver struct {
	supporterRepo supporterProfileReader
	now           func() time.Time
}

func NewAvailabilityResolver(supporterRepo supporterProfileReader) *AvailabilityResolver {
	return &AvailabilityResolver{
		supporterRepo: supporterRepo,
		now:           time.Now,
	}
}

func (r *AvailabilityResolver) ListBookableDates(
	ctx context.Context,
	supporterID int64,
	horizonDays int,
) ([]time.Time, error) {
	profile, loc, err := r.loadProfile(ctx, supporterID)
	if err != nil {
		return nil, err
	}
	return BookableDates(profile.Availability, loc, horizonDays, r.now()), nil
}

func (r *AvailabilityResolver) ListSlots(
	ctx context.Context,
	supporterID int64,
	date time.Time,
	sessionType models.SessionType,
) ([]models.TimeSlot, error) {
	if !sessionType.Valid() {
		return nil, ErrInvalidInput
	}
	profile, loc, err := r.loadProfile(ctx, supporterID)
	if err != nil {
		return nil, err
	}
	return SlotsForDate(profile.Availability, loc, date, sessionType.DurationMinutes(), r.now()), nil
}

// SlotAvailable re-derives the slot list for the day containing startUTC and
// reports whether a slot starting exactly then is currently offered. Booking
// uses this as the advisory check before attempting the authoritative write.
func (r *AvailabilityResolver) SlotAvailable(
	ctx context.Context,
	supporterID int64,
	sessionType models.SessionType,
	startUTC time.Time,
) (bool, error) {
	profile, loc, err := r.loadProfile(ctx, supporterID)
	if err != nil {
		return false, err
	}
	localDate := startUTC.In(loc)
	slots := SlotsForDate(profile.Availability, loc, localDate, sessionType.DurationMinutes(), r.now())
	for _, slot := range slots {
		if slot.StartUTC.Equal(startUTC) {
			return true, nil
		}
	}
	return false, nil
}

func (r *AvailabilityResolver) loadProfile(
	ctx context.Context,
	supporterID int64,
) (*models.SupporterProfile, *time.Location, error) {
	profile, err := r.supporterRepo.GetByUserID(ctx, supporterID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, ErrSupporterNotFound
		}
		return nil, nil, err
	}
	loc, err := time.LoadLocation(profile.Timezone)
	if err != nil {
		return nil, nil, ErrUnknownTimezone
	}
	return profile, loc, nil
}

// BookableDates walks horizonDays consecutive calendar days starting today
// in the supporter's timezone. A date is included iff its weekday is enabled;
// a fully empty availability is unconstrained and every date passes. Results
// are local midnights in chronological order.
func BookableDates(
	availability models.WeeklyAvailability,
	loc *time.Location,
	horizonDays int,
	now time.Time,
) []time.Time {
	localNow := now.In(loc)
	unconstrained := availability.IsEmpty()

	dates := make([]time.Time, 0, horizonDays)
	for i := 0; i < horizonDays; i++ {
		day := time.Date(localNow.Year(), localNow.Month(), localNow.Day()+i, 0, 0, 0, 0, loc)
		if unconstrained || availability[day.Weekday()].Enabled {
			dates = append(dates, day)
		}
	}
	return dates
}

// SlotsForDate enumerates bookable slots on the calendar day that `date`
// falls on (only its year/month/day are read, interpreted in loc). A
// candidate [t, t+duration) is valid iff it fits entirely inside one of the
// day's windows; on the current day, starts not strictly after now are
// dropped. Overlapping windows are a caller invariant violation and are not
// deduplicated here.
func SlotsForDate(
	availability models.WeeklyAvailability,
	loc *time.Location,
	date time.Time,
	durationMinutes int,
	now time.Time,
) []models.TimeSlot {
	if durationMinutes <= 0 {
		return nil
	}

	year, month, day := date.Year(), date.Month(), date.Day()
	weekday := time.Date(year, month, day, 0, 0, 0, 0, loc).Weekday()
	schedule := availability[weekday]
	if !schedule.Enabled {
		return nil
	}

	localNow := now.In(loc)
	sameDay := localNow.Year() == year && localNow.Month() == month && localNow.Day() == day

	slots := make([]models.TimeSlot, 0)
	for _, window := range schedule.Windows {
		startMin, err := models.ParseMinuteOfDay(window.Start)
		if err != nil {
			continue
		}
		endMin, err := models.ParseMinuteOfDay(window.End)
		if err != nil {
			continue
		}

		for t := startMin; t+durationMinutes <= endMin; t += slotGranularityMinutes {
			start := time.Date(year, month, day, t/60, t%60, 0, 0, loc)
			if sameDay && !start.After(now) {
				continue
			}
			slots = append(slots, models.TimeSlot{
				StartUTC: start.UTC(),
				EndUTC:   start.Add(time.Duration(durationMinutes) * time.Minute).UTC(),
				Display:  start.Format("3:04 PM"),
			})
		}
	}
	return slots
}
