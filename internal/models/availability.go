package models

import (
	"errors"
	"fmt"
	"time"
)

// TimeWindow is a bookable interval within a single day, expressed as
// "HH:MM" wall-clock times in the supporter's timezone.
type TimeWindow struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type DaySchedule struct {
	Enabled bool         `json:"enabled"`
	Windows []TimeWindow `json:"windows"`
}

// WeeklyAvailability maps each weekday to the supporter's recurring
// schedule for that day. It is read and replaced as a whole value; callers
// never mutate a stored schedule in place.
type WeeklyAvailability map[time.Weekday]DaySchedule

// IsEmpty reports whether no day has an enabled schedule. An empty
// availability means the supporter has not constrained their calendar yet,
// so date listing treats every day as open.
func (a WeeklyAvailability) IsEmpty() bool {
	for _, day := range a {
		if day.Enabled {
			return false
		}
	}
	return true
}

var (
	ErrWindowOrder      = errors.New("availability windows must be ordered and non-overlapping")
	ErrWindowBounds     = errors.New("availability window start must be before its end")
	ErrWindowFormat     = errors.New("availability window times must be HH:MM")
	ErrEnabledNoneEmpty = errors.New("enabled days must have windows, disabled days must not")
)

// Validate enforces the schedule invariants: HH:MM formatted bounds,
// start < end, windows ordered and non-overlapping within a day, and
// enabled <=> non-empty windows.
func (a WeeklyAvailability) Validate() error {
	for weekday, day := range a {
		if day.Enabled != (len(day.Windows) > 0) {
			return fmt.Errorf("%w: %s", ErrEnabledNoneEmpty, weekday)
		}
		prevEnd := -1
		for _, window := range day.Windows {
			start, err := ParseMinuteOfDay(window.Start)
			if err != nil {
				return fmt.Errorf("%w: %s %q", ErrWindowFormat, weekday, window.Start)
			}
			end, err := ParseMinuteOfDay(window.End)
			if err != nil {
				return fmt.Errorf("%w: %s %q", ErrWindowFormat, weekday, window.End)
			}
			if start >= end {
				return fmt.Errorf("%w: %s %s-%s", ErrWindowBounds, weekday, window.Start, window.End)
			}
			if start < prevEnd {
				return fmt.Errorf("%w: %s", ErrWindowOrder, weekday)
			}
			prevEnd = end
		}
	}
	return nil
}

// ParseMinuteOfDay converts an "HH:MM" string to minutes since midnight.
func ParseMinuteOfDay(value string) (int, error) {
	var hour, minute int
	if _, err := fmt.Sscanf(value, "%d:%d", &hour, &minute); err != nil {
		return 0, err
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("out of range: %q", value)
	}
	return hour*60 + minute, nil
}

// TimeSlot is a concrete bookable interval derived on demand from a
// WeeklyAvailability. It is never persisted.
type TimeSlot struct {
	StartUTC time.Time `json:"start_utc"`
	EndUTC   time.Time `json:"end_utc"`
	Display  string    `json:"display"`
}
