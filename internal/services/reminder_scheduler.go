package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/aylin-t/PeerSupportBack/internal/models"
	"github.com/aylin-t/PeerSupportBack/internal/notify"
)

type reminderStore interface {
	Create(ctx context.Context, reminder models.Reminder) (*models.Reminder, error)
	ListPendingBySession(ctx context.Context, sessionID int64) ([]models.Reminder, error)
	CancelBySession(ctx context.Context, sessionID int64) (int64, error)
}

// ReminderScheduler arms the fixed pre-session reminders (15, 60 and 1440
// minutes before start) on the external delivery service and tracks them so
// a cancellation can disarm exactly one session's set.
type ReminderScheduler struct {
	reminders reminderStore
	transport notify.Transport
	now       func() time.Time
}

func NewReminderScheduler(reminders reminderStore, transport notify.Transport) *ReminderScheduler {
	return &ReminderScheduler{
		reminders: reminders,
		transport: transport,
		now:       time.Now,
	}
}

// Schedule arms one reminder per fixed offset. Fire times already in the
// past are skipped, never scheduled.
func (s *ReminderScheduler) Schedule(
	ctx context.Context,
	session *models.Session,
) ([]models.Reminder, error) {
	now := s.now()

	scheduled := make([]models.Reminder, 0, len(models.ReminderOffsetsMinutes))
	for _, offset := range models.ReminderOffsetsMinutes {
		fireAt := session.ScheduledAt.Add(-time.Duration(offset) * time.Minute)
		if !fireAt.After(now) {
			continue
		}

		handle := uuid.NewString()
		payload := notify.ReminderPayload{
			SessionID:     session.ID,
			ClientID:      session.ClientID,
			SupporterID:   session.SupporterID,
			SessionType:   string(session.SessionType),
			ScheduledAt:   session.ScheduledAt,
			OffsetMinutes: offset,
		}
		if err := s.transport.ScheduleFire(ctx, handle, fireAt, payload); err != nil {
			return scheduled, fmt.Errorf("schedule reminder %dm: %w", offset, err)
		}

		reminder, err := s.reminders.Create(ctx, models.Reminder{
			SessionID:      session.ID,
			OffsetMinutes:  offset,
			FireAt:         fireAt,
			DeliveryHandle: handle,
		})
		if err != nil {
			// The delivery is already armed; disarm it, otherwise it fires
			// untracked and CancelAll can never reach it.
			if disarmErr := s.transport.Cancel(ctx, handle); disarmErr != nil {
				return scheduled, fmt.Errorf("persist reminder %dm: %w (disarm: %v)", offset, err, disarmErr)
			}
			return scheduled, fmt.Errorf("persist reminder %dm: %w", offset, err)
		}
		scheduled = append(scheduled, *reminder)
	}
	return scheduled, nil
}

// CancelAll disarms every pending reminder of one session. Repeat calls,
// and calls for sessions with nothing pending, are no-ops.
func (s *ReminderScheduler) CancelAll(ctx context.Context, sessionID int64) error {
	pending, err := s.reminders.ListPendingBySession(ctx, sessionID)
	if err != nil {
		return err
	}
	for _, reminder := range pending {
		if err := s.transport.Cancel(ctx, reminder.DeliveryHandle); err != nil {
			return fmt.Errorf("cancel reminder %d: %w", reminder.ID, err)
		}
	}
	if _, err := s.reminders.CancelBySession(ctx, sessionID); err != nil {
		return err
	}
	return nil
}

// Reschedule replaces a session's reminder set wholesale. Partial updates
// would risk duplicate or stale reminders, so the old set always goes first.
func (s *ReminderScheduler) Reschedule(
	ctx context.Context,
	session *models.Session,
) ([]models.Reminder, error) {
	if err := s.CancelAll(ctx, session.ID); err != nil {
		return nil, err
	}
	return s.Schedule(ctx, session)
}
