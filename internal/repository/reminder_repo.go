package repository

import (
	"context"

	"github.com/aylin-t/PeerSupportBack/internal/models"
)

type ReminderRepository struct {
	db DBTX
}

func NewReminderRepository(db DBTX) *ReminderRepository {
	return &ReminderRepository{db: db}
}

func (r *ReminderRepository) Create(
	ctx context.Context,
	reminder models.Reminder,
) (*models.Reminder, error) {
	query := `
		INSERT INTO reminders (session_id, offset_minutes, fire_at, status, delivery_handle)
		VALUES ($1, $2, $3, 'pending', $4)
		RETURNING id, session_id, offset_minutes, fire_at, status, delivery_handle, created_at
	`
	var created models.Reminder
	err := r.db.QueryRow(
		ctx,
		query,
		reminder.SessionID,
		reminder.OffsetMinutes,
		reminder.FireAt,
		reminder.DeliveryHandle,
	).Scan(
		&created.ID,
		&created.SessionID,
		&created.OffsetMinutes,
		&created.FireAt,
		&created.Status,
		&created.DeliveryHandle,
		&created.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (r *ReminderRepository) ListPendingBySession(
	ctx context.Context,
	sessionID int64,
) ([]models.Reminder, error) {
	query := `
		SELECT id, session_id, offset_minutes, fire_at, status, delivery_handle, created_at
		FROM reminders
		WHERE session_id = $1 AND status = 'pending'
		ORDER BY fire_at ASC
	`
	rows, err := r.db.Query(ctx, query, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reminders := make([]models.Reminder, 0)
	for rows.Next() {
		var reminder models.Reminder
		if err := rows.Scan(
			&reminder.ID,
			&reminder.SessionID,
			&reminder.OffsetMinutes,
			&reminder.FireAt,
			&reminder.Status,
			&reminder.DeliveryHandle,
			&reminder.CreatedAt,
		); err != nil {
			return nil, err
		}
		reminders = append(reminders, reminder)
	}
	return reminders, rows.Err()
}

// CancelBySession marks every pending reminder of one session cancelled and
// returns how many rows changed. Zero rows is a legitimate outcome, not an
// error: cancellation must be idempotent.
func (r *ReminderRepository) CancelBySession(ctx context.Context, sessionID int64) (int64, error) {
	query := `
		UPDATE reminders
		SET status = 'cancelled'
		WHERE session_id = $1 AND status = 'pending'
	`
	tag, err := r.db.Exec(ctx, query, sessionID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
