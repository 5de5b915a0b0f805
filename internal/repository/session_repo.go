package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aylin-t/PeerSupportBack/internal/models"
)

const sessionColumns = `id, client_id, supporter_id, session_type, scheduled_at, duration_min,
		price_cents, status, cancelled_by, cancellation_reason, refund_cents, charge_ref,
		created_at, updated_at`

type CreateSessionInput struct {
	ClientID        int64
	SupporterID     int64
	SessionType     models.SessionType
	ScheduledAt     time.Time
	DurationMinutes int
	PriceCents      int64
	Status          models.SessionStatus
	ChargeRef       *string
}

type SessionListFilter struct {
	ActorID   int64
	Role      string
	Status    string
	Timeframe string
}

type SessionRepository struct {
	db DBTX
}

func NewSessionRepository(db DBTX) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) Create(
	ctx context.Context,
	input CreateSessionInput,
) (*models.Session, error) {
	query := fmt.Sprintf(`
		INSERT INTO sessions (client_id, supporter_id, session_type, scheduled_at, duration_min,
			price_cents, status, cancelled_by, charge_ref)
		VALUES ($1, $2, $3, $4, $5, $6, $7, 'none', $8)
		RETURNING %s
	`, sessionColumns)

	row := r.db.QueryRow(
		ctx,
		query,
		input.ClientID,
		input.SupporterID,
		input.SessionType,
		input.ScheduledAt,
		input.DurationMinutes,
		input.PriceCents,
		input.Status,
		input.ChargeRef,
	)
	return scanSession(row)
}

func (r *SessionRepository) GetByID(ctx context.Context, sessionID int64) (*models.Session, error) {
	query := fmt.Sprintf(`SELECT %s FROM sessions WHERE id = $1`, sessionColumns)
	return scanSession(r.db.QueryRow(ctx, query, sessionID))
}

func (r *SessionRepository) List(
	ctx context.Context,
	filter SessionListFilter,
) ([]models.Session, error) {
	actorColumn := "client_id"
	if filter.Role == "supporter" {
		actorColumn = "supporter_id"
	}

	args := []any{filter.ActorID}
	whereParts := []string{fmt.Sprintf("%s = $1", actorColumn)}

	if status := strings.TrimSpace(filter.Status); status != "" {
		args = append(args, status)
		whereParts = append(whereParts, fmt.Sprintf("status = $%d", len(args)))
	}

	switch strings.TrimSpace(filter.Timeframe) {
	case "upcoming":
		whereParts = append(
			whereParts,
			"(scheduled_at + (duration_min * INTERVAL '1 minute')) > NOW()",
		)
	case "past":
		whereParts = append(
			whereParts,
			"(scheduled_at + (duration_min * INTERVAL '1 minute')) <= NOW()",
		)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM sessions
		WHERE %s
		ORDER BY scheduled_at ASC, id ASC
	`, sessionColumns, strings.Join(whereParts, " AND "))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sessions := make([]models.Session, 0)
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *session)
	}
	return sessions, rows.Err()
}

// UpdateStatusIfCurrent is the conditional write that keeps transitions
// monotonic: it only succeeds if the row still carries currentStatus.
func (r *SessionRepository) UpdateStatusIfCurrent(
	ctx context.Context,
	sessionID int64,
	currentStatus models.SessionStatus,
	nextStatus models.SessionStatus,
) (*models.Session, error) {
	query := fmt.Sprintf(`
		UPDATE sessions
		SET status = $3, updated_at = NOW()
		WHERE id = $1 AND status = $2
		RETURNING %s
	`, sessionColumns)
	return scanSession(r.db.QueryRow(ctx, query, sessionID, currentStatus, nextStatus))
}

// CancelIfCurrent transitions a session to cancelled and records the refund
// outcome in the same conditional write.
func (r *SessionRepository) CancelIfCurrent(
	ctx context.Context,
	sessionID int64,
	currentStatus models.SessionStatus,
	actor models.CancelActor,
	reason *string,
	refundCents int64,
) (*models.Session, error) {
	query := fmt.Sprintf(`
		UPDATE sessions
		SET status = 'cancelled', cancelled_by = $3, cancellation_reason = $4,
			refund_cents = $5, updated_at = NOW()
		WHERE id = $1 AND status = $2
		RETURNING %s
	`, sessionColumns)
	return scanSession(r.db.QueryRow(ctx, query, sessionID, currentStatus, actor, reason, refundCents))
}

// HasConflict reports whether any non-cancelled session for the supporter
// overlaps [requestedTime, requestedTime+duration).
func (r *SessionRepository) HasConflict(
	ctx context.Context,
	supporterID int64,
	requestedTime time.Time,
	durationMinutes int,
) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1
			FROM sessions
			WHERE supporter_id = $1
			  AND status <> 'cancelled'
			  AND scheduled_at < ($2::timestamptz + ($3::int * INTERVAL '1 minute'))
			  AND (scheduled_at + (duration_min * INTERVAL '1 minute')) > $2::timestamptz
		)
	`
	var hasConflict bool
	if err := r.db.QueryRow(ctx, query, supporterID, requestedTime, durationMinutes).Scan(&hasConflict); err != nil {
		return false, err
	}
	return hasConflict, nil
}

type sessionScanner interface {
	Scan(dest ...any) error
}

func scanSession(row sessionScanner) (*models.Session, error) {
	var session models.Session
	err := row.Scan(
		&session.ID,
		&session.ClientID,
		&session.SupporterID,
		&session.SessionType,
		&session.ScheduledAt,
		&session.DurationMinutes,
		&session.PriceCents,
		&session.Status,
		&session.CancelledBy,
		&session.CancellationReason,
		&session.RefundCents,
		&session.ChargeRef,
		&session.CreatedAt,
		&session.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &session, nil
}
