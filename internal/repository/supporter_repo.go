package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/aylin-t/PeerSupportBack/internal/models"
)

const supporterColumns = `id, user_id, display_name, bio, timezone, session_types, topics,
		rating, active, availability, onboarding_complete, created_at, updated_at`

type SupporterListFilter struct {
	SessionType string
	Page        int
	Limit       int
}

type SupporterRepository struct {
	db DBTX
}

func NewSupporterRepository(db DBTX) *SupporterRepository {
	return &SupporterRepository{db: db}
}

func (r *SupporterRepository) GetByUserID(
	ctx context.Context,
	userID int64,
) (*models.SupporterProfile, error) {
	query := fmt.Sprintf(`SELECT %s FROM supporter_profiles WHERE user_id = $1`, supporterColumns)
	return scanSupporter(r.db.QueryRow(ctx, query, userID))
}

// List returns active supporters, optionally filtered by offered session
// type, with a total count for pagination.
func (r *SupporterRepository) List(
	ctx context.Context,
	filter SupporterListFilter,
) ([]models.SupporterProfile, int, error) {
	args := []any{}
	whereParts := []string{"active = TRUE", "onboarding_complete = TRUE"}

	if sessionType := strings.TrimSpace(filter.SessionType); sessionType != "" {
		args = append(args, sessionType)
		whereParts = append(whereParts, fmt.Sprintf("$%d = ANY(session_types)", len(args)))
	}

	where := strings.Join(whereParts, " AND ")

	var total int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM supporter_profiles WHERE %s`, where)
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 10
	}
	offset := 0
	if filter.Page > 1 {
		offset = (filter.Page - 1) * limit
	}
	args = append(args, limit, offset)

	query := fmt.Sprintf(`
		SELECT %s
		FROM supporter_profiles
		WHERE %s
		ORDER BY rating DESC NULLS LAST, id ASC
		LIMIT $%d OFFSET $%d
	`, supporterColumns, where, len(args)-1, len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	profiles := make([]models.SupporterProfile, 0)
	for rows.Next() {
		profile, err := scanSupporter(rows)
		if err != nil {
			return nil, 0, err
		}
		profiles = append(profiles, *profile)
	}
	return profiles, total, rows.Err()
}

// ListActive returns every bookable supporter, for reassignment search.
func (r *SupporterRepository) ListActive(ctx context.Context) ([]models.SupporterProfile, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM supporter_profiles
		WHERE active = TRUE AND onboarding_complete = TRUE
		ORDER BY id ASC
	`, supporterColumns)

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	profiles := make([]models.SupporterProfile, 0)
	for rows.Next() {
		profile, err := scanSupporter(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, *profile)
	}
	return profiles, rows.Err()
}

// ReplaceAvailability swaps the supporter's whole weekly schedule in one
// write. Readers always see either the old or the new snapshot, never a
// half-updated one.
func (r *SupporterRepository) ReplaceAvailability(
	ctx context.Context,
	userID int64,
	availability models.WeeklyAvailability,
) (*models.SupporterProfile, error) {
	query := fmt.Sprintf(`
		UPDATE supporter_profiles
		SET availability = $2, updated_at = NOW()
		WHERE user_id = $1
		RETURNING %s
	`, supporterColumns)
	return scanSupporter(r.db.QueryRow(ctx, query, userID, availability))
}

type supporterScanner interface {
	Scan(dest ...any) error
}

func scanSupporter(row supporterScanner) (*models.SupporterProfile, error) {
	var profile models.SupporterProfile
	err := row.Scan(
		&profile.ID,
		&profile.UserID,
		&profile.DisplayName,
		&profile.Bio,
		&profile.Timezone,
		&profile.SessionTypes,
		&profile.Topics,
		&profile.Rating,
		&profile.Active,
		&profile.Availability,
		&profile.OnboardingComplete,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &profile, nil
}
