package repository

import (
	"context"

	"github.com/aylin-t/PeerSupportBack/internal/models"
)

type ClientProfileRepository struct {
	db DBTX
}

func NewClientProfileRepository(db DBTX) *ClientProfileRepository {
	return &ClientProfileRepository{db: db}
}

func (r *ClientProfileRepository) GetByUserID(
	ctx context.Context,
	userID int64,
) (*models.ClientProfile, error) {
	query := `
		SELECT id, user_id, display_name, timezone, preferred_session_types, topics,
			   created_at, updated_at
		FROM client_profiles
		WHERE user_id = $1
	`
	var profile models.ClientProfile
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&profile.ID,
		&profile.UserID,
		&profile.DisplayName,
		&profile.Timezone,
		&profile.PreferredSessionTypes,
		&profile.Topics,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *ClientProfileRepository) UpdatePreferences(
	ctx context.Context,
	userID int64,
	preferredSessionTypes []string,
	topics []string,
) (*models.ClientProfile, error) {
	query := `
		UPDATE client_profiles
		SET preferred_session_types = $2, topics = $3, updated_at = NOW()
		WHERE user_id = $1
		RETURNING id, user_id, display_name, timezone, preferred_session_types, topics,
				  created_at, updated_at
	`
	var profile models.ClientProfile
	err := r.db.QueryRow(ctx, query, userID, preferredSessionTypes, topics).Scan(
		&profile.ID,
		&profile.UserID,
		&profile.DisplayName,
		&profile.Timezone,
		&profile.PreferredSessionTypes,
		&profile.Topics,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &profile, nil
}
