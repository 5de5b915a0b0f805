package repository

import (
	"context"

	"github.com/aylin-t/PeerSupportBack/internal/models"
)

type CreateAssignmentInput struct {
	ClientID            int64
	SupporterID         int64
	PreviousSupporterID *int64
	MatchScore          int
}

type AssignmentRepository struct {
	db DBTX
}

func NewAssignmentRepository(db DBTX) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

func (r *AssignmentRepository) Create(
	ctx context.Context,
	input CreateAssignmentInput,
) (*models.Assignment, error) {
	query := `
		INSERT INTO assignments (client_id, supporter_id, previous_supporter_id, match_score)
		VALUES ($1, $2, $3, $4)
		RETURNING id, client_id, supporter_id, previous_supporter_id, match_score, created_at
	`
	var assignment models.Assignment
	err := r.db.QueryRow(
		ctx,
		query,
		input.ClientID,
		input.SupporterID,
		input.PreviousSupporterID,
		input.MatchScore,
	).Scan(
		&assignment.ID,
		&assignment.ClientID,
		&assignment.SupporterID,
		&assignment.PreviousSupporterID,
		&assignment.MatchScore,
		&assignment.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &assignment, nil
}

// GetCurrentByClient returns the client's most recent assignment.
func (r *AssignmentRepository) GetCurrentByClient(
	ctx context.Context,
	clientID int64,
) (*models.Assignment, error) {
	query := `
		SELECT id, client_id, supporter_id, previous_supporter_id, match_score, created_at
		FROM assignments
		WHERE client_id = $1
		ORDER BY id DESC
		LIMIT 1
	`
	var assignment models.Assignment
	err := r.db.QueryRow(ctx, query, clientID).Scan(
		&assignment.ID,
		&assignment.ClientID,
		&assignment.SupporterID,
		&assignment.PreviousSupporterID,
		&assignment.MatchScore,
		&assignment.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &assignment, nil
}
