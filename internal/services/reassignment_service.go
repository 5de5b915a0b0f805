package services

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/aylin-t/PeerSupportBack/internal/models"
	"github.com/aylin-t/PeerSupportBack/internal/repository"
)

var ErrNoMatchFound = errors.New("no matching supporter found")

// Candidates must have at least one bookable date inside this window to be
// considered schedulable.
const reassignmentHorizonDays = 14

type supporterLister interface {
	ListActive(ctx context.Context) ([]models.SupporterProfile, error)
}

type assignmentStore interface {
	Create(ctx context.Context, input repository.CreateAssignmentInput) (*models.Assignment, error)
	GetCurrentByClient(ctx context.Context, clientID int64) (*models.Assignment, error)
}

type clientProfileReader interface {
	GetByUserID(ctx context.Context, userID int64) (*models.ClientProfile, error)
}

type reassignmentMetrics interface {
	RecordReassignment(result string)
}

// ReassignmentService re-pairs a client with a new supporter based on
// preference overlap. It reuses the resolver's date math to drop candidates
// with no bookable schedule; it never touches existing sessions.
type ReassignmentService struct {
	supporters  supporterLister
	assignments assignmentStore
	clients     clientProfileReader
	collector   reassignmentMetrics
	now         func() time.Time
}

func NewReassignmentService(
	supporters supporterLister,
	assignments assignmentStore,
	clients clientProfileReader,
	collector reassignmentMetrics,
) *ReassignmentService {
	return &ReassignmentService{
		supporters:  supporters,
		assignments: assignments,
		clients:     clients,
		collector:   collector,
		now:         time.Now,
	}
}

type ReassignmentInput struct {
	PreferredSessionTypes []string
	Topics                []string
}

// Reassign finds the best-matching supporter for the client's updated
// preferences and records the new pairing. The previous supporter is never
// a candidate. No match leaves no side effects.
func (s *ReassignmentService) Reassign(
	ctx context.Context,
	clientID int64,
	input ReassignmentInput,
) (*models.Assignment, error) {
	profile, err := s.clients.GetByUserID(ctx, clientID)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	preferredTypes := input.PreferredSessionTypes
	topics := input.Topics
	if profile != nil {
		if len(preferredTypes) == 0 {
			preferredTypes = profile.PreferredSessionTypes
		}
		if len(topics) == 0 {
			topics = profile.Topics
		}
	}
	if len(preferredTypes) == 0 {
		return nil, ErrInvalidInput
	}

	var previousSupporterID *int64
	current, err := s.assignments.GetCurrentByClient(ctx, clientID)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	if current != nil {
		previousSupporterID = &current.SupporterID
	}

	candidates, err := s.supporters.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	scored := s.rankCandidates(candidates, clientID, previousSupporterID, preferredTypes, topics)
	if len(scored) == 0 {
		s.collector.RecordReassignment("no_match")
		return nil, ErrNoMatchFound
	}

	best := scored[0]
	assignment, err := s.assignments.Create(ctx, repository.CreateAssignmentInput{
		ClientID:            clientID,
		SupporterID:         best.UserID,
		PreviousSupporterID: previousSupporterID,
		MatchScore:          best.MatchScore,
	})
	if err != nil {
		return nil, err
	}
	s.collector.RecordReassignment("matched")
	return assignment, nil
}

func (s *ReassignmentService) rankCandidates(
	candidates []models.SupporterProfile,
	clientID int64,
	previousSupporterID *int64,
	preferredTypes []string,
	topics []string,
) []models.SupporterWithScore {
	now := s.now()
	wantedTypes := normalizeSet(preferredTypes)
	wantedTopics := normalizeSet(topics)

	scored := make([]models.SupporterWithScore, 0, len(candidates))
	for _, candidate := range candidates {
		if candidate.UserID == clientID {
			continue
		}
		if previousSupporterID != nil && candidate.UserID == *previousSupporterID {
			continue
		}

		typeOverlap := overlapCount(wantedTypes, candidate.SessionTypes)
		if typeOverlap == 0 {
			continue
		}
		if !hasBookableSchedule(candidate, now) {
			continue
		}

		score := typeOverlap * 25
		score += overlapCount(wantedTopics, candidate.Topics) * 20
		if candidate.Rating != nil && *candidate.Rating > 4.0 {
			score += 15
		}

		scored = append(scored, models.SupporterWithScore{
			SupporterProfile: candidate,
			MatchScore:       score,
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].MatchScore == scored[j].MatchScore {
			return ratingValue(scored[i].Rating) > ratingValue(scored[j].Rating)
		}
		return scored[i].MatchScore > scored[j].MatchScore
	})
	return scored
}

func hasBookableSchedule(candidate models.SupporterProfile, now time.Time) bool {
	loc, err := time.LoadLocation(candidate.Timezone)
	if err != nil {
		return false
	}
	if candidate.Availability.IsEmpty() {
		// Unconstrained schedules pass date listing but offer no windows
		// to actually book, so they are not schedulable matches.
		return false
	}
	return len(BookableDates(candidate.Availability, loc, reassignmentHorizonDays, now)) > 0
}

func normalizeSet(values []string) map[string]struct{} {
	normalized := make(map[string]struct{}, len(values))
	for _, value := range values {
		if key := normalizeTag(value); key != "" {
			normalized[key] = struct{}{}
		}
	}
	return normalized
}

func overlapCount(wanted map[string]struct{}, offered []string) int {
	count := 0
	for _, value := range offered {
		if _, ok := wanted[normalizeTag(value)]; ok {
			count++
		}
	}
	return count
}

func normalizeTag(value string) string {
	value = strings.TrimSpace(strings.ToLower(value))
	value = strings.ReplaceAll(value, " ", "_")
	value = strings.ReplaceAll(value, "-", "_")
	return value
}

func ratingValue(rating *float64) float64 {
	if rating == nil {
		return 0
	}
	return *rating
}
