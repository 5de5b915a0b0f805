package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/aylin-t/PeerSupportBack/internal/models"
	"github.com/aylin-t/PeerSupportBack/internal/repository"
)

var (
	testDBOnce sync.Once
	testDBPool *pgxpool.Pool
	testDBErr  error
)

func integrationTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	testDBOnce.Do(func() {
		_ = godotenv.Load(".env")
		_ = godotenv.Load(filepath.Join("..", "..", ".env"))

		dbURL := os.Getenv("DB_URL")
		if dbURL == "" {
			testDBErr = fmt.Errorf("DB_URL is not set")
			return
		}

		cfg, err := pgxpool.ParseConfig(dbURL)
		if err != nil {
			testDBErr = err
			return
		}

		testDBPool, testDBErr = pgxpool.NewWithConfig(context.Background(), cfg)
		if testDBErr != nil {
			return
		}
		testDBErr = testDBPool.Ping(context.Background())
	})

	if testDBErr != nil {
		t.Skipf("skipping integration test: %v", testDBErr)
	}
	return testDBPool
}

type integrationFixture struct {
	service   *BookingService
	processor *stubProcessor
	events    *stubEventPublisher
	transport *recordingTransport
}

func newIntegrationBookingService(pool *pgxpool.Pool) *integrationFixture {
	processor := &stubProcessor{}
	events := &stubEventPublisher{}
	transport := newRecordingTransport()

	service := NewBookingService(
		pool,
		repository.NewSessionRepository(pool),
		NewAvailabilityResolver(repository.NewSupporterRepository(pool)),
		NewReminderScheduler(repository.NewReminderRepository(pool), transport),
		processor,
		events,
		newStubCollector(),
		RefundPolicy{FullRefundHours: 24, NoRefundHours: 2},
	)
	return &integrationFixture{
		service:   service,
		processor: processor,
		events:    events,
		transport: transport,
	}
}

func allWeekAvailability() models.WeeklyAvailability {
	availability := models.WeeklyAvailability{}
	for day := time.Sunday; day <= time.Saturday; day++ {
		availability[day] = models.DaySchedule{
			Enabled: true,
			Windows: []models.TimeWindow{{Start: "09:00", End: "17:00"}},
		}
	}
	return availability
}

func createTestSupporter(t *testing.T, ctx context.Context, pool *pgxpool.Pool) int64 {
	t.Helper()

	userID := time.Now().UnixNano()
	_, err := pool.Exec(ctx, `
		INSERT INTO supporter_profiles
			(user_id, display_name, timezone, session_types, topics, availability, active, onboarding_complete)
		VALUES ($1, 'Test Supporter', 'UTC', '{chat,phone,video}', '{anxiety}', $2, TRUE, TRUE)
	`, userID, allWeekAvailability())
	if err != nil {
		t.Fatalf("insert supporter: %v", err)
	}
	return userID
}

func cleanupTestSupporter(t *testing.T, ctx context.Context, pool *pgxpool.Pool, userID int64) {
	t.Helper()

	if _, err := pool.Exec(ctx, `
		DELETE FROM reminders WHERE session_id IN (SELECT id FROM sessions WHERE supporter_id = $1)
	`, userID); err != nil {
		t.Errorf("cleanup reminders: %v", err)
	}
	if _, err := pool.Exec(ctx, `DELETE FROM sessions WHERE supporter_id = $1`, userID); err != nil {
		t.Errorf("cleanup sessions: %v", err)
	}
	if _, err := pool.Exec(ctx, `DELETE FROM supporter_profiles WHERE user_id = $1`, userID); err != nil {
		t.Errorf("cleanup supporter: %v", err)
	}
}

func TestBookingFlowPersistsConfirmedSession(t *testing.T) {
	ctx := context.Background()
	pool := integrationTestPool(t)
	f := newIntegrationBookingService(pool)

	supporterID := createTestSupporter(t, ctx, pool)
	t.Cleanup(func() { cleanupTestSupporter(t, ctx, pool, supporterID) })

	start := time.Date(2030, 6, 3, 10, 0, 0, 0, time.UTC)
	session, err := f.service.RequestBooking(ctx, 1, BookSessionInput{
		SupporterID:      supporterID,
		SessionType:      models.SessionTypeVideo,
		StartUTC:         start,
		PaymentMethodRef: "tok_visa",
	})
	if err != nil {
		t.Fatalf("RequestBooking: %v", err)
	}

	if session.Status != models.StatusConfirmed {
		t.Fatalf("expected confirmed, got %s", session.Status)
	}
	if session.PriceCents != 5000 || session.DurationMinutes != 60 {
		t.Fatalf("expected canonical video pricing, got %d cents / %d min", session.PriceCents, session.DurationMinutes)
	}
	if f.processor.chargeCalls != 1 {
		t.Fatalf("expected exactly one charge, got %d", f.processor.chargeCalls)
	}
	if got := len(f.transport.scheduled); got != 3 {
		t.Fatalf("expected 3 reminders armed, got %d", got)
	}
}

func TestBookingRejectsDoubleBookedSlot(t *testing.T) {
	ctx := context.Background()
	pool := integrationTestPool(t)
	f := newIntegrationBookingService(pool)

	supporterID := createTestSupporter(t, ctx, pool)
	t.Cleanup(func() { cleanupTestSupporter(t, ctx, pool, supporterID) })

	start := time.Date(2030, 6, 3, 14, 0, 0, 0, time.UTC)
	input := BookSessionInput{
		SupporterID:      supporterID,
		SessionType:      models.SessionTypeChat,
		StartUTC:         start,
		PaymentMethodRef: "tok_visa",
	}
	if _, err := f.service.RequestBooking(ctx, 1, input); err != nil {
		t.Fatalf("first RequestBooking: %v", err)
	}

	_, err := f.service.RequestBooking(ctx, 2, input)
	if !errors.Is(err, ErrSlotConflict) {
		t.Fatalf("expected ErrSlotConflict, got %v", err)
	}
	// The second client was charged before the write conflict surfaced; the
	// charge must have been compensated.
	if f.processor.refundCalls != 1 {
		t.Fatalf("expected one compensating refund, got %d", f.processor.refundCalls)
	}

	// An overlapping but not identical start must conflict too.
	overlapping := input
	overlapping.StartUTC = start.Add(-15 * time.Minute)
	if _, err := f.service.RequestBooking(ctx, 3, overlapping); !errors.Is(err, ErrSlotConflict) {
		t.Fatalf("expected overlap conflict, got %v", err)
	}
}

func TestCancellationFlowUpdatesRowAndDisarmsReminders(t *testing.T) {
	ctx := context.Background()
	pool := integrationTestPool(t)
	f := newIntegrationBookingService(pool)

	supporterID := createTestSupporter(t, ctx, pool)
	t.Cleanup(func() { cleanupTestSupporter(t, ctx, pool, supporterID) })

	session, err := f.service.RequestBooking(ctx, 1, BookSessionInput{
		SupporterID:      supporterID,
		SessionType:      models.SessionTypePhone,
		StartUTC:         time.Date(2030, 6, 4, 11, 0, 0, 0, time.UTC),
		PaymentMethodRef: "tok_visa",
	})
	if err != nil {
		t.Fatalf("RequestBooking: %v", err)
	}

	reason := "schedule clash"
	result, err := f.service.Cancel(ctx, session.ID, 1, "client", &reason)
	if err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if result.Session.Status != models.StatusCancelled {
		t.Fatalf("expected cancelled, got %s", result.Session.Status)
	}
	if result.Refund.Percentage != 100 {
		t.Fatalf("expected full refund far ahead of start, got %d%%", result.Refund.Percentage)
	}
	if got := len(f.transport.cancelled); got != 3 {
		t.Fatalf("expected 3 reminders disarmed, got %d", got)
	}

	// A second cancel must be rejected and must not refund again.
	refunds := f.processor.refundCalls
	if _, err := f.service.Cancel(ctx, session.ID, 1, "client", nil); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition on repeat cancel, got %v", err)
	}
	if f.processor.refundCalls != refunds {
		t.Fatal("repeat cancel must not issue another refund")
	}

	// The slot is free again after cancellation.
	if _, err := f.service.RequestBooking(ctx, 2, BookSessionInput{
		SupporterID:      supporterID,
		SessionType:      models.SessionTypePhone,
		StartUTC:         time.Date(2030, 6, 4, 11, 0, 0, 0, time.UTC),
		PaymentMethodRef: "tok_visa",
	}); err != nil {
		t.Fatalf("rebooking a cancelled slot: %v", err)
	}
}
