package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aylin-t/PeerSupportBack/internal/models"
	"github.com/aylin-t/PeerSupportBack/internal/notify"
	"github.com/aylin-t/PeerSupportBack/internal/payments"
	"github.com/aylin-t/PeerSupportBack/internal/repository"
)

var (
	ErrForbidden            = errors.New("forbidden")
	ErrInvalidInput         = errors.New("invalid input")
	ErrSlotConflict         = errors.New("slot no longer available")
	ErrPaymentFailed        = errors.New("payment failed")
	ErrRefundIssuanceFailed = errors.New("refund issuance failed")
	ErrInvalidTransition    = errors.New("invalid state transition")
)

type slotValidator interface {
	SlotAvailable(ctx context.Context, supporterID int64, sessionType models.SessionType, startUTC time.Time) (bool, error)
}

type sessionStore interface {
	GetByID(ctx context.Context, id int64) (*models.Session, error)
	List(ctx context.Context, filter repository.SessionListFilter) ([]models.Session, error)
	UpdateStatusIfCurrent(ctx context.Context, id int64, current, next models.SessionStatus) (*models.Session, error)
	CancelIfCurrent(ctx context.Context, id int64, current models.SessionStatus, actor models.CancelActor, reason *string, refundCents int64) (*models.Session, error)
}

type reminderManager interface {
	Schedule(ctx context.Context, session *models.Session) ([]models.Reminder, error)
	CancelAll(ctx context.Context, sessionID int64) error
}

type bookingMetrics interface {
	RecordBooking(result string)
	RecordCancellation(actor string)
	RecordRefundFailure()
	RecordRemindersArmed(count int)
}

// BookingService owns the session lifecycle: it validates a requested slot,
// charges the client, persists the session, arms reminders, and unwinds all
// of that on cancellation. The session-row write is the single serialization
// point for double-booking; the resolver check before it is advisory only.
type BookingService struct {
	db          *pgxpool.Pool
	sessionRepo sessionStore
	resolver    slotValidator
	reminders   reminderManager
	processor   payments.Processor
	events      notify.EventPublisher
	collector   bookingMetrics
	policy      RefundPolicy
	now         func() time.Time
	persist     func(ctx context.Context, clientID int64, input BookSessionInput, startUTC time.Time, priceCents int64, chargeRef string) (*models.Session, error)
}

func NewBookingService(
	db *pgxpool.Pool,
	sessionRepo sessionStore,
	resolver slotValidator,
	reminders reminderManager,
	processor payments.Processor,
	events notify.EventPublisher,
	collector bookingMetrics,
	policy RefundPolicy,
) *BookingService {
	svc := &BookingService{
		db:          db,
		sessionRepo: sessionRepo,
		resolver:    resolver,
		reminders:   reminders,
		processor:   processor,
		events:      events,
		collector:   collector,
		policy:      policy,
		now:         time.Now,
	}
	svc.persist = svc.persistConfirmed
	return svc
}

type BookSessionInput struct {
	SupporterID      int64
	SessionType      models.SessionType
	StartUTC         time.Time
	PaymentMethodRef string
}

// RequestBooking books a session for clientID at the chosen slot. The charge
// is captured synchronously before the session row exists; a write-time
// conflict therefore compensates by refunding the captured charge before
// reporting the conflict.
func (s *BookingService) RequestBooking(
	ctx context.Context,
	clientID int64,
	input BookSessionInput,
) (*models.Session, error) {
	if input.SupporterID <= 0 || !input.SessionType.Valid() || input.PaymentMethodRef == "" {
		return nil, ErrInvalidInput
	}
	if clientID == input.SupporterID {
		return nil, ErrInvalidInput
	}
	if !input.StartUTC.After(s.now()) {
		return nil, ErrInvalidInput
	}

	startUTC := input.StartUTC.UTC()
	available, err := s.resolver.SlotAvailable(ctx, input.SupporterID, input.SessionType, startUTC)
	if err != nil {
		return nil, err
	}
	if !available {
		s.collector.RecordBooking("slot_conflict")
		return nil, ErrSlotConflict
	}

	priceCents := input.SessionType.PriceCents()
	charge, err := s.processor.Charge(ctx, priceCents, input.PaymentMethodRef, map[string]any{
		"client_id":    clientID,
		"supporter_id": input.SupporterID,
		"session_type": string(input.SessionType),
		"scheduled_at": startUTC.Format(time.RFC3339),
	})
	if err != nil {
		s.collector.RecordBooking("payment_failed")
		return nil, fmt.Errorf("%w: %v", ErrPaymentFailed, err)
	}

	session, err := s.persist(ctx, clientID, input, startUTC, priceCents, charge.ChargeRef)
	if err != nil {
		// The charge is already captured; whatever stopped the session row
		// from landing, the money must go back.
		s.compensateCharge(ctx, charge.ChargeRef, priceCents)
		if errors.Is(err, ErrSlotConflict) {
			s.collector.RecordBooking("slot_conflict")
		} else {
			s.collector.RecordBooking("persist_failed")
		}
		return nil, err
	}

	if reminders, err := s.reminders.Schedule(ctx, session); err != nil {
		// The booking stands; missing reminders are an operational issue,
		// not a booking failure.
		log.Printf("schedule reminders for session %d: %v", session.ID, err)
	} else {
		s.collector.RecordRemindersArmed(len(reminders))
	}

	s.collector.RecordBooking("confirmed")
	return session, nil
}

func (s *BookingService) persistConfirmed(
	ctx context.Context,
	clientID int64,
	input BookSessionInput,
	startUTC time.Time,
	priceCents int64,
	chargeRef string,
) (*models.Session, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	txSessionRepo := repository.NewSessionRepository(tx)

	if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock($1)", input.SupporterID); err != nil {
		return nil, err
	}

	hasConflict, err := txSessionRepo.HasConflict(
		ctx,
		input.SupporterID,
		startUTC,
		input.SessionType.DurationMinutes(),
	)
	if err != nil {
		return nil, err
	}
	if hasConflict {
		return nil, ErrSlotConflict
	}

	session, err := txSessionRepo.Create(ctx, repository.CreateSessionInput{
		ClientID:        clientID,
		SupporterID:     input.SupporterID,
		SessionType:     input.SessionType,
		ScheduledAt:     startUTC,
		DurationMinutes: input.SessionType.DurationMinutes(),
		PriceCents:      priceCents,
		Status:          models.StatusConfirmed,
		ChargeRef:       &chargeRef,
	})
	if err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, ErrSlotConflict
		}
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *BookingService) compensateCharge(ctx context.Context, chargeRef string, amountCents int64) {
	if err := s.processor.Refund(ctx, chargeRef, amountCents); err != nil {
		s.collector.RecordRefundFailure()
		s.publishReconciliation(ctx, 0, chargeRef, amountCents, "compensating refund after failed booking persist")
	}
}

type CancellationResult struct {
	Session *models.Session `json:"session"`
	Refund  RefundBreakdown `json:"refund"`
	// RefundIssued is false when the processor rejected the refund even
	// though the session is already cancelled; the amount is then queued
	// for manual reconciliation.
	RefundIssued bool `json:"refund_issued"`
}

// Cancel transitions a requested or confirmed session to cancelled,
// computes and issues the tiered refund, and disarms the session's
// reminders. A refund the processor fails to issue never blocks the
// transition: the session is cancelled from the user's perspective and the
// failure is surfaced for reconciliation.
func (s *BookingService) Cancel(
	ctx context.Context,
	sessionID int64,
	actorID int64,
	role string,
	reason *string,
) (*CancellationResult, error) {
	actor, err := cancelActorForRole(role)
	if err != nil {
		return nil, err
	}

	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !canAccessSession(role, actorID, session) {
		return nil, ErrForbidden
	}
	if !session.Status.CanTransitionTo(models.StatusCancelled) {
		return nil, ErrInvalidTransition
	}

	refund := ComputeRefund(s.policy, session.PriceCents, session.ScheduledAt, s.now(), actor)

	cancelled, err := s.sessionRepo.CancelIfCurrent(
		ctx,
		sessionID,
		session.Status,
		actor,
		reason,
		refund.AmountCents,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidTransition
		}
		return nil, err
	}

	if err := s.reminders.CancelAll(ctx, sessionID); err != nil {
		log.Printf("cancel reminders for session %d: %v", sessionID, err)
	}

	refundIssued := true
	if refund.AmountCents > 0 && cancelled.ChargeRef != nil {
		if err := s.processor.Refund(ctx, *cancelled.ChargeRef, refund.AmountCents); err != nil {
			refundIssued = false
			issueErr := fmt.Errorf("%w: %v", ErrRefundIssuanceFailed, err)
			log.Printf("session %d: %v", sessionID, issueErr)
			s.collector.RecordRefundFailure()
			s.publishReconciliation(ctx, sessionID, *cancelled.ChargeRef, refund.AmountCents, issueErr.Error())
		}
	}

	s.publishCancellation(ctx, cancelled, actor, refund)
	s.collector.RecordCancellation(string(actor))

	return &CancellationResult{
		Session:      cancelled,
		Refund:       refund,
		RefundIssued: refundIssued,
	}, nil
}

// Complete marks a confirmed session completed. Only the session's
// supporter may do so, and only once the scheduled end has passed.
func (s *BookingService) Complete(
	ctx context.Context,
	sessionID int64,
	actorID int64,
	role string,
) (*models.Session, error) {
	if role != "supporter" {
		return nil, ErrForbidden
	}

	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.SupporterID != actorID {
		return nil, ErrForbidden
	}
	if !session.Status.CanTransitionTo(models.StatusCompleted) {
		return nil, ErrInvalidTransition
	}
	if session.EndsAt().After(s.now()) {
		return nil, ErrInvalidTransition
	}

	updated, err := s.sessionRepo.UpdateStatusIfCurrent(
		ctx,
		sessionID,
		session.Status,
		models.StatusCompleted,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidTransition
		}
		return nil, err
	}
	return updated, nil
}

func (s *BookingService) ListSessions(
	ctx context.Context,
	actorID int64,
	role string,
	filter repository.SessionListFilter,
) ([]models.Session, error) {
	return s.sessionRepo.List(ctx, repository.SessionListFilter{
		ActorID:   actorID,
		Role:      role,
		Status:    filter.Status,
		Timeframe: filter.Timeframe,
	})
}

func (s *BookingService) GetSession(
	ctx context.Context,
	actorID int64,
	role string,
	sessionID int64,
) (*models.Session, error) {
	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !canAccessSession(role, actorID, session) {
		return nil, ErrForbidden
	}
	return session, nil
}

func (s *BookingService) publishCancellation(
	ctx context.Context,
	session *models.Session,
	actor models.CancelActor,
	refund RefundBreakdown,
) {
	notifyUserID := session.SupporterID
	if actor == models.CancelledBySupporter {
		notifyUserID = session.ClientID
	}
	reason := ""
	if session.CancellationReason != nil {
		reason = *session.CancellationReason
	}
	event := notify.CancellationEvent{
		EventID:      uuid.NewString(),
		SessionID:    session.ID,
		CancelledBy:  string(actor),
		NotifyUserID: notifyUserID,
		RefundCents:  refund.AmountCents,
		Reason:       reason,
	}
	if err := s.events.PublishCancellation(ctx, event); err != nil {
		log.Printf("publish cancellation for session %d: %v", session.ID, err)
	}
}

func (s *BookingService) publishReconciliation(
	ctx context.Context,
	sessionID int64,
	chargeRef string,
	amountCents int64,
	cause string,
) {
	event := notify.RefundReconciliationEvent{
		EventID:     uuid.NewString(),
		SessionID:   sessionID,
		ChargeRef:   chargeRef,
		AmountCents: amountCents,
		Cause:       cause,
	}
	if err := s.events.PublishRefundReconciliation(ctx, event); err != nil {
		log.Printf("publish refund reconciliation for charge %s: %v", chargeRef, err)
	}
}

func cancelActorForRole(role string) (models.CancelActor, error) {
	switch role {
	case "client":
		return models.CancelledByClient, nil
	case "supporter":
		return models.CancelledBySupporter, nil
	default:
		return models.CancelledByNone, ErrForbidden
	}
}

func canAccessSession(role string, actorID int64, session *models.Session) bool {
	if role == "client" {
		return session.ClientID == actorID
	}
	if role == "supporter" {
		return session.SupporterID == actorID
	}
	return false
}
