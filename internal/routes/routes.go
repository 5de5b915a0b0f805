package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aylin-t/PeerSupportBack/internal/config"
	"github.com/aylin-t/PeerSupportBack/internal/handlers"
	"github.com/aylin-t/PeerSupportBack/internal/metrics"
	"github.com/aylin-t/PeerSupportBack/internal/middleware"
	"github.com/aylin-t/PeerSupportBack/internal/notify"
	"github.com/aylin-t/PeerSupportBack/internal/payments"
	"github.com/aylin-t/PeerSupportBack/internal/repository"
	"github.com/aylin-t/PeerSupportBack/internal/services"
)

// Notifier bundles the two messaging roles one broker connection serves.
type Notifier interface {
	notify.Transport
	notify.EventPublisher
}

func RegisterRoutes(
	app *fiber.App,
	cfg *config.Config,
	db *pgxpool.Pool,
	notifier Notifier,
	processor payments.Processor,
	collector *metrics.Collector,
) {
	supporterRepo := repository.NewSupporterRepository(db)
	clientProfileRepo := repository.NewClientProfileRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	reminderRepo := repository.NewReminderRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)

	resolver := services.NewAvailabilityResolver(supporterRepo)
	reminderScheduler := services.NewReminderScheduler(reminderRepo, notifier)
	bookingService := services.NewBookingService(
		db,
		sessionRepo,
		resolver,
		reminderScheduler,
		processor,
		notifier,
		collector,
		services.RefundPolicy{
			FullRefundHours: cfg.FullRefundHours,
			NoRefundHours:   cfg.NoRefundHours,
		},
	)
	reassignmentService := services.NewReassignmentService(
		supporterRepo,
		assignmentRepo,
		clientProfileRepo,
		collector,
	)

	supporterHandler := handlers.NewSupporterHandler(supporterRepo)
	clientHandler := handlers.NewClientHandler(clientProfileRepo)
	availabilityHandler := handlers.NewAvailabilityHandler(resolver, supporterRepo)
	sessionHandler := handlers.NewSessionHandler(bookingService)
	reassignmentHandler := handlers.NewReassignmentHandler(reassignmentService)

	api := app.Group("/api")
	authProtected := api.Group("/v1", middleware.AuthRequired(cfg.JWTSecret))

	supporters := authProtected.Group("/supporters")
	supporters.Get("", supporterHandler.ListSupporters)
	supporters.Put("/availability", availabilityHandler.ReplaceAvailability)
	supporters.Get("/:id/availability/dates", availabilityHandler.ListBookableDates)
	supporters.Get("/:id/availability/slots", availabilityHandler.ListSlots)

	sessions := authProtected.Group("/sessions")
	sessions.Post("/book", sessionHandler.BookSession)
	sessions.Get("", sessionHandler.ListSessions)
	sessions.Get("/:id", sessionHandler.GetSession)
	sessions.Post("/:id/cancel", sessionHandler.CancelSession)
	sessions.Post("/:id/complete", sessionHandler.CompleteSession)

	authProtected.Put("/clients/preferences", clientHandler.UpdatePreferences)
	authProtected.Post("/reassignment", reassignmentHandler.Reassign)
}
