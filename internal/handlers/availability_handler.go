package handlers

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/aylin-t/PeerSupportBack/internal/models"
	"github.com/aylin-t/PeerSupportBack/internal/services"
)

const defaultHorizonDays = 14

type availabilityResolver interface {
	ListBookableDates(ctx context.Context, supporterID int64, horizonDays int) ([]time.Time, error)
	ListSlots(ctx context.Context, supporterID int64, date time.Time, sessionType models.SessionType) ([]models.TimeSlot, error)
}

type availabilityWriter interface {
	ReplaceAvailability(ctx context.Context, userID int64, availability models.WeeklyAvailability) (*models.SupporterProfile, error)
}

type AvailabilityHandler struct {
	resolver      availabilityResolver
	supporterRepo availabilityWriter
}

func NewAvailabilityHandler(
	resolver availabilityResolver,
	supporterRepo availabilityWriter,
) *AvailabilityHandler {
	return &AvailabilityHandler{resolver: resolver, supporterRepo: supporterRepo}
}

func (h *AvailabilityHandler) ListBookableDates(c *fiber.Ctx) error {
	supporterID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || supporterID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid supporter id"})
	}

	horizonDays := defaultHorizonDays
	if raw := strings.TrimSpace(c.Query("horizon_days")); raw != "" {
		horizonDays, err = strconv.Atoi(raw)
		if err != nil || horizonDays <= 0 || horizonDays > 90 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "horizon_days must be between 1 and 90"})
		}
	}

	dates, err := h.resolver.ListBookableDates(c.Context(), supporterID, horizonDays)
	if err != nil {
		return mapAvailabilityError(c, err)
	}

	formatted := make([]string, 0, len(dates))
	for _, date := range dates {
		formatted = append(formatted, date.Format("2006-01-02"))
	}
	return c.JSON(fiber.Map{"dates": formatted})
}

func (h *AvailabilityHandler) ListSlots(c *fiber.Ctx) error {
	supporterID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || supporterID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid supporter id"})
	}

	date, err := time.Parse("2006-01-02", strings.TrimSpace(c.Query("date")))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "date must be YYYY-MM-DD"})
	}

	sessionType := models.SessionType(strings.TrimSpace(c.Query("session_type")))
	if !sessionType.Valid() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "session_type must be chat, phone or video"})
	}

	slots, err := h.resolver.ListSlots(c.Context(), supporterID, date, sessionType)
	if err != nil {
		return mapAvailabilityError(c, err)
	}

	return c.JSON(fiber.Map{"slots": slots})
}

type replaceAvailabilityRequest struct {
	Availability map[string]models.DaySchedule `json:"availability"`
}

var weekdayNames = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

func (h *AvailabilityHandler) ReplaceAvailability(c *fiber.Ctx) error {
	role, ok := c.Locals("role").(string)
	if !ok || role != "supporter" {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}

	supporterID, err := parseActorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	var req replaceAvailabilityRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	availability := make(models.WeeklyAvailability, len(req.Availability))
	for name, schedule := range req.Availability {
		weekday, ok := weekdayNames[strings.ToLower(strings.TrimSpace(name))]
		if !ok {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Unknown weekday: " + name})
		}
		availability[weekday] = schedule
	}
	if err := availability.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	profile, err := h.supporterRepo.ReplaceAvailability(c.Context(), supporterID, availability)
	if err != nil {
		return mapAvailabilityError(c, err)
	}

	return c.JSON(fiber.Map{"profile": profile})
}

func mapAvailabilityError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrSupporterNotFound), errors.Is(err, pgx.ErrNoRows):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Supporter not found"})
	case errors.Is(err, services.ErrUnknownTimezone):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "Supporter timezone is invalid"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to resolve availability"})
	}
}
