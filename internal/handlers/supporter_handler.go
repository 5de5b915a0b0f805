package handlers

import (
	"context"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/aylin-t/PeerSupportBack/internal/models"
	"github.com/aylin-t/PeerSupportBack/internal/repository"
)

type supporterListRepository interface {
	List(ctx context.Context, filter repository.SupporterListFilter) ([]models.SupporterProfile, int, error)
}

type SupporterHandler struct {
	supporterRepo supporterListRepository
}

func NewSupporterHandler(supporterRepo supporterListRepository) *SupporterHandler {
	return &SupporterHandler{supporterRepo: supporterRepo}
}

func (h *SupporterHandler) ListSupporters(c *fiber.Ctx) error {
	page := 1
	if raw := strings.TrimSpace(c.Query("page")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "page must be a positive integer"})
		}
		page = parsed
	}

	limit := defaultPageLimit
	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 || parsed > maxPageLimit {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "limit must be between 1 and 50"})
		}
		limit = parsed
	}

	sessionType := strings.TrimSpace(c.Query("session_type"))
	if sessionType != "" && !models.SessionType(sessionType).Valid() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "session_type must be chat, phone or video"})
	}

	supporters, total, err := h.supporterRepo.List(c.Context(), repository.SupporterListFilter{
		SessionType: sessionType,
		Page:        page,
		Limit:       limit,
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to list supporters"})
	}

	return c.JSON(fiber.Map{
		"supporters": supporters,
		"pagination": buildPaginationMeta(page, limit, total),
	})
}
