package handlers

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/aylin-t/PeerSupportBack/internal/models"
	"github.com/aylin-t/PeerSupportBack/internal/services"
)

type reassignmentService interface {
	Reassign(ctx context.Context, clientID int64, input services.ReassignmentInput) (*models.Assignment, error)
}

type ReassignmentHandler struct {
	service reassignmentService
}

func NewReassignmentHandler(service *services.ReassignmentService) *ReassignmentHandler {
	return &ReassignmentHandler{service: service}
}

type reassignmentRequest struct {
	PreferredSessionTypes []string `json:"preferred_session_types"`
	Topics                []string `json:"topics"`
}

func (h *ReassignmentHandler) Reassign(c *fiber.Ctx) error {
	role, ok := c.Locals("role").(string)
	if !ok || role != "client" {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}

	clientID, err := parseActorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	var req reassignmentRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
		}
	}

	assignment, err := h.service.Reassign(c.Context(), clientID, services.ReassignmentInput{
		PreferredSessionTypes: req.PreferredSessionTypes,
		Topics:                req.Topics,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidInput):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "No session type preferences to match on"})
		case errors.Is(err, services.ErrNoMatchFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "No supporter matches your preferences right now"})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to find a new supporter"})
		}
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"assignment": assignment})
}
