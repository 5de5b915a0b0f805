package handlers

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/aylin-t/PeerSupportBack/internal/models"
)

type clientPreferencesWriter interface {
	UpdatePreferences(ctx context.Context, userID int64, preferredSessionTypes []string, topics []string) (*models.ClientProfile, error)
}

type ClientHandler struct {
	clients clientPreferencesWriter
}

func NewClientHandler(clients clientPreferencesWriter) *ClientHandler {
	return &ClientHandler{clients: clients}
}

type updatePreferencesRequest struct {
	PreferredSessionTypes []string `json:"preferred_session_types"`
	Topics                []string `json:"topics"`
}

// UpdatePreferences replaces the client's matching preferences. Reassignment
// falls back to these when a request carries none of its own.
func (h *ClientHandler) UpdatePreferences(c *fiber.Ctx) error {
	role, ok := c.Locals("role").(string)
	if !ok || role != "client" {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}

	clientID, err := parseActorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	var req updatePreferencesRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	for _, sessionType := range req.PreferredSessionTypes {
		if !models.SessionType(strings.TrimSpace(sessionType)).Valid() {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Unknown session type: " + sessionType})
		}
	}

	profile, err := h.clients.UpdatePreferences(c.Context(), clientID, req.PreferredSessionTypes, req.Topics)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Client profile not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update preferences"})
	}

	return c.JSON(fiber.Map{"profile": profile})
}
