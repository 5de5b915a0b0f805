package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/aylin-t/PeerSupportBack/internal/models"
)

const (
	defaultPageLimit = 10
	maxPageLimit     = 50
)

func buildPaginationMeta(page, limit, total int) models.PaginationMeta {
	totalPages := 0
	if total > 0 {
		totalPages = (total + limit - 1) / limit
	}

	return models.PaginationMeta{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
	}
}

func parseActorID(c *fiber.Ctx) (int64, error) {
	actorIDValue := c.Locals("user_id")
	actorIDStr, ok := actorIDValue.(string)
	if !ok {
		return 0, strconv.ErrSyntax
	}
	return strconv.ParseInt(actorIDStr, 10, 64)
}
