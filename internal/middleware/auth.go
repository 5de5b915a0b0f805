package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/aylin-t/PeerSupportBack/pkg/utils"
)

// AuthRequired validates the bearer token and stores the caller's identity
// in request locals. The marketplace knows exactly two roles; a token minted
// with anything else never gets past here, so handlers only have to decide
// between client and supporter.
func AuthRequired(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok := bearerToken(c.Get("Authorization"))
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Missing or malformed authorization header",
			})
		}

		claims, err := utils.ValidateToken(token, secret)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid or expired token",
			})
		}
		if claims.Role != "client" && claims.Role != "supporter" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Unknown role",
			})
		}

		c.Locals("user_id", claims.UserID)
		c.Locals("role", claims.Role)

		return c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	token, found := strings.CutPrefix(header, "Bearer ")
	if !found || token == "" {
		return "", false
	}
	return token, true
}
