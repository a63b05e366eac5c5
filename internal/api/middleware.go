package api

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/gamevault/chat-service/internal/auth"
)

// JWTAuth extracts the verified caller id into Locals("user_id"). Websocket
// clients may pass the token as ?token= since browsers cannot set headers
// on upgrade requests.
func JWTAuth(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenStr := ""
		if h := c.Get("Authorization"); h != "" {
			const pref = "Bearer "
			if !strings.HasPrefix(h, pref) {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid auth"})
			}
			tokenStr = h[len(pref):]
		} else if q := c.Query("token"); q != "" {
			tokenStr = q
		}
		if tokenStr == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "missing auth"})
		}
		userID, err := auth.ParseAndValidateToken(secret, tokenStr)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
		}
		c.Locals("user_id", userID)
		return c.Next()
	}
}
