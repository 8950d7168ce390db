package middleware

import (
	"realty-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	userLocal   = "user"
	userIDLocal = "auth_user_id"
)

// RequireAuth ensures a user is in the session. Returns 401 with standard error format if not.
func RequireAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		m, ok := c.Locals(userLocal).(map[string]interface{})
		if !ok {
			return response.Unauthorized(c, "Unauthorized")
		}
		raw, _ := m["user_id"].(string)
		id, err := uuid.Parse(raw)
		if err != nil {
			return response.Unauthorized(c, "Unauthorized")
		}
		c.Locals(userIDLocal, id)
		return c.Next()
	}
}

// GetUser returns the session user from Locals (nil if not logged in).
func GetUser(c *fiber.Ctx) interface{} {
	return c.Locals(userLocal)
}

// UserID returns the id RequireAuth resolved, or uuid.Nil outside it.
func UserID(c *fiber.Ctx) uuid.UUID {
	id, _ := c.Locals(userIDLocal).(uuid.UUID)
	return id
}
