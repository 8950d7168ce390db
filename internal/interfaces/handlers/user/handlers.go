package user

import (
	"errors"

	usersvc "realty-backend/internal/application/user"
	"realty-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// Handlers holds the user service.
type Handlers struct {
	Service *usersvc.Service
}

// Register POST /api/register. Create an account; 201 with {userId}.
// The client logs in separately.
func (h *Handlers) Register(c *fiber.Ctx) error {
	var req usersvc.RegisterInput
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Email and password are required", fiber.StatusBadRequest, nil)
	}
	if req.Email == "" || req.Password == "" {
		return response.Error(c, "Email and password are required", fiber.StatusBadRequest, nil)
	}

	u, err := h.Service.Register(c.UserContext(), req)
	if err != nil {
		switch {
		case errors.Is(err, usersvc.ErrEmailTaken),
			errors.Is(err, usersvc.ErrInvalidEmail),
			errors.Is(err, usersvc.ErrInvalidPassword):
			return response.Error(c, err.Error(), fiber.StatusBadRequest, nil)
		default:
			log.Error().Err(err).Msg("user: register failed")
			return response.Error(c, "Registration failed", fiber.StatusInternalServerError, nil)
		}
	}
	return response.SuccessCreated(c, "User registered successfully", fiber.Map{
		"userId": u.ID.String(),
		"email":  u.Email,
	}, nil)
}
