package purchases

import (
	"errors"

	purchasesvc "realty-backend/internal/application/purchases"
	"realty-backend/internal/middleware"
	"realty-backend/internal/pkg/response"
	"realty-backend/internal/pkg/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// Handlers serve the deposit form. Both routes sit behind RequireAuth.
type Handlers struct {
	Service *purchasesvc.Service
}

// Submit POST /api/purchases
func (h *Handlers) Submit(c *fiber.Ctx) error {
	var in purchasesvc.DepositInput
	if err := c.BodyParser(&in); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	userID := middleware.UserID(c)

	req, err := h.Service.Submit(c.UserContext(), userID, in)
	if err != nil {
		var verr *validation.Error
		switch {
		case errors.As(err, &verr):
			return response.Invalid(c, "Invalid deposit request", err)
		case errors.Is(err, purchasesvc.ErrPropertyNotFound):
			return response.Error(c, err.Error(), fiber.StatusNotFound, nil)
		}
		log.Error().Err(err).Str("user_id", userID.String()).Msg("purchases: submit failed")
		return response.Internal(c)
	}
	log.Info().
		Str("user_id", userID.String()).
		Str("property_id", req.PropertyID.String()).
		Str("deposit", req.Deposit.StringFixed(2)).
		Msg("purchases: deposit request recorded")
	return response.SuccessCreated(c, "Deposit request submitted", req, nil)
}

// List GET /api/purchases
func (h *Handlers) List(c *fiber.Ctx) error {
	userID := middleware.UserID(c)
	out, err := h.Service.ListForUser(c.UserContext(), userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID.String()).Msg("purchases: list failed")
		return response.Internal(c)
	}
	return response.Success(c, "Deposit requests fetched successfully", out, fiber.Map{"count": len(out)})
}
