package wishlist

import (
	wishsvc "realty-backend/internal/application/wishlist"
	"realty-backend/internal/middleware"
	"realty-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Handlers serve the wishlist routes. All of them sit behind RequireAuth.
type Handlers struct {
	Service *wishsvc.Service
}

// Add POST /api/wishlist {propertyId, userId?}. Responds 201 also when already saved.
func (h *Handlers) Add(c *fiber.Ctx) error {
	userID, propertyID, ok, err := h.entry(c)
	if !ok {
		return err
	}
	if err := h.Service.Add(c.UserContext(), userID, propertyID); err != nil {
		log.Error().Err(err).Str("user_id", userID.String()).Msg("wishlist: add failed")
		return response.Internal(c)
	}
	return response.SuccessCreated(c, "Added to wishlist", fiber.Map{"propertyId": propertyID}, nil)
}

// Remove DELETE /api/wishlist {propertyId, userId?}. Responds 200 also when absent.
func (h *Handlers) Remove(c *fiber.Ctx) error {
	userID, propertyID, ok, err := h.entry(c)
	if !ok {
		return err
	}
	if err := h.Service.Remove(c.UserContext(), userID, propertyID); err != nil {
		log.Error().Err(err).Str("user_id", userID.String()).Msg("wishlist: remove failed")
		return response.Internal(c)
	}
	return response.Success(c, "Removed from wishlist", fiber.Map{"propertyId": propertyID}, nil)
}

// List GET /api/wishlist/:userId (own id only) and GET /api/wishlist.
func (h *Handlers) List(c *fiber.Ctx) error {
	userID := middleware.UserID(c)
	if raw := c.Params("userId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return response.Error(c, wishsvc.ErrInvalidUserID.Error(), fiber.StatusBadRequest, nil)
		}
		if id != userID {
			return response.Error(c, "Forbidden", fiber.StatusForbidden, nil)
		}
	}
	listings, err := h.Service.ListForUser(c.UserContext(), userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID.String()).Msg("wishlist: list failed")
		return response.Internal(c)
	}
	return response.Success(c, "Wishlist fetched successfully", listings, fiber.Map{"count": len(listings)})
}

// entry parses the body (or query) and checks any userId against the session.
// When ok is false the error response has already been written.
func (h *Handlers) entry(c *fiber.Ctx) (uuid.UUID, uuid.UUID, bool, error) {
	var in wishsvc.EntryInput
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return uuid.Nil, uuid.Nil, false, response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
		}
	}
	if in.PropertyID == "" {
		in.PropertyID = c.Query("propertyId")
	}
	if in.UserID == "" {
		in.UserID = c.Query("userId")
	}
	claimed, propertyID, err := in.ParseIDs()
	if err != nil {
		return uuid.Nil, uuid.Nil, false, response.Error(c, err.Error(), fiber.StatusBadRequest, nil)
	}
	userID := middleware.UserID(c)
	if claimed != uuid.Nil && claimed != userID {
		return uuid.Nil, uuid.Nil, false, response.Error(c, "Forbidden", fiber.StatusForbidden, nil)
	}
	return userID, propertyID, true, nil
}
