package auth

import (
	"context"
	"errors"

	authsvc "realty-backend/internal/application/auth"
	"realty-backend/internal/middleware"
	"realty-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Handlers holds dependencies for auth endpoints.
type Handlers struct {
	UserFinder authsvc.UserFinder
	Rdb        *redis.Client
	Config     middleware.SessionConfig
}

// LoginRequest body.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login POST /api/login. Authenticate, start a session, set the cookie and
// return {userId, token}. The token works as an Authorization bearer.
func (h *Handlers) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, authsvc.ErrEmailPasswordRequired.Error(), fiber.StatusBadRequest, nil)
	}

	user, err := h.UserFinder.Authenticate(c.UserContext(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, authsvc.ErrEmailPasswordRequired):
			return response.Error(c, err.Error(), fiber.StatusBadRequest, nil)
		case errors.Is(err, authsvc.ErrInvalidCredentials):
			return response.Unauthorized(c, err.Error())
		default:
			log.Error().Err(err).Msg("auth: login lookup failed")
			return response.Internal(c)
		}
	}

	sessionID := middleware.RegenerateSessionID(c)
	userID := user.ID.String()
	middleware.SetSessionUser(c, middleware.SessionUser{UserID: userID, Email: user.Email})

	ctx := context.Background()
	pipe := h.Rdb.TxPipeline()
	pipe.SAdd(ctx, middleware.UserSessionsPrefix+userID, sessionID)
	pipe.Expire(ctx, middleware.UserSessionsPrefix+userID, middleware.SessionMaxAge)
	if _, err := pipe.Exec(ctx); err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("auth: tracking session failed")
		return response.Internal(c)
	}

	cookie := middleware.SessionCookieConfig(h.Config)
	cookie.Value = middleware.SignSessionCookie(sessionID, h.Config.Secret)
	c.Cookie(&cookie)

	return response.Success(c, "Login successful", fiber.Map{
		"userId": userID,
		"email":  user.Email,
		"token":  sessionID,
	}, nil)
}

// Me GET /api/me. The current session user.
func (h *Handlers) Me(c *fiber.Ctx) error {
	user, err := authsvc.VerifyUser(middleware.GetUser(c))
	if err != nil {
		return response.Unauthorized(c, "Not authenticated")
	}
	return response.Success(c, "Authenticated", fiber.Map{"user": user}, nil)
}

// Logout DELETE /api/logout. Drop the session from Redis and clear the cookie.
// Succeeds without a session too.
func (h *Handlers) Logout(c *fiber.Ctx) error {
	sessionID := middleware.GetSessionID(c)
	ctx := context.Background()

	if sessionID != "" {
		if user, err := authsvc.VerifyUser(middleware.GetUser(c)); err == nil {
			_ = h.Rdb.SRem(ctx, middleware.UserSessionsPrefix+user.UserID, sessionID).Err()
		}
		if err := h.Rdb.Del(ctx, middleware.SessionRedisPrefix+sessionID).Err(); err != nil {
			log.Warn().Err(err).Msg("auth: deleting session failed")
		}
	}
	middleware.DestroySession(c)

	cookie := middleware.SessionCookieConfig(h.Config)
	cookie.MaxAge = -1
	c.Cookie(&cookie)

	return response.Success(c, "Logged out successfully", nil, nil)
}
