package middleware

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// SessionConfig for the Redis-backed session.
type SessionConfig struct {
	Secret       string
	CrossSite    bool
	IsProduction bool
}

const (
	SessionCookieName  = "realty.sid"
	SessionRedisPrefix = "session:"
	UserSessionsPrefix = "user_sessions:"
	SessionMaxAge      = 24 * time.Hour
	sessionDataLocal   = "session_data"
	sessionIDLocal     = "session_id"
	sessionDirtyLocal  = "session_dirty"
	bearerPrefix       = "Bearer "
	signedCookiePrefix = "s:"
)

// SessionUser is the shape stored in session under "user".
type SessionUser struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

// Session loads the session named by the realty.sid cookie or an
// Authorization bearer token, and saves it after the handler when it changed.
func Session(cfg SessionConfig, rdb *redis.Client) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sessionID := sessionIDFromRequest(c, cfg.Secret)
		key := SessionRedisPrefix + sessionID

		var data map[string]interface{}
		if sessionID != "" {
			b, err := rdb.Get(c.UserContext(), key).Bytes()
			switch {
			case err == nil:
				_ = json.Unmarshal(b, &data)
			case err != redis.Nil:
				log.Warn().Err(err).Msg("session: redis get failed")
			}
			if data == nil {
				// Unknown or expired id: behave as anonymous.
				sessionID = ""
			}
		}
		if data == nil {
			data = make(map[string]interface{})
		}

		c.Locals(sessionDataLocal, data)
		c.Locals(userLocal, data["user"])
		c.Locals(sessionIDLocal, sessionID)

		if err := c.Next(); err != nil {
			return err
		}

		if dirty, _ := c.Locals(sessionDirtyLocal).(bool); !dirty {
			return nil
		}
		sid, _ := c.Locals(sessionIDLocal).(string)
		updated, _ := c.Locals(sessionDataLocal).(map[string]interface{})
		if sid == "" || len(updated) == 0 {
			return nil
		}
		b, _ := json.Marshal(updated)
		if err := rdb.Set(context.Background(), SessionRedisPrefix+sid, b, SessionMaxAge).Err(); err != nil {
			log.Error().Err(err).Msg("session: redis save failed")
		}
		return nil
	}
}

func sessionIDFromRequest(c *fiber.Ctx, secret string) string {
	if auth := c.Get(fiber.HeaderAuthorization); strings.HasPrefix(auth, bearerPrefix) {
		if id := strings.TrimSpace(auth[len(bearerPrefix):]); validSessionID(id) {
			return id
		}
		return ""
	}
	return UnsignSessionCookie(c.Cookies(SessionCookieName), secret)
}

func validSessionID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// SignSessionCookie returns the cookie value "s:<id>.<sig>" (or "s:<id>" without a secret).
func SignSessionCookie(id, secret string) string {
	if secret == "" {
		return signedCookiePrefix + id
	}
	return signedCookiePrefix + id + "." + sign(id, secret)
}

// UnsignSessionCookie returns the session id from a cookie value, or "" when
// the value is malformed or its signature does not match.
func UnsignSessionCookie(value, secret string) string {
	value = strings.TrimPrefix(value, signedCookiePrefix)
	id, sig, hasSig := strings.Cut(value, ".")
	if !validSessionID(id) {
		return ""
	}
	if secret == "" {
		return id
	}
	if !hasSig || !hmac.Equal([]byte(sig), []byte(sign(id, secret))) {
		return ""
	}
	return id
}

func sign(id, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(id))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

// GetSessionID returns the current session ID (empty when anonymous).
func GetSessionID(c *fiber.Ctx) string {
	sid, _ := c.Locals(sessionIDLocal).(string)
	return sid
}

// SetSessionUser stores user in the session and marks it for saving.
// Call RegenerateSessionID first on login.
func SetSessionUser(c *fiber.Ctx, user SessionUser) {
	data, _ := c.Locals(sessionDataLocal).(map[string]interface{})
	if data == nil {
		data = make(map[string]interface{})
	}
	data["user"] = map[string]interface{}{
		"user_id": user.UserID,
		"email":   user.Email,
	}
	c.Locals(sessionDataLocal, data)
	c.Locals(userLocal, data["user"])
	c.Locals(sessionDirtyLocal, true)
}

// RegenerateSessionID assigns a fresh session id for this request.
func RegenerateSessionID(c *fiber.Ctx) string {
	newID := uuid.New().String()
	c.Locals(sessionIDLocal, newID)
	return newID
}

// DestroySession clears the session from Locals; the caller deletes the Redis key.
func DestroySession(c *fiber.Ctx) {
	c.Locals(sessionDataLocal, make(map[string]interface{}))
	c.Locals(userLocal, nil)
	c.Locals(sessionIDLocal, "")
	c.Locals(sessionDirtyLocal, false)
}

// SessionCookieConfig returns the cookie options used for set and clear.
func SessionCookieConfig(cfg SessionConfig) fiber.Cookie {
	sameSite := fiber.CookieSameSiteLaxMode
	if cfg.CrossSite {
		sameSite = fiber.CookieSameSiteNoneMode
	}
	return fiber.Cookie{
		Name:     SessionCookieName,
		Path:     "/",
		MaxAge:   int(SessionMaxAge.Seconds()),
		HTTPOnly: true,
		Secure:   cfg.IsProduction || cfg.CrossSite,
		SameSite: sameSite,
	}
}

