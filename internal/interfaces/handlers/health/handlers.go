package health

import (
	"encoding/json"
	"strconv"
	"time"

	healthsvc "realty-backend/internal/application/health"
	"realty-backend/internal/middleware"
	"realty-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

const serviceName = "realty-api"

// Handlers holds dependencies for health endpoints.
type Handlers struct {
	Deps           healthsvc.Dependencies
	HealthAdminKey string
}

// Reset clears health stats in Redis. Requires query key=HEALTH_ADMIN_KEY.
func (h *Handlers) Reset(c *fiber.Ctx) error {
	key := c.Query("key")
	if key == "" || key != h.HealthAdminKey {
		return response.Error(c, "Unauthorized", fiber.StatusForbidden, nil)
	}
	rdb := h.Deps.Redis
	if rdb == nil {
		return response.Error(c, "Redis unavailable", fiber.StatusServiceUnavailable, nil)
	}
	ctx := c.UserContext()
	keys := []string{middleware.KeyReqTotal, middleware.KeyReqErrors, middleware.KeyResTime, middleware.KeyResCount, middleware.KeyStartTime, middleware.KeyLastReq, middleware.KeyErrorLog}
	if err := rdb.Del(ctx, keys...).Err(); err != nil {
		log.Error().Err(err).Msg("health: reset failed")
		return response.Internal(c)
	}
	if err := rdb.Set(ctx, middleware.KeyStartTime, strconv.FormatInt(time.Now().UnixMilli(), 10), 0).Err(); err != nil {
		log.Error().Err(err).Msg("health: reset failed")
		return response.Internal(c)
	}
	log.Info().Str("ip", c.IP()).Msg("health: stats reset")
	return response.Success(c, "Stats reset successfully", fiber.Map{"success": true}, nil)
}

// JSON returns the service name, overall status, runtime, traffic and dependency probes.
func (h *Handlers) JSON(c *fiber.Ctx) error {
	result := healthsvc.CollectHealth(c.UserContext(), h.Deps)
	return c.JSON(fiber.Map{
		"service":      serviceName,
		"status":       result.Status,
		"runtime":      result.Runtime,
		"traffic":      result.Traffic,
		"dependencies": result.Dependencies,
	})
}

// Errors returns the last 50 logged 5xx responses, newest first.
func (h *Handlers) Errors(c *fiber.Ctx) error {
	out := make([]map[string]interface{}, 0)
	if h.Deps.Redis == nil {
		return c.JSON(out)
	}
	entries, err := h.Deps.Redis.LRange(c.UserContext(), middleware.KeyErrorLog, 0, 49).Result()
	if err != nil {
		log.Error().Err(err).Msg("health: read error log failed")
		return c.Status(fiber.StatusInternalServerError).JSON(out)
	}
	for _, s := range entries {
		var m map[string]interface{}
		if json.Unmarshal([]byte(s), &m) == nil && m != nil {
			out = append(out, m)
		}
	}
	return c.JSON(out)
}

// Dashboard returns the HTML status page.
func (h *Handlers) Dashboard(c *fiber.Ctx) error {
	result := healthsvc.CollectHealth(c.UserContext(), h.Deps)
	html, err := healthsvc.RenderDashboardHTML(result)
	if err != nil {
		log.Error().Err(err).Msg("health: render dashboard failed")
		return response.Internal(c)
	}
	c.Set("Content-Type", "text/html; charset=utf-8")
	return c.SendString(html)
}
