package uploads

import (
	"errors"

	uploadsvc "realty-backend/internal/application/uploads"
	"realty-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// Handlers bundles upload handlers with the service.
type Handlers struct {
	Service *uploadsvc.Service
}

// GetUploadURL POST /api/upload-url {fileName, fileType}
func (h *Handlers) GetUploadURL(c *fiber.Ctx) error {
	var req uploadsvc.Request
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}

	res, err := h.Service.GetSignedUploadURL(c.UserContext(), req)
	switch {
	case err == nil:
		return response.Success(c, "Upload URL generated", res, nil)
	case errors.Is(err, uploadsvc.ErrFileInfoRequired), errors.Is(err, uploadsvc.ErrNotAnImage):
		return response.Error(c, err.Error(), fiber.StatusBadRequest, nil)
	case errors.Is(err, uploadsvc.ErrUnsupported):
		return response.Error(c, err.Error(), fiber.StatusNotImplemented, nil)
	default:
		log.Error().Err(err).Str("file_name", req.FileName).Msg("upload: failed to generate signed URL")
		return response.Error(c, "Failed to generate upload URL", fiber.StatusInternalServerError, nil)
	}
}
