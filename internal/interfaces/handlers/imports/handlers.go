package imports

import (
	"errors"

	impsvc "ahu-backend/internal/application/importer"
	"ahu-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

type Handlers struct {
	Service *impsvc.Service
}

// Upload POST /api/v1/import — multipart field "file".
// Responds with the raw batch result {success, failed, errors, debug}; file-
// level failures answer {error} with a 4xx/5xx before any row is inserted.
func (h *Handlers) Upload(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "No file uploaded"})
	}
	f, err := fh.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Unreadable file"})
	}
	defer f.Close()

	res, err := h.Service.Import(c.Context(), fh.Filename, f)
	if err != nil {
		if errors.Is(err, impsvc.ErrNoData) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		log.Error().Err(err).Str("file", fh.Filename).Msg("import: upload failed")
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(res)
}

// Runs GET /api/v1/import/runs — the recent import audit trail.
func (h *Handlers) Runs(c *fiber.Ctx) error {
	runs, err := h.Service.RecentRuns(c.Context(), c.QueryInt("limit", 20))
	if err != nil {
		log.Error().Err(err).Msg("import: failed to list runs")
		return response.Error(c, "Failed to fetch import runs", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Import runs fetched successfully", runs, nil)
}
