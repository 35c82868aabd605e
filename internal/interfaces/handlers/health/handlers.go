package health

import (
	"github.com/gofiber/fiber/v2"
)

// Pinger abstracts the DB connection check so tests can stub it.
type Pinger interface {
	Ping() error
}

type Handlers struct {
	DB Pinger
}

// JSON GET /health/json
func (h *Handlers) JSON(c *fiber.Ctx) error {
	db := "unconfigured"
	if h.DB != nil {
		db = "up"
		if err := h.DB.Ping(); err != nil {
			db = "down"
		}
	}
	return c.JSON(fiber.Map{"status": "ok", "db": db})
}
