package api

import (
	"context"
	"log/slog"
	"time"

	"circuitflow/types"

	"github.com/gofiber/fiber/v2"
)

type Pinger interface {
	Ping(context.Context) error
}

type CheckHandler struct {
	version string
	db      Pinger
	now     func() time.Time
}

func NewCheckHandler(version string, db Pinger) *CheckHandler {
	return &CheckHandler{
		version: version,
		db:      db,
		now:     time.Now,
	}
}

// HandleHealthy is a liveness probe and never touches storage.
func (h *CheckHandler) HandleHealthy(c *fiber.Ctx) error {
	return c.JSON(types.HealthResponse{
		Status:    "ok",
		Version:   h.version,
		Timestamp: h.now().UTC().Format(time.RFC3339Nano),
	})
}

func (h *CheckHandler) HandleReady(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		slog.Warn("readiness check failed", "error", err)
		return ErrStorageUnavailable()
	}
	return c.JSON(fiber.Map{"status": "ready"})
}
