package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/customer-api/internal/application/dto"
)

// Pinger comprueba que el almacenamiento responde.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler expone /health (proceso vivo) y /ready (almacenamiento accesible).
type HealthHandler struct {
	service string
	pinger  Pinger
}

// NewHealthHandler construye el handler.
func NewHealthHandler(service string, pinger Pinger) *HealthHandler {
	return &HealthHandler{service: service, pinger: pinger}
}

// Health GET /health
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	return c.JSON(dto.HealthResponse{Status: "ok", Service: h.service})
}

// Ready GET /ready
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	if h.pinger != nil {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := h.pinger.Ping(ctx); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(dto.HealthResponse{Status: "unavailable", Service: h.service})
		}
	}
	return c.JSON(dto.HealthResponse{Status: "ok", Service: h.service})
}
