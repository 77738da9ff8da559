package http

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/customer-api/internal/application/dto"
	"github.com/jhoicas/customer-api/internal/infrastructure/ratelimit"
	"github.com/jhoicas/customer-api/pkg/config"
	"github.com/jhoicas/customer-api/pkg/logger"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
)

// RequestLogger registra una línea por petición y alimenta las métricas (m puede ser nil).
func RequestLogger(log *logger.Logger, m *Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		latency := time.Since(start)
		status := statusOf(c, err)
		route := c.Route().Path

		m.observeRequest(c.Method(), route, status, latency)

		level := zerolog.InfoLevel
		switch {
		case status >= fiber.StatusInternalServerError:
			level = zerolog.ErrorLevel
		case status >= fiber.StatusBadRequest:
			level = zerolog.WarnLevel
		}
		ev := log.WithLevel(level)
		if sc := trace.SpanContextFromContext(c.UserContext()); sc.IsValid() {
			ev = ev.Str("trace_id", sc.TraceID().String())
		}
		ev.Str("method", c.Method()).
			Str("path", c.Path()).
			Str("route", route).
			Int("status", status).
			Dur("latency", latency).
			Str("ip", c.IP()).
			Msg("petición HTTP")
		return err
	}
}

// statusOf devuelve el estado final; si el handler devolvió error aún no lo ha escrito el ErrorHandler.
func statusOf(c *fiber.Ctx, err error) int {
	if err == nil {
		return c.Response().StatusCode()
	}
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	return fiber.StatusInternalServerError
}

// RateLimit limita peticiones por IP en ventana fija y expone las cabeceras X-RateLimit-*.
func RateLimit(l ratelimit.Limiter, cfg config.RateLimitConfig, m *Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if l == nil || !cfg.Enabled() {
			return c.Next()
		}
		d := l.Allow(c.UserContext(), "ip:"+c.IP(), cfg.Requests, cfg.Window)
		c.Set("X-RateLimit-Limit", strconv.Itoa(cfg.Requests))
		c.Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining(cfg.Requests)))
		if !d.WindowEnd.IsZero() {
			c.Set("X-RateLimit-Reset", strconv.FormatInt(d.WindowEnd.Unix(), 10))
		}
		if !d.Allowed {
			m.observeRateLimit(c.Path())
			return c.Status(fiber.StatusTooManyRequests).JSON(dto.ErrorResponse{Code: "RATE_LIMITED", Message: "demasiadas peticiones"})
		}
		return c.Next()
	}
}

// ErrorHandler responde con dto.ErrorResponse los errores que escapan de los handlers.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	msg := "error interno"
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		msg = fe.Message
	}
	return c.Status(code).JSON(dto.ErrorResponse{Code: strconv.Itoa(code), Message: msg})
}
