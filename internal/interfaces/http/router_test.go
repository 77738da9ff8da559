package http_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/customer-api/internal/application/usecase"
	"github.com/jhoicas/customer-api/internal/infrastructure/memory"
	"github.com/jhoicas/customer-api/internal/infrastructure/ratelimit"
	apphttp "github.com/jhoicas/customer-api/internal/interfaces/http"
	"github.com/jhoicas/customer-api/pkg/config"
	"github.com/jhoicas/customer-api/pkg/logger"
)

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

func buildFullApp(t *testing.T, deps apphttp.RouterDeps) *fiber.App {
	t.Helper()
	if deps.CustomerUC == nil {
		deps.CustomerUC = usecase.NewCustomerUseCase(memory.NewCustomerRepository(), usecase.CustomerOptions{})
	}
	if deps.Log == nil {
		deps.Log = logger.Nop()
	}
	deps.ServiceName = "customer-api-test"
	app := fiber.New(fiber.Config{ErrorHandler: apphttp.ErrorHandler})
	apphttp.Router(app, deps)
	return app
}

func TestHealth(t *testing.T) {
	app := buildFullApp(t, apphttp.RouterDeps{})

	resp := do(t, app, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok","service":"customer-api-test"}`, readBody(t, resp))
}

func TestReady(t *testing.T) {
	ok := buildFullApp(t, apphttp.RouterDeps{Pinger: memory.NewCustomerRepository()})
	resp := do(t, ok, http.MethodGet, "/ready", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	down := buildFullApp(t, apphttp.RouterDeps{Pinger: pingerFunc(func(context.Context) error {
		return errors.New("connection refused")
	})})
	resp = do(t, down, http.MethodGet, "/ready", "")
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "unavailable")
}

func TestMetrics_RegistraPeticiones(t *testing.T) {
	reg := prometheus.NewRegistry()
	app := buildFullApp(t, apphttp.RouterDeps{
		Metrics:  apphttp.NewMetrics(reg),
		Gatherer: reg,
	})

	resp := do(t, app, http.MethodGet, "/api/customers", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = do(t, app, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := readBody(t, resp)
	assert.Contains(t, body, "customer_api_http_requests_total")
	assert.Contains(t, body, `route="/api/customers`)
}

func TestMetrics_RegistroDobleReutilizaColectores(t *testing.T) {
	reg := prometheus.NewRegistry()
	first := apphttp.NewMetrics(reg)
	second := apphttp.NewMetrics(reg)
	assert.NotNil(t, first)
	assert.NotNil(t, second)
}

func TestRateLimit_Devuelve429AlSuperarLimite(t *testing.T) {
	limiter := ratelimit.NewMemory()
	t.Cleanup(func() { _ = limiter.Close() })
	app := buildFullApp(t, apphttp.RouterDeps{
		Limiter:   limiter,
		RateLimit: config.RateLimitConfig{Requests: 2, Window: time.Minute},
	})

	for i := 0; i < 2; i++ {
		resp := do(t, app, http.MethodGet, "/api/customers", "")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "2", resp.Header.Get("X-RateLimit-Limit"))
		resp.Body.Close()
	}

	resp := do(t, app, http.MethodGet, "/api/customers", "")
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "0", resp.Header.Get("X-RateLimit-Remaining"))
	assert.Contains(t, readBody(t, resp), "RATE_LIMITED")

	resp = do(t, app, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode, "health queda fuera del límite")
}

func TestRateLimit_DesactivadoSinLimite(t *testing.T) {
	limiter := ratelimit.NewMemory()
	t.Cleanup(func() { _ = limiter.Close() })
	app := buildFullApp(t, apphttp.RouterDeps{Limiter: limiter})

	for i := 0; i < 5; i++ {
		resp := do(t, app, http.MethodGet, "/api/customers", "")
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Empty(t, resp.Header.Get("X-RateLimit-Limit"))
		resp.Body.Close()
	}
}

func TestRutaDesconocidaDevuelve404JSON(t *testing.T) {
	app := buildFullApp(t, apphttp.RouterDeps{})

	resp := do(t, app, http.MethodGet, "/api/no-existe", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), `"code":"404"`)
}
