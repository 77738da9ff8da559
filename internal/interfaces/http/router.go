package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/jhoicas/customer-api/internal/application/usecase"
	"github.com/jhoicas/customer-api/internal/infrastructure/ratelimit"
	"github.com/jhoicas/customer-api/pkg/config"
	"github.com/jhoicas/customer-api/pkg/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/swaggo/swag"
	"go.opentelemetry.io/otel/trace"
)

// RouterDeps dependencias para el router. Metrics, Gatherer, Limiter, Pinger y TracerProvider son opcionales.
type RouterDeps struct {
	CustomerUC  *usecase.CustomerUseCase
	Log         *logger.Logger
	ServiceName string
	Pinger      Pinger
	Metrics     *Metrics
	Gatherer    prometheus.Gatherer
	Limiter     ratelimit.Limiter
	RateLimit   config.RateLimitConfig

	TracerProvider trace.TracerProvider
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Use(Tracing(deps.TracerProvider))
	app.Use(RequestLogger(deps.Log, deps.Metrics))

	health := NewHealthHandler(deps.ServiceName, deps.Pinger)
	app.Get("/health", health.Health)
	app.Get("/ready", health.Ready)
	if deps.Gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	app.Get("/openapi.json", openAPIDoc)

	api := app.Group("/api", RateLimit(deps.Limiter, deps.RateLimit, deps.Metrics))

	customers := api.Group("/customers")
	customerHandler := NewCustomerHandler(deps.CustomerUC, deps.Log)
	customers.Get("/", customerHandler.List)
	customers.Post("/", customerHandler.Create)
	customers.Get("/:id", customerHandler.GetByID)
	customers.Put("/:id", customerHandler.Update)
	customers.Delete("/:id", customerHandler.Delete)
}

// openAPIDoc sirve el documento registrado por el paquete docs (generado con swag).
func openAPIDoc(c *fiber.Ctx) error {
	doc, err := swag.ReadDoc()
	if err != nil {
		return notFound(c)
	}
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.SendString(doc)
}
