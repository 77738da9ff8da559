package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	_ "github.com/jhoicas/customer-api/docs"
	"github.com/jhoicas/customer-api/internal/application/usecase"
	"github.com/jhoicas/customer-api/internal/domain/repository"
	"github.com/jhoicas/customer-api/internal/infrastructure/memory"
	"github.com/jhoicas/customer-api/internal/infrastructure/postgres"
	"github.com/jhoicas/customer-api/internal/infrastructure/ratelimit"
	httpRouter "github.com/jhoicas/customer-api/internal/interfaces/http"
	"github.com/jhoicas/customer-api/pkg/config"
	"github.com/jhoicas/customer-api/pkg/logger"
	"github.com/jhoicas/customer-api/pkg/telemetry"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("storage", cfg.DB.Driver).
		Msg("iniciando aplicación")

	ctx := context.Background()

	if cfg.Telemetry.Enabled {
		shutdownTracing, err := telemetry.Setup(cfg.App.Name, nil)
		if err != nil {
			log.Fatal().Err(err).Msg("configurar telemetría")
		}
		defer func() {
			if err := shutdownTracing(context.Background()); err != nil {
				log.Error().Err(err).Msg("cerrar telemetría")
			}
		}()
	}

	var (
		customerRepo repository.CustomerRepository
		pinger       httpRouter.Pinger
	)
	switch cfg.DB.Driver {
	case config.StorageMemory:
		repo := memory.NewCustomerRepository()
		customerRepo, pinger = repo, repo
		log.Warn().Msg("almacenamiento en memoria: los datos no se persisten")
	default:
		if cfg.DB.MigrateOnStart {
			migrator, err := postgres.NewMigrator(cfg.DB.ConnectionString(), log)
			if err != nil {
				log.Fatal().Err(err).Msg("configurar migraciones")
			}
			if err := migrator.Up(ctx); err != nil {
				log.Fatal().Err(err).Msg("aplicar migraciones")
			}
		}
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		customerRepo, pinger = postgres.NewCustomerRepository(pool), pool
	}

	customerUC := usecase.NewCustomerUseCase(customerRepo, usecase.CustomerOptions{
		RefreshUpdatedAt: cfg.Customer.RefreshUpdatedAt,
	})

	var limiter ratelimit.Limiter
	if cfg.RateLimit.Enabled() {
		limiter = ratelimit.New(ctx, cfg.Redis, log)
		defer func() { _ = limiter.Close() }()
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := httpRouter.NewMetrics(registry)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
		ErrorHandler: httpRouter.ErrorHandler,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	if _, err := os.Stat(cfg.App.SwaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: cfg.App.SwaggerFile,
			Path:     "docs",
			Title:    "Customer API",
		}))
	} else {
		log.Warn().Str("file", cfg.App.SwaggerFile).Msg("swagger.json no encontrado, /docs deshabilitado")
	}

	httpRouter.Router(app, httpRouter.RouterDeps{
		CustomerUC:  customerUC,
		Log:         log,
		ServiceName: cfg.App.Name,
		Pinger:      pinger,
		Metrics:     metrics,
		Gatherer:    registry,
		Limiter:     limiter,
		RateLimit:   cfg.RateLimit,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
