package postgres

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jhoicas/customer-api/pkg/logger"
	"github.com/pressly/goose/v3"
	"go.nhat.io/otelsql"
	semconv "go.opentelemetry.io/otel/semconv/v1.20.0"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const migrationsDir = "migrations"

// Migrator aplica las migraciones embebidas con goose sobre una conexión database/sql
// instrumentada con OpenTelemetry.
type Migrator struct {
	open func() (*sql.DB, error)
	log  *logger.Logger
}

// NewMigrator registra el driver pgx instrumentado y prepara goose.
func NewMigrator(dsn string, log *logger.Logger) (*Migrator, error) {
	if dsn == "" {
		return nil, errors.New("DSN vacío")
	}
	driverName, err := otelsql.Register("pgx",
		otelsql.AllowRoot(),
		otelsql.TraceQueryWithoutArgs(),
		otelsql.TraceRowsAffected(),
		otelsql.WithSystem(semconv.DBSystemPostgreSQL),
	)
	if err != nil {
		return nil, fmt.Errorf("registrar driver otelsql: %w", err)
	}
	return newMigrator(func() (*sql.DB, error) { return sql.Open(driverName, dsn) }, log)
}

// newMigrator configura goose sobre el abridor de conexiones indicado.
func newMigrator(open func() (*sql.DB, error), log *logger.Logger) (*Migrator, error) {
	goose.SetBaseFS(migrationsFS)
	goose.SetLogger(gooseLogger{log: log})
	if err := goose.SetDialect("postgres"); err != nil {
		return nil, fmt.Errorf("configure goose: %w", err)
	}
	return &Migrator{open: open, log: log}, nil
}

// Up aplica las migraciones pendientes.
func (m *Migrator) Up(ctx context.Context) error {
	return m.withDB(ctx, func(db *sql.DB) error {
		runCtx, cancel := context.WithTimeout(ctx, time.Minute)
		defer cancel()

		m.log.Info().Msg("aplicando migraciones")
		if err := goose.UpContext(runCtx, db, migrationsDir); err != nil {
			return fmt.Errorf("apply migrations: %w", err)
		}
		m.log.Info().Msg("migraciones aplicadas")
		return nil
	})
}

// Status imprime por el logger las migraciones aplicadas y pendientes.
func (m *Migrator) Status(ctx context.Context) error {
	return m.withDB(ctx, func(db *sql.DB) error {
		if err := goose.StatusContext(ctx, db, migrationsDir); err != nil {
			return fmt.Errorf("migration status: %w", err)
		}
		return nil
	})
}

// Down revierte la última migración, o hasta targetVersion si es mayor que cero.
func (m *Migrator) Down(ctx context.Context, targetVersion int64) error {
	return m.withDB(ctx, func(db *sql.DB) error {
		if targetVersion > 0 {
			m.log.Info().Int64("target", targetVersion).Msg("revirtiendo migraciones")
			if err := goose.DownToContext(ctx, db, migrationsDir, targetVersion); err != nil {
				return fmt.Errorf("rollback migrations: %w", err)
			}
			return nil
		}
		m.log.Info().Msg("revirtiendo última migración")
		if err := goose.DownContext(ctx, db, migrationsDir); err != nil {
			return fmt.Errorf("rollback migration: %w", err)
		}
		return nil
	})
}

func (m *Migrator) withDB(ctx context.Context, fn func(*sql.DB) error) error {
	db, err := m.open()
	if err != nil {
		return fmt.Errorf("open sql connection: %w", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping sql connection: %w", err)
	}
	return fn(db)
}

// gooseLogger adapta el logger de la app a goose.Logger.
type gooseLogger struct {
	log *logger.Logger
}

func (l gooseLogger) Printf(format string, v ...interface{}) {
	l.log.Info().Str("component", "goose").Msgf(format, v...)
}

func (l gooseLogger) Fatalf(format string, v ...interface{}) {
	l.log.Fatal().Str("component", "goose").Msgf(format, v...)
}
