package config_test

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/customer-api/pkg/config"
)

func TestFromViper_ValoresPorDefecto(t *testing.T) {
	cfg, err := config.FromViper(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, "customer-api", cfg.App.Name)
	assert.Equal(t, config.StoragePostgres, cfg.DB.Driver)
	assert.Equal(t, int32(25), cfg.DB.MaxConns)
	assert.True(t, cfg.DB.MigrateOnStart)
	assert.False(t, cfg.Customer.RefreshUpdatedAt)
	assert.False(t, cfg.RateLimit.Enabled())
	assert.Equal(t, time.Minute, cfg.RateLimit.Window)
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTP.Addr())
	assert.Equal(t, "postgres://postgres:@localhost:5432/customers?sslmode=disable", cfg.DB.ConnectionString())
}

func TestFromViper_Sobrescrituras(t *testing.T) {
	v := viper.New()
	v.Set("STORAGE_DRIVER", "Memory")
	v.Set("HTTP_PORT", "9090")
	v.Set("CUSTOMER_REFRESH_UPDATED_AT", "true")
	v.Set("RATE_LIMIT_REQUESTS", "100")
	v.Set("RATE_LIMIT_WINDOW_SECONDS", 30)
	v.Set("DB_MIGRATE_ON_START", "false")
	v.Set("DATABASE_URL", "postgres://u:p@db:5432/c")

	cfg, err := config.FromViper(v)
	require.NoError(t, err)

	assert.Equal(t, config.StorageMemory, cfg.DB.Driver)
	assert.Equal(t, 9090, cfg.HTTP.Port)
	assert.True(t, cfg.Customer.RefreshUpdatedAt)
	assert.True(t, cfg.RateLimit.Enabled())
	assert.Equal(t, 30*time.Second, cfg.RateLimit.Window)
	assert.False(t, cfg.DB.MigrateOnStart)
	assert.Equal(t, "postgres://u:p@db:5432/c", cfg.DB.ConnectionString())
}

func TestDSN_EscapaCaracteresEspeciales(t *testing.T) {
	c := config.DBConfig{Host: "db", Port: 5432, User: "app", Password: "p@ss/word", DBName: "customers", SSLMode: "require"}
	assert.Equal(t, "postgres://app:p%40ss%2Fword@db:5432/customers?sslmode=require", c.DSN())
}

func TestFromViper_DriverDesconocido(t *testing.T) {
	v := viper.New()
	v.Set("STORAGE_DRIVER", "mongo")

	_, err := config.FromViper(v)
	assert.Error(t, err)
}
