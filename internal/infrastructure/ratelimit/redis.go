package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/customer-api/pkg/config"
	"github.com/jhoicas/customer-api/pkg/logger"
	"github.com/redis/go-redis/v9"
)

type redisLimiter struct {
	client  *redis.Client
	log     *logger.Logger
	prefix  string
	timeout time.Duration
}

// NewRedis crea un limiter compartido entre instancias. Si Redis falla durante Allow la petición
// se deja pasar y se registra el error.
func NewRedis(ctx context.Context, cfg config.RedisConfig, log *logger.Logger) (Limiter, error) {
	client := redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB})
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &redisLimiter{
		client:  client,
		log:     log,
		prefix:  "customer-api:ratelimit:",
		timeout: 250 * time.Millisecond,
	}, nil
}

func (l *redisLimiter) Allow(ctx context.Context, key string, limit int, win time.Duration) Decision {
	if limit <= 0 {
		return Decision{Allowed: true}
	}
	if win <= 0 {
		win = time.Minute
	}
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	// SET NX con caducidad abre la ventana dentro del mismo MULTI que el INCR: la clave siempre tiene TTL.
	redisKey := l.prefix + key
	var (
		incr *redis.IntCmd
		pttl *redis.DurationCmd
	)
	_, err := l.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.SetNX(ctx, redisKey, 0, win)
		incr = pipe.Incr(ctx, redisKey)
		pttl = pipe.PTTL(ctx, redisKey)
		return nil
	})
	if err != nil {
		l.log.Error().Err(err).Str("key", key).Msg("rate limiter redis, se permite la petición")
		return Decision{Allowed: true}
	}
	counter := int(incr.Val())
	ttl := pttl.Val()
	if ttl <= 0 {
		ttl = win
	}
	return Decision{
		Allowed:   counter <= limit,
		Count:     counter,
		WindowEnd: time.Now().Add(ttl),
	}
}

func (l *redisLimiter) Close() error {
	return l.client.Close()
}

// New elige el backend: Redis si cfg.Addr está definido y responde, memoria en otro caso.
func New(ctx context.Context, cfg config.RedisConfig, log *logger.Logger) Limiter {
	if cfg.Addr == "" {
		return NewMemory()
	}
	l, err := NewRedis(ctx, cfg, log)
	if err != nil {
		log.Warn().Err(err).Str("addr", cfg.Addr).Msg("redis no disponible, rate limit en memoria")
		return NewMemory()
	}
	log.Info().Str("addr", cfg.Addr).Msg("rate limit compartido en redis")
	return l
}
