// Package bootstrap wires the store and optional Redis client that every
// command needs before it can serve or seed.
package bootstrap

import (
	"context"
	"fmt"

	"postboard/internal/config"
	"postboard/internal/database"
	"postboard/internal/middleware"
	"postboard/internal/repository"
	"postboard/internal/seed"
	redispkg "postboard/pkg/redis"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	// Seed, when set, fills the store with demo data after migrating.
	Seed *seed.Options
	// SkipRedis leaves the Redis client nil even if REDIS_URL is set.
	SkipRedis bool
}

// InitRuntime connects to the store, applies pending migrations and connects
// to Redis when configured. An unreachable Redis is logged and yields a nil
// client; an unreachable store or failed migration is returned as an error.
func InitRuntime(ctx context.Context, cfg *config.Config, opts Options) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database startup failed: %w", err)
	}

	if opts.Seed != nil {
		if _, err := seed.Run(ctx,
			repository.NewUserRepository(db),
			repository.NewPostRepository(db),
			*opts.Seed); err != nil {
			return nil, nil, fmt.Errorf("seed failed: %w", err)
		}
	}

	var rdb *redis.Client
	if cfg.RedisURL != "" && !opts.SkipRedis {
		rdb, err = redispkg.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			middleware.Logger.Warn("Redis unavailable, rate limiting disabled", "error", err.Error())
			rdb = nil
		}
	}

	return db, rdb, nil
}
