package backend

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/hamed0406/statuswidget/internal/config"
	"github.com/hamed0406/statuswidget/internal/repo"
	"github.com/hamed0406/statuswidget/internal/repo/file"
	"github.com/hamed0406/statuswidget/internal/repo/memory"
	"github.com/hamed0406/statuswidget/internal/repo/postgres"
	"github.com/hamed0406/statuswidget/internal/repo/redis"
)

// Open returns the storage selected by cfg.StorageBackend and a func that
// releases it.
func Open(ctx context.Context, cfg config.Config, log *zap.Logger) (repo.Storage, func(), error) {
	noop := func() {}
	switch cfg.StorageBackend {
	case "memory":
		return memory.New(), noop, nil
	case "", "file":
		s, err := file.New(cfg.StorageDir)
		if err != nil {
			return nil, noop, err
		}
		return s, noop, nil
	case "postgres":
		if cfg.DatabaseURL == "" {
			return nil, noop, fmt.Errorf("postgres backend: DATABASE_URL is empty")
		}
		s, err := postgres.New(ctx, cfg.DatabaseURL, log)
		if err != nil {
			return nil, noop, fmt.Errorf("postgres backend: %w", err)
		}
		return s, s.Close, nil
	case "redis":
		s, err := redis.New(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, noop, fmt.Errorf("redis backend: %w", err)
		}
		return s, func() { _ = s.Close() }, nil
	}
	return nil, noop, fmt.Errorf("unknown STORAGE_BACKEND %q", cfg.StorageBackend)
}
