package repository

import (
	"context"
	"io/fs"
	"log/slog"

	"github.com/set-night/avquote/internal/config"
	"github.com/set-night/avquote/internal/domain"
	"github.com/set-night/avquote/internal/repository/memory"
)

// Open returns the store selected by cfg.StoreDriver. The postgres driver
// applies pending migrations before returning.
func Open(ctx context.Context, cfg *config.Config, migrations fs.FS) (domain.Store, error) {
	if cfg.StoreDriver == config.StoreDriverMemory {
		slog.Warn("using in-memory store; data is lost on restart")
		return memory.New(), nil
	}

	pool, err := NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := RunMigrations(cfg.DatabaseURL, migrations); err != nil {
		pool.Close()
		return nil, err
	}
	return NewPostgresStore(pool), nil
}
