package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/wire"
	_ "github.com/jackc/pgx/v5/stdlib"

	"points-service/internal/config"
	"points-service/internal/logging"
	mem "points-service/internal/storage/memory"
	pg "points-service/internal/storage/postgres"
)

var ProviderSet = wire.NewSet(ProvideRepository)

// ProvideRepository выбирает реализацию репозитория по настройкам окружения.
func ProvideRepository(ctx context.Context, cfg *config.Config, logger *logging.Logger) (Repository, error) {
	switch cfg.DbDriver {
	case "postgres", "pgx":
		if cfg.DbDsn == "" {
			return nil, fmt.Errorf("postgres DSN is empty")
		}

		db, err := sql.Open("pgx", cfg.DbDsn)
		if err != nil {
			return nil, fmt.Errorf("open postgres connection: %w", err)
		}
		db.SetMaxIdleConns(5)
		db.SetMaxOpenConns(10)
		db.SetConnMaxLifetime(30 * time.Minute)

		repo, err := pg.NewRepository(ctx, db)
		if err != nil {
			_ = db.Close()
			return nil, err
		}
		return repo, nil
	case "memory":
		if logger != nil {
			logger.Warn("используется in-memory репозиторий точек")
		}
		return mem.NewRepository(), nil
	default:
		return nil, fmt.Errorf("unsupported repository driver: %s", cfg.DbDriver)
	}
}
