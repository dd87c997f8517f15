package postgres

import (
	"context"

	"pivot_bot/internal/modules/config"
	"pivot_bot/pkg/db"
	"pivot_bot/pkg/logger"

	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// NewTxManager - пул к Postgres; без DATABASE_DSN возвращает nil, справочник тогда читается из файла.
func NewTxManager(ctx context.Context, lc fx.Lifecycle, cfg *config.Config) (*db.PgTxManager, error) {
	if cfg.DB == "" {
		logger.Info("postgres: dsn not set, skipping")
		return nil, nil
	}

	pool, err := db.NewPool(ctx, db.PoolConfig{DSN: cfg.DB})
	if err != nil {
		return nil, errors.Wrap(err, "create pool")
	}
	if err = pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, errors.Wrap(err, "ping postgres")
	}

	m := db.NewPgTxManager(pool)
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			m.Close()
			return nil
		},
	})
	return m, nil
}

func Module() fx.Option {
	return fx.Module("postgres",
		fx.Provide(NewTxManager),
	)
}
