package instruments

import (
	"context"

	"pivot_bot/internal/modules/config"
	"pivot_bot/internal/modules/instruments/service"
	"pivot_bot/pkg/db"
	"pivot_bot/pkg/logger"

	"go.uber.org/fx"
)

// NewLookup: при наличии Postgres справочник берётся из таблицы instruments, иначе из JSON-файла.
func NewLookup(ctx context.Context, cfg *config.Config, pg *db.PgTxManager) (service.Lookup, error) {
	if pg != nil {
		idx, err := service.LoadStore(ctx, service.NewStore(pg), cfg.Instrument.Segment)
		if err != nil {
			return nil, err
		}
		logger.Info("instruments: %d loaded from postgres", idx.Len())
		return idx, nil
	}

	idx, err := service.LoadFile(cfg.Instrument.File, cfg.Instrument.Segment)
	if err != nil {
		return nil, err
	}
	logger.Info("instruments: %d loaded from %s", idx.Len(), cfg.Instrument.File)
	return idx, nil
}

func Module() fx.Option {
	return fx.Module("instruments",
		fx.Provide(NewLookup),
	)
}
